package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/mankind/internal/api/response"
	"github.com/mcoot/mankind/internal/model"
)

// ResultsReader is the read side of the results service
type ResultsReader interface {
	Get(ctx context.Context, id model.DuelID) (*model.DuelResult, error)
	Recent(ctx context.Context, limit int) ([]*model.DuelResult, error)
	Leaderboard(ctx context.Context, limit int) ([]*model.Standing, error)
	PlayerDuels
}

// DuelHandler serves scored duels and the leaderboard
type DuelHandler struct {
	results ResultsReader
}

// NewDuelHandler creates a new duel handler
func NewDuelHandler(results ResultsReader) *DuelHandler {
	return &DuelHandler{results: results}
}

// Get handles GET /api/v1/duels/{duel_id}
func (h *DuelHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.DuelID(mux.Vars(r)["duel_id"])

	result, err := h.results.Get(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.DuelResultFromModel(result))
}

// Recent handles GET /api/v1/duels/recent
func (h *DuelHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	results, err := h.results.Recent(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.DuelListFromModel(results))
}

// Leaderboard handles GET /api/v1/leaderboard
func (h *DuelHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	standings, err := h.results.Leaderboard(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromModel(standings))
}
