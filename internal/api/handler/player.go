package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/mankind/internal/api/response"
	"github.com/mcoot/mankind/internal/model"
)

// ProgressionReader reads player progression
type ProgressionReader interface {
	Get(ctx context.Context, id model.PlayerID) (*model.Progression, error)
	List(ctx context.Context) []*model.Progression
}

// PlayerDuels lists a player's scored duels
type PlayerDuels interface {
	ForPlayer(ctx context.Context, id model.PlayerID, limit int) ([]*model.DuelResult, error)
}

// PlayerHandler handles player-related endpoints
type PlayerHandler struct {
	progression ProgressionReader
	results     PlayerDuels
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(progression ProgressionReader, results PlayerDuels) *PlayerHandler {
	return &PlayerHandler{
		progression: progression,
		results:     results,
	}
}

// List handles GET /api/v1/players
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.PlayerListFromModel(h.progression.List(r.Context())))
}

// GetProgression handles GET /api/v1/players/{player_id}/progression
func (h *PlayerHandler) GetProgression(w http.ResponseWriter, r *http.Request) {
	id, ok := playerIDFromPath(w, r)
	if !ok {
		return
	}

	prog, err := h.progression.Get(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProgressionFromModel(prog))
}

// ListDuels handles GET /api/v1/players/{player_id}/duels
func (h *PlayerHandler) ListDuels(w http.ResponseWriter, r *http.Request) {
	id, ok := playerIDFromPath(w, r)
	if !ok {
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	results, err := h.results.ForPlayer(r.Context(), id, limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.DuelListFromModel(results))
}

func playerIDFromPath(w http.ResponseWriter, r *http.Request) (model.PlayerID, bool) {
	id := model.PlayerID(strings.TrimSpace(mux.Vars(r)["player_id"]))
	if id == "" {
		WriteError(w, model.ErrInvalidPlayerID)
		return "", false
	}
	return id, true
}
