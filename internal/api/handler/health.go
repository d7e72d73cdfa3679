package handler

import (
	"net/http"

	"github.com/mcoot/mankind/internal/api/response"
)

// ConnectionCounter reports how many duel connections are open
type ConnectionCounter interface {
	Count() int
}

// HealthHandler handles the health endpoint
type HealthHandler struct {
	connections ConnectionCounter
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(connections ConnectionCounter) *HealthHandler {
	return &HealthHandler{connections: connections}
}

// Get handles GET /api/v1/health
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp := response.Health{Status: "ok"}
	if h.connections != nil {
		resp.ActiveConnections = h.connections.Count()
	}
	response.JSON(w, http.StatusOK, resp)
}
