package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mcoot/mankind/internal/sse"
)

// EventsHandler streams live duel results over SSE
type EventsHandler struct {
	hubs *sse.HubManager
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(hubs *sse.HubManager) *EventsHandler {
	return &EventsHandler{hubs: hubs}
}

// Global handles GET /api/v1/events
func (h *EventsHandler) Global(w http.ResponseWriter, r *http.Request) {
	hub := h.hubs.GetOrCreateHub(sse.TopicDuels)
	sse.ServeSSE(w, r, hub, subscriberID(r))
}

// Player handles GET /api/v1/players/{player_id}/events
func (h *EventsHandler) Player(w http.ResponseWriter, r *http.Request) {
	id, ok := playerIDFromPath(w, r)
	if !ok {
		return
	}
	hub := h.hubs.GetOrCreateHub(sse.PlayerTopic(id))
	sse.ServeSSE(w, r, hub, subscriberID(r))
}

// subscriberID labels a stream in logs; the caller may name itself
func subscriberID(r *http.Request) string {
	if name := r.URL.Query().Get("subscriber"); name != "" {
		return name
	}
	return uuid.NewString()
}
