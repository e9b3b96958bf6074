package handler

import (
	"net/http"

	"github.com/mcoot/homeguess/internal/api/response"
	"github.com/mcoot/homeguess/internal/realtime"
)

// RealtimeHandler exposes push connection metrics
type RealtimeHandler struct {
	broadcaster *realtime.Broadcaster
}

// NewRealtimeHandler creates a new realtime handler
func NewRealtimeHandler(b *realtime.Broadcaster) *RealtimeHandler {
	return &RealtimeHandler{broadcaster: b}
}

// Stats handles GET /api/realtime/stats
func (h *RealtimeHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := h.broadcaster.Stats()
	response.JSON(w, http.StatusOK, response.RealtimeStats{
		Hubs:        stats.Hubs,
		Subscribed:  stats.Subscribed,
		Connections: stats.Connections,
	})
}
