package analytics

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type Handler struct {
	tracker *Tracker
	logger  *slog.Logger
}

func NewHandler(tracker *Tracker) *Handler {
	return &Handler{
		tracker: tracker,
		logger:  slog.Default().With("component", "analytics-handler"),
	}
}

// Stats serves the tracker window counters.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := h.tracker.Stats()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		h.logger.Error("failed to write request stats", "error", err)
	}
}
