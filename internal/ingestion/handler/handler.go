// Package handler serves the document mutation endpoints.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/ingestion/validator"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
)

// Writer applies or queues document mutations. It is implemented by
// publisher.Publisher and consumer.Direct.
type Writer interface {
	AddDocument(ctx context.Context, event ingestion.DocumentEvent) (ingestion.DocumentResponse, error)
	RemoveDocument(ctx context.Context, id int) (ingestion.DocumentResponse, error)
}

type Handler struct {
	writer    Writer
	sanitizer *validator.Sanitizer
	logger    *slog.Logger
}

// New creates a Handler. With a nil sanitizer document text is indexed as
// sent.
func New(writer Writer, sanitizer *validator.Sanitizer) *Handler {
	return &Handler{
		writer:    writer,
		sanitizer: sanitizer,
		logger:    slog.Default().With("component", "ingestion-handler"),
	}
}

func (h *Handler) AddDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req ingestion.DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if h.sanitizer != nil {
		req.Text = h.sanitizer.Clean(req.Text)
	}
	if err := validator.ValidateDocumentRequest(&req); err != nil {
		var validationErr *validator.ValidationError
		if errors.As(err, &validationErr) {
			h.writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": validationErr.Fields,
			})
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.writer.AddDocument(ctx, ingestion.DocumentEvent{
		ID:      *req.ID,
		Text:    req.Text,
		Status:  req.Status,
		Ratings: req.Ratings,
	})
	if err != nil {
		statusCode := apperrors.HTTPStatusCode(err)
		log.Warn("add document failed", "doc_id", *req.ID, "error", err, "status_code", statusCode)
		h.writeError(w, statusCode, err.Error())
		return
	}
	log.Info("document accepted", "doc_id", resp.ID, "result", resp.Status)

	status := http.StatusAccepted
	if resp.Status == ingestion.StatusIndexed {
		status = http.StatusCreated
	}
	h.writeJSON(w, status, resp)
}

func (h *Handler) RemoveDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 0 {
		h.writeError(w, http.StatusBadRequest, "document id must be a non-negative integer")
		return
	}

	resp, err := h.writer.RemoveDocument(ctx, id)
	if err != nil {
		statusCode := apperrors.HTTPStatusCode(err)
		logger.FromContext(ctx).Error("remove document failed", "doc_id", id, "error", err)
		h.writeError(w, statusCode, "remove failed")
		return
	}

	// Removing an unknown id is a no-op, reported as "absent" with 200.
	if resp.Status == ingestion.StatusQueued {
		h.writeJSON(w, http.StatusAccepted, resp)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
