// Package handler serves the search, match and document inspection
// endpoints.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
)

// maxBatchQueries bounds the body of a batch request.
const maxBatchQueries = 1000

// Tracker runs find requests and records their outcome.
type Tracker interface {
	AddFindRequestByStatus(ctx context.Context, rawQuery string, status indexer.Status) ([]ranker.ScoredDoc, error)
}

type BatchProcessor interface {
	ProcessQueries(ctx context.Context, queries []string) ([][]ranker.ScoredDoc, error)
	ProcessQueriesJoined(ctx context.Context, queries []string) ([]ranker.ScoredDoc, error)
}

// Index is the read side of service.Service, plus deduplication.
type Index interface {
	MatchDocument(ctx context.Context, rawQuery string, id int) ([]string, indexer.Status, error)
	WordFrequencies(id int) map[string]float64
	Document(id int) (indexer.Document, bool)
	DocumentIDs() []int
	RemoveDuplicates(ctx context.Context) []int
}

type SearchResponse struct {
	Query     string             `json:"query"`
	Status    indexer.Status     `json:"status"`
	Results   []ranker.ScoredDoc `json:"results"`
	LatencyMs int64              `json:"latency_ms"`
}

type BatchRequest struct {
	Queries []string `json:"queries"`
	Joined  bool     `json:"joined"`
}

type MatchResponse struct {
	ID     int            `json:"id"`
	Words  []string       `json:"words"`
	Status indexer.Status `json:"status"`
}

type Handler struct {
	tracker Tracker
	batch   BatchProcessor
	index   Index
	cache   *cache.ResultCache
	logger  *slog.Logger
}

// New creates a Handler. resultCache may be nil.
func New(tracker Tracker, batch BatchProcessor, index Index, resultCache *cache.ResultCache) *Handler {
	return &Handler{
		tracker: tracker,
		batch:   batch,
		index:   index,
		cache:   resultCache,
		logger:  slog.Default().With("component", "search-handler"),
	}
}

// Search ranks documents for ?q=, filtered by ?status= (ACTUAL when absent).
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	status := indexer.StatusActual
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := indexer.ParseStatus(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		status = parsed
	}

	results, err := h.tracker.AddFindRequestByStatus(ctx, query, status)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	if results == nil {
		results = []ranker.ScoredDoc{}
	}

	latencyMs := time.Since(start).Milliseconds()
	log.Info("search completed",
		"query", query,
		"status", status,
		"returned", len(results),
		"latency_ms", latencyMs,
	)
	h.writeJSON(w, http.StatusOK, SearchResponse{
		Query:     query,
		Status:    status,
		Results:   results,
		LatencyMs: latencyMs,
	})
}

// Batch answers many ACTUAL queries at once. With "joined" the result lists
// are concatenated in query order.
func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Queries) > maxBatchQueries {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d queries per batch", maxBatchQueries))
		return
	}

	if req.Joined {
		joined, err := h.batch.ProcessQueriesJoined(ctx, req.Queries)
		if err != nil {
			h.writeAppError(w, r, err)
			return
		}
		if joined == nil {
			joined = []ranker.ScoredDoc{}
		}
		h.writeJSON(w, http.StatusOK, map[string]any{"results": joined})
		return
	}

	perQuery, err := h.batch.ProcessQueries(ctx, req.Queries)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	for i := range perQuery {
		if perQuery[i] == nil {
			perQuery[i] = []ranker.ScoredDoc{}
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"results": perQuery})
}

func (h *Handler) Match(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	words, status, err := h.index.MatchDocument(r.Context(), r.URL.Query().Get("q"), id)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, MatchResponse{ID: id, Words: words, Status: status})
}

func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	doc, found := h.index.Document(id)
	if !found {
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("document %d not found", id))
		return
	}
	h.writeJSON(w, http.StatusOK, doc)
}

// Words returns the term frequencies of one document. Unknown ids yield an
// empty map.
func (h *Handler) Words(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"id":    id,
		"words": h.index.WordFrequencies(id),
	})
}

func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	ids := h.index.DocumentIDs()
	if ids == nil {
		ids = []int{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"count": len(ids),
		"ids":   ids,
	})
}

// Deduplicate removes documents with the same word set as a lower id. It
// acts on this instance's index only.
func (h *Handler) Deduplicate(w http.ResponseWriter, r *http.Request) {
	removed := h.index.RemoveDuplicates(r.Context())
	if removed == nil {
		removed = []int{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"removed": removed})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"entries":  h.cache.Len(),
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 0 {
		h.writeError(w, http.StatusBadRequest, "document id must be a non-negative integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatusCode(err)
	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "path", r.URL.Path, "error", err)
		h.writeError(w, status, "internal error")
		return
	}
	log.Debug("request rejected", "path", r.URL.Path, "error", err, "status_code", status)
	h.writeError(w, status, err.Error())
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
