// Package analytics records the outcome of find requests in a fixed-size
// trailing window and reports how many of them returned nothing.
package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/emirpasic/gods/v2/queues/circularbuffer"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
)

// DefaultCapacity is one day of requests at one request per minute.
const DefaultCapacity = 1440

// Finder runs ranked queries against an index.
type Finder interface {
	FindTopDocumentsByStatus(ctx context.Context, rawQuery string, status indexer.Status) ([]ranker.ScoredDoc, error)
	FindTopDocumentsFunc(ctx context.Context, rawQuery string, predicate indexer.Predicate) ([]ranker.ScoredDoc, error)
}

type record struct {
	results int
}

// Tracker wraps a Finder and keeps the last capacity request outcomes. It is
// safe for concurrent use.
type Tracker struct {
	finder    Finder
	collector *Collector
	metrics   *metrics.Metrics
	logger    *slog.Logger

	mu        sync.Mutex
	window    *circularbuffer.Queue[record]
	capacity  int
	noResults int
}

// NewTracker creates a tracker over finder. collector and m may be nil.
func NewTracker(finder Finder, capacity int, collector *Collector, m *metrics.Metrics) *Tracker {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Tracker{
		finder:    finder,
		collector: collector,
		metrics:   m,
		logger:    slog.Default().With("component", "request-tracker"),
		window:    circularbuffer.New[record](capacity),
		capacity:  capacity,
	}
}

// AddFindRequest runs rawQuery against ACTUAL documents and records whether
// it found anything. Failed queries are not recorded.
func (t *Tracker) AddFindRequest(ctx context.Context, rawQuery string) ([]ranker.ScoredDoc, error) {
	return t.AddFindRequestByStatus(ctx, rawQuery, indexer.StatusActual)
}

func (t *Tracker) AddFindRequestByStatus(ctx context.Context, rawQuery string, status indexer.Status) ([]ranker.ScoredDoc, error) {
	start := time.Now()
	results, err := t.finder.FindTopDocumentsByStatus(ctx, rawQuery, status)
	if err != nil {
		return nil, fmt.Errorf("tracked find request: %w", err)
	}
	t.record(ctx, rawQuery, status.String(), len(results), time.Since(start))
	return results, nil
}

func (t *Tracker) AddFindRequestFunc(ctx context.Context, rawQuery string, predicate indexer.Predicate) ([]ranker.ScoredDoc, error) {
	start := time.Now()
	results, err := t.finder.FindTopDocumentsFunc(ctx, rawQuery, predicate)
	if err != nil {
		return nil, fmt.Errorf("tracked find request: %w", err)
	}
	t.record(ctx, rawQuery, "predicate", len(results), time.Since(start))
	return results, nil
}

// GetNoResultRequests counts the retained requests that found nothing.
func (t *Tracker) GetNoResultRequests() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.noResults
}

func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Stats{
		NoResultRequests: t.noResults,
		Requests:         t.window.Size(),
		Capacity:         t.capacity,
	}
}

func (t *Tracker) record(ctx context.Context, rawQuery, filter string, results int, elapsed time.Duration) {
	t.mu.Lock()
	// Evict before enqueueing so the counter follows the window exactly.
	if t.window.Full() {
		if oldest, ok := t.window.Dequeue(); ok && oldest.results == 0 {
			t.noResults--
		}
	}
	t.window.Enqueue(record{results: results})
	if results == 0 {
		t.noResults++
	}
	noResults := t.noResults
	t.mu.Unlock()

	t.metrics.SetNoResultRequests(noResults)

	eventType := EventFindRequest
	if results == 0 {
		eventType = EventNoResult
		logger.FromContext(ctx).Debug("find request returned no results", "query", rawQuery, "filter", filter)
	}
	t.collector.Track(RequestEvent{
		Type:      eventType,
		Query:     rawQuery,
		Filter:    filter,
		Results:   results,
		LatencyMs: elapsed.Milliseconds(),
		Timestamp: time.Now().UTC(),
		RequestID: logger.RequestID(ctx),
	})
}
