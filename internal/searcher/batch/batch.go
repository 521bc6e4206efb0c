// Package batch runs many independent find requests concurrently against one
// read-only index.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
)

// Finder ranks ACTUAL documents against a raw query.
type Finder interface {
	FindTopDocuments(ctx context.Context, rawQuery string) ([]ranker.ScoredDoc, error)
}

type Processor struct {
	finder  Finder
	workers int
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a Processor running at most workers queries at once. A
// non-positive workers uses GOMAXPROCS. m may be nil.
func New(finder Finder, workers int, m *metrics.Metrics) *Processor {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Processor{
		finder:  finder,
		workers: workers,
		metrics: m,
		logger:  slog.Default().With("component", "batch-processor"),
	}
}

// ProcessQueries returns one result list per query, in query order. The
// first failing query cancels the rest and its error is returned.
func (p *Processor) ProcessQueries(ctx context.Context, queries []string) ([][]ranker.ScoredDoc, error) {
	start := time.Now()
	results := make([][]ranker.ScoredDoc, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, query := range queries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			docs, err := p.finder.FindTopDocuments(gctx, query)
			if err != nil {
				return fmt.Errorf("query %d %q: %w", i, query, err)
			}
			results[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.metrics.BatchQueries(len(queries))
	p.logger.Debug("batch processed",
		"queries", len(queries),
		"workers", p.workers,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return results, nil
}

// ProcessQueriesJoined concatenates the result lists of ProcessQueries in
// query order.
func (p *Processor) ProcessQueriesJoined(ctx context.Context, queries []string) ([]ranker.ScoredDoc, error) {
	perQuery, err := p.ProcessQueries(ctx, queries)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, docs := range perQuery {
		total += len(docs)
	}
	joined := make([]ranker.ScoredDoc, 0, total)
	for _, docs := range perQuery {
		joined = append(joined, docs...)
	}
	return joined, nil
}
