// Package loader seeds an index from a PostgreSQL documents table at
// startup. The table is a read-only source; the index is never written back.
package loader

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/resilience"
)

// Indexer is the mutation side of service.Service.
type Indexer interface {
	AddDocument(ctx context.Context, id int, text string, status indexer.Status, ratings []int) error
}

type Result struct {
	Loaded  int
	Skipped int
}

// Row is one document read from the source table.
type Row struct {
	ID      int
	Text    string
	Status  sql.NullString
	Ratings []int64
}

// Load runs query against db and adds every returned row to idx. The query
// must select (id, text, status, ratings) in that order; ratings is an
// integer array. Rows the index rejects are logged and skipped.
func Load(ctx context.Context, db *sql.DB, query string, idx Indexer) (Result, error) {
	start := time.Now()
	log := logger.WithComponent("seed-loader")

	var rows []Row
	err := resilience.Retry(ctx, "seed query", resilience.RetryConfig{}, func(ctx context.Context) error {
		var err error
		rows, err = fetch(ctx, db, query)
		return err
	})
	if err != nil {
		return Result{}, fmt.Errorf("reading seed documents: %w", err)
	}

	result := Apply(ctx, idx, rows)
	log.Info("seed documents loaded",
		"loaded", result.Loaded,
		"skipped", result.Skipped,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// Apply adds rows to idx in order.
func Apply(ctx context.Context, idx Indexer, rows []Row) Result {
	log := logger.WithComponent("seed-loader")
	var result Result
	for _, row := range rows {
		status := indexer.StatusActual
		if row.Status.Valid && row.Status.String != "" {
			parsed, err := indexer.ParseStatus(row.Status.String)
			if err != nil {
				log.Warn("skipping seed document", "doc_id", row.ID, "error", err)
				result.Skipped++
				continue
			}
			status = parsed
		}
		ratings := make([]int, len(row.Ratings))
		for i, r := range row.Ratings {
			ratings[i] = int(r)
		}
		if err := idx.AddDocument(ctx, row.ID, row.Text, status, ratings); err != nil {
			log.Warn("skipping seed document", "doc_id", row.ID, "error", err)
			result.Skipped++
			continue
		}
		result.Loaded++
	}
	return result
}

func fetch(ctx context.Context, db *sql.DB, query string) ([]Row, error) {
	rs, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rs.Close()

	var rows []Row
	for rs.Next() {
		var row Row
		if err := rs.Scan(&row.ID, &row.Text, &row.Status, pq.Array(&row.Ratings)); err != nil {
			// A column mismatch will not fix itself.
			return nil, resilience.Permanent(fmt.Errorf("scanning document row: %w", err))
		}
		rows = append(rows, row)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("iterating document rows: %w", err)
	}
	return rows, nil
}
