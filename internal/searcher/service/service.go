// Package service guards a single index engine for concurrent use. Queries
// share a read lock; document mutations take the write lock and invalidate
// the result cache.
package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
)

type Service struct {
	mu      sync.RWMutex
	engine  *indexer.Engine
	cache   *cache.ResultCache
	metrics *metrics.Metrics
}

// New wraps engine. resultCache and m may be nil.
func New(engine *indexer.Engine, resultCache *cache.ResultCache, m *metrics.Metrics) *Service {
	s := &Service{
		engine:  engine,
		cache:   resultCache,
		metrics: m,
	}
	m.ObserveIndex(engine.DocumentCount(), engine.WordCount())
	return s
}

func (s *Service) FindTopDocuments(ctx context.Context, rawQuery string) ([]ranker.ScoredDoc, error) {
	return s.FindTopDocumentsByStatus(ctx, rawQuery, indexer.StatusActual)
}

// FindTopDocumentsByStatus is served from the result cache when one is
// configured.
func (s *Service) FindTopDocumentsByStatus(ctx context.Context, rawQuery string, status indexer.Status) ([]ranker.ScoredDoc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := time.Now()
	compute := func() ([]ranker.ScoredDoc, error) {
		return s.engine.FindTopDocumentsByStatus(rawQuery, status)
	}
	var (
		docs []ranker.ScoredDoc
		err  error
	)
	if s.cache != nil {
		docs, _, err = s.cache.GetOrCompute(ctx, rawQuery, status.String(), s.engine.MaxResults(), compute)
	} else {
		docs, err = compute()
	}
	s.metrics.ObserveSearch(string(s.engine.Strategy()), time.Since(start), len(docs), err)
	return docs, err
}

// FindTopDocumentsFunc bypasses the cache since predicates have no key.
func (s *Service) FindTopDocumentsFunc(_ context.Context, rawQuery string, predicate indexer.Predicate) ([]ranker.ScoredDoc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := time.Now()
	docs, err := s.engine.FindTopDocumentsFunc(rawQuery, predicate)
	s.metrics.ObserveSearch(string(s.engine.Strategy()), time.Since(start), len(docs), err)
	return docs, err
}

func (s *Service) MatchDocument(_ context.Context, rawQuery string, id int) ([]string, indexer.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.MatchDocument(rawQuery, id)
}

func (s *Service) WordFrequencies(id int) map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.WordFrequencies(id)
}

func (s *Service) Document(id int) (indexer.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.Document(id)
}

func (s *Service) DocumentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine.DocumentCount()
}

// DocumentIDs returns a snapshot of the live ids in ascending order.
func (s *Service) DocumentIDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Collect(s.engine.DocumentIDs())
}

func (s *Service) AddDocument(ctx context.Context, id int, text string, status indexer.Status, ratings []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.engine.AddDocument(id, text, status, ratings); err != nil {
		return err
	}
	s.mutated()
	s.metrics.DocumentIndexed()
	logger.FromContext(ctx).Debug("document added", "doc_id", id, "status", status)
	return nil
}

// RemoveDocument reports whether id existed.
func (s *Service) RemoveDocument(ctx context.Context, id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.engine.RemoveDocument(id) {
		return false
	}
	s.mutated()
	s.metrics.DocumentsRemoved(1)
	logger.FromContext(ctx).Debug("document removed", "doc_id", id)
	return true
}

func (s *Service) RemoveDuplicates(ctx context.Context) []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.engine.RemoveDuplicates()
	if len(removed) > 0 {
		s.mutated()
		s.metrics.DocumentsRemoved(len(removed))
	}
	logger.FromContext(ctx).Info("duplicates removed", "count", len(removed))
	return removed
}

// mutated must be called with the write lock held.
func (s *Service) mutated() {
	if s.cache != nil {
		s.cache.Invalidate()
	}
	s.metrics.ObserveIndex(s.engine.DocumentCount(), s.engine.WordCount())
}
