package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
)

func newService(t *testing.T, withCache bool) (*Service, *metrics.Metrics) {
	t.Helper()
	cfg := config.Default().Search
	cfg.Strategy = config.StrategyParallel
	e, err := indexer.New(cfg, "with")
	require.NoError(t, err)

	var rc *cache.ResultCache
	if withCache {
		rc, err = cache.New(64, nil, time.Minute, nil)
		require.NoError(t, err)
	}
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	return New(e, rc, m), m
}

func TestMutationInvalidatesCache(t *testing.T) {
	s, m := newService(t, true)
	ctx := context.Background()
	require.NoError(t, s.AddDocument(ctx, 1, "white cat", indexer.StatusActual, []int{1}))

	docs, err := s.FindTopDocuments(ctx, "cat")
	require.NoError(t, err)
	require.Len(t, docs, 1)

	require.NoError(t, s.AddDocument(ctx, 2, "black cat", indexer.StatusActual, []int{4}))
	docs, err = s.FindTopDocuments(ctx, "cat")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, 2, docs[0].DocID)

	require.True(t, s.RemoveDocument(ctx, 2))
	require.False(t, s.RemoveDocument(ctx, 2))
	docs, err = s.FindTopDocuments(ctx, "cat")
	require.NoError(t, err)
	require.Len(t, docs, 1)

	require.Equal(t, 2.0, testutil.ToFloat64(m.DocsIndexedTotal))
	require.Equal(t, 1.0, testutil.ToFloat64(m.DocsRemovedTotal))
	require.Equal(t, 1.0, testutil.ToFloat64(m.IndexDocuments))
}

func TestFailedAddLeavesCache(t *testing.T) {
	s, _ := newService(t, true)
	ctx := context.Background()
	require.NoError(t, s.AddDocument(ctx, 1, "cat", indexer.StatusActual, nil))

	err := s.AddDocument(ctx, 1, "cat", indexer.StatusActual, nil)
	require.ErrorIs(t, err, apperrors.ErrInvalidID)
	require.Equal(t, 1, s.DocumentCount())
}

func TestServiceReads(t *testing.T) {
	s, _ := newService(t, false)
	ctx := context.Background()
	require.NoError(t, s.AddDocument(ctx, 3, "fluffy cat fluffy tail", indexer.StatusBanned, []int{7, 2, 7}))
	require.NoError(t, s.AddDocument(ctx, 1, "white cat with new ring", indexer.StatusActual, nil))

	require.Equal(t, []int{1, 3}, s.DocumentIDs())
	require.InDelta(t, 0.5, s.WordFrequencies(3)["fluffy"], 1e-9)

	words, status, err := s.MatchDocument(ctx, "fluffy cat -dog", 3)
	require.NoError(t, err)
	require.Equal(t, []string{"cat", "fluffy"}, words)
	require.Equal(t, indexer.StatusBanned, status)

	docs, err := s.FindTopDocumentsByStatus(ctx, "fluffy", indexer.StatusBanned)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, 5, docs[0].Rating)

	docs, err = s.FindTopDocumentsFunc(ctx, "cat", func(_ int, _ indexer.Status, rating int) bool {
		return rating > 0
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, 3, docs[0].DocID)

	doc, ok := s.Document(1)
	require.True(t, ok)
	require.Equal(t, "white cat with new ring", doc.Text)
}

func TestRemoveDuplicates(t *testing.T) {
	s, _ := newService(t, true)
	ctx := context.Background()
	require.NoError(t, s.AddDocument(ctx, 1, "cat dog", indexer.StatusActual, nil))
	require.NoError(t, s.AddDocument(ctx, 2, "dog cat cat", indexer.StatusActual, nil))

	docs, err := s.FindTopDocuments(ctx, "dog")
	require.NoError(t, err)
	require.Len(t, docs, 2)

	require.Equal(t, []int{2}, s.RemoveDuplicates(ctx))
	docs, err = s.FindTopDocuments(ctx, "dog")
	require.NoError(t, err)
	require.Len(t, docs, 1)
}

func TestConcurrentReadersAndWriter(t *testing.T) {
	s, _ := newService(t, true)
	ctx := context.Background()
	for i := range 20 {
		require.NoError(t, s.AddDocument(ctx, i, fmt.Sprintf("cat number%d", i), indexer.StatusActual, []int{i}))
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 20; i < 60; i++ {
			assert.NoError(t, s.AddDocument(ctx, i, fmt.Sprintf("dog number%d", i), indexer.StatusActual, nil))
			s.RemoveDocument(ctx, i-20)
		}
	}()
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				_, err := s.FindTopDocuments(ctx, "cat dog")
				assert.NoError(t, err)
				s.WordFrequencies(5)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 20, s.DocumentCount())
}
