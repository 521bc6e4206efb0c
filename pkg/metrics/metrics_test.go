package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveSearchByOutcome(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.ObserveSearch("sequential", time.Millisecond, 3, nil)
	m.ObserveSearch("sequential", time.Millisecond, 0, nil)
	m.ObserveSearch("parallel", time.Millisecond, 0, errors.New("bad query"))

	require.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues(ResultHit)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues(ResultZeroResult)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues(ResultError)))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveSearch("sequential", time.Millisecond, 1, nil)
	m.ObserveIndex(1, 1)
	m.DocumentIndexed()
	m.DocumentsRemoved(2)
	m.CacheLookup(true)
	m.SetNoResultRequests(4)
}

func TestObserveIndex(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())
	m.ObserveIndex(3, 11)
	m.DocumentIndexed()
	m.DocumentsRemoved(2)
	require.Equal(t, 3.0, testutil.ToFloat64(m.IndexDocuments))
	require.Equal(t, 11.0, testutil.ToFloat64(m.IndexWords))
	require.Equal(t, 1.0, testutil.ToFloat64(m.DocsIndexedTotal))
	require.Equal(t, 2.0, testutil.ToFloat64(m.DocsRemovedTotal))
}
