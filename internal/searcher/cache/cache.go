// Package cache memoizes ranked results. Entries live in a local LRU and,
// when configured, a shared remote tier. Every index mutation moves the
// cache to a new generation, which makes all earlier entries unreachable.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
)

// KeyPrefix starts every key written to the remote tier.
const KeyPrefix = "search:"

// Remote is the shared cache tier. *redis.Client implements it.
type Remote interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type ResultCache struct {
	local      *lru.Cache[string, []ranker.ScoredDoc]
	remote     Remote
	ttl        time.Duration
	generation atomic.Uint64
	group      singleflight.Group
	hits       atomic.Int64
	misses     atomic.Int64
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// New creates a cache holding up to localSize entries in process. remote and
// m may be nil.
func New(localSize int, remote Remote, ttl time.Duration, m *metrics.Metrics) (*ResultCache, error) {
	local, err := lru.New[string, []ranker.ScoredDoc](localSize)
	if err != nil {
		return nil, fmt.Errorf("creating local cache: %w", err)
	}
	c := &ResultCache{
		local:   local,
		remote:  remote,
		ttl:     ttl,
		metrics: m,
		logger:  slog.Default().With("component", "result-cache"),
	}
	// Start from the clock so a restarted process never reads entries a
	// previous one left in the remote tier.
	c.generation.Store(uint64(time.Now().UnixNano()))
	return c, nil
}

// GetOrCompute returns the cached results for (query, filter, limit) or
// computes and stores them. Concurrent misses on the same key share one
// computation. Errors are never cached. The bool reports a cache hit.
func (c *ResultCache) GetOrCompute(
	ctx context.Context,
	query, filter string,
	limit int,
	computeFn func() ([]ranker.ScoredDoc, error),
) ([]ranker.ScoredDoc, bool, error) {
	key := c.buildKey(query, filter, limit)
	if docs, ok := c.get(ctx, key); ok {
		c.hits.Add(1)
		c.metrics.CacheLookup(true)
		c.logger.Debug("cache hit", "query", query, "filter", filter)
		return slices.Clone(docs), true, nil
	}
	c.misses.Add(1)
	c.metrics.CacheLookup(false)

	val, err, _ := c.group.Do(key, func() (any, error) {
		if docs, ok := c.get(ctx, key); ok {
			return docs, nil
		}
		docs, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.set(ctx, key, docs)
		return docs, nil
	})
	if err != nil {
		return nil, false, err
	}
	return slices.Clone(val.([]ranker.ScoredDoc)), false, nil
}

// Invalidate drops every entry. Remote entries of older generations are left
// to expire through their TTL.
func (c *ResultCache) Invalidate() {
	gen := c.generation.Add(1)
	c.local.Purge()
	c.logger.Debug("cache invalidated", "generation", gen)
}

func (c *ResultCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *ResultCache) Len() int {
	return c.local.Len()
}

func (c *ResultCache) get(ctx context.Context, key string) ([]ranker.ScoredDoc, bool) {
	if docs, ok := c.local.Get(key); ok {
		return docs, true
	}
	if c.remote == nil {
		return nil, false
	}
	data, found, err := c.remote.Get(ctx, key)
	if err != nil {
		c.logger.Error("remote cache get failed", "key", key, "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	var docs []ranker.ScoredDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		c.logger.Error("remote cache unmarshal failed", "key", key, "error", err)
		return nil, false
	}
	c.local.Add(key, docs)
	return docs, true
}

func (c *ResultCache) set(ctx context.Context, key string, docs []ranker.ScoredDoc) {
	c.local.Add(key, docs)
	if c.remote == nil {
		return
	}
	data, err := json.Marshal(docs)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.remote.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("remote cache set failed", "key", key, "error", err)
	}
}

func (c *ResultCache) buildKey(query, filter string, limit int) string {
	raw := fmt.Sprintf("%s|filter=%s|limit=%d", normalizeQuery(query), filter, limit)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%d:%x", KeyPrefix, c.generation.Load(), hash[:16])
}

// normalizeQuery sorts and de-duplicates the words of query. Word order and
// repetition never change a result, but letter case does.
func normalizeQuery(query string) string {
	words := tokenizer.Split(query)
	slices.Sort(words)
	return strings.Join(slices.Compact(words), " ")
}
