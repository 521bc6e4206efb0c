package cache

import (
	"context"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/resilience"
)

type guardedRemote struct {
	remote  Remote
	breaker *resilience.Breaker
}

// Guard wraps remote in breaker. While the breaker is open every lookup is a
// miss and every store is skipped, so a dead shared tier costs nothing.
func Guard(remote Remote, breaker *resilience.Breaker) Remote {
	return &guardedRemote{remote: remote, breaker: breaker}
}

func (g *guardedRemote) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		value []byte
		found bool
	)
	err := g.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		value, found, err = g.remote.Get(ctx, key)
		return err
	})
	return value, found, err
}

func (g *guardedRemote) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return g.breaker.Do(ctx, func(ctx context.Context) error {
		return g.remote.Set(ctx, key, value, ttl)
	})
}
