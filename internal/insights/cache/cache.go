// Package cache keeps successful endpoint results in Redis. Concurrent
// misses for the same query share one database round trip, and a circuit
// breaker stops the service from waiting on an unhealthy Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/customer-insights/internal/insights/query"
	apperrors "github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/resilience"
)

const keyPrefix = "insights:"

// Store is the subset of the Redis client the cache needs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

type QueryCache struct {
	store   Store
	ttl     time.Duration
	breaker *resilience.CircuitBreaker
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

func New(store Store, ttl time.Duration, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		store: store,
		ttl:   ttl,
		breaker: resilience.NewCircuitBreaker("redis", resilience.CircuitBreakerConfig{
			FailureThreshold: 5,
			ResetTimeout:     30 * time.Second,
			OnStateChange: func(name string, _, to resilience.State) {
				m.SetBreakerState(name, int(to))
			},
		}),
		metrics: m,
		logger:  logger.WithComponent("query-cache"),
	}
}

// Get returns the cached JSON for q. Any Redis failure reads as a miss.
func (c *QueryCache) Get(ctx context.Context, q query.Query) ([]byte, bool) {
	data, ok := c.lookup(ctx, BuildKey(q))
	if !ok {
		c.misses.Add(1)
		c.metrics.CacheResult(false)
		return nil, false
	}
	c.hits.Add(1)
	c.metrics.CacheResult(true)
	c.logger.Debug("cache hit", "query", q.Name)
	return data, true
}

// lookup reads key without touching the hit and miss counters.
func (c *QueryCache) lookup(ctx context.Context, key string) ([]byte, bool) {
	var data []byte
	err := c.breaker.ExecuteIgnoring(func() error {
		var err error
		data, err = c.store.Get(ctx, key)
		return err
	}, pkgredis.IsNilError)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Warn("cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	return data, true
}

// Set stores data for q; failures are logged, not returned.
func (c *QueryCache) Set(ctx context.Context, q query.Query, data []byte) {
	key := BuildKey(q)
	err := c.breaker.Execute(func() error {
		return c.store.Set(ctx, key, data, c.ttl)
	})
	if err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

type flightResult struct {
	data []byte
	hit  bool
}

// GetOrCompute returns the cached result for q or computes, stores and
// returns it. Errors from compute are returned and never cached.
//
// Concurrent misses for q share one compute call. That call runs detached
// from any caller's cancellation, so one caller going away does not fail
// the others; each caller still stops waiting when its own ctx is done.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	q query.Query,
	compute func(ctx context.Context) ([]byte, error),
) ([]byte, bool, error) {
	if data, ok := c.Get(ctx, q); ok {
		return data, true, nil
	}
	key := BuildKey(q)
	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		// A previous flight may have filled the key since our miss.
		if data, ok := c.lookup(flightCtx, key); ok {
			return flightResult{data: data, hit: true}, nil
		}
		data, err := compute(flightCtx)
		if err != nil {
			return nil, err
		}
		c.Set(flightCtx, q, data)
		return flightResult{data: data}, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		r := res.Val.(flightResult)
		return r.data, r.hit, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Invalidate removes every cached endpoint result.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	var deleted int64
	err := c.breaker.Execute(func() error {
		var err error
		deleted, err = c.store.FlushByPattern(ctx, keyPrefix+"*")
		return err
	})
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return fmt.Errorf("invalidating cache: %w: %w", apperrors.ErrCacheUnavailable, err)
		}
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.metrics.CacheInvalidated()
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// BreakerState reports the Redis circuit breaker state.
func (c *QueryCache) BreakerState() resilience.State {
	return c.breaker.GetState()
}

// BuildKey derives the Redis key for q from its name and bound values.
// Filter order is fixed by the builder, so equal filters give equal keys.
func BuildKey(q query.Query) string {
	var sb strings.Builder
	sb.WriteString(q.Name)
	for _, p := range q.Params {
		fmt.Fprintf(&sb, "|%s=%q", p.Name, p.Value)
	}
	hash := sha256.Sum256([]byte(sb.String()))
	return fmt.Sprintf("%s%s:%x", keyPrefix, q.Name, hash[:16])
}
