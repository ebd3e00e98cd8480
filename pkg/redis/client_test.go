package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/config"
	goredis "github.com/redis/go-redis/v9"
)

func TestIsNilError(t *testing.T) {
	assert.True(t, IsNilError(goredis.Nil))
	assert.True(t, IsNilError(fmt.Errorf("get: %w", goredis.Nil)))
	assert.False(t, IsNilError(errors.New("connection refused")))
}

// TestClientRoundTrip runs against a live Redis when TEST_REDIS_ADDR is set.
func TestClientRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	c, err := NewClient(ctx, config.RedisConfig{Addr: addr, PoolSize: 2})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	require.NoError(t, c.Set(ctx, "insights-test:a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "insights-test:b", []byte("2"), time.Minute))

	v, err := c.Get(ctx, "insights-test:a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	deleted, err := c.FlushByPattern(ctx, "insights-test:*")
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	_, err = c.Get(ctx, "insights-test:a")
	assert.True(t, IsNilError(err))
}
