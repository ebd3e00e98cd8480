package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveQueryCountsOutcomes(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.ObserveQuery("all", 10*time.Millisecond, 3, nil)
	m.ObserveQuery("all", 5*time.Millisecond, 0, errors.New("no such table"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("all", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("all", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RecordsReturned))
}

func TestCacheAndBreakerHelpers(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.CacheResult(true)
	m.CacheResult(false)
	m.CacheResult(false)
	m.CacheInvalidated()
	m.EventDropped()
	m.SetBreakerState("redis", 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHitsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheMissesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheInvalidations))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsDroppedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CircuitBreakerState.WithLabelValues("redis")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveQuery("all", time.Millisecond, 1, nil)
		m.CacheResult(true)
		m.CacheInvalidated()
		m.EventDropped()
		m.SetBreakerState("redis", 0)
	})
}
