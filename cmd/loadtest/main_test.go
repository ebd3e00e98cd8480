package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsErrorEnvelope(t *testing.T) {
	assert.True(t, isErrorEnvelope([]byte(`{"data":{"error":"no such table: customer"}}`)))
	assert.False(t, isErrorEnvelope([]byte(`{"data":[]}`)))
	assert.False(t, isErrorEnvelope([]byte(`{"data":[{"gender":"F"}]}`)))
	assert.False(t, isErrorEnvelope([]byte(`<html>`)))
}

func TestPercentile(t *testing.T) {
	sorted := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	assert.Equal(t, time.Duration(5), percentile(sorted, 50))
	assert.Equal(t, time.Duration(10), percentile(sorted, 99))
	assert.Equal(t, time.Duration(1), percentile(sorted, 0))
	assert.Zero(t, percentile(nil, 50))
}

func TestRecordRequest(t *testing.T) {
	s := NewStats()
	s.RecordRequest(time.Millisecond, 200, false, nil)
	s.RecordRequest(time.Millisecond, 200, true, nil)
	s.RecordRequest(time.Millisecond, 404, false, nil)
	assert.Equal(t, int64(3), s.totalRequests.Load())
	assert.Equal(t, int64(1), s.successCount.Load())
	assert.Equal(t, int64(1), s.errorEnvelopes.Load())
	assert.Equal(t, int64(1), s.errorCount.Load())
}
