package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/config"
)

type invalidation struct {
	Tables []string `json:"tables"`
	Reason string   `json:"reason"`
}

func TestDecodeJSON(t *testing.T) {
	msg, err := DecodeJSON[invalidation]([]byte(`{"tables":["customer"],"reason":"nightly load"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"customer"}, msg.Tables)
	assert.Equal(t, "nightly load", msg.Reason)
}

func TestDecodeJSONRejectsGarbage(t *testing.T) {
	_, err := DecodeJSON[invalidation]([]byte(`{not json`))
	assert.ErrorContains(t, err, "decoding kafka message")
}

func TestPublishBatchEmptyIsNoop(t *testing.T) {
	p := NewProducer(config.KafkaConfig{Brokers: []string{"127.0.0.1:1"}}, "insights.query-events")
	t.Cleanup(func() { p.Close() })
	assert.NoError(t, p.PublishBatch(context.Background(), nil))
}
