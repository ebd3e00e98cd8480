package cache

import (
	"context"
	"slices"

	"github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/kafka"
)

// Invalidation is published by the data loader after it rewrites tables.
type Invalidation struct {
	Tables []string `json:"tables"`
	Reason string   `json:"reason"`
}

// sourceTables are the tables any endpoint reads.
var sourceTables = []string{"customer", "race", "education", "insurance_segment"}

// Affects reports whether the message touches data the endpoints read. A
// message without tables means "everything".
func (m Invalidation) Affects() bool {
	if len(m.Tables) == 0 {
		return true
	}
	for _, t := range m.Tables {
		if slices.Contains(sourceTables, t) {
			return true
		}
	}
	return false
}

// HandleInvalidation returns a Kafka handler that flushes the cache for
// every relevant invalidation message. Undecodable messages are logged and
// committed so they do not block the partition.
func HandleInvalidation(c *QueryCache) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		msg, err := kafka.DecodeJSON[Invalidation](value)
		if err != nil {
			c.logger.Error("failed to decode invalidation message", "error", err)
			return nil
		}
		if !msg.Affects() {
			c.logger.Debug("ignoring invalidation for unrelated tables", "tables", msg.Tables)
			return nil
		}
		c.logger.Info("invalidation received", "tables", msg.Tables, "reason", msg.Reason)
		return c.Invalidate(ctx)
	}
}
