// Package events publishes one audit event per served API query to Kafka.
package events

import "time"

type EventType string

const (
	EventQuery      EventType = "query"
	EventQueryError EventType = "query_error"
	EventEmpty      EventType = "empty_result"
)

type QueryEvent struct {
	Type      EventType         `json:"type"`
	Endpoint  string            `json:"endpoint"`
	Filters   map[string]string `json:"filters,omitempty"`
	Records   int               `json:"records"`
	LatencyMs int64             `json:"latency_ms"`
	CacheHit  bool              `json:"cache_hit"`
	Error     string            `json:"error,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	RequestID string            `json:"request_id"`
}

// NewQueryEvent fills in Type from the outcome of the query.
func NewQueryEvent(endpoint string, records int, latency time.Duration, err error) QueryEvent {
	ev := QueryEvent{
		Type:      EventQuery,
		Endpoint:  endpoint,
		Records:   records,
		LatencyMs: latency.Milliseconds(),
		Timestamp: time.Now().UTC(),
	}
	switch {
	case err != nil:
		ev.Type = EventQueryError
		ev.Error = err.Error()
	case records == 0:
		ev.Type = EventEmpty
	}
	return ev
}
