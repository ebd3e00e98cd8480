// Package handler implements the analytics API endpoints. Every endpoint
// answers 200 with a {"data": ...} envelope; a database failure puts
// {"error": "<driver message>"} in place of the records.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/Adithya-Monish-Kumar-K/customer-insights/internal/insights/cache"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/internal/insights/events"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/internal/insights/executor"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/internal/insights/query"
	apperrors "github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/metrics"
)

// Runner executes one endpoint query.
type Runner interface {
	Run(ctx context.Context, q query.Query) ([]executor.Record, error)
}

// Deps are the collaborators of a Handler. Cache, Events and Metrics are
// optional.
type Deps struct {
	Runner  Runner
	Builder *query.Builder
	Cache   *cache.QueryCache
	Events  events.Tracker
	Metrics *metrics.Metrics
}

type Handler struct {
	runner     Runner
	builder    *query.Builder
	aggregates map[string]query.Query
	cache      *cache.QueryCache
	events     events.Tracker
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func New(d Deps) *Handler {
	return &Handler{
		runner:     d.Runner,
		builder:    d.Builder,
		aggregates: query.Aggregates(),
		cache:      d.Cache,
		events:     d.Events,
		metrics:    d.Metrics,
		logger:     logger.WithComponent("insights-handler"),
	}
}

type envelope struct {
	Data any `json:"data"`
}

type errorBody struct {
	Error string `json:"error"`
}

// result is what the cache stores: the encoded records plus their count.
type result struct {
	Records int             `json:"records"`
	Data    json.RawMessage `json:"data"`
}

// GenderIncomeSpending serves income and spending statistics per gender.
func (h *Handler) GenderIncomeSpending(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.aggregates[query.GenderIncomeSpending], nil)
}

// RaceEconomicStability serves customer counts per race and economic
// stability bucket.
func (h *Handler) RaceEconomicStability(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.aggregates[query.RaceEconomicStability], nil)
}

// StateSocial serves social-media rank statistics per state.
func (h *Handler) StateSocial(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.aggregates[query.StateSocial], nil)
}

// All serves row-level customer records narrowed by the recognized
// query-string filters.
func (h *Handler) All(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	h.serve(w, r, h.builder.Build(values), query.Applied(values))
}

// CacheStats reports the query cache counters.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, envelope{Data: map[string]string{"status": "disabled"}})
		return
	}
	hits, misses := h.cache.Stats()
	hitRate := 0.0
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	h.writeJSON(w, envelope{Data: map[string]any{
		"status":   "enabled",
		"hits":     hits,
		"misses":   misses,
		"hit_rate": hitRate,
		"breaker":  h.cache.BreakerState().String(),
	}})
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, q query.Query, filters map[string]string) {
	ctx := r.Context()
	start := time.Now()

	res, hit, err := h.load(ctx, q)
	elapsed := time.Since(start)
	h.metrics.ObserveQuery(q.Name, elapsed, res.Records, err)
	h.track(ctx, q.Name, filters, res.Records, elapsed, hit, err)

	if err != nil {
		h.writeJSON(w, envelope{Data: errorBody{Error: apperrors.ClientMessage(err)}})
		return
	}
	h.writeJSON(w, envelope{Data: res.Data})
}

// load returns the encoded records for q, from the cache when one is
// configured. Failed queries are never cached.
func (h *Handler) load(ctx context.Context, q query.Query) (result, bool, error) {
	compute := func(ctx context.Context) ([]byte, error) {
		records, err := h.runner.Run(ctx, q)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(records)
		if err != nil {
			return nil, apperrors.New(apperrors.ErrInternal, http.StatusInternalServerError, "encoding records: "+err.Error())
		}
		return json.Marshal(result{Records: len(records), Data: data})
	}

	var (
		raw []byte
		hit bool
		err error
	)
	if h.cache == nil {
		raw, err = compute(ctx)
	} else {
		raw, hit, err = h.cache.GetOrCompute(ctx, q, compute)
	}
	if err != nil {
		return result{}, false, err
	}

	var res result
	if err := json.Unmarshal(raw, &res); err != nil {
		// A corrupt cache entry; answer from the database instead.
		logger.FromContext(ctx).Warn("discarding unreadable cache entry", "query", q.Name, "error", err)
		if raw, err = compute(ctx); err != nil {
			return result{}, false, err
		}
		if err := json.Unmarshal(raw, &res); err != nil {
			return result{}, false, err
		}
		return res, false, nil
	}
	return res, hit, nil
}

func (h *Handler) track(ctx context.Context, endpoint string, filters map[string]string, records int, elapsed time.Duration, hit bool, err error) {
	if h.events == nil {
		return
	}
	ev := events.NewQueryEvent(endpoint, records, elapsed, err)
	ev.Filters = filters
	ev.CacheHit = hit
	ev.RequestID = logger.RequestID(ctx)
	h.events.Track(ev)
}

func (h *Handler) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}
