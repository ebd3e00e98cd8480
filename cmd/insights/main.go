// Command insights serves the customer analytics dashboard and its JSON API.
//
// It reads the customer database (SQLite by default, PostgreSQL optionally),
// optionally caches endpoint results in Redis, publishes one audit event per
// query to Kafka, and flushes the cache when the data loader announces a
// refresh on the cache-invalidate topic.
//
// Usage:
//
//	go run ./cmd/insights [-config configs/development.yaml]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/customer-insights/internal/insights/cache"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/internal/insights/events"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/internal/insights/executor"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/internal/insights/handler"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/internal/insights/query"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/internal/insights/router"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/internal/insights/web"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/database"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/redis"
)

const (
	eventBatchSize     = 100
	eventFlushInterval = time.Second
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults plus CI_* environment when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting customer insights service",
		"port", cfg.Server.Port,
		"driver", cfg.Database.Driver,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("service failed", "error", err)
		os.Exit(1)
	}
	slog.Info("customer insights service stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	checker := health.NewChecker()
	checker.Register("database", health.PingCheck(db.Ping, false))

	var queryCache *cache.QueryCache
	if cfg.Redis.Enabled {
		rdb, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, query cache disabled", "error", err)
		} else {
			defer rdb.Close()
			queryCache = cache.New(rdb, cfg.Redis.CacheTTL, m)
			checker.Register("redis", health.PingCheck(rdb.Ping, true))
			slog.Info("query cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	// Background workers stop before Redis and the database are closed.
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	var workers sync.WaitGroup
	defer func() {
		cancelWorkers()
		workers.Wait()
	}()

	var tracker events.Tracker
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.QueryEvents)
		collector := events.NewCollector(producer, cfg.Kafka.EventBuffer, eventBatchSize, eventFlushInterval, m)
		collector.Start(workerCtx)
		defer func() {
			collector.Close()
			if err := producer.Close(); err != nil {
				slog.Error("closing query event producer", "error", err)
			}
		}()
		tracker = collector

		if queryCache != nil {
			consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.CacheInvalidate, cache.HandleInvalidation(queryCache))
			workers.Add(1)
			go func() {
				defer workers.Done()
				if err := consumer.Start(workerCtx); err != nil {
					slog.Error("invalidation consumer error", "error", err)
				}
			}()
		}
	}

	site, err := web.New(cfg.Web)
	if err != nil {
		return err
	}

	h := handler.New(handler.Deps{
		Runner:  executor.New(db),
		Builder: query.NewBuilder(db.Dialect()),
		Cache:   queryCache,
		Events:  tracker,
		Metrics: m,
	})

	server := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router.New(router.Deps{
			Handler:      h,
			Site:         site,
			Health:       checker,
			Metrics:      m,
			AllowOrigins: cfg.Web.AllowOrigins,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("customer insights service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving http: %w", err)
	}
	return nil
}
