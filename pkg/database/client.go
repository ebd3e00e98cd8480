// Package database opens the customer database for either supported driver
// and hands out scoped connections. SQLite (modernc.org/sqlite, pure Go) is
// the default; PostgreSQL is reached through lib/pq.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/resilience"
)

type Client struct {
	DB      *sql.DB
	dialect Dialect
	cfg     config.DatabaseConfig
	logger  *slog.Logger
}

// Open connects with the configured driver and verifies the connection,
// retrying the initial ping with backoff.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Client, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(dialect.DriverName(), cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", cfg.Driver, err)
	}

	c := &Client{
		DB:      db,
		dialect: dialect,
		cfg:     cfg,
		logger:  logger.WithComponent("database").With("driver", cfg.Driver),
	}
	err = resilience.Retry(ctx, "database ping", resilience.RetryConfig{MaxAttempts: 3}, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := c.Ping(pingCtx); err != nil {
			return c.classifyPingError(err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s database: %w", cfg.Driver, err)
	}
	c.logger.Info("database connected")
	return c, nil
}

// classifyPingError stops the retry loop when the SQLite file is absent.
// The read-only open never creates it, so another attempt cannot succeed.
func (c *Client) classifyPingError(err error) error {
	if c.dialect != SQLite {
		return err
	}
	if _, serr := os.Stat(c.cfg.Path); errors.Is(serr, fs.ErrNotExist) {
		return resilience.Permanent(fmt.Errorf("database file %s: %w", c.cfg.Path, serr))
	}
	return err
}

// NewFromDB wraps an already opened handle.
func NewFromDB(db *sql.DB, dialect Dialect) *Client {
	return &Client{
		DB:      db,
		dialect: dialect,
		logger:  logger.WithComponent("database").With("driver", string(dialect)),
	}
}

// Dialect reports the SQL dialect of the underlying driver.
func (c *Client) Dialect() Dialect {
	return c.dialect
}

// QueryTimeout is the per-query deadline; zero means none.
func (c *Client) QueryTimeout() time.Duration {
	return c.cfg.QueryTimeout
}

// WithConn acquires a single connection for the duration of fn and always
// releases it, whether fn succeeds or not.
func (c *Client) WithConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := c.DB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquiring connection: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			c.logger.Warn("releasing connection failed", "error", cerr)
		}
	}()
	return fn(conn)
}

func (c *Client) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *Client) Close() error {
	return c.DB.Close()
}
