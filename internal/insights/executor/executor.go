// Package executor runs endpoint queries against the customer database and
// turns the rows into ordered records.
package executor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/customer-insights/internal/insights/query"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/database"
	apperrors "github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/logger"
)

type Executor struct {
	db      *database.Client
	timeout time.Duration
	logger  *slog.Logger
}

func New(db *database.Client) *Executor {
	return &Executor{
		db:      db,
		timeout: db.QueryTimeout(),
		logger:  logger.WithComponent("query-executor"),
	}
}

// Run executes q on a connection acquired for this call alone and released
// before returning. On success the slice is never nil. Every failure is a
// *errors.QueryError.
func (e *Executor) Run(ctx context.Context, q query.Query) ([]Record, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	var records []Record
	err := e.db.WithConn(ctx, func(conn *sql.Conn) error {
		var err error
		records, err = collect(ctx, conn, q)
		return err
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s: %w", apperrors.ErrTimeout, e.timeout, err)
		}
		logger.FromContext(ctx).Error("query failed",
			"query", q.Name,
			"params", len(q.Params),
			"error", err,
		)
		return nil, &apperrors.QueryError{Query: q.Name, Err: err}
	}

	logger.FromContext(ctx).Debug("query completed",
		"query", q.Name,
		"records", len(records),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return records, nil
}

func collect(ctx context.Context, conn *sql.Conn, q query.Query) ([]Record, error) {
	rows, err := conn.QueryContext(ctx, q.SQL, q.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	records := make([]Record, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		for i, v := range values {
			// Drivers hand text and numeric types back as bytes.
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		records = append(records, NewRecord(columns, values))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return records, nil
}
