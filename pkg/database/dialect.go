package database

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/customer-insights/pkg/config"
)

// Dialect captures the placeholder and binding differences between drivers.
type Dialect string

const (
	SQLite   Dialect = config.DriverSQLite
	Postgres Dialect = config.DriverPostgres
)

// DialectFor maps a configured driver name to its Dialect.
func DialectFor(driver string) (Dialect, error) {
	switch Dialect(driver) {
	case SQLite, Postgres:
		return Dialect(driver), nil
	default:
		return "", fmt.Errorf("%w: unknown database driver %q", config.ErrInvalidConfig, driver)
	}
}

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	return string(d)
}

// Placeholder renders the bind marker for the parameter called name at the
// 1-based position.
func (d Dialect) Placeholder(name string, position int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(position)
	}
	return ":" + name
}

// Bind wraps value the way the driver expects for the matching placeholder.
// lib/pq has no named parameters, so postgres values stay positional.
func (d Dialect) Bind(name string, value any) any {
	if d == Postgres {
		return value
	}
	return sql.Named(name, value)
}
