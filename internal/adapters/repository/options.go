package repository

import (
	"context"
	"fmt"
)

// Store drivers accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type openConfig struct {
	sqlitePath  string
	postgresDSN string
}

// Option applies a configuration option to Open.
type Option func(*openConfig)

// WithSQLitePath sets the SQLite database file.
func WithSQLitePath(path string) Option {
	return func(c *openConfig) {
		if path != "" {
			c.sqlitePath = path
		}
	}
}

// WithPostgresDSN sets the Postgres connection string.
func WithPostgresDSN(dsn string) Option {
	return func(c *openConfig) {
		c.postgresDSN = dsn
	}
}

// Open returns the store for driver.
func Open(ctx context.Context, driver string, opts ...Option) (RecordStore, error) {
	cfg := openConfig{sqlitePath: "pulse.db"}
	for _, opt := range opts {
		opt(&cfg)
	}

	switch driver {
	case DriverMemory, "":
		return NewMemoryStore(), nil
	case DriverSQLite:
		return NewSQLiteStore(ctx, cfg.sqlitePath)
	case DriverPostgres:
		if cfg.postgresDSN == "" {
			return nil, fmt.Errorf("%w: postgres requires a dsn", ErrUnknownDriver)
		}
		return NewPostgresStore(ctx, cfg.postgresDSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
