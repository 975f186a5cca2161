package core

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" driver

	"github.com/JonMunkholm/rowmap/internal/config"
	"github.com/JonMunkholm/rowmap/internal/table"
)

// PgxSource runs queries on a PostgreSQL connection pool.
type PgxSource struct {
	pool *pgxpool.Pool
}

// NewPgxSource wraps an existing pool.
func NewPgxSource(pool *pgxpool.Pool) *PgxSource {
	return &PgxSource{pool: pool}
}

// Query runs sql and drains the rows into a result set.
func (s *PgxSource) Query(ctx context.Context, sql string, args ...any) (*table.ResultSet, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return table.FromPgxRows(rows)
}

// Close closes the pool.
func (s *PgxSource) Close() {
	s.pool.Close()
}

// SQLSource runs queries through database/sql. Used for the embedded
// sqlite3 and duckdb drivers.
type SQLSource struct {
	db *sql.DB
}

// NewSQLSource wraps an open database handle.
func NewSQLSource(db *sql.DB) *SQLSource {
	return &SQLSource{db: db}
}

// Query runs sql and drains the rows into a result set.
func (s *SQLSource) Query(ctx context.Context, query string, args ...any) (*table.ResultSet, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return table.FromSQLRows(rows)
}

// DB returns the underlying handle.
func (s *SQLSource) DB() *sql.DB {
	return s.db
}

// Close closes the database handle.
func (s *SQLSource) Close() {
	if err := s.db.Close(); err != nil {
		slog.Warn("close database", "error", err)
	}
}

// OpenSource connects to the database selected by cfg.Driver and verifies the
// connection. The returned function releases it.
func OpenSource(ctx context.Context, cfg config.DatabaseConfig) (Source, func(), error) {
	switch cfg.Driver {
	case config.DriverPgx, "":
		poolConfig, err := pgxpool.ParseConfig(cfg.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse database URL: %w", err)
		}

		poolConfig.MaxConns = int32(cfg.MaxConns)
		poolConfig.MinConns = int32(cfg.MinConns)
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping database: %w", err)
		}

		src := NewPgxSource(pool)
		return src, src.Close, nil

	case config.DriverSQLite, config.DriverDuckDB:
		db, err := sql.Open(cfg.Driver, cfg.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
		}

		db.SetMaxOpenConns(cfg.MaxConns)
		db.SetMaxIdleConns(cfg.MinConns)
		db.SetConnMaxLifetime(cfg.MaxConnLifetime)
		db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)

		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ping %s database: %w", cfg.Driver, err)
		}

		src := NewSQLSource(db)
		return src, src.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
