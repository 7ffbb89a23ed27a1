// Package store opens the two databases a run works with: the read-only
// SQLite source and the PostgreSQL destination pool.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"

	"github.com/JonMunkholm/moviesync/internal/config"
)

// SourceDSN returns the modernc.org/sqlite DSN opening path read-only.
func SourceDSN(path string) string {
	return "file:" + path + "?mode=ro&_pragma=query_only(1)"
}

// OpenSource opens the SQLite file read-only and checks it is readable.
// The caller must Close the returned handle.
func OpenSource(ctx context.Context, cfg config.SourceConfig) (*sql.DB, error) {
	if _, err := os.Stat(cfg.Path); err != nil {
		return nil, fmt.Errorf("open source %s: %w", cfg.Path, err)
	}

	db, err := sql.Open("sqlite", SourceDSN(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("open source %s: %w", cfg.Path, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping source %s: %w", cfg.Path, err)
	}

	return db, nil
}

// OpenDestination creates the PostgreSQL pool and verifies connectivity
// within cfg.ConnectTimeout. The caller must Close the returned pool.
func OpenDestination(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = int32(cfg.MinConns)
	}
	if cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
