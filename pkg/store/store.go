package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps the connection pool plus a short-lived read cache for
// day-window meeting queries.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
	days   *dayCache
}

// New connects to PostgreSQL and verifies the connection.
func New(ctx context.Context, databaseURL string, logger *slog.Logger) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Store{
		pool:   pool,
		logger: logger,
		days:   newDayCache(30*time.Second, logger),
	}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
