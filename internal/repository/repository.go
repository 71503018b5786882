package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Connect opens a pool against url sized to poolSize connections.
func Connect(ctx context.Context, url string, poolSize int) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if poolSize > 0 {
		poolConfig.MaxConns = int32(poolSize)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return pool, nil
}

// WaitForDB pings the pool once per second until it answers or attempts run out.
func WaitForDB(ctx context.Context, pool *pgxpool.Pool, attempts int, logger *zap.Logger) error {
	for i := 0; i < attempts; i++ {
		if err := pool.Ping(ctx); err == nil {
			return nil
		}
		logger.Info("waiting for database", zap.Int("attempt", i+1), zap.Int("of", attempts))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return fmt.Errorf("database connection timeout after %ds", attempts)
}
