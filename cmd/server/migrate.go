package main

import (
	"context"
	"fmt"

	"github.com/actuallystonmai/product-recommendation-service/internal/config"
	"github.com/actuallystonmai/product-recommendation-service/internal/repository"
	"github.com/actuallystonmai/product-recommendation-service/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate up|down",
	Short:     "Apply or drop the order-history schema",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), func(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
			if args[0] == "down" {
				if err := migrations.Down(ctx, pool); err != nil {
					return err
				}
				logger.Info("migrations dropped")
				return nil
			}
			if err := migrations.Up(ctx, pool); err != nil {
				return err
			}
			logger.Info("migrations applied")
			return nil
		})
	},
}

// withDatabase connects to DATABASE_URL, waits for it and runs fn.
func withDatabase(ctx context.Context, fn func(context.Context, *pgxpool.Pool, *zap.Logger) error) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()
	if ctx == nil {
		ctx = context.Background()
	}
	return runWithDatabase(ctx, cfg, logger, fn)
}

func runWithDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger, fn func(context.Context, *pgxpool.Pool, *zap.Logger) error) error {
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}
	pool, err := repository.Connect(ctx, cfg.Database.URL, cfg.Database.PoolSize)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := repository.WaitForDB(ctx, pool, dbWaitAttempts, logger); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}
	return fn(ctx, pool, logger)
}
