package main

import (
	"context"

	"github.com/actuallystonmai/product-recommendation-service/internal/repository"
	"github.com/actuallystonmai/product-recommendation-service/migrations"
	"github.com/actuallystonmai/product-recommendation-service/seeds"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert deterministic demo orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), func(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
			if err := migrations.Up(ctx, pool); err != nil {
				return err
			}
			repo := repository.New(pool)

			count, err := repo.CountOrders(ctx)
			if err != nil {
				return err
			}
			if count > 0 && !seedForce {
				logger.Info("database already seeded, skipping", zap.Int("orders", count))
				return nil
			}
			return seeds.Setup(ctx, repo, logger.Named("seed"))
		})
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "Replace existing orders")
}
