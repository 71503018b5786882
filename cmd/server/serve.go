package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/actuallystonmai/product-recommendation-service/internal/auth"
	"github.com/actuallystonmai/product-recommendation-service/internal/collaborator"
	"github.com/actuallystonmai/product-recommendation-service/internal/config"
	"github.com/actuallystonmai/product-recommendation-service/internal/conversation"
	"github.com/actuallystonmai/product-recommendation-service/internal/generation"
	"github.com/actuallystonmai/product-recommendation-service/internal/handler"
	"github.com/actuallystonmai/product-recommendation-service/internal/metrics"
	"github.com/actuallystonmai/product-recommendation-service/internal/repository"
	"github.com/actuallystonmai/product-recommendation-service/internal/router"
	"github.com/actuallystonmai/product-recommendation-service/internal/service"
	"github.com/actuallystonmai/product-recommendation-service/migrations"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const dbWaitAttempts = 30

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", true, "Apply the order-history schema when a database is configured")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.NewCollector()
	deps := service.Deps{
		Verifier: auth.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.MaxTokenAge),
		Identity: collaborator.NewIdentityClient(cfg.Collaborators.UserServiceURL, cfg.Collaborators.IdentityTimeout, nil, logger),
		Catalog:  collaborator.NewCatalogClient(cfg.Collaborators.ProductServiceURL, cfg.Collaborators.CatalogTimeout, nil, logger),
		Metrics:  m,
		Logger:   logger,
	}

	// ------------ PostgreSQL (optional) ---------------
	if cfg.Database.URL != "" {
		pool, err := repository.Connect(ctx, cfg.Database.URL, cfg.Database.PoolSize)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := repository.WaitForDB(ctx, pool, dbWaitAttempts, logger); err != nil {
			return fmt.Errorf("database not ready: %w", err)
		}
		if migrateOnStart {
			if err := migrations.Up(ctx, pool); err != nil {
				return err
			}
		}
		deps.Orders = repository.New(pool)
		logger.Info("order history enabled")
	}

	// ------------ Redis (optional) ---------------
	if cfg.Redis.URL != "" {
		client, err := conversation.Connect(cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer client.Close()

		store := conversation.NewStore(client, cfg.Redis.HistoryTTL, cfg.Redis.HistoryTurns)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := store.Ping(pingCtx); err != nil {
			logger.Warn("redis unreachable at startup, transcripts will be retried per request", zap.Error(err))
		}
		cancel()
		deps.Transcripts = store
		logger.Info("chat transcripts enabled")
	}

	// ------------ Generation ---------------
	gateway, err := generation.New(ctx, cfg.Generation, m, logger)
	if err != nil {
		return err
	}
	deps.Gateway = gateway

	svc := service.NewService(deps, service.Options{
		CatalogLimit:      cfg.Collaborators.CatalogLimit,
		OrderHistoryLimit: cfg.Database.OrderHistoryLimit,
		Services: map[string]string{
			"product_service": cfg.Collaborators.ProductServiceURL,
			"user_service":    cfg.Collaborators.UserServiceURL,
		},
	})

	// ---------------- Server --------------------
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.Setup(handler.NewHandler(svc, logger), m, logger, cfg.Server),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return listenAndServe(ctx, srv, cfg.Server, logger)
}

func listenAndServe(ctx context.Context, srv *http.Server, cfg config.ServerConfig, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
