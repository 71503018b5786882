package main

import (
	"fmt"
	"os"

	"github.com/actuallystonmai/product-recommendation-service/internal/config"
	"github.com/actuallystonmai/product-recommendation-service/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootCmd runs the HTTP service when invoked without a subcommand.
var rootCmd = &cobra.Command{
	Use:           "server",
	Short:         "Product recommendation service",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and builds the root logger every command shares.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, logger, nil
}
