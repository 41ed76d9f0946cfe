package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/tournevent/shiprate/internal/graphql"
	"github.com/tournevent/shiprate/internal/server"
	"github.com/tournevent/shiprate/internal/telemetry"
	"go.uber.org/zap"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "shiprate",
	Short:   "Shipping rate service - per-store zones and rates over GraphQL",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the GraphQL server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, quoteCmd, checkCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Initialize telemetry
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tracerShutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
	} else {
		defer tracerShutdown(context.Background())
	}

	// Store settings and the calculator cache
	repo, closeRepo, err := initRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	registry := initRegistry(cfg, repo)
	if cfg.PreloadStores {
		if err := registry.Preload(ctx); err != nil {
			logger.Warn("Some stores failed to preload", zap.Error(err))
		}
		logger.Info("Preloaded stores", zap.Int("count", registry.Count()))
	}

	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)
	resolver := graphql.NewResolver(registry, logger, metrics, telemetry.Tracer(cfg.ServiceName))

	logger.Info("Starting shipping rate service",
		zap.Int("port", cfg.Port),
		zap.String("version", cfg.Version),
		zap.String("settings_source", cfg.SettingsSource),
	)

	// Start HTTP server
	srv := server.New(server.Config{
		Port:           cfg.Port,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, graphql.NewExecutor(resolver), logger, prometheus.DefaultGatherer)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
