package main

import (
	"context"
	"fmt"

	"github.com/tournevent/shiprate/internal/config"
	"github.com/tournevent/shiprate/internal/store"
	"github.com/tournevent/shiprate/internal/telemetry"
	"github.com/tournevent/shiprate/pkg/shipping"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

func newCLILogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewCLILogger(level)
}

func initTracer(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return func(context.Context) error { return nil }, nil
	}

	_, shutdown, err := telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Attributes()...)
	return shutdown, err
}

// initRepository opens the configured settings source. The returned function
// releases it.
func initRepository(ctx context.Context, cfg *config.Config) (store.Repository, func(), error) {
	switch cfg.SettingsSource {
	case config.SourcePostgres:
		pool, err := store.OpenPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store.NewPostgresRepository(pool), pool.Close, nil
	case config.SourceFile:
		return store.NewFileRepository(cfg.SettingsDir), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown settings source %q", cfg.SettingsSource)
}

func initRegistry(cfg *config.Config, repo store.Repository) *store.Registry {
	return store.NewRegistry(repo,
		store.WithDefaults(storeDefaults(cfg)),
		store.WithCache(cfg.CacheTTL, cfg.CacheCleanupInterval),
	)
}

func storeDefaults(cfg *config.Config) store.Defaults {
	return store.Defaults{
		Currency:   cfg.DefaultCurrency,
		Country:    cfg.DefaultCountry,
		WeightUnit: shipping.WeightUnit(cfg.DefaultWeightUnit),
	}
}
