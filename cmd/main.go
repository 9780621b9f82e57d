package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/UnknownOlympus/meridian/internal/config"
	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/UnknownOlympus/meridian/internal/pipeline"
	"github.com/UnknownOlympus/meridian/internal/repository"
	"github.com/UnknownOlympus/meridian/internal/server"
	"github.com/UnknownOlympus/meridian/internal/service"
	"github.com/UnknownOlympus/meridian/internal/source"
	"github.com/UnknownOlympus/meridian/internal/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	granularity, err := pipeline.ParseGranularity(cfg.Granularity)
	if err != nil {
		log.Fatalf("Invalid ranking granularity: %v", err)
	}

	providerConfig := source.ProviderConfig{
		Type:      source.ProviderType(cfg.Source.Type),
		Location:  cfg.Source.Location,
		Sheet:     cfg.Source.Sheet,
		Timeout:   cfg.Source.Timeout,
		RateLimit: cfg.Source.RateLimit,
		Logger:    logger,
	}

	// The database is only needed when orders are read from postgres.
	var health server.HealthChecker
	if providerConfig.Type == source.ProviderTypePostgres {
		dtb, dbErr := repository.NewDatabase(
			cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
		)
		if dbErr != nil {
			log.Fatalf("Failed to connect to DB: %v", dbErr)
		}
		defer dtb.Close()

		repo := repository.NewRepository(dtb, logger)
		providerConfig.Repository = repo
		health = repo
	}

	provider, err := source.NewProvider(providerConfig)
	if err != nil {
		log.Fatalf("Failed to create order source: %v", err)
	}

	logger.InfoContext(ctx, "Order source initialized", "type", cfg.Source.Type, "granularity", granularity)

	dashboardService := service.NewDashboardService(
		logger,
		provider,
		cfg.Source.Type, // Source name for metrics
		pipeline.New(granularity),
		appMetrics,
	)

	// A first render pass validates the source schema before serving.
	if _, err = dashboardService.Render(ctx); err != nil {
		if errors.Is(err, table.ErrMissingColumn) {
			log.Fatalf("Order table schema is invalid: %v", err)
		}
		logger.WarnContext(ctx, "Initial render pass failed, serving anyway", "error", err)
	}

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	dashboardServer := server.New(logger, dashboardService, health, reg)
	if err = dashboardServer.Run(ctx, cfg.Port); err != nil {
		logger.ErrorContext(ctx, "Dashboard server stopped with error", "error", err)
		return
	}

	// Log graceful shutdown completion.
	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelError,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)

		log.Error(
			"MERIDIAN_ENV was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
