package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/middleware"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/server"
	"sales-dashboard/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"addr", cfg.Address(),
		"dataset", cfg.Dataset.CSVFile,
	)

	shutdownTracing, err := observability.InitTracing(cfg.Telemetry)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := buildHandler(ctx, cfg, logger)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server)
	gracefulServer.RegisterShutdownHook("tracing", shutdownTracing)

	if err := gracefulServer.ListenAndServe(ctx); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}

// buildHandler loads the dataset once and wires the middleware chain. A load
// failure does not stop the process: the server then answers every route with
// the load error instead of a dashboard.
func buildHandler(ctx context.Context, cfg *config.Config, logger *slog.Logger) http.Handler {
	analytics, loadErr := loadAnalytics(ctx, cfg, logger)

	srv := server.NewServer(server.Options{
		Analytics:  analytics,
		LoadErr:    loadErr,
		Logger:     logger,
		TableLimit: cfg.Dataset.TableLimit,
	})

	rateLimiter := middleware.NewRateLimiter(cfg.Security)
	go rateLimiter.Run(ctx)

	chain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security.AllowedOrigins),
		middleware.TrustedProxy(cfg.Security.TrustedProxies),
		middleware.RateLimit(rateLimiter, logger),
	)

	return chain(srv)
}

func loadAnalytics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*services.Analytics, error) {
	loadCtx, cancel := context.WithTimeout(ctx, cfg.Dataset.LoadTimeout)
	defer cancel()

	start := time.Now()
	dataset, err := services.LoadDataset(loadCtx, cfg.Dataset.CSVFile)
	if err != nil {
		logger.Error("failed to load dataset", "path", cfg.Dataset.CSVFile, "error", err)
		return nil, err
	}

	first, last := dataset.DateSpan()
	logger.Info("dataset loaded",
		"rows", dataset.Len(),
		"categories", len(dataset.Categories()),
		"regions", len(dataset.Regions()),
		"first_order", first.Format(time.DateOnly),
		"last_order", last.Format(time.DateOnly),
		"duration", time.Since(start),
	)

	return services.NewAnalytics(dataset, logger), nil
}
