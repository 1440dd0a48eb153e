package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"basket-dashboard/internal/config"
	"basket-dashboard/internal/handlers"
	"basket-dashboard/internal/middleware"
	"basket-dashboard/internal/observability"
	"basket-dashboard/internal/server"
	"basket-dashboard/internal/services"
	"basket-dashboard/internal/ui/templates"
)

const (
	renderTimeout  = 10 * time.Second
	csvLoadTimeout = 30 * time.Second
	cacheMaxAge    = "public, max-age=300"
)

func newDashboardHandler(cfg *config.Config) http.HandlerFunc {
	props := templates.DashboardProps{
		Defaults:   cfg.Mining.Thresholds(),
		GraphRules: cfg.Mining.GraphRules,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", cacheMaxAge)
		if err := templates.Dashboard(props).Render(ctx, w); err != nil {
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

func newAnalysis(cfg *config.Config, logger *slog.Logger) (*services.Analysis, error) {
	return services.NewAnalysis(services.Options{
		Timeout:    cfg.Mining.Timeout,
		MaxLength:  cfg.Mining.MaxLength,
		CacheSize:  cfg.Mining.CacheSize,
		GraphRules: cfg.Mining.GraphRules,
	}, logger)
}

func newHandler(cfg *config.Config, analysis *services.Analysis, logger *slog.Logger) http.Handler {
	settings := handlers.Settings{
		Defaults:      cfg.Mining.Thresholds(),
		MaxUploadSize: cfg.Data.MaxUploadSize,
		UploadTimeout: cfg.Data.UploadTimeout,
	}
	templateHandlers := &server.TemplateHandlers{
		Dashboard: newDashboardHandler(cfg),
	}

	srv := server.NewServer(analysis, logger, settings, templateHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Observe(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	return middlewareChain(srv)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"config", cfg,
	)

	analysis, err := newAnalysis(cfg, logger)
	if err != nil {
		logger.Error("failed to create analysis service", "error", err)
		os.Exit(1)
	}

	// Without a configured file the dashboard starts empty and waits for an upload.
	if cfg.Data.CSVFile != "" {
		ctx, cancel := context.WithTimeout(context.Background(), csvLoadTimeout)
		_, err := analysis.LoadFromCSV(ctx, cfg.Data.CSVFile)
		cancel()
		if err != nil {
			logger.Error("failed to load CSV data", "file", cfg.Data.CSVFile, "error", err)
			os.Exit(1)
		}
	}

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, analysis, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("shutting down analysis service", "stats", analysis.Stats())
		return nil
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(context.Background()); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
