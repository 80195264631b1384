// Package app wires the application together: configuration, logging, the
// dataset service, the HTTP router and graceful shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"salespulse/internal/config"
	"salespulse/internal/dataprocessing"
	apierrors "salespulse/internal/errors"
	"salespulse/internal/infrastructure"
	custommw "salespulse/internal/middleware"
	"salespulse/internal/services"
	handlers "salespulse/internal/transport/http"
)

const (
	// Version is the application version reported at startup.
	Version = "1.0.0"
	// AppName is the human-readable application name.
	AppName = "SalesPulse"
)

// Application represents the main application container
type Application struct {
	Config         *config.Config
	Router         *chi.Mux
	Server         *http.Server
	DatasetService *services.DatasetService
	Metrics        *infrastructure.HTTPMetrics
	Logger         *slog.Logger
}

// NewApplication creates a new application instance with dependency injection
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", Version),
		slog.Int("port", cfg.Server.Port))

	app := &Application{
		Config:  cfg,
		Logger:  logger,
		Metrics: infrastructure.NewHTTPMetrics(),
		DatasetService: services.NewDatasetService(logger, dataprocessing.ParserConfig{
			SampleLines: cfg.Ingest.SampleLines,
		}),
	}
	app.setupRouter()

	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return app, nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(custommw.RequestID)
		r.Use(custommw.StructuredLogger(a.Logger))
		r.Use(custommw.Recoverer(a.Logger))
		r.Use(custommw.Metrics(a.Metrics))
		r.Use(custommw.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		if a.Config.Server.RateLimit.Enabled {
			r.Use(custommw.NewRateLimiter(
				a.Config.Server.RateLimit.RPS,
				a.Config.Server.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		errorHandler := apierrors.NewErrorHandler(a.Logger)
		datasetHandler := handlers.NewDatasetHandler(a.DatasetService, a.Logger, errorHandler, a.Config.Ingest.MaxUploadBytes)
		analyticsHandler := handlers.NewAnalyticsHandler(a.DatasetService, a.Logger, errorHandler)
		healthHandler := handlers.NewHealthHandler(a.DatasetService)

		r.Route("/api/v1", func(r chi.Router) {
			r.Mount("/dataset", datasetHandler.Routes())
			r.Mount("/", analyticsHandler.Routes())
			r.Mount("/healthz", healthHandler.Routes())
		})
	})

	// Scrape endpoint stays outside the instrumented middleware group.
	r.Handle("/metrics", a.Metrics.Handler())

	a.Router = r
}

// Run starts the HTTP server and blocks until shutdown.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("HTTP server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return a.Stop(context.Background())
	}
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	infrastructure.CloseLogFile()
	return nil
}
