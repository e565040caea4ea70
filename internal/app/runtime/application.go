// Package runtime wires configuration, storage, collaborators, and the HTTP
// server into a runnable application.
package runtime

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	app "github.com/blackpeopleeats/platform/internal/app"
	"github.com/blackpeopleeats/platform/internal/app/httpapi"
	"github.com/blackpeopleeats/platform/internal/app/metrics"
	"github.com/blackpeopleeats/platform/internal/app/services/checkout"
	"github.com/blackpeopleeats/platform/internal/app/services/highlights"
	"github.com/blackpeopleeats/platform/internal/app/storage"
	"github.com/blackpeopleeats/platform/internal/app/storage/memory"
	"github.com/blackpeopleeats/platform/internal/app/storage/postgres"
	"github.com/blackpeopleeats/platform/internal/config"
	"github.com/blackpeopleeats/platform/internal/middleware"
	"github.com/blackpeopleeats/platform/pkg/logger"
)

// Application manages the server lifecycle.
type Application struct {
	cfg    *config.Config
	log    *logger.Logger
	app    *app.Application
	server *http.Server
	db     *sql.DB
}

// NewApplication constructs an application from the environment.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewApplicationWithConfig(cfg)
}

// NewApplicationWithConfig constructs an application from an explicit
// configuration.
func NewApplicationWithConfig(cfg *config.Config) (*Application, error) {
	log := logger.New(logger.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		FilePrefix: cfg.Logging.FilePrefix,
	})

	var stores app.Stores
	var db *sql.DB
	if cfg.Database.DSN != "" {
		opened, err := openDatabase(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := postgres.Migrate(opened); err != nil {
			opened.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		store := postgres.New(opened)
		stores = app.Stores{Restaurants: store, Users: store, Posts: store}
		db = opened
		log.WithField("driver", cfg.Database.Driver).Info("using relational store")
	} else {
		mem := memory.New()
		stores = app.Stores{Restaurants: mem, Users: mem, Posts: mem}
		log.Warn("DATABASE_URL not set; using in-memory store")
	}

	collabs := app.Collaborators{}
	if cfg.Checkout.StripeSecretKey != "" {
		collabs.Checkout = checkout.NewStripeProvider(cfg.Checkout.StripeSecretKey, cfg.Checkout.StripeEndpoint, cfg.Checkout.AppURL)
		log.Info("stripe checkout provider enabled")
	} else {
		log.Warn("STRIPE_SECRET_KEY not set; checkout sessions are mocked")
	}
	if cfg.Highlight.GeminiAPIKey != "" {
		collabs.Highlights = highlights.NewGeminiProvider(
			cfg.Highlight.GeminiAPIKey,
			cfg.Highlight.GeminiEndpoint,
			cfg.Highlight.Model,
			time.Duration(cfg.Highlight.TimeoutSeconds)*time.Second,
		)
		log.WithField("model", cfg.Highlight.Model).Info("gemini highlight provider enabled")
	} else {
		log.Warn("GEMINI_API_KEY not set; highlights are served from the fallback table")
	}

	application, err := app.New(stores, collabs, log)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, err
	}

	if err := storage.Seed(context.Background(), stores.Restaurants, stores.Users, stores.Posts); err != nil {
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("seed stores: %w", err)
	}

	handler := buildHandler(cfg, application, log)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Application{
		cfg:    cfg,
		log:    log,
		app:    application,
		server: server,
		db:     db,
	}, nil
}

// App exposes the wired application services.
func (a *Application) App() *app.Application {
	return a.app
}

// Run starts the HTTP server and blocks until the context is cancelled or the
// server fails.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.log.Infof("HTTP server listening on %s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server and closes the database.
func (a *Application) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.WithError(err).Warn("error closing database connection")
		}
	}
	return nil
}

func buildHandler(cfg *config.Config, application *app.Application, log *logger.Logger) http.Handler {
	handler := httpapi.NewHandler(application, cfg.Server.StaticDir)
	handler = metrics.InstrumentHandler(handler)

	limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitPerSec, cfg.HTTP.RateLimitBurst, log)
	limiter.StartCleanup(time.Minute)
	handler = limiter.Handler(handler)

	handler = middleware.NewCORSMiddleware(cfg.HTTP.AllowedOrigins()).Handler(handler)
	handler = middleware.NewRequestIDMiddleware(log).Handler(handler)

	if cfg.HTTP.RequestTimeoutSec > 0 {
		handler = http.TimeoutHandler(handler, time.Duration(cfg.HTTP.RequestTimeoutSec)*time.Second, `{"error":"request timed out"}`)
	}
	return handler
}

func openDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
