package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dukerupert/nahl/internal"
	"github.com/dukerupert/nahl/internal/cart"
	"github.com/dukerupert/nahl/internal/catalog"
	"github.com/dukerupert/nahl/internal/cookie"
	"github.com/dukerupert/nahl/internal/domain"
	"github.com/dukerupert/nahl/internal/handler"
	"github.com/dukerupert/nahl/internal/handler/storefront"
	"github.com/dukerupert/nahl/internal/middleware"
	"github.com/dukerupert/nahl/internal/router"
	"github.com/dukerupert/nahl/internal/routes"
	"github.com/dukerupert/nahl/internal/service"
	"github.com/dukerupert/nahl/internal/storage"
	"github.com/dukerupert/nahl/internal/telemetry"
	"github.com/dukerupert/nahl/internal/worker"
	"github.com/dukerupert/nahl/web"
)

const (
	catalogTimeout  = 10 * time.Second
	shutdownTimeout = 20 * time.Second
	staticMaxAge    = 3600
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)

	flushSentry, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:              cfg.Sentry.DSN,
		Enabled:          cfg.Sentry.Enabled,
		Environment:      cfg.Sentry.Environment,
		Release:          cfg.Sentry.Release,
		SampleRate:       cfg.Sentry.SampleRate,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
		Debug:            cfg.Sentry.Debug,
	}, logger)
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	defer flushSentry()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := middleware.NewMetrics("nahl", registry)
	businessMetrics := telemetry.NewBusinessMetrics("nahl", registry)

	// Storage backs the catalog document and resolves asset URLs
	store, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}
	logger.Info("Storage initialized", "provider", cfg.Storage.Provider)

	// Catalog source
	decoder := catalog.NewDecoder(logger)
	var source catalog.Source
	switch cfg.Catalog.Source {
	case "http":
		client := &http.Client{Timeout: catalogTimeout, Transport: &telemetry.HTTPTransport{}}
		source = catalog.NewHTTPSource(client, cfg.Catalog.URL, decoder)
		logger.Info("Catalog source configured", "source", "http", "url", cfg.Catalog.URL)
	default:
		source = catalog.NewStorageSource(store, cfg.Catalog.Key, decoder)
		logger.Info("Catalog source configured", "source", "storage", "key", cfg.Catalog.Key)
	}
	source = telemetry.ObserveSource(source, businessMetrics)

	checks := map[string]handler.HealthCheck{}

	// Cart store
	hub := cart.NewHub()
	var (
		carts   domain.Cart
		sweeper worker.Sweeper
	)
	switch cfg.Cart.Store {
	case "postgres":
		logger.Info("Connecting to database...")
		sqlDB, err := sql.Open("pgx", cfg.Cart.DatabaseURL)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer sqlDB.Close()

		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}

		logger.Info("Running database migrations...")
		if err := internal.RunMigrations(sqlDB); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("Database migrations completed successfully")

		pool, err := pgxpool.New(ctx, cfg.Cart.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to create connection pool: %w", err)
		}
		defer pool.Close()

		pgStore := cart.NewPostgresStore(pool, hub)
		carts, sweeper = pgStore, pgStore
		checks["database"] = pool.Ping
	default:
		memStore := cart.NewMemoryStore(hub)
		carts, sweeper = memStore, memStore
	}
	logger.Info("Cart store initialized", "store", cfg.Cart.Store)

	// Cross-instance cart change relay
	if cfg.Cart.NATSURL != "" {
		nc, err := nats.Connect(cfg.Cart.NATSURL, nats.Name("nahl"))
		if err != nil {
			return fmt.Errorf("nats connection failed: %w", err)
		}
		defer nc.Drain()

		bridge := cart.NewNATSBridge(nc, hub, logger)
		if err := bridge.Start(); err != nil {
			return err
		}
		defer bridge.Close()

		checks["nats"] = func(context.Context) error {
			if status := nc.Status(); status != nats.CONNECTED {
				return fmt.Errorf("nats %s", status)
			}
			return nil
		}
		logger.Info("Cart changes relayed over NATS", "url", cfg.Cart.NATSURL)
	}

	// Idle cart retention
	sweeperWorker := worker.NewWorker(sweeper, worker.Config{
		Interval:  cfg.Cart.SweepInterval,
		Retention: cfg.Cart.Retention,
	}, logger)
	go func() {
		if err := sweeperWorker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("worker stopped", "error", err)
		}
	}()

	catalogService := service.NewCatalogService(source)

	// Load templates with renderer
	logger.Info("Loading templates...")
	renderer, err := handler.NewRenderer(web.Templates(), web.TemplatesDir, handler.TemplateFuncs(store.URL), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize renderer: %w", err)
	}
	logger.Info("Templates loaded successfully")

	// ==========================================================================
	// Build route dependencies
	// ==========================================================================

	deps := storefront.Deps{
		Catalog:  catalogService,
		Cart:     carts,
		Renderer: renderer,
		Metrics:  businessMetrics,
		Logger:   logger,
	}

	cartLimiter := middleware.NewRateLimiter(middleware.CartRateLimiterConfig())
	defer cartLimiter.Stop()

	storefrontDeps := routes.StorefrontDeps{
		HomeHandler:    storefront.NewHomeHandler(deps),
		HerbsHandler:   storefront.NewListingHandler(catalog.Herbs, "Herbs", deps),
		HoneyHandler:   storefront.NewListingHandler(catalog.Honey, "Honey", deps),
		ProductHandler: storefront.NewProductHandler(deps),
		CartHandler:    storefront.NewCartHandler(deps),
		CartLimiter:    cartLimiter.Middleware,
		NotFound:       storefront.NotFound(deps),
	}

	systemDeps := routes.SystemDeps{
		Health:       handler.Health(5*time.Second, checks),
		Metrics:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		Static:       web.Static(),
		StaticMaxAge: staticMaxAge,
	}

	// ==========================================================================
	// Initialize middleware
	// ==========================================================================

	sessionCookie := cookie.NewConfig(cfg.Session.CookieName, cfg.Session.Secure)
	securityConfig := middleware.DefaultSecurityHeadersConfig(cfg.Env == "prod")
	requestLogger := func(r *http.Request) *slog.Logger {
		return middleware.GetLogger(r.Context(), logger)
	}

	r := router.New(
		middleware.RequestID,
		middleware.Session(sessionCookie),
		middleware.WithRequestLogger(logger),
		router.Recovery(requestLogger),
		router.Logger(requestLogger),
		telemetry.SentryMiddleware(),
		middleware.SecurityHeaders(securityConfig),
		httpMetrics.Middleware,
	)

	routes.RegisterSystemRoutes(r, systemDeps)
	routes.RegisterStorefrontRoutes(r, storefrontDeps)

	// ==========================================================================
	// Start server
	// ==========================================================================

	// Request contexts derive from baseCtx so open event streams end on shutdown.
	baseCtx, cancelRequests := context.WithCancel(context.Background())
	defer cancelRequests()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	cancelRequests()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info("Server stopped")

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
