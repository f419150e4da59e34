// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/statusdeck/statusdeck/internal/catalog"
	catalogpostgres "github.com/statusdeck/statusdeck/internal/catalog/postgres"
	"github.com/statusdeck/statusdeck/internal/chat"
	"github.com/statusdeck/statusdeck/internal/chat/discord"
	chatpostgres "github.com/statusdeck/statusdeck/internal/chat/postgres"
	"github.com/statusdeck/statusdeck/internal/config"
	"github.com/statusdeck/statusdeck/internal/domain"
	"github.com/statusdeck/statusdeck/internal/identity"
	"github.com/statusdeck/statusdeck/internal/identity/jwt"
	identitypostgres "github.com/statusdeck/statusdeck/internal/identity/postgres"
	"github.com/statusdeck/statusdeck/internal/incidents"
	incidentspostgres "github.com/statusdeck/statusdeck/internal/incidents/postgres"
	"github.com/statusdeck/statusdeck/internal/pkg/ctxlog"
	"github.com/statusdeck/statusdeck/internal/pkg/httputil"
	"github.com/statusdeck/statusdeck/internal/pkg/metrics"
	"github.com/statusdeck/statusdeck/internal/pkg/postgres"
	"github.com/statusdeck/statusdeck/internal/status"
	"github.com/statusdeck/statusdeck/internal/uptime"
	uptimepostgres "github.com/statusdeck/statusdeck/internal/uptime/postgres"
	"github.com/statusdeck/statusdeck/internal/version"
)

// App represents the application instance.
type App struct {
	config        *config.Config
	logger        *slog.Logger
	db            *pgxpool.Pool
	server        *http.Server
	metricsServer *http.Server
	metricsCancel context.CancelFunc
	checker       *status.Checker
	notifier      *chat.Notifier
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	logger := initLogger(cfg.Log)

	connectCtx, connectCancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	defer connectCancel()

	db, err := postgres.Connect(connectCtx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnectAttempts: cfg.Database.ConnectAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if cfg.Database.Migrate {
		if err := postgres.Migrate(cfg.Database.URL); err != nil {
			db.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	backgroundCtx, backgroundCancel := context.WithCancel(context.Background())

	app := &App{
		config:        cfg,
		logger:        logger,
		db:            db,
		metricsCancel: backgroundCancel,
	}

	go metrics.WatchDBPool(backgroundCtx, app.db, 15*time.Second)

	router := app.setupRouter()

	if cfg.Checker.Enabled {
		app.checker.Start(backgroundCtx)
	}

	app.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Metrics server on separate port
	metricsRouter := chi.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.Handler())

	app.metricsServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler:           metricsRouter,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return app, nil
}

// Run starts the HTTP servers.
func (a *App) Run() error {
	// Start metrics server in background
	go func() {
		a.logger.Info("starting metrics server",
			"host", a.config.Server.Host,
			"port", a.config.Server.MetricsPort,
		)
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("metrics server error", "error", err)
		}
	}()

	// Start main server
	a.logger.Info("starting server",
		"host", a.config.Server.Host,
		"port", a.config.Server.Port,
	)

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down servers")

	a.metricsCancel()

	// Stop the status checker first so no refresh is in flight while
	// the servers drain.
	if a.checker != nil && a.config.Checker.Enabled {
		a.checker.Stop()
	}

	// Shutdown both servers in parallel
	var wg sync.WaitGroup
	var errs []error
	var mu sync.Mutex

	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := a.server.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown server: %w", err))
			mu.Unlock()
		}
	}()

	go func() {
		defer wg.Done()
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown metrics server: %w", err))
			mu.Unlock()
		}
	}()

	wg.Wait()

	a.db.Close()

	return errors.Join(errs...)
}

// Router returns the HTTP handler for testing.
func (a *App) Router() http.Handler {
	return a.server.Handler
}

// Notifier returns the chat notifier instance. Used in tests.
func (a *App) Notifier() *chat.Notifier {
	return a.notifier
}

func (a *App) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware must be first to measure full request time
	r.Use(httputil.MetricsMiddleware)

	// CORS must be early to handle preflight requests before other middleware
	r.Use(httputil.CORSMiddleware(a.config.CORS.AllowedOrigins))
	r.Use(middleware.RequestID)
	r.Use(httputil.RequestLoggerMiddleware(a.logger))
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", a.healthzHandler)
	r.Get("/readyz", a.readyzHandler)
	r.Get("/version", a.versionHandler)

	r.Get("/api/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-yaml")
		http.ServeFile(w, r, "api/openapi/openapi.yaml")
	})

	catalogRepo := catalogpostgres.NewRepository(a.db)
	catalogService := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(catalogService)

	statusHandler := status.NewHandler(catalogService)

	incidentsRepo := incidentspostgres.NewRepository(a.db)
	incidentsService := incidents.NewService(incidentsRepo)
	incidentsHandler := incidents.NewHandler(incidentsService)

	uptimeRepo := uptimepostgres.NewRepository(a.db)
	uptimeService := uptime.NewService(uptimeRepo)
	uptimeHandler := uptime.NewHandler(uptimeService, catalogService)

	identityRepo := identitypostgres.NewRepository(a.db)
	jwtAuth := jwt.NewAuthenticator(jwt.Config{
		SecretKey:           a.config.JWT.SecretKey,
		AccessTokenDuration: a.config.JWT.AccessTokenDuration,
	})
	identityService := identity.NewService(identityRepo, jwtAuth, a.config.JWT.RefreshTokenDuration)
	identityHandler := identity.NewHandler(identityService)

	chatRepo := chatpostgres.NewRepository(a.db)
	a.notifier = chat.NewNotifier(chatRepo, a.chatClientFactory(), domain.ChatSettings{
		BotToken:  a.config.Chat.BotToken,
		ChannelID: a.config.Chat.ChannelID,
		Enabled:   a.config.Chat.Enabled,
	})
	chatHandler := chat.NewHandler(a.notifier, catalogService, identityService)

	a.checker = status.NewChecker(status.CheckerConfig{
		Interval: a.config.Checker.Interval,
	}, catalogService, uptimeService, a.mirrorTick())

	r.Route("/api/v1", func(r chi.Router) {
		identityHandler.RegisterRoutes(r)

		statusHandler.RegisterPublicRoutes(r)
		catalogHandler.RegisterPublicRoutes(r)
		incidentsHandler.RegisterPublicRoutes(r)
		uptimeHandler.RegisterPublicRoutes(r)
		chatHandler.RegisterCommandRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(httputil.AuthMiddleware(identityService))

			identityHandler.RegisterProtectedRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(httputil.RequireRole(domain.RoleAdmin))
				catalogHandler.RegisterRoutes(r)
				incidentsHandler.RegisterRoutes(r)
				chatHandler.RegisterAdminRoutes(r)
			})
		})
	})

	return r
}

// chatClientFactory builds platform clients for the configured API base
// URL. The token varies with the saved settings, everything else is
// static configuration.
func (a *App) chatClientFactory() chat.ClientFactory {
	baseURL := a.config.Chat.APIBaseURL
	timeout := a.config.Chat.RequestTimeout
	rateLimit := a.config.Chat.RateLimit

	return func(token string) chat.PlatformClient {
		return discord.NewClient(discord.Config{
			BaseURL:   baseURL,
			Token:     token,
			Timeout:   timeout,
			RateLimit: rateLimit,
		})
	}
}

// mirrorTick feeds each check cycle into the chat mirror: alert on
// degradation, then bring the live status message up to date.
func (a *App) mirrorTick() status.TickFunc {
	return func(ctx context.Context, services []domain.Service, aggregate domain.SystemStatus) {
		check := a.notifier.CheckAndMaybeAlert(ctx, aggregate)
		if check.Notified {
			a.logger.Info("status check alerted", "status", aggregate)
		}
		a.notifier.RefreshLiveStatus(ctx, services, aggregate)
	}
}

func (a *App) healthzHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) readyzHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		ctxlog.FromContext(r.Context()).Error("readiness check failed", "error", err)
		httputil.Text(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) versionHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"commit":     version.GitCommit,
		"build_date": version.BuildDate,
	})
}

func initLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
