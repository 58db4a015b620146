// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carterperez-dev/nexus/internal/activity"
	"github.com/carterperez-dev/nexus/internal/auth"
	"github.com/carterperez-dev/nexus/internal/billing"
	"github.com/carterperez-dev/nexus/internal/config"
	"github.com/carterperez-dev/nexus/internal/core"
	"github.com/carterperez-dev/nexus/internal/dashboard"
	"github.com/carterperez-dev/nexus/internal/health"
	"github.com/carterperez-dev/nexus/internal/mail"
	"github.com/carterperez-dev/nexus/internal/middleware"
	"github.com/carterperez-dev/nexus/internal/organization"
	"github.com/carterperez-dev/nexus/internal/server"
	"github.com/carterperez-dev/nexus/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "", "path to optional YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	telemetry, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if err != nil {
		logger.Warn("failed to initialize telemetry", "error", err)
	} else if telemetry.Exporting() {
		logger.Info("OpenTelemetry tracer initialized",
			"endpoint", cfg.Otel.Endpoint,
		)
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	docs, err := core.NewMongo(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	if err := activity.EnsureIndexes(ctx, docs.DB); err != nil {
		return err
	}
	logger.Info("mongo connected", "database", cfg.Mongo.Database)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	generated, err := auth.EnsureKeys(cfg.JWT)
	if err != nil {
		return err
	}
	if generated {
		logger.Warn("generated development signing keys",
			"private_key_path", cfg.JWT.PrivateKeyPath,
		)
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.KeyID(),
	)

	mailer, err := mail.NewSender(mail.New(cfg.Mail, logger), cfg.App.FrontendURL)
	if err != nil {
		return err
	}

	processor := billing.NewProcessor(cfg.Billing)
	if !processor.Enabled() {
		logger.Warn("payment processor not configured, billing features disabled")
	}

	activityRepo := activity.NewRepository(docs.DB)
	recorder := activity.NewRecorder(activityRepo)

	userRepo := user.NewRepository(db.DB)
	orgRepo := organization.NewRepository(db.DB)
	authRepo := auth.NewRepository(db.DB)
	catalog := billing.NewCatalog(cfg.Billing)

	orgSvc := organization.NewService(orgRepo, userRepo, authRepo, db, mailer, recorder)
	userSvc := user.NewService(userRepo, orgSvc, authRepo, db, recorder)
	authSvc := auth.NewService(authRepo, jwtManager, userRepo, orgRepo, db, mailer, recorder)
	billingSvc := billing.NewService(orgRepo, catalog, processor, redis, recorder, cfg.App.FrontendURL)
	dashboardSvc := dashboard.NewService(userRepo, activityRepo, catalog, redis)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "postgres", Checker: db},
		health.Dependency{Name: "mongo", Checker: docs},
		health.Dependency{Name: "redis", Checker: redis},
	)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
		ServiceName:   cfg.Otel.ServiceName,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics)
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/.well-known/jwks.json", jwtManager.JWKSHandler())

	resolver := auth.NewIdentityResolver(userRepo, orgRepo)
	planLimiter := middleware.PlanRateLimiter(redis.Client, middleware.DefaultPlanLimits)

	// every authenticated route shares its organization's plan budget
	authenticated := func(next http.Handler) http.Handler {
		return middleware.Authenticator(jwtManager, resolver)(planLimiter(next))
	}
	optionalAuth := middleware.OptionalAuth(jwtManager, resolver)

	authRoutes := auth.Routes{
		Authenticator: authenticated,
		OptionalAuth:  optionalAuth,
		Limiter: middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.AuthRequests,
				cfg.RateLimit.AuthBurst,
			),
			KeyFunc: middleware.KeyByIPAndPath("auth"),
		}).Handler,
		StrictLimiter: middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerHour(
				cfg.RateLimit.ResetRequests,
				cfg.RateLimit.ResetRequests,
			),
			KeyFunc: middleware.KeyByIPAndPath("reset"),
		}).Handler,
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Banner)
		auth.NewHandler(authSvc).RegisterRoutes(r, authRoutes)
		user.NewHandler(userSvc).RegisterRoutes(r, authenticated)
		organization.NewHandler(orgSvc).RegisterRoutes(r, authenticated)
		billing.NewHandler(billingSvc).RegisterRoutes(r, authenticated, optionalAuth)
		dashboard.NewHandler(dashboardSvc).RegisterRoutes(r, authenticated)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown error", "error", err)
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := docs.Close(shutdownCtx); err != nil {
		logger.Error("mongo close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
