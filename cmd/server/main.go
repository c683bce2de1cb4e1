package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/seu-repo/appinventor-skill/internal/adapter/cache"
	"github.com/seu-repo/appinventor-skill/internal/adapter/external/report"
	"github.com/seu-repo/appinventor-skill/internal/adapter/http/fiber/handlers"
	"github.com/seu-repo/appinventor-skill/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/appinventor-skill/internal/adapter/queue"
	"github.com/seu-repo/appinventor-skill/internal/adapter/session"
	"github.com/seu-repo/appinventor-skill/internal/adapter/storage/postgres"
	"github.com/seu-repo/appinventor-skill/internal/adapter/vault"
	"github.com/seu-repo/appinventor-skill/internal/observability/logging"
	"github.com/seu-repo/appinventor-skill/internal/observability/telemetry"
	"github.com/seu-repo/appinventor-skill/internal/ports"
	"github.com/seu-repo/appinventor-skill/internal/service/auth"
	"github.com/seu-repo/appinventor-skill/internal/service/health"
	"github.com/seu-repo/appinventor-skill/internal/service/i18n"
	reportsvc "github.com/seu-repo/appinventor-skill/internal/service/report"
	"github.com/seu-repo/appinventor-skill/internal/service/skill"
	"github.com/seu-repo/appinventor-skill/pkg/config"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	// 2. Initialize Logger
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	defer logger.Sync()

	logger.Info("Starting App Inventor skill",
		zap.String("service", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	// 3. Overlay secrets from Vault
	if cfg.Vault.Enabled {
		secrets, err := vault.NewSecretManager(cfg.Vault, logger)
		if err != nil {
			logger.Fatal("Failed to create vault client", zap.Error(err))
		}
		vctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = secrets.Apply(vctx, cfg)
		cancel()
		if err != nil {
			logger.Fatal("Failed to load secrets from vault", zap.Error(err))
		}
	}

	// 4. Initialize OpenTelemetry (Distributed Tracing)
	tracerProvider, err := telemetry.InitTracer(cfg.OpenTelemetry, cfg.App.Version)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			logger.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	healthCfg := &health.Config{Version: cfg.App.Version}

	// 5. Session Store
	var store ports.SessionStore
	switch cfg.Session.Backend {
	case "redis":
		redisCache, err := cache.NewRedisCache(cfg.Redis, logger)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisCache.Close()
		healthCfg.Cache = redisCache
		store = session.NewCacheStore(redisCache, cfg.Session.TTL, logger)
	case "memory":
		localCache := cache.NewLocalCache(time.Minute, logger)
		defer localCache.Close()
		store = session.NewCacheStore(localCache, cfg.Session.TTL, logger)
	default:
		store = session.NewEnvelopeStore()
	}
	logger.Info("Session store ready", zap.String("backend", cfg.Session.Backend))

	// 6. Report audit trail (PostgreSQL)
	var reportRepo ports.ReportRepository
	if cfg.Database.URL != "" {
		db, err := postgres.NewConnection(cfg.Database, logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer postgres.Close(db)

		if cfg.Database.AutoMigrate {
			if err := postgres.RunMigrations(db); err != nil {
				logger.Fatal("Failed to run migrations", zap.Error(err))
			}
		}
		if sqlDB, err := db.DB(); err == nil {
			healthCfg.DB = sqlDB
		}
		reportRepo = postgres.NewReportRepository(db, logger)
	} else {
		logger.Info("No database configured, report audit trail disabled")
	}

	// 7. Report events (NATS or RabbitMQ)
	messageQueue, err := queue.New(cfg.Queue, logger)
	if err != nil {
		logger.Fatal("Failed to connect to message queue", zap.Error(err))
	}
	if messageQueue != nil {
		defer messageQueue.Close()
		if c, ok := messageQueue.(health.Connector); ok {
			healthCfg.Queue = c
		}
		startReportListener(messageQueue, cfg.Queue.Subject, logger)
	}

	// 8. Report sink and service
	reporter := report.NewHTTPReporter(cfg.Report, nil, logger)
	healthCfg.Reporter = reporter
	reports := reportsvc.NewService(reporter, reportRepo, messageQueue, cfg.Queue.Subject, cfg.Report.Timeout, logger)

	// 9. Localizer and skill
	selector, err := i18n.SelectorByName(cfg.I18n.Selection)
	if err != nil {
		logger.Fatal("Invalid prompt selection", zap.Error(err))
	}
	localizer, err := i18n.New(cfg.I18n.FallbackLocale, selector, logger)
	if err != nil {
		logger.Fatal("Failed to load prompts", zap.Error(err))
	}
	appSkill := skill.New(store, reports, localizer, skill.Options{ReportOnce: cfg.Dialogue.ReportOnce}, logger)

	// 10. Initialize Fiber HTTP Server
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		ServerHeader:          cfg.App.Name,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		BodyLimit:             cfg.HTTP.BodyLimit,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	// Global Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	if cfg.CORS.Enabled {
		app.Use(middleware.NewCORS(cfg.CORS))
	}
	if cfg.RateLimiting.Enabled {
		app.Use(middleware.RateLimit(cfg.RateLimiting, logger, cfg.Skill.Path))
	}

	// Health Check Endpoints
	health.NewFiberHandler(health.NewService(healthCfg, logger)).RegisterRoutes(app)

	// Metrics endpoint for Prometheus
	metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	app.Get("/metrics", func(c *fiber.Ctx) error {
		metricsHandler(c.Context())
		return nil
	})

	// Voice platform endpoint
	app.Post(cfg.Skill.Path, handlers.NewSkillHandler(appSkill, cfg.Skill.ApplicationID, logger).Handle)

	// Admin API
	jwtService, err := auth.NewJWTService(cfg.JWT, logger)
	if err != nil {
		logger.Warn("Admin API disabled", zap.Error(err))
	} else {
		// The breaker guards the admin API only; readiness 503s must not trip it.
		v1Handlers := []fiber.Handler{middleware.AuthRequired(jwtService, auth.RoleOperator)}
		if cfg.CircuitBreaker.Enabled {
			v1Handlers = append([]fiber.Handler{middleware.CircuitBreaker(cfg.CircuitBreaker, logger)}, v1Handlers...)
		}
		v1 := app.Group("/api/v1", v1Handlers...)
		v1.Get("/reports", handlers.NewReportHandler(reports, logger).List)
	}

	// 11. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port), zap.String("skill_path", cfg.Skill.Path))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 12. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// startReportListener logs report events published by this or other instances.
func startReportListener(mq ports.MessageQueue, subject string, logger *zap.Logger) {
	err := mq.Subscribe(subject, func(msg []byte) error {
		logger.Debug("Report event received", zap.String("subject", subject), zap.ByteString("event", msg))
		return nil
	})
	if err != nil {
		logger.Warn("Failed to subscribe to report events", zap.String("subject", subject), zap.Error(err))
	}
}
