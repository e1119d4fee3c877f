package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/ai"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/cache"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/entitlement"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/gamification"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/moderation"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/payments"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/store"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

func main() {
	// Structured logging (JSON to stdout)
	stdout := logging.Setup()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(db)
	slog.SetDefault(slog.New(logging.NewMultiHandler(stdout, pgLogHandler)))

	logging.StartCleanup(ctx, db, cfg.LogRetentionDays)

	// Redis is optional. A nil cache reads as a permanent miss.
	jsonCache, err := cache.Connect(ctx, cfg)
	if err != nil {
		slog.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	var cachePing handlers.PingFunc
	if jsonCache != nil {
		cachePing = jsonCache.Ping
		slog.Info("cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
	} else {
		slog.Info("cache disabled")
	}

	// Services
	st := store.New(db)
	awards := gamification.NewService(st)
	limits := entitlement.NewChecker(st)
	inference := ai.NewClient(ai.OptionsFromConfig(cfg))
	checkouts := payments.NewService(st, cfg)
	filter := moderation.NewFilter()

	authService := services.NewAuthService(st, cfg)
	profileService := services.NewProfileService(st, awards, limits)
	plantService := services.NewPlantService(st, jsonCache)
	identifyService := services.NewIdentifyService(st, inference, awards, jsonCache)
	collectionService := services.NewCollectionService(st, st, st, limits, awards)
	diagnosisService := services.NewDiagnosisService(st, st, st, limits, inference, awards)
	chatService := services.NewChatService(st, st, limits, inference, filter)
	compatibilityService := services.NewCompatibilityService(st, st, inference, awards)
	billingService := services.NewBillingService(st, limits, checkouts)

	// Handlers
	h := routes.Handlers{
		Auth:          handlers.NewAuthHandler(authService),
		Health:        newHealthHandler(db, cachePing),
		Config:        handlers.NewConfigHandler(checkouts),
		Legal:         handlers.NewLegalHandler(cfg.SupportEmail),
		Profile:       handlers.NewProfileHandler(profileService),
		Plants:        handlers.NewPlantHandler(plantService),
		Admin:         handlers.NewAdminHandler(awards),
		Identify:      handlers.NewIdentifyHandler(identifyService),
		Collection:    handlers.NewCollectionHandler(collectionService, diagnosisService),
		Chat:          handlers.NewChatHandler(chatService),
		Compatibility: handlers.NewCompatibilityHandler(compatibilityService),
		Billing:       handlers.NewBillingHandler(billingService, checkouts),
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app. Images are uploaded base64 encoded, so the body limit sits
	// above handlers.MaxImageBytes.
	app := fiber.New(fiber.Config{
		BodyLimit:    12 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.Metrics())
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, st, h)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	cancel()
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := jsonCache.Close(); err != nil {
		slog.Error("redis close error", "error", err)
	}
	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

// newHealthHandler keeps a disabled cache out of the health check. A nil
// PingFunc stored in the interface would not compare equal to nil.
func newHealthHandler(db *gorm.DB, cachePing handlers.PingFunc) *handlers.HealthHandler {
	dbPing := handlers.PingFunc(func(ctx context.Context) error {
		return database.Ping(ctx, db)
	})
	if cachePing == nil {
		return handlers.NewHealthHandler(dbPing, nil)
	}
	return handlers.NewHealthHandler(dbPing, cachePing)
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
