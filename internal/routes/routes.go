package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups everything Setup mounts.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Health        *handlers.HealthHandler
	Config        *handlers.ConfigHandler
	Legal         *handlers.LegalHandler
	Profile       *handlers.ProfileHandler
	Plants        *handlers.PlantHandler
	Admin         *handlers.AdminHandler
	Identify      *handlers.IdentifyHandler
	Collection    *handlers.CollectionHandler
	Chat          *handlers.ChatHandler
	Compatibility *handlers.CompatibilityHandler
	Billing       *handlers.BillingHandler
}

func Setup(app *fiber.App, cfg *config.Config, users middleware.UserLookup, h Handlers) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Stripe sends from a few shared IPs and authenticates with its signature
	// header, so the webhook is registered ahead of the per-IP limiter.
	app.Post("/api/webhooks/stripe", h.Billing.StripeWebhook)

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(perIPLimiter(60))

	api.Get("/health", h.Health.Check)
	api.Get("/config", h.Config.GetConfig)
	api.Get("/legal/privacy", h.Legal.PrivacyPolicy)
	api.Get("/legal/terms", h.Legal.TermsOfService)

	// Auth-specific rate limit: 10 req/min per IP (stricter)
	auth := api.Group("/auth")
	auth.Use(perIPLimiter(10))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)

	// JWT middleware goes on individual routes so it never shadows the
	// public ones above.
	jwt := middleware.JWTProtected(cfg)
	api.Post("/auth/logout", jwt, h.Auth.Logout)
	api.Delete("/auth/account", jwt, h.Auth.DeleteAccount)

	api.Get("/me", jwt, h.Profile.Get)
	api.Put("/me", jwt, h.Profile.Update)
	api.Get("/me/activity", jwt, h.Profile.Activity)
	api.Get("/me/badges", jwt, h.Profile.Badges)

	api.Get("/plants", jwt, h.Plants.List)
	api.Get("/plants/:id", jwt, h.Plants.Get)

	api.Post("/identify", jwt, h.Identify.Identify)

	mine := api.Group("/my-plants", jwt)
	mine.Get("/", h.Collection.List)
	mine.Post("/", h.Collection.Add)
	mine.Get("/:id", h.Collection.Get)
	mine.Put("/:id", h.Collection.Update)
	mine.Delete("/:id", h.Collection.Delete)
	mine.Post("/:id/water", h.Collection.Water)
	mine.Post("/:id/repot", h.Collection.Repot)
	mine.Post("/:id/checkin", h.Collection.Checkin)
	mine.Post("/:id/diagnose", h.Collection.Diagnose)
	mine.Get("/:id/diagnoses", h.Collection.Diagnoses)

	api.Post("/chat", jwt, h.Chat.Send)
	api.Get("/chat/history", jwt, h.Chat.History)

	api.Post("/compatibility", jwt, h.Compatibility.Check)
	api.Get("/compatibility", jwt, h.Compatibility.List)

	api.Post("/billing/checkout", jwt, h.Billing.Checkout)
	api.Get("/billing/status", jwt, h.Billing.Status)

	admin := api.Group("/admin", jwt, middleware.AdminRequired(users, cfg))
	admin.Post("/plants", h.Plants.Create)
	admin.Put("/plants/:id", h.Plants.Update)
	admin.Delete("/plants/:id", h.Plants.Delete)
	admin.Post("/users/:id/rebuild-points", h.Admin.RebuildPoints)
}

func perIPLimiter(perMinute int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               perMinute,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
}
