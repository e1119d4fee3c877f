package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// AI provider (OpenAI-compatible chat completions)
	AIAPIKey      string
	AIAPIURL      string
	AIModel       string
	AIVisionModel string
	AITimeout     time.Duration

	// Circuit breaker around the AI provider
	AIBreakerFailures uint32
	AIBreakerTimeout  time.Duration
	AIBreakerInterval time.Duration
	AIRatePerSecond   float64
	AIRateBurst       int

	// Stripe
	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceMonthly  string
	StripePriceQuarter  string
	StripePriceYearly   string
	StripeSuccessURL    string
	StripeCancelURL     string

	// Redis (optional; caching is disabled when RedisAddr is empty)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Admin
	AdminEmails  string
	AdminUserIDs string
	AdminToken   string

	// Server
	Port         string
	CORSOrigins  string
	AppEnv       string
	SupportEmail string

	// Logging
	LogRetentionDays int
	SentryDSN        string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "leafwise"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),

		AIAPIKey:      getEnv("AI_API_KEY", ""),
		AIAPIURL:      getEnv("AI_API_URL", "https://api.openai.com/v1/chat/completions"),
		AIModel:       getEnv("AI_MODEL", "gpt-4o-mini"),
		AIVisionModel: getEnv("AI_VISION_MODEL", "gpt-4o"),
		AITimeout:     parseDuration(getEnv("AI_TIMEOUT", "60s"), 60*time.Second),

		AIBreakerFailures: uint32(parseInt(getEnv("AI_BREAKER_FAILURES", "5"), 5)),
		AIBreakerTimeout:  parseDuration(getEnv("AI_BREAKER_TIMEOUT", "30s"), 30*time.Second),
		AIBreakerInterval: parseDuration(getEnv("AI_BREAKER_INTERVAL", "60s"), 60*time.Second),
		AIRatePerSecond:   parseFloat(getEnv("AI_RATE_PER_SECOND", "5"), 5),
		AIRateBurst:       parseInt(getEnv("AI_RATE_BURST", "10"), 10),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		StripePriceMonthly:  getEnv("STRIPE_PRICE_MONTHLY", ""),
		StripePriceQuarter:  getEnv("STRIPE_PRICE_QUARTERLY", ""),
		StripePriceYearly:   getEnv("STRIPE_PRICE_YEARLY", ""),
		StripeSuccessURL:    getEnv("STRIPE_SUCCESS_URL", "leafwise://billing/success"),
		StripeCancelURL:     getEnv("STRIPE_CANCEL_URL", "leafwise://billing/cancel"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		CacheTTL:      parseDuration(getEnv("CACHE_TTL", "24h"), 24*time.Hour),

		AdminEmails:  getEnv("ADMIN_EMAILS", ""),
		AdminUserIDs: getEnv("ADMIN_USER_IDS", ""),
		AdminToken:   getEnv("ADMIN_TOKEN", ""),

		Port:         getEnv("PORT", "8080"),
		CORSOrigins:  getEnv("CORS_ORIGINS", "*"),
		AppEnv:       getEnv("APP_ENV", "development"),
		SupportEmail: getEnv("SUPPORT_EMAIL", ""),

		LogRetentionDays: parseInt(getEnv("LOG_RETENTION_DAYS", "30"), 30),
		SentryDSN:        getEnv("SENTRY_DSN", ""),
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.DBPassword == "" {
		errs = append(errs, errors.New("DB_PASSWORD is required"))
	}
	return errors.Join(errs...)
}

// PriceIDs maps checkout tiers to Stripe price ids. Unset tiers are left out.
func (c *Config) PriceIDs() map[string]string {
	out := make(map[string]string, 3)
	for tier, id := range map[string]string{
		"monthly":   c.StripePriceMonthly,
		"quarterly": c.StripePriceQuarter,
		"yearly":    c.StripePriceYearly,
	} {
		if id != "" {
			out[tier] = id
		}
	}
	return out
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return fallback
	}
	return f
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
