package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_NAME", "")
	t.Setenv("AI_TIMEOUT", "")
	t.Setenv("REDIS_DB", "")

	cfg := Load()
	assert.Equal(t, "leafwise", cfg.DBName)
	assert.Equal(t, 60*time.Second, cfg.AITimeout)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, uint32(5), cfg.AIBreakerFailures)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AI_TIMEOUT", "5s")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CACHE_TTL", "not-a-duration")
	t.Setenv("LOG_RETENTION_DAYS", "-2")

	cfg := Load()
	assert.Equal(t, 5*time.Second, cfg.AITimeout)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Equal(t, 30, cfg.LogRetentionDays)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "DB_PASSWORD")

	cfg.JWTSecret = "s"
	cfg.DBPassword = "p"
	assert.NoError(t, cfg.Validate())
}

func TestPriceIDs(t *testing.T) {
	cfg := &Config{StripePriceMonthly: "price_m", StripePriceYearly: "price_y"}
	assert.Equal(t, map[string]string{"monthly": "price_m", "yearly": "price_y"}, cfg.PriceIDs())
}
