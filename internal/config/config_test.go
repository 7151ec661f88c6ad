package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("SLOT_GRANULARITY_MINUTES", "")

	cfg := Load()

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 15, cfg.SlotGranularityMinutes)
	assert.Equal(t, 168*time.Hour, cfg.JWTTTL)
	assert.False(t, cfg.S3.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SLOT_GRANULARITY_MINUTES", "30")
	t.Setenv("APP_ENV", "production")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, 30, cfg.SlotGranularityMinutes)
	assert.True(t, cfg.IsProduction())
}

func TestCORSOriginsList(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://app.example , ,https://admin.example")
	assert.Equal(t, []string{"https://app.example", "https://admin.example"}, Load().CORSOrigins)

	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	assert.Empty(t, Load().CORSOrigins)
}

func TestInvalidIntegerFallsBack(t *testing.T) {
	t.Setenv("SLOT_GRANULARITY_MINUTES", "-5")

	assert.Equal(t, 15, Load().SlotGranularityMinutes)
}
