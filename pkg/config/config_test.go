package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("REPLICATE_API_TOKEN", "r8_test")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, int64(600), cfg.VideoPriceCents)
	assert.Equal(t, "google/veo-3", cfg.VideoModel)
	assert.Equal(t, "google/imagen-4", cfg.ImageModel)
	assert.Equal(t, 5, cfg.VideoDuration)
	assert.Equal(t, "16:9", cfg.AspectRatio)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.False(t, cfg.S3Enabled())
}

func TestLoadReportsAllMissingVariables(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("REPLICATE_API_TOKEN", "")
	t.Setenv("STRIPE_SECRET_KEY", "")

	_, err := Load()
	require.Error(t, err)
	for _, name := range []string{"JWT_SECRET", "DATABASE_URL", "GEMINI_API_KEY", "REPLICATE_API_TOKEN", "STRIPE_SECRET_KEY"} {
		assert.Contains(t, err.Error(), name)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	setRequired(t)
	t.Setenv("STORE_DRIVER", "mongo")

	_, err := Load()
	assert.ErrorContains(t, err, "STORE_DRIVER")
}

func TestLoadRejectsNonPositiveRateLimit(t *testing.T) {
	for _, v := range []string{"0", "-5"} {
		setRequired(t)
		t.Setenv("RATE_LIMIT_PER_MINUTE", v)

		_, err := Load()
		assert.ErrorContains(t, err, "RATE_LIMIT_PER_MINUTE", v)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("POLL_INTERVAL_SECONDS", "5")
	t.Setenv("VIDEO_PRICE_CENTS", "not-a-number")
	t.Setenv("REDIS_USE_TLS", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, int64(600), cfg.VideoPriceCents)
	assert.True(t, cfg.RedisUseTLS)
}
