package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.IsProduction())
	assert.NotEmpty(t, cfg.AllowedOrigins)
	assert.Equal(t, "2024-02-01", cfg.OpenAIAPIVersion)
	assert.Equal(t, "JOURNY-PT", cfg.OpenAIModel)
	assert.Equal(t, 60*time.Second, cfg.AnalysisTimeout)
	assert.Equal(t, 10, cfg.RedisPoolSize)
	assert.Equal(t, 5, cfg.RedisMinIdleConns)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "Production")
	t.Setenv("ALLOWED_ORIGINS", "https://journy.app, https://www.journy.app ,")
	t.Setenv("ANALYSIS_TIMEOUT", "30s")
	t.Setenv("OPEN_AI_MODEL", "gpt-4o-mini")
	t.Setenv("REDIS_POOL_SIZE", "50")
	t.Setenv("REDIS_MIN_IDLE_CONNS", "20")

	cfg := Load()
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://journy.app", "https://www.journy.app"}, cfg.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.AnalysisTimeout)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, 50, cfg.RedisPoolSize)
	assert.Equal(t, 20, cfg.RedisMinIdleConns)
}

func TestGetIntIgnoresBadValues(t *testing.T) {
	t.Setenv("REDIS_POOL_SIZE", "lots")
	t.Setenv("REDIS_MIN_IDLE_CONNS", "-3")
	cfg := Load()
	assert.Equal(t, 10, cfg.RedisPoolSize)
	assert.Equal(t, 5, cfg.RedisMinIdleConns)
}

func TestGetDurationIgnoresBadValues(t *testing.T) {
	t.Setenv("ANALYSIS_TIMEOUT", "not-a-duration")
	cfg := Load()
	assert.Equal(t, 60*time.Second, cfg.AnalysisTimeout)
}
