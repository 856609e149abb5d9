package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("REDIS_ADDR", "")

	cfg := Load()
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.RedisAddr, "unset redis address must stay empty so the limiter can fall back")
}

func TestLoadRedisAddr(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis:6379")
	assert.Equal(t, "redis:6379", Load().RedisAddr)
}
