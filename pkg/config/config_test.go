package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 10, cfg.PoolMaxConns)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.NotEmpty(t, cfg.DatabaseURL)
	assert.NotEmpty(t, cfg.MailFrom)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("MAIL_HOST", "smtp.example.com")

	cfg := Load()

	assert.Equal(t, "prod", cfg.AppEnv)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "smtp.example.com", cfg.SMTPHost)
}

func TestGetEnvIntMalformed(t *testing.T) {
	t.Setenv("HTTP_PORT", "not-a-number")

	cfg := Load()

	assert.Equal(t, 8080, cfg.HTTPPort)
}
