package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		AppEnv:             "test",
		Port:               "8080",
		BotToken:           "123456:test-token",
		ServerURL:          "https://bot.example.com",
		RedisURL:           "redis://localhost:6379",
		GolikeBaseURL:      "https://gateway.golike.net",
		WorkersPerPlatform: 1,
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validate(validConfig()))
}

func TestValidate_MissingBotToken(t *testing.T) {
	cfg := validConfig()
	cfg.BotToken = ""
	err := validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOT_TOKEN")
}

func TestValidate_MissingRedisURL(t *testing.T) {
	cfg := validConfig()
	cfg.RedisURL = ""
	err := validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_URL")
}

func TestValidate_ServerURLMustBeHTTPS(t *testing.T) {
	cfg := validConfig()
	cfg.ServerURL = "http://bot.example.com"
	require.Error(t, validate(cfg))
}

func TestValidate_EmptyServerURLAllowed(t *testing.T) {
	cfg := validConfig()
	cfg.ServerURL = ""
	require.NoError(t, validate(cfg))
}

func TestValidate_WorkersPerPlatform(t *testing.T) {
	cfg := validConfig()
	cfg.WorkersPerPlatform = 0
	require.Error(t, validate(cfg))
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123456:abc")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("WORKERS_PER_PLATFORM", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "123456:abc", cfg.BotToken)
	assert.Equal(t, 2, cfg.WorkersPerPlatform)
	assert.Equal(t, "https://gateway.golike.net", cfg.GolikeBaseURL)
	assert.Equal(t, "8080", cfg.Port)
}
