package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f" +
	"77665544332211000011223344556677"

func validConfig(t *testing.T) *Config {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/leaderboard_test")
	t.Setenv("SCORE_KEY", validKeyHex)
	return Load()
}

func TestLoad_Defaults(t *testing.T) {
	cfg := validConfig(t)

	assert.Equal(t, "8080", cfg.Service.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.EqualValues(t, 100, cfg.Score.AnticheatWindow)
	assert.EqualValues(t, 1000, cfg.Score.AnticheatBanFloor)
	assert.Equal(t, 876000*time.Hour, cfg.Score.TokenTTL)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ANTICHEAT_WINDOW", "250")
	t.Setenv("ANTICHEAT_BAN_FLOOR", "0")
	t.Setenv("TOKEN_TTL", "24h")
	cfg := validConfig(t)

	assert.EqualValues(t, 250, cfg.Score.AnticheatWindow)
	assert.Zero(t, cfg.Score.AnticheatBanFloor)
	assert.Equal(t, 24*time.Hour, cfg.Score.TokenTTL)
}

func TestValidate(t *testing.T) {
	cfg := validConfig(t)
	require.NoError(t, cfg.Validate())

	km := cfg.KeyMaterial()
	assert.Len(t, km.Key, 32)
	assert.Len(t, km.IV, 16)
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing database url", func(c *Config) { c.Database.URL = "" }},
		{"missing score key", func(c *Config) { c.Score.KeyHex = "" }},
		{"truncated score key", func(c *Config) { c.Score.KeyHex = validKeyHex[:40] }},
		{"non-hex score key", func(c *Config) { c.Score.KeyHex = "zz" + validKeyHex[2:] }},
		{"negative window", func(c *Config) { c.Score.AnticheatWindow = -1 }},
		{"negative ban floor", func(c *Config) { c.Score.AnticheatBanFloor = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
