// Package config loads service configuration from the environment, with a
// .env file honored for local development. All values are resolved once at
// startup; Validate makes malformed configuration fatal rather than letting
// the service limp along with, say, a broken score key.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/openflappy/leaderboard-service/internal/cryptox"
)

type ServiceConfig struct {
	Name    string
	Version string
	Env     string
	Port    string
}

type LoggingConfig struct {
	Level string
}

type DatabaseConfig struct {
	URL string
}

// ScoreConfig holds the score-integrity settings: the shared key material
// and the anticheat tuning knobs.
type ScoreConfig struct {
	// KeyHex is the 96-hex-character key‖iv string shared with the game
	// client build.
	KeyHex string
	// AnticheatWindow is the tolerated discrepancy between claimed elapsed
	// time and claimed score.
	AnticheatWindow int64
	// AnticheatBanFloor is the score a submission must exceed before a
	// window violation bans.
	AnticheatBanFloor int64
	// TokenTTL is the lifetime of issued bearer tokens. Deliberately huge:
	// the game re-authenticates so rarely that sessions are effectively
	// permanent. Zero means tokens never expire.
	TokenTTL time.Duration
}

type TracingConfig struct {
	Enabled    bool
	Endpoint   string
	SampleRate float64
}

type ProfilingConfig struct {
	Enabled  bool
	Endpoint string
}

type Config struct {
	Service   ServiceConfig
	Logging   LoggingConfig
	Database  DatabaseConfig
	Score     ScoreConfig
	Tracing   TracingConfig
	Profiling ProfilingConfig

	ShutdownTimeoutSeconds     int
	ReadinessDrainDelaySeconds int
}

// Load reads configuration from the environment. A missing .env file is not
// an error.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Service: ServiceConfig{
			Name:    getEnv("SERVICE_NAME", "leaderboard-service"),
			Version: getEnv("SERVICE_VERSION", "dev"),
			Env:     getEnv("SERVICE_ENV", "development"),
			Port:    getEnv("PORT", "8080"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Score: ScoreConfig{
			KeyHex:            os.Getenv("SCORE_KEY"),
			AnticheatWindow:   getEnvInt64("ANTICHEAT_WINDOW", 100),
			AnticheatBanFloor: getEnvInt64("ANTICHEAT_BAN_FLOOR", 1000),
			TokenTTL:          getEnvDuration("TOKEN_TTL", 876000*time.Hour),
		},
		Tracing: TracingConfig{
			Enabled:    getEnvBool("TRACING_ENABLED", false),
			Endpoint:   getEnv("TRACING_ENDPOINT", "localhost:4318"),
			SampleRate: getEnvFloat("TRACING_SAMPLE_RATE", 0.1),
		},
		Profiling: ProfilingConfig{
			Enabled:  getEnvBool("PROFILING_ENABLED", false),
			Endpoint: getEnv("PROFILING_ENDPOINT", "http://localhost:4040"),
		},
		ShutdownTimeoutSeconds:     int(getEnvInt64("SHUTDOWN_TIMEOUT_SECONDS", 15)),
		ReadinessDrainDelaySeconds: int(getEnvInt64("READINESS_DRAIN_DELAY_SECONDS", 0)),
	}
}

// Validate checks the configuration the service cannot run without.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Score.KeyHex == "" {
		return fmt.Errorf("SCORE_KEY is required")
	}
	if _, err := cryptox.ParseKeyMaterial(c.Score.KeyHex); err != nil {
		return fmt.Errorf("SCORE_KEY: %w", err)
	}
	if c.Score.AnticheatWindow < 0 {
		return fmt.Errorf("ANTICHEAT_WINDOW must not be negative")
	}
	if c.Score.AnticheatBanFloor < 0 {
		return fmt.Errorf("ANTICHEAT_BAN_FLOOR must not be negative")
	}
	return nil
}

// KeyMaterial parses the configured score key. Call Validate first; this
// panics on malformed input because startup must already have rejected it.
func (c *Config) KeyMaterial() cryptox.KeyMaterial {
	km, err := cryptox.ParseKeyMaterial(c.Score.KeyHex)
	if err != nil {
		panic(fmt.Sprintf("SCORE_KEY not validated: %v", err))
	}
	return km
}

func (c *Config) GetShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

func (c *Config) GetReadinessDrainDelayDuration() time.Duration {
	return time.Duration(c.ReadinessDrainDelaySeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
