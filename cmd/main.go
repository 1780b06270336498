package main

import (
	"context"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/openflappy/leaderboard-service/config"
	"github.com/openflappy/leaderboard-service/internal/core"
	"github.com/openflappy/leaderboard-service/internal/core/repository"
	"github.com/openflappy/leaderboard-service/internal/cryptox"
	"github.com/openflappy/leaderboard-service/internal/logging"
	logicv1 "github.com/openflappy/leaderboard-service/internal/logic/v1"
	webv1 "github.com/openflappy/leaderboard-service/internal/web/v1"
	"github.com/openflappy/leaderboard-service/middleware"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		panic("configuration validation failed: " + err.Error())
	}

	logging.Setup(cfg.Logging.Level)

	log.Info().
		Str("service", cfg.Service.Name).
		Str("version", cfg.Service.Version).
		Str("env", cfg.Service.Env).
		Str("port", cfg.Service.Port).
		Msg("Service starting")

	var tp interface{ Shutdown(context.Context) error }
	if cfg.Tracing.Enabled {
		provider, err := middleware.InitTracing(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize tracing")
		} else {
			tp = provider
			log.Info().
				Str("endpoint", cfg.Tracing.Endpoint).
				Float64("sample_rate", cfg.Tracing.SampleRate).
				Msg("Tracing initialized")
		}
	}

	if cfg.Profiling.Enabled {
		if err := middleware.InitProfiling(cfg); err != nil {
			log.Warn().Err(err).Msg("Failed to initialize profiling")
		} else {
			log.Info().Str("endpoint", cfg.Profiling.Endpoint).Msg("Profiling initialized")
			defer middleware.StopProfiling()
		}
	}

	ctx := context.Background()

	if err := core.Migrate(ctx, cfg.Database.URL); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	pool, err := core.Connect(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()
	log.Info().Msg("Database connection pool established")

	// Key material is parsed once here and injected; nothing below reads
	// it from the environment or a global.
	codec, err := cryptox.NewCodec(cfg.KeyMaterial())
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid score key material")
	}

	users := repository.NewUserRepository(pool)
	tokens := repository.NewTokenRepository(pool)

	authSvc := logicv1.NewAuthService(users, tokens, cfg.Score.TokenTTL)
	scoreSvc := logicv1.NewScoreService(users, codec, cfg.Score.AnticheatWindow, cfg.Score.AnticheatBanFloor)
	adminSvc := logicv1.NewAdminService(users)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	var isShuttingDown atomic.Bool

	if cfg.Tracing.Enabled {
		r.Use(middleware.TracingMiddleware(cfg.Service.Name))
	}
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.PrometheusMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Fails once shutdown has started, to drain traffic before the HTTP
	// listener closes.
	r.GET("/ready", func(c *gin.Context) {
		if isShuttingDown.Load() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	webv1.NewHandler(authSvc, scoreSvc, adminSvc).RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Service.Port,
		Handler: r,
	}

	go func() {
		log.Info().Str("port", cfg.Service.Port).Msg("Starting leaderboard service")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	<-sigCtx.Done()
	log.Info().Msg("Shutdown signal received")

	isShuttingDown.Store(true)
	if delay := cfg.GetReadinessDrainDelayDuration(); delay > 0 {
		log.Info().Dur("delay", delay).Msg("Readiness drain delay started")
		time.Sleep(delay)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.GetShutdownTimeoutDuration())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		log.Info().Msg("HTTP server shutdown complete")
	}

	pool.Close()
	log.Info().Msg("Database pool closed")

	if tp != nil {
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Tracer shutdown error")
		}
	}

	log.Info().Msg("Graceful shutdown complete")
}
