package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/studyhub/sessionview/internal/api"
	"github.com/studyhub/sessionview/internal/api/handlers"
	"github.com/studyhub/sessionview/internal/config"
	"github.com/studyhub/sessionview/internal/downstream"
	"github.com/studyhub/sessionview/internal/logger"
	"github.com/studyhub/sessionview/internal/push"
	"github.com/studyhub/sessionview/internal/session"
	"github.com/studyhub/sessionview/internal/tracing"
	"github.com/studyhub/sessionview/internal/viewmodel"
	"github.com/studyhub/sessionview/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Log.With().Str("service", tracing.ServiceName).Logger()

	loc, _ := cfg.Location()

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Tracing ----
	tp, err := tracing.InitTracing(rootCtx, tracing.Config{
		ServiceName:  tracing.ServiceName,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Enabled:      cfg.TracingEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("tracing init failed")
	}

	// ---- Redis (push driver and shared rate limiter) ----
	var rdb *redis.Client
	if cfg.PushDriver == config.PushDriverRedis || cfg.RLEnabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})

		pingCtx, cancel := context.WithTimeout(rootCtx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()

		switch {
		case err == nil:
			log.Info().Str("addr", cfg.RedisAddr).Msg("redis connected")
		case cfg.PushDriver == config.PushDriverRedis:
			log.Warn().Err(err).Msg("redis ping failed; live updates unavailable until it recovers")
		default:
			log.Warn().Err(err).Msg("redis ping failed; using in-process rate limiter")
			_ = rdb.Close()
			rdb = nil
		}
	}

	// ---- Push channel ----
	var subscriber push.Subscriber
	switch cfg.PushDriver {
	case config.PushDriverAMQP:
		subscriber = push.NewAMQPSubscriber(cfg.RabbitURL, cfg.PushExchange)
	case config.PushDriverRedis:
		subscriber = push.NewRedisSubscriber(rdb)
	default:
		subscriber = push.Nop{}
	}
	log.Info().Str("driver", cfg.PushDriver).Msg("push channel configured")

	// ---- Backend clients and views ----
	client := downstream.NewClient(downstream.ClientConfig{
		ReadTimeout:  cfg.BackendReadTimeout,
		WriteTimeout: cfg.BackendWriteTimeout,
	})

	hub := viewmodel.NewHub(viewmodel.HubConfig{
		Calendar:      downstream.NewCalendarClient(cfg.BackendURL, client),
		Notifications: downstream.NewNotificationClient(cfg.BackendURL, client),
		Subscriber:    subscriber,
		Options: viewmodel.Options{
			Location:        loc,
			HighlightWindow: cfg.HighlightWindow,
		},
		InboxSize: cfg.InboxSize,
		IdleTTL:   cfg.ViewIdleTTL,
	})

	ticker, err := viewmodel.StartTicker(cfg.TickSpec, hub, time.Now)
	if err != nil {
		log.Fatal().Err(err).Str("spec", cfg.TickSpec).Msg("invalid TICK_SPEC")
	}

	// ---- Router ----
	readiness := []handlers.ReadinessChecker{handlers.NewHTTPReadinessChecker("backend", cfg.BackendURL)}
	var limiter *middleware.RedisRateLimiter
	if rdb != nil {
		readiness = append(readiness, handlers.NewRedisReadinessChecker(rdb))
		limiter = middleware.NewRedisRateLimiter(rdb)
	}

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: api.NewRouter(api.Deps{
			Config:      cfg,
			Views:       hub,
			Parser:      session.NewParser(cfg.JWTSecret),
			Readiness:   readiness,
			RateLimiter: limiter,
			Now:         time.Now,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.BackendURL).Msg("http server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("http server crashed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	_ = srv.Shutdown(shutdownCtx)
	ticker.Stop(shutdownCtx)
	if err := hub.Close(); err != nil {
		log.Warn().Err(err).Msg("push subscriber close failed")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	_ = tp.Shutdown(shutdownCtx)
	log.Info().Msg("shutdown complete")
}
