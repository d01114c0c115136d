package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Varun5711/shortlinks/internal/clicks"
	"github.com/Varun5711/shortlinks/internal/config"
	"github.com/Varun5711/shortlinks/internal/events"
	linkgrpc "github.com/Varun5711/shortlinks/internal/grpc"
	"github.com/Varun5711/shortlinks/internal/handlers"
	"github.com/Varun5711/shortlinks/internal/logger"
	"github.com/Varun5711/shortlinks/internal/middleware"
	"github.com/Varun5711/shortlinks/internal/redis"
)

func main() {
	log := logger.New("redirect-service")
	log.SetStdLog()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	linkClient, err := linkgrpc.NewLinkServiceClient(cfg.Services.LinkServiceAddr)
	if err != nil {
		log.Fatal("Failed to connect to link-service: %v", err)
	}
	defer linkClient.Close()

	deps := map[string]handlers.Pinger{"link-service": linkClient}

	var redisClient *redis.RedisClient
	if cfg.Clicks.Mode == "stream" || cfg.RateLimit.Enabled {
		redisClient, err = redis.NewRedisClient(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		deps["redis"] = redisClient
	}

	var sink clicks.Sink = linkClient
	if cfg.Clicks.Mode == "stream" {
		sink = events.NewClickProducer(redisClient.GetClient(), cfg.Redis.StreamName)
		log.Info("Publishing clicks to stream %s", cfg.Redis.StreamName)
	}

	accountant := clicks.NewAccountant(sink, clicks.Config{
		Workers:   cfg.Clicks.Workers,
		QueueSize: cfg.Clicks.QueueSize,
		Timeout:   cfg.Clicks.Timeout,
	}, log.Named("clicks"))

	mux := http.NewServeMux()
	handlers.NewRedirectHandler(linkClient, accountant, log).RegisterRoutes(mux)
	handlers.NewHealthHandler("redirect-service", deps).RegisterRoutes(mux)

	chain := []func(http.Handler) http.Handler{middleware.Recovery(log), middleware.Logging(log.Named("http"))}
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(redisClient.GetClient(), cfg.RateLimit.Requests, cfg.RateLimit.Window, log.Named("ratelimit"))
		chain = append(chain, limiter.Middleware)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Services.RedirectServicePort,
		Handler:           middleware.Chain(mux, chain...),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Listening on :%s", cfg.Services.RedirectServicePort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown: %v", err)
	}
	if err := accountant.Close(shutdownCtx); err != nil {
		log.Warn("Click accountant did not drain: %v", err)
	}
	stats := accountant.Stats()
	log.Info("Clicks recorded=%d dropped=%d failed=%d", stats.Recorded, stats.Dropped, stats.Failed)
}
