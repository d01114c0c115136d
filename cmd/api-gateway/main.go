package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Varun5711/shortlinks/internal/auth"
	"github.com/Varun5711/shortlinks/internal/config"
	linkgrpc "github.com/Varun5711/shortlinks/internal/grpc"
	"github.com/Varun5711/shortlinks/internal/handlers"
	"github.com/Varun5711/shortlinks/internal/logger"
	"github.com/Varun5711/shortlinks/internal/middleware"
	"github.com/Varun5711/shortlinks/internal/redis"
)

func main() {
	log := logger.New("api-gateway")
	log.SetStdLog()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: %v", err)
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	linkClient, err := linkgrpc.NewLinkServiceClient(cfg.Services.LinkServiceAddr)
	if err != nil {
		log.Fatal("Failed to connect to link-service: %v", err)
	}
	defer linkClient.Close()

	deps := map[string]handlers.Pinger{"link-service": linkClient}

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, log.Named("auth"))

	api := http.NewServeMux()
	handlers.NewLinkHandler(linkClient, cfg.Services.BaseURL, log).RegisterRoutes(api)

	mux := http.NewServeMux()
	mux.Handle("/api/", authMiddleware.Authenticate(api))
	docs, err := handlers.NewSwaggerHandler(cfg.Services.BaseURL)
	if err != nil {
		log.Fatal("Failed to build API docs: %v", err)
	}
	docs.RegisterRoutes(mux)

	chain := []func(http.Handler) http.Handler{middleware.Recovery(log), middleware.Logging(log.Named("http"))}
	if cfg.RateLimit.Enabled {
		redisClient, err := redis.NewRedisClient(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		deps["redis"] = redisClient

		limiter := middleware.NewRateLimiter(redisClient.GetClient(), cfg.RateLimit.Requests, cfg.RateLimit.Window, log.Named("ratelimit"))
		chain = append(chain, limiter.Middleware)
	}
	handlers.NewHealthHandler("api-gateway", deps).RegisterRoutes(mux)

	server := &http.Server{
		Addr:              ":" + cfg.Services.APIGatewayPort,
		Handler:           middleware.Chain(mux, chain...),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Listening on :%s", cfg.Services.APIGatewayPort)
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
}
