package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/Varun5711/shortlinks/internal/cache"
	"github.com/Varun5711/shortlinks/internal/config"
	linkgrpc "github.com/Varun5711/shortlinks/internal/grpc"
	"github.com/Varun5711/shortlinks/internal/idgen"
	"github.com/Varun5711/shortlinks/internal/logger"
	"github.com/Varun5711/shortlinks/internal/redis"
	"github.com/Varun5711/shortlinks/internal/service"
	"github.com/Varun5711/shortlinks/internal/storage"
)

func main() {
	log := logger.New("link-service")
	log.SetStdLog()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to open %s storage: %v", cfg.Storage.Driver, err)
	}
	defer closeStore()
	log.Info("Using %s storage", cfg.Storage.Driver)

	gen, err := idgen.NewGenerator(cfg.Codes.Length)
	if err != nil {
		log.Fatal("Failed to create code generator: %v", err)
	}

	var linkCache service.Cache
	if cfg.Cache.Enabled {
		redisClient, err := redis.NewRedisClient(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn("Redis unavailable, resolve cache runs in-process only: %v", err)
			linkCache = cache.NewLinkCache(cfg.Cache.L1Capacity, cfg.Cache.L1TTL, nil, 0)
		} else {
			defer redisClient.Close()
			linkCache = cache.NewLinkCache(cfg.Cache.L1Capacity, cfg.Cache.L1TTL, redisClient.GetClient(), cfg.Cache.L2TTL)
		}
	}

	linkService := service.NewLinkService(store, gen, linkCache, service.Config{
		MaxAttempts: cfg.Codes.MaxAttempts,
		BaseURL:     cfg.Services.BaseURL,
	}, log.Named("service"))

	rpcLog := log.Named("grpc")
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(
		linkgrpc.RecoveryInterceptor(rpcLog),
		linkgrpc.LoggingInterceptor(rpcLog),
	))
	linkgrpc.RegisterLinkServiceServer(grpcServer, linkgrpc.NewServer(linkService))

	healthServer := health.NewServer()
	healthServer.SetServingStatus(linkgrpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	listener, err := net.Listen("tcp", ":"+cfg.Services.LinkServicePort)
	if err != nil {
		log.Fatal("Failed to listen on :%s: %v", cfg.Services.LinkServicePort, err)
	}

	go func() {
		<-ctx.Done()
		log.Info("Shutting down")
		healthServer.Shutdown()
		grpcServer.GracefulStop()
	}()

	log.Info("Listening on :%s", cfg.Services.LinkServicePort)

	if err := grpcServer.Serve(listener); err != nil {
		log.Fatal("Server error: %v", err)
	}
}
