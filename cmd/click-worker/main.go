package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Varun5711/shortlinks/internal/config"
	"github.com/Varun5711/shortlinks/internal/events"
	"github.com/Varun5711/shortlinks/internal/logger"
	"github.com/Varun5711/shortlinks/internal/redis"
	"github.com/Varun5711/shortlinks/internal/storage"
)

func main() {
	log := logger.New("click-worker")
	log.SetStdLog()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := redis.NewRedisClient(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	store, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to open %s storage: %v", cfg.Storage.Driver, err)
	}
	defer closeStore()

	consumer := events.NewClickConsumer(redisClient.GetClient(), store, events.ConsumerConfig{
		StreamName:    cfg.Redis.StreamName,
		ConsumerGroup: cfg.ClickWorker.ConsumerGroup,
		ConsumerName:  cfg.ClickWorker.ConsumerName,
		BatchSize:     cfg.ClickWorker.BatchSize,
		PollInterval:  cfg.ClickWorker.PollInterval,
		BlockTime:     cfg.ClickWorker.BlockTime,
	}, log)

	if err := consumer.EnsureGroup(ctx); err != nil {
		log.Fatal("Failed to create consumer group: %v", err)
	}

	log.Info("Consuming %s as %s/%s", cfg.Redis.StreamName, cfg.ClickWorker.ConsumerGroup, cfg.ClickWorker.ConsumerName)

	if err := consumer.Run(ctx); err != nil {
		log.Error("Consumer stopped: %v", err)
	}
	log.Info("Shutting down")
}
