package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/container"
	"github.com/serroba/shortlink/internal/events"
	"github.com/serroba/shortlink/internal/messaging"
	"go.uber.org/zap"
)

type config struct {
	RedisAddr     string `env:"REDIS_ADDR"     envDefault:"localhost:6379"`
	LogFormat     string `env:"LOG_FORMAT"     envDefault:"console"`
	LogLevel      string `env:"LOG_LEVEL"      envDefault:"info"`
	ConsumerGroup string `env:"CONSUMER_GROUP" envDefault:"audit"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	logger, err := container.NewLogger(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		panic(err)
	}

	defer func() { _ = logger.Sync() }()

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() { _ = client.Close() }()

	subscriber, err := messaging.NewRedisSubscriber(client, cfg.ConsumerGroup, messaging.NewZapLogger(logger))
	if err != nil {
		logger.Fatal("failed to create subscriber", zap.Error(err))
	}

	group := messaging.NewConsumerGroup(subscriber, logger)
	events.RegisterAuditConsumers(group, subscriber, events.NewAuditor(logger), logger)

	ctx, cancel := context.WithCancel(context.Background())

	if err := group.Start(ctx); err != nil {
		logger.Fatal("failed to start consumer group", zap.Error(err))
	}

	logger.Info("consumers running",
		zap.String("redis", cfg.RedisAddr),
		zap.String("group", cfg.ConsumerGroup),
		zap.Int("consumers", group.Len()),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	cancel()

	if err := group.Shutdown(); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
}
