package main

import (
	"context"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"presence-relay/internal/api"
	"presence-relay/internal/cache"
	"presence-relay/internal/config"
	"presence-relay/internal/presence"
	"presence-relay/internal/subscriber"
	"presence-relay/internal/ws"
	"syscall"
)

// directoryQueueSize bounds the number of pending presence mirror writes.
const directoryQueueSize = 256

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	_ = godotenv.Load()

	conf, err := config.New()
	if err != nil {
		return err
	}

	var loggerOpts slog.HandlerOptions
	if conf.Env == config.EnvDev {
		loggerOpts = slog.HandlerOptions{Level: slog.LevelDebug}
	}

	jsonHandler := slog.NewJSONHandler(os.Stdout, &loggerOpts)
	logger := slog.New(jsonHandler)

	wsManager := ws.NewManager(ctx, logger, conf.SendBufferSize)
	registry := presence.NewRegistry()

	var directory presence.Directory
	var redisClient *redis.Client
	if conf.RedisEnabled() {
		redisClient = redis.NewClient(&redis.Options{Addr: net.JoinHostPort(conf.RedisHost, conf.RedisPort)})
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("failed to close redis client", "error", err)
			}
		}()

		presenceDirectory := cache.NewRedisPresenceDirectory(redisClient, conf.PresenceTTL, logger, directoryQueueSize)
		directory = presenceDirectory
		go func() {
			if err := presenceDirectory.Run(ctx); err != nil {
				logger.Error("presence directory stopped with error", "error", err)
			}
		}()
	} else {
		logger.Info("redis disabled, presence directory and relay channel are off")
	}

	router := presence.NewRouter(logger.With("component", "router"), registry, wsManager, directory)
	wsManager.SetHandler(router)
	go wsManager.Start()

	if redisClient != nil {
		sub := subscriber.NewSubscriber(logger, redisClient, conf.RedisRelayChannel, router)
		go func() {
			if err := sub.Start(ctx); err != nil {
				logger.Error("subscriber stopped with error", "error", err)
			}
		}()
	}

	server := api.NewServer(conf, wsManager, registry, logger)
	if err := server.Start(ctx); err != nil {
		return err
	}

	return nil
}
