// Package main is the entry point for the engagement worker.
//
// The worker consumes the event streams and keeps the derived state fresh:
// like, follow and comment events become stored notices, publish and delete
// events update the post search index.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/forum-hub/forum-engagement/config"
	"github.com/forum-hub/forum-engagement/internal/application/eventhandler"
	"github.com/forum-hub/forum-engagement/internal/infrastructure/messaging"
	"github.com/forum-hub/forum-engagement/internal/infrastructure/persistence/postgres"
	"github.com/forum-hub/forum-engagement/internal/infrastructure/persistence/redis"
	"github.com/forum-hub/forum-engagement/internal/infrastructure/scheduler"
	"github.com/forum-hub/forum-engagement/internal/infrastructure/scheduler/jobs"
)

// scoreRefreshInterval is how often the ranking sweep runs.
const scoreRefreshInterval = 5 * time.Minute

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting engagement worker",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"consumer", cfg.Broker.ConsumerName,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()

	if cfg.Database.MigrateOnStart {
		log.Info("applying database migrations...")
		if err := dbConn.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	log.Info("database ready")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REDIS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to redis...")
	redisCfg := redis.DefaultConfig()
	redisCfg.Host = cfg.Redis.Host
	redisCfg.Port = cfg.Redis.Port
	redisCfg.Password = cfg.Redis.Password
	redisCfg.DB = cfg.Redis.DB
	redisCfg.PoolSize = cfg.Redis.PoolSize
	redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
	redisCfg.DialTimeout = cfg.Redis.DialTimeout
	redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
	redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

	redisClient, err := redis.NewClient(ctx, redisCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer func() {
		log.Info("closing redis connection...")
		_ = redisClient.Close()
	}()
	log.Info("redis ready")

	// ─────────────────────────────────────────────────────────────────────────
	// 5. HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	messageRepo := postgres.NewMessageRepository(dbConn)
	postRepo := postgres.NewPostRepository(dbConn)

	notices := eventhandler.NewNoticeMaterializer(messageRepo, log)
	indexer := eventhandler.NewIndexUpdater(postRepo, eventhandler.NewLoggingIndex(log), log)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. CONSUMER
	// ─────────────────────────────────────────────────────────────────────────
	consumerCfg := messaging.DefaultConsumerConfig()
	consumerCfg.Group = cfg.Broker.ConsumerGroup
	consumerCfg.Name = cfg.Broker.ConsumerName
	consumerCfg.BlockTimeout = cfg.Broker.BlockTimeout
	consumerCfg.BatchSize = cfg.Broker.BatchSize
	consumerCfg.DedupTTL = cfg.Broker.DedupTTL
	consumerCfg.Logger = log

	consumer := messaging.NewConsumer(redisClient, notices, indexer, consumerCfg)
	if err := consumer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. SCHEDULED JOBS
	// ─────────────────────────────────────────────────────────────────────────
	likeStore := redis.NewEngagementStore(redisClient, log)

	sched := scheduler.New(log)
	if err := sched.Register(jobs.NewRefreshScores(postRepo, likeStore, log), scoreRefreshInterval); err != nil {
		return fmt.Errorf("failed to register score job: %w", err)
	}
	sched.Start()

	// ─────────────────────────────────────────────────────────────────────────
	// 8. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("engagement worker is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-sigCh
	log.Info("received shutdown signal", "signal", sig.String())

	sched.Stop()
	consumer.Stop()
	log.Info("shutdown completed")
	return nil
}

// setupLogger configures structured logging.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
