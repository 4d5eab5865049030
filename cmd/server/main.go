package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/vitals-risk-engine/internal/api"
	"github.com/vitals-risk-engine/internal/cache"
	"github.com/vitals-risk-engine/internal/config"
	"github.com/vitals-risk-engine/internal/database"
	"github.com/vitals-risk-engine/internal/domain"
	"github.com/vitals-risk-engine/internal/history"
	"github.com/vitals-risk-engine/internal/repository"
	"github.com/vitals-risk-engine/internal/service"
)

func main() {
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}
	cfg := configManager.GetConfig()

	logger := config.NewLogger(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional Redis tier for the result cache.
	var redisClient *redis.Client
	if cfg.Cache.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.Cache.RedisURL)
		if err != nil {
			logger.WithError(err).Fatal("Invalid Redis URL")
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("Redis unreachable, continuing with memory cache only")
			redisClient = nil
		}
	}

	resultCache, err := cache.NewResultCache(cfg.Cache.MaxEntries, cfg.Cache.TTL, redisClient, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create result cache")
	}

	var store service.AssessmentStore
	switch cfg.Storage.Mode {
	case config.StoragePostgres:
		db, err := database.Connect(ctx, database.Config{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			Database:    cfg.Database.Database,
			Username:    cfg.Database.Username,
			Password:    cfg.Database.Password,
			SSLMode:     cfg.Database.SSLMode,
			MaxConns:    cfg.Database.MaxConns,
			MinConns:    cfg.Database.MinConns,
			MaxConnLife: cfg.Database.ConnMaxLifetime,
			MaxConnIdle: cfg.Database.ConnMaxIdleTime,
		}, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()

		migrator, err := database.NewMigrator(database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			Database: cfg.Database.Database,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
			SSLMode:  cfg.Database.SSLMode,
		}.URL(), cfg.Database.MigrationsPath, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create migrator")
		}
		if err := migrator.Up(); err != nil {
			logger.WithError(err).Fatal("Failed to apply migrations")
		}
		migrator.Close()

		store = repository.NewAssessmentRepository(db.Pool, logger)
	case config.StorageSQLite:
		sqliteStore, err := history.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			logger.WithError(err).Fatal("Failed to open history store")
		}
		defer sqliteStore.Close()
		store = sqliteStore
	}

	validator := service.NewValidator()
	riskEngine := service.NewRiskEngine(domain.NewCoefficientTables(), logger)
	engine := service.NewEngine(validator, riskEngine, resultCache, store, logger)

	server := api.NewServer(cfg.Server, engine, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}
	logger.Info("Server stopped")
}
