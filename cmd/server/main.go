package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/brainsait/drg-suite/internal/api"
	"github.com/brainsait/drg-suite/internal/catalog"
	"github.com/brainsait/drg-suite/internal/config"
	"github.com/brainsait/drg-suite/internal/database"
	"github.com/brainsait/drg-suite/internal/domain"
	"github.com/brainsait/drg-suite/internal/engine"
	"github.com/brainsait/drg-suite/internal/feedback"
	"github.com/brainsait/drg-suite/internal/gateway"
	"github.com/brainsait/drg-suite/internal/nudge"
	"github.com/brainsait/drg-suite/internal/repository"
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

	logger := newLogger(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	// Catalog. The database source also wires up the connection pool used
	// by the catalog repository.
	var catalogSource domain.CatalogSource
	if cfg.Catalog.Source == catalog.SourceDatabase {
		db, err := database.NewConnection(ctx, cfg.Database, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()

		runner, err := database.NewMigrationRunner(database.DSN(cfg.Database), "migrations", logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create migration runner")
		}
		if err := runner.Up(); err != nil {
			logger.WithError(err).Fatal("Failed to run migrations")
		}
		runner.Close()

		catalogSource = repository.NewCatalogRepository(db.Pool, logger)
	}

	cat, err := catalog.Load(ctx, cfg.Catalog, catalogSource, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load catalog")
	}

	// Payer gateway with optional Redis status cache.
	statusCache, err := gateway.NewStatusCache(ctx, cfg.Cache, logger)
	if err != nil {
		logger.WithError(err).Warn("Claim-status cache unavailable, continuing without it")
		statusCache = nil
	}
	defer statusCache.Close()

	gatewayClient := gateway.NewClient(cfg.Gateway, statusCache, logger)

	eng, err := engine.New(cat, cfg.Automation, gatewayClient, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create coding engine")
	}

	feedbackStore, err := newFeedbackStore(cfg.Feedback)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open feedback store")
	}
	defer feedbackStore.Close()

	nudgeService := nudge.NewService(nudge.DefaultRules(), logger)
	sessions := nudge.NewSessionManager(logger)

	server := api.NewServer(configManager, eng, nudgeService, sessions, feedbackStore, gatewayClient, logger)

	logger.WithFields(logrus.Fields{
		"host":    cfg.Server.Host,
		"port":    cfg.Server.Port,
		"version": engine.Version,
	}).Info("Starting DRG suite server")

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}
	logger.Info("Server stopped")
}

func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

func newFeedbackStore(cfg domain.FeedbackConfig) (feedback.Store, error) {
	if cfg.Driver == "postgres" {
		return feedback.NewPostgresStoreFromURL(cfg.DSN)
	}
	return feedback.NewSQLiteStore(cfg.SQLitePath)
}
