// Package setup wires configuration, logging, tracing and storage for the binaries.
package setup

import (
	"context"
	"log"

	"github.com/robalyx/tickle/internal/redis"
	"github.com/robalyx/tickle/internal/setup/config"
	"github.com/robalyx/tickle/internal/setup/telemetry"
	"github.com/robalyx/tickle/internal/storage"
	"go.uber.org/zap"
)

// App bundles the shared dependencies of a running service.
type App struct {
	Config       *config.Config     // Application configuration
	ConfigDir    string             // Directory the config was loaded from
	Logger       *zap.Logger        // Main application logger
	DBLogger     *zap.Logger        // Storage-specific logger
	Docs         storage.Store      // Document store
	RedisManager *redis.Manager     // Redis connection manager
	LogManager   *telemetry.Manager // Log management system
	tracing      bool
}

// InitializeApp loads the configuration and brings up logging, tracing,
// redis and the document store in that order.
func InitializeApp(ctx context.Context, serviceType telemetry.ServiceType, logDir string) (*App, error) {
	cfg, configDir, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	// Logging comes first so setup issues are captured
	tracingEnabled := cfg.Common.Telemetry.UptraceDSN != ""
	logManager := telemetry.NewManager(serviceType, logDir, &cfg.Common.Debug, tracingEnabled)

	logger, dbLogger, err := logManager.GetLoggers()
	if err != nil {
		return nil, err
	}

	telemetry.SetupTracing(&cfg.Common.Telemetry, config.RepositoryVersion, logger)

	redisManager := redis.NewManager(&cfg.Common.Redis, logger)

	docs, err := OpenStorage(ctx, &cfg.Common, redisManager, logger, dbLogger.Named("storage"))
	if err != nil {
		logger.Error("Failed to open document storage", zap.String("backend", cfg.Common.Storage.Backend), zap.Error(err))
		redisManager.Close()
		logManager.Stop()

		return nil, err
	}

	logger.Info("Document storage ready",
		zap.String("backend", cfg.Common.Storage.Backend),
		zap.String("configDir", configDir))

	return &App{
		Config:       cfg,
		ConfigDir:    configDir,
		Logger:       logger,
		DBLogger:     dbLogger.Named("storage"),
		Docs:         docs,
		RedisManager: redisManager,
		LogManager:   logManager,
		tracing:      tracingEnabled,
	}, nil
}

// Cleanup shuts components down in reverse initialization order.
// Errors are logged so every component gets a cleanup attempt.
func (s *App) Cleanup(ctx context.Context) {
	if err := s.Docs.Close(); err != nil {
		s.Logger.Error("Failed to close document storage", zap.Error(err))
	}

	// Redis goes after storage since the redis backend uses it
	s.RedisManager.Close()

	if s.tracing {
		if err := telemetry.ShutdownTracing(ctx); err != nil {
			s.Logger.Error("Failed to flush traces", zap.Error(err))
		}
	}

	if err := s.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	if err := s.DBLogger.Sync(); err != nil {
		log.Printf("Failed to sync DB logger: %v", err)
	}

	s.LogManager.Stop()
}
