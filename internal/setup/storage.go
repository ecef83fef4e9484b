package setup

import (
	"context"
	"fmt"

	"github.com/robalyx/tickle/internal/redis"
	"github.com/robalyx/tickle/internal/setup/config"
	"github.com/robalyx/tickle/internal/storage"
	"github.com/robalyx/tickle/internal/storage/file"
	"github.com/robalyx/tickle/internal/storage/postgres"
	redisstore "github.com/robalyx/tickle/internal/storage/redis"
	"github.com/robalyx/tickle/internal/storage/sqlite"
	"go.uber.org/zap"
)

// OpenStorage opens the document store selected by the storage backend setting.
func OpenStorage(
	ctx context.Context, cfg *config.CommonConfig, redisManager *redis.Manager, logger, dbLogger *zap.Logger,
) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendFile:
		return file.New(cfg.Storage.DataDir, cfg.Storage.Paths, logger), nil

	case config.BackendRedis:
		client, err := redisManager.GetClient(redis.DocumentDBIndex)
		if err != nil {
			return nil, err
		}

		return storage.WithRetry(redisstore.New(client, cfg.Storage.RedisPrefix, logger), logger), nil

	case config.BackendPostgres:
		return postgres.Open(ctx, &cfg.PostgreSQL, dbLogger, cfg.Storage.AutoMigrate)

	case config.BackendSQLite:
		return sqlite.Open(cfg.Storage.SQLitePath, dbLogger)

	default:
		return nil, fmt.Errorf("%w: storage.backend %q", config.ErrInvalidConfig, cfg.Storage.Backend)
	}
}
