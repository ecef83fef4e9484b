package setup_test

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/robalyx/tickle/internal/redis"
	"github.com/robalyx/tickle/internal/setup"
	"github.com/robalyx/tickle/internal/setup/config"
	"github.com/robalyx/tickle/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func roundTrip(t *testing.T, docs storage.Store) {
	t.Helper()

	require.NoError(t, docs.WriteDocument(t.Context(), storage.KeyServerConfig, []byte(`{}`)))

	data, err := docs.ReadDocument(t.Context(), storage.KeyServerConfig)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestOpenStorageFile(t *testing.T) {
	t.Parallel()

	logger := zaptest.NewLogger(t)
	cfg := &config.CommonConfig{Storage: config.Storage{Backend: config.BackendFile, DataDir: t.TempDir()}}

	docs, err := setup.OpenStorage(t.Context(), cfg, nil, logger, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = docs.Close() })

	roundTrip(t, docs)
}

func TestOpenStorageSQLite(t *testing.T) {
	t.Parallel()

	logger := zaptest.NewLogger(t)
	cfg := &config.CommonConfig{Storage: config.Storage{
		Backend:    config.BackendSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "tickle.db"),
	}}

	docs, err := setup.OpenStorage(t.Context(), cfg, nil, logger, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = docs.Close() })

	roundTrip(t, docs)
}

func TestOpenStorageRedis(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	logger := zaptest.NewLogger(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	cfg := &config.CommonConfig{
		Storage: config.Storage{Backend: config.BackendRedis, RedisPrefix: "test:"},
		Redis:   config.Redis{Host: mr.Host(), Port: port},
	}

	manager := redis.NewManager(&cfg.Redis, logger)
	t.Cleanup(manager.Close)

	docs, err := setup.OpenStorage(t.Context(), cfg, manager, logger, logger)
	require.NoError(t, err)

	roundTrip(t, docs)
	assert.True(t, mr.Exists("test:"+storage.KeyServerConfig))
}

func TestOpenStorageUnknownBackend(t *testing.T) {
	t.Parallel()

	logger := zaptest.NewLogger(t)
	cfg := &config.CommonConfig{Storage: config.Storage{Backend: "tape"}}

	_, err := setup.OpenStorage(t.Context(), cfg, nil, logger, logger)
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}
