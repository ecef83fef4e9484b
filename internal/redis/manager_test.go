package redis_test

import (
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/robalyx/tickle/internal/redis"
	"github.com/robalyx/tickle/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestManagerSelectsDatabase(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	manager := redis.NewManager(&config.Redis{Host: mr.Host(), Port: port}, zaptest.NewLogger(t))
	t.Cleanup(manager.Close)

	docs, err := manager.GetClient(redis.DocumentDBIndex)
	require.NoError(t, err)

	again, err := manager.GetClient(redis.DocumentDBIndex)
	require.NoError(t, err)
	assert.Equal(t, docs, again)

	sessions, err := manager.GetClient(redis.SessionDBIndex)
	require.NoError(t, err)

	ctx := t.Context()
	require.NoError(t, sessions.Do(ctx, sessions.B().Set().Key("k").Value("v").Build()).Error())

	mr.Select(redis.SessionDBIndex)
	assert.True(t, mr.Exists("k"))

	mr.Select(redis.DocumentDBIndex)
	assert.False(t, mr.Exists("k"))
}
