package file_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/robalyx/tickle/internal/storage"
	"github.com/robalyx/tickle/internal/storage/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestStorePaths(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := file.New(dir, map[string]string{storage.KeyQuestions: "custom/q.json"}, zaptest.NewLogger(t))

	assert.Equal(t, filepath.Join(dir, "custom", "q.json"), store.Path(storage.KeyQuestions))
	assert.Equal(t, filepath.Join(dir, "data", "suggestions.json"), store.Path(storage.KeySuggestions))
	assert.Equal(t, filepath.Join(dir, "other.json"), store.Path("other"))
	assert.Equal(t, "/abs/x.json", file.New(dir, map[string]string{"x": "/abs/x.json"}, zaptest.NewLogger(t)).Path("x"))
}

func TestStoreReadWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := file.New(dir, nil, zaptest.NewLogger(t))

	_, err := store.ReadDocument(t.Context(), storage.KeyServerConfig)
	require.ErrorIs(t, err, storage.ErrDocumentNotFound)

	require.NoError(t, store.WriteDocument(t.Context(), storage.KeyServerConfig, []byte(`{"1": 10}`)))
	require.NoError(t, store.WriteDocument(t.Context(), storage.KeyServerConfig, []byte(`{"1": 11}`)))

	data, err := store.ReadDocument(t.Context(), storage.KeyServerConfig)
	require.NoError(t, err)
	assert.Equal(t, `{"1": 11}`, string(data))

	// Only the target file remains after the atomic replace
	entries, err := os.ReadDir(filepath.Join(dir, "data"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "server_config.json", entries[0].Name())

	require.NoError(t, store.Close())
}
