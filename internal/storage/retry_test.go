package storage_test

import (
	"context"
	"testing"

	"github.com/robalyx/tickle/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// flakyStore fails the first few calls of each kind.
type flakyStore struct {
	*storage.Memory
	readFailures  int
	writeFailures int
	reads         int
	writes        int
}

func (f *flakyStore) ReadDocument(ctx context.Context, key string) ([]byte, error) {
	f.reads++
	if f.reads <= f.readFailures {
		return nil, assert.AnError
	}

	return f.Memory.ReadDocument(ctx, key)
}

func (f *flakyStore) WriteDocument(ctx context.Context, key string, data []byte) error {
	f.writes++
	if f.writes <= f.writeFailures {
		return assert.AnError
	}

	return f.Memory.WriteDocument(ctx, key, data)
}

func TestRetryingRecovers(t *testing.T) {
	t.Parallel()

	flaky := &flakyStore{Memory: storage.NewMemory(nil), readFailures: 1, writeFailures: 2}
	store := storage.WithRetry(flaky, zaptest.NewLogger(t))

	require.NoError(t, store.WriteDocument(t.Context(), "k", []byte("v")))
	assert.Equal(t, 3, flaky.writes)

	data, err := store.ReadDocument(t.Context(), "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), data)
	assert.Equal(t, 2, flaky.reads)
}

func TestRetryingDoesNotRetryMissingDocuments(t *testing.T) {
	t.Parallel()

	flaky := &flakyStore{Memory: storage.NewMemory(nil)}
	store := storage.WithRetry(flaky, zaptest.NewLogger(t))

	_, err := store.ReadDocument(t.Context(), "missing")
	require.ErrorIs(t, err, storage.ErrDocumentNotFound)
	assert.Equal(t, 1, flaky.reads)
}
