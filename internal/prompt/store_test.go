package prompt_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/robalyx/tickle/internal/prompt"
	"github.com/robalyx/tickle/internal/storage"
	"github.com/robalyx/tickle/internal/types"
	"github.com/robalyx/tickle/internal/types/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const samplePool = `{
	"truths": [{"id": "a1", "rating": "pg", "question": "Q1"}],
	"dares": [{"id": "d1", "rating": "r", "dare": "D1"}]
}`

var errWriteFailed = errors.New("disk full")

// failingStore rejects every write.
type failingStore struct {
	*storage.Memory
}

func (failingStore) WriteDocument(context.Context, string, []byte) error {
	return errWriteFailed
}

func newStore(t *testing.T, doc string, opts ...prompt.Option) (*prompt.Store, *storage.Memory) {
	t.Helper()

	seed := map[string][]byte{}
	if doc != "" {
		seed[storage.KeyQuestions] = []byte(doc)
	}

	docs := storage.NewMemory(seed)

	return prompt.NewStore(docs, zaptest.NewLogger(t), opts...), docs
}

func TestStoreLoad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		doc    string
		truths int
	}{
		{name: "valid pool", doc: samplePool, truths: 1},
		{name: "missing document", doc: "", truths: 0},
		{name: "corrupt document", doc: "{not json", truths: 0},
		{name: "missing keys default to empty", doc: `{"wyr": []}`, truths: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store, _ := newStore(t, tt.doc)
			pool := store.Load(t.Context())

			require.NotNil(t, pool)
			assert.Equal(t, tt.truths, pool.Len(enum.CategoryTruth))
			assert.Same(t, pool, store.Pool())

			for _, category := range enum.Categories() {
				assert.NotPanics(t, func() { _ = pool.Prompts(category) })
			}
		})
	}
}

func TestStoreReload(t *testing.T) {
	t.Parallel()

	store, docs := newStore(t, samplePool)
	store.Load(t.Context())

	// Invalid document keeps the previous pool
	require.NoError(t, docs.WriteDocument(t.Context(), storage.KeyQuestions, []byte(`{"truths": []}`)))
	_, err := store.Reload(t.Context())
	require.ErrorIs(t, err, prompt.ErrInvalidPool)
	assert.Equal(t, 1, store.Pool().Len(enum.CategoryTruth))

	// Valid document replaces it
	require.NoError(t, docs.WriteDocument(t.Context(), storage.KeyQuestions, []byte(`{
		"truths": [
			{"id": "a1", "rating": "pg", "question": "Q1"},
			{"id": "a2", "rating": "pg13", "question": "Q2"}
		],
		"dares": [],
		"paranoia": [{"id": "p1", "rating": "pg", "question": "P1"}, {"id": "p2", "question": "no rating"}]
	}`)))

	result, err := store.Reload(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Stats.Total)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 2, store.Pool().Len(enum.CategoryTruth))
	assert.Zero(t, store.Pool().Len(enum.CategoryDare))
}

func TestStoreAppend(t *testing.T) {
	t.Parallel()

	store, docs := newStore(t, samplePool)
	store.Load(t.Context())

	added, err := store.Append(t.Context(), enum.CategoryDare, "Do X", enum.RatingR)
	require.NoError(t, err)
	assert.Len(t, added.ID, 7)
	assert.Equal(t, enum.RatingR, added.Rating)
	assert.Equal(t, 2, store.Pool().Len(enum.CategoryDare))

	data, err := docs.ReadDocument(t.Context(), storage.KeyQuestions)
	require.NoError(t, err)

	stored, err := types.DecodePool(data)
	require.NoError(t, err)
	require.Equal(t, 2, stored.Len(enum.CategoryDare))
	assert.Equal(t, types.Prompt{ID: added.ID, Category: enum.CategoryDare, Rating: enum.RatingR, Text: "Do X"},
		stored.Prompts(enum.CategoryDare)[1])
	assert.Contains(t, string(data), `"dare": "Do X"`)

	_, err = store.Append(t.Context(), enum.CategoryDare, "", enum.RatingPG)
	require.ErrorIs(t, err, prompt.ErrEmptyText)
}

func TestStoreAppendPicksUnusedID(t *testing.T) {
	t.Parallel()

	// Both stores draw the same sequence, so the first id of the second
	// store collides with the prompt appended through the first one.
	docs := storage.NewMemory(nil)
	first := prompt.NewStore(docs, zaptest.NewLogger(t), prompt.WithRand(rand.New(rand.NewPCG(5, 5))))
	second := prompt.NewStore(docs, zaptest.NewLogger(t), prompt.WithRand(rand.New(rand.NewPCG(5, 5))))

	a, err := first.Append(t.Context(), enum.CategoryTruth, "one", enum.RatingPG)
	require.NoError(t, err)

	b, err := second.Append(t.Context(), enum.CategoryTruth, "two", enum.RatingPG)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	// The same id is fine in another category
	c, err := prompt.NewStore(docs, zaptest.NewLogger(t), prompt.WithRand(rand.New(rand.NewPCG(5, 5)))).
		Append(t.Context(), enum.CategoryDare, "three", enum.RatingPG)
	require.NoError(t, err)
	assert.Equal(t, a.ID, c.ID)
}

func TestStoreAppendIDSpaceExhausted(t *testing.T) {
	t.Parallel()

	docs := storage.NewMemory(nil)
	seed := rand.New(rand.NewPCG(9, 9))
	first := prompt.NewStore(docs, zaptest.NewLogger(t), prompt.WithRand(seed))

	_, err := first.Append(t.Context(), enum.CategoryTruth, "one", enum.RatingPG)
	require.NoError(t, err)

	limited := prompt.NewStore(docs, zaptest.NewLogger(t),
		prompt.WithRand(rand.New(rand.NewPCG(9, 9))), prompt.WithMaxIDAttempts(1))

	_, err = limited.Append(t.Context(), enum.CategoryTruth, "two", enum.RatingPG)
	require.ErrorIs(t, err, prompt.ErrIDSpaceExhausted)
}

func TestStoreAppendWriteFailure(t *testing.T) {
	t.Parallel()

	docs := failingStore{storage.NewMemory(map[string][]byte{storage.KeyQuestions: []byte(samplePool)})}
	store := prompt.NewStore(docs, zaptest.NewLogger(t))
	store.Load(t.Context())

	_, err := store.Append(t.Context(), enum.CategoryTruth, "Q2", enum.RatingPG)
	require.ErrorIs(t, err, errWriteFailed)
	assert.Equal(t, 1, store.Pool().Len(enum.CategoryTruth))
}

func TestStoreAppendRefusesCorruptDocument(t *testing.T) {
	t.Parallel()

	store, docs := newStore(t, "{broken")

	_, err := store.Append(t.Context(), enum.CategoryTruth, "Q", enum.RatingPG)
	require.Error(t, err)

	data, err := docs.ReadDocument(t.Context(), storage.KeyQuestions)
	require.NoError(t, err)
	assert.Equal(t, "{broken", string(data))
}

func TestStoreConcurrentAppends(t *testing.T) {
	t.Parallel()

	store, docs := newStore(t, samplePool)
	store.Load(t.Context())

	const workers = 20

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := store.Append(t.Context(), enum.CategoryTruth, "concurrent", enum.RatingPG)
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	data, err := docs.ReadDocument(t.Context(), storage.KeyQuestions)
	require.NoError(t, err)

	stored, err := types.DecodePool(data)
	require.NoError(t, err)
	assert.Equal(t, workers+1, stored.Len(enum.CategoryTruth))

	seen := make(map[string]bool)
	for _, p := range stored.Prompts(enum.CategoryTruth) {
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	assert.True(t, prompt.Validate([]byte(samplePool)))
	assert.False(t, prompt.Validate([]byte(`{"dares": []}`)))
	assert.False(t, prompt.Validate([]byte(`[]`)))
}
