package prompt_test

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/robalyx/tickle/internal/prompt"
	"github.com/robalyx/tickle/internal/types"
	"github.com/robalyx/tickle/internal/types/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticSource serves a fixed pool.
type staticSource struct {
	pool *types.Pool
}

func (s staticSource) Pool() *types.Pool {
	return s.pool
}

func ptr[T any](v T) *T {
	return &v
}

func buildPool(t *testing.T, prompts ...types.Prompt) *types.Pool {
	t.Helper()

	pool := types.NewPool()
	for _, p := range prompts {
		require.NoError(t, pool.Add(p))
	}

	return pool
}

func truth(id string, rating enum.Rating) types.Prompt {
	return types.Prompt{ID: id, Category: enum.CategoryTruth, Rating: rating, Text: "Q " + id}
}

func TestSelectSingleTruth(t *testing.T) {
	t.Parallel()

	pool, err := types.DecodePool([]byte(`{"truths":[{"id":"a1","rating":"pg","question":"Q1"}]}`))
	require.NoError(t, err)

	selector := prompt.NewSelector(staticSource{pool}, nil)
	got, err := selector.Select(prompt.Query{Category: enum.CategoryTruth, Allowed: enum.AllRatings()})
	require.NoError(t, err)
	assert.Equal(t, "a1", got.ID)
	assert.Equal(t, "Q1", got.Text)
}

func TestSelect(t *testing.T) {
	t.Parallel()

	pool := buildPool(t,
		truth("pg1", enum.RatingPG),
		truth("pg2", enum.RatingPG),
		truth("r1", enum.RatingR),
	)

	tests := []struct {
		name    string
		query   prompt.Query
		allowed []string
		wantErr error
	}{
		{
			name:    "explicit rating",
			query:   prompt.Query{Category: enum.CategoryTruth, Rating: ptr(enum.RatingR), Allowed: enum.AllRatings()},
			allowed: []string{"r1"},
		},
		{
			name:    "allowed set filters r",
			query:   prompt.Query{Category: enum.CategoryTruth, Allowed: enum.NewRatingSet(enum.RatingPG, enum.RatingPG13)},
			allowed: []string{"pg1", "pg2"},
		},
		{
			name: "exclusion with two candidates",
			query: prompt.Query{
				Category: enum.CategoryTruth, Rating: ptr(enum.RatingPG), Allowed: enum.AllRatings(), ExcludeID: "pg1",
			},
			allowed: []string{"pg2"},
		},
		{
			name: "exclusion ignored with one candidate",
			query: prompt.Query{
				Category: enum.CategoryTruth, Rating: ptr(enum.RatingR), Allowed: enum.AllRatings(), ExcludeID: "r1",
			},
			allowed: []string{"r1"},
		},
		{
			name:    "explicit rating outside allowed set",
			query:   prompt.Query{Category: enum.CategoryTruth, Rating: ptr(enum.RatingR), Allowed: enum.NewRatingSet(enum.RatingPG)},
			wantErr: prompt.ErrRatingNotAllowed,
		},
		{
			name:    "no matching rating",
			query:   prompt.Query{Category: enum.CategoryTruth, Rating: ptr(enum.RatingPG13), Allowed: enum.AllRatings()},
			wantErr: prompt.ErrNoPrompt,
		},
		{
			name:    "empty category",
			query:   prompt.Query{Category: enum.CategoryParanoia, Allowed: enum.AllRatings()},
			wantErr: prompt.ErrNoPrompt,
		},
		{
			name:    "empty allowed set",
			query:   prompt.Query{Category: enum.CategoryTruth, Allowed: enum.NoRatings},
			wantErr: prompt.ErrNoPrompt,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			selector := prompt.NewSelector(staticSource{pool}, rand.New(rand.NewPCG(1, 1)))

			for range 50 {
				got, err := selector.Select(tt.query)
				if tt.wantErr != nil {
					require.ErrorIs(t, err, tt.wantErr)
					return
				}

				require.NoError(t, err)
				assert.Contains(t, tt.allowed, got.ID)
			}
		})
	}
}

func TestDraw(t *testing.T) {
	t.Parallel()

	pool := buildPool(t,
		types.Prompt{ID: "d1", Category: enum.CategoryDare, Rating: enum.RatingPG, Text: "Dare"},
	)
	selector := prompt.NewSelector(staticSource{pool}, rand.New(rand.NewPCG(2, 2)))

	t.Run("random category finds the populated one", func(t *testing.T) {
		t.Parallel()

		got, err := selector.Draw(prompt.DrawRequest{
			Categories: []enum.Category{enum.CategoryTruth, enum.CategoryDare},
			Allowed:    enum.AllRatings(),
		}, prompt.RetryPolicy{MaxAttempts: 15, Fallback: []enum.Category{enum.CategoryDare}})
		require.NoError(t, err)
		assert.Equal(t, "d1", got.ID)
	})

	t.Run("fallback category is used after attempts run out", func(t *testing.T) {
		t.Parallel()

		got, err := selector.Draw(prompt.DrawRequest{
			Categories: []enum.Category{enum.CategoryParanoia, enum.CategoryNeverHaveIEver},
			Allowed:    enum.AllRatings(),
		}, prompt.RetryPolicy{MaxAttempts: 3, Fallback: []enum.Category{enum.CategoryTruth, enum.CategoryDare}})
		require.NoError(t, err)
		assert.Equal(t, "d1", got.ID)
	})

	t.Run("exhausted", func(t *testing.T) {
		t.Parallel()

		_, err := selector.Draw(prompt.DrawRequest{
			Categories: []enum.Category{enum.CategoryTruth},
			Allowed:    enum.AllRatings(),
		}, prompt.RetryPolicy{MaxAttempts: 10, Fallback: []enum.Category{enum.CategoryWouldYouRather}})
		require.ErrorIs(t, err, prompt.ErrNoPrompt)
	})

	t.Run("policy violation is not retried", func(t *testing.T) {
		t.Parallel()

		_, err := selector.Draw(prompt.DrawRequest{
			Categories: []enum.Category{enum.CategoryDare},
			Rating:     ptr(enum.RatingR),
			Allowed:    enum.NewRatingSet(enum.RatingPG),
		}, prompt.RetryPolicy{MaxAttempts: 10})
		require.ErrorIs(t, err, prompt.ErrRatingNotAllowed)
	})

	t.Run("no categories", func(t *testing.T) {
		t.Parallel()

		_, err := selector.Draw(prompt.DrawRequest{Allowed: enum.AllRatings()}, prompt.RetryPolicy{MaxAttempts: 1})
		require.ErrorIs(t, err, prompt.ErrNoCategories)
	})
}

// genPrompts generates a truth pool with unique ids and random ratings.
func genPrompts() gopter.Gen {
	return gen.SliceOfN(12, gen.IntRange(0, 2)).Map(func(ratings []int) []types.Prompt {
		prompts := make([]types.Prompt, 0, len(ratings))
		for i, r := range ratings {
			prompts = append(prompts, types.Prompt{
				ID:       fmt.Sprintf("p%d", i),
				Category: enum.CategoryTruth,
				Rating:   enum.Rating(r),
				Text:     "text",
			})
		}

		return prompts
	})
}

func TestSelectProperties(t *testing.T) {
	t.Parallel()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("selection respects the rating constraint", prop.ForAll(
		func(prompts []types.Prompt, mask uint8, explicit int, seed uint64) bool {
			pool := types.NewPool()
			for _, p := range prompts {
				if pool.Add(p) != nil {
					return false
				}
			}

			allowed := enum.RatingSet(mask & 0b111)
			query := prompt.Query{Category: enum.CategoryTruth, Allowed: allowed}

			if explicit >= 0 {
				rating := enum.Rating(explicit)
				if !allowed.Has(rating) {
					return true
				}

				query.Rating = &rating
			}

			selector := prompt.NewSelector(staticSource{pool}, rand.New(rand.NewPCG(seed, 1)))
			got, err := selector.Select(query)
			if err != nil {
				return len(prompt.Filter(prompts, query)) == 0
			}

			if query.Rating != nil {
				return got.Rating == *query.Rating
			}

			return allowed.Has(got.Rating)
		},
		genPrompts(),
		gen.UInt8(),
		gen.IntRange(-1, 2),
		gen.UInt64(),
	))

	properties.Property("excluded id is never returned when two or more match", prop.ForAll(
		func(prompts []types.Prompt, excludeIdx int, seed uint64) bool {
			pool := types.NewPool()
			for _, p := range prompts {
				if pool.Add(p) != nil {
					return false
				}
			}

			if len(prompts) == 0 {
				return true
			}

			exclude := prompts[excludeIdx%len(prompts)]
			query := prompt.Query{
				Category:  enum.CategoryTruth,
				Rating:    &exclude.Rating,
				Allowed:   enum.AllRatings(),
				ExcludeID: exclude.ID,
			}

			matching := 0
			for _, p := range prompts {
				if p.Rating == exclude.Rating {
					matching++
				}
			}

			selector := prompt.NewSelector(staticSource{pool}, rand.New(rand.NewPCG(seed, 2)))
			got, err := selector.Select(query)
			if err != nil {
				return false
			}

			if matching >= 2 {
				return got.ID != exclude.ID
			}

			return got.ID == exclude.ID
		},
		genPrompts(),
		gen.IntRange(0, 100),
		gen.UInt64(),
	))

	properties.TestingRun(t)
}
