package prompt

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/robalyx/tickle/internal/types"
	"github.com/robalyx/tickle/internal/types/enum"
)

var (
	// ErrNoPrompt is returned when no prompt matches the constraints.
	ErrNoPrompt = errors.New("no prompt matches the constraints")
	// ErrRatingNotAllowed is returned when an explicit rating is outside the allowed set.
	// Callers are expected to enforce channel policy before selecting.
	ErrRatingNotAllowed = errors.New("explicit rating is not in the allowed set")
	// ErrNoCategories is returned when a draw request names no category.
	ErrNoCategories = errors.New("no categories to draw from")
)

// PoolSource provides the current prompt pool.
type PoolSource interface {
	Pool() *types.Pool
}

// Query constrains a single selection.
type Query struct {
	Category enum.Category
	// Rating, when set, is the only rating considered.
	Rating *enum.Rating
	// Allowed is the set of ratings the channel may show.
	Allowed enum.RatingSet
	// ExcludeID is skipped unless it is the only candidate.
	ExcludeID string
}

// DrawRequest constrains a draw that may pick its category at random.
type DrawRequest struct {
	// Categories is the candidate set; one is chosen uniformly per attempt.
	Categories []enum.Category
	Rating     *enum.Rating
	Allowed    enum.RatingSet
	ExcludeID  string
}

// RetryPolicy bounds a draw. A random category choice is retried up to
// MaxAttempts times, then each Fallback category is tried once in order.
type RetryPolicy struct {
	MaxAttempts int
	Fallback    []enum.Category
}

// Selector draws prompts uniformly from a pool.
type Selector struct {
	source PoolSource
	rng    *rand.Rand
	mu     sync.Mutex
}

// NewSelector creates a selector over the given pool source.
// A nil rng uses a time-seeded generator.
func NewSelector(source PoolSource, rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x73656c)) //nolint:gosec // not security sensitive
	}

	return &Selector{source: source, rng: rng}
}

// Select returns one prompt of the category satisfying the query.
func (s *Selector) Select(q Query) (types.Prompt, error) {
	if q.Rating != nil && !q.Allowed.Has(*q.Rating) {
		return types.Prompt{}, fmt.Errorf("%w: %s", ErrRatingNotAllowed, q.Rating.Label())
	}

	candidates := Filter(s.source.Pool().Prompts(q.Category), q)
	if len(candidates) == 0 {
		return types.Prompt{}, ErrNoPrompt
	}

	return candidates[s.intN(len(candidates))], nil
}

// Draw selects a prompt following the retry policy.
func (s *Selector) Draw(req DrawRequest, policy RetryPolicy) (types.Prompt, error) {
	if len(req.Categories) == 0 {
		return types.Prompt{}, ErrNoCategories
	}

	attempts := max(policy.MaxAttempts, 1)
	if len(req.Categories) == 1 {
		// A fixed category makes every attempt identical
		attempts = 1
	}

	for range attempts {
		category := req.Categories[s.intN(len(req.Categories))]

		prompt, err := s.Select(Query{
			Category:  category,
			Rating:    req.Rating,
			Allowed:   req.Allowed,
			ExcludeID: req.ExcludeID,
		})
		if err == nil {
			return prompt, nil
		}

		if !errors.Is(err, ErrNoPrompt) {
			return types.Prompt{}, err
		}
	}

	for _, category := range policy.Fallback {
		prompt, err := s.Select(Query{
			Category:  category,
			Rating:    req.Rating,
			Allowed:   req.Allowed,
			ExcludeID: req.ExcludeID,
		})
		if err == nil {
			return prompt, nil
		}

		if !errors.Is(err, ErrNoPrompt) {
			return types.Prompt{}, err
		}
	}

	return types.Prompt{}, ErrNoPrompt
}

// Filter returns the prompts matching the query's rating constraint. The
// excluded id is dropped only when at least two prompts match.
func Filter(prompts []types.Prompt, q Query) []types.Prompt {
	matched := make([]types.Prompt, 0, len(prompts))
	for _, p := range prompts {
		if q.Rating != nil {
			if p.Rating == *q.Rating {
				matched = append(matched, p)
			}
		} else if q.Allowed.Has(p.Rating) {
			matched = append(matched, p)
		}
	}

	if q.ExcludeID == "" || len(matched) < 2 {
		return matched
	}

	remaining := matched[:0:0]
	for _, p := range matched {
		if p.ID != q.ExcludeID {
			remaining = append(remaining, p)
		}
	}

	return remaining
}

func (s *Selector) intN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rng.IntN(n)
}
