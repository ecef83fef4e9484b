// Package prompt owns the prompt pool and random prompt selection.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/robalyx/tickle/internal/storage"
	"github.com/robalyx/tickle/internal/types"
	"github.com/robalyx/tickle/internal/types/enum"
	"github.com/robalyx/tickle/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrInvalidPool is returned by Reload when the stored pool fails validation.
	ErrInvalidPool = errors.New("stored prompt pool is invalid")
	// ErrIDSpaceExhausted is returned when no unused id could be drawn.
	ErrIDSpaceExhausted = errors.New("failed to generate a unique prompt id")
	// ErrEmptyText is returned when appending a prompt without text.
	ErrEmptyText = errors.New("prompt text is empty")
)

// DefaultMaxIDAttempts bounds the number of id draws per append.
const DefaultMaxIDAttempts = 1000

// ReloadResult describes the pool accepted by a reload.
type ReloadResult struct {
	Stats   types.PoolStats
	Skipped int
}

// Store owns the prompt pool. Reads are served from an in-memory snapshot;
// appends rewrite the whole stored document and are serialized.
type Store struct {
	docs          storage.Store
	logger        *zap.Logger
	rng           *rand.Rand
	maxIDAttempts int

	pool     *types.Pool
	poolMu   sync.RWMutex
	writeMu  sync.Mutex
	reloadSF singleflight.Group
}

// Option configures a Store.
type Option func(*Store)

// WithRand sets the random source used for id generation.
func WithRand(rng *rand.Rand) Option {
	return func(s *Store) {
		s.rng = rng
	}
}

// WithMaxIDAttempts bounds the number of id draws per append.
func WithMaxIDAttempts(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxIDAttempts = n
		}
	}
}

// NewStore creates a prompt store with an empty pool. Call Load to read the stored pool.
func NewStore(docs storage.Store, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		docs:          docs,
		logger:        logger.Named("prompt_store"),
		rng:           rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x7469636b6c65)), //nolint:gosec // ids are not secrets
		maxIDAttempts: DefaultMaxIDAttempts,
		pool:          types.NewPool(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Load reads the stored pool and makes it the current snapshot.
// A missing or corrupt document yields an empty pool; the error is only logged.
func (s *Store) Load(ctx context.Context) *types.Pool {
	pool, err := s.read(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrDocumentNotFound) {
			s.logger.Warn("Prompt pool not found, starting empty", zap.String("key", storage.KeyQuestions))
		} else {
			s.logger.Error("Failed to load prompt pool, starting empty",
				zap.String("key", storage.KeyQuestions),
				zap.Error(err))
		}

		pool = types.NewPool()
	}

	s.setPool(pool)

	return pool
}

// Pool returns the current snapshot. The returned pool must not be modified.
func (s *Store) Pool() *types.Pool {
	s.poolMu.RLock()
	defer s.poolMu.RUnlock()

	return s.pool
}

// Reload re-reads the stored pool. The document must pass Validate, otherwise
// the current snapshot is kept and ErrInvalidPool is returned. Concurrent
// calls share a single read.
func (s *Store) Reload(ctx context.Context) (ReloadResult, error) {
	v, err, _ := s.reloadSF.Do("reload", func() (any, error) {
		data, err := s.docs.ReadDocument(ctx, storage.KeyQuestions)
		if err != nil {
			return ReloadResult{}, fmt.Errorf("%w: %w", ErrInvalidPool, err)
		}

		if err := types.ValidatePoolDocument(data); err != nil {
			return ReloadResult{}, fmt.Errorf("%w: %w", ErrInvalidPool, err)
		}

		pool, err := types.DecodePool(data)
		if err != nil {
			return ReloadResult{}, fmt.Errorf("%w: %w", ErrInvalidPool, err)
		}

		s.setPool(pool)

		if pool.Skipped() > 0 {
			s.logger.Warn("Skipped unreadable prompts", zap.Int("count", pool.Skipped()))
		}

		return ReloadResult{Stats: pool.Stats(), Skipped: pool.Skipped()}, nil
	})
	if err != nil {
		s.logger.Error("Prompt pool reload rejected, keeping previous pool", zap.Error(err))
		return ReloadResult{}, err
	}

	return v.(ReloadResult), nil
}

// Append adds a prompt with a freshly generated id to its category and
// rewrites the stored pool. The id is unique within the category.
func (s *Store) Append(
	ctx context.Context, category enum.Category, text string, rating enum.Rating,
) (types.Prompt, error) {
	if text == "" {
		return types.Prompt{}, ErrEmptyText
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	// Re-read so external edits since the last load are not overwritten
	pool, err := s.read(ctx)
	if errors.Is(err, storage.ErrDocumentNotFound) {
		pool, err = types.NewPool(), nil
	}

	if err != nil {
		return types.Prompt{}, fmt.Errorf("failed to read prompt pool before append: %w", err)
	}

	id, err := s.generateID(pool, category)
	if err != nil {
		return types.Prompt{}, err
	}

	prompt := types.Prompt{ID: id, Category: category, Rating: rating, Text: text}
	if err := pool.Add(prompt); err != nil {
		return types.Prompt{}, fmt.Errorf("failed to add prompt: %w", err)
	}

	data, err := pool.Encode()
	if err != nil {
		return types.Prompt{}, fmt.Errorf("failed to encode prompt pool: %w", err)
	}

	if err := s.docs.WriteDocument(ctx, storage.KeyQuestions, data); err != nil {
		return types.Prompt{}, fmt.Errorf("failed to write prompt pool: %w", err)
	}

	s.setPool(pool)

	s.logger.Info("Appended prompt",
		zap.String("id", id),
		zap.Stringer("category", category),
		zap.Stringer("rating", rating))

	return prompt, nil
}

// Validate reports whether a stored pool document is structurally acceptable:
// truths and dares must be present lists and any other category must be a list.
func Validate(data []byte) bool {
	return types.ValidatePoolDocument(data) == nil
}

// generateID draws ids until one is unused in the category.
func (s *Store) generateID(pool *types.Pool, category enum.Category) (string, error) {
	for range s.maxIDAttempts {
		id := utils.NewID(s.rng)
		if !pool.HasID(category, id) {
			return id, nil
		}
	}

	return "", fmt.Errorf("%w after %d attempts", ErrIDSpaceExhausted, s.maxIDAttempts)
}

func (s *Store) read(ctx context.Context) (*types.Pool, error) {
	data, err := s.docs.ReadDocument(ctx, storage.KeyQuestions)
	if err != nil {
		return nil, err
	}

	pool, err := types.DecodePool(data)
	if err != nil {
		return nil, err
	}

	if pool.Skipped() > 0 {
		s.logger.Warn("Skipped unreadable prompts", zap.Int("count", pool.Skipped()))
	}

	return pool, nil
}

func (s *Store) setPool(pool *types.Pool) {
	s.poolMu.Lock()
	defer s.poolMu.Unlock()

	s.pool = pool
}
