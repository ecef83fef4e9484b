// Package suggestion holds user-submitted prompts waiting for review.
package suggestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/robalyx/tickle/internal/storage"
	"github.com/robalyx/tickle/internal/types"
	"github.com/robalyx/tickle/internal/types/enum"
	"go.uber.org/zap"
)

var (
	// ErrCorruptQueue is returned by mutations when the stored queue cannot be decoded.
	// Writing would otherwise replace every pending suggestion.
	ErrCorruptQueue = errors.New("stored suggestion queue is corrupt")
	// ErrEmptyText is returned when a suggestion has no text.
	ErrEmptyText = errors.New("suggestion text is empty")
)

// Queue is the ordered list of pending suggestions. Every operation is a
// read-modify-write of the stored document, serialized by a mutex.
type Queue struct {
	docs   storage.Store
	logger *zap.Logger
	mu     sync.Mutex
}

// NewQueue creates a queue backed by the suggestions document.
func NewQueue(docs storage.Store, logger *zap.Logger) *Queue {
	return &Queue{
		docs:   docs,
		logger: logger.Named("suggestion_queue"),
	}
}

// Enqueue appends a suggestion. Its id is the queue length before insertion plus one.
func (q *Queue) Enqueue(
	ctx context.Context,
	text string,
	category enum.Category,
	rating enum.Rating,
	submitterID, submitterName string,
) (types.Suggestion, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return types.Suggestion{}, ErrEmptyText
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	suggestions, err := q.load(ctx)
	if err != nil {
		return types.Suggestion{}, err
	}

	suggestion := types.Suggestion{
		ID:            len(suggestions) + 1,
		Text:          text,
		Category:      category,
		Rating:        rating,
		SubmitterID:   submitterID,
		SubmitterName: submitterName,
	}

	if err := q.save(ctx, append(suggestions, suggestion)); err != nil {
		return types.Suggestion{}, err
	}

	q.logger.Info("Suggestion queued",
		zap.Int("id", suggestion.ID),
		zap.Stringer("category", category),
		zap.Stringer("rating", rating),
		zap.String("submitterID", submitterID))

	return suggestion, nil
}

// RemoveAt removes and returns the suggestion at index.
// The boolean is false when the index is out of range.
func (q *Queue) RemoveAt(ctx context.Context, index int) (types.Suggestion, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	suggestions, err := q.load(ctx)
	if err != nil {
		return types.Suggestion{}, false, err
	}

	if index < 0 || index >= len(suggestions) {
		return types.Suggestion{}, false, nil
	}

	removed := suggestions[index]
	suggestions = append(suggestions[:index], suggestions[index+1:]...)

	if err := q.save(ctx, suggestions); err != nil {
		return types.Suggestion{}, false, err
	}

	q.logger.Debug("Suggestion removed", zap.Int("index", index), zap.Int("remaining", len(suggestions)))

	return removed, true, nil
}

// All returns a snapshot of the queue. A corrupt document reads as empty.
func (q *Queue) All(ctx context.Context) ([]types.Suggestion, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	suggestions, err := q.load(ctx)
	if errors.Is(err, ErrCorruptQueue) {
		return []types.Suggestion{}, nil
	}

	return suggestions, err
}

// At returns the suggestion at index together with the current queue length.
func (q *Queue) At(ctx context.Context, index int) (types.Suggestion, int, bool, error) {
	suggestions, err := q.All(ctx)
	if err != nil {
		return types.Suggestion{}, 0, false, err
	}

	if index < 0 || index >= len(suggestions) {
		return types.Suggestion{}, len(suggestions), false, nil
	}

	return suggestions[index], len(suggestions), true, nil
}

// Len returns the number of pending suggestions.
func (q *Queue) Len(ctx context.Context) (int, error) {
	suggestions, err := q.All(ctx)
	return len(suggestions), err
}

func (q *Queue) load(ctx context.Context) ([]types.Suggestion, error) {
	data, err := q.docs.ReadDocument(ctx, storage.KeySuggestions)
	if errors.Is(err, storage.ErrDocumentNotFound) {
		return []types.Suggestion{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read suggestions: %w", err)
	}

	suggestions, err := types.DecodeSuggestions(data)
	if err != nil {
		q.logger.Error("Failed to decode suggestions", zap.String("key", storage.KeySuggestions), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrCorruptQueue, err)
	}

	return suggestions, nil
}

func (q *Queue) save(ctx context.Context, suggestions []types.Suggestion) error {
	data, err := types.EncodeSuggestions(suggestions)
	if err != nil {
		return fmt.Errorf("failed to encode suggestions: %w", err)
	}

	if err := q.docs.WriteDocument(ctx, storage.KeySuggestions, data); err != nil {
		return fmt.Errorf("failed to write suggestions: %w", err)
	}

	return nil
}
