package storage

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v4"
	"github.com/robalyx/tickle/pkg/utils"
	"go.uber.org/zap"
)

// Retrying wraps a networked Store and retries failed round trips with backoff.
// Missing documents are returned immediately.
type Retrying struct {
	Store
	opts   utils.RetryOptions
	logger *zap.Logger
}

// WithRetry wraps a store with the storage retry policy.
func WithRetry(store Store, logger *zap.Logger) *Retrying {
	return &Retrying{
		Store:  store,
		opts:   utils.GetStorageRetryOptions(),
		logger: logger.Named("storage_retry"),
	}
}

// ReadDocument implements Store.
func (r *Retrying) ReadDocument(ctx context.Context, key string) ([]byte, error) {
	attempt := 0

	return utils.WithRetry(ctx, func() ([]byte, error) {
		attempt++

		data, err := r.Store.ReadDocument(ctx, key)
		if errors.Is(err, ErrDocumentNotFound) {
			return nil, backoff.Permanent(err)
		}

		if err != nil {
			r.logger.Warn("Document read failed",
				zap.String("key", key),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}

		return data, err
	}, r.opts)
}

// WriteDocument implements Store.
func (r *Retrying) WriteDocument(ctx context.Context, key string, data []byte) error {
	attempt := 0

	_, err := utils.WithRetry(ctx, func() (struct{}, error) {
		attempt++

		err := r.Store.WriteDocument(ctx, key, data)
		if err != nil {
			r.logger.Warn("Document write failed",
				zap.String("key", key),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}

		return struct{}{}, err
	}, r.opts)

	return err
}
