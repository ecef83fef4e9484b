// Package redis stores documents as plain Redis string values.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"
	"github.com/robalyx/tickle/internal/storage"
	"go.uber.org/zap"
)

// DefaultPrefix namespaces document keys inside the Redis database.
const DefaultPrefix = "tickle:doc:"

// Store reads and writes documents through a rueidis client.
type Store struct {
	client rueidis.Client
	prefix string
	logger *zap.Logger
}

// New creates a Redis-backed document store. The client is owned by the caller.
func New(client rueidis.Client, prefix string, logger *zap.Logger) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	return &Store{
		client: client,
		prefix: prefix,
		logger: logger.Named("redis_store"),
	}
}

// ReadDocument implements storage.Store.
func (s *Store) ReadDocument(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Do(ctx, s.client.B().Get().Key(s.prefix+key).Build()).AsBytes()
	if rueidis.IsRedisNil(err) {
		return nil, storage.ErrDocumentNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}

	return data, nil
}

// WriteDocument implements storage.Store.
func (s *Store) WriteDocument(ctx context.Context, key string, data []byte) error {
	cmd := s.client.B().Set().Key(s.prefix + key).Value(rueidis.BinaryString(data)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	s.logger.Debug("Wrote document", zap.String("key", key), zap.Int("bytes", len(data)))

	return nil
}

// Close implements storage.Store. The shared client is closed by its manager.
func (s *Store) Close() error {
	return nil
}
