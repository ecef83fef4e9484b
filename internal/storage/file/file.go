// Package file stores documents as JSON files on the local disk.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/robalyx/tickle/internal/storage"
	"go.uber.org/zap"
)

// DefaultPaths returns the file layout used by earlier releases of the bot.
func DefaultPaths() map[string]string {
	return map[string]string{
		storage.KeyQuestions:    "questions.json",
		storage.KeySuggestions:  filepath.Join("data", "suggestions.json"),
		storage.KeyServerConfig: filepath.Join("data", "server_config.json"),
	}
}

// Store maps document keys to files. Keys without an explicit path are
// stored as <key>.json inside the base directory.
type Store struct {
	baseDir string
	paths   map[string]string
	logger  *zap.Logger
}

// New creates a file store rooted at baseDir.
func New(baseDir string, paths map[string]string, logger *zap.Logger) *Store {
	merged := DefaultPaths()
	for key, path := range paths {
		if path != "" {
			merged[key] = path
		}
	}

	return &Store{
		baseDir: baseDir,
		paths:   merged,
		logger:  logger.Named("file_store"),
	}
}

// Path returns the file used for a document key.
func (s *Store) Path(key string) string {
	path, ok := s.paths[key]
	if !ok {
		path = key + ".json"
	}

	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(s.baseDir, path)
}

// ReadDocument implements storage.Store.
func (s *Store) ReadDocument(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, storage.ErrDocumentNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	return data, nil
}

// WriteDocument implements storage.Store. The file is replaced atomically by
// writing a sibling temp file and renaming it over the target.
func (s *Store) WriteDocument(_ context.Context, key string, data []byte) error {
	path := s.Path(key)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", key, err)
	}

	defer func() {
		if err := os.Remove(tmp.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Failed to remove temp file", zap.String("path", tmp.Name()), zap.Error(err))
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file for %s: %w", key, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}

	s.logger.Debug("Wrote document", zap.String("key", key), zap.String("path", path), zap.Int("bytes", len(data)))

	return nil
}

// Close implements storage.Store.
func (s *Store) Close() error {
	return nil
}
