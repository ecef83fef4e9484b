// Package sqlite stores documents in a single-file SQLite database.
package sqlite

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robalyx/tickle/internal/storage"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const schema = `
	CREATE TABLE IF NOT EXISTS documents (
		key TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	)
`

// Store keeps every document as a row of the documents table.
// A single connection is shared and guarded by a mutex.
type Store struct {
	conn   *sqlite.Conn
	logger *zap.Logger
	mu     sync.Mutex
}

// Open opens or creates the database at path and ensures the schema exists.
func Open(path string, logger *zap.Logger) (*Store, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenCreate|sqlite.OpenReadWrite|sqlite.OpenWAL)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := sqlitex.ExecuteTransient(conn, schema, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create documents table: %w", err)
	}

	return &Store{
		conn:   conn,
		logger: logger.Named("sqlite_store"),
	}, nil
}

// ReadDocument implements storage.Store.
func (s *Store) ReadDocument(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conn.SetInterrupt(ctx.Done())
	defer s.conn.SetInterrupt(nil)

	var (
		data  []byte
		found bool
	)

	err := sqlitex.Execute(s.conn, "SELECT data FROM documents WHERE key = ?", &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			data = make([]byte, stmt.ColumnLen(0))
			stmt.ColumnBytes(0, data)
			found = true

			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	if !found {
		return nil, storage.ErrDocumentNotFound
	}

	return data, nil
}

// WriteDocument implements storage.Store.
func (s *Store) WriteDocument(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conn.SetInterrupt(ctx.Done())
	defer s.conn.SetInterrupt(nil)

	err := sqlitex.Execute(s.conn, `
		INSERT INTO documents (key, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, &sqlitex.ExecOptions{
		Args: []any{key, data, time.Now().Unix()},
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	s.logger.Debug("Wrote document", zap.String("key", key), zap.Int("bytes", len(data)))

	return nil
}

// Close implements storage.Store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.conn.Close()
}
