// Package storage defines the document persistence used by the game state.
package storage

import (
	"context"
	"errors"
)

// ErrDocumentNotFound is returned when a document has never been written.
var ErrDocumentNotFound = errors.New("document not found")

// Document keys used by the bot.
const (
	KeyQuestions    = "questions"
	KeySuggestions  = "suggestions"
	KeyServerConfig = "server_config"
)

// Keys returns every document key the bot persists.
func Keys() []string {
	return []string{KeyQuestions, KeySuggestions, KeyServerConfig}
}

// Store reads and writes whole documents by key.
// Implementations must return ErrDocumentNotFound for absent documents.
type Store interface {
	// ReadDocument returns the stored bytes of a document.
	ReadDocument(ctx context.Context, key string) ([]byte, error)
	// WriteDocument replaces the stored bytes of a document.
	WriteDocument(ctx context.Context, key string, data []byte) error
	// Close releases the resources held by the backend.
	Close() error
}
