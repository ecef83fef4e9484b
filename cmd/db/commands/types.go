package commands

import (
	"errors"

	"github.com/robalyx/tickle/internal/setup/config"
	"github.com/robalyx/tickle/internal/storage"
	"go.uber.org/zap"
)

var (
	ErrArgsRequired    = errors.New("KEY and FILE arguments required")
	ErrKeyRequired     = errors.New("KEY argument required")
	ErrInvalidDocument = errors.New("document is not valid JSON")
)

// CLIDependencies holds the common dependencies needed by CLI commands.
type CLIDependencies struct {
	Config   *config.Config
	Docs     storage.Store
	Logger   *zap.Logger
	DBLogger *zap.Logger
}
