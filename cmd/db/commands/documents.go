package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/robalyx/tickle/internal/storage"
	"github.com/robalyx/tickle/internal/types"
	"github.com/robalyx/tickle/internal/types/enum"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// DocumentCommands returns commands that move documents between files and the configured store.
func DocumentCommands(deps *CLIDependencies) []*cli.Command {
	return []*cli.Command{
		{
			Name:      "import",
			Usage:     "Validate a JSON file and write it to the store",
			ArgsUsage: "KEY FILE",
			Action:    handleImport(deps),
		},
		{
			Name:      "export",
			Usage:     "Write a stored document to a JSON file",
			ArgsUsage: "KEY FILE",
			Action:    handleExport(deps),
		},
		{
			Name:      "validate",
			Usage:     "Check that a stored document can be read by the bot",
			ArgsUsage: "KEY",
			Action:    handleValidate(deps),
		},
		{
			Name:   "stats",
			Usage:  "Show prompt counts per category and rating",
			Action: handleStats(deps),
		},
	}
}

// handleImport handles the 'import' command.
func handleImport(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() != 2 {
			return ErrArgsRequired
		}

		key, path := c.Args().Get(0), c.Args().Get(1)

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		if err := ValidateDocument(key, data); err != nil {
			return err
		}

		if err := deps.Docs.WriteDocument(ctx, key, data); err != nil {
			return err
		}

		deps.Logger.Info("Imported document",
			zap.String("key", key),
			zap.String("path", path),
			zap.Int("bytes", len(data)))

		return nil
	}
}

// handleExport handles the 'export' command.
func handleExport(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() != 2 {
			return ErrArgsRequired
		}

		key, path := c.Args().Get(0), c.Args().Get(1)

		data, err := deps.Docs.ReadDocument(ctx, key)
		if err != nil {
			return err
		}

		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}

		deps.Logger.Info("Exported document",
			zap.String("key", key),
			zap.String("path", path),
			zap.Int("bytes", len(data)))

		return nil
	}
}

// handleValidate handles the 'validate' command.
func handleValidate(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() != 1 {
			return ErrKeyRequired
		}

		key := c.Args().First()

		data, err := deps.Docs.ReadDocument(ctx, key)
		if err != nil {
			return err
		}

		if err := ValidateDocument(key, data); err != nil {
			return err
		}

		deps.Logger.Info("Document is valid", zap.String("key", key))

		return nil
	}
}

// handleStats handles the 'stats' command.
func handleStats(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, _ *cli.Command) error {
		data, err := deps.Docs.ReadDocument(ctx, storage.KeyQuestions)
		if err != nil {
			return err
		}

		pool, err := types.DecodePool(data)
		if err != nil {
			return err
		}

		stats := pool.Stats()
		for _, category := range enum.Categories() {
			cs := stats.Categories[category]
			deps.Logger.Info("Category",
				zap.String("category", category.Title()),
				zap.Int("total", cs.Total),
				zap.Int("pg", cs.ByRating[enum.RatingPG]),
				zap.Int("pg13", cs.ByRating[enum.RatingPG13]),
				zap.Int("r", cs.ByRating[enum.RatingR]))
		}

		deps.Logger.Info("Prompt pool",
			zap.Int("total", stats.Total),
			zap.Int("skipped", pool.Skipped()))

		return nil
	}
}

// ValidateDocument checks data against the shape the bot expects for key.
// Unknown keys only need to be valid JSON.
func ValidateDocument(key string, data []byte) error {
	var err error

	switch key {
	case storage.KeyQuestions:
		err = types.ValidatePoolDocument(data)
	case storage.KeySuggestions:
		_, err = types.DecodeSuggestions(data)
	case storage.KeyServerConfig:
		_, err = types.DecodeScopes(data)
	default:
		if !sonic.Valid(data) {
			err = ErrInvalidDocument
		}
	}

	if err != nil {
		return fmt.Errorf("invalid %s document: %w", key, err)
	}

	return nil
}
