// Package postgres stores documents in a PostgreSQL table through bun.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/robalyx/tickle/internal/setup/config"
	"github.com/robalyx/tickle/internal/storage"
	"github.com/robalyx/tickle/internal/storage/postgres/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bunotel"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
)

// Document is a single persisted document row.
type Document struct {
	bun.BaseModel `bun:"table:documents"`

	Key       string `bun:",pk"`
	Data      []byte `bun:",type:bytea,notnull"`
	UpdatedAt int64  `bun:",notnull"`
}

// Store reads and writes documents in the documents table.
type Store struct {
	db     *bun.DB
	logger *zap.Logger
}

// Open connects to PostgreSQL and optionally applies pending migrations.
func Open(ctx context.Context, cfg *config.PostgreSQL, logger *zap.Logger, autoMigrate bool) (*Store, error) {
	db := NewDB(cfg, logger)

	if autoMigrate {
		if err := Migrate(ctx, db, logger); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	logger.Info("Database connection established")

	return New(db, logger), nil
}

// NewDB builds a bun.DB for the configured server with query logging and tracing hooks.
func NewDB(cfg *config.PostgreSQL, logger *zap.Logger) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithAddr(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		pgdriver.WithUser(cfg.User),
		pgdriver.WithPassword(cfg.Password),
		pgdriver.WithDatabase(cfg.DBName),
		pgdriver.WithInsecure(true),
		pgdriver.WithApplicationName("tickle"),
	))

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Minute)
	sqldb.SetConnMaxIdleTime(time.Duration(cfg.MaxIdleTime) * time.Minute)

	db := bun.NewDB(sqldb, pgdialect.New())
	db.AddQueryHook(NewHook(logger))
	db.AddQueryHook(bunotel.NewQueryHook(bunotel.WithDBName(cfg.DBName)))

	return db
}

// Migrate initializes the migration tables and applies pending migrations.
func Migrate(ctx context.Context, db *bun.DB, logger *zap.Logger) error {
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if !group.IsZero() {
		logger.Info("Automatically ran migrations", zap.String("group", group.String()))
	}

	return nil
}

// New wraps an existing bun.DB.
func New(db *bun.DB, logger *zap.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger.Named("postgres_store"),
	}
}

// DB returns the underlying bun.DB instance.
func (s *Store) DB() *bun.DB {
	return s.db
}

// ReadDocument implements storage.Store.
func (s *Store) ReadDocument(ctx context.Context, key string) ([]byte, error) {
	doc, err := withRetry(ctx, func(ctx context.Context) (*Document, error) {
		var doc Document

		err := s.db.NewSelect().
			Model(&doc).
			Where("key = ?", key).
			Scan(ctx)

		return &doc, err
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrDocumentNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	return doc.Data, nil
}

// WriteDocument implements storage.Store.
func (s *Store) WriteDocument(ctx context.Context, key string, data []byte) error {
	doc := &Document{
		Key:       key,
		Data:      data,
		UpdatedAt: time.Now().Unix(),
	}

	_, err := withRetry(ctx, func(ctx context.Context) (sql.Result, error) {
		return s.db.NewInsert().
			Model(doc).
			On("CONFLICT (key) DO UPDATE").
			Set("data = EXCLUDED.data").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	return nil
}

// Close implements storage.Store.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close database connection", zap.Error(err))
		return err
	}

	s.logger.Info("Database connection closed")

	return nil
}
