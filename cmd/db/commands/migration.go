package commands

import (
	"context"
	"fmt"

	"github.com/robalyx/tickle/internal/storage/postgres"
	"github.com/robalyx/tickle/internal/storage/postgres/migrations"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// MigrationCommands returns all migration-related commands. They always
// target the configured PostgreSQL server, whatever the storage backend is.
func MigrationCommands(deps *CLIDependencies) []*cli.Command {
	return []*cli.Command{
		{
			Name:   "init",
			Usage:  "Initialize migration tables",
			Action: withMigrator(deps, handleInit),
		},
		{
			Name:   "migrate",
			Usage:  "Run pending migrations",
			Action: withMigrator(deps, handleMigrate),
		},
		{
			Name:   "rollback",
			Usage:  "Rollback the last migration group",
			Action: withMigrator(deps, handleRollback),
		},
		{
			Name:   "status",
			Usage:  "Show migration status",
			Action: withMigrator(deps, handleStatus),
		},
	}
}

type migratorAction func(ctx context.Context, deps *CLIDependencies, migrator *migrate.Migrator) error

// withMigrator opens a database connection for the duration of the action.
func withMigrator(deps *CLIDependencies, action migratorAction) cli.ActionFunc {
	return func(ctx context.Context, _ *cli.Command) error {
		db := postgres.NewDB(&deps.Config.Common.PostgreSQL, deps.DBLogger)
		defer db.Close()

		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		return action(ctx, deps, migrate.NewMigrator(db, migrations.Migrations))
	}
}

// handleInit handles the 'init' command.
func handleInit(ctx context.Context, deps *CLIDependencies, migrator *migrate.Migrator) error {
	if err := migrator.Init(ctx); err != nil {
		return err
	}

	deps.Logger.Info("Migration tables initialized")

	return nil
}

// handleMigrate handles the 'migrate' command.
func handleMigrate(ctx context.Context, deps *CLIDependencies, migrator *migrate.Migrator) error {
	if err := migrator.Lock(ctx); err != nil {
		return err
	}
	defer migrator.Unlock(ctx) //nolint:errcheck // -

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return err
	}

	if group.IsZero() {
		deps.Logger.Info("No new migrations to run (database is up to date)")
		return nil
	}

	deps.Logger.Info("Successfully migrated", zap.String("group", group.String()))

	return nil
}

// handleRollback handles the 'rollback' command.
func handleRollback(ctx context.Context, deps *CLIDependencies, migrator *migrate.Migrator) error {
	if err := migrator.Lock(ctx); err != nil {
		return err
	}
	defer migrator.Unlock(ctx) //nolint:errcheck // -

	group, err := migrator.Rollback(ctx)
	if err != nil {
		return err
	}

	if group.IsZero() {
		deps.Logger.Info("No groups to roll back")
		return nil
	}

	deps.Logger.Info("Successfully rolled back", zap.String("group", group.String()))

	return nil
}

// handleStatus handles the 'status' command.
func handleStatus(ctx context.Context, deps *CLIDependencies, migrator *migrate.Migrator) error {
	ms, err := migrator.MigrationsWithStatus(ctx)
	if err != nil {
		return err
	}

	deps.Logger.Info("Migration status",
		zap.String("migrations", ms.String()),
		zap.String("unapplied", ms.Unapplied().String()),
		zap.String("last_group", ms.LastGroup().String()))

	return nil
}
