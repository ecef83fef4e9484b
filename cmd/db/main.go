package main

import (
	"context"
	"log"
	"os"

	"github.com/robalyx/tickle/cmd/db/commands"
	"github.com/robalyx/tickle/internal/setup"
	"github.com/robalyx/tickle/internal/setup/telemetry"
	"github.com/urfave/cli/v3"
)

// DBLogDir specifies where db tool log files are stored.
const DBLogDir = "logs/db_logs"

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	app, err := setup.InitializeApp(ctx, telemetry.ServiceDB, DBLogDir)
	if err != nil {
		return err
	}
	defer app.Cleanup(ctx)

	deps := &commands.CLIDependencies{
		Config:   app.Config,
		Docs:     app.Docs,
		Logger:   app.Logger,
		DBLogger: app.DBLogger,
	}

	cmd := &cli.Command{
		Name:     "db",
		Usage:    "Storage management tool",
		Commands: append(commands.MigrationCommands(deps), commands.DocumentCommands(deps)...),
	}

	return cmd.Run(ctx, os.Args)
}
