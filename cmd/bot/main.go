package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robalyx/tickle/internal/bot"
	"github.com/robalyx/tickle/internal/setup"
	"github.com/robalyx/tickle/internal/setup/telemetry"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const (
	// BotLogDir specifies where bot log files are stored.
	BotLogDir = "logs/bot_logs"

	// shutdownTimeout bounds the graceful shutdown.
	shutdownTimeout = 15 * time.Second
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.Command{
		Name:  "bot",
		Usage: "Start the Tickle Discord bot",
		Action: func(ctx context.Context, _ *cli.Command) error {
			return runBot(ctx)
		},
	}

	return app.Run(context.Background(), os.Args)
}

// runBot starts the bot and blocks until an interrupt signal arrives.
func runBot(ctx context.Context) error {
	app, err := setup.InitializeApp(ctx, telemetry.ServiceBot, BotLogDir)
	if err != nil {
		return err
	}

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		app.Cleanup(cleanupCtx)
	}()

	discordBot, err := bot.New(ctx, app)
	if err != nil {
		app.Logger.Error("Failed to create bot", zap.Error(err))
		return err
	}

	if err := discordBot.Start(ctx); err != nil {
		app.Logger.Error("Failed to start bot", zap.Error(err))
		return err
	}

	log.Println("Bot has been started. Waiting for interrupt signal to gracefully shutdown...")

	// Wait for interrupt signal to gracefully shutdown the bot
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	<-sc

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	discordBot.Close(closeCtx)

	return nil
}
