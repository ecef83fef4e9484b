// Package bot connects the game engine to Discord.
package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/snowflake/v2"
	"github.com/robalyx/tickle/internal/bot/constants"
	guildEvents "github.com/robalyx/tickle/internal/bot/events"
	"github.com/robalyx/tickle/internal/channel"
	"github.com/robalyx/tickle/internal/game"
	"github.com/robalyx/tickle/internal/moderation"
	"github.com/robalyx/tickle/internal/prompt"
	"github.com/robalyx/tickle/internal/ratelimit"
	"github.com/robalyx/tickle/internal/redis"
	"github.com/robalyx/tickle/internal/setup"
	"github.com/robalyx/tickle/internal/setup/config"
	"github.com/robalyx/tickle/internal/suggestion"
	"github.com/robalyx/tickle/pkg/utils"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

// interactionTimeout bounds the work done for a single interaction.
const interactionTimeout = 10 * time.Second

// Bot routes Discord interactions to the game engine and sends back its responses.
type Bot struct {
	client  bot.Client
	engine  *game.Engine
	cfg     *config.Discord
	logger  *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	pending conc.WaitGroup
}

// New loads the stored documents, builds the engine and configures the
// Discord client with its event listeners.
func New(ctx context.Context, app *setup.App) (*Bot, error) {
	logger := app.Logger.Named("bot")

	engine, err := NewEngine(ctx, app)
	if err != nil {
		return nil, err
	}

	botCtx, cancel := context.WithCancel(context.Background())

	b := &Bot{
		engine: engine,
		cfg:    &app.Config.Bot.Discord,
		logger: logger,
		ctx:    botCtx,
		cancel: cancel,
	}

	guildHandler := guildEvents.NewGuildEventHandler(engine, logger)

	client, err := disgo.New(app.Config.Bot.Discord.Token,
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(gateway.IntentGuilds),
			gateway.WithPresenceOpts(gateway.WithWatchingActivity(constants.PresenceActivityName)),
		),
		bot.WithEventListeners(&events.ListenerAdapter{
			OnApplicationCommandInteraction: b.handleApplicationCommandInteraction,
			OnComponentInteraction:          b.handleComponentInteraction,
			OnGuildJoin:                     guildHandler.OnGuildJoin,
		}),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create discord client: %w", err)
	}

	b.client = client

	return b, nil
}

// NewEngine builds the game engine and its components from the app dependencies.
func NewEngine(ctx context.Context, app *setup.App) (*game.Engine, error) {
	logger := app.Logger
	cfg := app.Config.Bot

	prompts := prompt.NewStore(app.Docs, logger)
	pool := prompts.Load(ctx)
	logger.Info("Loaded prompt pool", zap.Int("prompts", pool.Stats().Total))

	policy := channel.NewPolicy(app.Docs, logger)
	policy.Load(ctx)

	queue := suggestion.NewQueue(app.Docs, logger)

	sessions, err := newSessionStore(app)
	if err != nil {
		return nil, err
	}

	workflow := moderation.NewWorkflow(queue, prompts, sessions, logger,
		moderation.WithDuplicates(cfg.Moderation.DuplicateThreshold, cfg.Moderation.DuplicateLimit))

	cooldown := ratelimit.NewCooldown(
		time.Duration(cfg.Game.CooldownMS)*time.Millisecond, cfg.Game.CooldownMaxEntries, logger)

	ownerIDs := make([]string, 0, len(cfg.Access.OwnerIDs))
	for _, id := range cfg.Access.OwnerIDs {
		ownerIDs = append(ownerIDs, snowflake.ID(id).String())
	}

	if len(ownerIDs) == 0 {
		logger.Warn("No bot owners configured, suggestions cannot be reviewed")
	}

	return game.New(game.Dependencies{
		Prompts:  prompts,
		Policy:   policy,
		Queue:    queue,
		Workflow: workflow,
		Cooldown: cooldown,
	}, game.Settings{
		StartAttempts: cfg.Game.StartAttempts,
		NextAttempts:  cfg.Game.NextAttempts,
		TipChance:     cfg.Game.TipChance,
		TipText:       cfg.Game.TipText,
		OwnerIDs:      ownerIDs,
	}, logger), nil
}

// newSessionStore selects where review sessions are kept.
func newSessionStore(app *setup.App) (moderation.SessionStore, error) {
	cfg := app.Config.Bot.Moderation
	timeout := time.Duration(cfg.SessionTimeout) * time.Minute

	if cfg.SessionStore != config.SessionStoreRedis {
		return moderation.NewMemoryStore(timeout), nil
	}

	client, err := app.RedisManager.GetClient(redis.SessionDBIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to open review session store: %w", err)
	}

	return moderation.NewRedisStore(client, timeout), nil
}

// Start registers the slash commands and opens the gateway connection.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Registering commands")

	if err := b.registerCommands(ctx); err != nil {
		return err
	}

	b.logger.Info("Starting bot")

	return b.client.OpenGateway(ctx)
}

// registerCommands overwrites the command set of the development guild
// and, when enabled, the global command set.
func (b *Bot) registerCommands(ctx context.Context) error {
	commands := Commands()
	appID := b.client.ApplicationID()

	if b.cfg.DevGuildID != 0 {
		guildID := snowflake.ID(b.cfg.DevGuildID)

		synced, err := utils.WithRetry(ctx, func() ([]discord.ApplicationCommand, error) {
			return b.client.Rest().SetGuildCommands(appID, guildID, commands)
		}, utils.GetDiscordRetryOptions())
		if err != nil {
			return fmt.Errorf("failed to register guild commands: %w", err)
		}

		b.logger.Info("Synced guild commands",
			zap.String("guildID", guildID.String()),
			zap.Int("count", len(synced)))
	}

	if b.cfg.SyncGlobal {
		synced, err := utils.WithRetry(ctx, func() ([]discord.ApplicationCommand, error) {
			return b.client.Rest().SetGlobalCommands(appID, commands)
		}, utils.GetDiscordRetryOptions())
		if err != nil {
			return fmt.Errorf("failed to register global commands: %w", err)
		}

		b.logger.Info("Synced global commands", zap.Int("count", len(synced)))
	}

	return nil
}

// Close closes the gateway and waits for in-flight interactions.
func (b *Bot) Close(ctx context.Context) {
	b.logger.Info("Closing bot")
	b.client.Close(ctx)

	done := make(chan struct{})
	go func() {
		b.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		b.logger.Warn("Interactions still running at shutdown")
	}

	b.cancel()
}

// finish logs the outcome of an engine call and swaps an empty response
// for the internal error message.
func (b *Bot) finish(resp game.Response, err error, fields ...zap.Field) game.Response {
	switch {
	case err == nil:
	case game.IsUserError(err):
		b.logger.Debug("Request rejected", append(fields, zap.Error(err))...)
	case errors.Is(err, context.DeadlineExceeded):
		b.logger.Warn("Request timed out", append(fields, zap.Error(err))...)
	default:
		b.logger.Error("Request failed", append(fields, zap.Error(err))...)
	}

	if isEmpty(resp) {
		return game.Response{Text: constants.InternalErrorMessage, Ephemeral: true}
	}

	return resp
}

// isEmpty reports whether a response has nothing to send.
func isEmpty(resp game.Response) bool {
	return resp.Text == "" && resp.Card == nil && len(resp.Controls) == 0 && !resp.Delete
}
