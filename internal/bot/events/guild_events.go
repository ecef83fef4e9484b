package events

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/robalyx/tickle/internal/bot/builder"
	"github.com/robalyx/tickle/internal/game"
	"github.com/robalyx/tickle/pkg/utils"
	"go.uber.org/zap"
)

// WelcomeSource renders the message sent to the owner of a newly joined guild.
type WelcomeSource interface {
	Welcome() game.Response
}

// GuildEventHandler manages guild-related events for the bot.
type GuildEventHandler struct {
	welcome WelcomeSource
	logger  *zap.Logger
}

// NewGuildEventHandler creates a new instance of the guild event handler.
func NewGuildEventHandler(welcome WelcomeSource, logger *zap.Logger) *GuildEventHandler {
	return &GuildEventHandler{
		welcome: welcome,
		logger:  logger.Named("guild_events"),
	}
}

// OnGuildJoin sends the welcome message to the owner of the joined guild.
// Closed DMs are expected and only logged.
func (h *GuildEventHandler) OnGuildJoin(event *events.GuildJoin) {
	guild := event.Guild

	h.logger.Info("Bot joined a new guild",
		zap.String("guildID", guild.ID.String()),
		zap.String("guild_name", guild.Name))

	if guild.OwnerID == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := h.sendWelcome(ctx, event.Client().Rest(), guild.OwnerID); err != nil {
		h.logger.Warn("Could not DM guild owner",
			zap.String("guildID", guild.ID.String()),
			zap.String("ownerID", guild.OwnerID.String()),
			zap.Error(err))

		return
	}

	h.logger.Info("Sent welcome DM to guild owner", zap.String("guildID", guild.ID.String()))
}

// sendWelcome opens a DM channel with the owner and posts the welcome card.
func (h *GuildEventHandler) sendWelcome(ctx context.Context, client rest.Rest, ownerID snowflake.ID) error {
	message := builder.CreateMessage(h.welcome.Welcome(), time.Now())

	_, err := utils.WithRetry(ctx, func() (*discord.Message, error) {
		channel, err := client.CreateDMChannel(ownerID, rest.WithCtx(ctx))
		if err != nil {
			return nil, permanentIfClientError(err)
		}

		msg, err := client.CreateMessage(channel.ID(), message, rest.WithCtx(ctx))
		if err != nil {
			return nil, permanentIfClientError(err)
		}

		return msg, nil
	}, utils.GetDiscordRetryOptions())

	return err
}

// permanentIfClientError stops retries for 4xx responses other than rate limits.
func permanentIfClientError(err error) error {
	var restErr *rest.Error
	if errors.As(err, &restErr) && restErr.Response != nil {
		code := restErr.Response.StatusCode
		if code >= 400 && code < 500 && code != http.StatusTooManyRequests {
			return backoff.Permanent(err)
		}
	}

	return err
}
