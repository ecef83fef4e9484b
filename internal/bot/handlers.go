package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/robalyx/tickle/internal/bot/builder"
	"github.com/robalyx/tickle/internal/bot/constants"
	"github.com/robalyx/tickle/internal/bot/interfaces"
	"github.com/robalyx/tickle/internal/game"
	"github.com/robalyx/tickle/internal/types/enum"
	"go.uber.org/zap"
)

// handleApplicationCommandInteraction runs a slash command in its own goroutine.
func (b *Bot) handleApplicationCommandInteraction(event *events.ApplicationCommandInteractionCreate) {
	b.pending.Go(func() {
		data := event.SlashCommandInteractionData()
		name := data.CommandName()

		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Panic in application command interaction handler",
					zap.String("command", name),
					zap.Any("panic", r))
				b.sendCommandResponse(event, game.Response{Text: constants.InternalErrorMessage, Ephemeral: true})
			}

			b.logger.Debug("Application command interaction handled",
				zap.String("command", name),
				zap.Duration("duration", time.Since(start)))
		}()

		ctx, cancel := context.WithTimeout(b.ctx, interactionTimeout)
		defer cancel()

		resp, err := b.dispatchCommand(ctx, event, data)
		resp = b.finish(resp, err,
			zap.String("command", name),
			zap.String("userID", event.User().ID.String()))

		b.sendCommandResponse(event, resp)
	})
}

// handleComponentInteraction runs a button click in its own goroutine.
func (b *Bot) handleComponentInteraction(event *events.ComponentInteractionCreate) {
	b.pending.Go(func() {
		customID := event.Data.CustomID()

		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Panic in component interaction handler",
					zap.String("custom_id", customID),
					zap.Any("panic", r))
				b.sendComponentResponse(event, game.Response{Text: constants.InternalErrorMessage, Ephemeral: true})
			}

			b.logger.Debug("Component interaction handled",
				zap.String("custom_id", customID),
				zap.Duration("duration", time.Since(start)))
		}()

		ctx, cancel := context.WithTimeout(b.ctx, interactionTimeout)
		defer cancel()

		resp, err := b.dispatchComponent(ctx, event, customID)
		resp = b.finish(resp, err,
			zap.String("custom_id", customID),
			zap.String("userID", event.User().ID.String()))

		b.sendComponentResponse(event, resp)
	})
}

// dispatchCommand maps a slash command onto the engine.
func (b *Bot) dispatchCommand(
	ctx context.Context, event *events.ApplicationCommandInteractionCreate, data discord.SlashCommandInteractionData,
) (game.Response, error) {
	actor := actorFrom(event)
	location := locationFrom(event)

	switch data.CommandName() {
	case constants.SetupCommandName:
		req := game.SetupRequest{Actor: actor, Location: location}
		if ch, ok := data.OptChannel(constants.ChannelOptionName); ok {
			req.MainChannelID = ch.ID.String()
		}

		if ch, ok := data.OptChannel(constants.NSFWChannelOptionName); ok {
			req.NSFWChannelID = ch.ID.String()
		}

		return b.engine.Setup(ctx, req)

	case constants.ReloadCommandName:
		return b.engine.Reload(ctx, actor)

	case constants.SuggestCommandName:
		return b.suggest(ctx, actor, data)

	case constants.ApproveCycleCommandName:
		return b.engine.StartReview(ctx, actor)

	case constants.StatsCommandName:
		return b.engine.Stats(ctx), nil

	case constants.HelpCommandName:
		return b.engine.Help(), nil
	}

	mode, err := game.ParseMode(data.CommandName())
	if err != nil {
		return game.Response{Text: constants.UnknownCommandMessage, Ephemeral: true}, err
	}

	req := game.PlayRequest{Actor: actor, Location: location, Mode: mode}

	if value, ok := data.OptString(constants.RatingOptionName); ok {
		rating, err := enum.ParseRating(value)
		if err != nil {
			return game.Response{Text: "Unknown rating.", Ephemeral: true}, fmt.Errorf("%w: %w", game.ErrInvalidInput, err)
		}

		req.Rating = &rating
	}

	return b.engine.Play(ctx, req)
}

// suggest parses the suggest command options.
func (b *Bot) suggest(
	ctx context.Context, actor game.Actor, data discord.SlashCommandInteractionData,
) (game.Response, error) {
	category, err := enum.ParseCategory(data.String(constants.TypeOptionName))
	if err != nil {
		return game.Response{Text: "Unknown suggestion type.", Ephemeral: true},
			fmt.Errorf("%w: %w", game.ErrInvalidInput, err)
	}

	rating, err := enum.ParseRating(data.String(constants.RatingOptionName))
	if err != nil {
		return game.Response{Text: "Unknown rating.", Ephemeral: true},
			fmt.Errorf("%w: %w", game.ErrInvalidInput, err)
	}

	return b.engine.Suggest(ctx, game.SuggestRequest{
		Actor:    actor,
		Text:     data.String(constants.TextOptionName),
		Category: category,
		Rating:   rating,
	})
}

// dispatchComponent maps a button click onto the engine by its control prefix.
func (b *Bot) dispatchComponent(
	ctx context.Context, event *events.ComponentInteractionCreate, customID string,
) (game.Response, error) {
	actor := actorFrom(event)
	prefix, _, _ := strings.Cut(customID, ":")

	switch prefix {
	case game.PlayControlPrefix:
		control, err := game.ParsePlayControl(customID)
		if err != nil {
			return game.Response{Text: constants.UnknownControlMessage, Ephemeral: true},
				fmt.Errorf("%w: %w", game.ErrInvalidInput, err)
		}

		return b.engine.Next(ctx, game.NextRequest{
			Actor:    actor,
			Location: locationFrom(event),
			Control:  control,
		})

	case game.ReviewControlPrefix:
		control, err := game.ParseReviewControl(customID)
		if err != nil {
			return game.Response{Text: constants.UnknownControlMessage, Ephemeral: true},
				fmt.Errorf("%w: %w", game.ErrInvalidInput, err)
		}

		return b.engine.Review(ctx, actor, control)

	default:
		return game.Response{Text: constants.UnknownControlMessage, Ephemeral: true},
			fmt.Errorf("%w: unknown control %q", game.ErrInvalidInput, customID)
	}
}

// sendCommandResponse answers a slash command with a new message.
func (b *Bot) sendCommandResponse(event *events.ApplicationCommandInteractionCreate, resp game.Response) {
	if err := event.CreateMessage(builder.CreateMessage(resp, time.Now())); err != nil {
		b.logger.Error("Failed to respond to command", zap.Error(err))
		return
	}

	b.sendFollowup(event, resp.Followup)
}

// sendComponentResponse answers a button click. The response either deletes
// the clicked message, edits it, or posts a new message.
func (b *Bot) sendComponentResponse(event *events.ComponentInteractionCreate, resp game.Response) {
	rest := event.Client().Rest()

	switch {
	case resp.Delete:
		if err := event.DeferUpdateMessage(); err != nil {
			b.logger.Error("Failed to acknowledge component", zap.Error(err))
			return
		}

		if err := rest.DeleteInteractionResponse(event.ApplicationID(), event.Token()); err != nil {
			b.logger.Error("Failed to delete message", zap.Error(err))
		}

	case resp.Update:
		if err := event.UpdateMessage(builder.UpdateMessage(resp, time.Now())); err != nil {
			b.logger.Error("Failed to update message", zap.Error(err))
			return
		}

	default:
		if err := event.CreateMessage(builder.CreateMessage(resp, time.Now())); err != nil {
			b.logger.Error("Failed to respond to component", zap.Error(err))
			return
		}

		if resp.ClearSource {
			_, err := rest.UpdateMessage(event.Message.ChannelID, event.Message.ID, builder.ClearControls())
			if err != nil {
				b.logger.Warn("Failed to clear controls of previous message",
					zap.String("messageID", event.Message.ID.String()),
					zap.Error(err))
			}
		}
	}

	b.sendFollowup(event, resp.Followup)
}

// sendFollowup posts a private note after the interaction was answered.
func (b *Bot) sendFollowup(event interfaces.CommonEvent, text string) {
	if text == "" {
		return
	}

	_, err := event.Client().Rest().CreateFollowupMessage(
		event.ApplicationID(), event.Token(), builder.EphemeralText(text),
	)
	if err != nil {
		b.logger.Error("Failed to send followup", zap.Error(err))
	}
}

// actorFrom builds the actor of an interaction. Admin comes from the
// member's resolved permissions and is always false in DMs.
func actorFrom(event interfaces.CommonEvent) game.Actor {
	user := event.User()
	actor := game.Actor{ID: user.ID.String(), Name: user.Username}

	if member := event.Member(); member != nil {
		actor.Admin = member.Permissions.Has(discord.PermissionAdministrator)
	}

	return actor
}

// locationFrom builds the location of an interaction.
func locationFrom(event interfaces.CommonEvent) game.Location {
	location := game.Location{ChannelID: event.ChannelID().String()}
	if guildID := event.GuildID(); guildID != nil {
		location.CommunityID = guildID.String()
	}

	return location
}
