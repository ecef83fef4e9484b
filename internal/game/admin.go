package game

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/robalyx/tickle/internal/channel"
	"github.com/robalyx/tickle/internal/prompt"
	"github.com/robalyx/tickle/internal/render"
	"github.com/robalyx/tickle/internal/types/enum"
	"go.opentelemetry.io/otel/attribute"
)

// SetupRequest configures the game channels of a community.
type SetupRequest struct {
	Actor         Actor
	Location      Location
	MainChannelID string
	// NSFWChannelID is optional.
	NSFWChannelID string
}

// Setup stores the channel scope of a community.
func (e *Engine) Setup(ctx context.Context, req SetupRequest) (resp Response, err error) {
	ctx, span := e.startSpan(ctx, "Setup",
		attribute.String("community_id", req.Location.CommunityID),
		attribute.String("user_id", req.Actor.ID))
	defer func() { endSpan(span, err) }()

	if req.Location.CommunityID == "" {
		return ephemeral("This command can only be used in a server."), ErrInvalidInput
	}

	if !req.Actor.Admin {
		return ephemeral("Perms denied."), ErrAuthorizationDenied
	}

	scope, err := e.policy.SetScope(ctx, req.Location.CommunityID, req.MainChannelID, req.NSFWChannelID)
	if err != nil {
		if errors.Is(err, channel.ErrMissingMainChannel) {
			return ephemeral("A main channel is required."), fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}

		return Response{}, err
	}

	var b strings.Builder
	b.WriteString("✅ **Setup Complete!**\n")

	if scope.HasNSFW() {
		fmt.Fprintf(&b, "🔹 **Main Channel**: %s (PG/PG-13)\n", render.ChannelMention(scope.MainChannelID))
		fmt.Fprintf(&b, "🔸 **NSFW Channel**: %s (PG/PG-13/R)", render.ChannelMention(scope.NSFWChannelID))
	} else {
		fmt.Fprintf(&b, "🔹 **Game Channel**: %s (All Ratings Allowed)", render.ChannelMention(scope.MainChannelID))
	}

	return ephemeral(b.String()), nil
}

// Reload re-reads the prompt pool and reports what was loaded.
func (e *Engine) Reload(ctx context.Context, actor Actor) (resp Response, err error) {
	ctx, span := e.startSpan(ctx, "Reload", attribute.String("user_id", actor.ID))
	defer func() { endSpan(span, err) }()

	if !actor.Admin && !e.IsOwner(actor.ID) {
		return ephemeral("Perms denied."), ErrAuthorizationDenied
	}

	result, err := e.prompts.Reload(ctx)
	if err != nil {
		if errors.Is(err, prompt.ErrInvalidPool) {
			return ephemeral("⚠️ Warning: `questions.json` appears to be empty or malformed. " +
				"The previous questions are still in use."), nil
		}

		return Response{}, err
	}

	stats := result.Stats
	truths := stats.Categories[enum.CategoryTruth].Total
	dares := stats.Categories[enum.CategoryDare].Total

	if truths == 0 && dares == 0 {
		return ephemeral("⚠️ Warning: `questions.json` appears to be empty or malformed."), nil
	}

	var b strings.Builder
	b.WriteString("✅ Successfully reloaded questions!")

	for _, category := range enum.Categories() {
		fmt.Fprintf(&b, "\n%s: %d", statsLabel(category), stats.Categories[category].Total)
	}

	if result.Skipped > 0 {
		fmt.Fprintf(&b, "\nSkipped %d malformed entries.", result.Skipped)
	}

	return ephemeral(b.String()), nil
}

// Stats shows prompt counts of the current pool.
func (e *Engine) Stats(ctx context.Context) Response {
	_, span := e.startSpan(ctx, "Stats")
	defer span.End()

	card := render.StatsCard(e.prompts.Pool().Stats())

	return Response{Card: &card}
}

// statsLabel is the plural label of a category in reload reports.
func statsLabel(category enum.Category) string {
	switch category {
	case enum.CategoryTruth:
		return "Truths"
	case enum.CategoryDare:
		return "Dares"
	default:
		return category.Title()
	}
}
