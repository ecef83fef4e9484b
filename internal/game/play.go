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
	"go.uber.org/zap"
)

// PlayRequest starts a game with a play command.
type PlayRequest struct {
	Actor    Actor
	Location Location
	Mode     Mode
	// Rating, when set, is the only rating served for this view.
	Rating *enum.Rating
}

// NextRequest is a click on a play control.
type NextRequest struct {
	Actor    Actor
	Location Location
	Control  PlayControl
}

// playTexts are the rejection messages of a play phase. Commands and buttons word them differently.
type playTexts struct {
	wrongChannel string
	noPrompt     string
}

var (
	startTexts = playTexts{
		wrongChannel: "⛔ Use %s.",
		noPrompt:     "No questions found matching criteria!",
	}
	nextTexts = playTexts{
		wrongChannel: "⛔ Please play in %s!",
		noPrompt:     "No questions found for allowed ratings!",
	}
)

// Play serves the first prompt of a game.
func (e *Engine) Play(ctx context.Context, req PlayRequest) (resp Response, err error) {
	_, span := e.startSpan(ctx, "Play",
		attribute.String("mode", string(req.Mode)),
		attribute.String("user_id", req.Actor.ID))
	defer func() { endSpan(span, err) }()

	if rejected, err := e.checkChannel(req.Location, startTexts); err != nil {
		return rejected, err
	}

	if rejected, err := e.checkCooldown(req.Actor); err != nil {
		return rejected, err
	}

	allowed := e.allowedRatings(req.Location)
	if req.Rating != nil && !allowed.Has(*req.Rating) {
		return ephemeral(fmt.Sprintf("⛔ Rating '%s' is not allowed in this channel.",
			strings.ToUpper(req.Rating.String()))), ErrPolicyViolation
	}

	return e.serve(req.Actor, req.Mode.viewMode(), req.Mode.startChoice(), req.Rating, "", allowed,
		e.settings.StartAttempts, startTexts)
}

// Next serves another prompt from a play view.
func (e *Engine) Next(ctx context.Context, req NextRequest) (resp Response, err error) {
	_, span := e.startSpan(ctx, "Next",
		attribute.String("mode", string(req.Control.Mode)),
		attribute.String("choice", req.Control.Choice),
		attribute.String("user_id", req.Actor.ID))
	defer func() { endSpan(span, err) }()

	if rejected, err := e.checkChannel(req.Location, nextTexts); err != nil {
		return rejected, err
	}

	if rejected, err := e.checkCooldown(req.Actor); err != nil {
		return rejected, err
	}

	// A sticky rating is re-checked because the channel split may have changed since the view was sent
	allowed := e.allowedRatings(req.Location)
	if rating := req.Control.Rating; rating != nil && !allowed.Has(*rating) {
		return ephemeral(fmt.Sprintf("⛔ %s-rated content is not allowed in this channel.", rating.Label())),
			ErrPolicyViolation
	}

	resp, err = e.serve(req.Actor, req.Control.Mode, req.Control.Choice, req.Control.Rating,
		req.Control.ExcludeID, allowed, e.settings.NextAttempts, nextTexts)
	if err == nil {
		resp.ClearSource = true
	}

	return resp, err
}

// serve draws a prompt and renders it with the controls of the view mode.
func (e *Engine) serve(
	actor Actor, mode Mode, choice string, rating *enum.Rating, excludeID string,
	allowed enum.RatingSet, attempts int, texts playTexts,
) (Response, error) {
	categories, fallback, err := mode.draw(choice)
	if err != nil {
		return ephemeral("That button is no longer valid."), err
	}

	drawn, err := e.selector.Draw(prompt.DrawRequest{
		Categories: categories,
		Rating:     rating,
		Allowed:    allowed,
		ExcludeID:  excludeID,
	}, prompt.RetryPolicy{
		MaxAttempts: attempts,
		Fallback:    fallback,
	})
	if err != nil {
		if errors.Is(err, prompt.ErrNoPrompt) || errors.Is(err, prompt.ErrRatingNotAllowed) {
			e.logger.Debug("No prompt for play request",
				zap.String("mode", string(mode)),
				zap.String("choice", choice),
				zap.Stringer("allowed", allowed),
				zap.Error(err))

			return ephemeral(texts.noPrompt), fmt.Errorf("%w: %w", ErrPoolExhausted, err)
		}

		return Response{}, fmt.Errorf("failed to draw prompt: %w", err)
	}

	card := render.PromptCard(drawn, actor.Name)

	resp := Response{
		Card:     &card,
		Controls: []render.Row{playControls(mode, rating, drawn.ID)},
	}

	if e.roll(e.settings.TipChance) {
		resp.Text = e.settings.TipText
	}

	return resp, nil
}

// checkCooldown rejects actors acting faster than the cooldown allows.
func (e *Engine) checkCooldown(actor Actor) (Response, error) {
	if e.cooldown == nil {
		return Response{}, nil
	}

	if ok, remaining := e.cooldown.Allow(actor.ID); !ok {
		return ephemeral(fmt.Sprintf("⏳ You're clicking too fast! Please wait %.1fs.", remaining.Seconds())),
			ErrRateLimited
	}

	return Response{}, nil
}

// checkChannel rejects play outside the configured channels of a community.
func (e *Engine) checkChannel(loc Location, texts playTexts) (Response, error) {
	if loc.CommunityID == "" {
		return Response{}, nil
	}

	scope, ok := e.policy.GetScope(loc.CommunityID)
	if !ok || channel.IsChannelInScope(scope, loc.ChannelID) {
		return Response{}, nil
	}

	where := render.ChannelMention(scope.MainChannelID)
	if scope.HasNSFW() {
		where += " or " + render.ChannelMention(scope.NSFWChannelID)
	}

	return ephemeral(fmt.Sprintf(texts.wrongChannel, where)), ErrPolicyViolation
}

// allowedRatings returns the ratings a location may show. Direct messages allow everything.
func (e *Engine) allowedRatings(loc Location) enum.RatingSet {
	if loc.CommunityID == "" {
		return enum.AllRatings()
	}

	return e.policy.AllowedRatings(loc.CommunityID, loc.ChannelID)
}

// playControls builds the "next" buttons of a view mode.
func playControls(mode Mode, rating *enum.Rating, shownID string) render.Row {
	control := func(label, choice string, style render.Style) render.Control {
		return render.Control{
			Label: label,
			ID:    PlayControl{Mode: mode, Choice: choice, Rating: rating, ExcludeID: shownID}.ID(),
			Style: style,
		}
	}

	switch mode {
	case ModeWouldYouRather:
		return render.Row{control("Next WYR", enum.CategoryWouldYouRather.String(), render.StylePrimary)}
	case ModeNeverHaveIEver:
		return render.Row{control("Next NHIE", enum.CategoryNeverHaveIEver.String(), render.StylePrimary)}
	case ModeParanoia:
		return render.Row{control("Next Paranoia", enum.CategoryParanoia.String(), render.StylePrimary)}
	case ModeRandom:
		return render.Row{control("Surprise Me", ChoiceRandom, render.StylePrimary)}
	default:
		return render.Row{
			control("Truth", enum.CategoryTruth.String(), render.StyleSuccess),
			control("Dare", enum.CategoryDare.String(), render.StyleDanger),
			control("Random", ChoiceRandom, render.StylePrimary),
		}
	}
}
