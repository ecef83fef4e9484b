package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/robalyx/tickle/internal/moderation"
	"github.com/robalyx/tickle/internal/render"
	"github.com/robalyx/tickle/internal/suggestion"
	"github.com/robalyx/tickle/internal/types/enum"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const allProcessedText = "✅ All suggestions processed!"

// SuggestRequest submits a prompt for review.
type SuggestRequest struct {
	Actor    Actor
	Text     string
	Category enum.Category
	Rating   enum.Rating
}

// Suggest queues a suggestion.
func (e *Engine) Suggest(ctx context.Context, req SuggestRequest) (resp Response, err error) {
	ctx, span := e.startSpan(ctx, "Suggest",
		attribute.String("category", req.Category.String()),
		attribute.String("user_id", req.Actor.ID))
	defer func() { endSpan(span, err) }()

	if _, err := e.queue.Enqueue(ctx, req.Text, req.Category, req.Rating, req.Actor.ID, req.Actor.Name); err != nil {
		if errors.Is(err, suggestion.ErrEmptyText) {
			return ephemeral("Your suggestion is empty."), fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}

		return Response{}, err
	}

	return ephemeral("✅ Suggestion submitted for review!"), nil
}

// StartReview opens a review session for an owner.
func (e *Engine) StartReview(ctx context.Context, actor Actor) (resp Response, err error) {
	ctx, span := e.startSpan(ctx, "StartReview", attribute.String("user_id", actor.ID))
	defer func() { endSpan(span, err) }()

	if !e.IsOwner(actor.ID) {
		return ephemeral("⛔ You are not authorized to use this command."), ErrAuthorizationDenied
	}

	view, err := e.workflow.Start(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, moderation.ErrQueueEmpty) {
			return ephemeral("No pending suggestions."), nil
		}

		return Response{}, err
	}

	resp = reviewResponse(view)
	resp.Update = false

	return resp, nil
}

// Review applies a review control click.
func (e *Engine) Review(ctx context.Context, actor Actor, control ReviewControl) (resp Response, err error) {
	ctx, span := e.startSpan(ctx, "Review",
		attribute.String("session_id", control.SessionID),
		attribute.String("action", control.Action.String()),
		attribute.String("user_id", actor.ID))
	defer func() { endSpan(span, err) }()

	view, err := e.workflow.Act(ctx, control.SessionID, actor.ID, control.Action, control.Rating)

	switch {
	case err == nil:
	case errors.Is(err, moderation.ErrNotSessionOwner):
		return ephemeral("Not authorized"), fmt.Errorf("%w: %w", ErrAuthorizationDenied, err)

	case errors.Is(err, moderation.ErrSessionNotFound):
		return ephemeral("This review session has ended. Run /approve-cycle to start a new one."),
			fmt.Errorf("%w: %w", ErrNotFound, err)

	case errors.Is(err, moderation.ErrSuggestionGone):
		e.logger.Info("Suggestion changed during review",
			zap.String("sessionID", control.SessionID),
			zap.String("reviewerID", actor.ID))

		resp = reviewResponse(view)
		resp.Followup = "⚠️ That suggestion is no longer available. Showing the current one instead."

		return resp, fmt.Errorf("%w: %w", ErrNotFound, err)

	case errors.Is(err, moderation.ErrInvalidTransition):
		return ephemeral("That action is no longer available."), fmt.Errorf("%w: %w", ErrNotFound, err)

	default:
		return Response{}, err
	}

	if view.Stopped {
		return Response{Update: true, Delete: true}, nil
	}

	resp = reviewResponse(view)
	if !view.Done {
		resp.Followup = view.Notice
	}

	return resp, nil
}

// reviewResponse renders a review view as an update of the review message.
func reviewResponse(view moderation.View) Response {
	if view.Done {
		return Response{Text: allProcessedText, Update: true}
	}

	card := render.ReviewCard(view.Suggestion, view.Position, view.Total, view.Duplicates)
	session := view.Session

	control := func(label string, action moderation.Action, style render.Style) render.Control {
		return render.Control{
			Label: label,
			ID:    ReviewControl{SessionID: session.ID, Action: action}.ID(),
			Style: style,
		}
	}
	cancel := control("Cancel", moderation.ActionCancel, render.StyleSecondary)

	resp := Response{Card: &card, Update: true}

	switch session.State {
	case moderation.StateChoosingRating:
		row := make(render.Row, 0, len(enum.Ratings())+1)
		for _, rating := range enum.Ratings() {
			row = append(row, render.Control{
				Label: rating.Label(),
				ID:    ReviewControl{SessionID: session.ID, Action: moderation.ActionPickRating, Rating: rating}.ID(),
				Style: render.StylePrimary,
			})
		}

		resp.Text = "Choose the rating to approve this suggestion with."
		resp.Controls = []render.Row{append(row, cancel)}

	case moderation.StateConfirmingApproval:
		resp.Text = fmt.Sprintf("Approve this suggestion as **%s**?", session.Rating.Label())
		resp.Controls = []render.Row{{
			control("Confirm Approval", moderation.ActionConfirm, render.StyleSuccess),
			cancel,
		}}

	case moderation.StateConfirmingDenial:
		resp.Text = "Deny this suggestion?"
		resp.Controls = []render.Row{{
			control("Confirm Deny", moderation.ActionConfirm, render.StyleDanger),
			cancel,
		}}

	default:
		resp.Controls = []render.Row{{
			control("Approve", moderation.ActionApprove, render.StyleSuccess),
			control("Deny", moderation.ActionDeny, render.StyleDanger),
			control("Stop", moderation.ActionStop, render.StyleSecondary),
		}}
	}

	return resp
}
