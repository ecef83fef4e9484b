// Package moderation runs the suggestion review workflow.
package moderation

import (
	"errors"
	"fmt"
	"time"

	"github.com/robalyx/tickle/internal/types"
	"github.com/robalyx/tickle/internal/types/enum"
)

// ErrInvalidTransition is returned when an action does not apply to the current state.
var ErrInvalidTransition = errors.New("action is not valid in the current state")

// State is the step a review session is at.
type State int

const (
	// StateReviewing shows a suggestion with approve, deny and stop controls.
	StateReviewing State = iota
	// StateChoosingRating asks for the rating the approved prompt gets.
	StateChoosingRating
	// StateConfirmingApproval asks to confirm approval at the chosen rating.
	StateConfirmingApproval
	// StateConfirmingDenial asks to confirm the denial.
	StateConfirmingDenial
	// StateClosed is terminal.
	StateClosed
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case StateReviewing:
		return "reviewing"
	case StateChoosingRating:
		return "choosing_rating"
	case StateConfirmingApproval:
		return "confirming_approval"
	case StateConfirmingDenial:
		return "confirming_denial"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Action is a reviewer input.
type Action int

const (
	ActionApprove Action = iota
	ActionDeny
	ActionStop
	ActionPickRating
	ActionCancel
	ActionConfirm
)

var actionNames = map[Action]string{
	ActionApprove:    "approve",
	ActionDeny:       "deny",
	ActionStop:       "stop",
	ActionPickRating: "rate",
	ActionCancel:     "cancel",
	ActionConfirm:    "confirm",
}

// String returns the short name of the action used in control ids.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}

	return fmt.Sprintf("Action(%d)", int(a))
}

// ParseAction converts a short action name back into an Action.
func ParseAction(s string) (Action, error) {
	for action, name := range actionNames {
		if name == s {
			return action, nil
		}
	}

	return 0, fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, s)
}

// Effect is the side effect a transition asks the workflow to perform.
type Effect int

const (
	// EffectNone only changes the session.
	EffectNone Effect = iota
	// EffectCommitApproval appends the suggestion to the pool and removes it from the queue.
	EffectCommitApproval
	// EffectCommitDenial removes the suggestion from the queue.
	EffectCommitDenial
	// EffectClose ends the session.
	EffectClose
)

// Session is one reviewer's walk through the suggestion queue.
type Session struct {
	ID         string           `json:"id"`
	ReviewerID string           `json:"reviewerId"`
	Index      int              `json:"index"`
	State      State            `json:"state"`
	Rating     enum.Rating      `json:"rating"`
	Suggestion types.Suggestion `json:"suggestion"`
	Total      int              `json:"total"`
	UpdatedAt  time.Time        `json:"updatedAt"`
	// AppendedPromptID is set when an approval reached the pool but the
	// suggestion is still queued. Confirming again only removes it.
	AppendedPromptID string `json:"appendedPromptId,omitempty"`
}

// Transition applies a reviewer action to a session. It is pure: the returned
// effect tells the caller which queue and pool mutations to perform. The
// rating argument is only read for ActionPickRating.
func Transition(s Session, action Action, rating enum.Rating) (Session, Effect, error) {
	next := s

	switch s.State {
	case StateReviewing:
		switch action {
		case ActionApprove:
			next.State = StateChoosingRating
			return next, EffectNone, nil
		case ActionDeny:
			next.State = StateConfirmingDenial
			return next, EffectNone, nil
		case ActionStop:
			next.State = StateClosed
			return next, EffectClose, nil
		}

	case StateChoosingRating:
		switch action {
		case ActionPickRating:
			if !rating.IsValid() {
				return s, EffectNone, fmt.Errorf("%w: invalid rating", ErrInvalidTransition)
			}

			next.State = StateConfirmingApproval
			next.Rating = rating

			return next, EffectNone, nil
		case ActionCancel:
			next.State = StateReviewing
			return next, EffectNone, nil
		}

	case StateConfirmingApproval:
		switch action {
		case ActionConfirm:
			return next, EffectCommitApproval, nil
		case ActionCancel:
			if s.AppendedPromptID != "" {
				return s, EffectNone, fmt.Errorf("%w: approval already added to the pool", ErrInvalidTransition)
			}

			next.State = StateChoosingRating
			return next, EffectNone, nil
		}

	case StateConfirmingDenial:
		switch action {
		case ActionConfirm:
			return next, EffectCommitDenial, nil
		case ActionCancel:
			next.State = StateReviewing
			return next, EffectNone, nil
		}

	case StateClosed:
	}

	return s, EffectNone, fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, action, s.State)
}

// ClampIndex returns the cursor position after the queue shrank to length.
// It returns -1 when the queue is empty.
func ClampIndex(index, length int) int {
	if length <= 0 {
		return -1
	}

	return max(0, min(index, length-1))
}
