package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robalyx/tickle/internal/moderation"
	"github.com/robalyx/tickle/internal/types/enum"
)

// Control id prefixes.
const (
	PlayControlPrefix   = "play"
	ReviewControlPrefix = "review"

	controlSeparator = ":"
	noRating         = "-"
)

// ErrMalformedControl is returned when a control id cannot be parsed.
var ErrMalformedControl = errors.New("malformed control id")

// Mode is the kind of game a play view runs.
type Mode string

// Play modes.
const (
	ModeTruth          Mode = "truth"
	ModeDare           Mode = "dare"
	ModeTruthOrDare    Mode = "tod"
	ModeWouldYouRather Mode = "wyr"
	ModeNeverHaveIEver Mode = "nhie"
	ModeParanoia       Mode = "paranoia"
	ModeRandom         Mode = "random"
)

// ChoiceRandom asks for a random category of the view mode.
const ChoiceRandom = "random"

// Modes returns every play mode in command order.
func Modes() []Mode {
	return []Mode{
		ModeTruth, ModeDare, ModeTruthOrDare, ModeWouldYouRather,
		ModeNeverHaveIEver, ModeParanoia, ModeRandom,
	}
}

// ParseMode converts a command name into a Mode.
func ParseMode(s string) (Mode, error) {
	for _, mode := range Modes() {
		if string(mode) == s {
			return mode, nil
		}
	}

	return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidInput, s)
}

// viewMode is the control set shown after a prompt of this mode.
// Truth and dare share the truth-or-dare controls.
func (m Mode) viewMode() Mode {
	switch m {
	case ModeTruth, ModeDare:
		return ModeTruthOrDare
	default:
		return m
	}
}

// startChoice is the choice a play command makes for its first prompt.
func (m Mode) startChoice() string {
	switch m {
	case ModeTruthOrDare, ModeRandom:
		return ChoiceRandom
	default:
		return string(m)
	}
}

// draw returns the candidate categories for a choice made in this mode and
// the categories tried once each when they are exhausted.
func (m Mode) draw(choice string) ([]enum.Category, []enum.Category, error) {
	if choice == ChoiceRandom {
		if m == ModeRandom {
			return enum.Categories(), []enum.Category{enum.CategoryTruth}, nil
		}

		truthOrDare := []enum.Category{enum.CategoryTruth, enum.CategoryDare}

		return truthOrDare, truthOrDare, nil
	}

	category, err := enum.ParseCategory(choice)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	return []enum.Category{category}, nil, nil
}

// PlayControl is a "next" button of a play view. It carries the view mode,
// the sticky explicit rating and the prompt shown so it is not repeated.
type PlayControl struct {
	Mode      Mode
	Choice    string
	Rating    *enum.Rating
	ExcludeID string
}

// ID encodes the control as "play:<mode>:<choice>:<rating|->:<excludeID>".
func (c PlayControl) ID() string {
	rating := noRating
	if c.Rating != nil {
		rating = c.Rating.String()
	}

	return strings.Join([]string{PlayControlPrefix, string(c.Mode), c.Choice, rating, c.ExcludeID}, controlSeparator)
}

// ParsePlayControl decodes a play control id.
func ParsePlayControl(id string) (PlayControl, error) {
	parts := strings.SplitN(id, controlSeparator, 5)
	if len(parts) != 5 || parts[0] != PlayControlPrefix {
		return PlayControl{}, fmt.Errorf("%w: %q", ErrMalformedControl, id)
	}

	mode, err := ParseMode(parts[1])
	if err != nil {
		return PlayControl{}, fmt.Errorf("%w: %w", ErrMalformedControl, err)
	}

	if _, _, err := mode.draw(parts[2]); err != nil {
		return PlayControl{}, fmt.Errorf("%w: %w", ErrMalformedControl, err)
	}

	control := PlayControl{Mode: mode, Choice: parts[2], ExcludeID: parts[4]}

	if parts[3] != noRating {
		rating, err := enum.ParseRating(parts[3])
		if err != nil {
			return PlayControl{}, fmt.Errorf("%w: %w", ErrMalformedControl, err)
		}

		control.Rating = &rating
	}

	return control, nil
}

// ReviewControl is a button of a review session.
type ReviewControl struct {
	SessionID string
	Action    moderation.Action
	// Rating is only meaningful for moderation.ActionPickRating.
	Rating enum.Rating
}

// ID encodes the control as "review:<session>:<action>[:<rating>]".
func (c ReviewControl) ID() string {
	parts := []string{ReviewControlPrefix, c.SessionID, c.Action.String()}
	if c.Action == moderation.ActionPickRating {
		parts = append(parts, c.Rating.String())
	}

	return strings.Join(parts, controlSeparator)
}

// ParseReviewControl decodes a review control id.
func ParseReviewControl(id string) (ReviewControl, error) {
	parts := strings.Split(id, controlSeparator)
	if len(parts) < 3 || len(parts) > 4 || parts[0] != ReviewControlPrefix || parts[1] == "" {
		return ReviewControl{}, fmt.Errorf("%w: %q", ErrMalformedControl, id)
	}

	action, err := moderation.ParseAction(parts[2])
	if err != nil {
		return ReviewControl{}, fmt.Errorf("%w: %w", ErrMalformedControl, err)
	}

	control := ReviewControl{SessionID: parts[1], Action: action}

	if action == moderation.ActionPickRating {
		if len(parts) != 4 {
			return ReviewControl{}, fmt.Errorf("%w: missing rating in %q", ErrMalformedControl, id)
		}

		rating, err := enum.ParseRating(parts[3])
		if err != nil {
			return ReviewControl{}, fmt.Errorf("%w: %w", ErrMalformedControl, err)
		}

		control.Rating = rating
	}

	return control, nil
}
