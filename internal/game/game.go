// Package game turns normalized player and reviewer requests into responses.
// It owns no transport: the bot package feeds it requests and sends back what it returns.
package game

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/robalyx/tickle/internal/channel"
	"github.com/robalyx/tickle/internal/moderation"
	"github.com/robalyx/tickle/internal/prompt"
	"github.com/robalyx/tickle/internal/ratelimit"
	"github.com/robalyx/tickle/internal/render"
	"github.com/robalyx/tickle/internal/suggestion"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Errors returned alongside a user-facing response. The response already
// carries the message to show; callers only need them for logging and metrics.
var (
	ErrPolicyViolation     = errors.New("channel policy violation")
	ErrPoolExhausted       = errors.New("no prompt matches the constraints")
	ErrAuthorizationDenied = errors.New("actor is not authorized")
	ErrNotFound            = errors.New("referenced item no longer exists")
	ErrRateLimited         = errors.New("actor is rate limited")
	ErrInvalidInput        = errors.New("invalid input")
)

// IsUserError reports whether err is an expected rejection rather than a failure.
func IsUserError(err error) bool {
	return errors.Is(err, ErrPolicyViolation) ||
		errors.Is(err, ErrPoolExhausted) ||
		errors.Is(err, ErrAuthorizationDenied) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrInvalidInput)
}

// Actor is the user behind a request.
type Actor struct {
	ID   string
	Name string
	// Admin is set when the actor administers the community.
	Admin bool
}

// Location is where a request was made. CommunityID is empty in direct messages.
type Location struct {
	CommunityID string
	ChannelID   string
}

// Response is what the transport should send back.
type Response struct {
	// Text is the message content. An empty text clears content on updates.
	Text     string
	Card     *render.Card
	Controls []render.Row
	// Ephemeral responses are only visible to the actor.
	Ephemeral bool
	// Update edits the message the control belongs to instead of sending a new one.
	Update bool
	// Delete removes the message the control belongs to.
	Delete bool
	// Followup is sent to the actor only, after the response.
	Followup string
	// ClearSource strips the controls from the message the control belongs to.
	ClearSource bool
}

// Settings tunes the engine.
type Settings struct {
	StartAttempts int
	NextAttempts  int
	TipChance     float64
	TipText       string
	OwnerIDs      []string
}

// Dependencies are the components the engine drives.
type Dependencies struct {
	Prompts  *prompt.Store
	Policy   *channel.Policy
	Queue    *suggestion.Queue
	Workflow *moderation.Workflow
	Cooldown *ratelimit.Cooldown
}

// Engine handles every game, suggestion and review request.
type Engine struct {
	prompts  *prompt.Store
	selector *prompt.Selector
	policy   *channel.Policy
	queue    *suggestion.Queue
	workflow *moderation.Workflow
	cooldown *ratelimit.Cooldown
	settings Settings
	tracer   trace.Tracer
	logger   *zap.Logger

	rng   *rand.Rand
	rngMu sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand sets the random source for category picks, prompt draws and tips.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

// New creates an engine.
func New(deps Dependencies, settings Settings, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		prompts:  deps.Prompts,
		policy:   deps.Policy,
		queue:    deps.Queue,
		workflow: deps.Workflow,
		cooldown: deps.Cooldown,
		settings: settings,
		tracer:   otel.Tracer("github.com/robalyx/tickle/internal/game"),
		logger:   logger.Named("game"),
		rng:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x67616d65)), //nolint:gosec // game randomness
	}

	for _, opt := range opts {
		opt(e)
	}

	// The selector locks its own generator, so it gets a child of ours
	e.selector = prompt.NewSelector(deps.Prompts, rand.New(rand.NewPCG(e.rng.Uint64(), e.rng.Uint64()))) //nolint:gosec // game randomness

	return e
}

// IsOwner reports whether the user may run owner-only commands.
func (e *Engine) IsOwner(userID string) bool {
	return slices.Contains(e.settings.OwnerIDs, userID)
}

// Help returns the static help card.
func (e *Engine) Help() Response {
	card := render.HelpCard(e.settings.OwnerIDs)
	return Response{Card: &card}
}

// Welcome returns the message sent to the owner of a newly joined community.
func (e *Engine) Welcome() Response {
	card := render.WelcomeCard()
	return Response{Card: &card}
}

// startSpan opens a tracing span for an engine operation.
func (e *Engine) startSpan(
	ctx context.Context, name string, attrs ...attribute.KeyValue,
) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, "game."+name, trace.WithAttributes(attrs...))
}

// endSpan closes a span, marking it failed for unexpected errors only.
func endSpan(span trace.Span, err error) {
	if err != nil {
		if IsUserError(err) {
			span.SetAttributes(attribute.String("rejection", err.Error()))
		} else {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}

	span.End()
}

// roll reports whether a random draw falls under chance.
func (e *Engine) roll(chance float64) bool {
	if chance <= 0 {
		return false
	}

	e.rngMu.Lock()
	defer e.rngMu.Unlock()

	return e.rng.Float64() < chance
}

// ephemeral builds a private text response.
func ephemeral(text string) Response {
	return Response{Text: text, Ephemeral: true}
}
