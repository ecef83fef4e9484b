package moderation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robalyx/tickle/internal/duplicate"
	"github.com/robalyx/tickle/internal/prompt"
	"github.com/robalyx/tickle/internal/types"
	"github.com/robalyx/tickle/internal/types/enum"
	"go.uber.org/zap"
)

var (
	// ErrQueueEmpty is returned when a review starts with nothing pending.
	ErrQueueEmpty = errors.New("no pending suggestions")
	// ErrNotSessionOwner is returned when someone other than the reviewer drives a session.
	ErrNotSessionOwner = errors.New("only the reviewer who started the session can use it")
	// ErrSuggestionGone is returned when the suggestion under the cursor was removed elsewhere.
	ErrSuggestionGone = errors.New("suggestion is no longer available")
)

// Queue is the part of the suggestion queue the workflow needs.
type Queue interface {
	All(ctx context.Context) ([]types.Suggestion, error)
	At(ctx context.Context, index int) (types.Suggestion, int, bool, error)
	RemoveAt(ctx context.Context, index int) (types.Suggestion, bool, error)
}

// PromptStore is the part of the prompt store the workflow needs.
type PromptStore interface {
	prompt.PoolSource
	Append(ctx context.Context, category enum.Category, text string, rating enum.Rating) (types.Prompt, error)
}

// View is what the reviewer should see after an action.
type View struct {
	Session    Session
	Suggestion types.Suggestion
	// Position is 1-based.
	Position   int
	Total      int
	Duplicates []duplicate.Match
	// Notice acknowledges a commit, such as an approval or denial.
	Notice string
	// Done is set when the queue has been exhausted.
	Done bool
	// Stopped is set when the reviewer closed the session.
	Stopped bool
}

// Workflow drives review sessions over the suggestion queue. Commits are
// serialized so the cursor check and the queue mutation happen together.
type Workflow struct {
	queue     Queue
	prompts   PromptStore
	sessions  SessionStore
	detector  *duplicate.Detector
	logger    *zap.Logger
	threshold float64
	limit     int
	now       func() time.Time
	commitMu  sync.Mutex
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithDuplicates sets the similarity threshold and the number of duplicates shown.
func WithDuplicates(threshold float64, limit int) Option {
	return func(w *Workflow) {
		w.threshold = threshold
		w.limit = limit
	}
}

// WithClock replaces the clock used to stamp sessions.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) {
		w.now = now
	}
}

// NewWorkflow creates a review workflow.
func NewWorkflow(
	queue Queue, prompts PromptStore, sessions SessionStore, logger *zap.Logger, opts ...Option,
) *Workflow {
	w := &Workflow{
		queue:     queue,
		prompts:   prompts,
		sessions:  sessions,
		detector:  duplicate.NewDetector(),
		logger:    logger.Named("moderation"),
		threshold: duplicate.DefaultThreshold,
		limit:     duplicate.DefaultLimit,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Start opens a review session at the head of the queue.
func (w *Workflow) Start(ctx context.Context, reviewerID string) (View, error) {
	suggestions, err := w.queue.All(ctx)
	if err != nil {
		return View{}, fmt.Errorf("failed to read suggestions: %w", err)
	}

	if len(suggestions) == 0 {
		return View{}, ErrQueueEmpty
	}

	session := Session{
		ID:         uuid.NewString(),
		ReviewerID: reviewerID,
		Index:      0,
		State:      StateReviewing,
		Suggestion: suggestions[0],
		Total:      len(suggestions),
		UpdatedAt:  w.now(),
	}

	if err := w.sessions.Save(ctx, session); err != nil {
		return View{}, err
	}

	w.logger.Info("Review session started",
		zap.String("sessionID", session.ID),
		zap.String("reviewerID", reviewerID),
		zap.Int("pending", len(suggestions)))

	return w.view(session), nil
}

// Act applies a reviewer action to a session. The rating is only read for ActionPickRating.
func (w *Workflow) Act(
	ctx context.Context, sessionID, actorID string, action Action, rating enum.Rating,
) (View, error) {
	session, err := w.sessions.Get(ctx, sessionID)
	if err != nil {
		return View{}, err
	}

	if session.ReviewerID != actorID {
		w.logger.Warn("Rejected review action from non-owner",
			zap.String("sessionID", sessionID),
			zap.String("actorID", actorID),
			zap.Stringer("action", action))

		return View{}, ErrNotSessionOwner
	}

	next, effect, err := Transition(session, action, rating)
	if err != nil {
		return w.view(session), err
	}

	switch effect {
	case EffectNone:
		next.UpdatedAt = w.now()
		if err := w.sessions.Save(ctx, next); err != nil {
			return View{}, err
		}

		return w.view(next), nil

	case EffectClose:
		if err := w.sessions.Delete(ctx, sessionID); err != nil {
			return View{}, err
		}

		w.logger.Info("Review session stopped", zap.String("sessionID", sessionID))

		return View{Session: next, Stopped: true}, nil

	case EffectCommitApproval, EffectCommitDenial:
		return w.commit(ctx, next, effect)
	}

	return View{}, fmt.Errorf("%w: unknown effect %d", ErrInvalidTransition, effect)
}

// commit performs an approval or denial and advances the cursor.
func (w *Workflow) commit(ctx context.Context, session Session, effect Effect) (View, error) {
	w.commitMu.Lock()
	defer w.commitMu.Unlock()

	current, _, ok, err := w.queue.At(ctx, session.Index)
	if err != nil {
		return View{}, fmt.Errorf("failed to read suggestions: %w", err)
	}

	if !ok || !sameSuggestion(current, session.Suggestion) {
		w.logger.Warn("Suggestion under review changed before commit",
			zap.String("sessionID", session.ID),
			zap.Int("index", session.Index))

		view, err := w.advance(ctx, session, "")
		if err != nil {
			return View{}, err
		}

		return view, ErrSuggestionGone
	}

	var notice string

	switch effect {
	case EffectCommitApproval:
		promptID := session.AppendedPromptID
		if promptID == "" {
			added, err := w.prompts.Append(ctx, current.Category, current.Text, session.Rating)
			if err != nil {
				return View{}, fmt.Errorf("failed to append approved prompt: %w", err)
			}

			promptID = added.ID
		}

		if _, _, err := w.queue.RemoveAt(ctx, session.Index); err != nil {
			w.logger.Error("Approved prompt was added but the suggestion could not be removed",
				zap.String("promptID", promptID),
				zap.Int("index", session.Index),
				zap.Error(err))

			session.AppendedPromptID = promptID
			session.UpdatedAt = w.now()

			if saveErr := w.sessions.Save(ctx, session); saveErr != nil {
				w.logger.Error("Failed to save review session after partial approval",
					zap.String("sessionID", session.ID),
					zap.Error(saveErr))
			}

			return View{}, fmt.Errorf("failed to remove approved suggestion: %w", err)
		}

		notice = "✅ Approved and added to DB as " + session.Rating.Label()

		w.logger.Info("Suggestion approved",
			zap.String("sessionID", session.ID),
			zap.String("promptID", promptID),
			zap.Stringer("category", current.Category),
			zap.Stringer("rating", session.Rating))

	case EffectCommitDenial:
		if _, _, err := w.queue.RemoveAt(ctx, session.Index); err != nil {
			return View{}, fmt.Errorf("failed to remove denied suggestion: %w", err)
		}

		notice = "❌ Suggestion denied."

		w.logger.Info("Suggestion denied",
			zap.String("sessionID", session.ID),
			zap.Int("suggestionID", current.ID))
	}

	return w.advance(ctx, session, notice)
}

// advance re-reads the queue and moves the session to the suggestion at the
// clamped cursor, or ends it when the queue is empty.
func (w *Workflow) advance(ctx context.Context, session Session, notice string) (View, error) {
	suggestions, err := w.queue.All(ctx)
	if err != nil {
		return View{}, fmt.Errorf("failed to read suggestions: %w", err)
	}

	index := ClampIndex(session.Index, len(suggestions))
	if index < 0 {
		if err := w.sessions.Delete(ctx, session.ID); err != nil {
			return View{}, err
		}

		session.State = StateClosed
		session.Total = 0

		w.logger.Info("Review session finished", zap.String("sessionID", session.ID))

		return View{Session: session, Notice: notice, Done: true}, nil
	}

	session.Index = index
	session.State = StateReviewing
	session.Rating = enum.RatingPG
	session.AppendedPromptID = ""
	session.Suggestion = suggestions[index]
	session.Total = len(suggestions)
	session.UpdatedAt = w.now()

	if err := w.sessions.Save(ctx, session); err != nil {
		return View{}, err
	}

	view := w.view(session)
	view.Notice = notice

	return view, nil
}

// view builds the reviewer view of a session from its snapshot.
func (w *Workflow) view(session Session) View {
	view := View{
		Session:    session,
		Suggestion: session.Suggestion,
		Position:   session.Index + 1,
		Total:      session.Total,
	}

	if session.State == StateReviewing {
		view.Duplicates = w.detector.FindSimilar(
			session.Suggestion.Text, session.Suggestion.Category, w.prompts.Pool(), w.threshold, w.limit,
		)
	}

	return view
}

func sameSuggestion(a, b types.Suggestion) bool {
	return a.Text == b.Text &&
		a.Category == b.Category &&
		a.Rating == b.Rating &&
		a.SubmitterID == b.SubmitterID
}
