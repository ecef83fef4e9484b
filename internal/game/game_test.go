package game_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/robalyx/tickle/internal/channel"
	"github.com/robalyx/tickle/internal/game"
	"github.com/robalyx/tickle/internal/moderation"
	"github.com/robalyx/tickle/internal/prompt"
	"github.com/robalyx/tickle/internal/ratelimit"
	"github.com/robalyx/tickle/internal/storage"
	"github.com/robalyx/tickle/internal/suggestion"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	ownerID     = "1"
	communityID = "500"
	mainID      = "10"
	nsfwID      = "20"
)

const samplePool = `{
	"truths": [
		{"id": "t1", "rating": "pg", "question": "Truth one"},
		{"id": "t2", "rating": "pg", "question": "Truth two"}
	],
	"dares": [{"id": "d1", "rating": "r", "dare": "Dare one"}],
	"wyr": [{"id": "w1", "rating": "pg13", "question": "Would you rather"}]
}`

var (
	player = game.Actor{ID: "42", Name: "player"}
	owner  = game.Actor{ID: ownerID, Name: "owner"}
	admin  = game.Actor{ID: "7", Name: "admin", Admin: true}
)

type fixture struct {
	engine  *game.Engine
	docs    *storage.Memory
	prompts *prompt.Store
	policy  *channel.Policy
	queue   *suggestion.Queue
}

type fixtureOption func(*game.Settings, *game.Dependencies)

func withTipChance(chance float64) fixtureOption {
	return func(s *game.Settings, _ *game.Dependencies) {
		s.TipChance = chance
	}
}

func withCooldown(cooldown *ratelimit.Cooldown) fixtureOption {
	return func(_ *game.Settings, d *game.Dependencies) {
		d.Cooldown = cooldown
	}
}

func newFixture(t *testing.T, pool string, opts ...fixtureOption) *fixture {
	t.Helper()

	seed := map[string][]byte{}
	if pool != "" {
		seed[storage.KeyQuestions] = []byte(pool)
	}

	ctx := t.Context()
	logger := zaptest.NewLogger(t)
	docs := storage.NewMemory(seed)

	prompts := prompt.NewStore(docs, logger)
	prompts.Load(ctx)

	policy := channel.NewPolicy(docs, logger)
	policy.Load(ctx)

	queue := suggestion.NewQueue(docs, logger)
	workflow := moderation.NewWorkflow(queue, prompts, moderation.NewMemoryStore(0), logger)

	settings := game.Settings{
		StartAttempts: 15,
		NextAttempts:  10,
		TipText:       "Tip: Use /suggest",
		OwnerIDs:      []string{ownerID},
	}
	deps := game.Dependencies{
		Prompts:  prompts,
		Policy:   policy,
		Queue:    queue,
		Workflow: workflow,
	}

	for _, opt := range opts {
		opt(&settings, &deps)
	}

	return &fixture{
		engine:  game.New(deps, settings, logger, game.WithRand(rand.New(rand.NewPCG(1, 2)))),
		docs:    docs,
		prompts: prompts,
		policy:  policy,
		queue:   queue,
	}
}

func (f *fixture) setScope(t *testing.T, main, nsfw string) {
	t.Helper()

	_, err := f.policy.SetScope(t.Context(), communityID, main, nsfw)
	require.NoError(t, err)
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}
