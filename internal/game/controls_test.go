package game_test

import (
	"testing"

	"github.com/robalyx/tickle/internal/game"
	"github.com/robalyx/tickle/internal/moderation"
	"github.com/robalyx/tickle/internal/types/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayControlID(t *testing.T) {
	t.Parallel()

	rating := enum.RatingPG13
	control := game.PlayControl{Mode: game.ModeTruthOrDare, Choice: "dare", Rating: &rating, ExcludeID: "abc1234"}
	assert.Equal(t, "play:tod:dare:pg13:abc1234", control.ID())

	parsed, err := game.ParsePlayControl(control.ID())
	require.NoError(t, err)
	assert.Equal(t, control, parsed)

	parsed, err = game.ParsePlayControl("play:random:random:-:")
	require.NoError(t, err)
	assert.Nil(t, parsed.Rating)
	assert.Empty(t, parsed.ExcludeID)
}

func TestParsePlayControlErrors(t *testing.T) {
	t.Parallel()

	for _, id := range []string{
		"",
		"review:abc:approve",
		"play:tod:dare:pg13",
		"play:chess:dare:-:x",
		"play:tod:poker:-:x",
		"play:tod:dare:nc17:x",
	} {
		_, err := game.ParsePlayControl(id)
		require.ErrorIs(t, err, game.ErrMalformedControl, id)
	}
}

func TestReviewControlID(t *testing.T) {
	t.Parallel()

	control := game.ReviewControl{SessionID: "s1", Action: moderation.ActionPickRating, Rating: enum.RatingR}
	assert.Equal(t, "review:s1:rate:r", control.ID())

	parsed, err := game.ParseReviewControl(control.ID())
	require.NoError(t, err)
	assert.Equal(t, control, parsed)

	control = game.ReviewControl{SessionID: "s1", Action: moderation.ActionStop}
	assert.Equal(t, "review:s1:stop", control.ID())

	for _, id := range []string{"review:s1", "review::stop", "review:s1:rate", "review:s1:dance", "play:s1:stop"} {
		_, err := game.ParseReviewControl(id)
		require.ErrorIs(t, err, game.ErrMalformedControl, id)
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	for _, mode := range game.Modes() {
		parsed, err := game.ParseMode(string(mode))
		require.NoError(t, err)
		assert.Equal(t, mode, parsed)
	}

	_, err := game.ParseMode("chess")
	require.ErrorIs(t, err, game.ErrInvalidInput)
}
