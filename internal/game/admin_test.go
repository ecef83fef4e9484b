package game_test

import (
	"testing"

	"github.com/robalyx/tickle/internal/game"
	"github.com/robalyx/tickle/internal/storage"
	"github.com/robalyx/tickle/internal/types/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	t.Parallel()

	f := newFixture(t, samplePool)
	loc := game.Location{CommunityID: communityID, ChannelID: mainID}

	resp, err := f.engine.Setup(t.Context(), game.SetupRequest{Actor: player, Location: loc, MainChannelID: mainID})
	require.ErrorIs(t, err, game.ErrAuthorizationDenied)
	assert.Equal(t, "Perms denied.", resp.Text)
	_, ok := f.policy.GetScope(communityID)
	assert.False(t, ok)

	resp, err = f.engine.Setup(t.Context(), game.SetupRequest{Actor: admin, Location: loc, MainChannelID: mainID})
	require.NoError(t, err)
	assert.True(t, resp.Ephemeral)
	assert.Equal(t, "✅ **Setup Complete!**\n🔹 **Game Channel**: <#10> (All Ratings Allowed)", resp.Text)

	resp, err = f.engine.Setup(t.Context(), game.SetupRequest{
		Actor: admin, Location: loc, MainChannelID: mainID, NSFWChannelID: nsfwID,
	})
	require.NoError(t, err)
	assert.Equal(t, "✅ **Setup Complete!**\n"+
		"🔹 **Main Channel**: <#10> (PG/PG-13)\n"+
		"🔸 **NSFW Channel**: <#20> (PG/PG-13/R)", resp.Text)
	assert.Equal(t, enum.NewRatingSet(enum.RatingPG, enum.RatingPG13), f.policy.AllowedRatings(communityID, mainID))

	_, err = f.engine.Setup(t.Context(), game.SetupRequest{Actor: admin, MainChannelID: mainID})
	require.ErrorIs(t, err, game.ErrInvalidInput)
}

func TestReload(t *testing.T) {
	t.Parallel()

	f := newFixture(t, samplePool)

	resp, err := f.engine.Reload(t.Context(), player)
	require.ErrorIs(t, err, game.ErrAuthorizationDenied)
	assert.Equal(t, "Perms denied.", resp.Text)

	resp, err = f.engine.Reload(t.Context(), admin)
	require.NoError(t, err)
	assert.Equal(t, "✅ Successfully reloaded questions!\n"+
		"Truths: 2\nDares: 1\nWYR: 1\nNHIE: 0\nParanoia: 0", resp.Text)

	require.NoError(t, f.docs.WriteDocument(t.Context(), storage.KeyQuestions, []byte(`{"truths": {}}`)))

	resp, err = f.engine.Reload(t.Context(), owner)
	require.NoError(t, err)
	assert.Contains(t, resp.Text, "appears to be empty or malformed")
	assert.Equal(t, 2, f.prompts.Pool().Len(enum.CategoryTruth), "previous pool is kept")

	require.NoError(t, f.docs.WriteDocument(t.Context(), storage.KeyQuestions, []byte(`{"truths": [], "dares": []}`)))

	resp, err = f.engine.Reload(t.Context(), owner)
	require.NoError(t, err)
	assert.Equal(t, "⚠️ Warning: `questions.json` appears to be empty or malformed.", resp.Text)
}

func TestStats(t *testing.T) {
	t.Parallel()

	f := newFixture(t, samplePool)

	resp := f.engine.Stats(t.Context())
	require.NotNil(t, resp.Card)
	assert.False(t, resp.Ephemeral)
	assert.Equal(t, "**Total Questions in Database: 4**", resp.Card.Description)
}

func TestHelpAndWelcome(t *testing.T) {
	t.Parallel()

	f := newFixture(t, samplePool)

	help := f.engine.Help()
	require.NotNil(t, help.Card)
	assert.Equal(t, "❓ Tickle Bot Help", help.Card.Title)

	welcome := f.engine.Welcome()
	require.NotNil(t, welcome.Card)
	assert.Equal(t, "Thank you for adding Tickle Bot!", welcome.Card.Title)
}
