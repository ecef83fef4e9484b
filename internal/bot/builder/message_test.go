package builder_test

import (
	"testing"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/robalyx/tickle/internal/bot/builder"
	"github.com/robalyx/tickle/internal/game"
	"github.com/robalyx/tickle/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func TestEmbed(t *testing.T) {
	t.Parallel()

	card := &render.Card{
		Title:       "🪶 Tickle Truth",
		Author:      "Requested by alice",
		Description: "What is your secret?",
		Color:       0x2ecc71,
		Footer:      "Type: TRUTH | Rating: PG | ID: abc1234",
		Timestamp:   true,
	}
	card.AddField("Truths", "**Total: 2**", true)

	embed := builder.Embed(card, now)

	assert.Equal(t, "🪶 Tickle Truth", embed.Title)
	assert.Equal(t, "What is your secret?", embed.Description)
	assert.Equal(t, 0x2ecc71, embed.Color)
	require.NotNil(t, embed.Author)
	assert.Equal(t, "Requested by alice", embed.Author.Name)
	require.NotNil(t, embed.Footer)
	assert.Equal(t, "Type: TRUTH | Rating: PG | ID: abc1234", embed.Footer.Text)
	require.NotNil(t, embed.Timestamp)
	assert.True(t, now.Equal(*embed.Timestamp))
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, "Truths", embed.Fields[0].Name)
}

func TestEmbedWithoutOptionalParts(t *testing.T) {
	t.Parallel()

	embed := builder.Embed(&render.Card{Title: "Suggestion Review"}, now)

	assert.Nil(t, embed.Author)
	assert.Nil(t, embed.Footer)
	assert.Nil(t, embed.Timestamp)
}

func TestComponents(t *testing.T) {
	t.Parallel()

	rows := []render.Row{
		{
			{Label: "Truth", ID: "play:tod:truth:-:a", Style: render.StyleSuccess},
			{Label: "Dare", ID: "play:tod:dare:-:a", Style: render.StyleDanger},
			{Label: "Random", ID: "play:tod:random:-:a", Style: render.StylePrimary},
		},
		{},
		{{Label: "Cancel", ID: "review:s:cancel", Style: render.StyleSecondary}},
	}

	components := builder.Components(rows)
	require.Len(t, components, 2)

	first := components[0].Components()
	require.Len(t, first, 3)

	truth, ok := first[0].(discord.ButtonComponent)
	require.True(t, ok)
	assert.Equal(t, "Truth", truth.Label)
	assert.Equal(t, "play:tod:truth:-:a", truth.CustomID)
	assert.Equal(t, discord.ButtonStyleSuccess, truth.Style)

	dare, ok := first[1].(discord.ButtonComponent)
	require.True(t, ok)
	assert.Equal(t, discord.ButtonStyleDanger, dare.Style)

	cancel, ok := components[1].Components()[0].(discord.ButtonComponent)
	require.True(t, ok)
	assert.Equal(t, discord.ButtonStyleSecondary, cancel.Style)
}

func TestCreateMessage(t *testing.T) {
	t.Parallel()

	card := render.Card{Title: "📊 Tickle Bot Stats"}
	msg := builder.CreateMessage(game.Response{
		Text:     "tip",
		Card:     &card,
		Controls: []render.Row{{{Label: "Next WYR", ID: "play:wyr:wyr:-:w1"}}},
	}, now)

	assert.Equal(t, "tip", msg.Content)
	require.Len(t, msg.Embeds, 1)
	assert.Equal(t, "📊 Tickle Bot Stats", msg.Embeds[0].Title)
	assert.Len(t, msg.Components, 1)
	assert.False(t, msg.Flags.Has(discord.MessageFlagEphemeral))
}

func TestCreateMessageEphemeral(t *testing.T) {
	t.Parallel()

	msg := builder.CreateMessage(game.Response{Text: "⛔ Use <#10>.", Ephemeral: true}, now)

	assert.Equal(t, "⛔ Use <#10>.", msg.Content)
	assert.Empty(t, msg.Embeds)
	assert.Empty(t, msg.Components)
	assert.True(t, msg.Flags.Has(discord.MessageFlagEphemeral))
	assert.Equal(t, builder.EphemeralText("⛔ Use <#10>."), msg)
}

func TestUpdateMessageClearsMissingParts(t *testing.T) {
	t.Parallel()

	update := builder.UpdateMessage(game.Response{Text: "✅ All suggestions processed!", Update: true}, now)

	require.NotNil(t, update.Content)
	assert.Equal(t, "✅ All suggestions processed!", *update.Content)
	require.NotNil(t, update.Embeds)
	assert.Empty(t, *update.Embeds)
	require.NotNil(t, update.Components)
	assert.Empty(t, *update.Components)
}

func TestUpdateMessageKeepsCardAndControls(t *testing.T) {
	t.Parallel()

	card := render.Card{Title: "Suggestion Review"}
	update := builder.UpdateMessage(game.Response{
		Card:     &card,
		Controls: []render.Row{{{Label: "Approve", ID: "review:s:approve"}}},
		Update:   true,
	}, now)

	require.NotNil(t, update.Content)
	assert.Empty(t, *update.Content)
	require.NotNil(t, update.Embeds)
	assert.Len(t, *update.Embeds, 1)
	require.NotNil(t, update.Components)
	assert.Len(t, *update.Components, 1)
}

func TestClearControls(t *testing.T) {
	t.Parallel()

	update := builder.ClearControls()

	assert.Nil(t, update.Content)
	assert.Nil(t, update.Embeds)
	require.NotNil(t, update.Components)
	assert.Empty(t, *update.Components)
}
