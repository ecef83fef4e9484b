// Package builder converts engine responses into Discord messages.
package builder

import (
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/robalyx/tickle/internal/game"
	"github.com/robalyx/tickle/internal/render"
)

// Embed converts a card into an embed. now stamps cards that ask for a timestamp.
func Embed(card *render.Card, now time.Time) discord.Embed {
	embed := discord.NewEmbedBuilder().
		SetTitle(card.Title).
		SetDescription(card.Description).
		SetColor(card.Color)

	if card.Author != "" {
		embed.SetAuthorName(card.Author)
	}

	for _, field := range card.Fields {
		embed.AddField(field.Name, field.Value, field.Inline)
	}

	if card.Footer != "" {
		embed.SetFooterText(card.Footer)
	}

	if card.Timestamp {
		embed.SetTimestamp(now)
	}

	return embed.Build()
}

// Components converts control rows into action rows of buttons.
func Components(rows []render.Row) []discord.ContainerComponent {
	components := make([]discord.ContainerComponent, 0, len(rows))

	for _, row := range rows {
		if len(row) == 0 {
			continue
		}

		buttons := make([]discord.InteractiveComponent, 0, len(row))
		for _, control := range row {
			buttons = append(buttons, Button(control))
		}

		components = append(components, discord.NewActionRow(buttons...))
	}

	return components
}

// Button converts a control into a button of the matching style.
func Button(control render.Control) discord.ButtonComponent {
	switch control.Style {
	case render.StyleSecondary:
		return discord.NewSecondaryButton(control.Label, control.ID)
	case render.StyleSuccess:
		return discord.NewSuccessButton(control.Label, control.ID)
	case render.StyleDanger:
		return discord.NewDangerButton(control.Label, control.ID)
	default:
		return discord.NewPrimaryButton(control.Label, control.ID)
	}
}

// CreateMessage builds a new message from a response.
func CreateMessage(resp game.Response, now time.Time) discord.MessageCreate {
	builder := discord.NewMessageCreateBuilder().
		SetContent(resp.Text).
		SetEphemeral(resp.Ephemeral)

	if resp.Card != nil {
		builder.SetEmbeds(Embed(resp.Card, now))
	}

	if components := Components(resp.Controls); len(components) > 0 {
		builder.SetContainerComponents(components...)
	}

	return builder.Build()
}

// UpdateMessage builds an edit from a response. Anything the response does
// not carry is cleared from the message.
func UpdateMessage(resp game.Response, now time.Time) discord.MessageUpdate {
	builder := discord.NewMessageUpdateBuilder().SetContent(resp.Text)

	if resp.Card != nil {
		builder.SetEmbeds(Embed(resp.Card, now))
	} else {
		builder.ClearEmbeds()
	}

	if components := Components(resp.Controls); len(components) > 0 {
		builder.SetContainerComponents(components...)
	} else {
		builder.ClearContainerComponents()
	}

	return builder.Build()
}

// ClearControls builds an edit that only removes the buttons of a message.
func ClearControls() discord.MessageUpdate {
	return discord.NewMessageUpdateBuilder().ClearContainerComponents().Build()
}

// EphemeralText builds a private text message.
func EphemeralText(text string) discord.MessageCreate {
	return discord.NewMessageCreateBuilder().
		SetContent(text).
		SetEphemeral(true).
		Build()
}
