package render

import (
	"fmt"
	"strings"

	"github.com/robalyx/tickle/internal/duplicate"
	"github.com/robalyx/tickle/internal/types"
	"github.com/robalyx/tickle/internal/types/enum"
	"github.com/robalyx/tickle/pkg/utils"
)

// duplicatePreviewRunes is how much of a matched prompt is shown on a review card.
const duplicatePreviewRunes = 60

// PromptCard renders a served prompt.
func PromptCard(prompt types.Prompt, requester string) Card {
	kind := strings.ToUpper(prompt.Category.String())

	card := Card{
		Description: prompt.Text,
		Color:       prompt.Rating.Color(),
		Footer:      fmt.Sprintf("Type: %s | Rating: %s | ID: %s", kind, strings.ToUpper(prompt.Rating.String()), prompt.ID),
		Timestamp:   true,
	}

	if requester != "" {
		card.Author = "Requested by " + requester
	} else {
		card.Title = "🪶 Tickle " + kind
	}

	return card
}

// StatsCard renders prompt counts per category and rating.
func StatsCard(stats types.PoolStats) Card {
	card := Card{
		Title:       "📊 Tickle Bot Stats",
		Description: fmt.Sprintf("**Total Questions in Database: %d**", stats.Total),
		Color:       ColorBlurple,
	}

	for _, category := range enum.Categories() {
		entry := stats.Categories[category]

		var b strings.Builder
		fmt.Fprintf(&b, "**Total: %d**", entry.Total)
		for _, rating := range enum.Ratings() {
			fmt.Fprintf(&b, "\n%s: %d", rating.Label(), entry.ByRating[rating])
		}

		card.AddField(statsTitle(category), b.String(), true)
	}

	return card
}

// statsTitle names a category after its pool key, upper-cased when it is an acronym.
func statsTitle(category enum.Category) string {
	key := category.PoolKey()

	switch category {
	case enum.CategoryWouldYouRather, enum.CategoryNeverHaveIEver:
		return strings.ToUpper(key)
	default:
		return strings.ToUpper(key[:1]) + key[1:]
	}
}

// HelpCard lists the commands. Owners are mentioned in the footer field.
func HelpCard(ownerIDs []string) Card {
	card := Card{
		Title: "❓ Tickle Bot Help",
		Description: "**How to Play:**\n" +
			"• **Everyone**: Use any of the commands below to start a game!\n" +
			"• **Buttons**: Click the buttons to continue playing.\n\n" +
			"**⚠️ IMPORTANT RULES:**\n" +
			"This bot contains **18+ content** and is strictly prohibited in servers with minors.\n" +
			"By using this bot, you agree to keep your community age-appropriate.\n\n" +
			"**Available Commands:**",
		Color: enum.ColorGreen,
	}

	card.AddField("/truth [rating]", "Get a random truth question.", true).
		AddField("/dare [rating]", "Get a random dare.", true).
		AddField("/tod [rating]", "Random Truth or Dare.", true).
		AddField("/wyr [rating]", "Would You Rather?", true).
		AddField("/nhie [rating]", "Never Have I Ever.", true).
		AddField("/paranoia [rating]", "Paranoia question.", true).
		AddField("/random [rating]", "Random question from ANY category.", false).
		AddField("/suggest [text] [type] [rating]", "Suggest a new prompt for review.", false).
		AddField("/tickle-stats", "View stats about questions in the database.", false).
		AddField("🔒 Admin Commands",
			"• **/setup [channel] [nsfw_channel]**: Configure game channels. "+
				"If NSFW channel is set, R-rated content is restricted to it.\n"+
				"• **/reload-questions**: Reload the questions file.\n"+
				"• **/approve-cycle**: Review user suggestions.",
			false)

	if len(ownerIDs) > 0 {
		mentions := make([]string, 0, len(ownerIDs))
		for _, id := range ownerIDs {
			mentions = append(mentions, UserMention(id))
		}

		card.AddField("Bot Owner", strings.Join(mentions, " "), false)
	}

	return card
}

// WelcomeCard is sent to the owner of a community the bot joined.
func WelcomeCard() Card {
	card := Card{
		Title:       "Thank you for adding Tickle Bot!",
		Description: "I'm excited to bring some ticklish fun to your server!",
		Color:       ColorRed,
	}

	card.AddField("⚠️ IMPORTANT COMMUNITY RULE ⚠️",
		"**This bot contains 18+ content and is NOT allowed to be added to servers with minors.**\n\n"+
			"By keeping this bot in your server, you acknowledge that your community is age-appropriate.",
		false).
		AddField("Get Started", "Use `/help` to see available commands.", false)

	return card
}

// ReviewCard renders a pending suggestion with its position in the queue.
func ReviewCard(suggestion types.Suggestion, position, total int, duplicates []duplicate.Match) Card {
	card := Card{
		Title:       "Suggestion Review",
		Description: fmt.Sprintf("**%s**: %s", strings.ToUpper(suggestion.Category.String()), suggestion.Text),
		Color:       ColorOrange,
		Footer:      fmt.Sprintf("Suggestion %d/%d", position, total),
	}

	card.AddField("Suggested Rating", strings.ToUpper(suggestion.Rating.String()), true).
		AddField("User", fmt.Sprintf("%s (%s)", suggestion.SubmitterName, suggestion.SubmitterID), true)

	if len(duplicates) > 0 {
		lines := make([]string, 0, len(duplicates))
		for _, match := range duplicates {
			lines = append(lines, DuplicateLine(match))
		}

		card.AddField("⚠️ Potential Duplicates", strings.Join(lines, "\n"), false)
	}

	return card
}

// DuplicateLine formats a similar prompt as "(NN%) preview...".
func DuplicateLine(match duplicate.Match) string {
	return fmt.Sprintf("(%d%%) %s...", int(match.Score*100), utils.TruncateRunes(match.Prompt.Text, duplicatePreviewRunes))
}

// ChannelMention formats a channel reference.
func ChannelMention(id string) string {
	return "<#" + id + ">"
}

// UserMention formats a user reference.
func UserMention(id string) string {
	return "<@" + id + ">"
}
