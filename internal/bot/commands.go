package bot

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/json"
	"github.com/robalyx/tickle/internal/bot/constants"
	"github.com/robalyx/tickle/internal/types/enum"
)

// ratingChoices are the rating values offered by play and suggest commands.
func ratingChoices() []discord.ApplicationCommandOptionChoiceString {
	choices := make([]discord.ApplicationCommandOptionChoiceString, 0, len(enum.Ratings()))
	for _, rating := range enum.Ratings() {
		choices = append(choices, discord.ApplicationCommandOptionChoiceString{
			Name:  rating.Label(),
			Value: rating.String(),
		})
	}

	return choices
}

// categoryChoices are the suggestion types.
func categoryChoices() []discord.ApplicationCommandOptionChoiceString {
	names := map[enum.Category]string{
		enum.CategoryTruth:          "Truth",
		enum.CategoryDare:           "Dare",
		enum.CategoryWouldYouRather: "Would You Rather",
		enum.CategoryNeverHaveIEver: "Never Have I Ever",
		enum.CategoryParanoia:       "Paranoia",
	}

	choices := make([]discord.ApplicationCommandOptionChoiceString, 0, len(names))
	for _, category := range enum.Categories() {
		choices = append(choices, discord.ApplicationCommandOptionChoiceString{
			Name:  names[category],
			Value: category.String(),
		})
	}

	return choices
}

func playCommand(name, description string) discord.SlashCommandCreate {
	return discord.SlashCommandCreate{
		Name:        name,
		Description: description,
		Options: []discord.ApplicationCommandOption{
			discord.ApplicationCommandOptionString{
				Name:        constants.RatingOptionName,
				Description: "Rating",
				Choices:     ratingChoices(),
			},
		},
	}
}

// Commands returns every slash command the bot registers.
func Commands() []discord.ApplicationCommandCreate {
	admin := json.NewNullablePtr(discord.PermissionAdministrator)

	return []discord.ApplicationCommandCreate{
		playCommand(constants.TruthCommandName, "Get a random truth"),
		playCommand(constants.DareCommandName, "Get a random dare"),
		playCommand(constants.TruthOrDareCommandName, "Random Truth or Dare"),
		playCommand(constants.WYRCommandName, "Would You Rather"),
		playCommand(constants.NHIECommandName, "Never Have I Ever"),
		playCommand(constants.ParanoiaCommandName, "Paranoia Question"),
		playCommand(constants.RandomCommandName, "Random from ANY category"),
		discord.SlashCommandCreate{
			Name:                     constants.SetupCommandName,
			Description:              "Configure game channels",
			DefaultMemberPermissions: admin,
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionChannel{
					Name:         constants.ChannelOptionName,
					Description:  "Main channel (PG/PG-13)",
					Required:     true,
					ChannelTypes: []discord.ChannelType{discord.ChannelTypeGuildText},
				},
				discord.ApplicationCommandOptionChannel{
					Name:         constants.NSFWChannelOptionName,
					Description:  "Optional NSFW channel (Allows R)",
					ChannelTypes: []discord.ChannelType{discord.ChannelTypeGuildText},
				},
			},
		},
		discord.SlashCommandCreate{
			Name:                     constants.ReloadCommandName,
			Description:              "Reload questions from JSON file (Admin only)",
			DefaultMemberPermissions: admin,
		},
		discord.SlashCommandCreate{
			Name:        constants.SuggestCommandName,
			Description: "Suggest a new question or dare",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        constants.TextOptionName,
					Description: "The question or dare",
					Required:    true,
					MaxLength:   json.Ptr(constants.SuggestTextMaxLength),
				},
				discord.ApplicationCommandOptionString{
					Name:        constants.TypeOptionName,
					Description: "Is this a question (truth) or dare?",
					Required:    true,
					Choices:     categoryChoices(),
				},
				discord.ApplicationCommandOptionString{
					Name:        constants.RatingOptionName,
					Description: "Suggested rating",
					Required:    true,
					Choices:     ratingChoices(),
				},
			},
		},
		discord.SlashCommandCreate{
			Name:                     constants.ApproveCycleCommandName,
			Description:              "Review suggestions (Authorized users only)",
			DefaultMemberPermissions: admin,
		},
		discord.SlashCommandCreate{
			Name:        constants.StatsCommandName,
			Description: "Show statistics about the question pool",
		},
		discord.SlashCommandCreate{
			Name:        constants.HelpCommandName,
			Description: "Show available commands",
		},
	}
}
