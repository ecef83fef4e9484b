package interfaces

import (
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
)

// CommonEvent is the part of an interaction the handlers read to build
// the actor and location of a request.
type CommonEvent interface {
	Client() bot.Client
	ApplicationID() snowflake.ID
	Token() string
	User() discord.User
	Member() *discord.ResolvedMember
	GuildID() *snowflake.ID
	ChannelID() snowflake.ID
}

// Ensure that all handled interaction types implement the CommonEvent interface.
var (
	_ CommonEvent = (*events.ApplicationCommandInteractionCreate)(nil)
	_ CommonEvent = (*events.ComponentInteractionCreate)(nil)
)
