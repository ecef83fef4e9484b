package constants

const (
	// Play commands.
	TruthCommandName       = "truth"
	DareCommandName        = "dare"
	TruthOrDareCommandName = "tod"
	WYRCommandName         = "wyr"
	NHIECommandName        = "nhie"
	ParanoiaCommandName    = "paranoia"
	RandomCommandName      = "random"

	// Admin commands.
	SetupCommandName  = "setup"
	ReloadCommandName = "reload-questions"

	// Suggestion commands.
	SuggestCommandName      = "suggest"
	ApproveCycleCommandName = "approve-cycle"

	// Info commands.
	StatsCommandName = "tickle-stats"
	HelpCommandName  = "help"

	// Options.
	RatingOptionName      = "rating"
	ChannelOptionName     = "channel"
	NSFWChannelOptionName = "nsfw_channel"
	TextOptionName        = "text"
	TypeOptionName        = "type"
	SuggestTextMaxLength  = 1000

	// Presence.
	PresenceActivityName = "over the tickle master"

	// Messages.
	InternalErrorMessage  = "Internal error. Please try again later."
	UnknownCommandMessage = "This command is not available."
	UnknownControlMessage = "That button is no longer valid."
)
