// Package render builds the cards and controls shown to players and reviewers.
// Cards are transport-neutral; the bot package converts them to embeds and buttons.
package render

// Colors used outside the rating palette.
const (
	ColorBlurple = 0x5865F2
	ColorOrange  = 0xE67E22
	ColorRed     = 0xE74C3C
)

// Field is a titled block of a card.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Card is a rich message body.
type Card struct {
	Title       string
	Author      string
	Description string
	Color       int
	Fields      []Field
	Footer      string
	Timestamp   bool
}

// AddField appends a field and returns the card for chaining.
func (c *Card) AddField(name, value string, inline bool) *Card {
	c.Fields = append(c.Fields, Field{Name: name, Value: value, Inline: inline})
	return c
}

// Style is the look of a control.
type Style int

const (
	StylePrimary Style = iota
	StyleSecondary
	StyleSuccess
	StyleDanger
)

// Control is a clickable button. ID is routed back to the engine when clicked.
type Control struct {
	Label string
	ID    string
	Style Style
}

// Row is a horizontal group of controls.
type Row []Control
