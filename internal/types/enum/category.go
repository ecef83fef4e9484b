package enum

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCategory is returned when a category name cannot be parsed.
var ErrInvalidCategory = errors.New("invalid category")

// Category represents the kind of prompt served to players.
type Category int

const (
	// CategoryTruth is a question the player must answer truthfully.
	CategoryTruth Category = iota
	// CategoryDare is a task the player must perform.
	CategoryDare
	// CategoryWouldYouRather is a "would you rather" dilemma.
	CategoryWouldYouRather
	// CategoryNeverHaveIEver is a "never have I ever" statement.
	CategoryNeverHaveIEver
	// CategoryParanoia is a whispered paranoia question.
	CategoryParanoia

	categoryCount
)

// categoryInfo holds the wire and display names of a category.
type categoryInfo struct {
	name      string // command and suggestion "type" value
	poolKey   string // key in the persisted pool document
	textField string // field name holding the prompt text
	title     string // human readable name
}

// categoryTable is indexed by Category and must list every category.
var categoryTable = [categoryCount]categoryInfo{
	CategoryTruth:          {name: "truth", poolKey: "truths", textField: "question", title: "Truth"},
	CategoryDare:           {name: "dare", poolKey: "dares", textField: "dare", title: "Dare"},
	CategoryWouldYouRather: {name: "wyr", poolKey: "wyr", textField: "question", title: "WYR"},
	CategoryNeverHaveIEver: {name: "nhie", poolKey: "nhie", textField: "question", title: "NHIE"},
	CategoryParanoia:       {name: "paranoia", poolKey: "paranoia", textField: "question", title: "Paranoia"},
}

// Categories returns every category in declaration order.
func Categories() []Category {
	categories := make([]Category, categoryCount)
	for i := range categoryCount {
		categories[i] = i
	}

	return categories
}

// IsValid reports whether the category is one of the declared values.
func (c Category) IsValid() bool {
	return c >= 0 && c < categoryCount
}

// String returns the short name of the category (e.g. "truth", "wyr").
func (c Category) String() string {
	if !c.IsValid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}

	return categoryTable[c].name
}

// PoolKey returns the key of the category inside the persisted pool document.
func (c Category) PoolKey() string {
	if !c.IsValid() {
		return ""
	}

	return categoryTable[c].poolKey
}

// TextField returns the name of the field that holds the prompt text.
// Dares use "dare" while every other category uses "question".
func (c Category) TextField() string {
	if !c.IsValid() {
		return ""
	}

	return categoryTable[c].textField
}

// Title returns the display name of the category.
func (c Category) Title() string {
	if !c.IsValid() {
		return "Unknown"
	}

	return categoryTable[c].title
}

// ParseCategory converts a short name or pool key into a Category.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, info := range categoryTable {
		if s == info.name || s == info.poolKey {
			return Category(i), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// CategoryFromPoolKey returns the category stored under the given pool key.
func CategoryFromPoolKey(key string) (Category, bool) {
	for i, info := range categoryTable {
		if key == info.poolKey {
			return Category(i), true
		}
	}

	return 0, false
}
