package types

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/robalyx/tickle/internal/types/enum"
)

var (
	// ErrMalformedPool indicates the pool document failed structural validation.
	ErrMalformedPool = errors.New("malformed prompt pool")
	// ErrInvalidPrompt indicates a prompt cannot be added to a pool.
	ErrInvalidPrompt = errors.New("invalid prompt")
)

// Prompt is a single truth, dare or other question served to players.
type Prompt struct {
	ID       string
	Category enum.Category
	Rating   enum.Rating
	Text     string
}

// Pool is the full set of prompts partitioned by category.
//
// The decoded document is kept alongside the parsed prompts so that keys, fields
// and items this release does not understand survive a read-modify-write cycle.
type Pool struct {
	prompts map[enum.Category][]Prompt
	doc     map[string]json.RawMessage
	skipped int
	// reserved holds ids of stored items that were skipped, so new ids never reuse them.
	reserved map[enum.Category]map[string]struct{}
}

// NewPool returns a pool with an empty list for every category.
func NewPool() *Pool {
	return &Pool{
		prompts:  make(map[enum.Category][]Prompt),
		doc:      make(map[string]json.RawMessage),
		reserved: make(map[enum.Category]map[string]struct{}),
	}
}

// DecodePool parses a pool document. Missing categories decode as empty lists.
// Items without text or with an unknown rating are kept in the document but are
// never served; their number is reported by Skipped.
func DecodePool(data []byte) (*Pool, error) {
	pool := NewPool()
	if err := sonic.Unmarshal(data, &pool.doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPool, err)
	}

	if pool.doc == nil {
		return nil, fmt.Errorf("%w: document is not an object", ErrMalformedPool)
	}

	for _, category := range enum.Categories() {
		raw, ok := pool.doc[category.PoolKey()]
		if !ok {
			continue
		}

		var items []json.RawMessage
		if err := sonic.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("%w: %q is not a list", ErrMalformedPool, category.PoolKey())
		}

		for _, item := range items {
			prompt, ok := decodePromptItem(category, item)
			if !ok {
				pool.skipped++
				pool.reserve(category, item)

				continue
			}

			pool.prompts[category] = append(pool.prompts[category], prompt)
		}
	}

	return pool, nil
}

// ValidatePoolDocument checks that the document is an object whose truths and
// dares keys hold lists, and that any other category present is also a list.
func ValidatePoolDocument(data []byte) error {
	var doc map[string]json.RawMessage
	if err := sonic.Unmarshal(data, &doc); err != nil || doc == nil {
		return fmt.Errorf("%w: document is not an object", ErrMalformedPool)
	}

	for _, category := range enum.Categories() {
		raw, ok := doc[category.PoolKey()]
		if !ok {
			if category == enum.CategoryTruth || category == enum.CategoryDare {
				return fmt.Errorf("%w: missing %q", ErrMalformedPool, category.PoolKey())
			}

			continue
		}

		var items []json.RawMessage
		if err := sonic.Unmarshal(raw, &items); err != nil || items == nil {
			return fmt.Errorf("%w: %q is not a list", ErrMalformedPool, category.PoolKey())
		}
	}

	return nil
}

func decodePromptItem(category enum.Category, item json.RawMessage) (Prompt, bool) {
	var fields map[string]json.RawMessage
	if err := sonic.Unmarshal(item, &fields); err != nil {
		return Prompt{}, false
	}

	id, err := flexString(fields["id"])
	if err != nil || id == "" {
		return Prompt{}, false
	}

	var text, rating string
	if err := sonic.Unmarshal(fields[category.TextField()], &text); err != nil || text == "" {
		return Prompt{}, false
	}

	if err := sonic.Unmarshal(fields["rating"], &rating); err != nil {
		return Prompt{}, false
	}

	parsed, err := enum.ParseRating(rating)
	if err != nil {
		return Prompt{}, false
	}

	return Prompt{ID: id, Category: category, Rating: parsed, Text: text}, true
}

// reserve records the id of a skipped item, when it has one.
func (p *Pool) reserve(category enum.Category, item json.RawMessage) {
	var fields map[string]json.RawMessage
	if err := sonic.Unmarshal(item, &fields); err != nil {
		return
	}

	id, err := flexString(fields["id"])
	if err != nil || id == "" {
		return
	}

	if p.reserved[category] == nil {
		p.reserved[category] = make(map[string]struct{})
	}

	p.reserved[category][id] = struct{}{}
}

// Prompts returns the servable prompts of a category. The slice must not be modified.
func (p *Pool) Prompts(category enum.Category) []Prompt {
	return p.prompts[category]
}

// Len returns the number of servable prompts in a category.
func (p *Pool) Len(category enum.Category) int {
	return len(p.prompts[category])
}

// Skipped returns the number of stored items that could not be parsed.
func (p *Pool) Skipped() int {
	return p.skipped
}

// HasID reports whether the category already holds a prompt with the given id,
// including stored items that are not served.
func (p *Pool) HasID(category enum.Category, id string) bool {
	if _, ok := p.reserved[category][id]; ok {
		return true
	}

	for _, prompt := range p.prompts[category] {
		if prompt.ID == id {
			return true
		}
	}

	return false
}

// Add appends a prompt to its category, both in memory and in the backing document.
func (p *Pool) Add(prompt Prompt) error {
	if !prompt.Category.IsValid() || !prompt.Rating.IsValid() || prompt.ID == "" || prompt.Text == "" {
		return ErrInvalidPrompt
	}

	if p.HasID(prompt.Category, prompt.ID) {
		return fmt.Errorf("%w: duplicate id %q", ErrInvalidPrompt, prompt.ID)
	}

	key := prompt.Category.PoolKey()

	var items []json.RawMessage
	if raw, ok := p.doc[key]; ok {
		if err := sonic.Unmarshal(raw, &items); err != nil {
			return fmt.Errorf("%w: %q is not a list", ErrMalformedPool, key)
		}
	}

	item, err := sonic.Marshal(map[string]string{
		"id":                        prompt.ID,
		prompt.Category.TextField(): prompt.Text,
		"rating":                    prompt.Rating.String(),
	})
	if err != nil {
		return err
	}

	list, err := sonic.Marshal(append(items, item))
	if err != nil {
		return err
	}

	p.doc[key] = list
	p.prompts[prompt.Category] = append(p.prompts[prompt.Category], prompt)

	return nil
}

// Encode serializes the pool. Every category key is present in the output.
func (p *Pool) Encode() ([]byte, error) {
	doc := make(map[string]json.RawMessage, len(p.doc)+len(enum.Categories()))
	for key, raw := range p.doc {
		doc[key] = raw
	}

	for _, category := range enum.Categories() {
		if _, ok := doc[category.PoolKey()]; !ok {
			doc[category.PoolKey()] = json.RawMessage("[]")
		}
	}

	return sonic.ConfigStd.MarshalIndent(doc, "", "    ")
}

// PoolStats holds prompt counts per category and rating.
type PoolStats struct {
	Categories map[enum.Category]CategoryStats
	Total      int
}

// CategoryStats holds prompt counts of one category.
type CategoryStats struct {
	Total    int
	ByRating map[enum.Rating]int
}

// Stats counts the servable prompts of the pool.
func (p *Pool) Stats() PoolStats {
	stats := PoolStats{Categories: make(map[enum.Category]CategoryStats)}

	for _, category := range enum.Categories() {
		entry := CategoryStats{ByRating: make(map[enum.Rating]int)}
		for _, prompt := range p.prompts[category] {
			entry.Total++
			entry.ByRating[prompt.Rating]++
		}

		stats.Categories[category] = entry
		stats.Total += entry.Total
	}

	return stats
}
