// Package duplicate finds existing prompts that resemble a suggestion.
package duplicate

import (
	"sort"
	"sync"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/robalyx/tickle/internal/types"
	"github.com/robalyx/tickle/internal/types/enum"
	"github.com/robalyx/tickle/pkg/utils"
)

// Default scoring parameters.
const (
	DefaultThreshold = 0.7
	DefaultLimit     = 3
)

// Match is an existing prompt similar to the candidate text.
type Match struct {
	Score  float64
	Prompt types.Prompt
}

// Detector scores text similarity with a difflib sequence matcher over
// normalized runes. Results are advisory only.
type Detector struct {
	normalizer *utils.TextNormalizer
	mu         sync.Mutex
}

// NewDetector creates a new duplicate detector.
func NewDetector() *Detector {
	return &Detector{normalizer: utils.NewTextNormalizer()}
}

// FindSimilar returns up to limit prompts of the category whose similarity to
// text is at least threshold, highest score first. Ties keep pool order.
func (d *Detector) FindSimilar(
	text string, category enum.Category, pool *types.Pool, threshold float64, limit int,
) []Match {
	if pool == nil || limit <= 0 {
		return nil
	}

	candidate := d.tokens(text)

	var matches []Match
	for _, prompt := range pool.Prompts(category) {
		score := Ratio(candidate, d.tokens(prompt.Text))
		if score >= threshold {
			matches = append(matches, Match{Score: score, Prompt: prompt})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	return matches
}

// Ratio returns the difflib similarity ratio of two token sequences in [0, 1].
func Ratio(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}

	return difflib.NewMatcher(a, b).Ratio()
}

// tokens splits normalized text into single-rune strings.
func (d *Detector) tokens(text string) []string {
	d.mu.Lock()
	normalized := d.normalizer.Normalize(text)
	d.mu.Unlock()

	runes := []rune(normalized)
	tokens := make([]string, len(runes))

	for i, r := range runes {
		tokens[i] = string(r)
	}

	return tokens
}
