package utils

import (
	"math/rand/v2"
	"strings"
)

// IDAlphabet is the character set of generated prompt ids.
const IDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// IDLength is the length of generated prompt ids.
const IDLength = 7

// RandomString draws n characters uniformly from alphabet using rng.
// A nil rng uses the global generator.
func RandomString(rng *rand.Rand, alphabet string, n int) string {
	var b strings.Builder
	b.Grow(n)

	for range n {
		var i int
		if rng != nil {
			i = rng.IntN(len(alphabet))
		} else {
			i = rand.IntN(len(alphabet)) //nolint:gosec // ids are not secrets
		}

		b.WriteByte(alphabet[i])
	}

	return b.String()
}

// NewID draws a fixed-length id from IDAlphabet.
func NewID(rng *rand.Rand) string {
	return RandomString(rng, IDAlphabet, IDLength)
}
