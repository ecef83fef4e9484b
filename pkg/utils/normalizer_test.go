package utils_test

import (
	"testing"

	"github.com/robalyx/tickle/pkg/utils"
	"github.com/stretchr/testify/assert"
)

func TestTextNormalizer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "basic string",
			input: "Hello World",
			want:  "hello world",
		},
		{
			name:  "string with diacritics",
			input: "héllo wörld",
			want:  "hello world",
		},
		{
			name:  "punctuation is kept",
			input: "Truth? Or dare!",
			want:  "truth? or dare!",
		},
		{
			name:  "whitespace and newlines collapse",
			input: "  Do   10\n push-ups ",
			want:  "do 10 push-ups",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			normalizer := utils.NewTextNormalizer()

			assert.Equal(t, tt.want, normalizer.Normalize(tt.input))
		})
	}
}
