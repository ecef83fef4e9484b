package enum_test

import (
	"testing"

	"github.com/robalyx/tickle/internal/types/enum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		category  enum.Category
		name      string
		poolKey   string
		textField string
		title     string
	}{
		{enum.CategoryTruth, "truth", "truths", "question", "Truth"},
		{enum.CategoryDare, "dare", "dares", "dare", "Dare"},
		{enum.CategoryWouldYouRather, "wyr", "wyr", "question", "WYR"},
		{enum.CategoryNeverHaveIEver, "nhie", "nhie", "question", "NHIE"},
		{enum.CategoryParanoia, "paranoia", "paranoia", "question", "Paranoia"},
	}

	require.Len(t, enum.Categories(), len(tests))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.name, tt.category.String())
			assert.Equal(t, tt.poolKey, tt.category.PoolKey())
			assert.Equal(t, tt.textField, tt.category.TextField())
			assert.Equal(t, tt.title, tt.category.Title())

			byName, err := enum.ParseCategory(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.category, byName)

			byKey, ok := enum.CategoryFromPoolKey(tt.poolKey)
			require.True(t, ok)
			assert.Equal(t, tt.category, byKey)
		})
	}
}

func TestParseCategoryInvalid(t *testing.T) {
	t.Parallel()

	_, err := enum.ParseCategory("charades")
	require.ErrorIs(t, err, enum.ErrInvalidCategory)
	assert.False(t, enum.Category(42).IsValid())
	assert.Empty(t, enum.Category(42).PoolKey())
}

func TestParseRating(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    enum.Rating
		wantErr bool
	}{
		{input: "pg", want: enum.RatingPG},
		{input: "PG13", want: enum.RatingPG13},
		{input: "pg-13", want: enum.RatingPG13},
		{input: " R ", want: enum.RatingR},
		{input: "nc17", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := enum.ParseRating(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, enum.ErrInvalidRating)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRatingDisplay(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "PG-13", enum.RatingPG13.Label())
	assert.Equal(t, "pg13", enum.RatingPG13.String())
	assert.Equal(t, enum.ColorGreen, enum.RatingPG.Color())
	assert.Equal(t, enum.ColorGold, enum.RatingPG13.Color())
	assert.Equal(t, enum.ColorRed, enum.RatingR.Color())
	assert.Equal(t, enum.ColorBlue, enum.Rating(9).Color())
}

func TestRatingSet(t *testing.T) {
	t.Parallel()

	set := enum.NewRatingSet(enum.RatingPG, enum.RatingPG13)
	assert.True(t, set.Has(enum.RatingPG))
	assert.True(t, set.Has(enum.RatingPG13))
	assert.False(t, set.Has(enum.RatingR))
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []enum.Rating{enum.RatingPG, enum.RatingPG13}, set.Slice())
	assert.Equal(t, "pg,pg13", set.String())

	all := enum.AllRatings()
	assert.Equal(t, 3, all.Len())
	assert.True(t, all.Has(enum.RatingR))

	assert.True(t, enum.NoRatings.IsEmpty())
	assert.Empty(t, enum.NoRatings.Slice())
	assert.Equal(t, enum.NoRatings, enum.NoRatings.With(enum.Rating(7)))
}
