package enum

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRating is returned when a rating name cannot be parsed.
var ErrInvalidRating = errors.New("invalid rating")

// Rating is the content-severity tag of a prompt.
type Rating int

const (
	// RatingPG is suitable for everyone.
	RatingPG Rating = iota
	// RatingPG13 is suggestive but not explicit.
	RatingPG13
	// RatingR is explicit and needs an unrestricted or NSFW channel.
	RatingR

	ratingCount
)

// Embed colours per rating.
const (
	ColorGreen = 0x2ecc71
	ColorGold  = 0xf1c40f
	ColorRed   = 0xe74c3c
	ColorBlue  = 0x3498db
)

var ratingTable = [ratingCount]struct {
	name  string
	label string
	color int
}{
	RatingPG:   {name: "pg", label: "PG", color: ColorGreen},
	RatingPG13: {name: "pg13", label: "PG-13", color: ColorGold},
	RatingR:    {name: "r", label: "R", color: ColorRed},
}

// Ratings returns every rating from least to most severe.
func Ratings() []Rating {
	return []Rating{RatingPG, RatingPG13, RatingR}
}

// IsValid reports whether the rating is one of the declared values.
func (r Rating) IsValid() bool {
	return r >= 0 && r < ratingCount
}

// String returns the stored form of the rating ("pg", "pg13", "r").
func (r Rating) String() string {
	if !r.IsValid() {
		return fmt.Sprintf("Rating(%d)", int(r))
	}

	return ratingTable[r].name
}

// Label returns the display form of the rating ("PG-13").
func (r Rating) Label() string {
	if !r.IsValid() {
		return "UNKNOWN"
	}

	return ratingTable[r].label
}

// Color returns the embed colour associated with the rating.
func (r Rating) Color() int {
	if !r.IsValid() {
		return ColorBlue
	}

	return ratingTable[r].color
}

// ParseRating converts "pg", "pg13", "pg-13" or "r" (any case) into a Rating.
func ParseRating(s string) (Rating, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "pg-13" {
		s = "pg13"
	}

	for i, info := range ratingTable {
		if s == info.name {
			return Rating(i), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrInvalidRating, s)
}

// RatingSet is a set of ratings stored as a bit mask.
type RatingSet uint8

// NoRatings is the empty set.
const NoRatings RatingSet = 0

// AllRatings returns the set containing every rating.
func AllRatings() RatingSet {
	return NewRatingSet(Ratings()...)
}

// NewRatingSet builds a set from the given ratings. Invalid ratings are ignored.
func NewRatingSet(ratings ...Rating) RatingSet {
	var set RatingSet
	for _, r := range ratings {
		set = set.With(r)
	}

	return set
}

// With returns a copy of the set that also contains r.
func (s RatingSet) With(r Rating) RatingSet {
	if !r.IsValid() {
		return s
	}

	return s | 1<<uint(r)
}

// Has reports whether r is in the set.
func (s RatingSet) Has(r Rating) bool {
	return r.IsValid() && s&(1<<uint(r)) != 0
}

// IsEmpty reports whether the set contains no ratings.
func (s RatingSet) IsEmpty() bool {
	return s == NoRatings
}

// Len returns the number of ratings in the set.
func (s RatingSet) Len() int {
	n := 0
	for _, r := range Ratings() {
		if s.Has(r) {
			n++
		}
	}

	return n
}

// Slice returns the ratings of the set from least to most severe.
func (s RatingSet) Slice() []Rating {
	ratings := make([]Rating, 0, ratingCount)
	for _, r := range Ratings() {
		if s.Has(r) {
			ratings = append(ratings, r)
		}
	}

	return ratings
}

// String joins the stored names of the set, e.g. "pg,pg13".
func (s RatingSet) String() string {
	names := make([]string, 0, ratingCount)
	for _, r := range s.Slice() {
		names = append(names, r.String())
	}

	return strings.Join(names, ",")
}
