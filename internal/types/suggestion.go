package types

import (
	"github.com/bytedance/sonic"
	"github.com/robalyx/tickle/internal/types/enum"
)

// Suggestion is a user-submitted prompt waiting for review.
//
// ID is an ordinal assigned at submit time and is only meaningful for display;
// it is not stable across removals.
type Suggestion struct {
	ID            int
	Text          string
	Category      enum.Category
	Rating        enum.Rating
	SubmitterID   string
	SubmitterName string
}

type suggestionRecord struct {
	ID       int       `json:"id"`
	Text     string    `json:"text"`
	Type     string    `json:"type"`
	Rating   string    `json:"rating"`
	UserID   Snowflake `json:"user_id"`
	Username string    `json:"username"`
}

// DecodeSuggestions parses the suggestion queue document. Unknown types fall
// back to truth and unknown ratings to PG so that no submission is lost.
func DecodeSuggestions(data []byte) ([]Suggestion, error) {
	var records []suggestionRecord
	if err := sonic.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	suggestions := make([]Suggestion, 0, len(records))
	for _, record := range records {
		category, err := enum.ParseCategory(record.Type)
		if err != nil {
			category = enum.CategoryTruth
		}

		rating, err := enum.ParseRating(record.Rating)
		if err != nil {
			rating = enum.RatingPG
		}

		suggestions = append(suggestions, Suggestion{
			ID:            record.ID,
			Text:          record.Text,
			Category:      category,
			Rating:        rating,
			SubmitterID:   string(record.UserID),
			SubmitterName: record.Username,
		})
	}

	return suggestions, nil
}

// EncodeSuggestions serializes the suggestion queue document.
func EncodeSuggestions(suggestions []Suggestion) ([]byte, error) {
	records := make([]suggestionRecord, 0, len(suggestions))
	for _, s := range suggestions {
		records = append(records, suggestionRecord{
			ID:       s.ID,
			Text:     s.Text,
			Type:     s.Category.String(),
			Rating:   s.Rating.String(),
			UserID:   Snowflake(s.SubmitterID),
			Username: s.SubmitterName,
		})
	}

	return sonic.ConfigStd.MarshalIndent(records, "", "    ")
}
