package models

import (
	"errors"
	"strings"
)

// ErrEmptyQuery is returned by Validate for a blank search query.
var ErrEmptyQuery = errors.New("query cannot be empty")

// SearchQuery represents a semantic search request.
type SearchQuery struct {
	Query         string  `json:"query"`
	TopK          int     `json:"top_k,omitempty"`
	MinSimilarity float64 `json:"min_similarity,omitempty"` // drop results scoring below this; 0 keeps everything
}

// Validate ensures the search query has valid fields and sets defaults.
// The query text is trimmed; a blank query returns ErrEmptyQuery. TopK is
// normalized into [1, 100].
func (q *SearchQuery) Validate() error {
	q.Query = strings.TrimSpace(q.Query)
	if q.Query == "" {
		return ErrEmptyQuery
	}
	if q.TopK <= 0 {
		q.TopK = 5
	}
	if q.TopK > 100 {
		q.TopK = 100
	}
	if q.MinSimilarity < 0 {
		q.MinSimilarity = 0
	}
	return nil
}
