package models

// RankedResult is a single semantic search hit: an item snapshot with its
// similarity to the query vector.
type RankedResult struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	// Similarity is the cosine similarity in [-1, 1].
	Similarity float64 `json:"similarity"`
	// Distance is exactly 1 - Similarity.
	Distance float64 `json:"distance"`
	Rank     int     `json:"rank"`
}

// SearchResponse is the response for a semantic search request.
type SearchResponse struct {
	Query      string          `json:"query"`
	Results    []*RankedResult `json:"results"`
	MatchCount int             `json:"match_count"`
	QueryTime  int64           `json:"query_time_ms"`
}

// KeywordResponse is the response for a keyword search request.
type KeywordResponse struct {
	Results    []*Item `json:"results"`
	MatchCount int     `json:"match_count"`
	Message    string  `json:"message,omitempty"`
	// Suggestions contains "Did you mean?" spelling suggestions, populated
	// only when the query matched nothing.
	Suggestions []string `json:"suggestions,omitempty"`
	QueryTime   int64    `json:"query_time_ms"`
}
