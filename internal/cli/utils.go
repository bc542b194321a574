// Package cli provides output helpers for the searchtoy command.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mulefish/search-toy/internal/models"
	"github.com/mulefish/search-toy/pkg/utils"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

// WriteSearchResults writes semantic search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	fmt.Fprintf(w, "\nFound %d results in %dms\n\n", response.MatchCount, response.QueryTime)
	for _, result := range response.Results {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "Rank: %d | Similarity: %.4f | Distance: %.4f\n",
			result.Rank, result.Similarity, result.Distance)
		fmt.Fprintf(w, "ID: %d\n", result.ID)
		fmt.Fprintf(w, "Name: %s\n", result.Name)
		if result.Category != "" {
			fmt.Fprintf(w, "Category: %s\n", result.Category)
		}
		fmt.Fprintln(w)
	}
}

// WriteKeywordResults writes keyword search results to w in the given format.
func WriteKeywordResults(w io.Writer, response *models.KeywordResponse, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	default:
		writeKeywordResultsText(w, response)
		return nil
	}
}

func writeKeywordResultsText(w io.Writer, response *models.KeywordResponse) {
	if response.Message != "" {
		fmt.Fprintln(w, response.Message)
		return
	}
	fmt.Fprintf(w, "\nFound %d results in %dms\n\n", response.MatchCount, response.QueryTime)
	for _, item := range response.Results {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "ID: %d\n", item.ID)
		fmt.Fprintf(w, "Name: %s\n", item.Name)
		if item.Category != "" {
			fmt.Fprintf(w, "Category: %s\n", item.Category)
		}
		fmt.Fprintf(w, "\n%s\n", utils.Truncate(item.Description, 200))
		fmt.Fprintln(w)
	}
	if len(response.Suggestions) > 0 {
		fmt.Fprintf(w, "Did you mean: %s?\n", strings.Join(response.Suggestions, ", "))
	}
}

// WriteItems writes a catalog listing to w, one line per item.
func WriteItems(w io.Writer, items []*models.Item) {
	fmt.Fprintf(w, "\n%d items\n\n", len(items))
	for _, item := range items {
		fmt.Fprintf(w, "%4d  %-20s %-10s %s\n",
			item.ID, item.Name, item.Category, utils.Truncate(item.Description, 60))
	}
}
