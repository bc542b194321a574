// Package keyword provides the keyword search index over catalog items.
package keyword

import (
	"context"

	"github.com/mulefish/search-toy/internal/models"
)

// Index defines keyword search operations over catalog items.
type Index interface {
	// IndexItem adds or replaces a single item in the index.
	IndexItem(ctx context.Context, item *models.Item) error
	// IndexItems adds or replaces items in one batch.
	IndexItems(ctx context.Context, items []*models.Item) error
	// Search returns up to limit hits ordered by descending score.
	Search(ctx context.Context, query string, limit int) ([]*Result, error)
	// Rebuild clears the index and re-indexes the given items.
	Rebuild(ctx context.Context, items []*models.Item) error
	Delete(ctx context.Context, id int64) error
	// DocCount returns the total number of items in the index.
	DocCount() (uint64, error)
	Close() error
}

// Result is a single keyword search hit.
type Result struct {
	ID    int64
	Score float64
}

// TermDictionary exposes the index vocabulary for spell checking.
type TermDictionary interface {
	// GetAllTerms returns all unique terms in the index.
	GetAllTerms() ([]string, error)
	// GetTermFrequency returns the document frequency for a term.
	GetTermFrequency(term string) (int, error)
}
