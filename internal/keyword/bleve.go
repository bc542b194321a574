package keyword

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/mulefish/search-toy/internal/models"
)

// itemDoc is the shape actually indexed: just the searchable text fields.
type itemDoc struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// BleveIndex implements Index using Bleve.
type BleveIndex struct {
	index bleve.Index
}

func itemMapping() *bleve.IndexMappingImpl {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so a query like
	// "gummys" matches the category spelled exactly that way.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("name", textFieldMapping)
	docMapping.AddFieldMappingsAt("description", textFieldMapping)
	docMapping.AddFieldMappingsAt("category", textFieldMapping)
	im.AddDocumentMapping("item", docMapping)
	im.DefaultType = "item"
	im.DefaultMapping = docMapping

	return im
}

// NewBleveIndex creates or opens a Bleve index at path. An existing index is
// opened and reused; remove the directory to force a full re-index after a
// mapping change.
func NewBleveIndex(path string) (*BleveIndex, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, itemMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// NewMemoryIndex creates an in-memory index that is not persisted.
func NewMemoryIndex() (*BleveIndex, error) {
	index, err := bleve.NewMemOnly(itemMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// IndexItem indexes one item keyed by its ID.
func (b *BleveIndex) IndexItem(ctx context.Context, item *models.Item) error {
	return b.index.Index(itemKey(item.ID), itemDoc{
		Name:        item.Name,
		Description: item.Description,
		Category:    item.Category,
	})
}

// IndexItems indexes items in a single batch.
func (b *BleveIndex) IndexItems(ctx context.Context, items []*models.Item) error {
	batch := b.index.NewBatch()
	for _, item := range items {
		err := batch.Index(itemKey(item.ID), itemDoc{
			Name:        item.Name,
			Description: item.Description,
			Category:    item.Category,
		})
		if err != nil {
			return fmt.Errorf("failed to batch item %d: %w", item.ID, err)
		}
	}
	return b.index.Batch(batch)
}

// Search matches any query token against name, description, and category.
// Multi-term queries add a phrase clause so items containing the words in
// order score above items matching a single word.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int) ([]*Result, error) {
	terms := tokenizeQuery(query)
	if len(terms) == 0 {
		return nil, nil
	}

	var q blevequery.Query
	if len(terms) == 1 {
		q = bleve.NewMatchQuery(terms[0])
	} else {
		queries := make([]blevequery.Query, 0, len(terms)+1)
		for _, term := range terms {
			queries = append(queries, bleve.NewMatchQuery(term))
		}
		queries = append(queries, bleve.NewMatchPhraseQuery(query))
		q = bleve.NewDisjunctionQuery(queries...)
	}

	req := bleve.NewSearchRequest(q)
	req.Size = limit
	results, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}

	out := make([]*Result, 0, len(results.Hits))
	for _, hit := range results.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, &Result{ID: id, Score: hit.Score})
	}
	return out, nil
}

// Rebuild removes every indexed item and re-indexes the given set.
func (b *BleveIndex) Rebuild(ctx context.Context, items []*models.Item) error {
	count, err := b.index.DocCount()
	if err != nil {
		return fmt.Errorf("failed to get doc count: %w", err)
	}
	if count > 0 {
		req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
		req.Size = int(count)
		existing, err := b.index.Search(req)
		if err != nil {
			return fmt.Errorf("failed to list indexed items: %w", err)
		}
		batch := b.index.NewBatch()
		for _, hit := range existing.Hits {
			batch.Delete(hit.ID)
		}
		if err := b.index.Batch(batch); err != nil {
			return fmt.Errorf("failed to clear index: %w", err)
		}
	}
	return b.IndexItems(ctx, items)
}

// Delete removes an item from the index.
func (b *BleveIndex) Delete(ctx context.Context, id int64) error {
	return b.index.Delete(itemKey(id))
}

// Close closes the Bleve index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

// DocCount returns the total number of items in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// GetTermFrequency returns the number of items containing the given term.
func (b *BleveIndex) GetTermFrequency(term string) (int, error) {
	q := bleve.NewMatchQuery(term)
	req := bleve.NewSearchRequest(q)
	req.Size = 0
	results, err := b.index.Search(req)
	if err != nil {
		return 0, fmt.Errorf("failed to search for term frequency: %w", err)
	}
	return int(results.Total), nil
}

// GetAllTerms returns all unique terms across the indexed text fields.
func (b *BleveIndex) GetAllTerms() ([]string, error) {
	terms := make([]string, 0)
	seen := make(map[string]struct{})

	for _, field := range []string{"name", "description", "category"} {
		dict, err := b.index.FieldDict(field)
		if err != nil {
			continue
		}
		for {
			entry, err := dict.Next()
			if err != nil || entry == nil {
				break
			}
			if _, ok := seen[entry.Term]; !ok {
				terms = append(terms, entry.Term)
				seen[entry.Term] = struct{}{}
			}
		}
		dict.Close()
	}

	return terms, nil
}

func itemKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// tokenizeQuery splits a query into lowercase terms.
func tokenizeQuery(query string) []string {
	words := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(words))
	for _, w := range words {
		if w != "" {
			terms = append(terms, w)
		}
	}
	return terms
}
