// Package ranking implements cosine similarity ranking over catalog embeddings.
package ranking

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mulefish/search-toy/internal/models"
	"github.com/mulefish/search-toy/internal/vector"
)

var (
	// ErrNoData indicates the ranker holds no embeddings: the catalog has
	// not been seeded, or the embeddings table is empty.
	ErrNoData = errors.New("no embeddings loaded")

	// ErrDimensionMismatch indicates a query vector whose length differs
	// from the stored embedding dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Ranker scores a query vector against the full set of catalog embeddings by
// inner product, which equals cosine similarity on pre-normalized vectors.
// A Ranker is immutable after construction and Rank never mutates receiver
// or arguments, so concurrent queries need no locking.
type Ranker struct {
	dimensions int
	entries    []*models.ItemEmbedding
}

// NewRanker builds a ranker from embeddings, preserving their order; ties in
// similarity are later broken by that order. All vectors must share one
// dimensionality. An inconsistent store is rejected here, at load time,
// instead of surfacing per query.
func NewRanker(embeddings []*models.ItemEmbedding) (*Ranker, error) {
	r := &Ranker{entries: make([]*models.ItemEmbedding, 0, len(embeddings))}
	for i, e := range embeddings {
		if e == nil {
			return nil, fmt.Errorf("nil embedding at position %d", i)
		}
		if len(e.Vector) == 0 {
			return nil, fmt.Errorf("item %d: empty embedding vector", e.ItemID)
		}
		if r.dimensions == 0 {
			r.dimensions = len(e.Vector)
		} else if len(e.Vector) != r.dimensions {
			return nil, fmt.Errorf("item %d: vector has dimension %d, store has %d", e.ItemID, len(e.Vector), r.dimensions)
		}
		r.entries = append(r.entries, e)
	}
	return r, nil
}

// Rank returns the topK entries most similar to the query, highest first.
// topK <= 0 means all entries. Each result carries the cosine similarity and
// its distance form, Distance = 1 - Similarity. Equal similarities keep
// insertion order: the earlier entry ranks higher.
func (r *Ranker) Rank(query []float32, topK int) ([]*models.RankedResult, error) {
	if len(r.entries) == 0 {
		return nil, ErrNoData
	}
	if len(query) != r.dimensions {
		return nil, fmt.Errorf("query has dimension %d, store has %d: %w", len(query), r.dimensions, ErrDimensionMismatch)
	}

	results := make([]*models.RankedResult, len(r.entries))
	for i, e := range r.entries {
		sim := vector.InnerProduct(query, e.Vector)
		results[i] = &models.RankedResult{
			ID:         e.ItemID,
			Name:       e.Name,
			Category:   e.Category,
			Similarity: sim,
			Distance:   1 - sim,
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}
	for i := range results {
		results[i].Rank = i + 1
	}
	return results, nil
}

// Size returns the number of embeddings held by the ranker.
func (r *Ranker) Size() int {
	return len(r.entries)
}

// Dimensions returns the shared vector dimensionality, 0 when empty.
func (r *Ranker) Dimensions() int {
	return r.dimensions
}

// FilterByMinSimilarity drops results scoring below min. A threshold <= 0
// keeps everything. Results arrive sorted descending, so filtering removes a
// suffix and ranks stay contiguous.
func FilterByMinSimilarity(results []*models.RankedResult, min float64) []*models.RankedResult {
	if min <= 0 {
		return results
	}
	filtered := make([]*models.RankedResult, 0, len(results))
	for _, res := range results {
		if res.Similarity >= min {
			filtered = append(filtered, res)
		}
	}
	return filtered
}
