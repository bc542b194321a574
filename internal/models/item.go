// Package models defines core data structures for catalog items, queries, and search results.
package models

import "time"

// Item represents a catalog product with metadata.
type Item struct {
	ID          int64                  `json:"id" db:"id"`
	Name        string                 `json:"name" db:"name"`
	Description string                 `json:"description" db:"description"`
	Category    string                 `json:"category" db:"category"`
	Metadata    map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	CreatedAt   time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at" db:"updated_at"`
}

// EmbeddingText returns the text encoded for the item: name and description
// joined as a single sentence pair.
func (it *Item) EmbeddingText() string {
	return it.Name + ". " + it.Description
}

// ItemEmbedding pairs a catalog item with its embedding vector. All vectors
// in one store share a single dimensionality and are unit-normalized when
// written, so a dot product against them is a cosine similarity.
type ItemEmbedding struct {
	ItemID    int64     `json:"item_id" db:"item_id"`
	Name      string    `json:"name" db:"name"`
	Category  string    `json:"category" db:"category"`
	ModelName string    `json:"model_name" db:"model_name"`
	Vector    []float32 `json:"-" db:"-"`
}
