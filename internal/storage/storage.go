// Package storage defines the persistence interface for catalog items and embeddings.
package storage

import (
	"context"
	"errors"

	"github.com/mulefish/search-toy/internal/models"
)

// ErrNotFound is returned when a requested item does not exist.
var ErrNotFound = errors.New("item not found")

// Store defines item and embedding persistence operations.
type Store interface {
	// Item operations. Items are written by seeding and read-only afterwards.
	CreateItem(ctx context.Context, item *models.Item) error
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	// ListItems returns items ordered by name.
	ListItems(ctx context.Context, offset, limit int) ([]*models.Item, error)
	// SearchItems returns items matching any token in name, description, or
	// category (case-insensitive substring), ordered by name.
	SearchItems(ctx context.Context, tokens []string, limit int) ([]*models.Item, error)

	// Embedding operations
	UpsertEmbedding(ctx context.Context, emb *models.ItemEmbedding) error
	BatchUpsertEmbeddings(ctx context.Context, embs []*models.ItemEmbedding) error
	// LoadEmbeddings bulk-reads every embedding ordered by ascending item ID.
	// Any read or decode failure aborts the whole load.
	LoadEmbeddings(ctx context.Context) ([]*models.ItemEmbedding, error)

	// Stats
	CountItems(ctx context.Context) (int64, error)
	CountEmbeddings(ctx context.Context) (int64, error)

	// ResetSchema drops and recreates all tables. Seed-time only.
	ResetSchema(ctx context.Context) error

	// Driver returns the backing driver name ("sqlite3" or "postgres").
	Driver() string

	Close() error
}
