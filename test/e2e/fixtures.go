package e2e

import (
	"context"
	"fmt"

	"github.com/mulefish/search-toy/internal/embedding"
	"github.com/mulefish/search-toy/internal/keyword"
	"github.com/mulefish/search-toy/internal/models"
	"github.com/mulefish/search-toy/internal/storage"
)

// SeedCorpus resets the store and loads the corpus into it: catalog rows,
// one embedding per item, and the keyword index when one is given. Items are
// created in corpus order so IDs ascend with it. Returns the number seeded.
func SeedCorpus(ctx context.Context, store storage.Store, embedder embedding.Embedder, idx keyword.Index, c *Corpus) (int, error) {
	if err := store.ResetSchema(ctx); err != nil {
		return 0, fmt.Errorf("reset schema: %w", err)
	}

	items := c.ToItems()
	texts := make([]string, len(items))
	for i, item := range items {
		if err := store.CreateItem(ctx, item); err != nil {
			return 0, fmt.Errorf("create item %q: %w", item.Name, err)
		}
		texts[i] = item.EmbeddingText()
	}

	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed corpus: %w", err)
	}

	embs := make([]*models.ItemEmbedding, len(items))
	for i, item := range items {
		embs[i] = &models.ItemEmbedding{
			ItemID:    item.ID,
			Name:      item.Name,
			Category:  item.Category,
			ModelName: "mock-model",
			Vector:    vectors[i],
		}
	}
	if err := store.BatchUpsertEmbeddings(ctx, embs); err != nil {
		return 0, fmt.Errorf("store embeddings: %w", err)
	}

	if idx != nil {
		if err := idx.Rebuild(ctx, items); err != nil {
			return 0, fmt.Errorf("rebuild keyword index: %w", err)
		}
	}
	return len(items), nil
}
