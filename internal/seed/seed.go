package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mulefish/search-toy/internal/embedding"
	"github.com/mulefish/search-toy/internal/keyword"
	"github.com/mulefish/search-toy/internal/models"
	"github.com/mulefish/search-toy/internal/storage"
)

// Run resets the store schema and populates it with the sample catalog:
// items first, then one embedding per item encoded from its name and
// description. When idx is non-nil the keyword index is rebuilt to match.
// Existing data is dropped, so this is destructive by intent.
func Run(ctx context.Context, store storage.Store, embedder embedding.Embedder, idx keyword.Index, modelName string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := store.ResetSchema(ctx); err != nil {
		return fmt.Errorf("failed to reset schema: %w", err)
	}
	logger.Info("schema reset", zap.String("driver", store.Driver()))

	items := Catalog()
	texts := make([]string, len(items))
	for i, item := range items {
		if err := store.CreateItem(ctx, item); err != nil {
			return fmt.Errorf("failed to create item %q: %w", item.Name, err)
		}
		texts[i] = item.EmbeddingText()
	}
	logger.Info("catalog items created", zap.Int("count", len(items)))

	vectors, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed catalog: %w", err)
	}
	if len(vectors) != len(items) {
		return fmt.Errorf("embedder returned %d vectors for %d items", len(vectors), len(items))
	}

	embs := make([]*models.ItemEmbedding, len(items))
	for i, item := range items {
		embs[i] = &models.ItemEmbedding{
			ItemID:    item.ID,
			Name:      item.Name,
			Category:  item.Category,
			ModelName: modelName,
			Vector:    vectors[i],
		}
	}
	if err := store.BatchUpsertEmbeddings(ctx, embs); err != nil {
		return fmt.Errorf("failed to store embeddings: %w", err)
	}
	logger.Info("embeddings stored",
		zap.Int("count", len(embs)),
		zap.String("model", modelName),
		zap.Int("dimensions", embedder.Dimensions()))

	if idx != nil {
		if err := idx.Rebuild(ctx, items); err != nil {
			return fmt.Errorf("failed to rebuild keyword index: %w", err)
		}
		logger.Info("keyword index rebuilt", zap.Int("count", len(items)))
	}
	return nil
}
