// Package embedding provides text embedding via Ollama or ONNX, with caching.
package embedding

import "context"

// Embedder produces vector embeddings for text. Implementations return
// unit-normalized vectors; the ranker relies on that to treat inner products
// as cosine similarities.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
