package seed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mulefish/search-toy/internal/embedding"
	"github.com/mulefish/search-toy/internal/keyword"
	"github.com/mulefish/search-toy/internal/storage"
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "seed.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCatalog(t *testing.T) {
	items := Catalog()
	if len(items) != 7 {
		t.Fatalf("catalog has %d items, want 7", len(items))
	}
	if items[0].Name != "Indica Reverie" || items[6].Name != "Pre-Rolls Duo" {
		t.Errorf("catalog order wrong: first=%q last=%q", items[0].Name, items[6].Name)
	}
	for _, item := range items {
		if item.Description == "" || item.Category == "" {
			t.Errorf("item %q missing description or category", item.Name)
		}
		if _, ok := item.Metadata["number"]; !ok {
			t.Errorf("item %q missing number metadata", item.Name)
		}
	}
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	emb := embedding.NewMockEmbedder(8)
	idx, err := keyword.NewMemoryIndex()
	if err != nil {
		t.Fatalf("failed to create index: %v", err)
	}
	defer idx.Close()

	if err := Run(ctx, store, emb, idx, "mock-model", nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	itemCount, err := store.CountItems(ctx)
	if err != nil {
		t.Fatalf("CountItems() error = %v", err)
	}
	if itemCount != 7 {
		t.Errorf("item count = %d, want 7", itemCount)
	}

	embs, err := store.LoadEmbeddings(ctx)
	if err != nil {
		t.Fatalf("LoadEmbeddings() error = %v", err)
	}
	if len(embs) != 7 {
		t.Fatalf("embedding count = %d, want 7", len(embs))
	}
	for i := 1; i < len(embs); i++ {
		if embs[i].ItemID <= embs[i-1].ItemID {
			t.Errorf("embeddings out of order: %d after %d", embs[i].ItemID, embs[i-1].ItemID)
		}
	}
	for _, e := range embs {
		if e.ModelName != "mock-model" {
			t.Errorf("item %d: model = %q, want mock-model", e.ItemID, e.ModelName)
		}
		if len(e.Vector) != 8 {
			t.Errorf("item %d: vector has %d dims, want 8", e.ItemID, len(e.Vector))
		}
	}

	docs, err := idx.DocCount()
	if err != nil {
		t.Fatalf("DocCount() error = %v", err)
	}
	if docs != 7 {
		t.Errorf("keyword docs = %d, want 7", docs)
	}
}

func TestRun_WithoutIndex(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	emb := embedding.NewMockEmbedder(4)

	if err := Run(ctx, store, emb, nil, "mock-model", nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	count, err := store.CountEmbeddings(ctx)
	if err != nil {
		t.Fatalf("CountEmbeddings() error = %v", err)
	}
	if count != 7 {
		t.Errorf("embedding count = %d, want 7", count)
	}
}

func TestRun_Reseed(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	emb := embedding.NewMockEmbedder(4)

	if err := Run(ctx, store, emb, nil, "m1", nil); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if err := Run(ctx, store, emb, nil, "m2", nil); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	count, err := store.CountItems(ctx)
	if err != nil {
		t.Fatalf("CountItems() error = %v", err)
	}
	if count != 7 {
		t.Errorf("item count after reseed = %d, want 7", count)
	}
	embs, err := store.LoadEmbeddings(ctx)
	if err != nil {
		t.Fatalf("LoadEmbeddings() error = %v", err)
	}
	for _, e := range embs {
		if e.ModelName != "m2" {
			t.Errorf("item %d: model = %q, want m2 after reseed", e.ItemID, e.ModelName)
		}
	}
}
