package keyword

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mulefish/search-toy/internal/models"
)

func TestBleveIndex_SearchFindsDescription(t *testing.T) {
	idx, err := NewMemoryIndex()
	if err != nil {
		t.Fatalf("NewMemoryIndex: %v", err)
	}
	defer func() {
		_ = idx.Close()
	}()

	ctx := context.Background()
	item := &models.Item{
		ID:          1,
		Name:        "Indica Reverie",
		Description: "Melting every muscle into the couch with velvet calm.",
		Category:    "Indica",
	}
	if err := idx.IndexItem(ctx, item); err != nil {
		t.Fatalf("IndexItem: %v", err)
	}

	results, err := idx.Search(ctx, "couch", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one keyword result for \"couch\" in description")
	}
	if results[0].ID != 1 {
		t.Errorf("first result ID = %d, want 1", results[0].ID)
	}

	// Standard analyzer (no stemming) so "indica" matches the category "Indica".
	results2, err := idx.Search(ctx, "indica", 10)
	if err != nil {
		t.Fatalf("Search indica: %v", err)
	}
	if len(results2) == 0 {
		t.Fatal("expected at least one keyword result for \"indica\" in category")
	}
}

func TestBleveIndex_AnyTokenMatches(t *testing.T) {
	idx, err := NewMemoryIndex()
	if err != nil {
		t.Fatalf("NewMemoryIndex: %v", err)
	}
	defer func() {
		_ = idx.Close()
	}()

	ctx := context.Background()
	items := []*models.Item{
		{ID: 1, Name: "Indica Reverie", Description: "Velvet evening calm.", Category: "Indica"},
		{ID: 2, Name: "Sativa Voltage", Description: "Neon focus surge.", Category: "Sativa"},
	}
	if err := idx.IndexItems(ctx, items); err != nil {
		t.Fatalf("IndexItems: %v", err)
	}

	// One token per item; both should come back.
	results, err := idx.Search(ctx, "voltage reverie", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
}

func TestBleveIndex_PhraseRanksAboveScatteredTerms(t *testing.T) {
	idx, err := NewMemoryIndex()
	if err != nil {
		t.Fatalf("NewMemoryIndex: %v", err)
	}
	defer func() {
		_ = idx.Close()
	}()

	ctx := context.Background()
	items := []*models.Item{
		{ID: 1, Name: "Scattered", Description: "A laser cut case and a separate pointer stick.", Category: "Misc"},
		{ID: 2, Name: "Exact", Description: "A red laser pointer for presentations.", Category: "Misc"},
	}
	if err := idx.IndexItems(ctx, items); err != nil {
		t.Fatalf("IndexItems: %v", err)
	}

	results, err := idx.Search(ctx, "laser pointer", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != 2 {
		t.Errorf("phrase match should rank first, got ID %d", results[0].ID)
	}
}

func TestBleveIndex_Rebuild(t *testing.T) {
	idx, err := NewMemoryIndex()
	if err != nil {
		t.Fatalf("NewMemoryIndex: %v", err)
	}
	defer func() {
		_ = idx.Close()
	}()

	ctx := context.Background()
	old := []*models.Item{
		{ID: 1, Name: "Old One", Description: "stalebread", Category: "c"},
		{ID: 2, Name: "Old Two", Description: "stalebread", Category: "c"},
	}
	if err := idx.IndexItems(ctx, old); err != nil {
		t.Fatalf("IndexItems: %v", err)
	}

	replacement := []*models.Item{
		{ID: 3, Name: "Fresh", Description: "newloaf", Category: "c"},
	}
	if err := idx.Rebuild(ctx, replacement); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	count, err := idx.DocCount()
	if err != nil {
		t.Fatalf("DocCount: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 item after rebuild, got %d", count)
	}

	results, err := idx.Search(ctx, "stalebread", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("old items should be gone after rebuild, got %d results", len(results))
	}

	results, err = idx.Search(ctx, "newloaf", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != 3 {
		t.Errorf("expected the rebuilt item, got %+v", results)
	}
}

func TestBleveIndex_Delete(t *testing.T) {
	idx, err := NewMemoryIndex()
	if err != nil {
		t.Fatalf("NewMemoryIndex: %v", err)
	}
	defer func() {
		_ = idx.Close()
	}()

	ctx := context.Background()
	item := &models.Item{ID: 1, Name: "T", Description: "onlyinitem1", Category: "c"}
	if err := idx.IndexItem(ctx, item); err != nil {
		t.Fatalf("IndexItem: %v", err)
	}

	if err := idx.Delete(ctx, item.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	results, err := idx.Search(ctx, "onlyinitem1", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected 0 results after delete, got %d", len(results))
	}
}

func TestBleveIndex_OpenExistingPreservesItems(t *testing.T) {
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "bleve")

	idx1, err := NewBleveIndex(indexPath)
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	ctx := context.Background()
	item := &models.Item{ID: 1, Name: "T", Description: "uniqueword", Category: "c"}
	if err := idx1.IndexItem(ctx, item); err != nil {
		t.Fatalf("IndexItem: %v", err)
	}
	if err := idx1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	idx2, err := NewBleveIndex(indexPath)
	if err != nil {
		t.Fatalf("NewBleveIndex (open existing): %v", err)
	}
	defer func() {
		_ = idx2.Close()
	}()

	results, err := idx2.Search(ctx, "uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("reopened index should keep its items, got %d results", len(results))
	}
}

func TestBleveIndex_TermDictionary(t *testing.T) {
	idx, err := NewMemoryIndex()
	if err != nil {
		t.Fatalf("NewMemoryIndex: %v", err)
	}
	defer func() {
		_ = idx.Close()
	}()

	ctx := context.Background()
	item := &models.Item{ID: 1, Name: "Gummy Aurora", Description: "Technicolor delight.", Category: "Gummys"}
	if err := idx.IndexItem(ctx, item); err != nil {
		t.Fatalf("IndexItem: %v", err)
	}

	terms, err := idx.GetAllTerms()
	if err != nil {
		t.Fatalf("GetAllTerms: %v", err)
	}
	found := false
	for _, term := range terms {
		if term == "gummy" {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected \"gummy\" in term dictionary, got %v", terms)
	}

	freq, err := idx.GetTermFrequency("aurora")
	if err != nil {
		t.Fatalf("GetTermFrequency: %v", err)
	}
	if freq != 1 {
		t.Errorf("expected frequency 1 for \"aurora\", got %d", freq)
	}
}

func TestNewBleveIndex_createsDir(t *testing.T) {
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "sub", "bleve")

	idx, err := NewBleveIndex(indexPath)
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	_ = idx.Close()

	if _, err := os.Stat(indexPath); err != nil {
		t.Errorf("index path should exist: %v", err)
	}
}
