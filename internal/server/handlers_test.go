package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/mulefish/search-toy/internal/config"
	"github.com/mulefish/search-toy/internal/embedding"
	"github.com/mulefish/search-toy/internal/keyword"
	"github.com/mulefish/search-toy/internal/models"
	"github.com/mulefish/search-toy/internal/search"
	"github.com/mulefish/search-toy/internal/seed"
	"github.com/mulefish/search-toy/internal/storage"
)

func newTestServer(t *testing.T, seeded bool) (*Server, storage.Store, embedding.Embedder) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "db.sqlite")
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	embedder := embedding.NewMockEmbedder(8)
	idx, err := keyword.NewMemoryIndex()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { idx.Close() })

	if seeded {
		if err := seed.Run(context.Background(), store, embedder, idx, "mock", nil); err != nil {
			t.Fatal(err)
		}
	}

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Storage.DatabasePath = dbPath
	cfg.Storage.BleveIndexPath = ""

	engine := search.NewEngine(store, embedder, idx, &cfg.Search)
	return NewServer(engine, store, cfg, zap.NewNop()), store, embedder
}

func postSearch(t *testing.T, srv *Server, query *models.SearchQuery) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(query)
	if err != nil {
		t.Fatal(err)
	}
	r := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.handleSearch(w, r)
	return w
}

func TestHandleSearch(t *testing.T) {
	srv, _, _ := newTestServer(t, true)

	w := postSearch(t, srv, &models.SearchQuery{Query: "relaxing evening couch", TopK: 100})
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	var resp models.SearchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.MatchCount != 7 {
		t.Errorf("match_count: got %d, want 7", resp.MatchCount)
	}
	for i, res := range resp.Results {
		if got, want := res.Distance, 1-res.Similarity; got != want {
			t.Errorf("result %d: distance = %f, want %f", i, got, want)
		}
		if i > 0 && res.Similarity > resp.Results[i-1].Similarity {
			t.Errorf("results not sorted by similarity at %d", i)
		}
		if res.Rank != i+1 {
			t.Errorf("result %d: rank = %d", i, res.Rank)
		}
	}
}

func TestHandleSearch_TopK(t *testing.T) {
	srv, _, _ := newTestServer(t, true)

	w := postSearch(t, srv, &models.SearchQuery{Query: "sweet gummies", TopK: 2})
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	var resp models.SearchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 2 {
		t.Errorf("results: got %d, want 2", len(resp.Results))
	}
}

func TestHandleSearch_InvalidBody(t *testing.T) {
	srv, _, _ := newTestServer(t, true)

	r := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader([]byte("{")))
	w := httptest.NewRecorder()
	srv.handleSearch(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestHandleSearch_BlankQuery(t *testing.T) {
	srv, _, _ := newTestServer(t, true)

	w := postSearch(t, srv, &models.SearchQuery{Query: "   "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestHandleSearch_EmptyCatalog(t *testing.T) {
	srv, _, _ := newTestServer(t, false)

	w := postSearch(t, srv, &models.SearchQuery{Query: "anything"})
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503, body: %s", w.Code, w.Body.String())
	}
}

func TestHandleKeyword(t *testing.T) {
	srv, _, _ := newTestServer(t, true)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/keyword?q=velvet", nil)
	w := httptest.NewRecorder()
	srv.handleKeyword(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	var resp models.KeywordResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.MatchCount != 1 || resp.Results[0].Name != "Indica Reverie" {
		t.Errorf("got %d results, first %v", resp.MatchCount, resp.Results)
	}
}

func TestHandleKeyword_EmptyQuery(t *testing.T) {
	srv, _, _ := newTestServer(t, true)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/keyword?q=", nil)
	w := httptest.NewRecorder()
	srv.handleKeyword(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	var resp models.KeywordResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Message != "Type something to search." {
		t.Errorf("message: got %q", resp.Message)
	}
	if len(resp.Results) != 0 {
		t.Errorf("results: got %d, want 0", len(resp.Results))
	}
}

func TestHandleKeyword_InvalidLimit(t *testing.T) {
	srv, _, _ := newTestServer(t, true)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/keyword?q=x&limit=abc", nil)
	w := httptest.NewRecorder()
	srv.handleKeyword(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestHandleListItems(t *testing.T) {
	srv, _, _ := newTestServer(t, true)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/items?limit=3", nil)
	w := httptest.NewRecorder()
	srv.handleListItems(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	var out struct {
		Items []*models.Item `json:"items"`
		Count int            `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 3 || len(out.Items) != 3 {
		t.Fatalf("count: got %d, want 3", out.Count)
	}
	if out.Items[0].Name != "Gummy Aurora" {
		t.Errorf("first item: got %q, want Gummy Aurora", out.Items[0].Name)
	}
}

func TestHandleGetItem(t *testing.T) {
	srv, _, _ := newTestServer(t, true)
	router := srv.Router()

	r := httptest.NewRequest(http.MethodGet, "/api/v1/items/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	var item models.Item
	if err := json.NewDecoder(w.Body).Decode(&item); err != nil {
		t.Fatal(err)
	}
	if item.Name != "Indica Reverie" {
		t.Errorf("name: got %q", item.Name)
	}

	r = httptest.NewRequest(http.MethodGet, "/api/v1/items/9999", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing item status: got %d, want 404", w.Code)
	}

	r = httptest.NewRequest(http.MethodGet, "/api/v1/items/banana", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad id status: got %d, want 400", w.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	srv, _, _ := newTestServer(t, true)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()
	srv.handleStatus(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	var out struct {
		Items          int64                  `json:"items"`
		Embeddings     int64                  `json:"embeddings"`
		Loaded         bool                   `json:"loaded"`
		Driver         string                 `json:"driver"`
		Config         map[string]interface{} `json:"config"`
		DiskUsageBytes int64                  `json:"disk_usage_bytes"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Items != 7 || out.Embeddings != 7 {
		t.Errorf("counts: got %d items, %d embeddings", out.Items, out.Embeddings)
	}
	if out.Loaded {
		t.Error("loaded should be false before the first search")
	}
	if out.Driver != "sqlite3" {
		t.Errorf("driver: got %q", out.Driver)
	}
	if out.Config["embedding_provider"] == nil {
		t.Error("expected config info in status response")
	}
	if out.DiskUsageBytes < 1 {
		t.Errorf("disk_usage_bytes: got %d, want >= 1", out.DiskUsageBytes)
	}
}

func TestHandleStatus_AfterSearch(t *testing.T) {
	srv, _, _ := newTestServer(t, true)

	if w := postSearch(t, srv, &models.SearchQuery{Query: "citrus"}); w.Code != http.StatusOK {
		t.Fatalf("search status: got %d", w.Code)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()
	srv.handleStatus(w, r)
	var out struct {
		Loaded     bool `json:"loaded"`
		RankerSize int  `json:"ranker_size"`
	}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if !out.Loaded || out.RankerSize != 7 {
		t.Errorf("after search: loaded=%v ranker_size=%d", out.Loaded, out.RankerSize)
	}
}

func TestHandleReload_PicksUpNewItems(t *testing.T) {
	srv, store, embedder := newTestServer(t, true)
	ctx := context.Background()

	w := postSearch(t, srv, &models.SearchQuery{Query: "anything goes", TopK: 100})
	if w.Code != http.StatusOK {
		t.Fatalf("search status: got %d", w.Code)
	}
	var before models.SearchResponse
	if err := json.NewDecoder(w.Body).Decode(&before); err != nil {
		t.Fatal(err)
	}
	if before.MatchCount != 7 {
		t.Fatalf("before reload: got %d matches, want 7", before.MatchCount)
	}

	item := &models.Item{Name: "Tincture Halo", Description: "A slow calm dropper.", Category: "Tincture"}
	if err := store.CreateItem(ctx, item); err != nil {
		t.Fatal(err)
	}
	vec, err := embedder.Embed(ctx, item.EmbeddingText())
	if err != nil {
		t.Fatal(err)
	}
	emb := &models.ItemEmbedding{ItemID: item.ID, Name: item.Name, Category: item.Category, ModelName: "mock", Vector: vec}
	if err := store.UpsertEmbedding(ctx, emb); err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest(http.MethodPost, "/api/v1/reload", nil)
	rec := httptest.NewRecorder()
	srv.handleReload(rec, r)
	if rec.Code != http.StatusOK {
		t.Fatalf("reload status: got %d, body: %s", rec.Code, rec.Body.String())
	}

	w = postSearch(t, srv, &models.SearchQuery{Query: "anything goes", TopK: 100})
	var after models.SearchResponse
	if err := json.NewDecoder(w.Body).Decode(&after); err != nil {
		t.Fatal(err)
	}
	if after.MatchCount != 8 {
		t.Errorf("after reload: got %d matches, want 8", after.MatchCount)
	}
}

func TestHandleHealth(t *testing.T) {
	srv, _, _ := newTestServer(t, false)

	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.handleHealth(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d", w.Code)
	}
	var out map[string]string
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out["status"] != "ok" {
		t.Errorf("body: got %v", out)
	}
}
