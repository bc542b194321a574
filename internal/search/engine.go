// Package search provides the semantic and keyword search engine.
package search

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mulefish/search-toy/internal/config"
	"github.com/mulefish/search-toy/internal/embedding"
	"github.com/mulefish/search-toy/internal/keyword"
	"github.com/mulefish/search-toy/internal/models"
	"github.com/mulefish/search-toy/internal/ranking"
	"github.com/mulefish/search-toy/internal/storage"
)

// SimilaritySearcher is implemented by stores that can rank embeddings
// inside the database instead of in memory.
type SimilaritySearcher interface {
	SearchSimilar(ctx context.Context, queryVec []float32, limit int) ([]*models.RankedResult, error)
}

// Status reports the engine's cache and index state.
type Status struct {
	ItemCount      int64     `json:"items"`
	EmbeddingCount int64     `json:"embeddings"`
	Loaded         bool      `json:"loaded"`
	RankerSize     int       `json:"ranker_size"`
	Dimensions     int       `json:"dimensions"`
	LoadedAt       time.Time `json:"loaded_at,omitempty"`
	Driver         string    `json:"driver"`
	KeywordDocs    uint64    `json:"keyword_docs"`
}

// Engine answers semantic and keyword queries over the item catalog.
//
// Embeddings are loaded from the store once, on first use, into an in-memory
// ranker owned by the Engine. Reload rebuilds that ranker (and the keyword
// index) from the store; nothing else mutates it.
type Engine struct {
	store        storage.Store
	embedder     embedding.Embedder
	keywordIndex keyword.Index
	spell        *keyword.SpellChecker
	cfg          *config.SearchConfig

	mu       sync.RWMutex
	loadOnce sync.Once
	ranker   *ranking.Ranker
	loadErr  error
	loadedAt time.Time
}

// NewEngine creates a search engine with the given dependencies. keywordIndex
// may be nil, in which case keyword queries fall back to the store's LIKE
// search and no spelling suggestions are offered.
func NewEngine(
	store storage.Store,
	embedder embedding.Embedder,
	keywordIndex keyword.Index,
	cfg *config.SearchConfig,
) *Engine {
	e := &Engine{
		store:        store,
		embedder:     embedder,
		keywordIndex: keywordIndex,
		cfg:          cfg,
	}
	if td, ok := keywordIndex.(keyword.TermDictionary); ok {
		e.spell = keyword.NewSpellChecker(td, keyword.WithMaxSuggestions(3))
	}
	return e
}

// Reload replaces the in-memory ranker with a fresh load from the store and
// rebuilds the keyword index to match. Safe to call while queries are in
// flight; they keep using the old ranker until the swap.
func (e *Engine) Reload(ctx context.Context) error {
	embs, err := e.store.LoadEmbeddings(ctx)
	if err != nil {
		return e.failLoad(fmt.Errorf("failed to load embeddings: %w", err))
	}
	r, err := ranking.NewRanker(embs)
	if err != nil {
		return e.failLoad(fmt.Errorf("failed to build ranker: %w", err))
	}

	e.mu.Lock()
	e.ranker = r
	e.loadErr = nil
	e.loadedAt = time.Now()
	e.mu.Unlock()

	if e.keywordIndex != nil {
		items, err := e.store.ListItems(ctx, 0, 0)
		if err != nil {
			return fmt.Errorf("failed to list items for keyword index: %w", err)
		}
		if err := e.keywordIndex.Rebuild(ctx, items); err != nil {
			return fmt.Errorf("failed to rebuild keyword index: %w", err)
		}
		if e.spell != nil {
			if err := e.spell.RefreshCache(); err != nil {
				return fmt.Errorf("failed to refresh spell cache: %w", err)
			}
		}
	}
	return nil
}

func (e *Engine) failLoad(err error) error {
	e.mu.Lock()
	e.loadErr = err
	e.mu.Unlock()
	return err
}

func (e *Engine) ensureLoaded(ctx context.Context) error {
	e.loadOnce.Do(func() {
		_ = e.Reload(ctx)
	})
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loadErr
}

// Semantic embeds the query and returns the top-k most similar items.
func (e *Engine) Semantic(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	startTime := time.Now()
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if err := e.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	queryVec, err := e.embedder.Embed(ctx, query.Query)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}

	results, err := e.rank(ctx, queryVec, query.TopK)
	if err != nil {
		return nil, err
	}

	minSim := query.MinSimilarity
	if minSim <= 0 {
		minSim = e.cfg.MinSimilarity
	}
	results = ranking.FilterByMinSimilarity(results, minSim)
	if results == nil {
		results = []*models.RankedResult{}
	}

	return &models.SearchResponse{
		Query:      query.Query,
		Results:    results,
		MatchCount: len(results),
		QueryTime:  time.Since(startTime).Milliseconds(),
	}, nil
}

func (e *Engine) rank(ctx context.Context, queryVec []float32, topK int) ([]*models.RankedResult, error) {
	if e.cfg.Pushdown {
		if ps, ok := e.store.(SimilaritySearcher); ok {
			results, err := ps.SearchSimilar(ctx, queryVec, topK)
			if err != nil {
				return nil, fmt.Errorf("similarity pushdown failed: %w", err)
			}
			if len(results) == 0 {
				count, cerr := e.store.CountEmbeddings(ctx)
				if cerr == nil && count == 0 {
					return nil, ranking.ErrNoData
				}
			}
			return results, nil
		}
	}

	e.mu.RLock()
	r := e.ranker
	e.mu.RUnlock()
	return r.Rank(queryVec, topK)
}

// Keyword matches items containing any of the query's words. An empty query
// is answered with a prompt instead of an error; a query matching nothing
// gets spelling suggestions when the vocabulary offers any.
func (e *Engine) Keyword(ctx context.Context, rawQuery string, limit int) (*models.KeywordResponse, error) {
	startTime := time.Now()
	resp := &models.KeywordResponse{Results: []*models.Item{}}

	q := strings.TrimSpace(rawQuery)
	if q == "" {
		resp.Message = "Type something to search."
		resp.QueryTime = time.Since(startTime).Milliseconds()
		return resp, nil
	}
	if limit <= 0 {
		limit = e.cfg.KeywordLimit
	}

	if e.keywordIndex != nil {
		hits, err := e.keywordIndex.Search(ctx, q, limit)
		if err != nil {
			return nil, fmt.Errorf("keyword search failed: %w", err)
		}
		for _, hit := range hits {
			item, err := e.store.GetItem(ctx, hit.ID)
			if err != nil {
				continue
			}
			resp.Results = append(resp.Results, item)
		}
	} else {
		items, err := e.store.SearchItems(ctx, queryTokens(q), limit)
		if err != nil {
			return nil, fmt.Errorf("keyword search failed: %w", err)
		}
		resp.Results = append(resp.Results, items...)
	}

	if len(resp.Results) == 0 && e.spell != nil {
		resp.Suggestions = e.spell.GetTopSuggestions(q, 3)
	}
	resp.MatchCount = len(resp.Results)
	resp.QueryTime = time.Since(startTime).Milliseconds()
	return resp, nil
}

// Status reports catalog counts and the state of the in-memory caches.
func (e *Engine) Status(ctx context.Context) (*Status, error) {
	itemCount, err := e.store.CountItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}
	embCount, err := e.store.CountEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count embeddings: %w", err)
	}

	st := &Status{
		ItemCount:      itemCount,
		EmbeddingCount: embCount,
		Driver:         e.store.Driver(),
	}

	e.mu.RLock()
	if e.ranker != nil {
		st.Loaded = true
		st.RankerSize = e.ranker.Size()
		st.Dimensions = e.ranker.Dimensions()
		st.LoadedAt = e.loadedAt
	}
	e.mu.RUnlock()

	if e.keywordIndex != nil {
		if n, err := e.keywordIndex.DocCount(); err == nil {
			st.KeywordDocs = n
		}
	}
	return st, nil
}

// queryTokens mirrors the LIKE fallback semantics: the whole query plus each
// of its words, deduplicated.
func queryTokens(q string) []string {
	seen := map[string]struct{}{q: {}}
	tokens := []string{q}
	for _, w := range strings.Fields(q) {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		tokens = append(tokens, w)
	}
	return tokens
}
