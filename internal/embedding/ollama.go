package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mulefish/search-toy/internal/vector"
)

// OllamaConfig holds the connection settings for an Ollama endpoint.
type OllamaConfig struct {
	BaseURL string // e.g. http://localhost:11434 or https://ollama.com
	Model   string // e.g. all-minilm
	Token   string // Bearer token for Ollama Cloud (empty = no auth)
}

// OllamaEmbedder produces embeddings through the Ollama REST API. Responses
// are re-normalized to unit length before caching.
type OllamaEmbedder struct {
	cfg        OllamaConfig
	dimensions int
	cache      *EmbeddingCache
	httpClient *http.Client
}

// NewOllamaEmbedder creates an Ollama-backed embedder. No network call is
// made here; use Ping to verify the endpoint is reachable.
func NewOllamaEmbedder(cfg OllamaConfig, dimensions, cacheSize int) (*OllamaEmbedder, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("ollama base URL is empty")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = "all-minilm"
	}
	return &OllamaEmbedder{
		cfg:        cfg,
		dimensions: dimensions,
		cache:      NewEmbeddingCache(cacheSize),
		httpClient: &http.Client{},
	}, nil
}

// Ping checks that the Ollama endpoint answers.
func (e *OllamaEmbedder) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.cfg.BaseURL+"/", nil)
	if err != nil {
		return err
	}
	if e.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+e.cfg.Token)
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama unreachable: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("ollama unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// Embed returns the embedding for text, using cache when available.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := e.cache.Get(text); ok {
		return cached, nil
	}

	body, err := e.post(ctx, map[string]interface{}{
		"model": e.cfg.Model,
		"input": text,
	})
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}

	var resp struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("ollama embed decode: %w", err)
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("ollama embed: empty response")
	}

	emb := resp.Embeddings[0]
	if err := e.checkDimensions(emb); err != nil {
		return nil, err
	}
	vector.Normalize(emb)
	e.cache.Set(text, emb)
	return emb, nil
}

// EmbedBatch embeds multiple texts in one call.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := e.post(ctx, map[string]interface{}{
		"model": e.cfg.Model,
		"input": texts,
	})
	if err != nil {
		return nil, fmt.Errorf("ollama embed batch: %w", err)
	}

	var resp struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("ollama embed batch decode: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama embed batch: got %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}

	for i, emb := range resp.Embeddings {
		if err := e.checkDimensions(emb); err != nil {
			return nil, err
		}
		vector.Normalize(emb)
		e.cache.Set(texts[i], emb)
	}
	return resp.Embeddings, nil
}

func (e *OllamaEmbedder) checkDimensions(emb []float32) error {
	if e.dimensions > 0 && len(emb) != e.dimensions {
		return fmt.Errorf("ollama returned %d dimensions, expected %d", len(emb), e.dimensions)
	}
	return nil
}

// Dimensions returns the configured embedding dimension.
func (e *OllamaEmbedder) Dimensions() int {
	return e.dimensions
}

// Close releases idle connections.
func (e *OllamaEmbedder) Close() error {
	e.httpClient.CloseIdleConnections()
	return nil
}

// post sends a JSON POST to the embed endpoint (with optional bearer token).
func (e *OllamaEmbedder) post(ctx context.Context, payload interface{}) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BaseURL+"/api/embed", bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+e.cfg.Token)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama API error (%d): %s", resp.StatusCode, string(body))
	}
	return io.ReadAll(resp.Body)
}
