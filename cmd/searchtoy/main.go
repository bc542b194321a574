// Package main is the searchtoy CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mulefish/search-toy/internal/cli"
	"github.com/mulefish/search-toy/internal/config"
	"github.com/mulefish/search-toy/internal/embedding"
	"github.com/mulefish/search-toy/internal/keyword"
	"github.com/mulefish/search-toy/internal/models"
	"github.com/mulefish/search-toy/internal/search"
	"github.com/mulefish/search-toy/internal/seed"
	"github.com/mulefish/search-toy/internal/server"
	"github.com/mulefish/search-toy/internal/storage"
	"github.com/mulefish/search-toy/internal/watcher"
	"github.com/mulefish/search-toy/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/searchtoy/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "searchtoy server" from the project dir uses the project's config.
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "seed":
		runSeed()
	case "search":
		runSearch()
	case "keyword":
		runKeyword()
	case "items":
		runItems()
	case "status":
		runStatus()
	case "verify":
		runVerify()
	case "version", "--version", "-v":
		fmt.Printf("searchtoy version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (watcher events, request details)")
	_ = fs.Parse(os.Args[2:])

	_ = godotenv.Load()

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	// Warm the ranker and keyword index before serving. An empty catalog is
	// not fatal; queries answer with an explicit no-data error until seeded.
	if err := components.Engine.Reload(context.Background()); err != nil {
		logger.Warn("initial load failed", zap.Error(err))
	}

	var watchSvc *watcher.Watcher
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if components.Store.Driver() == "sqlite3" && cfg.Watch.EnabledOrDefault() {
		watchOpts := []watcher.Option{
			watcher.WithDebounce(time.Duration(cfg.Watch.DebounceMS) * time.Millisecond),
		}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		watchSvc = watcher.NewWatcher(cfg.Storage.DatabasePath, func() {
			if err := components.Engine.Reload(context.Background()); err != nil {
				logger.Warn("reload after database change failed", zap.Error(err))
				return
			}
			logger.Info("reloaded after database change")
		}, watchOpts...)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		logger.Info("watching database", zap.String("path", cfg.Storage.DatabasePath))
	}

	srv := server.NewServer(components.Engine, components.Store, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if watchSvc != nil {
		watchSvc.Stop()
	}
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runSeed() {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	components, cfg := mustInitDirect(*configPath)
	defer components.Close()

	err := seed.Run(context.Background(), components.Store, components.Embedder,
		components.KeywordIndex, cfg.Embedding.Model, components.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Seeding failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Seeded %d items (model %s, %d dimensions)\n",
		len(seed.Catalog()), cfg.Embedding.Model, components.Embedder.Dimensions())
}

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: searchtoy search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Results are ranked by cosine similarity between the query embedding and each
item's stored embedding; distance is 1 minus similarity.
  • --top-k controls how many results come back.
  • --min-similarity drops weak matches (0 keeps everything).

Examples:
  searchtoy search I would like to relax
  searchtoy search "I would like to relax"       # same as above
  searchtoy search --top-k 3 something fruity
  searchtoy search --min-similarity 0.3 --output json sleepy evening
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument, so "searchtoy search \"query\" -top-k 3"
// would otherwise leave -top-k unparsed.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func parseOutputFormat(s string) (cli.SearchOutputFormat, bool) {
	switch s {
	case "json":
		return cli.OutputJSON, true
	case "text":
		return cli.OutputText, true
	default:
		return cli.OutputText, false
	}
}

func runSearch() {
	searchArgs := searchArgsReorder(os.Args[2:])

	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPathFlag := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage when server is not running)")
	topK := fs.Int("top-k", 5, "number of results")
	minSimilarity := fs.Float64("min-similarity", 0, "drop results scoring below this (0 keeps everything)")
	outputFormat := fs.String("output", "text", "output format: text (human-readable) or json (parseable)")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgs)

	if fs.NArg() < 1 {
		printSearchUsage(fs)
		os.Exit(1)
	}
	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}

	format, ok := parseOutputFormat(*outputFormat)
	if !ok {
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	searchQuery := &models.SearchQuery{
		Query:         queryStr,
		TopK:          *topK,
		MinSimilarity: *minSimilarity,
	}

	if *serverURL != "" {
		// Use the HTTP API when the server is running (avoids a Bleve/SQLite
		// lock conflict and reuses the server's warm embedder).
		response, err := searchViaHTTP(*serverURL, searchQuery)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	components, _ := mustInitDirect(*configPathFlag)
	defer components.Close()

	response, err := components.Engine.Semantic(context.Background(), searchQuery)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL string, query *models.SearchQuery) (*models.SearchResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/search", "application/json", strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runKeyword() {
	args := searchArgsReorder(os.Args[2:])

	fs := flag.NewFlagSet("keyword", flag.ExitOnError)
	configPathFlag := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage when server is not running)")
	limit := fs.Int("limit", 0, "maximum results (0 = configured default)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(args)

	// An empty query is fine; the engine answers it with a prompt.
	queryStr := buildSearchQuery(fs.Args())

	format, ok := parseOutputFormat(*outputFormat)
	if !ok {
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	if *serverURL != "" {
		response, err := keywordViaHTTP(*serverURL, queryStr, *limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Keyword search failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteKeywordResults(os.Stdout, response, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	components, _ := mustInitDirect(*configPathFlag)
	defer components.Close()

	response, err := components.Engine.Keyword(context.Background(), queryStr, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Keyword search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteKeywordResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func keywordViaHTTP(serverURL, query string, limit int) (*models.KeywordResponse, error) {
	endpoint := serverURL + "/api/v1/keyword?q=" + url.QueryEscape(query)
	if limit > 0 {
		endpoint += fmt.Sprintf("&limit=%d", limit)
	}
	resp, err := http.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.KeywordResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runItems() {
	fs := flag.NewFlagSet("items", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	offset := fs.Int("offset", 0, "number of items to skip")
	limit := fs.Int("limit", 0, "maximum items (0 = all)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var items []*models.Item
	if *serverURL != "" {
		fetched, err := itemsViaHTTP(*serverURL, *offset, *limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "List items failed: %v\n", err)
			os.Exit(1)
		}
		items = fetched
	} else {
		components, _ := mustInitDirect(*configPath)
		defer components.Close()
		fetched, err := components.Store.ListItems(context.Background(), *offset, *limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "List items failed: %v\n", err)
			os.Exit(1)
		}
		items = fetched
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(items); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		cli.WriteItems(os.Stdout, items)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func itemsViaHTTP(serverURL string, offset, limit int) ([]*models.Item, error) {
	endpoint := fmt.Sprintf("%s/api/v1/items?offset=%d&limit=%d", serverURL, offset, limit)
	resp, err := http.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var out struct {
		Items []*models.Item `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out.Items, nil
}

// statusConfigResponse holds configuration info returned by status.
type statusConfigResponse struct {
	EmbeddingProvider   string  `json:"embedding_provider,omitempty"`
	EmbeddingModel      string  `json:"embedding_model,omitempty"`
	EmbeddingDimensions int     `json:"embedding_dimensions,omitempty"`
	DatabasePath        string  `json:"database_path,omitempty"`
	BleveIndexPath      string  `json:"bleve_index_path,omitempty"`
	MinSimilarity       float64 `json:"min_similarity,omitempty"`
	Pushdown            bool    `json:"pushdown,omitempty"`
}

// statusResponse is the shape of the GET /api/v1/status response.
type statusResponse struct {
	Items          int64                 `json:"items"`
	Embeddings     int64                 `json:"embeddings"`
	Loaded         bool                  `json:"loaded"`
	RankerSize     int                   `json:"ranker_size"`
	Dimensions     int                   `json:"dimensions"`
	Driver         string                `json:"driver"`
	KeywordDocs    uint64                `json:"keyword_docs"`
	DiskUsageBytes *int64                `json:"disk_usage_bytes,omitempty"`
	Config         *statusConfigResponse `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		components, cfg := mustInitDirect(*configPath)
		defer components.Close()

		st, err := components.Engine.Status(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{
			Items:       st.ItemCount,
			Embeddings:  st.EmbeddingCount,
			Loaded:      st.Loaded,
			RankerSize:  st.RankerSize,
			Dimensions:  st.Dimensions,
			Driver:      st.Driver,
			KeywordDocs: st.KeywordDocs,
			Config: &statusConfigResponse{
				EmbeddingProvider:   cfg.Embedding.Provider,
				EmbeddingModel:      cfg.Embedding.Model,
				EmbeddingDimensions: cfg.Embedding.Dimensions,
				DatabasePath:        cfg.Storage.DatabasePath,
				BleveIndexPath:      cfg.Storage.BleveIndexPath,
				MinSimilarity:       cfg.Search.MinSimilarity,
				Pushdown:            cfg.Search.Pushdown,
			},
		}
		diskBytes, err := storage.DiskUsageBytes(cfg.Storage.DatabasePath, cfg.Storage.BleveIndexPath)
		if err == nil {
			status.DiskUsageBytes = &diskBytes
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("items:            %d   # catalog rows\n", status.Items)
		fmt.Printf("embeddings:       %d   # stored vectors\n", status.Embeddings)
		fmt.Printf("ranker_size:      %d   # vectors in the in-memory ranker\n", status.RankerSize)
		fmt.Printf("loaded:           %t\n", status.Loaded)
		fmt.Printf("driver:           %s\n", status.Driver)
		fmt.Printf("keyword_docs:     %d\n", status.KeywordDocs)
		if status.DiskUsageBytes != nil {
			fmt.Printf("disk_usage_bytes: %d\n", *status.DiskUsageBytes)
		}
		if status.Config != nil {
			fmt.Println()
			fmt.Println("# configuration")
			fmt.Printf("embedding_provider: %s\n", status.Config.EmbeddingProvider)
			fmt.Printf("embedding_model:    %s\n", status.Config.EmbeddingModel)
			if status.Config.EmbeddingDimensions > 0 {
				fmt.Printf("embedding_dims:     %d\n", status.Config.EmbeddingDimensions)
			}
			if status.Config.DatabasePath != "" {
				fmt.Printf("database_path:      %s\n", status.Config.DatabasePath)
			}
			if status.Config.BleveIndexPath != "" {
				fmt.Printf("bleve_index_path:   %s\n", status.Config.BleveIndexPath)
			}
			fmt.Printf("min_similarity:     %g\n", status.Config.MinSimilarity)
			fmt.Printf("pushdown:           %t\n", status.Config.Pushdown)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// verifyCases are free-text queries with known best matches, used to
// smoke-test the semantic path end to end against a seeded catalog.
var verifyCases = []struct {
	query    string
	expected string
}{
	{"I would like to relax", "Indica Reverie"},
	{"Reuben kicked his donkey", "Nothing found"},
	{"2+2=0", "Nothing found"},
	{"Pick up the pace!", "Hybrid Flux"},
}

// verifyMinSimilarity is the floor below which the best hit counts as no
// match at all. Unrelated queries still score above zero against some item,
// so "found" needs a bar to clear.
const verifyMinSimilarity = 0.1

func runVerify() {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	components, _ := mustInitDirect(*configPath)
	defer components.Close()

	ctx := context.Background()
	failures := 0
	for _, tc := range verifyCases {
		resp, err := components.Engine.Semantic(ctx, &models.SearchQuery{Query: tc.query, TopK: 1})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Verify query %q failed: %v\n", tc.query, err)
			os.Exit(1)
		}
		found := "Nothing found"
		similarity, distance := 0.0, 1.0
		if len(resp.Results) > 0 {
			best := resp.Results[0]
			similarity, distance = best.Similarity, best.Distance
			if best.Similarity > verifyMinSimilarity {
				found = best.Name
			}
		}
		msg := fmt.Sprintf("Query: %q similarity=%.4f distance=%.4f found=%s",
			tc.query, similarity, distance, found)
		if !cli.Verdict(os.Stdout, tc.expected, found, msg) {
			failures++
		}
	}
	if failures > 0 {
		fmt.Printf("\n%d of %d checks failed\n", failures, len(verifyCases))
		os.Exit(1)
	}
	fmt.Printf("\nAll %d checks passed\n", len(verifyCases))
}

// Components holds initialized services.
type Components struct {
	Store        storage.Store
	Embedder     embedding.Embedder
	KeywordIndex keyword.Index
	Engine       *search.Engine
	Logger       *zap.Logger
}

func (c *Components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.KeywordIndex != nil {
		_ = c.KeywordIndex.Close()
	}
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}

// mustInitDirect loads config and builds components for direct-storage
// commands, exiting on any failure.
func mustInitDirect(configPath string) (*Components, *config.Config) {
	_ = godotenv.Load()

	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	return components, cfg
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewStore(cfg.Storage.Driver, cfg.Storage.DSN(), cfg.Embedding.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	embedder := newEmbedder(cfg, logger)

	// A missing or locked Bleve index degrades keyword search to the store's
	// substring matching instead of failing startup.
	var keywordIndex keyword.Index
	if cfg.Storage.BleveIndexPath != "" {
		idx, err := keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
		if err != nil {
			logger.Warn("keyword index unavailable, falling back to store search",
				zap.String("path", cfg.Storage.BleveIndexPath),
				zap.Error(err))
		} else {
			keywordIndex = idx
		}
	}

	engine := search.NewEngine(store, embedder, keywordIndex, &cfg.Search)

	return &Components{
		Store:        store,
		Embedder:     embedder,
		KeywordIndex: keywordIndex,
		Engine:       engine,
		Logger:       logger,
	}, nil
}

// newEmbedder builds the configured embedding provider, falling back to the
// deterministic mock when the real one is unreachable so the rest of the
// stack stays usable offline.
func newEmbedder(cfg *config.Config, logger *zap.Logger) embedding.Embedder {
	switch cfg.Embedding.Provider {
	case "ollama":
		ollama, err := embedding.NewOllamaEmbedder(embedding.OllamaConfig{
			BaseURL: cfg.Embedding.BaseURL,
			Model:   cfg.Embedding.Model,
			Token:   cfg.Embedding.Token,
		}, cfg.Embedding.Dimensions, cfg.Embedding.CacheSize)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			pingErr := ollama.Ping(ctx)
			cancel()
			if pingErr == nil {
				return ollama
			}
			logger.Warn("ollama unreachable, using mock embedder",
				zap.String("base_url", cfg.Embedding.BaseURL),
				zap.Error(pingErr))
			_ = ollama.Close()
		} else {
			logger.Warn("ollama embedder rejected config, using mock embedder", zap.Error(err))
		}
	case "onnx":
		onnx, err := embedding.NewONNXEmbedder(cfg.Embedding.ModelPath,
			cfg.Embedding.Dimensions, cfg.Embedding.MaxTokens, cfg.Embedding.CacheSize)
		if err == nil {
			return onnx
		}
		logger.Warn("onnx model unavailable, using mock embedder",
			zap.String("model_path", cfg.Embedding.ModelPath),
			zap.Error(err))
	case "mock", "":
	default:
		logger.Warn("unknown embedding provider, using mock embedder",
			zap.String("provider", cfg.Embedding.Provider))
	}
	return embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
}

func printUsage() {
	fmt.Println(`searchtoy - Semantic product catalog search

Usage:
  searchtoy server [flags]           Start the HTTP server
  searchtoy seed [flags]             Reset the database and load the sample catalog
  searchtoy search [flags] <query>   Semantic search over the catalog
  searchtoy keyword [flags] <query>  Keyword search over the catalog
  searchtoy items [flags]            List catalog items
  searchtoy status [flags]           Show engine/storage/index status
  searchtoy verify [flags]           Run canned queries and check expected matches
  searchtoy version                  Show version
  searchtoy help                     Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/searchtoy/config.yaml)
  --debug            Enable debug logging (watcher events, request details)

Search Flags:
  --config string           Config file path (for direct storage mode)
  --server string           Server URL (default: http://localhost:8080). Use empty (--server "") to use direct storage when server is not running.
  --top-k int               Number of results (default: 5)
  --min-similarity float    Drop results scoring below this (default: 0 = keep everything)
  --output string           Output format: text or json (default: text)

Keyword Flags:
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --limit int        Maximum results (0 = configured default)
  --output string    Output format: text or json (default: text)

Items Flags:
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --offset int       Number of items to skip
  --limit int        Maximum items (0 = all)

Status Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --output string    Output format: text or json (default: text)

Examples:
  searchtoy seed
  searchtoy server
  searchtoy search I would like to relax
  searchtoy search --output json "something fruity"
  searchtoy keyword indica
  searchtoy items --limit 10
  searchtoy status --output json
  searchtoy verify`)
}
