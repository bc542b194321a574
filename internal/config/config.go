// Package config provides configuration loading and structs for the search server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the host:port address for the HTTP server.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig holds database and index locations.
type StorageConfig struct {
	// Driver selects the backend: "sqlite3" or "postgres". Empty means infer
	// from the DSN.
	Driver         string `yaml:"driver"`
	DatabasePath   string `yaml:"database_path"`
	DatabaseURL    string `yaml:"database_url"`
	BleveIndexPath string `yaml:"bleve_index_path"`
}

// DSN returns the data source to hand the storage factory: the Postgres URL
// when one is configured, the SQLite path otherwise.
func (s *StorageConfig) DSN() string {
	if s.DatabaseURL != "" {
		return s.DatabaseURL
	}
	return s.DatabasePath
}

// EmbeddingConfig holds embedder settings.
type EmbeddingConfig struct {
	// Provider selects the embedder: "ollama", "onnx", or "mock".
	Provider   string `yaml:"provider"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Token      string `yaml:"token"`
	ModelPath  string `yaml:"model_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
}

// SearchConfig holds ranking settings.
type SearchConfig struct {
	// MinSimilarity drops semantic results scoring below it. Zero keeps
	// everything.
	MinSimilarity float64 `yaml:"min_similarity"`
	KeywordLimit  int     `yaml:"keyword_limit"`
	// Pushdown ranks inside the database when the backend supports it
	// (Postgres with pgvector) instead of in memory.
	Pushdown bool `yaml:"pushdown"`
}

// WatchConfig holds database watch settings.
type WatchConfig struct {
	Enabled    *bool `yaml:"enabled"`
	DebounceMS int   `yaml:"debounce_ms"`
}

// EnabledOrDefault returns whether to watch the database; defaults to true
// when unset.
func (w *WatchConfig) EnabledOrDefault() bool {
	if w.Enabled != nil {
		return *w.Enabled
	}
	return true
}

// Load reads and parses the config file at path, applies environment
// overrides and defaults, and expands paths. Returns an error if the file
// cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides lets environment variables win over the config file, so
// deployment secrets stay out of YAML.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Storage.DatabaseURL = v
	}
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		cfg.Embedding.BaseURL = v
	}
	if v := os.Getenv("OLLAMA_EMBED_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("OLLAMA_EMBED_TOKEN"); v != "" {
		cfg.Embedding.Token = v
	}
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
