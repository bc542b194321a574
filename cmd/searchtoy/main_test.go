package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/mulefish/search-toy/internal/cli"
	"github.com/mulefish/search-toy/internal/config"
)

func TestSearchArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after query are moved first",
			args:     []string{"I would like to relax", "-top-k", "3"},
			expected: []string{"-top-k", "3", "I would like to relax"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-top-k", "3", "I would like to relax"},
			expected: []string{"-top-k", "3", "I would like to relax"},
		},
		{
			name:     "query only returns unchanged",
			args:     []string{"I would like to relax"},
			expected: []string{"I would like to relax"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"something", "fruity", "-min-similarity", "0.3"},
			expected: []string{"-min-similarity", "0.3", "something", "fruity"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := searchArgsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("searchArgsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"indica"}, "indica"},
		{"multiple words", []string{"something", "fruity"}, "something fruity"},
		{"single quoted phrase", []string{"something fruity"}, "something fruity"},
		{"four words", []string{"I", "would", "like", "energy"}, "I would like energy"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
		{"one space", []string{" "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildSearchQuery(tt.args)
			if got != tt.expected {
				t.Errorf("buildSearchQuery(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in     string
		want   cli.SearchOutputFormat
		wantOK bool
	}{
		{"text", cli.OutputText, true},
		{"json", cli.OutputJSON, true},
		{"yaml", cli.OutputText, false},
		{"", cli.OutputText, false},
	}
	for _, tt := range tests {
		got, ok := parseOutputFormat(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("parseOutputFormat(%q) = %v, %t; want %v, %t", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
storage:
  database_path: "./test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while configPath from t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s (canon %s), want %s (canon %s)", resolved, resolvedCanon, configPath, configPathCanon)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "./test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
}

func TestNewEmbedder_mockProvider(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Embedding.Provider = "mock"

	emb := newEmbedder(cfg, zap.NewNop())
	defer emb.Close()
	if emb.Dimensions() != cfg.Embedding.Dimensions {
		t.Errorf("Dimensions() = %d, want %d", emb.Dimensions(), cfg.Embedding.Dimensions)
	}
}

func TestNewEmbedder_unknownProviderFallsBackToMock(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Embedding.Provider = "quantum"

	emb := newEmbedder(cfg, zap.NewNop())
	defer emb.Close()
	if emb == nil {
		t.Fatal("expected a fallback embedder")
	}
	if emb.Dimensions() != cfg.Embedding.Dimensions {
		t.Errorf("Dimensions() = %d, want %d", emb.Dimensions(), cfg.Embedding.Dimensions)
	}
}
