// Package config provides configuration loading and structs for the bunko server.
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
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Answer    AnswerConfig    `yaml:"answer"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the artifact file area, the relational database path,
// and which vector store backends to write and read.
type StorageConfig struct {
	DataDir      string   `yaml:"data_dir"`
	DatabasePath string   `yaml:"database_path"`
	Backends     []string `yaml:"backends"`       // backends written by indexing: "pairfile", "sqlite"
	ReadBackend  string   `yaml:"read_backend"`   // backend retrieval reads from
}

// EmbeddingConfig holds embedding model settings.
type EmbeddingConfig struct {
	Provider          string `yaml:"provider"` // "ollama", "onnx", or "hash"
	Model             string `yaml:"model"`
	BaseURL           string `yaml:"base_url"`
	ModelPath         string `yaml:"model_path"` // onnx provider only
	Dimensions        int    `yaml:"dimensions"`
	MaxTokens         int    `yaml:"max_tokens"`
	CacheSize         int    `yaml:"cache_size"`
	Workers           int    `yaml:"workers"`
	MinBatch          int    `yaml:"min_batch"`
	ParallelThreshold int    `yaml:"parallel_threshold"`
}

// ChunkingConfig holds default chunking and normalization settings.
type ChunkingConfig struct {
	ChunkSize       int   `yaml:"chunk_size"`
	Overlap         int   `yaml:"overlap"`
	AggressiveClean *bool `yaml:"aggressive_clean"`
}

// AggressiveCleanOrDefault returns whether aggressive normalization is enabled;
// defaults to true when unset.
func (c *ChunkingConfig) AggressiveCleanOrDefault() bool {
	if c.AggressiveClean != nil {
		return *c.AggressiveClean
	}
	return true
}

// RetrievalConfig holds retrieval settings.
type RetrievalConfig struct {
	DefaultTopK int    `yaml:"default_top_k"`
	MaxTopK     int    `yaml:"max_top_k"`
	DefaultOrg  string `yaml:"default_org"`
}

// AnswerConfig holds answer-generation settings.
type AnswerConfig struct {
	Provider  string `yaml:"provider"` // "groq" (OpenAI-compatible) or "ollama"
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// WatchConfig holds inbox directory watch settings.
type WatchConfig struct {
	Inbox      string   `yaml:"inbox"`
	Extensions []string `yaml:"extensions"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DataDir = expandPath(cfg.Storage.DataDir, configDir)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	if cfg.Watch.Inbox != "" {
		cfg.Watch.Inbox = expandPath(cfg.Watch.Inbox, configDir)
	}

	return &cfg, nil
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
