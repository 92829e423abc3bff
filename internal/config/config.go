// Package config provides configuration loading and structs for the cours server and CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Completion CompletionConfig `yaml:"completion"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Storage    StorageConfig    `yaml:"storage"`
	Search     SearchConfig     `yaml:"search"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Materials  MaterialsConfig  `yaml:"materials"`
	Content    ContentConfig    `yaml:"content"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Completion providers.
const (
	ProviderOpenAI    = "openai"
	ProviderLangChain = "langchain"
	ProviderOffline   = "offline"
)

// CompletionConfig selects and tunes the language-model provider.
type CompletionConfig struct {
	Provider    string        `yaml:"provider"`
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Embedding providers.
const (
	EmbeddingNone   = "none"
	EmbeddingMock   = "mock"
	EmbeddingOpenAI = "openai"
)

// EmbeddingConfig holds the optional document embedder settings. With provider "none"
// documents carry no vector and the similarity term never applies.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	CacheSize  int    `yaml:"cache_size"`
	Workers    int    `yaml:"workers"`
}

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// StorageConfig selects the key-value store backing sessions, history, and the catalog.
type StorageConfig struct {
	Driver        string `yaml:"driver"`
	DataDir       string `yaml:"data_dir"`
	DatabasePath  string `yaml:"database_path"`
	BadgerPath    string `yaml:"badger_path"`
	InMemory      bool   `yaml:"in_memory"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	KeyPrefix     string `yaml:"key_prefix"`
}

// SearchConfig holds search defaults and ranking weights. Unset weights take their defaults;
// an explicit 0 turns a scoring term off.
type SearchConfig struct {
	DefaultLimit     int           `yaml:"default_limit"`
	DefaultThreshold float64       `yaml:"default_threshold"`
	MaxKeywords      int           `yaml:"max_keywords"`
	KeywordWeight    *float64      `yaml:"keyword_weight"`
	SimilarityWeight *float64      `yaml:"similarity_weight"`
	RecencyWeight    *float64      `yaml:"recency_weight"`
	RecencyWindow    time.Duration `yaml:"recency_window"`
	SpellDistance    int           `yaml:"spell_distance"`
}

// CatalogConfig points at the course catalog loaded into the index at startup.
// An empty Path with Demo set loads the built-in demo catalog.
type CatalogConfig struct {
	Path string `yaml:"path"`
	Demo bool   `yaml:"demo"`
}

// MaterialsConfig holds directory watch and chunking settings for course materials.
type MaterialsConfig struct {
	Directories  []string      `yaml:"directories"`
	Extensions   []string      `yaml:"extensions"`
	Recursive    *bool         `yaml:"recursive"`
	Subject      string        `yaml:"subject"`
	ChunkSize    int           `yaml:"chunk_size"`
	ChunkOverlap int           `yaml:"chunk_overlap"`
	Debounce     time.Duration `yaml:"debounce"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (m *MaterialsConfig) RecursiveOrDefault() bool {
	if m.Recursive != nil {
		return *m.Recursive
	}
	return true
}

// ContentConfig tunes content generation.
type ContentConfig struct {
	Workers int `yaml:"workers"`
}

// Load reads and parses the config file at path, expands ${VAR} references and paths,
// applies environment overrides, and fills defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyEnv(&cfg)
	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DataDir = expandPath(cfg.Storage.DataDir, configDir)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.BadgerPath = expandPath(cfg.Storage.BadgerPath, configDir)
	if cfg.Catalog.Path != "" {
		cfg.Catalog.Path = expandPath(cfg.Catalog.Path, configDir)
	}
	for i := range cfg.Materials.Directories {
		cfg.Materials.Directories[i] = expandPath(cfg.Materials.Directories[i], configDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads path when it exists and otherwise returns the defaults with
// environment overrides applied.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := &Config{}
		ApplyEnv(cfg)
		ApplyDefaults(cfg)
		return cfg, nil
	}
	return Load(path)
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// DefaultConfigPath returns ~/.config/cours/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "cours", "config.yaml")
}

// Validate reports settings that would fail later at wiring time.
func (c *Config) Validate() error {
	switch c.Completion.Provider {
	case ProviderOpenAI, ProviderLangChain, ProviderOffline:
	default:
		return fmt.Errorf("config: unknown completion provider %q", c.Completion.Provider)
	}
	switch c.Embedding.Provider {
	case EmbeddingNone, EmbeddingMock, EmbeddingOpenAI:
	default:
		return fmt.Errorf("config: unknown embedding provider %q", c.Embedding.Provider)
	}
	switch c.Storage.Driver {
	case DriverSQLite, DriverBadger, DriverRedis, DriverMemory:
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == DriverRedis && c.Storage.RedisAddr == "" {
		return errors.New("config: storage.redis_addr is required for the redis driver")
	}
	if c.Search.DefaultThreshold < 0 {
		return errors.New("config: search.default_threshold must not be negative")
	}
	for name, w := range map[string]*float64{
		"keyword_weight":    c.Search.KeywordWeight,
		"similarity_weight": c.Search.SimilarityWeight,
		"recency_weight":    c.Search.RecencyWeight,
	} {
		if w != nil && *w < 0 {
			return fmt.Errorf("config: search.%s must not be negative", name)
		}
	}
	if c.Materials.ChunkOverlap >= c.Materials.ChunkSize {
		return errors.New("config: materials.chunk_overlap must be smaller than chunk_size")
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) || path == ":memory:" {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if strings.HasPrefix(path, "~/") {
		path = path[2:]
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
