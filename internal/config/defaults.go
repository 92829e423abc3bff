package config

import "time"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 60 * time.Second
	}

	if cfg.Completion.Provider == "" {
		// No credential means mock mode: every call site answers with its fallback.
		if cfg.Completion.APIKey == "" {
			cfg.Completion.Provider = ProviderOffline
		} else {
			cfg.Completion.Provider = ProviderOpenAI
		}
	}
	if cfg.Completion.BaseURL == "" && cfg.Completion.Provider == ProviderOpenAI {
		cfg.Completion.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Completion.Model == "" {
		cfg.Completion.Model = "gpt-3.5-turbo"
	}
	if cfg.Completion.Temperature == 0 {
		cfg.Completion.Temperature = 0.7
	}
	if cfg.Completion.MaxTokens == 0 {
		cfg.Completion.MaxTokens = 4000
	}
	if cfg.Completion.Timeout == 0 {
		cfg.Completion.Timeout = 30 * time.Second
	}

	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = EmbeddingNone
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.Workers == 0 {
		cfg.Embedding.Workers = 4
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DriverSQLite
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "/usr/local/var/cours/data"
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/cours/data/db/cours.db"
	}
	if cfg.Storage.BadgerPath == "" {
		cfg.Storage.BadgerPath = "/usr/local/var/cours/data/badger"
	}
	if cfg.Storage.KeyPrefix == "" {
		cfg.Storage.KeyPrefix = "cours:"
	}

	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 10
	}
	if cfg.Search.DefaultThreshold == 0 {
		cfg.Search.DefaultThreshold = 0.3
	}
	if cfg.Search.MaxKeywords == 0 {
		cfg.Search.MaxKeywords = 10
	}
	if cfg.Search.KeywordWeight == nil {
		cfg.Search.KeywordWeight = weight(0.6)
	}
	if cfg.Search.SimilarityWeight == nil {
		cfg.Search.SimilarityWeight = weight(0.4)
	}
	if cfg.Search.RecencyWeight == nil {
		cfg.Search.RecencyWeight = weight(0.1)
	}
	if cfg.Search.RecencyWindow == 0 {
		cfg.Search.RecencyWindow = 30 * 24 * time.Hour
	}
	if cfg.Search.SpellDistance == 0 {
		cfg.Search.SpellDistance = 2
	}

	if cfg.Catalog.Path == "" {
		cfg.Catalog.Demo = true
	}

	if cfg.Materials.Extensions == nil {
		cfg.Materials.Extensions = []string{".txt", ".md", ".rst", ".pdf", ".docx", ".xlsx", ".pptx", ".odt", ".rtf"}
	}
	if cfg.Materials.Subject == "" {
		cfg.Materials.Subject = "general"
	}
	if cfg.Materials.ChunkSize == 0 {
		cfg.Materials.ChunkSize = 200
	}
	if cfg.Materials.ChunkOverlap == 0 {
		cfg.Materials.ChunkOverlap = 20
	}
	if cfg.Materials.Debounce == 0 {
		cfg.Materials.Debounce = 500 * time.Millisecond
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Materials.Directories) > 0 && cfg.Materials.Recursive == nil {
		t := true
		cfg.Materials.Recursive = &t
	}

	if cfg.Content.Workers == 0 {
		cfg.Content.Workers = 4
	}
}

func weight(w float64) *float64 {
	return &w
}
