// Package embedding turns document text into vectors so the ranker can apply its
// similarity term. Providers are a remote OpenAI-compatible API and a deterministic mock.
package embedding

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nathbrawlstatsr-afk/cours/internal/config"
)

// Embedder produces one vector per input text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// New returns the embedder selected by cfg, wrapped in an LRU cache when CacheSize > 0.
// Provider "none" returns a nil Embedder and no error.
func New(cfg *config.EmbeddingConfig, logger *zap.Logger) (Embedder, error) {
	var e Embedder
	switch cfg.Provider {
	case config.EmbeddingNone, "":
		return nil, nil
	case config.EmbeddingMock:
		e = NewMockEmbedder(cfg.Dimensions)
	case config.EmbeddingOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("embedding provider %q requires an API key", cfg.Provider)
		}
		e = NewOpenAIEmbedder(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
	if cfg.CacheSize > 0 {
		e = NewCachedEmbedder(e, cfg.CacheSize)
	}
	return e, nil
}
