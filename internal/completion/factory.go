package completion

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/nathbrawlstatsr-afk/cours/internal/config"
)

// New returns the client selected by cfg.Provider. A missing OpenAI key selects Offline.
func New(cfg *config.CompletionConfig, logger *zap.Logger) (Client, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		if cfg.APIKey == "" {
			return Offline{}, nil
		}
		return NewOpenAIClient(cfg, logger), nil
	case config.ProviderLangChain:
		return NewLangChainClient(cfg, logger)
	case config.ProviderOffline, "":
		return Offline{}, nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}
}
