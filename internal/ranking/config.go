package ranking

import "time"

// Config holds the scoring weights. The defaults deliberately sum to 1.1. A nil weight
// takes its default; an explicit 0 switches the term off.
type Config struct {
	KeywordWeight    *float64      `yaml:"keyword_weight"`    // default: 0.6
	SimilarityWeight *float64      `yaml:"similarity_weight"` // default: 0.4
	RecencyWeight    *float64      `yaml:"recency_weight"`    // default: 0.1
	RecencyWindow    time.Duration `yaml:"recency_window"`    // default: 720h (30 days)
}

// Weight returns a pointer to w, for building a Config literal.
func Weight(w float64) *float64 {
	return &w
}

// DefaultConfig returns the default weights.
func DefaultConfig() *Config {
	return &Config{
		KeywordWeight:    Weight(0.6),
		SimilarityWeight: Weight(0.4),
		RecencyWeight:    Weight(0.1),
		RecencyWindow:    30 * 24 * time.Hour,
	}
}

// ApplyDefaults fills unset weights and a non-positive window with defaults.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.KeywordWeight == nil {
		c.KeywordWeight = d.KeywordWeight
	}
	if c.SimilarityWeight == nil {
		c.SimilarityWeight = d.SimilarityWeight
	}
	if c.RecencyWeight == nil {
		c.RecencyWeight = d.RecencyWeight
	}
	if c.RecencyWindow <= 0 {
		c.RecencyWindow = d.RecencyWindow
	}
}
