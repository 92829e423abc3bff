// Package ranking scores indexed documents against a query.
//
// A score is the sum of three weighted terms: keyword overlap, an optional similarity
// term, and a recency bonus. The weights are not normalized, so a perfect document
// can exceed 1.
package ranking

import (
	"time"

	"github.com/nathbrawlstatsr-afk/cours/internal/models"
)

// AnalyzedQuery is a query prepared once and reused for every document.
type AnalyzedQuery struct {
	// Original is the raw query string.
	Original string
	// Keywords are extracted with the same extractor and limit as documents.
	Keywords []string
	// Words are the distinct query tokens longer than two runes.
	Words map[string]struct{}
	// Vector is the query embedding, when an embedder was available.
	Vector []float32
}

// ScoringContext carries everything a Scorer needs for one (query, document) pair.
type ScoringContext struct {
	Query         *AnalyzedQuery
	Document      *models.IndexedDocument
	Now           time.Time
	UseSimilarity bool
}

// Scorer computes one raw score component, usually in [0,1].
type Scorer interface {
	Score(ctx *ScoringContext) float64
	Name() string
}

// ScoreBreakdown holds the weighted terms that make up a final score.
type ScoreBreakdown struct {
	Keyword    float64 `json:"keyword"`
	Similarity float64 `json:"similarity"`
	Recency    float64 `json:"recency"`
	Total      float64 `json:"total"`
	// SimilarityApplied is false when the similarity term was skipped.
	SimilarityApplied bool `json:"similarity_applied"`
}
