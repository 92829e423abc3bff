package ranking

import (
	"time"

	"github.com/nathbrawlstatsr-afk/cours/internal/models"
)

// Ranker combines the keyword, similarity, and recency scorers with their weights.
type Ranker struct {
	config     *Config
	analyzer   *QueryAnalyzer
	keyword    Scorer
	similarity *SimilarityScorer
	recency    Scorer
	clock      func() time.Time
}

// RankerOption configures a Ranker.
type RankerOption func(*Ranker)

// WithSimilarity replaces the default WordOverlap similarity function.
func WithSimilarity(fn SimilarityFunc) RankerOption {
	return func(r *Ranker) { r.similarity = NewSimilarityScorer(fn) }
}

// WithClock sets the time source used for recency.
func WithClock(clock func() time.Time) RankerOption {
	return func(r *Ranker) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithMaxKeywords sets how many keywords are extracted from queries.
func WithMaxKeywords(n int) RankerOption {
	return func(r *Ranker) { r.analyzer = NewQueryAnalyzer(n) }
}

// NewRanker creates a Ranker. A nil config uses DefaultConfig.
func NewRanker(config *Config, opts ...RankerOption) *Ranker {
	if config == nil {
		config = DefaultConfig()
	}
	config.ApplyDefaults()
	r := &Ranker{
		config:     config,
		analyzer:   NewQueryAnalyzer(0),
		keyword:    KeywordScorer{},
		similarity: NewSimilarityScorer(nil),
		recency:    NewRecencyScorer(config.RecencyWindow),
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AnalyzeQuery prepares query for repeated scoring.
func (r *Ranker) AnalyzeQuery(query string) *AnalyzedQuery {
	return r.analyzer.Analyze(query)
}

// Now returns the ranker's current time. Callers scoring many documents should take it
// once so every document ages against the same instant.
func (r *Ranker) Now() time.Time {
	return r.clock()
}

// Score returns the final score of doc for query at the current time.
func (r *Ranker) Score(query *AnalyzedQuery, doc *models.IndexedDocument, useSimilarity bool) float64 {
	return r.ScoreAt(query, doc, useSimilarity, r.clock())
}

// ScoreAt is Score with an explicit evaluation time.
func (r *Ranker) ScoreAt(query *AnalyzedQuery, doc *models.IndexedDocument, useSimilarity bool, now time.Time) float64 {
	return r.breakdown(&ScoringContext{Query: query, Document: doc, Now: now, UseSimilarity: useSimilarity}).Total
}

// ScoreWithBreakdown returns each weighted term alongside the total.
func (r *Ranker) ScoreWithBreakdown(query *AnalyzedQuery, doc *models.IndexedDocument, useSimilarity bool) *ScoreBreakdown {
	return r.breakdown(&ScoringContext{Query: query, Document: doc, Now: r.clock(), UseSimilarity: useSimilarity})
}

func (r *Ranker) breakdown(ctx *ScoringContext) *ScoreBreakdown {
	b := &ScoreBreakdown{
		Keyword: *r.config.KeywordWeight * r.keyword.Score(ctx),
		Recency: *r.config.RecencyWeight * r.recency.Score(ctx),
	}
	if r.similarity.Applies(ctx) {
		b.SimilarityApplied = true
		b.Similarity = *r.config.SimilarityWeight * r.similarity.Score(ctx)
	}
	b.Total = b.Keyword + b.Similarity + b.Recency
	return b
}
