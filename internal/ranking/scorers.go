package ranking

import "time"

// KeywordScorer scores the fraction of query keywords found among the document keywords.
// A query without keywords scores 0.
type KeywordScorer struct{}

func (KeywordScorer) Name() string { return "keyword" }

func (KeywordScorer) Score(ctx *ScoringContext) float64 {
	if ctx.Query == nil || ctx.Document == nil {
		return 0
	}
	matches := 0
	for _, kw := range ctx.Query.Keywords {
		if ctx.Document.HasKeyword(kw) {
			matches++
		}
	}
	denom := len(ctx.Query.Keywords)
	if denom == 0 {
		denom = 1
	}
	return float64(matches) / float64(denom)
}

// SimilarityScorer delegates to a SimilarityFunc. It scores 0 unless similarity was
// requested and the document carries a similarity vector.
type SimilarityScorer struct {
	fn SimilarityFunc
}

// NewSimilarityScorer wraps fn; nil selects WordOverlap.
func NewSimilarityScorer(fn SimilarityFunc) *SimilarityScorer {
	if fn == nil {
		fn = WordOverlap
	}
	return &SimilarityScorer{fn: fn}
}

func (s *SimilarityScorer) Name() string { return "similarity" }

// Applies reports whether the similarity term takes part for this context.
func (s *SimilarityScorer) Applies(ctx *ScoringContext) bool {
	return ctx.UseSimilarity && ctx.Document != nil && ctx.Document.HasSimilarityVector()
}

func (s *SimilarityScorer) Score(ctx *ScoringContext) float64 {
	if !s.Applies(ctx) || ctx.Query == nil {
		return 0
	}
	return clamp01(s.fn(ctx.Query, ctx.Document))
}

// RecencyScorer decays linearly from 1 at insertion to 0 at the end of the window.
type RecencyScorer struct {
	window time.Duration
}

// NewRecencyScorer returns a scorer with the given decay window.
func NewRecencyScorer(window time.Duration) *RecencyScorer {
	return &RecencyScorer{window: window}
}

func (r *RecencyScorer) Name() string { return "recency" }

func (r *RecencyScorer) Score(ctx *ScoringContext) float64 {
	if ctx.Document == nil || r.window <= 0 {
		return 0
	}
	age := ctx.Now.Sub(ctx.Document.IndexedAt)
	if age < 0 {
		age = 0
	}
	v := 1 - float64(age)/float64(r.window)
	if v < 0 {
		return 0
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
