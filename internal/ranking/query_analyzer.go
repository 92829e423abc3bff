package ranking

import "github.com/nathbrawlstatsr-afk/cours/internal/keyword"

// minSimilarityWordLen is exclusive: similarity words have more runes than this.
const minSimilarityWordLen = 2

// QueryAnalyzer prepares queries for scoring.
type QueryAnalyzer struct {
	maxKeywords int
}

// NewQueryAnalyzer returns an analyzer extracting maxKeywords keywords (default 10).
func NewQueryAnalyzer(maxKeywords int) *QueryAnalyzer {
	if maxKeywords <= 0 {
		maxKeywords = keyword.DefaultMaxKeywords
	}
	return &QueryAnalyzer{maxKeywords: maxKeywords}
}

// Analyze extracts the keywords and word set of query.
func (a *QueryAnalyzer) Analyze(query string) *AnalyzedQuery {
	return &AnalyzedQuery{
		Original: query,
		Keywords: keyword.Extract(query, a.maxKeywords),
		Words:    keyword.WordSet(query, minSimilarityWordLen),
	}
}
