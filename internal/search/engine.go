// Package search ranks indexed documents against a query and enriches the results with
// highlights, suggestions, and alternative queries.
package search

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/nathbrawlstatsr-afk/cours/internal/completion"
	"github.com/nathbrawlstatsr-afk/cours/internal/keyword"
	"github.com/nathbrawlstatsr-afk/cours/internal/metrics"
	"github.com/nathbrawlstatsr-afk/cours/internal/models"
	"github.com/nathbrawlstatsr-afk/cours/internal/ranking"
)

// DocumentSource is the index snapshot the engine scans.
type DocumentSource interface {
	Documents() []*models.IndexedDocument
}

// QueryEmbedder produces the query vector used by vector similarity.
type QueryEmbedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Engine scans the index, scores each candidate, and returns the best matches.
type Engine struct {
	index       DocumentSource
	ranker      *ranking.Ranker
	highlighter *Highlighter
	embedder    QueryEmbedder
	completion  *completion.Fallback
	speller     *keyword.Speller
	logger      *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithHighlighter replaces the default <mark> highlighter.
func WithHighlighter(h *Highlighter) Option {
	return func(e *Engine) {
		if h != nil {
			e.highlighter = h
		}
	}
}

// WithEmbedder embeds queries when similarity is requested. Pair it with a ranker built
// with ranking.VectorSimilarity, otherwise the vector is ignored.
func WithEmbedder(emb QueryEmbedder) Option {
	return func(e *Engine) { e.embedder = emb }
}

// WithCompletion enables alternative-query suggestions in IntelligentSearch.
func WithCompletion(f *completion.Fallback) Option {
	return func(e *Engine) { e.completion = f }
}

// WithSpeller enables local spelling corrections in IntelligentSearch.
func WithSpeller(s *keyword.Speller) Option {
	return func(e *Engine) { e.speller = s }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates a search engine over index. A nil ranker uses the default weights.
func NewEngine(index DocumentSource, ranker *ranking.Ranker, opts ...Option) *Engine {
	if ranker == nil {
		ranker = ranking.NewRanker(nil)
	}
	e := &Engine{
		index:       index,
		ranker:      ranker,
		highlighter: NewHighlighter(),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search returns at most opts.Limit results scoring at least opts.Threshold, ordered by
// descending score. Ties keep index scan order. Documents failing any filter are skipped
// before scoring.
func (e *Engine) Search(ctx context.Context, query string, opts models.SearchOptions) ([]*models.SearchResult, error) {
	return e.search(ctx, query, opts, "search")
}

func (e *Engine) search(ctx context.Context, query string, opts models.SearchOptions, kind string) ([]*models.SearchResult, error) {
	start := time.Now()
	query, err := ProcessQuery(query, &opts)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(kind, "invalid").Inc()
		return nil, err
	}

	q := e.ranker.AnalyzeQuery(query)
	if opts.UseSimilarity {
		q.Vector = e.embedQuery(ctx, query)
	}

	now := e.ranker.Now()
	results := make([]*models.SearchResult, 0, opts.Limit)
	for _, doc := range e.index.Documents() {
		if !doc.Metadata.Matches(opts.Filters) {
			continue
		}
		score := e.ranker.ScoreAt(q, doc, opts.UseSimilarity, now)
		if score < opts.Threshold {
			continue
		}
		results = append(results, &models.SearchResult{
			DocumentID: doc.ID,
			Score:      score,
			Highlights: e.highlighter.Highlight(query, doc.Content),
			Document:   doc,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}

	metrics.SearchRequestsTotal.WithLabelValues(kind, "ok").Inc()
	metrics.SearchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	metrics.SearchResults.Observe(float64(len(results)))
	e.logger.Debug("search done",
		zap.String("query", query),
		zap.Int("results", len(results)),
		zap.Duration("took", time.Since(start)))
	return results, nil
}

// embedQuery returns nil when no embedder is configured or embedding fails; scoring then
// falls back to word overlap.
func (e *Engine) embedQuery(ctx context.Context, query string) []float32 {
	if e.embedder == nil || query == "" {
		return nil
	}
	vecs, err := e.embedder.Embed(ctx, []string{query})
	if err != nil || len(vecs) == 0 {
		e.logger.Warn("query embedding failed", zap.Error(err))
		return nil
	}
	return vecs[0]
}
