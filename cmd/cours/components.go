package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nathbrawlstatsr-afk/cours/internal/catalog"
	"github.com/nathbrawlstatsr-afk/cours/internal/completion"
	"github.com/nathbrawlstatsr-afk/cours/internal/config"
	"github.com/nathbrawlstatsr-afk/cours/internal/content"
	"github.com/nathbrawlstatsr-afk/cours/internal/embedding"
	"github.com/nathbrawlstatsr-afk/cours/internal/index"
	"github.com/nathbrawlstatsr-afk/cours/internal/indexer"
	"github.com/nathbrawlstatsr-afk/cours/internal/keyword"
	"github.com/nathbrawlstatsr-afk/cours/internal/learner"
	"github.com/nathbrawlstatsr-afk/cours/internal/models"
	"github.com/nathbrawlstatsr-afk/cours/internal/quiz"
	"github.com/nathbrawlstatsr-afk/cours/internal/ranking"
	"github.com/nathbrawlstatsr-afk/cours/internal/search"
	"github.com/nathbrawlstatsr-afk/cours/internal/server"
	"github.com/nathbrawlstatsr-afk/cours/internal/storage"
	"github.com/nathbrawlstatsr-afk/cours/internal/tutor"
)

// generators are the completion-backed services that need no storage or index.
type generators struct {
	llm     *completion.Fallback
	content *content.Generator
	quiz    *quiz.Generator
}

func newGenerators(cfg *config.Config, store storage.Store, memory *learner.Memory, logger *zap.Logger) (*generators, error) {
	client, err := completion.New(&cfg.Completion, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize completion client: %w", err)
	}
	llm := completion.NewFallback(client, logger)
	gen, err := content.New(llm,
		content.WithWorkers(cfg.Content.Workers),
		content.WithModel(cfg.Completion.Model),
		content.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize content generator: %w", err)
	}
	quizOpts := []quiz.Option{quiz.WithModel(cfg.Completion.Model), quiz.WithLogger(logger)}
	if memory != nil {
		quizOpts = append(quizOpts, quiz.WithGapSource(memory))
	}
	return &generators{
		llm:     llm,
		content: gen,
		quiz:    quiz.NewGenerator(llm, store, quizOpts...),
	}, nil
}

// Components holds every initialized service.
type Components struct {
	Config   *config.Config
	Store    storage.Store
	Embedder embedding.Embedder
	Enricher *embedding.Enricher
	Index    *index.Index
	Engine   *search.Engine
	Memory   *learner.Memory
	Tutor    *tutor.Tutor
	Ingester *indexer.Ingester
	gen      *generators
}

// Close releases the worker pools and the store.
func (c *Components) Close() {
	if c.gen != nil {
		c.gen.content.Close()
	}
	if c.Enricher != nil {
		c.Enricher.Release()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Store != nil {
		_ = c.Store.Close()
	}
}

// Services returns the API view of the components.
func (c *Components) Services() server.Services {
	return server.Services{
		Index:    c.Index,
		Engine:   c.Engine,
		Content:  c.gen.content,
		Quiz:     c.gen.quiz,
		Tutor:    c.Tutor,
		Memory:   c.Memory,
		Store:    c.Store,
		Ingester: c.Ingester,
		Enricher: c.Enricher,
		Config:   c.Config,
	}
}

// Enrich attaches similarity vectors to documents that lack one. It is a no-op without
// an embedder.
func (c *Components) Enrich(ctx context.Context, logger *zap.Logger) {
	if c.Enricher == nil {
		return
	}
	n, err := c.Enricher.EnrichIndex(ctx, c.Index)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("document enrichment incomplete", zap.Int("enriched", n), zap.Error(err))
		return
	}
	if n > 0 {
		logger.Debug("documents enriched", zap.Int("count", n))
	}
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *Components, err error) {
	c := &Components{Config: cfg, Memory: learner.NewMemory()}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	c.Store, err = storage.Open(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.gen, err = newGenerators(cfg, c.Store, c.Memory, logger)
	if err != nil {
		return nil, err
	}
	c.Embedder, err = embedding.New(&cfg.Embedding, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	c.Index = index.New(index.WithMaxKeywords(cfg.Search.MaxKeywords), index.WithLogger(logger))
	rankerOpts := []ranking.RankerOption{ranking.WithMaxKeywords(cfg.Search.MaxKeywords)}
	engineOpts := []search.Option{
		search.WithCompletion(c.gen.llm),
		search.WithSpeller(keyword.NewSpeller(c.Index, keyword.WithMaxDistance(cfg.Search.SpellDistance))),
		search.WithLogger(logger),
	}
	if c.Embedder != nil {
		c.Enricher, err = embedding.NewEnricher(c.Embedder, cfg.Embedding.Workers, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize enricher: %w", err)
		}
		rankerOpts = append(rankerOpts, ranking.WithSimilarity(ranking.VectorSimilarity))
		engineOpts = append(engineOpts, search.WithEmbedder(c.Embedder))
	}
	ranker := ranking.NewRanker(&ranking.Config{
		KeywordWeight:    cfg.Search.KeywordWeight,
		SimilarityWeight: cfg.Search.SimilarityWeight,
		RecencyWeight:    cfg.Search.RecencyWeight,
		RecencyWindow:    cfg.Search.RecencyWindow,
	}, rankerOpts...)
	c.Engine = search.NewEngine(c.Index, ranker, engineOpts...)
	c.Tutor = tutor.New(c.gen.llm, c.Memory, c.Store, tutor.WithLogger(logger))
	c.Ingester = indexer.NewIngester(c.Index, &cfg.Materials, indexer.WithLogger(logger))

	courses, err := loadCatalog(ctx, &cfg.Catalog, c.Store)
	if err != nil {
		return nil, err
	}
	catalog.Sync(c.Index, courses)
	logger.Info("catalog loaded", zap.Int("courses", len(courses)))
	return c, nil
}

// loadCatalog returns the configured catalog (file or demo) followed by the stored
// courses it does not already contain, and saves that list back to the store.
func loadCatalog(ctx context.Context, cfg *config.CatalogConfig, store storage.Store) ([]models.Course, error) {
	stored, err := catalog.LoadStore(ctx, store, storage.KeyCourses)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored catalog: %w", err)
	}
	var seed []models.Course
	switch {
	case cfg.Path != "":
		seed, err = catalog.LoadFile(cfg.Path)
		if err != nil {
			return nil, err
		}
	case cfg.Demo:
		seed = catalog.Demo()
	}
	if len(seed) == 0 {
		return stored, nil
	}
	courses := mergeCourses(seed, stored)
	if err := catalog.SaveStore(ctx, store, storage.KeyCourses, courses); err != nil {
		return nil, fmt.Errorf("failed to save catalog: %w", err)
	}
	return courses, nil
}

// mergeCourses returns seed followed by the extra courses whose id is not in seed.
// Courses without an id are always kept.
func mergeCourses(seed, extra []models.Course) []models.Course {
	out := append([]models.Course(nil), seed...)
	seen := make(map[string]struct{}, len(seed))
	for _, c := range seed {
		if c.ID != "" {
			seen[c.ID] = struct{}{}
		}
	}
	for _, c := range extra {
		if _, dup := seen[c.ID]; dup && c.ID != "" {
			continue
		}
		out = append(out, c)
	}
	return out
}
