package embedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/nathbrawlstatsr-afk/cours/internal/models"
)

const defaultBatchSize = 32

// VectorIndex is the part of the document index the enricher needs.
type VectorIndex interface {
	Documents() []*models.IndexedDocument
	SetSimilarityVector(id string, vec []float32) error
}

// Enricher embeds indexed documents in batches on a worker pool.
type Enricher struct {
	embedder  Embedder
	pool      *ants.Pool
	batchSize int
	logger    *zap.Logger
}

// NewEnricher creates an Enricher running up to workers batches at once. Call Release
// when done.
func NewEnricher(embedder Embedder, workers int, logger *zap.Logger) (*Enricher, error) {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding pool: %w", err)
	}
	return &Enricher{embedder: embedder, pool: pool, batchSize: defaultBatchSize, logger: logger}, nil
}

// Release stops the worker pool.
func (e *Enricher) Release() {
	e.pool.Release()
}

// EnrichIndex embeds every document that has no vector yet and returns how many were
// updated. Failed batches are logged and skipped; the first error is returned after all
// batches finish.
func (e *Enricher) EnrichIndex(ctx context.Context, idx VectorIndex) (int, error) {
	var pending []*models.IndexedDocument
	for _, doc := range idx.Documents() {
		if len(doc.SimilarityVector) == 0 {
			pending = append(pending, doc)
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		updated  int
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for start := 0; start < len(pending); start += e.batchSize {
		batch := pending[start:min(start+e.batchSize, len(pending))]
		wg.Add(1)
		task := func() {
			defer wg.Done()
			n, err := e.enrichBatch(ctx, idx, batch)
			mu.Lock()
			updated += n
			mu.Unlock()
			if err != nil {
				e.logger.Warn("embedding batch failed", zap.Int("size", len(batch)), zap.Error(err))
				fail(err)
			}
		}
		if err := e.pool.Submit(task); err != nil {
			wg.Done()
			fail(fmt.Errorf("failed to submit embedding batch: %w", err))
		}
	}
	wg.Wait()

	e.logger.Info("index enriched", zap.Int("documents", updated), zap.Int("pending", len(pending)))
	return updated, firstErr
}

func (e *Enricher) enrichBatch(ctx context.Context, idx VectorIndex, batch []*models.IndexedDocument) (int, error) {
	texts := make([]string, len(batch))
	for i, doc := range batch {
		texts[i] = doc.Content
	}
	vecs, err := e.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, err
	}
	n := 0
	for i, vec := range vecs {
		if i >= len(batch) || len(vec) == 0 {
			continue
		}
		if err := idx.SetSimilarityVector(batch[i].ID, vec); err != nil {
			// Deleted while embedding.
			continue
		}
		n++
	}
	return n, nil
}
