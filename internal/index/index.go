// Package index provides the in-memory document index queried by search.
package index

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nathbrawlstatsr-afk/cours/internal/keyword"
	"github.com/nathbrawlstatsr-afk/cours/internal/models"
	"go.uber.org/zap"
)

// Index maps document ids to indexed documents. It is safe for concurrent use; each
// insert generates its id and stores the document under one write lock.
type Index struct {
	mu          sync.RWMutex
	docs        map[string]*models.IndexedDocument
	order       []string
	clock       func() time.Time
	newID       IDGenerator
	maxKeywords int
	logger      *zap.Logger
}

// Option configures an Index.
type Option func(*Index)

// WithClock sets the time source used for IndexedAt.
func WithClock(clock func() time.Time) Option {
	return func(idx *Index) {
		if clock != nil {
			idx.clock = clock
		}
	}
}

// WithMaxKeywords sets how many keywords are kept per document.
func WithMaxKeywords(n int) Option {
	return func(idx *Index) {
		if n > 0 {
			idx.maxKeywords = n
		}
	}
}

// WithIDGenerator replaces the id generator. Colliding ids are regenerated.
func WithIDGenerator(gen IDGenerator) Option {
	return func(idx *Index) {
		if gen != nil {
			idx.newID = gen
		}
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(idx *Index) { idx.logger = l }
}

// New creates an empty index.
func New(opts ...Option) *Index {
	idx := &Index{
		docs:        make(map[string]*models.IndexedDocument),
		clock:       time.Now,
		newID:       DefaultIDGenerator,
		maxKeywords: keyword.DefaultMaxKeywords,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// IndexContent stores content under a fresh id and returns it. Keywords are extracted
// before the lock is taken; empty content yields an empty keyword set.
func (idx *Index) IndexContent(content string, meta models.Metadata) string {
	keywords := keyword.Extract(content, idx.maxKeywords)

	idx.mu.Lock()
	now := idx.clock()
	id := idx.newID(now)
	for {
		if _, taken := idx.docs[id]; !taken {
			break
		}
		id = idx.newID(now)
	}
	idx.docs[id] = &models.IndexedDocument{
		ID:        id,
		Content:   content,
		Metadata:  meta,
		Keywords:  keywords,
		IndexedAt: now,
	}
	idx.order = append(idx.order, id)
	idx.mu.Unlock()

	if idx.logger != nil {
		idx.logger.Debug("indexed document",
			zap.String("id", id),
			zap.String("type", meta.Type),
			zap.String("subject", meta.Subject),
			zap.Strings("keywords", keywords))
	}
	return id
}

// IndexAll indexes each course as one document and returns the new ids in course order.
func (idx *Index) IndexAll(courses []models.Course) []string {
	ids := make([]string, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, idx.IndexContent(CourseContent(c), CourseMetadata(c)))
	}
	if idx.logger != nil {
		idx.logger.Info("indexed courses", zap.Int("count", len(courses)))
	}
	return ids
}

// CourseContent concatenates the searchable text fields of a course.
func CourseContent(c models.Course) string {
	return strings.Join([]string{c.Title, c.Description, c.Content, strings.Join(c.Tags, " ")}, "\n")
}

// CourseMetadata builds the metadata stored for a course document.
func CourseMetadata(c models.Course) models.Metadata {
	return models.Metadata{
		Type:     models.DocTypeCourse,
		Subject:  c.Subject,
		Level:    c.Level,
		SourceID: c.ID,
		Title:    c.Title,
	}
}

// Get returns the document with the given id or an error wrapping models.ErrNotFound.
func (idx *Index) Get(id string) (*models.IndexedDocument, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	doc, ok := idx.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %q: %w", id, models.ErrNotFound)
	}
	return doc, nil
}

// Delete removes a document or returns an error wrapping models.ErrNotFound.
func (idx *Index) Delete(id string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, ok := idx.docs[id]; !ok {
		return fmt.Errorf("document %q: %w", id, models.ErrNotFound)
	}
	delete(idx.docs, id)
	idx.compactLocked()
	return nil
}

// DeleteBySource removes every document whose metadata SourceID equals sourceID and
// returns how many were removed.
func (idx *Index) DeleteBySource(sourceID string) int {
	if sourceID == "" {
		return 0
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	removed := 0
	for id, doc := range idx.docs {
		if doc.Metadata.SourceID == sourceID {
			delete(idx.docs, id)
			removed++
		}
	}
	if removed > 0 {
		idx.compactLocked()
	}
	return removed
}

func (idx *Index) compactLocked() {
	kept := idx.order[:0]
	for _, id := range idx.order {
		if _, ok := idx.docs[id]; ok {
			kept = append(kept, id)
		}
	}
	idx.order = kept
}

// SetSimilarityVector attaches an embedding to a document. The stored document is
// replaced by a copy so snapshots already handed out are not mutated.
func (idx *Index) SetSimilarityVector(id string, vec []float32) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	doc, ok := idx.docs[id]
	if !ok {
		return fmt.Errorf("document %q: %w", id, models.ErrNotFound)
	}
	updated := *doc
	updated.SimilarityVector = append([]float32(nil), vec...)
	idx.docs[id] = &updated
	return nil
}

// Len returns the number of indexed documents.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docs)
}

// Documents returns a snapshot of all documents in insertion order.
func (idx *Index) Documents() []*models.IndexedDocument {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]*models.IndexedDocument, 0, len(idx.order))
	for _, id := range idx.order {
		out = append(out, idx.docs[id])
	}
	return out
}

// TermFrequencies returns, for each keyword, how many documents carry it.
func (idx *Index) TermFrequencies() map[string]int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	freqs := make(map[string]int)
	for _, doc := range idx.docs {
		for _, kw := range doc.Keywords {
			freqs[kw]++
		}
	}
	return freqs
}
