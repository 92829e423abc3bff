package ranking

import (
	"math"

	"github.com/nathbrawlstatsr-afk/cours/internal/keyword"
	"github.com/nathbrawlstatsr-afk/cours/internal/models"
)

// SimilarityFunc returns a similarity in [0,1] between a prepared query and a document.
type SimilarityFunc func(q *AnalyzedQuery, doc *models.IndexedDocument) float64

// WordOverlap is the fraction of distinct query words (longer than two runes) that also
// occur in the document content. It stands in for a real embedding similarity.
func WordOverlap(q *AnalyzedQuery, doc *models.IndexedDocument) float64 {
	if len(q.Words) == 0 {
		return 0
	}
	docWords := keyword.WordSet(doc.Content, minSimilarityWordLen)
	hits := 0
	for w := range q.Words {
		if _, ok := docWords[w]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(q.Words))
}

// VectorSimilarity uses the cosine between the query embedding and the document vector,
// clamped to [0,1]. It falls back to WordOverlap when the query has no embedding or the
// dimensions differ.
func VectorSimilarity(q *AnalyzedQuery, doc *models.IndexedDocument) float64 {
	if len(q.Vector) == 0 || len(q.Vector) != len(doc.SimilarityVector) {
		return WordOverlap(q, doc)
	}
	return clamp01(CosineSimilarity(q.Vector, doc.SimilarityVector))
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0 when either is
// empty, zero, or the lengths differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
