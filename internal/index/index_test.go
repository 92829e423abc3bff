package index

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/nathbrawlstatsr-afk/cours/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var idPattern = regexp.MustCompile(`^doc_\d+_[0-9a-z]{9}$`)

func TestIndexContent(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	idx := New(WithClock(func() time.Time { return now }))

	id := idx.IndexContent("Les fractions représentent une partie d'un tout. Les fractions sont utiles.",
		models.Metadata{Subject: "maths"})
	assert.Regexp(t, idPattern, id)

	doc, err := idx.Get(id)
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)
	assert.Equal(t, "maths", doc.Metadata.Subject)
	assert.Equal(t, now, doc.IndexedAt)
	assert.Equal(t, "fractions", doc.Keywords[0])
	assert.False(t, doc.HasSimilarityVector())
	assert.Equal(t, 1, idx.Len())
}

func TestIndexContent_EmptyContent(t *testing.T) {
	idx := New()
	id := idx.IndexContent("", models.Metadata{})
	doc, err := idx.Get(id)
	require.NoError(t, err)
	assert.Empty(t, doc.Keywords)
}

func TestIndexContent_MaxKeywords(t *testing.T) {
	idx := New(WithMaxKeywords(2))
	id := idx.IndexContent("alpha gamma delta epsilon", models.Metadata{})
	doc, err := idx.Get(id)
	require.NoError(t, err)
	assert.Len(t, doc.Keywords, 2)
}

func TestIndexContent_RegeneratesCollidingIDs(t *testing.T) {
	calls := 0
	gen := func(time.Time) string {
		calls++
		if calls <= 3 {
			return "doc_fixed"
		}
		return fmt.Sprintf("doc_%d", calls)
	}
	idx := New(WithIDGenerator(gen))
	first := idx.IndexContent("un", models.Metadata{})
	second := idx.IndexContent("deux", models.Metadata{})
	assert.Equal(t, "doc_fixed", first)
	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, idx.Len())
}

func TestIndexContent_ConcurrentInsertsDoNotCollide(t *testing.T) {
	idx := New()
	const n = 200
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = idx.IndexContent(fmt.Sprintf("document numéro %d", i), models.Metadata{})
		}(i)
	}
	wg.Wait()

	seen := make(map[string]struct{}, n)
	for _, id := range ids {
		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
	assert.Equal(t, n, idx.Len())
	assert.Len(t, idx.Documents(), n)
}

func TestGet_NotFound(t *testing.T) {
	idx := New()
	_, err := idx.Get("doc_missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestIndexAll(t *testing.T) {
	idx := New()
	courses := []models.Course{
		{ID: "c1", Title: "Les fractions", Description: "Comprendre les fractions", Content: "numérateur et dénominateur", Tags: []string{"fractions", "calcul"}, Subject: "maths", Level: "6e"},
		{ID: "c2", Title: "Le passé composé", Description: "Conjugaison", Content: "auxiliaire avoir", Tags: []string{"conjugaison"}, Subject: "francais", Level: "5e"},
	}
	ids := idx.IndexAll(courses)
	require.Len(t, ids, 2)

	doc, err := idx.Get(ids[0])
	require.NoError(t, err)
	assert.Equal(t, models.Metadata{Type: "course", Subject: "maths", Level: "6e", SourceID: "c1", Title: "Les fractions"}, doc.Metadata)
	assert.Contains(t, doc.Content, "Les fractions")
	assert.Contains(t, doc.Content, "numérateur et dénominateur")
	assert.Contains(t, doc.Content, "fractions calcul")
	assert.Equal(t, "fractions", doc.Keywords[0])
}

func TestDeleteAndDeleteBySource(t *testing.T) {
	idx := New()
	a := idx.IndexContent("alpha", models.Metadata{SourceID: "s1"})
	b := idx.IndexContent("bravo", models.Metadata{SourceID: "s1"})
	c := idx.IndexContent("charlie", models.Metadata{SourceID: "s2"})

	require.NoError(t, idx.Delete(c))
	assert.True(t, errors.Is(idx.Delete(c), models.ErrNotFound))

	assert.Equal(t, 2, idx.DeleteBySource("s1"))
	assert.Equal(t, 0, idx.DeleteBySource(""))
	assert.Equal(t, 0, idx.Len())
	for _, id := range []string{a, b} {
		_, err := idx.Get(id)
		assert.True(t, errors.Is(err, models.ErrNotFound))
	}
}

func TestDocuments_InsertionOrder(t *testing.T) {
	idx := New()
	var want []string
	for _, text := range []string{"premier", "deuxième", "troisième", "quatrième"} {
		want = append(want, idx.IndexContent(text, models.Metadata{}))
	}
	require.NoError(t, idx.Delete(want[1]))
	want = append(want[:1], want[2:]...)

	var got []string
	for _, d := range idx.Documents() {
		got = append(got, d.ID)
	}
	assert.Equal(t, want, got)
}

func TestSetSimilarityVector(t *testing.T) {
	idx := New()
	id := idx.IndexContent("vecteurs", models.Metadata{})
	before := idx.Documents()[0]

	require.NoError(t, idx.SetSimilarityVector(id, []float32{0.1, 0.2}))
	doc, err := idx.Get(id)
	require.NoError(t, err)
	assert.True(t, doc.HasSimilarityVector())
	assert.False(t, before.HasSimilarityVector(), "earlier snapshot must not change")
	assert.Equal(t, before.IndexedAt, doc.IndexedAt)

	assert.True(t, errors.Is(idx.SetSimilarityVector("nope", nil), models.ErrNotFound))
}

func TestTermFrequencies(t *testing.T) {
	idx := New()
	idx.IndexContent("fractions décimales", models.Metadata{})
	idx.IndexContent("fractions simples", models.Metadata{})
	freqs := idx.TermFrequencies()
	assert.Equal(t, 2, freqs["fractions"])
	assert.Equal(t, 1, freqs["simples"])
}

func TestDefaultIDGenerator(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	a := DefaultIDGenerator(now)
	b := DefaultIDGenerator(now)
	assert.Regexp(t, `^doc_1700000000123_[0-9a-z]{9}$`, a)
	assert.NotEqual(t, a, b)
}
