package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nathbrawlstatsr-afk/cours/internal/index"
	"github.com/nathbrawlstatsr-afk/cours/internal/models"
	"github.com/nathbrawlstatsr-afk/cours/internal/storage"
)

func TestDemo(t *testing.T) {
	courses := Demo()
	require.NotEmpty(t, courses)
	ids := map[string]bool{}
	for _, c := range courses {
		assert.NotEmpty(t, c.ID)
		assert.NotEmpty(t, c.Title)
		assert.NotEmpty(t, c.Subject)
		assert.False(t, ids[c.ID], "duplicate id %s", c.ID)
		ids[c.ID] = true
	}
	assert.Equal(t, "maths-fractions-6e", courses[0].ID)
	assert.Equal(t, []string{"fractions", "numérateur", "dénominateur"}, courses[0].Tags)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
		return p
	}

	tests := []struct {
		name string
		path string
	}{
		{"yaml list", write("list.yaml", "- id: c1\n  title: Fractions\n  subject: maths\n")},
		{"yaml document", write("doc.yml", "courses:\n  - id: c1\n    title: Fractions\n    subject: maths\n")},
		{"json array", write("list.json", `[{"id":"c1","title":"Fractions","subject":"maths"}]`)},
		{"json object", write("doc.json", `{"courses":[{"id":"c1","title":"Fractions","subject":"maths"}]}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			courses, err := LoadFile(tt.path)
			require.NoError(t, err)
			require.Len(t, courses, 1)
			assert.Equal(t, "c1", courses[0].ID)
			assert.Equal(t, "maths", courses[0].Subject)
		})
	}

	_, err := LoadFile(write("catalog.csv", "id,title"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"id", "Title", "subject", "level", "tags", "rating"},
		{"c1", "Les fractions", "maths", "6eme", "fractions; numérateur, dénominateur", "4,5"},
		{"", "", "", "", "", ""},
		{"c2", "La conjugaison", "francais", "6eme", "", ""},
	}
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellName, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	courses, err := ParseXLSX(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "Les fractions", courses[0].Title)
	assert.Equal(t, []string{"fractions", "numérateur", "dénominateur"}, courses[0].Tags)
	assert.InDelta(t, 4.5, courses[0].Rating, 1e-9)
	assert.Equal(t, "c2", courses[1].ID)
	assert.Empty(t, courses[1].Tags)
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	courses, err := LoadStore(ctx, store, storage.KeyCourses)
	require.NoError(t, err)
	assert.Empty(t, courses)

	require.NoError(t, SaveStore(ctx, store, storage.KeyCourses, Demo()))
	courses, err = LoadStore(ctx, store, storage.KeyCourses)
	require.NoError(t, err)
	assert.Equal(t, Demo(), courses)
}

func TestSync_IsIdempotent(t *testing.T) {
	idx := index.New()
	courses := Demo()

	first := Sync(idx, courses)
	assert.Len(t, first, len(courses))
	second := Sync(idx, courses)
	assert.Len(t, second, len(courses))
	assert.Equal(t, len(courses), idx.Len())

	for _, id := range first {
		_, err := idx.Get(id)
		assert.ErrorIs(t, err, models.ErrNotFound)
	}
	doc, err := idx.Get(second[0])
	require.NoError(t, err)
	assert.Equal(t, models.DocTypeCourse, doc.Metadata.Type)
	assert.Equal(t, courses[0].ID, doc.Metadata.SourceID)
}

func TestAppendStore_ConcurrentWritersKeepEveryCourse(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, SaveStore(ctx, store, storage.KeyCourses, Demo()))

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			course := models.Course{ID: fmt.Sprintf("ai-maths-6e-%d", i), Title: "Généré", Subject: "maths"}
			assert.NoError(t, AppendStore(ctx, store, storage.KeyCourses, course))
		}(i)
	}
	wg.Wait()

	courses, err := LoadStore(ctx, store, storage.KeyCourses)
	require.NoError(t, err)
	assert.Len(t, courses, len(Demo())+writers)
}
