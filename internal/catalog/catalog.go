// Package catalog loads the course catalog that feeds the search index.
package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/nathbrawlstatsr-afk/cours/internal/index"
	"github.com/nathbrawlstatsr-afk/cours/internal/metrics"
	"github.com/nathbrawlstatsr-afk/cours/internal/models"
	"github.com/nathbrawlstatsr-afk/cours/internal/storage"
)

//go:embed demo.yaml
var demoYAML []byte

// ErrUnsupportedFormat is returned for catalog files that are not YAML, JSON, or XLSX.
var ErrUnsupportedFormat = errors.New("unsupported catalog format")

type document struct {
	Courses []models.Course `yaml:"courses" json:"courses"`
}

// Demo returns the built-in demonstration catalog.
func Demo() []models.Course {
	courses, err := ParseYAML(demoYAML)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded demo.yaml is invalid: %v", err))
	}
	return courses
}

// LoadFile reads courses from a .yaml/.yml, .json, or .xlsx file.
func LoadFile(path string) ([]models.Course, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var courses []models.Course
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		courses, err = ParseYAML(data)
	case ".json":
		courses, err = ParseJSON(data)
	case ".xlsx":
		courses, err = ParseXLSX(data)
	default:
		return nil, fmt.Errorf("%s: %w", ext, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return courses, nil
}

// ParseYAML accepts either a top-level list or a {courses: [...]} document.
func ParseYAML(data []byte) ([]models.Course, error) {
	var list []models.Course
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Courses, nil
}

// ParseJSON accepts either a top-level array or a {"courses": [...]} object.
func ParseJSON(data []byte) ([]models.Course, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []models.Course
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Courses, nil
}

// ParseXLSX reads the first sheet. The header row names the columns (id, title,
// description, content, tags, subject, level, duration, rating); tags are separated by
// ";" or ",".
func ParseXLSX(data []byte) ([]models.Course, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return []models.Course{}, nil
	}

	cols := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	courses := make([]models.Course, 0, len(rows)-1)
	for n, row := range rows[1:] {
		c := models.Course{
			ID:          cell(row, "id"),
			Title:       cell(row, "title"),
			Description: cell(row, "description"),
			Content:     cell(row, "content"),
			Tags:        splitTags(cell(row, "tags")),
			Subject:     cell(row, "subject"),
			Level:       cell(row, "level"),
			Duration:    cell(row, "duration"),
		}
		if c.ID == "" && c.Title == "" {
			continue
		}
		if r := cell(row, "rating"); r != "" {
			rating, err := strconv.ParseFloat(strings.Replace(r, ",", ".", 1), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid rating %q", n+2, r)
			}
			c.Rating = rating
		}
		courses = append(courses, c)
	}
	return courses, nil
}

func splitTags(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' })
	tags := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			tags = append(tags, f)
		}
	}
	return tags
}

// LoadStore reads the catalog saved under key. A missing key yields an empty catalog.
func LoadStore(ctx context.Context, store storage.Store, key string) ([]models.Course, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, models.ErrNotFound) {
		return []models.Course{}, nil
	}
	if err != nil {
		return nil, err
	}
	return ParseJSON([]byte(raw))
}

// storeMu serialises catalog writes in this process so a read-modify-write in AppendStore
// never loses a concurrent update.
var storeMu sync.Mutex

// SaveStore writes courses under key as a JSON array.
func SaveStore(ctx context.Context, store storage.Store, key string, courses []models.Course) error {
	storeMu.Lock()
	defer storeMu.Unlock()
	return saveStore(ctx, store, key, courses)
}

// AppendStore adds courses to the catalog saved under key.
func AppendStore(ctx context.Context, store storage.Store, key string, courses ...models.Course) error {
	storeMu.Lock()
	defer storeMu.Unlock()
	existing, err := LoadStore(ctx, store, key)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	return saveStore(ctx, store, key, append(existing, courses...))
}

func saveStore(ctx context.Context, store storage.Store, key string, courses []models.Course) error {
	data, err := json.Marshal(courses)
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	return store.Set(ctx, key, string(data))
}

// Sync indexes courses, first removing documents previously indexed for the same course
// ids so that reloading a catalog does not duplicate them. It returns the new ids.
func Sync(idx *index.Index, courses []models.Course) []string {
	for _, c := range courses {
		if c.ID != "" {
			idx.DeleteBySource(c.ID)
		}
	}
	ids := idx.IndexAll(courses)
	metrics.IndexDocuments.Set(float64(idx.Len()))
	return ids
}
