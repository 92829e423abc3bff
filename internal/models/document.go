// Package models defines core data structures for indexed documents, search options, results,
// courses, quizzes, and tutoring sessions.
package models

import "time"

// Well-known document types stored in Metadata.Type.
const (
	DocTypeCourse   = "course"
	DocTypeMaterial = "material"
)

// Metadata describes an indexed document. Known keys are typed fields; anything else
// goes in Extra. Metadata is used for filtering and display, never for scoring.
type Metadata struct {
	Subject  string            `json:"subject,omitempty" yaml:"subject,omitempty"`
	Level    string            `json:"level,omitempty" yaml:"level,omitempty"`
	Type     string            `json:"type,omitempty" yaml:"type,omitempty"`
	Title    string            `json:"title,omitempty" yaml:"title,omitempty"`
	SourceID string            `json:"source_id,omitempty" yaml:"source_id,omitempty"`
	Extra    map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Value returns the metadata value for key. Known keys map to their typed field
// ("course_id" is accepted as an alias of "source_id"); other keys are read from Extra.
func (m Metadata) Value(key string) (string, bool) {
	switch key {
	case "subject":
		return m.Subject, m.Subject != ""
	case "level":
		return m.Level, m.Level != ""
	case "type":
		return m.Type, m.Type != ""
	case "title":
		return m.Title, m.Title != ""
	case "source_id", "sourceId", "course_id", "courseId":
		return m.SourceID, m.SourceID != ""
	}
	v, ok := m.Extra[key]
	return v, ok
}

// Matches reports whether every filter key has exactly the expected value.
// Empty expected values are ignored, so an unset filter field does not exclude anything.
func (m Metadata) Matches(filters map[string]string) bool {
	for key, want := range filters {
		if want == "" {
			continue
		}
		got, ok := m.Value(key)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// IndexedDocument is a document held by the search index.
// Keywords and IndexedAt are computed once at insertion and never change.
type IndexedDocument struct {
	ID               string    `json:"id"`
	Content          string    `json:"content"`
	Metadata         Metadata  `json:"metadata"`
	Keywords         []string  `json:"keywords"`
	SimilarityVector []float32 `json:"-"`
	IndexedAt        time.Time `json:"indexed_at"`
}

// HasSimilarityVector reports whether an embedding provider populated the document's vector.
func (d *IndexedDocument) HasSimilarityVector() bool {
	return len(d.SimilarityVector) > 0
}

// HasKeyword reports whether kw is one of the document's extracted keywords.
func (d *IndexedDocument) HasKeyword(kw string) bool {
	for _, k := range d.Keywords {
		if k == kw {
			return true
		}
	}
	return false
}

// DocumentInput is the input for indexing a single piece of content.
type DocumentInput struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}
