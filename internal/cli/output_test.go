package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/nathbrawlstatsr-afk/cours/internal/models"
)

func sampleResponse() *models.SearchResponse {
	return &models.SearchResponse{
		Query:     "fractions",
		QueryTime: 42,
		Total:     1,
		Results: []*models.SearchResult{{
			DocumentID: "doc-1",
			Score:      0.7,
			Highlights: "Les <mark>fractions</mark> simples.",
			Document: &models.IndexedDocument{
				ID:       "doc-1",
				Content:  "Les fractions simples.",
				Metadata: models.Metadata{Title: "Fractions", Subject: "mathematics"},
			},
		}},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"JSON", OutputJSON, false},
		{" json ", OutputJSON, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestWriteSearchResults_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputJSON); err != nil {
		t.Fatalf("WriteSearchResults(json): %v", err)
	}
	var decoded models.SearchResponse
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded.Query != "fractions" || decoded.QueryTime != 42 || len(decoded.Results) != 1 {
		t.Errorf("unexpected decoded response %+v", decoded)
	}
}

func TestWriteSearchResults_text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Found 1 results", "ID: doc-1", "Title: Fractions", "Subject: mathematics | Level: -", "<mark>fractions</mark>"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSearchResults_unknownFormatTreatedAsText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, &models.SearchResponse{Query: "x"}, OutputFormat("unknown")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Found") {
		t.Errorf("unknown format should fall back to text; got %q", buf.String())
	}
}

func TestWriteIntelligentSearch_text(t *testing.T) {
	base := sampleResponse()
	resp := &models.IntelligentSearchResponse{
		Query:          base.Query,
		Results:        base.Results,
		Total:          1,
		Categories:     models.Categories{Courses: base.Results},
		Suggestions:    []models.Suggestion{{Title: "Fiche de révision", Query: "fractions fiche"}},
		DidYouMean:     []models.AlternativeQuery{{Query: "nombres rationnels"}},
		CorrectedQuery: "fractions",
	}
	var buf bytes.Buffer
	if err := WriteIntelligentSearch(&buf, resp, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"(1 courses, 0 exercises", "Did you mean: fractions", "Fiche de révision (fractions fiche)", "nombres rationnels"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteCourse(t *testing.T) {
	course := &models.GeneratedCourse{
		Title:      "Optique",
		IsFallback: true,
		Content: models.CourseBody{
			Introduction: "La lumière",
			Sections:     []models.CourseSection{{Title: "Réfraction", Content: "Snell"}},
		},
	}
	var buf bytes.Buffer
	if err := WriteCourse(&buf, course, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "unavailable") || !strings.Contains(out, "## Réfraction") {
		t.Errorf("unexpected course output:\n%s", out)
	}

	buf.Reset()
	course.FormattedContent = "# Optique formatted"
	course.IsFallback = false
	_ = WriteCourse(&buf, course, OutputText)
	if strings.TrimSpace(buf.String()) != "# Optique formatted" {
		t.Errorf("formatted content should be written as is, got %q", buf.String())
	}
}

func TestWriteQuiz(t *testing.T) {
	q := &models.Quiz{
		Title:        "Quiz fractions",
		PassingScore: 70,
		Questions: []models.Question{
			{Question: "1/2 + 1/2 ?", Options: []string{"1", "2"}},
		},
	}
	var buf bytes.Buffer
	if err := WriteQuiz(&buf, q, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"(1 questions, pass at 70%)", "1. 1/2 + 1/2 ?", "a) 1", "b) 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteFlashcards_JSON(t *testing.T) {
	var buf bytes.Buffer
	cards := []models.Flashcard{{Front: "atome", Back: "plus petite unité", Concept: "atome"}}
	if err := WriteFlashcards(&buf, cards, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded []models.Flashcard
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil || len(decoded) != 1 {
		t.Fatalf("decode: %v %+v", err, decoded)
	}
}
