// Package cli renders command results for the terminal or for other programs.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/nathbrawlstatsr-afk/cours/internal/models"
	"github.com/nathbrawlstatsr-afk/cours/pkg/utils"
)

// OutputFormat selects how command results are written.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is indented JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const (
	separator      = "─────────────────────────────────────────────────────────"
	previewLen     = 200
	highlightWords = 40
)

// ParseFormat accepts "text" or "json", case-insensitively. Anything else is an error.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

// Write encodes v as JSON when format is OutputJSON and otherwise calls text.
func Write(w io.Writer, format OutputFormat, v any, text func(io.Writer)) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}

// WriteSearchResults writes a plain search response.
func WriteSearchResults(w io.Writer, resp *models.SearchResponse, format OutputFormat) error {
	return Write(w, format, resp, func(w io.Writer) {
		fmt.Fprintf(w, "\nFound %d results for %q in %dms\n\n", resp.Total, resp.Query, resp.QueryTime)
		for i, r := range resp.Results {
			writeOneResult(w, i+1, r)
		}
	})
}

// WriteIntelligentSearch writes results followed by suggestions and alternative queries.
func WriteIntelligentSearch(w io.Writer, resp *models.IntelligentSearchResponse, format OutputFormat) error {
	return Write(w, format, resp, func(w io.Writer) {
		fmt.Fprintf(w, "\nFound %d results for %q in %dms", resp.Total, resp.Query, resp.QueryTime)
		fmt.Fprintf(w, " (%d courses, %d exercises, %d definitions, %d examples)\n\n",
			len(resp.Categories.Courses), len(resp.Categories.Exercises),
			len(resp.Categories.Definitions), len(resp.Categories.Examples))
		if resp.CorrectedQuery != "" {
			fmt.Fprintf(w, "Did you mean: %s\n\n", resp.CorrectedQuery)
		}
		for i, r := range resp.Results {
			writeOneResult(w, i+1, r)
		}
		if len(resp.Suggestions) > 0 {
			fmt.Fprintln(w, "Suggestions:")
			for _, s := range resp.Suggestions {
				fmt.Fprintf(w, "  - %s (%s)\n", s.Title, s.Query)
			}
		}
		if len(resp.DidYouMean) > 0 {
			fmt.Fprintln(w, "Related searches:")
			for _, alt := range resp.DidYouMean {
				fmt.Fprintf(w, "  - %s\n", alt.Query)
			}
		}
	})
}

func writeOneResult(w io.Writer, rank int, r *models.SearchResult) {
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "Rank: %d | Score: %.4f | ID: %s\n", rank, r.Score, r.DocumentID)
	if r.Document == nil {
		fmt.Fprintln(w)
		return
	}
	meta := r.Document.Metadata
	if meta.Title != "" {
		fmt.Fprintf(w, "Title: %s\n", meta.Title)
	}
	if meta.Subject != "" || meta.Level != "" {
		fmt.Fprintf(w, "Subject: %s | Level: %s\n", orDash(meta.Subject), orDash(meta.Level))
	}
	if r.Highlights != "" {
		fmt.Fprintf(w, "\n%s\n\n", utils.TruncateWords(r.Highlights, highlightWords))
		return
	}
	fmt.Fprintf(w, "\n%s\n\n", utils.Truncate(r.Document.Content, previewLen))
}

// WriteCourse writes a generated course as its formatted markdown.
func WriteCourse(w io.Writer, course *models.GeneratedCourse, format OutputFormat) error {
	return Write(w, format, course, func(w io.Writer) {
		if course.IsFallback {
			fmt.Fprintln(w, "(completion service unavailable: showing a course outline)")
		}
		if course.FormattedContent != "" {
			fmt.Fprintln(w, course.FormattedContent)
			return
		}
		fmt.Fprintf(w, "# %s\n\n%s\n", course.Title, course.Content.Introduction)
		for _, s := range course.Content.Sections {
			fmt.Fprintf(w, "\n## %s\n\n%s\n", s.Title, s.Content)
		}
	})
}

// WriteQuiz writes the questions of a quiz with their options.
func WriteQuiz(w io.Writer, q *models.Quiz, format OutputFormat) error {
	return Write(w, format, q, func(w io.Writer) {
		fmt.Fprintf(w, "%s (%d questions, pass at %d%%)\n", q.Title, len(q.Questions), q.PassingScore)
		for i, question := range q.Questions {
			fmt.Fprintf(w, "\n%d. %s\n", i+1, question.Question)
			for j, opt := range question.Options {
				fmt.Fprintf(w, "   %c) %s\n", 'a'+j, opt)
			}
		}
	})
}

// WriteFlashcards writes one card per block.
func WriteFlashcards(w io.Writer, cards []models.Flashcard, format OutputFormat) error {
	return Write(w, format, cards, func(w io.Writer) {
		for _, c := range cards {
			fmt.Fprintln(w, separator)
			fmt.Fprintf(w, "%s\n  → %s\n", c.Front, c.Back)
		}
	})
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
