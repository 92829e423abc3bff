package search

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/nathbrawlstatsr-afk/cours/internal/keyword"
	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultOpenMark and DefaultCloseMark wrap highlighted words.
	DefaultOpenMark  = "<mark>"
	DefaultCloseMark = "</mark>"

	highlightKeywords  = 5
	highlightSentences = 3
)

var sentenceBoundary = regexp.MustCompile(`[.!?]+`)

// Highlighter builds short previews with query keywords marked.
type Highlighter struct {
	open  string
	close string
}

// HighlighterOption configures a Highlighter.
type HighlighterOption func(*Highlighter)

// WithMarkers replaces the default <mark></mark> delimiters.
func WithMarkers(open, close string) HighlighterOption {
	return func(h *Highlighter) {
		if open != "" && close != "" {
			h.open, h.close = open, close
		}
	}
}

// NewHighlighter returns a highlighter using <mark> delimiters unless overridden.
func NewHighlighter(opts ...HighlighterOption) *Highlighter {
	h := &Highlighter{open: DefaultOpenMark, close: DefaultCloseMark}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Highlight marks whole-word, case-insensitive occurrences of up to five query keywords,
// then keeps at most three marked sentences joined by ". " with a final period.
// It returns "" when nothing matches.
func (h *Highlighter) Highlight(query, content string) string {
	keywords := keyword.Extract(query, highlightKeywords)
	if len(keywords) == 0 || content == "" {
		return ""
	}
	want := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		want[kw] = struct{}{}
	}

	marked, ok := h.mark(content, want)
	if !ok {
		return ""
	}

	var kept []string
	for _, sentence := range sentenceBoundary.Split(marked, -1) {
		if !strings.Contains(sentence, h.open) {
			continue
		}
		kept = append(kept, strings.TrimSpace(sentence))
		if len(kept) == highlightSentences {
			break
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return strings.Join(kept, ". ") + "."
}

// mark wraps every maximal word run of content whose folded form is in want.
// Word runs are whole words by construction, so distinct keywords never overlap.
func (h *Highlighter) mark(content string, want map[string]struct{}) (string, bool) {
	var b strings.Builder
	b.Grow(len(content) + 16)
	found := false
	start := -1
	flush := func(end int) {
		word := content[start:end]
		if _, ok := want[strings.ToLower(norm.NFC.String(word))]; ok {
			b.WriteString(h.open)
			b.WriteString(word)
			b.WriteString(h.close)
			found = true
		} else {
			b.WriteString(word)
		}
		start = -1
	}
	for i := 0; i < len(content); {
		r, size := utf8.DecodeRuneInString(content[i:])
		if keyword.IsWordRune(r) {
			if start < 0 {
				start = i
			}
		} else {
			if start >= 0 {
				flush(i)
			}
			b.WriteString(content[i : i+size])
		}
		i += size
	}
	if start >= 0 {
		flush(len(content))
	}
	return b.String(), found
}
