// Package keyword extracts frequency-ranked keywords and word sets from free text.
package keyword

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// DefaultMaxKeywords is the number of keywords kept per document.
const DefaultMaxKeywords = 10

// minKeywordLen is exclusive: a keyword has more runes than this.
const minKeywordLen = 3

// IsWordRune reports whether r belongs to a word (letter, digit, or underscore).
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

// Tokenize lower-cases text, treats every non-word rune as a separator, and returns
// the tokens in order. Text is NFC-normalized first so composed and decomposed accents
// yield the same token.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(norm.NFC.String(text))
	return strings.FieldsFunc(lower, func(r rune) bool { return !IsWordRune(r) })
}

// Extract returns up to maxKeywords keywords, most frequent first. Tokens of three runes
// or fewer and stop words are dropped; equal frequencies keep first-seen order.
// The result is never nil.
func Extract(text string, maxKeywords int) []string {
	if maxKeywords <= 0 {
		return []string{}
	}
	type entry struct {
		word  string
		count int
	}
	var entries []*entry
	seen := make(map[string]*entry)
	for _, tok := range Tokenize(text) {
		if utf8.RuneCountInString(tok) <= minKeywordLen || IsStopWord(tok) {
			continue
		}
		if e, ok := seen[tok]; ok {
			e.count++
			continue
		}
		e := &entry{word: tok, count: 1}
		seen[tok] = e
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].count > entries[j].count })
	if len(entries) > maxKeywords {
		entries = entries[:maxKeywords]
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.word
	}
	return out
}

// Words returns the distinct tokens of text longer than minLen runes, in first-seen order.
// Stop words are kept.
func Words(text string, minLen int) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, tok := range Tokenize(text) {
		if utf8.RuneCountInString(tok) <= minLen {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// WordSet is Words as a set.
func WordSet(text string, minLen int) map[string]struct{} {
	words := Words(text, minLen)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
