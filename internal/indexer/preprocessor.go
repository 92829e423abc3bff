package indexer

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Preprocess normalizes extracted text for indexing: NFC composition, control characters
// dropped, whitespace and undecodable bytes collapsed to one space, ends trimmed.
func Preprocess(text string) string {
	text = norm.NFC.String(text)
	var b strings.Builder
	b.Grow(len(text))
	pendingSpace := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r), r == unicode.ReplacementChar:
			pendingSpace = b.Len() > 0
		case unicode.IsControl(r):
		default:
			if pendingSpace {
				b.WriteByte(' ')
				pendingSpace = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}
