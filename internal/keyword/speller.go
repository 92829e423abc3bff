package keyword

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Vocabulary exposes the indexed terms and how many documents carry each one.
type Vocabulary interface {
	TermFrequencies() map[string]int
}

// Correction is a replacement proposed for one query term.
type Correction struct {
	Term      string `json:"term"`
	Suggested string `json:"suggested"`
	Distance  int    `json:"distance"`
	Frequency int    `json:"frequency"`
}

// Speller proposes in-vocabulary replacements for query terms that match nothing.
type Speller struct {
	vocab       Vocabulary
	maxDistance int
	minFreq     int
}

// SpellerOption configures a Speller.
type SpellerOption func(*Speller)

// WithMaxDistance sets the maximum edit distance accepted for a correction.
func WithMaxDistance(d int) SpellerOption {
	return func(s *Speller) {
		if d > 0 {
			s.maxDistance = d
		}
	}
}

// WithMinFrequency ignores vocabulary terms carried by fewer documents than f.
func WithMinFrequency(f int) SpellerOption {
	return func(s *Speller) {
		if f > 0 {
			s.minFreq = f
		}
	}
}

// NewSpeller returns a Speller over vocab. Defaults: distance 2, frequency 1.
func NewSpeller(vocab Vocabulary, opts ...SpellerOption) *Speller {
	s := &Speller{vocab: vocab, maxDistance: 2, minFreq: 1}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Correct checks each keyword-sized term of query against the vocabulary. It returns the
// corrected query and the corrections made; the query is returned unchanged when every
// term is known or nothing close enough exists.
func (s *Speller) Correct(query string) (string, []Correction) {
	terms := Tokenize(query)
	if len(terms) == 0 || s.vocab == nil {
		return query, nil
	}
	freqs := s.vocab.TermFrequencies()
	var corrections []Correction
	out := make([]string, len(terms))
	for i, term := range terms {
		out[i] = term
		if utf8.RuneCountInString(term) <= minKeywordLen || IsStopWord(term) {
			continue
		}
		if _, known := freqs[term]; known {
			continue
		}
		if c, ok := s.best(term, freqs); ok {
			corrections = append(corrections, c)
			out[i] = c.Suggested
		}
	}
	if len(corrections) == 0 {
		return query, nil
	}
	return strings.Join(out, " "), corrections
}

// best picks the closest term, preferring frequent terms and then alphabetical order.
func (s *Speller) best(term string, freqs map[string]int) (Correction, bool) {
	var candidates []Correction
	termLen := utf8.RuneCountInString(term)
	for cand, freq := range freqs {
		if freq < s.minFreq {
			continue
		}
		diff := utf8.RuneCountInString(cand) - termLen
		if diff < 0 {
			diff = -diff
		}
		if diff > s.maxDistance {
			continue
		}
		if d := LevenshteinDistance(term, cand); d <= s.maxDistance {
			candidates = append(candidates, Correction{Term: term, Suggested: cand, Distance: d, Frequency: freq})
		}
	}
	if len(candidates) == 0 {
		return Correction{}, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		si := float64(candidates[i].Frequency) / float64(candidates[i].Distance+1)
		sj := float64(candidates[j].Frequency) / float64(candidates[j].Distance+1)
		if si != sj {
			return si > sj
		}
		return candidates[i].Suggested < candidates[j].Suggested
	})
	return candidates[0], true
}

// LevenshteinDistance counts the single-rune insertions, deletions, and substitutions
// needed to turn a into b.
func LevenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, minInt(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
