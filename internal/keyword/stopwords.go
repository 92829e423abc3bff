package keyword

import (
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/fr"
)

// baseStopWords are the function words dropped from every keyword set.
var baseStopWords = []string{
	"dans", "avec", "pour", "par", "sur", "sous", "vers", "chez",
	"dont", "quoi", "quand", "que", "qui", "quel", "quelle",
	"cest", "cette", "ces", "ceux", "celles", "leur", "leurs",
}

var stopWords = buildStopWords()

func buildStopWords() map[string]struct{} {
	set := make(map[string]struct{}, len(baseStopWords)+200)
	for _, w := range baseStopWords {
		set[w] = struct{}{}
	}
	// bleve ships the snowball French list; lines carry "|" comments that LoadBytes strips.
	// The list is compiled in, so a load failure is a build defect.
	tm := analysis.NewTokenMap()
	if err := tm.LoadBytes(fr.FrenchStopWords); err != nil {
		panic("keyword: loading French stop words: " + err.Error())
	}
	for w := range tm {
		set[w] = struct{}{}
	}
	return set
}

// IsStopWord reports whether word (already lower-cased) is a stop word.
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}
