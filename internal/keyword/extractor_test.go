package keyword

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want []string
	}{
		{"empty text", "", 10, []string{}},
		{"only short words", "le la un les des mon", 10, []string{}},
		{"only stop words", "dans avec pour cette leurs quelle", 10, []string{}},
		{"frequency first", "Les fractions sont des fractions importantes pour les fractions", 1, []string{"fractions"}},
		{"ties keep first-seen order", "zèbre alpha zèbre alpha gamma", 10, []string{"zèbre", "alpha", "gamma"}},
		{"punctuation splits words", "l'addition, c'est: facile!", 10, []string{"addition", "facile"}},
		{"accented words stay whole", "Le numérateur est en haut", 10, []string{"numérateur", "haut"}},
		{"limit respected", "alpha beta1 gamma delta", 2, []string{"alpha", "beta1"}},
		{"zero max", "fractions", 0, []string{}},
		{"negative max", "fractions", -1, []string{}},
		{"snowball stop words dropped", "nous étudions", 10, []string{"étudions"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text, tt.max)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_Deterministic(t *testing.T) {
	text := "Les fractions représentent une partie d'un tout. Le numérateur est en haut, le dénominateur en bas."
	first := Extract(text, DefaultMaxKeywords)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Extract(text, DefaultMaxKeywords))
	}
}

func TestExtract_FractionsRankFirst(t *testing.T) {
	got := Extract("Les fractions sont des fractions importantes pour les fractions", 3)
	require.NotEmpty(t, got)
	assert.Equal(t, "fractions", got[0])
	assert.LessOrEqual(t, len(got), 3)
}

func TestExtract_NormalizesDecomposedAccents(t *testing.T) {
	decomposed := "nume\u0301rateur"
	assert.Equal(t, []string{"numérateur"}, Extract(decomposed, 10))
}

func TestWords(t *testing.T) {
	got := Words("Les fractions, les Fractions et un tout", 2)
	assert.Equal(t, []string{"les", "fractions", "tout"}, got)

	set := WordSet("Une partie d'un tout", 2)
	assert.Contains(t, set, "une")
	assert.Contains(t, set, "partie")
	assert.NotContains(t, set, "un")
}

func TestIsStopWord(t *testing.T) {
	assert.True(t, IsStopWord("dans"))
	assert.True(t, IsStopWord("cest"))
	assert.True(t, IsStopWord("nous"))
	assert.False(t, IsStopWord("fractions"))
}
