package indexer

import (
	"reflect"
	"testing"
)

func TestChunker_Chunk(t *testing.T) {
	tests := []struct {
		name          string
		size, overlap int
		text          string
		want          []string
	}{
		{"overlapping windows", 3, 1, "un deux trois quatre cinq six sept",
			[]string{"un deux trois", "trois quatre cinq", "cinq six sept"}},
		{"last window ends on last word", 3, 1, "un deux trois quatre",
			[]string{"un deux trois", "trois quatre"}},
		{"shorter than one window", 10, 2, "un deux", []string{"un deux"}},
		{"no overlap", 2, 0, "a b c d", []string{"a b", "c d"}},
		{"overlap clamped", 2, 5, "a b c", []string{"a b", "b c"}},
		{"zero size", 0, 0, "a b", []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := NewChunker(tt.size, tt.overlap).Chunk(tt.text)
			got := make([]string, len(chunks))
			for i, c := range chunks {
				if c.Index != i {
					t.Errorf("chunk %d has Index %d", i, c.Index)
				}
				got[i] = c.Content
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Chunk() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChunker_ChunkEmpty(t *testing.T) {
	if chunks := NewChunker(5, 1).Chunk("   \n\t  "); chunks != nil {
		t.Errorf("empty text should return nil, got %v", chunks)
	}
}

func TestPreprocess(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  a  b  ", "a b"},
		{"ligne 1\r\n\tligne 2", "ligne 1 ligne 2"},
		{"bell\x07 ici", "bell ici"},
		{"café", "café"},
		{"hello�world", "hello world"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Preprocess(tt.in); got != tt.want {
			t.Errorf("Preprocess(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
