// Package indexer turns course material files into searchable index documents.
package indexer

import "strings"

// Chunk is one window of a material's words.
type Chunk struct {
	Index   int
	Content string
}

// Chunker splits text into overlapping word-based chunks.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a chunker with the given size and overlap (in words). A size below
// one is treated as one; an overlap that would stall the window is clamped.
func NewChunker(size, overlap int) *Chunker {
	if size < 1 {
		size = 1
	}
	if overlap < 0 || overlap >= size {
		overlap = size - 1
	}
	return &Chunker{size: size, overlap: overlap}
}

// Chunk splits text into windows of size words, each starting size-overlap words after
// the previous one. The last window always ends on the last word.
func (c *Chunker) Chunk(text string) []Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	step := c.size - c.overlap
	chunks := make([]Chunk, 0, len(words)/step+1)
	for i := 0; i < len(words); i += step {
		end := min(i+c.size, len(words))
		chunks = append(chunks, Chunk{Index: len(chunks), Content: strings.Join(words[i:end], " ")})
		if end == len(words) {
			break
		}
	}
	return chunks
}
