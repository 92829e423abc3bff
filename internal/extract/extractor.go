// Package extract pulls plain text out of course materials: text files, PDF, Office Open
// XML, OpenDocument, RTF, and spreadsheets.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnsupportedFormat is returned for file extensions with no extractor.
var ErrUnsupportedFormat = errors.New("unsupported material format")

// Func extracts text from the raw bytes of one file.
type Func func(content []byte) (string, error)

// Extractor dispatches on the lower-cased file extension.
type Extractor struct {
	handlers map[string]Func
}

// NewExtractor returns an Extractor knowing every built-in format.
func NewExtractor() *Extractor {
	return &Extractor{handlers: map[string]Func{
		".txt":  extractPlain,
		".md":   extractPlain,
		".rst":  extractPlain,
		".pdf":  extractPDF,
		".docx": extractDOCX,
		".pptx": extractPPTX,
		".odp":  extractOpenDocument,
		".ods":  extractOpenDocument,
		".odt":  extractWithCat,
		".rtf":  extractWithCat,
		".xlsx": extractSpreadsheet,
	}}
}

// Register adds or replaces the handler for ext (including the leading dot).
func (e *Extractor) Register(ext string, fn Func) {
	e.handlers[strings.ToLower(ext)] = fn
}

// Supports reports whether ext has a handler.
func (e *Extractor) Supports(ext string) bool {
	_, ok := e.handlers[strings.ToLower(ext)]
	return ok
}

// Extensions returns the supported extensions, sorted.
func (e *Extractor) Extensions() []string {
	out := make([]string, 0, len(e.handlers))
	for ext := range e.handlers {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Extract reads the file at path and returns its text.
func (e *Extractor) Extract(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !e.Supports(ext) {
		return "", fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read material: %w", err)
	}
	return e.ExtractBytes(content, ext)
}

// ExtractBytes extracts text from content in the format named by ext (e.g. ".pdf").
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	fn, ok := e.handlers[strings.ToLower(ext)]
	if !ok {
		return "", fmt.Errorf("%q: %w", ext, ErrUnsupportedFormat)
	}
	return fn(content)
}
