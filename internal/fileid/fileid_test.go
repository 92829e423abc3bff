package fileid

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestID(t *testing.T) {
	id := ID("/cours/maths/fractions.pdf")
	if id != ID("/cours/maths/fractions.pdf") {
		t.Error("same path should give same ID")
	}
	if !strings.HasPrefix(id, prefix) {
		t.Errorf("missing prefix: %q", id)
	}
	if !Is(id) {
		t.Errorf("Is(%q) = false", id)
	}
}

func TestID_differentPaths(t *testing.T) {
	if ID("/cours/a.txt") == ID("/cours/b.txt") {
		t.Error("different paths should give different IDs")
	}
}

func TestID_cleaned(t *testing.T) {
	tests := []struct {
		name string
		a, b string
	}{
		{"trailing slash", "/cours/maths", "/cours/maths/"},
		{"dot segment", "/cours/maths", "/cours/./maths"},
		{"parent segment", "/cours/maths", "/cours/histoire/../maths"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if ID(tt.a) != ID(tt.b) {
				t.Errorf("ID(%q) != ID(%q)", tt.a, tt.b)
			}
		})
	}
}

func TestID_absolute(t *testing.T) {
	abs, err := filepath.Abs(".")
	if err != nil {
		t.Fatal(err)
	}
	if !Is(ID(abs)) {
		t.Errorf("absolute path: got %q", ID(abs))
	}
}

func TestIs(t *testing.T) {
	for _, s := range []string{"", "material:", "doc-1", "file:" + strings.Repeat("a", 32)} {
		if Is(s) {
			t.Errorf("Is(%q) = true", s)
		}
	}
}
