package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nathbrawlstatsr-afk/cours/internal/config"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiskUsageBytes(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "cours.db")
	badgerDir := filepath.Join(dir, "badger")
	writeFile(t, db, 5)
	writeFile(t, filepath.Join(badgerDir, "000001.vlog"), 2)
	writeFile(t, filepath.Join(badgerDir, "wal", "MANIFEST"), 1)

	tests := []struct {
		name  string
		paths []string
		want  int64
	}{
		{"database file", []string{db}, 5},
		{"badger directory walked", []string{badgerDir}, 3},
		{"file plus directory", []string{db, badgerDir}, 8},
		{"missing path counts zero", []string{db, filepath.Join(dir, "absent.db")}, 5},
		{"blank and in-memory ignored", []string{"", ":memory:", db}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DiskUsageBytes(tt.paths...)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("DiskUsageBytes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPaths_SQLiteUsage(t *testing.T) {
	cfg := &config.StorageConfig{Driver: config.DriverSQLite, DatabasePath: filepath.Join(t.TempDir(), "cours.db")}
	s, err := NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if err := s.Set(context.Background(), "k", "v"); err != nil {
		t.Fatal(err)
	}
	got, err := DiskUsageBytes(Paths(cfg)...)
	if err != nil {
		t.Fatal(err)
	}
	if got == 0 {
		t.Error("expected non-zero usage for an open sqlite database")
	}
	if p := Paths(&config.StorageConfig{Driver: config.DriverMemory}); p != nil {
		t.Errorf("memory driver has no paths, got %v", p)
	}
}
