package indexer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nathbrawlstatsr-afk/cours/internal/config"
	"github.com/nathbrawlstatsr-afk/cours/internal/extract"
	"github.com/nathbrawlstatsr-afk/cours/internal/fileid"
	"github.com/nathbrawlstatsr-afk/cours/internal/index"
	"github.com/nathbrawlstatsr-afk/cours/internal/metrics"
	"github.com/nathbrawlstatsr-afk/cours/internal/models"
	"go.uber.org/zap"
)

// Extra metadata keys set on material chunks.
const (
	MetaPath  = "path"
	MetaChunk = "chunk"
)

// ErrNotAllowed is returned for files whose extension is not ingested.
var ErrNotAllowed = errors.New("material extension not allowed")

type fileStamp struct {
	modTime time.Time
	size    int64
}

// Ingester extracts, chunks, and indexes course material files. Every chunk of one file
// shares a SourceID derived from the file's absolute path, so re-ingesting a file replaces
// its chunks and Remove deletes them.
type Ingester struct {
	index      *index.Index
	extractor  *extract.Extractor
	chunker    *Chunker
	subject    string
	extensions []string
	logger     *zap.Logger

	mu    sync.Mutex
	files map[string]fileStamp
}

// IngesterOption configures an Ingester.
type IngesterOption func(*Ingester)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) IngesterOption {
	return func(in *Ingester) { in.logger = l }
}

// WithExtractor replaces the default extractor.
func WithExtractor(e *extract.Extractor) IngesterOption {
	return func(in *Ingester) {
		if e != nil {
			in.extractor = e
		}
	}
}

// NewIngester creates an ingester writing into idx with the chunking, subject, and
// extension settings of cfg. An empty extension list accepts every extractable format.
func NewIngester(idx *index.Index, cfg *config.MaterialsConfig, opts ...IngesterOption) *Ingester {
	in := &Ingester{
		index:      idx,
		extractor:  extract.NewExtractor(),
		chunker:    NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		subject:    cfg.Subject,
		extensions: cfg.Extensions,
		files:      make(map[string]fileStamp),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Allowed reports whether path has an extension the ingester accepts.
func (in *Ingester) Allowed(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if !in.extractor.Supports(ext) {
		return false
	}
	return len(in.extensions) == 0 || extensionAllowed(ext, in.extensions)
}

// IngestFile indexes the file at path and returns the number of chunks written. A file
// already ingested with the same modification time and size is skipped and reports zero.
func (in *Ingester) IngestFile(ctx context.Context, path string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	if !in.Allowed(absPath) {
		return 0, fmt.Errorf("%s: %w", absPath, ErrNotAllowed)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return 0, fmt.Errorf("stat material: %w", err)
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("not a regular file: %s", absPath)
	}
	stamp := fileStamp{modTime: info.ModTime(), size: info.Size()}
	if in.unchanged(absPath, stamp) {
		metrics.MaterialsFilesTotal.WithLabelValues("unchanged").Inc()
		if in.logger != nil {
			in.logger.Debug("ingester skipping unchanged file", zap.String("path", absPath))
		}
		return 0, nil
	}

	text, err := in.extractor.Extract(absPath)
	if err != nil {
		metrics.MaterialsFilesTotal.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("extract %s: %w", absPath, err)
	}
	chunks := in.chunker.Chunk(Preprocess(text))

	sourceID := fileid.ID(absPath)
	title := filepath.Base(absPath)
	in.mu.Lock()
	replaced := in.index.DeleteBySource(sourceID)
	for _, c := range chunks {
		in.index.IndexContent(c.Content, models.Metadata{
			Subject:  in.subject,
			Type:     models.DocTypeMaterial,
			Title:    title,
			SourceID: sourceID,
			Extra: map[string]string{
				MetaPath:  absPath,
				MetaChunk: strconv.Itoa(c.Index),
			},
		})
	}
	in.files[absPath] = stamp
	in.mu.Unlock()

	metrics.MaterialsFilesTotal.WithLabelValues("indexed").Inc()
	metrics.IndexDocuments.Set(float64(in.index.Len()))
	if in.logger != nil {
		in.logger.Debug("ingester file indexed",
			zap.String("path", absPath),
			zap.String("source_id", sourceID),
			zap.Int("chunks", len(chunks)),
			zap.Int("replaced", replaced))
	}
	return len(chunks), nil
}

func (in *Ingester) unchanged(absPath string, stamp fileStamp) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	prev, ok := in.files[absPath]
	return ok && prev.size == stamp.size && prev.modTime.Equal(stamp.modTime)
}

// Remove deletes every chunk of the file at path and returns how many were removed.
func (in *Ingester) Remove(path string) int {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	in.mu.Lock()
	n := in.index.DeleteBySource(fileid.ID(absPath))
	delete(in.files, absPath)
	in.mu.Unlock()

	metrics.MaterialsFilesTotal.WithLabelValues("removed").Inc()
	metrics.IndexDocuments.Set(float64(in.index.Len()))
	if in.logger != nil {
		in.logger.Debug("ingester file removed", zap.String("path", absPath), zap.Int("chunks", n))
	}
	return n
}

// IngestDir ingests every allowed regular file under dir, descending into subdirectories
// when recursive is set. A file that fails is logged and skipped; the failures are
// returned joined. It returns the number of files that produced chunks.
func (in *Ingester) IngestDir(ctx context.Context, dir string, recursive bool) (int, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return 0, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("not a directory: %s", absDir)
	}

	var n int
	var errs []error
	err = filepath.WalkDir(absDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != absDir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !in.Allowed(path) {
			return nil
		}
		// Follow symlinks; only regular targets are ingested.
		if finfo, statErr := os.Stat(path); statErr != nil || !finfo.Mode().IsRegular() {
			return nil
		}
		chunks, ingestErr := in.IngestFile(ctx, path)
		if ingestErr != nil {
			if in.logger != nil {
				in.logger.Warn("ingester skipping file", zap.String("path", path), zap.Error(ingestErr))
			}
			errs = append(errs, ingestErr)
			return nil
		}
		if chunks > 0 {
			n++
		}
		return nil
	})
	if err != nil {
		errs = append(errs, err)
	}
	return n, errors.Join(errs...)
}

// Files returns the absolute paths currently ingested, sorted.
func (in *Ingester) Files() []string {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := make([]string, 0, len(in.files))
	for p := range in.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func extensionAllowed(ext string, allowed []string) bool {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	for _, a := range allowed {
		if strings.TrimPrefix(strings.ToLower(a), ".") == ext {
			return true
		}
	}
	return false
}
