package completion

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/nathbrawlstatsr-afk/cours/internal/metrics"
)

// Fallback wraps a Client so that every call site gets its declared default on failure.
// Failures are logged and counted per site; they never reach the caller.
type Fallback struct {
	client Client
	logger *zap.Logger
}

// NewFallback decorates client. A nil client behaves like Offline.
func NewFallback(client Client, logger *zap.Logger) *Fallback {
	if client == nil {
		client = Offline{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fallback{client: client, logger: logger}
}

// Client returns the decorated client.
func (f *Fallback) Client() Client {
	return f.client
}

// Offline reports whether the decorated client is the mock-mode client.
func (f *Fallback) Offline() bool {
	_, ok := f.client.(Offline)
	return ok
}

// Text returns the completion for req, or fallback when the call fails.
func (f *Fallback) Text(ctx context.Context, site string, req Request, fallback string) string {
	text, err := f.client.Complete(ctx, req)
	if err != nil {
		f.record(site, err)
		return fallback
	}
	return strings.TrimSpace(text)
}

// Raw returns the completion for req and the error, logging and counting a failure
// without substituting a value. Use it where the caller has no meaningful default.
func (f *Fallback) Raw(ctx context.Context, site string, req Request) (string, error) {
	text, err := f.client.Complete(ctx, req)
	if err != nil {
		f.record(site, err)
		return "", err
	}
	return text, nil
}

func (f *Fallback) record(site string, err error) {
	metrics.CompletionFallbacksTotal.WithLabelValues(site).Inc()
	if IsOffline(err) {
		f.logger.Debug("completion offline, using fallback", zap.String("site", site))
		return
	}
	f.logger.Warn("completion failed, using fallback", zap.String("site", site), zap.Error(err))
}

// JSON requests a JSON response and decodes it into T. Any failure, including malformed
// JSON, yields fallback.
func JSON[T any](ctx context.Context, f *Fallback, site string, req Request, fallback T) T {
	req.JSON = true
	text, err := f.client.Complete(ctx, req)
	if err != nil {
		f.record(site, err)
		return fallback
	}
	var out T
	if err := DecodeJSON(text, &out); err != nil {
		f.record(site, err)
		return fallback
	}
	return out
}

var trailingComma = regexp.MustCompile(`,\s*([}\]])`)

// DecodeJSON strips Markdown code fences and text around the outermost JSON value, drops
// trailing commas, and unmarshals into v.
func DecodeJSON(text string, v any) error {
	return json.Unmarshal([]byte(CleanJSON(text)), v)
}

// CleanJSON returns the JSON value embedded in a model response.
func CleanJSON(text string) string {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	if start := strings.IndexAny(s, "{["); start > 0 {
		s = s[start:]
	}
	if end := strings.LastIndexAny(s, "}]"); end >= 0 && end < len(s)-1 {
		s = s[:end+1]
	}
	return trailingComma.ReplaceAllString(s, "$1")
}
