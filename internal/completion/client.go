// Package completion talks to the language-model service that generates courses, quizzes,
// and tutoring replies. Every call site goes through Fallback, which answers with a
// declared default whenever the remote call fails or no credential is configured.
package completion

import (
	"context"
	"errors"
	"fmt"

	"github.com/nathbrawlstatsr-afk/cours/internal/models"
)

// Client sends a prompt and returns the generated text.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}

// Request is a single prompt with an optional system message.
type Request struct {
	Prompt string
	System string
	// JSON asks the provider for a JSON object response.
	JSON bool
}

// ErrOffline is returned by the offline client.
var ErrOffline = fmt.Errorf("no completion credential configured: %w", models.ErrService)

// ServiceError reports a failed provider call: transport failure, non-2xx status, timeout,
// or an empty response.
type ServiceError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ServiceError) Unwrap() []error {
	return []error{models.ErrService, e.Err}
}

// Offline is the mock-mode client. It never reaches the network.
type Offline struct{}

func (Offline) Name() string { return "offline" }

func (Offline) Complete(context.Context, Request) (string, error) {
	return "", ErrOffline
}

// IsOffline reports whether err came from an Offline client.
func IsOffline(err error) bool {
	return errors.Is(err, ErrOffline)
}
