package search

import (
	"strings"

	"github.com/nathbrawlstatsr-afk/cours/internal/models"
)

// ProcessQuery collapses whitespace in query, validates opts, and applies defaults.
func ProcessQuery(query string, opts *models.SearchOptions) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(query), " "), nil
}
