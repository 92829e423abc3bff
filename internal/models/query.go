package models

import "math"

// Search option defaults.
const (
	DefaultLimit     = 10
	DefaultThreshold = 0.3
	// IntelligentSearchLimit is the generous limit used by intelligent search.
	IntelligentSearchLimit = 20
)

// SearchOptions controls a single search call. Start from DefaultSearchOptions and
// override fields; a zero Limit is treated as DefaultLimit.
type SearchOptions struct {
	Limit         int               `json:"limit"`
	Threshold     float64           `json:"threshold"`
	UseSimilarity bool              `json:"use_similarity"`
	Filters       map[string]string `json:"filters,omitempty"`
}

// DefaultSearchOptions returns limit 10, threshold 0.3, similarity enabled and no filters.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		Limit:         DefaultLimit,
		Threshold:     DefaultThreshold,
		UseSimilarity: true,
	}
}

// Validate rejects malformed options and fills in the default limit.
func (o *SearchOptions) Validate() error {
	if o.Limit < 0 {
		return &ValidationError{Field: "limit", Message: "must not be negative"}
	}
	if math.IsNaN(o.Threshold) || o.Threshold < 0 {
		return &ValidationError{Field: "threshold", Message: "must be a non-negative number"}
	}
	if o.Limit == 0 {
		o.Limit = DefaultLimit
	}
	return nil
}

// SearchRequest is the JSON body accepted by the search endpoints.
type SearchRequest struct {
	Query string `json:"query"`
	SearchOptions
}
