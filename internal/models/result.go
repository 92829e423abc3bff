package models

// SearchResult is a single ranked hit. It is built per query and never persisted.
type SearchResult struct {
	DocumentID string           `json:"document_id"`
	Score      float64          `json:"score"`
	Highlights string           `json:"highlights"`
	Document   *IndexedDocument `json:"document"`
}

// SuggestionKind tags a follow-up action offered next to search results.
type SuggestionKind string

const (
	SuggestRelatedCourses SuggestionKind = "related_courses"
	SuggestQuiz           SuggestionKind = "quiz"
	SuggestSummarySheet   SuggestionKind = "summary"
)

// Suggestion is a follow-up the caller may dispatch. Exactly one payload field is set,
// matching Kind.
type Suggestion struct {
	Kind    SuggestionKind     `json:"kind"`
	Title   string             `json:"title"`
	Query   string             `json:"query"`
	Related *RelatedCourses    `json:"related,omitempty"`
	Quiz    *QuizOptions       `json:"quiz,omitempty"`
	Summary *SummarySheetInput `json:"summary,omitempty"`
}

// RelatedCourses asks for more courses in a subject.
type RelatedCourses struct {
	Subject string `json:"subject"`
}

// SummarySheetInput asks for a revision sheet on a topic.
type SummarySheetInput struct {
	Topic string `json:"topic"`
}

// AlternativeQuery is a "did you mean" hint produced by the completion service.
type AlternativeQuery struct {
	Query  string `json:"query"`
	Reason string `json:"reason"`
}

// SpellCorrection is a local "did you mean" fix drawn from the index vocabulary.
type SpellCorrection struct {
	Term      string `json:"term"`
	Suggested string `json:"suggested"`
	Distance  int    `json:"distance"`
}

// Categories groups results for display. Every result lands in exactly one bucket.
type Categories struct {
	Courses     []*SearchResult `json:"courses"`
	Exercises   []*SearchResult `json:"exercises"`
	Definitions []*SearchResult `json:"definitions"`
	Examples    []*SearchResult `json:"examples"`
}

// IntelligentSearchResponse bundles ranked results with suggestions and alternatives.
type IntelligentSearchResponse struct {
	Query       string             `json:"query"`
	Results     []*SearchResult    `json:"results"`
	Suggestions []Suggestion       `json:"suggestions"`
	Categories  Categories         `json:"categories"`
	Total       int                `json:"total"`
	DidYouMean  []AlternativeQuery `json:"did_you_mean"`
	// CorrectedQuery is set when some query terms are unknown to the index but close to
	// indexed terms.
	CorrectedQuery string            `json:"corrected_query,omitempty"`
	Corrections    []SpellCorrection `json:"corrections,omitempty"`
	QueryTime      int64             `json:"query_time_ms"`
}

// SearchResponse is the body returned by a plain search.
type SearchResponse struct {
	Query     string          `json:"query"`
	Results   []*SearchResult `json:"results"`
	Total     int             `json:"total"`
	QueryTime int64           `json:"query_time_ms"`
}
