package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nathbrawlstatsr-afk/cours/internal/completion"
	"github.com/nathbrawlstatsr-afk/cours/internal/models"
)

const alternativesSite = "search_alternatives"

const alternativesPrompt = `Pour la requête de recherche "%s", suggère 3 variantes ou corrections.

Réponds uniquement avec ce format JSON:
{
  "alternatives": [
    {"query": "variante 1", "reason": "orthographe alternative"},
    {"query": "variante 2", "reason": "terme plus précis"},
    {"query": "variante 3", "reason": "synonyme courant"}
  ]
}`

type alternativesResponse struct {
	Alternatives []models.AlternativeQuery `json:"alternatives"`
}

// IntelligentSearch runs a generous search and adds suggestions, categories, spelling
// corrections, and alternative queries. Enrichment failures leave their field empty and
// never fail the call.
func (e *Engine) IntelligentSearch(ctx context.Context, query string, filters map[string]string) (*models.IntelligentSearchResponse, error) {
	start := time.Now()
	opts := models.DefaultSearchOptions()
	opts.Limit = models.IntelligentSearchLimit
	opts.Filters = filters

	results, err := e.search(ctx, query, opts, "intelligent")
	if err != nil {
		return nil, err
	}

	resp := &models.IntelligentSearchResponse{
		Query:       query,
		Results:     results,
		Suggestions: BuildSuggestions(query, results),
		Categories:  Categorize(results),
		Total:       len(results),
		DidYouMean:  e.alternatives(ctx, query),
	}
	if e.speller != nil {
		if corrected, corrections := e.speller.Correct(query); len(corrections) > 0 {
			resp.CorrectedQuery = corrected
			for _, c := range corrections {
				resp.Corrections = append(resp.Corrections, models.SpellCorrection{
					Term:      c.Term,
					Suggested: c.Suggested,
					Distance:  c.Distance,
				})
			}
		}
	}
	resp.QueryTime = time.Since(start).Milliseconds()
	return resp, nil
}

// BuildSuggestions returns the related-courses suggestion (only when there is a top
// result) followed by the quiz and summary-sheet shortcuts.
func BuildSuggestions(query string, results []*models.SearchResult) []models.Suggestion {
	suggestions := make([]models.Suggestion, 0, 3)
	if len(results) > 0 && results[0].Document != nil {
		subject := results[0].Document.Metadata.Subject
		suggestions = append(suggestions, models.Suggestion{
			Kind:    models.SuggestRelatedCourses,
			Title:   "Cours similaires en " + subject,
			Query:   "subject:" + subject,
			Related: &models.RelatedCourses{Subject: subject},
		})
	}
	suggestions = append(suggestions,
		models.Suggestion{
			Kind:  models.SuggestQuiz,
			Title: "Quiz sur ce sujet",
			Query: query + " quiz",
			Quiz: &models.QuizOptions{
				Subject:    "general",
				Topic:      query,
				Difficulty: models.DifficultyMedium,
			},
		},
		models.Suggestion{
			Kind:    models.SuggestSummarySheet,
			Title:   "Fiche de révision",
			Query:   query + " fiche",
			Summary: &models.SummarySheetInput{Topic: query},
		},
	)
	return suggestions
}

// Categorize buckets results in order. Courses are recognised by metadata type; other
// documents by case-sensitive words in their content.
func Categorize(results []*models.SearchResult) models.Categories {
	cats := models.Categories{
		Courses:     []*models.SearchResult{},
		Exercises:   []*models.SearchResult{},
		Definitions: []*models.SearchResult{},
		Examples:    []*models.SearchResult{},
	}
	for _, r := range results {
		doc := r.Document
		if doc == nil {
			cats.Examples = append(cats.Examples, r)
			continue
		}
		content := doc.Content
		switch {
		case doc.Metadata.Type == models.DocTypeCourse:
			cats.Courses = append(cats.Courses, r)
		case strings.Contains(content, "exercice") || strings.Contains(content, "problème"):
			cats.Exercises = append(cats.Exercises, r)
		case strings.Contains(content, "définit") || strings.Contains(content, "signifie"):
			cats.Definitions = append(cats.Definitions, r)
		default:
			cats.Examples = append(cats.Examples, r)
		}
	}
	return cats
}

func (e *Engine) alternatives(ctx context.Context, query string) []models.AlternativeQuery {
	empty := []models.AlternativeQuery{}
	if e.completion == nil || strings.TrimSpace(query) == "" {
		return empty
	}
	resp := completion.JSON(ctx, e.completion, alternativesSite, completion.Request{
		Prompt: fmt.Sprintf(alternativesPrompt, query),
	}, alternativesResponse{Alternatives: empty})

	out := make([]models.AlternativeQuery, 0, len(resp.Alternatives))
	for _, alt := range resp.Alternatives {
		if strings.TrimSpace(alt.Query) != "" {
			out = append(out, alt)
		}
	}
	return out
}
