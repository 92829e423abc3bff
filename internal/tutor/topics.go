package tutor

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/nathbrawlstatsr-afk/cours/internal/learner"
	"github.com/nathbrawlstatsr-afk/cours/internal/models"
)

const (
	minSuggestions = 3
	maxSuggestions = 5
	gapCutoff      = 70
	weakCutoff     = 50
	shortSession   = 10 * time.Minute
)

var generalTopics = map[string][]string{
	"maths":    {"Fractions", "Géométrie", "Algèbre", "Proportions", "Statistiques"},
	"francais": {"Grammaire", "Conjugaison", "Orthographe", "Lecture", "Rédaction"},
	"histoire": {"Moyen Âge", "Renaissance", "Révolution", "Guerres mondiales", "Union européenne"},
	"geo":      {"Climats", "Population", "Villes", "Développement", "Mondialisation"},
}

var defaultTopics = []string{"Bases", "Applications", "Approfondissement"}

// GeneralTopics returns low-priority suggestions for subject.
func GeneralTopics(subject string) []models.TopicSuggestion {
	topics, ok := generalTopics[subject]
	if !ok {
		topics = defaultTopics
	}
	out := make([]models.TopicSuggestion, 0, len(topics))
	for _, t := range topics {
		out = append(out, models.TopicSuggestion{
			Topic:               t,
			Priority:            learner.PriorityLow,
			Reason:              "Suggestion générale",
			SuggestedActivities: []string{"Cours complet", "Exercices variés", "Quiz d'évaluation"},
		})
	}
	return out
}

// ActivitiesForGap proposes activities matched to a gap's average score.
func ActivitiesForGap(gap *models.KnowledgeGap) []string {
	switch {
	case gap.AverageScore < weakCutoff:
		return []string{"Révision des bases avec fiches simples", "Exercices guidés pas à pas", "Vidéos explicatives courtes"}
	case gap.AverageScore < gapCutoff:
		return []string{"Exercices progressifs avec corrigés", "Quiz d'entraînement", "Mise en situation pratique"}
	default:
		return []string{"Problèmes complexes", "Défis de réflexion", "Applications avancées"}
	}
}

// SuggestTopics puts weak gap topics first, weakest first, and pads with general topics
// of subject up to three suggestions. At most five are returned.
func SuggestTopics(subject string, gaps map[string]*models.KnowledgeGap) []models.TopicSuggestion {
	type scored struct {
		models.TopicSuggestion
		score float64
	}
	var weak []scored
	for topic, gap := range gaps {
		if gap.AverageScore >= gapCutoff {
			continue
		}
		priority := learner.PriorityMedium
		if gap.AverageScore < weakCutoff {
			priority = learner.PriorityHigh
		}
		weak = append(weak, scored{
			TopicSuggestion: models.TopicSuggestion{
				Topic:               topic,
				Priority:            priority,
				Reason:              fmt.Sprintf("Score moyen: %d%%", int(math.Round(gap.AverageScore))),
				SuggestedActivities: ActivitiesForGap(gap),
			},
			score: gap.AverageScore,
		})
	}
	sort.Slice(weak, func(i, j int) bool {
		if weak[i].score != weak[j].score {
			return weak[i].score < weak[j].score
		}
		return weak[i].Topic < weak[j].Topic
	})

	out := make([]models.TopicSuggestion, 0, maxSuggestions)
	for _, w := range weak {
		out = append(out, w.TopicSuggestion)
	}
	if len(out) < minSuggestions {
		general := GeneralTopics(subject)
		out = append(out, general[:min(len(general), minSuggestions-len(out))]...)
	}
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

var confusionIndicators = []string{
	"je ne comprends pas",
	"confus",
	"pas clair",
	"compliqué",
	"difficile",
	"perdu",
}

// IsConfused reports whether question expresses confusion.
func IsConfused(question string) bool {
	q := strings.ToLower(question)
	for _, ind := range confusionIndicators {
		if strings.Contains(q, ind) {
			return true
		}
	}
	return false
}

var topicKeywords = []struct {
	subject  string
	keywords []string
}{
	{"maths", []string{"fraction", "équation", "géométrie", "calcul", "algèbre"}},
	{"francais", []string{"grammaire", "conjugaison", "orthographe", "texte", "rédaction"}},
	{"histoire", []string{"date", "événement", "personnage", "période", "guerre"}},
	{"geo", []string{"carte", "pays", "ville", "climat", "population"}},
}

// UnknownTopic is returned by ExtractTopic when no keyword matches.
const UnknownTopic = "sujet non identifié"

// ExtractTopic returns "{subject}: {keyword}" for the first known keyword found in
// question.
func ExtractTopic(question string) string {
	q := strings.ToLower(question)
	for _, s := range topicKeywords {
		for _, kw := range s.keywords {
			if strings.Contains(q, kw) {
				return s.subject + ": " + kw
			}
		}
	}
	return UnknownTopic
}

// FollowUpRecommendations proposes next steps after a session.
func FollowUpRecommendations(difficulties int, elapsed time.Duration) []models.FollowUp {
	var recs []models.FollowUp
	if difficulties > 0 {
		recs = append(recs, models.FollowUp{
			Type:          "remediation",
			Action:        "Réviser les points difficiles avec des exercices ciblés",
			Priority:      learner.PriorityHigh,
			EstimatedTime: "20 minutes",
		})
	}
	if elapsed < shortSession {
		recs = append(recs, models.FollowUp{
			Type:          "practice",
			Action:        "Pratiquer avec un quiz sur le sujet",
			Priority:      learner.PriorityMedium,
			EstimatedTime: "15 minutes",
		})
	}
	return append(recs, models.FollowUp{
		Type:          "consolidation",
		Action:        "Revoir la fiche de révision dans 24h (courbe de l'oubli)",
		Priority:      learner.PriorityMedium,
		EstimatedTime: "10 minutes",
	})
}
