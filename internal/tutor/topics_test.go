package tutor

import (
	"testing"
	"time"

	"github.com/nathbrawlstatsr-afk/cours/internal/models"
)

func TestExtractTopic(t *testing.T) {
	tests := []struct {
		question string
		want     string
	}{
		{"Comment additionner une FRACTION ?", "maths: fraction"},
		{"J'ai du mal avec la conjugaison", "francais: conjugaison"},
		{"Quelle est la date de la Révolution ?", "histoire: date"},
		{"Le climat de la France", "geo: climat"},
		{"Bonjour", UnknownTopic},
		{"calcul de la population", "maths: calcul"},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			if got := ExtractTopic(tt.question); got != tt.want {
				t.Errorf("ExtractTopic(%q) = %q, want %q", tt.question, got, tt.want)
			}
		})
	}
}

func TestIsConfused(t *testing.T) {
	tests := []struct {
		question string
		want     bool
	}{
		{"Je ne comprends pas", true},
		{"Je suis PERDU", true},
		{"c'est pas clair du tout", true},
		{"Quelle est la réponse ?", false},
	}
	for _, tt := range tests {
		if got := IsConfused(tt.question); got != tt.want {
			t.Errorf("IsConfused(%q) = %v, want %v", tt.question, got, tt.want)
		}
	}
}

func TestSuggestTopics(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		gaps    map[string]*models.KnowledgeGap
		want    []string
		first   string
	}{
		{
			name:    "no gaps uses general topics",
			subject: "histoire",
			want:    []string{"Moyen Âge", "Renaissance", "Révolution"},
			first:   "low",
		},
		{
			name:    "unknown subject",
			subject: "chimie",
			want:    []string{"Bases", "Applications", "Approfondissement"},
			first:   "low",
		},
		{
			name:    "gaps first, weakest first, strong topics skipped",
			subject: "maths",
			gaps: map[string]*models.KnowledgeGap{
				"equations": {AverageScore: 60},
				"aires":     {AverageScore: 30},
				"angles":    {AverageScore: 90},
			},
			want:  []string{"aires", "equations", "Fractions"},
			first: "high",
		},
		{
			name:    "at most five",
			subject: "maths",
			gaps: map[string]*models.KnowledgeGap{
				"a": {AverageScore: 10}, "b": {AverageScore: 20}, "c": {AverageScore: 30},
				"d": {AverageScore: 40}, "e": {AverageScore: 50}, "f": {AverageScore: 60},
			},
			want:  []string{"a", "b", "c", "d", "e"},
			first: "high",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuggestTopics(tt.subject, tt.gaps)
			if len(got) != len(tt.want) {
				t.Fatalf("SuggestTopics() returned %d suggestions, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].Topic != tt.want[i] {
					t.Errorf("suggestion %d = %q, want %q", i, got[i].Topic, tt.want[i])
				}
			}
			if got[0].Priority != tt.first {
				t.Errorf("first priority = %q, want %q", got[0].Priority, tt.first)
			}
		})
	}
}

func TestSuggestTopics_Reason(t *testing.T) {
	got := SuggestTopics("maths", map[string]*models.KnowledgeGap{"aires": {AverageScore: 55.6}})
	if got[0].Reason != "Score moyen: 56%" || got[0].Priority != "medium" {
		t.Errorf("unexpected suggestion %+v", got[0])
	}
	if got[0].SuggestedActivities[0] != "Exercices progressifs avec corrigés" {
		t.Errorf("activities = %v", got[0].SuggestedActivities)
	}
}

func TestFollowUpRecommendations(t *testing.T) {
	recs := FollowUpRecommendations(0, 30*time.Minute)
	if len(recs) != 1 || recs[0].Type != "consolidation" {
		t.Errorf("long session without difficulties = %+v", recs)
	}
	recs = FollowUpRecommendations(2, time.Minute)
	if len(recs) != 3 || recs[0].Priority != "high" || recs[1].EstimatedTime != "15 minutes" {
		t.Errorf("short session with difficulties = %+v", recs)
	}
}
