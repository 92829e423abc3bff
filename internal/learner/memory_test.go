package learner

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathbrawlstatsr-afk/cours/internal/models"
)

func TestMemory_Context(t *testing.T) {
	m := NewMemory()
	for i := 0; i < 25; i++ {
		m.AddContext(models.RoleUser, fmt.Sprintf("msg %d", i))
	}
	ctx := m.Context()
	require.Len(t, ctx, 10)
	assert.Equal(t, "msg 15", ctx[0].Content)
	assert.Equal(t, "msg 24", ctx[9].Content)

	m.mu.RLock()
	assert.Len(t, m.context, 20)
	assert.Equal(t, "msg 5", m.context[0].Content)
	m.mu.RUnlock()
}

func TestMemory_AnalyzeLearningStyle(t *testing.T) {
	tests := []struct {
		name         string
		interactions []string
		want         string
	}{
		{"no interactions", nil, "reading"},
		{"unknown types", []string{"login", "logout"}, "reading"},
		{"videos", []string{"video_watch", "text_read", "video_watch"}, "visual"},
		{"exercises beat quizzes", []string{"quiz_attempt", "exercise_complete", "audio_play"}, "kinesthetic"},
		{"tie keeps first style", []string{"audio_play", "video_watch"}, "visual"},
		{"tie with reading", []string{"text_read", "exercise_complete"}, "reading"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMemory()
			var in []models.Interaction
			for _, typ := range tt.interactions {
				in = append(in, models.Interaction{Type: typ})
			}
			assert.Equal(t, tt.want, m.AnalyzeLearningStyle("u1", in))
			assert.Equal(t, tt.want, m.LearningStyle("u1"))
		})
	}
	assert.Equal(t, "reading", NewMemory().LearningStyle("unknown"))
}

func TestMemory_DetectKnowledgeGaps(t *testing.T) {
	m := NewMemory()
	results := []models.QuizAttempt{
		{Topic: "maths_fractions", Score: 40, IncorrectQuestions: []models.Question{{Concept: "numérateur"}}},
		{Topic: "maths_fractions", Score: 60, IncorrectQuestions: []models.Question{{Concept: "dénominateur"}}},
		{Topic: "maths_géométrie", Score: 90},
		{Topic: "francais_conjugaison", Score: 69},
	}
	gaps := m.DetectKnowledgeGaps("u1", results)

	require.Len(t, gaps, 2)
	frac := gaps["maths_fractions"]
	require.NotNil(t, frac)
	assert.Equal(t, 2, frac.Attempts)
	assert.InDelta(t, 50.0, frac.AverageScore, 1e-9)
	assert.Equal(t, []string{"numérateur", "dénominateur"}, frac.WeakAreas)
	assert.NotContains(t, gaps, "maths_géométrie")
	assert.Equal(t, gaps, m.KnowledgeGaps("u1"))

	recs := m.StoredRecommendations("u1")
	require.Len(t, recs, 2)
	assert.Equal(t, "francais_conjugaison", recs[0].Topic)
	assert.Equal(t, PriorityMedium, recs[0].Priority)
}

func TestRecommendations(t *testing.T) {
	gaps := map[string]*models.KnowledgeGap{
		"b": {AverageScore: 65},
		"a": {AverageScore: 65},
		"c": {AverageScore: 30},
		"d": {AverageScore: 80},
	}
	recs := Recommendations(gaps)
	require.Len(t, recs, 4)

	var order []string
	for _, r := range recs {
		order = append(order, r.Topic)
	}
	assert.Equal(t, []string{"c", "a", "b", "d"}, order)
	assert.Equal(t, "Réviser les bases de c avec des exercices simples", recs[0].Action)
	assert.Equal(t, []string{"fiches_de_base", "vidéos_tutoriels", "quiz_débutant"}, recs[0].Resources)
	assert.Equal(t, "Pratiquer a avec des exercices progressifs", recs[1].Action)
	assert.Equal(t, PriorityLow, recs[3].Priority)
	assert.Equal(t, "Consolider d avec des défis", recs[3].Action)

	assert.Empty(t, Recommendations(nil))
}

func TestMemory_ConcurrentUse(t *testing.T) {
	m := NewMemory()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := fmt.Sprintf("u%d", i)
			m.AddContext(models.RoleUser, user)
			m.AnalyzeLearningStyle(user, []models.Interaction{{Type: "video_watch"}})
			m.DetectKnowledgeGaps(user, []models.QuizAttempt{{Topic: "t", Score: 10}})
			_ = m.Context()
		}(i)
	}
	wg.Wait()
	assert.Len(t, m.Context(), 8)
	assert.Equal(t, "visual", m.LearningStyle("u3"))
}
