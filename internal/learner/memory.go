// Package learner keeps per-learner personalisation state: inferred learning style,
// knowledge gaps from quiz results, and a short rolling conversation context.
package learner

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nathbrawlstatsr-afk/cours/internal/models"
)

const (
	maxContext     = 20
	contextWindow  = 10
	gapScoreCutoff = 70
	weakScore      = 50
)

// Learning styles, in tie-break order.
var styles = []string{"visual", "auditory", "reading", "kinesthetic"}

const defaultStyle = "reading"

var interactionWeights = map[string]struct {
	style  string
	weight int
}{
	"video_watch":       {"visual", 2},
	"audio_play":        {"auditory", 2},
	"text_read":         {"reading", 2},
	"quiz_attempt":      {"kinesthetic", 1},
	"exercise_complete": {"kinesthetic", 2},
}

// Priorities, lowest rank first.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

var priorityRank = map[string]int{PriorityHigh: 0, PriorityMedium: 1, PriorityLow: 2}

// PriorityRank orders priorities high < medium < low. Unknown priorities sort last.
func PriorityRank(p string) int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return len(priorityRank)
}

// StyleProfile is the result of the last learning-style analysis.
type StyleProfile struct {
	Style       string
	Scores      map[string]int
	LastUpdated time.Time
}

// GapProfile is the result of the last knowledge-gap analysis.
type GapProfile struct {
	Gaps            map[string]*models.KnowledgeGap
	Recommendations []models.LearningRecommendation
	LastAnalysis    time.Time
}

// Memory is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	context []models.Message
	styles  map[string]StyleProfile
	gaps    map[string]GapProfile
	clock   func() time.Time
}

// NewMemory returns an empty Memory.
func NewMemory() *Memory {
	return &Memory{
		styles: make(map[string]StyleProfile),
		gaps:   make(map[string]GapProfile),
		clock:  time.Now,
	}
}

// SetClock replaces the time source. Used by tests.
func (m *Memory) SetClock(clock func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = clock
}

// AddContext records a message, keeping the last 20.
func (m *Memory) AddContext(role, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.context = append(m.context, models.Message{Role: role, Content: content, Timestamp: m.clock()})
	if len(m.context) > maxContext {
		m.context = append([]models.Message(nil), m.context[len(m.context)-maxContext:]...)
	}
}

// Context returns a copy of the last 10 messages.
func (m *Memory) Context() []models.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	start := len(m.context) - contextWindow
	if start < 0 {
		start = 0
	}
	return append([]models.Message(nil), m.context[start:]...)
}

// AnalyzeLearningStyle scores interactions and stores the dominant style for userID. A
// style must strictly beat the earlier ones to win; with no signal the style is reading.
func (m *Memory) AnalyzeLearningStyle(userID string, interactions []models.Interaction) string {
	scores := make(map[string]int, len(styles))
	for _, s := range styles {
		scores[s] = 0
	}
	for _, in := range interactions {
		if w, ok := interactionWeights[in.Type]; ok {
			scores[w.style] += w.weight
		}
	}

	dominant, best := defaultStyle, 0
	for _, s := range styles {
		if scores[s] > best {
			dominant, best = s, scores[s]
		}
	}

	m.mu.Lock()
	m.styles[userID] = StyleProfile{Style: dominant, Scores: scores, LastUpdated: m.clock()}
	m.mu.Unlock()
	return dominant
}

// LearningStyle returns the stored style for userID, or reading when unknown.
func (m *Memory) LearningStyle(userID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.styles[userID]; ok {
		return p.Style
	}
	return defaultStyle
}

// DetectKnowledgeGaps aggregates results scoring under 70 by topic and replaces the stored
// gaps for userID.
func (m *Memory) DetectKnowledgeGaps(userID string, results []models.QuizAttempt) map[string]*models.KnowledgeGap {
	gaps := make(map[string]*models.KnowledgeGap)
	for _, r := range results {
		if r.Score >= gapScoreCutoff {
			continue
		}
		g, ok := gaps[r.Topic]
		if !ok {
			g = &models.KnowledgeGap{WeakAreas: []string{}}
			gaps[r.Topic] = g
		}
		for _, q := range r.IncorrectQuestions {
			g.WeakAreas = append(g.WeakAreas, q.Concept)
		}
		g.AverageScore = (g.AverageScore*float64(g.Attempts) + r.Score) / float64(g.Attempts+1)
		g.Attempts++
	}

	m.mu.Lock()
	m.gaps[userID] = GapProfile{Gaps: gaps, Recommendations: Recommendations(gaps), LastAnalysis: m.clock()}
	m.mu.Unlock()
	return gaps
}

// KnowledgeGaps returns the stored gaps for userID, or nil.
func (m *Memory) KnowledgeGaps(userID string) map[string]*models.KnowledgeGap {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gaps[userID].Gaps
}

// StoredRecommendations returns the recommendations computed by the last gap analysis.
func (m *Memory) StoredRecommendations(userID string) []models.LearningRecommendation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gaps[userID].Recommendations
}

// Recommendations proposes one action per gap, most urgent first, then by topic.
func Recommendations(gaps map[string]*models.KnowledgeGap) []models.LearningRecommendation {
	recs := make([]models.LearningRecommendation, 0, len(gaps))
	for topic, g := range gaps {
		switch {
		case g.AverageScore < weakScore:
			recs = append(recs, models.LearningRecommendation{
				Priority:  PriorityHigh,
				Topic:     topic,
				Action:    fmt.Sprintf("Réviser les bases de %s avec des exercices simples", topic),
				Resources: []string{"fiches_de_base", "vidéos_tutoriels", "quiz_débutant"},
			})
		case g.AverageScore < gapScoreCutoff:
			recs = append(recs, models.LearningRecommendation{
				Priority:  PriorityMedium,
				Topic:     topic,
				Action:    fmt.Sprintf("Pratiquer %s avec des exercices progressifs", topic),
				Resources: []string{"exercices_progressifs", "corrigés_détaillés", "quiz_intermédiaire"},
			})
		default:
			recs = append(recs, models.LearningRecommendation{
				Priority:  PriorityLow,
				Topic:     topic,
				Action:    fmt.Sprintf("Consolider %s avec des défis", topic),
				Resources: []string{"problèmes_complexes", "défis_avancés", "quiz_expert"},
			})
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		ri, rj := PriorityRank(recs[i].Priority), PriorityRank(recs[j].Priority)
		if ri != rj {
			return ri < rj
		}
		return recs[i].Topic < recs[j].Topic
	})
	return recs
}
