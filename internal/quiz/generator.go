// Package quiz generates quizzes, adapts their difficulty to a learner's history, and
// records quiz attempts.
package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/nathbrawlstatsr-afk/cours/internal/completion"
	"github.com/nathbrawlstatsr-afk/cours/internal/models"
	"github.com/nathbrawlstatsr-afk/cours/internal/storage"
)

const (
	siteQuiz        = "quiz"
	siteExplanation = "quiz_explanation"
	siteTextQuiz    = "text_quiz"

	defaultQuestionCount  = 10
	adaptiveQuestionCount = 15
	adaptiveLevel         = "adaptatif"
	defaultPoints         = 10
	defaultQuestionTime   = 60
	defaultPassingScore   = 70
	minExplanationLen     = 20
	recentAttempts        = 5
	maxFocusTopics        = 3
	previewLen            = 100
	quizVersion           = "1.0"

	defaultExplanation = "Cette réponse est correcte car elle correspond à la définition du concept."
)

// GapSource provides a learner's knowledge gaps.
type GapSource interface {
	KnowledgeGaps(userID string) map[string]*models.KnowledgeGap
}

// Generator builds quizzes through the completion service.
type Generator struct {
	llm    *completion.Fallback
	store  storage.Store
	gaps   GapSource
	model  string
	clock  func() time.Time
	logger *zap.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithGapSource sets where adaptive quizzes read knowledge gaps from.
func WithGapSource(src GapSource) Option {
	return func(g *Generator) { g.gaps = src }
}

// WithModel sets the model name recorded in generation metadata.
func WithModel(model string) Option {
	return func(g *Generator) { g.model = model }
}

// WithClock sets the time source for ids and timestamps.
func WithClock(clock func() time.Time) Option {
	return func(g *Generator) {
		if clock != nil {
			g.clock = clock
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGenerator creates a Generator. store holds quiz history and may be nil, in which
// case history is always empty and attempts are rejected.
func NewGenerator(llm *completion.Fallback, store storage.Store, opts ...Option) *Generator {
	if llm == nil {
		llm = completion.NewFallback(nil, nil)
	}
	g := &Generator{
		llm:    llm,
		store:  store,
		model:  llm.Client().Name(),
		clock:  time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func withDefaults(o models.QuizOptions) models.QuizOptions {
	if o.Difficulty == "" {
		o.Difficulty = models.DifficultyMedium
	}
	if o.QuestionCount <= 0 {
		o.QuestionCount = defaultQuestionCount
	}
	if len(o.QuestionTypes) == 0 {
		o.QuestionTypes = DefaultTypes
	}
	return o
}

// Generate asks for a quiz described by opts. It never fails: when the completion is
// unusable the fallback quiz is returned.
func (g *Generator) Generate(ctx context.Context, opts models.QuizOptions) *models.Quiz {
	opts = withDefaults(opts)
	now := g.clock()

	q := completion.JSON[*models.Quiz](ctx, g.llm, siteQuiz, completion.Request{
		System: quizSystem,
		Prompt: quizPrompt(opts.Subject, opts.Level, opts.Topic, opts.Difficulty, opts.QuestionCount, opts.QuestionTypes),
	}, nil)
	if q == nil || len(q.Questions) == 0 {
		return g.fallbackQuiz(opts, now)
	}

	q.ID = fmt.Sprintf("quiz-%s-%s-%d", opts.Subject, opts.Level, now.UnixMilli())
	q.CreatedAt = now
	q.Version = quizVersion
	q.IsAIGenerated = true
	q.IsFallback = false
	if q.Subject == "" {
		q.Subject = opts.Subject
	}
	if q.Level == "" {
		q.Level = opts.Level
	}
	if q.Topic == "" {
		q.Topic = opts.Topic
	}
	if q.Difficulty == "" {
		q.Difficulty = opts.Difficulty
	}
	if q.PassingScore == 0 {
		q.PassingScore = defaultPassingScore
	}
	q.Questions = NormalizeQuestions(q.Questions, opts.Topic)
	q.EstimatedTime = CalculateQuizTime(q)
	q.Generation = &models.GenerationInfo{
		GeneratedBy:    "AI",
		GenerationDate: now,
		Model:          g.model,
	}

	if opts.WantExplanations() {
		q.Questions = g.EnrichWithExplanations(ctx, q.Questions, opts.Subject)
	}

	g.logger.Debug("quiz generated", zap.String("id", q.ID), zap.Int("questions", len(q.Questions)))
	return q
}

func (g *Generator) fallbackQuiz(opts models.QuizOptions, now time.Time) *models.Quiz {
	q := &models.Quiz{
		ID:         fmt.Sprintf("fallback-quiz-%d", now.UnixMilli()),
		Title:      "Quiz " + opts.Topic,
		Subject:    opts.Subject,
		Level:      opts.Level,
		Topic:      opts.Topic,
		Difficulty: opts.Difficulty,
		Questions: []models.Question{{
			ID:            "q1",
			Type:          TypeMultipleChoice,
			Question:      "Question de base sur le sujet?",
			Options:       []string{"Réponse A", "Réponse B", "Réponse C", "Réponse D"},
			CorrectAnswer: models.NewIndexAnswer(0),
			Explanation:   "Explication simple",
			Points:        defaultPoints,
			TimeLimit:     defaultQuestionTime,
			Concept:       "concept de base",
		}},
		PassingScore: defaultPassingScore,
		TimeLimit:    600,
		CreatedAt:    now,
		IsFallback:   true,
	}
	q.EstimatedTime = CalculateQuizTime(q)
	return q
}

// NormalizeQuestions fills missing ids, points, time limits, and concepts.
func NormalizeQuestions(questions []models.Question, concept string) []models.Question {
	for i := range questions {
		q := &questions[i]
		if q.ID == "" {
			q.ID = fmt.Sprintf("q%d", i+1)
		}
		if q.Points == 0 {
			q.Points = defaultPoints
		}
		if q.TimeLimit == 0 {
			q.TimeLimit = defaultQuestionTime
		}
		if q.Concept == "" {
			q.Concept = concept
		}
	}
	return questions
}

var difficultyMultiplier = map[string]float64{
	models.DifficultyEasy:   0.8,
	models.DifficultyMedium: 1,
	models.DifficultyHard:   1.5,
}

// CalculateQuizTime estimates the quiz duration in seconds: one minute per question,
// scaled by difficulty.
func CalculateQuizTime(q *models.Quiz) int {
	m, ok := difficultyMultiplier[q.Difficulty]
	if !ok {
		m = 1
	}
	return int(math.Round(float64(len(q.Questions)*60) * m))
}

// EnrichWithExplanations replaces explanations shorter than 20 characters with a
// generated one.
func (g *Generator) EnrichWithExplanations(ctx context.Context, questions []models.Question, subject string) []models.Question {
	for i := range questions {
		q := &questions[i]
		if utf8.RuneCountInString(strings.TrimSpace(q.Explanation)) >= minExplanationLen {
			continue
		}
		q.Explanation = g.llm.Text(ctx, siteExplanation, completion.Request{
			Prompt: explanationPrompt(q.Question, q.CorrectAnswer.String(), subject),
		}, defaultExplanation)
		if q.Explanation == "" {
			q.Explanation = defaultExplanation
		}
	}
	return questions
}

// GenerateAdaptive builds a 15-question quiz whose difficulty follows the learner's recent
// scores in subject and whose topic targets the weakest gap.
func (g *Generator) GenerateAdaptive(ctx context.Context, userID, subject string) *models.Quiz {
	history, err := g.History(ctx, userID, subject)
	if err != nil {
		g.logger.Warn("failed to read quiz history", zap.String("user", userID), zap.Error(err))
		history = nil
	}
	var gaps map[string]*models.KnowledgeGap
	if g.gaps != nil {
		gaps = g.gaps.KnowledgeGaps(userID)
	}

	difficulty := AdaptiveDifficulty(history)
	focus := FocusTopics(gaps, subject)
	topic := subject
	if len(focus) > 0 {
		topic = focus[0]
	}

	q := g.Generate(ctx, models.QuizOptions{
		Subject:       subject,
		Level:         adaptiveLevel,
		Topic:         topic,
		Difficulty:    difficulty,
		QuestionCount: adaptiveQuestionCount,
		QuestionTypes: DefaultTypes,
	})
	if focus == nil {
		focus = []string{}
	}
	q.Adaptive = &models.AdaptiveMetadata{
		UserID:           userID,
		BasedOnHistory:   len(history),
		FocusTopics:      focus,
		DifficultyReason: DifficultyReason(difficulty),
		Recommendations:  Recommendations(history),
	}
	return q
}

// AdaptiveDifficulty maps the mean of the last five scores to a difficulty.
func AdaptiveDifficulty(history []models.QuizAttempt) string {
	if len(history) == 0 {
		return models.DifficultyMedium
	}
	recent := history
	if len(recent) > recentAttempts {
		recent = recent[len(recent)-recentAttempts:]
	}
	var sum float64
	for _, a := range recent {
		sum += a.Score
	}
	avg := sum / float64(len(recent))
	switch {
	case avg > 85:
		return models.DifficultyHard
	case avg > 60:
		return models.DifficultyMedium
	default:
		return models.DifficultyEasy
	}
}

// DifficultyReason explains a difficulty choice to the learner.
func DifficultyReason(difficulty string) string {
	switch difficulty {
	case models.DifficultyEasy:
		return "Bon pour commencer ou renforcer les bases"
	case models.DifficultyMedium:
		return "Niveau adapté à tes compétences actuelles"
	case models.DifficultyHard:
		return "Défi pour progresser davantage"
	default:
		return "Niveau standard"
	}
}

type focusTopic struct {
	topic    string
	score    float64
	priority int
}

// FocusTopics returns up to three gap topics of subject scoring under 70, weakest first,
// with the "{subject}_" prefix removed.
func FocusTopics(gaps map[string]*models.KnowledgeGap, subject string) []string {
	var topics []focusTopic
	for topic, g := range gaps {
		if !strings.Contains(topic, subject) || g.AverageScore >= 70 {
			continue
		}
		priority := 1
		if g.AverageScore < 50 {
			priority = 0
		}
		topics = append(topics, focusTopic{
			topic:    strings.Replace(topic, subject+"_", "", 1),
			score:    g.AverageScore,
			priority: priority,
		})
	}
	sort.Slice(topics, func(i, j int) bool {
		if topics[i].priority != topics[j].priority {
			return topics[i].priority < topics[j].priority
		}
		if topics[i].score != topics[j].score {
			return topics[i].score < topics[j].score
		}
		return topics[i].topic < topics[j].topic
	})
	if len(topics) > maxFocusTopics {
		topics = topics[:maxFocusTopics]
	}
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		out = append(out, t.topic)
	}
	return out
}

// Recommendations follows up on the latest attempt in history.
func Recommendations(history []models.QuizAttempt) []models.QuizRecommendation {
	recs := []models.QuizRecommendation{}
	if len(history) == 0 {
		return recs
	}
	last := history[len(history)-1]
	switch {
	case last.Score < 50:
		recs = append(recs, models.QuizRecommendation{
			Type:      "remediation",
			Action:    "Revoir les concepts de base",
			Resources: []string{"fiches_bases", "vidéos_explicatives"},
		})
	case last.Score < 70:
		recs = append(recs, models.QuizRecommendation{
			Type:      "practice",
			Action:    "S'entraîner avec des exercices similaires",
			Resources: []string{"exercices_progressifs", "quiz_entraînement"},
		})
	default:
		recs = append(recs, models.QuizRecommendation{
			Type:      "challenge",
			Action:    "Essayer des problèmes plus complexes",
			Resources: []string{"défis_avancés", "problèmes_ouverts"},
		})
	}
	if last.TimeSpent > 0 && float64(last.TimeSpent) < float64(last.TimeLimit)*0.5 {
		recs = append(recs, models.QuizRecommendation{
			Type:   "speed",
			Action: "Prendre plus de temps pour lire attentivement les questions",
			Tip:    "Relis chaque question deux fois avant de répondre",
		})
	}
	return recs
}

// RecordAttempt appends attempt to the learner's history, keeping the last 100.
func (g *Generator) RecordAttempt(ctx context.Context, userID string, attempt models.QuizAttempt) error {
	if strings.TrimSpace(userID) == "" {
		return &models.ValidationError{Field: "user_id", Message: "must not be empty"}
	}
	if attempt.Score < 0 || attempt.Score > 100 || math.IsNaN(attempt.Score) {
		return &models.ValidationError{Field: "score", Message: "must be a percentage between 0 and 100"}
	}
	if g.store == nil {
		return errors.New("quiz history store not configured")
	}
	if attempt.CompletedAt.IsZero() {
		attempt.CompletedAt = g.clock()
	}
	data, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("failed to encode quiz attempt: %w", err)
	}
	if err := g.store.Append(ctx, storage.QuizHistoryKey(userID), string(data), storage.MaxQuizHistory); err != nil {
		return fmt.Errorf("failed to record quiz attempt: %w", err)
	}
	return nil
}

// History returns the learner's attempts, oldest first, restricted to subject when it is
// not empty. Unreadable entries are skipped.
func (g *Generator) History(ctx context.Context, userID, subject string) ([]models.QuizAttempt, error) {
	if g.store == nil {
		return nil, nil
	}
	raw, err := g.store.List(ctx, storage.QuizHistoryKey(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to read quiz history: %w", err)
	}
	history := make([]models.QuizAttempt, 0, len(raw))
	for _, item := range raw {
		var a models.QuizAttempt
		if err := json.Unmarshal([]byte(item), &a); err != nil {
			g.logger.Warn("skipping malformed quiz attempt", zap.String("user", userID), zap.Error(err))
			continue
		}
		if subject != "" && a.Subject != subject {
			continue
		}
		history = append(history, a)
	}
	return history, nil
}

// GenerateFromText builds a five-question quiz from text. Unlike Generate it has no
// fallback: a failed or unusable completion is returned as an error.
func (g *Generator) GenerateFromText(ctx context.Context, text, subject string) (*models.Quiz, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &models.ValidationError{Field: "text", Message: "must not be empty"}
	}
	reply, err := g.llm.Raw(ctx, siteTextQuiz, completion.Request{Prompt: textQuizPrompt(text, subject), JSON: true})
	if err != nil {
		return nil, fmt.Errorf("failed to generate quiz from text: %w", err)
	}
	var q models.Quiz
	if err := completion.DecodeJSON(reply, &q); err != nil || len(q.Questions) == 0 {
		if err == nil {
			err = errors.New("no questions in response")
		}
		return nil, &completion.ServiceError{Provider: g.llm.Client().Name(), Err: err}
	}

	now := g.clock()
	q.ID = fmt.Sprintf("text-quiz-%d", now.UnixMilli())
	q.Subject = subject
	q.Source = "text"
	q.SourcePreview = preview(text)
	q.CreatedAt = now
	q.IsAIGenerated = true
	if q.PassingScore == 0 {
		q.PassingScore = defaultPassingScore
	}
	q.Questions = NormalizeQuestions(q.Questions, subject)
	q.EstimatedTime = CalculateQuizTime(&q)
	return &q, nil
}

func preview(text string) string {
	if utf8.RuneCountInString(text) <= previewLen {
		return text + "..."
	}
	runes := []rune(text)
	return string(runes[:previewLen]) + "..."
}
