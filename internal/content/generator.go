// Package content generates courses and their supporting material (exercises, video
// links, revision sheets, quizzes, and flashcards) through the completion service.
package content

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/nathbrawlstatsr-afk/cours/internal/completion"
	"github.com/nathbrawlstatsr-afk/cours/internal/models"
	"github.com/nathbrawlstatsr-afk/cours/internal/quiz"
)

// Completion sites, used as fallback metric labels.
const (
	siteCourse     = "course"
	siteExercises  = "exercises"
	siteSummary    = "summary_sheet"
	siteCourseQuiz = "course_quiz"
	siteFlashcard  = "flashcard"
)

const (
	defaultExerciseCount = 3
	courseRating         = 4.0
)

// Generator produces courses and course material.
type Generator struct {
	llm     *completion.Fallback
	pool    *ants.Pool
	workers int
	model   string
	clock   func() time.Time
	logger  *zap.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithWorkers sets the flashcard worker pool size.
func WithWorkers(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.workers = n
		}
	}
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

// New creates a Generator. Call Close to release its worker pool.
func New(llm *completion.Fallback, opts ...Option) (*Generator, error) {
	if llm == nil {
		llm = completion.NewFallback(nil, nil)
	}
	g := &Generator{
		llm:     llm,
		workers: 4,
		model:   llm.Client().Name(),
		clock:   time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	pool, err := ants.NewPool(g.workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create content worker pool: %w", err)
	}
	g.pool = pool
	return g, nil
}

// Close releases the worker pool.
func (g *Generator) Close() {
	g.pool.Release()
}

// GenerateCourse asks for a complete course. When the completion fails the learner still
// gets a minimal fallback course, without resources.
func (g *Generator) GenerateCourse(ctx context.Context, req models.CourseRequest) *models.GeneratedCourse {
	if req.LearningStyle == "" {
		req.LearningStyle = StyleReading
	}
	now := g.clock()

	course := completion.JSON[*models.GeneratedCourse](ctx, g.llm, siteCourse, completion.Request{
		System: courseSystem,
		Prompt: coursePrompt(req),
	}, nil)
	if course == nil || (strings.TrimSpace(course.Title) == "" && len(course.Content.Sections) == 0) {
		return fallbackCourse(req, now)
	}

	course.ID = fmt.Sprintf("ai-%s-%s-%d", req.Subject, req.Level, now.UnixMilli())
	course.GeneratedAt = now
	course.Rating = courseRating
	course.IsAIGenerated = true
	course.IsFallback = false
	if course.Title == "" {
		course.Title = req.Topic
	}
	if course.Subject == "" {
		course.Subject = req.Subject
	}
	if course.Level == "" {
		course.Level = req.Level
	}
	if course.Topic == "" {
		course.Topic = req.Topic
	}
	course.FormattedContent = FormatCourse(course)

	course.Resources = []models.Resource{
		{
			Type:      models.ResourceExercises,
			Title:     "Exercices pratiques",
			Format:    "interactive",
			Exercises: g.GenerateExercises(ctx, course.Subject, course.Topic, defaultExerciseCount),
		},
		{
			Type:   models.ResourceVideos,
			Title:  "Vidéos complémentaires",
			Format: "external",
			Videos: FindEducationalVideos(course.Topic),
		},
		{
			Type:   models.ResourceSummary,
			Title:  "Fiche de révision",
			Format: "pdf",
			Sheet:  g.GenerateSummarySheet(ctx, course.Topic),
		},
	}
	course.Quiz = g.GenerateQuizForCourse(ctx, course)
	course.Flashcards = g.GenerateFlashcards(ctx, course.KeyConcepts)
	course.Generation = &models.GenerationInfo{
		GeneratedBy:        "AI",
		GenerationDate:     now,
		Model:              g.model,
		LearningStyle:      req.LearningStyle,
		EstimatedStudyTime: CalculateStudyTime(course.FormattedContent),
	}

	g.logger.Info("course generated",
		zap.String("id", course.ID),
		zap.Int("sections", len(course.Content.Sections)),
		zap.Int("flashcards", len(course.Flashcards)))
	return course
}

func fallbackCourse(req models.CourseRequest, now time.Time) *models.GeneratedCourse {
	return &models.GeneratedCourse{
		ID:          fmt.Sprintf("fallback-%s-%s-%d", req.Subject, req.Level, now.UnixMilli()),
		Title:       fmt.Sprintf("%s - %s", req.Topic, req.Level),
		Subject:     req.Subject,
		Level:       req.Level,
		Topic:       req.Topic,
		Objectives:  []string{"Comprendre les bases", "Appliquer les concepts"},
		Duration:    "1h",
		Difficulty:  "moyen",
		KeyConcepts: []string{"concept1", "concept2"},
		Content: models.CourseBody{
			Introduction: "Introduction à " + req.Topic,
			Sections: []models.CourseSection{{
				Title:    "Les bases",
				Content:  "Contenu de base sur le sujet.",
				Examples: []string{"Exemple simple"},
			}},
			Summary:               "Résumé des points importants",
			RealWorldApplications: "Applications pratiques",
		},
		FormattedContent: fmt.Sprintf("# %s\n\nContenu de base pour commencer l'apprentissage.", req.Topic),
		IsFallback:       true,
		GeneratedAt:      now,
	}
}

type exercisesResponse struct {
	Exercises []models.Exercise `json:"exercises"`
}

// GenerateExercises returns up to count exercises on topic.
func (g *Generator) GenerateExercises(ctx context.Context, subject, topic string, count int) []models.Exercise {
	if count <= 0 {
		count = defaultExerciseCount
	}
	resp := completion.JSON(ctx, g.llm, siteExercises, completion.Request{
		Prompt: exercisesPrompt(subject, topic, count),
	}, exercisesResponse{})
	if len(resp.Exercises) == 0 {
		return []models.Exercise{fallbackExercise()}
	}
	if len(resp.Exercises) > count {
		resp.Exercises = resp.Exercises[:count]
	}
	return resp.Exercises
}

func fallbackExercise() models.Exercise {
	return models.Exercise{
		Title:      "Exercice d'application",
		Statement:  "Applique le concept appris à un cas simple.",
		Hints:      []string{"Relis la définition", "Cherche un exemple similaire", "Décompose le problème"},
		Solution:   "Solution type avec explications",
		Difficulty: "facile",
		Skills:     []string{"application"},
	}
}

// GenerateSummarySheet returns a Markdown revision sheet for topic.
func (g *Generator) GenerateSummarySheet(ctx context.Context, topic string) string {
	fallback := fmt.Sprintf("# Fiche de révision: %s\n\n## Points clés\n- Point important 1\n- Point important 2\n\n## À retenir\nInformations essentielles...", topic)
	return g.llm.Text(ctx, siteSummary, completion.Request{Prompt: summaryPrompt(topic)}, fallback)
}

// GenerateQuizForCourse builds a comprehension quiz on course.
func (g *Generator) GenerateQuizForCourse(ctx context.Context, course *models.GeneratedCourse) *models.Quiz {
	now := g.clock()
	q := completion.JSON[*models.Quiz](ctx, g.llm, siteCourseQuiz, completion.Request{
		Prompt: courseQuizPrompt(course),
	}, nil)
	if q == nil || len(q.Questions) == 0 {
		q = fallbackCourseQuiz(course)
		q.CreatedAt = now
		q.EstimatedTime = quiz.CalculateQuizTime(q)
		return q
	}

	q.ID = fmt.Sprintf("quiz-%s-%s-%d", course.Subject, course.Level, now.UnixMilli())
	if q.Title == "" {
		q.Title = "Quiz: " + course.Title
	}
	q.Subject, q.Level, q.Topic = course.Subject, course.Level, course.Topic
	if q.PassingScore == 0 {
		q.PassingScore = 70
	}
	q.CreatedAt = now
	q.IsAIGenerated = true
	q.Questions = quiz.NormalizeQuestions(q.Questions, course.Topic)
	q.EstimatedTime = quiz.CalculateQuizTime(q)
	return q
}

func fallbackCourseQuiz(course *models.GeneratedCourse) *models.Quiz {
	return &models.Quiz{
		ID:      "fallback-quiz-" + course.ID,
		Title:   "Quiz: " + course.Title,
		Subject: course.Subject,
		Level:   course.Level,
		Topic:   course.Topic,
		Questions: []models.Question{{
			ID:            "q1",
			Type:          quiz.TypeMultipleChoice,
			Question:      "Question de base sur le sujet?",
			Options:       []string{"Option A", "Option B", "Option C", "Option D"},
			CorrectAnswer: models.NewIndexAnswer(0),
			Explanation:   "Explication simple",
			Difficulty:    "facile",
			Points:        10,
			TimeLimit:     60,
			Concept:       "concept de base",
		}},
		PassingScore: 70,
		TimeLimit:    600,
		IsFallback:   true,
	}
}

// GenerateFlashcards returns one card per concept, in input order. Cards are generated
// concurrently on the worker pool.
func (g *Generator) GenerateFlashcards(ctx context.Context, concepts []string) []models.Flashcard {
	cards := make([]models.Flashcard, len(concepts))
	var wg sync.WaitGroup
	for i, concept := range concepts {
		i, concept := i, concept
		wg.Add(1)
		task := func() {
			defer wg.Done()
			cards[i] = g.flashcard(ctx, concept)
		}
		if err := g.pool.Submit(task); err != nil {
			g.logger.Warn("flashcard pool rejected task, running inline", zap.Error(err))
			task()
		}
	}
	wg.Wait()
	return cards
}

func (g *Generator) flashcard(ctx context.Context, concept string) models.Flashcard {
	fallback := models.Flashcard{
		Front:      fmt.Sprintf("Qu'est-ce que %s?", concept),
		Back:       fmt.Sprintf("Définition de %s avec exemple.", concept),
		Concept:    concept,
		Difficulty: "facile",
		Category:   "définition",
	}
	card := completion.JSON(ctx, g.llm, siteFlashcard, completion.Request{Prompt: flashcardPrompt(concept)}, fallback)
	if card.Front == "" || card.Back == "" {
		return fallback
	}
	if card.Concept == "" {
		card.Concept = concept
	}
	return card
}
