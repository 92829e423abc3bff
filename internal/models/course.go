package models

import "time"

// Course is a catalog entry from the document source feed.
type Course struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Content     string   `json:"content" yaml:"content"`
	Tags        []string `json:"tags" yaml:"tags"`
	Subject     string   `json:"subject" yaml:"subject"`
	Level       string   `json:"level" yaml:"level"`
	Duration    string   `json:"duration,omitempty" yaml:"duration,omitempty"`
	Rating      float64  `json:"rating,omitempty" yaml:"rating,omitempty"`
}

// CourseRequest asks the content generator for a new course.
type CourseRequest struct {
	Subject       string `json:"subject"`
	Level         string `json:"level"`
	Topic         string `json:"topic"`
	LearningStyle string `json:"learning_style,omitempty"`
}

// CourseSection is one titled part of a generated course body.
type CourseSection struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Examples []string `json:"examples,omitempty"`
}

// CourseBody is the structured body of a generated course.
type CourseBody struct {
	Introduction          string          `json:"introduction"`
	Sections              []CourseSection `json:"sections"`
	Summary               string          `json:"summary"`
	RealWorldApplications string          `json:"realWorldApplications"`
}

// GenerationInfo records how a piece of content was produced.
type GenerationInfo struct {
	GeneratedBy        string    `json:"generated_by"`
	GenerationDate     time.Time `json:"generation_date"`
	Model              string    `json:"model"`
	LearningStyle      string    `json:"learning_style,omitempty"`
	EstimatedStudyTime int       `json:"estimated_study_time_minutes,omitempty"`
}

// GeneratedCourse is a course produced by the completion service, or its fallback.
type GeneratedCourse struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Subject          string          `json:"subject"`
	Level            string          `json:"level"`
	Topic            string          `json:"topic"`
	Objectives       []string        `json:"objectives"`
	Duration         string          `json:"duration"`
	Difficulty       string          `json:"difficulty"`
	KeyConcepts      []string        `json:"keyConcepts"`
	Content          CourseBody      `json:"content"`
	Prerequisites    []string        `json:"prerequisites,omitempty"`
	TargetSkills     []string        `json:"targetSkills,omitempty"`
	FormattedContent string          `json:"formatted_content"`
	Rating           float64         `json:"rating"`
	IsAIGenerated    bool            `json:"is_ai_generated"`
	IsFallback       bool            `json:"is_fallback"`
	GeneratedAt      time.Time       `json:"generated_at"`
	Resources        []Resource      `json:"resources,omitempty"`
	Quiz             *Quiz           `json:"quiz,omitempty"`
	Flashcards       []Flashcard     `json:"flashcards,omitempty"`
	Generation       *GenerationInfo `json:"generation,omitempty"`
}

// AsCourse flattens a generated course into a catalog entry so it can be indexed.
func (g *GeneratedCourse) AsCourse() Course {
	return Course{
		ID:          g.ID,
		Title:       g.Title,
		Description: g.Content.Introduction,
		Content:     g.FormattedContent,
		Tags:        g.KeyConcepts,
		Subject:     g.Subject,
		Level:       g.Level,
		Duration:    g.Duration,
		Rating:      g.Rating,
	}
}

// Resource kinds attached to a generated course.
const (
	ResourceExercises = "exercises"
	ResourceVideos    = "videos"
	ResourceSummary   = "summary"
)

// Resource is supplementary material for a course. Exactly one content field is set.
type Resource struct {
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Format    string     `json:"format"`
	Exercises []Exercise `json:"exercises,omitempty"`
	Videos    []Video    `json:"videos,omitempty"`
	Sheet     string     `json:"sheet,omitempty"`
}

// Exercise is a practice problem with progressive hints.
type Exercise struct {
	Title      string   `json:"title"`
	Statement  string   `json:"statement"`
	Hints      []string `json:"hints"`
	Solution   string   `json:"solution"`
	Difficulty string   `json:"difficulty"`
	Skills     []string `json:"skills"`
}

// Video is a recommended external video search.
type Video struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	Duration    string  `json:"duration"`
	Source      string  `json:"source"`
	Rating      float64 `json:"rating"`
}

// Flashcard is a two-sided revision card for one concept.
type Flashcard struct {
	Front      string `json:"front"`
	Back       string `json:"back"`
	Concept    string `json:"concept"`
	Difficulty string `json:"difficulty"`
	Category   string `json:"category"`
}
