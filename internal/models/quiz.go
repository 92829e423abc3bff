package models

import (
	"encoding/json"
	"strconv"
	"time"
)

// Quiz difficulties.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// QuizOptions describes the quiz to generate.
type QuizOptions struct {
	Subject             string   `json:"subject"`
	Level               string   `json:"level"`
	Topic               string   `json:"topic"`
	Difficulty          string   `json:"difficulty,omitempty"`
	QuestionCount       int      `json:"question_count,omitempty"`
	QuestionTypes       []string `json:"question_types,omitempty"`
	IncludeExplanations *bool    `json:"include_explanations,omitempty"`
}

// WantExplanations reports whether short explanations should be regenerated (default true).
func (o QuizOptions) WantExplanations() bool {
	return o.IncludeExplanations == nil || *o.IncludeExplanations
}

// Answer holds a correct answer, which is an option index or free text depending on the
// question type.
type Answer struct {
	raw json.RawMessage
}

// NewIndexAnswer returns an answer pointing at option i.
func NewIndexAnswer(i int) Answer {
	return Answer{raw: json.RawMessage(strconv.Itoa(i))}
}

// NewTextAnswer returns a free-text answer.
func NewTextAnswer(s string) Answer {
	b, _ := json.Marshal(s)
	return Answer{raw: b}
}

// String renders the answer for prompts and display.
func (a Answer) String() string {
	if len(a.raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(a.raw, &s); err == nil {
		return s
	}
	return string(a.raw)
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if len(a.raw) == 0 {
		return []byte("null"), nil
	}
	return a.raw, nil
}

func (a *Answer) UnmarshalJSON(b []byte) error {
	a.raw = append(a.raw[:0], b...)
	return nil
}

// Question is one quiz item.
type Question struct {
	ID            string   `json:"id"`
	Type          string   `json:"type,omitempty"`
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer Answer   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	Difficulty    string   `json:"difficulty,omitempty"`
	Points        int      `json:"points"`
	TimeLimit     int      `json:"timeLimit"`
	Concept       string   `json:"concept"`
}

// Quiz is a generated quiz. EstimatedTime is in seconds.
type Quiz struct {
	ID               string            `json:"id"`
	Title            string            `json:"title"`
	Subject          string            `json:"subject"`
	Level            string            `json:"level"`
	Topic            string            `json:"topic"`
	Difficulty       string            `json:"difficulty"`
	Questions        []Question        `json:"questions"`
	PassingScore     int               `json:"passingScore"`
	TimeLimit        int               `json:"timeLimit"`
	ShuffleQuestions bool              `json:"shuffleQuestions,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	Version          string            `json:"version,omitempty"`
	IsAIGenerated    bool              `json:"is_ai_generated"`
	IsFallback       bool              `json:"is_fallback"`
	Source           string            `json:"source,omitempty"`
	SourcePreview    string            `json:"source_preview,omitempty"`
	EstimatedTime    int               `json:"estimated_time_seconds,omitempty"`
	Generation       *GenerationInfo   `json:"generation,omitempty"`
	Adaptive         *AdaptiveMetadata `json:"adaptive,omitempty"`
}

// QuizAttempt is one finished quiz in a learner's history. Score is a percentage.
type QuizAttempt struct {
	QuizID             string     `json:"quiz_id"`
	Subject            string     `json:"subject"`
	Topic              string     `json:"topic"`
	Score              float64    `json:"score"`
	TimeSpent          int        `json:"time_spent,omitempty"`
	TimeLimit          int        `json:"time_limit,omitempty"`
	IncorrectQuestions []Question `json:"incorrect_questions,omitempty"`
	CompletedAt        time.Time  `json:"completed_at"`
}

// AdaptiveMetadata explains how an adaptive quiz was tailored.
type AdaptiveMetadata struct {
	UserID           string               `json:"user_id"`
	BasedOnHistory   int                  `json:"based_on_history"`
	FocusTopics      []string             `json:"focus_topics"`
	DifficultyReason string               `json:"difficulty_reason"`
	Recommendations  []QuizRecommendation `json:"recommendations"`
}

// QuizRecommendation follows up on the latest attempt.
type QuizRecommendation struct {
	Type      string   `json:"type"`
	Action    string   `json:"action"`
	Resources []string `json:"resources,omitempty"`
	Tip       string   `json:"tip,omitempty"`
}
