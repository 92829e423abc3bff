package models

import "time"

// Message roles in a tutoring conversation.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one turn of a tutoring conversation or learner context.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Difficulty is a moment where the learner showed confusion.
type Difficulty struct {
	Type      string    `json:"type"`
	Topic     string    `json:"topic"`
	Question  string    `json:"question"`
	Timestamp time.Time `json:"timestamp"`
}

// TopicSuggestion proposes something to work on.
type TopicSuggestion struct {
	Topic               string   `json:"topic"`
	Priority            string   `json:"priority"`
	Reason              string   `json:"reason"`
	SuggestedActivities []string `json:"suggested_activities"`
}

// SessionStart is returned when a tutoring session opens.
type SessionStart struct {
	SessionID       string            `json:"session_id"`
	WelcomeMessage  string            `json:"welcome_message"`
	SuggestedTopics []TopicSuggestion `json:"suggested_topics"`
}

// FollowUp is a recommendation attached to a session report.
type FollowUp struct {
	Type          string `json:"type"`
	Action        string `json:"action"`
	Priority      string `json:"priority"`
	EstimatedTime string `json:"estimated_time"`
}

// SessionReport summarises a finished tutoring session. Duration is in minutes.
type SessionReport struct {
	SessionID       string       `json:"session_id"`
	UserID          string       `json:"user_id"`
	Duration        int          `json:"duration"`
	TopicsCovered   []string     `json:"topics_covered"`
	Difficulties    []Difficulty `json:"difficulties"`
	MessageCount    int          `json:"message_count"`
	Summary         string       `json:"summary"`
	Recommendations []FollowUp   `json:"recommendations"`
	EndedAt         time.Time    `json:"ended_at"`
}

// Interaction is a learner activity event used to infer a learning style.
type Interaction struct {
	Type string `json:"type"`
}

// KnowledgeGap aggregates weak quiz results for one topic.
type KnowledgeGap struct {
	WeakAreas    []string `json:"weak_areas"`
	AverageScore float64  `json:"average_score"`
	Attempts     int      `json:"attempts"`
}

// LearningRecommendation targets a knowledge gap.
type LearningRecommendation struct {
	Priority  string   `json:"priority"`
	Topic     string   `json:"topic"`
	Action    string   `json:"action"`
	Resources []string `json:"resources"`
}
