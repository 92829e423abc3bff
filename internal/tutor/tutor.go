// Package tutor runs conversational tutoring sessions. Several sessions may be open at
// once; each keeps its own message history and the difficulties the learner expressed.
package tutor

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/nathbrawlstatsr-afk/cours/internal/completion"
	"github.com/nathbrawlstatsr-afk/cours/internal/learner"
	"github.com/nathbrawlstatsr-afk/cours/internal/models"
	"github.com/nathbrawlstatsr-afk/cours/internal/storage"
)

const (
	siteWelcome  = "tutor_welcome"
	siteAnswer   = "tutor_answer"
	siteExercise = "tutor_exercise"
	siteSummary  = "tutor_summary"

	promptMessages = 6
)

const (
	welcomeFallback = "Bonjour ! Je suis ton tuteur IA. Je suis là pour t'aider dans tes apprentissages. " +
		"Sur quel sujet souhaites-tu travailler aujourd'hui ?"
	answerFallback = "Je suis désolé, j'ai eu du mal à traiter ta question. Pourrais-tu la reformuler ? " +
		"Sinon, je peux t'aider avec un sujet spécifique comme les fractions ou la grammaire."
)

// entry is one slot of a session history. Assistant replies are reserved as pending when
// the question is asked and filled in when the completion returns, so the history keeps
// the order questions were issued in.
type entry struct {
	msg     models.Message
	pending bool
}

type session struct {
	mu           sync.Mutex
	id           string
	userID       string
	subject      string
	topic        string
	start        time.Time
	entries      []*entry
	difficulties []models.Difficulty
}

// history returns the settled messages in order. Callers hold s.mu.
func (s *session) history() []models.Message {
	out := make([]models.Message, 0, len(s.entries))
	for _, e := range s.entries {
		if !e.pending {
			out = append(out, e.msg)
		}
	}
	return out
}

func (s *session) drop(target *entry) {
	for i, e := range s.entries {
		if e == target {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

// Tutor is safe for concurrent use.
type Tutor struct {
	llm    *completion.Fallback
	memory *learner.Memory
	store  storage.Store
	clock  func() time.Time
	logger *zap.Logger

	seq      atomic.Uint64
	mu       sync.RWMutex
	sessions map[string]*session
}

// Option configures a Tutor.
type Option func(*Tutor)

// WithClock sets the time source.
func WithClock(clock func() time.Time) Option {
	return func(t *Tutor) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(t *Tutor) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// New creates a Tutor. memory supplies learning styles and gaps; store receives session
// reports and may be nil.
func New(llm *completion.Fallback, memory *learner.Memory, store storage.Store, opts ...Option) *Tutor {
	if llm == nil {
		llm = completion.NewFallback(nil, nil)
	}
	if memory == nil {
		memory = learner.NewMemory()
	}
	t := &Tutor{
		llm:      llm,
		memory:   memory,
		store:    store,
		clock:    time.Now,
		logger:   zap.NewNop(),
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// StartSession opens a session and greets the learner.
func (t *Tutor) StartSession(ctx context.Context, userID, subject, topic string) (*models.SessionStart, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, &models.ValidationError{Field: "user_id", Message: "must not be empty"}
	}
	now := t.clock()
	s := &session{
		id:      fmt.Sprintf("tutor-session-%d-%d", now.UnixMilli(), t.seq.Add(1)),
		userID:  userID,
		subject: subject,
		topic:   topic,
		start:   now,
	}

	gaps := t.memory.KnowledgeGaps(userID)
	welcome := t.llm.Text(ctx, siteWelcome, completion.Request{
		Prompt: welcomePrompt(subject, topic, t.memory.LearningStyle(userID), gapTopics(gaps)),
	}, welcomeFallback)
	s.entries = append(s.entries, &entry{msg: models.Message{Role: models.RoleAssistant, Content: welcome, Timestamp: now}})

	t.mu.Lock()
	t.sessions[s.id] = s
	t.mu.Unlock()

	t.logger.Info("tutor session started", zap.String("session", s.id), zap.String("user", userID))
	return &models.SessionStart{
		SessionID:       s.id,
		WelcomeMessage:  welcome,
		SuggestedTopics: SuggestTopics(subject, gaps),
	}, nil
}

func gapTopics(gaps map[string]*models.KnowledgeGap) []string {
	topics := make([]string, 0, len(gaps))
	for topic := range gaps {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

func (t *Tutor) session(id string) (*session, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.sessions[id]
	if !ok {
		return nil, fmt.Errorf("tutor session %q: %w", id, models.ErrNotFound)
	}
	return s, nil
}

// AnswerQuestion replies to question within the session. extra is optional context such as
// the course being read. When the completion fails the learner gets an apology and the
// history keeps only the question. Concurrent questions on one session are answered in
// parallel, but each reply sits right after its own question.
func (t *Tutor) AnswerQuestion(ctx context.Context, sessionID, question, extra string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", &models.ValidationError{Field: "question", Message: "must not be empty"}
	}
	s, err := t.session(sessionID)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.entries = append(s.entries, &entry{msg: models.Message{Role: models.RoleUser, Content: question, Timestamp: t.clock()}})
	history := transcript(s.history(), promptMessages)
	slot := &entry{msg: models.Message{Role: models.RoleAssistant}, pending: true}
	s.entries = append(s.entries, slot)
	userID := s.userID
	if IsConfused(question) {
		topic := ExtractTopic(question)
		s.difficulties = append(s.difficulties, models.Difficulty{
			Type:      "confusion",
			Topic:     topic,
			Question:  question,
			Timestamp: t.clock(),
		})
		t.memory.AddContext(models.RoleSystem, "Élève en difficulté sur: "+topic)
	}
	s.mu.Unlock()

	reply, err := t.llm.Raw(ctx, siteAnswer, completion.Request{
		Prompt: answerPrompt(history, t.memory.LearningStyle(userID), extra, question),
	})
	reply = strings.TrimSpace(reply)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil || reply == "" {
		s.drop(slot)
		return answerFallback, nil
	}
	slot.msg.Content = reply
	slot.msg.Timestamp = t.clock()
	slot.pending = false
	return reply, nil
}

func transcript(messages []models.Message, n int) string {
	if len(messages) > n {
		messages = messages[len(messages)-n:]
	}
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, m.Role+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}

// GeneratePersonalizedExercise writes a short contextualised exercise on topic.
func (t *Tutor) GeneratePersonalizedExercise(ctx context.Context, topic, difficulty string) string {
	if difficulty == "" {
		difficulty = models.DifficultyMedium
	}
	fallback := fmt.Sprintf("Exercice sur %[1]s:\n\nÉnoncé: Applique le concept de %[1]s à une situation simple.\n\n"+
		"Indice 1: Relis la définition.\nIndice 2: Cherche un exemple similaire.\nIndice 3: Décompose le problème.\n\n"+
		"Solution: Solution type avec explications.", topic)
	return t.llm.Text(ctx, siteExercise, completion.Request{Prompt: exercisePrompt(topic, difficulty)}, fallback)
}

// EndSession closes the session, stores its report, and returns it.
func (t *Tutor) EndSession(ctx context.Context, sessionID string) (*models.SessionReport, error) {
	t.mu.Lock()
	s, ok := t.sessions[sessionID]
	delete(t.sessions, sessionID)
	t.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("tutor session %q: %w", sessionID, models.ErrNotFound)
	}

	s.mu.Lock()
	now := t.clock()
	elapsed := now.Sub(s.start)
	minutes := int(math.Round(elapsed.Minutes()))
	report := &models.SessionReport{
		SessionID:       s.id,
		UserID:          s.userID,
		Duration:        minutes,
		TopicsCovered:   []string{},
		Difficulties:    append([]models.Difficulty{}, s.difficulties...),
		MessageCount:    len(s.history()),
		Recommendations: FollowUpRecommendations(len(s.difficulties), elapsed),
		EndedAt:         now,
	}
	if s.topic != "" {
		report.TopicsCovered = []string{s.topic}
	}
	s.mu.Unlock()

	fallback := fmt.Sprintf("Bravo pour cette session de %d minutes ! Tu as échangé %d messages. Continue comme ça, "+
		"et pense à revoir tes notes avant la prochaine séance.", minutes, report.MessageCount)
	report.Summary = t.llm.Text(ctx, siteSummary, completion.Request{
		Prompt: summaryPrompt(minutes, s.topic, len(report.Difficulties), report.MessageCount),
	}, fallback)

	if t.store != nil {
		data, err := json.Marshal(report)
		if err != nil {
			return nil, fmt.Errorf("failed to encode session report: %w", err)
		}
		if err := t.store.Append(ctx, storage.KeyTutorSessions, string(data), storage.MaxTutorSessions); err != nil {
			t.logger.Warn("failed to save session report", zap.String("session", s.id), zap.Error(err))
		}
	}
	t.logger.Info("tutor session ended",
		zap.String("session", s.id),
		zap.Int("minutes", minutes),
		zap.Int("difficulties", len(report.Difficulties)))
	return report, nil
}

// Reports returns the stored session reports, oldest first.
func (t *Tutor) Reports(ctx context.Context) ([]models.SessionReport, error) {
	if t.store == nil {
		return []models.SessionReport{}, nil
	}
	raw, err := t.store.List(ctx, storage.KeyTutorSessions)
	if err != nil {
		return nil, fmt.Errorf("failed to read session reports: %w", err)
	}
	reports := make([]models.SessionReport, 0, len(raw))
	for _, item := range raw {
		var r models.SessionReport
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			t.logger.Warn("skipping malformed session report", zap.Error(err))
			continue
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// ActiveSessions returns the number of open sessions.
func (t *Tutor) ActiveSessions() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}
