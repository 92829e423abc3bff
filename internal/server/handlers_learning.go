package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nathbrawlstatsr-afk/cours/internal/learner"
	"github.com/nathbrawlstatsr-afk/cours/internal/models"
)

func (s *Server) handleGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var opts models.QuizOptions
	if err := decode(r, &opts); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := required("topic", opts.Topic); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, s.svc.Quiz.Generate(r.Context(), opts))
}

type textQuizRequest struct {
	Text    string `json:"text"`
	Subject string `json:"subject"`
}

func (s *Server) handleQuizFromText(w http.ResponseWriter, r *http.Request) {
	var req textQuizRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	q, err := s.svc.Quiz.GenerateFromText(r.Context(), req.Text, req.Subject)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, q)
}

type adaptiveQuizRequest struct {
	UserID  string `json:"user_id"`
	Subject string `json:"subject"`
}

func (s *Server) handleAdaptiveQuiz(w http.ResponseWriter, r *http.Request) {
	var req adaptiveQuizRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := required("user_id", req.UserID); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, s.svc.Quiz.GenerateAdaptive(r.Context(), req.UserID, req.Subject))
}

type attemptRequest struct {
	UserID  string             `json:"user_id"`
	Attempt models.QuizAttempt `json:"attempt"`
}

type attemptResponse struct {
	Status          string                          `json:"status"`
	KnowledgeGaps   map[string]*models.KnowledgeGap `json:"knowledge_gaps"`
	Recommendations []models.LearningRecommendation `json:"recommendations"`
}

// handleRecordAttempt stores the attempt and refreshes the learner's knowledge gaps from
// the full history.
func (s *Server) handleRecordAttempt(w http.ResponseWriter, r *http.Request) {
	var req attemptRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	ctx := r.Context()
	if err := s.svc.Quiz.RecordAttempt(ctx, req.UserID, req.Attempt); err != nil {
		s.respondError(w, r, err)
		return
	}
	history, err := s.svc.Quiz.History(ctx, req.UserID, "")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	gaps := s.svc.Memory.DetectKnowledgeGaps(req.UserID, history)
	respondJSON(w, http.StatusCreated, attemptResponse{
		Status:          "recorded",
		KnowledgeGaps:   gaps,
		Recommendations: learner.Recommendations(gaps),
	})
}

type learnerProfile struct {
	UserID          string                          `json:"user_id"`
	LearningStyle   string                          `json:"learning_style"`
	KnowledgeGaps   map[string]*models.KnowledgeGap `json:"knowledge_gaps"`
	Recommendations []models.LearningRecommendation `json:"recommendations"`
}

func (s *Server) handleLearnerProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	respondJSON(w, http.StatusOK, learnerProfile{
		UserID:          id,
		LearningStyle:   s.svc.Memory.LearningStyle(id),
		KnowledgeGaps:   s.svc.Memory.KnowledgeGaps(id),
		Recommendations: s.svc.Memory.StoredRecommendations(id),
	})
}

type interactionsRequest struct {
	Interactions []models.Interaction `json:"interactions"`
}

func (s *Server) handleLearnerInteractions(w http.ResponseWriter, r *http.Request) {
	var req interactionsRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	style := s.svc.Memory.AnalyzeLearningStyle(id, req.Interactions)
	respondJSON(w, http.StatusOK, map[string]string{"user_id": id, "learning_style": style})
}

type startSessionRequest struct {
	UserID  string `json:"user_id"`
	Subject string `json:"subject"`
	Topic   string `json:"topic"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	start, err := s.svc.Tutor.StartSession(r.Context(), req.UserID, req.Subject, req.Topic)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, start)
}

type questionRequest struct {
	Question string `json:"question"`
	Context  string `json:"context,omitempty"`
}

func (s *Server) handleAskTutor(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	answer, err := s.svc.Tutor.AnswerQuestion(r.Context(), id, req.Question, req.Context)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"session_id": id, "answer": answer})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.Tutor.EndSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

type tutorExerciseRequest struct {
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
}

func (s *Server) handleTutorExercise(w http.ResponseWriter, r *http.Request) {
	req := tutorExerciseRequest{Difficulty: models.DifficultyMedium}
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := required("topic", req.Topic); err != nil {
		s.respondError(w, r, err)
		return
	}
	exercise := s.svc.Tutor.GeneratePersonalizedExercise(r.Context(), req.Topic, req.Difficulty)
	respondJSON(w, http.StatusOK, map[string]string{"topic": req.Topic, "exercise": exercise})
}

func (s *Server) handleTutorReports(w http.ResponseWriter, r *http.Request) {
	reports, err := s.svc.Tutor.Reports(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"reports": reports, "total": len(reports)})
}
