package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/nathbrawlstatsr-afk/cours/internal/catalog"
	"github.com/nathbrawlstatsr-afk/cours/internal/models"
	"github.com/nathbrawlstatsr-afk/cours/internal/storage"
)

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := catalog.LoadStore(r.Context(), s.svc.Store, storage.KeyCourses)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	q := r.URL.Query()
	courses = filterCourses(courses, q.Get("subject"), q.Get("level"))
	respondJSON(w, http.StatusOK, map[string]any{"courses": courses, "total": len(courses)})
}

// handleGenerateCourse generates a course and, unless it is the fallback, adds it to the
// stored catalog and the index so later searches find it.
func (s *Server) handleGenerateCourse(w http.ResponseWriter, r *http.Request) {
	var req models.CourseRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := required("topic", req.Topic); err != nil {
		s.respondError(w, r, err)
		return
	}
	ctx := r.Context()
	course := s.svc.Content.GenerateCourse(ctx, req)
	if !course.IsFallback {
		entry := course.AsCourse()
		if err := catalog.AppendStore(ctx, s.svc.Store, storage.KeyCourses, entry); err != nil {
			s.logger.Warn("failed to save generated course", zap.String("id", course.ID), zap.Error(err))
		}
		catalog.Sync(s.svc.Index, []models.Course{entry})
		s.enrich(ctx)
	}
	respondJSON(w, http.StatusCreated, course)
}

type exercisesRequest struct {
	Subject string `json:"subject"`
	Topic   string `json:"topic"`
	Count   int    `json:"count"`
}

func (s *Server) handleGenerateExercises(w http.ResponseWriter, r *http.Request) {
	req := exercisesRequest{Count: 3}
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := required("topic", req.Topic); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.Count < 1 || req.Count > 20 {
		s.respondError(w, r, &models.ValidationError{Field: "count", Message: "must be between 1 and 20"})
		return
	}
	exercises := s.svc.Content.GenerateExercises(r.Context(), req.Subject, req.Topic, req.Count)
	respondJSON(w, http.StatusOK, map[string]any{"exercises": exercises})
}

func (s *Server) handleSummarySheet(w http.ResponseWriter, r *http.Request) {
	var req models.SummarySheetInput
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := required("topic", req.Topic); err != nil {
		s.respondError(w, r, err)
		return
	}
	sheet := s.svc.Content.GenerateSummarySheet(r.Context(), req.Topic)
	respondJSON(w, http.StatusOK, map[string]string{"topic": req.Topic, "sheet": sheet})
}

type flashcardsRequest struct {
	Concepts []string `json:"concepts"`
}

func (s *Server) handleFlashcards(w http.ResponseWriter, r *http.Request) {
	var req flashcardsRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if len(req.Concepts) == 0 {
		s.respondError(w, r, &models.ValidationError{Field: "concepts", Message: "must not be empty"})
		return
	}
	cards := s.svc.Content.GenerateFlashcards(r.Context(), req.Concepts)
	respondJSON(w, http.StatusOK, map[string]any{"flashcards": cards})
}
