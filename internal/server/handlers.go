package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nathbrawlstatsr-afk/cours/internal/models"
	"github.com/nathbrawlstatsr-afk/cours/internal/storage"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	req := models.SearchRequest{SearchOptions: models.DefaultSearchOptions()}
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.logger.Debug("search request", zap.String("query", req.Query), zap.Int("limit", req.Limit))
	start := time.Now()
	results, err := s.svc.Engine.Search(r.Context(), req.Query, req.SearchOptions)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, models.SearchResponse{
		Query:     req.Query,
		Results:   results,
		Total:     len(results),
		QueryTime: time.Since(start).Milliseconds(),
	})
}

type intelligentSearchRequest struct {
	Query   string            `json:"query"`
	Filters map[string]string `json:"filters,omitempty"`
}

func (s *Server) handleIntelligentSearch(w http.ResponseWriter, r *http.Request) {
	var req intelligentSearchRequest
	if err := decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	resp, err := s.svc.Engine.IntelligentSearch(r.Context(), req.Query, req.Filters)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIndexDocument(w http.ResponseWriter, r *http.Request) {
	var input models.DocumentInput
	if err := decode(r, &input); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := required("content", input.Content); err != nil {
		s.respondError(w, r, err)
		return
	}
	id := s.svc.Index.IndexContent(input.Content, input.Metadata)
	s.enrich(r.Context())
	s.logger.Debug("document indexed", zap.String("id", id), zap.String("type", input.Metadata.Type))
	respondJSON(w, http.StatusCreated, map[string]string{"id": id, "status": "indexed"})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.Index.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.svc.Index.Delete(id); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.logger.Debug("document deleted", zap.String("id", id))
	respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"documents":             s.svc.Index.Len(),
		"active_tutor_sessions": 0,
	}
	if s.svc.Tutor != nil {
		resp["active_tutor_sessions"] = s.svc.Tutor.ActiveSessions()
	}
	if s.svc.Ingester != nil {
		resp["material_files"] = len(s.svc.Ingester.Files())
	}
	if cfg := s.svc.Config; cfg != nil {
		resp["config"] = map[string]any{
			"completion_provider": cfg.Completion.Provider,
			"completion_model":    cfg.Completion.Model,
			"embedding_provider":  cfg.Embedding.Provider,
			"storage_driver":      cfg.Storage.Driver,
			"material_dirs":       cfg.Materials.Directories,
		}
		if paths := storage.Paths(&cfg.Storage); len(paths) > 0 {
			if n, err := storage.DiskUsageBytes(paths...); err == nil {
				resp["disk_usage_bytes"] = n
			}
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

// filterCourses keeps courses whose subject and level match when those are set.
func filterCourses(courses []models.Course, subject, level string) []models.Course {
	out := make([]models.Course, 0, len(courses))
	for _, c := range courses {
		if subject != "" && !strings.EqualFold(c.Subject, subject) {
			continue
		}
		if level != "" && !strings.EqualFold(c.Level, level) {
			continue
		}
		out = append(out, c)
	}
	return out
}
