// Package server exposes search, content generation, quizzes, and tutoring over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nathbrawlstatsr-afk/cours/internal/config"
	"github.com/nathbrawlstatsr-afk/cours/internal/content"
	"github.com/nathbrawlstatsr-afk/cours/internal/embedding"
	"github.com/nathbrawlstatsr-afk/cours/internal/index"
	"github.com/nathbrawlstatsr-afk/cours/internal/indexer"
	"github.com/nathbrawlstatsr-afk/cours/internal/learner"
	"github.com/nathbrawlstatsr-afk/cours/internal/metrics"
	"github.com/nathbrawlstatsr-afk/cours/internal/quiz"
	"github.com/nathbrawlstatsr-afk/cours/internal/search"
	"github.com/nathbrawlstatsr-afk/cours/internal/storage"
	"github.com/nathbrawlstatsr-afk/cours/internal/tutor"
)

// MaterialWatcher manages the watched course material directories.
type MaterialWatcher interface {
	AddDirectory(root string, syncExisting bool) error
	RemoveDirectory(root string) error
	Directories() []string
}

// Services are the components the API serves. Ingester, Enricher, Watcher, and Config may
// be nil. When Enricher is set, documents added through the API get their similarity
// vectors before the response is written. When ConfigPath is set, directory changes are
// saved back to that file.
type Services struct {
	Index      *index.Index
	Engine     *search.Engine
	Content    *content.Generator
	Quiz       *quiz.Generator
	Tutor      *tutor.Tutor
	Memory     *learner.Memory
	Store      storage.Store
	Ingester   *indexer.Ingester
	Enricher   *embedding.Enricher
	Watcher    MaterialWatcher
	Config     *config.Config
	ConfigPath string
}

// Server is the HTTP server for the cours API.
type Server struct {
	svc      Services
	config   *config.ServerConfig
	logger   *zap.Logger
	handler  http.Handler
	server   *http.Server
	configMu sync.Mutex
}

// NewServer creates a server and builds its router.
func NewServer(svc Services, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{svc: svc, config: cfg, logger: logger}
	s.handler = s.routes()
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	timeout := s.config.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(recoverer(s.logger))
	r.Use(metrics.Middleware())
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)

		r.Post("/search", s.handleSearch)
		r.Post("/search/intelligent", s.handleIntelligentSearch)

		r.Post("/documents", s.handleIndexDocument)
		r.Get("/documents/{id}", s.handleGetDocument)
		r.Delete("/documents/{id}", s.handleDeleteDocument)

		r.Get("/courses", s.handleListCourses)
		r.Post("/courses/generate", s.handleGenerateCourse)
		r.Post("/exercises", s.handleGenerateExercises)
		r.Post("/summary-sheets", s.handleSummarySheet)
		r.Post("/flashcards", s.handleFlashcards)

		r.Post("/quizzes/generate", s.handleGenerateQuiz)
		r.Post("/quizzes/from-text", s.handleQuizFromText)
		r.Post("/quizzes/adaptive", s.handleAdaptiveQuiz)
		r.Post("/quizzes/attempts", s.handleRecordAttempt)

		r.Get("/learners/{id}", s.handleLearnerProfile)
		r.Post("/learners/{id}/interactions", s.handleLearnerInteractions)

		r.Post("/tutor/sessions", s.handleStartSession)
		r.Post("/tutor/sessions/{id}/questions", s.handleAskTutor)
		r.Delete("/tutor/sessions/{id}", s.handleEndSession)
		r.Post("/tutor/exercises", s.handleTutorExercise)
		r.Get("/tutor/reports", s.handleTutorReports)

		r.Get("/materials/directories", s.handleMaterialDirectoriesList)
		r.Post("/materials/directories", s.handleMaterialDirectoriesAdd)
		r.Delete("/materials/directories", s.handleMaterialDirectoriesRemove)
	})
	return r
}

// Start listens on the configured address and blocks until the server stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// enrich embeds documents indexed since the last pass. Failures leave the documents
// searchable on keywords and recency alone.
func (s *Server) enrich(ctx context.Context) {
	if s.svc.Enricher == nil {
		return
	}
	n, err := s.svc.Enricher.EnrichIndex(ctx, s.svc.Index)
	if err != nil {
		s.logger.Warn("document enrichment incomplete", zap.Int("enriched", n), zap.Error(err))
	}
}
