package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/nathbrawlstatsr-afk/cours/internal/catalog"
	"github.com/nathbrawlstatsr-afk/cours/internal/completion"
	"github.com/nathbrawlstatsr-afk/cours/internal/config"
	"github.com/nathbrawlstatsr-afk/cours/internal/content"
	"github.com/nathbrawlstatsr-afk/cours/internal/embedding"
	"github.com/nathbrawlstatsr-afk/cours/internal/index"
	"github.com/nathbrawlstatsr-afk/cours/internal/learner"
	"github.com/nathbrawlstatsr-afk/cours/internal/models"
	"github.com/nathbrawlstatsr-afk/cours/internal/quiz"
	"github.com/nathbrawlstatsr-afk/cours/internal/search"
	"github.com/nathbrawlstatsr-afk/cours/internal/storage"
	"github.com/nathbrawlstatsr-afk/cours/internal/tutor"
)

var testCourses = []models.Course{
	{ID: "math-1", Title: "Les fractions", Description: "Numérateur et dénominateur",
		Content: "Une fraction représente une partie d'un tout.", Subject: "mathematics", Level: "college"},
	{ID: "hist-1", Title: "La Révolution française", Description: "1789",
		Content: "La prise de la Bastille marque le début de la Révolution.", Subject: "history", Level: "lycee"},
}

// newTestServer wires every service against an offline completion client, so each
// generator answers with its fallback.
func newTestServer(t *testing.T) (*Server, Services) {
	t.Helper()
	svc := newTestServices(t, completion.Offline{})
	return NewServer(svc, &config.ServerConfig{Port: 8080}, zap.NewNop()), svc
}

func newTestServices(t *testing.T, client completion.Client) Services {
	t.Helper()
	ctx := context.Background()
	llm := completion.NewFallback(client, nil)
	store := storage.NewMemoryStore()
	idx := index.New()
	memory := learner.NewMemory()

	gen, err := content.New(llm, content.WithWorkers(2))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(gen.Close)

	if err := catalog.SaveStore(ctx, store, storage.KeyCourses, testCourses); err != nil {
		t.Fatal(err)
	}
	catalog.Sync(idx, testCourses)

	svc := Services{
		Index:   idx,
		Engine:  search.NewEngine(idx, nil, search.WithCompletion(llm)),
		Content: gen,
		Quiz:    quiz.NewGenerator(llm, store, quiz.WithGapSource(memory)),
		Tutor:   tutor.New(llm, memory, store),
		Memory:  memory,
		Store:   store,
	}
	return svc
}

// courseClient answers every completion with the same small course.
type courseClient struct{}

func (courseClient) Name() string { return "course" }

func (courseClient) Complete(context.Context, completion.Request) (string, error) {
	return `{"title":"Optique géométrique","keyConcepts":[]}`, nil
}

func newEnrichingServer(t *testing.T, client completion.Client) (*Server, Services) {
	t.Helper()
	svc := newTestServices(t, client)
	enricher, err := embedding.NewEnricher(embedding.NewMockEmbedder(16), 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(enricher.Release)
	svc.Enricher = enricher
	return NewServer(svc, &config.ServerConfig{Port: 8080}, zap.NewNop()), svc
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, r)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, want, w.Body.String())
	}
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv, http.MethodGet, "/health", "")
	expectStatus(t, w, http.StatusOK)
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestHandleMetrics(t *testing.T) {
	srv, _ := newTestServer(t)
	do(t, srv, http.MethodGet, "/health", "")
	w := do(t, srv, http.MethodGet, "/metrics", "")
	expectStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), "cours_http_requests_total") {
		t.Error("expected cours_http_requests_total in /metrics output")
	}
}

func TestHandleSearch(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv, http.MethodPost, "/api/v1/search", `{"query":"fractions"}`)
	expectStatus(t, w, http.StatusOK)

	var resp struct {
		Results []models.SearchResult `json:"results"`
		Total   int                   `json:"total"`
	}
	decodeBody(t, w, &resp)
	if resp.Total != 1 || len(resp.Results) != 1 {
		t.Fatalf("total = %d, want 1", resp.Total)
	}
	if got := resp.Results[0].Document.Metadata.SourceID; got != "math-1" {
		t.Errorf("top result source = %q, want math-1", got)
	}
}

func TestHandleSearch_filtersAndErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	tests := []struct {
		name   string
		body   string
		status int
		total  int
	}{
		{"filter excludes", `{"query":"fractions","filters":{"subject":"history"}}`, http.StatusOK, 0},
		{"threshold above max", `{"query":"fractions","threshold":2}`, http.StatusOK, 0},
		{"negative limit", `{"query":"fractions","limit":-1}`, http.StatusBadRequest, 0},
		{"invalid json", `{"query":`, http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, http.MethodPost, "/api/v1/search", tt.body)
			expectStatus(t, w, tt.status)
			if tt.status != http.StatusOK {
				var e errorBody
				decodeBody(t, w, &e)
				if e.Error == "" {
					t.Error("expected error message")
				}
				return
			}
			var resp struct {
				Total int `json:"total"`
			}
			decodeBody(t, w, &resp)
			if resp.Total != tt.total {
				t.Errorf("total = %d, want %d", resp.Total, tt.total)
			}
		})
	}
}

func TestHandleIntelligentSearch(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv, http.MethodPost, "/api/v1/search/intelligent", `{"query":"révolution bastille"}`)
	expectStatus(t, w, http.StatusOK)

	var resp models.IntelligentSearchResponse
	decodeBody(t, w, &resp)
	if resp.Total != 1 || len(resp.Categories.Courses) != 1 {
		t.Errorf("total = %d, courses = %d", resp.Total, len(resp.Categories.Courses))
	}
	if len(resp.Suggestions) != 3 {
		t.Errorf("suggestions = %d, want 3", len(resp.Suggestions))
	}
	if len(resp.DidYouMean) != 0 {
		t.Errorf("offline completion should yield no alternatives, got %v", resp.DidYouMean)
	}
}

func TestHandleDocuments_lifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/v1/documents",
		`{"content":"Le théorème de Pythagore relie les côtés","metadata":{"subject":"mathematics","type":"note"}}`)
	expectStatus(t, w, http.StatusCreated)
	var created map[string]string
	decodeBody(t, w, &created)
	id := created["id"]
	if !strings.HasPrefix(id, "doc_") {
		t.Fatalf("unexpected id %q", id)
	}

	w = do(t, srv, http.MethodGet, "/api/v1/documents/"+id, "")
	expectStatus(t, w, http.StatusOK)
	var doc models.IndexedDocument
	decodeBody(t, w, &doc)
	if doc.Metadata.Subject != "mathematics" || len(doc.Keywords) == 0 {
		t.Errorf("unexpected document %+v", doc)
	}

	expectStatus(t, do(t, srv, http.MethodDelete, "/api/v1/documents/"+id, ""), http.StatusOK)
	expectStatus(t, do(t, srv, http.MethodGet, "/api/v1/documents/"+id, ""), http.StatusNotFound)
	expectStatus(t, do(t, srv, http.MethodDelete, "/api/v1/documents/"+id, ""), http.StatusNotFound)
}

func TestHandleIndexDocument_emptyContent(t *testing.T) {
	srv, _ := newTestServer(t)
	expectStatus(t, do(t, srv, http.MethodPost, "/api/v1/documents", `{"content":"  "}`), http.StatusBadRequest)
}

func TestHandleIndexDocument_enrichesWithEmbedder(t *testing.T) {
	srv, svc := newEnrichingServer(t, completion.Offline{})
	w := do(t, srv, http.MethodPost, "/api/v1/documents", `{"content":"Les volcans et la tectonique des plaques"}`)
	expectStatus(t, w, http.StatusCreated)
	var created map[string]string
	decodeBody(t, w, &created)

	doc, err := svc.Index.Get(created["id"])
	if err != nil {
		t.Fatal(err)
	}
	if !doc.HasSimilarityVector() {
		t.Error("document added through the API has no similarity vector")
	}
}

func TestHandleGenerateCourse_concurrentGenerationsAllCatalogued(t *testing.T) {
	srv, svc := newEnrichingServer(t, courseClient{})

	const requests = 10
	var wg sync.WaitGroup
	codes := make(chan int, requests)
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := do(t, srv, http.MethodPost, "/api/v1/courses/generate",
				`{"subject":"physics","level":"lycee","topic":"Optique"}`)
			codes <- w.Code
		}()
	}
	wg.Wait()
	close(codes)
	for code := range codes {
		if code != http.StatusCreated {
			t.Fatalf("status = %d, want %d", code, http.StatusCreated)
		}
	}

	stored, err := catalog.LoadStore(context.Background(), svc.Store, storage.KeyCourses)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != len(testCourses)+requests {
		t.Errorf("stored catalog has %d courses, want %d", len(stored), len(testCourses)+requests)
	}
	for _, doc := range svc.Index.Documents() {
		if !doc.HasSimilarityVector() {
			t.Errorf("document %s (%s) has no similarity vector", doc.ID, doc.Metadata.Title)
		}
	}
}

func TestHandleListCourses(t *testing.T) {
	srv, _ := newTestServer(t)
	tests := []struct {
		query string
		want  int
	}{
		{"", 2},
		{"?subject=history", 1},
		{"?subject=History&level=lycee", 1},
		{"?level=primaire", 0},
	}
	for _, tt := range tests {
		w := do(t, srv, http.MethodGet, "/api/v1/courses"+tt.query, "")
		expectStatus(t, w, http.StatusOK)
		var resp struct {
			Total int `json:"total"`
		}
		decodeBody(t, w, &resp)
		if resp.Total != tt.want {
			t.Errorf("GET /courses%s total = %d, want %d", tt.query, resp.Total, tt.want)
		}
	}
}

func TestHandleGenerateCourse_fallbackNotCatalogued(t *testing.T) {
	srv, svc := newTestServer(t)
	w := do(t, srv, http.MethodPost, "/api/v1/courses/generate",
		`{"subject":"physics","level":"lycee","topic":"Optique"}`)
	expectStatus(t, w, http.StatusCreated)
	var course models.GeneratedCourse
	decodeBody(t, w, &course)
	if !course.IsFallback || course.Title != "Optique - lycee" {
		t.Errorf("unexpected course %+v", course)
	}
	if svc.Index.Len() != len(testCourses) {
		t.Errorf("fallback course must not be indexed, len = %d", svc.Index.Len())
	}

	expectStatus(t, do(t, srv, http.MethodPost, "/api/v1/courses/generate", `{"subject":"physics"}`), http.StatusBadRequest)
}

func TestHandleContentEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/v1/flashcards", `{"concepts":["atome","molécule"]}`)
	expectStatus(t, w, http.StatusOK)
	var cards struct {
		Flashcards []models.Flashcard `json:"flashcards"`
	}
	decodeBody(t, w, &cards)
	if len(cards.Flashcards) != 2 || cards.Flashcards[1].Concept != "molécule" {
		t.Errorf("unexpected flashcards %+v", cards.Flashcards)
	}
	expectStatus(t, do(t, srv, http.MethodPost, "/api/v1/flashcards", `{"concepts":[]}`), http.StatusBadRequest)

	w = do(t, srv, http.MethodPost, "/api/v1/exercises", `{"subject":"mathematics","topic":"fractions"}`)
	expectStatus(t, w, http.StatusOK)
	expectStatus(t, do(t, srv, http.MethodPost, "/api/v1/exercises", `{"topic":"fractions","count":50}`), http.StatusBadRequest)

	w = do(t, srv, http.MethodPost, "/api/v1/summary-sheets", `{"topic":"fractions"}`)
	expectStatus(t, w, http.StatusOK)
	var sheet map[string]string
	decodeBody(t, w, &sheet)
	if !strings.Contains(sheet["sheet"], "fractions") {
		t.Errorf("sheet should mention the topic: %q", sheet["sheet"])
	}
}

func TestHandleQuizzes(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/v1/quizzes/generate", `{"subject":"mathematics","level":"college","topic":"fractions"}`)
	expectStatus(t, w, http.StatusCreated)
	var q models.Quiz
	decodeBody(t, w, &q)
	if !q.IsFallback || !strings.HasPrefix(q.ID, "fallback-quiz-") {
		t.Errorf("unexpected quiz %s fallback=%v", q.ID, q.IsFallback)
	}

	expectStatus(t, do(t, srv, http.MethodPost, "/api/v1/quizzes/from-text", `{"text":"Les volcans"}`), http.StatusBadGateway)
	expectStatus(t, do(t, srv, http.MethodPost, "/api/v1/quizzes/from-text", `{"text":""}`), http.StatusBadRequest)

	w = do(t, srv, http.MethodPost, "/api/v1/quizzes/adaptive", `{"user_id":"u1","subject":"mathematics"}`)
	expectStatus(t, w, http.StatusCreated)
	expectStatus(t, do(t, srv, http.MethodPost, "/api/v1/quizzes/adaptive", `{"subject":"mathematics"}`), http.StatusBadRequest)
}

func TestHandleRecordAttempt_updatesLearner(t *testing.T) {
	srv, _ := newTestServer(t)
	body := `{"user_id":"u1","attempt":{"quiz_id":"q1","subject":"mathematics","topic":"fractions","score":40}}`
	w := do(t, srv, http.MethodPost, "/api/v1/quizzes/attempts", body)
	expectStatus(t, w, http.StatusCreated)
	var resp attemptResponse
	decodeBody(t, w, &resp)
	gap, ok := resp.KnowledgeGaps["fractions"]
	if !ok || gap.AverageScore != 40 {
		t.Fatalf("unexpected gaps %+v", resp.KnowledgeGaps)
	}
	if len(resp.Recommendations) != 1 || resp.Recommendations[0].Priority != learner.PriorityHigh {
		t.Errorf("unexpected recommendations %+v", resp.Recommendations)
	}

	w = do(t, srv, http.MethodGet, "/api/v1/learners/u1", "")
	expectStatus(t, w, http.StatusOK)
	var profile learnerProfile
	decodeBody(t, w, &profile)
	if len(profile.KnowledgeGaps) != 1 || profile.LearningStyle != "reading" {
		t.Errorf("unexpected profile %+v", profile)
	}

	expectStatus(t, do(t, srv, http.MethodPost, "/api/v1/quizzes/attempts",
		`{"user_id":"u1","attempt":{"score":140}}`), http.StatusBadRequest)
}

func TestHandleLearnerInteractions(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv, http.MethodPost, "/api/v1/learners/u2/interactions",
		`{"interactions":[{"type":"video_watch"},{"type":"video_watch"},{"type":"text_read"}]}`)
	expectStatus(t, w, http.StatusOK)
	var resp map[string]string
	decodeBody(t, w, &resp)
	if resp["learning_style"] != "visual" {
		t.Errorf("learning_style = %q, want visual", resp["learning_style"])
	}
}

func TestHandleTutorSession(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/v1/tutor/sessions", `{"user_id":"u1","subject":"mathematics","topic":"fractions"}`)
	expectStatus(t, w, http.StatusCreated)
	var start models.SessionStart
	decodeBody(t, w, &start)
	if !strings.HasPrefix(start.SessionID, "tutor-session-") || start.WelcomeMessage == "" {
		t.Fatalf("unexpected session start %+v", start)
	}

	path := fmt.Sprintf("/api/v1/tutor/sessions/%s", start.SessionID)
	w = do(t, srv, http.MethodPost, path+"/questions", `{"question":"Je ne comprends pas les fractions"}`)
	expectStatus(t, w, http.StatusOK)
	expectStatus(t, do(t, srv, http.MethodPost, path+"/questions", `{"question":" "}`), http.StatusBadRequest)

	w = do(t, srv, http.MethodDelete, path, "")
	expectStatus(t, w, http.StatusOK)
	var report models.SessionReport
	decodeBody(t, w, &report)
	if report.SessionID != start.SessionID || len(report.Difficulties) != 1 {
		t.Errorf("unexpected report %+v", report)
	}

	expectStatus(t, do(t, srv, http.MethodDelete, path, ""), http.StatusNotFound)
	expectStatus(t, do(t, srv, http.MethodPost, path+"/questions", `{"question":"encore ?"}`), http.StatusNotFound)
	expectStatus(t, do(t, srv, http.MethodPost, "/api/v1/tutor/sessions", `{"subject":"mathematics"}`), http.StatusBadRequest)

	w = do(t, srv, http.MethodGet, "/api/v1/tutor/reports", "")
	expectStatus(t, w, http.StatusOK)
	var reports struct {
		Total int `json:"total"`
	}
	decodeBody(t, w, &reports)
	if reports.Total != 1 {
		t.Errorf("reports total = %d, want 1", reports.Total)
	}

	expectStatus(t, do(t, srv, http.MethodPost, "/api/v1/tutor/exercises", `{"topic":"fractions"}`), http.StatusOK)
}

func TestHandleStatus(t *testing.T) {
	srv, _ := newTestServer(t)
	w := do(t, srv, http.MethodGet, "/api/v1/status", "")
	expectStatus(t, w, http.StatusOK)
	var resp map[string]any
	decodeBody(t, w, &resp)
	if resp["documents"] != float64(len(testCourses)) {
		t.Errorf("documents = %v", resp["documents"])
	}
	if _, ok := resp["config"]; ok {
		t.Error("config section should be omitted without a config")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&models.ValidationError{Field: "f", Message: "m"}, http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", models.ErrNotFound), http.StatusNotFound},
		{&completion.ServiceError{Provider: "openai", Err: errors.New("boom")}, http.StatusBadGateway},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestRecoverer(t *testing.T) {
	h := recoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	expectStatus(t, w, http.StatusInternalServerError)
	var e errorBody
	decodeBody(t, w, &e)
	if e.Error != "internal error" {
		t.Errorf("error = %q", e.Error)
	}
}

type fakeWatcher struct {
	dirs []string
}

func (f *fakeWatcher) AddDirectory(root string, _ bool) error {
	f.dirs = append(f.dirs, root)
	return nil
}

func (f *fakeWatcher) RemoveDirectory(root string) error {
	for i, d := range f.dirs {
		if d == root {
			f.dirs = append(f.dirs[:i], f.dirs[i+1:]...)
		}
	}
	return nil
}

func (f *fakeWatcher) Directories() []string { return append([]string(nil), f.dirs...) }

func TestHandleMaterialDirectories_disabled(t *testing.T) {
	srv, _ := newTestServer(t)
	expectStatus(t, do(t, srv, http.MethodGet, "/api/v1/materials/directories", ""), http.StatusNotImplemented)
}

func TestHandleMaterialDirectories(t *testing.T) {
	_, svc := newTestServer(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	svc.Watcher = &fakeWatcher{}
	svc.Config = &config.Config{}
	svc.ConfigPath = configPath
	srv := NewServer(svc, &config.ServerConfig{}, zap.NewNop())

	expectStatus(t, do(t, srv, http.MethodPost, "/api/v1/materials/directories", `{"path":"`+dir+`"}`), http.StatusCreated)
	expectStatus(t, do(t, srv, http.MethodPost, "/api/v1/materials/directories", `{"path":"`+filepath.Join(dir, "missing")+`"}`), http.StatusNotFound)
	expectStatus(t, do(t, srv, http.MethodPost, "/api/v1/materials/directories", `{"path":"`+file+`"}`), http.StatusBadRequest)
	expectStatus(t, do(t, srv, http.MethodPost, "/api/v1/materials/directories", `{}`), http.StatusBadRequest)

	w := do(t, srv, http.MethodGet, "/api/v1/materials/directories", "")
	expectStatus(t, w, http.StatusOK)
	var list struct {
		Directories []string `json:"directories"`
	}
	decodeBody(t, w, &list)
	if len(list.Directories) != 1 || list.Directories[0] != dir {
		t.Fatalf("directories = %v, want [%s]", list.Directories, dir)
	}
	saved, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("config not persisted: %v", err)
	}
	if !strings.Contains(string(saved), dir) {
		t.Errorf("persisted config should list %s:\n%s", dir, saved)
	}

	expectStatus(t, do(t, srv, http.MethodDelete, "/api/v1/materials/directories?path="+url.QueryEscape(dir), ""), http.StatusOK)
	if got := svc.Watcher.Directories(); len(got) != 0 {
		t.Errorf("directories after remove = %v", got)
	}
}
