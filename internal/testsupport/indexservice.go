package testsupport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"pcsteps/internal/services/twelvelabs"
)

// FakeIndexService is an in-memory stand-in for the indexing service REST
// API. Tasks report "indexing" for PollsUntilReady polls and then "ready";
// videos report indexed once their task is ready.
type FakeIndexService struct {
	Server *httptest.Server
	APIKey string
	// PollsUntilReady is how many task polls return "indexing" first.
	PollsUntilReady int
	// FailTasks makes every task end in the failed state.
	FailTasks bool

	mu        sync.Mutex
	indexes   map[string]string
	tasks     map[string]*fakeTask
	videos    map[string]bool
	results   map[string][]twelvelabs.Clip
	uploads   int
	searches  []string
	nextID    int
	lastFiles []string
}

type fakeTask struct {
	id      string
	videoID string
	polls   int
}

// NewFakeIndexService starts a fake service and stops it on test cleanup.
func NewFakeIndexService(t testing.TB) *FakeIndexService {
	t.Helper()
	f := &FakeIndexService{
		APIKey:  "test",
		indexes: map[string]string{},
		tasks:   map[string]*fakeTask{},
		videos:  map[string]bool{},
		results: map[string][]twelvelabs.Clip{},
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(f.requireKey)
	r.Route("/v1.3", func(r chi.Router) {
		r.Get("/indexes", f.handleListIndexes)
		r.Post("/indexes", f.handleCreateIndex)
		r.Get("/indexes/{indexID}/videos/{videoID}", f.handleGetVideo)
		r.Post("/tasks", f.handleCreateTask)
		r.Get("/tasks/{taskID}", f.handleGetTask)
		r.Post("/search", f.handleSearch)
	})
	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Server.Close)
	return f
}

// BaseURL is the API root to configure clients with.
func (f *FakeIndexService) BaseURL() string {
	return f.Server.URL + "/v1.3"
}

// Client returns a service client bound to the fake.
func (f *FakeIndexService) Client(t testing.TB) *twelvelabs.Client {
	t.Helper()
	client, err := twelvelabs.New(twelvelabs.Config{APIKey: f.APIKey, BaseURL: f.BaseURL()},
		twelvelabs.WithHTTPClient(f.Server.Client()),
		twelvelabs.WithRateLimiter(nil),
	)
	if err != nil {
		t.Fatalf("twelvelabs.New: %v", err)
	}
	return client
}

// AddIndex registers an existing index.
func (f *FakeIndexService) AddIndex(name, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexes[name] = id
}

// AddVideo registers an already indexed video.
func (f *FakeIndexService) AddVideo(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.videos[id] = true
}

// SetResults fixes the clips returned for an exact query text.
func (f *FakeIndexService) SetResults(query string, clips ...twelvelabs.Clip) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[query] = clips
}

// Uploads reports how many tasks were created.
func (f *FakeIndexService) Uploads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploads
}

// Searches returns the query texts received, in order.
func (f *FakeIndexService) Searches() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searches...)
}

// UploadedFiles returns the uploaded file names, in order.
func (f *FakeIndexService) UploadedFiles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lastFiles...)
}

func (f *FakeIndexService) requireKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != f.APIKey {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"code": "api_key_invalid"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeIndexService) handleListIndexes(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("index_name")
	f.mu.Lock()
	defer f.mu.Unlock()
	data := []twelvelabs.Index{}
	for n, id := range f.indexes {
		if name == "" || n == name {
			data = append(data, twelvelabs.Index{ID: id, Name: n})
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func (f *FakeIndexService) handleCreateIndex(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"index_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"code": "parameter_invalid"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.indexes[req.Name]; exists {
		writeJSON(w, http.StatusConflict, map[string]string{"code": "index_name_already_exists"})
		return
	}
	id := f.newID("idx")
	f.indexes[req.Name] = id
	writeJSON(w, http.StatusCreated, map[string]string{"_id": id})
}

func (f *FakeIndexService) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"code": "parameter_invalid", "message": err.Error()})
		return
	}
	file, header, err := r.FormFile("video_file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"code": "video_file_missing"})
		return
	}
	_ = file.Close()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	f.lastFiles = append(f.lastFiles, header.Filename)
	task := &fakeTask{id: f.newID("task"), videoID: f.newID("vid")}
	f.tasks[task.id] = task
	writeJSON(w, http.StatusCreated, map[string]string{"_id": task.id, "video_id": task.videoID})
}

func (f *FakeIndexService) handleGetTask(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[chi.URLParam(r, "taskID")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"code": "task_not_found"})
		return
	}
	task.polls++
	status := twelvelabs.TaskStatusIndexing
	switch {
	case f.FailTasks:
		status = twelvelabs.TaskStatusFailed
	case task.polls > f.PollsUntilReady:
		status = twelvelabs.TaskStatusReady
		f.videos[task.videoID] = true
	}
	body := map[string]any{"_id": task.id, "video_id": task.videoID, "status": status}
	if f.FailTasks {
		body["error"] = "video could not be decoded"
	}
	writeJSON(w, http.StatusOK, body)
}

func (f *FakeIndexService) handleGetVideo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "videoID")
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.videos[id] {
		writeJSON(w, http.StatusNotFound, map[string]string{"code": "video_not_found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"_id": id, "indexed_at": time.Now().UTC()})
}

func (f *FakeIndexService) handleSearch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"code": "parameter_invalid"})
		return
	}
	query := r.FormValue("query_text")
	var filter struct {
		IDs []string `json:"id"`
	}
	if raw := r.FormValue("filter"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &filter); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"code": "filter_invalid"})
			return
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, query)
	clips := []twelvelabs.Clip{}
	for _, clip := range f.results[query] {
		if len(filter.IDs) > 0 && clip.VideoID != "" && !contains(filter.IDs, clip.VideoID) {
			continue
		}
		clips = append(clips, clip)
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": clips, "page_info": map[string]any{}})
}

func (f *FakeIndexService) newID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
