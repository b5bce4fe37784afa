package indexing

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"pcsteps/internal/assembly"
	"pcsteps/internal/services"
	"pcsteps/internal/services/twelvelabs"
	"pcsteps/internal/services/ytdlp"
	"pcsteps/internal/videocache"
)

type stubService struct {
	mu sync.Mutex

	indexes     map[string]string
	createCalls int

	taskStatuses []string
	taskRaw      string
	taskVideoID  string
	taskCalls    int

	indexedAfter int
	videoCalls   int

	clips      []twelvelabs.Clip
	searchErr  error
	lastSearch twelvelabs.SearchRequest
}

func (s *stubService) FindIndex(_ context.Context, name string) (twelvelabs.Index, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.indexes[name]
	return twelvelabs.Index{ID: id, Name: name}, ok, nil
}

func (s *stubService) CreateIndex(_ context.Context, name, model string, options []string) (twelvelabs.Index, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	if s.indexes == nil {
		s.indexes = map[string]string{}
	}
	id := "idx-" + name
	s.indexes[name] = id
	return twelvelabs.Index{ID: id, Name: name}, nil
}

func (s *stubService) CreateTask(_ context.Context, indexID, filePath string) (twelvelabs.Task, error) {
	return twelvelabs.Task{ID: "task-1", IndexID: indexID}, nil
}

func (s *stubService) GetTask(_ context.Context, taskID string) (twelvelabs.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := twelvelabs.TaskStatusIndexing
	if s.taskCalls < len(s.taskStatuses) {
		status = s.taskStatuses[s.taskCalls]
	}
	s.taskCalls++
	return twelvelabs.Task{ID: taskID, Status: status, VideoID: s.taskVideoID, Raw: s.taskRaw}, nil
}

func (s *stubService) GetVideo(_ context.Context, indexID, videoID string) (twelvelabs.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videoCalls++
	video := twelvelabs.Video{ID: videoID}
	if s.videoCalls > s.indexedAfter {
		now := time.Now()
		video.IndexedAt = &now
	}
	return video, nil
}

func (s *stubService) Search(_ context.Context, req twelvelabs.SearchRequest) ([]twelvelabs.Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSearch = req
	return s.clips, s.searchErr
}

type stubCache struct {
	entry videocache.Entry
	err   error
	calls int
}

func (c *stubCache) Fetch(_ context.Context, url, videoID string, progress func(ytdlp.ProgressUpdate)) (videocache.Entry, error) {
	c.calls++
	if progress != nil {
		progress(ytdlp.ProgressUpdate{Percent: 100})
	}
	return c.entry, c.err
}

type countingSleeper struct {
	calls     int
	durations []time.Duration
}

func (s *countingSleeper) sleep(ctx context.Context, d time.Duration) error {
	s.calls++
	s.durations = append(s.durations, d)
	return ctx.Err()
}

func newTestClient(service Service, cache VideoCache, opts ...Option) *Client {
	client := NewClient(nil, service, cache, nil, opts...)
	client.UseIndex("idx-1")
	return client
}

func testMeta() assembly.VideoMetadata {
	return assembly.VideoMetadata{VideoID: "abc123"}
}

func TestCreateIndexIsIdempotent(t *testing.T) {
	service := &stubService{indexes: map[string]string{"existing": "idx-existing"}}
	client := NewClient(nil, service, nil, nil)

	id, err := client.CreateIndex(context.Background(), "existing")
	if err != nil {
		t.Fatalf("CreateIndex: %v", err)
	}
	if id != "idx-existing" || client.IndexID() != id || service.createCalls != 0 {
		t.Fatalf("expected existing index reuse, got %q (creates=%d)", id, service.createCalls)
	}

	id, err = client.CreateIndex(context.Background(), "fresh")
	if err != nil {
		t.Fatalf("CreateIndex: %v", err)
	}
	if _, err := client.CreateIndex(context.Background(), "fresh"); err != nil {
		t.Fatalf("CreateIndex again: %v", err)
	}
	if id != "idx-fresh" || service.createCalls != 1 {
		t.Fatalf("expected single create, got %q (creates=%d)", id, service.createCalls)
	}
}

func TestUploadVideoWaitsUntilSearchable(t *testing.T) {
	service := &stubService{
		taskStatuses: []string{"validating", "indexing", "indexing", "ready"},
		taskVideoID:  "remote-1",
		indexedAfter: 2,
	}
	cache := &stubCache{entry: videocache.Entry{VideoID: "abc123", Path: "/cache/abc123/abc123.mp4", SizeBytes: 42}}
	sleeper := &countingSleeper{}
	client := newTestClient(service, cache, WithSleeper(sleeper.sleep), WithPollIntervals(5*time.Second, 30*time.Second))

	upload, err := client.UploadVideo(context.Background(), "https://youtu.be/abc123", testMeta(), true)
	if err != nil {
		t.Fatalf("UploadVideo: %v", err)
	}
	if upload.State != StateSearchable || upload.VideoID != "remote-1" || upload.TaskID != "task-1" {
		t.Fatalf("unexpected upload %+v", upload)
	}
	if service.taskCalls != 4 || service.videoCalls != 3 {
		t.Fatalf("unexpected poll counts task=%d video=%d", service.taskCalls, service.videoCalls)
	}
	// three task sleeps then two video sleeps
	want := []time.Duration{5 * time.Second, 5 * time.Second, 5 * time.Second, 30 * time.Second, 30 * time.Second}
	if len(sleeper.durations) != len(want) {
		t.Fatalf("sleeps = %v, want %v", sleeper.durations, want)
	}
	for i := range want {
		if sleeper.durations[i] != want[i] {
			t.Fatalf("sleeps = %v, want %v", sleeper.durations, want)
		}
	}
}

func TestUploadVideoWithoutWait(t *testing.T) {
	service := &stubService{}
	cache := &stubCache{entry: videocache.Entry{Path: "/tmp/x.mp4", Cached: true}}
	client := newTestClient(service, cache)

	upload, err := client.UploadVideo(context.Background(), "u", testMeta(), false)
	if err != nil {
		t.Fatalf("UploadVideo: %v", err)
	}
	if upload.State != StateIndexing || upload.TaskID != "task-1" || !upload.Cached {
		t.Fatalf("unexpected upload %+v", upload)
	}
	if service.taskCalls != 0 {
		t.Fatal("no polling expected without wait")
	}
}

func TestUploadVideoTaskFailureCarriesDiagnostic(t *testing.T) {
	service := &stubService{
		taskStatuses: []string{"indexing", "failed"},
		taskRaw:      `{"status":"failed","error":"unsupported codec"}`,
	}
	client := newTestClient(service, &stubCache{entry: videocache.Entry{Path: "/tmp/x.mp4"}}, WithSleeper((&countingSleeper{}).sleep))

	upload, err := client.UploadVideo(context.Background(), "u", testMeta(), true)
	if err == nil {
		t.Fatal("expected failure")
	}
	if !errors.Is(err, services.ErrExternalService) || !strings.Contains(err.Error(), "unsupported codec") {
		t.Fatalf("unexpected error %v", err)
	}
	if upload.State != StateFailed {
		t.Fatalf("state = %s, want failed", upload.State)
	}
}

func TestUploadVideoDownloadFailure(t *testing.T) {
	downloadErr := services.Wrap(services.ErrDownload, "videocache", "download", "", errors.New("yt-dlp exited 1"))
	service := &stubService{}
	client := newTestClient(service, &stubCache{err: downloadErr})

	upload, err := client.UploadVideo(context.Background(), "u", testMeta(), true)
	if !errors.Is(err, services.ErrDownload) {
		t.Fatalf("expected download error, got %v", err)
	}
	if upload.State != StateFailed || upload.TaskID != "" {
		t.Fatalf("unexpected upload %+v", upload)
	}
}

func TestUploadVideoPollingTimeout(t *testing.T) {
	service := &stubService{}
	client := newTestClient(service, &stubCache{entry: videocache.Entry{Path: "/tmp/x.mp4"}},
		WithPollIntervals(time.Millisecond, time.Millisecond),
		WithPollingTimeout(30*time.Millisecond),
	)

	upload, err := client.UploadVideo(context.Background(), "u", testMeta(), true)
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if services.Category(err) != "timeout" {
		t.Fatalf("category = %q", services.Category(err))
	}
	if upload.State != StateFailed {
		t.Fatalf("state = %s", upload.State)
	}
}

func TestUploadVideoCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := newTestClient(&stubService{}, &stubCache{entry: videocache.Entry{Path: "/tmp/x.mp4"}})

	_, err := client.UploadVideo(ctx, "u", testMeta(), true)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if errors.Is(err, services.ErrTimeout) {
		t.Fatal("cancellation must not be reported as a timeout")
	}
}

func TestUploadVideoRequiresIndex(t *testing.T) {
	client := NewClient(nil, &stubService{}, &stubCache{}, nil)
	_, err := client.UploadVideo(context.Background(), "u", testMeta(), false)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestSearchSemanticScopesAndLimits(t *testing.T) {
	service := &stubService{clips: []twelvelabs.Clip{
		{VideoID: "v", Score: 90, Confidence: "high", Start: 1, End: 2, Modules: []twelvelabs.Module{
			{Type: "visual", Visual: []twelvelabs.Evidence{{Value: "cpu socket"}}, Conversation: []twelvelabs.Evidence{{Value: "align the arrow"}}},
		}},
		{VideoID: "v", Score: 50, Confidence: "low", Start: 3, End: 4},
		{VideoID: "v", Score: 40, Confidence: "low", Start: 5, End: 6},
	}}
	client := newTestClient(service, nil)

	query := assembly.NewQuery("installing CPU into motherboard socket", assembly.ComponentCPU, assembly.ActionInsert)
	hits, err := client.SearchSemantic(context.Background(), query, "v", 2)
	if err != nil {
		t.Fatalf("SearchSemantic: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected limit enforced, got %d hits", len(hits))
	}
	if hits[0].Modules[0].Conversation[0].Value != "align the arrow" || hits[0].Modules[0].Visual[0].Value != "cpu socket" {
		t.Fatalf("unexpected modules %+v", hits[0].Modules)
	}
	req := service.lastSearch
	if req.IndexID != "idx-1" || len(req.VideoIDs) != 1 || req.VideoIDs[0] != "v" || req.Limit != 2 {
		t.Fatalf("unexpected request %+v", req)
	}
	if strings.Join(req.Options, ",") != "visual,audio" {
		t.Fatalf("unexpected options %v", req.Options)
	}
}

func TestSearchSemanticWrapsServiceErrors(t *testing.T) {
	service := &stubService{searchErr: errors.New("http 500")}
	client := newTestClient(service, nil)
	_, err := client.SearchSemantic(context.Background(), assembly.NewQuery("q", "", ""), "v", 10)
	if !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("expected external service error, got %v", err)
	}
}

// racingService loses the create race: the lookup misses, then the create
// reports a conflict because another run got there first.
type racingService struct {
	stubService
	finds int
}

func (s *racingService) FindIndex(_ context.Context, name string) (twelvelabs.Index, bool, error) {
	s.finds++
	if s.finds == 1 {
		return twelvelabs.Index{}, false, nil
	}
	return twelvelabs.Index{ID: "idx-winner", Name: name}, true, nil
}

func (s *racingService) CreateIndex(context.Context, string, string, []string) (twelvelabs.Index, error) {
	return twelvelabs.Index{}, &twelvelabs.APIError{Op: "create index", StatusCode: http.StatusConflict, Body: "index_name_already_exists"}
}

func TestCreateIndexConflictReusesWinner(t *testing.T) {
	service := &racingService{}
	client := NewClient(nil, service, nil, nil)
	id, err := client.CreateIndex(context.Background(), "shared")
	if err != nil {
		t.Fatalf("CreateIndex: %v", err)
	}
	if id != "idx-winner" || client.IndexID() != "idx-winner" || service.finds != 2 {
		t.Fatalf("expected conflict fallback, got %q after %d lookups", id, service.finds)
	}
}

type missingVideoService struct{ stubService }

func (s *missingVideoService) GetVideo(_ context.Context, indexID, videoID string) (twelvelabs.Video, error) {
	return twelvelabs.Video{}, &twelvelabs.APIError{Op: "get video", StatusCode: 404}
}

func TestVideoSearchable(t *testing.T) {
	client := newTestClient(&stubService{}, nil)
	ok, err := client.VideoSearchable(context.Background(), "remote-1")
	if err != nil || !ok {
		t.Fatalf("expected searchable, got %v %v", ok, err)
	}

	client = newTestClient(&missingVideoService{}, nil)
	ok, err = client.VideoSearchable(context.Background(), "gone")
	if err != nil || ok {
		t.Fatalf("expected missing video to be unsearchable, got %v %v", ok, err)
	}
}
