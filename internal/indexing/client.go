package indexing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"pcsteps/internal/assembly"
	"pcsteps/internal/config"
	"pcsteps/internal/logging"
	"pcsteps/internal/services"
	"pcsteps/internal/services/twelvelabs"
	"pcsteps/internal/services/ytdlp"
)

const stageName = "indexing"

// Modalities indexed and searched.
var modalities = []string{"visual", "audio"}

// Client drives uploads and searches against one index.
type Client struct {
	service Service
	cache   VideoCache
	logger  *slog.Logger

	model         string
	taskInterval  time.Duration
	indexInterval time.Duration
	timeout       time.Duration
	sleep         func(ctx context.Context, d time.Duration) error

	mu      sync.Mutex
	indexID string
}

// Option customizes a Client.
type Option func(*Client)

// WithPollIntervals overrides the task and index polling intervals.
func WithPollIntervals(task, index time.Duration) Option {
	return func(c *Client) {
		if task > 0 {
			c.taskInterval = task
		}
		if index > 0 {
			c.indexInterval = index
		}
	}
}

// WithPollingTimeout bounds both polling loops. Zero disables the bound.
func WithPollingTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithSleeper replaces the context-aware sleep used between polls.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// NewClient constructs a client from configuration. The configured index id,
// when present, is adopted immediately.
func NewClient(cfg *config.Config, service Service, cache VideoCache, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		service:       service,
		cache:         cache,
		logger:        logging.NewComponentLogger(logger, "indexing"),
		model:         "marengo2.7",
		taskInterval:  5 * time.Second,
		indexInterval: 30 * time.Second,
		timeout:       2 * time.Hour,
		sleep:         sleepWithContext,
	}
	if cfg != nil {
		c.model = cfg.Indexer.Model
		c.taskInterval = cfg.TaskPollInterval()
		c.indexInterval = cfg.IndexPollInterval()
		c.timeout = cfg.PollingTimeout()
		c.indexID = strings.TrimSpace(cfg.Indexer.IndexID)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IndexID returns the active index id, or "" when none has been set.
func (c *Client) IndexID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.indexID
}

// UseIndex adopts an existing index id without contacting the service.
func (c *Client) UseIndex(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.indexID = strings.TrimSpace(id)
}

// CreateIndex makes name the active index, creating it only when the service
// does not already have an index with that name.
func (c *Client) CreateIndex(ctx context.Context, name string) (string, error) {
	if c.service == nil {
		return "", services.Wrap(services.ErrConfiguration, stageName, "create index", "indexing service not configured", nil)
	}
	logger := logging.WithContext(ctx, c.logger)

	existing, found, err := c.service.FindIndex(ctx, name)
	if err != nil {
		return "", services.Wrap(services.ErrExternalService, stageName, "find index", name, err)
	}
	if found {
		c.UseIndex(existing.ID)
		logger.Info("using existing index",
			logging.String(logging.FieldEventType, "index_reused"),
			logging.String("index_id", existing.ID),
			logging.String("index_name", name),
		)
		return existing.ID, nil
	}

	created, err := c.service.CreateIndex(ctx, name, c.model, modalities)
	if isConflict(err) {
		// Another run created it between the lookup and the create.
		if existing, found, findErr := c.service.FindIndex(ctx, name); findErr == nil && found {
			c.UseIndex(existing.ID)
			return existing.ID, nil
		}
	}
	if err != nil {
		return "", services.Wrap(services.ErrExternalService, stageName, "create index", name, err)
	}
	c.UseIndex(created.ID)
	logger.Info("index created",
		logging.String(logging.FieldEventType, "index_created"),
		logging.String("index_id", created.ID),
		logging.String("index_name", name),
		logging.String("model", c.model),
	)
	return created.ID, nil
}

func isConflict(err error) bool {
	var apiErr *twelvelabs.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict
}

// UploadVideo materializes url locally and submits it for indexing. When wait
// is true it blocks until the video is searchable; otherwise it returns as
// soon as the task is accepted.
func (c *Client) UploadVideo(ctx context.Context, url string, meta assembly.VideoMetadata, wait bool) (Upload, error) {
	job := NewJob(meta.VideoID)
	upload, err := c.runUpload(ctx, job, url, wait)
	if err != nil {
		job.Fail(err.Error())
	}
	upload.SourceID = job.SourceID
	upload.TaskID = job.TaskID
	upload.VideoID = job.VideoID
	upload.State = job.State
	return upload, err
}

func (c *Client) runUpload(ctx context.Context, job *Job, url string, wait bool) (Upload, error) {
	var upload Upload
	if c.service == nil || c.cache == nil {
		return upload, services.Wrap(services.ErrConfiguration, stageName, "upload", "indexing client not fully configured", nil)
	}
	indexID := c.IndexID()
	if indexID == "" {
		return upload, services.Wrap(services.ErrConfiguration, stageName, "upload", "no index selected; call CreateIndex or UseIndex first", nil)
	}
	logger := logging.WithContext(ctx, c.logger).With(logging.String(logging.FieldVideoID, job.SourceID))

	if err := job.Transition(StateUploading); err != nil {
		return upload, err
	}
	entry, err := c.cache.Fetch(ctx, url, job.SourceID, downloadProgressLogger(logger))
	if err != nil {
		return upload, err
	}
	upload.LocalPath = entry.Path
	upload.Cached = entry.Cached

	task, err := c.service.CreateTask(ctx, indexID, entry.Path)
	if err != nil {
		return upload, services.Wrap(services.ErrExternalService, stageName, "create task", "upload rejected", err)
	}
	job.TaskID = task.ID
	job.VideoID = task.VideoID
	if err := job.Transition(StateIndexing); err != nil {
		return upload, err
	}
	logger.Info("upload accepted",
		logging.String(logging.FieldEventType, "upload_accepted"),
		logging.String("task_id", task.ID),
		logging.String("index_id", indexID),
		logging.Bool("cached", entry.Cached),
		logging.Int64("size_bytes", entry.SizeBytes),
	)
	if !wait {
		return upload, nil
	}

	pollCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	videoID, err := c.waitForTask(pollCtx, logger, task.ID)
	if err != nil {
		return upload, c.pollError(ctx, err, "wait for task")
	}
	if videoID != "" {
		job.VideoID = videoID
	}
	if job.VideoID == "" {
		return upload, services.Wrap(services.ErrExternalService, stageName, "wait for task", "task ready without a video id", nil)
	}
	if err := job.Transition(StateReady); err != nil {
		return upload, err
	}

	if err := c.waitForVideo(pollCtx, logger, indexID, job.VideoID); err != nil {
		return upload, c.pollError(ctx, err, "wait for video")
	}
	if err := job.Transition(StateSearchable); err != nil {
		return upload, err
	}
	logger.Info("video searchable",
		logging.String(logging.FieldEventType, "upload_searchable"),
		logging.String("remote_video_id", job.VideoID),
	)
	return upload, nil
}

// waitForTask polls the task until it is ready and returns the remote video id.
func (c *Client) waitForTask(ctx context.Context, logger *slog.Logger, taskID string) (string, error) {
	sampler := logging.NewProgressSampler(0)
	for {
		task, err := c.service.GetTask(ctx, taskID)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", services.Wrap(services.ErrExternalService, stageName, "get task", taskID, err)
		}
		status := strings.ToLower(strings.TrimSpace(task.Status))
		if sampler.ShouldLog(-1, status) {
			logger.Info("task status",
				logging.String(logging.FieldEventType, "task_status"),
				logging.String("task_id", taskID),
				logging.String("status", status),
			)
		}
		switch status {
		case twelvelabs.TaskStatusReady:
			return task.VideoID, nil
		case twelvelabs.TaskStatusFailed, twelvelabs.TaskStatusError:
			diagnostic := strings.TrimSpace(task.Raw)
			if diagnostic == "" {
				diagnostic = "no diagnostic returned"
			}
			return "", services.Wrap(services.ErrExternalService, stageName, "indexing task", fmt.Sprintf("task %s %s", taskID, status), errors.New(diagnostic))
		}
		if err := c.sleep(ctx, c.taskInterval); err != nil {
			return "", err
		}
	}
}

// waitForVideo polls the video record until indexed_at is populated.
func (c *Client) waitForVideo(ctx context.Context, logger *slog.Logger, indexID, videoID string) error {
	for attempt := 1; ; attempt++ {
		video, err := c.service.GetVideo(ctx, indexID, videoID)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return services.Wrap(services.ErrExternalService, stageName, "get video", videoID, err)
		}
		if video.Indexed() {
			return nil
		}
		logger.Debug("video not yet indexed",
			logging.String("remote_video_id", videoID),
			logging.Int("attempt", attempt),
		)
		if err := c.sleep(ctx, c.indexInterval); err != nil {
			return err
		}
	}
}

// pollError classifies a polling failure. A deadline that fired while the
// caller's context is still live is the polling timeout.
func (c *Client) pollError(parent context.Context, err error, op string) error {
	if errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil {
		return services.Wrap(services.ErrTimeout, stageName, op, fmt.Sprintf("not searchable after %s", c.timeout), err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %s: %w", stageName, op, err)
	}
	return err
}

// SearchSemantic runs one query scoped to videoID and returns at most limit
// hits.
func (c *Client) SearchSemantic(ctx context.Context, query assembly.SemanticQuery, videoID string, limit int) ([]Hit, error) {
	if c.service == nil {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "search", "indexing service not configured", nil)
	}
	if err := query.Validate(); err != nil {
		return nil, services.Wrap(services.ErrValidation, stageName, "search", "invalid query", err)
	}
	indexID := c.IndexID()
	if indexID == "" {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "search", "no index selected", nil)
	}
	if limit <= 0 {
		return nil, nil
	}
	req := twelvelabs.SearchRequest{
		IndexID:   indexID,
		QueryText: query.Text,
		Options:   modalities,
		Limit:     limit,
	}
	if videoID = strings.TrimSpace(videoID); videoID != "" {
		req.VideoIDs = []string{videoID}
	}
	clips, err := c.service.Search(ctx, req)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, stageName, "search", query.Text, err)
	}
	if len(clips) > limit {
		clips = clips[:limit]
	}
	hits := make([]Hit, 0, len(clips))
	for _, clip := range clips {
		hits = append(hits, hitFromClip(clip))
	}
	logging.WithContext(ctx, c.logger).Debug("search completed",
		logging.String("query", query.Text),
		logging.Int("hits", len(hits)),
	)
	return hits, nil
}

func downloadProgressLogger(logger *slog.Logger) func(ytdlp.ProgressUpdate) {
	sampler := logging.NewProgressSampler(25)
	return func(update ytdlp.ProgressUpdate) {
		if !sampler.ShouldLog(update.Percent, "download") {
			return
		}
		logger.Info("download progress",
			logging.String(logging.FieldEventType, "download_progress"),
			logging.Float64("percent", update.Percent),
			logging.String("total", update.Total),
			logging.String("speed", update.Speed),
			logging.String("eta", update.ETA),
		)
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// VideoSearchable reports whether a previously uploaded video is still present
// and fully indexed in the active index.
func (c *Client) VideoSearchable(ctx context.Context, videoID string) (bool, error) {
	indexID := c.IndexID()
	if c.service == nil || indexID == "" {
		return false, services.Wrap(services.ErrConfiguration, stageName, "check video", "no index selected", nil)
	}
	video, err := c.service.GetVideo(ctx, indexID, videoID)
	if err != nil {
		if twelvelabs.IsNotFound(err) {
			return false, nil
		}
		return false, services.Wrap(services.ErrExternalService, stageName, "check video", videoID, err)
	}
	return video.Indexed(), nil
}
