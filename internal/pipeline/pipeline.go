package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"pcsteps/internal/assembly"
	"pcsteps/internal/config"
	"pcsteps/internal/indexing"
	"pcsteps/internal/logging"
	"pcsteps/internal/metadata"
	"pcsteps/internal/notifications"
	"pcsteps/internal/registry"
	"pcsteps/internal/services"
)

// Stage names used in logs, errors and the run registry.
const (
	StageMetadata   = "metadata"
	StageValidation = "validation"
	StageIndexing   = "indexing"
	StageExtraction = "extraction"
	StageAssembly   = "assembly"
)

var stageLabels = map[string]string{
	StageMetadata:   "Extracting video metadata",
	StageValidation: "Validating content",
	StageIndexing:   "Uploading and indexing",
	StageExtraction: "Extracting assembly steps",
	StageAssembly:   "Structuring results",
}

// MetadataSource produces video metadata for a URL.
type MetadataSource interface {
	Extract(ctx context.Context, url string) (assembly.VideoMetadata, error)
}

// Indexer uploads videos and exposes the active index.
type Indexer interface {
	IndexID() string
	CreateIndex(ctx context.Context, name string) (string, error)
	UploadVideo(ctx context.Context, url string, meta assembly.VideoMetadata, wait bool) (indexing.Upload, error)
	VideoSearchable(ctx context.Context, videoID string) (bool, error)
}

// StepSource extracts ordered steps from an indexed video.
type StepSource interface {
	Extract(ctx context.Context, remoteID string, meta assembly.VideoMetadata, queries []assembly.SemanticQuery) ([]assembly.AssemblyStep, error)
}

// Pipeline processes videos end to end.
type Pipeline struct {
	metadata MetadataSource
	indexer  Indexer
	steps    StepSource
	registry *registry.Store
	notifier notifications.Service
	logger   *slog.Logger

	queries  []assembly.SemanticQuery
	now      func() time.Time
	newRunID func() string
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithRegistry enables upload reuse and run history.
func WithRegistry(store *registry.Store) Option {
	return func(p *Pipeline) {
		p.registry = store
	}
}

// WithNotifier sends run outcomes to svc.
func WithNotifier(svc notifications.Service) Option {
	return func(p *Pipeline) {
		if svc != nil {
			p.notifier = svc
		}
	}
}

// WithQueries replaces the default extraction queries.
func WithQueries(queries []assembly.SemanticQuery) Option {
	return func(p *Pipeline) {
		p.queries = queries
	}
}

// WithClock overrides the wall clock used for processing timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// New wires a pipeline. When the indexer has no active index one is created
// (or reused by name) before New returns.
func New(ctx context.Context, cfg *config.Config, meta MetadataSource, indexer Indexer, extractor StepSource, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	if meta == nil || indexer == nil || extractor == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", "metadata, indexer and step extractor are required", nil)
	}
	p := &Pipeline{
		metadata: meta,
		indexer:  indexer,
		steps:    extractor,
		notifier: notifications.NewService(nil),
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		now:      time.Now,
		newRunID: NewRunID,
	}
	for _, opt := range opts {
		opt(p)
	}

	if indexer.IndexID() == "" {
		name := ""
		if cfg != nil {
			name = cfg.Indexer.IndexName
		}
		if strings.TrimSpace(name) == "" {
			return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", "indexer.index_name or indexer.index_id must be set", nil)
		}
		if _, err := indexer.CreateIndex(ctx, name); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// IndexID returns the index the pipeline uploads into.
func (p *Pipeline) IndexID() string {
	return p.indexer.IndexID()
}

// NewRunID returns a fresh run identifier. Callers that want to refer to a run
// afterwards (e.g. RecordArtifact) attach one to the context with
// services.WithRunID before calling ProcessVideo.
func NewRunID() string {
	return uuid.NewString()
}

// ProcessVideo runs the full pipeline for url. Content validation is skipped
// when skipValidation is true. The run id is taken from ctx when present.
func (p *Pipeline) ProcessVideo(ctx context.Context, url string, skipValidation bool) (*assembly.ProcessedVideo, error) {
	runID, ok := services.RunIDFromContext(ctx)
	if !ok {
		runID = p.newRunID()
		ctx = services.WithRunID(ctx, runID)
	}
	logger := logging.WithContext(ctx, p.logger)
	started := p.now()
	p.startRun(ctx, runID, url, started)

	var (
		meta     assembly.VideoMetadata
		remoteID string
		found    []assembly.AssemblyStep
		result   *assembly.ProcessedVideo
	)

	err := p.runStage(ctx, StageMetadata, func(ctx context.Context) error {
		var err error
		meta, err = p.metadata.Extract(ctx, url)
		return err
	})
	if err == nil {
		ctx = services.WithVideoID(ctx, meta.VideoID)
		logger = logging.WithContext(ctx, p.logger)
	}
	if err == nil && !skipValidation {
		err = p.runStage(ctx, StageValidation, func(context.Context) error {
			if !metadata.ValidateContent(meta) {
				return services.Wrap(services.ErrContentMismatch, StageValidation, "content gate",
					fmt.Sprintf("%q does not look like a PC building video", meta.Title), nil)
			}
			return nil
		})
	}
	if err == nil {
		err = p.runStage(ctx, StageIndexing, func(ctx context.Context) error {
			var err error
			remoteID, err = p.ensureSearchable(ctx, url, meta)
			return err
		})
	}
	if err == nil {
		err = p.runStage(ctx, StageExtraction, func(ctx context.Context) error {
			var err error
			found, err = p.steps.Extract(ctx, remoteID, meta, p.queries)
			return err
		})
	}
	if err == nil {
		err = p.runStage(ctx, StageAssembly, func(context.Context) error {
			result = &assembly.ProcessedVideo{
				Metadata:            meta,
				AssemblySteps:       found,
				IndexedVideoID:      remoteID,
				ProcessingTimestamp: p.now().UTC(),
				TotalStepsExtracted: len(found),
			}
			if err := result.Validate(); err != nil {
				return services.Wrap(services.ErrValidation, StageAssembly, "validate", "assembled result violates invariants", err)
			}
			return nil
		})
	}

	p.finishRun(ctx, runID, meta.VideoID, remoteID, len(found), err)
	p.notify(ctx, url, meta.Title, len(found), p.now().Sub(started), err)
	if err != nil {
		return nil, err
	}
	logger.Info("video processed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.String("title", meta.Title),
		logging.Int("steps", result.TotalStepsExtracted),
		logging.String("remote_video_id", remoteID),
		logging.Duration("elapsed", p.now().Sub(started)),
	)
	return result, nil
}

// ensureSearchable returns a searchable remote video id, reusing one from the
// registry when the service still has it.
func (p *Pipeline) ensureSearchable(ctx context.Context, url string, meta assembly.VideoMetadata) (string, error) {
	logger := logging.WithContext(ctx, p.logger)
	indexID := p.indexer.IndexID()

	if p.registry != nil {
		prior, err := p.registry.FindUpload(ctx, meta.VideoID, indexID)
		if err != nil {
			logging.WarnWithContext(logger, "registry lookup failed", "registry_unavailable",
				logging.Error(err),
				logging.String(logging.FieldImpact, "video will be uploaded again"),
			)
		}
		if prior != nil && prior.State == string(indexing.StateSearchable) && prior.RemoteVideoID != "" {
			ok, err := p.indexer.VideoSearchable(ctx, prior.RemoteVideoID)
			switch {
			case err != nil:
				return "", err
			case ok:
				logger.Info("reusing indexed video",
					logging.String(logging.FieldEventType, "upload_reused"),
					logging.String("remote_video_id", prior.RemoteVideoID),
				)
				return prior.RemoteVideoID, nil
			default:
				logger.Info("recorded upload no longer searchable; uploading again",
					logging.String("remote_video_id", prior.RemoteVideoID),
				)
				if err := p.registry.ForgetUpload(ctx, meta.VideoID, indexID); err != nil {
					logger.Debug("forget upload failed", logging.Error(err))
				}
			}
		}
	}

	upload, err := p.indexer.UploadVideo(ctx, url, meta, true)
	p.recordUpload(ctx, indexID, url, upload)
	if err != nil {
		return "", err
	}
	return upload.VideoID, nil
}

func (p *Pipeline) runStage(ctx context.Context, stage string, fn func(context.Context) error) error {
	ctx = services.WithStage(ctx, stage)
	logger := logging.WithContext(ctx, p.logger)
	label := stageLabels[stage]
	logger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("label", label),
	)
	start := time.Now()
	if err := fn(ctx); err != nil {
		attrs := []logging.Attr{
			logging.String("label", label),
			logging.String("category", services.Category(err)),
			logging.Error(err),
		}
		if hint := services.Hint(err); hint != "" {
			attrs = append(attrs, logging.String(logging.FieldErrorHint, hint))
		}
		logging.ErrorWithContext(logger, "stage failed", "stage_failed", attrs...)
		return fmt.Errorf("%s failed: %w", stage, err)
	}
	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("label", label),
		logging.Duration("duration", time.Since(start)),
	)
	return nil
}

func (p *Pipeline) notify(ctx context.Context, url, title string, stepCount int, elapsed time.Duration, runErr error) {
	if title == "" {
		title = url
	}
	var err error
	switch {
	case runErr == nil:
		err = p.notifier.NotifyRunCompleted(ctx, title, stepCount, elapsed)
	case errors.Is(runErr, services.ErrContentMismatch):
		err = p.notifier.NotifyContentRejected(ctx, title)
	case errors.Is(runErr, context.Canceled):
		return
	default:
		err = p.notifier.NotifyError(ctx, runErr, title)
	}
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run outcome not pushed"),
		)
	}
}

func (p *Pipeline) startRun(ctx context.Context, runID, url string, started time.Time) {
	if p.registry == nil {
		return
	}
	if err := p.registry.StartRun(ctx, runID, url, started); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "run not recorded", "registry_unavailable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run missing from history"),
		)
	}
}

func (p *Pipeline) finishRun(ctx context.Context, runID, sourceID, remoteID string, stepCount int, runErr error) {
	if p.registry == nil {
		return
	}
	run := registry.Run{
		ID:            runID,
		SourceID:      sourceID,
		RemoteVideoID: remoteID,
		Status:        registry.RunStatusSucceeded,
		Steps:         stepCount,
		FinishedAt:    p.now(),
	}
	if runErr != nil {
		details := services.Details(runErr)
		run.Status = registry.RunStatusFailed
		run.Steps = 0
		run.ErrorStage = details.Stage
		run.ErrorCategory = details.Category
		run.ErrorMessage = details.Message
	}
	// Cancellation of the run context must not stop the outcome being stored.
	if err := p.registry.FinishRun(context.WithoutCancel(ctx), run); err != nil {
		p.logger.Debug("finish run failed", logging.Error(err))
	}
}

func (p *Pipeline) recordUpload(ctx context.Context, indexID, url string, upload indexing.Upload) {
	if p.registry == nil || upload.SourceID == "" || upload.TaskID == "" {
		return
	}
	err := p.registry.RecordUpload(context.WithoutCancel(ctx), registry.Upload{
		SourceID:      upload.SourceID,
		IndexID:       indexID,
		TaskID:        upload.TaskID,
		RemoteVideoID: upload.VideoID,
		State:         string(upload.State),
		SourceURL:     url,
	})
	if err != nil {
		p.logger.Debug("record upload failed", logging.Error(err))
	}
}

// RecordArtifact stores the artifact path on the run identified by ctx. It is
// a no-op without a registry or run id.
func (p *Pipeline) RecordArtifact(ctx context.Context, path string) {
	if p.registry == nil {
		return
	}
	runID, ok := services.RunIDFromContext(ctx)
	if !ok {
		return
	}
	if err := p.registry.SetArtifact(ctx, runID, path); err != nil {
		p.logger.Debug("record artifact failed", logging.Error(err))
	}
}
