package metadata

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"pcsteps/internal/assembly"
	"pcsteps/internal/logging"
	"pcsteps/internal/services"
	"pcsteps/internal/services/ytdlp"
)

// Extractor turns a URL into VideoMetadata using one metadata lookup.
type Extractor struct {
	fetcher ytdlp.Fetcher
	logger  *slog.Logger
}

// NewExtractor constructs an extractor backed by fetcher.
func NewExtractor(fetcher ytdlp.Fetcher, logger *slog.Logger) *Extractor {
	return &Extractor{
		fetcher: fetcher,
		logger:  logging.NewComponentLogger(logger, "metadata"),
	}
}

// Extract fetches metadata for url and runs keyword inference over it.
func (e *Extractor) Extract(ctx context.Context, url string) (assembly.VideoMetadata, error) {
	if e == nil || e.fetcher == nil {
		return assembly.VideoMetadata{}, services.Wrap(services.ErrConfiguration, "metadata", "extract", "video source not configured", nil)
	}
	info, err := e.fetcher.Info(ctx, url)
	if err != nil {
		return assembly.VideoMetadata{}, services.Wrap(services.ErrExternalService, "metadata", "fetch info", "video source lookup failed", err)
	}

	videoID, err := ExtractVideoID(url)
	if err != nil {
		if !errors.Is(err, ErrNoVideoID) || strings.TrimSpace(info.ID) == "" {
			return assembly.VideoMetadata{}, services.Wrap(services.ErrValidation, "metadata", "video id", url, err)
		}
		videoID = info.ID
	}

	meta := assembly.VideoMetadata{
		VideoID:         videoID,
		Title:           info.Title,
		ChannelName:     info.ChannelName(),
		URL:             url,
		VideoType:       InferVideoType(info.Title, info.Description),
		SkillLevel:      InferSkillLevel(info.Title, info.Description),
		Platform:        InferPlatform(info.Title, info.Description),
		FormFactor:      InferFormFactor(info.Title, info.Description),
		DurationSeconds: info.Duration,
		UploadDate:      info.UploadDate,
		Description:     info.Description,
	}

	logging.WithContext(ctx, e.logger).Info("metadata extracted",
		logging.String(logging.FieldEventType, "metadata_extracted"),
		logging.String(logging.FieldVideoID, meta.VideoID),
		logging.String("video_type", string(meta.VideoType)),
		logging.String("skill_level", string(meta.SkillLevel)),
		logging.String("platform", string(meta.Platform.OrUnknown())),
		logging.Float64("duration_seconds", meta.DurationSeconds),
	)
	return meta, nil
}
