package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"pcsteps/internal/config"
	"pcsteps/internal/indexing"
	"pcsteps/internal/logging"
	"pcsteps/internal/metadata"
	"pcsteps/internal/notifications"
	"pcsteps/internal/registry"
	"pcsteps/internal/services"
	"pcsteps/internal/services/twelvelabs"
	"pcsteps/internal/services/ytdlp"
	"pcsteps/internal/steps"
	"pcsteps/internal/videocache"
)

// Build wires the production stack from configuration: yt-dlp for metadata
// and downloads, the on-disk video cache, the indexing service client, ntfy
// notifications and, when enabled, the registry. The returned close function
// releases the registry.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Pipeline, func() error, error) {
	noop := func() error { return nil }
	if cfg == nil {
		return nil, noop, services.Wrap(services.ErrConfiguration, "pipeline", "build", "config required", nil)
	}
	if err := cfg.ValidateIndexer(); err != nil {
		return nil, noop, services.Wrap(services.ErrConfiguration, "pipeline", "build", "indexer settings", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, noop, services.Wrap(services.ErrConfiguration, "pipeline", "build", "create directories", err)
	}

	source, err := ytdlp.New(cfg.YtdlpBinary(), cfg.VideoSource.Format,
		ytdlp.WithInfoTimeout(cfg.InfoTimeout()),
		ytdlp.WithDownloadTimeout(cfg.DownloadTimeout()),
	)
	if err != nil {
		return nil, noop, services.Wrap(services.ErrConfiguration, "pipeline", "build", "video source", err)
	}
	service, err := twelvelabs.New(twelvelabs.Config{
		APIKey:            cfg.Indexer.APIKey,
		BaseURL:           cfg.Indexer.BaseURL,
		Timeout:           cfg.IndexerTimeout(),
		RequestsPerSecond: cfg.Indexer.RequestsPerSecond,
		Burst:             cfg.Indexer.Burst,
	})
	if err != nil {
		return nil, noop, services.Wrap(services.ErrConfiguration, "pipeline", "build", "indexing service", err)
	}

	cache := videocache.NewManager(cfg, source, logger)
	indexer := indexing.NewClient(cfg, service, cache, logger)
	extractor := steps.NewExtractor(indexer, cfg.Extraction.PageLimit, logger)

	opts := []Option{WithNotifier(notifications.NewService(cfg))}
	closeFn := noop
	if cfg.Registry.Enabled {
		store, err := registry.Open(cfg)
		if err != nil && !errors.Is(err, registry.ErrDisabled) {
			logging.WarnWithContext(logging.NewComponentLogger(logger, "pipeline"), "registry unavailable", "registry_unavailable",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "delete the registry database if the schema changed"),
				logging.String(logging.FieldImpact, "uploads will not be reused and runs will not be recorded"),
			)
		} else if store != nil {
			opts = append(opts, WithRegistry(store))
			closeFn = store.Close
		}
	}

	p, err := New(ctx, cfg, metadata.NewExtractor(source, logger), indexer, extractor, logger, opts...)
	if err != nil {
		_ = closeFn()
		return nil, noop, err
	}
	return p, closeFn, nil
}
