package steps

import (
	"context"
	"log/slog"
	"strings"

	"pcsteps/internal/assembly"
	"pcsteps/internal/indexing"
	"pcsteps/internal/logging"
	"pcsteps/internal/services"
	"pcsteps/internal/textutil"
)

// DefaultPageLimit bounds the hits requested per query.
const DefaultPageLimit = 10

// Searcher runs one scoped semantic search.
type Searcher interface {
	SearchSemantic(ctx context.Context, query assembly.SemanticQuery, videoID string, limit int) ([]indexing.Hit, error)
}

// Extractor converts search hits into ordered assembly steps.
type Extractor struct {
	searcher  Searcher
	pageLimit int
	logger    *slog.Logger
}

// NewExtractor builds an extractor. pageLimit <= 0 selects DefaultPageLimit.
func NewExtractor(searcher Searcher, pageLimit int, logger *slog.Logger) *Extractor {
	if pageLimit <= 0 {
		pageLimit = DefaultPageLimit
	}
	return &Extractor{
		searcher:  searcher,
		pageLimit: pageLimit,
		logger:    logging.NewComponentLogger(logger, "steps"),
	}
}

// Extract runs queries (DefaultQueries when nil) against the indexed video
// remoteID and returns the steps sorted by start time with step_order set.
// A search failure aborts extraction; a hit that cannot become a valid step
// is skipped.
func (e *Extractor) Extract(ctx context.Context, remoteID string, meta assembly.VideoMetadata, queries []assembly.SemanticQuery) ([]assembly.AssemblyStep, error) {
	if e == nil || e.searcher == nil {
		return nil, services.Wrap(services.ErrConfiguration, "steps", "extract", "no searcher configured", nil)
	}
	if queries == nil {
		queries = DefaultQueries()
	}
	logger := logging.WithContext(ctx, e.logger)

	all := make([]assembly.AssemblyStep, 0, len(queries)*e.pageLimit)
	dropped := 0
	for _, query := range queries {
		hits, err := e.searcher.SearchSemantic(ctx, query, remoteID, e.pageLimit)
		if err != nil {
			return nil, err
		}
		kept := 0
		for _, hit := range hits {
			step := BuildStep(hit, meta, query)
			if err := step.Validate(); err != nil {
				dropped++
				logging.WarnWithContext(logger, "dropping search hit",
					"step_conversion_failed",
					logging.String("query", query.Text),
					logging.Float64("start", hit.Start),
					logging.Error(services.Wrap(services.ErrConversion, "steps", "build step", "", err)),
					logging.String(logging.FieldErrorHint, "the service returned a hit outside the step constraints"),
					logging.String(logging.FieldImpact, "hit omitted from the step list"),
				)
				continue
			}
			all = append(all, step)
			kept++
		}
		logger.Debug("query completed",
			logging.String("query", query.Text),
			logging.Int("hits", len(hits)),
			logging.Int("steps", kept),
		)
	}

	assembly.AssignStepOrder(all)
	logger.Info("steps extracted",
		logging.String(logging.FieldEventType, "steps_extracted"),
		logging.Int("queries", len(queries)),
		logging.Int("steps", len(all)),
		logging.Int("dropped", dropped),
	)
	return all, nil
}

// BuildStep synthesizes an unordered step from one hit. The step is not
// validated.
func BuildStep(hit indexing.Hit, meta assembly.VideoMetadata, query assembly.SemanticQuery) assembly.AssemblyStep {
	var transcript []string
	visualCues := []string{}
	for _, module := range hit.Modules {
		for _, item := range module.Conversation {
			if text := strings.TrimSpace(item.Value); text != "" {
				transcript = append(transcript, text)
			}
		}
		for _, item := range module.Visual {
			if cue := strings.TrimSpace(item.Value); cue != "" {
				visualCues = append(visualCues, cue)
			}
		}
	}
	if len(visualCues) > assembly.MaxVisualCues {
		visualCues = visualCues[:assembly.MaxVisualCues]
	}

	description := strings.Join(transcript, " ")
	if len(transcript) == 0 {
		label := "component"
		if query.Component != "" {
			label = string(query.Component)
		}
		description = "Assembly step for " + label
	}
	description = textutil.Truncate(description, assembly.MaxDescriptionRunes)

	component := query.Component
	if component == "" {
		component = DetectComponent(description)
	}
	action := query.Action
	if action == "" {
		action = DetectAction(description)
	}

	return assembly.AssemblyStep{
		Component:        component,
		Action:           action,
		Platform:         meta.Platform.OrUnknown(),
		FormFactor:       meta.FormFactor.OrUnknown(),
		Description:      description,
		VisualCues:       visualCues,
		CommonErrors:     ExtractErrors(description),
		Timestamp:        assembly.Timestamp{Start: hit.Start, End: hit.End},
		VideoID:          meta.VideoID,
		SourceConfidence: MapConfidence(hit.Confidence, hit.Score),
	}
}
