package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"pcsteps/internal/assembly"
	"pcsteps/internal/fileutil"
	"pcsteps/internal/services"
)

// SaveResults writes result to path as indented JSON. Parent directories are
// created and the file is replaced atomically. The processing timestamp is
// normalized to UTC in place so a later LoadResults returns an identical value.
func SaveResults(result *assembly.ProcessedVideo, path string) error {
	if result == nil {
		return services.Wrap(services.ErrValidation, "results", "save", "nil result", nil)
	}
	result.ProcessingTimestamp = result.ProcessingTimestamp.UTC()
	if err := result.Validate(); err != nil {
		return services.Wrap(services.ErrValidation, "results", "save", "refusing to save invalid result", err)
	}
	if err := fileutil.WriteJSONAtomic(path, result); err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	return nil
}

// LoadResults reads and validates an artifact written by SaveResults.
func LoadResults(path string) (*assembly.ProcessedVideo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrNotFound, "results", "load", path, err)
		}
		return nil, fmt.Errorf("load results: %w", err)
	}
	var result assembly.ProcessedVideo
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, services.Wrap(services.ErrValidation, "results", "load", "malformed artifact "+path, err)
	}
	if err := result.Validate(); err != nil {
		return nil, services.Wrap(services.ErrValidation, "results", "load", "invalid artifact "+path, err)
	}
	return &result, nil
}

// ComponentCount is the number of steps for one component.
type ComponentCount struct {
	Component assembly.Component `json:"component"`
	Count     int                `json:"count"`
}

// Summary is a compact overview of a processed video.
type Summary struct {
	Title           string                  `json:"title"`
	Channel         string                  `json:"channel"`
	DurationSeconds float64                 `json:"duration_seconds"`
	VideoType       assembly.VideoType      `json:"video_type"`
	SkillLevel      assembly.SkillLevel     `json:"skill_level"`
	TotalSteps      int                     `json:"total_steps"`
	ByComponent     []ComponentCount        `json:"by_component"`
	Samples         []assembly.AssemblyStep `json:"samples"`
}

// SummarySamples is the number of leading steps included in a Summary.
const SummarySamples = 3

// Summarize counts steps per component (most frequent first, ties in
// component declaration order) and picks the first few steps as samples.
func Summarize(result *assembly.ProcessedVideo) Summary {
	if result == nil {
		return Summary{}
	}
	summary := Summary{
		Title:           result.Metadata.Title,
		Channel:         result.Metadata.ChannelName,
		DurationSeconds: result.Metadata.DurationSeconds,
		VideoType:       result.Metadata.VideoType,
		SkillLevel:      result.Metadata.SkillLevel,
		TotalSteps:      result.TotalStepsExtracted,
	}

	counts := make(map[assembly.Component]int)
	for _, step := range result.AssemblySteps {
		counts[step.Component]++
	}
	for _, component := range assembly.Components {
		if n := counts[component]; n > 0 {
			summary.ByComponent = append(summary.ByComponent, ComponentCount{Component: component, Count: n})
		}
	}
	sort.SliceStable(summary.ByComponent, func(i, j int) bool {
		return summary.ByComponent[i].Count > summary.ByComponent[j].Count
	})

	n := min(SummarySamples, len(result.AssemblySteps))
	summary.Samples = append([]assembly.AssemblyStep(nil), result.AssemblySteps[:n]...)
	return summary
}
