package assembly

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MaxDescriptionRunes bounds AssemblyStep.Description.
	MaxDescriptionRunes = 500
	// MaxVisualCues bounds AssemblyStep.VisualCues.
	MaxVisualCues = 5
	// DefaultSearchConfidenceThreshold is the threshold a SemanticQuery
	// carries when none is given.
	DefaultSearchConfidenceThreshold = 0.7
)

// VideoMetadata describes a source video and what the keyword inference made
// of it.
type VideoMetadata struct {
	VideoID         string     `json:"video_id"`
	Title           string     `json:"title"`
	ChannelName     string     `json:"channel_name"`
	URL             string     `json:"url"`
	VideoType       VideoType  `json:"video_type"`
	SkillLevel      SkillLevel `json:"skill_level"`
	Platform        Platform   `json:"platform"`
	FormFactor      FormFactor `json:"form_factor"`
	DurationSeconds float64    `json:"duration_seconds"`
	UploadDate      string     `json:"upload_date"`
	Description     string     `json:"description"`
}

// Validate checks the metadata invariants.
func (m VideoMetadata) Validate() error {
	var problems []string
	if strings.TrimSpace(m.VideoID) == "" {
		problems = append(problems, "video_id is empty")
	}
	if !m.VideoType.Valid() {
		problems = append(problems, fmt.Sprintf("video_type %q invalid", m.VideoType))
	}
	if !m.SkillLevel.Valid() {
		problems = append(problems, fmt.Sprintf("skill_level %q invalid", m.SkillLevel))
	}
	if !m.Platform.Valid() {
		problems = append(problems, fmt.Sprintf("platform %q invalid", m.Platform))
	}
	if !m.FormFactor.Valid() {
		problems = append(problems, fmt.Sprintf("form_factor %q invalid", m.FormFactor))
	}
	if m.DurationSeconds < 0 {
		problems = append(problems, "duration_seconds is negative")
	}
	return joinProblems("metadata", problems)
}

// Timestamp is a time span within a video, in seconds.
type Timestamp struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (t Timestamp) Validate() error {
	if t.Start < 0 {
		return fmt.Errorf("timestamp start %.2f is negative", t.Start)
	}
	if t.End < t.Start {
		return fmt.Errorf("timestamp end %.2f precedes start %.2f", t.End, t.Start)
	}
	return nil
}

// Duration returns the span length.
func (t Timestamp) Duration() float64 { return t.End - t.Start }

// AssemblyStep is one discrete assembly action located in a video.
type AssemblyStep struct {
	Component        Component        `json:"component"`
	Action           Action           `json:"action"`
	Platform         Platform         `json:"platform"`
	FormFactor       FormFactor       `json:"form_factor"`
	StepOrder        int              `json:"step_order"`
	Description      string           `json:"description"`
	VisualCues       []string         `json:"visual_cues"`
	CommonErrors     []string         `json:"common_errors"`
	Timestamp        Timestamp        `json:"timestamp"`
	VideoID          string           `json:"video_id"`
	SourceConfidence SourceConfidence `json:"source_confidence"`
}

// Validate checks the invariants that hold for a step before ordering; the
// step order itself is checked by CheckStepOrder.
func (s AssemblyStep) Validate() error {
	var problems []string
	if !s.Component.Valid() {
		problems = append(problems, fmt.Sprintf("component %q invalid", s.Component))
	}
	if !s.Action.Valid() {
		problems = append(problems, fmt.Sprintf("action %q invalid", s.Action))
	}
	if !s.Platform.Valid() {
		problems = append(problems, fmt.Sprintf("platform %q invalid", s.Platform))
	}
	if !s.FormFactor.Valid() {
		problems = append(problems, fmt.Sprintf("form_factor %q invalid", s.FormFactor))
	}
	if !s.SourceConfidence.Valid() {
		problems = append(problems, fmt.Sprintf("source_confidence %q invalid", s.SourceConfidence))
	}
	if strings.TrimSpace(s.Description) == "" {
		problems = append(problems, "description is empty")
	}
	if n := utf8.RuneCountInString(s.Description); n > MaxDescriptionRunes {
		problems = append(problems, fmt.Sprintf("description has %d characters (max %d)", n, MaxDescriptionRunes))
	}
	if len(s.VisualCues) > MaxVisualCues {
		problems = append(problems, fmt.Sprintf("%d visual cues (max %d)", len(s.VisualCues), MaxVisualCues))
	}
	if err := s.Timestamp.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if strings.TrimSpace(s.VideoID) == "" {
		problems = append(problems, "video_id is empty")
	}
	return joinProblems("assembly step", problems)
}

// ProcessedVideo is the final artifact of one pipeline run.
type ProcessedVideo struct {
	Metadata            VideoMetadata  `json:"metadata"`
	AssemblySteps       []AssemblyStep `json:"assembly_steps"`
	IndexedVideoID      string         `json:"twelve_labs_video_id"`
	ProcessingTimestamp time.Time      `json:"processing_timestamp"`
	TotalStepsExtracted int            `json:"total_steps_extracted"`
}

// Validate checks the artifact invariants including step ordering.
func (p ProcessedVideo) Validate() error {
	if err := p.Metadata.Validate(); err != nil {
		return err
	}
	if p.TotalStepsExtracted != len(p.AssemblySteps) {
		return fmt.Errorf("total_steps_extracted %d does not match %d steps", p.TotalStepsExtracted, len(p.AssemblySteps))
	}
	for i, step := range p.AssemblySteps {
		if err := step.Validate(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return CheckStepOrder(p.AssemblySteps)
}

// SemanticQuery is one natural-language search issued during extraction.
// Component and Action are empty when the query is not tied to one.
type SemanticQuery struct {
	Text                      string    `json:"query_text"`
	Component                 Component `json:"component,omitempty"`
	Action                    Action    `json:"action,omitempty"`
	SearchConfidenceThreshold float64   `json:"search_confidence_threshold"`
}

// NewQuery builds a query with the default confidence threshold.
func NewQuery(text string, component Component, action Action) SemanticQuery {
	return SemanticQuery{
		Text:                      text,
		Component:                 component,
		Action:                    action,
		SearchConfidenceThreshold: DefaultSearchConfidenceThreshold,
	}
}

func (q SemanticQuery) Validate() error {
	var problems []string
	if strings.TrimSpace(q.Text) == "" {
		problems = append(problems, "query_text is empty")
	}
	if q.Component != "" && !q.Component.Valid() {
		problems = append(problems, fmt.Sprintf("component %q invalid", q.Component))
	}
	if q.Action != "" && !q.Action.Valid() {
		problems = append(problems, fmt.Sprintf("action %q invalid", q.Action))
	}
	if q.SearchConfidenceThreshold < 0 || q.SearchConfidenceThreshold > 1 {
		problems = append(problems, fmt.Sprintf("search_confidence_threshold %.2f outside [0,1]", q.SearchConfidenceThreshold))
	}
	return joinProblems("semantic query", problems)
}

// AssignStepOrder stable-sorts steps by start time and numbers them from 1.
func AssignStepOrder(steps []AssemblyStep) {
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].Timestamp.Start < steps[j].Timestamp.Start
	})
	for i := range steps {
		steps[i].StepOrder = i + 1
	}
}

// CheckStepOrder verifies that step orders are exactly 1..N and agree with
// ascending start time.
func CheckStepOrder(steps []AssemblyStep) error {
	for i, step := range steps {
		if step.StepOrder != i+1 {
			return fmt.Errorf("step at position %d has step_order %d", i+1, step.StepOrder)
		}
		if i > 0 && step.Timestamp.Start < steps[i-1].Timestamp.Start {
			return fmt.Errorf("step %d starts at %.2f before step %d at %.2f",
				step.StepOrder, step.Timestamp.Start, steps[i-1].StepOrder, steps[i-1].Timestamp.Start)
		}
	}
	return nil
}

func joinProblems(kind string, problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return errors.New(kind + ": " + strings.Join(problems, "; "))
}
