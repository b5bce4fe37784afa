package assembly

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func validStep(start float64) AssemblyStep {
	return AssemblyStep{
		Component:        ComponentCPU,
		Action:           ActionInsert,
		Platform:         PlatformUnknown,
		FormFactor:       FormFactorUnknown,
		Description:      "Seat the CPU",
		VisualCues:       []string{},
		CommonErrors:     []string{},
		Timestamp:        Timestamp{Start: start, End: start + 5},
		VideoID:          "vid",
		SourceConfidence: ConfidenceInferred,
	}
}

func TestAssemblyStepValidate(t *testing.T) {
	step := validStep(10)
	if err := step.Validate(); err != nil {
		t.Fatalf("expected valid step, got %v", err)
	}

	cases := map[string]func(*AssemblyStep){
		"end before start":   func(s *AssemblyStep) { s.Timestamp = Timestamp{Start: 10, End: 9} },
		"negative start":     func(s *AssemblyStep) { s.Timestamp = Timestamp{Start: -1, End: 2} },
		"long description":   func(s *AssemblyStep) { s.Description = strings.Repeat("x", 501) },
		"empty description":  func(s *AssemblyStep) { s.Description = "  " },
		"too many cues":      func(s *AssemblyStep) { s.VisualCues = []string{"a", "b", "c", "d", "e", "f"} },
		"bad component":      func(s *AssemblyStep) { s.Component = "Fan" },
		"bad confidence":     func(s *AssemblyStep) { s.SourceConfidence = "maybe" },
		"missing video":      func(s *AssemblyStep) { s.VideoID = "" },
		"bad platform value": func(s *AssemblyStep) { s.Platform = "AM3" },
	}
	for name, mutate := range cases {
		s := validStep(10)
		mutate(&s)
		if err := s.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestDescriptionLimitCountsCharacters(t *testing.T) {
	step := validStep(0)
	step.Description = strings.Repeat("é", MaxDescriptionRunes)
	if err := step.Validate(); err != nil {
		t.Fatalf("500 multibyte characters should be accepted: %v", err)
	}
}

func TestAssignStepOrderIsStable(t *testing.T) {
	a := validStep(30)
	a.Description = "a"
	b := validStep(10)
	b.Description = "b"
	c := validStep(30)
	c.Description = "c"
	steps := []AssemblyStep{a, b, c}
	AssignStepOrder(steps)

	want := []string{"b", "a", "c"}
	for i, step := range steps {
		if step.Description != want[i] {
			t.Fatalf("position %d: got %q want %q", i, step.Description, want[i])
		}
		if step.StepOrder != i+1 {
			t.Fatalf("position %d: step order %d", i, step.StepOrder)
		}
	}
	if err := CheckStepOrder(steps); err != nil {
		t.Fatalf("CheckStepOrder: %v", err)
	}
}

func TestCheckStepOrderRejectsGaps(t *testing.T) {
	steps := []AssemblyStep{validStep(1), validStep(2)}
	steps[0].StepOrder = 1
	steps[1].StepOrder = 3
	if err := CheckStepOrder(steps); err == nil {
		t.Fatal("expected gap to be rejected")
	}
}

func TestProcessedVideoValidateCount(t *testing.T) {
	step := validStep(0)
	step.StepOrder = 1
	pv := ProcessedVideo{
		Metadata: VideoMetadata{
			VideoID:    "vid",
			VideoType:  VideoTypeFullBuild,
			SkillLevel: SkillIntermediate,
		},
		AssemblySteps:       []AssemblyStep{step},
		TotalStepsExtracted: 2,
	}
	if err := pv.Validate(); err == nil {
		t.Fatal("expected count mismatch error")
	}
	pv.TotalStepsExtracted = 1
	if err := pv.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUndeterminedPlatformEncodesAsNull(t *testing.T) {
	meta := VideoMetadata{VideoID: "v", VideoType: VideoTypeFullBuild, SkillLevel: SkillBeginner}
	data, err := json.Marshal(meta)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"platform":null`) || !strings.Contains(string(data), `"form_factor":null`) {
		t.Fatalf("expected null platform and form factor: %s", data)
	}

	var decoded VideoMetadata
	if err := json.Unmarshal([]byte(`{"video_id":"v","platform":"am5","form_factor":null}`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Platform != PlatformAM5 || decoded.FormFactor != FormFactorUndetermined {
		t.Fatalf("unexpected decode: %+v", decoded)
	}
	if err := json.Unmarshal([]byte(`{"platform":"socket7"}`), &decoded); err == nil {
		t.Fatal("expected unknown platform to fail")
	}
}

func TestProcessedVideoRoundTrip(t *testing.T) {
	step := validStep(42.5)
	step.StepOrder = 1
	step.VisualCues = []string{"socket lever"}
	step.CommonErrors = []string{"Risk of bent pins"}
	original := ProcessedVideo{
		Metadata: VideoMetadata{
			VideoID:         "vid",
			Title:           "Build",
			URL:             "https://youtu.be/vid",
			VideoType:       VideoTypeCPUInstall,
			SkillLevel:      SkillAdvanced,
			Platform:        PlatformAM5,
			DurationSeconds: 600,
		},
		AssemblySteps:       []AssemblyStep{step},
		IndexedVideoID:      "remote-1",
		ProcessingTimestamp: time.Date(2025, 3, 1, 12, 30, 0, 123000000, time.UTC),
		TotalStepsExtracted: 1,
	}
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded ProcessedVideo
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !decoded.ProcessingTimestamp.Equal(original.ProcessingTimestamp) {
		t.Fatalf("timestamp mismatch: %v vs %v", decoded.ProcessingTimestamp, original.ProcessingTimestamp)
	}
	if decoded.Metadata != original.Metadata {
		t.Fatalf("metadata mismatch: %+v", decoded.Metadata)
	}
	got := decoded.AssemblySteps[0]
	if got.Timestamp != step.Timestamp || got.Description != step.Description || got.VisualCues[0] != "socket lever" {
		t.Fatalf("step mismatch: %+v", got)
	}
	if decoded.IndexedVideoID != "remote-1" {
		t.Fatalf("remote id mismatch: %q", decoded.IndexedVideoID)
	}
}

func TestSemanticQueryDefaults(t *testing.T) {
	q := NewQuery("find cpu", ComponentCPU, "")
	if q.SearchConfidenceThreshold != 0.7 {
		t.Fatalf("unexpected threshold %v", q.SearchConfidenceThreshold)
	}
	if err := q.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q.SearchConfidenceThreshold = 1.5
	if err := q.Validate(); err == nil {
		t.Fatal("expected threshold error")
	}
}

func TestParseEnumsCaseInsensitive(t *testing.T) {
	if c, err := ParseComponent("gpu"); err != nil || c != ComponentGPU {
		t.Fatalf("ParseComponent: %v %v", c, err)
	}
	if a, err := ParseAction("MOUNT"); err != nil || a != ActionMount {
		t.Fatalf("ParseAction: %v %v", a, err)
	}
	if ff, err := ParseFormFactor("matx"); err != nil || ff != FormFactorMATX {
		t.Fatalf("ParseFormFactor: %v %v", ff, err)
	}
	if _, err := ParseSourceConfidence("sure"); err == nil {
		t.Fatal("expected error for unknown confidence")
	}
}
