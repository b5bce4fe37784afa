package steps

import (
	"strings"

	"pcsteps/internal/assembly"
)

// Criteria selects steps from an artifact. Zero fields match everything.
type Criteria struct {
	Component  assembly.Component
	Action     assembly.Action
	MinStart   *float64
	MaxStart   *float64
	Confidence assembly.SourceConfidence
}

// Empty reports whether the criteria select every step.
func (c Criteria) Empty() bool {
	return c.Component == "" && c.Action == "" && c.MinStart == nil && c.MaxStart == nil && c.Confidence == ""
}

// Match reports whether step satisfies every set criterion. The time window
// applies to the step's start and is inclusive on both ends.
func (c Criteria) Match(step assembly.AssemblyStep) bool {
	if c.Component != "" && !strings.EqualFold(string(step.Component), string(c.Component)) {
		return false
	}
	if c.Action != "" && !strings.EqualFold(string(step.Action), string(c.Action)) {
		return false
	}
	if c.MinStart != nil && step.Timestamp.Start < *c.MinStart {
		return false
	}
	if c.MaxStart != nil && step.Timestamp.Start > *c.MaxStart {
		return false
	}
	if c.Confidence != "" && !strings.EqualFold(string(step.SourceConfidence), string(c.Confidence)) {
		return false
	}
	return true
}

// Filter returns the matching steps in their original order. Step orders are
// left untouched so results can be traced back to the full list.
func Filter(steps []assembly.AssemblyStep, criteria Criteria) []assembly.AssemblyStep {
	out := make([]assembly.AssemblyStep, 0, len(steps))
	for _, step := range steps {
		if criteria.Match(step) {
			out = append(out, step)
		}
	}
	return out
}
