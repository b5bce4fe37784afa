package steps

import (
	"strings"

	"pcsteps/internal/assembly"
	"pcsteps/internal/textutil"
)

// Order matters: earlier rows win.
var componentRules = []textutil.Rule[assembly.Component]{
	{Keywords: []string{"cpu", "processor", "ryzen", "intel"}, Value: assembly.ComponentCPU},
	{Keywords: []string{"ram", "memory", "dimm"}, Value: assembly.ComponentRAM},
	{Keywords: []string{"gpu", "graphics card", "video card"}, Value: assembly.ComponentGPU},
	{Keywords: []string{"cooler", "heatsink", "fan"}, Value: assembly.ComponentCooler},
	{Keywords: []string{"psu", "power supply"}, Value: assembly.ComponentPSU},
	{Keywords: []string{"ssd", "nvme", "storage", "hard drive"}, Value: assembly.ComponentStorage},
	{Keywords: []string{"motherboard", "mobo"}, Value: assembly.ComponentMotherboard},
	{Keywords: []string{"cable", "wire", "connector"}, Value: assembly.ComponentCables},
}

var actionRules = []textutil.Rule[assembly.Action]{
	{Keywords: []string{"insert", "installing", "install", "put in", "slot in"}, Value: assembly.ActionInsert},
	{Keywords: []string{"mount", "mounting", "screw", "attach"}, Value: assembly.ActionMount},
	{Keywords: []string{"connect", "plug", "cable", "wire"}, Value: assembly.ActionConnect},
	{Keywords: []string{"align", "orientation", "direction", "arrow"}, Value: assembly.ActionAlign},
	{Keywords: []string{"lock", "latch", "secure", "clip"}, Value: assembly.ActionLock},
	{Keywords: []string{"remove", "take out", "uninstall"}, Value: assembly.ActionRemove},
}

type errorTrigger struct {
	phrase  string
	message string
}

var errorTriggers = []errorTrigger{
	{"don't force", "Do not apply excessive force"},
	{"avoid touching", "Avoid touching sensitive components"},
	{"wrong orientation", "Incorrect orientation"},
	{"pins bent", "Risk of bent pins"},
	{"not aligned", "Component not properly aligned"},
	{"forget to", "May forget this step"},
	{"common mistake", "Common mistake"},
	{"be careful", "Exercise caution"},
	{"damage", "Risk of component damage"},
}

// MapConfidence grades a hit. Each tier accepts either its label or a score
// above its cutoff, and tiers are checked from strongest to weakest, so a
// "low" label with a high score still lands in the top tier.
func MapConfidence(label string, score float64) assembly.SourceConfidence {
	label = strings.ToLower(strings.TrimSpace(label))
	switch {
	case label == "high" || score > 0.8:
		return assembly.ConfidenceExplicitlyShown
	case label == "medium" || score > 0.6:
		return assembly.ConfidenceVerballyExplained
	default:
		return assembly.ConfidenceInferred
	}
}

// DetectComponent guesses the component from free text, defaulting to the
// motherboard.
func DetectComponent(text string) assembly.Component {
	if value, ok := textutil.FirstMatch(strings.ToLower(text), componentRules); ok {
		return value
	}
	return assembly.ComponentMotherboard
}

// DetectAction guesses the action from free text, defaulting to insert.
func DetectAction(text string) assembly.Action {
	if value, ok := textutil.FirstMatch(strings.ToLower(text), actionRules); ok {
		return value
	}
	return assembly.ActionInsert
}

// ExtractErrors returns the warning messages whose trigger phrase appears in
// text, in table order.
func ExtractErrors(text string) []string {
	lower := strings.ToLower(text)
	out := []string{}
	for _, trigger := range errorTriggers {
		if strings.Contains(lower, trigger.phrase) {
			out = append(out, trigger.message)
		}
	}
	return out
}
