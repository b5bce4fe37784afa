package assembly

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Component is a hardware part category.
type Component string

const (
	ComponentCPU         Component = "CPU"
	ComponentRAM         Component = "RAM"
	ComponentGPU         Component = "GPU"
	ComponentMotherboard Component = "Motherboard"
	ComponentPSU         Component = "PSU"
	ComponentCooler      Component = "Cooler"
	ComponentStorage     Component = "Storage"
	ComponentCables      Component = "Cables"
)

// Components lists every component in declaration order.
var Components = []Component{
	ComponentCPU,
	ComponentRAM,
	ComponentGPU,
	ComponentMotherboard,
	ComponentPSU,
	ComponentCooler,
	ComponentStorage,
	ComponentCables,
}

func (c Component) Valid() bool { return contains(Components, c) }

// ParseComponent matches a component name case-insensitively.
func ParseComponent(value string) (Component, error) {
	return parseEnum(Components, value, "component")
}

// Action is a physical assembly operation.
type Action string

const (
	ActionInsert  Action = "insert"
	ActionMount   Action = "mount"
	ActionConnect Action = "connect"
	ActionAlign   Action = "align"
	ActionLock    Action = "lock"
	ActionRemove  Action = "remove"
)

var Actions = []Action{ActionInsert, ActionMount, ActionConnect, ActionAlign, ActionLock, ActionRemove}

func (a Action) Valid() bool { return contains(Actions, a) }

func ParseAction(value string) (Action, error) {
	return parseEnum(Actions, value, "action")
}

// Platform is a CPU socket family. The zero value means the platform could
// not be determined and encodes as JSON null.
type Platform string

const (
	PlatformUndetermined Platform = ""
	PlatformAM4          Platform = "AM4"
	PlatformAM5          Platform = "AM5"
	PlatformLGA1700      Platform = "LGA1700"
	PlatformLGA1200      Platform = "LGA1200"
	PlatformUnknown      Platform = "unknown"
)

var Platforms = []Platform{PlatformAM4, PlatformAM5, PlatformLGA1700, PlatformLGA1200, PlatformUnknown}

func (p Platform) Valid() bool { return p == PlatformUndetermined || contains(Platforms, p) }

// OrUnknown substitutes unknown for an undetermined platform.
func (p Platform) OrUnknown() Platform {
	if p == PlatformUndetermined {
		return PlatformUnknown
	}
	return p
}

func ParsePlatform(value string) (Platform, error) {
	if strings.TrimSpace(value) == "" {
		return PlatformUndetermined, nil
	}
	return parseEnum(Platforms, value, "platform")
}

func (p Platform) MarshalJSON() ([]byte, error) {
	return marshalOptional(string(p))
}

func (p *Platform) UnmarshalJSON(data []byte) error {
	raw, err := unmarshalOptional(data)
	if err != nil {
		return err
	}
	parsed, err := ParsePlatform(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// FormFactor is a motherboard/case size class. The zero value means the form
// factor could not be determined and encodes as JSON null.
type FormFactor string

const (
	FormFactorUndetermined FormFactor = ""
	FormFactorATX          FormFactor = "ATX"
	FormFactorMATX         FormFactor = "mATX"
	FormFactorITX          FormFactor = "ITX"
	FormFactorEATX         FormFactor = "EATX"
	FormFactorUnknown      FormFactor = "unknown"
)

var FormFactors = []FormFactor{FormFactorATX, FormFactorMATX, FormFactorITX, FormFactorEATX, FormFactorUnknown}

func (f FormFactor) Valid() bool { return f == FormFactorUndetermined || contains(FormFactors, f) }

func (f FormFactor) OrUnknown() FormFactor {
	if f == FormFactorUndetermined {
		return FormFactorUnknown
	}
	return f
}

func ParseFormFactor(value string) (FormFactor, error) {
	if strings.TrimSpace(value) == "" {
		return FormFactorUndetermined, nil
	}
	return parseEnum(FormFactors, value, "form factor")
}

func (f FormFactor) MarshalJSON() ([]byte, error) {
	return marshalOptional(string(f))
}

func (f *FormFactor) UnmarshalJSON(data []byte) error {
	raw, err := unmarshalOptional(data)
	if err != nil {
		return err
	}
	parsed, err := ParseFormFactor(raw)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// VideoType classifies what a video covers.
type VideoType string

const (
	VideoTypeFullBuild       VideoType = "full_build"
	VideoTypeCPUInstall      VideoType = "cpu_install"
	VideoTypeCoolerInstall   VideoType = "cooler_install"
	VideoTypeRAMInstall      VideoType = "ram_install"
	VideoTypeGPUInstall      VideoType = "gpu_install"
	VideoTypeCableManagement VideoType = "cable_management"
)

var VideoTypes = []VideoType{
	VideoTypeFullBuild,
	VideoTypeCPUInstall,
	VideoTypeCoolerInstall,
	VideoTypeRAMInstall,
	VideoTypeGPUInstall,
	VideoTypeCableManagement,
}

func (v VideoType) Valid() bool { return contains(VideoTypes, v) }

func ParseVideoType(value string) (VideoType, error) {
	return parseEnum(VideoTypes, value, "video type")
}

// SkillLevel is the audience a video targets.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

var SkillLevels = []SkillLevel{SkillBeginner, SkillIntermediate, SkillAdvanced}

func (s SkillLevel) Valid() bool { return contains(SkillLevels, s) }

func ParseSkillLevel(value string) (SkillLevel, error) {
	return parseEnum(SkillLevels, value, "skill level")
}

// SourceConfidence grades how directly the video evidences a step.
type SourceConfidence string

const (
	ConfidenceExplicitlyShown   SourceConfidence = "explicitly_shown"
	ConfidenceVerballyExplained SourceConfidence = "verbally_explained"
	ConfidenceInferred          SourceConfidence = "inferred"
)

var Confidences = []SourceConfidence{ConfidenceExplicitlyShown, ConfidenceVerballyExplained, ConfidenceInferred}

func (c SourceConfidence) Valid() bool { return contains(Confidences, c) }

func ParseSourceConfidence(value string) (SourceConfidence, error) {
	return parseEnum(Confidences, value, "source confidence")
}

func contains[T ~string](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func parseEnum[T ~string](values []T, raw, kind string) (T, error) {
	trimmed := strings.TrimSpace(raw)
	for _, candidate := range values {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("unknown %s %q", kind, raw)
}

func marshalOptional(value string) ([]byte, error) {
	if value == "" {
		return []byte("null"), nil
	}
	return json.Marshal(value)
}

func unmarshalOptional(data []byte) (string, error) {
	if string(data) == "null" {
		return "", nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", err
	}
	return raw, nil
}
