package metadata

import (
	"pcsteps/internal/assembly"
	"pcsteps/internal/textutil"
)

var videoTypeRules = []textutil.Rule[assembly.VideoType]{
	{Keywords: []string{"full build", "complete build", "pc build guide", "building a pc"}, Value: assembly.VideoTypeFullBuild},
	{Keywords: []string{"cpu install", "installing cpu", "processor install"}, Value: assembly.VideoTypeCPUInstall},
	{Keywords: []string{"cooler install", "installing cooler", "cpu cooler"}, Value: assembly.VideoTypeCoolerInstall},
	{Keywords: []string{"ram install", "installing ram", "memory install"}, Value: assembly.VideoTypeRAMInstall},
	{Keywords: []string{"gpu install", "graphics card", "installing gpu"}, Value: assembly.VideoTypeGPUInstall},
	{Keywords: []string{"cable management", "cable routing", "cables"}, Value: assembly.VideoTypeCableManagement},
}

var skillRules = []textutil.Rule[assembly.SkillLevel]{
	{Keywords: []string{"beginner", "first time", "guide for beginners", "easy"}, Value: assembly.SkillBeginner},
	{Keywords: []string{"advanced", "expert", "professional", "custom loop"}, Value: assembly.SkillAdvanced},
}

var platformRules = []textutil.Rule[assembly.Platform]{
	{Keywords: []string{"am5", "ryzen 7000", "ryzen 9000"}, Value: assembly.PlatformAM5},
	{Keywords: []string{"am4", "ryzen 5000", "ryzen 3000"}, Value: assembly.PlatformAM4},
	{Keywords: []string{"lga1700", "12th gen", "13th gen", "14th gen"}, Value: assembly.PlatformLGA1700},
	{Keywords: []string{"lga1200", "10th gen", "11th gen"}, Value: assembly.PlatformLGA1200},
}

// Longer names first: "atx" is a substring of every other form factor.
var formFactorRules = []textutil.Rule[assembly.FormFactor]{
	{Keywords: []string{"e-atx", "eatx", "extended atx"}, Value: assembly.FormFactorEATX},
	{Keywords: []string{"mini-itx", "mini itx", "itx"}, Value: assembly.FormFactorITX},
	{Keywords: []string{"micro-atx", "micro atx", "matx", "m-atx"}, Value: assembly.FormFactorMATX},
	{Keywords: []string{"atx"}, Value: assembly.FormFactorATX},
}

var exclusionKeywords = []string{
	"unboxing only",
	"reaction video",
	"roast",
	"fails compilation",
	"worst builds ever",
}

var pcKeywords = []string{
	"pc", "computer", "gaming rig", "build",
	"cpu", "gpu", "motherboard", "ram", "graphics",
	"components", "parts",
	"install", "setup", "assembly", "tutorial", "guide", "how to",
}

// InferVideoType classifies what the video covers, defaulting to a full build.
func InferVideoType(title, description string) assembly.VideoType {
	if value, ok := textutil.FirstMatch(textutil.Lower(title, description), videoTypeRules); ok {
		return value
	}
	return assembly.VideoTypeFullBuild
}

// InferSkillLevel returns the targeted audience, defaulting to intermediate.
func InferSkillLevel(title, description string) assembly.SkillLevel {
	if value, ok := textutil.FirstMatch(textutil.Lower(title, description), skillRules); ok {
		return value
	}
	return assembly.SkillIntermediate
}

// InferPlatform returns the CPU socket family named in the text, or
// PlatformUndetermined when none is mentioned.
func InferPlatform(title, description string) assembly.Platform {
	value, _ := textutil.FirstMatch(textutil.Lower(title, description), platformRules)
	return value
}

// InferFormFactor returns the board size named in the text, or
// FormFactorUndetermined when none is mentioned.
func InferFormFactor(title, description string) assembly.FormFactor {
	value, _ := textutil.FirstMatch(textutil.Lower(title, description), formFactorRules)
	return value
}

// ValidateContent reports whether the metadata looks like a PC-building video.
// Exclusion phrases reject before any positive keyword is considered.
func ValidateContent(meta assembly.VideoMetadata) bool {
	text := textutil.Lower(meta.Title, meta.Description)
	if textutil.ContainsAny(text, exclusionKeywords...) {
		return false
	}
	return textutil.ContainsAny(text, pcKeywords...)
}
