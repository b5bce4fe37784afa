package steps

import (
	"pcsteps/internal/assembly"
)

// DefaultQueries returns the standard extraction battery in the order it is
// issued.
func DefaultQueries() []assembly.SemanticQuery {
	return []assembly.SemanticQuery{
		assembly.NewQuery("Show when the CPU is inserted into the motherboard socket", assembly.ComponentCPU, assembly.ActionInsert),
		assembly.NewQuery("Find moments where RAM memory modules are installed into slots", assembly.ComponentRAM, assembly.ActionInsert),
		assembly.NewQuery("Show when the GPU graphics card is installed into the PCIe slot", assembly.ComponentGPU, assembly.ActionInsert),
		assembly.NewQuery("Find when the CPU cooler is mounted on top of the processor", assembly.ComponentCooler, assembly.ActionMount),
		assembly.NewQuery("Show when the power supply PSU is installed into the case", assembly.ComponentPSU, assembly.ActionMount),
		assembly.NewQuery("Find moments where storage drives or SSDs are being installed", assembly.ComponentStorage, assembly.ActionMount),
		assembly.NewQuery("Show when cables are being connected to the motherboard or components", assembly.ComponentCables, assembly.ActionConnect),
		assembly.NewQuery("Find when the creator shows correct alignment or orientation of components", "", assembly.ActionAlign),
		assembly.NewQuery("When does the creator warn about mistakes or show incorrect installation", "", ""),
		assembly.NewQuery("Find steps where force should not be applied or warnings about damage", "", ""),
		assembly.NewQuery("Show moments where locks or latches are being secured", "", assembly.ActionLock),
	}
}

// Preset is a named component/action slice matching one extraction query.
type Preset struct {
	Name      string             `json:"name"`
	Component assembly.Component `json:"component,omitempty"`
	Action    assembly.Action    `json:"action,omitempty"`
	Query     string             `json:"query"`
}

// Criteria returns the filter that selects what the preset's query produced.
func (p Preset) Criteria() Criteria {
	return Criteria{Component: p.Component, Action: p.Action}
}

var presets = []Preset{
	{Name: "cpu_insert", Component: assembly.ComponentCPU, Action: assembly.ActionInsert, Query: "Show when the CPU is inserted into the motherboard socket"},
	{Name: "ram_insert", Component: assembly.ComponentRAM, Action: assembly.ActionInsert, Query: "Find moments where RAM memory modules are installed into slots"},
	{Name: "gpu_insert", Component: assembly.ComponentGPU, Action: assembly.ActionInsert, Query: "Show when the GPU graphics card is installed into the PCIe slot"},
	{Name: "cooler_mount", Component: assembly.ComponentCooler, Action: assembly.ActionMount, Query: "Find when the CPU cooler is mounted on top of the processor"},
	{Name: "psu_mount", Component: assembly.ComponentPSU, Action: assembly.ActionMount, Query: "Show when the power supply PSU is installed into the case"},
	{Name: "storage_mount", Component: assembly.ComponentStorage, Action: assembly.ActionMount, Query: "Find moments where storage drives or SSDs are being installed"},
	{Name: "cables_connect", Component: assembly.ComponentCables, Action: assembly.ActionConnect, Query: "Show when cables are being connected to the motherboard or components"},
	{Name: "align", Action: assembly.ActionAlign, Query: "Find when the creator shows correct alignment or orientation of components"},
	{Name: "lock", Action: assembly.ActionLock, Query: "Show moments where locks or latches are being secured"},
}

// Presets returns the named presets in display order.
func Presets() []Preset {
	return append([]Preset(nil), presets...)
}

// QueryByName looks up a preset by name.
func QueryByName(name string) (Preset, bool) {
	for _, preset := range presets {
		if preset.Name == name {
			return preset, true
		}
	}
	return Preset{}, false
}

// PresetNames lists preset names in display order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for _, preset := range presets {
		names = append(names, preset.Name)
	}
	return names
}
