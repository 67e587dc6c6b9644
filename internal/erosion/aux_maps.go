package erosion

import "geomorph/internal/tilemap"

// AuxMaps bundles the optional immutable inputs a Pipeline run can use
// alongside the heightmap, so Run takes one parameter instead of three —
// matching the teacher's habit of small parameter-object structs
// (orchestrator.GenerationParams). A nil field means "use the pipeline's
// constant default for that field" rather than an error.
type AuxMaps struct {
	// Hardness scales how resistant bedrock is to erosion per cell, in
	// [0,1]. Nil means a constant 0.3 (matching the reference's choice to
	// use flat hardness for cleaner channels rather than plate-derived rock
	// hardness, which it found too noisy).
	Hardness *tilemap.Grid[float32]

	// Stress is tectonic stress per cell; currently unused by any erosion
	// stage (reserved for a future stress-driven hardness model) but kept
	// on the struct so callers already wiring plate-boundary stress maps
	// into worldgen have somewhere to pass it through.
	Stress *tilemap.Grid[float32]

	// Temperature drives the glacial stage's equilibrium-line estimate. Nil
	// means a constant 20 °C, which is above the default glaciation
	// temperature (-3 °C), so with default params no ice accumulates.
	Temperature *tilemap.Grid[float32]
}

func (a AuxMaps) hardnessOr(width, height int) *tilemap.Grid[float32] {
	if a.Hardness != nil {
		return a.Hardness
	}
	return tilemap.NewFilled[float32](width, height, 0.3)
}

func (a AuxMaps) temperatureOr(width, height int) *tilemap.Grid[float32] {
	if a.Temperature != nil {
		return a.Temperature
	}
	return tilemap.NewFilled[float32](width, height, 20.0)
}
