// Package erosion wires the flow graph, droplet, river, glacial, hi-res, and
// meander stages into a single deterministic Pipeline, per spec §6/§7.
// Params and Preset are ported field-for-field from
// original_source/src/erosion/params.rs (ErosionParams/ErosionPreset).
package erosion

// Preset selects a bundle of Params, matching the reference
// ErosionPreset enum.
type Preset int

const (
	PresetNone Preset = iota
	PresetMinimal
	PresetNormal
	PresetDramatic
	PresetRealistic
)

func (p Preset) String() string {
	switch p {
	case PresetNone:
		return "none"
	case PresetMinimal:
		return "minimal"
	case PresetNormal:
		return "normal"
	case PresetDramatic:
		return "dramatic"
	case PresetRealistic:
		return "realistic"
	default:
		return "unknown"
	}
}

// Params is the full set of tunables for one Pipeline.Run, grouped exactly
// as the reference ErosionParams groups them.
type Params struct {
	// Hydraulic erosion (droplet simulation, C4).
	HydraulicIterations     int
	DropletInertia          float32
	DropletCapacityFactor   float32
	DropletErosionRate      float32
	DropletDepositRate      float32
	DropletEvaporation      float32
	DropletMinVolume        float32
	DropletMaxSteps         int
	DropletErosionRadius    int
	DropletInitialWater     float32
	DropletInitialVelocity  float32
	DropletGravity          float32

	// Glacial erosion (SIA model, C5).
	GlacialTimesteps      int
	GlacialDt             float32
	IceDeformCoefficient  float32
	IceSlidingCoefficient float32
	ErosionCoefficient    float32
	MassBalanceGradient   float32
	SnowlineElevation     *float32
	GlaciationTemperature float32
	GlenExponent          float32
	IceDensity            float32
	Gravity               float32
	ErosionExponent       float32

	// River erosion (trace-based, C3).
	EnableRivers              bool
	RiverSourceMinAccumulation float32
	RiverSourceMinElevation    float32
	RiverCapacityFactor        float32
	RiverErosionRate           float32
	RiverDepositionRate        float32
	RiverMaxErosion            float32
	RiverMaxDeposition         float32
	RiverChannelWidth          int

	// General.
	EnableHydraulic  bool
	EnableGlacial    bool
	EnableAnalysis   bool
	UseGPU           bool
	SimulationScale  int
	HiresRoughness   float32
	HiresWarp        float32
}

// RhoG returns ice density × gravity, used by the SIA basal-stress terms.
func (p Params) RhoG() float32 { return p.IceDensity * p.Gravity }

// DefaultParams is the reference "POLISHED" configuration: sharp rivers
// that still merge.
func DefaultParams() Params {
	return Params{
		HydraulicIterations:    750_000,
		DropletInertia:         0.3,
		DropletCapacityFactor:  10.0,
		DropletErosionRate:     0.05,
		DropletDepositRate:     0.2,
		DropletEvaporation:     0.001,
		DropletMinVolume:       0.01,
		DropletMaxSteps:        3000,
		DropletErosionRadius:   3,
		DropletInitialWater:    1.0,
		DropletInitialVelocity: 1.0,
		DropletGravity:         8.0,

		GlacialTimesteps:      500,
		GlacialDt:             100.0,
		IceDeformCoefficient:  1e-7,
		IceSlidingCoefficient: 5e-4,
		ErosionCoefficient:    1e-4,
		MassBalanceGradient:   0.005,
		SnowlineElevation:     nil,
		GlaciationTemperature: -3.0,
		GlenExponent:          3.0,
		IceDensity:            917.0,
		Gravity:               9.81,
		ErosionExponent:       1.0,

		EnableRivers:               true,
		RiverSourceMinAccumulation: 15.0,
		RiverSourceMinElevation:    100.0,
		RiverCapacityFactor:        20.0,
		RiverErosionRate:           1.0,
		RiverDepositionRate:        0.5,
		RiverMaxErosion:            150.0,
		RiverMaxDeposition:         0.0,
		RiverChannelWidth:          2,

		EnableHydraulic: true,
		EnableGlacial:   true,
		EnableAnalysis:  true,
		UseGPU:          true,
		SimulationScale: 4,
		HiresRoughness:  20.0,
		HiresWarp:       0.0,
	}
}

// FastParams is a reduced-iteration configuration for quick test runs.
func FastParams() Params {
	p := DefaultParams()
	p.HydraulicIterations = 10_000
	p.GlacialTimesteps = 100
	return p
}

// HighQualityParams raises the glacial timestep count to 1000 for
// final-quality output and sets hydraulic iterations to 200,000, which is
// below DefaultParams' 750,000.
func HighQualityParams() Params {
	p := DefaultParams()
	p.HydraulicIterations = 200_000
	p.GlacialTimesteps = 1000
	return p
}

// HydraulicOnlyParams disables glacial erosion.
func HydraulicOnlyParams() Params {
	p := DefaultParams()
	p.EnableGlacial = false
	return p
}

// GlacialOnlyParams disables particle-based hydraulic erosion.
func GlacialOnlyParams() Params {
	p := DefaultParams()
	p.EnableHydraulic = false
	return p
}

// FromPreset builds Params from a Preset, matching from_preset() exactly.
func FromPreset(preset Preset) Params {
	switch preset {
	case PresetNone:
		p := DefaultParams()
		p.EnableHydraulic = false
		p.EnableGlacial = false
		p.EnableRivers = false
		return p
	case PresetMinimal:
		p := DefaultParams()
		p.HydraulicIterations = 50_000
		p.GlacialTimesteps = 100
		p.DropletErosionRate = 0.02
		p.RiverMaxErosion = 50.0
		return p
	case PresetDramatic:
		p := DefaultParams()
		p.HydraulicIterations = 750_000
		p.GlacialTimesteps = 750
		p.DropletErosionRate = 0.1
		p.DropletCapacityFactor = 15.0
		p.RiverMaxErosion = 250.0
		p.RiverErosionRate = 1.5
		p.ErosionCoefficient = 2e-4
		return p
	case PresetRealistic:
		p := DefaultParams()
		p.HydraulicIterations = 1_000_000
		p.DropletErosionRate = 0.03
		p.DropletDepositRate = 0.15
		p.DropletEvaporation = 0.001
		p.DropletMaxSteps = 3000
		p.GlacialTimesteps = 1000
		p.RiverSourceMinAccumulation = 5.0
		return p
	default: // PresetNormal
		return DefaultParams()
	}
}

// ScaleForResolution adjusts Params for a hi-res upscale factor, per
// original_source's scale_params_for_resolution: area grows with factor²,
// so the river-source accumulation threshold is multiplied by factor²·0.25
// (unchanged at factor 2, raised above it), droplet paths lengthen
// linearly, and the erosion brush radius collapses to a single cell to avoid
// over-blurring narrow upscaled channels.
func ScaleForResolution(p Params, factor int) Params {
	if factor <= 1 {
		return p
	}
	areaScale := float32(factor * factor)
	p.RiverSourceMinAccumulation *= areaScale * 0.25
	p.DropletMaxSteps *= factor
	if p.DropletErosionRadius > 1 {
		p.DropletErosionRadius = 1
	}
	return p
}
