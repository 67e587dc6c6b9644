// Package glacial implements Shallow Ice Approximation (SIA) glacial
// erosion (C5, spec §4.4): ice accumulates above the equilibrium line
// altitude, flows downslope under its own weight plus basal sliding, and
// abrades bedrock in proportion to sliding velocity and ice thickness.
// Ported from original_source's erosion::glacial.
package glacial

import (
	"math"

	"geomorph/internal/tilemap"
)

// Params mirrors the glacial-relevant subset of the reference ErosionParams.
type Params struct {
	Timesteps             int
	Dt                    float32
	IceDeformCoefficient  float32
	IceSlidingCoefficient float32
	ErosionCoefficient    float32
	MassBalanceGradient   float32
	SnowlineElevation     *float32
	GlaciationTemperature float32
	GlenExponent          float32
	ErosionExponent       float32
}

// Stats reports erosion accumulated over the whole run.
type Stats struct {
	TotalEroded float64
	MaxErosion  float32
}

// State holds the bedrock, ice thickness, flux, and basal-sliding fields
// carried between timesteps.
type State struct {
	Bedrock         *tilemap.Grid[float32]
	IceThickness    *tilemap.Grid[float32]
	FluxX, FluxY    *tilemap.Grid[float32]
	SlidingVelocity *tilemap.Grid[float32]
}

func newState(h *tilemap.Grid[float32]) *State {
	width, height := h.Width, h.Height
	return &State{
		Bedrock:         h.Clone(),
		IceThickness:    tilemap.New[float32](width, height),
		FluxX:           tilemap.New[float32](width, height),
		FluxY:           tilemap.New[float32](width, height),
		SlidingVelocity: tilemap.New[float32](width, height),
	}
}

func (s *State) surface(x, y int) float32 {
	return s.Bedrock.Get(x, y) + s.IceThickness.Get(x, y)
}

// Simulate runs params.Timesteps of mass-balance/flux/continuity/erosion
// and writes the eroded bedrock back into h.
func Simulate(h, temperature, hardness *tilemap.Grid[float32], p Params) Stats {
	stats := Stats{}
	state := newState(h)

	ela := estimateELA(p, temperature, h)

	for i := 0; i < p.Timesteps; i++ {
		massBalance := calculateMassBalance(state, temperature, ela, p)
		calculateIceFlux(state, p)
		updateIceThickness(state, massBalance, p)
		stepStats := applyErosion(state, hardness, p)
		stats.TotalEroded += stepStats.TotalEroded
		if stepStats.MaxErosion > stats.MaxErosion {
			stats.MaxErosion = stepStats.MaxErosion
		}
	}

	h.Each(func(x, y int, _ float32) {
		h.Set(x, y, state.Bedrock.Get(x, y))
	})

	return stats
}

func estimateELA(p Params, temperature, h *tilemap.Grid[float32]) float32 {
	if p.SnowlineElevation != nil {
		return *p.SnowlineElevation
	}

	sumElevation := 0.0
	count := 0
	temperature.Each(func(x, y int, temp float32) {
		elev := h.Get(x, y)
		if math.Abs(float64(temp)) < 5.0 && elev > 0 {
			sumElevation += float64(elev)
			count++
		}
	})

	if count > 0 {
		return float32(sumElevation / float64(count))
	}
	return 2000.0
}

func calculateMassBalance(state *State, temperature *tilemap.Grid[float32], ela float32, p Params) *tilemap.Grid[float32] {
	width, height := state.Bedrock.Width, state.Bedrock.Height
	mb := tilemap.New[float32](width, height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			elevation := state.surface(x, y)
			temp := temperature.Get(x, y)

			if temp > p.GlaciationTemperature {
				if state.IceThickness.Get(x, y) > 0 {
					mb.Set(x, y, -p.MassBalanceGradient*10.0)
				}
				continue
			}

			elevationAboveELA := elevation - ela
			balance := elevationAboveELA * p.MassBalanceGradient
			if balance < -5 {
				balance = -5
			} else if balance > 5 {
				balance = 5
			}
			mb.Set(x, y, balance)
		}
	}

	return mb
}

func calculateIceFlux(state *State, p Params) {
	width, height := state.Bedrock.Width, state.Bedrock.Height
	n := float64(p.GlenExponent)
	a := float64(p.IceDeformCoefficient)
	uB := float64(p.IceSlidingCoefficient)
	const rhoG = 0.01 // scaled value for heightmap units, matches reference

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			h := state.IceThickness.Get(x, y)
			if h <= 0.1 {
				state.FluxX.Set(x, y, 0)
				state.FluxY.Set(x, y, 0)
				state.SlidingVelocity.Set(x, y, 0)
				continue
			}

			gradX, gradY := surfaceGradientAt(state.Bedrock, state.IceThickness, x, y)
			gradMag := math.Sqrt(float64(gradX*gradX + gradY*gradY))

			if gradMag < 1e-4 {
				state.FluxX.Set(x, y, 0)
				state.FluxY.Set(x, y, 0)
				state.SlidingVelocity.Set(x, y, 0)
				continue
			}

			hClamped := math.Min(float64(h), 500.0)

			deformCoeff := (2.0 * a) / (n + 2.0)
			rhoGN := math.Pow(rhoG, n)
			hN2 := math.Pow(hClamped, n+2.0)
			gradN1 := math.Pow(gradMag, n-1.0)
			deformTerm := math.Min(deformCoeff*rhoGN*hN2*gradN1, 1e6)

			slidingTerm := math.Min(uB*hClamped, 1e4)

			fluxMag := -(deformTerm + slidingTerm)
			if fluxMag < -1e6 {
				fluxMag = -1e6
			} else if fluxMag > 1e6 {
				fluxMag = 1e6
			}

			state.FluxX.Set(x, y, float32(fluxMag)*gradX)
			state.FluxY.Set(x, y, float32(fluxMag)*gradY)

			slidingVelocity := math.Min(uB*hClamped*gradMag, 100.0)
			state.SlidingVelocity.Set(x, y, float32(math.Abs(slidingVelocity)))
		}
	}
}

func updateIceThickness(state *State, massBalance *tilemap.Grid[float32], p Params) {
	width, height := state.Bedrock.Width, state.Bedrock.Height
	dt := p.Dt
	newIce := state.IceThickness.Clone()

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			h := state.IceThickness.Get(x, y)
			m := massBalance.Get(x, y)
			divQ := divergenceAt(state.FluxX, state.FluxY, x, y)

			dh := dt * (m - divQ)
			hNew := h + dh
			if hNew < 0 {
				hNew = 0
			}
			newIce.Set(x, y, hNew)
		}
	}

	state.IceThickness = newIce
}

func applyErosion(state *State, hardness *tilemap.Grid[float32], p Params) Stats {
	width, height := state.Bedrock.Width, state.Bedrock.Height
	dt := float64(p.Dt)
	k := float64(p.ErosionCoefficient)
	exp := float64(p.ErosionExponent)
	const maxErosionPerStep = 5.0

	stats := Stats{}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			uB := state.SlidingVelocity.Get(x, y)
			iceThickness := state.IceThickness.Get(x, y)

			if uB <= 0 || iceThickness < 10 {
				continue
			}

			iceFactor := math.Min(math.Max(float64(iceThickness)/200.0, 0.1), 1.5)
			erosionRate := k * math.Pow(float64(uB), exp) * iceFactor

			hardnessFactor := 1.0 - float64(hardness.Get(x, y))
			actualErosion := math.Min(erosionRate*hardnessFactor*dt, maxErosionPerStep)

			if actualErosion > 0 && !math.IsInf(actualErosion, 0) && !math.IsNaN(actualErosion) {
				current := state.Bedrock.Get(x, y)
				state.Bedrock.Set(x, y, current-float32(actualErosion))

				stats.TotalEroded += actualErosion
				if float32(actualErosion) > stats.MaxErosion {
					stats.MaxErosion = float32(actualErosion)
				}
			}
		}
	}

	return stats
}

func surfaceGradientAt(bedrock, ice *tilemap.Grid[float32], x, y int) (float32, float32) {
	width, height := bedrock.Width, bedrock.Height
	surface := func(x, y int) float32 { return bedrock.Get(x, y) + ice.Get(x, y) }

	xLeft := x - 1
	if x == 0 {
		xLeft = width - 1
	}
	xRight := x + 1
	if x == width-1 {
		xRight = 0
	}
	gradX := (surface(xRight, y) - surface(xLeft, y)) / 2.0

	var gradY float32
	if y == 0 {
		gradY = surface(x, 1) - surface(x, 0)
	} else if y == height-1 {
		gradY = surface(x, y) - surface(x, y-1)
	} else {
		gradY = (surface(x, y+1) - surface(x, y-1)) / 2.0
	}

	return gradX, gradY
}

func divergenceAt(fluxX, fluxY *tilemap.Grid[float32], x, y int) float32 {
	width, height := fluxX.Width, fluxX.Height

	xLeft := x - 1
	if x == 0 {
		xLeft = width - 1
	}
	xRight := x + 1
	if x == width-1 {
		xRight = 0
	}
	dFxDx := (fluxX.Get(xRight, y) - fluxX.Get(xLeft, y)) / 2.0

	var dFyDy float32
	if y == 0 {
		dFyDy = fluxY.Get(x, 1) - fluxY.Get(x, 0)
	} else if y == height-1 {
		dFyDy = fluxY.Get(x, y) - fluxY.Get(x, y-1)
	} else {
		dFyDy = (fluxY.Get(x, y+1) - fluxY.Get(x, y-1)) / 2.0
	}

	return dFxDx + dFyDy
}

// IceThickness runs 100 settling iterations and returns the equilibrium ice
// field without mutating h — used for visualization/diagnostics.
func IceThickness(h, temperature *tilemap.Grid[float32], p Params) *tilemap.Grid[float32] {
	state := newState(h)
	ela := estimateELA(p, temperature, h)

	for i := 0; i < 100; i++ {
		massBalance := calculateMassBalance(state, temperature, ela, p)
		calculateIceFlux(state, p)
		updateIceThickness(state, massBalance, p)
	}

	return state.IceThickness
}
