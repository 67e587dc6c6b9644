// Package river implements trace-based river erosion with sediment
// transport (C3, spec §4.2): depressions fill for connectivity, barriers
// along river paths are breached, headwater sources are found, and each
// source is traced to the sea carving a V-shaped channel and depositing
// floodplains/deltas. Ported from original_source's erosion::rivers
// (erode_rivers / trace_river / breach_river_barriers).
package river

import (
	"math"

	"geomorph/internal/flow"
	"geomorph/internal/tilemap"
)

// Params mirrors the reference RiverErosionParams.
type Params struct {
	SourceMinAccumulation float32
	SourceMinElevation    float32
	CapacityFactor        float32
	ErosionRate           float32
	DepositionRate        float32
	MaxErosion            float32
	MaxDeposition         float32
	ChannelWidth          int
	Passes                int
}

// DefaultParams matches RiverErosionParams::default().
func DefaultParams() Params {
	return Params{
		SourceMinAccumulation: 100.0,
		SourceMinElevation:    50.0,
		CapacityFactor:        10.0,
		ErosionRate:           0.2,
		DepositionRate:        0.3,
		MaxErosion:            12.0,
		MaxDeposition:         15.0,
		ChannelWidth:          2,
		Passes:                3,
	}
}

// Stats accumulates erosion/deposition totals across a river run.
type Stats struct {
	TotalEroded    float64
	TotalDeposited float64
	MaxErosion     float32
	MaxDeposition  float32
	RiverLengths   []int
}

// Erode carves a drainage network into h using hardness as a per-cell
// erosion resistance (0 = soft; erosion scales by 1-hardness, floored at
// 0.1, so even hardness 1 still erodes at a tenth of the rate). It fills
// depressions, conditions h to the filled surface, breaches barriers along
// high-accumulation paths, then traces each headwater source downstream for
// Params.Passes passes.
func Erode(h, hardness *tilemap.Grid[float32], params Params) Stats {
	width, height := h.Width, h.Height
	stats := Stats{}

	filled := flow.FillDepressions(h)
	h.Each(func(x, y int, v float32) {
		h.Set(x, y, filled.Get(x, y))
	})

	dir := flow.Direction(filled)
	acc := flow.Accumulate(filled, dir)

	breachBarriers(h, dir, acc, params.SourceMinAccumulation)

	sources := findSources(h, acc, params)

	visited := tilemap.NewFilled[bool](width, height, false)
	for pass := 0; pass < params.Passes; pass++ {
		visited.Fill(false)
		for _, s := range sources {
			if !visited.Get(s.x, s.y) {
				traceRiver(h, dir, acc, hardness, s.x, s.y, params, visited, &stats)
			}
		}
	}

	return stats
}

type point struct{ x, y int }

func findSources(h, acc *tilemap.Grid[float32], params Params) []point {
	width, height := h.Width, h.Height
	type scored struct {
		p   point
		acc float32
	}
	var candidates []scored

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			elev := h.Get(x, y)
			a := acc.Get(x, y)
			if elev >= params.SourceMinElevation && a >= params.SourceMinAccumulation {
				if a < params.SourceMinAccumulation*3.0 {
					candidates = append(candidates, scored{point{x, y}, a})
				}
			}
		}
	}

	for i := 1; i < len(candidates); i++ {
		j := i
		for j > 0 && candidates[j-1].acc < candidates[j].acc {
			candidates[j-1], candidates[j] = candidates[j], candidates[j-1]
			j--
		}
	}

	sources := make([]point, len(candidates))
	for i, c := range candidates {
		sources[i] = c.p
	}
	return sources
}

func breachBarriers(h *tilemap.Grid[float32], dir *tilemap.Grid[uint8], acc *tilemap.Grid[float32], threshold float32) {
	const minHeight = 0.1
	const maxPasses = 50
	width, height := h.Width, h.Height

	type cell struct {
		x, y int
		elev float32
	}
	var cells []cell
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if acc.Get(x, y) >= threshold && h.Get(x, y) > 0 {
				cells = append(cells, cell{x, y, h.Get(x, y)})
			}
		}
	}
	for i := 1; i < len(cells); i++ {
		j := i
		for j > 0 && cells[j-1].elev < cells[j].elev {
			cells[j-1], cells[j] = cells[j], cells[j-1]
			j--
		}
	}

	for pass := 0; pass < maxPasses; pass++ {
		anyChanged := false
		for _, c := range cells {
			hv := h.Get(c.x, c.y)
			if hv < 0 {
				continue
			}
			if dir.Get(c.x, c.y) == flow.NoFlow {
				continue
			}
			nx, ny, _ := flow.Downstream(dir, c.x, c.y)
			nh := h.Get(nx, ny)
			if nh >= hv && nh > minHeight {
				newH := float32(math.Max(float64(hv-0.5), minHeight))
				if newH < nh {
					h.Set(nx, ny, newH)
					anyChanged = true
				}
			}
		}
		if !anyChanged {
			break
		}
	}
}

func calculateRiverWidth(flowVal float32, baseWidth int, sourceThreshold float32) int {
	ratio := float64(flowVal / sourceThreshold)
	multiplier := math.Sqrt(ratio)
	dynamic := int(math.Round(float64(baseWidth) * multiplier))
	if dynamic < 1 {
		return 1
	}
	if dynamic > 8 {
		return 8
	}
	return dynamic
}

func getPerpendicular(flowDir uint8) (int, int) {
	switch flowDir {
	case 0:
		return 1, 0
	case 1:
		return 1, 1
	case 2:
		return 0, 1
	case 3:
		return -1, 1
	case 4:
		return -1, 0
	case 5:
		return -1, -1
	case 6:
		return 0, -1
	case 7:
		return 1, -1
	default:
		return 1, 0
	}
}

func wrapX(x, width int) int { return ((x % width) + width) % width }
func clampY(y, height int) int {
	if y < 0 {
		return 0
	}
	if y >= height {
		return height - 1
	}
	return y
}

func applyErosion(h *tilemap.Grid[float32], x, y int, amount float32, flowDir uint8, baseWidth int, flowVal, sourceThreshold float32) {
	const minRiverHeight = 0.1
	width, height := h.Width, h.Height
	halfWidth := calculateRiverWidth(flowVal, baseWidth, sourceThreshold)
	perpDX, perpDY := getPerpendicular(flowDir)

	for i := -halfWidth; i <= halfWidth; i++ {
		nx := wrapX(x+perpDX*i, width)
		ny := clampY(y+perpDY*i, height)

		dist := math.Abs(float64(i))
		falloff := 1.0 - dist/(float64(halfWidth)+1.0)
		localErosion := float64(amount) * falloff * falloff

		current := h.Get(nx, ny)
		maxPossible := math.Max(float64(current-minRiverHeight), 0.0)
		actual := math.Min(localErosion, maxPossible)
		h.Set(nx, ny, current-float32(actual))
	}
}

func applyDeposition(h *tilemap.Grid[float32], x, y int, amount float32, baseWidth int, flowDir uint8, flowVal, sourceThreshold float32) {
	width, height := h.Width, h.Height
	halfWidth := calculateRiverWidth(flowVal, baseWidth, sourceThreshold)
	perpDX, perpDY := getPerpendicular(flowDir)

	innerRadius := halfWidth + 1
	outerRadius := halfWidth + 3

	for i := -outerRadius; i <= outerRadius; i++ {
		if abs(i) <= innerRadius {
			continue
		}
		nx := wrapX(x+perpDX*i, width)
		ny := clampY(y+perpDY*i, height)

		distFromChannel := float64(abs(i) - innerRadius)
		falloff := 1.0 - distFromChannel/float64(outerRadius-innerRadius+1)
		localDeposit := float64(amount) * falloff * 0.3

		current := h.Get(nx, ny)
		h.Set(nx, ny, current+float32(localDeposit))
	}
}

func applyDeltaDeposition(h *tilemap.Grid[float32], x, y int, amount float32, flowDir uint8) {
	width, height := h.Width, h.Height
	flowDX, flowDY := 0, 1
	if flowDir < 8 {
		flowDX, flowDY = flow.DX[flowDir], flow.DY[flowDir]
	}

	const fanRadius = 4
	for dy := 0; dy <= fanRadius; dy++ {
		for dx := -fanRadius; dx <= fanRadius; dx++ {
			forward := dx*flowDX + dy*flowDY
			if forward < 0 {
				continue
			}
			distSq := dx*dx + dy*dy
			if distSq > fanRadius*fanRadius {
				continue
			}
			nx := wrapX(x+dx, width)
			ny := clampY(y+dy, height)

			dist := math.Sqrt(float64(distSq))
			falloff := 1.0 - dist/(fanRadius+1.0)
			localDeposit := float64(amount) * falloff * 0.5

			current := h.Get(nx, ny)
			if current < 0 {
				h.Set(nx, ny, float32(math.Min(float64(current)+localDeposit, 5.0)))
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func traceRiver(h *tilemap.Grid[float32], dir *tilemap.Grid[uint8], acc, hardness *tilemap.Grid[float32], startX, startY int, params Params, visited *tilemap.Grid[bool], stats *Stats) {
	width, height := h.Width, h.Height
	const seaLevel = 0.0

	x, y := startX, startY
	sediment := float32(0)
	flowVal := acc.Get(startX, startY)

	maxSteps := width * height
	steps := 0

	for step := 0; step < maxSteps; step++ {
		steps++
		visited.Set(x, y, true)

		currentHeight := h.Get(x, y)
		d := dir.Get(x, y)

		if currentHeight < seaLevel {
			if sediment > 0 {
				deposit := float32(math.Min(float64(sediment), float64(params.MaxDeposition)))
				applyDeltaDeposition(h, x, y, deposit, d)
				stats.TotalDeposited += float64(deposit)
			}
			break
		}

		if d == flow.NoFlow {
			break
		}

		nx, ny, _ := flow.Downstream(dir, x, y)
		nextHeight := h.Get(nx, ny)

		distance := 1.0
		if d%2 == 1 {
			distance = 1.414
		}
		slope := math.Max((float64(currentHeight)-float64(nextHeight))/distance, 0.0)

		flowVal = acc.Get(x, y)
		velocity := math.Min(1.0+slope*2.0, 10.0)

		minCapacity := float64(params.CapacityFactor) * math.Sqrt(float64(flowVal)) * 0.01
		capacity := math.Max(float64(params.CapacityFactor)*math.Sqrt(float64(flowVal))*slope*velocity, minCapacity)

		rockHardness := hardness.Get(x, y)
		hardnessFactor := math.Max(1.0-float64(rockHardness), 0.1)

		if float64(sediment) < capacity {
			erosionPotential := (capacity - float64(sediment)) * float64(params.ErosionRate) * hardnessFactor
			maxSafeErosion := math.Max(float64(currentHeight)-float64(nextHeight)-0.1, 0.0)
			erosion := math.Min(math.Min(erosionPotential, maxSafeErosion), float64(params.MaxErosion))

			if erosion > 0 {
				applyErosion(h, x, y, float32(erosion), d, params.ChannelWidth, flowVal, params.SourceMinAccumulation)
				sediment += float32(erosion)
				stats.TotalEroded += erosion
				if float32(erosion) > stats.MaxErosion {
					stats.MaxErosion = float32(erosion)
				}
			}
		} else {
			depositAmount := (float64(sediment) - capacity) * float64(params.DepositionRate)
			deposit := math.Min(math.Min(depositAmount, float64(sediment)), float64(params.MaxDeposition))

			if deposit > 0 {
				applyDeposition(h, x, y, float32(deposit), params.ChannelWidth, d, flowVal, params.SourceMinAccumulation)
				sediment -= float32(deposit)
				stats.TotalDeposited += deposit
				if float32(deposit) > stats.MaxDeposition {
					stats.MaxDeposition = float32(deposit)
				}
			}
		}

		const minDrop = 0.5
		currentHAfter := h.Get(x, y)
		nextH := h.Get(nx, ny)
		if nextH >= currentHAfter-minDrop && nextH > 0.1 {
			newH := float32(math.Max(float64(currentHAfter-minDrop), 0.1))
			if newH < nextH {
				h.Set(nx, ny, newH)
			}
		}

		x, y = nx, ny
	}

	stats.RiverLengths = append(stats.RiverLengths, steps)
}
