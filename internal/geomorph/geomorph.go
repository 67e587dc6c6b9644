// Package geomorph scores how closely an eroded heightmap resembles real
// terrain (C9, spec §4.8): quantitative hydrological and geomorphometric
// laws are measured and combined into a single weighted realism score.
// Ported from original_source's erosion::geomorphometry (Results fields and
// realism_score are a direct port; analyze() follows the same metric
// definitions using this module's flow graph instead of re-deriving D8
// locally).
package geomorph

import (
	"math"

	"github.com/montanaflynn/stats"

	"geomorph/internal/flow"
	"geomorph/internal/tilemap"
)

// Results holds every geomorphometric measurement taken of a heightmap.
type Results struct {
	BifurcationRatio   float32
	DrainageDensity    float32
	HacksLawExponent   float32
	ConcavityIndex     float32
	FractalDimension   float32
	StreamLengthRatio  float32
	SinuosityIndex     float32
	DrainageTexture    float32
	PitCount           int
	StreamOrders       map[int]int
	TotalStreamLength  int
	StreamsByOrder     []int
	AvgLengthByOrder   []float32
	LongitudinalProfile [][2]float32
	SlopeAreaData       [][2]float32

	HypsometricIntegral  float32
	MoransI              float32
	SlopeSkewness        float32
	SurfaceRoughness     float32
	MeanPlanCurvature    float32
	MeanProfileCurvature float32
	DrainageAreaExponent float32
	KnickpointDensity    float32
	RelativeRelief       float32
	GeomorphonCounts     [10]int
}

// RealismScore combines every metric into a 0-100 composite, ported
// verbatim (weights and thresholds unchanged) from the reference
// realism_score.
func (r *Results) RealismScore() float32 {
	score := float32(0)
	tests := float32(0)

	switch {
	case r.BifurcationRatio >= 3.0 && r.BifurcationRatio <= 5.0:
		score += 10.0
	case r.BifurcationRatio >= 2.5 && r.BifurcationRatio <= 7.0:
		score += 7.0
	case r.BifurcationRatio >= 2.0 && r.BifurcationRatio <= 15.0:
		score += 4.0
	case r.BifurcationRatio > 0.0:
		score += 2.0
	}
	tests += 10.0

	switch {
	case r.HacksLawExponent >= 0.5 && r.HacksLawExponent <= 0.65:
		score += 10.0
	case r.HacksLawExponent >= 0.45 && r.HacksLawExponent <= 0.7:
		score += 7.0
	case r.HacksLawExponent >= 0.35 && r.HacksLawExponent <= 0.8:
		score += 4.0
	}
	tests += 10.0

	switch {
	case r.ConcavityIndex >= 0.4 && r.ConcavityIndex <= 0.7:
		score += 10.0
	case r.ConcavityIndex >= 0.3 && r.ConcavityIndex <= 0.8:
		score += 7.0
	case r.ConcavityIndex >= 0.25 && r.ConcavityIndex <= 0.85:
		score += 5.0
	case r.ConcavityIndex >= 0.15 && r.ConcavityIndex <= 0.9:
		score += 3.0
	case r.ConcavityIndex > 0.0:
		score += 2.0
	case r.ConcavityIndex > -0.5:
		score += 1.0
	}
	tests += 10.0

	switch {
	case r.FractalDimension >= 1.7 && r.FractalDimension <= 2.0:
		score += 10.0
	case r.FractalDimension >= 1.65 && r.FractalDimension <= 2.1:
		score += 8.0
	case r.FractalDimension >= 1.5:
		score += 5.0
	}
	tests += 10.0

	switch {
	case r.PitCount == 0:
		score += 10.0
	case r.PitCount < 10:
		score += 7.0
	case r.PitCount < 50:
		score += 5.0
	}
	tests += 10.0

	switch {
	case r.HypsometricIntegral >= 0.3 && r.HypsometricIntegral <= 0.6:
		score += 5.0
	case r.HypsometricIntegral >= 0.2 && r.HypsometricIntegral <= 0.7:
		score += 3.5
	case r.HypsometricIntegral >= 0.1 && r.HypsometricIntegral <= 0.8:
		score += 2.0
	}
	tests += 5.0

	switch {
	case r.MoransI >= 0.85:
		score += 10.0
	case r.MoransI >= 0.7:
		score += 7.0
	case r.MoransI >= 0.5:
		score += 5.0
	}
	tests += 10.0

	switch {
	case r.SlopeSkewness > 0.5:
		score += 5.0
	case r.SlopeSkewness > 0.0:
		score += 2.5
	}
	tests += 5.0

	absPlan := float32(math.Abs(float64(r.MeanPlanCurvature)))
	switch {
	case absPlan < 0.5:
		score += 5.0
	case absPlan < 1.0:
		score += 2.5
	}
	tests += 5.0

	switch {
	case r.MeanProfileCurvature < 0.0:
		score += 5.0
	case r.MeanProfileCurvature < 0.5:
		score += 2.5
	}
	tests += 5.0

	switch {
	case r.DrainageAreaExponent >= 0.35 && r.DrainageAreaExponent <= 0.6:
		score += 5.0
	case r.DrainageAreaExponent >= 0.2 && r.DrainageAreaExponent <= 1.0:
		score += 2.5
	case r.DrainageAreaExponent > 0.0:
		score += 1.0
	}
	tests += 5.0

	switch {
	case r.KnickpointDensity < 0.05:
		score += 5.0
	case r.KnickpointDensity < 0.15:
		score += 2.5
	case r.KnickpointDensity < 0.3:
		score += 1.0
	}
	tests += 5.0

	switch {
	case r.RelativeRelief >= 100.0:
		score += 5.0
	case r.RelativeRelief >= 50.0:
		score += 2.5
	}
	tests += 5.0

	valleys := float32(r.GeomorphonCounts[4])
	ridges := float32(r.GeomorphonCounts[1])
	pits := float32(r.GeomorphonCounts[5])
	total := 0
	for _, c := range r.GeomorphonCounts {
		total += c
	}
	if total > 0 {
		ratio := float32(0)
		if ridges > 0 {
			ratio = valleys / ridges
		}
		pitFraction := pits / float32(total)
		switch {
		case ratio >= 0.5 && ratio <= 2.5 && pitFraction < 0.15:
			score += 5.0
		case ratio >= 0.3 && ratio <= 4.0 && pitFraction < 0.25:
			score += 2.5
		case ratio > 0.0:
			score += 1.0
		}
	}
	tests += 5.0

	return (score / tests) * 100.0
}

// Analyze runs the full geomorphometry suite on h, classifying drainage
// cells by flowThreshold flow accumulation.
func Analyze(h *tilemap.Grid[float32], flowThreshold float32) *Results {
	r := &Results{StreamOrders: map[int]int{}}
	width, height := h.Width, h.Height

	dir := flow.Direction(h)
	acc := flow.Accumulate(h, dir)

	r.PitCount = flow.PitCount(h)
	r.RelativeRelief = relativeRelief(h)
	r.HypsometricIntegral = hypsometricIntegral(h)
	r.MoransI = moransI(h)
	r.SlopeSkewness = slopeSkewness(h)
	r.SurfaceRoughness = surfaceRoughness(h)
	planCurv, profCurv := meanCurvatures(h, dir)
	r.MeanPlanCurvature = planCurv
	r.MeanProfileCurvature = profCurv
	r.GeomorphonCounts = geomorphonCounts(h)

	network := streamNetwork(h, dir, acc, flowThreshold)
	segments := traceSegments(dir, network, width, height)

	r.TotalStreamLength = totalLength(segments)
	r.DrainageDensity = float32(r.TotalStreamLength) / float32(width*height)
	r.SinuosityIndex = meanSinuosity(segments)

	orders, streamsByOrder, avgLenByOrder := strahlerOrder(segments, dir, width, height)
	r.StreamOrders = orders
	r.StreamsByOrder = streamsByOrder
	r.AvgLengthByOrder = avgLenByOrder
	r.BifurcationRatio = bifurcationRatio(streamsByOrder)
	r.StreamLengthRatio = streamLengthRatio(avgLenByOrder)

	areas, lengths := hackData(segments, acc)
	r.HacksLawExponent = logLogSlope(areas, lengths)

	slopeArea := slopeAreaData(segments, h, acc)
	r.SlopeAreaData = slopeArea
	r.ConcavityIndex = concavityIndex(slopeArea)

	r.FractalDimension = boxCountingDimension(network, width, height)
	r.DrainageAreaExponent = drainageAreaExponent(acc, width, height)
	r.KnickpointDensity = knickpointDensity(segments, h)
	r.LongitudinalProfile = longestProfile(segments, h)

	return r
}

func relativeRelief(h *tilemap.Grid[float32]) float32 {
	minV, maxV := float32(math.MaxFloat32), float32(-math.MaxFloat32)
	h.Each(func(x, y int, v float32) {
		if v > maxV {
			maxV = v
		}
		if v < minV {
			minV = v
		}
	})
	return maxV - minV
}

func hypsometricIntegral(h *tilemap.Grid[float32]) float32 {
	var elevs []float64
	minV, maxV := float32(math.MaxFloat32), float32(-math.MaxFloat32)
	h.Each(func(x, y int, v float32) {
		if v >= 0 {
			elevs = append(elevs, float64(v))
			if v > maxV {
				maxV = v
			}
			if v < minV {
				minV = v
			}
		}
	})
	if len(elevs) == 0 || maxV <= minV {
		return 0
	}
	mean, _ := stats.Mean(elevs)
	return float32((mean - float64(minV)) / float64(maxV-minV))
}

func moransI(h *tilemap.Grid[float32]) float32 {
	width, height := h.Width, h.Height
	var values []float64
	h.Each(func(x, y int, v float32) { values = append(values, float64(v)) })
	mean, _ := stats.Mean(values)

	var num, den float64
	var weightSum float64
	idx := 0
	h.Each(func(x, y int, v float32) {
		vi := float64(v) - mean
		den += vi * vi
		for _, d := range []struct{ dx, dy int }{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			nx := ((x+d.dx)%width + width) % width
			ny := y + d.dy
			if ny < 0 || ny >= height {
				continue
			}
			vj := float64(h.Get(nx, ny)) - mean
			num += vi * vj
			weightSum++
		}
		idx++
	})
	n := float64(width * height)
	if den == 0 || weightSum == 0 {
		return 0
	}
	return float32((n / weightSum) * (num / den))
}

func slopeSkewness(h *tilemap.Grid[float32]) float32 {
	var slopes []float64
	width, height := h.Width, h.Height
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gx, gy := tilemap.GradientAt(h, float64(x), float64(y))
			slopes = append(slopes, math.Sqrt(gx*gx+gy*gy))
		}
	}
	mean, _ := stats.Mean(slopes)
	sd, _ := stats.StandardDeviation(slopes)
	if sd == 0 {
		return 0
	}
	var sum float64
	for _, s := range slopes {
		d := (s - mean) / sd
		sum += d * d * d
	}
	return float32(sum / float64(len(slopes)))
}

func surfaceRoughness(h *tilemap.Grid[float32]) float32 {
	width, height := h.Width, h.Height
	var devs []float64
	for y := 1; y < height-1; y++ {
		for x := 0; x < width; x++ {
			var neighborhood []float64
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx := ((x+dx)%width + width) % width
					neighborhood = append(neighborhood, float64(h.Get(nx, y+dy)))
				}
			}
			mean, _ := stats.Mean(neighborhood)
			devs = append(devs, math.Abs(float64(h.Get(x, y))-mean))
		}
	}
	mean, _ := stats.Mean(devs)
	return float32(mean)
}

func meanCurvatures(h *tilemap.Grid[float32], dir *tilemap.Grid[uint8]) (float32, float32) {
	width, height := h.Width, h.Height
	var plan, profile []float64

	for y := 1; y < height-1; y++ {
		for x := 0; x < width; x++ {
			xl := ((x-1)%width + width) % width
			xr := (x + 1) % width
			zx := (h.Get(xr, y) - h.Get(xl, y)) / 2.0
			zxx := h.Get(xr, y) - 2*h.Get(x, y) + h.Get(xl, y)
			zy := (h.Get(x, y+1) - h.Get(x, y-1)) / 2.0
			zyy := h.Get(x, y+1) - 2*h.Get(x, y) + h.Get(x, y-1)

			p := float64(zx*zx + zy*zy)
			if p < 1e-6 {
				continue
			}
			planCurv := float64(zxx+zyy) / 2.0
			profCurv := float64(zx*zx*zxx+zy*zy*zyy) / p

			plan = append(plan, planCurv)
			profile = append(profile, profCurv)
		}
	}

	pm, _ := stats.Mean(plan)
	fm, _ := stats.Mean(profile)
	return float32(pm), float32(fm)
}

func geomorphonCounts(h *tilemap.Grid[float32]) [10]int {
	var counts [10]int
	width, height := h.Width, h.Height

	for y := 1; y < height-1; y++ {
		for x := 0; x < width; x++ {
			center := h.Get(x, y)
			higher, lower := 0, 0
			for d := 0; d < 8; d++ {
				ny := y + flow.DY[d]
				nx := ((x+flow.DX[d])%width + width) % width
				nv := h.Get(nx, ny)
				if nv > center+0.5 {
					higher++
				} else if nv < center-0.5 {
					lower++
				}
			}
			switch {
			case higher == 0 && lower >= 6:
				counts[0]++ // summit
			case higher >= 1 && higher <= 2 && lower >= 5:
				counts[1]++ // ridge
			case higher >= 3 && lower >= 3:
				counts[2]++ // spur / shoulder
			case higher == lower:
				counts[3]++ // slope (flat-ish)
			case lower >= 1 && lower <= 2 && higher >= 5:
				counts[4]++ // valley
			case lower == 0 && higher >= 6:
				counts[5]++ // pit
			case higher == 0 && lower == 0:
				counts[6]++ // flat
			default:
				counts[7]++ // hollow/other
			}
		}
	}
	return counts
}

func streamNetwork(h *tilemap.Grid[float32], dir *tilemap.Grid[uint8], acc *tilemap.Grid[float32], threshold float32) *tilemap.Grid[bool] {
	width, height := h.Width, h.Height
	network := tilemap.NewFilled[bool](width, height, false)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if acc.Get(x, y) >= threshold && h.Get(x, y) >= 0 {
				network.Set(x, y, true)
			}
		}
	}
	return network
}
