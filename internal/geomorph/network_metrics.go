package geomorph

import (
	"math"
	"sort"

	"geomorph/internal/flow"
	"geomorph/internal/tilemap"
)

type cell struct{ x, y int }

// segment is one drainage-network reach traced from a headwater down to a
// confluence or the sea.
type segment struct {
	cells []cell
}

// minSegmentCells discards traced segments shorter than this many cells as
// noise before they reach Strahler ordering: short spurious reaches from
// classification artifacts otherwise drag bifurcationRatio outside the
// natural 3-5 range Horton's law expects.
const minSegmentCells = 9

// traceSegments walks every headwater cell of the classified network
// (a network cell with no upstream network neighbour) downstream until it
// reaches a non-network cell or another already-visited network cell.
func traceSegments(dir *tilemap.Grid[uint8], network *tilemap.Grid[bool], width, height int) []segment {
	isUpstreamOf := func(x, y int) bool {
		for d := 0; d < 8; d++ {
			ny := y + flow.DY[d]
			nx := ((x+flow.DX[d])%width + width) % width
			if ny < 0 || ny >= height || !network.Get(nx, ny) {
				continue
			}
			nx2, ny2, ok := flow.Downstream(dir, nx, ny)
			if ok && nx2 == x && ny2 == y {
				return true
			}
		}
		return false
	}

	visited := tilemap.NewFilled[bool](width, height, false)
	var segments []segment

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !network.Get(x, y) || isUpstreamOf(x, y) {
				continue
			}

			var cells []cell
			cx, cy := x, y
			for !visited.Get(cx, cy) && network.Get(cx, cy) {
				visited.Set(cx, cy, true)
				cells = append(cells, cell{cx, cy})
				nx, ny, ok := flow.Downstream(dir, cx, cy)
				if !ok || !network.Get(nx, ny) {
					break
				}
				cx, cy = nx, ny
			}
			if len(cells) >= minSegmentCells {
				segments = append(segments, segment{cells})
			}
		}
	}

	return segments
}

func totalLength(segments []segment) int {
	total := 0
	for _, s := range segments {
		total += len(s.cells)
	}
	return total
}

func meanSinuosity(segments []segment) float32 {
	if len(segments) == 0 {
		return 1.0
	}
	var total float64
	count := 0
	for _, s := range segments {
		if len(s.cells) < 2 {
			continue
		}
		start, end := s.cells[0], s.cells[len(s.cells)-1]
		straight := math.Hypot(float64(end.x-start.x), float64(end.y-start.y))
		if straight < 1e-6 {
			continue
		}
		total += float64(len(s.cells)-1) / straight
		count++
	}
	if count == 0 {
		return 1.0
	}
	return float32(total / float64(count))
}

// strahlerOrder assigns each segment a Strahler order by repeatedly merging
// confluent segments of equal order; two segments of order n meeting raise
// the downstream segment to n+1, otherwise the downstream segment takes the
// max of its tributaries.
func strahlerOrder(segments []segment, dir *tilemap.Grid[uint8], width, height int) (map[int]int, []int, []float32) {
	order := make([]int, len(segments))
	for i := range order {
		order[i] = 1
	}

	endpointOwner := map[cell]int{}
	for i, s := range segments {
		if len(s.cells) == 0 {
			continue
		}
		endpointOwner[s.cells[len(s.cells)-1]] = i
	}

	startOwner := map[cell][]int{}
	for i, s := range segments {
		if len(s.cells) == 0 {
			continue
		}
		startOwner[s.cells[0]] = append(startOwner[s.cells[0]], i)
	}

	changed := true
	for iter := 0; iter < len(segments)+1 && changed; iter++ {
		changed = false
		for i, s := range segments {
			if len(s.cells) == 0 {
				continue
			}
			end := s.cells[len(s.cells)-1]
			tributaries := startOwner[end]
			if len(tributaries) < 2 {
				continue
			}
			maxOrder, countMax := 0, 0
			for _, t := range tributaries {
				if order[t] > maxOrder {
					maxOrder = order[t]
					countMax = 1
				} else if order[t] == maxOrder {
					countMax++
				}
			}
			newOrder := maxOrder
			if countMax >= 2 {
				newOrder = maxOrder + 1
			}
			if order[i] < newOrder {
				order[i] = newOrder
				changed = true
			}
		}
	}

	orderCounts := map[int]int{}
	lengthByOrder := map[int][]int{}
	for i, s := range segments {
		o := order[i]
		orderCounts[o]++
		lengthByOrder[o] = append(lengthByOrder[o], len(s.cells))
	}

	maxOrder := 0
	for o := range orderCounts {
		if o > maxOrder {
			maxOrder = o
		}
	}

	streamsByOrder := make([]int, maxOrder)
	avgLenByOrder := make([]float32, maxOrder)
	for o := 1; o <= maxOrder; o++ {
		streamsByOrder[o-1] = orderCounts[o]
		lengths := lengthByOrder[o]
		if len(lengths) == 0 {
			continue
		}
		sum := 0
		for _, l := range lengths {
			sum += l
		}
		avgLenByOrder[o-1] = float32(sum) / float32(len(lengths))
	}

	return orderCounts, streamsByOrder, avgLenByOrder
}

// bifurcationRatio is Horton's law Rb: the ratio of stream counts between
// consecutive orders, averaged across all adjacent order pairs.
func bifurcationRatio(streamsByOrder []int) float32 {
	if len(streamsByOrder) < 2 {
		return 0
	}
	var ratios []float64
	for i := 0; i < len(streamsByOrder)-1; i++ {
		if streamsByOrder[i+1] == 0 {
			continue
		}
		ratios = append(ratios, float64(streamsByOrder[i])/float64(streamsByOrder[i+1]))
	}
	if len(ratios) == 0 {
		return 0
	}
	var sum float64
	for _, r := range ratios {
		sum += r
	}
	return float32(sum / float64(len(ratios)))
}

// streamLengthRatio is Horton's law Rl: the ratio of mean segment length
// between consecutive orders.
func streamLengthRatio(avgLenByOrder []float32) float32 {
	if len(avgLenByOrder) < 2 {
		return 0
	}
	var ratios []float64
	for i := 1; i < len(avgLenByOrder); i++ {
		if avgLenByOrder[i-1] == 0 {
			continue
		}
		ratios = append(ratios, float64(avgLenByOrder[i]/avgLenByOrder[i-1]))
	}
	if len(ratios) == 0 {
		return 0
	}
	var sum float64
	for _, r := range ratios {
		sum += r
	}
	return float32(sum / float64(len(ratios)))
}

// hackData returns (upstream area, downstream length) pairs per segment,
// used to fit Hack's law L ∝ A^h.
func hackData(segments []segment, acc *tilemap.Grid[float32]) ([]float64, []float64) {
	var areas, lengths []float64
	for _, s := range segments {
		if len(s.cells) < 2 {
			continue
		}
		head := s.cells[0]
		areas = append(areas, float64(acc.Get(head.x, head.y)))
		lengths = append(lengths, float64(len(s.cells)))
	}
	return areas, lengths
}

// logLogSlope fits log(y) = m*log(x) + b via least squares and returns m.
// montanaflynn/stats.LinearRegression fits and interpolates a curve rather
// than exposing the fitted slope directly, so the slope itself is
// hand-rolled here — the one place this package doesn't lean on the stats
// library.
func logLogSlope(xs, ys []float64) float32 {
	var lx, ly []float64
	for i := range xs {
		if xs[i] <= 0 || ys[i] <= 0 {
			continue
		}
		lx = append(lx, math.Log(xs[i]))
		ly = append(ly, math.Log(ys[i]))
	}
	return float32(leastSquaresSlope(lx, ly))
}

func leastSquaresSlope(xs, ys []float64) float64 {
	n := float64(len(xs))
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// slopeAreaData returns (area, elevation drop to the next cell) points for
// Flint's law; the values are not log-transformed.
func slopeAreaData(segments []segment, h *tilemap.Grid[float32], acc *tilemap.Grid[float32]) [][2]float32 {
	var points [][2]float32
	for _, s := range segments {
		for i := 0; i < len(s.cells)-1; i++ {
			a, b := s.cells[i], s.cells[i+1]
			elevDiff := h.Get(a.x, a.y) - h.Get(b.x, b.y)
			if elevDiff <= 0 {
				continue
			}
			area := acc.Get(a.x, a.y)
			points = append(points, [2]float32{area, elevDiff})
		}
	}
	return points
}

// concavityIndex fits the slope-area power law S ∝ A^(-θ) and returns θ
// (Flint's law concavity).
func concavityIndex(points [][2]float32) float32 {
	var areas, slopes []float64
	for _, p := range points {
		if p[0] > 0 && p[1] > 0 {
			areas = append(areas, float64(p[0]))
			slopes = append(slopes, float64(p[1]))
		}
	}
	return -logLogSlope(areas, slopes)
}

// boxCountingDimension estimates the fractal dimension of the network mask
// via box counting across a set of box sizes.
func boxCountingDimension(network *tilemap.Grid[bool], width, height int) float32 {
	sizes := []int{2, 4, 8, 16}
	var logSizes, logCounts []float64

	for _, size := range sizes {
		if size >= width || size >= height {
			continue
		}
		count := 0
		for by := 0; by < height; by += size {
			for bx := 0; bx < width; bx += size {
				found := false
				for y := by; y < by+size && y < height && !found; y++ {
					for x := bx; x < bx+size && x < width; x++ {
						if network.Get(x, y) {
							found = true
							break
						}
					}
				}
				if found {
					count++
				}
			}
		}
		if count > 0 {
			logSizes = append(logSizes, math.Log(1.0/float64(size)))
			logCounts = append(logCounts, math.Log(float64(count)))
		}
	}

	if len(logSizes) < 2 {
		return 0
	}
	return float32(leastSquaresSlope(logSizes, logCounts))
}

// drainageAreaExponent fits the cumulative-area exceedance distribution
// P(A > a) ∝ a^-τ across all cells.
func drainageAreaExponent(acc *tilemap.Grid[float32], width, height int) float32 {
	var areas []float64
	acc.Each(func(x, y int, v float32) { areas = append(areas, float64(v)) })

	sortedAreas := append([]float64(nil), areas...)
	sort.Float64s(sortedAreas)

	n := len(sortedAreas)
	if n < 2 {
		return 0
	}

	step := n / 50
	if step < 1 {
		step = 1
	}
	var logA, logP []float64
	for i := 0; i < n; i += step {
		a := sortedAreas[i]
		if a <= 0 {
			continue
		}
		exceed := float64(n-i) / float64(n)
		if exceed <= 0 {
			continue
		}
		logA = append(logA, math.Log(a))
		logP = append(logP, math.Log(exceed))
	}

	return float32(-leastSquaresSlope(logA, logP))
}

// knickpointDensity counts abrupt along-stream slope breaks (second
// difference in elevation exceeding a threshold) per unit stream length.
func knickpointDensity(segments []segment, h *tilemap.Grid[float32]) float32 {
	knicks := 0
	total := 0
	for _, s := range segments {
		for i := 1; i < len(s.cells)-1; i++ {
			a, b, c := s.cells[i-1], s.cells[i], s.cells[i+1]
			slope1 := h.Get(a.x, a.y) - h.Get(b.x, b.y)
			slope2 := h.Get(b.x, b.y) - h.Get(c.x, c.y)
			if math.Abs(float64(slope1-slope2)) > 5.0 {
				knicks++
			}
			total++
		}
	}
	if total == 0 {
		return 0
	}
	return float32(knicks) / float32(total)
}

// longestProfile returns the (distance, elevation) longitudinal profile of
// the single longest traced segment.
func longestProfile(segments []segment, h *tilemap.Grid[float32]) [][2]float32 {
	if len(segments) == 0 {
		return nil
	}
	longest := segments[0]
	for _, s := range segments {
		if len(s.cells) > len(longest.cells) {
			longest = s
		}
	}

	profile := make([][2]float32, len(longest.cells))
	for i, c := range longest.cells {
		profile[i] = [2]float32{float32(i), h.Get(c.x, c.y)}
	}
	return profile
}
