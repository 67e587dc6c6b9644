// Package droplet implements particle-based hydraulic erosion (C4, spec
// §4.3): water droplets spawn preferentially at high elevation, follow the
// terrain gradient with inertia, erode under capacity and deposit over
// capacity, and terminate at the sea or when they run dry. Ported from
// original_source's erosion::hydraulic (simulate / simulate_parallel /
// simulate_single_droplet).
//
// The default Backend runs droplets CPU-side in snapshot-then-accumulate
// batches via golang.org/x/sync/errgroup, matching the reference's
// simulate_parallel batching (batches of 10,000, rayon in the original,
// errgroup here). A build-tag-gated Vulkan backend (gpu_vulkan.go, "gpu"
// build tag) can replace it transparently when a compute device is probed
// successfully; SelectBackend performs that probe and, when it fails, logs
// one line and falls back to the CPU backend.
package droplet

import (
	"context"
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"geomorph/internal/tilemap"
)

// Stats mirrors the shared ErosionStats accounting (total eroded/deposited,
// per-step maxima) produced by a droplet run.
type Stats struct {
	TotalEroded    float64
	TotalDeposited float64
	MaxErosion     float32
	MaxDeposition  float32
}

func (s *Stats) merge(o Stats) {
	s.TotalEroded += o.TotalEroded
	s.TotalDeposited += o.TotalDeposited
	if o.MaxErosion > s.MaxErosion {
		s.MaxErosion = o.MaxErosion
	}
	if o.MaxDeposition > s.MaxDeposition {
		s.MaxDeposition = o.MaxDeposition
	}
}

// Backend executes one batch of independent droplets against a read-only
// heightmap snapshot and returns the per-cell height delta to accumulate
// plus batch statistics. Implementations must not mutate snapshot.
type Backend interface {
	Name() string
	SimulateBatch(snapshot []float32, width, height int, hardness *tilemap.Grid[float32], p Params, seeds []uint64) (delta []float32, stats Stats)
}

// Params groups the droplet-relevant subset of erosion.Params. It is a
// standalone struct (rather than an alias into package erosion) so this
// package never imports the top-level erosion package, avoiding a cycle;
// erosion.Pipeline builds one from its own Params before calling Simulate.
type Params struct {
	Iterations      int
	Inertia         float32
	CapacityFactor  float32
	ErosionRate     float32
	DepositRate     float32
	Evaporation     float32
	MinVolume       float32
	MaxSteps        int
	ErosionRadius   int
	InitialWater    float32
	InitialVelocity float32
	Gravity         float32
}

const batchSize = 10_000

// Simulate runs p.Iterations droplets against h in batches, using backend
// (or the CPU backend if nil), snapshotting the heightmap before each batch
// and accumulating all deltas after it completes — this avoids intra-batch
// write races while keeping droplets from the same batch independent.
func Simulate(ctx context.Context, h *tilemap.Grid[float32], hardness *tilemap.Grid[float32], p Params, seed uint64, backend Backend) Stats {
	if backend == nil {
		backend = CPUBackend{}
	}

	width, height := h.Width, h.Height
	total := Stats{}

	numBatches := (p.Iterations + batchSize - 1) / batchSize
	for batch := 0; batch < numBatches; batch++ {
		start := batch * batchSize
		end := start + batchSize
		if end > p.Iterations {
			end = p.Iterations
		}
		count := end - start

		snapshot := make([]float32, width*height)
		h.Each(func(x, y int, v float32) { snapshot[y*width+x] = v })

		seeds := make([]uint64, count)
		for i := 0; i < count; i++ {
			seeds[i] = seed + uint64(start+i)
		}

		delta, stats := backend.SimulateBatch(snapshot, width, height, hardness, p, seeds)
		total.merge(stats)

		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				d := delta[y*width+x]
				if d != 0 {
					*h.GetMut(x, y) += d
				}
			}
		}

		select {
		case <-ctx.Done():
			return total
		default:
		}
	}

	return total
}

// CPUBackend is the default droplet backend: each droplet of the batch runs
// in its own errgroup goroutine, with at most GOMAXPROCS of them running at
// once.
type CPUBackend struct{}

func (CPUBackend) Name() string { return "cpu" }

func (CPUBackend) SimulateBatch(snapshot []float32, width, height int, hardness *tilemap.Grid[float32], p Params, seeds []uint64) ([]float32, Stats) {
	minH, maxH := float32(math.MaxFloat32), float32(-math.MaxFloat32)
	for _, v := range snapshot {
		if v > maxH {
			maxH = v
		}
		if v < minH {
			minH = v
		}
	}
	heightRange := maxH - minH
	if heightRange < 1 {
		heightRange = 1
	}

	brush := NewBrush(p.ErosionRadius)

	deltas := make([][]float32, len(seeds))
	statsPerDroplet := make([]Stats, len(seeds))

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range seeds {
		i := i
		g.Go(func() error {
			d := make([]float32, width*height)
			s := simulateSingle(snapshot, hardness, brush, p, seeds[i], width, height, minH, heightRange, d)
			deltas[i] = d
			statsPerDroplet[i] = s
			return nil
		})
	}
	_ = g.Wait()

	total := make([]float32, width*height)
	var stats Stats
	for i := range deltas {
		for idx, v := range deltas[i] {
			total[idx] += v
		}
		stats.merge(statsPerDroplet[i])
	}

	return total, stats
}

func sampleHeight(snapshot []float32, width, height int, x, y float64) float64 {
	widthF, heightF := float64(width), float64(height)
	x = math.Mod(math.Mod(x, widthF)+widthF, widthF)
	if y < 0 {
		y = 0
	} else if y > heightF-1.001 {
		y = heightF - 1.001
	}

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1 := (x0 + 1) % width
	y1 := y0 + 1
	if y1 > height-1 {
		y1 = height - 1
	}
	fx := x - math.Floor(x)
	fy := y - math.Floor(y)

	h00 := float64(snapshot[y0*width+x0])
	h10 := float64(snapshot[y0*width+x1])
	h01 := float64(snapshot[y1*width+x0])
	h11 := float64(snapshot[y1*width+x1])

	h0 := h00*(1-fx) + h10*fx
	h1 := h01*(1-fx) + h11*fx
	return h0*(1-fy) + h1*fy
}

func sampleGradient(snapshot []float32, width, height int, x, y float64) (float64, float64) {
	widthF, heightF := float64(width), float64(height)
	x = math.Mod(math.Mod(x, widthF)+widthF, widthF)
	if y < 0 {
		y = 0
	} else if y > heightF-1.001 {
		y = heightF - 1.001
	}

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1 := (x0 + 1) % width
	y1 := y0 + 1
	if y1 > height-1 {
		y1 = height - 1
	}
	fx := x - math.Floor(x)
	fy := y - math.Floor(y)

	h00 := float64(snapshot[y0*width+x0])
	h10 := float64(snapshot[y0*width+x1])
	h01 := float64(snapshot[y1*width+x0])
	h11 := float64(snapshot[y1*width+x1])

	gx0 := h10 - h00
	gx1 := h11 - h01
	gradX := gx0*(1-fy) + gx1*fy

	gy0 := h01 - h00
	gy1 := h11 - h10
	gradY := gy0*(1-fx) + gy1*fx

	return gradX, gradY
}

func spawnAtHighElevation(snapshot []float32, width, height int, rng *rand.Rand, minH, heightRange float32) (float64, float64) {
	widthF, heightF := float64(width), float64(height)

	for i := 0; i < 10; i++ {
		x := rng.Float64() * widthF
		y := rng.Float64() * heightF
		h := sampleHeight(snapshot, width, height, x, y)
		if h < 0 {
			continue
		}
		normalized := (float32(h) - minH) / heightRange
		if normalized < 0 {
			normalized = 0
		} else if normalized > 1 {
			normalized = 1
		}
		accept := normalized * normalized
		if float32(0.1) > accept {
			accept = 0.1
		}
		if rng.Float32() < accept {
			return x, y
		}
	}

	for i := 0; i < 10000; i++ {
		x := rng.Float64() * widthF
		y := rng.Float64() * heightF
		h := sampleHeight(snapshot, width, height, x, y)
		if h >= 0 {
			return x, y
		}
		if rng.Float32() < 0.01 {
			return x, y
		}
	}
	return 0, 0
}

// applyBrush spreads amount across brush's footprint around (x, y), clamping
// each cell's accumulated delta to [minCap, maxCap] so no single droplet pass
// can erode or deposit a cell past the pipeline-wide bounds (spec §4.3).
func applyBrush(delta []float32, width, height int, brush Brush, x, y int, amount float32, sign float32, minCap, maxCap float32) {
	for i := range brush.DX {
		nx := ((x+brush.DX[i])%width + width) % width
		ny := y + brush.DY[i]
		if ny < 0 {
			ny = 0
		} else if ny >= height {
			ny = height - 1
		}
		idx := ny*width + nx
		change := sign * amount * brush.Weight[i]
		next := delta[idx] + change
		if next < minCap {
			next = minCap
		} else if next > maxCap {
			next = maxCap
		}
		delta[idx] = next
	}
}

// minErosionDelta and maxDepositionDelta are the pipeline-wide bounds on how
// far a single cell's accumulated height delta may move in one droplet pass
// (spec §4.3): erosion floored at -5000m, deposition capped at +2000m.
const (
	minErosionDelta    = -5000.0
	maxDepositionDelta = 2000.0
)

func simulateSingle(snapshot []float32, hardness *tilemap.Grid[float32], brush Brush, p Params, seed uint64, width, height int, minH, heightRange float32, delta []float32) Stats {
	const seaLevel = 0.0
	const maxChangePerStep = 15.0

	rng := rand.New(rand.NewSource(int64(seed)))
	stats := Stats{}

	startX, startY := spawnAtHighElevation(snapshot, width, height, rng, minH, heightRange)
	startHeight := sampleHeight(snapshot, width, height, startX, startY)
	if startHeight < seaLevel {
		return stats
	}

	x, y := startX, startY
	dirX, dirY := 0.0, 0.0
	velocity := float64(p.InitialVelocity)
	water := float64(p.InitialWater)
	sediment := 0.0

	for step := 0; step < p.MaxSteps; step++ {
		gradX, gradY := sampleGradient(snapshot, width, height, x, y)

		dirX = dirX*float64(p.Inertia) - gradX*(1-float64(p.Inertia))
		dirY = dirY*float64(p.Inertia) - gradY*(1-float64(p.Inertia))
		dirLen := math.Sqrt(dirX*dirX + dirY*dirY)
		if dirLen > 0.0001 {
			dirX /= dirLen
			dirY /= dirLen
		} else {
			angle := rng.Float64() * 2 * math.Pi
			dirX = math.Cos(angle)
			dirY = math.Sin(angle)
		}

		oldX, oldY := x, y
		oldHeight := sampleHeight(snapshot, width, height, oldX, oldY)

		x += dirX
		y += dirY
		widthF := float64(width)
		x = math.Mod(math.Mod(x, widthF)+widthF, widthF)

		if y < 0 || y >= float64(height)-1.0 {
			break
		}

		newHeight := sampleHeight(snapshot, width, height, x, y)
		deltaHeight := newHeight - oldHeight
		if math.IsInf(deltaHeight, 0) || math.IsNaN(deltaHeight) || math.Abs(deltaHeight) > 10000 {
			break
		}

		cellX := int(oldX) % width
		cellY := int(oldY)
		if cellY > height-1 {
			cellY = height - 1
		}

		if newHeight < seaLevel {
			finalDeposit := math.Min(sediment, 10.0)
			if finalDeposit > 0 {
				applyBrush(delta, width, height, brush, cellX, cellY, float32(finalDeposit), 1, minErosionDelta, maxDepositionDelta)
				stats.TotalDeposited += finalDeposit
			}
			break
		}

		slope := -deltaHeight
		if slope < 0 {
			slope = 0
		} else if slope > 50 {
			slope = 50
		}
		capVal := math.Max(slope, float64(p.MinVolume)) * velocity * water * float64(p.CapacityFactor)
		if capVal < 0 {
			capVal = 0
		} else if capVal > 500 {
			capVal = 500
		}

		rockHardness := float64(hardness.Get(cellX, cellY))

		if sediment > capVal {
			depositAmount := math.Min((sediment-capVal)*float64(p.DepositRate), maxChangePerStep)
			sediment -= depositAmount
			applyBrush(delta, width, height, brush, cellX, cellY, float32(depositAmount), 1, minErosionDelta, maxDepositionDelta)
			stats.TotalDeposited += depositAmount
			if float32(depositAmount) > stats.MaxDeposition {
				stats.MaxDeposition = float32(depositAmount)
			}
		} else {
			hardnessFactor := math.Max(1-rockHardness, 0.1)
			erodeAmount := math.Min(math.Min((capVal-sediment)*float64(p.ErosionRate)*hardnessFactor, slope), maxChangePerStep)
			if erodeAmount > 0 {
				sediment += erodeAmount
				applyBrush(delta, width, height, brush, cellX, cellY, float32(erodeAmount), -1, minErosionDelta, maxDepositionDelta)
				stats.TotalEroded += erodeAmount
				if float32(erodeAmount) > stats.MaxErosion {
					stats.MaxErosion = float32(erodeAmount)
				}
			}
		}

		velSq := velocity*velocity + deltaHeight*float64(p.Gravity)
		if velSq < 0 {
			velSq = 0
		} else if velSq > 10000 {
			velSq = 10000
		}
		velocity = math.Min(math.Sqrt(velSq), 50.0)

		water *= 1 - float64(p.Evaporation)
		if water < float64(p.MinVolume) {
			finalDeposit := math.Min(sediment, maxChangePerStep*3)
			if finalDeposit > 0 {
				applyBrush(delta, width, height, brush, cellX, cellY, float32(finalDeposit), 1, minErosionDelta, maxDepositionDelta)
				stats.TotalDeposited += finalDeposit
			}
			break
		}
	}

	return stats
}
