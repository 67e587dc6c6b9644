package erosion

import "geomorph/internal/errors"

// Stats aggregates what happened across every enabled stage of one
// Pipeline.Run, mirroring the reference ErosionStats.
type Stats struct {
	TotalEroded    float64
	TotalDeposited float64
	StepsTaken     uint64
	Iterations     int
	MaxErosion     float32
	MaxDeposition  float32
	RiverLengths   []int

	// Warnings carries informational AppErrors that don't block the run
	// (spec §7: per-run conditions detected but not fatal), e.g.
	// errors.ErrLandlockedWorld when no river reaches a sea-level outlet.
	Warnings []*errors.AppError
}

func (s *Stats) mergeRiver(eroded, deposited float64, steps uint64, iterations int, maxErosion, maxDeposition float32, lengths []int) {
	s.TotalEroded += eroded
	s.TotalDeposited += deposited
	s.StepsTaken += steps
	s.Iterations += iterations
	if maxErosion > s.MaxErosion {
		s.MaxErosion = maxErosion
	}
	if maxDeposition > s.MaxDeposition {
		s.MaxDeposition = maxDeposition
	}
	s.RiverLengths = append(s.RiverLengths, lengths...)
}

func (s *Stats) mergeDroplet(eroded, deposited float64, iterations int, maxErosion, maxDeposition float32) {
	s.TotalEroded += eroded
	s.TotalDeposited += deposited
	s.Iterations += iterations
	if maxErosion > s.MaxErosion {
		s.MaxErosion = maxErosion
	}
	if maxDeposition > s.MaxDeposition {
		s.MaxDeposition = maxDeposition
	}
}

func (s *Stats) mergeGlacial(eroded float64, maxErosion float32) {
	s.TotalEroded += eroded
	if maxErosion > s.MaxErosion {
		s.MaxErosion = maxErosion
	}
}

func (s *Stats) meanRiverLength() float32 {
	if len(s.RiverLengths) == 0 {
		return 0
	}
	total := 0
	for _, l := range s.RiverLengths {
		total += l
	}
	return float32(total) / float32(len(s.RiverLengths))
}
