// Package pipelinemetrics instruments one Pipeline.Run: a counter and
// histogram per stage, re-grounded on the teacher's metrics package
// (prometheus/client_golang + promauto) but tracking erosion stages instead
// of HTTP routes or database queries.
package pipelinemetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stageRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geomorph_pipeline_stage_runs_total",
		Help: "Number of times each erosion pipeline stage has run",
	}, []string{"stage"})

	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geomorph_pipeline_stage_duration_seconds",
		Help:    "Duration of each erosion pipeline stage",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	erodedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "geomorph_pipeline_eroded_height_units_total",
		Help: "Cumulative height units eroded across all runs",
	})

	depositedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "geomorph_pipeline_deposited_height_units_total",
		Help: "Cumulative height units deposited across all runs",
	})
)

// StageTimer tracks one in-flight stage; call Done when the stage finishes.
type StageTimer struct {
	stage string
	start time.Time
}

// StartStage records a stage invocation and starts its duration timer.
func StartStage(stage string) *StageTimer {
	stageRuns.WithLabelValues(stage).Inc()
	return &StageTimer{stage: stage, start: time.Now()}
}

// Done records the elapsed duration since StartStage.
func (t *StageTimer) Done() {
	stageDuration.WithLabelValues(t.stage).Observe(time.Since(t.start).Seconds())
}

// RecordErosion adds eroded/deposited height units to the running totals.
func RecordErosion(eroded, deposited float64) {
	if eroded > 0 {
		erodedTotal.Add(eroded)
	}
	if deposited > 0 {
		depositedTotal.Add(deposited)
	}
}
