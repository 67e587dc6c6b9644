package pipelinemetrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStartStage_DoneDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		timer := StartStage("river")
		timer.Done()
	})
}

func TestRecordErosion_IgnoresNonPositiveValues(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordErosion(0, 0)
		RecordErosion(-5, -5)
		RecordErosion(12.5, 3.2)
	})
}
