package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithRun(t *testing.T) {
	InitLogger()

	ctx := WithRun(context.Background(), 12345)

	assert.NotEmpty(t, GetRunID(ctx))
	logger := FromContext(ctx)
	assert.NotNil(t, logger)
}

func TestWithStage(t *testing.T) {
	InitLogger()

	ctx := WithRun(context.Background(), 42)
	stageLogger := WithStage(ctx, "river")

	assert.NotNil(t, stageLogger)
}

func TestGetRunID_NoRun(t *testing.T) {
	assert.Empty(t, GetRunID(context.Background()))
}

func TestFromContext_NoLogger(t *testing.T) {
	logger := FromContext(context.Background())
	assert.NotNil(t, logger)
}
