package logging

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	runIDKey  contextKey = "run_id"
	loggerKey contextKey = "logger"
)

// InitLogger initializes the global logger.
func InitLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// WithRun returns a context carrying a logger scoped to one pipeline
// invocation, tagged with a run ID and the seed that produced it. Every
// Pipeline.Run call gets one of these; stage loggers derive from it via
// WithStage so a single run's log lines can be grepped by run_id.
func WithRun(ctx context.Context, seed uint64) context.Context {
	runID := uuid.New().String()
	logger := log.With().Str("run_id", runID).Uint64("seed", seed).Logger()
	ctx = context.WithValue(ctx, runIDKey, runID)
	ctx = context.WithValue(ctx, loggerKey, logger)
	return ctx
}

// WithStage returns a logger for one pipeline stage (e.g. "river", "droplet",
// "glacial"), derived from the run logger in ctx.
func WithStage(ctx context.Context, stage string) zerolog.Logger {
	return FromContext(ctx).With().Str("stage", stage).Logger()
}

// FromContext returns the logger from the context, or the global logger if not found.
func FromContext(ctx context.Context) *zerolog.Logger {
	if logger, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		return &logger
	}
	return &log.Logger
}

// GetRunID returns the run ID from the context.
func GetRunID(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey).(string); ok {
		return id
	}
	return ""
}
