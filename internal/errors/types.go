package errors

import "fmt"

// AppError represents a library-level error with a machine-readable code.
// geomorph is a pure library (spec §6: "No wire protocol; no persisted
// state"), so unlike the teacher's AppError this carries no HTTP status —
// callers inspect Code, not a response status.
type AppError struct {
	Code    string // Machine-readable code (e.g., "INVALID_DIMENSIONS")
	Message string // Human-readable message
	Err     error  // Underlying error, if any
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for error chain support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Errors this library can raise before or after a run. Per spec §7, nothing
// that happens mid-pipeline (numerical/geometric degeneracy) is surfaced
// this way — only malformed inputs the caller handed to Pipeline.Run.
// Pipeline.Run does not compare aux map dimensions with the heightmap, so
// it never returns ErrAuxMapMismatch.
var (
	ErrInvalidDimensions = &AppError{Code: "INVALID_DIMENSIONS", Message: "heightmap dimensions must be positive"}
	ErrAuxMapMismatch    = &AppError{Code: "AUX_MAP_MISMATCH", Message: "auxiliary map dimensions do not match heightmap"}

	// ErrLandlockedWorld is informational only: attached to Stats.Warnings
	// when a run produces no sea-level outlet for its drainage network, never
	// returned as an error from Pipeline.Run.
	ErrLandlockedWorld = &AppError{Code: "LANDLOCKED_WORLD", Message: "heightmap has no sea-level drainage outlet"}
)

// Wrap creates a new error wrapping the original with a custom message.
func Wrap(base *AppError, message string, err error) *AppError {
	return &AppError{
		Code:    base.Code,
		Message: message,
		Err:     err,
	}
}

// New creates a new AppError with custom values.
func New(code string, message string) *AppError {
	return &AppError{Code: code, Message: message}
}
