package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "error without underlying error",
			appErr:   &AppError{Code: "TEST_ERROR", Message: "Test message"},
			expected: "Test message",
		},
		{
			name:     "error with underlying error",
			appErr:   &AppError{Code: "TEST_ERROR", Message: "Test message", Err: errors.New("underlying error")},
			expected: "Test message: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	appErr := &AppError{Code: "TEST", Message: "Test", Err: underlying}
	assert.Equal(t, underlying, appErr.Unwrap())

	noUnderlying := &AppError{Code: "TEST", Message: "Test"}
	assert.Nil(t, noUnderlying.Unwrap())
}

func TestWrap(t *testing.T) {
	underlying := errors.New("underlying error")
	wrapped := Wrap(ErrInvalidDimensions, "custom message", underlying)

	assert.Equal(t, ErrInvalidDimensions.Code, wrapped.Code)
	assert.Equal(t, "custom message", wrapped.Message)
	assert.Equal(t, underlying, wrapped.Err)
}

func TestNew(t *testing.T) {
	appErr := New("CUSTOM_CODE", "custom message")
	assert.Equal(t, "CUSTOM_CODE", appErr.Code)
	assert.Equal(t, "custom message", appErr.Message)
}

func TestPredefinedErrors(t *testing.T) {
	assert.Equal(t, "INVALID_DIMENSIONS", ErrInvalidDimensions.Code)
	assert.Equal(t, "AUX_MAP_MISMATCH", ErrAuxMapMismatch.Code)
}
