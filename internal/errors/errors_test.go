package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without cause",
			err:  NewValidationError("null ratio above threshold"),
			want: "[VALIDATION] null ratio above threshold",
		},
		{
			name: "with cause",
			err:  NewStorageError("write failed", fmt.Errorf("disk full")),
			want: "[STORAGE] write failed: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := NewNetworkError("request failed", cause)

	assert.True(t, stderrors.Is(err, cause))
}

func TestAppError_Retryable(t *testing.T) {
	assert.True(t, NewStorageError("write failed", nil).Retryable())
	assert.True(t, NewNetworkError("timeout", nil).Retryable())
	assert.False(t, NewTransformationError("empty result", nil).Retryable())
	assert.False(t, NewDataFormatError("no date column", nil).Retryable())
	assert.False(t, NewSourceNotFoundError("ipca").Retryable())
}

func TestIsType(t *testing.T) {
	err := NewUnsupportedIndicatorError("igpm")

	assert.True(t, IsType(err, ErrTypeUnsupportedIndicator))
	assert.False(t, IsType(err, ErrTypeStorage))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrTypeStorage))

	// Wrapped AppErrors are still recognized.
	wrapped := fmt.Errorf("refine ipca: %w", err)
	assert.True(t, IsType(wrapped, ErrTypeUnsupportedIndicator))
}

func TestWithContext(t *testing.T) {
	err := NewSourceNotFoundError("selic").WithContext("prefix", "bronze/economic_indicators/selic")

	require.NotNil(t, err.Context)
	assert.Equal(t, "bronze/economic_indicators/selic", err.Context["prefix"])
	assert.Equal(t, ErrTypeSourceNotFound, TypeOf(err))
}
