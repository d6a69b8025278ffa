package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeAlreadyExists, http.StatusConflict},
		{CodeConflict, http.StatusConflict},
		{CodeValidation, http.StatusBadRequest},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := Validation("transcript is required")

	assert.True(t, Is(err, ErrValidation))
	assert.False(t, Is(err, ErrNotFound))

	wrapped := fmt.Errorf("generate: %w", err)
	assert.True(t, Is(wrapped, ErrValidation))
}

func TestError_WrapKeepsCause(t *testing.T) {
	cause := New("disk full")
	err := Wrap(cause, CodeInternal, "failed to save")

	assert.Equal(t, "failed to save: disk full", err.Error())
	assert.True(t, Is(err, cause))
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
}

func TestError_WithDetails(t *testing.T) {
	base := Validation("invalid transcript format")
	detailed := base.WithDetails(map[string]int{"index": 3})

	require.NotSame(t, base, detailed)
	assert.Nil(t, base.Details)
	assert.Equal(t, map[string]int{"index": 3}, detailed.Details)
	assert.Equal(t, base.Message, detailed.Message)
}

func TestError_As(t *testing.T) {
	err := fmt.Errorf("outer: %w", RateLimited("slow down"))

	var domainErr *Error
	require.True(t, As(err, &domainErr))
	assert.Equal(t, CodeRateLimited, domainErr.Code)
	assert.Equal(t, "slow down", domainErr.Message)
}
