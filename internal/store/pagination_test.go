package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultPaginationParams tests the default pagination parameters.
func TestDefaultPaginationParams(t *testing.T) {
	params := DefaultPaginationParams()
	assert.Equal(t, 50, params.Limit)
	assert.Empty(t, params.Cursor)
}

// TestPaginationParams_Validate tests validation of pagination parameters.
func TestPaginationParams_Validate(t *testing.T) {
	tests := []struct {
		name          string
		input         PaginationParams
		expectedLimit int
	}{
		{
			name:          "valid parameters",
			input:         PaginationParams{Limit: 20},
			expectedLimit: 20,
		},
		{
			name:          "zero limit should default to 50",
			input:         PaginationParams{Limit: 0},
			expectedLimit: 50,
		},
		{
			name:          "negative limit should default to 50",
			input:         PaginationParams{Limit: -10},
			expectedLimit: 50,
		},
		{
			name:          "limit over 500 should cap at 500",
			input:         PaginationParams{Limit: 5000},
			expectedLimit: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := tt.input
			params.Validate()
			assert.Equal(t, tt.expectedLimit, params.Limit)
		})
	}
}

func TestCursorRoundTrip(t *testing.T) {
	assert.Empty(t, EncodeCursor(""))

	decoded, err := DecodeCursor(EncodeCursor("2025-01-01T00:00:00Z|vch-1"))
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01T00:00:00Z|vch-1", decoded)

	_, err = DecodeCursor("not base64 !!!")
	assert.Error(t, err)
}

func TestTimeCursor(t *testing.T) {
	ts := time.Date(2025, 3, 4, 5, 6, 7, 890, time.UTC)

	c, err := DecodeTimeCursor(EncodeTimeCursor(ts, "vch-abc"))
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.True(t, ts.Equal(c.Time))
	assert.Equal(t, "vch-abc", c.ID)

	c, err = DecodeTimeCursor("")
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = DecodeTimeCursor(EncodeCursor("no-separator"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = DecodeTimeCursor(EncodeCursor("yesterday|vch-abc"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}
