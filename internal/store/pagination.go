package store

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 500
)

// PaginationParams contains pagination request parameters.
type PaginationParams struct {
	Limit  int    // The number of items per page (defaults to 50 with a maximum of 500)
	Cursor string // Opaque cursor for next page (empty for first page)
}

// PaginatedResult contains paginated data and metadata.
type PaginatedResult[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"` // Empty if no more pages
	HasMore    bool   `json:"has_more"`
	Total      int    `json:"total,omitempty"`
}

// DefaultPaginationParams returns sensible defaults.
func DefaultPaginationParams() PaginationParams {
	return PaginationParams{
		Limit:  defaultPageLimit,
		Cursor: "",
	}
}

// Validate checks and corrects pagination parameters.
func (p *PaginationParams) Validate() {
	if p.Limit <= 0 {
		p.Limit = defaultPageLimit
	}

	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
}

// EncodeCursor creates an opaque cursor from a key.
func EncodeCursor(key string) string {
	if key == "" {
		return ""
	}
	return base64.URLEncoding.EncodeToString([]byte(key))
}

// DecodeCursor decodes a cursor back to a key.
func DecodeCursor(cursor string) (string, error) {
	if cursor == "" {
		return "", nil
	}

	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return "", fmt.Errorf("invalid cursor: %w", err)
	}

	return string(decoded), nil
}

// TimeCursor is a keyset position: the sort timestamp plus the ID as tie-breaker.
type TimeCursor struct {
	Time time.Time
	ID   string
}

// EncodeTimeCursor encodes a keyset position as "time|id".
func EncodeTimeCursor(t time.Time, id string) string {
	return EncodeCursor(t.UTC().Format(time.RFC3339Nano) + "|" + id)
}

// DecodeTimeCursor parses a cursor created by EncodeTimeCursor.
// An empty cursor returns nil.
func DecodeTimeCursor(cursor string) (*TimeCursor, error) {
	decoded, err := DecodeCursor(cursor)
	if err != nil {
		return nil, ErrInvalidInput.WithCause(err)
	}
	if decoded == "" {
		return nil, nil
	}

	ts, id, ok := strings.Cut(decoded, "|")
	if !ok || id == "" {
		return nil, ErrInvalidInput.WithMessage("invalid cursor format")
	}

	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, ErrInvalidInput.WithCause(err)
	}

	return &TimeCursor{Time: t, ID: id}, nil
}
