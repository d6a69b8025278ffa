// Package transcript decodes caption files and request payloads into chapter entries.
//
// Every decoder fails fast on a malformed entry and names the entry's position.
// Missing start or text is never guessed; a missing duration means zero.
package transcript

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chaptermatic/chaptermatic-server/internal/chapters"
	domainerrors "github.com/chaptermatic/chaptermatic-server/internal/errors"
)

// ErrUnsupportedFormat is returned by Load for unknown file extensions.
var ErrUnsupportedFormat = domainerrors.Validation("unsupported transcript format")

// EntryInput is a transcript entry as received over the wire.
// Pointer fields distinguish a missing value from zero.
type EntryInput struct {
	Start    *float64 `json:"start" doc:"Entry start in seconds" minimum:"0"`
	Duration *float64 `json:"duration,omitempty" doc:"Entry duration in seconds, defaults to 0" minimum:"0"`
	Text     *string  `json:"text" doc:"Spoken text"`
}

// FromRequest converts wire entries, rejecting the first malformed one.
func FromRequest(inputs []EntryInput) ([]chapters.Entry, error) {
	entries := make([]chapters.Entry, 0, len(inputs))
	for i, in := range inputs {
		entry, err := in.toEntry(i)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (in EntryInput) toEntry(index int) (chapters.Entry, error) {
	if in.Start == nil {
		return chapters.Entry{}, entryError(index, "start", "is required")
	}
	if in.Text == nil {
		return chapters.Entry{}, entryError(index, "text", "is required")
	}
	if *in.Start < 0 {
		return chapters.Entry{}, entryError(index, "start", "must not be negative")
	}

	entry := chapters.Entry{Start: *in.Start, Text: *in.Text}
	if in.Duration != nil {
		if *in.Duration < 0 {
			return chapters.Entry{}, entryError(index, "duration", "must not be negative")
		}
		entry.Duration = *in.Duration
	}
	return entry, nil
}

func entryError(index int, field, msg string) error {
	return domainerrors.ValidationWithDetails(
		fmt.Sprintf("invalid transcript entry %d: %s %s", index, field, msg),
		map[string]any{"index": index, "field": field},
	)
}

// DecodeJSON reads a JSON array of {start, duration, text} objects.
func DecodeJSON(r io.Reader) ([]chapters.Entry, error) {
	var inputs []EntryInput
	if err := json.NewDecoder(r).Decode(&inputs); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeValidation, "invalid transcript format")
	}
	return FromRequest(inputs)
}

// Load reads a transcript file, choosing the decoder by extension.
func Load(path string) ([]chapters.Entry, error) {
	var decode func(io.Reader) ([]chapters.Entry, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		decode = DecodeJSON
	case ".srt":
		decode = ParseSRT
	default:
		return nil, ErrUnsupportedFormat
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	entries, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return entries, nil
}

// IsSupported reports whether Load can read path.
func IsSupported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".srt":
		return true
	default:
		return false
	}
}
