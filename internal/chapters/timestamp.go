package chapters

import (
	"fmt"
	"math"
	"strings"
)

// FormatTimestamp renders seconds as "M:SS", or "H:MM:SS" once an hour has passed.
// Fractional seconds are truncated. Negative input is not supported.
func FormatTimestamp(seconds float64) string {
	whole := int64(math.Floor(seconds))

	hours := whole / 3600
	minutes := (whole % 3600) / 60
	secs := whole % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// FormatDescription renders chapters as "{timestamp} {title}" lines,
// ready to paste into a video description.
func FormatDescription(chapters []Chapter) string {
	lines := make([]string, len(chapters))
	for i, ch := range chapters {
		lines[i] = ch.Timestamp + " " + ch.Title
	}
	return strings.Join(lines, "\n")
}
