// Package chapters turns a timed transcript into named chapters for a video description.
//
// Everything in this package is pure: no I/O, no logging, no shared mutable state.
// Functions are safe to call from multiple goroutines.
package chapters

// Entry is one timed caption unit. Entries must be supplied in chronological order.
type Entry struct {
	Start    float64 `json:"start" yaml:"start"`
	Duration float64 `json:"duration,omitempty" yaml:"duration,omitempty"`
	Text     string  `json:"text" yaml:"text"`
}

// End returns the time the entry stops being spoken.
func (e Entry) End() float64 {
	return e.Start + e.Duration
}

// Chapter is a single line of a chapter list.
type Chapter struct {
	Start     int64  `json:"start" doc:"Chapter start in whole seconds"`
	Timestamp string `json:"timestamp" doc:"Display timestamp (M:SS or H:MM:SS)"`
	Title     string `json:"title" doc:"Synthesized chapter title"`
}

// AnalysisResult contains chapter title statistics.
type AnalysisResult struct {
	Total              int     `json:"total" doc:"Number of chapters"`
	PlaceholderCount   int     `json:"placeholder_count" doc:"Chapters with a fallback or generic title"`
	PlaceholderPercent float64 `json:"placeholder_percent" doc:"Share of placeholder titles (0-1)"`
	NeedsReview        bool    `json:"needs_review" doc:"More than half of the titles are placeholders"`
}

// segment accumulates entries until a cut point is reached.
type segment struct {
	start float64
	parts []string
}

func newSegment(start float64) *segment {
	return &segment{start: start}
}

func (s *segment) add(text string) {
	s.parts = append(s.parts, text)
}
