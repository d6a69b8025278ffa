package chapters

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Rules controls where the segmenter cuts.
type Rules struct {
	// TransitionKeywords are matched as substrings of the lower-cased entry text.
	TransitionKeywords []string `yaml:"transition_keywords"`

	// MinTransitionElapsed is the segment age (seconds) at which a transition keyword closes it.
	MinTransitionElapsed float64 `yaml:"min_transition_elapsed"`

	// MinGapElapsed is the segment age (seconds) at which a pause closes it.
	MinGapElapsed float64 `yaml:"min_gap_elapsed"`

	// PauseThreshold is the silence (seconds) between two entries that counts as a pause.
	PauseThreshold float64 `yaml:"pause_threshold"`
}

// defaultTransitionKeywords hint at a topic change.
var defaultTransitionKeywords = []string{
	"now", "next", "first", "second", "third", "finally",
	"moving on", "let's talk about", "today we", "in this",
	"step", "part", "chapter", "section",
}

// DefaultRules returns the standard segmentation rules.
func DefaultRules() Rules {
	keywords := make([]string, len(defaultTransitionKeywords))
	copy(keywords, defaultTransitionKeywords)

	return Rules{
		TransitionKeywords:   keywords,
		MinTransitionElapsed: 45,
		MinGapElapsed:        60,
		PauseThreshold:       2,
	}
}

// Merge returns r with every zero-valued field taken from base.
func (r Rules) Merge(base Rules) Rules {
	if len(r.TransitionKeywords) == 0 {
		r.TransitionKeywords = base.TransitionKeywords
	}
	if r.MinTransitionElapsed == 0 {
		r.MinTransitionElapsed = base.MinTransitionElapsed
	}
	if r.MinGapElapsed == 0 {
		r.MinGapElapsed = base.MinGapElapsed
	}
	if r.PauseThreshold == 0 {
		r.PauseThreshold = base.PauseThreshold
	}
	return r
}

// Segmenter groups transcript entries into chapters.
type Segmenter struct {
	rules Rules
}

// NewSegmenter creates a segmenter. Zero-valued rule fields fall back to DefaultRules.
func NewSegmenter(rules Rules) *Segmenter {
	rules = rules.Merge(DefaultRules())

	// Entry text is lower-cased before matching, so keywords must be too.
	lower := cases.Lower(language.Und)
	keywords := make([]string, 0, len(rules.TransitionKeywords))
	for _, keyword := range rules.TransitionKeywords {
		if keyword = lower.String(keyword); keyword != "" {
			keywords = append(keywords, keyword)
		}
	}
	rules.TransitionKeywords = keywords

	return &Segmenter{rules: rules}
}

// Rules returns the effective rules.
func (s *Segmenter) Rules() Rules {
	return s.rules
}

// Generate segments entries with the default rules.
func Generate(entries []Entry) []Chapter {
	return NewSegmenter(Rules{}).Generate(entries)
}

// Generate walks entries once, closing a segment whenever a cut condition fires.
// The final segment is always emitted. An empty transcript yields an empty list.
func (s *Segmenter) Generate(entries []Entry) []Chapter {
	result := make([]Chapter, 0)
	if len(entries) == 0 {
		return result
	}

	lower := cases.Lower(language.Und)
	last := len(entries) - 1
	current := newSegment(entries[0].Start)

	for i, entry := range entries {
		current.add(entry.Text)

		elapsed := entry.Start - current.start
		hasTransition := s.hasTransition(lower.String(entry.Text))

		timeGap := false
		if i < last {
			timeGap = entries[i+1].Start-entry.End() > s.rules.PauseThreshold
		}

		shouldClose := (hasTransition && elapsed >= s.rules.MinTransitionElapsed) ||
			(timeGap && elapsed >= s.rules.MinGapElapsed)

		if !shouldClose && i != last {
			continue
		}

		result = append(result, current.close())

		if i < last {
			current = newSegment(entries[i+1].Start)
		}
	}

	return result
}

// hasTransition reports whether text contains any transition keyword.
// Matching is by substring, so "step" also matches "steps".
func (s *Segmenter) hasTransition(text string) bool {
	for _, keyword := range s.rules.TransitionKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// close converts the segment into a chapter.
func (seg *segment) close() Chapter {
	return Chapter{
		Start:     int64(math.Floor(seg.start)),
		Timestamp: FormatTimestamp(seg.start),
		Title:     SynthesizeTitle(seg.parts),
	}
}
