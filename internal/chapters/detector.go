package chapters

import (
	"regexp"
	"strings"
)

var genericPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^chapter$`),
	regexp.MustCompile(`(?i)^introduction$`),
	regexp.MustCompile(`(?i)^chapter\s+\d+$`),
	regexp.MustCompile(`(?i)^chapter\s+(one|two|three|four|five|six|seven|eight|nine|ten)$`),
	regexp.MustCompile(`(?i)^track\s+\d+$`),
	regexp.MustCompile(`(?i)^part\s+\d+$`),
	regexp.MustCompile(`(?i)^part\s+(one|two|three|four|five|six|seven|eight|nine|ten)$`),
	regexp.MustCompile(`^\d+$`),
	regexp.MustCompile(`^\d+\.\s*$`),
	regexp.MustCompile(`^\d+\s*-\s*$`),
}

// IsPlaceholderTitle returns true if the title carries no information about its content,
// either because synthesis fell back to a default or because it is a generic label.
func IsPlaceholderTitle(title string) bool {
	title = strings.TrimSpace(title)

	// Empty or whitespace-only
	if title == "" {
		return true
	}

	for _, pattern := range genericPatterns {
		if pattern.MatchString(title) {
			return true
		}
	}

	return false
}

// AnalyzeChapters returns statistics about the chapter titles.
func AnalyzeChapters(chapters []Chapter) AnalysisResult {
	if len(chapters) == 0 {
		return AnalysisResult{}
	}

	placeholders := 0
	for _, ch := range chapters {
		if IsPlaceholderTitle(ch.Title) {
			placeholders++
		}
	}

	percent := float64(placeholders) / float64(len(chapters))

	return AnalysisResult{
		Total:              len(chapters),
		PlaceholderCount:   placeholders,
		PlaceholderPercent: percent,
		NeedsReview:        percent > 0.5,
	}
}
