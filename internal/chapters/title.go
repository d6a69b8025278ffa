package chapters

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// maxTitleParts is how many text parts of a segment feed its title.
	maxTitleParts = 15
	// minSentenceLength is the length a leading sentence must exceed to be used as-is.
	minSentenceLength = 15
	// maxTitleLength caps titles built word by word.
	maxTitleLength = 60

	fallbackEmptyTitle  = "Chapter"
	fallbackFillerTitle = "Introduction"
)

// audioCuePatterns match anywhere in the text.
var audioCuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\[Music\]`),
	regexp.MustCompile(`(?i)\[Applause\]`),
	regexp.MustCompile(`(?i)\[Laughter\]`),
}

// fillerWordPatterns match whole words only. RE2's \b treats every non-ASCII
// letter as a boundary, so the boundary is spelled out with Unicode classes
// and kept in groups 1 and 2 when the word is removed.
var fillerWordPatterns = []*regexp.Regexp{
	fillerWord("um"),
	fillerWord("uh"),
	fillerWord("you know"),
	fillerWord("okay"),
	fillerWord("alright"),
}

func fillerWord(word string) *regexp.Regexp {
	const boundary = `[^\p{L}\p{N}_]`
	return regexp.MustCompile(`(?i)(^|` + boundary + `)` + regexp.QuoteMeta(word) + `(` + boundary + `|$)`)
}

// SynthesizeTitle builds a short display title from a segment's text parts.
// It never returns an empty string.
func SynthesizeTitle(parts []string) string {
	if len(parts) == 0 {
		return fallbackEmptyTitle
	}

	if len(parts) > maxTitleParts {
		parts = parts[:maxTitleParts]
	}

	combined := cleanText(strings.Join(parts, " "))

	title := leadingSentence(combined)
	if utf8.RuneCountInString(title) <= minSentenceLength {
		title = leadingWords(combined, maxTitleLength)
	}

	if title == "" {
		return fallbackFillerTitle
	}

	return capitalizeFirst(title)
}

// cleanText strips audio cues and filler words, then collapses whitespace.
func cleanText(text string) string {
	for _, pattern := range audioCuePatterns {
		text = pattern.ReplaceAllString(text, "")
	}
	for _, pattern := range fillerWordPatterns {
		text = removeFillerWord(pattern, text)
	}
	return strings.Join(strings.Fields(text), " ")
}

// removeFillerWord drops every match of pattern, keeping the boundary characters.
// Matches cannot overlap, so adjacent fillers sharing a boundary need another pass.
func removeFillerWord(pattern *regexp.Regexp, text string) string {
	for {
		next := pattern.ReplaceAllString(text, "${1}${2}")
		if next == text {
			return text
		}
		text = next
	}
}

// leadingSentence returns the trimmed text before the first '.', '!' or '?'.
func leadingSentence(text string) string {
	if idx := strings.IndexAny(text, ".!?"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// leadingWords accumulates words while the title (with the joining space) stays within limit.
func leadingWords(text string, limit int) string {
	var (
		b      strings.Builder
		length int
	)

	for _, word := range strings.Fields(text) {
		wordLength := utf8.RuneCountInString(word)
		if length+1+wordLength > limit {
			break
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
			length++
		}
		b.WriteString(word)
		length += wordLength
	}

	return b.String()
}

// capitalizeFirst upper-cases the first character and leaves the rest untouched.
func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return s
	}
	return cases.Upper(language.Und).String(string(r)) + s[size:]
}
