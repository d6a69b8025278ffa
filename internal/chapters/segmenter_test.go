package chapters

import (
	"strings"
	"testing"
)

func TestGenerate_Empty(t *testing.T) {
	got := Generate(nil)
	if got == nil {
		t.Fatal("expected non-nil empty slice")
	}
	if len(got) != 0 {
		t.Errorf("expected 0 chapters, got %d", len(got))
	}
}

func TestGenerate_SingleEntry(t *testing.T) {
	got := Generate([]Entry{{Start: 12.7, Duration: 3, Text: "welcome to the show everyone"}})

	if len(got) != 1 {
		t.Fatalf("expected 1 chapter, got %d", len(got))
	}
	if got[0].Start != 12 {
		t.Errorf("Start = %d, want 12", got[0].Start)
	}
	if got[0].Timestamp != "0:12" {
		t.Errorf("Timestamp = %q, want %q", got[0].Timestamp, "0:12")
	}
	if got[0].Title != "Welcome to the show everyone" {
		t.Errorf("Title = %q", got[0].Title)
	}
}

func TestGenerate_NoCuesYieldsSingleChapter(t *testing.T) {
	// Contiguous entries without transition keywords never cut.
	var entries []Entry
	for i := 0; i < 100; i++ {
		entries = append(entries, Entry{Start: float64(i * 4), Duration: 4, Text: "lorem ipsum dolor"})
	}

	got := Generate(entries)
	if len(got) != 1 {
		t.Fatalf("expected 1 chapter, got %d", len(got))
	}
	if got[0].Start != 0 {
		t.Errorf("Start = %d, want 0", got[0].Start)
	}
}

func TestGenerate_TransitionCut(t *testing.T) {
	entries := []Entry{
		{Start: 0, Duration: 5, Text: "Today we begin the tutorial"},
		{Start: 5, Duration: 45, Text: "some content about the setup"},
		{Start: 50, Duration: 5, Text: "Now let's move to the next part"},
		{Start: 55, Duration: 5, Text: "Deploying the service to production"},
	}

	got := Generate(entries)
	if len(got) != 2 {
		t.Fatalf("expected 2 chapters, got %d: %+v", len(got), got)
	}

	if got[0].Start != 0 || got[0].Title != "Today we begin the tutorial some content about the setup Now let's move to the next part" {
		t.Errorf("first chapter = %+v", got[0])
	}
	if got[1].Start != 55 || got[1].Timestamp != "0:55" {
		t.Errorf("second chapter = %+v", got[1])
	}
	if got[1].Title != "Deploying the service to production" {
		t.Errorf("second title = %q", got[1].Title)
	}
}

func TestGenerate_TransitionBeforeThresholdDoesNotCut(t *testing.T) {
	entries := []Entry{
		{Start: 0, Duration: 5, Text: "intro"},
		{Start: 44, Duration: 1, Text: "next up"},
		{Start: 45, Duration: 1, Text: "more"},
	}

	got := Generate(entries)
	if len(got) != 1 {
		t.Fatalf("expected 1 chapter, got %d", len(got))
	}
}

func TestGenerate_TransitionThresholdIsInclusive(t *testing.T) {
	entries := []Entry{
		{Start: 0, Duration: 5, Text: "intro"},
		{Start: 45, Duration: 1, Text: "next up"},
		{Start: 46, Duration: 1, Text: "more"},
	}

	got := Generate(entries)
	if len(got) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(got))
	}
	if got[1].Start != 46 {
		t.Errorf("second Start = %d, want 46", got[1].Start)
	}
}

func TestGenerate_KeywordSubstringMatch(t *testing.T) {
	// "steps" contains "step".
	entries := []Entry{
		{Start: 0, Duration: 1, Text: "hello"},
		{Start: 50, Duration: 1, Text: "follow these steps carefully"},
		{Start: 51, Duration: 1, Text: "after"},
	}

	got := Generate(entries)
	if len(got) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(got))
	}
}

func TestGenerate_KeywordCaseInsensitive(t *testing.T) {
	entries := []Entry{
		{Start: 0, Duration: 1, Text: "hello"},
		{Start: 50, Duration: 1, Text: "FINALLY we are done"},
		{Start: 51, Duration: 1, Text: "after"},
	}

	got := Generate(entries)
	if len(got) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(got))
	}
}

func TestGenerate_GapCut(t *testing.T) {
	entries := []Entry{
		{Start: 0, Duration: 30, Text: "opening remarks"},
		{Start: 60, Duration: 2, Text: "closing remarks"},
		// 3 seconds of silence after the previous entry ends.
		{Start: 65, Duration: 2, Text: "questions from the audience"},
	}

	got := Generate(entries)
	if len(got) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(got))
	}
	if got[1].Start != 65 {
		t.Errorf("second Start = %d, want 65", got[1].Start)
	}
}

func TestGenerate_GapAtThresholdDoesNotCut(t *testing.T) {
	entries := []Entry{
		{Start: 0, Duration: 30, Text: "opening remarks"},
		{Start: 60, Duration: 2, Text: "closing remarks"},
		// Exactly 2 seconds of silence is not a pause.
		{Start: 64, Duration: 2, Text: "questions from the audience"},
	}

	got := Generate(entries)
	if len(got) != 1 {
		t.Fatalf("expected 1 chapter, got %d", len(got))
	}
}

func TestGenerate_GapBeforeThresholdDoesNotCut(t *testing.T) {
	entries := []Entry{
		{Start: 0, Duration: 5, Text: "opening remarks"},
		{Start: 59, Duration: 1, Text: "closing remarks"},
		{Start: 90, Duration: 2, Text: "questions from the audience"},
	}

	got := Generate(entries)
	if len(got) != 1 {
		t.Fatalf("expected 1 chapter, got %d", len(got))
	}
}

func TestGenerate_MissingDurationMeansZero(t *testing.T) {
	entries := []Entry{
		{Start: 0, Text: "opening remarks"},
		{Start: 60, Text: "closing remarks"},
		{Start: 63, Text: "questions"},
	}

	got := Generate(entries)
	if len(got) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(got))
	}
}

func TestGenerate_Properties(t *testing.T) {
	var entries []Entry
	words := []string{"now", "lorem", "next", "ipsum", "section", "dolor"}
	start := 3.4
	for i := 0; i < 500; i++ {
		entries = append(entries, Entry{
			Start:    start,
			Duration: 3,
			Text:     words[i%len(words)] + " sentence number",
		})
		start += 3
		if i%37 == 0 {
			start += 5
		}
	}

	got := Generate(entries)

	if len(got) == 0 {
		t.Fatal("expected at least one chapter")
	}
	if len(got) < 2 {
		t.Errorf("expected multiple chapters, got %d", len(got))
	}
	if got[0].Start != 3 {
		t.Errorf("first Start = %d, want 3", got[0].Start)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Start < got[i-1].Start {
			t.Errorf("chapter %d starts before chapter %d", i, i-1)
		}
	}
	for i, ch := range got {
		if strings.TrimSpace(ch.Title) == "" {
			t.Errorf("chapter %d has empty title", i)
		}
	}
}

func TestSegmenter_CustomRules(t *testing.T) {
	s := NewSegmenter(Rules{
		TransitionKeywords:   []string{"Let Us Turn"},
		MinTransitionElapsed: 10,
	})

	rules := s.Rules()
	if rules.MinGapElapsed != 60 {
		t.Errorf("MinGapElapsed = %v, want default 60", rules.MinGapElapsed)
	}
	if rules.PauseThreshold != 2 {
		t.Errorf("PauseThreshold = %v, want default 2", rules.PauseThreshold)
	}
	if len(rules.TransitionKeywords) != 1 || rules.TransitionKeywords[0] != "let us turn" {
		t.Errorf("TransitionKeywords = %v", rules.TransitionKeywords)
	}

	entries := []Entry{
		{Start: 0, Duration: 1, Text: "hello"},
		{Start: 12, Duration: 1, Text: "let us turn to the data"},
		{Start: 13, Duration: 1, Text: "the data shows growth"},
		// "now" is no longer a keyword.
		{Start: 40, Duration: 1, Text: "now something else"},
		{Start: 41, Duration: 1, Text: "end"},
	}

	got := s.Generate(entries)
	if len(got) != 2 {
		t.Fatalf("expected 2 chapters, got %d: %+v", len(got), got)
	}
	if got[1].Start != 13 {
		t.Errorf("second Start = %d, want 13", got[1].Start)
	}
}

func TestDefaultRules_ReturnsCopy(t *testing.T) {
	a := DefaultRules()
	a.TransitionKeywords[0] = "changed"

	b := DefaultRules()
	if b.TransitionKeywords[0] != "now" {
		t.Errorf("DefaultRules shares keyword storage: %q", b.TransitionKeywords[0])
	}
}
