package chapters

import (
	"testing"
)

func TestIsPlaceholderTitle(t *testing.T) {
	placeholders := []string{
		"Chapter",
		"Introduction",
		"Chapter 1",
		"chapter 12",
		"CHAPTER 5",
		"Track 01",
		"Part 1",
		"Part Two",
		"1",
		"01",
		"1.",
		"01 -",
		"",
		"   ",
	}

	for _, title := range placeholders {
		if !IsPlaceholderTitle(title) {
			t.Errorf("expected %q to be a placeholder", title)
		}
	}

	informative := []string{
		"Today we begin the tutorial",
		"Setting up the development environment",
		"Introduction to goroutines",
		"Chapter One: The Beginning",
		"Wrapping up",
	}

	for _, title := range informative {
		if IsPlaceholderTitle(title) {
			t.Errorf("expected %q to NOT be a placeholder", title)
		}
	}
}

func TestAnalyzeChapters(t *testing.T) {
	tests := []struct {
		name            string
		titles          []string
		wantPlaceholder int
		wantReview      bool
	}{
		{
			name:            "empty",
			titles:          nil,
			wantPlaceholder: 0,
			wantReview:      false,
		},
		{
			name:            "all fallbacks",
			titles:          []string{"Introduction", "Chapter", "Introduction"},
			wantPlaceholder: 3,
			wantReview:      true,
		},
		{
			name:            "none generic",
			titles:          []string{"Installing the toolchain", "Writing the first handler"},
			wantPlaceholder: 0,
			wantReview:      false,
		},
		{
			name:            "exactly half is not enough",
			titles:          []string{"Introduction", "Deploying to production"},
			wantPlaceholder: 1,
			wantReview:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chapters := make([]Chapter, len(tt.titles))
			for i, title := range tt.titles {
				chapters[i] = Chapter{Title: title}
			}

			result := AnalyzeChapters(chapters)

			if result.Total != len(tt.titles) {
				t.Errorf("Total = %d, want %d", result.Total, len(tt.titles))
			}
			if result.PlaceholderCount != tt.wantPlaceholder {
				t.Errorf("PlaceholderCount = %d, want %d", result.PlaceholderCount, tt.wantPlaceholder)
			}
			if result.NeedsReview != tt.wantReview {
				t.Errorf("NeedsReview = %v, want %v", result.NeedsReview, tt.wantReview)
			}
		})
	}
}
