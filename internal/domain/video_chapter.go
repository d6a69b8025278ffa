// Package domain contains the records the server persists.
package domain

import (
	"time"

	"github.com/chaptermatic/chaptermatic-server/internal/chapters"
)

// VideoChapter is a saved chapter set for one video.
type VideoChapter struct {
	ID        string             `json:"id"`
	SourceURL string             `json:"youtube_url"`
	VideoID   string             `json:"video_id"`
	Title     string             `json:"title"` // Optional, empty when unknown
	Chapters  []chapters.Chapter `json:"chapters"`
	CreatedAt time.Time          `json:"created_at"`
}

// DisplayName returns "video_id - title", or "video_id - Untitled" without a title.
func (v *VideoChapter) DisplayName() string {
	if v.Title == "" {
		return v.VideoID + " - Untitled"
	}
	return v.VideoID + " - " + v.Title
}

// Description renders the chapters as pasteable description lines.
func (v *VideoChapter) Description() string {
	return chapters.FormatDescription(v.Chapters)
}

// ChapterTitles returns the titles in order.
func (v *VideoChapter) ChapterTitles() []string {
	titles := make([]string, len(v.Chapters))
	for i, ch := range v.Chapters {
		titles[i] = ch.Title
	}
	return titles
}
