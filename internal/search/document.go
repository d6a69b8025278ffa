// Package search provides full-text search over saved chapter sets using Bleve.
// Each saved set is one document; its chapter titles are denormalized into it
// so a single query can match either the video title or any chapter title.
package search

import (
	"github.com/chaptermatic/chaptermatic-server/internal/domain"
)

// SearchDocument is the document structure for the Bleve index.
type SearchDocument struct {
	ID        string `json:"id"`
	VideoID   string `json:"video_id"`
	SourceURL string `json:"source_url"`

	// Title is the saved record's title (often empty).
	Title string `json:"title,omitempty"`

	// ChapterTitles holds each chapter title in order.
	ChapterTitles []string `json:"chapter_titles,omitempty"`

	ChapterCount int   `json:"chapter_count"`
	CreatedAt    int64 `json:"created_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// This ensures field names match the Bleve index mapping.
func (d *SearchDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":            d.ID,
		"video_id":      d.VideoID,
		"source_url":    d.SourceURL,
		"chapter_count": d.ChapterCount,
		"created_at":    d.CreatedAt,
	}

	if d.Title != "" {
		m["title"] = d.Title
	}
	if len(d.ChapterTitles) > 0 {
		m["chapter_titles"] = d.ChapterTitles
	}

	return m
}

// VideoChapterToSearchDocument converts a saved chapter set to a SearchDocument.
func VideoChapterToSearchDocument(vc *domain.VideoChapter) *SearchDocument {
	return &SearchDocument{
		ID:            vc.ID,
		VideoID:       vc.VideoID,
		SourceURL:     vc.SourceURL,
		Title:         vc.Title,
		ChapterTitles: vc.ChapterTitles(),
		ChapterCount:  len(vc.Chapters),
		CreatedAt:     vc.CreatedAt.UnixMilli(),
	}
}
