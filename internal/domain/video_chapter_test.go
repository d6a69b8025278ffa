package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chaptermatic/chaptermatic-server/internal/chapters"
)

func TestVideoChapter_DisplayName(t *testing.T) {
	v := &VideoChapter{VideoID: "abc123"}
	assert.Equal(t, "abc123 - Untitled", v.DisplayName())

	v.Title = "Go concurrency"
	assert.Equal(t, "abc123 - Go concurrency", v.DisplayName())
}

func TestVideoChapter_Description(t *testing.T) {
	v := &VideoChapter{
		Chapters: []chapters.Chapter{
			{Start: 0, Timestamp: "0:00", Title: "Intro to channels"},
			{Start: 95, Timestamp: "1:35", Title: "Select statements"},
		},
	}

	assert.Equal(t, "0:00 Intro to channels\n1:35 Select statements", v.Description())
	assert.Equal(t, []string{"Intro to channels", "Select statements"}, v.ChapterTitles())
}
