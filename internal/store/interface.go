// Package store defines the persistence interface for the Chaptermatic server.
package store

import (
	"context"

	"github.com/chaptermatic/chaptermatic-server/internal/domain"
)

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error
	SetSearchIndexer(indexer SearchIndexer)

	VideoChapterStore
}

// VideoChapterStore persists saved chapter sets.
type VideoChapterStore interface {
	CreateVideoChapter(ctx context.Context, vc *domain.VideoChapter) error
	GetVideoChapter(ctx context.Context, id string) (*domain.VideoChapter, error)
	// ListVideoChapters returns saved sets newest first.
	ListVideoChapters(ctx context.Context, params PaginationParams) (*PaginatedResult[*domain.VideoChapter], error)
	ListAllVideoChapters(ctx context.Context) ([]*domain.VideoChapter, error)
	DeleteVideoChapter(ctx context.Context, id string) error
	CountVideoChapters(ctx context.Context) (int, error)
}
