package store

import (
	"context"

	"github.com/chaptermatic/chaptermatic-server/internal/domain"
)

// SearchIndexer is the interface for updating the search index.
// Store uses this to keep search in sync without depending on search implementation.
type SearchIndexer interface {
	IndexVideoChapter(ctx context.Context, vc *domain.VideoChapter) error
	DeleteVideoChapter(ctx context.Context, id string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexVideoChapter is a no-op.
func (NoopSearchIndexer) IndexVideoChapter(context.Context, *domain.VideoChapter) error { return nil }

// DeleteVideoChapter is a no-op.
func (NoopSearchIndexer) DeleteVideoChapter(context.Context, string) error { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}
