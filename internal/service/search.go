package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chaptermatic/chaptermatic-server/internal/domain"
	"github.com/chaptermatic/chaptermatic-server/internal/search"
	"github.com/chaptermatic/chaptermatic-server/internal/store"
)

// SearchService bridges the search index with the data store.
// It implements store.SearchIndexer so the store keeps the index current.
type SearchService struct {
	index  *search.SearchIndex
	store  store.VideoChapterStore
	logger *slog.Logger
}

var _ store.SearchIndexer = (*SearchService)(nil)

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, store store.VideoChapterStore, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// Search queries saved chapter sets.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	return s.index.Search(ctx, params)
}

// IndexVideoChapter indexes a single saved chapter set.
func (s *SearchService) IndexVideoChapter(_ context.Context, vc *domain.VideoChapter) error {
	if err := s.index.IndexDocument(search.VideoChapterToSearchDocument(vc)); err != nil {
		return fmt.Errorf("index video chapter: %w", err)
	}

	s.logger.Debug("indexed video chapter", "id", vc.ID, "video_id", vc.VideoID, "chapters", len(vc.Chapters))
	return nil
}

// DeleteVideoChapter removes a saved chapter set from the index.
func (s *SearchService) DeleteVideoChapter(_ context.Context, id string) error {
	return s.index.DeleteDocument(id)
}

// DocumentCount returns the number of indexed documents.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// ReindexAll drops the index and rebuilds it from the store.
func (s *SearchService) ReindexAll(ctx context.Context) error {
	s.logger.Info("starting full reindex")

	if err := s.index.Rebuild(); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	all, err := s.store.ListAllVideoChapters(ctx)
	if err != nil {
		return fmt.Errorf("list video chapters: %w", err)
	}

	docs := make([]*search.SearchDocument, 0, len(all))
	for _, vc := range all {
		docs = append(docs, search.VideoChapterToSearchDocument(vc))
	}

	if len(docs) > 0 {
		if err := s.index.IndexDocuments(docs); err != nil {
			return fmt.Errorf("index video chapters: %w", err)
		}
	}

	s.logger.Info("reindex complete", "count", len(docs))
	return nil
}

// ReindexIfEmpty rebuilds the index when it has no documents but the store does,
// which happens after a mapping version change recreated the index.
func (s *SearchService) ReindexIfEmpty(ctx context.Context) error {
	indexed, err := s.index.DocumentCount()
	if err != nil {
		return fmt.Errorf("count documents: %w", err)
	}
	if indexed > 0 {
		return nil
	}

	stored, err := s.store.CountVideoChapters(ctx)
	if err != nil {
		return fmt.Errorf("count video chapters: %w", err)
	}
	if stored == 0 {
		return nil
	}

	return s.ReindexAll(ctx)
}
