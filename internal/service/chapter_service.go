package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/chaptermatic/chaptermatic-server/internal/chapters"
	"github.com/chaptermatic/chaptermatic-server/internal/domain"
	domainerrors "github.com/chaptermatic/chaptermatic-server/internal/errors"
	"github.com/chaptermatic/chaptermatic-server/internal/id"
	"github.com/chaptermatic/chaptermatic-server/internal/search"
	"github.com/chaptermatic/chaptermatic-server/internal/store"
	"github.com/chaptermatic/chaptermatic-server/internal/transcript"
	"github.com/chaptermatic/chaptermatic-server/internal/validation"
	"github.com/chaptermatic/chaptermatic-server/internal/youtube"
)

// UnknownVideoID is reported when a request carries neither a video ID nor a URL to derive one from.
const UnknownVideoID = "unknown"

// ChapterService turns transcripts into chapters and manages saved chapter sets.
type ChapterService struct {
	store     store.VideoChapterStore
	search    *SearchService
	segmenter *chapters.Segmenter
	validator *validation.Validator
	logger    *slog.Logger
}

// NewChapterService creates a new chapter service.
func NewChapterService(
	store store.VideoChapterStore,
	search *SearchService,
	segmenter *chapters.Segmenter,
	logger *slog.Logger,
) *ChapterService {
	return &ChapterService{
		store:     store,
		search:    search,
		segmenter: segmenter,
		validator: validation.New(),
		logger:    logger,
	}
}

// GenerateRequest is the input for Generate.
type GenerateRequest struct {
	Entries   []chapters.Entry `json:"transcript"`
	SourceURL string           `json:"youtube_url" validate:"omitempty,url,youtube_url"`
	VideoID   string           `json:"video_id" validate:"omitempty,max=20"`
	Title     string           `json:"title" validate:"max=500"`
}

// GenerateResult is the output of Generate.
type GenerateResult struct {
	RunID       string
	VideoID     string
	Chapters    []chapters.Chapter
	Description string
	Analysis    chapters.AnalysisResult

	// Saved is set when the chapters were persisted.
	Saved *domain.VideoChapter
}

// Generate segments a transcript into chapters.
// When both a source URL and a video ID are known the result is saved;
// the video ID may be derived from the URL.
func (s *ChapterService) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if len(req.Entries) == 0 {
		return nil, domainerrors.Validation("transcript is required")
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := s.logger.With("run_id", runID)

	videoID := req.VideoID
	if videoID == "" && req.SourceURL != "" {
		if extracted, ok := youtube.ExtractVideoID(req.SourceURL); ok && len(extracted) <= youtube.MaxVideoIDLength {
			videoID = extracted
		}
	}

	start := time.Now()
	result := s.segmenter.Generate(req.Entries)
	if len(result) == 0 {
		return nil, domainerrors.Validation("could not generate chapters from transcript")
	}

	out := &GenerateResult{
		RunID:       runID,
		VideoID:     videoID,
		Chapters:    result,
		Description: chapters.FormatDescription(result),
		Analysis:    chapters.AnalyzeChapters(result),
	}
	if out.VideoID == "" {
		out.VideoID = UnknownVideoID
	}

	logger.Info("generated chapters",
		"entries", len(req.Entries),
		"chapters", len(result),
		"placeholders", out.Analysis.PlaceholderCount,
		"duration", time.Since(start),
	)

	if req.SourceURL != "" && videoID != "" {
		saved, err := s.save(ctx, req, videoID, result)
		if err != nil {
			logger.Error("failed to save chapters", "video_id", videoID, "error", err)
			return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "error saving chapters")
		}
		out.Saved = saved
		logger.Info("saved chapters", "id", saved.ID, "video_id", videoID)
	}

	return out, nil
}

func (s *ChapterService) save(ctx context.Context, req GenerateRequest, videoID string, result []chapters.Chapter) (*domain.VideoChapter, error) {
	vcID, err := id.NewVideoChapterID()
	if err != nil {
		return nil, err
	}

	vc := &domain.VideoChapter{
		ID:        vcID,
		SourceURL: req.SourceURL,
		VideoID:   videoID,
		Title:     req.Title,
		Chapters:  result,
		CreatedAt: time.Now(),
	}

	if err := s.store.CreateVideoChapter(ctx, vc); err != nil {
		return nil, err
	}
	return vc, nil
}

// GenerateFromFile loads a transcript file and generates chapters without saving.
func (s *ChapterService) GenerateFromFile(ctx context.Context, path string) (*GenerateResult, error) {
	entries, err := transcript.Load(path)
	if err != nil {
		return nil, err
	}
	return s.Generate(ctx, GenerateRequest{Entries: entries})
}

// GetVideoChapter returns a saved chapter set.
func (s *ChapterService) GetVideoChapter(ctx context.Context, vcID string) (*domain.VideoChapter, error) {
	vc, err := s.store.GetVideoChapter(ctx, vcID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return vc, nil
}

// ListVideoChapters returns saved chapter sets newest first.
func (s *ChapterService) ListVideoChapters(ctx context.Context, params store.PaginationParams) (*store.PaginatedResult[*domain.VideoChapter], error) {
	result, err := s.store.ListVideoChapters(ctx, params)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return result, nil
}

// DeleteVideoChapter removes a saved chapter set.
func (s *ChapterService) DeleteVideoChapter(ctx context.Context, vcID string) error {
	if err := s.store.DeleteVideoChapter(ctx, vcID); err != nil {
		return mapStoreError(err)
	}
	s.logger.Info("deleted video chapter", "id", vcID)
	return nil
}

// SearchVideoChapters runs a full-text search over saved chapter sets.
func (s *ChapterService) SearchVideoChapters(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	if s.search == nil {
		return nil, domainerrors.Unavailable("search is not available")
	}
	return s.search.Search(ctx, params)
}

// ReindexAll rebuilds the search index from the store.
func (s *ChapterService) ReindexAll(ctx context.Context) error {
	if s.search == nil {
		return domainerrors.Unavailable("search is not available")
	}
	return s.search.ReindexAll(ctx)
}

// mapStoreError converts persistence errors into domain errors.
func mapStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFound("video chapter not found")
	case errors.Is(err, store.ErrInvalidInput):
		return domainerrors.Wrap(err, domainerrors.CodeValidation, "invalid request")
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.Wrap(err, domainerrors.CodeAlreadyExists, "video chapter already exists")
	default:
		return err
	}
}
