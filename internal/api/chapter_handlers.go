package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/chaptermatic/chaptermatic-server/internal/chapters"
	"github.com/chaptermatic/chaptermatic-server/internal/domain"
	domainerrors "github.com/chaptermatic/chaptermatic-server/internal/errors"
	"github.com/chaptermatic/chaptermatic-server/internal/search"
	"github.com/chaptermatic/chaptermatic-server/internal/service"
	"github.com/chaptermatic/chaptermatic-server/internal/store"
	"github.com/chaptermatic/chaptermatic-server/internal/transcript"
)

func (s *Server) registerChapterRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "generateChapters",
		Method:      http.MethodPost,
		Path:        "/api/v1/chapters/generate",
		Summary:     "Generate chapters",
		Description: "Segments a timed transcript into titled chapters. Saved when a YouTube URL is supplied.",
		Tags:        []string{"Chapters"},
		Middlewares: huma.Middlewares{s.rateLimitOperation(s.generateLimiter)},
	}, s.handleGenerateChapters)

	huma.Register(s.api, huma.Operation{
		OperationID: "listVideoChapters",
		Method:      http.MethodGet,
		Path:        "/api/v1/chapters",
		Summary:     "List saved chapters",
		Description: "Returns saved chapter sets, newest first",
		Tags:        []string{"Chapters"},
	}, s.handleListVideoChapters)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchVideoChapters",
		Method:      http.MethodGet,
		Path:        "/api/v1/chapters/search",
		Summary:     "Search saved chapters",
		Description: "Full-text search over saved chapter titles and video titles",
		Tags:        []string{"Chapters"},
	}, s.handleSearchVideoChapters)

	huma.Register(s.api, huma.Operation{
		OperationID: "getVideoChapter",
		Method:      http.MethodGet,
		Path:        "/api/v1/chapters/{id}",
		Summary:     "Get saved chapters",
		Description: "Returns a saved chapter set by ID",
		Tags:        []string{"Chapters"},
	}, s.handleGetVideoChapter)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteVideoChapter",
		Method:      http.MethodDelete,
		Path:        "/api/v1/chapters/{id}",
		Summary:     "Delete saved chapters",
		Description: "Deletes a saved chapter set",
		Tags:        []string{"Chapters"},
	}, s.handleDeleteVideoChapter)
}

// === DTOs ===

// GenerateChaptersRequest is the request body for chapter generation.
type GenerateChaptersRequest struct {
	Transcript []transcript.EntryInput `json:"transcript" doc:"Timed transcript entries in chronological order"`
	YouTubeURL string                  `json:"youtube_url,omitempty" maxLength:"2048" doc:"Video URL; when present the result is saved"`
	VideoID    string                  `json:"video_id,omitempty" maxLength:"20" doc:"Video ID; derived from youtube_url when omitted"`
	Title      string                  `json:"title,omitempty" maxLength:"500" doc:"Video title stored with saved chapters"`
}

// GenerateChaptersInput wraps the generate request for Huma.
type GenerateChaptersInput struct {
	Body GenerateChaptersRequest
}

// GenerateChaptersResponse contains generated chapters.
type GenerateChaptersResponse struct {
	RunID         string                  `json:"run_id" doc:"Correlation ID for this generation run"`
	VideoID       string                  `json:"video_id" doc:"Video ID, or \"unknown\""`
	Chapters      []chapters.Chapter      `json:"chapters" doc:"Generated chapters"`
	YouTubeFormat string                  `json:"youtube_format" doc:"Chapter list ready to paste into a video description"`
	Analysis      chapters.AnalysisResult `json:"analysis" doc:"Title quality statistics"`
	SavedID       string                  `json:"saved_id,omitempty" doc:"ID of the saved chapter set"`
}

// GenerateChaptersOutput wraps the generate response for Huma.
type GenerateChaptersOutput struct {
	Body GenerateChaptersResponse
}

// VideoChapterResponse contains a saved chapter set.
type VideoChapterResponse struct {
	ID            string             `json:"id" doc:"Saved chapter set ID"`
	YouTubeURL    string             `json:"youtube_url" doc:"Source video URL"`
	VideoID       string             `json:"video_id" doc:"Video ID"`
	Title         string             `json:"title,omitempty" doc:"Video title"`
	DisplayName   string             `json:"display_name" doc:"Video ID and title"`
	Chapters      []chapters.Chapter `json:"chapters" doc:"Chapters"`
	YouTubeFormat string             `json:"youtube_format" doc:"Chapter list ready to paste into a video description"`
	CreatedAt     time.Time          `json:"created_at" doc:"Creation time"`
}

// VideoChapterOutput wraps a saved chapter set for Huma.
type VideoChapterOutput struct {
	Body VideoChapterResponse
}

// GetVideoChapterInput contains parameters for getting a saved chapter set.
type GetVideoChapterInput struct {
	ID string `path:"id" doc:"Saved chapter set ID"`
}

// DeleteVideoChapterInput contains parameters for deleting a saved chapter set.
type DeleteVideoChapterInput struct {
	ID string `path:"id" doc:"Saved chapter set ID"`
}

// MessageResponse contains a simple confirmation message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// ListVideoChaptersInput contains pagination parameters.
type ListVideoChaptersInput struct {
	Cursor string `query:"cursor" doc:"Pagination cursor"`
	Limit  int    `query:"limit" minimum:"0" maximum:"500" doc:"Items per page (default 50)"`
}

// ListVideoChaptersResponse contains a page of saved chapter sets.
type ListVideoChaptersResponse struct {
	Items      []VideoChapterResponse `json:"items" doc:"Saved chapter sets"`
	NextCursor string                 `json:"next_cursor,omitempty" doc:"Cursor for the next page"`
	HasMore    bool                   `json:"has_more" doc:"Whether more pages exist"`
	Total      int                    `json:"total" doc:"Total saved chapter sets"`
}

// ListVideoChaptersOutput wraps the list response for Huma.
type ListVideoChaptersOutput struct {
	Body ListVideoChaptersResponse
}

// SearchVideoChaptersInput contains search parameters.
type SearchVideoChaptersInput struct {
	Query   string `query:"q" doc:"Search query; empty matches everything"`
	VideoID string `query:"video_id" doc:"Restrict to one video"`
	Sort    string `query:"sort" enum:"relevance,recent" default:"relevance" doc:"Result order"`
	Limit   int    `query:"limit" minimum:"0" maximum:"100" doc:"Max results (default 20)"`
	Offset  int    `query:"offset" minimum:"0" doc:"Results to skip"`
}

// SearchVideoChaptersOutput wraps search results for Huma.
type SearchVideoChaptersOutput struct {
	Body *search.SearchResult
}

// === Handlers ===

func (s *Server) handleGenerateChapters(ctx context.Context, input *GenerateChaptersInput) (*GenerateChaptersOutput, error) {
	if s.services == nil || s.services.Chapter == nil {
		return nil, domainerrors.Unavailable("chapter service not configured")
	}

	entries, err := transcript.FromRequest(input.Body.Transcript)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Chapter.Generate(ctx, service.GenerateRequest{
		Entries:   entries,
		SourceURL: input.Body.YouTubeURL,
		VideoID:   input.Body.VideoID,
		Title:     input.Body.Title,
	})
	if err != nil {
		return nil, err
	}

	resp := GenerateChaptersResponse{
		RunID:         result.RunID,
		VideoID:       result.VideoID,
		Chapters:      result.Chapters,
		YouTubeFormat: result.Description,
		Analysis:      result.Analysis,
	}
	if result.Saved != nil {
		resp.SavedID = result.Saved.ID
	}

	return &GenerateChaptersOutput{Body: resp}, nil
}

func (s *Server) handleListVideoChapters(ctx context.Context, input *ListVideoChaptersInput) (*ListVideoChaptersOutput, error) {
	page, err := s.services.Chapter.ListVideoChapters(ctx, store.PaginationParams{
		Limit:  input.Limit,
		Cursor: input.Cursor,
	})
	if err != nil {
		return nil, err
	}

	items := make([]VideoChapterResponse, len(page.Items))
	for i, vc := range page.Items {
		items[i] = toVideoChapterResponse(vc)
	}

	return &ListVideoChaptersOutput{
		Body: ListVideoChaptersResponse{
			Items:      items,
			NextCursor: page.NextCursor,
			HasMore:    page.HasMore,
			Total:      page.Total,
		},
	}, nil
}

func (s *Server) handleGetVideoChapter(ctx context.Context, input *GetVideoChapterInput) (*VideoChapterOutput, error) {
	vc, err := s.services.Chapter.GetVideoChapter(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &VideoChapterOutput{Body: toVideoChapterResponse(vc)}, nil
}

func (s *Server) handleDeleteVideoChapter(ctx context.Context, input *DeleteVideoChapterInput) (*MessageOutput, error) {
	if err := s.services.Chapter.DeleteVideoChapter(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Chapters deleted"}}, nil
}

func (s *Server) handleSearchVideoChapters(ctx context.Context, input *SearchVideoChaptersInput) (*SearchVideoChaptersOutput, error) {
	params := search.DefaultSearchParams()
	params.Query = input.Query
	params.VideoID = input.VideoID
	params.Offset = input.Offset
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	if input.Sort != "" {
		params.SortBy = input.Sort
	}

	result, err := s.services.Chapter.SearchVideoChapters(ctx, params)
	if err != nil {
		return nil, err
	}

	return &SearchVideoChaptersOutput{Body: result}, nil
}

func toVideoChapterResponse(vc *domain.VideoChapter) VideoChapterResponse {
	return VideoChapterResponse{
		ID:            vc.ID,
		YouTubeURL:    vc.SourceURL,
		VideoID:       vc.VideoID,
		Title:         vc.Title,
		DisplayName:   vc.DisplayName(),
		Chapters:      vc.Chapters,
		YouTubeFormat: vc.Description(),
		CreatedAt:     vc.CreatedAt,
	}
}
