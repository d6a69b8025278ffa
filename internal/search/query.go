package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Sort orders supported by Search.
const (
	SortRelevance = "relevance"
	SortRecent    = "recent"
)

const maxSearchLimit = 100

// SearchParams configures a search query.
type SearchParams struct {
	Query   string // User's search query; empty matches everything
	VideoID string // Exact video ID filter (optional)

	Limit  int
	Offset int

	SortBy    string // SortRelevance or SortRecent
	Highlight bool   // Include match highlighting
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:     20,
		SortBy:    SortRelevance,
		Highlight: true,
	}
}

func (p *SearchParams) normalize() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > maxSearchLimit {
		p.Limit = maxSearchLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string      `json:"query"`
	Total  uint64      `json:"total"`
	TookMs int64       `json:"took_ms"`
	Hits   []SearchHit `json:"hits"`
}

// SearchHit represents a single search result.
type SearchHit struct {
	ID            string            `json:"id"`
	Score         float64           `json:"score"`
	VideoID       string            `json:"video_id"`
	SourceURL     string            `json:"youtube_url"`
	Title         string            `json:"title,omitempty"`
	ChapterTitles []string          `json:"chapter_titles,omitempty"`
	ChapterCount  int               `json:"chapter_count"`
	Highlights    map[string]string `json:"highlights,omitempty"`
}

// Search executes a search query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	params.normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)

	if params.SortBy == SortRecent {
		req.SortBy([]string{"-created_at", "id"})
	} else {
		req.SortBy([]string{"-_score", "-created_at"})
	}

	if params.Highlight {
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("title")
		req.Highlight.AddField("chapter_titles")
	}

	req.Fields = []string{"video_id", "source_url", "title", "chapter_titles", "chapter_count"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(res.Hits)),
	}

	for _, hit := range res.Hits {
		searchHit := SearchHit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if v, ok := hit.Fields["video_id"].(string); ok {
			searchHit.VideoID = v
		}
		if u, ok := hit.Fields["source_url"].(string); ok {
			searchHit.SourceURL = u
		}
		if t, ok := hit.Fields["title"].(string); ok {
			searchHit.Title = t
		}
		searchHit.ChapterTitles = storedStrings(hit.Fields["chapter_titles"])
		if c, ok := hit.Fields["chapter_count"].(float64); ok {
			searchHit.ChapterCount = int(c)
		}

		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	return result, nil
}

// storedStrings reads a stored text field, which Bleve returns as a string
// for a single value and as []interface{} for several.
func storedStrings(v interface{}) []string {
	switch val := v.(type) {
	case string:
		return []string{val}
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		titleMatch := bleve.NewMatchQuery(q)
		titleMatch.SetField("title")
		titleMatch.SetBoost(2.0)

		chapterMatch := bleve.NewMatchQuery(q)
		chapterMatch.SetField("chapter_titles")
		chapterMatch.SetBoost(1.5)

		// Typo tolerance on chapter titles
		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("chapter_titles")
		fuzzy.SetBoost(0.5)

		videoMatch := bleve.NewTermQuery(q)
		videoMatch.SetField("video_id")
		videoMatch.SetBoost(3.0)

		queries = append(queries, bleve.NewDisjunctionQuery(titleMatch, chapterMatch, fuzzy, videoMatch))
	}

	if params.VideoID != "" {
		vq := bleve.NewTermQuery(params.VideoID)
		vq.SetField("video_id")
		queries = append(queries, vq)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}
