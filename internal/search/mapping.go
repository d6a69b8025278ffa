package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for search documents.
//
// Titles get English stemming and term vectors for highlighting.
// Identifiers use the keyword analyzer for exact matching.
// Counts and timestamps are numeric for sorting.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = en.AnalyzerName
	titleFieldMapping.Store = true
	titleFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	chapterTitlesFieldMapping := bleve.NewTextFieldMapping()
	chapterTitlesFieldMapping.Analyzer = en.AnalyzerName
	chapterTitlesFieldMapping.Store = true
	chapterTitlesFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("chapter_titles", chapterTitlesFieldMapping)

	// --- Keyword fields (exact match) ---

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	videoIDFieldMapping := bleve.NewTextFieldMapping()
	videoIDFieldMapping.Analyzer = keyword.Name
	videoIDFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("video_id", videoIDFieldMapping)

	sourceURLFieldMapping := bleve.NewTextFieldMapping()
	sourceURLFieldMapping.Analyzer = keyword.Name
	sourceURLFieldMapping.Store = true
	sourceURLFieldMapping.Index = false
	docMapping.AddFieldMappingsAt("source_url", sourceURLFieldMapping)

	// --- Numeric fields (sorting) ---

	chapterCountFieldMapping := bleve.NewNumericFieldMapping()
	chapterCountFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("chapter_count", chapterCountFieldMapping)

	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
