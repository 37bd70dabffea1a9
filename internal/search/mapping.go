package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for search documents.
//
// Names and artists get English stemming and term vectors for highlighting.
// Places and tags use the simple analyzer so "Silver Lake" is not stemmed.
// Type and status are keywords for filtering.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = en.AnalyzerName
	nameFieldMapping.Store = true
	nameFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	artistFieldMapping := bleve.NewTextFieldMapping()
	artistFieldMapping.Analyzer = en.AnalyzerName
	artistFieldMapping.Store = true
	artistFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("artist", artistFieldMapping)

	bioFieldMapping := bleve.NewTextFieldMapping()
	bioFieldMapping.Analyzer = en.AnalyzerName
	bioFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("bio", bioFieldMapping)

	for _, field := range []string{"city", "neighborhood", "genre", "tags"} {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = simple.Name
		fm.Store = true
		docMapping.AddFieldMappingsAt(field, fm)
	}

	// --- Keyword fields (exact match) ---

	for _, field := range []string{"id", "type", "status", "date"} {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = keyword.Name
		fm.Store = true
		docMapping.AddFieldMappingsAt(field, fm)
	}

	imageFieldMapping := bleve.NewTextFieldMapping()
	imageFieldMapping.Index = false
	imageFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("image", imageFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
