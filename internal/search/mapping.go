package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the mapping for override documents.
// Titles use the standard analyzer since they mix scripts; ids and types match exactly.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = standard.Name

	docMapping := bleve.NewDocumentMapping()

	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = standard.Name
	titleFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	altFieldMapping := bleve.NewTextFieldMapping()
	altFieldMapping.Analyzer = standard.Name
	altFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("alt_titles", altFieldMapping)

	// Stored verbatim for display
	rawTitleFieldMapping := bleve.NewTextFieldMapping()
	rawTitleFieldMapping.Analyzer = keyword.Name
	rawTitleFieldMapping.Index = false
	rawTitleFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("raw_title", rawTitleFieldMapping)

	imageFieldMapping := bleve.NewTextFieldMapping()
	imageFieldMapping.Analyzer = keyword.Name
	imageFieldMapping.Index = false
	imageFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("image_url", imageFieldMapping)

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	idFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	typeFieldMapping := bleve.NewTextFieldMapping()
	typeFieldMapping.Analyzer = keyword.Name
	typeFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("type", typeFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
