package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve mapping for note documents.
//
// Titles and content use the standard analyzer: notes mix languages, and
// stemming for one language hurts the others. Ownership fields are numeric so
// they can be filtered with exact ranges.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = standard.Name

	docMapping := bleve.NewDocumentMapping()

	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = standard.Name
	titleFieldMapping.Store = true
	titleFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	// Content is searchable but not stored (too large)
	contentFieldMapping := bleve.NewTextFieldMapping()
	contentFieldMapping.Analyzer = standard.Name
	contentFieldMapping.Store = false
	contentFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("content", contentFieldMapping)

	folderFieldMapping := bleve.NewTextFieldMapping()
	folderFieldMapping.Analyzer = keyword.Name
	folderFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("folder", folderFieldMapping)

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	for _, field := range []string{"note_id", "owner_id", "project_id"} {
		numeric := bleve.NewNumericFieldMapping()
		numeric.Store = true
		docMapping.AddFieldMappingsAt(field, numeric)
	}

	recycledFieldMapping := bleve.NewBooleanFieldMapping()
	docMapping.AddFieldMappingsAt("recycled", recycledFieldMapping)

	updatedFieldMapping := bleve.NewDateTimeFieldMapping()
	updatedFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("updated_at", updatedFieldMapping)

	indexMapping.DefaultMapping = docMapping

	return indexMapping
}
