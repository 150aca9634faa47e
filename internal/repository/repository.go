// Package repository defines the data access interfaces for catalog
// products, FAQ entries and their embedding rows.
package repository

import (
	"context"
	"errors"

	"github.com/agrodex/searchd/internal/core"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ContentVariant identifies which content a vector row embeds: the entity's
// own description, an attached-file chunk or a free-form note.
type ContentVariant string

const (
	VariantItem ContentVariant = "item"
	VariantFile ContentVariant = "file"
	VariantNote ContentVariant = "note"
)

// Source maps a content variant to the hit source reported to callers.
func (v ContentVariant) Source() core.Source {
	switch v {
	case VariantFile:
		return core.SourceVectorFile
	case VariantNote:
		return core.SourceVectorNote
	default:
		return core.SourceVectorItem
	}
}

// VectorSearchOptions bounds a nearest-neighbor query.
type VectorSearchOptions struct {
	// Limit caps the number of returned rows.
	Limit int

	// MaxDistance drops rows farther than this cosine distance when > 0.
	MaxDistance float64
}

// VectorMatch is one nearest-neighbor row: the matched entity, its cosine
// distance (lower = closer), the content variant the query vector matched
// against, and the embedded content for snippet building.
type VectorMatch struct {
	Document core.Document
	Distance float64
	Variant  ContentVariant
	Content  string
}

// SearchRepository is the per-corpus store surface the search engine needs:
// the full active entity listing for the lexical path and a
// distance-ordered nearest-neighbor query for the vector path.
type SearchRepository interface {
	// ListActive returns every active entity in storage order (ascending id).
	ListActive(ctx context.Context) ([]core.Document, error)

	// VectorSearch returns active entities ordered by ascending distance to
	// embedding, at most one row per entity (its closest variant).
	VectorSearch(ctx context.Context, embedding []float32, opts VectorSearchOptions) ([]VectorMatch, error)

	// UpsertEmbedding stores or replaces the embedding row for one entity
	// and content variant.
	UpsertEmbedding(ctx context.Context, entityID int64, variant ContentVariant, content string, embedding []float32) error
}
