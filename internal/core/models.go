// Package core holds the domain types shared by the search pipeline.
package core

// Corpus identifies which collection a search runs against.
type Corpus string

const (
	// CorpusProducts searches the catalog of agricultural inputs.
	CorpusProducts Corpus = "products"

	// CorpusFAQ searches the frequently-asked-questions entries.
	CorpusFAQ Corpus = "faq"
)

// Valid reports whether c names a known corpus.
func (c Corpus) Valid() bool {
	return c == CorpusProducts || c == CorpusFAQ
}

// Document is the searchable view of a catalog product or FAQ entry.
// For FAQ entries, Name holds the question and Description the answer;
// Manufacturer and Price are zero.
type Document struct {
	ID           int64
	Name         string
	Description  string
	Category     string
	Manufacturer string
	Price        float64
	Tags         []string
}

// Source identifies which retrieval path produced a hit, and for vector
// hits, which content variant it matched against.
type Source string

const (
	// SourceVectorItem is a vector match against the entity's own description.
	SourceVectorItem Source = "vector-item"

	// SourceVectorFile is a vector match against an attached-file chunk.
	SourceVectorFile Source = "vector-file"

	// SourceVectorNote is a vector match against a free-form note.
	SourceVectorNote Source = "vector-note"

	// SourceLexical is a hit produced by the rule-based lexical scorer.
	SourceLexical Source = "lexical"
)
