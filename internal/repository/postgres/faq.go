package postgres

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/agrodex/searchd/internal/core"
	"github.com/agrodex/searchd/internal/repository"
)

// FAQRepo implements repository.SearchRepository for FAQ entries. The
// question maps onto the document name and the answer onto the description.
type FAQRepo struct {
	db *DB
}

// NewFAQRepo creates a new FAQ repository
func NewFAQRepo(db *DB) *FAQRepo {
	return &FAQRepo{db: db}
}

// ListActive returns all active FAQ entries ordered by id.
func (r *FAQRepo) ListActive(ctx context.Context) ([]core.Document, error) {
	query := `
		SELECT id, question, answer, category, tags
		FROM faqs
		WHERE active
		ORDER BY id
	`
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list faqs: %w", err)
	}
	defer rows.Close()

	var docs []core.Document
	for rows.Next() {
		var doc core.Document
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.Description, &doc.Category, &doc.Tags); err != nil {
			return nil, fmt.Errorf("failed to scan faq: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate faqs: %w", err)
	}
	return docs, nil
}

// VectorSearch returns active FAQ entries ordered by ascending cosine
// distance to the query embedding, one row per entry.
func (r *FAQRepo) VectorSearch(ctx context.Context, embedding []float32, opts repository.VectorSearchOptions) ([]repository.VectorMatch, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 5
	}

	vector := pgvector.NewVector(embedding)
	args := []any{vector, limit}

	query := `
		SELECT id, question, answer, category, tags, distance, variant, content
		FROM (
			SELECT DISTINCT ON (f.id)
			       f.id, f.question, f.answer, f.category, f.tags,
			       e.embedding <=> $1 AS distance, e.variant, e.content
			FROM faq_embeddings e
			JOIN faqs f ON f.id = e.faq_id
			WHERE f.active
			ORDER BY f.id, e.embedding <=> $1
		) best
	`
	if opts.MaxDistance > 0 {
		query += ` WHERE distance <= $3`
		args = append(args, opts.MaxDistance)
	}
	query += `
		ORDER BY distance
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to vector-search faqs: %w", err)
	}
	defer rows.Close()

	var matches []repository.VectorMatch
	for rows.Next() {
		var m repository.VectorMatch
		if err := rows.Scan(&m.Document.ID, &m.Document.Name, &m.Document.Description,
			&m.Document.Category, &m.Document.Tags, &m.Distance, &m.Variant, &m.Content); err != nil {
			return nil, fmt.Errorf("failed to scan faq match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate faq matches: %w", err)
	}
	return matches, nil
}

// UpsertEmbedding stores or replaces the embedding row for one FAQ entry
// and content variant.
func (r *FAQRepo) UpsertEmbedding(ctx context.Context, entityID int64, variant repository.ContentVariant, content string, embedding []float32) error {
	query := `
		INSERT INTO faq_embeddings (faq_id, variant, content, embedding, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (faq_id, variant)
		DO UPDATE SET content = EXCLUDED.content,
		              embedding = EXCLUDED.embedding,
		              updated_at = now()
	`
	_, err := r.db.Pool.Exec(ctx, query, entityID, variant, content, pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("failed to upsert faq embedding: %w", err)
	}
	return nil
}

// Ensure FAQRepo implements the repository interface.
var _ repository.SearchRepository = (*FAQRepo)(nil)
