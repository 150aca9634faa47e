package postgres

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/agrodex/searchd/internal/core"
	"github.com/agrodex/searchd/internal/repository"
)

// ProductRepo implements repository.SearchRepository for catalog products.
type ProductRepo struct {
	db *DB
}

// NewProductRepo creates a new product repository
func NewProductRepo(db *DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// ListActive returns all active products ordered by id.
func (r *ProductRepo) ListActive(ctx context.Context) ([]core.Document, error) {
	query := `
		SELECT id, name, description, category, manufacturer, price, tags
		FROM products
		WHERE status = 'active'
		ORDER BY id
	`
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var docs []core.Document
	for rows.Next() {
		var doc core.Document
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.Description, &doc.Category,
			&doc.Manufacturer, &doc.Price, &doc.Tags); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return docs, nil
}

// VectorSearch returns active products ordered by ascending cosine distance
// to the query embedding. Only each product's closest variant row is
// returned, so the result has at most one row per product.
func (r *ProductRepo) VectorSearch(ctx context.Context, embedding []float32, opts repository.VectorSearchOptions) ([]repository.VectorMatch, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	vector := pgvector.NewVector(embedding)
	args := []any{vector, limit}

	// The <=> operator computes cosine distance, lower is closer.
	query := `
		SELECT id, name, description, category, manufacturer, price, tags,
		       distance, variant, content
		FROM (
			SELECT DISTINCT ON (p.id)
			       p.id, p.name, p.description, p.category, p.manufacturer,
			       p.price, p.tags,
			       e.embedding <=> $1 AS distance, e.variant, e.content
			FROM product_embeddings e
			JOIN products p ON p.id = e.product_id
			WHERE p.status = 'active'
			ORDER BY p.id, e.embedding <=> $1
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
		return nil, fmt.Errorf("failed to vector-search products: %w", err)
	}
	defer rows.Close()

	var matches []repository.VectorMatch
	for rows.Next() {
		var m repository.VectorMatch
		if err := rows.Scan(&m.Document.ID, &m.Document.Name, &m.Document.Description,
			&m.Document.Category, &m.Document.Manufacturer, &m.Document.Price,
			&m.Document.Tags, &m.Distance, &m.Variant, &m.Content); err != nil {
			return nil, fmt.Errorf("failed to scan product match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate product matches: %w", err)
	}
	return matches, nil
}

// UpsertEmbedding stores or replaces the embedding row for one product and
// content variant.
func (r *ProductRepo) UpsertEmbedding(ctx context.Context, entityID int64, variant repository.ContentVariant, content string, embedding []float32) error {
	query := `
		INSERT INTO product_embeddings (product_id, variant, content, embedding, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (product_id, variant)
		DO UPDATE SET content = EXCLUDED.content,
		              embedding = EXCLUDED.embedding,
		              updated_at = now()
	`
	_, err := r.db.Pool.Exec(ctx, query, entityID, variant, content, pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("failed to upsert product embedding: %w", err)
	}
	return nil
}

// Ensure ProductRepo implements the repository interface.
var _ repository.SearchRepository = (*ProductRepo)(nil)
