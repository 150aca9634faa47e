// Package indexer builds embedding input text for catalog entities and
// writes the resulting vectors to the store. It supplies the vector search
// path with its item-variant rows.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/agrodex/searchd/internal/core"
	"github.com/agrodex/searchd/internal/embedder"
	"github.com/agrodex/searchd/internal/repository"
)

// DefaultConcurrency is the default number of concurrent embedding calls.
const DefaultConcurrency = 4

// Result summarizes one reindex run.
type Result struct {
	Indexed  int           `json:"indexed"`
	Skipped  int           `json:"skipped"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"-"`
}

// Indexer re-embeds a corpus.
type Indexer struct {
	products    repository.SearchRepository
	faqs        repository.SearchRepository
	embedder    *embedder.Client
	concurrency int
	logger      *slog.Logger
}

// New creates an indexer. A concurrency <= 0 takes the default.
func New(products, faqs repository.SearchRepository, embed *embedder.Client, concurrency int, logger *slog.Logger) *Indexer {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{
		products:    products,
		faqs:        faqs,
		embedder:    embed,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Reindex re-embeds every active entity of the given corpus and upserts the
// item-variant embedding rows. Entities whose embedding call degrades are
// counted as skipped; storage failures are counted as failed. Reindexing
// with embeddings disabled is rejected up front.
func (ix *Indexer) Reindex(ctx context.Context, corpus core.Corpus) (*Result, error) {
	if !ix.embedder.Enabled() {
		return nil, fmt.Errorf("embeddings are disabled, nothing to index")
	}

	var repo repository.SearchRepository
	switch corpus {
	case core.CorpusProducts:
		repo = ix.products
	case core.CorpusFAQ:
		repo = ix.faqs
	default:
		return nil, fmt.Errorf("unknown corpus %q", corpus)
	}

	docs, err := repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", corpus, err)
	}

	start := time.Now()
	var (
		mu     sync.Mutex
		result Result
		wg     sync.WaitGroup
	)
	semaphore := make(chan struct{}, ix.concurrency)

	for _, doc := range docs {
		wg.Add(1)
		go func(doc core.Document) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-ctx.Done():
				mu.Lock()
				result.Failed++
				mu.Unlock()
				return
			}

			input := EmbeddingInput(corpus, doc)
			vec := ix.embedder.Embed(ctx, input)
			if vec == nil {
				mu.Lock()
				result.Skipped++
				mu.Unlock()
				return
			}
			if err := repo.UpsertEmbedding(ctx, doc.ID, repository.VariantItem, input, vec); err != nil {
				ix.logger.Error("failed to store embedding", "corpus", corpus, "id", doc.ID, "error", err)
				mu.Lock()
				result.Failed++
				mu.Unlock()
				return
			}
			mu.Lock()
			result.Indexed++
			mu.Unlock()
		}(doc)
	}

	wg.Wait()
	result.Duration = time.Since(start)

	ix.logger.Info("reindex completed",
		"corpus", corpus,
		"indexed", result.Indexed,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"duration", result.Duration,
	)
	return &result, nil
}

// EmbeddingInput builds the canonical embedding input string for an entity.
// Catalog products use the fixed template the rest of the system expects;
// FAQ entries embed question and answer together.
func EmbeddingInput(corpus core.Corpus, doc core.Document) string {
	if corpus == core.CorpusFAQ {
		return strings.TrimSpace(doc.Name + "\n" + doc.Description)
	}
	return fmt.Sprintf("%s. Categoria: %s. Fabricante: %s. Preço aproximado: R$%.2f. Tags: %s. Descrição: %s",
		doc.Name, doc.Category, doc.Manufacturer, doc.Price,
		strings.Join(doc.Tags, ","), doc.Description)
}
