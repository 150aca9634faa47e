// Package search implements the hybrid retrieval engine: it fans out the
// vector and lexical paths, merges their hits into one ranked list and
// reports stage timings and degradation diagnostics.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agrodex/searchd/internal/core"
	"github.com/agrodex/searchd/internal/embedder"
	"github.com/agrodex/searchd/internal/lexical"
	"github.com/agrodex/searchd/internal/repository"
	"github.com/agrodex/searchd/internal/snippet"
)

// Fallback reasons reported when the vector path was skipped or degraded.
const (
	FallbackEmbeddingDisabled = "embedding-disabled"
	FallbackEmbeddingFailed   = "embedding-generation-failed"
	FallbackVectorFailed      = "vector-search-failed"
	FallbackVectorSkipped     = "vector-search-skipped"
)

// Config holds the engine's ranking knobs. The zero value is not usable;
// build one from the service configuration.
type Config struct {
	Weights Weights

	// DistanceThreshold drops vector rows farther than this cosine distance
	// when > 0.
	DistanceThreshold float64

	// Enhanced selects weighted scored merging by default; requests may
	// override per call.
	Enhanced bool

	// ProductLimit and FAQLimit bound each retrieval path per corpus.
	ProductLimit int
	FAQLimit     int

	// MaxResults is the hard cap on merged results regardless of the
	// caller's requested limit.
	MaxResults int
}

// Request is one search invocation. RunLexical and RunVector are decided by
// the caller (typically an upstream intent classifier); the engine never
// re-derives them.
type Request struct {
	Query      string
	Corpus     core.Corpus
	RunLexical bool
	RunVector  bool

	// Limit caps the merged result list; 0 means the corpus default.
	Limit int

	// Enhanced overrides the configured merge mode when non-nil.
	Enhanced *bool
}

// Timings are per-stage durations in milliseconds.
type Timings struct {
	VectorMs  int64 `json:"vector_ms"`
	LexicalMs int64 `json:"lexical_ms"`
	MergeMs   int64 `json:"merge_ms"`
	TotalMs   int64 `json:"total_ms"`
}

// Stats describe how a search executed.
type Stats struct {
	VectorCount    int     `json:"vector_count"`
	LexicalCount   int     `json:"lexical_count"`
	EmbeddingUsed  bool    `json:"embedding_used"`
	FallbackReason string  `json:"fallback_reason,omitempty"`
	Timings        Timings `json:"timings"`
}

// Response is the engine output contract.
type Response struct {
	QueryID string `json:"query_id"`
	Query   string `json:"query"`
	Results []Hit  `json:"results"`
	Stats   Stats  `json:"stats"`
}

// Engine orchestrates the hybrid pipeline over the two corpora.
type Engine struct {
	products repository.SearchRepository
	faqs     repository.SearchRepository
	embedder *embedder.Client
	scorer   *lexical.Scorer
	cfg      Config
	logger   *slog.Logger
}

// NewEngine creates a search engine.
func NewEngine(products, faqs repository.SearchRepository, embed *embedder.Client, scorer *lexical.Scorer, cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Weights == (Weights{}) {
		cfg.Weights = DefaultWeights
	}
	if cfg.ProductLimit <= 0 {
		cfg.ProductLimit = 10
	}
	if cfg.FAQLimit <= 0 {
		cfg.FAQLimit = 5
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 20
	}
	return &Engine{
		products: products,
		faqs:     faqs,
		embedder: embed,
		scorer:   scorer,
		cfg:      cfg,
		logger:   logger,
	}
}

// Search runs the requested retrieval paths concurrently, merges their hits
// and returns the ranked list with diagnostics. A failure in one path never
// aborts the other; an error is returned only for invalid requests.
func (e *Engine) Search(ctx context.Context, req Request) (*Response, error) {
	repo, corpusLimit, err := e.corpus(req.Corpus)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = corpusLimit
	}
	if limit > e.cfg.MaxResults {
		limit = e.cfg.MaxResults
	}
	enhanced := e.cfg.Enhanced
	if req.Enhanced != nil {
		enhanced = *req.Enhanced
	}

	queryID := uuid.NewString()
	start := time.Now()

	var (
		wg            sync.WaitGroup
		vectorHits    []Hit
		lexicalHits   []Hit
		fallback      string
		embeddingUsed bool
		vectorMs      int64
		lexicalMs     int64
	)

	if req.RunVector {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stage := time.Now()
			vectorHits, embeddingUsed, fallback = e.runVector(ctx, repo, req.Query, corpusLimit)
			vectorMs = time.Since(stage).Milliseconds()
		}()
	} else {
		fallback = FallbackVectorSkipped
	}

	if req.RunLexical {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stage := time.Now()
			lexicalHits = e.runLexical(ctx, repo, req.Query, corpusLimit, enhanced)
			lexicalMs = time.Since(stage).Milliseconds()
		}()
	}

	wg.Wait()

	mergeStart := time.Now()
	results := Merge(vectorHits, lexicalHits, limit, enhanced, e.cfg.Weights)
	mergeMs := time.Since(mergeStart).Milliseconds()

	resp := &Response{
		QueryID: queryID,
		Query:   req.Query,
		Results: results,
		Stats: Stats{
			VectorCount:    len(vectorHits),
			LexicalCount:   len(lexicalHits),
			EmbeddingUsed:  embeddingUsed,
			FallbackReason: fallback,
			Timings: Timings{
				VectorMs:  vectorMs,
				LexicalMs: lexicalMs,
				MergeMs:   mergeMs,
				TotalMs:   time.Since(start).Milliseconds(),
			},
		},
	}

	e.logger.Debug("search completed",
		"query_id", queryID,
		"corpus", req.Corpus,
		"results", len(results),
		"vector_count", len(vectorHits),
		"lexical_count", len(lexicalHits),
		"fallback_reason", fallback,
		"total_ms", resp.Stats.Timings.TotalMs,
	)
	return resp, nil
}

// Description is the engine's observable runtime state, served by the
// admin stats endpoint.
type Description struct {
	VectorWeight      float64 `json:"vector_weight"`
	LexicalWeight     float64 `json:"lexical_weight"`
	PairBonus         float64 `json:"pair_bonus"`
	DistanceThreshold float64 `json:"distance_threshold"`
	Enhanced          bool    `json:"enhanced"`
	ProductLimit      int     `json:"product_limit"`
	FAQLimit          int     `json:"faq_limit"`
	MaxResults        int     `json:"max_results"`
	EmbeddingEnabled  bool    `json:"embedding_enabled"`
	EmbeddingCacheLen int     `json:"embedding_cache_len"`
}

// Describe reports the engine's effective configuration and cache state.
func (e *Engine) Describe() Description {
	return Description{
		VectorWeight:      e.cfg.Weights.Vector,
		LexicalWeight:     e.cfg.Weights.Lexical,
		PairBonus:         e.cfg.Weights.PairBonus,
		DistanceThreshold: e.cfg.DistanceThreshold,
		Enhanced:          e.cfg.Enhanced,
		ProductLimit:      e.cfg.ProductLimit,
		FAQLimit:          e.cfg.FAQLimit,
		MaxResults:        e.cfg.MaxResults,
		EmbeddingEnabled:  e.embedder.Enabled(),
		EmbeddingCacheLen: e.embedder.CacheLen(),
	}
}

func (e *Engine) corpus(corpus core.Corpus) (repository.SearchRepository, int, error) {
	switch corpus {
	case core.CorpusProducts:
		return e.products, e.cfg.ProductLimit, nil
	case core.CorpusFAQ:
		return e.faqs, e.cfg.FAQLimit, nil
	default:
		return nil, 0, fmt.Errorf("unknown corpus %q", corpus)
	}
}

// runVector embeds the query and issues the nearest-neighbor search. Every
// degraded outcome returns an empty hit list plus the fallback reason; a
// vector-store error is caught here so the lexical path still answers.
func (e *Engine) runVector(ctx context.Context, repo repository.SearchRepository, query string, limit int) (hits []Hit, embeddingUsed bool, fallback string) {
	vec := e.embedder.Embed(ctx, query)
	if vec == nil {
		if !e.embedder.Enabled() {
			return nil, false, FallbackEmbeddingDisabled
		}
		return nil, false, FallbackEmbeddingFailed
	}

	matches, err := repo.VectorSearch(ctx, vec, repository.VectorSearchOptions{
		Limit:       limit,
		MaxDistance: e.cfg.DistanceThreshold,
	})
	if err != nil {
		e.logger.Error("vector search failed", "error", err)
		return nil, true, FallbackVectorFailed
	}

	hits = make([]Hit, 0, len(matches))
	for _, m := range matches {
		distance := m.Distance
		hits = append(hits, Hit{
			Document:       m.Document,
			Source:         m.Variant.Source(),
			VectorDistance: &distance,
			Snippet:        snippet.Build(m.Content, snippet.DefaultLimit),
		})
	}
	return hits, true, ""
}

// runLexical lists the corpus and ranks it with RankLexical. A storage
// error degrades to an empty list so the vector path still answers.
func (e *Engine) runLexical(ctx context.Context, repo repository.SearchRepository, query string, limit int, enhanced bool) []Hit {
	docs, err := repo.ListActive(ctx)
	if err != nil {
		e.logger.Error("lexical listing failed", "error", err)
		return nil
	}
	return RankLexical(docs, query, enhanced, e.scorer, limit)
}

// RankLexical produces the lexical hit list. In enhanced mode every
// candidate is scored, entities with no lexical relevance are dropped, and
// the rest sort descending by score with storage order breaking ties. In
// baseline mode the storage order is preserved unscored.
func RankLexical(docs []core.Document, query string, enhanced bool, scorer *lexical.Scorer, limit int) []Hit {
	if limit <= 0 {
		limit = len(docs)
	}

	if !enhanced {
		hits := make([]Hit, 0, min(limit, len(docs)))
		for _, doc := range docs {
			if len(hits) == limit {
				break
			}
			hits = append(hits, Hit{
				Document: doc,
				Source:   core.SourceLexical,
				Snippet:  snippet.Focused(doc.Description, query, snippet.DefaultLimit),
			})
		}
		return hits
	}

	type scored struct {
		hit   Hit
		score float64
	}
	var candidates []scored
	for _, doc := range docs {
		res, ok := scorer.Score(query, doc)
		if !ok {
			continue
		}
		score := res.Score
		signals := res.Signals
		candidates = append(candidates, scored{
			score: score,
			hit: Hit{
				Document:     doc,
				Source:       core.SourceLexical,
				LexicalScore: &score,
				Signals:      &signals,
				Snippet:      snippet.Focused(doc.Description, query, snippet.DefaultLimit),
			},
		})
	}

	// Stable sort keeps storage order on equal scores, which makes
	// identical queries return identical rankings.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	hits := make([]Hit, len(candidates))
	for i, c := range candidates {
		hits[i] = c.hit
	}
	return hits
}
