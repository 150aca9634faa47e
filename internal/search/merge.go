package search

import (
	"math"
	"sort"

	"github.com/agrodex/searchd/internal/core"
	"github.com/agrodex/searchd/internal/lexical"
)

// Hit is one merged search result. A merged result set contains at most one
// Hit per entity id.
type Hit struct {
	Document core.Document `json:"document"`

	// Source is the retrieval path that produced the hit; for entities found
	// by both paths it is the vector variant, since the vector record
	// determines the hit's identity in baseline mode.
	Source core.Source `json:"source"`

	// VectorDistance is the cosine distance from the vector store
	// (lower = closer); nil when the entity did not appear in vector results.
	VectorDistance *float64 `json:"vector_distance,omitempty"`

	// LexicalScore is the additive rule-based score; nil when the entity did
	// not appear in lexical results.
	LexicalScore *float64 `json:"lexical_score,omitempty"`

	// Signals holds the lexical match breakdown when present.
	Signals *lexical.Signals `json:"signals,omitempty"`

	Snippet string `json:"snippet,omitempty"`
}

// Weights control the enhanced-mode combined score.
type Weights struct {
	Vector    float64
	Lexical   float64
	PairBonus float64
}

// DefaultWeights are the default enhanced-mode weights.
var DefaultWeights = Weights{Vector: 6, Lexical: 4, PairBonus: 4}

// normalizedCeiling is the normalized value assigned to non-positive
// distances, which only occur on degenerate exact matches.
const normalizedCeiling = 10.0

// normalizeVector maps a cosine distance onto an additive relevance value.
// This formula is canonical; every call site must use it rather than a
// local variant.
func normalizeVector(distance float64) float64 {
	switch {
	case math.IsNaN(distance):
		return 0
	case distance <= 0:
		return normalizedCeiling
	case distance < 1:
		return 2 - distance
	default:
		return 0
	}
}

// Merge combines vector hits and lexical hits into one deduplicated ranked
// list of at most limit hits. Either input may be empty; that is a normal
// degraded case, not an error.
//
// Baseline mode preserves vector order first and appends unseen lexical
// hits. When an entity appears in both lists, the lexical fields are copied
// onto the vector record as supplementary data without reordering.
//
// Enhanced mode scores every candidate with the weighted combination of the
// normalized vector distance, the lexical score, the culture/treatment pair
// bonus and reciprocal-rank terms, then sorts descending.
func Merge(vectorHits, lexicalHits []Hit, limit int, enhanced bool, w Weights) []Hit {
	if limit <= 0 {
		return nil
	}
	if enhanced {
		return mergeEnhanced(vectorHits, lexicalHits, limit, w)
	}
	return mergeBaseline(vectorHits, lexicalHits, limit)
}

func mergeBaseline(vectorHits, lexicalHits []Hit, limit int) []Hit {
	lexicalByID := make(map[int64]Hit, len(lexicalHits))
	for _, h := range lexicalHits {
		if _, dup := lexicalByID[h.Document.ID]; !dup {
			lexicalByID[h.Document.ID] = h
		}
	}

	merged := make([]Hit, 0, limit)
	seen := make(map[int64]struct{}, limit)

	for _, h := range vectorHits {
		if len(merged) == limit {
			return merged
		}
		if _, dup := seen[h.Document.ID]; dup {
			continue
		}
		seen[h.Document.ID] = struct{}{}
		if lex, ok := lexicalByID[h.Document.ID]; ok {
			h.LexicalScore = lex.LexicalScore
			h.Signals = lex.Signals
			if h.Snippet == "" {
				h.Snippet = lex.Snippet
			}
		}
		merged = append(merged, h)
	}

	for _, h := range lexicalHits {
		if len(merged) == limit {
			break
		}
		if _, dup := seen[h.Document.ID]; dup {
			continue
		}
		seen[h.Document.ID] = struct{}{}
		merged = append(merged, h)
	}
	return merged
}

type candidate struct {
	hit         Hit
	vectorRank  int
	lexicalRank int
}

func mergeEnhanced(vectorHits, lexicalHits []Hit, limit int, w Weights) []Hit {
	byID := make(map[int64]*candidate, len(vectorHits)+len(lexicalHits))
	order := make([]*candidate, 0, len(vectorHits)+len(lexicalHits))

	for rank, h := range vectorHits {
		if _, dup := byID[h.Document.ID]; dup {
			continue
		}
		c := &candidate{hit: h, vectorRank: rank, lexicalRank: -1}
		byID[h.Document.ID] = c
		order = append(order, c)
	}
	for rank, h := range lexicalHits {
		if c, ok := byID[h.Document.ID]; ok {
			if c.lexicalRank < 0 {
				c.lexicalRank = rank
				c.hit.LexicalScore = h.LexicalScore
				c.hit.Signals = h.Signals
				if c.hit.Snippet == "" {
					c.hit.Snippet = h.Snippet
				}
			}
			continue
		}
		c := &candidate{hit: h, vectorRank: -1, lexicalRank: rank}
		byID[h.Document.ID] = c
		order = append(order, c)
	}

	scores := make(map[*candidate]float64, len(order))
	for _, c := range order {
		scores[c] = combinedScore(c, w)
	}

	// Stable sort keeps vector-then-lexical input order on ties.
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	if len(order) > limit {
		order = order[:limit]
	}
	merged := make([]Hit, len(order))
	for i, c := range order {
		merged[i] = c.hit
	}
	return merged
}

func combinedScore(c *candidate, w Weights) float64 {
	var combined float64
	if c.hit.VectorDistance != nil {
		combined += normalizeVector(*c.hit.VectorDistance) * w.Vector
	}
	if c.hit.LexicalScore != nil {
		combined += *c.hit.LexicalScore * w.Lexical
	}
	if c.hit.Signals != nil && c.hit.Signals.HasCultureTreatmentPair {
		combined += w.PairBonus
	}
	if c.vectorRank >= 0 {
		combined += 1 / float64(c.vectorRank+1)
	}
	if c.lexicalRank >= 0 {
		combined += 1 / float64(c.lexicalRank+1)
	}
	return combined
}
