// Package lexical implements the rule-based relevance scorer that ranks
// entities by token, field and synonym matches, independently of any
// embedding signal.
package lexical

import (
	"strings"

	"github.com/agrodex/searchd/internal/core"
	"github.com/agrodex/searchd/internal/synonyms"
	"github.com/agrodex/searchd/internal/textutil"
)

// Field weights are additive and independent: a token matching several
// fields adds every matching field's weight.
const (
	weightName         = 3.5
	weightDescription  = 2.5
	weightCategory     = 2.0
	weightManufacturer = 1.5
	weightTags         = 4.0

	tokenMatchBonus = 0.5
	cultureTagBonus = 1.0
	cultureBonus    = 2.0
	treatmentBonus  = 2.0
	pairBonus       = 5.0
)

// Field names used as MatchedFields keys.
const (
	FieldName         = "name"
	FieldDescription  = "description"
	FieldCategory     = "category"
	FieldManufacturer = "manufacturer"
	FieldTags         = "tags"
)

// Signals describes how a query matched an entity. It is derived fresh per
// (query, entity) pair and never cached.
type Signals struct {
	Tokens                  []string
	MatchedTokens           []string
	MatchedFields           map[string][]string
	CultureMatches          map[string]struct{}
	TreatmentMatches        map[string]struct{}
	HasCultureTreatmentPair bool
}

// Result is a lexical score with its supporting signals.
type Result struct {
	Score   float64
	Signals Signals
}

// Scorer scores entities against tokenized queries using the synonym
// dictionaries. A Scorer is read-only after construction and safe for
// concurrent use.
type Scorer struct {
	dict *synonyms.Dictionary
}

// NewScorer creates a scorer backed by the given dictionary.
func NewScorer(dict *synonyms.Dictionary) *Scorer {
	return &Scorer{dict: dict}
}

// Score computes the lexical score of doc against query. The second return
// is false when the query yields no tokens or nothing matched; a zero-valued
// Result is never returned with ok=true.
func (s *Scorer) Score(query string, doc core.Document) (Result, bool) {
	tokens := textutil.ExtractTokens(query, textutil.DefaultMinTokenLength, textutil.LexicalMaxTokens)
	if len(tokens) == 0 {
		return Result{}, false
	}

	fields := []struct {
		name   string
		text   string
		weight float64
	}{
		{FieldName, textutil.Normalize(doc.Name), weightName},
		{FieldDescription, textutil.Normalize(doc.Description), weightDescription},
		{FieldCategory, textutil.Normalize(doc.Category), weightCategory},
		{FieldManufacturer, textutil.Normalize(doc.Manufacturer), weightManufacturer},
	}
	tags := make([]string, 0, len(doc.Tags))
	for _, tag := range doc.Tags {
		if norm := textutil.Normalize(tag); norm != "" {
			tags = append(tags, norm)
		}
	}

	sig := Signals{
		Tokens:           tokens,
		MatchedFields:    make(map[string][]string),
		CultureMatches:   make(map[string]struct{}),
		TreatmentMatches: make(map[string]struct{}),
	}

	var score float64
	for _, token := range tokens {
		category := s.dict.Resolve(token)
		terms := s.dict.Expand(token, category)

		tokenMatched := false
		tagMatched := false

		for _, f := range fields {
			if f.text == "" {
				continue
			}
			if containsAny(f.text, terms) {
				score += f.weight
				tokenMatched = true
				sig.MatchedFields[f.name] = append(sig.MatchedFields[f.name], token)
			}
		}
		for _, tag := range tags {
			if containsAny(tag, terms) {
				score += weightTags
				tokenMatched = true
				tagMatched = true
				sig.MatchedFields[FieldTags] = append(sig.MatchedFields[FieldTags], token)
				break
			}
		}

		if !tokenMatched {
			continue
		}
		score += tokenMatchBonus
		sig.MatchedTokens = append(sig.MatchedTokens, token)

		switch category {
		case synonyms.CategoryCulture:
			canonical, _ := s.dict.Canonical(token, category)
			sig.CultureMatches[canonical] = struct{}{}
			if tagMatched {
				score += cultureTagBonus
			}
		case synonyms.CategoryTreatment:
			canonical, _ := s.dict.Canonical(token, category)
			sig.TreatmentMatches[canonical] = struct{}{}
		}
	}

	if len(sig.CultureMatches) > 0 {
		score += cultureBonus
	}
	if len(sig.TreatmentMatches) > 0 {
		score += treatmentBonus
	}
	if len(sig.CultureMatches) > 0 && len(sig.TreatmentMatches) > 0 {
		sig.HasCultureTreatmentPair = true
		score += pairBonus
	}

	if score == 0 {
		return Result{}, false
	}
	return Result{Score: score, Signals: sig}, true
}

// containsAny reports whether text contains any of terms as a plain
// substring. Matching is deliberately not word-boundary-aware: a short term
// can match inside an unrelated longer word. This recall-boosting behavior
// is relied on elsewhere; do not tighten it to word matches.
func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if term != "" && strings.Contains(text, term) {
			return true
		}
	}
	return false
}
