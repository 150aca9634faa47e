// Package snippet produces bounded human-readable excerpts for search hits.
package snippet

import (
	"strings"

	"github.com/agrodex/searchd/internal/textutil"
)

// DefaultLimit is the default maximum snippet length in runes, excluding
// the ellipsis marker.
const DefaultLimit = 220

// maxFocusedSegments caps how many matching segments a focused snippet joins.
const maxFocusedSegments = 3

const ellipsis = "…"

// focusKeywords are composition/dosage terms that pull a snippet towards
// the parts of a description users actually ask about. Stored normalized.
var focusKeywords = []string{
	"composicao",
	"ingrediente",
	"ingredientes",
	"principio",
	"ativo",
	"dosagem",
	"dose",
	"dosagens",
	"aplicacao",
	"bula",
	"concentracao",
	"formulacao",
	"diluicao",
	"modo",
}

// Build collapses whitespace and truncates text to limit runes, appending
// an ellipsis when truncation happened. The result never exceeds limit+1
// runes. A limit <= 0 falls back to DefaultLimit.
func Build(text string, limit int) string {
	if limit <= 0 {
		limit = DefaultLimit
	}
	text = textutil.CollapseWhitespace(text)
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return strings.TrimRight(string(runes[:limit]), " ") + ellipsis
}

// Focused builds a snippet biased towards the segments of text mentioning
// the query's tokens or any focus keyword present in the query. When no
// focus token is found, or no segment contains one, it falls back to Build.
func Focused(text, query string, limit int) string {
	focus := focusTokens(query)
	if len(focus) == 0 {
		return Build(text, limit)
	}

	var segments []string
	for _, block := range strings.Split(text, "\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		for _, seg := range splitSentences(block) {
			if containsAnyToken(textutil.Normalize(seg), focus) {
				segments = append(segments, textutil.CollapseWhitespace(seg))
				if len(segments) == maxFocusedSegments {
					break
				}
			}
		}
		if len(segments) == maxFocusedSegments {
			break
		}
	}

	if len(segments) == 0 {
		return Build(text, limit)
	}
	return Build(strings.Join(segments, " "+ellipsis+" "), limit)
}

// focusTokens returns the query's tokens plus any focus keyword appearing
// in the normalized query.
func focusTokens(query string) []string {
	tokens := textutil.ExtractTokens(query, textutil.DefaultMinTokenLength, textutil.EmbeddingMaxTokens)
	normalized := textutil.Normalize(query)

	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	for _, kw := range focusKeywords {
		if _, dup := seen[kw]; dup {
			continue
		}
		if strings.Contains(normalized, kw) {
			seen[kw] = struct{}{}
			out = append(out, kw)
		}
	}
	return out
}

// splitSentences breaks a paragraph block into sentence-like segments.
func splitSentences(block string) []string {
	var segments []string
	start := 0
	for i, r := range block {
		switch r {
		case '.', '!', '?', ';':
			if seg := strings.TrimSpace(block[start:i]); seg != "" {
				segments = append(segments, seg)
			}
			start = i + 1
		}
	}
	if seg := strings.TrimSpace(block[start:]); seg != "" {
		segments = append(segments, seg)
	}
	return segments
}

func containsAnyToken(text string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(text, tok) {
			return true
		}
	}
	return false
}
