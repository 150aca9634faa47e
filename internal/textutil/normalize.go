// Package textutil provides text normalization and tokenization for search.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultMinTokenLength is the minimum token length kept by ExtractTokens.
	DefaultMinTokenLength = 3

	// DefaultMaxTokens is the default token budget for ExtractTokens.
	DefaultMaxTokens = 5

	// LexicalMaxTokens is the token budget used by the lexical scorer.
	LexicalMaxTokens = 8

	// EmbeddingMaxTokens is the token budget for embedding-adjacent contexts
	// such as focused snippet extraction.
	EmbeddingMaxTokens = 12
)

// stopwords is the Portuguese function-word set dropped during tokenization.
// Words shorter than DefaultMinTokenLength never reach the lookup.
var stopwords = map[string]struct{}{
	"para": {}, "com": {}, "que": {}, "uma": {}, "uns": {}, "umas": {},
	"por": {}, "mais": {}, "muito": {}, "como": {}, "ser": {}, "sao": {},
	"tem": {}, "dos": {}, "das": {}, "nos": {}, "nas": {}, "num": {},
	"numa": {}, "este": {}, "esta": {}, "esse": {}, "essa": {}, "isso": {},
	"isto": {}, "qual": {}, "quais": {}, "onde": {}, "quando": {},
	"quanto": {}, "sobre": {}, "entre": {}, "tambem": {}, "seu": {},
	"sua": {}, "seus": {}, "suas": {}, "meu": {}, "minha": {}, "nao": {},
	"sim": {}, "voce": {}, "voces": {}, "ate": {}, "apos": {}, "pelo": {},
	"pela": {}, "pelos": {}, "pelas": {}, "mas": {}, "aqui": {}, "ali": {},
	"tenho": {}, "quero": {}, "preciso": {}, "gostaria": {}, "favor": {},
	"pode": {}, "posso": {}, "fazer": {}, "qualquer": {}, "algum": {},
	"alguma": {}, "ainda": {}, "existe": {}, "tipo": {},
}

// Normalize lowercases text, strips diacritics, replaces anything outside
// [a-z0-9] with a space, collapses whitespace runs and trims the result.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	// The transformer chain carries internal buffers, so build it per call
	// rather than sharing one across goroutines.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		} else {
			pendingSpace = true
		}
	}
	return b.String()
}

// ExtractTokens normalizes text, splits it on whitespace, drops tokens
// shorter than minLength or present in the stopword set, and keeps the
// first maxTokens surviving tokens in their original order. Tokens past the
// budget are silently ignored; callers needing broader coverage pass a
// larger maxTokens.
func ExtractTokens(text string, minLength, maxTokens int) []string {
	if minLength <= 0 {
		minLength = DefaultMinTokenLength
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	fields := strings.Fields(Normalize(text))
	tokens := make([]string, 0, maxTokens)
	for _, tok := range fields {
		if len(tok) < minLength {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
		if len(tokens) == maxTokens {
			break
		}
	}
	return tokens
}

// CollapseWhitespace replaces every whitespace run in text with a single
// space and trims the ends.
func CollapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
