// Package embedder provides the embedding client used by the vector search
// path: provider access, input normalization, a bounded LRU cache, and
// silent degradation when embeddings are unavailable.
package embedder

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/agrodex/searchd/internal/textutil"
)

const (
	// DefaultCharLimit is the maximum input length, in runes, sent to the
	// provider.
	DefaultCharLimit = 4000

	// DefaultCacheSize is the embedding cache capacity.
	DefaultCacheSize = 32

	// DefaultTimeout bounds a single provider call.
	DefaultTimeout = 2 * time.Second
)

// Provider generates a raw embedding for one text input.
type Provider interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// ClientConfig configures a Client. A nil Provider disables embeddings for
// the process lifetime, which is the expected state when no credentials are
// configured.
type ClientConfig struct {
	Provider  Provider
	CharLimit int
	CacheSize int
	Timeout   time.Duration
	Logger    *slog.Logger
}

// Client wraps a Provider with input normalization, truncation, an LRU
// cache and a per-call timeout. All expected failure modes degrade to a nil
// vector instead of an error, so callers can fall back to lexical-only
// ranking.
type Client struct {
	provider  Provider
	charLimit int
	timeout   time.Duration
	cache     *lru.Cache[string, []float32]
	logger    *slog.Logger

	disabledOnce sync.Once
}

// NewClient creates an embedding client. Zero config fields take the
// package defaults.
func NewClient(cfg ClientConfig) *Client {
	charLimit := cfg.CharLimit
	if charLimit <= 0 {
		charLimit = DefaultCharLimit
	}
	cacheSize := cfg.CacheSize
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// lru.New only fails on a non-positive size, which is guarded above.
	cache, _ := lru.New[string, []float32](cacheSize)

	return &Client{
		provider:  cfg.Provider,
		charLimit: charLimit,
		timeout:   timeout,
		cache:     cache,
		logger:    logger,
	}
}

// Enabled reports whether a provider is configured.
func (c *Client) Enabled() bool {
	return c.provider != nil
}

// CacheLen returns the number of cached embeddings.
func (c *Client) CacheLen() int {
	return c.cache.Len()
}

// Embed returns the embedding vector for text, or nil when embeddings are
// disabled, the input is empty, or the provider call fails. Failures are
// logged per failure mode and never surfaced as errors.
func (c *Client) Embed(ctx context.Context, text string) []float32 {
	if c.provider == nil {
		c.disabledOnce.Do(func() {
			c.logger.Warn("embedding provider not configured, queries run lexical-only")
		})
		return nil
	}

	text = textutil.CollapseWhitespace(text)
	if runes := []rune(text); len(runes) > c.charLimit {
		text = string(runes[:c.charLimit])
	}
	key := strings.ToLower(strings.TrimSpace(text))
	if key == "" {
		return nil
	}

	// A cache hit refreshes recency.
	if vec, ok := c.cache.Get(key); ok {
		return vec
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	vec, err := c.provider.CreateEmbedding(callCtx, text)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		c.logger.Error("embedding request timed out", "timeout", c.timeout)
		return nil
	case err != nil:
		c.logger.Error("embedding request failed", "error", err)
		return nil
	case len(vec) == 0:
		c.logger.Error("embedding provider returned an empty vector")
		return nil
	}

	c.cache.Add(key, vec)
	return vec
}
