package embedder

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeProvider records calls and serves canned vectors.
type fakeProvider struct {
	mu    sync.Mutex
	calls []string
	err   error
	empty bool
}

func (f *fakeProvider) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	if f.empty {
		return nil, nil
	}
	return []float32{float32(len(text)), 1}, nil
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestEmbed_DisabledWithoutProvider(t *testing.T) {
	c := NewClient(ClientConfig{})

	if c.Enabled() {
		t.Error("client without provider should report disabled")
	}
	if vec := c.Embed(context.Background(), "soja"); vec != nil {
		t.Errorf("expected nil vector, got %v", vec)
	}
}

func TestEmbed_CacheHitSkipsProvider(t *testing.T) {
	provider := &fakeProvider{}
	c := NewClient(ClientConfig{Provider: provider})

	first := c.Embed(context.Background(), "Fungicida para soja")
	if first == nil {
		t.Fatal("expected a vector")
	}
	// Same normalized input, different casing and spacing.
	second := c.Embed(context.Background(), "  fungicida   PARA soja ")
	if second == nil {
		t.Fatal("expected a cached vector")
	}
	if provider.callCount() != 1 {
		t.Errorf("provider called %d times, want 1", provider.callCount())
	}
}

func TestEmbed_LRUEviction(t *testing.T) {
	provider := &fakeProvider{}
	c := NewClient(ClientConfig{Provider: provider, CacheSize: 2})

	ctx := context.Background()
	c.Embed(ctx, "aaa")
	c.Embed(ctx, "bbb")

	// Refresh "aaa" so "bbb" is the least recently used entry.
	c.Embed(ctx, "aaa")
	if provider.callCount() != 2 {
		t.Fatalf("provider called %d times, want 2", provider.callCount())
	}

	// Inserting a third key evicts "bbb"; "aaa" and "ccc" stay cached.
	c.Embed(ctx, "ccc")
	c.Embed(ctx, "aaa")
	c.Embed(ctx, "ccc")
	if provider.callCount() != 3 {
		t.Errorf("provider called %d times, want 3", provider.callCount())
	}
	c.Embed(ctx, "bbb")
	if provider.callCount() != 4 {
		t.Errorf("evicted key should hit the provider again, calls = %d", provider.callCount())
	}
}

func TestEmbed_ProviderErrorReturnsNil(t *testing.T) {
	provider := &fakeProvider{err: errors.New("boom")}
	c := NewClient(ClientConfig{Provider: provider})

	if vec := c.Embed(context.Background(), "soja"); vec != nil {
		t.Errorf("expected nil on provider error, got %v", vec)
	}
	// Failures are not cached; the next call tries again.
	c.Embed(context.Background(), "soja")
	if provider.callCount() != 2 {
		t.Errorf("provider called %d times, want 2", provider.callCount())
	}
}

func TestEmbed_EmptyResponseReturnsNil(t *testing.T) {
	provider := &fakeProvider{empty: true}
	c := NewClient(ClientConfig{Provider: provider})

	if vec := c.Embed(context.Background(), "soja"); vec != nil {
		t.Errorf("expected nil on empty response, got %v", vec)
	}
}

func TestEmbed_TruncatesToCharLimit(t *testing.T) {
	provider := &fakeProvider{}
	c := NewClient(ClientConfig{Provider: provider, CharLimit: 10})

	c.Embed(context.Background(), strings.Repeat("a", 50))

	provider.mu.Lock()
	defer provider.mu.Unlock()
	if len(provider.calls) != 1 || len(provider.calls[0]) != 10 {
		t.Errorf("expected a single 10-char call, got %v", provider.calls)
	}
}

func TestEmbed_EmptyInputReturnsNil(t *testing.T) {
	provider := &fakeProvider{}
	c := NewClient(ClientConfig{Provider: provider})

	if vec := c.Embed(context.Background(), "   \n\t "); vec != nil {
		t.Errorf("expected nil for blank input, got %v", vec)
	}
	if provider.callCount() != 0 {
		t.Errorf("provider should not be called for blank input")
	}
}

func TestEmbed_TimeoutReturnsNil(t *testing.T) {
	slow := &slowProvider{delay: 50 * time.Millisecond}
	c := NewClient(ClientConfig{Provider: slow, Timeout: time.Millisecond})

	if vec := c.Embed(context.Background(), "soja"); vec != nil {
		t.Errorf("expected nil on timeout, got %v", vec)
	}
}

type slowProvider struct {
	delay time.Duration
}

func (s *slowProvider) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	select {
	case <-time.After(s.delay):
		return []float32{1}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
