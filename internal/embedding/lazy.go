package embedding

import (
	"context"
	"fmt"
	"sync"

	"docqa/internal/domain"
)

// Loader builds the concrete embedder, e.g. by loading model weights or
// connecting to an embedding server.
type Loader func(ctx context.Context) (domain.Embedder, error)

// Lazy is a process-wide embedder handle that loads the concrete embedder on
// first use and shares it with every caller afterwards. A failed load is
// reported to the caller that triggered it and attempted again on the next call.
type Lazy struct {
	name string
	load Loader

	mu    sync.Mutex
	inner domain.Embedder
}

// NewLazy returns a handle that calls load on first use.
func NewLazy(name string, load Loader) *Lazy {
	return &Lazy{name: name, load: load}
}

// Name returns the configured name of the wrapped embedder.
func (l *Lazy) Name() string { return l.name }

// Get returns the loaded embedder, loading it if needed.
func (l *Lazy) Get(ctx context.Context) (domain.Embedder, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inner != nil {
		return l.inner, nil
	}
	e, err := l.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load embedder %s: %w", l.name, err)
	}
	l.inner = e
	return e, nil
}

// Embed loads the embedder if needed and delegates to it.
func (l *Lazy) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	e, err := l.Get(ctx)
	if err != nil {
		return nil, err
	}
	return e.Embed(ctx, texts)
}
