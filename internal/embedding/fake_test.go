package embedding

import (
	"context"
	"errors"
	"sync"
)

// countingEmbedder maps each text to a one-element vector holding its length
// and records every batch it receives.
type countingEmbedder struct {
	mu      sync.Mutex
	batches [][]string
	err     error
}

func (c *countingEmbedder) Name() string { return "counting" }

func (c *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, append([]string(nil), texts...))
	if c.err != nil {
		return nil, c.err
	}
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = []float64{float64(len(t))}
	}
	return out, nil
}

func (c *countingEmbedder) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.batches)
}

// shortEmbedder drops the last vector of every batch.
type shortEmbedder struct{}

func (shortEmbedder) Name() string { return "short" }

func (shortEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, errors.New("empty batch")
	}
	return make([][]float64, len(texts)-1), nil
}
