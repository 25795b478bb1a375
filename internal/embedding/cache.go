package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"docqa/internal/domain"
)

// Cache memoizes vectors of another embedder in an expiring LRU. Notebook
// chunks are re-ranked on every question, so most lookups after the first
// one are hits.
type Cache struct {
	next  domain.Embedder
	cache *expirable.LRU[string, []float64]
}

// WrapCache returns next wrapped in an LRU of the given size. A non-positive
// size disables caching; a non-positive ttl keeps entries until evicted.
func WrapCache(next domain.Embedder, size int, ttl time.Duration) domain.Embedder {
	if next == nil || size <= 0 {
		return next
	}
	return &Cache{
		next:  next,
		cache: expirable.NewLRU[string, []float64](size, nil, ttl),
	}
}

// Name returns the name of the wrapped embedder.
func (c *Cache) Name() string { return c.next.Name() }

// Embed returns cached vectors where available and embeds the remaining
// texts in a single call to the wrapped embedder.
func (c *Cache) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	keys := make([]string, len(texts))
	var missIdx []int
	var missTexts []string
	for i, text := range texts {
		keys[i] = c.key(text)
		if v, ok := c.cache.Get(keys[i]); ok {
			out[i] = clone(v)
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := c.next.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, fmt.Errorf("embedder %s returned %d vectors for %d texts", c.next.Name(), len(vecs), len(missTexts))
	}
	for j, i := range missIdx {
		c.cache.Add(keys[i], clone(vecs[j]))
		out[i] = vecs[j]
	}
	return out, nil
}

// Len reports the number of cached vectors.
func (c *Cache) Len() int { return c.cache.Len() }

func (c *Cache) key(text string) string {
	h := sha256.Sum256([]byte(text))
	return c.next.Name() + ":" + hex.EncodeToString(h[:])
}

func clone(v []float64) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
