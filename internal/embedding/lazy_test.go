package embedding

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
)

func TestLazy_LoadsOnceAndShares(t *testing.T) {
	var loads atomic.Int32
	inner := &countingEmbedder{}
	l := NewLazy("counting", func(context.Context) (domain.Embedder, error) {
		loads.Add(1)
		return inner, nil
	})
	assert.Equal(t, int32(0), loads.Load())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Embed(context.Background(), []string{"hello"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load())
	assert.Equal(t, 8, inner.calls())
	assert.Equal(t, "counting", l.Name())
}

func TestLazy_RetriesAfterFailedLoad(t *testing.T) {
	boom := errors.New("model unavailable")
	attempts := 0
	l := NewLazy("flaky", func(context.Context) (domain.Embedder, error) {
		attempts++
		if attempts == 1 {
			return nil, boom
		}
		return &countingEmbedder{}, nil
	})

	_, err := l.Embed(context.Background(), []string{"a"})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "load embedder flaky")

	vecs, err := l.Embed(context.Background(), []string{"abcd"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{4}}, vecs)
	assert.Equal(t, 2, attempts)
}
