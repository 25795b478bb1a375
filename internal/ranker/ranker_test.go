package ranker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
	"docqa/internal/embedding/hashing"
)

type mockEmbedder struct {
	mock.Mock
}

func (m *mockEmbedder) Name() string { return "mock" }

func (m *mockEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	args := m.Called(ctx, texts)
	v, _ := args.Get(0).([][]float64)
	return v, args.Error(1)
}

// tableEmbedder looks vectors up by text.
type tableEmbedder map[string][]float64

func (t tableEmbedder) Name() string { return "table" }

func (t tableEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, s := range texts {
		v, ok := t[s]
		if !ok {
			return nil, errors.New("unknown text " + s)
		}
		out[i] = v
	}
	return out, nil
}

func indexes(res []domain.Scored) []int {
	out := make([]int, len(res))
	for i, r := range res {
		out[i] = r.Index
	}
	return out
}

func TestRank_EmptyCandidates(t *testing.T) {
	m := new(mockEmbedder)

	out := Rank(context.Background(), m, "q", nil, Options{TopK: 3})

	assert.Empty(t, out.Results)
	assert.False(t, out.Degraded)
	m.AssertNotCalled(t, "Embed", mock.Anything, mock.Anything)
}

func TestRankChunks_OrdersByScoreWithStableTies(t *testing.T) {
	e := tableEmbedder{
		"q": {1, 0},
		"a": {0, 1},
		"b": {1, 0},
		"c": {1, 1},
		"d": {2, 0},
	}
	r := New(e, 3, 0.2, 2)

	out := r.RankChunks(context.Background(), "q", []string{"a", "b", "c", "d"})

	require.False(t, out.Degraded)
	assert.Equal(t, []int{1, 3, 2}, indexes(out.Results))
	assert.Equal(t, []string{"b", "d", "c"}, out.Texts())
	assert.InDelta(t, 1.0, out.Results[0].Score, 1e-12)
	assert.InDelta(t, 0.7071, out.Results[2].Score, 1e-4)
}

func TestRankChunks_FloorFilters(t *testing.T) {
	e := tableEmbedder{"q": {1, 0}, "hit": {1, 0}, "miss": {0, 1}}
	r := New(e, 3, 0.2, 2)

	out := r.RankChunks(context.Background(), "q", []string{"miss", "hit"})

	assert.Equal(t, []string{"hit"}, out.Texts())
}

func TestRankChunks_FallsBackWhenNothingClearsFloor(t *testing.T) {
	e := tableEmbedder{"q": {1, 0}, "x": {0, 1}, "y": {-1, 0}, "z": {0.1, 1}}
	r := New(e, 2, 0.2, 2)

	out := r.RankChunks(context.Background(), "q", []string{"x", "y", "z"})

	require.Len(t, out.Results, 2)
	assert.Equal(t, []int{2, 0}, indexes(out.Results))
	assert.False(t, out.Degraded)
}

func TestRankChunks_FloorIsExclusive(t *testing.T) {
	e := tableEmbedder{"q": {1, 0}, "edge": {3, 4}, "top": {1, 0}}
	r := New(e, 3, 0.6, 2)

	out := r.RankChunks(context.Background(), "q", []string{"edge", "top"})

	assert.Equal(t, []string{"top"}, out.Texts())
}

func TestRankChunks_TopKLargerThanInput(t *testing.T) {
	e := tableEmbedder{"q": {1, 0}, "only": {1, 0}}

	out := New(e, 10, 0.2, 2).RankChunks(context.Background(), "q", []string{"only"})

	assert.Equal(t, []string{"only"}, out.Texts())
}

func TestRankChunks_DegradesOnEmbedderError(t *testing.T) {
	boom := errors.New("model not loaded")
	m := new(mockEmbedder)
	m.On("Embed", mock.Anything, []string{"q", "a", "b", "c", "d"}).Return(nil, boom).Once()
	r := New(m, 3, 0.2, 2)

	out := r.RankChunks(context.Background(), "q", []string{"a", "b", "c", "d"})

	assert.True(t, out.Degraded)
	assert.ErrorIs(t, out.Reason, boom)
	assert.Equal(t, []string{"a", "b", "c"}, out.Texts())
	for _, res := range out.Results {
		assert.Zero(t, res.Score)
	}
	m.AssertExpectations(t)
}

func TestRankChunks_DegradesOnShortResponse(t *testing.T) {
	m := new(mockEmbedder)
	m.On("Embed", mock.Anything, []string{"q", "a"}).Return([][]float64{{1}}, nil)

	out := New(m, 3, 0.2, 2).RankChunks(context.Background(), "q", []string{"a"})

	assert.True(t, out.Degraded)
	assert.Equal(t, []string{"a"}, out.Texts())
}

func TestRankChunks_DegradesOnDimensionMismatch(t *testing.T) {
	e := tableEmbedder{"q": {1, 0}, "a": {1, 0}, "b": {1, 0, 0}}

	out := New(e, 3, 0.2, 2).RankChunks(context.Background(), "q", []string{"a", "b"})

	assert.True(t, out.Degraded)
	assert.ErrorContains(t, out.Reason, "3-dimensional")
	assert.Equal(t, []int{0, 1}, indexes(out.Results))
}

func TestRank_NilEmbedderDegrades(t *testing.T) {
	out := Rank(context.Background(), nil, "q", []string{"a", "b"}, Options{TopK: 1})

	assert.True(t, out.Degraded)
	assert.Equal(t, []string{"a"}, out.Texts())
}

func TestRankChunks_ExactQuestionRanksFirst(t *testing.T) {
	chunks := []string{
		"Invoices are payable within thirty days of receipt.",
		"The warranty covers manufacturing defects for two years.",
		"Support tickets are answered during business hours.",
	}
	r := New(hashing.NewEmbedder(256), 3, 0.2, 2)

	out := r.RankChunks(context.Background(), chunks[1], chunks)

	require.NotEmpty(t, out.Results)
	assert.Equal(t, 1, out.Results[0].Index)
	assert.InDelta(t, 1.0, out.Results[0].Score, 1e-9)
}

func TestRankChunks_NeverEmptyForNonEmptyInput(t *testing.T) {
	r := New(hashing.NewEmbedder(64), 3, 0.99, 2)
	chunks := []string{"alpha", "beta", "gamma", "delta"}

	out := r.RankChunks(context.Background(), "unrelated words entirely", chunks)

	assert.Len(t, out.Results, 3)
}

func TestNew_Defaults(t *testing.T) {
	r := New(nil, 0, 0.2, 0)

	assert.Equal(t, DefaultTopK, r.chunks.TopK)
	assert.True(t, r.chunks.UseFloor)
	assert.Equal(t, DefaultSentences, r.sentences)
}
