// Package ranker orders chunks and sentences by embedding similarity to a
// question.
package ranker

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"docqa/internal/domain"
	"docqa/internal/embedding"
)

const (
	DefaultTopK      = 3
	DefaultFloor     = 0.2
	DefaultSentences = 2
)

// Options controls a single ranking pass.
type Options struct {
	TopK int
	// Floor drops results scoring at or below it when UseFloor is set. If
	// nothing clears the floor the unfiltered top results are returned.
	Floor    float64
	UseFloor bool
}

// Outcome is the result of a ranking pass. A degraded outcome carries the
// fallback results (first TopK candidates in original order, score 0) and
// the reason the embedder could not be used.
type Outcome struct {
	Results  []domain.Scored
	Degraded bool
	Reason   error
}

// Texts returns the text of every result in order.
func (o Outcome) Texts() []string {
	out := make([]string, len(o.Results))
	for i, r := range o.Results {
		out[i] = r.Text
	}
	return out
}

// Rank embeds query and candidates and returns the best opts.TopK candidates
// by descending cosine similarity. Equal scores keep their original order.
// An empty candidate list yields an empty, non-degraded outcome.
func Rank(ctx context.Context, e domain.Embedder, query string, candidates []string, opts Options) Outcome {
	if len(candidates) == 0 {
		return Outcome{}
	}
	k := opts.TopK
	if k <= 0 || k > len(candidates) {
		k = len(candidates)
	}
	if e == nil {
		return degrade(candidates, k, errors.New("no embedder configured"))
	}

	texts := make([]string, 0, len(candidates)+1)
	texts = append(texts, query)
	texts = append(texts, candidates...)
	vecs, err := e.Embed(ctx, texts)
	if err != nil {
		return degrade(candidates, k, err)
	}
	if len(vecs) != len(texts) {
		return degrade(candidates, k, fmt.Errorf("embedder %s returned %d vectors for %d texts", e.Name(), len(vecs), len(texts)))
	}

	q := vecs[0]
	for i, v := range vecs {
		if len(v) != len(q) || len(v) == 0 {
			return degrade(candidates, k, fmt.Errorf("embedder %s returned a %d-dimensional vector at %d, want %d", e.Name(), len(v), i, len(q)))
		}
	}
	scored := make([]domain.Scored, len(candidates))
	for i, c := range candidates {
		scored[i] = domain.Scored{Index: i, Text: c, Score: embedding.Cosine(q, vecs[i+1])}
	}
	slices.SortStableFunc(scored, func(a, b domain.Scored) int {
		return cmp.Compare(b.Score, a.Score)
	})
	top := scored[:k]

	if !opts.UseFloor {
		return Outcome{Results: top}
	}
	kept := make([]domain.Scored, 0, len(top))
	for _, s := range top {
		if s.Score > opts.Floor {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return Outcome{Results: top}
	}
	return Outcome{Results: kept}
}

func degrade(candidates []string, k int, reason error) Outcome {
	out := make([]domain.Scored, k)
	for i := range out {
		out[i] = domain.Scored{Index: i, Text: candidates[i]}
	}
	return Outcome{Results: out, Degraded: true, Reason: reason}
}

// Ranker ranks notebook chunks and refines the best one down to sentences.
// It holds no state besides its configuration and is safe for concurrent use
// when the embedder is.
type Ranker struct {
	embedder  domain.Embedder
	chunks    Options
	sentences int
}

// New returns a Ranker using the chunk-level top-K and floor and keeping
// sentences sentences when refining. Non-positive values fall back to the
// defaults; a negative floor is kept as is.
func New(e domain.Embedder, topK int, floor float64, sentences int) *Ranker {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if sentences <= 0 {
		sentences = DefaultSentences
	}
	return &Ranker{
		embedder:  e,
		chunks:    Options{TopK: topK, Floor: floor, UseFloor: true},
		sentences: sentences,
	}
}

// RankChunks returns the most relevant chunks for question. The result is
// never empty when chunks is non-empty.
func (r *Ranker) RankChunks(ctx context.Context, question string, chunks []string) Outcome {
	return Rank(ctx, r.embedder, question, chunks, r.chunks)
}
