package ranker

import (
	"context"
	"strings"

	"docqa/internal/chunker"
	"docqa/internal/domain"
)

// Refinement is a chunk narrowed to the sentences closest to a question.
type Refinement struct {
	Text      string
	Sentences []domain.Scored
	Degraded  bool
	Reason    error
}

// Refine keeps the sentences of chunk that best match question, most similar
// first, joined by a single space. A chunk without sentences, or one whose
// sentences cannot be embedded, is returned unchanged.
func (r *Ranker) Refine(ctx context.Context, question, chunk string) Refinement {
	sentences := chunker.SplitSentences(chunk)
	if len(sentences) == 0 {
		return Refinement{Text: chunk}
	}
	out := Rank(ctx, r.embedder, question, sentences, Options{TopK: r.sentences})
	if out.Degraded {
		return Refinement{Text: chunk, Degraded: true, Reason: out.Reason}
	}
	return Refinement{
		Text:      strings.Join(out.Texts(), " "),
		Sentences: out.Results,
	}
}
