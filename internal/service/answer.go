package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"docqa/internal/domain"
	"docqa/internal/formatter"
	"docqa/internal/ranker"
)

const (
	NoContextMessage  = "No document context available to answer this question."
	NoRelevantMessage = "I couldn't find relevant information in the document to answer this question."
)

// Answer is the pipeline's reply to one question.
type Answer struct {
	Text string
	Kind formatter.Kind
	// Passages are the ranked chunks, best first.
	Passages []domain.Scored
	// Sentences are the sentences of the best passage the answer was built from.
	Sentences []domain.Scored
	Degraded  bool
}

// Answerer turns a question and a document's chunks into a formatted answer:
// rank chunks, refine the best one to its closest sentences, format.
type Answerer struct {
	ranker *ranker.Ranker
}

func NewAnswerer(r *ranker.Ranker) *Answerer {
	return &Answerer{ranker: r}
}

// Answer never fails. Without chunks it returns NoContextMessage; an
// unusable embedder degrades ranking instead of aborting.
func (a *Answerer) Answer(ctx context.Context, question string, chunks []string) Answer {
	kind := formatter.Classify(question)
	if len(chunks) == 0 {
		return Answer{Text: NoContextMessage, Kind: kind}
	}

	ranked := a.ranker.RankChunks(ctx, question, chunks)
	if ranked.Degraded {
		log.Warn().Err(ranked.Reason).Int("chunks", len(chunks)).Msg("chunk ranking degraded to document order")
	}
	if len(ranked.Results) == 0 {
		return Answer{Text: NoRelevantMessage, Kind: kind, Degraded: ranked.Degraded}
	}

	best := ranked.Results[0].Text
	refined := a.ranker.Refine(ctx, question, best)
	if refined.Degraded {
		log.Warn().Err(refined.Reason).Msg("sentence refinement degraded to whole chunk")
	}

	text := formatter.Format(refined.Text, question)
	log.Debug().
		Str("kind", kind.String()).
		Float64("top_score", ranked.Results[0].Score).
		Int("passages", len(ranked.Results)).
		Msg("answered question")

	return Answer{
		Text:      text,
		Kind:      kind,
		Passages:  ranked.Results,
		Sentences: refined.Sentences,
		Degraded:  ranked.Degraded || refined.Degraded,
	}
}
