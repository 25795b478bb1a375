package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"docqa/internal/domain"
	"docqa/internal/pdftext"
)

// Notebooks manages documents uploaded for question answering. A notebook is
// chunked once when created and its chunks are reused for every question.
type Notebooks struct {
	store            domain.NotebookStore
	chunker          domain.Chunker
	summarizer       domain.Summarizer
	summarySentences int
	answerer         *Answerer

	extract func(data []byte) (string, error)
	now     func() time.Time
	newID   func() string
}

func NewNotebooks(store domain.NotebookStore, chunker domain.Chunker, summarizer domain.Summarizer, summarySentences int, answerer *Answerer) *Notebooks {
	return &Notebooks{
		store:            store,
		chunker:          chunker,
		summarizer:       summarizer,
		summarySentences: summarySentences,
		answerer:         answerer,
		extract:          pdftext.Extract,
		now:              time.Now,
		newID:            uuid.NewString,
	}
}

// Create extracts the text of a PDF and stores it as a new notebook.
func (s *Notebooks) Create(ctx context.Context, filename string, data []byte) (*domain.Notebook, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return nil, fmt.Errorf("only PDF files are supported: %w", domain.ErrInvalidInput)
	}
	text, err := s.ExtractText(data)
	if err != nil {
		return nil, err
	}

	now := s.now()
	nb := &domain.Notebook{
		ID:        s.newID(),
		Title:     "Notebook from " + filename,
		Filename:  filename,
		Content:   text,
		Summary:   s.summarize(text),
		Chunks:    s.chunker.Chunk(text),
		QAs:       []domain.QA{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Put(nb); err != nil {
		return nil, fmt.Errorf("store notebook: %w", err)
	}
	log.Info().
		Str("notebook_id", nb.ID).
		Str("file", filename).
		Int("chars", len([]rune(text))).
		Int("chunks", len(nb.Chunks)).
		Msg("notebook created")
	return nb, nil
}

// Ask answers question against the notebook's chunks and records the pair.
func (s *Notebooks) Ask(ctx context.Context, id, question string) (*domain.NotebookAnswer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("question is required: %w", domain.ErrInvalidInput)
	}
	nb, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	ans := s.answerer.Answer(ctx, question, nb.Chunks)
	updated, err := s.store.AppendQA(id, domain.QA{
		Question:  question,
		Answer:    ans.Text,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, err
	}
	last := updated.QAs[len(updated.QAs)-1]
	log.Info().
		Str("notebook_id", id).
		Int("question_id", last.QuestionID).
		Bool("degraded", ans.Degraded).
		Msg("notebook question answered")

	return &domain.NotebookAnswer{
		NotebookID:     id,
		Question:       question,
		Answer:         ans.Text,
		QuestionID:     last.QuestionID,
		TotalQuestions: len(updated.QAs),
		UpdatedAt:      updated.UpdatedAt,
	}, nil
}

func (s *Notebooks) Get(id string) (*domain.Notebook, error) {
	return s.store.Get(id)
}

// List returns all notebooks, newest first.
func (s *Notebooks) List() ([]*domain.Notebook, error) {
	return s.store.List()
}

// Questions returns the question/answer history of a notebook in order.
func (s *Notebooks) Questions(id string) ([]domain.QA, error) {
	nb, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	return nb.QAs, nil
}

func (s *Notebooks) Delete(id string) error {
	if err := s.store.Delete(id); err != nil {
		return err
	}
	log.Info().Str("notebook_id", id).Msg("notebook deleted")
	return nil
}

func (s *Notebooks) Count() int {
	return s.store.Count()
}

// AnswerAll answers every question against text without storing a notebook.
func (s *Notebooks) AnswerAll(ctx context.Context, text string, questions []string) ([]string, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("at least one question is required: %w", domain.ErrInvalidInput)
	}
	chunks := s.chunker.Chunk(text)
	answers := make([]string, len(questions))
	for i, q := range questions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		answers[i] = s.answerer.Answer(ctx, q, chunks).Text
	}
	return answers, nil
}

// AnswerPDF extracts the text of a PDF and answers every question against it.
func (s *Notebooks) AnswerPDF(ctx context.Context, data []byte, questions []string) ([]string, error) {
	text, err := s.ExtractText(data)
	if err != nil {
		return nil, err
	}
	return s.AnswerAll(ctx, text, questions)
}

// ExtractText returns the text of a PDF, failing with domain.ErrNoText when
// the document has none.
func (s *Notebooks) ExtractText(data []byte) (string, error) {
	text, err := s.extract(data)
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w: %w", domain.ErrInvalidInput, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrNoText
	}
	return text, nil
}

func (s *Notebooks) summarize(text string) string {
	if s.summarizer == nil {
		return ""
	}
	summary, err := s.summarizer.Summarize(text, s.summarySentences)
	if err != nil {
		log.Warn().Err(err).Msg("summarize notebook")
		return ""
	}
	return summary
}
