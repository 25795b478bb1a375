package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/chunker"
	"docqa/internal/domain"
	"docqa/internal/pdftext/pdftest"
	"docqa/internal/store/memory"
	"docqa/internal/summarizer"
)

const lease = `A lease is a contract that grants the tenant use of a property for a fixed term. It is signed by both parties.

Rent is due on the first day of every month. Late payments incur a fee of five percent.

To terminate the lease, send written notice. Return all keys. Schedule a final inspection.`

func newTestNotebooks(t *testing.T, text string, extractErr error) *Notebooks {
	t.Helper()
	s := NewNotebooks(
		memory.NewStorage(),
		chunker.NewParagraphChunker(120, 20),
		summarizer.NewFrequencySummarizer(),
		2,
		newTestAnswerer(),
	)
	s.extract = func([]byte) (string, error) { return text, extractErr }
	ids := 0
	s.newID = func() string {
		ids++
		return fmt.Sprintf("nb-%d", ids)
	}
	s.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }
	return s
}

func TestCreate(t *testing.T) {
	s := newTestNotebooks(t, lease, nil)

	nb, err := s.Create(context.Background(), "Lease.PDF", []byte("%PDF-"))
	require.NoError(t, err)

	assert.Equal(t, "nb-1", nb.ID)
	assert.Equal(t, "Notebook from Lease.PDF", nb.Title)
	assert.Equal(t, "Lease.PDF", nb.Filename)
	assert.Equal(t, lease, nb.Content)
	assert.Len(t, nb.Chunks, 3)
	assert.NotEmpty(t, nb.Summary)
	assert.Empty(t, nb.QAs)
	assert.Equal(t, 1, s.Count())
}

func TestCreate_Rejects(t *testing.T) {
	ctx := context.Background()

	_, err := newTestNotebooks(t, lease, nil).Create(ctx, "notes.txt", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = newTestNotebooks(t, "  \n ", nil).Create(ctx, "scan.pdf", nil)
	assert.ErrorIs(t, err, domain.ErrNoText)

	broken := errors.New("missing %%EOF")
	_, err = newTestNotebooks(t, "", broken).Create(ctx, "broken.pdf", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorIs(t, err, broken)
}

func TestAsk_RecordsQuestions(t *testing.T) {
	s := newTestNotebooks(t, lease, nil)
	ctx := context.Background()
	nb, err := s.Create(ctx, "lease.pdf", nil)
	require.NoError(t, err)

	first, err := s.Ask(ctx, nb.ID, "When is rent due?")
	require.NoError(t, err)
	second, err := s.Ask(ctx, nb.ID, "How do I terminate the lease?")
	require.NoError(t, err)

	assert.Equal(t, 1, first.QuestionID)
	assert.Equal(t, 1, first.TotalQuestions)
	assert.Contains(t, first.Answer, "Rent is due on the first day of every month.")
	assert.Equal(t, 2, second.QuestionID)
	assert.Equal(t, 2, second.TotalQuestions)
	assert.Equal(t, nb.ID, second.NotebookID)

	qas, err := s.Questions(nb.ID)
	require.NoError(t, err)
	require.Len(t, qas, 2)
	assert.Equal(t, "How do I terminate the lease?", qas[1].Question)
	assert.Equal(t, second.Answer, qas[1].Answer)
}

func TestAsk_Errors(t *testing.T) {
	s := newTestNotebooks(t, lease, nil)
	ctx := context.Background()
	nb, err := s.Create(ctx, "lease.pdf", nil)
	require.NoError(t, err)

	_, err = s.Ask(ctx, "missing", "anything?")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.Ask(ctx, nb.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListGetDelete(t *testing.T) {
	s := newTestNotebooks(t, lease, nil)
	ctx := context.Background()
	a, err := s.Create(ctx, "a.pdf", nil)
	require.NoError(t, err)
	_, err = s.Create(ctx, "b.pdf", nil)
	require.NoError(t, err)

	list, err := s.List()
	require.NoError(t, err)
	assert.Len(t, list, 2)

	got, err := s.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "a.pdf", got.Filename)

	require.NoError(t, s.Delete(a.ID))
	_, err = s.Get(a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.Delete(a.ID), domain.ErrNotFound)
	assert.Equal(t, 1, s.Count())
}

func TestAnswerAll(t *testing.T) {
	s := newTestNotebooks(t, lease, nil)
	ctx := context.Background()

	answers, err := s.AnswerAll(ctx, lease, []string{"When is rent due?", "List the colors"})
	require.NoError(t, err)
	require.Len(t, answers, 2)
	assert.True(t, strings.HasPrefix(answers[0], "Rent is due"))

	empty, err := s.AnswerAll(ctx, "", []string{"anything"})
	require.NoError(t, err)
	assert.Equal(t, []string{NoContextMessage}, empty)

	_, err = s.AnswerAll(ctx, lease, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnswerPDF(t *testing.T) {
	s := newTestNotebooks(t, lease, nil)

	answers, err := s.AnswerPDF(context.Background(), []byte("%PDF-"), []string{"When is rent due?"})
	require.NoError(t, err)
	assert.Len(t, answers, 1)

	_, err = newTestNotebooks(t, "", nil).AnswerPDF(context.Background(), nil, []string{"q"})
	assert.ErrorIs(t, err, domain.ErrNoText)
}

func TestCreate_ExtractsRealPDF(t *testing.T) {
	s := NewNotebooks(memory.NewStorage(), chunker.NewBoundaryChunker(0, 0, false), nil, 0, newTestAnswerer())
	data := pdftest.MustBuild("Rent is due on the first day of every month", "Keys are returned at move out")

	nb, err := s.Create(context.Background(), "lease.pdf", data)
	require.NoError(t, err)

	assert.Contains(t, nb.Content, "Rent is due on the first day of every month")
	assert.Contains(t, nb.Content, "Keys are returned at move out")
	require.NotEmpty(t, nb.Chunks)
	assert.Empty(t, nb.Summary)

	_, err = s.Create(context.Background(), "broken.pdf", []byte("not a pdf"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
