package domain

import (
	"context"
	"time"
)

// Document is raw text extracted from a single uploaded file.
type Document struct {
	ID   string
	Name string
	Text string
}

// Scored pairs a chunk or sentence with its similarity to a query.
// Index is the position of Text in the sequence that was ranked.
type Scored struct {
	Index int
	Text  string
	Score float64
}

// QA is one answered question inside a notebook.
type QA struct {
	QuestionID int       `json:"question_id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	CreatedAt  time.Time `json:"created_at"`
}

// Notebook holds a document's chunks together with the questions asked against it.
type Notebook struct {
	ID        string    `json:"notebook_id"`
	Title     string    `json:"title"`
	Filename  string    `json:"pdf_filename"`
	Content   string    `json:"content"`
	Summary   string    `json:"summary"`
	Chunks    []string  `json:"chunks"`
	QAs       []QA      `json:"questions_answers"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NotebookAnswer is the result of asking one question against a notebook.
type NotebookAnswer struct {
	NotebookID     string    `json:"notebook_id"`
	Question       string    `json:"question"`
	Answer         string    `json:"answer"`
	QuestionID     int       `json:"question_id"`
	TotalQuestions int       `json:"total_questions"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Embedder converts text into dense vectors. Implementations must be safe for
// concurrent use and deterministic for a fixed input and model version.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Chunker splits document text into ordered retrieval units.
type Chunker interface {
	Chunk(text string) []string
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// NotebookStore keeps notebooks for the lifetime of the process.
type NotebookStore interface {
	Put(nb *Notebook) error
	Get(id string) (*Notebook, error)
	List() ([]*Notebook, error)
	Delete(id string) error
	AppendQA(id string, qa QA) (*Notebook, error)
	Count() int
}
