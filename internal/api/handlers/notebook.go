package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"docqa/internal/api"
	"docqa/internal/domain"
)

// contentPreviewLen caps the document text echoed back on notebook creation.
const contentPreviewLen = 1000

// multipartMemory is kept in memory before spilling uploads to disk.
const multipartMemory = 8 << 20

type NotebookService interface {
	Create(ctx context.Context, filename string, data []byte) (*domain.Notebook, error)
	Ask(ctx context.Context, id, question string) (*domain.NotebookAnswer, error)
	Get(id string) (*domain.Notebook, error)
	List() ([]*domain.Notebook, error)
	Delete(id string) error
	Count() int
	AnswerPDF(ctx context.Context, data []byte, questions []string) ([]string, error)
}

// Fetcher downloads a remote document.
type Fetcher func(ctx context.Context, url string) ([]byte, error)

type NotebookHandler struct {
	svc   NotebookService
	fetch Fetcher
}

func NewNotebookHandler(svc NotebookService, fetch Fetcher) *NotebookHandler {
	return &NotebookHandler{svc: svc, fetch: fetch}
}

type RunRequest struct {
	Documents string   `json:"documents"`
	Questions []string `json:"questions"`
}

type AnswersResponse struct {
	Answers []string `json:"answers"`
}

type QueryRequest struct {
	NotebookID string `json:"notebook_id"`
	Question   string `json:"question"`
}

type NotebookResponse struct {
	NotebookID       string      `json:"notebook_id"`
	Title            string      `json:"title"`
	Content          string      `json:"content"`
	Summary          string      `json:"summary"`
	ChunksCount      int         `json:"chunks_count"`
	QuestionsAnswers []domain.QA `json:"questions_answers"`
	CreatedAt        time.Time   `json:"created_at"`
	PDFFilename      string      `json:"pdf_filename"`
}

type NotebookSummary struct {
	NotebookID     string    `json:"notebook_id"`
	Title          string    `json:"title"`
	CreatedAt      time.Time `json:"created_at"`
	PDFFilename    string    `json:"pdf_filename"`
	QuestionsCount int       `json:"questions_count"`
}

type NotebookDetail struct {
	*domain.Notebook
	TotalQuestions int `json:"total_questions"`
}

type QuestionsResponse struct {
	NotebookID       string      `json:"notebook_id"`
	Title            string      `json:"title"`
	PDFFilename      string      `json:"pdf_filename"`
	QuestionsAnswers []domain.QA `json:"questions_answers"`
	TotalQuestions   int         `json:"total_questions"`
	CreatedAt        time.Time   `json:"created_at"`
}

func (h *NotebookHandler) Root(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, map[string]string{"message": "docqa API is running"})
}

func (h *NotebookHandler) Health(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, map[string]any{"status": "healthy", "notebooks_count": h.svc.Count()})
}

// Run downloads the document at the given URL and answers every question.
func (h *NotebookHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, badRequest(err, "invalid request body"))
		return
	}
	if req.Documents == "" {
		api.Error(w, http.StatusBadRequest, "documents is required")
		return
	}
	if len(req.Questions) == 0 {
		api.Error(w, http.StatusBadRequest, "questions is required")
		return
	}

	data, err := h.fetch(r.Context(), req.Documents)
	if err != nil {
		api.Error(w, http.StatusBadRequest, fmt.Sprintf("error downloading document: %v", err))
		return
	}
	answers, err := h.svc.AnswerPDF(r.Context(), data, req.Questions)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, AnswersResponse{Answers: answers})
}

// RunFile answers the questions in the "questions" form field (a JSON array)
// against the uploaded "file".
func (h *NotebookHandler) RunFile(w http.ResponseWriter, r *http.Request) {
	_, data, err := readPDFUpload(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	raw := r.FormValue("questions")
	if raw == "" {
		api.Error(w, http.StatusBadRequest, "questions parameter is required")
		return
	}
	var questions []string
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		api.Error(w, http.StatusBadRequest, fmt.Sprintf("invalid questions format: %v", err))
		return
	}

	answers, err := h.svc.AnswerPDF(r.Context(), data, questions)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, AnswersResponse{Answers: answers})
}

func (h *NotebookHandler) Create(w http.ResponseWriter, r *http.Request) {
	filename, data, err := readPDFUpload(r)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	nb, err := h.svc.Create(r.Context(), filename, data)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusCreated, NotebookResponse{
		NotebookID:       nb.ID,
		Title:            nb.Title,
		Content:          preview(nb.Content),
		Summary:          nb.Summary,
		ChunksCount:      len(nb.Chunks),
		QuestionsAnswers: []domain.QA{},
		CreatedAt:        nb.CreatedAt,
		PDFFilename:      nb.Filename,
	})
}

func (h *NotebookHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, badRequest(err, "invalid request body"))
		return
	}
	if req.NotebookID == "" {
		api.Error(w, http.StatusBadRequest, "notebook_id is required")
		return
	}

	ans, err := h.svc.Ask(r.Context(), req.NotebookID, req.Question)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, ans)
}

func (h *NotebookHandler) List(w http.ResponseWriter, r *http.Request) {
	notebooks, err := h.svc.List()
	if err != nil {
		api.HandleError(w, err)
		return
	}
	out := make([]NotebookSummary, len(notebooks))
	for i, nb := range notebooks {
		out[i] = NotebookSummary{
			NotebookID:     nb.ID,
			Title:          nb.Title,
			CreatedAt:      nb.CreatedAt,
			PDFFilename:    nb.Filename,
			QuestionsCount: len(nb.QAs),
		}
	}
	api.JSON(w, http.StatusOK, map[string]any{"notebooks": out})
}

func (h *NotebookHandler) Get(w http.ResponseWriter, r *http.Request) {
	nb, err := h.svc.Get(chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, NotebookDetail{Notebook: nb, TotalQuestions: len(nb.QAs)})
}

func (h *NotebookHandler) Questions(w http.ResponseWriter, r *http.Request) {
	nb, err := h.svc.Get(chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	qas := nb.QAs
	if qas == nil {
		qas = []domain.QA{}
	}
	api.JSON(w, http.StatusOK, QuestionsResponse{
		NotebookID:       nb.ID,
		Title:            nb.Title,
		PDFFilename:      nb.Filename,
		QuestionsAnswers: qas,
		TotalQuestions:   len(qas),
		CreatedAt:        nb.CreatedAt,
	})
}

func (h *NotebookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(chi.URLParam(r, "id")); err != nil {
		api.HandleError(w, err)
		return
	}
	api.JSON(w, http.StatusOK, map[string]string{"message": "notebook deleted"})
}

// readPDFUpload returns the name and bytes of the multipart "file" field,
// rejecting anything without a .pdf extension.
func readPDFUpload(r *http.Request) (string, []byte, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return "", nil, badRequest(err, "invalid multipart form")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, badRequest(err, "file is required")
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		return "", nil, fmt.Errorf("only PDF files are supported: %w", domain.ErrInvalidInput)
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	return header.Filename, data, nil
}

// badRequest tags err as invalid input unless it is a body size error,
// which keeps its own status.
func badRequest(err error, msg string) error {
	if api.StatusFor(err) == http.StatusRequestEntityTooLarge {
		return err
	}
	return fmt.Errorf("%s: %w", msg, domain.ErrInvalidInput)
}

func preview(content string) string {
	if utf8.RuneCountInString(content) <= contentPreviewLen {
		return content
	}
	return string([]rune(content)[:contentPreviewLen]) + "..."
}
