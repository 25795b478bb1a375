package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docqa/internal/domain"
	"docqa/internal/service"
)

// Answerer is the TUI-facing subset of the answer pipeline.
type Answerer interface {
	Answer(ctx context.Context, question string, chunks []string) service.Answer
}

// answerMsg carries a finished answer back into the update loop.
type answerMsg struct {
	question string
	answer   service.Answer
}

// Model is the Bubble Tea model for asking questions about one document.
type Model struct {
	answerer Answerer
	chunks   []string
	title    string
	summary  string

	input    textinput.Model
	viewport viewport.Model
	answer   *service.Answer
	question string
	status   string
	cursor   int
	busy     bool
	ready    bool
}

// New creates a new TUI model over the chunks of a loaded document.
func New(answerer Answerer, title, summary string, chunks []string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		answerer: answerer,
		chunks:   chunks,
		title:    title,
		summary:  summary,
		input:    ti,
		viewport: vp,
		status:   fmt.Sprintf("Loaded %d chunks. Ask away.", len(chunks)),
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2                                    // header + summary
		totalFooterLines := 1                                    // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1 // 1 spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrent())
		return m, nil
	case answerMsg:
		m.busy = false
		m.answer = &msg.answer
		m.question = msg.question
		m.cursor = 0
		m.status = fmt.Sprintf("Answered %q (%s)", msg.question, msg.answer.Kind)
		if msg.answer.Degraded {
			m.status += " - embedder unavailable, passages in document order"
		}
		m.viewport.SetContent(m.renderCurrent())
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.busy {
				m.busy = true
				m.status = "Thinking..."
				m.input.SetValue("")
				return m, m.ask(q)
			}
		case "down":
			if n := m.passageCount(); n > 0 {
				m.cursor = (m.cursor + 1) % n
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		case "up":
			if n := m.passageCount(); n > 0 {
				m.cursor = (m.cursor - 1 + n) % n
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) ask(question string) tea.Cmd {
	answerer, chunks := m.answerer, m.chunks
	return func() tea.Msg {
		return answerMsg{question: question, answer: answerer.Answer(context.Background(), question, chunks)}
	}
}

// View renders the TUI layout and current answer.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render(m.title)
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) passageCount() int {
	if m.answer == nil {
		return 0
	}
	return len(m.answer.Passages)
}

func (m Model) renderCurrent() string {
	if m.answer == nil {
		return "No answer yet."
	}
	var b strings.Builder
	b.WriteString(answerStyle.Render("Q: " + m.question))
	b.WriteString("\n")
	b.WriteString(m.answer.Text)
	if n := m.passageCount(); n > 0 {
		p := m.answer.Passages[m.cursor]
		fmt.Fprintf(&b, "\n\nPassage %d/%d  chunk=%d  score=%.3f\n\n", m.cursor+1, n, p.Index+1, p.Score)
		body := p.Text
		if m.cursor == 0 {
			body = highlightSentences(body, m.answer.Sentences)
		}
		b.WriteString(body)
	}
	return b.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	answerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
)

// highlightSentences marks the first occurrence of each refined sentence in
// the passage the answer was taken from.
func highlightSentences(text string, sentences []domain.Scored) string {
	for _, s := range sentences {
		if s.Text == "" {
			continue
		}
		if i := strings.Index(text, s.Text); i >= 0 {
			text = text[:i] + highlightStyle.Render(s.Text) + text[i+len(s.Text):]
		}
	}
	return text
}
