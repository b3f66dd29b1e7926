// Package tui is a small console front end for asking questions against
// a running engine, useful for trying the pipeline without the HTTP API.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/WoldamlakDebasu/Cognidoc/internal/domain"
)

// Engine is the TUI-facing subset of the RAG engine.
type Engine interface {
	Query(ctx context.Context, text string, maxSources int) (*domain.Answer, error)
	DocumentsCount() int
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	answerStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	sourceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// answerMsg carries an answered query back into the update loop.
type answerMsg struct {
	query  string
	answer *domain.Answer
	err    error
}

// Model is the Bubble Tea model for the query console.
type Model struct {
	engine   Engine
	mode     string
	input    textinput.Model
	viewport viewport.Model
	status   string
	waiting  bool
	ready    bool
}

// New creates the console model.
func New(eng Engine, mode string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question about your documents"
	ti.Focus()
	vp := viewport.New(0, 0)
	return Model{
		engine:   eng,
		mode:     mode,
		input:    ti,
		viewport: vp,
		status:   "Ready. Type a question and press Enter.",
	}
}

// Init starts the input cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ah := answerStyle.GetFrameSize()
		_, ih := inputStyle.GetFrameSize()
		vh := msg.Height - ah - ih - 4 // header, status, input line, spacer
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = vh
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		if msg.String() == "enter" && !m.waiting {
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				return m, nil
			}
			m.waiting = true
			m.status = "Thinking..."
			m.input.SetValue("")
			return m, query(m.engine, q)
		}

	case answerMsg:
		m.waiting = false
		if msg.err != nil {
			m.status = errorStyle.Render("Error: " + msg.err.Error())
			return m, nil
		}
		m.status = fmt.Sprintf("Answered in %.2fs using %d context chunks (%d documents indexed)",
			msg.answer.ProcessingTime.Seconds(), msg.answer.ContextUsed, m.engine.DocumentsCount())
		m.viewport.SetContent(renderAnswer(msg.query, msg.answer))
		m.viewport.GotoTop()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the console layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := titleStyle.Render("CogniDoc") + dimStyle.Render("  mode: "+m.mode)
	return header + "\n" +
		answerStyle.Render(m.viewport.View()) + "\n" +
		inputStyle.Render(m.input.View()) + "\n" +
		m.status
}

// query runs the engine call off the update loop.
func query(eng Engine, q string) tea.Cmd {
	return func() tea.Msg {
		answer, err := eng.Query(context.Background(), q, 0)
		return answerMsg{query: q, answer: answer, err: err}
	}
}

func renderAnswer(query string, answer *domain.Answer) string {
	var b strings.Builder
	b.WriteString(dimStyle.Render("Q: "+query) + "\n\n")
	b.WriteString(answer.Text)
	if len(answer.Sources) > 0 {
		b.WriteString("\n\n" + sourceStyle.Render("Sources:") + "\n")
		for _, src := range answer.Sources {
			fmt.Fprintf(&b, "  %s  page %d, chunk %d  (%.2f)\n",
				src.Document, src.PageNumber, src.ChunkID, src.RelevanceScore)
		}
	}
	return b.String()
}
