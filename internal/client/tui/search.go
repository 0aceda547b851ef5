// Package tui is the live-search terminal view. Keystrokes feed the debounced
// filter pipeline; the filtered view is rendered whenever the pipeline
// publishes.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/qaforum/internal/client/models"
	"github.com/dmitrijs2005/qaforum/internal/client/search"
)

const maxRows = 15

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	matchStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

// FilteredMsg carries a view published by the pipeline.
type FilteredMsg search.Result[models.Question]

// ItemsMsg replaces the collection being searched.
type ItemsMsg []models.Question

// SearchModel is a bubbletea model over a question collection.
type SearchModel struct {
	input    textinput.Model
	pipeline *search.Pipeline[models.Question]
	results  chan search.Result[models.Question]

	view   search.Result[models.Question]
	total  int
	cursor int

	// Chosen is the id selected with enter, zero if the user left with esc.
	Chosen int64
}

// NewSearchModel starts with every item visible. window and clock configure
// the debounce; a nil clock uses the real one.
func NewSearchModel(items []models.Question, window time.Duration, clock search.Clock) *SearchModel {
	ti := textinput.New()
	ti.Placeholder = "type to filter by title, tag, author or text"
	ti.Prompt = "search> "
	ti.Focus()

	m := &SearchModel{
		input:   ti,
		results: make(chan search.Result[models.Question], 1),
		total:   len(items),
	}
	m.pipeline = search.NewPipeline(window, clock, m.publish)
	m.pipeline.SetItems(items)
	return m
}

// publish keeps only the newest result in the channel.
func (m *SearchModel) publish(r search.Result[models.Question]) {
	for {
		select {
		case m.results <- r:
			return
		default:
			select {
			case <-m.results:
			default:
			}
		}
	}
}

func waitForResult(ch <-chan search.Result[models.Question]) tea.Cmd {
	return func() tea.Msg {
		return FilteredMsg(<-ch)
	}
}

func (m *SearchModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForResult(m.results))
}

func (m *SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.pipeline.Close()
			return m, tea.Quit
		case tea.KeyEnter:
			if m.cursor < len(m.view.Items) {
				m.Chosen = m.view.Items[m.cursor].ID
			}
			m.pipeline.Close()
			return m, tea.Quit
		case tea.KeyUp:
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case tea.KeyDown:
			if m.cursor < len(m.view.Items)-1 {
				m.cursor++
			}
			return m, nil
		}

		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if v := m.input.Value(); v != before {
			m.pipeline.SetQuery(v)
		}
		return m, cmd

	case ItemsMsg:
		m.total = len(msg)
		m.pipeline.SetItems(msg)
		return m, nil

	case FilteredMsg:
		m.view = search.Result[models.Question](msg)
		if m.cursor >= len(m.view.Items) {
			m.cursor = max(len(m.view.Items)-1, 0)
		}
		return m, waitForResult(m.results)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *SearchModel) View() string {
	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	mark := func(s string) string { return matchStyle.Render(s) }
	for i, q := range m.view.Items {
		if i == maxRows {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  ... %d more", len(m.view.Items)-maxRows)))
			b.WriteString("\n")
			break
		}
		prefix := "  "
		if i == m.cursor {
			prefix = cursorStyle.Render("> ")
		}
		title := search.Highlight(q.Title, m.view.Query, mark)
		fmt.Fprintf(&b, "%s%s %s\n", prefix, titleStyle.Render(fmt.Sprintf("#%d", q.ID)), title)
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d of %d  ↑/↓ move  enter open  esc close", len(m.view.Items), m.total)))
	b.WriteString("\n")
	return b.String()
}

// Program wraps a running search view so callers can push collection
// updates into it.
type Program struct {
	model *SearchModel
	prog  *tea.Program
}

func NewProgram(ctx context.Context, m *SearchModel, in io.Reader, out io.Writer) *Program {
	return &Program{
		model: m,
		prog:  tea.NewProgram(m, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out)),
	}
}

// SetItems replaces the searched collection while the view is open.
func (p *Program) SetItems(items []models.Question) {
	p.prog.Send(ItemsMsg(items))
}

// Run blocks until the user leaves the view and returns the chosen id.
func (p *Program) Run() (int64, error) {
	if _, err := p.prog.Run(); err != nil {
		return 0, fmt.Errorf("search view: %w", err)
	}
	return p.model.Chosen, nil
}
