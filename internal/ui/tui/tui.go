package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/felixgeelhaar/memlog/internal/store"
)

// Source is the read side of the store.
type Source interface {
	Search(ctx context.Context, query string) ([]store.Entry, error)
	ListAll(ctx context.Context) ([]store.Entry, error)
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	topicStyle = lipgloss.NewStyle().Bold(true)

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#777777"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000"))
)

type Model struct {
	ctx      context.Context
	source   Source
	Input    textinput.Model
	Viewport viewport.Model
	Entries  []store.Entry
	Query    string // query of the entries on screen
	Err      error
	Quitting bool
}

type entriesMsg struct {
	query   string
	entries []store.Entry
}

type errMsg struct{ err error }

func NewModel(ctx context.Context, src Source) Model {
	in := textinput.New()
	in.Placeholder = "search topic, content or tags"
	in.Prompt = "/ "
	in.Focus()

	return Model{
		ctx:      ctx,
		source:   src,
		Input:    in,
		Viewport: viewport.New(80, 20),
	}
}

func (m Model) Init() tea.Cmd {
	return m.load("")
}

// load fetches entries for query; the empty query lists everything.
func (m Model) load(query string) tea.Cmd {
	return func() tea.Msg {
		var (
			entries []store.Entry
			err     error
		)
		if query == "" {
			entries, err = m.source.ListAll(m.ctx)
		} else {
			entries, err = m.source.Search(m.ctx, query)
		}
		if err != nil {
			return errMsg{err}
		}
		return entriesMsg{query: query, entries: entries}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.Quitting = true
			return m, tea.Quit
		case "q":
			if m.Input.Value() == "" {
				m.Quitting = true
				return m, tea.Quit
			}
		case "enter":
			return m, m.load(m.Input.Value())
		case "esc":
			m.Input.SetValue("")
			return m, m.load("")
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.Viewport, cmd = m.Viewport.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.Viewport.Width = msg.Width
		m.Viewport.Height = max(msg.Height-6, 1)
		return m, nil

	case entriesMsg:
		m.Err = nil
		m.Query = msg.query
		m.Entries = msg.entries
		m.Viewport.SetContent(renderEntries(msg.entries))
		m.Viewport.GotoTop()
		return m, nil

	case errMsg:
		m.Err = msg.err
		return m, nil
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	var status string
	switch {
	case m.Err != nil:
		status = errorStyle.Render("Error: " + m.Err.Error())
	case m.Query == "":
		status = dimStyle.Render(fmt.Sprintf("%d memories", len(m.Entries)))
	default:
		status = dimStyle.Render(fmt.Sprintf("%d matching %q", len(m.Entries), m.Query))
	}

	return fmt.Sprintf("%s\n%s\n\n%s\n%s\n%s",
		titleStyle.Render(" Memory Log "),
		m.Input.View(),
		m.Viewport.View(),
		status,
		dimStyle.Render("enter search • esc clear • ↑/↓ scroll • q quit"),
	)
}

func renderEntries(entries []store.Entry) string {
	if len(entries) == 0 {
		return dimStyle.Render("No memories found.")
	}

	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(topicStyle.Render(e.Topic))
		if !e.Timestamp.IsZero() {
			b.WriteString("  " + dimStyle.Render(e.Timestamp.Format("2006-01-02 15:04")))
		}
		b.WriteString("\n" + e.Content + "\n")
		if len(e.Tags) > 0 {
			b.WriteString(tagStyle.Render("#"+strings.Join(e.Tags, " #")) + "\n")
		}
	}
	return b.String()
}
