package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	shapeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err      error
	cat      *catalog
	result   string
	entries  []string
	input    textinput.Model
	selected int
}

func newInteractiveModel(cat *catalog) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "element count"
	ti.Prompt = "count: "
	ti.Width = 20
	ti.CharLimit = 5
	ti.Focus()
	return &interactiveModel{
		cat:     cat,
		input:   ti,
		entries: cat.entries(),
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "up":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil

		case "down":
			if m.selected < len(m.entries)-1 {
				m.selected++
			}
			return m, nil

		case "enter":
			m.submit()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit resolves the typed count and refreshes the catalog listing.
func (m *interactiveModel) submit() {
	m.err = nil
	m.result = ""
	count, err := strconv.Atoi(strings.TrimSpace(m.input.Value()))
	if err != nil {
		m.err = fmt.Errorf("not a number: %q", m.input.Value())
		return
	}
	line, err := m.cat.resolve(count)
	if err != nil {
		m.err = err
		return
	}
	m.result = line
	m.entries = m.cat.entries()
	m.input.SetValue("")
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Buffer Catalog"))
	b.WriteString(" ")
	b.WriteString(m.cat.header())
	b.WriteString("\n\n")

	b.WriteString(m.input.View())
	b.WriteString("\n")
	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	case m.result != "":
		b.WriteString(resultStyle.Render(m.result))
	}
	b.WriteString("\n\n")

	b.WriteString("Cached shapes:\n\n")
	for i, e := range m.entries {
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + e))
		} else {
			b.WriteString("  " + shapeStyle.Render(e))
		}
		b.WriteString("\n")
	}

	st := m.cat.manager.Stats()
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf("shape %d • dynamic %d • heap %d • synthesized %d",
		st.Shape, st.Dynamic, st.Heap, st.Synthesized)))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter resolve • ↑/↓ browse • esc quit"))

	return b.String()
}

func runInteractive(cat *catalog) error {
	p := tea.NewProgram(newInteractiveModel(cat), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
