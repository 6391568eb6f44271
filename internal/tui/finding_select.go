// Package tui holds interactive terminal pickers.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sherwynjoel/hybridllm/internal/domain"
)

// FindingItem is one finding in the selection list.
type FindingItem struct {
	Vulnerability domain.Vulnerability
	Selected      bool
}

// FindingSelectModel is a bubbletea model that lets the user pick which
// findings to request fixes for.
type FindingSelectModel struct {
	title   string
	items   []FindingItem
	cursor  int
	done    bool
	quitted bool
}

// NewFindingSelectModel creates a model over vulns. Nothing is selected
// initially.
func NewFindingSelectModel(title string, vulns []domain.Vulnerability) FindingSelectModel {
	items := make([]FindingItem, len(vulns))
	for i, v := range vulns {
		items[i] = FindingItem{Vulnerability: v}
	}
	return FindingSelectModel{title: title, items: items}
}

// Selected returns the chosen findings in list order. When the user confirms
// without marking anything, the finding under the cursor is returned.
func (m FindingSelectModel) Selected() []domain.Vulnerability {
	var out []domain.Vulnerability
	for _, it := range m.items {
		if it.Selected {
			out = append(out, it.Vulnerability)
		}
	}
	if len(out) == 0 && m.done && len(m.items) > 0 {
		out = append(out, m.items[m.cursor].Vulnerability)
	}
	return out
}

// Done reports whether the user confirmed the selection.
func (m FindingSelectModel) Done() bool { return m.done }

// Quitted reports whether the user cancelled.
func (m FindingSelectModel) Quitted() bool { return m.quitted }

// Init satisfies tea.Model.
func (m FindingSelectModel) Init() tea.Cmd { return nil }

// Update satisfies tea.Model.
func (m FindingSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case tea.KeySpace:
		if len(m.items) > 0 {
			m.items[m.cursor].Selected = !m.items[m.cursor].Selected
		}
	case tea.KeyEnter:
		m.done = true
		return m, tea.Quit
	case tea.KeyEsc, tea.KeyCtrlC:
		m.quitted = true
		return m, tea.Quit
	case tea.KeyRunes:
		switch string(key.Runes) {
		case "q":
			m.quitted = true
			return m, tea.Quit
		case "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "a":
			allSelected := true
			for _, it := range m.items {
				if !it.Selected {
					allSelected = false
					break
				}
			}
			for i := range m.items {
				m.items[i].Selected = !allSelected
			}
		}
	}
	return m, nil
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	severityStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
)

// View satisfies tea.Model.
func (m FindingSelectModel) View() string {
	if m.done || m.quitted {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")

	for i, item := range m.items {
		checkbox := "[ ]"
		if item.Selected {
			checkbox = "[x]"
		}
		v := item.Vulnerability
		line := fmt.Sprintf("%s L%-4d %s %s %s", checkbox, v.Line,
			severityStyle.Render(strings.ToUpper(v.Severity)), v.Type, dimStyle.Render(v.Message))

		if i == m.cursor {
			line = cursorStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("space: toggle | enter: fix selected | a: toggle all | q/esc: quit"))
	return b.String()
}

// RunFindingSelect shows the picker on the terminal and returns the chosen
// findings. It returns nil when the user quits.
func RunFindingSelect(title string, vulns []domain.Vulnerability, opts ...tea.ProgramOption) ([]domain.Vulnerability, error) {
	final, err := tea.NewProgram(NewFindingSelectModel(title, vulns), opts...).Run()
	if err != nil {
		return nil, fmt.Errorf("finding picker: %w", err)
	}
	m := final.(FindingSelectModel)
	if m.Quitted() {
		return nil, nil
	}
	return m.Selected(), nil
}
