package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/ryoqun/cargo-hack/internal/workspace"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	cursorStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	markStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

// pickModel is a bubbletea model that narrows the selected package set.
// All packages start selected; space toggles, enter confirms, esc aborts.
// Typing filters the visible list by substring.
type pickModel struct {
	filter   textinput.Model
	pkgs     []*workspace.Package
	selected map[int]bool
	cursor   int
	done     bool
	aborted  bool
}

func newPickModel(pkgs []*workspace.Package) pickModel {
	ti := textinput.New()
	ti.Placeholder = "filter packages"
	ti.Focus()

	selected := make(map[int]bool, len(pkgs))
	for i := range pkgs {
		selected[i] = true
	}
	return pickModel{filter: ti, pkgs: pkgs, selected: selected}
}

// visible returns the indices of packages matching the filter, in
// declaration order.
func (m pickModel) visible() []int {
	var idx []int
	needle := strings.ToLower(m.filter.Value())
	for i, p := range m.pkgs {
		if needle == "" || strings.Contains(strings.ToLower(p.Name), needle) {
			idx = append(idx, i)
		}
	}
	return idx
}

func (m pickModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		case "enter":
			m.done = true
			return m, tea.Quit
		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "ctrl+n":
			if m.cursor < len(m.visible())-1 {
				m.cursor++
			}
			return m, nil
		case " ":
			if vis := m.visible(); len(vis) > 0 && m.cursor < len(vis) {
				i := vis[m.cursor]
				m.selected[i] = !m.selected[i]
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.cursor >= len(m.visible()) {
		m.cursor = 0
	}
	return m, cmd
}

func (m pickModel) View() string {
	if m.done || m.aborted {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Select packages to run on") + "\n")
	b.WriteString(m.filter.View() + "\n")
	for pos, i := range m.visible() {
		mark := "[ ]"
		if m.selected[i] {
			mark = markStyle.Render("[x]")
		}
		name := m.pkgs[i].Name
		if pos == m.cursor {
			name = cursorStyle.Render(name)
		}
		fmt.Fprintf(&b, "  %s %s\n", mark, name)
	}
	b.WriteString("\nspace: toggle  enter: confirm  esc: abort\n")
	return b.String()
}

// chosen returns the still-selected packages in declaration order.
func (m pickModel) chosen() []*workspace.Package {
	var out []*workspace.Package
	for i, p := range m.pkgs {
		if m.selected[i] {
			out = append(out, p)
		}
	}
	return out
}

func pickPackages(pkgs []*workspace.Package) ([]*workspace.Package, error) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return nil, fmt.Errorf("--interactive requires a terminal")
	}

	result, err := tea.NewProgram(newPickModel(pkgs)).Run()
	if err != nil {
		return nil, err
	}
	pm := result.(pickModel)
	if pm.aborted {
		return nil, fmt.Errorf("user aborted")
	}
	return pm.chosen(), nil
}
