// Package tui implements the interactive review screen shown before a diff
// is written: the coloured diff in a scrollable viewport and a prompt to
// accept or reject it.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/asynkron/goedit/internal/render"
)

type model struct {
	title   string
	summary string
	content string

	vp     viewport.Model
	width  int
	height int
	ready  bool

	decided  bool
	accepted bool

	border      lipgloss.Style
	titleStyle  lipgloss.Style
	footerStyle lipgloss.Style
}

func newModel(title, diff string, profile termenv.Profile) *model {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(profile)
	r.SetHasDarkBackground(true)

	return &model{
		title:       title,
		summary:     render.Stat(diff).String(),
		content:     render.Colorize(diff, profile),
		border:      r.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240")),
		titleStyle:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		footerStyle: r.NewStyle().Foreground(lipgloss.Color("244")),
	}
}

// recalcLayout sizes the viewport to the terminal minus the title line,
// the footer line and the border.
func (m *model) recalcLayout() {
	w := m.width - 2
	if w < 1 {
		w = 1
	}
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	if !m.ready {
		m.vp = viewport.New(w, h)
		m.vp.SetContent(m.content)
		return
	}
	m.vp.Width = w
	m.vp.Height = h
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "y", "Y", "enter":
			m.decided = true
			m.accepted = true
			return m, tea.Quit
		case "n", "N", "q", "esc", "ctrl+c":
			m.decided = true
			m.accepted = false
			return m, tea.Quit
		}
	}

	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m *model) View() string {
	if !m.ready {
		return "Initializing…"
	}
	header := m.titleStyle.Render(m.title) + "  " + m.footerStyle.Render(m.summary)
	footer := m.footerStyle.Render(fmt.Sprintf("%3.f%%  y/enter apply  n/esc reject  ↑/↓ scroll", m.vp.ScrollPercent()*100))
	return header + "\n" + m.border.Render(m.vp.View()) + "\n" + footer
}

// Review shows diff full screen and reports whether the user accepted it.
// Input is read from in and the screen drawn on out; cancelling ctx rejects
// the diff.
func Review(ctx context.Context, title, diff string, in io.Reader, out io.Writer) (bool, error) {
	if strings.TrimSpace(title) == "" {
		title = "Review changes"
	}
	m := newModel(title, diff, render.ProfileFor(out))

	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	final, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("tui: review: %w", err)
	}
	result, ok := final.(*model)
	if !ok {
		return false, fmt.Errorf("tui: unexpected model %T", final)
	}
	return result.decided && result.accepted, nil
}
