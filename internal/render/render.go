// Package render turns unified diffs into terminal output: ANSI colouring,
// glamour-rendered markdown and change statistics.
package render

import (
	"fmt"
	"io"
	"strings"

	glam "github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Colour modes accepted by ProfileForMode.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ProfileFor detects the colour support of w. Writers that are not
// terminals get termenv.Ascii; NO_COLOR and CLICOLOR_FORCE are honoured.
func ProfileFor(w io.Writer) termenv.Profile {
	return termenv.NewOutput(w).EnvColorProfile()
}

// ProfileForMode resolves a colour mode for output written to w.
func ProfileForMode(mode string, w io.Writer) (termenv.Profile, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ColorAuto:
		return ProfileFor(w), nil
	case ColorAlways:
		return termenv.ANSI256, nil
	case ColorNever:
		return termenv.Ascii, nil
	default:
		return termenv.Ascii, fmt.Errorf("unknown color mode %q (want auto, always or never)", mode)
	}
}

type styles struct {
	header  lipgloss.Style
	hunk    lipgloss.Style
	added   lipgloss.Style
	removed lipgloss.Style
	note    lipgloss.Style
}

func newStyles(profile termenv.Profile) styles {
	// A fixed profile and background keep lipgloss from querying the
	// terminal.
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(profile)
	r.SetHasDarkBackground(true)

	base := r.NewStyle().TabWidth(lipgloss.NoTabConversion)
	return styles{
		header:  base.Bold(true).Foreground(lipgloss.Color("252")),
		hunk:    base.Foreground(lipgloss.Color("63")),
		added:   base.Foreground(lipgloss.Color("42")),
		removed: base.Foreground(lipgloss.Color("9")),
		note:    base.Foreground(lipgloss.Color("244")),
	}
}

// Colorize styles each line of diff by its role. Line terminators are kept,
// so with termenv.Ascii the text is returned unchanged.
func Colorize(diff string, profile termenv.Profile) string {
	if diff == "" {
		return ""
	}
	st := newStyles(profile)
	var out strings.Builder
	out.Grow(len(diff) * 2)

	kinds := classify(diff)
	for i, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		text, eol := cutTerminator(line)
		if text != "" {
			out.WriteString(st.styleFor(kinds[i]).Render(text))
		}
		out.WriteString(eol)
	}
	return out.String()
}

func (s styles) styleFor(kind lineKind) lipgloss.Style {
	switch kind {
	case kindHeader:
		return s.header
	case kindHunk:
		return s.hunk
	case kindAdded:
		return s.added
	case kindRemoved:
		return s.removed
	case kindNote:
		return s.note
	default:
		return lipgloss.NewStyle().TabWidth(lipgloss.NoTabConversion)
	}
}

func cutTerminator(line string) (string, string) {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return line[:len(line)-2], "\r\n"
	case strings.HasSuffix(line, "\n"):
		return line[:len(line)-1], "\n"
	default:
		return line, ""
	}
}

// Markdown renders diff as a fenced diff block through glamour, wrapped at
// width columns.
func Markdown(diff string, width int) (string, error) {
	if width < 10 {
		width = 10
	}
	r, err := glam.NewTermRenderer(
		glam.WithStylePath("dark"), // fixed style to avoid OSC queries
		glam.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("render: create markdown renderer: %w", err)
	}
	body := diff
	if body != "" && !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	out, err := r.Render("```diff\n" + body + "```\n")
	if err != nil {
		return "", fmt.Errorf("render: markdown: %w", err)
	}
	return out, nil
}
