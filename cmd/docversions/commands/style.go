package commands

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// styler renders with lipgloss only when w is a terminal.
type styler struct {
	color bool
}

func newStyler(w io.Writer) styler {
	f, ok := w.(*os.File)
	return styler{color: ok && term.IsTerminal(int(f.Fd()))}
}

func (s styler) success(text string) string {
	if !s.color {
		return text
	}
	return successStyle.Render(text)
}

func (s styler) muted(text string) string {
	if !s.color {
		return text
	}
	return mutedStyle.Render(text)
}
