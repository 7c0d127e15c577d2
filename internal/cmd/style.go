package cmd

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/petrarca/code-pattern-analyzer/internal/types"
)

// Styles colours text output; the zero value renders plain text
type Styles struct {
	enabled  bool
	severity map[types.Severity]lipgloss.Style
	header   lipgloss.Style
	path     lipgloss.Style
	dim      lipgloss.Style
}

// NewStyles returns coloured styles when enabled, plain ones otherwise
func NewStyles(enabled bool) Styles {
	if !enabled {
		return Styles{}
	}
	return Styles{
		enabled: true,
		severity: map[types.Severity]lipgloss.Style{
			types.SeverityCritical: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
			types.SeverityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
			types.SeverityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
			types.SeverityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
			types.SeverityInfo:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		},
		header: lipgloss.NewStyle().Bold(true),
		path:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4")),
		dim:    lipgloss.NewStyle().Faint(true),
	}
}

// colorEnabled reports whether f is a terminal and NO_COLOR is unset
func colorEnabled(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Severity renders a severity tag such as [HIGH]
func (s Styles) Severity(sev types.Severity) string {
	tag := "[" + strings.ToUpper(string(sev)) + "]"
	if !s.enabled {
		return tag
	}
	return s.severity[sev].Render(tag)
}

// Header renders a section header
func (s Styles) Header(text string) string {
	if !s.enabled {
		return text
	}
	return s.header.Render(text)
}

// Path renders a file path
func (s Styles) Path(text string) string {
	if !s.enabled {
		return text
	}
	return s.path.Render(text)
}

// Dim renders secondary detail
func (s Styles) Dim(text string) string {
	if !s.enabled {
		return text
	}
	return s.dim.Render(text)
}
