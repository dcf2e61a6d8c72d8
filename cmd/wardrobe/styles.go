package main

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	successColor = lipgloss.Color("#4ECDC4")
	warningColor = lipgloss.Color("#FFE66D")
	subtleColor  = lipgloss.Color("#666666")
)

// styles renders for one output; colors are dropped when it is not a terminal.
type styles struct {
	header  lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	subtle  lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		header:  r.NewStyle().Bold(true).TabWidth(lipgloss.NoTabConversion),
		success: r.NewStyle().Foreground(successColor),
		warning: r.NewStyle().Foreground(warningColor),
		subtle:  r.NewStyle().Foreground(subtleColor),
	}
}
