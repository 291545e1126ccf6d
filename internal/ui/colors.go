package ui

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/vidstyle/internal/styles"
)

var palette = NewPalette("#C084FC", "#04B575", "#F87171", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	chip  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
		chip:  lipgloss.NewStyle().Padding(0, 1).Background(lipgloss.Color("#374151")),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// newBar builds a progress bar colored by a preset theme token, from its first to its last stop.
func newBar(theme string, width int) progress.Model {
	stops := styles.GradientStops(theme)
	return progress.New(
		progress.WithGradient(stops[0], stops[len(stops)-1]),
		progress.WithWidth(width),
	)
}
