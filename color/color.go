// Package color holds the ANSI palette used by CLI output.
package color

import "github.com/charmbracelet/lipgloss"

func New(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

var (
	Red    = New("1")
	Green  = New("2")
	Yellow = New("3")
	Blue   = New("4")
	Purple = New("5")
	Cyan   = New("6")
	White  = New("7")
)

var (
	HiRed  = New("9")
	HiBlue = New("12")
	HiCyan = New("14")
)

// Accent colors for badges.
var (
	Orange = New("#ffb703")
	Gray   = New("#808080")
	Ink    = New("230")
)
