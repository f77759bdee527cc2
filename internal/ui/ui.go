// Package ui renders CLI output: a spinner while a resolution runs and
// lipgloss tables for catalog and cache listings.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	accent    = lipgloss.Color("205")
	subtle    = lipgloss.Color("241")
	highlight = lipgloss.Color("62")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(highlight).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	faintStyle  = lipgloss.NewStyle().Foreground(subtle)
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	urlStyle    = lipgloss.NewStyle().Foreground(accent)
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Faint renders secondary text.
func Faint(s string) string {
	return faintStyle.Render(s)
}

// Error renders an error line.
func Error(s string) string {
	return errorStyle.Render(s)
}

// URL renders a stream URL.
func URL(s string) string {
	return urlStyle.Render(s)
}
