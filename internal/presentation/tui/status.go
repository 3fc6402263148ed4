package tui

import (
	"github.com/muesli/termenv"
)

// Success formats a green status line.
func Success(msg string) string {
	p := termenv.ColorProfile()
	return termenv.String("✔ " + msg).Foreground(p.Color("#22c55e")).String()
}

// Failure formats a red, bold status line.
func Failure(msg string) string {
	p := termenv.ColorProfile()
	return termenv.String("✘ " + msg).Foreground(p.Color("#ef4444")).Bold().String()
}

// Muted formats secondary information.
func Muted(msg string) string {
	p := termenv.ColorProfile()
	return termenv.String(msg).Foreground(p.Color("#94a3b8")).String()
}
