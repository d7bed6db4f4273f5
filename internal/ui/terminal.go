// Package ui renders analysis results for a terminal.
package ui

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether f is connected to a terminal (TTY).
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ShouldUseColor determines if ANSI color codes should be written to f.
//   - NO_COLOR (any value) disables color
//   - CLICOLOR=0 disables color
//   - CLICOLOR_FORCE forces color even in non-TTY
//   - otherwise color only on a TTY
func ShouldUseColor(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("CLICOLOR") == "0" {
		return false
	}
	if os.Getenv("CLICOLOR_FORCE") != "" {
		return true
	}
	return IsTerminal(f)
}

// Width returns the width of the terminal behind f or 80.
func Width(f *os.File) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
