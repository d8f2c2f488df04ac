// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ui prints coloured status lines for the CLI.
package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	Red   = color.New(color.FgRed)
	Green = color.New(color.FgGreen)
	Blue  = color.New(color.FgBlue)
	Bold  = color.New(color.Bold)
)

// Success prints a green line with a checkmark.
func Success(w io.Writer, format string, args ...any) {
	Green.Fprintf(w, "✓ "+format+"\n", args...)
}

// Failure prints a red line with an X.
func Failure(w io.Writer, format string, args ...any) {
	Red.Fprintf(w, "✗ "+format+"\n", args...)
}

// Info prints a blue line.
func Info(w io.Writer, format string, args ...any) {
	Blue.Fprintf(w, format+"\n", args...)
}

// Header prints a bold line.
func Header(w io.Writer, format string, args ...any) {
	Bold.Fprintf(w, format+"\n", args...)
}

// Plain prints an uncoloured line.
func Plain(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}
