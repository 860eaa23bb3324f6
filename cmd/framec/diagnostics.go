package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Hackzzila/FrameUi/internal/diag"
)

var (
	errorColor   = lipgloss.Color("#ef4444")
	warningColor = lipgloss.Color("#f59e0b")
	infoColor    = lipgloss.Color("#3b82f6")
	mutedColor   = lipgloss.Color("#94a3b8")
	successColor = lipgloss.Color("#10b981")

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(infoColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	successStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	messageStyle = lipgloss.NewStyle().Bold(true)
)

func levelStyle(l diag.Level) lipgloss.Style {
	switch l {
	case diag.Bug, diag.Error:
		return errorStyle
	case diag.Warn:
		return warningStyle
	}
	return infoStyle
}

// printDiagnostics writes every diagnostic at or above min and returns how
// many were shown
func printDiagnostics(w io.Writer, c *diag.Collector, min diag.Level) int {
	shown := 0
	for _, d := range c.Diagnostics() {
		if d.Level > min {
			continue
		}
		fmt.Fprintln(w, renderDiagnostic(c, d))
		shown++
	}
	return shown
}

// renderDiagnostic formats d with the offending source line:
//
//	error: CSS parse error: length needs a unit: "10"
//	  --> app.frame:4:19
//	   |
//	 4 |       .a { width: 10 }
//	   |                   ^
func renderDiagnostic(c *diag.Collector, d diag.Diagnostic) string {
	var b strings.Builder
	b.WriteString(levelStyle(d.Level).Render(d.Level.String()))
	b.WriteString(messageStyle.Render(": " + d.Kind.String()))
	if d.Detail != "" {
		b.WriteString(": " + d.Detail)
	}
	if d.Location == nil {
		return b.String()
	}

	name, _ := c.File(d.Location.File)
	line, col := c.LineColumn(d.Location.File, d.Location.Offset)
	text := c.LineText(d.Location.File, line)
	num := strconv.Itoa(line + 1)
	gutter := strings.Repeat(" ", len(num))

	fmt.Fprintf(&b, "\n%s %s:%d:%d", mutedStyle.Render(gutter+"-->"), name, line+1, col+1)
	fmt.Fprintf(&b, "\n%s", mutedStyle.Render(gutter+" |"))
	fmt.Fprintf(&b, "\n%s %s", mutedStyle.Render(num+" |"), text)
	fmt.Fprintf(&b, "\n%s %s%s", mutedStyle.Render(gutter+" |"), caretIndent(text, col), levelStyle(d.Level).Render("^"))
	return b.String()
}

// caretIndent keeps tabs so the caret lines up with the source line
func caretIndent(line string, col int) string {
	col = min(col, len(line))
	var b strings.Builder
	for i := 0; i < col; i++ {
		if line[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
