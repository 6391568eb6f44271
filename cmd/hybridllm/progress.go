package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sherwynjoel/hybridllm/internal/scanner"
)

var (
	dimStyle     = lipgloss.NewStyle().Faint(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // green
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // red
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // yellow
	fileStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4")) // blue
	counterStyle = lipgloss.NewStyle().Faint(true)
)

// newProgressWriter returns a ProgressFunc that writes scan progress to w,
// showing paths relative to root.
func newProgressWriter(w io.Writer, root string) scanner.ProgressFunc {
	return func(e scanner.ProgressEvent) {
		if !e.Done {
			counter := counterStyle.Render(fmt.Sprintf("[%d/%d]", e.Index+1, e.Total))
			fmt.Fprintf(w, "  %s Analyzing %s...", counter, fileStyle.Render(displayPath(root, e.Path)))
			return
		}

		dur := dimStyle.Render(fmt.Sprintf("(%.1fs)", e.Duration.Seconds()))
		switch {
		case e.Err != nil:
			fmt.Fprintf(w, " %s %s %s\n", errorStyle.Render("✗"), dur, dimStyle.Render(shortError(e.Err)))
		case e.Findings > 0:
			fmt.Fprintf(w, " %s %s %s\n", warnStyle.Render("!"), dur, warnStyle.Render(fmt.Sprintf("%d findings", e.Findings)))
		default:
			fmt.Fprintf(w, " %s %s\n", successStyle.Render("✓"), dur)
		}
	}
}

// shortError returns the innermost part of a wrapped error message.
func shortError(err error) string {
	msg := err.Error()
	if idx := strings.LastIndex(msg, ": "); idx != -1 {
		return msg[idx+2:]
	}
	return msg
}

func displayPath(root, path string) string {
	if root == "" {
		return path
	}
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}
