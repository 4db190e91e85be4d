package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorText   = lipgloss.Color("#FFFCF0")
	colorDim    = lipgloss.Color("#6F6E69")
	colorAccent = lipgloss.Color("#3AA99F")
	colorGreen  = lipgloss.Color("#879A39")
	colorOrange = lipgloss.Color("#DA702C")
	colorRed    = lipgloss.Color("#D14D41")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	labelStyle   = lipgloss.NewStyle().Foreground(colorDim)
	valueStyle   = lipgloss.NewStyle().Foreground(colorText)
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	warnStyle    = lipgloss.NewStyle().Foreground(colorOrange)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
)

func renderTitle(w io.Writer, title string) {
	fmt.Fprintf(w, "\n  %s\n\n", titleStyle.Render(title))
}

func renderKV(w io.Writer, label, value string) {
	fmt.Fprintf(w, "    %s %s\n", labelStyle.Render(fmt.Sprintf("%-18s", label+":")), valueStyle.Render(value))
}

// renderProgress rewrites the current line. Rate-limit notices get their own line.
func renderProgress(w io.Writer, msg string) {
	if strings.HasPrefix(msg, "Rate limit") || strings.HasPrefix(msg, "Please visit") {
		fmt.Fprintf(w, "\r  %s\n", warnStyle.Render(msg))
		return
	}
	fmt.Fprintf(w, "\r  %s", labelStyle.Render(msg))
}

func renderDone(w io.Writer, total int) {
	fmt.Fprintf(w, "\r  %s\n", successStyle.Render(fmt.Sprintf("✓ Imported %d tweets!", total)))
}

func renderError(w io.Writer, err error) {
	fmt.Fprintf(w, "\r  %s\n", errorStyle.Render("✗ "+err.Error()))
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", 8) + key[len(key)-4:]
}
