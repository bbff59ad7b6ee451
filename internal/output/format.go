// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"taskdeck/internal/service"
	"taskdeck/internal/tasks"
)

// FormatTask formats a task line.
// Format: "{N:>4}  [x] {TITLE}\n" with "[ ]" for open tasks.
func FormatTask(w io.Writer, num int, task service.Task) {
	box := "[ ]"
	if task.IsCompleted {
		box = "[x]"
	}
	fmt.Fprintf(w, "%4d  %s %s\n", num, box, normalizeTitle(task.Title))
}

// FormatPageFooter formats the pagination footer after a task page.
// Omitted entirely when everything fits on one page.
func FormatPageFooter(w io.Writer, pg tasks.Pagination) {
	if pg.TotalPages <= 1 {
		return
	}
	fmt.Fprintf(w, "page %d/%d (%d tasks)\n", pg.CurrentPage, pg.TotalPages, pg.TotalItems)
}

// FormatIdentity formats the whoami output.
func FormatIdentity(w io.Writer, id, email string) {
	fmt.Fprintf(w, "%s (%s)\n", email, id)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
