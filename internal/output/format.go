// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"tasker/internal/service"
)

const (
	// EmptyMessage is printed when the task list is empty.
	EmptyMessage = "No tasks found. Create your first task!"

	// NoDueDate is shown for tasks without a due date.
	NoDueDate = "No due date"

	// DueLayout is the display layout of due dates.
	DueLayout = "Jan 2, 2006"
)

// Badge is the visual class of a status.
type Badge string

const (
	BadgeWarning Badge = "warning"
	BadgePrimary Badge = "primary"
	BadgeSuccess Badge = "success"
	BadgeNeutral Badge = "neutral"
)

// StatusBadge maps every status to its badge. Anything outside the closed
// set gets the neutral badge.
func StatusBadge(s service.Status) Badge {
	switch s {
	case service.StatusPending:
		return BadgeWarning
	case service.StatusInProgress:
		return BadgePrimary
	case service.StatusCompleted:
		return BadgeSuccess
	}
	return BadgeNeutral
}

// FormatTask formats one task of the list.
// Format: "{N:>4}  [{STATUS}] {TITLE}  ({DUE})\n", followed by the
// description on its own line indented by 8 spaces when present.
func FormatTask(w io.Writer, num int, task service.Task) {
	title := normalizeTitle(task.Title)
	fmt.Fprintf(w, "%4d  [%s] %s  (%s)\n", num, task.Status.Label(), title, FormatDue(task))
	if desc := normalizeDescription(task.Description); desc != "" {
		fmt.Fprintf(w, "        %s\n", desc)
	}
}

// FormatTasks formats a whole list, or the empty message.
func FormatTasks(w io.Writer, tasks []service.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, EmptyMessage)
		return
	}
	for i, task := range tasks {
		FormatTask(w, i+1, task)
	}
}

// FormatDue renders the due date, or NoDueDate.
// Unparseable dates are shown as sent.
func FormatDue(task service.Task) string {
	if strings.TrimSpace(task.DueDate) == "" {
		return NoDueDate
	}
	d, ok := task.Due()
	if !ok {
		return task.DueDate
	}
	return d.Format(DueLayout)
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

// normalizeDescription collapses a description onto one trimmed line.
func normalizeDescription(desc string) string {
	return strings.Join(strings.Fields(desc), " ")
}
