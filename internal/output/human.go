package output

import (
	"fmt"
	"strings"

	"github.com/abatilo/taskman/internal/manager"
	"github.com/abatilo/taskman/internal/task"
)

const (
	maxTitleWidth = 25
	notSet        = "Not set"
)

// HumanFormatter formats output for human-readable terminal display.
type HumanFormatter struct{}

// NewHumanFormatter creates a new HumanFormatter.
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{}
}

// FormatTask formats a single task for display.
func (f *HumanFormatter) FormatTask(t *task.Task) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "[%s] %s\n", t.ID, t.Title)
	fmt.Fprintf(&sb, "  Status:   %s\n", t.Status)
	fmt.Fprintf(&sb, "  Priority: %s\n", t.Priority)
	fmt.Fprintf(&sb, "  Due:      %s\n", dueOrNotSet(t))
	fmt.Fprintf(&sb, "  Created:  %s\n", t.CreatedAt.Local().Format("2006-01-02 15:04"))

	if t.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(t.Description)
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatTaskList formats tasks as a table.
func (f *HumanFormatter) FormatTaskList(tasks []*task.Task) string {
	if len(tasks) == 0 {
		return "No tasks found.\n"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-10s %-25s %-12s %-8s %-12s\n", "ID", "Title", "Status", "Priority", "Due Date")
	sb.WriteString(strings.Repeat("-", 75) + "\n")
	for _, t := range tasks {
		fmt.Fprintf(&sb, "%-10s %-25s %-12s %-8s %-12s\n",
			task.ShortID(t.ID), truncate(t.Title, maxTitleWidth), t.Status, t.Priority, dueOrNotSet(t))
	}
	return sb.String()
}

// FormatStats formats the statistics block.
func (f *HumanFormatter) FormatStats(s manager.Stats) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Total Tasks    : %d\n", s.Total)
	fmt.Fprintf(&sb, "Completed      : %d\n", s.Completed)
	fmt.Fprintf(&sb, "Pending        : %d\n", s.Pending)
	fmt.Fprintf(&sb, "In Progress    : %d\n", s.InProgress)
	fmt.Fprintf(&sb, "Completion Rate: %.2f%%\n", s.CompletionRate)
	return sb.String()
}

// FormatError formats an error for display.
func (f *HumanFormatter) FormatError(err error) string {
	return fmt.Sprintf("Error: %s\n", err.Error())
}

// FormatMessage formats a simple message.
func (f *HumanFormatter) FormatMessage(msg string) string {
	return msg + "\n"
}

func dueOrNotSet(t *task.Task) string {
	if t.DueDate == "" {
		return notSet
	}
	return t.DueDate
}

// truncate shortens s to width runes, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}
