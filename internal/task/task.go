package task

import (
	"fmt"
	"time"
)

// Status represents the current state of a task.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Priority represents the importance level of a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Statuses lists the valid statuses in workflow order.
func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted}
}

// Priorities lists the valid priorities from lowest to highest.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh}
}

// PriorityRank returns the sort rank for a priority (higher = more important).
func PriorityRank(p Priority) int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// IsValidStatus checks if a status string is valid.
func IsValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// IsValidPriority checks if a priority string is valid.
func IsValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Task represents a tracked work item.
type Task struct {
	ID          string
	Title       string
	Description string
	DueDate     string // YYYY-MM-DD, empty when not set
	Priority    Priority
	Status      Status
	CreatedAt   time.Time
}

// Option configures a Task built by New.
type Option func(*Task)

// WithDescription sets the task description.
func WithDescription(d string) Option {
	return func(t *Task) { t.Description = d }
}

// WithDueDate sets the due date.
func WithDueDate(d string) Option {
	return func(t *Task) { t.DueDate = d }
}

// WithPriority sets the priority. Unknown values fall back to Medium.
func WithPriority(p Priority) Option {
	return func(t *Task) { t.Priority = p }
}

// WithStatus sets the status. Unknown values fall back to Pending.
func WithStatus(s Status) Option {
	return func(t *Task) { t.Status = s }
}

// WithID reuses an existing identifier instead of generating one.
func WithID(id string) Option {
	return func(t *Task) { t.ID = id }
}

// New creates a task. Priority and status are coerced to their defaults when
// they are not one of the enumerated values.
func New(title string, opts ...Option) *Task {
	t := &Task{
		Title:     title,
		Priority:  PriorityMedium,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if !IsValidPriority(t.Priority) {
		t.Priority = PriorityMedium
	}
	if !IsValidStatus(t.Status) {
		t.Status = StatusPending
	}
	if t.ID == "" {
		t.ID = NewID()
	}
	return t
}

// Update applies the recognised mutable fields. Invalid priority or status
// values are skipped; unknown keys are ignored.
func (t *Task) Update(fields Fields) {
	for key, value := range fields {
		switch key {
		case KeyTitle:
			t.Title = value
		case KeyDescription:
			t.Description = value
		case KeyDueDate:
			t.DueDate = value
		case KeyPriority:
			if p := Priority(value); IsValidPriority(p) {
				t.Priority = p
			}
		case KeyStatus:
			if s := Status(value); IsValidStatus(s) {
				t.Status = s
			}
		}
	}
}

// MarkCompleted sets the status to Completed.
func (t *Task) MarkCompleted() {
	t.Status = StatusCompleted
}

// IsCompleted reports whether the task is done.
func (t *Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

func (t *Task) String() string {
	return fmt.Sprintf("[%s] %s - %s (%s)", ShortID(t.ID), t.Title, t.Status, t.Priority)
}
