//nolint:revive // Package name intentionally matches stdlib for domain clarity
package errors

import (
	"fmt"
	"strings"
)

// TaskNotFoundError indicates the task ID doesn't match any stored task.
type TaskNotFoundError struct {
	ID string
}

func (e TaskNotFoundError) Error() string {
	return fmt.Sprintf("task not found: %s", e.ID)
}

// AlreadyExistsError indicates an ID collision.
type AlreadyExistsError struct {
	ID string
}

func (e AlreadyExistsError) Error() string {
	return fmt.Sprintf("task already exists: %s", e.ID)
}

// AmbiguousIDError indicates an ID prefix matches more than one task.
type AmbiguousIDError struct {
	Prefix  string
	Matches []string
}

func (e AmbiguousIDError) Error() string {
	return fmt.Sprintf("id prefix %s matches %d tasks: %s", e.Prefix, len(e.Matches), strings.Join(e.Matches, ", "))
}

// EmptyTitleError indicates a blank task title.
type EmptyTitleError struct{}

func (e EmptyTitleError) Error() string {
	return "task title cannot be empty"
}

// InvalidDateError indicates a due date that is not a YYYY-MM-DD calendar date.
type InvalidDateError struct {
	Value string
}

func (e InvalidDateError) Error() string {
	return fmt.Sprintf("invalid due date: %s (use YYYY-MM-DD)", e.Value)
}

// InvalidPriorityError indicates an invalid priority value.
type InvalidPriorityError struct {
	Value string
}

func (e InvalidPriorityError) Error() string {
	return fmt.Sprintf("invalid priority: %s (valid: Low, Medium, High)", e.Value)
}

// InvalidStatusError indicates an invalid status value.
type InvalidStatusError struct {
	Value string
}

func (e InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid status: %s (valid: Pending, In Progress, Completed)", e.Value)
}

// NoChangesError indicates an update with nothing to apply.
type NoChangesError struct {
	ID string
}

func (e NoChangesError) Error() string {
	return fmt.Sprintf("no changes for task %s", e.ID)
}

// UnknownBackendError indicates an unsupported storage backend name.
type UnknownBackendError struct {
	Name string
}

func (e UnknownBackendError) Error() string {
	return fmt.Sprintf("unknown storage backend: %s (valid: mongo, file, sqlite)", e.Name)
}
