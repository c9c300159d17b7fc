// Package manager implements task business rules on top of a storage
// collection: validation, lookups, and derived views such as sorting,
// filtering, and statistics.
package manager

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	taskerrors "github.com/abatilo/taskman/internal/errors"
	"github.com/abatilo/taskman/internal/task"
)

// Collection is the persistence surface the manager needs.
type Collection interface {
	Create(ctx context.Context, r task.Record) error
	All(ctx context.Context) ([]task.Record, error)
	Get(ctx context.Context, id string) (task.Record, error)
	Update(ctx context.Context, id string, fields task.Fields) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, term string) ([]task.Record, error)
	FilterByStatus(ctx context.Context, status string) ([]task.Record, error)
}

// Manager orchestrates task operations. Every method reports failures as an
// error and logs them; none of them panic on bad input or storage errors.
type Manager struct {
	coll   Collection
	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used to report failed operations.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// New creates a Manager over coll.
func New(coll Collection, opts ...Option) *Manager {
	m := &Manager{
		coll:   coll,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddTask validates the input and stores a new task. Title and description
// are trimmed; an empty due date means none.
func (m *Manager) AddTask(ctx context.Context, title, description, dueDate, priority string) (*task.Task, error) {
	title = strings.TrimSpace(title)
	dueDate = strings.TrimSpace(dueDate)

	if err := validateTitle(title); err != nil {
		return nil, m.fail(ctx, "add task", err)
	}
	if dueDate != "" && !ValidateDate(dueDate) {
		return nil, m.fail(ctx, "add task", taskerrors.InvalidDateError{Value: dueDate})
	}
	if !task.IsValidPriority(task.Priority(priority)) {
		return nil, m.fail(ctx, "add task", taskerrors.InvalidPriorityError{Value: priority})
	}

	t := task.New(title,
		task.WithDescription(strings.TrimSpace(description)),
		task.WithDueDate(dueDate),
		task.WithPriority(task.Priority(priority)),
	)
	if err := m.coll.Create(ctx, t.Record()); err != nil {
		return nil, m.fail(ctx, "add task", err)
	}
	m.logger.DebugContext(ctx, "task added", "task_id", t.ID)
	return t, nil
}

// GetAllTasks returns every task, newest first.
func (m *Manager) GetAllTasks(ctx context.Context) ([]*task.Task, error) {
	records, err := m.coll.All(ctx)
	if err != nil {
		return []*task.Task{}, m.fail(ctx, "get tasks", err)
	}
	return fromRecords(records), nil
}

// GetTaskByID returns the task with the exact id.
func (m *Manager) GetTaskByID(ctx context.Context, id string) (*task.Task, error) {
	r, err := m.coll.Get(ctx, id)
	if err != nil {
		return nil, m.fail(ctx, "get task", err)
	}
	if r == nil {
		return nil, m.fail(ctx, "get task", taskerrors.TaskNotFoundError{ID: id})
	}
	return task.FromRecord(r), nil
}

// UpdateTask validates fields and applies them to an existing task. Only the
// given fields are sent to storage. An empty due date clears it.
func (m *Manager) UpdateTask(ctx context.Context, id string, fields task.Fields) error {
	if _, err := m.coll.Get(ctx, id); err != nil {
		return m.fail(ctx, "update task", err)
	}
	if err := validateFields(fields); err != nil {
		return m.fail(ctx, "update task", err)
	}
	if err := m.coll.Update(ctx, id, fields); err != nil {
		return m.fail(ctx, "update task", err)
	}
	m.logger.DebugContext(ctx, "task updated", "task_id", id, "fields", len(fields))
	return nil
}

// MarkTaskCompleted sets the task status to Completed.
func (m *Manager) MarkTaskCompleted(ctx context.Context, id string) error {
	return m.UpdateTask(ctx, id, task.Fields{task.KeyStatus: string(task.StatusCompleted)})
}

// DeleteTask removes a task. Deleting an unknown id is an error.
func (m *Manager) DeleteTask(ctx context.Context, id string) error {
	if err := m.coll.Delete(ctx, id); err != nil {
		return m.fail(ctx, "delete task", err)
	}
	m.logger.DebugContext(ctx, "task deleted", "task_id", id)
	return nil
}

// SearchTasks returns tasks whose title or description contains term,
// ignoring case.
func (m *Manager) SearchTasks(ctx context.Context, term string) ([]*task.Task, error) {
	records, err := m.coll.Search(ctx, term)
	if err != nil {
		return []*task.Task{}, m.fail(ctx, "search tasks", err)
	}
	return fromRecords(records), nil
}

// FilterTasksByStatus returns tasks in the given status.
func (m *Manager) FilterTasksByStatus(ctx context.Context, status string) ([]*task.Task, error) {
	if !task.IsValidStatus(task.Status(status)) {
		return []*task.Task{}, m.fail(ctx, "filter tasks", taskerrors.InvalidStatusError{Value: status})
	}
	records, err := m.coll.FilterByStatus(ctx, status)
	if err != nil {
		return []*task.Task{}, m.fail(ctx, "filter tasks", err)
	}
	return fromRecords(records), nil
}

// ResolveID expands a unique id prefix to a full task id. An exact match wins
// over prefix matches.
func (m *Manager) ResolveID(ctx context.Context, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", m.fail(ctx, "resolve id", taskerrors.TaskNotFoundError{ID: prefix})
	}
	records, err := m.coll.All(ctx)
	if err != nil {
		return "", m.fail(ctx, "resolve id", err)
	}

	var matches []string
	for _, r := range records {
		id, _ := r.String(task.KeyID)
		if id == prefix {
			return id, nil
		}
		if task.MatchesID(id, prefix) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", m.fail(ctx, "resolve id", taskerrors.TaskNotFoundError{ID: prefix})
	case 1:
		return matches[0], nil
	default:
		return "", m.fail(ctx, "resolve id", taskerrors.AmbiguousIDError{Prefix: prefix, Matches: matches})
	}
}

// ValidateDate reports whether s is a YYYY-MM-DD calendar date.
func ValidateDate(s string) bool {
	_, err := time.Parse(task.DateLayout, s)
	return err == nil
}

func (m *Manager) fail(ctx context.Context, op string, err error) error {
	var notFound taskerrors.TaskNotFoundError
	level := slog.LevelError
	if errors.As(err, &notFound) || isValidation(err) {
		level = slog.LevelWarn
	}
	m.logger.Log(ctx, level, op+" failed", "error", err)
	return err
}

func isValidation(err error) bool {
	var (
		emptyTitle taskerrors.EmptyTitleError
		badDate    taskerrors.InvalidDateError
		badPrio    taskerrors.InvalidPriorityError
		badStatus  taskerrors.InvalidStatusError
	)
	return errors.As(err, &emptyTitle) || errors.As(err, &badDate) ||
		errors.As(err, &badPrio) || errors.As(err, &badStatus)
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return taskerrors.EmptyTitleError{}
	}
	return nil
}

func validateFields(fields task.Fields) error {
	if title, ok := fields[task.KeyTitle]; ok {
		if err := validateTitle(title); err != nil {
			return err
		}
	}
	if due, ok := fields[task.KeyDueDate]; ok && due != "" && !ValidateDate(due) {
		return taskerrors.InvalidDateError{Value: due}
	}
	if p, ok := fields[task.KeyPriority]; ok && !task.IsValidPriority(task.Priority(p)) {
		return taskerrors.InvalidPriorityError{Value: p}
	}
	if s, ok := fields[task.KeyStatus]; ok && !task.IsValidStatus(task.Status(s)) {
		return taskerrors.InvalidStatusError{Value: s}
	}
	return nil
}

func fromRecords(records []task.Record) []*task.Task {
	tasks := make([]*task.Task, 0, len(records))
	for _, r := range records {
		tasks = append(tasks, task.FromRecord(r))
	}
	return tasks
}
