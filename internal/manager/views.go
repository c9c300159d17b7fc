package manager

import (
	"cmp"
	"context"
	"math"
	"slices"
	"strings"

	taskerrors "github.com/abatilo/taskman/internal/errors"
	"github.com/abatilo/taskman/internal/task"
)

// SortKey names the attribute SortTasks orders by.
type SortKey string

const (
	SortByCreatedAt SortKey = "created_at"
	SortByPriority  SortKey = "priority"
	SortByDueDate   SortKey = "due_date"
	SortByTitle     SortKey = "title"
)

// noDueDate stands in for a missing due date so undated tasks sort last.
const noDueDate = "9999-12-31"

// SortTasks returns a sorted copy of tasks. Equal elements keep their input
// order in both directions. Unknown keys sort by creation time. A slice
// holding a nil task cannot be ordered and is returned as an unsorted copy.
func SortTasks(tasks []*task.Task, key SortKey, reverse bool) []*task.Task {
	sorted := slices.Clone(tasks)
	if slices.Contains(sorted, nil) {
		return sorted
	}
	compare := comparator(key)
	slices.SortStableFunc(sorted, func(a, b *task.Task) int {
		if reverse {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return sorted
}

func comparator(key SortKey) func(a, b *task.Task) int {
	switch key {
	case SortByPriority:
		return func(a, b *task.Task) int {
			return cmp.Compare(task.PriorityRank(a.Priority), task.PriorityRank(b.Priority))
		}
	case SortByDueDate:
		return func(a, b *task.Task) int {
			return cmp.Compare(dueDateKey(a), dueDateKey(b))
		}
	case SortByTitle:
		return func(a, b *task.Task) int {
			return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	default:
		return func(a, b *task.Task) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
}

func dueDateKey(t *task.Task) string {
	if t.DueDate == "" {
		return noDueDate
	}
	return t.DueDate
}

// Filter selects tasks by attribute. Empty criteria match everything.
type Filter struct {
	Status   string
	Priority string
	DueDate  string
}

// FilterTasks returns the tasks matching every non-empty criterion in f.
// Criteria are validated as strictly as on input.
func (m *Manager) FilterTasks(ctx context.Context, f Filter) ([]*task.Task, error) {
	if f.Status != "" && !task.IsValidStatus(task.Status(f.Status)) {
		return []*task.Task{}, m.fail(ctx, "filter tasks", taskerrors.InvalidStatusError{Value: f.Status})
	}
	if f.Priority != "" && !task.IsValidPriority(task.Priority(f.Priority)) {
		return []*task.Task{}, m.fail(ctx, "filter tasks", taskerrors.InvalidPriorityError{Value: f.Priority})
	}
	if f.DueDate != "" && !ValidateDate(f.DueDate) {
		return []*task.Task{}, m.fail(ctx, "filter tasks", taskerrors.InvalidDateError{Value: f.DueDate})
	}

	var (
		tasks []*task.Task
		err   error
	)
	if f.Status != "" {
		tasks, err = m.FilterTasksByStatus(ctx, f.Status)
	} else {
		tasks, err = m.GetAllTasks(ctx)
	}
	if err != nil {
		return []*task.Task{}, err
	}

	return slices.DeleteFunc(tasks, func(t *task.Task) bool {
		return (f.Priority != "" && string(t.Priority) != f.Priority) ||
			(f.DueDate != "" && t.DueDate != f.DueDate)
	}), nil
}

// Stats summarises the task collection.
type Stats struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	Pending        int     `json:"pending"`
	InProgress     int     `json:"in_progress"`
	CompletionRate float64 `json:"completion_rate"`
}

// GetTaskStatistics counts tasks per status. CompletionRate is the percentage
// of completed tasks rounded to two decimals, and 0 when there are no tasks.
func (m *Manager) GetTaskStatistics(ctx context.Context) (Stats, error) {
	tasks, err := m.GetAllTasks(ctx)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(tasks), nil
}

// ComputeStats derives statistics from an already fetched task list.
func ComputeStats(tasks []*task.Task) Stats {
	var s Stats
	s.Total = len(tasks)
	for _, t := range tasks {
		switch t.Status {
		case task.StatusCompleted:
			s.Completed++
		case task.StatusPending:
			s.Pending++
		case task.StatusInProgress:
			s.InProgress++
		}
	}
	if s.Total > 0 {
		s.CompletionRate = math.Round(float64(s.Completed)/float64(s.Total)*100*100) / 100
	}
	return s
}
