//nolint:testpackage // Tests require internal access for thorough testing
package manager

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	taskerrors "github.com/abatilo/taskman/internal/errors"
	"github.com/abatilo/taskman/internal/storage/filestore"
	"github.com/abatilo/taskman/internal/task"
)

func newTestManager(t *testing.T) (*Manager, *filestore.Store) {
	t.Helper()
	store, err := filestore.Open(filepath.Join(t.TempDir(), "tasks"))
	if err != nil {
		t.Fatalf("filestore.Open failed: %v", err)
	}
	return New(store), store
}

func mustAdd(t *testing.T, m *Manager, title, due, priority string) *task.Task {
	t.Helper()
	tk, err := m.AddTask(context.Background(), title, "", due, priority)
	if err != nil {
		t.Fatalf("AddTask(%q) failed: %v", title, err)
	}
	return tk
}

// brokenCollection fails every call.
type brokenCollection struct{}

var errBroken = errors.New("connection refused")

func (brokenCollection) Create(context.Context, task.Record) error { return errBroken }
func (brokenCollection) All(context.Context) ([]task.Record, error) {
	return nil, errBroken
}
func (brokenCollection) Get(context.Context, string) (task.Record, error) {
	return nil, errBroken
}
func (brokenCollection) Update(context.Context, string, task.Fields) error { return errBroken }
func (brokenCollection) Delete(context.Context, string) error              { return errBroken }
func (brokenCollection) Search(context.Context, string) ([]task.Record, error) {
	return nil, errBroken
}
func (brokenCollection) FilterByStatus(context.Context, string) ([]task.Record, error) {
	return nil, errBroken
}

func TestAddTaskValidation(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		due      string
		priority string
		wantErr  any
	}{
		{"empty title", "", "", "Medium", &taskerrors.EmptyTitleError{}},
		{"whitespace title", "   \t", "", "Medium", &taskerrors.EmptyTitleError{}},
		{"invalid calendar date", "x", "2024-13-40", "Medium", &taskerrors.InvalidDateError{}},
		{"wrong date format", "x", "15/01/2024", "Medium", &taskerrors.InvalidDateError{}},
		{"february 30", "x", "2024-02-30", "Medium", &taskerrors.InvalidDateError{}},
		{"unknown priority", "x", "", "Urgent", &taskerrors.InvalidPriorityError{}},
		{"lowercase priority", "x", "", "high", &taskerrors.InvalidPriorityError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, store := newTestManager(t)
			tk, err := m.AddTask(context.Background(), tt.title, "", tt.due, tt.priority)
			if err == nil {
				t.Fatalf("AddTask() = %v, want error", tk)
			}
			if !errors.As(err, tt.wantErr) {
				t.Errorf("AddTask() error = %T %v, want %T", err, err, tt.wantErr)
			}
			if n, _ := store.Count(context.Background()); n != 0 {
				t.Errorf("store has %d tasks after failed add, want 0", n)
			}
		})
	}
}

func TestAddTaskDefaultsAndTrimming(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)

	tk, err := m.AddTask(ctx, "  Write tests  ", "  cover edge cases ", "2024-01-15", "Medium")
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}

	r, err := store.Get(ctx, tk.ID)
	if err != nil {
		t.Fatalf("stored task missing: %v", err)
	}
	stored := task.FromRecord(r)
	if stored.Title != "Write tests" {
		t.Errorf("Title = %q, want trimmed", stored.Title)
	}
	if stored.Description != "cover edge cases" {
		t.Errorf("Description = %q, want trimmed", stored.Description)
	}
	if stored.Priority != task.PriorityMedium || stored.Status != task.StatusPending {
		t.Errorf("Priority/Status = %q/%q, want Medium/Pending", stored.Priority, stored.Status)
	}
	if stored.DueDate != "2024-01-15" {
		t.Errorf("DueDate = %q, want 2024-01-15", stored.DueDate)
	}
}

func TestAddTaskStorageFailure(t *testing.T) {
	m := New(brokenCollection{})
	if _, err := m.AddTask(context.Background(), "x", "", "", "Low"); !errors.Is(err, errBroken) {
		t.Errorf("AddTask() error = %v, want %v", err, errBroken)
	}
}

func TestGetTaskByID(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	added := mustAdd(t, m, "Find me", "", "High")

	got, err := m.GetTaskByID(ctx, added.ID)
	if err != nil {
		t.Fatalf("GetTaskByID() error = %v", err)
	}
	if got.Title != "Find me" || got.Priority != task.PriorityHigh {
		t.Errorf("GetTaskByID() = %+v", got)
	}

	var notFound taskerrors.TaskNotFoundError
	if _, err = m.GetTaskByID(ctx, "does-not-exist"); !errors.As(err, &notFound) {
		t.Errorf("GetTaskByID(missing) error = %v, want TaskNotFoundError", err)
	}
}

func TestUpdateTask(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	tk := mustAdd(t, m, "Original", "2024-01-15", "Low")

	err := m.UpdateTask(ctx, tk.ID, task.Fields{
		task.KeyTitle:    "Renamed",
		task.KeyPriority: "High",
		task.KeyStatus:   "In Progress",
	})
	if err != nil {
		t.Fatalf("UpdateTask() error = %v", err)
	}

	got, _ := m.GetTaskByID(ctx, tk.ID)
	if got.Title != "Renamed" || got.Priority != task.PriorityHigh || got.Status != task.StatusInProgress {
		t.Errorf("after update = %+v", got)
	}
	if got.DueDate != "2024-01-15" {
		t.Errorf("DueDate = %q, fields not in the update set must stay", got.DueDate)
	}
	if !got.CreatedAt.Equal(tk.CreatedAt.Truncate(time.Microsecond)) {
		t.Errorf("CreatedAt = %v, want unchanged %v", got.CreatedAt, tk.CreatedAt)
	}

	if err = m.UpdateTask(ctx, tk.ID, task.Fields{task.KeyDueDate: ""}); err != nil {
		t.Fatalf("clearing due date error = %v", err)
	}
	got, _ = m.GetTaskByID(ctx, tk.ID)
	if got.DueDate != "" {
		t.Errorf("DueDate = %q, want cleared", got.DueDate)
	}
}

func TestUpdateTaskRejectsInvalidFields(t *testing.T) {
	tests := []struct {
		name    string
		fields  task.Fields
		wantErr any
	}{
		{"bogus status", task.Fields{task.KeyStatus: "Bogus"}, &taskerrors.InvalidStatusError{}},
		{"bogus priority", task.Fields{task.KeyPriority: "Bogus"}, &taskerrors.InvalidPriorityError{}},
		{"bad date", task.Fields{task.KeyDueDate: "2024-13-40"}, &taskerrors.InvalidDateError{}},
		{"blank title", task.Fields{task.KeyTitle: "  "}, &taskerrors.EmptyTitleError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			m, _ := newTestManager(t)
			tk := mustAdd(t, m, "Keep me", "", "Medium")

			fields := task.Fields{task.KeyDescription: "should not be written"}
			for k, v := range tt.fields {
				fields[k] = v
			}
			err := m.UpdateTask(ctx, tk.ID, fields)
			if !errors.As(err, tt.wantErr) {
				t.Fatalf("UpdateTask() error = %v, want %T", err, tt.wantErr)
			}

			got, _ := m.GetTaskByID(ctx, tk.ID)
			if got.Status != task.StatusPending || got.Priority != task.PriorityMedium {
				t.Errorf("stored task changed: %+v", got)
			}
			if got.Description != "" || got.Title != "Keep me" {
				t.Errorf("stored task changed: %+v", got)
			}
		})
	}
}

func TestUpdateTaskNotFound(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)
	mustAdd(t, m, "Other", "", "Low")

	var notFound taskerrors.TaskNotFoundError
	err := m.UpdateTask(ctx, "missing", task.Fields{task.KeyTitle: "x"})
	if !errors.As(err, &notFound) {
		t.Fatalf("UpdateTask() error = %v, want TaskNotFoundError", err)
	}
	if n, _ := store.Count(ctx); n != 1 {
		t.Errorf("store has %d tasks, want 1", n)
	}
}

func TestMarkTaskCompleted(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	tk := mustAdd(t, m, "Finish", "", "Medium")

	if err := m.MarkTaskCompleted(ctx, tk.ID); err != nil {
		t.Fatalf("MarkTaskCompleted() error = %v", err)
	}
	got, err := m.GetTaskByID(ctx, tk.ID)
	if err != nil {
		t.Fatalf("GetTaskByID() error = %v", err)
	}
	if got.Status != task.StatusCompleted {
		t.Errorf("Status = %q, want Completed", got.Status)
	}

	var notFound taskerrors.TaskNotFoundError
	if err = m.MarkTaskCompleted(ctx, "missing"); !errors.As(err, &notFound) {
		t.Errorf("MarkTaskCompleted(missing) error = %v", err)
	}
}

func TestDeleteTask(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	tk := mustAdd(t, m, "Remove me", "", "Low")

	var notFound taskerrors.TaskNotFoundError
	if err := m.DeleteTask(ctx, "missing"); !errors.As(err, &notFound) {
		t.Errorf("DeleteTask(missing) error = %v, want TaskNotFoundError", err)
	}

	if err := m.DeleteTask(ctx, tk.ID); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if got, err := m.GetTaskByID(ctx, tk.ID); !errors.As(err, &notFound) || got != nil {
		t.Errorf("GetTaskByID after delete = %v, %v", got, err)
	}
}

func TestSearchAndFilterByStatus(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	a := mustAdd(t, m, "Write Report", "", "High")
	mustAdd(t, m, "Buy milk", "", "Low")
	if _, err := m.AddTask(ctx, "Call bank", "about the REPORT fee", "", "Medium"); err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if err := m.MarkTaskCompleted(ctx, a.ID); err != nil {
		t.Fatalf("MarkTaskCompleted() error = %v", err)
	}

	found, err := m.SearchTasks(ctx, "report")
	if err != nil {
		t.Fatalf("SearchTasks() error = %v", err)
	}
	if len(found) != 2 {
		t.Errorf("SearchTasks() length = %d, want 2", len(found))
	}

	done, err := m.FilterTasksByStatus(ctx, "Completed")
	if err != nil {
		t.Fatalf("FilterTasksByStatus() error = %v", err)
	}
	if len(done) != 1 || done[0].ID != a.ID {
		t.Errorf("FilterTasksByStatus() = %v", done)
	}

	var badStatus taskerrors.InvalidStatusError
	got, err := m.FilterTasksByStatus(ctx, "Done")
	if !errors.As(err, &badStatus) {
		t.Errorf("FilterTasksByStatus(Done) error = %v, want InvalidStatusError", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("FilterTasksByStatus(Done) = %v, want empty slice", got)
	}
}

func TestFilterTasks(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	high := mustAdd(t, m, "A", "2024-05-01", "High")
	mustAdd(t, m, "B", "2024-05-01", "Low")
	mustAdd(t, m, "C", "", "High")
	if err := m.MarkTaskCompleted(ctx, high.ID); err != nil {
		t.Fatalf("MarkTaskCompleted() error = %v", err)
	}

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"no criteria", Filter{}, 3},
		{"priority", Filter{Priority: "High"}, 2},
		{"due date", Filter{DueDate: "2024-05-01"}, 2},
		{"priority and due date", Filter{Priority: "High", DueDate: "2024-05-01"}, 1},
		{"status and priority", Filter{Status: "Pending", Priority: "High"}, 1},
		{"status only", Filter{Status: "Completed"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.FilterTasks(ctx, tt.filter)
			if err != nil {
				t.Fatalf("FilterTasks() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("FilterTasks() length = %d, want %d", len(got), tt.want)
			}
		})
	}

	var badPrio taskerrors.InvalidPriorityError
	if _, err := m.FilterTasks(ctx, Filter{Priority: "Top"}); !errors.As(err, &badPrio) {
		t.Errorf("FilterTasks(Top) error = %v, want InvalidPriorityError", err)
	}
	var badDate taskerrors.InvalidDateError
	if _, err := m.FilterTasks(ctx, Filter{DueDate: "tomorrow"}); !errors.As(err, &badDate) {
		t.Errorf("FilterTasks(tomorrow) error = %v, want InvalidDateError", err)
	}
}

func TestReadsReturnEmptyOnStorageFailure(t *testing.T) {
	ctx := context.Background()
	m := New(brokenCollection{})

	all, err := m.GetAllTasks(ctx)
	if !errors.Is(err, errBroken) || all == nil || len(all) != 0 {
		t.Errorf("GetAllTasks() = %v, %v", all, err)
	}
	found, err := m.SearchTasks(ctx, "x")
	if !errors.Is(err, errBroken) || found == nil || len(found) != 0 {
		t.Errorf("SearchTasks() = %v, %v", found, err)
	}
	if err = m.DeleteTask(ctx, "x"); !errors.Is(err, errBroken) {
		t.Errorf("DeleteTask() error = %v", err)
	}
	if err = m.UpdateTask(ctx, "x", task.Fields{task.KeyTitle: "y"}); !errors.Is(err, errBroken) {
		t.Errorf("UpdateTask() error = %v", err)
	}
	if _, err = m.GetTaskStatistics(ctx); !errors.Is(err, errBroken) {
		t.Errorf("GetTaskStatistics() error = %v", err)
	}
}

func TestResolveID(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t)

	for _, id := range []string{"abc-111", "abd-222", "xyz-333"} {
		if err := store.Create(ctx, task.New(id, task.WithID(id)).Record()); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	tests := []struct {
		prefix  string
		want    string
		wantErr any
	}{
		{"abc", "abc-111", nil},
		{"xyz-333", "xyz-333", nil},
		{"ab", "", &taskerrors.AmbiguousIDError{}},
		{"q", "", &taskerrors.TaskNotFoundError{}},
		{"", "", &taskerrors.TaskNotFoundError{}},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			got, err := m.ResolveID(ctx, tt.prefix)
			if tt.wantErr != nil {
				if !errors.As(err, tt.wantErr) {
					t.Errorf("ResolveID(%q) error = %v, want %T", tt.prefix, err, tt.wantErr)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ResolveID(%q) = %q, %v; want %q", tt.prefix, got, err, tt.want)
			}
		})
	}
}

func TestValidateDate(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2024-01-15", true},
		{"2024-02-29", true},
		{"2023-02-29", false},
		{"2024-13-40", false},
		{"2024-1-5", false},
		{"2024-01-15T00:00:00", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ValidateDate(tt.in); got != tt.want {
				t.Errorf("ValidateDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
