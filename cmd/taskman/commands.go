package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abatilo/taskman/internal/manager"
	"github.com/abatilo/taskman/internal/report"
	"github.com/abatilo/taskman/internal/task"
)

// addCmd implements 'taskman add'.
func (a *app) addCmd() *cobra.Command {
	var description, due, priority string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a new task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.mgr.AddTask(cmd.Context(), args[0], description, due, priority)
			if err != nil {
				return err
			}
			a.printOutput(a.formatter.FormatTask(t))
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Task description")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&priority, "priority", "p", string(task.PriorityMedium), "Priority (Low, Medium, High)")
	return cmd
}

// listCmd implements 'taskman list'.
func (a *app) listCmd() *cobra.Command {
	var (
		filter  manager.Filter
		sortKey string
		reverse bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tasks, err := a.mgr.FilterTasks(cmd.Context(), filter)
			if err != nil {
				return err
			}
			a.printOutput(a.formatter.FormatTaskList(manager.SortTasks(tasks, manager.SortKey(sortKey), reverse)))
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.Status, "status", "", "Only tasks with this status (Pending, In Progress, Completed)")
	cmd.Flags().StringVar(&filter.Priority, "priority", "", "Only tasks with this priority (Low, Medium, High)")
	cmd.Flags().StringVar(&filter.DueDate, "due", "", "Only tasks due on this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&sortKey, "sort", string(manager.SortByCreatedAt), "Sort by created_at, priority, due_date or title")
	cmd.Flags().BoolVarP(&reverse, "reverse", "r", false, "Reverse the sort order")
	return cmd
}

// showCmd implements 'taskman show'.
func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show task details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.mgr.ResolveID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			t, err := a.mgr.GetTaskByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			a.printOutput(a.formatter.FormatTask(t))
			return nil
		},
	}
}

// updateCmd implements 'taskman update'. Only flags given on the command line
// are sent, so an explicit empty --due clears the due date.
func (a *app) updateCmd() *cobra.Command {
	var title, description, due, priority, status string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update task fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := task.Fields{}
			for flag, value := range map[string]string{
				"title":       title,
				"description": description,
				"due":         due,
				"priority":    priority,
				"status":      status,
			} {
				if cmd.Flags().Changed(flag) {
					fields[updateKeys[flag]] = value
				}
			}

			id, err := a.mgr.ResolveID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err = a.mgr.UpdateTask(cmd.Context(), id, fields); err != nil {
				return err
			}
			t, err := a.mgr.GetTaskByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			a.printOutput(a.formatter.FormatTask(t))
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVar(&due, "due", "", "New due date (YYYY-MM-DD, empty to clear)")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "New priority (Low, Medium, High)")
	cmd.Flags().StringVarP(&status, "status", "s", "", "New status (Pending, In Progress, Completed)")
	return cmd
}

//nolint:gochecknoglobals // flag name to record key lookup
var updateKeys = map[string]string{
	"title":       task.KeyTitle,
	"description": task.KeyDescription,
	"due":         task.KeyDueDate,
	"priority":    task.KeyPriority,
	"status":      task.KeyStatus,
}

// doneCmd implements 'taskman done'.
func (a *app) doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.mgr.ResolveID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err = a.mgr.MarkTaskCompleted(cmd.Context(), id); err != nil {
				return err
			}
			a.printOutput(a.formatter.FormatMessage(fmt.Sprintf("Completed task %s", task.ShortID(id))))
			return nil
		},
	}
}

// rmCmd implements 'taskman rm'.
func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.mgr.ResolveID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err = a.mgr.DeleteTask(cmd.Context(), id); err != nil {
				return err
			}
			a.printOutput(a.formatter.FormatMessage(fmt.Sprintf("Removed task %s", task.ShortID(id))))
			return nil
		},
	}
}

// searchCmd implements 'taskman search'.
func (a *app) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Search task titles and descriptions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := a.mgr.SearchTasks(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.printOutput(a.formatter.FormatTaskList(tasks))
			return nil
		},
	}
}

// statsCmd implements 'taskman stats'.
func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := a.mgr.GetTaskStatistics(cmd.Context())
			if err != nil {
				return err
			}
			a.printOutput(a.formatter.FormatStats(stats))
			return nil
		},
	}
}

// reportCmd implements 'taskman report'.
func (a *app) reportCmd() *cobra.Command {
	var sortKey string
	cmd := &cobra.Command{
		Use:   "report <file.pdf>",
		Short: "Write a PDF report of all tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := a.mgr.GetAllTasks(cmd.Context())
			if err != nil {
				return err
			}
			tasks = manager.SortTasks(tasks, manager.SortKey(sortKey), false)

			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("create report: %w", err)
			}
			err = report.Write(f, tasks, manager.ComputeStats(tasks), time.Now())
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			a.printOutput(a.formatter.FormatMessage(fmt.Sprintf("Wrote report for %d task(s) to %s", len(tasks), args[0])))
			return nil
		},
	}
	cmd.Flags().StringVar(&sortKey, "sort", string(manager.SortByCreatedAt), "Sort by created_at, priority, due_date or title")
	return cmd
}
