package output

import (
	"github.com/abatilo/taskman/internal/manager"
	"github.com/abatilo/taskman/internal/task"
)

// Formatter defines the interface for output formatting.
type Formatter interface {
	FormatTask(t *task.Task) string
	FormatTaskList(tasks []*task.Task) string
	FormatStats(s manager.Stats) string
	FormatError(err error) string
	FormatMessage(msg string) string
}
