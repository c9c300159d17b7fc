// Package filestore keeps tasks as markdown files with YAML frontmatter, one
// file per task.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	taskerrors "github.com/abatilo/taskman/internal/errors"
	"github.com/abatilo/taskman/internal/storage/document"
	"github.com/abatilo/taskman/internal/task"
)

const fileExt = ".md"

// Store handles task file operations.
type Store struct {
	basePath string
}

// Open creates the base directory if needed and returns a Store rooted there.
func Open(basePath string) (*Store, error) {
	s := &Store{basePath: basePath}
	//nolint:gosec // G301: 0755 is appropriate for a user task directory
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create task directory: %w", err)
	}
	return s, nil
}

// BasePath returns the base path of the store.
func (s *Store) BasePath() string {
	return s.basePath
}

// taskPath returns the full path for a task file.
func (s *Store) taskPath(id string) string {
	return filepath.Join(s.basePath, id+fileExt)
}

func (s *Store) exists(id string) bool {
	_, err := os.Stat(s.taskPath(id))
	return err == nil
}

func (s *Store) save(d document.Document) error {
	content, err := SerializeMarkdown(d)
	if err != nil {
		return err
	}
	//nolint:gosec // G306: 0644 is appropriate for user-readable task files
	return os.WriteFile(s.taskPath(d.ID), content, 0o644)
}

func (s *Store) load(id string) (document.Document, error) {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return document.Document{}, taskerrors.TaskNotFoundError{ID: id}
	}
	content, err := os.ReadFile(s.taskPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return document.Document{}, taskerrors.TaskNotFoundError{ID: id}
	}
	if err != nil {
		return document.Document{}, err
	}
	return ParseMarkdown(content)
}

// list returns every readable document, newest first.
func (s *Store) list(keep func(document.Document) bool) ([]document.Document, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, err
	}

	var docs []document.Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		d, err := s.load(strings.TrimSuffix(entry.Name(), fileExt))
		if err != nil {
			continue // Skip malformed files
		}
		if keep == nil || keep(d) {
			docs = append(docs, d)
		}
	}
	document.SortNewestFirst(docs)
	return docs, nil
}

// Create writes a new task file.
func (s *Store) Create(_ context.Context, r task.Record) error {
	d := document.FromRecord(r)
	if d.ID == "" || strings.ContainsAny(d.ID, `/\`) {
		return fmt.Errorf("invalid task id %q", d.ID)
	}
	if s.exists(d.ID) {
		return taskerrors.AlreadyExistsError{ID: d.ID}
	}
	d.UpdatedAt = time.Now().UTC()
	return s.save(d)
}

// All returns every task, newest first.
func (s *Store) All(_ context.Context) ([]task.Record, error) {
	docs, err := s.list(nil)
	if err != nil {
		return nil, err
	}
	return document.Records(docs), nil
}

// Get reads a single task.
func (s *Store) Get(_ context.Context, id string) (task.Record, error) {
	d, err := s.load(id)
	if err != nil {
		return nil, err
	}
	return d.Record(), nil
}

// Update applies fields to a stored task and refreshes updated_at.
func (s *Store) Update(_ context.Context, id string, fields task.Fields) error {
	d, err := s.load(id)
	if err != nil {
		return err
	}
	if !d.Apply(fields) {
		return taskerrors.NoChangesError{ID: id}
	}
	d.UpdatedAt = time.Now().UTC()
	return s.save(d)
}

// Delete removes a task file.
func (s *Store) Delete(_ context.Context, id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return taskerrors.TaskNotFoundError{ID: id}
	}
	err := os.Remove(s.taskPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return taskerrors.TaskNotFoundError{ID: id}
	}
	return err
}

// Search returns tasks whose title or description contains term, ignoring case.
func (s *Store) Search(_ context.Context, term string) ([]task.Record, error) {
	docs, err := s.list(func(d document.Document) bool { return d.Matches(term) })
	if err != nil {
		return nil, err
	}
	return document.Records(docs), nil
}

// FilterByStatus returns tasks with exactly the given status.
func (s *Store) FilterByStatus(_ context.Context, status string) ([]task.Record, error) {
	docs, err := s.list(func(d document.Document) bool { return d.Status == status })
	if err != nil {
		return nil, err
	}
	return document.Records(docs), nil
}

// Count returns the number of stored tasks.
func (s *Store) Count(_ context.Context) (int, error) {
	docs, err := s.list(nil)
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// Close is a no-op; files are written synchronously.
func (s *Store) Close(_ context.Context) error {
	return nil
}
