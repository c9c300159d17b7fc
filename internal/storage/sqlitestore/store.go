// Package sqlitestore persists tasks in a SQLite database through GORM.
package sqlitestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	taskerrors "github.com/abatilo/taskman/internal/errors"
	"github.com/abatilo/taskman/internal/storage/document"
	"github.com/abatilo/taskman/internal/task"
)

// Store is a SQLite-backed task collection.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the database at path and migrates the
// tasks table. Use ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		//nolint:gosec // G301: 0755 is appropriate for a user data directory
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		sqlDB, dbErr := db.DB()
		if dbErr != nil {
			return nil, dbErr
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err = db.AutoMigrate(&document.Document{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Store{db: db}, nil
}

// Create inserts a new task row.
func (s *Store) Create(ctx context.Context, r task.Record) error {
	d := document.FromRecord(r)

	var existing int64
	if err := s.db.WithContext(ctx).Model(&document.Document{}).
		Where("task_id = ?", d.ID).Count(&existing).Error; err != nil {
		return fmt.Errorf("failed to check task: %w", err)
	}
	if existing > 0 {
		return taskerrors.AlreadyExistsError{ID: d.ID}
	}

	if err := s.db.WithContext(ctx).Create(&d).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// All returns every task, newest first.
func (s *Store) All(ctx context.Context) ([]task.Record, error) {
	return s.find(ctx, s.db)
}

// Get returns the task with the exact id.
func (s *Store) Get(ctx context.Context, id string) (task.Record, error) {
	var d document.Document
	if err := s.db.WithContext(ctx).First(&d, "task_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, taskerrors.TaskNotFoundError{ID: id}
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return d.Record(), nil
}

// Update applies fields to a stored task; GORM refreshes updated_at.
func (s *Store) Update(ctx context.Context, id string, fields task.Fields) error {
	updates := map[string]any{}
	for _, key := range document.UpdatableKeys() {
		value, ok := fields[key]
		if !ok {
			continue
		}
		if key == task.KeyDueDate && value == "" {
			updates[key] = nil
			continue
		}
		updates[key] = value
	}
	if len(updates) == 0 {
		return taskerrors.NoChangesError{ID: id}
	}
	updates[task.KeyUpdatedAt] = time.Now().UTC()

	result := s.db.WithContext(ctx).Model(&document.Document{}).Where("task_id = ?", id).Updates(updates)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.RowsAffected == 0 {
		return taskerrors.TaskNotFoundError{ID: id}
	}
	return nil
}

// Delete removes the task with the exact id.
func (s *Store) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&document.Document{}, "task_id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected == 0 {
		return taskerrors.TaskNotFoundError{ID: id}
	}
	return nil
}

// Search matches term case-insensitively against title and description.
// SQLite's LOWER only folds ASCII, so matching happens after the query.
func (s *Store) Search(ctx context.Context, term string) ([]task.Record, error) {
	docs, err := s.findDocs(ctx, s.db)
	if err != nil {
		return nil, err
	}
	docs = slices.DeleteFunc(docs, func(d document.Document) bool { return !d.Matches(term) })
	return document.Records(docs), nil
}

// FilterByStatus returns tasks with exactly the given status.
func (s *Store) FilterByStatus(ctx context.Context, status string) ([]task.Record, error) {
	return s.find(ctx, s.db.Where("status = ?", status))
}

// Count returns the number of stored tasks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&document.Document{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return int(n), nil
}

// Close releases the underlying connection pool.
func (s *Store) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) find(ctx context.Context, query *gorm.DB) ([]task.Record, error) {
	docs, err := s.findDocs(ctx, query)
	if err != nil {
		return nil, err
	}
	return document.Records(docs), nil
}

func (s *Store) findDocs(ctx context.Context, query *gorm.DB) ([]document.Document, error) {
	var docs []document.Document
	if err := query.WithContext(ctx).Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	return docs, nil
}
