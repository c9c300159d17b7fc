// Package storage defines the persistence collaborator used by the task
// manager and opens the configured backend.
package storage

import (
	"context"

	"github.com/abatilo/taskman/internal/config"
	taskerrors "github.com/abatilo/taskman/internal/errors"
	"github.com/abatilo/taskman/internal/storage/filestore"
	"github.com/abatilo/taskman/internal/storage/mongostore"
	"github.com/abatilo/taskman/internal/storage/sqlitestore"
	"github.com/abatilo/taskman/internal/task"
)

// Collection is a task store. Implementations own created_at on insert and
// updated_at on every write, and return list results newest first.
type Collection interface {
	// Create inserts a record; a duplicate task_id yields AlreadyExistsError.
	Create(ctx context.Context, r task.Record) error
	All(ctx context.Context) ([]task.Record, error)
	// Get returns TaskNotFoundError when no record has the exact id.
	Get(ctx context.Context, id string) (task.Record, error)
	// Update returns TaskNotFoundError for an unknown id and NoChangesError
	// when fields holds nothing updatable.
	Update(ctx context.Context, id string, fields task.Fields) error
	Delete(ctx context.Context, id string) error
	// Search matches term as a case-insensitive substring of title or description.
	Search(ctx context.Context, term string) ([]task.Record, error)
	FilterByStatus(ctx context.Context, status string) ([]task.Record, error)
	Count(ctx context.Context) (int, error)
	Close(ctx context.Context) error
}

var (
	_ Collection = (*filestore.Store)(nil)
	_ Collection = (*mongostore.Store)(nil)
	_ Collection = (*sqlitestore.Store)(nil)
)

// Open connects to the backend named by cfg.Store.Backend.
func Open(ctx context.Context, cfg *config.Config) (Collection, error) {
	switch cfg.Store.Backend {
	case config.BackendMongo, "mongodb", "":
		return opened(mongostore.Open(ctx, mongostore.Options{
			URI:        cfg.MongoDB.URI,
			Database:   cfg.MongoDB.Database,
			Collection: cfg.MongoDB.Collection,
			Timeout:    cfg.MongoDB.Timeout,
		}))
	case config.BackendFile:
		return opened(filestore.Open(cfg.File.Path))
	case config.BackendSQLite:
		return opened(sqlitestore.Open(cfg.SQLite.Path))
	default:
		return nil, taskerrors.UnknownBackendError{Name: cfg.Store.Backend}
	}
}

// opened keeps a failed open from leaking a typed nil through the interface.
func opened[S Collection](s S, err error) (Collection, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
