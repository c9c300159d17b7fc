// Package mongostore persists tasks in a MongoDB collection.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	taskerrors "github.com/abatilo/taskman/internal/errors"
	"github.com/abatilo/taskman/internal/storage/document"
	"github.com/abatilo/taskman/internal/task"
)

// Options configures the connection.
type Options struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// Store is a MongoDB-backed task collection.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// Open connects, pings the server, and ensures a unique index on task_id.
func Open(ctx context.Context, opts Options) (*Store, error) {
	clientOpts := options.Client().ApplyURI(opts.URI)
	if opts.Timeout > 0 {
		clientOpts.SetTimeout(opts.Timeout)
		clientOpts.SetServerSelectionTimeout(opts.Timeout)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	coll := client.Database(opts.Database).Collection(opts.Collection)
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: task.KeyID, Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err = coll.Indexes().CreateOne(ctx, index); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create task_id index: %w", err)
	}

	return &Store{client: client, collection: coll}, nil
}

// Create inserts a new task document.
func (s *Store) Create(ctx context.Context, r task.Record) error {
	d := document.FromRecord(r)
	d.UpdatedAt = time.Now().UTC()
	if _, err := s.collection.InsertOne(ctx, d); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return taskerrors.AlreadyExistsError{ID: d.ID}
		}
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// All returns every task, newest first.
func (s *Store) All(ctx context.Context) ([]task.Record, error) {
	return s.find(ctx, bson.M{})
}

// Get returns the task with the exact id.
func (s *Store) Get(ctx context.Context, id string) (task.Record, error) {
	var d document.Document
	err := s.collection.FindOne(ctx, idFilter(id), options.FindOne().SetProjection(projection())).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, taskerrors.TaskNotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return d.Record(), nil
}

// Update sets the given fields and refreshes updated_at.
func (s *Store) Update(ctx context.Context, id string, fields task.Fields) error {
	update, ok := updateDocument(fields, time.Now().UTC())
	if !ok {
		return taskerrors.NoChangesError{ID: id}
	}
	result, err := s.collection.UpdateOne(ctx, idFilter(id), update)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.MatchedCount == 0 {
		return taskerrors.TaskNotFoundError{ID: id}
	}
	return nil
}

// Delete removes the task with the exact id.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.collection.DeleteOne(ctx, idFilter(id))
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.DeletedCount == 0 {
		return taskerrors.TaskNotFoundError{ID: id}
	}
	return nil
}

// Search matches term case-insensitively against title and description.
func (s *Store) Search(ctx context.Context, term string) ([]task.Record, error) {
	return s.find(ctx, searchFilter(term))
}

// FilterByStatus returns tasks with exactly the given status.
func (s *Store) FilterByStatus(ctx context.Context, status string) ([]task.Record, error) {
	return s.find(ctx, bson.M{task.KeyStatus: status})
}

// Count returns the number of stored tasks.
func (s *Store) Count(ctx context.Context) (int, error) {
	n, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return int(n), nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]task.Record, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: task.KeyCreatedAt, Value: -1}}).
		SetProjection(projection())

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []document.Document
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	return document.Records(docs), nil
}

func idFilter(id string) bson.M {
	return bson.M{task.KeyID: id}
}

func projection() bson.M {
	return bson.M{"_id": 0}
}

// searchFilter builds a case-insensitive substring match; the term is quoted
// so regex metacharacters match literally.
func searchFilter(term string) bson.M {
	pattern := regexp.QuoteMeta(term)
	return bson.M{
		"$or": bson.A{
			bson.M{task.KeyTitle: bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{task.KeyDescription: bson.M{"$regex": pattern, "$options": "i"}},
		},
	}
}

// updateDocument translates fields into a $set/$unset update. It reports false
// when none of the fields is updatable.
func updateDocument(fields task.Fields, now time.Time) (bson.M, bool) {
	set := bson.M{}
	unset := bson.M{}
	for _, key := range document.UpdatableKeys() {
		value, ok := fields[key]
		if !ok {
			continue
		}
		if key == task.KeyDueDate && value == "" {
			unset[key] = ""
			continue
		}
		set[key] = value
	}
	if len(set) == 0 && len(unset) == 0 {
		return nil, false
	}

	set[task.KeyUpdatedAt] = now
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update, true
}
