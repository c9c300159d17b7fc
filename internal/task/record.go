package task

import (
	"errors"
	"fmt"
	"time"
)

// Record keys shared by every storage backend.
const (
	KeyID          = "task_id"
	KeyTitle       = "title"
	KeyDescription = "description"
	KeyDueDate     = "due_date"
	KeyPriority    = "priority"
	KeyStatus      = "status"
	KeyCreatedAt   = "created_at"
	KeyUpdatedAt   = "updated_at"
)

// TimestampLayout is a fixed-width ISO-8601 layout, so encoded timestamps
// compare lexicographically in chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// DateLayout is the format of due dates.
const DateLayout = "2006-01-02"

// Record is the storage-neutral representation of a task.
type Record map[string]any

// Fields is a partial update set keyed by record keys.
type Fields map[string]string

// Record converts the task to its storage representation.
func (t *Task) Record() Record {
	r := Record{
		KeyID:          t.ID,
		KeyTitle:       t.Title,
		KeyDescription: t.Description,
		KeyDueDate:     nil,
		KeyPriority:    string(t.Priority),
		KeyStatus:      string(t.Status),
		KeyCreatedAt:   FormatTimestamp(t.CreatedAt),
	}
	if t.DueDate != "" {
		r[KeyDueDate] = t.DueDate
	}
	return r
}

// FromRecord rebuilds a task from a stored record. Missing or malformed
// optional values fall back to their defaults, including created_at which
// falls back to the current time.
func FromRecord(r Record) *Task {
	title, _ := r.String(KeyTitle)
	description, _ := r.String(KeyDescription)
	dueDate, _ := r.String(KeyDueDate)
	priority, _ := r.String(KeyPriority)
	status, _ := r.String(KeyStatus)
	id, _ := r.String(KeyID)

	t := New(title,
		WithID(id),
		WithDescription(description),
		WithDueDate(dueDate),
		WithPriority(Priority(priority)),
		WithStatus(Status(status)),
	)
	if createdAt, ok := r.Time(KeyCreatedAt); ok {
		t.CreatedAt = createdAt
	}
	return t
}

// String returns the value under key as a string. Nil and missing values
// report false.
func (r Record) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	case *string:
		if val == nil {
			return "", false
		}
		return *val, true
	case time.Time:
		return FormatTimestamp(val), true
	default:
		return fmt.Sprint(val), true
	}
}

// Time returns the value under key as a time, parsing strings when needed.
func (r Record) Time(key string) (time.Time, bool) {
	switch val := r[key].(type) {
	case time.Time:
		return val.UTC(), true
	case *time.Time:
		if val == nil {
			return time.Time{}, false
		}
		return val.UTC(), true
	case string:
		t, err := ParseTimestamp(val)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	default:
		return time.Time{}, false
	}
}

// FormatTimestamp encodes t with TimestampLayout in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

var errUnrecognizedTime = errors.New("unrecognized time format")

// ParseTimestamp tries to parse a time string in common formats.
func ParseTimestamp(s string) (time.Time, error) {
	formats := []string{
		TimestampLayout,
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05", // naive timestamps are read as UTC
		DateLayout,
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errUnrecognizedTime
}
