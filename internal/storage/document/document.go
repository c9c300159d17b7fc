// Package document holds the persisted shape of a task shared by the storage
// backends.
package document

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/abatilo/taskman/internal/task"
)

// Document is one stored task.
type Document struct {
	ID          string    `bson:"task_id"     gorm:"column:task_id;primaryKey;size:36"`
	Title       string    `bson:"title"       gorm:"column:title;not null"`
	Description string    `bson:"description" gorm:"column:description"`
	DueDate     *string   `bson:"due_date"    gorm:"column:due_date;size:10"`
	Priority    string    `bson:"priority"    gorm:"column:priority;size:16"`
	Status      string    `bson:"status"      gorm:"column:status;size:16;index"`
	CreatedAt   time.Time `bson:"created_at"  gorm:"column:created_at;index"`
	UpdatedAt   time.Time `bson:"updated_at"  gorm:"column:updated_at"`
}

// TableName returns the table name for the gorm model.
func (Document) TableName() string {
	return "tasks"
}

// FromRecord converts a task record into a document. A missing created_at is
// filled with now.
func FromRecord(r task.Record) Document {
	d := Document{}
	d.ID, _ = r.String(task.KeyID)
	d.Title, _ = r.String(task.KeyTitle)
	d.Description, _ = r.String(task.KeyDescription)
	d.Priority, _ = r.String(task.KeyPriority)
	d.Status, _ = r.String(task.KeyStatus)
	if due, ok := r.String(task.KeyDueDate); ok && due != "" {
		d.DueDate = &due
	}
	if createdAt, ok := r.Time(task.KeyCreatedAt); ok {
		d.CreatedAt = createdAt
	} else {
		d.CreatedAt = time.Now().UTC()
	}
	if updatedAt, ok := r.Time(task.KeyUpdatedAt); ok {
		d.UpdatedAt = updatedAt
	}
	return d
}

// Record converts the document back to a task record. A zero creation time
// is left out so task.FromRecord treats it as missing.
func (d Document) Record() task.Record {
	r := task.Record{
		task.KeyID:          d.ID,
		task.KeyTitle:       d.Title,
		task.KeyDescription: d.Description,
		task.KeyDueDate:     nil,
		task.KeyPriority:    d.Priority,
		task.KeyStatus:      d.Status,
	}
	if !d.CreatedAt.IsZero() {
		r[task.KeyCreatedAt] = task.FormatTimestamp(d.CreatedAt)
	}
	if d.DueDate != nil {
		r[task.KeyDueDate] = *d.DueDate
	}
	if !d.UpdatedAt.IsZero() {
		r[task.KeyUpdatedAt] = task.FormatTimestamp(d.UpdatedAt)
	}
	return r
}

// Apply copies the recognised fields onto the document and reports whether
// anything was applied. An empty due date clears it.
func (d *Document) Apply(fields task.Fields) bool {
	applied := false
	for key, value := range fields {
		switch key {
		case task.KeyTitle:
			d.Title = value
		case task.KeyDescription:
			d.Description = value
		case task.KeyDueDate:
			if value == "" {
				d.DueDate = nil
			} else {
				due := value
				d.DueDate = &due
			}
		case task.KeyPriority:
			d.Priority = value
		case task.KeyStatus:
			d.Status = value
		default:
			continue
		}
		applied = true
	}
	return applied
}

// Matches reports whether term occurs in the title or description, ignoring case.
func (d Document) Matches(term string) bool {
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(d.Title), term) ||
		strings.Contains(strings.ToLower(d.Description), term)
}

// SortNewestFirst orders documents by creation time, most recent first.
func SortNewestFirst(docs []Document) {
	slices.SortStableFunc(docs, func(a, b Document) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
}

// Records converts a document slice to records.
func Records(docs []Document) []task.Record {
	records := make([]task.Record, 0, len(docs))
	for _, d := range docs {
		records = append(records, d.Record())
	}
	return records
}

// UpdatableKeys lists the record keys Apply understands, in a stable order.
func UpdatableKeys() []string {
	return []string{task.KeyTitle, task.KeyDescription, task.KeyDueDate, task.KeyPriority, task.KeyStatus}
}
