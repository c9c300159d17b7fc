package filestore

import (
	"bytes"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abatilo/taskman/internal/storage/document"
	"github.com/abatilo/taskman/internal/task"
)

const frontmatterDelimiter = "---"

// taskFrontmatter is the YAML-serializable portion of a task.
type taskFrontmatter struct {
	ID        string  `yaml:"task_id"`
	Title     string  `yaml:"title"`
	DueDate   *string `yaml:"due_date,omitempty"`
	Priority  string  `yaml:"priority"`
	Status    string  `yaml:"status"`
	CreatedAt string  `yaml:"created_at,omitempty"`
	UpdatedAt string  `yaml:"updated_at,omitempty"`
}

// ParseMarkdown parses a markdown file with YAML frontmatter into a document.
func ParseMarkdown(content []byte) (document.Document, error) {
	lines := strings.Split(string(content), "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[0]) != frontmatterDelimiter {
		return document.Document{}, &parseError{"missing YAML frontmatter"}
	}

	// Find closing delimiter
	var frontmatterEnd int
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontmatterDelimiter {
			frontmatterEnd = i
			break
		}
	}
	if frontmatterEnd == 0 {
		return document.Document{}, &parseError{"unclosed YAML frontmatter"}
	}

	yamlContent := strings.Join(lines[1:frontmatterEnd], "\n")
	var fm taskFrontmatter
	if err := yaml.Unmarshal([]byte(yamlContent), &fm); err != nil {
		return document.Document{}, &parseError{"invalid YAML: " + err.Error()}
	}

	// Missing or unreadable timestamps load as zero and are filled in by
	// task.FromRecord, so a hand-edited file is never dropped.
	createdAt := parseOptionalTimestamp(fm.CreatedAt)
	updatedAt := parseOptionalTimestamp(fm.UpdatedAt)

	// Everything after the frontmatter is the description, minus the blank
	// separator line and final newline SerializeMarkdown adds.
	var description string
	if frontmatterEnd+1 < len(lines) {
		body := strings.Join(lines[frontmatterEnd+1:], "\n")
		body = strings.TrimPrefix(body, "\n")
		description = strings.TrimSuffix(body, "\n")
	}

	return document.Document{
		ID:          fm.ID,
		Title:       fm.Title,
		Description: description,
		DueDate:     fm.DueDate,
		Priority:    fm.Priority,
		Status:      fm.Status,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

// SerializeMarkdown converts a document to markdown with YAML frontmatter.
func SerializeMarkdown(d document.Document) ([]byte, error) {
	fm := taskFrontmatter{
		ID:        d.ID,
		Title:     d.Title,
		DueDate:   d.DueDate,
		Priority:  d.Priority,
		Status:    d.Status,
	}
	if !d.CreatedAt.IsZero() {
		fm.CreatedAt = task.FormatTimestamp(d.CreatedAt)
	}
	if !d.UpdatedAt.IsZero() {
		fm.UpdatedAt = task.FormatTimestamp(d.UpdatedAt)
	}

	var buf bytes.Buffer
	buf.WriteString(frontmatterDelimiter + "\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	buf.WriteString(frontmatterDelimiter + "\n")

	if d.Description != "" {
		buf.WriteString("\n")
		buf.WriteString(d.Description)
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

func parseOptionalTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := task.ParseTimestamp(s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseError represents a parsing error.
type parseError struct {
	msg string
}

func (e *parseError) Error() string {
	return e.msg
}
