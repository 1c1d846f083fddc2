package model

import (
	"encoding/json"
	"fmt"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type Todo struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	DueAt       *time.Time `json:"due_at"`
	Priority    *Priority  `json:"priority"`
	DeletedAt   *time.Time `json:"deleted_at"`
}

// IsDeleted reports whether the todo has been soft-deleted.
func (t Todo) IsDeleted() bool {
	return t.DeletedAt != nil
}

// IsOverdue reports whether the todo is past due at now. Completed and
// soft-deleted todos are never overdue.
func (t Todo) IsOverdue(now time.Time) bool {
	if t.DueAt == nil || t.Completed || t.IsDeleted() {
		return false
	}
	return t.DueAt.Before(now)
}

// UnmarshalJSON accepts both zoned and naive timestamps for due_at and
// deleted_at; naive values are read as UTC.
func (t *Todo) UnmarshalJSON(data []byte) error {
	type alias Todo
	aux := struct {
		*alias
		DueAt     *string `json:"due_at"`
		DeletedAt *string `json:"deleted_at"`
	}{alias: (*alias)(t)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if t.DueAt, err = parseOptionalTimestamp(aux.DueAt); err != nil {
		return fmt.Errorf("due_at: %w", err)
	}
	if t.DeletedAt, err = parseOptionalTimestamp(aux.DeletedAt); err != nil {
		return fmt.Errorf("deleted_at: %w", err)
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp as sent by the todo API.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

func parseOptionalTimestamp(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	ts, err := ParseTimestamp(*s)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

// TodoPage is one page of a list query as returned by the todo API.
type TodoPage struct {
	Items      []Todo `json:"items"`
	Total      int    `json:"total"`
	Limit      *int   `json:"limit,omitempty"`
	Offset     *int   `json:"offset,omitempty"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}
