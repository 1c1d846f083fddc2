package model

import "time"

// Summary holds the dashboard counts derived from an aggregated collection.
type Summary struct {
	Total      int       `json:"total"`
	Completed  int       `json:"completed"`
	Deleted    int       `json:"deleted"`
	Overdue    int       `json:"overdue"`
	Pages      int       `json:"pages"`
	Truncated  bool      `json:"truncated"`
	ComputedAt time.Time `json:"computed_at"`
}
