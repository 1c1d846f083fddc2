package model

import "time"

// Snapshot is a recorded dashboard Summary.
type Snapshot struct {
	ID         int64     `json:"id"`
	RecordedAt time.Time `json:"recorded_at"`
	Summary
}
