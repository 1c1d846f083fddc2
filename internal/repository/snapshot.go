package repository

import (
	"context"

	"github.com/jaekwang-park/todo-client/internal/model"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 200
)

type SnapshotRepository interface {
	Record(ctx context.Context, s model.Summary) error
	List(ctx context.Context, limit int) ([]model.Snapshot, error)
}

// ClampHistoryLimit maps a requested history size into [1, MaxHistoryLimit].
func ClampHistoryLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}
