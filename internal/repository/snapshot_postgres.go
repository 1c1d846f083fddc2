package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jaekwang-park/todo-client/internal/model"
)

type PostgresSnapshotRepository struct {
	db *sql.DB
}

func NewPostgresSnapshot(db *sql.DB) *PostgresSnapshotRepository {
	return &PostgresSnapshotRepository{db: db}
}

func (r *PostgresSnapshotRepository) Record(ctx context.Context, s model.Summary) error {
	query := `
		INSERT INTO dashboard_snapshots (total, completed, deleted, overdue, pages, truncated, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		s.Total, s.Completed, s.Deleted, s.Overdue, s.Pages, s.Truncated, s.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record snapshot: %w", err)
	}
	return nil
}

// List returns the most recent snapshots, newest first.
func (r *PostgresSnapshotRepository) List(ctx context.Context, limit int) ([]model.Snapshot, error) {
	query := `
		SELECT id, total, completed, deleted, overdue, pages, truncated, computed_at, recorded_at
		FROM dashboard_snapshots
		ORDER BY computed_at DESC, id DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, ClampHistoryLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []model.Snapshot{}
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}

	return snapshots, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scannable) (model.Snapshot, error) {
	var s model.Snapshot
	err := row.Scan(
		&s.ID, &s.Total, &s.Completed, &s.Deleted, &s.Overdue,
		&s.Pages, &s.Truncated, &s.ComputedAt, &s.RecordedAt,
	)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to scan snapshot: %w", err)
	}
	return s, nil
}

// ensure compile-time interface compliance
var _ SnapshotRepository = (*PostgresSnapshotRepository)(nil)
