package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jaekwang-park/todo-client/internal/model"
)

// SnapshotRecorder persists computed summaries.
type SnapshotRecorder interface {
	Record(ctx context.Context, s model.Summary) error
}

type Config struct {
	Aggregator *Aggregator
	Recorder   SnapshotRecorder
	Now        func() time.Time
	Logger     *slog.Logger
}

// Dashboard computes summary counts over every todo, soft-deleted included.
type Dashboard struct {
	agg      *Aggregator
	recorder SnapshotRecorder
	now      func() time.Time
	logger   *slog.Logger
}

func New(cfg Config) *Dashboard {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Dashboard{
		agg:      cfg.Aggregator,
		recorder: cfg.Recorder,
		now:      cfg.Now,
		logger:   cfg.Logger,
	}
}

func (d *Dashboard) Summary(ctx context.Context) (model.Summary, error) {
	res, err := d.agg.All(ctx, model.Query{
		Filters: model.Filters{IncludeDeleted: model.Ptr(true)},
	})
	if err != nil {
		return model.Summary{}, fmt.Errorf("failed to compute dashboard: %w", err)
	}

	s := Reduce(res.Items, d.now())
	s.Pages = res.Pages
	s.Truncated = res.Truncated

	if d.recorder != nil {
		if err := d.recorder.Record(ctx, s); err != nil {
			d.logger.ErrorContext(ctx, "failed to record dashboard snapshot", "error", err)
		}
	}
	return s, nil
}
