package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jaekwang-park/todo-client/internal/model"
)

const (
	// DefaultPageSize is the largest page the todo API serves.
	DefaultPageSize = 200
	DefaultMaxPages = 100
)

var ErrAggregationFailed = errors.New("aggregation failed")

// Lister fetches a single page of todos.
type Lister interface {
	List(ctx context.Context, q model.Query) (model.TodoPage, error)
}

type AggregatorConfig struct {
	PageSize int
	// MaxPages bounds the number of fetches per aggregation. It protects the
	// client from a backend that keeps reporting has_more or cycles cursors.
	MaxPages int
	Logger   *slog.Logger
}

// Aggregator collects every page of a query by following next_cursor.
type Aggregator struct {
	lister   Lister
	pageSize int
	maxPages int
	logger   *slog.Logger
}

type Result struct {
	Items     []model.Todo
	Pages     int
	Truncated bool
}

func NewAggregator(lister Lister, cfg AggregatorConfig) *Aggregator {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Aggregator{
		lister:   lister,
		pageSize: cfg.PageSize,
		maxPages: cfg.MaxPages,
		logger:   cfg.Logger,
	}
}

// All fetches pages sequentially, starting from base's filters without paging,
// and concatenates their items in page order. Any failed page aborts the whole
// aggregation and nothing collected so far is returned.
func (a *Aggregator) All(ctx context.Context, base model.Query) (Result, error) {
	base.Limit = a.pageSize
	base.Paging = nil

	var items []model.Todo
	q := base
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("%w: page %d: %w", ErrAggregationFailed, page, err)
		}

		resp, err := a.lister.List(ctx, q)
		if err != nil {
			return Result{}, fmt.Errorf("%w: page %d: %w", ErrAggregationFailed, page, err)
		}
		items = append(items, resp.Items...)

		if !resp.HasMore || resp.NextCursor == "" {
			return Result{Items: items, Pages: page}, nil
		}
		if page >= a.maxPages {
			a.logger.WarnContext(ctx, "aggregation stopped at page limit",
				"max_pages", a.maxPages,
				"items", len(items),
				"next_cursor", resp.NextCursor,
			)
			return Result{Items: items, Pages: page, Truncated: true}, nil
		}
		q = base.WithCursor(resp.NextCursor)
	}
}
