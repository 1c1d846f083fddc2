package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jaekwang-park/todo-client/internal/model"
	"github.com/jaekwang-park/todo-client/internal/view"
)

const browseHelp = `commands:
  n               next page
  p               previous page
  f               first page
  r               reload
  t ID            toggle completed
  d ID            delete
  u ID            restore
  filter K=V ...  replace filters (completed, priority, overdue, include_deleted, sort_due)
  clear           remove all filters
  h               help
  q               quit`

// cmdBrowse drives a list controller from line commands on stdin.
func (c *cli) cmdBrowse(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("browse", flag.ContinueOnError)
	fs.SetOutput(c.out)
	params := queryFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	q, err := model.ParseQuery(params(), c.listLimit)
	if err != nil {
		return err
	}
	offset := 0
	if p, ok := q.Paging.(model.OffsetPaging); ok {
		offset = p.Offset
	}

	lc := view.NewListController(c.todos, view.Options{
		Limit:   q.Limit,
		Offset:  offset,
		Filters: q.Filters,
		Logger:  c.logger,
	})
	defer lc.Close()

	c.report(lc.Load(ctx))
	c.render(lc.State())

	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(c.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "q", "quit", "exit":
			return nil
		case "h", "help", "?":
			fmt.Fprintln(c.out, browseHelp)
			continue
		case "n", "next":
			err = lc.NextPage(ctx)
		case "p", "prev":
			err = lc.PrevPage(ctx)
		case "f", "first":
			err = lc.FirstPage(ctx)
		case "r", "reload":
			err = lc.Load(ctx)
		case "t", "toggle", "d", "delete", "u", "restore":
			id, idErr := browseID(fields)
			if idErr != nil {
				fmt.Fprintln(c.out, idErr)
				continue
			}
			switch fields[0] {
			case "t", "toggle":
				err = lc.Toggle(ctx, id)
			case "d", "delete":
				err = lc.Delete(ctx, id)
			default:
				err = lc.Restore(ctx, id)
			}
		case "filter":
			f, fErr := parseFilters(fields[1:])
			if fErr != nil {
				fmt.Fprintln(c.out, fErr)
				continue
			}
			err = lc.SetFilters(ctx, f)
		case "clear":
			err = lc.SetFilters(ctx, model.Filters{})
		default:
			fmt.Fprintf(c.out, "unknown command %q, h for help\n", fields[0])
			continue
		}

		c.report(err)
		c.render(lc.State())
	}
}

// report prints navigation refusals; request failures are shown by render.
func (c *cli) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, view.ErrNoNextPage):
		fmt.Fprintln(c.out, "already on the last page")
	case errors.Is(err, view.ErrNoPrevPage):
		fmt.Fprintln(c.out, "already on the first page")
	case errors.Is(err, view.ErrCursorBackward):
		fmt.Fprintln(c.out, "cannot go back from a cursor page, use f for the first page")
	case errors.Is(err, view.ErrNotInView):
		fmt.Fprintln(c.out, "that todo is not on this page")
	}
}

func (c *cli) render(s view.State) {
	fmt.Fprintln(c.out)
	printTodos(c.out, s.Items, time.Now())

	position := fmt.Sprintf("offset %d", s.Offset)
	if s.Cursor != "" {
		position = "cursor " + s.Cursor
	}
	more := ""
	if s.HasMore {
		more = ", more available"
	}
	fmt.Fprintf(c.out, "\n%d of %d, %s, limit %d%s\n", len(s.Items), s.Total, position, s.Limit, more)
	if s.Err != "" {
		fmt.Fprintf(c.out, "error: %s\n", s.Err)
	}
}

func browseID(fields []string) (int64, error) {
	if len(fields) < 2 {
		return 0, fmt.Errorf("usage: %s ID", fields[0])
	}
	id, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid todo id %q", fields[1])
	}
	return id, nil
}

// parseFilters reads K=V pairs in the API's parameter names.
func parseFilters(pairs []string) (model.Filters, error) {
	v := url.Values{}
	for _, p := range pairs {
		k, val, ok := strings.Cut(p, "=")
		if !ok {
			return model.Filters{}, fmt.Errorf("filters must be K=V, got %q", p)
		}
		switch k {
		case "completed", "priority", "overdue", "include_deleted", "sort_due":
			v.Set(k, val)
		default:
			return model.Filters{}, fmt.Errorf("unknown filter %q", k)
		}
	}
	q, err := model.ParseQuery(v, 1)
	if err != nil {
		return model.Filters{}, err
	}
	return q.Filters, nil
}
