package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/jaekwang-park/todo-client/internal/model"
)

const timeLayout = "2006-01-02 15:04"

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage:")
	fmt.Fprintln(w, "  todoctl list      [--limit N] [--offset N | --cursor C] [--completed B] [--priority P] [--overdue B] [--include-deleted B] [--sort-due B] [--json]")
	fmt.Fprintln(w, "  todoctl get       ID [--json]")
	fmt.Fprintln(w, "  todoctl create    --title T [--description D] [--priority P] [--due 2025-03-01T09:00]")
	fmt.Fprintln(w, "  todoctl update    ID [--title T] [--description D] [--completed B] [--priority P] [--due TS]")
	fmt.Fprintln(w, "  todoctl toggle    ID")
	fmt.Fprintln(w, "  todoctl delete    ID")
	fmt.Fprintln(w, "  todoctl restore   ID")
	fmt.Fprintln(w, "  todoctl dashboard [--json]")
	fmt.Fprintln(w, "  todoctl browse    [list filters]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "configuration is read from the environment (API_BASE_URL, AUTH_MODE, TODO_API_KEY, ...)")
}

func status(t model.Todo, now time.Time) string {
	switch {
	case t.IsDeleted():
		return "deleted"
	case t.Completed:
		return "done"
	case t.IsOverdue(now):
		return "overdue"
	default:
		return "open"
	}
}

func printTodos(w io.Writer, items []model.Todo, now time.Time) {
	if len(items) == 0 {
		fmt.Fprintln(w, "no todos")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tPRIORITY\tDUE\tTITLE")
	for _, t := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", t.ID, status(t, now), priority(t.Priority), formatTime(t.DueAt), t.Title)
	}
	tw.Flush()
}

func printPageFooter(w io.Writer, shown, total int, nextCursor string) {
	fmt.Fprintf(w, "\nshowing %d of %d\n", shown, total)
	if nextCursor != "" {
		fmt.Fprintf(w, "next: --cursor %s\n", nextCursor)
	}
}

func printTodo(w io.Writer, t model.Todo) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "id:\t%d\n", t.ID)
	fmt.Fprintf(tw, "title:\t%s\n", t.Title)
	if t.Description != "" {
		fmt.Fprintf(tw, "description:\t%s\n", t.Description)
	}
	fmt.Fprintf(tw, "status:\t%s\n", status(t, time.Now()))
	fmt.Fprintf(tw, "priority:\t%s\n", priority(t.Priority))
	fmt.Fprintf(tw, "due:\t%s\n", formatTime(t.DueAt))
	if t.DeletedAt != nil {
		fmt.Fprintf(tw, "deleted:\t%s\n", formatTime(t.DeletedAt))
	}
	tw.Flush()
}

func printSummary(w io.Writer, s model.Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "total:\t%d\n", s.Total)
	fmt.Fprintf(tw, "completed:\t%d\n", s.Completed)
	fmt.Fprintf(tw, "deleted:\t%d\n", s.Deleted)
	fmt.Fprintf(tw, "overdue:\t%d\n", s.Overdue)
	fmt.Fprintf(tw, "pages:\t%d\n", s.Pages)
	fmt.Fprintf(tw, "computed at:\t%s\n", s.ComputedAt.Format(time.RFC3339))
	tw.Flush()
	if s.Truncated {
		fmt.Fprintln(w, "warning: page limit reached, counts cover a partial collection")
	}
}

func priority(p *model.Priority) string {
	if p == nil {
		return "-"
	}
	return string(*p)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(timeLayout)
}
