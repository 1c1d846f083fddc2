package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jaekwang-park/todo-client/internal/model"
	"github.com/jaekwang-park/todo-client/internal/service"
)

var errUnknownCommand = errors.New("unknown command")

type todoClient interface {
	List(ctx context.Context, q model.Query) (model.TodoPage, error)
	Get(ctx context.Context, id int64) (model.Todo, error)
	Create(ctx context.Context, input service.CreateTodoInput) (model.Todo, error)
	Update(ctx context.Context, id int64, input service.UpdateTodoInput) (model.Todo, error)
	SetCompleted(ctx context.Context, id int64, completed bool) (model.Todo, error)
	Delete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) (model.Todo, error)
}

type summarizer interface {
	Summary(ctx context.Context) (model.Summary, error)
}

type cli struct {
	todos     todoClient
	dash      summarizer
	in        io.Reader
	out       io.Writer
	listLimit int
	logger    *slog.Logger
}

func (c *cli) run(ctx context.Context, name string, args []string) error {
	switch name {
	case "list":
		return c.cmdList(ctx, args)
	case "get":
		return c.cmdGet(ctx, args)
	case "create":
		return c.cmdCreate(ctx, args)
	case "update":
		return c.cmdUpdate(ctx, args)
	case "toggle":
		return c.cmdToggle(ctx, args)
	case "delete":
		return c.cmdDelete(ctx, args)
	case "restore":
		return c.cmdRestore(ctx, args)
	case "dashboard":
		return c.cmdDashboard(ctx, args)
	case "browse":
		return c.cmdBrowse(ctx, args)
	default:
		return fmt.Errorf("%w: %s", errUnknownCommand, name)
	}
}

// queryFlags registers the list filters and returns them as API parameters.
func queryFlags(fs *flag.FlagSet) func() url.Values {
	names := map[string]string{
		"limit":           "page size",
		"offset":          "start offset",
		"cursor":          "continue from a next_cursor",
		"completed":       "filter by completion (true|false)",
		"priority":        "filter by priority (low|medium|high)",
		"overdue":         "only overdue todos (true|false)",
		"include-deleted": "include soft-deleted todos (true|false)",
		"sort-due":        "sort by due date (true|false)",
	}
	values := map[string]*string{}
	for name, usage := range names {
		values[name] = fs.String(name, "", usage)
	}
	return func() url.Values {
		v := url.Values{}
		for name, s := range values {
			if *s != "" {
				v.Set(strings.ReplaceAll(name, "-", "_"), *s)
			}
		}
		return v
	}
}

func (c *cli) cmdList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(c.out)
	params := queryFlags(fs)
	asJSON := fs.Bool("json", false, "print raw JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	q, err := model.ParseQuery(params(), c.listLimit)
	if err != nil {
		return err
	}
	page, err := c.todos.List(ctx, q)
	if err != nil {
		return err
	}

	if *asJSON {
		return c.printJSON(page)
	}
	printTodos(c.out, page.Items, time.Now())
	printPageFooter(c.out, len(page.Items), page.Total, page.NextCursor)
	return nil
}

func (c *cli) cmdGet(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	fs.SetOutput(c.out)
	asJSON := fs.Bool("json", false, "print raw JSON")
	id, err := parseWithID(fs, args)
	if err != nil {
		return err
	}

	todo, err := c.todos.Get(ctx, id)
	if err != nil {
		return err
	}
	if *asJSON {
		return c.printJSON(todo)
	}
	printTodo(c.out, todo)
	return nil
}

func (c *cli) cmdCreate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(c.out)
	title := fs.String("title", "", "todo title (required)")
	description := fs.String("description", "", "description")
	priority := fs.String("priority", "", "low|medium|high")
	due := fs.String("due", "", "due date, e.g. 2025-03-01T09:00")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *title == "" {
		*title = strings.Join(fs.Args(), " ")
	}

	input := service.CreateTodoInput{Title: *title}
	set := setFlags(fs)
	if set["description"] {
		input.Description = description
	}
	if set["priority"] {
		input.Priority = model.Ptr(model.Priority(*priority))
	}
	if set["due"] {
		ts, err := model.ParseTimestamp(*due)
		if err != nil {
			return err
		}
		input.DueAt = &ts
	}

	todo, err := c.todos.Create(ctx, input)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "created todo %d\n", todo.ID)
	printTodo(c.out, todo)
	return nil
}

func (c *cli) cmdUpdate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	fs.SetOutput(c.out)
	title := fs.String("title", "", "new title")
	description := fs.String("description", "", "new description")
	completed := fs.String("completed", "", "true|false")
	priority := fs.String("priority", "", "low|medium|high")
	due := fs.String("due", "", "due date, e.g. 2025-03-01T09:00")
	id, err := parseWithID(fs, args)
	if err != nil {
		return err
	}

	// only flags given on the command line are sent
	var input service.UpdateTodoInput
	set := setFlags(fs)
	if len(set) == 0 {
		return fmt.Errorf("nothing to update")
	}
	if set["title"] {
		input.Title = title
	}
	if set["description"] {
		input.Description = description
	}
	if set["completed"] {
		b, err := strconv.ParseBool(*completed)
		if err != nil {
			return fmt.Errorf("completed must be true or false")
		}
		input.Completed = &b
	}
	if set["priority"] {
		input.Priority = model.Ptr(model.Priority(*priority))
	}
	if set["due"] {
		ts, err := model.ParseTimestamp(*due)
		if err != nil {
			return err
		}
		input.DueAt = &ts
	}

	todo, err := c.todos.Update(ctx, id, input)
	if err != nil {
		return err
	}
	printTodo(c.out, todo)
	return nil
}

func (c *cli) cmdToggle(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("toggle", flag.ContinueOnError)
	fs.SetOutput(c.out)
	id, err := parseWithID(fs, args)
	if err != nil {
		return err
	}

	current, err := c.todos.Get(ctx, id)
	if err != nil {
		return err
	}
	todo, err := c.todos.SetCompleted(ctx, id, !current.Completed)
	if err != nil {
		return err
	}
	printTodo(c.out, todo)
	return nil
}

func (c *cli) cmdDelete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(c.out)
	id, err := parseWithID(fs, args)
	if err != nil {
		return err
	}

	if err := c.todos.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "deleted todo %d\n", id)
	return nil
}

func (c *cli) cmdRestore(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	fs.SetOutput(c.out)
	id, err := parseWithID(fs, args)
	if err != nil {
		return err
	}

	todo, err := c.todos.Restore(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "restored todo %d\n", todo.ID)
	printTodo(c.out, todo)
	return nil
}

func (c *cli) cmdDashboard(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	fs.SetOutput(c.out)
	asJSON := fs.Bool("json", false, "print raw JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := c.dash.Summary(ctx)
	if err != nil {
		return err
	}
	if *asJSON {
		return c.printJSON(s)
	}
	printSummary(c.out, s)
	return nil
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseWithID accepts the id before or after the flags.
func parseWithID(fs *flag.FlagSet, args []string) (int64, error) {
	var raw string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		raw, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return 0, err
	}
	if raw == "" {
		raw = fs.Arg(0)
	}
	if raw == "" {
		return 0, fmt.Errorf("todo id is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid todo id %q", raw)
	}
	return id, nil
}

func setFlags(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}
