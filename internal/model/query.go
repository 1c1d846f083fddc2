package model

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

var ErrInvalidQuery = errors.New("invalid query")

// Paging selects how a list query is positioned. It is either OffsetPaging
// or CursorPaging, never both.
type Paging interface {
	encode(v url.Values) error
}

type OffsetPaging struct {
	Offset int
}

func (p OffsetPaging) encode(v url.Values) error {
	if p.Offset < 0 {
		return fmt.Errorf("%w: offset must not be negative", ErrInvalidQuery)
	}
	v.Set("offset", strconv.Itoa(p.Offset))
	return nil
}

type CursorPaging struct {
	Cursor string
}

func (p CursorPaging) encode(v url.Values) error {
	if p.Cursor == "" {
		return fmt.Errorf("%w: cursor must not be empty", ErrInvalidQuery)
	}
	v.Set("cursor", p.Cursor)
	return nil
}

// Filters narrows a list query. Nil fields are not sent.
type Filters struct {
	Completed      *bool
	Priority       *Priority
	Overdue        *bool
	IncludeDeleted *bool
	SortDue        *bool
}

type Query struct {
	Limit  int
	Paging Paging
	Filters
}

// WithCursor returns a copy of q continuing from cursor. Any offset is dropped.
func (q Query) WithCursor(cursor string) Query {
	q.Paging = CursorPaging{Cursor: cursor}
	return q
}

// WithOffset returns a copy of q positioned at an absolute offset.
func (q Query) WithOffset(offset int) Query {
	q.Paging = OffsetPaging{Offset: offset}
	return q
}

// Values validates q and encodes it as list request parameters.
func (q Query) Values() (url.Values, error) {
	if q.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be a positive integer", ErrInvalidQuery)
	}

	v := url.Values{}
	v.Set("limit", strconv.Itoa(q.Limit))

	if q.Paging != nil {
		if err := q.Paging.encode(v); err != nil {
			return nil, err
		}
	}

	if q.Completed != nil {
		v.Set("completed", strconv.FormatBool(*q.Completed))
	}
	if q.Priority != nil {
		if !q.Priority.IsValid() {
			return nil, fmt.Errorf("%w: priority must be one of low, medium, high", ErrInvalidQuery)
		}
		v.Set("priority", string(*q.Priority))
	}
	if q.Overdue != nil {
		v.Set("overdue", strconv.FormatBool(*q.Overdue))
	}
	if q.IncludeDeleted != nil {
		v.Set("include_deleted", strconv.FormatBool(*q.IncludeDeleted))
	}
	if q.SortDue != nil {
		v.Set("sort_due", strconv.FormatBool(*q.SortDue))
	}

	return v, nil
}

// Ptr returns a pointer to v, for filling optional query and input fields.
func Ptr[T any](v T) *T {
	return &v
}

// ParseQuery reads list parameters in the todo API's own names, the inverse
// of Values. When both cursor and offset are given the cursor wins.
func ParseQuery(v url.Values, defaultLimit int) (Query, error) {
	q := Query{Limit: defaultLimit}

	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return Query{}, fmt.Errorf("%w: limit must be a positive integer", ErrInvalidQuery)
		}
		q.Limit = n
	}

	if c := v.Get("cursor"); c != "" {
		q.Paging = CursorPaging{Cursor: c}
	} else if s := v.Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return Query{}, fmt.Errorf("%w: offset must be a non-negative integer", ErrInvalidQuery)
		}
		q.Paging = OffsetPaging{Offset: n}
	}

	var err error
	if q.Completed, err = boolParam(v, "completed"); err != nil {
		return Query{}, err
	}
	if q.Overdue, err = boolParam(v, "overdue"); err != nil {
		return Query{}, err
	}
	if q.IncludeDeleted, err = boolParam(v, "include_deleted"); err != nil {
		return Query{}, err
	}
	if q.SortDue, err = boolParam(v, "sort_due"); err != nil {
		return Query{}, err
	}

	if s := v.Get("priority"); s != "" {
		p := Priority(s)
		if !p.IsValid() {
			return Query{}, fmt.Errorf("%w: priority must be one of low, medium, high", ErrInvalidQuery)
		}
		q.Priority = &p
	}

	return q, nil
}

func boolParam(v url.Values, key string) (*bool, error) {
	s := v.Get(key)
	if s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be true or false", ErrInvalidQuery, key)
	}
	return &b, nil
}
