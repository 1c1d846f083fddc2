package service

import (
	"errors"

	"github.com/jaekwang-park/todo-client/internal/apiclient"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = apiclient.ErrNotFound
)
