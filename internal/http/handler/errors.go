package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jaekwang-park/todo-client/internal/apiclient"
	"github.com/jaekwang-park/todo-client/internal/model"
	"github.com/jaekwang-park/todo-client/internal/service"
)

// ErrorInfo is the status and code an error is reported with.
type ErrorInfo struct {
	Status int
	Code   string
}

// errorTable is checked in order; the first sentinel matched wins.
var errorTable = []struct {
	err  error
	info ErrorInfo
}{
	{service.ErrInvalidInput, ErrorInfo{http.StatusBadRequest, "INVALID_INPUT"}},
	{model.ErrInvalidQuery, ErrorInfo{http.StatusBadRequest, "INVALID_INPUT"}},
	{context.DeadlineExceeded, ErrorInfo{http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT"}},
	{apiclient.ErrTransport, ErrorInfo{http.StatusBadGateway, "UPSTREAM_UNAVAILABLE"}},
	{apiclient.ErrMalformedResponse, ErrorInfo{http.StatusBadGateway, "BAD_UPSTREAM_RESPONSE"}},
}

var upstreamCodes = map[int]string{
	http.StatusBadRequest:          "BAD_REQUEST",
	http.StatusUnauthorized:        "UNAUTHORIZED",
	http.StatusForbidden:           "FORBIDDEN",
	http.StatusNotFound:            "NOT_FOUND",
	http.StatusConflict:            "CONFLICT",
	http.StatusUnprocessableEntity: "VALIDATION_ERROR",
	http.StatusTooManyRequests:     "RATE_LIMITED",
}

// LookupError maps err to the status and code it is reported with. An
// upstream API error keeps the backend's status.
func LookupError(err error) (ErrorInfo, bool) {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return e.info, true
		}
	}

	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.Code
		if code == "" {
			code = upstreamCodes[apiErr.StatusCode]
		}
		if code == "" {
			code = "UPSTREAM_ERROR"
		}
		status := apiErr.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		return ErrorInfo{Status: status, Code: code}, true
	}
	return ErrorInfo{}, false
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	info, ok := LookupError(err)
	if !ok {
		slog.ErrorContext(r.Context(), "unhandled error", "error", err, "path", r.URL.Path)
		WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	message := err.Error()
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		message = apiErr.Message
	}
	if info.Status >= http.StatusInternalServerError {
		slog.WarnContext(r.Context(), "upstream failure", "error", err, "status", info.Status)
	}
	WriteError(w, info.Status, info.Code, message)
}
