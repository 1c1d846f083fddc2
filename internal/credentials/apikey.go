package credentials

import (
	"context"
	"net/http"
)

const APIKeyHeader = "X-API-Key"

// APIKey sends a static key in the X-API-Key header. An empty key sends nothing,
// matching a backend with authentication disabled.
type APIKey string

func (k APIKey) Apply(ctx context.Context, req *http.Request) error {
	if k != "" {
		req.Header.Set(APIKeyHeader, string(k))
	}
	return nil
}

// None leaves requests unauthenticated.
type None struct{}

func (None) Apply(ctx context.Context, req *http.Request) error {
	return nil
}
