// Package restapi implements the outbound gateways over the Sweet Shop REST API.
package restapi

import (
	"context"
	"net/url"
)

// API is the verb surface of the HTTP client adapter.
type API interface {
	Get(ctx context.Context, path string, query url.Values, out interface{}) error
	Post(ctx context.Context, path string, body, out interface{}) error
	Put(ctx context.Context, path string, body, out interface{}) error
	Delete(ctx context.Context, path string, out interface{}) error
}
