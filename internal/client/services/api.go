// Package services holds one thin service per console screen. Each service
// is a configuration of endpoint, sealed fields and list behaviour over the
// shared transport, list store and upload preparer.
package services

import (
	"context"
	"io"
	"net/url"

	"github.com/dmitrijs2005/arkadconsole/internal/client/client"
)

// API is the subset of *client.HTTPClient the services use.
type API interface {
	Key() []byte
	Do(ctx context.Context, method, path string, query url.Values, contentType string, body io.Reader) (*client.Reply, error)
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
	GetEncrypted(ctx context.Context, path string, query url.Values, out any) error
	SendJSON(ctx context.Context, method, path string, v any) (*client.Reply, error)
	SendEncrypted(ctx context.Context, method, path string, v any) (*client.Reply, error)
	SendMultipart(ctx context.Context, method, path, contentType string, body io.Reader) (*client.Reply, error)
	Delete(ctx context.Context, path string) (*client.Reply, error)
}

var _ API = (*client.HTTPClient)(nil)

func itemPath(base, id string) string {
	return base + "/" + url.PathEscape(id)
}
