// Package serverx abstracts the HTTP server that exposes the catalog API.
package serverx

import (
	"context"
)

// Server owns an application server of type T.
// Routes are registered through Setup before the server runs; Shutdown stops accepting
// connections and waits for in-flight requests until ctx expires.
type Server[T any] interface {
	Setup(ctx context.Context, setupFunc func(server T))
	RunSync()
	RunAsync()
	GetServer() T
	Shutdown(ctx context.Context) error
}
