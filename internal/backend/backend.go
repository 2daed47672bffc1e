// Package backend defines the narrow capability surface the compiler needs
// from a host graph runtime: typed node creation/destruction, named property
// access, and directed edges between named sockets. The compiler depends only
// on this interface, never on a concrete runtime, which is what makes the
// whole materialization path testable against an in-memory double.
package backend

import (
	"context"

	"github.com/zclconf/go-cty/cty"
)

// Handle is an opaque reference to a live node owned by a backend. Handles
// are only meaningful to the backend that issued them.
type Handle interface {
	// String returns a backend-specific debug representation.
	String() string
}

// Graph is the mutation capability of a host graph runtime. All methods are
// synchronous; a backend that talks to a remote service blocks until the
// mutation is acknowledged or fails.
//
// The compiler is the sole writer of a Graph. Implementations do not need to
// support concurrent mutation.
type Graph interface {
	CreateNode(ctx context.Context, typeTag string) (Handle, error)
	DestroyNode(ctx context.Context, h Handle) error

	GetProperty(ctx context.Context, h Handle, name string) (cty.Value, error)
	SetProperty(ctx context.Context, h Handle, name string, value cty.Value) error

	CreateEdge(ctx context.Context, src Handle, srcSocket string, dst Handle, dstSocket string) error
	RemoveEdge(ctx context.Context, src Handle, srcSocket string, dst Handle, dstSocket string) error
}
