package compiler

import (
	"context"
	"fmt"

	"github.com/vk/layergraphgo/internal/backend"
	"github.com/vk/layergraphgo/internal/ident"
	"github.com/vk/layergraphgo/internal/spec"
)

// endpoint is a fully resolved edge end: a live handle, the concrete socket
// on it, and the handle-map key for bookkeeping.
type endpoint struct {
	key    string
	handle backend.Handle
	socket string
}

// resolveEndpoint maps an edge endpoint identifier to a live node.
//
// Four cases, checked innermost-first:
//   - START (source side): the scope's entry reroute for that socket,
//   - END (target side): the scope's exit reroute,
//   - an embedded builder: the child scope's END reroute when reading from
//     it, or its START reroute when feeding into it,
//   - a declared node: the handle created for it in this scope.
//
// Boundary reroutes are created lazily on first touch. Anything else is an
// unresolved endpoint, which aborts the compile.
func (m *materializer) resolveEndpoint(ctx context.Context, scope ident.ID, b *spec.Builder, id, socket string, isSource bool) (endpoint, error) {
	switch {
	case id == ident.Start:
		return m.boundaryEndpoint(ctx, scope, ident.Start, socket, backend.SocketOut)

	case id == ident.End:
		return m.boundaryEndpoint(ctx, scope, ident.End, socket, backend.SocketIn)

	default:
		if _, ok := b.Embedded(id); ok {
			child := scope.Child(id)
			if isSource {
				return m.boundaryEndpoint(ctx, child, ident.End, socket, backend.SocketOut)
			}
			return m.boundaryEndpoint(ctx, child, ident.Start, socket, backend.SocketIn)
		}

		key := scope.Child(id).String()
		h, ok := m.out.handles[key]
		if !ok {
			return endpoint{}, fmt.Errorf("%w: %q (socket %q) in scope %q",
				spec.ErrUnresolvedLinkEndpoint, id, socket, scope)
		}
		return endpoint{key: key, handle: h, socket: socket}, nil
	}
}

// boundaryEndpoint returns the reroute node standing in for a START/END
// boundary socket, creating it on first use. The same reroute serves edges
// inside the scope and parent edges addressing the embed, which is exactly
// what makes a nested graph's boundary a stable connection point.
func (m *materializer) boundaryEndpoint(ctx context.Context, scope ident.ID, boundary, socket, rerouteSocket string) (endpoint, error) {
	key := boundaryKey(scope, boundary, socket)
	if h, ok := m.out.handles[key]; ok {
		return endpoint{key: key, handle: h, socket: rerouteSocket}, nil
	}
	h, err := m.g.CreateNode(ctx, backend.TypeReroute)
	if err != nil {
		return endpoint{}, fmt.Errorf("compiler: create boundary %q: %w", key, err)
	}
	m.track(key, backend.TypeReroute, h)
	return endpoint{key: key, handle: h, socket: rerouteSocket}, nil
}
