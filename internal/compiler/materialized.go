package compiler

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/layergraphgo/internal/backend"
	"github.com/vk/layergraphgo/internal/ident"
)

// MaterializedGraph records everything the compiler knows about one compiled
// scope: the live handle for every node it created, the property names and
// spec-declared values it applied, and the structural fingerprint. It is
// owned exclusively by the compiler; callers read from it but never mutate.
type MaterializedGraph struct {
	scope ident.ID

	// creationOrder holds node keys in the order their nodes were created.
	creationOrder []string
	handles       map[string]backend.Handle
	nodeTypes     map[string]string

	// propNames lists, per node key, the property names the spec declared.
	// This is the snapshot universe for the next recompile.
	propNames map[string][]string
	// declared holds the spec-declared value per (node key, property).
	declared map[string]map[string]cty.Value

	edges       []edgeRecord
	fingerprint string
}

// edgeRecord is a resolved, created edge, kept for fingerprinting and counts.
type edgeRecord struct {
	srcKey, srcSocket string
	dstKey, dstSocket string
}

// Scope returns the root scope this graph was compiled under.
func (m *MaterializedGraph) Scope() ident.ID {
	return m.scope
}

// Fingerprint returns the structural shape signature of the graph.
func (m *MaterializedGraph) Fingerprint() string {
	return m.fingerprint
}

// NodeCount returns the number of live nodes, boundary reroutes included.
func (m *MaterializedGraph) NodeCount() int {
	return len(m.creationOrder)
}

// EdgeCount returns the number of live edges.
func (m *MaterializedGraph) EdgeCount() int {
	return len(m.edges)
}

// Handle resolves a declared identifier within a sub-scope of this graph.
// The path is the chain of embed identifiers followed by the node's local
// name; an empty path is invalid.
func (m *MaterializedGraph) Handle(path ...string) (backend.Handle, bool) {
	if len(path) == 0 {
		return nil, false
	}
	id := m.scope
	for _, seg := range path {
		id = id.Child(seg)
	}
	h, ok := m.handles[id.String()]
	return h, ok
}

// Boundary resolves a START/END reroute of the root scope or of an embedded
// sub-scope addressed by the embed path.
func (m *MaterializedGraph) Boundary(boundary, socket string, path ...string) (backend.Handle, bool) {
	id := m.scope
	for _, seg := range path {
		id = id.Child(seg)
	}
	h, ok := m.handles[boundaryKey(id, boundary, socket)]
	return h, ok
}

// boundaryKey builds the handle-map key for a boundary reroute. The bracket
// syntax cannot collide with declared identifiers, which are plain dotted
// paths.
func boundaryKey(scope ident.ID, boundary, socket string) string {
	return fmt.Sprintf("%s.%s[%s]", scope.String(), boundary, socket)
}
