package spec

import (
	"github.com/zclconf/go-cty/cty"
)

// Property is a single named value on a node. Properties keep their
// declaration order because some backends apply creation-order-sensitive
// defaults, and because snapshots are keyed by (identifier, property name).
type Property struct {
	Name  string
	Value cty.Value
}

// NodeSpec describes one node to be created in the backend: an identifier
// unique within its declaring scope, an opaque backend type tag, and an
// ordered property bag.
type NodeSpec struct {
	Identifier string
	TypeTag    string
	Properties []Property
}

// Property returns the declared value for name, if any.
func (n *NodeSpec) Property(name string) (cty.Value, bool) {
	for _, p := range n.Properties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return cty.NilVal, false
}

// EdgeSpec describes a directed connection between two named sockets. The
// endpoints are identifiers declared in the same builder, or the reserved
// START/END boundary names.
type EdgeSpec struct {
	Source       string
	SourceSocket string
	Target       string
	TargetSocket string
}

// Embedded pairs a nested builder with the identifier it is addressed by in
// the parent scope.
type Embedded struct {
	Identifier string
	Builder    *Builder
}
