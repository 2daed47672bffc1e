package spec

import (
	"fmt"

	"github.com/vk/layergraphgo/internal/ident"
)

// Builder is a named scope collecting node declarations, edges, and embedded
// sub-builders. All three lists preserve declaration order; compilation
// depends on that order being deterministic.
type Builder struct {
	name string

	nodes     []*NodeSpec
	nodeIndex map[string]*NodeSpec

	embeds     []Embedded
	embedIndex map[string]*Builder

	edges []EdgeSpec
}

// NewBuilder creates an empty builder scope with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:       name,
		nodeIndex:  make(map[string]*NodeSpec),
		embedIndex: make(map[string]*Builder),
	}
}

// Name returns the scope name this builder was created with.
func (b *Builder) Name() string {
	return b.name
}

// AddNode declares a node in this scope. The identifier must be valid, not a
// reserved boundary name, and not already declared as a node or an embed.
func (b *Builder) AddNode(id string, typeTag string, props ...Property) error {
	if err := b.checkDeclarable(id); err != nil {
		return err
	}
	node := &NodeSpec{Identifier: id, TypeTag: typeTag, Properties: props}
	b.nodes = append(b.nodes, node)
	b.nodeIndex[id] = node
	return nil
}

// Embed registers a nested builder as a pseudo-node of this scope. It is
// addressed like a node but exposes only its START/END boundary sockets.
func (b *Builder) Embed(id string, nested *Builder) error {
	if nested == nil {
		return fmt.Errorf("embed %q: nested builder must not be nil", id)
	}
	if err := b.checkDeclarable(id); err != nil {
		return err
	}
	b.embeds = append(b.embeds, Embedded{Identifier: id, Builder: nested})
	b.embedIndex[id] = nested
	return nil
}

// Link declares a directed edge between two sockets. Endpoints may reference
// identifiers that are declared later; full resolution happens at compile
// time, where a still-unresolved endpoint aborts the whole materialization.
// Edges out of END or into START are rejected immediately: END is an exit
// point and START an entry point.
func (b *Builder) Link(src, srcSocket, dst, dstSocket string) error {
	if src == ident.End {
		return fmt.Errorf("%w: cannot link from %s in scope %q", ErrUnresolvedLinkEndpoint, ident.End, b.name)
	}
	if dst == ident.Start {
		return fmt.Errorf("%w: cannot link into %s in scope %q", ErrUnresolvedLinkEndpoint, ident.Start, b.name)
	}
	b.edges = append(b.edges, EdgeSpec{
		Source:       src,
		SourceSocket: srcSocket,
		Target:       dst,
		TargetSocket: dstSocket,
	})
	return nil
}

// MustLink is Link for statically-known wiring inside factories, where a
// failure is a programming error.
func (b *Builder) MustLink(src, srcSocket, dst, dstSocket string) {
	if err := b.Link(src, srcSocket, dst, dstSocket); err != nil {
		panic(err)
	}
}

// Nodes returns the node declarations in declaration order.
func (b *Builder) Nodes() []*NodeSpec {
	return b.nodes
}

// Edges returns the declared edges in declaration order.
func (b *Builder) Edges() []EdgeSpec {
	return b.edges
}

// Embeds returns the embedded builders in declaration order.
func (b *Builder) Embeds() []Embedded {
	return b.embeds
}

// Node returns the NodeSpec declared under id, if any.
func (b *Builder) Node(id string) (*NodeSpec, bool) {
	n, ok := b.nodeIndex[id]
	return n, ok
}

// Embedded returns the nested builder declared under id, if any.
func (b *Builder) Embedded(id string) (*Builder, bool) {
	e, ok := b.embedIndex[id]
	return e, ok
}

// Declared reports whether id names a node or an embedded builder in this
// scope. Boundary names are addressable but never declared.
func (b *Builder) Declared(id string) bool {
	if _, ok := b.nodeIndex[id]; ok {
		return true
	}
	_, ok := b.embedIndex[id]
	return ok
}

// Resolvable reports whether id can serve as an edge endpoint in this scope:
// a declared node, an embedded builder, or a reserved boundary name.
func (b *Builder) Resolvable(id string) bool {
	return ident.Reserved(id) || b.Declared(id)
}

func (b *Builder) checkDeclarable(id string) error {
	if !ident.ValidName(id) {
		return fmt.Errorf("invalid identifier %q in scope %q", id, b.name)
	}
	if ident.Reserved(id) {
		return fmt.Errorf("%w: %q is reserved in scope %q", ErrDuplicateIdentifier, id, b.name)
	}
	if b.Declared(id) {
		return fmt.Errorf("%w: %q in scope %q", ErrDuplicateIdentifier, id, b.name)
	}
	return nil
}
