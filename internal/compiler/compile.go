package compiler

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/layergraphgo/internal/backend"
	"github.com/vk/layergraphgo/internal/ctxlog"
	"github.com/vk/layergraphgo/internal/ident"
	"github.com/vk/layergraphgo/internal/spec"
)

// Compile materializes a builder against a backend.
//
// prev is the graph from the last successful compile of the same scope, or
// nil. When prev is given and forceProperties is false, live property values
// are snapshotted first and restored onto the new graph, so user edits made
// through the backend survive the rebuild. forceProperties discards that
// path entirely: the new graph carries exactly the spec-declared values.
//
// forceScopes names builder scopes whose snapshot entries are discarded
// even on an otherwise preserving compile; nodes under those scopes come
// out carrying their declared values while the rest of the graph keeps its
// live tuning.
//
// The swap is atomic: on any failure every staged node is destroyed, prev is
// left untouched, and the error is returned. prev is destroyed only after
// the new graph is fully linked and restored.
func Compile(ctx context.Context, b *spec.Builder, g backend.Graph, prev *MaterializedGraph, forceProperties bool, forceScopes ...string) (*MaterializedGraph, error) {
	logger := ctxlog.FromContext(ctx)

	if b == nil {
		return nil, fmt.Errorf("compiler: nil builder")
	}
	if !ident.ValidName(b.Name()) {
		return nil, fmt.Errorf("compiler: builder name %q is not a valid scope name", b.Name())
	}
	scope := ident.Root().Child(b.Name())
	if prev != nil && !prev.scope.Equal(scope) {
		return nil, fmt.Errorf("compiler: previous graph belongs to scope %q, not %q", prev.scope, scope)
	}

	var snap propertySnapshot
	if prev != nil && !forceProperties {
		snap = takeSnapshot(ctx, g, prev)
		if dropped := snap.dropScopes(forceScopes); dropped > 0 {
			logger.Debug("Compile: forced scopes dropped from snapshot.",
				"scope", scope.String(), "dropped", dropped)
		}
		logger.Debug("Compile: snapshot captured.", "scope", scope.String(), "entries", len(snap))
	}

	m := newMaterializer(g, scope)
	if err := m.materializeScope(ctx, scope, b); err != nil {
		m.rollback(ctx)
		return nil, err
	}

	if snap != nil {
		m.restore(ctx, prev, snap)
	}

	if prev != nil {
		destroy(ctx, g, prev)
		logger.Debug("Compile: previous graph destroyed.", "scope", scope.String())
	}

	m.out.fingerprint = fingerprint(m.out)
	logger.Debug("Compile: materialization complete.",
		"scope", scope.String(),
		"nodes", m.out.NodeCount(),
		"edges", m.out.EdgeCount(),
		"fingerprint", m.out.fingerprint)
	return m.out, nil
}

// materializer accumulates one staged materialization. Everything it creates
// is tracked in staging order so a failure can be rolled back completely.
type materializer struct {
	g      backend.Graph
	out    *MaterializedGraph
	staged []backend.Handle
}

func newMaterializer(g backend.Graph, scope ident.ID) *materializer {
	return &materializer{
		g: g,
		out: &MaterializedGraph{
			scope:     scope,
			handles:   make(map[string]backend.Handle),
			nodeTypes: make(map[string]string),
			propNames: make(map[string][]string),
			declared:  make(map[string]map[string]cty.Value),
		},
	}
}

// materializeScope creates this scope's declared nodes, recurses into every
// embedded builder under a namespaced child scope, then resolves and creates
// the scope's edges. Declaration order is preserved throughout; backends may
// apply creation-order-sensitive defaults and snapshots depend on stable
// ordering.
func (m *materializer) materializeScope(ctx context.Context, scope ident.ID, b *spec.Builder) error {
	for _, node := range b.Nodes() {
		key := scope.Child(node.Identifier).String()
		if err := m.createNode(ctx, key, node.TypeTag, node.Properties); err != nil {
			return err
		}
	}

	for _, emb := range b.Embeds() {
		if err := m.materializeScope(ctx, scope.Child(emb.Identifier), emb.Builder); err != nil {
			return err
		}
	}

	for _, e := range b.Edges() {
		if err := m.createEdge(ctx, scope, b, e); err != nil {
			return err
		}
	}
	return nil
}

func (m *materializer) createNode(ctx context.Context, key, typeTag string, props []spec.Property) error {
	h, err := m.g.CreateNode(ctx, typeTag)
	if err != nil {
		return fmt.Errorf("compiler: create %q (%s): %w", key, typeTag, err)
	}
	m.track(key, typeTag, h)

	for _, p := range props {
		if err := m.g.SetProperty(ctx, h, p.Name, p.Value); err != nil {
			return fmt.Errorf("compiler: set %q.%s: %w", key, p.Name, err)
		}
		m.out.propNames[key] = append(m.out.propNames[key], p.Name)
		decl := m.out.declared[key]
		if decl == nil {
			decl = make(map[string]cty.Value)
			m.out.declared[key] = decl
		}
		decl[p.Name] = p.Value
	}
	return nil
}

func (m *materializer) createEdge(ctx context.Context, scope ident.ID, b *spec.Builder, e spec.EdgeSpec) error {
	src, err := m.resolveEndpoint(ctx, scope, b, e.Source, e.SourceSocket, true)
	if err != nil {
		return err
	}
	dst, err := m.resolveEndpoint(ctx, scope, b, e.Target, e.TargetSocket, false)
	if err != nil {
		return err
	}
	if err := m.g.CreateEdge(ctx, src.handle, src.socket, dst.handle, dst.socket); err != nil {
		return fmt.Errorf("compiler: edge %s.%s -> %s.%s: %w", src.key, src.socket, dst.key, dst.socket, err)
	}
	m.out.edges = append(m.out.edges, edgeRecord{
		srcKey: src.key, srcSocket: src.socket,
		dstKey: dst.key, dstSocket: dst.socket,
	})
	return nil
}

// track registers a freshly created node in staging order.
func (m *materializer) track(key, typeTag string, h backend.Handle) {
	m.staged = append(m.staged, h)
	m.out.creationOrder = append(m.out.creationOrder, key)
	m.out.handles[key] = h
	m.out.nodeTypes[key] = typeTag
}

// rollback destroys every staged node in reverse creation order. Destroy
// errors during rollback are logged and otherwise ignored; the backend is
// already in a failing state and the priority is clearing the staging.
func (m *materializer) rollback(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Compile: rolling back staged materialization.", "staged", len(m.staged))
	for i := len(m.staged) - 1; i >= 0; i-- {
		if err := m.g.DestroyNode(ctx, m.staged[i]); err != nil {
			logger.Warn("Compile: rollback destroy failed.", "error", err)
		}
	}
	m.staged = nil
}

// destroy tears down a fully materialized graph, reverse creation order.
func destroy(ctx context.Context, g backend.Graph, mg *MaterializedGraph) {
	logger := ctxlog.FromContext(ctx)
	for i := len(mg.creationOrder) - 1; i >= 0; i-- {
		key := mg.creationOrder[i]
		if err := g.DestroyNode(ctx, mg.handles[key]); err != nil {
			logger.Warn("Compile: destroy of previous node failed.", "node", key, "error", err)
		}
	}
}
