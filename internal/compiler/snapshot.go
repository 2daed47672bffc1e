package compiler

import (
	"context"
	"slices"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/layergraphgo/internal/backend"
	"github.com/vk/layergraphgo/internal/ctxlog"
)

// propertySnapshot holds live property values keyed by node key, then by
// property name. The universe is exactly the set of properties the previous
// spec declared; properties the spec never touched are the backend's own
// business and are not carried across rebuilds.
type propertySnapshot map[string]map[string]cty.Value

// takeSnapshot reads the current live value of every declared property of
// the previous graph. A read failure drops that single entry: a value we
// cannot read is a value we must not restore.
func takeSnapshot(ctx context.Context, g backend.Graph, prev *MaterializedGraph) propertySnapshot {
	logger := ctxlog.FromContext(ctx)
	snap := make(propertySnapshot)

	for key, names := range prev.propNames {
		h, ok := prev.handles[key]
		if !ok {
			continue
		}
		for _, name := range names {
			v, err := g.GetProperty(ctx, h, name)
			if err != nil {
				logger.Warn("Compile: snapshot read failed, entry skipped.",
					"node", key, "property", name, "error", err)
				continue
			}
			if snap[key] == nil {
				snap[key] = make(map[string]cty.Value)
			}
			snap[key][name] = v
		}
	}
	return snap
}

// dropScopes removes every entry whose node key passes through one of the
// named scopes and returns the number of values dropped. Matching is by
// path segment rather than full prefix, so a scope matches wherever it sits
// in the hierarchy. Equal scope names at different depths over-drop, which
// errs in the safe direction: a dropped entry means a declared value, never
// a stale one.
func (s propertySnapshot) dropScopes(scopes []string) int {
	if len(scopes) == 0 {
		return 0
	}
	dropped := 0
	for key, values := range s {
		for _, seg := range strings.Split(key, ".") {
			if !slices.Contains(scopes, seg) {
				continue
			}
			dropped += len(values)
			delete(s, key)
			break
		}
	}
	return dropped
}

// restore reapplies snapshotted values onto the new graph.
//
// Eligibility is conservative. A value is restored only when the identifier
// still exists with the same node type, the new spec declares the property
// at all, and the new spec's declared value equals the previous spec's
// declared value. If the spec changed the value this cycle, the spec wins
// and the stale snapshot entry is dropped.
func (m *materializer) restore(ctx context.Context, prev *MaterializedGraph, snap propertySnapshot) {
	logger := ctxlog.FromContext(ctx)
	restored := 0

	for key, values := range snap {
		h, ok := m.out.handles[key]
		if !ok {
			continue
		}
		if m.out.nodeTypes[key] != prev.nodeTypes[key] {
			continue
		}
		newDecl := m.out.declared[key]
		prevDecl := prev.declared[key]

		for name, liveVal := range values {
			newVal, declaredNow := newDecl[name]
			if !declaredNow {
				continue
			}
			prevVal, declaredBefore := prevDecl[name]
			if !declaredBefore || !newVal.RawEquals(prevVal) {
				// The spec redeclared this property this cycle.
				continue
			}
			if err := m.g.SetProperty(ctx, h, name, liveVal); err != nil {
				logger.Warn("Compile: snapshot restore failed.",
					"node", key, "property", name, "error", err)
				continue
			}
			restored++
		}
	}
	logger.Debug("Compile: snapshot restored.", "restored", restored)
}
