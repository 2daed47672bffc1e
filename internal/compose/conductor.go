package compose

import (
	"context"

	"github.com/vk/layergraphgo/internal/backend"
	"github.com/vk/layergraphgo/internal/compiler"
	"github.com/vk/layergraphgo/internal/ctxlog"
	"github.com/vk/layergraphgo/internal/layer"
	"github.com/vk/layergraphgo/internal/version"
)

// Conductor pairs one channel with one backend and owns the channel's
// live graph. Edits mark it dirty; Flush recompiles until clean.
//
// It follows the host's single-threaded edit loop: no locking, just a
// compiling flag so an Invalidate fired as a side effect of the in-flight
// compile folds into one trailing recompile instead of recursing.
type Conductor struct {
	channel *layer.Channel
	graph   backend.Graph

	dirty      bool
	compiling  bool
	dirtyAgain bool

	live *compiler.MaterializedGraph
}

func NewConductor(c *layer.Channel, g backend.Graph) *Conductor {
	return &Conductor{channel: c, graph: g, dirty: true}
}

// Invalidate marks the channel for recompilation. Safe to call from
// property-write side effects during a compile.
func (cd *Conductor) Invalidate() {
	if cd.compiling {
		cd.dirtyAgain = true
		return
	}
	cd.dirty = true
}

// Live returns the channel's current materialized graph, nil before the
// first successful Flush.
func (cd *Conductor) Live() *compiler.MaterializedGraph {
	return cd.live
}

// Flush runs compiles until the channel is clean. A compile failure
// leaves the previous live graph in place and the channel dirty, so the
// next Flush retries. Degraded-layer errors do not fail the flush; they
// are returned alongside the updated graph for reporting.
func (cd *Conductor) Flush(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	var degraded error
	for cd.dirty {
		cd.dirty = false

		if err := DetectLinkCycle(cd.channel); err != nil {
			cd.dirty = true
			return err
		}

		b, degErr := ComposeChannel(cd.channel)
		stale := cd.staleScopes()
		if len(stale) > 0 {
			logger.Debug("Conductor: version gate tripped, resetting stale layers.",
				"channel", cd.channel.Name, "layers", len(stale))
		}

		cd.compiling = true
		mg, err := compiler.Compile(ctx, b, cd.graph, cd.live, false, stale...)
		cd.compiling = false

		if err != nil {
			cd.dirty = true
			return err
		}

		cd.live = mg
		cd.stampVersions()
		degraded = degErr

		if cd.dirtyAgain {
			cd.dirtyAgain = false
			cd.dirty = true
		}
	}
	return degraded
}

// staleScopes returns the builder scope of every layer last compiled
// under an older schema version. Only those layers lose their live
// property snapshot on the next compile; tuning on up-to-date siblings
// survives the rebuild. A stale folder covers its whole subtree through
// its own scope.
func (cd *Conductor) staleScopes() []string {
	var scopes []string
	cd.channel.Walk(func(l *layer.Layer) bool {
		if version.Stale(l) {
			scopes = append(scopes, builderName(l))
		}
		return true
	})
	return scopes
}

// stampVersions records the current schema version on every layer after
// a successful compile.
func (cd *Conductor) stampVersions() {
	cd.channel.Walk(func(l *layer.Layer) bool {
		l.RecordedVersion = version.Current(l.Type)
		return true
	})
}
