package compose

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/layergraphgo/internal/backend"
	"github.com/vk/layergraphgo/internal/ident"
	"github.com/vk/layergraphgo/internal/layer"
	"github.com/vk/layergraphgo/internal/spec"
)

// ComposeChannel builds the channel's combined builder from its layer
// stack. A layer whose type no factory handles degrades to a
// pass-through and its error is joined into the returned error; the
// builder is still valid and covers every sibling. Only an empty,
// unrecoverable channel returns a nil builder.
//
// Layers that something links to are hoisted into the channel's root
// scope, so every reference resolves to the same embed no matter how
// deeply the referencing layer is nested.
func ComposeChannel(c *layer.Channel) (*spec.Builder, error) {
	b := spec.NewBuilder(scopeName(c.Name))

	sh := &shared{channel: c, hoisted: make(map[uuid.UUID]bool)}
	c.Walk(func(l *layer.Layer) bool {
		if l.LinkTarget != nil {
			sh.hoisted[*l.LinkTarget] = true
		}
		return true
	})

	root := newStack(sh, b, nil, "")

	var errs []error
	// Hoist link owners first, in walk order, so the embeds exist before
	// any chain references them.
	c.Walk(func(l *layer.Layer) bool {
		if sh.hoisted[l.UID] {
			if _, err := root.ensure(l); err != nil {
				errs = append(errs, fmt.Errorf("layer %q: %w", l.Name, err))
			}
		}
		return true
	})

	if err := root.compose(c.Layers); err != nil {
		errs = append(errs, err)
	}
	return b, errors.Join(errs...)
}

// shared is the channel-wide composition state: the channel itself for
// owner lookups and the UIDs of layers hoisted into the root scope.
type shared struct {
	channel *layer.Channel
	hoisted map[uuid.UUID]bool
}

// source addresses a color/alpha pair inside one builder scope: an
// embed's boundary output, a blend stage, or a START import routed in
// from the parent scope.
type source struct {
	id    string
	color string
	alpha string
}

// stack accumulates one builder's compositing chain. Folders get a
// child stack over the same shared state.
type stack struct {
	shared  *shared
	builder *spec.Builder

	// parent is the embedding stack, nil for the channel root. embedID
	// is this builder's identifier in the parent's scope.
	parent  *stack
	embedID string

	// embedded maps a layer UID to its embed identifier in this builder.
	embedded map[uuid.UUID]string
	// imported marks hoisted UIDs already routed into this scope through
	// a START socket pair.
	imported map[uuid.UUID]bool

	// base is the current bottom of the chain: everything composited so
	// far. Zero until the first contributing layer.
	base       source
	blendCount int
}

func newStack(sh *shared, b *spec.Builder, parent *stack, embedID string) *stack {
	return &stack{
		shared:   sh,
		builder:  b,
		parent:   parent,
		embedID:  embedID,
		embedded: make(map[uuid.UUID]string),
		imported: make(map[uuid.UUID]bool),
	}
}

// compose chains the given layers in painter's order: index 0 is the
// base, later layers composite on top through a blend stage. Degraded
// layers are skipped with their errors joined; the rest of the stack is
// unaffected.
func (st *stack) compose(layers []*layer.Layer) error {
	var errs []error
	for _, l := range layers {
		if !l.Enabled {
			continue
		}
		if err := st.add(l); err != nil {
			errs = append(errs, fmt.Errorf("layer %q: %w", l.Name, err))
		}
	}
	if st.base.id != "" {
		st.builder.MustLink(st.base.id, st.base.color, ident.End, backend.SocketColor)
		st.builder.MustLink(st.base.id, st.base.alpha, ident.End, backend.SocketAlpha)
	}
	return errors.Join(errs...)
}

func (st *stack) add(l *layer.Layer) error {
	// A folder embed can succeed while some of its children degraded;
	// the joined child errors still surface to the caller.
	src, err := st.source(l)
	if src.id == "" {
		return err
	}

	// Base-consuming layers read the chain below them through their
	// START boundary. Only a local embed can be fed; a routed reference
	// keeps its owner's own input wiring.
	if consumesBase(l) && st.base.id != "" && src.id != ident.Start {
		st.builder.MustLink(st.base.id, st.base.color, src.id, backend.SocketColor)
	}

	if st.base.id == "" {
		st.base = src
		return err
	}

	st.blendCount++
	blendID := fmt.Sprintf("blend_%d", st.blendCount)
	if addErr := st.builder.AddNode(blendID, backend.TypeBlend,
		spec.Property{Name: "mode", Value: cty.StringVal(string(l.BlendMode))},
		spec.Property{Name: "opacity", Value: cty.NumberFloatVal(l.Opacity)},
	); addErr != nil {
		return addErr
	}
	st.builder.MustLink(st.base.id, st.base.color, blendID, backend.SocketBaseColor)
	st.builder.MustLink(st.base.id, st.base.alpha, blendID, backend.SocketBaseAlpha)
	st.builder.MustLink(src.id, src.color, blendID, backend.SocketOverColor)
	st.builder.MustLink(src.id, src.alpha, blendID, backend.SocketOverAlpha)

	st.base = source{id: blendID, color: backend.SocketColor, alpha: backend.SocketAlpha}
	return err
}

// source returns the addressable Color/Alpha output for the layer's
// contribution in this scope. Linked layers resolve to their owner;
// hoisted owners resolve through the root scope's single embed.
func (st *stack) source(l *layer.Layer) (source, error) {
	target := l
	if l.IsLinked() {
		owner := st.shared.channel.Find(*l.LinkTarget)
		if owner == nil {
			return source{}, fmt.Errorf("%w: link target %s of layer %q",
				spec.ErrUnresolvedLinkEndpoint, l.LinkTarget, l.Name)
		}
		target = owner
	}
	if st.shared.hoisted[target.UID] {
		return st.external(target.UID)
	}
	return st.ensure(target)
}

// external resolves a hoisted owner from this scope. The root scope
// holds the single embed; a nested scope imports its output from the
// parent through a START socket pair, wired once per scope.
func (st *stack) external(uid uuid.UUID) (source, error) {
	if st.parent == nil {
		owner := st.shared.channel.Find(uid)
		if owner == nil {
			return source{}, fmt.Errorf("%w: link target %s", spec.ErrUnresolvedLinkEndpoint, uid)
		}
		return st.ensure(owner)
	}

	src := source{
		id:    ident.Start,
		color: refSocket(uid, backend.SocketColor),
		alpha: refSocket(uid, backend.SocketAlpha),
	}
	if st.imported[uid] {
		return src, nil
	}
	up, err := st.parent.external(uid)
	if err != nil {
		return source{}, err
	}
	st.parent.builder.MustLink(up.id, up.color, st.embedID, src.color)
	st.parent.builder.MustLink(up.id, up.alpha, st.embedID, src.alpha)
	st.imported[uid] = true
	return src, nil
}

// refSocket names the boundary socket carrying a hoisted owner's output
// into a nested scope.
func refSocket(uid uuid.UUID, socket string) string {
	return fmt.Sprintf("ref_%s %s", uid, socket)
}

// ensure embeds the layer's internal builder into this stack's builder
// exactly once and returns its boundary output.
func (st *stack) ensure(l *layer.Layer) (source, error) {
	out := func(id string) source {
		return source{id: id, color: backend.SocketColor, alpha: backend.SocketAlpha}
	}
	if id, ok := st.embedded[l.UID]; ok {
		return out(id), nil
	}
	id := builderName(l)

	if l.Type == layer.TypeFolder {
		// Embed before composing the children: a nested reference may
		// need to route through this embed while the sub-stack is still
		// being filled. A folder with degraded children still embeds;
		// the child errors ride along.
		inner := spec.NewBuilder(id)
		if err := st.builder.Embed(id, inner); err != nil {
			return source{}, err
		}
		st.embedded[l.UID] = id
		sub := newStack(st.shared, inner, st, id)
		return out(id), sub.compose(l.Children)
	}

	inner, err := layerBuilder(l)
	if err != nil {
		return source{}, err
	}
	if err := st.builder.Embed(id, inner); err != nil {
		return source{}, err
	}
	st.embedded[l.UID] = id
	return out(id), nil
}

// consumesBase reports whether the layer's builder reads the chain below
// it through its START boundary.
func consumesBase(l *layer.Layer) bool {
	return l.Type == layer.TypeAdjustment || l.Type == layer.TypeNodeGroup
}
