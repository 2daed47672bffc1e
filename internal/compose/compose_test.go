package compose

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/layergraphgo/internal/backend"
	"github.com/vk/layergraphgo/internal/blend"
	"github.com/vk/layergraphgo/internal/compiler"
	"github.com/vk/layergraphgo/internal/ident"
	"github.com/vk/layergraphgo/internal/inmemorygraph"
	"github.com/vk/layergraphgo/internal/layer"
	"github.com/vk/layergraphgo/internal/spec"
	"github.com/vk/layergraphgo/internal/version"
)

func solidLayer(name string, r, g, b, alpha float64) *layer.Layer {
	l := layer.New(name, layer.TypeSolidColor)
	l.Alpha = alpha
	l.Props = []layer.Prop{{
		Name: "color",
		Value: cty.TupleVal([]cty.Value{
			cty.NumberFloatVal(r), cty.NumberFloatVal(g), cty.NumberFloatVal(b),
		}),
	}}
	return l
}

// compileChannel composes and materializes a channel against a fresh
// in-memory backend, returning the backend, the graph and the channel
// output sample.
func compileChannel(t *testing.T, c *layer.Channel) (*inmemorygraph.Graph, *compiler.MaterializedGraph, inmemorygraph.Sample) {
	t.Helper()
	g := inmemorygraph.New()

	b, err := ComposeChannel(c)
	require.NoError(t, err)
	mg, err := compiler.Compile(context.Background(), b, g, nil, false)
	require.NoError(t, err)

	colorEnd, ok := mg.Boundary(ident.End, backend.SocketColor)
	require.True(t, ok, "channel must expose a Color output")
	sample, err := g.Evaluate(colorEnd, backend.SocketOut)
	require.NoError(t, err)

	if alphaEnd, ok := mg.Boundary(ident.End, backend.SocketAlpha); ok {
		as, err := g.Evaluate(alphaEnd, backend.SocketOut)
		require.NoError(t, err)
		sample.Alpha = as.Alpha
	}
	return g, mg, sample
}

func TestComposeChannel_NormalOverOpaqueBase(t *testing.T) {
	c := &layer.Channel{Name: "Color", Layers: []*layer.Layer{
		solidLayer("Base", 1, 0, 0, 1),
		solidLayer("Top", 0, 0, 1, 1),
	}}

	_, _, s := compileChannel(t, c)
	assert.InDelta(t, 0, s.Color.R, 1e-9)
	assert.InDelta(t, 1, s.Color.B, 1e-9, "full-strength normal blend yields the top color")
	assert.InDelta(t, 1, s.Alpha, 1e-9)
}

func TestComposeChannel_AlphaAccumulation(t *testing.T) {
	c := &layer.Channel{Name: "Color", Layers: []*layer.Layer{
		solidLayer("Base", 1, 1, 1, 0.5),
		solidLayer("Top", 0, 0, 0, 0.5),
	}}

	_, _, s := compileChannel(t, c)
	assert.InDelta(t, 0.75, s.Alpha, 1e-9)
}

func TestComposeChannel_OpacityScalesContribution(t *testing.T) {
	top := solidLayer("Top", 1, 1, 1, 1)
	top.Opacity = 0.5
	c := &layer.Channel{Name: "Color", Layers: []*layer.Layer{
		solidLayer("Base", 0, 0, 0, 1),
		top,
	}}

	_, _, s := compileChannel(t, c)
	assert.InDelta(t, 0.5, s.Color.R, 1e-9)
}

func TestComposeChannel_DisabledLayerContributesNothing(t *testing.T) {
	top := solidLayer("Top", 0, 1, 0, 1)
	top.Enabled = false
	c := &layer.Channel{Name: "Color", Layers: []*layer.Layer{
		solidLayer("Base", 1, 0, 0, 1),
		top,
	}}

	_, mg, s := compileChannel(t, c)
	assert.InDelta(t, 1, s.Color.R, 1e-9)
	assert.InDelta(t, 0, s.Color.G, 1e-9)
	_, ok := mg.Handle(builderName(top), "content")
	assert.False(t, ok, "disabled layers are not materialized")
}

func TestComposeChannel_FolderComposesAsOneLayer(t *testing.T) {
	folder := layer.New("Fills", layer.TypeFolder)
	folder.Opacity = 0.5
	folder.Children = []*layer.Layer{
		solidLayer("Inner", 1, 1, 1, 1),
	}
	c := &layer.Channel{Name: "Color", Layers: []*layer.Layer{
		solidLayer("Base", 0, 0, 0, 1),
		folder,
	}}

	_, _, s := compileChannel(t, c)
	// The folder's own opacity scales its whole subtree.
	assert.InDelta(t, 0.5, s.Color.R, 1e-9)
}

func TestComposeChannel_UnknownTypeDegradesSingleLayer(t *testing.T) {
	broken := layer.New("Broken", "hologram")
	c := &layer.Channel{Name: "Color", Layers: []*layer.Layer{
		solidLayer("Base", 1, 0, 0, 1),
		broken,
		solidLayer("Top", 0, 0, 1, 1),
	}}

	b, err := ComposeChannel(c)
	require.ErrorIs(t, err, ErrUnknownLayerType)
	require.NotNil(t, b, "siblings still compose")

	g := inmemorygraph.New()
	mg, cerr := compiler.Compile(context.Background(), b, g, nil, false)
	require.NoError(t, cerr)

	end, ok := mg.Boundary(ident.End, backend.SocketColor)
	require.True(t, ok)
	s, err := g.Evaluate(end, backend.SocketOut)
	require.NoError(t, err)
	assert.InDelta(t, 1, s.Color.B, 1e-9, "the healthy top layer still lands")
}

func TestComposeChannel_LinkedLayerSharesOwnerGraph(t *testing.T) {
	owner := solidLayer("Owner", 0, 1, 0, 1)
	linked := layer.New("Echo", layer.TypeSolidColor)
	linked.LinkTarget = &owner.UID

	c := &layer.Channel{Name: "Color", Layers: []*layer.Layer{
		solidLayer("Base", 0, 0, 0, 1),
		owner,
		linked,
	}}

	b, err := ComposeChannel(c)
	require.NoError(t, err)

	// One embed for the owner; the linked layer references it.
	_, ok := b.Embedded(builderName(owner))
	assert.True(t, ok)
	_, ok = b.Embedded(builderName(linked))
	assert.False(t, ok, "linked layers own no graph of their own")

	_, _, s := compileChannel(t, c)
	assert.InDelta(t, 1, s.Color.G, 1e-9)
}

func TestComposeChannel_LinkedLayerInFolderSharesOwner(t *testing.T) {
	owner := solidLayer("Owner", 0, 1, 0, 1)
	linked := layer.New("Echo", layer.TypeSolidColor)
	linked.LinkTarget = &owner.UID
	folder := layer.New("Overlay", layer.TypeFolder)
	folder.Children = []*layer.Layer{linked}

	c := &layer.Channel{Name: "Color", Layers: []*layer.Layer{
		solidLayer("Base", 0, 0, 0, 1),
		owner,
		folder,
	}}

	b, err := ComposeChannel(c)
	require.NoError(t, err)

	_, ok := b.Embedded(builderName(owner))
	assert.True(t, ok, "the owner lives in the channel scope")
	inner, ok := b.Embedded(builderName(folder))
	require.True(t, ok)
	_, ok = inner.Embedded(builderName(owner))
	assert.False(t, ok, "a nested reference must not clone the owner's graph")

	_, _, s := compileChannel(t, c)
	assert.InDelta(t, 1, s.Color.G, 1e-9)
}

func TestComposeChannel_LinkedLayerToFolderedOwner(t *testing.T) {
	owner := solidLayer("Owner", 0, 1, 0, 1)
	folder := layer.New("Fills", layer.TypeFolder)
	folder.Children = []*layer.Layer{owner}
	linked := layer.New("Echo", layer.TypeSolidColor)
	linked.LinkTarget = &owner.UID

	c := &layer.Channel{Name: "Color", Layers: []*layer.Layer{folder, linked}}

	b, err := ComposeChannel(c)
	require.NoError(t, err)

	_, ok := b.Embedded(builderName(owner))
	assert.True(t, ok, "a linked owner is hoisted to the channel scope")
	inner, ok := b.Embedded(builderName(folder))
	require.True(t, ok)
	_, ok = inner.Embedded(builderName(owner))
	assert.False(t, ok)

	_, _, s := compileChannel(t, c)
	assert.InDelta(t, 1, s.Color.G, 1e-9)
}

func TestComposeChannel_LinkedLayerMissingOwner(t *testing.T) {
	orphanTarget := layer.New("Deleted", layer.TypeSolidColor).UID
	linked := layer.New("Echo", layer.TypeSolidColor)
	linked.LinkTarget = &orphanTarget

	c := &layer.Channel{Name: "Color", Layers: []*layer.Layer{
		solidLayer("Base", 0, 0, 0, 1),
		linked,
	}}

	_, err := ComposeChannel(c)
	assert.ErrorIs(t, err, spec.ErrUnresolvedLinkEndpoint)
}

func TestDetectLinkCycle(t *testing.T) {
	a := layer.New("A", layer.TypeSolidColor)
	b := layer.New("B", layer.TypeSolidColor)
	a.LinkTarget = &b.UID
	b.LinkTarget = &a.UID

	c := &layer.Channel{Name: "Color", Layers: []*layer.Layer{a, b}}
	assert.ErrorIs(t, DetectLinkCycle(c), ErrCyclicLinkReference)

	b.LinkTarget = nil
	assert.NoError(t, DetectLinkCycle(c))
}

func TestDetectLinkCycle_SelfLink(t *testing.T) {
	a := layer.New("A", layer.TypeSolidColor)
	a.LinkTarget = &a.UID
	c := &layer.Channel{Name: "Color", Layers: []*layer.Layer{a}}
	assert.ErrorIs(t, DetectLinkCycle(c), ErrCyclicLinkReference)
}

func TestComposeGroup(t *testing.T) {
	g := &layer.Group{Name: "Main", Channels: []*layer.Channel{
		{Name: "Color", Layers: []*layer.Layer{solidLayer("Base", 1, 0, 0, 1)}},
		{Name: "Height", Layers: []*layer.Layer{solidLayer("Flat", 0.5, 0.5, 0.5, 1)}},
	}}

	b, err := ComposeGroup(g)
	require.NoError(t, err)

	_, ok := b.Embedded("Color")
	assert.True(t, ok)
	_, ok = b.Embedded("Height")
	assert.True(t, ok)

	mg, err := compiler.Compile(context.Background(), b, inmemorygraph.New(), nil, false)
	require.NoError(t, err)
	_, ok = mg.Boundary(ident.End, "Color")
	assert.True(t, ok, "group exposes one output socket per channel")
}

func TestComposeGroup_CyclicChannelIsFatal(t *testing.T) {
	a := layer.New("A", layer.TypeSolidColor)
	a.LinkTarget = &a.UID
	g := &layer.Group{Name: "Main", Channels: []*layer.Channel{
		{Name: "Color", Layers: []*layer.Layer{a}},
	}}

	b, err := ComposeGroup(g)
	assert.ErrorIs(t, err, ErrCyclicLinkReference)
	assert.Nil(t, b)
}

func TestConductor_FlushAndCoalesce(t *testing.T) {
	ctx := context.Background()
	c := &layer.Channel{Name: "Color", Layers: []*layer.Layer{
		solidLayer("Base", 1, 0, 0, 1),
	}}
	g := inmemorygraph.New()
	cd := NewConductor(c, g)

	require.NoError(t, cd.Flush(ctx))
	require.NotNil(t, cd.Live())
	first := cd.Live().Fingerprint()

	// Clean conductor: Flush is a no-op.
	require.NoError(t, cd.Flush(ctx))
	assert.Equal(t, first, cd.Live().Fingerprint())

	// An invalidation fired mid-compile folds into a trailing recompile
	// instead of recursing.
	cd.compiling = true
	cd.Invalidate()
	cd.compiling = false
	assert.False(t, cd.dirty)
	assert.True(t, cd.dirtyAgain)
}

func TestConductor_VersionGateForcesPropertyReset(t *testing.T) {
	ctx := context.Background()
	base := solidLayer("Base", 1, 0, 0, 1)
	c := &layer.Channel{Name: "Color", Layers: []*layer.Layer{base}}
	g := inmemorygraph.New()
	cd := NewConductor(c, g)

	require.NoError(t, cd.Flush(ctx))
	assert.Equal(t, version.Current(layer.TypeSolidColor), base.RecordedVersion)

	// The user tunes the live alpha, then the schema moves on.
	h, ok := cd.Live().Handle(builderName(base), "content")
	require.True(t, ok)
	require.NoError(t, g.SetProperty(ctx, h, "alpha", cty.NumberFloatVal(0.25)))
	base.RecordedVersion--

	cd.Invalidate()
	require.NoError(t, cd.Flush(ctx))

	h2, ok := cd.Live().Handle(builderName(base), "content")
	require.True(t, ok)
	v, err := g.GetProperty(ctx, h2, "alpha")
	require.NoError(t, err)
	assert.Equal(t, cty.NumberFloatVal(1), v, "stale snapshot is discarded on version mismatch")
	assert.Equal(t, version.Current(layer.TypeSolidColor), base.RecordedVersion)
}

func TestConductor_VersionGateSparesSiblingTuning(t *testing.T) {
	ctx := context.Background()
	base := solidLayer("Base", 1, 0, 0, 1)
	top := solidLayer("Top", 0, 0, 1, 1)
	c := &layer.Channel{Name: "Color", Layers: []*layer.Layer{base, top}}
	g := inmemorygraph.New()
	cd := NewConductor(c, g)

	require.NoError(t, cd.Flush(ctx))

	hBase, ok := cd.Live().Handle(builderName(base), "content")
	require.True(t, ok)
	require.NoError(t, g.SetProperty(ctx, hBase, "alpha", cty.NumberFloatVal(0.25)))
	hTop, ok := cd.Live().Handle(builderName(top), "content")
	require.True(t, ok)
	require.NoError(t, g.SetProperty(ctx, hTop, "alpha", cty.NumberFloatVal(0.5)))

	// Only the top layer's schema moves on.
	top.RecordedVersion--

	cd.Invalidate()
	require.NoError(t, cd.Flush(ctx))

	hTop2, _ := cd.Live().Handle(builderName(top), "content")
	v, err := g.GetProperty(ctx, hTop2, "alpha")
	require.NoError(t, err)
	assert.Equal(t, cty.NumberFloatVal(1), v, "the stale layer resets to its declared value")

	hBase2, _ := cd.Live().Handle(builderName(base), "content")
	v, err = g.GetProperty(ctx, hBase2, "alpha")
	require.NoError(t, err)
	assert.Equal(t, cty.NumberFloatVal(0.25), v, "tuning on the up-to-date sibling survives")
}

func TestConductor_NewLayerKeepsSiblingTuning(t *testing.T) {
	ctx := context.Background()
	base := solidLayer("Base", 1, 0, 0, 1)
	c := &layer.Channel{Name: "Color", Layers: []*layer.Layer{base}}
	g := inmemorygraph.New()
	cd := NewConductor(c, g)

	require.NoError(t, cd.Flush(ctx))
	h, ok := cd.Live().Handle(builderName(base), "content")
	require.True(t, ok)
	require.NoError(t, g.SetProperty(ctx, h, "alpha", cty.NumberFloatVal(0.25)))

	// A freshly added layer has no recorded version yet; that must not
	// reset its siblings.
	c.Layers = append(c.Layers, solidLayer("Top", 0, 0, 1, 1))
	cd.Invalidate()
	require.NoError(t, cd.Flush(ctx))

	h2, _ := cd.Live().Handle(builderName(base), "content")
	v, err := g.GetProperty(ctx, h2, "alpha")
	require.NoError(t, err)
	assert.Equal(t, cty.NumberFloatVal(0.25), v)
}

func TestConductor_PreservesTuningAcrossCleanRecompile(t *testing.T) {
	ctx := context.Background()
	base := solidLayer("Base", 1, 0, 0, 1)
	c := &layer.Channel{Name: "Color", Layers: []*layer.Layer{base}}
	g := inmemorygraph.New()
	cd := NewConductor(c, g)

	require.NoError(t, cd.Flush(ctx))

	h, ok := cd.Live().Handle(builderName(base), "content")
	require.True(t, ok)
	require.NoError(t, g.SetProperty(ctx, h, "alpha", cty.NumberFloatVal(0.25)))

	cd.Invalidate()
	require.NoError(t, cd.Flush(ctx))

	h2, _ := cd.Live().Handle(builderName(base), "content")
	v, err := g.GetProperty(ctx, h2, "alpha")
	require.NoError(t, err)
	assert.Equal(t, cty.NumberFloatVal(0.25), v)
}

func TestScopeName(t *testing.T) {
	assert.Equal(t, "Color", scopeName("Color"))
	assert.Equal(t, "My_Channel", scopeName("My Channel"))
	assert.Equal(t, "_", scopeName(""))
}

func TestBlendModesRoundTripThroughChannel(t *testing.T) {
	for _, mode := range blend.Modes() {
		top := solidLayer("Top", 0.5, 0.5, 0.5, 1)
		top.BlendMode = mode
		c := &layer.Channel{Name: "Color", Layers: []*layer.Layer{
			solidLayer("Base", 1, 1, 1, 1),
			top,
		}}
		_, _, s := compileChannel(t, c)
		want, err := blend.Apply(mode, blend.RGB{R: 1, G: 1, B: 1}, blend.RGB{R: 0.5, G: 0.5, B: 0.5}, 1)
		require.NoError(t, err)
		assert.InDelta(t, want.R, s.Color.R, 1e-9, string(mode))
	}
}
