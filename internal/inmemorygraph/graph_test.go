package inmemorygraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/layergraphgo/internal/backend"
	"github.com/vk/layergraphgo/internal/blend"
)

func rgbVal(r, g, b float64) cty.Value {
	return cty.TupleVal([]cty.Value{
		cty.NumberFloatVal(r), cty.NumberFloatVal(g), cty.NumberFloatVal(b),
	})
}

func TestGraph_NodeLifecycle(t *testing.T) {
	ctx := context.Background()
	g := New()

	h, err := g.CreateNode(ctx, backend.TypeSolidColor)
	require.NoError(t, err)
	assert.Equal(t, 1, g.NodeCount())

	tag, err := g.TypeOf(h)
	require.NoError(t, err)
	assert.Equal(t, backend.TypeSolidColor, tag)

	require.NoError(t, g.SetProperty(ctx, h, "alpha", cty.NumberFloatVal(0.5)))
	v, err := g.GetProperty(ctx, h, "alpha")
	require.NoError(t, err)
	assert.Equal(t, cty.NumberFloatVal(0.5), v)

	_, err = g.GetProperty(ctx, h, "never_set")
	assert.Error(t, err)

	require.NoError(t, g.DestroyNode(ctx, h))
	assert.Equal(t, 0, g.NodeCount())
	_, err = g.GetProperty(ctx, h, "alpha")
	assert.Error(t, err)
}

func TestGraph_DestroyNodeRemovesEdges(t *testing.T) {
	ctx := context.Background()
	g := New()

	a, _ := g.CreateNode(ctx, backend.TypeSolidColor)
	b, _ := g.CreateNode(ctx, backend.TypeBlend)
	require.NoError(t, g.CreateEdge(ctx, a, backend.SocketColor, b, backend.SocketOverColor))
	require.Equal(t, 1, g.EdgeCount())

	require.NoError(t, g.DestroyNode(ctx, a))
	assert.Equal(t, 0, g.EdgeCount())
}

func TestGraph_RemoveEdge(t *testing.T) {
	ctx := context.Background()
	g := New()

	a, _ := g.CreateNode(ctx, backend.TypeSolidColor)
	b, _ := g.CreateNode(ctx, backend.TypeBlend)
	require.NoError(t, g.CreateEdge(ctx, a, backend.SocketColor, b, backend.SocketOverColor))
	require.True(t, g.HasEdge(a, backend.SocketColor, b, backend.SocketOverColor))

	require.NoError(t, g.RemoveEdge(ctx, a, backend.SocketColor, b, backend.SocketOverColor))
	assert.False(t, g.HasEdge(a, backend.SocketColor, b, backend.SocketOverColor))

	// Removing a missing edge is a no-op.
	require.NoError(t, g.RemoveEdge(ctx, a, backend.SocketColor, b, backend.SocketOverColor))
}

// buildBlend wires two solid nodes into a blend node and returns the blend handle.
func buildBlend(t *testing.T, g *Graph, mode string, opacity float64, base, over Sample) backend.Handle {
	t.Helper()
	ctx := context.Background()

	baseNode, err := g.CreateNode(ctx, backend.TypeSolidColor)
	require.NoError(t, err)
	require.NoError(t, g.SetProperty(ctx, baseNode, "color", rgbVal(base.Color.R, base.Color.G, base.Color.B)))
	require.NoError(t, g.SetProperty(ctx, baseNode, "alpha", cty.NumberFloatVal(base.Alpha)))

	overNode, err := g.CreateNode(ctx, backend.TypeSolidColor)
	require.NoError(t, err)
	require.NoError(t, g.SetProperty(ctx, overNode, "color", rgbVal(over.Color.R, over.Color.G, over.Color.B)))
	require.NoError(t, g.SetProperty(ctx, overNode, "alpha", cty.NumberFloatVal(over.Alpha)))

	blendNode, err := g.CreateNode(ctx, backend.TypeBlend)
	require.NoError(t, err)
	require.NoError(t, g.SetProperty(ctx, blendNode, "mode", cty.StringVal(mode)))
	require.NoError(t, g.SetProperty(ctx, blendNode, "opacity", cty.NumberFloatVal(opacity)))

	require.NoError(t, g.CreateEdge(ctx, baseNode, backend.SocketColor, blendNode, backend.SocketBaseColor))
	require.NoError(t, g.CreateEdge(ctx, baseNode, backend.SocketAlpha, blendNode, backend.SocketBaseAlpha))
	require.NoError(t, g.CreateEdge(ctx, overNode, backend.SocketColor, blendNode, backend.SocketOverColor))
	require.NoError(t, g.CreateEdge(ctx, overNode, backend.SocketAlpha, blendNode, backend.SocketOverAlpha))
	return blendNode
}

func TestEvaluate_NormalOverOpaqueBase(t *testing.T) {
	g := New()
	top := Sample{Color: blend.RGB{R: 1, G: 0.5, B: 0}, Alpha: 1}
	blendNode := buildBlend(t, g, "normal", 1,
		Sample{Color: blend.RGB{R: 0.2, G: 0.2, B: 0.2}, Alpha: 1}, top)

	got, err := g.Evaluate(blendNode, backend.SocketColor)
	require.NoError(t, err)
	assert.InDelta(t, top.Color.R, got.Color.R, 1e-9)
	assert.InDelta(t, top.Color.G, got.Color.G, 1e-9)
	assert.InDelta(t, top.Color.B, got.Color.B, 1e-9)
	assert.InDelta(t, 1.0, got.Alpha, 1e-9)
}

func TestEvaluate_AlphaAccumulation(t *testing.T) {
	g := New()
	blendNode := buildBlend(t, g, "normal", 1,
		Sample{Color: blend.RGB{}, Alpha: 0.5},
		Sample{Color: blend.RGB{R: 1, G: 1, B: 1}, Alpha: 0.5})

	got, err := g.Evaluate(blendNode, backend.SocketColor)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, got.Alpha, 1e-9)
}

func TestEvaluate_OpacityShapesColorOnly(t *testing.T) {
	g := New()
	blendNode := buildBlend(t, g, "normal", 0.5,
		Sample{Color: blend.RGB{}, Alpha: 0.5},
		Sample{Color: blend.RGB{R: 1, G: 1, B: 1}, Alpha: 0.5})

	got, err := g.Evaluate(blendNode, backend.SocketColor)
	require.NoError(t, err)
	// f = opacity * layer alpha = 0.25 drives the color mix.
	assert.InDelta(t, 0.25, got.Color.R, 1e-9)
	// Coverage accumulates from the layer's alpha alone.
	assert.InDelta(t, 0.75, got.Alpha, 1e-9)
}

func TestEvaluate_RerouteChain(t *testing.T) {
	ctx := context.Background()
	g := New()

	solid, _ := g.CreateNode(ctx, backend.TypeSolidColor)
	require.NoError(t, g.SetProperty(ctx, solid, "color", rgbVal(0.1, 0.2, 0.3)))

	reroute, _ := g.CreateNode(ctx, backend.TypeReroute)
	require.NoError(t, g.CreateEdge(ctx, solid, backend.SocketColor, reroute, backend.SocketIn))

	got, err := g.Evaluate(reroute, backend.SocketOut)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, got.Color.G, 1e-9)

	// An unconnected reroute evaluates as transparent.
	lone, _ := g.CreateNode(ctx, backend.TypeReroute)
	got, err = g.Evaluate(lone, backend.SocketOut)
	require.NoError(t, err)
	assert.Zero(t, got.Alpha)
}

func TestEvaluate_UnknownType(t *testing.T) {
	ctx := context.Background()
	g := New()
	h, _ := g.CreateNode(ctx, backend.TypeNoiseTexture)
	_, err := g.Evaluate(h, backend.SocketColor)
	assert.Error(t, err)
}
