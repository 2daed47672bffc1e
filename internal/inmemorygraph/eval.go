package inmemorygraph

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/layergraphgo/internal/backend"
	"github.com/vk/layergraphgo/internal/blend"
)

// Sample is an evaluated color/alpha pair.
type Sample struct {
	Color blend.RGB
	Alpha float64
}

// Evaluate constant-folds the graph upstream of the given output socket and
// returns the resulting sample. Only the bundled node types that have a
// closed-form value are supported; hitting any other type is an error, not a
// guess. Depth is bounded because compiled graphs are acyclic.
func (g *Graph) Evaluate(h backend.Handle, socket string) (Sample, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	id, err := g.idOf(h)
	if err != nil {
		return Sample{}, err
	}
	return g.eval(id, socket)
}

func (g *Graph) eval(id int, socket string) (Sample, error) {
	rec, ok := g.nodes[id]
	if !ok {
		return Sample{}, fmt.Errorf("inmemorygraph: node#%d is not live", id)
	}

	switch rec.typeTag {
	case backend.TypeSolidColor:
		color, err := rgbProp(rec, "color", blend.RGB{})
		if err != nil {
			return Sample{}, err
		}
		alpha, err := floatProp(rec, "alpha", 1)
		if err != nil {
			return Sample{}, err
		}
		return Sample{Color: color, Alpha: alpha}, nil

	case backend.TypeReroute:
		src, ok := g.input(id, backend.SocketIn)
		if !ok {
			// An unconnected boundary evaluates as fully transparent.
			return Sample{}, nil
		}
		return g.eval(src.src, src.srcSocket)

	case backend.TypeBlend:
		return g.evalBlend(id, rec)

	default:
		return Sample{}, fmt.Errorf("inmemorygraph: cannot evaluate node type %q", rec.typeTag)
	}
}

func (g *Graph) evalBlend(id int, rec *record) (Sample, error) {
	base, err := g.evalInputPair(id, backend.SocketBaseColor, backend.SocketBaseAlpha)
	if err != nil {
		return Sample{}, err
	}
	over, err := g.evalInputPair(id, backend.SocketOverColor, backend.SocketOverAlpha)
	if err != nil {
		return Sample{}, err
	}

	mode := blend.Normal
	if v, ok := rec.props["mode"]; ok && v.Type() == cty.String {
		mode = blend.Mode(v.AsString())
	}
	opacity, err := floatProp(rec, "opacity", 1)
	if err != nil {
		return Sample{}, err
	}

	// Opacity shapes the color mix only; coverage accumulates from the
	// layer's own alpha.
	f := opacity * over.Alpha
	color, err := blend.Apply(mode, base.Color, over.Color, f)
	if err != nil {
		return Sample{}, err
	}
	return Sample{
		Color: color,
		Alpha: blend.AlphaOver(base.Alpha, over.Alpha),
	}, nil
}

// evalInputPair evaluates the node feeding a color socket, pairing it with
// the matching alpha socket. Both sockets usually come from the same
// upstream node; when the alpha socket is wired separately it wins.
func (g *Graph) evalInputPair(id int, colorSocket, alphaSocket string) (Sample, error) {
	var out Sample
	if e, ok := g.input(id, colorSocket); ok {
		s, err := g.eval(e.src, e.srcSocket)
		if err != nil {
			return Sample{}, err
		}
		out = s
	}
	if e, ok := g.input(id, alphaSocket); ok {
		s, err := g.eval(e.src, e.srcSocket)
		if err != nil {
			return Sample{}, err
		}
		out.Alpha = s.Alpha
	}
	return out, nil
}

// input finds the edge feeding a node's input socket. Callers hold g.mu.
func (g *Graph) input(id int, socket string) (edge, bool) {
	for _, e := range g.edges {
		if e.dst == id && e.dstSocket == socket {
			return e, true
		}
	}
	return edge{}, false
}

func floatProp(rec *record, name string, fallback float64) (float64, error) {
	v, ok := rec.props[name]
	if !ok {
		return fallback, nil
	}
	return ctyFloat(v)
}

func rgbProp(rec *record, name string, fallback blend.RGB) (blend.RGB, error) {
	v, ok := rec.props[name]
	if !ok {
		return fallback, nil
	}
	if !v.CanIterateElements() {
		return blend.RGB{}, fmt.Errorf("inmemorygraph: property %q is not a color triple", name)
	}
	var comps []float64
	for it := v.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		f, err := ctyFloat(ev)
		if err != nil {
			return blend.RGB{}, err
		}
		comps = append(comps, f)
	}
	if len(comps) != 3 {
		return blend.RGB{}, fmt.Errorf("inmemorygraph: property %q has %d components, want 3", name, len(comps))
	}
	return blend.RGB{R: comps[0], G: comps[1], B: comps[2]}, nil
}

func ctyFloat(v cty.Value) (float64, error) {
	if v.Type() != cty.Number {
		return 0, fmt.Errorf("inmemorygraph: value %#v is not a number", v)
	}
	f, _ := v.AsBigFloat().Float64()
	return f, nil
}
