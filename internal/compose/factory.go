package compose

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/layergraphgo/internal/backend"
	"github.com/vk/layergraphgo/internal/ident"
	"github.com/vk/layergraphgo/internal/layer"
	"github.com/vk/layergraphgo/internal/spec"
)

// layerBuilder dispatches a layer to its type's factory. The switch is
// exhaustive over the declared layer kinds; anything else is
// ErrUnknownLayerType.
func layerBuilder(l *layer.Layer) (*spec.Builder, error) {
	switch l.Type {
	case layer.TypeSolidColor:
		return contentBuilder(l, backend.TypeSolidColor)
	case layer.TypeImage:
		return imageBuilder(l)
	case layer.TypeGradient:
		return contentBuilder(l, backend.TypeGradient)
	case layer.TypeTexture:
		return contentBuilder(l, backend.TypeNoiseTexture)
	case layer.TypeAdjustment:
		return adjustmentBuilder(l)
	case layer.TypeNodeGroup:
		return passthroughBuilder(l)
	case layer.TypeFolder:
		// Folders are composed by the channel walk, not a factory.
		return nil, fmt.Errorf("%w: folder layers have no content factory", ErrUnknownLayerType)
	default:
		return nil, fmt.Errorf("%w: %q (layer %q)", ErrUnknownLayerType, l.Type, l.Name)
	}
}

// contentBuilder covers the single-node layer kinds: one content node of
// the given backend type carrying the layer's property bag, its color and
// alpha exposed through the builder boundary.
func contentBuilder(l *layer.Layer, typeTag string) (*spec.Builder, error) {
	b := spec.NewBuilder(builderName(l))
	if err := b.AddNode("content", typeTag, contentProps(l)...); err != nil {
		return nil, err
	}
	wireOutput(b, "content")
	return b, nil
}

// imageBuilder adds a UV source in front of the image texture node so the
// backend samples in the document's texture space.
func imageBuilder(l *layer.Layer) (*spec.Builder, error) {
	b := spec.NewBuilder(builderName(l))
	if err := b.AddNode("uv", backend.TypeUVMap); err != nil {
		return nil, err
	}
	if err := b.AddNode("content", backend.TypeImageTexture, contentProps(l)...); err != nil {
		return nil, err
	}
	b.MustLink("uv", backend.SocketVector, "content", backend.SocketVector)
	wireOutput(b, "content")
	return b, nil
}

// adjustmentBuilder routes the incoming base through the adjustment node,
// so the layer transforms what is already below it instead of adding new
// content.
func adjustmentBuilder(l *layer.Layer) (*spec.Builder, error) {
	b := spec.NewBuilder(builderName(l))
	if err := b.AddNode("content", backend.TypeAdjustment, contentProps(l)...); err != nil {
		return nil, err
	}
	b.MustLink(ident.Start, backend.SocketColor, "content", backend.SocketColor)
	wireOutput(b, "content")
	return b, nil
}

// passthroughBuilder forwards the boundary straight through a reroute.
// Used for node-group layers whose body lives outside this document.
func passthroughBuilder(l *layer.Layer) (*spec.Builder, error) {
	b := spec.NewBuilder(builderName(l))
	if err := b.AddNode("route", backend.TypeReroute); err != nil {
		return nil, err
	}
	b.MustLink(ident.Start, backend.SocketColor, "route", backend.SocketIn)
	b.MustLink("route", backend.SocketOut, ident.End, backend.SocketColor)
	return b, nil
}

// contentProps is the layer's property bag plus its alpha. The alpha
// rides on the content node so it reaches the blend stage through the
// Alpha boundary socket.
func contentProps(l *layer.Layer) []spec.Property {
	props := make([]spec.Property, 0, len(l.Props)+1)
	for _, p := range l.Props {
		props = append(props, spec.Property{Name: p.Name, Value: p.Value})
	}
	props = append(props, spec.Property{Name: "alpha", Value: cty.NumberFloatVal(l.Alpha)})
	return props
}

func wireOutput(b *spec.Builder, id string) {
	b.MustLink(id, backend.SocketColor, ident.End, backend.SocketColor)
	b.MustLink(id, backend.SocketAlpha, ident.End, backend.SocketAlpha)
}

// builderName derives a scope-safe name for a layer's internal builder.
// UUIDs keep sibling layers with equal display names apart.
func builderName(l *layer.Layer) string {
	return "layer_" + l.UID.String()
}
