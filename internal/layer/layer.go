// Package layer holds the document-side data model: layers nested in
// folders, grouped into channels, grouped into groups. Nothing here knows
// about the backend; a Layer is compiled into a builder by the compose
// package, never materialized directly.
package layer

import (
	"github.com/google/uuid"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/layergraphgo/internal/blend"
)

// TypeTag is the closed set of layer kinds. Dispatch over it is always an
// exhaustive switch; an unlisted tag is an error, not a fallthrough.
type TypeTag string

const (
	TypeFolder     TypeTag = "folder"
	TypeSolidColor TypeTag = "solid_color"
	TypeImage      TypeTag = "image"
	TypeGradient   TypeTag = "gradient"
	TypeTexture    TypeTag = "texture"
	TypeAdjustment TypeTag = "adjustment"
	TypeNodeGroup  TypeTag = "node_group"
)

// Known reports whether t is one of the declared layer kinds.
func Known(t TypeTag) bool {
	switch t {
	case TypeFolder, TypeSolidColor, TypeImage, TypeGradient,
		TypeTexture, TypeAdjustment, TypeNodeGroup:
		return true
	}
	return false
}

// Layer is one entry in a channel's stack. Layers are owned and mutated by
// the host document; the compiled graph is derived from them on every
// structurally relevant edit.
type Layer struct {
	UID  uuid.UUID
	Name string
	Type TypeTag

	// Props is the ordered per-type property bag forwarded onto the
	// layer's content node at compile time.
	Props []Prop

	Opacity   float64
	Alpha     float64
	BlendMode blend.Mode

	// Enabled false composes the layer as a pass-through: it stays in the
	// document but contributes nothing.
	Enabled bool

	// LinkTarget, when set, makes this a linked layer: it owns no graph of
	// its own and resolves to a reference to the owning layer's compiled
	// output.
	LinkTarget *uuid.UUID

	// RecordedVersion is the structural version this layer was last
	// compiled against. A mismatch with the current version for Type
	// forces a property-discarding rebuild.
	RecordedVersion int

	// Children is meaningful only for TypeFolder.
	Children []*Layer
}

// Prop is one named property value, order-preserving.
type Prop struct {
	Name  string
	Value cty.Value
}

// New returns a layer with a fresh UID and the usual defaults: fully
// opaque, normal blending, enabled.
func New(name string, t TypeTag) *Layer {
	return &Layer{
		UID:       uuid.New(),
		Name:      name,
		Type:      t,
		Opacity:   1,
		Alpha:     1,
		BlendMode: blend.Normal,
		Enabled:   true,
	}
}

// IsLinked reports whether the layer proxies another layer's output.
func (l *Layer) IsLinked() bool { return l.LinkTarget != nil }

// Factor is the scalar compositing factor for this layer.
func (l *Layer) Factor() float64 { return l.Opacity * l.Alpha }

// Channel owns an ordered stack of top-level layers. Index 0 is the base;
// later layers composite on top (painter's order).
type Channel struct {
	Name   string
	Layers []*Layer
}

// Group owns a set of named channels.
type Group struct {
	Name     string
	Channels []*Channel
}

// Channel returns the named channel, or nil.
func (g *Group) Channel(name string) *Channel {
	for _, c := range g.Channels {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Walk visits every layer in the channel depth-first, folders before their
// children, in stack order. Visiting continues while fn returns true.
func (c *Channel) Walk(fn func(*Layer) bool) {
	var walk func(ls []*Layer) bool
	walk = func(ls []*Layer) bool {
		for _, l := range ls {
			if !fn(l) {
				return false
			}
			if len(l.Children) > 0 {
				if !walk(l.Children) {
					return false
				}
			}
		}
		return true
	}
	walk(c.Layers)
}

// Find returns the layer with the given UID anywhere in the channel, or
// nil if absent.
func (c *Channel) Find(uid uuid.UUID) *Layer {
	var found *Layer
	c.Walk(func(l *Layer) bool {
		if l.UID == uid {
			found = l
			return false
		}
		return true
	})
	return found
}
