package hcl

import (
	"fmt"
	"sort"

	"github.com/vk/layergraphgo/internal/blend"
	"github.com/vk/layergraphgo/internal/layer"
	"github.com/vk/layergraphgo/internal/schema"
)

// translateGroup converts the HCL-specific document schema into the
// layer model. UIDs are minted here; link_target names are resolved to
// UIDs once all of a channel's layers exist.
func translateGroup(s *schema.Group) (*layer.Group, error) {
	g := &layer.Group{Name: s.Name}
	for _, c := range s.Channels {
		channel, err := translateChannel(c)
		if err != nil {
			return nil, fmt.Errorf("channel %q: %w", c.Name, err)
		}
		g.Channels = append(g.Channels, channel)
	}
	return g, nil
}

func translateChannel(s *schema.Channel) (*layer.Channel, error) {
	c := &layer.Channel{Name: s.Name}

	// pending maps a translated layer to the display name its
	// link_target refers to.
	pending := make(map[*layer.Layer]string)

	for _, ls := range s.Layers {
		l, err := translateLayer(ls, pending)
		if err != nil {
			return nil, err
		}
		c.Layers = append(c.Layers, l)
	}

	if len(pending) == 0 {
		return c, nil
	}

	byName := make(map[string]*layer.Layer)
	duplicated := make(map[string]bool)
	c.Walk(func(l *layer.Layer) bool {
		if _, seen := byName[l.Name]; seen {
			duplicated[l.Name] = true
		}
		byName[l.Name] = l
		return true
	})
	for l, targetName := range pending {
		if duplicated[targetName] {
			return nil, fmt.Errorf("layer %q: ambiguous link_target %q: more than one layer in this channel has that name", l.Name, targetName)
		}
		owner, ok := byName[targetName]
		if !ok {
			return nil, fmt.Errorf("layer %q: link_target %q does not name a layer in this channel", l.Name, targetName)
		}
		if owner == l {
			return nil, fmt.Errorf("layer %q: link_target refers to itself", l.Name)
		}
		uid := owner.UID
		l.LinkTarget = &uid
	}
	return c, nil
}

func translateLayer(s *schema.Layer, pending map[*layer.Layer]string) (*layer.Layer, error) {
	l := layer.New(s.Name, layer.TypeTag(s.Type))

	if s.Opacity != nil {
		l.Opacity = *s.Opacity
	}
	if s.Alpha != nil {
		l.Alpha = *s.Alpha
	}
	if s.Enabled != nil {
		l.Enabled = *s.Enabled
	}
	if s.BlendMode != nil {
		mode := blend.Mode(*s.BlendMode)
		if !blend.Valid(mode) {
			return nil, fmt.Errorf("layer %q: unknown blend_mode %q", s.Name, *s.BlendMode)
		}
		l.BlendMode = mode
	}
	if s.LinkTarget != nil {
		pending[l] = *s.LinkTarget
	}

	props, err := translateProperties(s)
	if err != nil {
		return nil, err
	}
	l.Props = props

	for _, child := range s.Children {
		if l.Type != layer.TypeFolder {
			return nil, fmt.Errorf("layer %q: only folder layers may nest layer blocks", s.Name)
		}
		cl, err := translateLayer(child, pending)
		if err != nil {
			return nil, err
		}
		l.Children = append(l.Children, cl)
	}
	return l, nil
}

// translateProperties evaluates the properties object expression into an
// ordered property list. Attribute order in an HCL object is not
// meaningful, so names are sorted for a stable compile order.
func translateProperties(s *schema.Layer) ([]layer.Prop, error) {
	if s.Properties == nil {
		return nil, nil
	}
	val, diags := s.Properties.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("layer %q: properties: %w", s.Name, diags)
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.Type().IsObjectType() {
		return nil, fmt.Errorf("layer %q: properties must be an object", s.Name)
	}

	valueMap := val.AsValueMap()
	names := make([]string, 0, len(valueMap))
	for name := range valueMap {
		names = append(names, name)
	}
	sort.Strings(names)

	props := make([]layer.Prop, 0, len(names))
	for _, name := range names {
		props = append(props, layer.Prop{Name: name, Value: valueMap[name]})
	}
	return props, nil
}
