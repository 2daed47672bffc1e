// Package schema declares the HCL shape of a composition document
// (.lg.hcl). It is decode-only: the loader in internal/hcl translates
// these structs into the layer model before anything else sees them.
package schema

import "github.com/hashicorp/hcl/v2"

// Layer represents a `layer "<type>" "<name>"` block. Folder layers
// nest further layer blocks.
type Layer struct {
	Type string `hcl:"layer_type,label"`
	Name string `hcl:"display_name,label"`

	// Properties is an object expression forwarded onto the layer's
	// content node, e.g. { color = [1, 0, 0] }.
	Properties hcl.Expression `hcl:"properties,optional"`

	Opacity   *float64 `hcl:"opacity,optional"`
	Alpha     *float64 `hcl:"alpha,optional"`
	BlendMode *string  `hcl:"blend_mode,optional"`
	Enabled   *bool    `hcl:"enabled,optional"`

	// LinkTarget names another layer in the same channel whose compiled
	// output this layer proxies.
	LinkTarget *string `hcl:"link_target,optional"`

	Children []*Layer `hcl:"layer,block"`
}

// Channel represents a `channel "<name>"` block: one ordered layer
// stack, base first.
type Channel struct {
	Name   string   `hcl:"name,label"`
	Layers []*Layer `hcl:"layer,block"`
}

// Group represents a `group "<name>"` block.
type Group struct {
	Name     string     `hcl:"name,label"`
	Channels []*Channel `hcl:"channel,block"`
}

// Document is the top-level structure of a composition file.
type Document struct {
	Groups []*Group `hcl:"group,block"`
	Remain hcl.Body `hcl:",remain"`
}
