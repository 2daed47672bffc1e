package remote

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/layergraphgo/internal/backend"
)

// handle wraps the node identifier assigned by the render service.
type handle string

func (h handle) String() string { return string(h) }

// CreateNode asks the service to create a typed node and returns its
// service-assigned identifier.
func (g *Graph) CreateNode(ctx context.Context, typeTag string) (backend.Handle, error) {
	resp, err := g.request(ctx, "graph:create_node", map[string]any{"type": typeTag})
	if err != nil {
		return nil, err
	}
	id, ok := resp["handle"].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("remote: create_node reply carries no handle")
	}
	return handle(id), nil
}

func (g *Graph) DestroyNode(ctx context.Context, h backend.Handle) error {
	_, err := g.request(ctx, "graph:destroy_node", map[string]any{"node": h.String()})
	return err
}

func (g *Graph) GetProperty(ctx context.Context, h backend.Handle, name string) (cty.Value, error) {
	resp, err := g.request(ctx, "graph:get_property", map[string]any{
		"node": h.String(),
		"name": name,
	})
	if err != nil {
		return cty.NilVal, err
	}
	val, err := interfaceToCtyValue(resp["value"])
	if err != nil {
		return cty.NilVal, fmt.Errorf("remote: property %q: %w", name, err)
	}
	return val, nil
}

func (g *Graph) SetProperty(ctx context.Context, h backend.Handle, name string, v cty.Value) error {
	value, err := ctyValueToInterface(v)
	if err != nil {
		return fmt.Errorf("remote: property %q: %w", name, err)
	}
	_, err = g.request(ctx, "graph:set_property", map[string]any{
		"node":  h.String(),
		"name":  name,
		"value": value,
	})
	return err
}

func (g *Graph) CreateEdge(ctx context.Context, src backend.Handle, srcSocket string, dst backend.Handle, dstSocket string) error {
	_, err := g.request(ctx, "graph:create_edge", map[string]any{
		"src":        src.String(),
		"src_socket": srcSocket,
		"dst":        dst.String(),
		"dst_socket": dstSocket,
	})
	return err
}

func (g *Graph) RemoveEdge(ctx context.Context, src backend.Handle, srcSocket string, dst backend.Handle, dstSocket string) error {
	_, err := g.request(ctx, "graph:remove_edge", map[string]any{
		"src":        src.String(),
		"src_socket": srcSocket,
		"dst":        dst.String(),
		"dst_socket": dstSocket,
	})
	return err
}

var _ backend.Graph = (*Graph)(nil)
