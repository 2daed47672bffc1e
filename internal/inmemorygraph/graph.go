package inmemorygraph

import (
	"context"
	"fmt"
	"sync"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/layergraphgo/internal/backend"
)

// handle identifies one live node in this graph.
type handle struct {
	id int
}

func (h handle) String() string {
	return fmt.Sprintf("node#%d", h.id)
}

// record is the stored state of a live node.
type record struct {
	typeTag   string
	props     map[string]cty.Value
	propOrder []string
}

type edge struct {
	src       int
	srcSocket string
	dst       int
	dstSocket string
}

// Graph is an in-memory backend.Graph.
type Graph struct {
	mu     sync.RWMutex
	nextID int
	nodes  map[int]*record
	edges  []edge
}

// New creates an empty in-memory graph.
func New() *Graph {
	return &Graph{nodes: make(map[int]*record)}
}

var _ backend.Graph = (*Graph)(nil)

// CreateNode allocates a node of the given type.
func (g *Graph) CreateNode(ctx context.Context, typeTag string) (backend.Handle, error) {
	if typeTag == "" {
		return nil, fmt.Errorf("inmemorygraph: empty type tag")
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nextID++
	g.nodes[g.nextID] = &record{typeTag: typeTag, props: make(map[string]cty.Value)}
	return handle{id: g.nextID}, nil
}

// DestroyNode removes a node and every edge touching it.
func (g *Graph) DestroyNode(ctx context.Context, h backend.Handle) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := g.idOf(h)
	if err != nil {
		return err
	}
	delete(g.nodes, id)

	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.src != id && e.dst != id {
			kept = append(kept, e)
		}
	}
	g.edges = kept
	return nil
}

// GetProperty returns the current value of a property. Reading a property
// that was never set is an error; the compiler only reads names it recorded.
func (g *Graph) GetProperty(ctx context.Context, h backend.Handle, name string) (cty.Value, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	id, err := g.idOf(h)
	if err != nil {
		return cty.NilVal, err
	}
	v, ok := g.nodes[id].props[name]
	if !ok {
		return cty.NilVal, fmt.Errorf("inmemorygraph: %s has no property %q", h, name)
	}
	return v, nil
}

// SetProperty writes a property value, creating it on first write.
func (g *Graph) SetProperty(ctx context.Context, h backend.Handle, name string, value cty.Value) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := g.idOf(h)
	if err != nil {
		return err
	}
	rec := g.nodes[id]
	if _, ok := rec.props[name]; !ok {
		rec.propOrder = append(rec.propOrder, name)
	}
	rec.props[name] = value
	return nil
}

// CreateEdge connects two sockets.
func (g *Graph) CreateEdge(ctx context.Context, src backend.Handle, srcSocket string, dst backend.Handle, dstSocket string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	srcID, err := g.idOf(src)
	if err != nil {
		return err
	}
	dstID, err := g.idOf(dst)
	if err != nil {
		return err
	}
	g.edges = append(g.edges, edge{src: srcID, srcSocket: srcSocket, dst: dstID, dstSocket: dstSocket})
	return nil
}

// RemoveEdge removes a previously created edge. Removing a missing edge is
// not an error.
func (g *Graph) RemoveEdge(ctx context.Context, src backend.Handle, srcSocket string, dst backend.Handle, dstSocket string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	srcID, err := g.idOf(src)
	if err != nil {
		return err
	}
	dstID, err := g.idOf(dst)
	if err != nil {
		return err
	}
	for i, e := range g.edges {
		if e.src == srcID && e.srcSocket == srcSocket && e.dst == dstID && e.dstSocket == dstSocket {
			g.edges = append(g.edges[:i], g.edges[i+1:]...)
			return nil
		}
	}
	return nil
}

// --- Inspection helpers for tests and logging ---

// NodeCount returns the number of live nodes.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// EdgeCount returns the number of live edges.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// TypeOf returns the type tag of a live node.
func (g *Graph) TypeOf(h backend.Handle) (string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, err := g.idOf(h)
	if err != nil {
		return "", err
	}
	return g.nodes[id].typeTag, nil
}

// HasEdge reports whether the exact edge exists.
func (g *Graph) HasEdge(src backend.Handle, srcSocket string, dst backend.Handle, dstSocket string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	srcID, err := g.idOf(src)
	if err != nil {
		return false
	}
	dstID, err := g.idOf(dst)
	if err != nil {
		return false
	}
	for _, e := range g.edges {
		if e.src == srcID && e.srcSocket == srcSocket && e.dst == dstID && e.dstSocket == dstSocket {
			return true
		}
	}
	return false
}

// idOf validates a handle against the live node set. Callers hold g.mu.
func (g *Graph) idOf(h backend.Handle) (int, error) {
	hh, ok := h.(handle)
	if !ok {
		return 0, fmt.Errorf("inmemorygraph: foreign handle %v", h)
	}
	if _, ok := g.nodes[hh.id]; !ok {
		return 0, fmt.Errorf("inmemorygraph: %s is not a live node", hh)
	}
	return hh.id, nil
}
