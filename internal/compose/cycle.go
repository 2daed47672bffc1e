package compose

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/vk/layergraphgo/internal/layer"
)

// DetectLinkCycle walks the link_target edges of every layer in the
// channel with a depth-first search and reports the first cycle found.
// It must run before any compose or compile touches the backend: a
// cyclic configuration never gets a partial graph.
func DetectLinkCycle(c *layer.Channel) error {
	byUID := make(map[uuid.UUID]*layer.Layer)
	c.Walk(func(l *layer.Layer) bool {
		byUID[l.UID] = l
		return true
	})

	visiting := make(map[uuid.UUID]bool)
	visited := make(map[uuid.UUID]bool)

	var visit func(l *layer.Layer) error
	visit = func(l *layer.Layer) error {
		visiting[l.UID] = true
		if l.LinkTarget != nil {
			if owner, ok := byUID[*l.LinkTarget]; ok {
				if visiting[owner.UID] {
					return fmt.Errorf("%w: involving layer %q", ErrCyclicLinkReference, owner.Name)
				}
				if !visited[owner.UID] {
					if err := visit(owner); err != nil {
						return err
					}
				}
			}
		}
		delete(visiting, l.UID)
		visited[l.UID] = true
		return nil
	}

	for _, l := range byUID {
		if !visited[l.UID] {
			if err := visit(l); err != nil {
				return err
			}
		}
	}
	return nil
}
