// Package version tracks the structural schema version of each layer
// kind. A layer compiled under an older version gets a full rebuild with
// its snapshot discarded; there is no partial migration.
package version

import "github.com/vk/layergraphgo/internal/layer"

// current maps each layer kind to the version of the graph shape its
// factory emits. Bump an entry whenever the factory's output shape
// changes in a way a stale snapshot could corrupt.
var current = map[layer.TypeTag]int{
	layer.TypeFolder:     1,
	layer.TypeSolidColor: 2,
	layer.TypeImage:      2,
	layer.TypeGradient:   1,
	layer.TypeTexture:    1,
	layer.TypeAdjustment: 1,
	layer.TypeNodeGroup:  1,
}

// Current returns the schema version for a layer kind, or 0 for a kind
// the table does not know.
func Current(t layer.TypeTag) int {
	return current[t]
}

// Stale reports whether the layer was last compiled under an older
// schema version than its kind currently carries.
func Stale(l *layer.Layer) bool {
	return l.RecordedVersion != Current(l.Type)
}
