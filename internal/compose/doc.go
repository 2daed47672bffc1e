// Package compose turns the layer/channel/group document model into
// builders the compiler can materialize.
//
// A channel is composed in painter's order: the first layer is the base
// and every later layer composites on top through a blend stage node.
// Folders compose their children into one embedded builder and then
// behave like a single opaque layer. Linked layers never duplicate their
// owner's graph; they reference the owner's embedded builder output.
//
// Composition is pure data assembly. The only backend interaction lives
// in Conductor, which pairs a channel with a backend and coalesces dirty
// notifications into single recompiles.
package compose
