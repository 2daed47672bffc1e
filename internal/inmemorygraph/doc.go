// Package inmemorygraph provides an ephemeral, in-memory implementation of
// the backend.Graph capability.
//
// It serves two roles. It is the test double for everything the compiler
// does, with inspection helpers (node/edge counts, edge lookups) that let
// tests assert on the exact shape of a materialized graph. And it carries a
// small constant-folding evaluator for the bundled node types, so channel
// compositing can be verified end to end without a real render runtime.
//
// Compiles are single-writer by design, so the mutex here only guards
// against concurrent inspection from tests.
package inmemorygraph
