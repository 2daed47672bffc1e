/*
Package compiler translates a spec.Builder into live nodes and edges inside a
backend.Graph, and owns the MaterializedGraph bookkeeping that makes repeated
compilation safe.

A compile is staged: every node it creates is tracked, and the first failure
tears the staging down completely before returning, leaving the previously
materialized graph untouched. Only after the new graph is fully linked and
property-restored is the old one destroyed. Callers therefore never observe a
half-built graph.

Across compiles the compiler preserves user-tuned property values: before a
rebuild it snapshots the live values of every property the previous spec
declared, and reapplies them afterwards unless the new spec declares a
different value for that property (a changed spec always wins) or the caller
forces a clean rebuild.

Embedded builders are compiled recursively into namespaced sub-scopes. A
builder's START/END boundary sockets become reroute pass-through nodes,
created lazily when an edge first touches them; the same reroute serves both
the inside of the scope and any parent edge that addresses the embed.
*/
package compiler
