/*
Package ident provides the structured, type-safe representation for node
identifiers within the system.

An identifier is a dot-separated path of segments, e.g. `color.folder_1.solid`.
The leading segments name the enclosing scopes (the chain of embedded builders)
and the final segment is the local name declared by the user. Scope prefixing
happens when a builder is embedded into another, which is what guarantees that
identifiers declared in sibling scopes can never collide in the materialized
graph.

The reserved names START and END denote a builder's external entry and exit
boundary. They exist in every scope and can never be declared by callers.
*/
package ident
