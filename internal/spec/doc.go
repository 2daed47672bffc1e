/*
Package spec holds the declarative, backend-agnostic description of a node
graph: which nodes exist, how their sockets are wired, and which nested
builders are embedded as pseudo-nodes.

A Builder is pure data. Assembling one has no side effects on any backend,
which is what makes it cheap to throw away and rebuild from scratch on every
edit; translating a Builder into live graph objects is the compiler's job.

Identifiers are local to their declaring builder. An embedded builder is
addressed in its parent like an ordinary node and exposes only its START/END
boundary sockets externally; everything it declares internally is namespaced
away at compile time.
*/
package spec
