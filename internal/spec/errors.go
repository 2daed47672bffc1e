package spec

import "errors"

// ErrDuplicateIdentifier is returned when a node or embedded builder is
// declared under an identifier that already exists in the same scope.
var ErrDuplicateIdentifier = errors.New("duplicate identifier")

// ErrUnresolvedLinkEndpoint is returned when an edge references an identifier
// that is not declared in the visible scope, or when a linked layer's owner
// cannot be found. A compile that hits it leaves no partial graph behind.
var ErrUnresolvedLinkEndpoint = errors.New("unresolved link endpoint")
