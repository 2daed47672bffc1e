package ident

import (
	"fmt"
	"regexp"
	"strings"
)

// Reserved local names marking a builder's external entry and exit points.
// They are always addressable in any scope and can never be declared.
const (
	Start = "START"
	End   = "END"
)

// segmentRegex validates a single path segment, e.g. `solid_1` or `folder-a`.
var segmentRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ID is a scope-qualified identifier: an ordered path of scope names ending in
// the local name, serialized as a dot-separated string such as
// `color.folder_1.solid`. The empty ID is the root scope.
type ID struct {
	path []string
}

// Root returns the empty root-scope ID.
func Root() ID {
	return ID{}
}

// New builds an ID from path segments. Panics on an invalid segment; callers
// parsing untrusted input should use Parse instead.
func New(segments ...string) ID {
	for _, s := range segments {
		if !ValidName(s) {
			panic(fmt.Sprintf("ident: invalid segment %q", s))
		}
	}
	return ID{path: append([]string(nil), segments...)}
}

// Parse converts a canonical dot-separated string into an ID.
func Parse(s string) (ID, error) {
	if s == "" {
		return Root(), nil
	}
	parts := strings.Split(s, ".")
	for _, p := range parts {
		if !ValidName(p) {
			return ID{}, fmt.Errorf("ident: invalid segment %q in %q", p, s)
		}
	}
	return ID{path: parts}, nil
}

// ValidName reports whether name is usable as a declared identifier segment.
// The reserved boundary names are valid segments but cannot be declared; that
// rule is enforced by the spec builder, not here.
func ValidName(name string) bool {
	return segmentRegex.MatchString(name)
}

// Reserved reports whether name is one of the boundary pseudo-identifiers.
func Reserved(name string) bool {
	return name == Start || name == End
}

// Child returns the ID for name declared inside the scope identified by id.
// This is the namespacing step: embedding a builder prefixes every identifier
// it declares with the embedding identifier, so siblings can never collide.
func (id ID) Child(name string) ID {
	path := make([]string, 0, len(id.path)+1)
	path = append(path, id.path...)
	path = append(path, name)
	return ID{path: path}
}

// Local returns the innermost segment, or "" for the root scope.
func (id ID) Local() string {
	if len(id.path) == 0 {
		return ""
	}
	return id.path[len(id.path)-1]
}

// Parent returns the enclosing scope's ID. The root scope is its own parent.
func (id ID) Parent() ID {
	if len(id.path) == 0 {
		return id
	}
	return ID{path: id.path[:len(id.path)-1]}
}

// IsRoot reports whether id is the root scope.
func (id ID) IsRoot() bool {
	return len(id.path) == 0
}

// String serializes the ID into its canonical dotted form.
func (id ID) String() string {
	return strings.Join(id.path, ".")
}

// Equal checks for deep equality between two IDs.
func (id ID) Equal(other ID) bool {
	if len(id.path) != len(other.path) {
		return false
	}
	for i := range id.path {
		if id.path[i] != other.path[i] {
			return false
		}
	}
	return true
}
