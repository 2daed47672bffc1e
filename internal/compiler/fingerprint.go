package compiler

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// fingerprint computes the structural shape signature of a materialized
// graph: every node key with its type in creation order, and every edge in
// creation order. Property values are deliberately excluded — the
// fingerprint answers "same shape?", not "same state?". Two graphs with
// equal fingerprints are snapshot-compatible.
func fingerprint(m *MaterializedGraph) string {
	var sb strings.Builder
	for _, key := range m.creationOrder {
		fmt.Fprintf(&sb, "node|%s|%s\n", key, m.nodeTypes[key])
	}
	for _, e := range m.edges {
		fmt.Fprintf(&sb, "edge|%s|%s|%s|%s\n", e.srcKey, e.srcSocket, e.dstKey, e.dstSocket)
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}
