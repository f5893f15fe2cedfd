// SPDX-License-Identifier: MIT

// File: ids.go
// Role: identifier schemes for nodes and edges.
//
// Determinism:
//   - IDFn implementations are pure: the same index always yields the same id.
package graph

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"
)

// Identifier prefixes. Node ids read "n-1", edge ids "e1".
const (
	NodeIDPrefix = "n-"
	EdgeIDPrefix = "e"
)

// IDFn generates an identifier from its one-based sequence number.
type IDFn func(seq uint64) string

// SymbolNumberIDFn returns prefix + decimal sequence, e.g. "n-1", "n-2", …
// Complexity: O(d) where d is the number of decimal digits in seq.
// Panics if seq == 0; sequences start at one.
func SymbolNumberIDFn(prefix string) IDFn {
	return func(seq uint64) string {
		if seq == 0 {
			panic(fmt.Sprintf("SymbolNumberIDFn(%q): seq must be ≥ 1", prefix))
		}
		return prefix + strconv.FormatUint(seq, 10)
	}
}

var (
	nodeIDFn = SymbolNumberIDFn(NodeIDPrefix)
	edgeIDFn = SymbolNumberIDFn(EdgeIDPrefix)
)

// NumericSuffix parses the sequence number of id under prefix.
// It reports false for foreign prefixes, empty or non-decimal suffixes, zero,
// non-canonical spellings such as "n-01", and values that do not fit an int.
func NumericSuffix(id, prefix string) (uint64, bool) {
	if !strings.HasPrefix(id, prefix) {
		return 0, false
	}
	suffix := id[len(prefix):]
	n, err := strconv.ParseUint(suffix, 10, 64)
	if err != nil || n == 0 || n > math.MaxInt || strconv.FormatUint(n, 10) != suffix {
		return 0, false
	}

	return n, true
}

func (g *Graph) nextNodeID() (string, int) {
	seq := atomic.AddUint64(&g.nodeSeq, 1)

	return nodeIDFn(seq), int(seq)
}

func (g *Graph) nextEdgeID() (string, int) {
	seq := atomic.AddUint64(&g.edgeSeq, 1)

	return edgeIDFn(seq), int(seq)
}

// nodeSlot maps a node id to its arena key; ok is false for malformed ids.
func nodeSlot(id string) (int, bool) {
	n, ok := NumericSuffix(id, NodeIDPrefix)

	return int(n), ok
}

func edgeSlot(id string) (int, bool) {
	n, ok := NumericSuffix(id, EdgeIDPrefix)

	return int(n), ok
}
