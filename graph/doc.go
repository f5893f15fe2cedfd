// SPDX-License-Identifier: MIT

// Package graph holds the state graph grown by package expand: an arena of
// nodes indexed by id plus an edge list, never raw node-to-node references.
//
// Nodes carry the accumulated algorithm that reaches their state, the raw
// segment of the edge that created them, a logical position, a terminal flag
// and inbound-confluence metadata. Edges are directed and come in two kinds:
//
//   - Normal      primary expansion paths; the segment may be edited
//   - Confluence  informational links between equivalent states; immutable
//
// The graph is a general directed graph from the start: a node may have
// several inbound edges (converging cluster children, confluence links).
//
// Identifiers:
//
//   - Nodes are "n-1", "n-2", … with n-1 the root created by NewGraph.
//   - Edges are "e1", "e2", ….
//   - Both counters are monotonic; ids are never reused within a session,
//     even across deletions. Reset starts a new session; Load re-derives
//     both counters as max(numeric suffix)+1.
//
// Invariants enforced here:
//
//   - Exactly one root with an empty accumulated algorithm; it cannot be removed.
//   - A Confluence edge joins two distinct nodes present at creation time.
//   - Confluence.Count on a node equals the number of Confluence edges targeting it.
//   - InsertEdge is a no-op returning the existing edge for a duplicate
//     (source, target, kind, segment).
//
// Traversal:
//
//   - Walk        breadth-first along chosen edge kinds, with OnVisit hooks
//   - ShortestRoute  fewest moves between two nodes, Confluence links included
//
// Determinism:
//   - Nodes() and Edges() enumerate in insertion order, which is id order.
//
// Concurrency:
//   - All methods are safe for concurrent use (one sync.RWMutex guards the
//     arena, the edge list and adjacency). Observers run after the lock is
//     released and may call back into the graph.
package graph
