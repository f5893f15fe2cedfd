// SPDX-License-Identifier: MIT

// File: methods_edges.go
// Role: edge lifecycle & queries: InsertEdge/RemoveEdge/Edge/Edges/OutEdges/InEdges,
//       segment edits and primary-parent lookup.
// Determinism:
//   - Edges(), OutEdges(), InEdges() return edges sorted by numeric id asc.
//   - Edge ids are monotonic and stable ("e" + decimal).
// Concurrency:
//   - Mutations under g.mu write lock, queries under read lock.
package graph

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/algraph/alg"
)

// sortEdgeIDs orders ids by numeric suffix ("e2" before "e10").
func sortEdgeIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		a, _ := edgeSlot(ids[i])
		b, _ := edgeSlot(ids[j])
		return a < b
	})
}

func (g *Graph) getEdgeLocked(id string) (*Edge, bool) {
	k, ok := edgeSlot(id)
	if !ok {
		return nil, false
	}
	v, found := g.edges.Get(k)
	if !found {
		return nil, false
	}

	return v.(*Edge), true
}

// InsertEdge links source → target with segment.
//
// Implementation:
//   - Stage 1: Both endpoints must exist (ErrMissingNode); a Confluence edge must
//     join distinct nodes (ErrSelfConfluence).
//   - Stage 2: If an edge with the same (source, target, kind, segment) exists,
//     return it with created=false.
//   - Stage 3: Otherwise issue "e<k>", store, index, and for a Confluence edge
//     record the inbound confluence on target (count++, variant added).
//
// Returns:
//   - Edge: a copy of the new or existing edge.
//   - bool: true iff a new edge was created.
//
// Complexity:
//   - Time O(log E + |segment|), Space O(|segment|).
func (g *Graph) InsertEdge(source, target string, segment alg.Algorithm, kind EdgeKind, opts ...EdgeOption) (Edge, bool, error) {
	g.mu.Lock()
	e, created, err := g.insertEdgeLocked(source, target, segment, kind, opts...)
	if err != nil {
		g.mu.Unlock()
		return Edge{}, false, err
	}
	out := e.clone()
	g.mu.Unlock()

	if created {
		events := []Event{{Kind: EdgeInserted, ID: out.ID}}
		if kind == Confluence {
			events = append(events, Event{Kind: NodeUpdated, ID: target})
		}
		g.notify(events...)
	}

	return out, created, nil
}

func (g *Graph) insertEdgeLocked(source, target string, segment alg.Algorithm, kind EdgeKind, opts ...EdgeOption) (*Edge, bool, error) {
	if _, ok := g.getNodeLocked(source); !ok {
		return nil, false, fmt.Errorf("%w: source %q", ErrMissingNode, source)
	}
	dst, ok := g.getNodeLocked(target)
	if !ok {
		return nil, false, fmt.Errorf("%w: target %q", ErrMissingNode, target)
	}
	if kind == Confluence && source == target {
		return nil, false, fmt.Errorf("%w: %q", ErrSelfConfluence, source)
	}

	e := &Edge{Source: source, Target: target, Segment: segment.Clone(), Kind: kind}
	for _, opt := range opts {
		opt(e)
	}
	key := keyOf(e)
	if existing, dup := g.dup[key]; dup {
		prev, _ := g.getEdgeLocked(existing)
		return prev, false, nil
	}

	var k int
	e.ID, k = g.nextEdgeID()
	g.edges.Put(k, e)
	g.out[source][e.ID] = struct{}{}
	g.in[target][e.ID] = struct{}{}
	g.dup[key] = e.ID
	if kind == Confluence {
		recordVariant(dst, e.Variant)
	}

	return e, true, nil
}

// removeEdgeLocked unlinks edge id. A Confluence edge gives back one count on
// its target; when the count reaches zero the variant set is cleared.
func (g *Graph) removeEdgeLocked(id string) {
	e, ok := g.getEdgeLocked(id)
	if !ok {
		return
	}
	k, _ := edgeSlot(id)
	g.edges.Remove(k)
	delete(g.out[e.Source], id)
	delete(g.in[e.Target], id)
	delete(g.dup, keyOf(e))
	if e.Kind != Confluence {
		return
	}
	if dst, ok := g.getNodeLocked(e.Target); ok && dst.Confluence.Count > 0 {
		dst.Confluence.Count--
		if dst.Confluence.Count == 0 {
			dst.Confluence.Variants = nil
		}
	}
}

// RemoveEdge deletes edge id, or returns ErrEdgeNotFound.
func (g *Graph) RemoveEdge(id string) error {
	g.mu.Lock()
	e, ok := g.getEdgeLocked(id)
	if !ok {
		g.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrEdgeNotFound, id)
	}
	kind, target := e.Kind, e.Target
	g.removeEdgeLocked(id)
	g.mu.Unlock()

	events := []Event{{Kind: EdgeRemoved, ID: id}}
	if kind == Confluence {
		events = append(events, Event{Kind: NodeUpdated, ID: target})
	}
	g.notify(events...)

	return nil
}

// Edge returns a copy of edge id, or ErrEdgeNotFound.
func (g *Graph) Edge(id string) (Edge, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.getEdgeLocked(id)
	if !ok {
		return Edge{}, fmt.Errorf("%w: %q", ErrEdgeNotFound, id)
	}

	return e.clone(), nil
}

// Edges returns copies of all edges in insertion order.
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Edge, 0, g.edges.Size())
	it := g.edges.Iterator()
	for it.Next() {
		out = append(out, it.Value().(*Edge).clone())
	}

	return out
}

// EdgeCount returns the number of edges of any kind.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.edges.Size()
}

func (g *Graph) collectLocked(bucket map[string]struct{}, kinds []EdgeKind) []Edge {
	ids := make([]string, 0, len(bucket))
	for eid := range bucket {
		ids = append(ids, eid)
	}
	sortEdgeIDs(ids)
	out := make([]Edge, 0, len(ids))
	for _, eid := range ids {
		e, _ := g.getEdgeLocked(eid)
		if matchKind(e.Kind, kinds) {
			out = append(out, e.clone())
		}
	}

	return out
}

func matchKind(k EdgeKind, kinds []EdgeKind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, want := range kinds {
		if k == want {
			return true
		}
	}

	return false
}

// OutEdges returns edges leaving id, optionally restricted to kinds.
func (g *Graph) OutEdges(id string, kinds ...EdgeKind) ([]Edge, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	bucket, ok := g.out[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingNode, id)
	}

	return g.collectLocked(bucket, kinds), nil
}

// InEdges returns edges entering id, optionally restricted to kinds.
func (g *Graph) InEdges(id string, kinds ...EdgeKind) ([]Edge, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	bucket, ok := g.in[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingNode, id)
	}

	return g.collectLocked(bucket, kinds), nil
}

// PrimaryParent returns the earliest Normal edge entering id.
// ok is false for the root and for nodes reached only by Confluence edges.
func (g *Graph) PrimaryParent(id string) (Edge, bool, error) {
	in, err := g.InEdges(id, Normal)
	if err != nil {
		return Edge{}, false, err
	}
	if len(in) == 0 {
		return Edge{}, false, nil
	}

	return in[0], true, nil
}

// UpdateEdgeSegment replaces the segment of a Normal edge.
//
// Errors:
//   - ErrEdgeNotFound for unknown ids.
//   - ErrImmutableEdge for Confluence edges.
//   - ErrDuplicateEdge when another edge already joins the same endpoints
//     with segment; the edge is left unchanged.
//
// Notes:
//   - Accumulated algorithms downstream are not touched here; package expand
//     recomputes them.
func (g *Graph) UpdateEdgeSegment(id string, segment alg.Algorithm) (Edge, error) {
	g.mu.Lock()
	e, ok := g.getEdgeLocked(id)
	if !ok {
		g.mu.Unlock()
		return Edge{}, fmt.Errorf("%w: %q", ErrEdgeNotFound, id)
	}
	if e.Kind == Confluence {
		g.mu.Unlock()
		return Edge{}, fmt.Errorf("%w: %q", ErrImmutableEdge, id)
	}
	next := edgeKey{source: e.Source, target: e.Target, kind: e.Kind, segment: segment.String()}
	if other, dup := g.dup[next]; dup && other != id {
		g.mu.Unlock()
		return Edge{}, fmt.Errorf("%w: %q already joins %q -> %q with %q", ErrDuplicateEdge, other, e.Source, e.Target, next.segment)
	}
	delete(g.dup, keyOf(e))
	e.Segment = segment.Clone()
	g.dup[next] = e.ID
	out := e.clone()
	g.mu.Unlock()

	g.notify(Event{Kind: EdgeUpdated, ID: id})

	return out, nil
}
