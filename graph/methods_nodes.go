// SPDX-License-Identifier: MIT

// File: methods_nodes.go
// Role: node lifecycle, mutation and queries.
//
// Determinism:
//   - Nodes() returns nodes in insertion (id) order.
//
// Concurrency:
//   - Mutations under g.mu write lock; queries under read lock.
//   - Observers are notified after the lock is released.
package graph

import (
	"fmt"

	"github.com/katalvlaran/algraph/alg"
)

func (g *Graph) notify(events ...Event) {
	if len(g.observers) == 0 {
		return
	}
	for _, ev := range events {
		for _, o := range g.observers {
			o(ev)
		}
	}
}

func (g *Graph) getNodeLocked(id string) (*Node, bool) {
	k, ok := nodeSlot(id)
	if !ok {
		return nil, false
	}
	v, found := g.nodes.Get(k)
	if !found {
		return nil, false
	}

	return v.(*Node), true
}

func (g *Graph) newNodeLocked(accumulated, raw alg.Algorithm, pos Position, opts ...NodeOption) *Node {
	id, k := g.nextNodeID()
	n := &Node{ID: id, Alg: accumulated.Clone(), Raw: raw.Clone(), Position: pos}
	for _, opt := range opts {
		opt(n)
	}
	g.nodes.Put(k, n)
	g.out[id] = make(map[string]struct{})
	g.in[id] = make(map[string]struct{})

	return n
}

// InsertNode adds a node with a freshly issued id and returns a copy of it.
//
// Implementation:
//   - Stage 1: Issue the next node id ("n-<k>", k strictly increasing).
//   - Stage 2: Store copies of accumulated and raw so callers may reuse their slices.
//   - Stage 3: Apply NodeOptions, bootstrap adjacency buckets, notify observers.
//
// Complexity:
//   - Time O(log V + |alg|), Space O(|alg|).
func (g *Graph) InsertNode(accumulated, raw alg.Algorithm, pos Position, opts ...NodeOption) Node {
	g.mu.Lock()
	n := g.newNodeLocked(accumulated, raw, pos, opts...)
	out := n.clone()
	g.mu.Unlock()

	g.notify(Event{Kind: NodeInserted, ID: out.ID})

	return out
}

// RootID returns the id of the root node.
func (g *Graph) RootID() string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.rootID
}

// Root returns a copy of the root node.
func (g *Graph) Root() Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, _ := g.getNodeLocked(g.rootID)

	return n.clone()
}

// HasNode reports whether id is present.
func (g *Graph) HasNode(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.getNodeLocked(id)

	return ok
}

// Node returns a copy of node id, or ErrMissingNode.
func (g *Graph) Node(id string) (Node, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.getNodeLocked(id)
	if !ok {
		return Node{}, fmt.Errorf("%w: %q", ErrMissingNode, id)
	}

	return n.clone(), nil
}

// Nodes returns copies of all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Node, 0, g.nodes.Size())
	it := g.nodes.Iterator()
	for it.Next() {
		out = append(out, it.Value().(*Node).clone())
	}

	return out
}

// NodeCount returns the number of nodes, root included.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.nodes.Size()
}

// RemoveNode deletes a node and every edge touching it.
//
// Implementation:
//   - Stage 1: Reject the root (ErrRootRemoval) and unknown ids (ErrMissingNode).
//   - Stage 2: Remove each incident edge; for a removed Confluence edge whose
//     surviving target is another node, decrement that target's count.
//   - Stage 3: Drop the node and its adjacency buckets.
//
// Behavior highlights:
//   - The node id is never reissued; the counter is untouched.
//
// Complexity:
//   - Time O(deg(id)·log E), Space O(deg(id)).
func (g *Graph) RemoveNode(id string) error {
	g.mu.Lock()
	if id == g.rootID {
		g.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrRootRemoval, id)
	}
	n, ok := g.getNodeLocked(id)
	if !ok {
		g.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrMissingNode, id)
	}

	incident := make([]string, 0, len(g.out[id])+len(g.in[id]))
	for eid := range g.out[id] {
		incident = append(incident, eid)
	}
	for eid := range g.in[id] {
		if _, self := g.out[id][eid]; !self {
			incident = append(incident, eid)
		}
	}
	sortEdgeIDs(incident)

	events := make([]Event, 0, len(incident)+1)
	for _, eid := range incident {
		g.removeEdgeLocked(eid)
		events = append(events, Event{Kind: EdgeRemoved, ID: eid})
	}
	k, _ := nodeSlot(n.ID)
	g.nodes.Remove(k)
	delete(g.out, id)
	delete(g.in, id)
	events = append(events, Event{Kind: NodeRemoved, ID: id})
	g.mu.Unlock()

	g.notify(events...)

	return nil
}

// updateNode applies fn to node id under the write lock and notifies observers.
func (g *Graph) updateNode(id string, fn func(*Node)) error {
	g.mu.Lock()
	n, ok := g.getNodeLocked(id)
	if !ok {
		g.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrMissingNode, id)
	}
	fn(n)
	g.mu.Unlock()

	g.notify(Event{Kind: NodeUpdated, ID: id})

	return nil
}

// UpdateNodePosition moves node id.
func (g *Graph) UpdateNodePosition(id string, pos Position) error {
	return g.updateNode(id, func(n *Node) { n.Position = pos })
}

// UpdateNodeAlgorithm replaces the accumulated algorithm of node id.
func (g *Graph) UpdateNodeAlgorithm(id string, accumulated alg.Algorithm) error {
	cp := accumulated.Clone()

	return g.updateNode(id, func(n *Node) { n.Alg = cp })
}

// UpdateNodeRaw replaces the raw incoming segment of node id.
func (g *Graph) UpdateNodeRaw(id string, raw alg.Algorithm) error {
	cp := raw.Clone()

	return g.updateNode(id, func(n *Node) { n.Raw = cp })
}

// SetTerminal sets or clears the terminal flag of node id.
func (g *Graph) SetTerminal(id string, terminal bool) error {
	return g.updateNode(id, func(n *Node) { n.Terminal = terminal })
}

// RecordInboundConfluence increments the inbound-confluence count of node id
// and adds label to its variant set if new. InsertEdge calls it for every
// created Confluence edge; direct calls are for collaborators restoring state.
func (g *Graph) RecordInboundConfluence(id, label string) error {
	return g.updateNode(id, func(n *Node) { recordVariant(n, label) })
}

func recordVariant(n *Node, label string) {
	n.Confluence.Count++
	if label != "" && !n.Confluence.HasVariant(label) {
		n.Confluence.Variants = append(n.Confluence.Variants, label)
	}
}

// Reset discards every node and edge, restarts both id counters and recreates
// the root. It begins a new session.
func (g *Graph) Reset() {
	g.mu.Lock()
	g.resetLocked()
	g.mu.Unlock()

	g.notify(Event{Kind: GraphReset})
}
