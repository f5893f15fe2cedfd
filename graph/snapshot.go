// SPDX-License-Identifier: MIT

// File: snapshot.go
// Role: serializable view of the whole graph and reload from that view.
//
// Determinism:
//   - Snapshot lists nodes and edges in insertion (id) order; algorithms are
//     rendered as canonical move strings.
package graph

import (
	"fmt"

	"github.com/katalvlaran/algraph/alg"
)

// NodeRecord is the serializable form of a Node.
type NodeRecord struct {
	ID           string         `json:"id"`
	Alg          string         `json:"alg"`
	Raw          string         `json:"raw,omitempty"`
	Position     Position       `json:"position"`
	Terminal     bool           `json:"terminal,omitempty"`
	TargetAnchor Anchor         `json:"targetAnchor,omitempty"`
	Confluence   ConfluenceInfo `json:"confluence"`
}

// EdgeRecord is the serializable form of an Edge.
type EdgeRecord struct {
	ID           string   `json:"id"`
	Source       string   `json:"source"`
	Target       string   `json:"target"`
	Segment      string   `json:"segment"`
	Kind         EdgeKind `json:"kind"`
	SourceAnchor Anchor   `json:"sourceAnchor,omitempty"`
	TargetAnchor Anchor   `json:"targetAnchor,omitempty"`
	Variant      string   `json:"variant,omitempty"`
}

// Snapshot is the full graph shape exchanged with layout and persistence collaborators.
type Snapshot struct {
	RootID string       `json:"rootId,omitempty"`
	Nodes  []NodeRecord `json:"nodes"`
	Edges  []EdgeRecord `json:"edges"`
}

// Record converts n to its serializable form.
func (n Node) Record() NodeRecord {
	return NodeRecord{
		ID:           n.ID,
		Alg:          n.Alg.String(),
		Raw:          n.Raw.String(),
		Position:     n.Position,
		Terminal:     n.Terminal,
		TargetAnchor: n.TargetAnchor,
		Confluence:   n.Confluence.clone(),
	}
}

// Record converts e to its serializable form.
func (e Edge) Record() EdgeRecord {
	return EdgeRecord{
		ID:           e.ID,
		Source:       e.Source,
		Target:       e.Target,
		Segment:      e.Segment.String(),
		Kind:         e.Kind,
		SourceAnchor: e.SourceAnchor,
		TargetAnchor: e.TargetAnchor,
		Variant:      e.Variant,
	}
}

// Snapshot returns the current graph in serializable form.
func (g *Graph) Snapshot() Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	s := Snapshot{
		RootID: g.rootID,
		Nodes:  make([]NodeRecord, 0, g.nodes.Size()),
		Edges:  make([]EdgeRecord, 0, g.edges.Size()),
	}
	nit := g.nodes.Iterator()
	for nit.Next() {
		s.Nodes = append(s.Nodes, nit.Value().(*Node).Record())
	}
	eit := g.edges.Iterator()
	for eit.Next() {
		s.Edges = append(s.Edges, eit.Value().(*Edge).Record())
	}

	return s
}

// Load replaces the graph content with s.
//
// Implementation:
//   - Stage 1: Parse every node (ids must read "n-<k>", unique, algorithms parseable).
//   - Stage 2: Pick the root: s.RootID when set, otherwise the lowest-id node with
//     an empty algorithm; it must exist and have an empty algorithm.
//   - Stage 3: Parse and link every edge (ids "e<k>", endpoints present, no
//     Confluence self-loop). Duplicates are dropped.
//   - Stage 4: Recount inbound confluence from the loaded Confluence edges,
//     keeping recorded variant labels.
//   - Stage 5: Set both counters to the maximum numeric suffix, so the next
//     issued ids are max+1.
//
// Errors:
//   - ErrBadSnapshot wrapping the first offending record. The graph is left
//     unchanged on error.
func (g *Graph) Load(s Snapshot) error {
	staged := &Graph{observers: g.observers, rootPos: g.rootPos}
	if err := staged.loadInto(s); err != nil {
		return err
	}

	g.mu.Lock()
	g.nodeSeq, g.edgeSeq = staged.nodeSeq, staged.edgeSeq
	g.rootID = staged.rootID
	g.nodes, g.edges = staged.nodes, staged.edges
	g.out, g.in, g.dup = staged.out, staged.in, staged.dup
	g.mu.Unlock()

	g.notify(Event{Kind: GraphLoaded})

	return nil
}

func (g *Graph) loadInto(s Snapshot) error {
	g.nodes = newArena()
	g.edges = newArena()
	g.out = make(map[string]map[string]struct{})
	g.in = make(map[string]map[string]struct{})
	g.dup = make(map[edgeKey]string)

	var maxNode, maxEdge uint64
	for _, rec := range s.Nodes {
		seq, ok := NumericSuffix(rec.ID, NodeIDPrefix)
		if !ok {
			return fmt.Errorf("%w: node id %q", ErrBadSnapshot, rec.ID)
		}
		if _, dup := g.nodes.Get(int(seq)); dup {
			return fmt.Errorf("%w: duplicate node id %q", ErrBadSnapshot, rec.ID)
		}
		accumulated, err := alg.Parse(rec.Alg)
		if err != nil {
			return fmt.Errorf("%w: node %q: %w", ErrBadSnapshot, rec.ID, err)
		}
		raw, err := alg.Parse(rec.Raw)
		if err != nil {
			return fmt.Errorf("%w: node %q: %w", ErrBadSnapshot, rec.ID, err)
		}
		n := &Node{
			ID:           rec.ID,
			Alg:          accumulated,
			Raw:          raw,
			Position:     rec.Position,
			Terminal:     rec.Terminal,
			TargetAnchor: rec.TargetAnchor,
			Confluence:   ConfluenceInfo{Variants: append([]string(nil), rec.Confluence.Variants...)},
		}
		g.nodes.Put(int(seq), n)
		g.out[n.ID] = make(map[string]struct{})
		g.in[n.ID] = make(map[string]struct{})
		if seq > maxNode {
			maxNode = seq
		}
	}

	g.rootID = s.RootID
	if g.rootID == "" {
		it := g.nodes.Iterator()
		for it.Next() {
			if n := it.Value().(*Node); n.Alg.IsIdentity() {
				g.rootID = n.ID
				break
			}
		}
	}
	root, ok := g.getNodeLocked(g.rootID)
	if !ok || !root.Alg.IsIdentity() {
		return fmt.Errorf("%w: no root with an empty algorithm", ErrBadSnapshot)
	}

	for _, rec := range s.Edges {
		seq, ok := NumericSuffix(rec.ID, EdgeIDPrefix)
		if !ok {
			return fmt.Errorf("%w: edge id %q", ErrBadSnapshot, rec.ID)
		}
		if _, dup := g.edges.Get(int(seq)); dup {
			return fmt.Errorf("%w: duplicate edge id %q", ErrBadSnapshot, rec.ID)
		}
		segment, err := alg.Parse(rec.Segment)
		if err != nil {
			return fmt.Errorf("%w: edge %q: %w", ErrBadSnapshot, rec.ID, err)
		}
		if _, ok := g.getNodeLocked(rec.Source); !ok {
			return fmt.Errorf("%w: edge %q: %w: %q", ErrBadSnapshot, rec.ID, ErrMissingNode, rec.Source)
		}
		dst, ok := g.getNodeLocked(rec.Target)
		if !ok {
			return fmt.Errorf("%w: edge %q: %w: %q", ErrBadSnapshot, rec.ID, ErrMissingNode, rec.Target)
		}
		if rec.Kind == Confluence && rec.Source == rec.Target {
			return fmt.Errorf("%w: edge %q: %w", ErrBadSnapshot, rec.ID, ErrSelfConfluence)
		}
		e := &Edge{
			ID:           rec.ID,
			Source:       rec.Source,
			Target:       rec.Target,
			Segment:      segment,
			Kind:         rec.Kind,
			SourceAnchor: rec.SourceAnchor,
			TargetAnchor: rec.TargetAnchor,
			Variant:      rec.Variant,
		}
		if seq > maxEdge {
			maxEdge = seq
		}
		key := keyOf(e)
		if _, dup := g.dup[key]; dup {
			continue
		}
		g.edges.Put(int(seq), e)
		g.out[e.Source][e.ID] = struct{}{}
		g.in[e.Target][e.ID] = struct{}{}
		g.dup[key] = e.ID
		if e.Kind == Confluence {
			recordVariant(dst, e.Variant)
		}
	}

	g.nodeSeq, g.edgeSeq = maxNode, maxEdge

	return nil
}
