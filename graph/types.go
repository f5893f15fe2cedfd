// SPDX-License-Identifier: MIT

package graph

import (
	"errors"
	"sync"

	"github.com/emirpasic/gods/maps/treemap"

	"github.com/katalvlaran/algraph/alg"
)

// Sentinel errors for graph operations.
var (
	// ErrMissingNode indicates a reference to a node id that is not in the graph.
	ErrMissingNode = errors.New("graph: node not found")

	// ErrEdgeNotFound indicates a reference to an edge id that is not in the graph.
	ErrEdgeNotFound = errors.New("graph: edge not found")

	// ErrSelfConfluence indicates a Confluence edge whose endpoints coincide.
	ErrSelfConfluence = errors.New("graph: confluence edge endpoints must differ")

	// ErrRootRemoval indicates an attempt to remove the root node.
	ErrRootRemoval = errors.New("graph: root node cannot be removed")

	// ErrImmutableEdge indicates an attempt to edit a Confluence edge.
	ErrImmutableEdge = errors.New("graph: confluence edges are immutable")

	// ErrDuplicateEdge indicates an edit that would give an edge the
	// (source, target, kind, segment) of another edge.
	ErrDuplicateEdge = errors.New("graph: duplicate edge")

	// ErrBadSnapshot indicates a snapshot that cannot be loaded.
	ErrBadSnapshot = errors.New("graph: invalid snapshot")
)

// EdgeKind distinguishes primary expansion edges from confluence links.
type EdgeKind int

const (
	// Normal edges are primary paths; their segment may be replaced.
	Normal EdgeKind = iota
	// Confluence edges record that two independently reached nodes are equivalent.
	Confluence
)

// String returns "normal" or "confluence".
func (k EdgeKind) String() string {
	if k == Confluence {
		return "confluence"
	}

	return "normal"
}

// MarshalText encodes the kind by name.
func (k EdgeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes "normal" or "confluence".
func (k *EdgeKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "normal", "":
		*k = Normal
	case "confluence":
		*k = Confluence
	default:
		return errors.New("graph: unknown edge kind " + string(b))
	}

	return nil
}

// Anchor names a connection handle on a node's rendered box.
type Anchor string

// Handles used by expansion directions.
const (
	HandleLeft   Anchor = "handle-l"
	HandleRight  Anchor = "handle-r"
	HandleTop    Anchor = "handle-t"
	HandleBottom Anchor = "handle-b"
)

// Position is an opaque logical coordinate supplied by layout collaborators.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p shifted by (dx, dy).
func (p Position) Add(dx, dy float64) Position { return Position{X: p.X + dx, Y: p.Y + dy} }

// ConfluenceInfo is the inbound-confluence metadata of a node.
// Variants is a set kept in first-seen order.
type ConfluenceInfo struct {
	Count    uint32   `json:"count"`
	Variants []string `json:"variants,omitempty"`
}

func (c ConfluenceInfo) clone() ConfluenceInfo {
	return ConfluenceInfo{Count: c.Count, Variants: append([]string(nil), c.Variants...)}
}

// HasVariant reports whether label was recorded.
func (c ConfluenceInfo) HasVariant(label string) bool {
	for _, v := range c.Variants {
		if v == label {
			return true
		}
	}

	return false
}

// Node is one puzzle state in the graph. Values returned by Graph methods are copies.
type Node struct {
	ID           string
	Alg          alg.Algorithm
	Raw          alg.Algorithm
	Position     Position
	Terminal     bool
	TargetAnchor Anchor
	Confluence   ConfluenceInfo
}

func (n *Node) clone() Node {
	return Node{
		ID:           n.ID,
		Alg:          n.Alg.Clone(),
		Raw:          n.Raw.Clone(),
		Position:     n.Position,
		Terminal:     n.Terminal,
		TargetAnchor: n.TargetAnchor,
		Confluence:   n.Confluence.clone(),
	}
}

// Edge is a directed segment between two nodes. Values returned by Graph methods are copies.
type Edge struct {
	ID           string
	Source       string
	Target       string
	Segment      alg.Algorithm
	Kind         EdgeKind
	SourceAnchor Anchor
	TargetAnchor Anchor
	// Variant is the adjustment label of a Confluence edge ("exact", "post U'", …).
	Variant string
}

func (e *Edge) clone() Edge {
	c := *e
	c.Segment = e.Segment.Clone()

	return c
}

// NodeOption configures a node at insertion.
type NodeOption func(*Node)

// WithTerminal marks the node as excluded from further expansion.
func WithTerminal(terminal bool) NodeOption {
	return func(n *Node) { n.Terminal = terminal }
}

// WithTargetAnchor records the handle the node's parent edge attaches to.
func WithTargetAnchor(a Anchor) NodeOption {
	return func(n *Node) { n.TargetAnchor = a }
}

// EdgeOption configures an edge at insertion.
type EdgeOption func(*Edge)

// WithAnchors sets source and target handles.
func WithAnchors(source, target Anchor) EdgeOption {
	return func(e *Edge) {
		e.SourceAnchor = source
		e.TargetAnchor = target
	}
}

// WithVariant sets the adjustment label of a Confluence edge.
func WithVariant(label string) EdgeOption {
	return func(e *Edge) { e.Variant = label }
}

// EventKind classifies a graph mutation.
type EventKind int

// Mutation kinds delivered to observers.
const (
	NodeInserted EventKind = iota
	NodeUpdated
	NodeRemoved
	EdgeInserted
	EdgeUpdated
	EdgeRemoved
	GraphLoaded
	GraphReset
)

// Event describes one mutation. ID is the affected node or edge id
// (empty for GraphLoaded and GraphReset).
type Event struct {
	Kind EventKind
	ID   string
}

// Observer receives events after each mutation, outside the graph lock.
type Observer func(Event)

// GraphOption configures a Graph before creation.
type GraphOption func(*Graph)

// WithObserver registers an observer.
func WithObserver(o Observer) GraphOption {
	return func(g *Graph) {
		if o != nil {
			g.observers = append(g.observers, o)
		}
	}
}

// WithRootPosition places the root node.
func WithRootPosition(p Position) GraphOption {
	return func(g *Graph) { g.rootPos = p }
}

// edgeKey identifies an edge for duplicate suppression.
type edgeKey struct {
	source, target string
	kind           EdgeKind
	segment        string
}

func keyOf(e *Edge) edgeKey {
	return edgeKey{source: e.Source, target: e.Target, kind: e.Kind, segment: e.Segment.String()}
}

// Graph is the state graph.
//
// nodes and edges are gods treemaps keyed by numeric id suffix, so iteration
// is insertion order. out/in index edge ids per endpoint; dup indexes edge
// ids by their duplicate-suppression key.
type Graph struct {
	mu sync.RWMutex

	nodeSeq uint64 // last issued node number
	edgeSeq uint64 // last issued edge number
	rootID  string
	rootPos Position

	nodes *treemap.Map // int → *Node
	edges *treemap.Map // int → *Edge
	out   map[string]map[string]struct{}
	in    map[string]map[string]struct{}
	dup   map[edgeKey]string

	observers []Observer
}

// NewGraph creates a graph containing only the root node "n-1" with an empty algorithm.
// Complexity: O(1).
func NewGraph(opts ...GraphOption) *Graph {
	g := &Graph{}
	for _, opt := range opts {
		opt(g)
	}
	g.resetLocked()

	return g
}

// resetLocked clears storage, restarts both counters and recreates the root.
// Callers hold g.mu or own g exclusively.
func (g *Graph) resetLocked() {
	g.nodeSeq, g.edgeSeq = 0, 0
	g.nodes = newArena()
	g.edges = newArena()
	g.out = make(map[string]map[string]struct{})
	g.in = make(map[string]map[string]struct{})
	g.dup = make(map[edgeKey]string)
	root := g.newNodeLocked(alg.Algorithm{}, alg.Algorithm{}, g.rootPos)
	g.rootID = root.ID
}

// newArena returns an id-ordered map keyed by numeric id suffix.
func newArena() *treemap.Map { return treemap.NewWithIntComparator() }
