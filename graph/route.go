// SPDX-License-Identifier: MIT

package graph

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/emirpasic/gods/queues/priorityqueue"

	"github.com/katalvlaran/algraph/alg"
)

// ErrNoRoute indicates that the target is unreachable from the source.
var ErrNoRoute = errors.New("graph: no route")

// RouteOption configures ShortestRoute.
type RouteOption func(*routeOptions)

type routeOptions struct {
	kinds    []EdgeKind
	maxMoves int
	err      error
}

// WithRouteKinds limits the edge kinds a route may use. The default is every kind.
func WithRouteKinds(kinds ...EdgeKind) RouteOption {
	return func(o *routeOptions) {
		if len(kinds) == 0 {
			o.err = fmt.Errorf("%w: no edge kinds", ErrWalkOption)
			return
		}
		o.kinds = kinds
	}
}

// WithMaxMoves discards routes longer than n moves (n ≥ 0).
func WithMaxMoves(n int) RouteOption {
	return func(o *routeOptions) {
		if n < 0 {
			o.err = fmt.Errorf("%w: max moves %d", ErrWalkOption, n)
			return
		}
		o.maxMoves = n
	}
}

// Route is a cheapest path between two nodes.
type Route struct {
	Nodes []string
	Edges []string
	// Moves is the total segment length along the route.
	Moves int
	// Alg concatenates the segments in route order, unsimplified.
	Alg alg.Algorithm
}

// routeItem is a lazy priority-queue entry; seq breaks ties by push order.
type routeItem struct {
	id    string
	moves int
	seq   int
}

func byMoves(a, b interface{}) int {
	x, y := a.(routeItem), b.(routeItem)
	switch {
	case x.moves != y.moves:
		return x.moves - y.moves
	default:
		return x.seq - y.seq
	}
}

// ShortestRoute finds the route from source to target with the fewest moves,
// weighting each edge by its segment length. Zero-length Confluence links
// are free. Ties resolve toward edges inserted earlier.
//
// Implementation:
//   - Stage 1: Validate options and endpoints.
//   - Stage 2: Dijkstra with lazy decrease-key over a gods priority queue;
//     stale entries are skipped when popped.
//   - Stage 3: Rebuild the path from predecessor edges.
//
// Returns ErrMissingNode for unknown endpoints, ErrWalkOption for bad options
// and ErrNoRoute when target is unreachable within the move limit.
func (g *Graph) ShortestRoute(source, target string, opts ...RouteOption) (Route, error) {
	o := routeOptions{kinds: []EdgeKind{Normal, Confluence}, maxMoves: math.MaxInt}
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return Route{}, o.err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, id := range []string{source, target} {
		if _, ok := g.getNodeLocked(id); !ok {
			return Route{}, fmt.Errorf("%w: %q", ErrMissingNode, id)
		}
	}

	dist := map[string]int{source: 0}
	via := make(map[string]Edge)
	done := make(map[string]bool)
	pq := priorityqueue.NewWith(byMoves)
	seq := 0
	pq.Enqueue(routeItem{id: source})

	for !pq.Empty() {
		v, _ := pq.Dequeue()
		item := v.(routeItem)
		if done[item.id] {
			continue
		}
		done[item.id] = true
		if item.id == target {
			break
		}
		for _, e := range g.collectLocked(g.out[item.id], o.kinds) {
			d := item.moves + e.Segment.Len()
			if d > o.maxMoves {
				continue
			}
			if best, seen := dist[e.Target]; seen && d >= best {
				continue
			}
			dist[e.Target] = d
			via[e.Target] = e
			seq++
			pq.Enqueue(routeItem{id: e.Target, moves: d, seq: seq})
		}
	}
	if !done[target] {
		return Route{}, fmt.Errorf("%w: %q to %q", ErrNoRoute, source, target)
	}

	r := Route{Nodes: []string{target}, Moves: dist[target]}
	var segments []alg.Algorithm
	for at := target; at != source; {
		e := via[at]
		r.Nodes = append(r.Nodes, e.Source)
		r.Edges = append(r.Edges, e.ID)
		segments = append(segments, e.Segment)
		at = e.Source
	}
	slices.Reverse(r.Nodes)
	slices.Reverse(r.Edges)
	slices.Reverse(segments)
	r.Alg = alg.Concat(segments...)

	return r, nil
}
