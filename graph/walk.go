// SPDX-License-Identifier: MIT

package graph

import (
	"context"
	"errors"
	"fmt"
)

// ErrWalkOption is returned when an invalid WalkOption is supplied.
var ErrWalkOption = errors.New("graph: invalid walk option")

// WalkOption configures Walk via functional arguments. Invalid options are
// recorded and surfaced as ErrWalkOption when Walk runs.
type WalkOption func(*walkOptions)

type walkOptions struct {
	ctx      context.Context
	kinds    []EdgeKind
	maxDepth int
	onVisit  func(n Node, depth int) error
	err      error
}

func defaultWalkOptions() walkOptions {
	return walkOptions{
		ctx:     context.Background(),
		kinds:   []EdgeKind{Normal},
		onVisit: func(Node, int) error { return nil },
	}
}

// WithWalkContext sets a context checked once per dequeued node.
func WithWalkContext(ctx context.Context) WalkOption {
	return func(o *walkOptions) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithWalkKinds selects which edge kinds are followed. The default is Normal only.
func WithWalkKinds(kinds ...EdgeKind) WalkOption {
	return func(o *walkOptions) {
		if len(kinds) == 0 {
			o.err = fmt.Errorf("%w: no edge kinds", ErrWalkOption)
			return
		}
		o.kinds = kinds
	}
}

// WithWalkMaxDepth stops exploring beyond depth d; 0 means no limit.
func WithWalkMaxDepth(d int) WalkOption {
	return func(o *walkOptions) {
		if d < 0 {
			o.err = fmt.Errorf("%w: max depth cannot be negative (%d)", ErrWalkOption, d)
			return
		}
		o.maxDepth = d
	}
}

// WithOnVisit registers a callback for each visited node; an error aborts the walk.
func WithOnVisit(fn func(n Node, depth int) error) WalkOption {
	return func(o *walkOptions) {
		if fn != nil {
			o.onVisit = fn
		}
	}
}

// WalkResult records a breadth-first traversal.
type WalkResult struct {
	Order  []string
	Depth  map[string]int
	Parent map[string]string
}

// PathTo reconstructs the path from the walk start to dest.
func (r *WalkResult) PathTo(dest string) ([]string, error) {
	if _, ok := r.Depth[dest]; !ok {
		return nil, fmt.Errorf("graph: no path to %q", dest)
	}
	path := []string{}
	for cur := dest; ; {
		path = append(path, cur)
		prev, ok := r.Parent[cur]
		if !ok {
			break
		}
		cur = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path, nil
}

type walkItem struct {
	id    string
	depth int
}

// Walk runs a breadth-first traversal from start along outgoing edges.
// Neighbours are expanded in edge-id order, so Order is deterministic.
// Returns ErrMissingNode for an unknown start, ErrWalkOption for bad options,
// ctx errors on cancellation, or any OnVisit error.
func (g *Graph) Walk(start string, opts ...WalkOption) (*WalkResult, error) {
	o := defaultWalkOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}
	if !g.HasNode(start) {
		return nil, fmt.Errorf("%w: %q", ErrMissingNode, start)
	}

	res := &WalkResult{Depth: map[string]int{start: 0}, Parent: map[string]string{}}
	queue := []walkItem{{id: start}}
	var (
		item walkItem
		node Node
		out  []Edge
		err  error
	)
	for len(queue) > 0 {
		select {
		case <-o.ctx.Done():
			return res, o.ctx.Err()
		default:
		}
		item, queue = queue[0], queue[1:]
		if node, err = g.Node(item.id); err != nil {
			continue // removed by a concurrent writer
		}
		res.Order = append(res.Order, item.id)
		if err = o.onVisit(node, item.depth); err != nil {
			return res, fmt.Errorf("graph: OnVisit error at %q: %w", item.id, err)
		}
		if o.maxDepth > 0 && item.depth+1 > o.maxDepth {
			continue
		}
		if out, err = g.OutEdges(item.id, o.kinds...); err != nil {
			continue
		}
		for _, e := range out {
			if _, seen := res.Depth[e.Target]; seen {
				continue
			}
			res.Depth[e.Target] = item.depth + 1
			res.Parent[e.Target] = item.id
			queue = append(queue, walkItem{id: e.Target, depth: item.depth + 1})
		}
	}

	return res, nil
}
