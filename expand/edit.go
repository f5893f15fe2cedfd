// SPDX-License-Identifier: MIT

package expand

import (
	"context"
	"fmt"

	"github.com/katalvlaran/algraph/alg"
	"github.com/katalvlaran/algraph/graph"
)

// Spawn creates one child of parentID from text, placed in dir, and resolves it.
func (e *Expander) Spawn(ctx context.Context, parentID, text string, dir Direction) (Outcome, error) {
	if err := e.acquire(); err != nil {
		return Outcome{}, err
	}
	defer e.release()

	return e.spawnText(ctx, parentID, text, dir)
}

// SpawnWithInverse creates text forward of parentID and its inverse backward.
// The inverse is still created when the forward child merges away.
func (e *Expander) SpawnWithInverse(ctx context.Context, parentID, text string) ([]Outcome, error) {
	if err := e.acquire(); err != nil {
		return nil, err
	}
	defer e.release()

	seg, terminal, err := ParseChild(text)
	if err != nil {
		return nil, err
	}
	parent, err := e.g.Node(parentID)
	if err != nil {
		return nil, err
	}
	outs := make([]Outcome, 0, 2)
	for _, step := range []struct {
		seg alg.Algorithm
		dir Direction
	}{{seg, Forward}, {alg.Invert(seg), Backward}} {
		o, err := e.spawn(ctx, parentID, step.seg, placement{
			pos:      step.dir.Offset(parent.Position, e.cfg.Spacing),
			dir:      step.dir,
			terminal: terminal,
		})
		if err != nil {
			return outs, err
		}
		outs = append(outs, o)
	}

	return outs, nil
}

// UpdateEdgeSegment replaces the segment of a Normal edge and recomputes the
// accumulated algorithms it governs.
//
// Implementation:
//   - Stage 1: Parse text and validate source ⧺ segment on the simulator.
//   - Stage 2: Replace the segment (graph.ErrImmutableEdge for Confluence edges).
//   - Stage 3: The target is recomputed when the edge enters through the
//     target's recorded anchor; its raw segment becomes the new one.
//   - Stage 4: Changes propagate breadth-first along governing Normal edges.
//
// Returns the ids of nodes whose accumulated algorithm changed, in visit order.
// Confluence results are not re-checked.
func (e *Expander) UpdateEdgeSegment(ctx context.Context, edgeID, text string) ([]string, error) {
	if err := e.acquire(); err != nil {
		return nil, err
	}
	defer e.release()

	seg, err := alg.Parse(text)
	if err != nil {
		return nil, err
	}
	edge, err := e.g.Edge(edgeID)
	if err != nil {
		return nil, err
	}
	if edge.Kind == graph.Confluence {
		return nil, fmt.Errorf("%w: %q", graph.ErrImmutableEdge, edgeID)
	}
	src, err := e.g.Node(edge.Source)
	if err != nil {
		return nil, err
	}
	if err = e.sim.Validate(ctx, alg.Concat(src.Alg, seg)); err != nil {
		return nil, err
	}
	if edge, err = e.g.UpdateEdgeSegment(edgeID, seg); err != nil {
		return nil, err
	}

	dst, err := e.g.Node(edge.Target)
	if err != nil {
		return nil, err
	}
	if !governs(edge, dst) {
		return nil, nil
	}
	if err = e.g.UpdateNodeRaw(dst.ID, seg); err != nil {
		return nil, err
	}

	return e.propagate(ctx, src, edge)
}

// governs reports whether e determines dst's accumulated algorithm.
func governs(e graph.Edge, dst graph.Node) bool {
	return e.Kind == graph.Normal && e.TargetAnchor == dst.TargetAnchor
}

func (e *Expander) propagate(ctx context.Context, src graph.Node, first graph.Edge) ([]string, error) {
	type step struct {
		from graph.Node
		via  graph.Edge
	}
	var changed []string
	seen := map[string]bool{src.ID: true}
	queue := []step{{from: src, via: first}}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		cur := queue[0]
		queue = queue[1:]
		id := cur.via.Target
		if seen[id] {
			continue
		}
		seen[id] = true

		next := alg.Simplify(alg.Concat(cur.from.Alg, cur.via.Segment), alg.Options{Cancel: true})
		node, err := e.g.Node(id)
		if err != nil {
			return changed, err
		}
		if node.Alg.Equal(next) {
			continue
		}
		if err = e.g.UpdateNodeAlgorithm(id, next); err != nil {
			return changed, err
		}
		node.Alg = next
		changed = append(changed, id)

		out, err := e.g.OutEdges(id, graph.Normal)
		if err != nil {
			return changed, err
		}
		for _, oe := range out {
			child, err := e.g.Node(oe.Target)
			if err != nil {
				return changed, err
			}
			if governs(oe, child) {
				queue = append(queue, step{from: node, via: oe})
			}
		}
	}

	return changed, nil
}
