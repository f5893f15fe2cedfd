// SPDX-License-Identifier: MIT

package graph

import (
	"errors"
	"math"
)

// ErrBadLayoutArg indicates a non-positive grid step or scale factor.
var ErrBadLayoutArg = errors.New("graph: layout argument must be positive")

// SnapPositions rounds every node position to the nearest multiple of step.
func (g *Graph) SnapPositions(step float64) error {
	if !(step > 0) {
		return ErrBadLayoutArg
	}

	return g.mapPositions(func(p Position) Position {
		return Position{X: math.Round(p.X/step) * step, Y: math.Round(p.Y/step) * step}
	})
}

// ScalePositions multiplies every position by factor around the root position.
func (g *Graph) ScalePositions(factor float64) error {
	if !(factor > 0) {
		return ErrBadLayoutArg
	}
	origin := g.Root().Position

	return g.mapPositions(func(p Position) Position {
		return Position{X: origin.X + (p.X-origin.X)*factor, Y: origin.Y + (p.Y-origin.Y)*factor}
	})
}

func (g *Graph) mapPositions(fn func(Position) Position) error {
	g.mu.Lock()
	events := make([]Event, 0, g.nodes.Size())
	it := g.nodes.Iterator()
	for it.Next() {
		n := it.Value().(*Node)
		n.Position = fn(n.Position)
		events = append(events, Event{Kind: NodeUpdated, ID: n.ID})
	}
	g.mu.Unlock()

	g.notify(events...)

	return nil
}

// Bounds returns the bounding box of all node positions.
func (g *Graph) Bounds() (min, max Position) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	first := true
	it := g.nodes.Iterator()
	for it.Next() {
		p := it.Value().(*Node).Position
		if first {
			min, max, first = p, p, false
			continue
		}
		min.X, min.Y = math.Min(min.X, p.X), math.Min(min.Y, p.Y)
		max.X, max.Y = math.Max(max.X, p.X), math.Max(max.Y, p.Y)
	}

	return min, max
}

// NodesAt returns the ids of nodes positioned exactly at p, in insertion order.
func (g *Graph) NodesAt(p Position) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []string
	it := g.nodes.Iterator()
	for it.Next() {
		if n := it.Value().(*Node); n.Position == p {
			out = append(out, n.ID)
		}
	}

	return out
}
