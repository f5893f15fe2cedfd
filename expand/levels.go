// SPDX-License-Identifier: MIT

package expand

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/katalvlaran/algraph/alg"
	"github.com/katalvlaran/algraph/graph"
	"github.com/katalvlaran/algraph/puzzle"
)

// ParseChild splits a level entry into its segment and terminal flag.
// A trailing ";" marks the child terminal.
func ParseChild(text string) (alg.Algorithm, bool, error) {
	trimmed := strings.TrimSpace(text)
	terminal := strings.HasSuffix(trimmed, TerminalMarker)
	if terminal {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, TerminalMarker))
	}
	seg, err := alg.Parse(trimmed)
	if err != nil {
		return nil, false, err
	}

	return seg, terminal, nil
}

// nonBlank drops empty and whitespace-only entries.
func nonBlank(level []string) []string {
	out := make([]string, 0, len(level))
	for _, s := range level {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}

	return out
}

// skipReason classifies per-child failures; "" means the error aborts the run.
func skipReason(err error) string {
	switch {
	case errors.Is(err, alg.ErrParse):
		return "parse"
	case errors.Is(err, puzzle.ErrUnknownMove):
		return "unknown_move"
	case errors.Is(err, graph.ErrMissingNode):
		return "missing_parent"
	}

	return ""
}

// ExpandLevels grows the graph from startID one level at a time.
//
// Implementation:
//   - Stage 1: The frontier starts as [startID].
//   - Stage 2: For each level, for each frontier node in order, for each
//     non-blank entry in order: a cluster token spawns a cluster, any other
//     entry spawns one child placed by DirectionFor(len(entries), index).
//   - Stage 3: Surviving non-terminal children form the next frontier. An
//     empty frontier ends the run early.
//
// Errors:
//   - ErrBusy while another run is in flight.
//   - graph.ErrMissingNode when startID is unknown.
//   - Simulator failures other than puzzle.ErrUnknownMove abort the run; the
//     partial report is returned with the error.
//   - Parse errors, unknown moves and missing parents are recorded in
//     Report.Skipped; a missing parent skips the rest of its branch.
func (e *Expander) ExpandLevels(ctx context.Context, startID string, levels [][]string) (*Report, error) {
	if err := e.acquire(); err != nil {
		return nil, err
	}
	defer e.release()

	if !e.g.HasNode(startID) {
		return nil, fmt.Errorf("%w: start %q", graph.ErrMissingNode, startID)
	}
	rep := &Report{Frontier: []string{startID}}

	for li, level := range levels {
		entries := nonBlank(level)
		if len(entries) == 0 {
			e.log.Warn("no valid algorithms at level", slog.Int("level", li+1))
		}
		var next []string
		for _, parentID := range rep.Frontier {
			if err := ctx.Err(); err != nil {
				return rep, err
			}
			grown, err := e.expandNode(ctx, rep, li+1, parentID, entries)
			next = append(next, grown...)
			if err != nil {
				return rep, err
			}
		}
		rep.Levels = li + 1
		rep.Frontier = next
		e.m.levels.Inc()
		if len(next) == 0 {
			e.log.Warn("no nodes created, stopping", slog.Int("level", li+1))
			break
		}
	}

	return rep, nil
}

// expandNode spawns every entry under parentID and returns the expandable ids.
func (e *Expander) expandNode(ctx context.Context, rep *Report, level int, parentID string, entries []string) ([]string, error) {
	var grown []string
	for i, text := range entries {
		var (
			outs []Outcome
			err  error
		)
		if e.cfg.IsClusterToken(text) {
			outs, err = e.cluster(ctx, parentID)
		} else {
			var o Outcome
			o, err = e.spawnText(ctx, parentID, text, DirectionFor(len(entries), i))
			if err == nil {
				outs = []Outcome{o}
			}
		}
		rep.Outcomes = append(rep.Outcomes, outs...)
		for _, o := range outs {
			if o.Expandable() {
				grown = append(grown, o.NodeID)
			}
		}
		if err == nil {
			continue
		}

		reason := skipReason(err)
		if reason == "" {
			return grown, err
		}
		e.m.skip(reason)
		rep.Skipped = append(rep.Skipped, Skip{Level: level, ParentID: parentID, Text: text, Err: err})
		e.log.Warn("skipping child",
			slog.Int("level", level),
			slog.String("parent", parentID),
			slog.String("alg", text),
			slog.String("reason", reason),
			slog.Any("err", err))
		if reason == "missing_parent" {
			break
		}
	}

	return grown, nil
}

// spawnText parses one entry and spawns it in dir.
func (e *Expander) spawnText(ctx context.Context, parentID, text string, dir Direction) (Outcome, error) {
	seg, terminal, err := ParseChild(text)
	if err != nil {
		return Outcome{}, err
	}
	parent, err := e.g.Node(parentID)
	if err != nil {
		return Outcome{}, err
	}

	return e.spawn(ctx, parentID, seg, placement{
		pos:      dir.Offset(parent.Position, e.cfg.Spacing),
		dir:      dir,
		terminal: terminal,
	})
}

// cluster spawns the quarter turn (up), its inverse (down) and the half turn
// (forward of the parent). The half turn hangs off both quarter turns with
// converging edges labelled by the quarter turn that reaches it.
//
// Fallbacks:
//   - quarter merged away: the half turn is spawned from the inverse.
//   - both merged away: the half turn is spawned from the parent directly.
//   - half turn merged: the surviving inverse is linked to its match instead.
func (e *Expander) cluster(ctx context.Context, parentID string) ([]Outcome, error) {
	face := e.cfg.ClusterFace
	quarter := alg.Algorithm{{Family: face, Amount: 1}}
	inverse := alg.Algorithm{{Family: face, Amount: -1}}
	half := alg.Algorithm{{Family: face, Amount: 2}}

	parent, err := e.g.Node(parentID)
	if err != nil {
		return nil, err
	}
	at := func(d Direction) placement {
		return placement{pos: d.Offset(parent.Position, e.cfg.Spacing), dir: d}
	}

	var outs []Outcome
	q, err := e.spawn(ctx, parentID, quarter, at(Up))
	if err != nil {
		return outs, err
	}
	outs = append(outs, q)
	qi, err := e.spawn(ctx, parentID, inverse, at(Down))
	if err != nil {
		return outs, err
	}
	outs = append(outs, qi)

	var h Outcome
	switch {
	case !q.Deleted():
		h, err = e.spawn(ctx, q.NodeID, quarter, at(Forward))
	case !qi.Deleted():
		h, err = e.spawn(ctx, qi.NodeID, inverse, at(Forward))
	default:
		h, err = e.spawn(ctx, parentID, half, at(Forward))
	}
	if err != nil {
		return outs, err
	}
	outs = append(outs, h)

	if q.Deleted() || qi.Deleted() {
		return outs, nil
	}
	if !h.Deleted() {
		_, _, err = e.g.InsertEdge(qi.NodeID, h.NodeID, inverse, graph.Normal,
			graph.WithAnchors(Forward.SourceAnchor, Forward.TargetAnchor))
		return outs, err
	}
	if h.MatchID != "" && h.MatchID != qi.NodeID && e.g.HasNode(h.MatchID) {
		match, err := e.g.Node(h.MatchID)
		if err != nil {
			return outs, err
		}
		_, _, err = e.g.InsertEdge(qi.NodeID, match.ID, inverse, graph.Confluence,
			graph.WithVariant(h.Result.Variant()), graph.WithAnchors(Forward.SourceAnchor, match.TargetAnchor))
		return outs, err
	}

	return outs, nil
}
