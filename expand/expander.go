// SPDX-License-Identifier: MIT

// File: expander.go
// Role: Expander construction, the candidate lifecycle and confluence resolution.
//
// Concurrency:
//   - One run at a time per Expander (atomic busy flag, ErrBusy otherwise).
//   - Within a run every candidate is resolved before the next is created.
package expand

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/katalvlaran/algraph/alg"
	"github.com/katalvlaran/algraph/confluence"
	"github.com/katalvlaran/algraph/graph"
	"github.com/katalvlaran/algraph/puzzle"
)

// Option configures an Expander.
type Option func(*Expander)

// WithConfig replaces DefaultConfig.
func WithConfig(cfg Config) Option {
	return func(e *Expander) { e.cfg = cfg }
}

// WithLogger sets the structured logger; the default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Expander) {
		if l != nil {
			e.log = l
		}
	}
}

// WithRegisterer registers the expansion metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(e *Expander) { e.reg = reg }
}

// WithOnStage registers a hook called after each lifecycle stage of a candidate.
func WithOnStage(fn func(nodeID string, s Stage)) Option {
	return func(e *Expander) {
		if fn != nil {
			e.onStage = append(e.onStage, fn)
		}
	}
}

// WithOnResolved registers a hook called with every resolved candidate.
func WithOnResolved(fn func(Outcome)) Option {
	return func(e *Expander) {
		if fn != nil {
			e.onResolved = append(e.onResolved, fn)
		}
	}
}

// Expander drives candidate creation and confluence resolution on one graph.
type Expander struct {
	g      *graph.Graph
	sim    Simulator
	oracle *confluence.Oracle
	cfg    Config
	log    *slog.Logger
	reg    prometheus.Registerer
	m      *metrics

	onStage    []func(string, Stage)
	onResolved []func(Outcome)

	busy atomic.Bool
}

// New builds an Expander over g. The oracle adjustment set follows
// Config.MatchIfAUF.
func New(g *graph.Graph, sim Simulator, opts ...Option) (*Expander, error) {
	e := &Expander{
		g:   g,
		sim: sim,
		cfg: DefaultConfig(),
		log: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	oracle, err := confluence.NewOracle(sim, confluence.WithAdjustments(e.cfg.Adjustments()))
	if err != nil {
		return nil, err
	}
	e.oracle = oracle
	e.m = newMetrics(e.reg)

	return e, nil
}

// Graph returns the graph being expanded.
func (e *Expander) Graph() *graph.Graph { return e.g }

// Config returns the active configuration.
func (e *Expander) Config() Config { return e.cfg }

// Busy reports whether a run is in flight.
func (e *Expander) Busy() bool { return e.busy.Load() }

func (e *Expander) acquire() error {
	if !e.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}

	return nil
}

func (e *Expander) release() { e.busy.Store(false) }

func (e *Expander) stage(id string, s Stage) {
	for _, fn := range e.onStage {
		fn(id, s)
	}
}

func (e *Expander) resolved(o Outcome) {
	e.m.resolved(o.Resolution)
	for _, fn := range e.onResolved {
		fn(o)
	}
}

// placement is where and how a candidate attaches to its parent.
type placement struct {
	pos      graph.Position
	dir      Direction
	terminal bool
}

// spawn runs the whole lifecycle for one child of parentID.
//
// Implementation:
//   - Stage 0: Fetch the parent (graph.ErrMissingNode) and validate the combined
//     sequence on the simulator (puzzle.ErrUnknownMove, load errors).
//   - Created: insert the node with its raw segment, direction anchor and flag.
//   - Linked: Normal edge parent → node carrying the segment.
//   - Simplified: accumulated = Simplify(parent ⧺ segment, Cancel).
//   - Checked/Resolved: resolve against every other node.
func (e *Expander) spawn(ctx context.Context, parentID string, segment alg.Algorithm, pl placement) (Outcome, error) {
	parent, err := e.g.Node(parentID)
	if err != nil {
		return Outcome{}, err
	}
	combined := alg.Concat(parent.Alg, segment)
	if err = e.sim.Validate(ctx, combined); err != nil {
		return Outcome{}, err
	}

	n := e.g.InsertNode(alg.Algorithm{}, segment, pl.pos,
		graph.WithTerminal(pl.terminal), graph.WithTargetAnchor(pl.dir.TargetAnchor))
	e.stage(n.ID, Created)

	if _, _, err = e.g.InsertEdge(parentID, n.ID, segment, graph.Normal,
		graph.WithAnchors(pl.dir.SourceAnchor, pl.dir.TargetAnchor)); err != nil {
		_ = e.g.RemoveNode(n.ID)
		return Outcome{}, err
	}
	e.stage(n.ID, Linked)

	if err = e.g.UpdateNodeAlgorithm(n.ID, alg.Simplify(combined, alg.Options{Cancel: true})); err != nil {
		return Outcome{}, err
	}
	e.stage(n.ID, Simplified)

	return e.resolve(ctx, n.ID, ResolveContext{ParentID: parentID, RawSegment: segment, SourceAnchor: pl.dir.SourceAnchor})
}

// CheckAndResolveConfluence checks nodeID against every other node and
// applies the configured policy to the first match.
//
// Errors:
//   - ErrBusy while a run is in flight.
//   - graph.ErrMissingNode for an unknown node.
//   - puzzle.ErrUnknownMove when nodeID's own algorithm is not playable.
//   - Simulator load failures.
func (e *Expander) CheckAndResolveConfluence(ctx context.Context, nodeID string, rc ResolveContext) (Outcome, error) {
	if err := e.acquire(); err != nil {
		return Outcome{}, err
	}
	defer e.release()

	return e.resolve(ctx, nodeID, rc)
}

func (e *Expander) resolve(ctx context.Context, nodeID string, rc ResolveContext) (Outcome, error) {
	n, err := e.g.Node(nodeID)
	if err != nil {
		return Outcome{}, err
	}
	if err = e.fillContext(n, &rc); err != nil {
		return Outcome{}, err
	}
	out := Outcome{NodeID: n.ID, ParentID: rc.ParentID, Segment: rc.RawSegment, Terminal: n.Terminal}

	if !e.cfg.consultsOracle() {
		e.stage(n.ID, Checked)
		return e.finish(out), nil
	}
	if err = e.sim.Validate(ctx, n.Alg); err != nil {
		return Outcome{}, fmt.Errorf("expand: check %s: %w", n.ID, err)
	}

	match, res, err := e.firstMatch(ctx, n)
	e.stage(n.ID, Checked)
	if err != nil {
		return Outcome{}, err
	}
	if !res.Matched() {
		return e.finish(out), nil
	}
	out.MatchID, out.Result = match.ID, res

	if err = e.apply(n, match, res, rc, &out); err != nil {
		return Outcome{}, err
	}
	e.log.Debug("confluence resolved",
		slog.String("node", n.ID),
		slog.String("match", match.ID),
		slog.String("variant", res.Variant()),
		slog.String("resolution", out.Resolution.String()))

	return e.finish(out), nil
}

func (e *Expander) finish(out Outcome) Outcome {
	e.stage(out.NodeID, Resolved)
	e.resolved(out)

	return out
}

// fillContext derives ParentID, RawSegment and SourceAnchor from the primary parent edge.
func (e *Expander) fillContext(n graph.Node, rc *ResolveContext) error {
	if rc.ParentID != "" && rc.RawSegment != nil {
		return nil
	}
	pe, ok, err := e.g.PrimaryParent(n.ID)
	if err != nil {
		return err
	}
	if !ok {
		if rc.RawSegment == nil {
			rc.RawSegment = n.Raw
		}
		return nil
	}
	if rc.ParentID == "" {
		rc.ParentID = pe.Source
	}
	if rc.RawSegment == nil {
		rc.RawSegment = pe.Segment
	}
	if rc.SourceAnchor == "" {
		rc.SourceAnchor = pe.SourceAnchor
	}

	return nil
}

// firstMatch walks the other nodes in insertion order and returns the first
// confluent one. A comparison failing with puzzle.ErrUnknownMove (a foreign
// node) is skipped; any other failure aborts.
func (e *Expander) firstMatch(ctx context.Context, n graph.Node) (graph.Node, confluence.Result, error) {
	for _, other := range e.g.Nodes() {
		if other.ID == n.ID {
			continue
		}
		e.m.comparisons.Inc()
		res, err := e.oracle.IsConfluent(ctx, n.Alg, other.Alg)
		if errors.Is(err, puzzle.ErrUnknownMove) {
			e.log.Warn("skipping comparison", slog.String("node", n.ID), slog.String("against", other.ID), slog.Any("err", err))
			continue
		}
		if err != nil {
			return graph.Node{}, confluence.Result{}, err
		}
		if res.Matched() {
			return other, res, nil
		}
	}

	return graph.Node{}, confluence.Result{}, nil
}

// apply enacts the policy decision table:
//
//	delete on                      → Merged
//	delete off, reposition on      → Repositioned (+ edge and nudge when edges on)
//	delete off, reposition off     → CrossLinked when edges on
func (e *Expander) apply(n, match graph.Node, res confluence.Result, rc ResolveContext, out *Outcome) error {
	variant := res.Variant()
	switch {
	case e.cfg.DeleteDuplicateOnConfluence:
		return e.merge(n, match, variant, rc, out)

	case e.cfg.RepositionOnConfluence:
		out.Resolution = Repositioned
		pos := match.Position
		if e.cfg.CreateConfluenceEdges {
			id, err := e.link(n.ID, match, variant)
			if err != nil {
				return err
			}
			out.EdgeID = id
			pos = pos.Add(e.cfg.Nudge.X, e.cfg.Nudge.Y)
		}
		return e.g.UpdateNodePosition(n.ID, pos)

	case e.cfg.CreateConfluenceEdges:
		out.Resolution = CrossLinked
		id, err := e.link(n.ID, match, variant)
		out.EdgeID = id
		return err
	}

	return nil
}

// link adds the informational edge candidate → match.
func (e *Expander) link(from string, match graph.Node, variant string) (string, error) {
	edge, _, err := e.g.InsertEdge(from, match.ID, alg.Algorithm{}, graph.Confluence,
		graph.WithVariant(variant), graph.WithAnchors("", match.TargetAnchor))
	if err != nil {
		return "", err
	}

	return edge.ID, nil
}

// merge removes the candidate (cascading its parent edge) and links the parent
// straight to the match with the raw segment. When the parent is the match the
// candidate is removed and no edge is added.
func (e *Expander) merge(n, match graph.Node, variant string, rc ResolveContext, out *Outcome) error {
	if rc.ParentID == "" {
		return fmt.Errorf("%w: %q", ErrNoParent, n.ID)
	}
	if err := e.g.RemoveNode(n.ID); err != nil {
		return err
	}
	out.Resolution = Merged
	if rc.ParentID == match.ID {
		return nil
	}
	edge, _, err := e.g.InsertEdge(rc.ParentID, match.ID, rc.RawSegment, graph.Confluence,
		graph.WithVariant(variant), graph.WithAnchors(rc.SourceAnchor, match.TargetAnchor))
	if err != nil {
		return err
	}
	out.EdgeID = edge.ID

	return nil
}
