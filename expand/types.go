// SPDX-License-Identifier: MIT

package expand

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/katalvlaran/algraph/alg"
	"github.com/katalvlaran/algraph/confluence"
	"github.com/katalvlaran/algraph/graph"
)

// Sentinel errors for expansion.
var (
	// ErrBusy indicates another run is in flight on the same Expander.
	ErrBusy = errors.New("expand: expansion already in progress")

	// ErrInvalidConfig indicates a Config that failed validation.
	ErrInvalidConfig = errors.New("expand: invalid config")

	// ErrNoParent indicates a merge was requested for a node without a parent edge.
	ErrNoParent = errors.New("expand: candidate has no parent")
)

// TerminalMarker ends a child string that must not join the next frontier.
const TerminalMarker = ";"

// ClusterSuffix follows the face in the reserved cluster token, e.g. "U_branch".
const ClusterSuffix = "_branch"

// Config selects the merge policy and layout constants.
type Config struct {
	// RepositionOnConfluence moves a confluent candidate onto its match.
	RepositionOnConfluence bool `yaml:"repositionOnConfluence" json:"repositionOnConfluence"`
	// MatchIfAUF compares modulo the four rotations of AdjustmentFace.
	MatchIfAUF bool `yaml:"matchIfAUF" json:"matchIfAUF"`
	// CreateConfluenceEdges links a confluent candidate to its match.
	CreateConfluenceEdges bool `yaml:"createConfluenceEdges" json:"createConfluenceEdges"`
	// DeleteDuplicateOnConfluence removes a confluent candidate and links its parent instead.
	DeleteDuplicateOnConfluence bool `yaml:"deleteDuplicateOnConfluence" json:"deleteDuplicateOnConfluence"`

	AdjustmentFace string         `yaml:"adjustmentFace" json:"adjustmentFace" validate:"required,alpha"`
	ClusterFace    string         `yaml:"clusterFace" json:"clusterFace" validate:"required,alpha"`
	Spacing        float64        `yaml:"spacing" json:"spacing" validate:"gt=0"`
	Nudge          graph.Position `yaml:"nudge" json:"nudge"`
}

// DefaultConfig returns the interactive defaults: reposition on, AUF matching
// on, edges and deletion off, "U" adjustments, "U_branch" clusters, 500-unit
// spacing.
func DefaultConfig() Config {
	return Config{
		RepositionOnConfluence: true,
		MatchIfAUF:             true,
		AdjustmentFace:         "U",
		ClusterFace:            "U",
		Spacing:                500,
		Nudge:                  graph.Position{X: 60, Y: 60},
	}
}

var configValidator = validator.New()

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

// Adjustments returns the oracle adjustment set implied by MatchIfAUF.
func (c Config) Adjustments() []confluence.Adjustment {
	if c.MatchIfAUF {
		return confluence.Rotations(c.AdjustmentFace)
	}

	return confluence.IdentityOnly()
}

// ClusterToken returns the reserved child string requesting a cluster.
func (c Config) ClusterToken() string { return c.ClusterFace + ClusterSuffix }

// IsClusterToken reports whether text is the cluster token, ignoring case and
// surrounding space.
func (c Config) IsClusterToken(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), c.ClusterToken())
}

// consultsOracle reports whether any policy acts on a match.
func (c Config) consultsOracle() bool {
	return c.RepositionOnConfluence || c.CreateConfluenceEdges || c.DeleteDuplicateOnConfluence
}

// Direction is a cardinal placement relative to the parent, in spacing units.
type Direction struct {
	Name         string
	DX, DY       float64
	SourceAnchor graph.Anchor
	TargetAnchor graph.Anchor
}

// Cardinal directions. Screen coordinates: up is negative Y.
var (
	Forward  = Direction{Name: "forward", DX: 1, SourceAnchor: graph.HandleRight, TargetAnchor: graph.HandleLeft}
	Backward = Direction{Name: "backward", DX: -1, SourceAnchor: graph.HandleLeft, TargetAnchor: graph.HandleRight}
	Up       = Direction{Name: "up", DY: -1, SourceAnchor: graph.HandleTop, TargetAnchor: graph.HandleBottom}
	Down     = Direction{Name: "down", DY: 1, SourceAnchor: graph.HandleBottom, TargetAnchor: graph.HandleTop}
)

// Offset returns the position of a child placed in d from p.
func (d Direction) Offset(p graph.Position, spacing float64) graph.Position {
	return p.Add(d.DX*spacing, d.DY*spacing)
}

// DirectionFor picks the placement of child index among count siblings:
// 1 → forward; 2 → up, down; 3 → up, forward, down; 4 → up, down, backward,
// forward; more → up, forward, down, backward repeating.
func DirectionFor(count, index int) Direction {
	switch count {
	case 1:
		return Forward
	case 2:
		return [...]Direction{Up, Down}[index%2]
	case 3:
		return [...]Direction{Up, Forward, Down}[index%3]
	case 4:
		return [...]Direction{Up, Down, Backward, Forward}[index%4]
	}

	return [...]Direction{Up, Forward, Down, Backward}[index%4]
}

// Stage is one step of the candidate lifecycle.
type Stage int

// Lifecycle stages in order.
const (
	Created Stage = iota
	Linked
	Simplified
	Checked
	Resolved
)

var stageNames = [...]string{"created", "linked", "simplified", "checked", "resolved"}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}

	return stageNames[s]
}

// Resolution is the policy outcome for one candidate.
type Resolution int

const (
	// Distinct means no match was found, or no policy asked for a check.
	Distinct Resolution = iota
	// Repositioned means the candidate moved onto its match (and was nudged
	// off it when a confluence edge was added).
	Repositioned
	// CrossLinked means only a confluence edge candidate → match was added.
	CrossLinked
	// Merged means the candidate and its edge were removed and the parent was
	// linked to the match instead.
	Merged
)

func (r Resolution) String() string {
	switch r {
	case Repositioned:
		return "repositioned"
	case CrossLinked:
		return "cross_linked"
	case Merged:
		return "merged"
	}

	return "distinct"
}

// ResolveContext carries what the lifecycle knows about a candidate's origin.
// Zero fields are derived from the candidate's primary parent edge.
type ResolveContext struct {
	ParentID     string
	RawSegment   alg.Algorithm
	SourceAnchor graph.Anchor
}

// Outcome describes one resolved candidate.
type Outcome struct {
	NodeID     string
	ParentID   string
	Segment    alg.Algorithm
	Resolution Resolution
	// MatchID and Result describe the first confluent node, if any.
	MatchID string
	Result  confluence.Result
	// EdgeID is the confluence edge created by the policy, if any.
	EdgeID   string
	Terminal bool
}

// Deleted reports whether the candidate left the graph.
func (o Outcome) Deleted() bool { return o.Resolution == Merged }

// Expandable reports whether the candidate joins the next frontier.
func (o Outcome) Expandable() bool { return !o.Deleted() && !o.Terminal }

// Skip records a child that was not created.
type Skip struct {
	Level    int
	ParentID string
	Text     string
	Err      error
}

// Report summarises an ExpandLevels run.
type Report struct {
	// Levels is the number of levels processed.
	Levels   int
	Outcomes []Outcome
	Skipped  []Skip
	// Frontier holds the expandable nodes produced by the last processed level.
	Frontier []string
}

// Created returns the ids of candidates that stayed in the graph.
func (r *Report) Created() []string {
	var out []string
	for _, o := range r.Outcomes {
		if !o.Deleted() {
			out = append(out, o.NodeID)
		}
	}

	return out
}

// Deleted returns the ids of candidates removed by the merge policy.
func (r *Report) Deleted() []string {
	var out []string
	for _, o := range r.Outcomes {
		if o.Deleted() {
			out = append(out, o.NodeID)
		}
	}

	return out
}

// Simulator is what the engine needs from the state model.
// *puzzle.Simulator satisfies it.
type Simulator interface {
	confluence.Simulator
	Validate(ctx context.Context, a alg.Algorithm) error
}
