// SPDX-License-Identifier: MIT

package confluence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/katalvlaran/algraph/alg"
	"github.com/katalvlaran/algraph/puzzle"
)

// ErrAdjustmentSet indicates an adjustment set that does not start with the identity.
var ErrAdjustmentSet = errors.New("confluence: adjustment set must start with the identity")

// Adjustment is one labelled candidate sequence. The identity has an empty Label.
type Adjustment struct {
	Label string
	Alg   alg.Algorithm
}

// IsIdentity reports whether a is the empty adjustment.
func (a Adjustment) IsIdentity() bool { return a.Alg.IsIdentity() }

// IdentityOnly returns the single-element set used for exact-state comparison.
func IdentityOnly() []Adjustment { return []Adjustment{{}} }

// Rotations returns [identity, F, F2, F'] for the given face family.
// The set is closed under inversion.
func Rotations(face string) []Adjustment {
	out := IdentityOnly()
	for _, amt := range []int{1, 2, -1} {
		m := alg.Move{Family: face, Amount: amt}
		out = append(out, Adjustment{Label: m.String(), Alg: alg.Algorithm{m}})
	}

	return out
}

// Kind classifies a confluence result.
type Kind int

const (
	// NoMatch means no adjustment pair made the states equal.
	NoMatch Kind = iota
	// Exact means the states are equal without adjustment.
	Exact
	// Adjusted means the states are equal after the recorded prefix/suffix.
	Adjusted
)

// String returns a lowercase kind name.
func (k Kind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Adjusted:
		return "adjusted"
	}

	return "none"
}

// Result is the outcome of IsConfluent.
type Result struct {
	Kind   Kind
	Prefix Adjustment
	Suffix Adjustment
}

// Matched reports whether any pair matched.
func (r Result) Matched() bool { return r.Kind != NoMatch }

// Variant renders the adjustment label recorded on confluence edges and
// node metadata: "exact", "pre U", "post U'", or "pre U post U2".
func (r Result) Variant() string {
	switch r.Kind {
	case Exact:
		return "exact"
	case Adjusted:
		parts := make([]string, 0, 2)
		if !r.Prefix.IsIdentity() {
			parts = append(parts, "pre "+r.Prefix.Label)
		}
		if !r.Suffix.IsIdentity() {
			parts = append(parts, "post "+r.Suffix.Label)
		}
		return strings.Join(parts, " ")
	}

	return ""
}

// Simulator is the state computation the oracle needs. *puzzle.Simulator satisfies it.
type Simulator interface {
	Fingerprint(ctx context.Context, a alg.Algorithm) (puzzle.Fingerprint, error)
}

// Option configures an Oracle.
type Option func(*Oracle)

// WithAdjustments replaces the adjustment set. Invalid sets are reported by NewOracle.
func WithAdjustments(adj []Adjustment) Option {
	return func(o *Oracle) { o.adjustments = adj }
}

// DefaultCacheSize is the number of fingerprints an Oracle memoises unless
// WithCacheSize says otherwise.
const DefaultCacheSize = 4096

// WithCacheSize bounds the fingerprint memo to n entries; the oldest entry is
// evicted first. n <= 0 disables memoisation.
func WithCacheSize(n int) Option {
	return func(o *Oracle) { o.cacheSize = n }
}

// WithoutCache disables fingerprint memoisation.
func WithoutCache() Option {
	return WithCacheSize(0)
}

// Oracle answers confluence queries against one Simulator.
// It is safe for concurrent use.
type Oracle struct {
	sim         Simulator
	adjustments []Adjustment

	mu        sync.Mutex
	cacheSize int
	cache     *linkedhashmap.Map // string -> puzzle.Fingerprint, insertion order
}

// NewOracle builds an Oracle. The default adjustment set is IdentityOnly.
func NewOracle(sim Simulator, opts ...Option) (*Oracle, error) {
	o := &Oracle{
		sim:         sim,
		adjustments: IdentityOnly(),
		cacheSize:   DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	if len(o.adjustments) == 0 || !o.adjustments[0].IsIdentity() {
		return nil, ErrAdjustmentSet
	}
	if o.cacheSize > 0 {
		o.cache = linkedhashmap.New()
	}

	return o, nil
}

// Adjustments returns a copy of the active adjustment set.
func (o *Oracle) Adjustments() []Adjustment {
	return append([]Adjustment(nil), o.adjustments...)
}

// CacheLen returns the number of memoised fingerprints.
func (o *Oracle) CacheLen() int {
	if o.cache == nil {
		return 0
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.cache.Size()
}

// fingerprint memoises by canonical move string; the simulator is deterministic.
func (o *Oracle) fingerprint(ctx context.Context, a alg.Algorithm) (puzzle.Fingerprint, error) {
	if o.cache == nil {
		return o.sim.Fingerprint(ctx, a)
	}
	key := a.String()
	o.mu.Lock()
	v, ok := o.cache.Get(key)
	o.mu.Unlock()
	if ok {
		return v.(puzzle.Fingerprint), nil
	}
	fp, err := o.sim.Fingerprint(ctx, a)
	if err != nil {
		return "", err
	}
	o.mu.Lock()
	if _, ok = o.cache.Get(key); !ok && o.cache.Size() >= o.cacheSize {
		it := o.cache.Iterator()
		if it.First() {
			o.cache.Remove(it.Key())
		}
	}
	o.cache.Put(key, fp)
	o.mu.Unlock()

	return fp, nil
}

// IsConfluent compares a against b.
//
// Implementation:
//   - Stage 1: target = fingerprint(b).
//   - Stage 2: for each prefix in order, for each suffix in order, compare
//     fingerprint(prefix ⧺ a ⧺ suffix) with target; the first hit wins.
//
// Errors:
//   - puzzle.ErrUnknownMove when either sequence uses a foreign family.
//   - puzzle.ErrDefinitionLoad when the simulator cannot load its definition.
//
// Complexity:
//   - O(k²·|a|) state applications for k adjustments, plus one for b.
func (o *Oracle) IsConfluent(ctx context.Context, a, b alg.Algorithm) (Result, error) {
	target, err := o.fingerprint(ctx, b)
	if err != nil {
		return Result{}, fmt.Errorf("confluence: target %q: %w", b.String(), err)
	}
	var candidate puzzle.Fingerprint
	for _, pre := range o.adjustments {
		for _, post := range o.adjustments {
			if err = ctx.Err(); err != nil {
				return Result{}, err
			}
			candidate, err = o.fingerprint(ctx, alg.Concat(pre.Alg, a, post.Alg))
			if err != nil {
				return Result{}, fmt.Errorf("confluence: candidate %q: %w", a.String(), err)
			}
			if !puzzle.Equal(candidate, target) {
				continue
			}
			if pre.IsIdentity() && post.IsIdentity() {
				return Result{Kind: Exact}, nil
			}

			return Result{Kind: Adjusted, Prefix: pre, Suffix: post}, nil
		}
	}

	return Result{Kind: NoMatch}, nil
}
