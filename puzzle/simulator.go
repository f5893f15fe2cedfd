// SPDX-License-Identifier: MIT

package puzzle

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/katalvlaran/algraph/alg"
)

// compiledMove holds forward and inverse transforms indexed by orbit position.
// order is the smallest k > 0 with fwd^k the identity, or 0 when it exceeds maxOrder.
type compiledMove struct {
	fwd   []orbitOp
	inv   []orbitOp
	order int
}

// maxOrder bounds the move order Apply reduces amounts by.
const maxOrder = 1 << 20

// orbitOp is one orbit's permutation and orientation delta; nil perm means untouched.
type orbitOp struct {
	perm   []int
	orient []int
}

type compiled struct {
	def     *Definition
	mods    []int // orientation modulus per orbit
	moves   map[string]compiledMove
	initial Pattern
}

// Pattern is a puzzle state: per-orbit piece and orientation arrays in
// Definition.Orbits order. Patterns are values; Apply never mutates its input.
type Pattern struct {
	Pieces      [][]int
	Orientation [][]int
}

// Fingerprint encodes p canonically: every piece and orientation value as a
// big-endian uint16, each orbit terminated by '|'. Orbit sizes are fixed by the
// definition, so equal patterns and only equal patterns share a fingerprint.
func (p Pattern) Fingerprint() Fingerprint {
	var sb strings.Builder
	var buf [2]byte
	for o := range p.Pieces {
		for i, v := range p.Pieces[o] {
			binary.BigEndian.PutUint16(buf[:], uint16(v))
			sb.Write(buf[:])
			binary.BigEndian.PutUint16(buf[:], uint16(p.Orientation[o][i]))
			sb.Write(buf[:])
		}
		sb.WriteString("|")
	}

	return Fingerprint(sb.String())
}

func (p Pattern) clone() Pattern {
	out := Pattern{
		Pieces:      make([][]int, len(p.Pieces)),
		Orientation: make([][]int, len(p.Orientation)),
	}
	for i := range p.Pieces {
		out.Pieces[i] = append([]int(nil), p.Pieces[i]...)
		out.Orientation[i] = append([]int(nil), p.Orientation[i]...)
	}

	return out
}

func compile(def *Definition) *compiled {
	c := &compiled{
		def:   def,
		mods:  make([]int, len(def.Orbits)),
		moves: make(map[string]compiledMove, len(def.Moves)),
	}
	c.initial = Pattern{
		Pieces:      make([][]int, len(def.Orbits)),
		Orientation: make([][]int, len(def.Orbits)),
	}
	for o, od := range def.Orbits {
		c.mods[o] = od.NumOrientations
		pieces := make([]int, od.NumPieces)
		orient := make([]int, od.NumPieces)
		if st, ok := def.DefaultPattern[od.Name]; ok {
			copy(pieces, st.Pieces)
			copy(orient, st.Orientation)
		} else {
			for i := range pieces {
				pieces[i] = i
			}
		}
		c.initial.Pieces[o] = pieces
		c.initial.Orientation[o] = orient
	}
	for family, t := range def.Moves {
		cm := compiledMove{fwd: make([]orbitOp, len(def.Orbits)), inv: make([]orbitOp, len(def.Orbits))}
		for o, od := range def.Orbits {
			ot, ok := t[od.Name]
			if !ok {
				continue
			}
			orient := make([]int, od.NumPieces)
			copy(orient, ot.Orientation)
			cm.fwd[o] = orbitOp{perm: ot.Permutation, orient: orient}
			cm.inv[o] = invertOp(cm.fwd[o], od.NumOrientations)
		}
		cm.order = c.opsOrder(cm.fwd)
		c.moves[family] = cm
	}

	return c
}

// invertOp computes T⁻¹ such that applying T then T⁻¹ restores every position.
func invertOp(op orbitOp, mod int) orbitOp {
	n := len(op.perm)
	inv := orbitOp{perm: make([]int, n), orient: make([]int, n)}
	for i, p := range op.perm {
		inv.perm[p] = i
		inv.orient[p] = ((-op.orient[i])%mod + mod) % mod
	}

	return inv
}

// opsOrder returns the order of ops: the lcm over every permutation cycle of
// its length times the order of the cycle's summed orientation delta.
func (c *compiled) opsOrder(ops []orbitOp) int {
	order := 1
	for o, op := range ops {
		mod := c.mods[o]
		seen := make([]bool, len(op.perm))
		for start := range op.perm {
			if seen[start] {
				continue
			}
			length, twist := 0, 0
			for i := start; !seen[i]; i = op.perm[i] {
				seen[i] = true
				length++
				twist = (twist + op.orient[i]) % mod
			}
			order = lcm(order, length*(mod/gcd(twist, mod)))
			if order > maxOrder {
				return 0
			}
		}
	}

	return order
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}

	return a
}

func lcm(a, b int) int { return a / gcd(a, b) * b }

func (c *compiled) applyOps(p Pattern, ops []orbitOp) Pattern {
	next := Pattern{
		Pieces:      make([][]int, len(p.Pieces)),
		Orientation: make([][]int, len(p.Orientation)),
	}
	for o, op := range ops {
		if op.perm == nil {
			next.Pieces[o] = p.Pieces[o]
			next.Orientation[o] = p.Orientation[o]
			continue
		}
		pieces := make([]int, len(op.perm))
		orient := make([]int, len(op.perm))
		for i, src := range op.perm {
			pieces[i] = p.Pieces[o][src]
			orient[i] = (p.Orientation[o][src] + op.orient[i]) % c.mods[o]
		}
		next.Pieces[o] = pieces
		next.Orientation[o] = orient
	}

	return next
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithLogger sets the logger used for definition loading diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.log = l
		}
	}
}

// Simulator computes patterns and fingerprints against the Definition of its Provider.
// The definition is compiled on first use; failures are returned on every call
// until the Provider succeeds.
type Simulator struct {
	src Provider
	log *slog.Logger

	mu sync.Mutex
	c  *compiled
}

// NewSimulator builds a Simulator over src. Wrap src in NewLazy to share one
// process-wide definition between simulators.
func NewSimulator(src Provider, opts ...Option) *Simulator {
	s := &Simulator{src: src, log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Simulator) compiled(ctx context.Context) (*compiled, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return s.c, nil
	}
	def, err := s.src.Definition(ctx)
	if err != nil {
		s.log.Error("puzzle definition unavailable", slog.Any("error", err))
		return nil, wrapLoad(err)
	}
	if def == nil {
		return nil, fmt.Errorf("%w: provider returned no definition", ErrDefinitionLoad)
	}
	if err = def.Validate(); err != nil {
		s.log.Error("puzzle definition invalid", slog.Any("error", err))
		return nil, wrapLoad(err)
	}
	s.c = compile(def)
	s.log.Debug("puzzle definition compiled",
		slog.String("name", def.Name),
		slog.Int("orbits", len(def.Orbits)),
		slog.Int("moves", len(def.Moves)))

	return s.c, nil
}

func wrapLoad(err error) error {
	if errors.Is(err, ErrDefinitionLoad) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrDefinitionLoad, err)
}

// DefinitionName returns the name of the active definition, loading it if needed.
func (s *Simulator) DefinitionName(ctx context.Context) (string, error) {
	c, err := s.compiled(ctx)
	if err != nil {
		return "", err
	}

	return c.def.Name, nil
}

// Default returns the solved pattern.
func (s *Simulator) Default(ctx context.Context) (Pattern, error) {
	c, err := s.compiled(ctx)
	if err != nil {
		return Pattern{}, err
	}

	return c.initial.clone(), nil
}

// Validate reports ErrUnknownMove for the first move whose family is not defined.
func (s *Simulator) Validate(ctx context.Context, a alg.Algorithm) error {
	c, err := s.compiled(ctx)
	if err != nil {
		return err
	}

	return c.validate(a)
}

func (c *compiled) validate(a alg.Algorithm) error {
	for i, m := range a {
		if _, ok := c.moves[m.Family]; !ok {
			return fmt.Errorf("%w: %q at position %d (puzzle %s)", ErrUnknownMove, m.Family, i, c.def.Name)
		}
	}

	return nil
}

// Apply returns p after applying every move of a in order. A move of amount k
// applies its transformation |k| times, inverted when k is negative; k is first
// reduced modulo the move's order, so large amounts cost at most order/2 steps.
// ctx is checked before every step.
func (s *Simulator) Apply(ctx context.Context, p Pattern, a alg.Algorithm) (Pattern, error) {
	c, err := s.compiled(ctx)
	if err != nil {
		return Pattern{}, err
	}
	if err = c.validate(a); err != nil {
		return Pattern{}, err
	}
	cur := p.clone()
	var (
		cm  compiledMove
		ops []orbitOp
		k   int
	)
	for _, m := range a {
		cm = c.moves[m.Family]
		ops, k = cm.fwd, m.Amount
		if cm.order > 0 {
			k %= cm.order
			if k > cm.order/2 {
				k -= cm.order
			} else if k < -cm.order/2 {
				k += cm.order
			}
		}
		if k < 0 {
			ops, k = cm.inv, -k
		}
		for ; k > 0; k-- {
			if err = ctx.Err(); err != nil {
				return Pattern{}, err
			}
			cur = c.applyOps(cur, ops)
		}
	}
	if err = ctx.Err(); err != nil {
		return Pattern{}, err
	}

	return cur, nil
}

// Fingerprint applies a to the solved pattern and returns the result's fingerprint.
func (s *Simulator) Fingerprint(ctx context.Context, a alg.Algorithm) (Fingerprint, error) {
	start, err := s.Default(ctx)
	if err != nil {
		return "", err
	}
	end, err := s.Apply(ctx, start, a)
	if err != nil {
		return "", err
	}

	return end.Fingerprint(), nil
}
