// SPDX-License-Identifier: MIT

package confluence_test

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/algraph/alg"
	"github.com/katalvlaran/algraph/confluence"
	"github.com/katalvlaran/algraph/puzzle"
)

func newOracle(t *testing.T, adj []confluence.Adjustment) *confluence.Oracle {
	t.Helper()
	sim := puzzle.NewSimulator(puzzle.NewLazy(puzzle.CubeProvider(3)))
	o, err := confluence.NewOracle(sim, confluence.WithAdjustments(adj))
	require.NoError(t, err)
	return o
}

func TestRotations(t *testing.T) {
	adj := confluence.Rotations("U")
	require.Len(t, adj, 4)
	assert.True(t, adj[0].IsIdentity())
	labels := []string{adj[1].Label, adj[2].Label, adj[3].Label}
	assert.Equal(t, []string{"U", "U2", "U'"}, labels)
	assert.Len(t, confluence.IdentityOnly(), 1)
}

func TestNewOracle_RejectsSetWithoutIdentity(t *testing.T) {
	sim := puzzle.NewSimulator(puzzle.CubeProvider(3))
	_, err := confluence.NewOracle(sim, confluence.WithAdjustments(confluence.Rotations("U")[1:]))
	require.ErrorIs(t, err, confluence.ErrAdjustmentSet)
	_, err = confluence.NewOracle(sim, confluence.WithAdjustments(nil))
	require.ErrorIs(t, err, confluence.ErrAdjustmentSet)
}

func TestIsConfluent_SelfIsExact(t *testing.T) {
	ctx := context.Background()
	for _, adj := range [][]confluence.Adjustment{confluence.IdentityOnly(), confluence.Rotations("U")} {
		o := newOracle(t, adj)
		for _, s := range []string{"", "R", "R U R' U'", "F R U' R' U' R U R' F'", "M2 E x"} {
			res, err := o.IsConfluent(ctx, alg.MustParse(s), alg.MustParse(s))
			require.NoError(t, err)
			assert.Equal(t, confluence.Exact, res.Kind, s)
			assert.Equal(t, "exact", res.Variant())
		}
	}
}

func TestIsConfluent_DifferentTextSameState(t *testing.T) {
	o := newOracle(t, confluence.IdentityOnly())
	res, err := o.IsConfluent(context.Background(),
		alg.MustParse(strings.Repeat("R U R' U' ", 6)), alg.Algorithm{})
	require.NoError(t, err)
	assert.Equal(t, confluence.Exact, res.Kind)

	res, err = o.IsConfluent(context.Background(), alg.MustParse("R U"), alg.MustParse("U R"))
	require.NoError(t, err)
	assert.Equal(t, confluence.NoMatch, res.Kind)
	assert.False(t, res.Matched())
}

func TestIsConfluent_Suffix(t *testing.T) {
	o := newOracle(t, confluence.Rotations("U"))
	res, err := o.IsConfluent(context.Background(), alg.MustParse("R U"), alg.MustParse("R"))
	require.NoError(t, err)
	require.Equal(t, confluence.Adjusted, res.Kind)
	assert.True(t, res.Prefix.IsIdentity())
	assert.Equal(t, "U'", res.Suffix.Label)
	assert.Equal(t, "post U'", res.Variant())
}

func TestIsConfluent_Prefix(t *testing.T) {
	o := newOracle(t, confluence.Rotations("U"))
	res, err := o.IsConfluent(context.Background(), alg.MustParse("U R"), alg.MustParse("R"))
	require.NoError(t, err)
	require.Equal(t, confluence.Adjusted, res.Kind)
	assert.Equal(t, "U'", res.Prefix.Label)
	assert.True(t, res.Suffix.IsIdentity())
	assert.Equal(t, "pre U'", res.Variant())
}

func TestIsConfluent_PrefixAndSuffix(t *testing.T) {
	o := newOracle(t, confluence.Rotations("U"))
	res, err := o.IsConfluent(context.Background(), alg.MustParse("U R U"), alg.MustParse("R"))
	require.NoError(t, err)
	require.Equal(t, confluence.Adjusted, res.Kind)
	assert.Equal(t, "pre U' post U'", res.Variant())
}

// TestIsConfluent_PrefixMajor verifies the identity prefix is exhausted before any other prefix.
func TestIsConfluent_PrefixMajor(t *testing.T) {
	o := newOracle(t, confluence.Rotations("U"))
	// Both (U', id) and (id, U') would match; the identity prefix comes first.
	res, err := o.IsConfluent(context.Background(), alg.MustParse("U"), alg.Algorithm{})
	require.NoError(t, err)
	assert.True(t, res.Prefix.IsIdentity())
	assert.Equal(t, "U'", res.Suffix.Label)
}

func TestIsConfluent_IdentityOnlyCollapses(t *testing.T) {
	o := newOracle(t, confluence.IdentityOnly())
	res, err := o.IsConfluent(context.Background(), alg.MustParse("R U"), alg.MustParse("R"))
	require.NoError(t, err)
	assert.Equal(t, confluence.NoMatch, res.Kind)
	assert.Equal(t, "", res.Variant())
}

// TestIsConfluent_Symmetric verifies a match in one direction implies a match in the other
// when the adjustment set is closed under inversion.
func TestIsConfluent_Symmetric(t *testing.T) {
	ctx := context.Background()
	o := newOracle(t, confluence.Rotations("U"))
	pairs := [][2]string{
		{"R U", "R"},
		{"U R", "R"},
		{"U R U'", "R"},
		{"R U R' U R U2 R'", "U' R U2 R' U' R U' R'"},
		{"R", "L"},
	}
	for _, p := range pairs {
		a, b := alg.MustParse(p[0]), alg.MustParse(p[1])
		ab, err := o.IsConfluent(ctx, a, b)
		require.NoError(t, err)
		ba, err := o.IsConfluent(ctx, b, a)
		require.NoError(t, err)
		assert.Equal(t, ab.Matched(), ba.Matched(), "%q vs %q", p[0], p[1])
	}
}

func TestIsConfluent_UnknownMove(t *testing.T) {
	o := newOracle(t, confluence.Rotations("U"))
	_, err := o.IsConfluent(context.Background(), alg.MustParse("R Q"), alg.MustParse("R"))
	require.ErrorIs(t, err, puzzle.ErrUnknownMove)
	_, err = o.IsConfluent(context.Background(), alg.MustParse("R"), alg.MustParse("Q"))
	require.ErrorIs(t, err, puzzle.ErrUnknownMove)
}

// countingSim wraps a simulator and counts fingerprint computations.
type countingSim struct {
	inner *puzzle.Simulator
	calls atomic.Int32
}

func (c *countingSim) Fingerprint(ctx context.Context, a alg.Algorithm) (puzzle.Fingerprint, error) {
	c.calls.Add(1)
	return c.inner.Fingerprint(ctx, a)
}

func TestOracle_Cache(t *testing.T) {
	ctx := context.Background()
	sim := &countingSim{inner: puzzle.NewSimulator(puzzle.CubeProvider(3))}
	o, err := confluence.NewOracle(sim)
	require.NoError(t, err)
	_, err = o.IsConfluent(ctx, alg.MustParse("R"), alg.MustParse("U"))
	require.NoError(t, err)
	first := sim.calls.Load()
	_, err = o.IsConfluent(ctx, alg.MustParse("R"), alg.MustParse("U"))
	require.NoError(t, err)
	assert.Equal(t, first, sim.calls.Load())

	sim2 := &countingSim{inner: puzzle.NewSimulator(puzzle.CubeProvider(3))}
	o2, err := confluence.NewOracle(sim2, confluence.WithoutCache())
	require.NoError(t, err)
	_, err = o2.IsConfluent(ctx, alg.MustParse("R"), alg.MustParse("U"))
	require.NoError(t, err)
	_, err = o2.IsConfluent(ctx, alg.MustParse("R"), alg.MustParse("U"))
	require.NoError(t, err)
	assert.EqualValues(t, 4, sim2.calls.Load())
}

func TestOracle_CacheBounded(t *testing.T) {
	ctx := context.Background()
	sim := &countingSim{inner: puzzle.NewSimulator(puzzle.CubeProvider(3))}
	o, err := confluence.NewOracle(sim, confluence.WithCacheSize(1))
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = o.IsConfluent(ctx, alg.MustParse("R"), alg.MustParse("U"))
		require.NoError(t, err)
		assert.Equal(t, 1, o.CacheLen())
	}
	// Each query evicts the other side's fingerprint.
	assert.EqualValues(t, 6, sim.calls.Load())

	many, err := confluence.NewOracle(puzzle.NewSimulator(puzzle.CubeProvider(3)), confluence.WithCacheSize(8))
	require.NoError(t, err)
	moves := []string{"R", "U", "F", "L", "D", "B", "R2", "U2", "F2", "L2", "D2", "B2"}
	for _, m := range moves {
		_, err = many.IsConfluent(ctx, alg.MustParse(m), alg.MustParse(m))
		require.NoError(t, err)
	}
	assert.Equal(t, 8, many.CacheLen())

	off, err := confluence.NewOracle(sim, confluence.WithoutCache())
	require.NoError(t, err)
	_, err = off.IsConfluent(ctx, alg.MustParse("R"), alg.MustParse("U"))
	require.NoError(t, err)
	assert.Zero(t, off.CacheLen())
}
