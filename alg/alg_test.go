// SPDX-License-Identifier: MIT

package alg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/algraph/alg"
)

// corpus is a small set of sequences shared by the property tests.
var corpus = []string{
	"",
	"R",
	"R U R' U'",
	"R U R' D",
	"F R U' R' U' R U R' F'",
	"R2' U2 Rw x y' M",
	"R U2 R' U' R U' R'",
	"R R R",
	"z r2 E' S u'",
}

func TestParse_Basic(t *testing.T) {
	a, err := alg.Parse("R U R' D")
	require.NoError(t, err)
	require.Len(t, a, 4)
	assert.Equal(t, []alg.Move{{"R", 1}, {"U", 1}, {"R", -1}, {"D", 1}}, []alg.Move(a))
	assert.Equal(t, "R U R' D", a.String())
}

func TestParse_Amounts(t *testing.T) {
	a, err := alg.Parse("R2 R2' Rw' x3")
	require.NoError(t, err)
	assert.Equal(t, alg.Algorithm{{"R", 2}, {"R", -2}, {"Rw", -1}, {"x", 3}}, a)
	assert.Equal(t, "R2 R2' Rw' x3", a.String())
}

func TestParse_Empty(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n"} {
		a, err := alg.Parse(in)
		require.NoError(t, err)
		assert.True(t, a.IsIdentity(), "input %q", in)
	}
}

func TestParse_Groups(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"(R U)2", "R U R U"},
		{"(R U)'", "U' R'"},
		{"[R, U]", "R U R' U'"},
		{"[R: U]", "R U R'"},
		{"[F: [R, U]]", "F R U R' U' F'"},
		{"(R U R' U')3", "R U R' U' R U R' U' R U R' U'"},
	}
	for _, tc := range cases {
		a, err := alg.Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, a.String(), tc.in)
	}
}

func TestParse_Errors(t *testing.T) {
	for _, in := range []string{"R U !", "R0", "(R U", "[R U]", "R''", "2"} {
		_, err := alg.Parse(in)
		require.ErrorIs(t, err, alg.ErrParse, "input %q", in)
	}
}

func TestParse_Limits(t *testing.T) {
	nested := "R"
	for i := 0; i < 20; i++ {
		nested = "[" + nested + ", U]"
	}
	for _, in := range []string{
		"(R U)4611686018427387904",
		"(R U)100000000000",
		"(R U)1025",
		"((R U)1024)1024",
		nested,
	} {
		_, err := alg.Parse(in)
		require.ErrorIs(t, err, alg.ErrParse, "input %.40q", in)
		require.ErrorIs(t, err, alg.ErrTooLong, "input %.40q", in)
	}

	a, err := alg.Parse("(R U)1024")
	require.NoError(t, err)
	assert.Len(t, a, 2048)
}

func TestMustParse_Panics(t *testing.T) {
	require.Panics(t, func() { alg.MustParse("R #") })
}

func TestFaceOfToken(t *testing.T) {
	f, ok := alg.FaceOfToken("Rw2'")
	require.True(t, ok)
	assert.Equal(t, "Rw", f)

	_, ok = alg.FaceOfToken("R U")
	assert.False(t, ok)
	_, ok = alg.FaceOfToken("")
	assert.False(t, ok)
}

func TestInvert(t *testing.T) {
	assert.Equal(t, "R U' R'", alg.Invert(alg.MustParse("R U R'")).String())
	assert.Equal(t, "R2'", alg.Invert(alg.MustParse("R2")).String())
	for _, s := range corpus {
		a := alg.MustParse(s)
		assert.True(t, alg.Invert(alg.Invert(a)).Equal(a), s)
	}
}

func TestConcat_DoesNotSimplify(t *testing.T) {
	got := alg.Concat(alg.MustParse("R U"), alg.MustParse("U' R'"))
	assert.Equal(t, "R U U' R'", got.String())
}

func TestSimplify_Cancel(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"R R'", ""},
		{"R U U' R'", ""},
		{"R R", "R2"},
		{"R R R", "R'"},
		{"R2 R2'", ""},
		{"R2 R", "R'"},
		{"R2'", "R2'"},
		{"R4 U", "U"},
		{"R3", "R'"},
		{"R U R'", "R U R'"},
		{"R L R'", "R L R'"},
	}
	for _, tc := range cases {
		got := alg.Simplify(alg.MustParse(tc.in), alg.Options{Cancel: true})
		assert.Equal(t, tc.want, got.String(), tc.in)
	}
}

func TestSimplify_NoCancelCopies(t *testing.T) {
	in := alg.MustParse("R R'")
	out := alg.Simplify(in, alg.Options{})
	require.Equal(t, in, out)
	out[0].Family = "L"
	assert.Equal(t, "R", in[0].Family)
}

func TestSimplify_InverseCancels(t *testing.T) {
	for _, s := range corpus {
		a := alg.MustParse(s)
		got := alg.Simplify(alg.Concat(a, alg.Invert(a)), alg.Options{Cancel: true})
		assert.True(t, got.IsIdentity(), "%q ++ inverse → %q", s, got.String())
	}
}

func TestSimplify_Idempotent(t *testing.T) {
	opts := alg.Options{Cancel: true}
	for _, s := range corpus {
		once := alg.Simplify(alg.MustParse(s), opts)
		twice := alg.Simplify(once, opts)
		assert.True(t, once.Equal(twice), "%q: %q vs %q", s, once.String(), twice.String())
	}
}

func TestExpandDoubleMoves(t *testing.T) {
	assert.Equal(t, "R' R'", alg.ExpandDoubleMoves(alg.MustParse("R2'")).String())
	assert.Equal(t, "R R U Rw' Rw'", alg.ExpandDoubleMoves(alg.MustParse("R2 U Rw2'")).String())

	// Already-expanded quarter turns pass through ExpandDoubleMoves and Simplify unchanged.
	quarter := alg.MustParse("R U R' F' L D'")
	got := alg.Simplify(alg.ExpandDoubleMoves(quarter), alg.Options{Cancel: true})
	assert.True(t, quarter.Equal(got))
}

func TestMirror(t *testing.T) {
	in := alg.MustParse("F R U' R' U' R U R' F'")
	got := alg.Mirror(in, "F", "B")
	assert.Equal(t, "B' R' U R U R' U' R B", got.String())

	for _, s := range corpus {
		a := alg.MustParse(s)
		assert.True(t, alg.Mirror(alg.Mirror(a, "F", "B"), "F", "B").Equal(a), s)
	}
}

func TestDetectSetupMoves(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"R U L D F D' L' U' R'", "R U L D"},
		{"R U R'", "R"},
		{"R2 U R2", "R2"},
		{"F R U R' U' F'", "F"},
		{"R U2 R", "R"},
		{"R U", ""},
		{"R", ""},
		{"", ""},
	}
	for _, tc := range cases {
		got := alg.DetectSetupMoves(alg.MustParse(tc.in))
		assert.Equal(t, tc.want, got.String(), tc.in)
	}
}

func TestFaceOfAndHalfTurn(t *testing.T) {
	m := alg.Move{Family: "Uw", Amount: -2}
	assert.Equal(t, "Uw", alg.FaceOf(m))
	assert.True(t, alg.IsHalfTurn(m))
	assert.False(t, alg.IsHalfTurn(alg.Move{Family: "U", Amount: 1}))
}

func TestNewMove(t *testing.T) {
	_, err := alg.NewMove("", 1)
	require.ErrorIs(t, err, alg.ErrEmptyFamily)
	_, err = alg.NewMove("R", 0)
	require.ErrorIs(t, err, alg.ErrZeroAmount)
	m, err := alg.NewMove("R", -1)
	require.NoError(t, err)
	assert.Equal(t, "R'", m.String())
}

func TestFamilies(t *testing.T) {
	assert.Equal(t, []string{"R", "U"}, alg.MustParse("R U R' U'").Families())
}
