// SPDX-License-Identifier: MIT

// File: cube.go
// Role: geometric generator for NxN cube definitions.
//
// Coordinates are doubled so every cubie centre and sticker lands on an integer:
// cubie centres take values in {-(n-1), -(n-3), ..., n-1} on each axis and a
// sticker sits one unit outward along its face normal (|coord| == n).
// Axes: x right, y up, z front.
package puzzle

import (
	"fmt"
	"strconv"
	"strings"
)

// Cube size bounds accepted by Cube.
const (
	MinCubeSize = 2
	MaxCubeSize = 7
)

// Orbit names produced by Cube.
const (
	OrbitCorners = "CORNERS"
	OrbitEdges   = "EDGES"
	OrbitCenters = "CENTERS"
)

type vec [3]int

// face is one side of the cube. Colour is its index in cubeFaces.
type face struct {
	name    string
	axis    int
	sign    int
	quarter int // rotation sense of a clockwise turn about +axis
}

// cubeFaces lists faces in colour order. A clockwise turn of a face seen from
// outside is a -90° rotation about its outward normal.
var cubeFaces = []face{
	{name: "U", axis: 1, sign: 1, quarter: -1},
	{name: "L", axis: 0, sign: -1, quarter: 1},
	{name: "F", axis: 2, sign: 1, quarter: -1},
	{name: "R", axis: 0, sign: 1, quarter: -1},
	{name: "B", axis: 2, sign: -1, quarter: 1},
	{name: "D", axis: 1, sign: -1, quarter: 1},
}

// slice moves follow the face they are named after: M like L, E like D, S like F.
var cubeSlices = []struct {
	name   string
	follow string
}{
	{"M", "L"}, {"E", "D"}, {"S", "F"},
}

// rotations follow R, U and F on every layer.
var cubeRotations = []struct {
	name   string
	follow string
}{
	{"x", "R"}, {"y", "U"}, {"z", "F"},
}

type sticker struct {
	pos    vec
	normal vec
	colour int
}

// rotate turns p by quarter·90° about axis using the right-hand rule.
func rotate(p vec, axis, quarter int) vec {
	q := ((quarter % 4) + 4) % 4
	for ; q > 0; q-- {
		switch axis {
		case 0:
			p = vec{p[0], -p[2], p[1]}
		case 1:
			p = vec{p[2], p[1], -p[0]}
		default:
			p = vec{-p[1], p[0], p[2]}
		}
	}

	return p
}

// cubeLayout indexes every sticker of an NxN cube by orbit.
type cubeLayout struct {
	n        int
	orbits   []string
	stickers map[string][]sticker
	index    map[vec]int // sticker position → index within its orbit
}

func newCubeLayout(n int) *cubeLayout {
	l := &cubeLayout{
		n:        n,
		stickers: make(map[string][]sticker),
		index:    make(map[vec]int),
	}
	var (
		u, v, a, b int
		p, nrm     vec
		orbit      string
	)
	for colour, f := range cubeFaces {
		u, v = otherAxes(f.axis)
		for a = -(n - 1); a <= n-1; a += 2 {
			for b = -(n - 1); b <= n-1; b += 2 {
				p = vec{}
				nrm = vec{}
				p[f.axis] = f.sign * n
				nrm[f.axis] = f.sign
				p[u], p[v] = a, b
				orbit = classify(n, a, b)
				l.index[p] = len(l.stickers[orbit])
				l.stickers[orbit] = append(l.stickers[orbit], sticker{pos: p, normal: nrm, colour: colour})
			}
		}
	}
	for _, name := range []string{OrbitCorners, OrbitEdges, OrbitCenters} {
		if len(l.stickers[name]) > 0 {
			l.orbits = append(l.orbits, name)
		}
	}

	return l
}

func otherAxes(axis int) (int, int) {
	switch axis {
	case 0:
		return 1, 2
	case 1:
		return 0, 2
	}

	return 0, 1
}

// classify counts how many in-face coordinates sit on the outer cubie ring.
func classify(n, a, b int) string {
	edge := 0
	if a == n-1 || a == -(n-1) {
		edge++
	}
	if b == n-1 || b == -(n-1) {
		edge++
	}
	switch edge {
	case 2:
		return OrbitCorners
	case 1:
		return OrbitEdges
	}

	return OrbitCenters
}

// transform builds the orbit transformation of rotating every sticker whose
// cubie coordinate along axis satisfies inLayer by quarter·90°.
// Under the orbit convention new[i] = old[perm[i]], the sticker moving from p
// to rotate(p) gives perm[idx(rotate(p))] = idx(p).
func (l *cubeLayout) transform(axis, quarter int, inLayer func(c int) bool) Transformation {
	t := make(Transformation, len(l.orbits))
	var perm []int
	for _, orbit := range l.orbits {
		perm = make([]int, len(l.stickers[orbit]))
		for i := range perm {
			perm[i] = i
		}
		for i, s := range l.stickers[orbit] {
			if !inLayer(s.pos[axis] - s.normal[axis]) {
				continue
			}
			perm[l.index[rotate(s.pos, axis, quarter)]] = i
		}
		t[orbit] = OrbitTransform{Permutation: perm}
	}

	return t
}

func faceByName(name string) face {
	for _, f := range cubeFaces {
		if f.name == name {
			return f
		}
	}
	panic("puzzle: unknown cube face " + name)
}

// Cube generates the definition of an NxN cube for MinCubeSize ≤ n ≤ MaxCubeSize.
//
// Orbits hold stickers (CORNERS, EDGES, CENTERS; empty orbits are omitted) with a
// single orientation each, and the default pattern carries sticker colours, so
// two states are equal iff they look the same.
//
// Families:
//   - U D L R F B          outer layer
//   - Uw … Bw, u … b       two outer layers (n ≥ 3)
//   - M E S                middle slice (odd n)
//   - x y z                whole cube
func Cube(n int) (*Definition, error) {
	if n < MinCubeSize || n > MaxCubeSize {
		return nil, fmt.Errorf("%w: %d (want %d..%d)", ErrCubeSize, n, MinCubeSize, MaxCubeSize)
	}
	l := newCubeLayout(n)
	size := strconv.Itoa(n)
	def := &Definition{
		Name:           size + "x" + size + "x" + size,
		Moves:          make(map[string]Transformation),
		DefaultPattern: make(map[string]OrbitState, len(l.orbits)),
	}
	for _, orbit := range l.orbits {
		pieces := make([]int, len(l.stickers[orbit]))
		for i, s := range l.stickers[orbit] {
			pieces[i] = s.colour
		}
		def.Orbits = append(def.Orbits, OrbitDef{Name: orbit, NumPieces: len(pieces), NumOrientations: 1})
		def.DefaultPattern[orbit] = OrbitState{Pieces: pieces}
	}

	outer := n - 1
	for _, f := range cubeFaces {
		sign := f.sign
		def.Moves[f.name] = l.transform(f.axis, f.quarter, func(c int) bool { return sign*c == outer })
		if n >= 3 {
			wide := l.transform(f.axis, f.quarter, func(c int) bool { return sign*c >= outer-2 })
			def.Moves[f.name+"w"] = wide
			def.Moves[strings.ToLower(f.name)] = wide
		}
	}
	if n%2 == 1 {
		for _, s := range cubeSlices {
			f := faceByName(s.follow)
			def.Moves[s.name] = l.transform(f.axis, f.quarter, func(c int) bool { return c == 0 })
		}
	}
	for _, r := range cubeRotations {
		f := faceByName(r.follow)
		def.Moves[r.name] = l.transform(f.axis, f.quarter, func(int) bool { return true })
	}

	return def, nil
}
