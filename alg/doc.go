// SPDX-License-Identifier: MIT

// Package alg implements the move algebra used by the rest of algraph.
//
// An Algorithm is an ordered list of atomic Moves. A Move names a family
// (face, wide turn, slice, or whole-cube rotation such as "R", "Rw", "M"
// or "x") together with a signed quarter-turn amount:
//
//	R   → {R, 1}
//	R'  → {R, -1}
//	R2  → {R, 2}
//	R2' → {R, -2}
//
// Parsing accepts plain move sequences plus the usual grouping notation,
// which is flattened to leaf moves on parse:
//
//	(R U)2'      repeated group, optionally inverted
//	[R, U]       commutator  → R U R' U'
//	[R: U]       conjugate   → R U R'
//
// Operations:
//
//   - Parse / MustParse        text → Algorithm (ErrParse on malformed input)
//   - Invert                   reverse order and invert each move
//   - Concat                   plain concatenation, unsimplified
//   - Simplify                 stack-based cancellation of adjacent same-family moves
//   - Mirror                   per-move invert plus a face swap; order is kept
//   - ExpandDoubleMoves        half turns → two quarter turns of the same handedness
//   - DetectSetupMoves         "X ... X'" wrapping detection from both ends
//
// Equality of two Algorithms as move lists is not equality of the states
// they reach; package confluence answers the latter.
package alg
