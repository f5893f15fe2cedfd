// SPDX-License-Identifier: MIT

// File: ops.go
// Role: sequence transforms over Algorithm values.
//
// Determinism:
//   - Every transform is pure; inputs are never mutated.
package alg

// Invert reverses a and inverts each move. Invert(Invert(a)) equals a.
func Invert(a Algorithm) Algorithm {
	out := make(Algorithm, len(a))
	for i, m := range a {
		out[len(a)-1-i] = m.Invert()
	}

	return out
}

// Concat joins the inputs in order without simplifying.
func Concat(parts ...Algorithm) Algorithm {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make(Algorithm, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}

	return out
}

// Options tunes Simplify.
type Options struct {
	// Cancel merges adjacent same-family moves and drops runs that sum to a full turn.
	Cancel bool
}

// Simplify returns a canonical form of a.
//
// With Cancel set the sequence is reduced with a stack: each incoming move
// is merged into the top of the stack when it shares the family, so
// cancellations cascade ("R U U' R'" → identity). Merged amounts are taken
// modulo four and mapped into {1, 2, -1}. A move that is never merged keeps
// its written direction (R2' stays R2') unless it is a whole number of turns
// (dropped) or a three-quarter turn (flipped to the quarter turn the other way).
// The result has no two adjacent moves of one family, so Simplify is idempotent.
//
// Without Cancel a copy is returned.
func Simplify(a Algorithm, opts Options) Algorithm {
	if !opts.Cancel {
		return a.Clone()
	}
	stack := make(Algorithm, 0, len(a))
	var top int
	for _, m := range a {
		top = len(stack) - 1
		if top >= 0 && stack[top].Family == m.Family {
			amt := wrapMerged(stack[top].Amount + m.Amount)
			if amt == 0 {
				stack = stack[:top]
			} else {
				stack[top] = Move{Family: m.Family, Amount: amt}
			}
			continue
		}
		if amt := wrapSingle(m.Amount); amt != 0 {
			stack = append(stack, Move{Family: m.Family, Amount: amt})
		}
	}

	return stack
}

// wrapMerged maps a summed amount into {0, 1, 2, -1}.
func wrapMerged(amount int) int {
	switch ((amount % 4) + 4) % 4 {
	case 1:
		return 1
	case 2:
		return 2
	case 3:
		return -1
	}

	return 0
}

// wrapSingle normalizes an unmerged amount; ±1 and ±2 are kept as written.
func wrapSingle(amount int) int {
	switch amount {
	case 1, -1, 2, -2:
		return amount
	}

	return wrapMerged(amount)
}

// Mirror inverts every move in place and swaps families faceA and faceB.
// Moves of other families are only inverted. The order of moves is kept,
// so Mirror(Mirror(a, f, b), f, b) equals a.
func Mirror(a Algorithm, faceA, faceB string) Algorithm {
	out := make(Algorithm, len(a))
	var inv Move
	for i, m := range a {
		inv = m.Invert()
		switch inv.Family {
		case faceA:
			inv.Family = faceB
		case faceB:
			inv.Family = faceA
		}
		out[i] = inv
	}

	return out
}

// ExpandDoubleMoves replaces every half turn with two quarter turns of the
// same family and handedness: R2 → R R, R2' → R' R'.
func ExpandDoubleMoves(a Algorithm) Algorithm {
	out := make(Algorithm, 0, len(a)*2)
	var q Move
	for _, m := range a {
		if !m.IsHalfTurn() {
			out = append(out, m)
			continue
		}
		q = Move{Family: m.Family, Amount: m.Amount / 2}
		out = append(out, q, q)
	}

	return out
}

// FaceOf returns the family token of m.
func FaceOf(m Move) string { return m.Family }

// IsHalfTurn reports whether m is a double turn.
func IsHalfTurn(m Move) bool { return m.IsHalfTurn() }

// DetectSetupMoves returns the leading moves of a that are undone at its end.
//
// Implementation:
//   - Stage 1: Walk i from the front and j from the back while i < j.
//   - Stage 2: When a[j] is the inverse of a[i], or both are half turns of one
//     family, record a[i] and step both pointers inward.
//   - Stage 3: Otherwise, if a[j-1] is a half turn and a[i], a[j] share a family,
//     record a[i] once more (the undo is hidden behind a double turn), then stop.
//
// Example: "R U L D F D' L' U' R'" → [R U L D].
func DetectSetupMoves(a Algorithm) Algorithm {
	setup := Algorithm{}
	i, j := 0, len(a)-1
	for i < j {
		if a[i] == a[j].Invert() || (a[i].IsHalfTurn() && a[j].IsHalfTurn() && a[i].Family == a[j].Family) {
			setup = append(setup, a[i])
			i++
			j--
			continue
		}
		if a[j-1].IsHalfTurn() && a[i].Family == a[j].Family {
			setup = append(setup, a[i])
		}
		break
	}

	return setup
}
