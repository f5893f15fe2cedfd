// SPDX-License-Identifier: MIT

package alg

import (
	"errors"
	"strconv"
	"strings"
)

// Sentinel errors for move algebra.
var (
	// ErrParse indicates malformed move notation.
	ErrParse = errors.New("alg: parse error")

	// ErrEmptyFamily indicates a Move without a family token.
	ErrEmptyFamily = errors.New("alg: empty move family")

	// ErrZeroAmount indicates a Move whose written amount is zero.
	ErrZeroAmount = errors.New("alg: zero move amount")

	// ErrTooLong indicates notation that expands past MaxRepeat or MaxLength.
	ErrTooLong = errors.New("alg: expansion too long")
)

// Move is one atomic turn. Amount is a signed number of quarter turns:
// positive is clockwise, negative counter-clockwise.
type Move struct {
	Family string
	Amount int
}

// NewMove validates family and amount and returns the Move.
func NewMove(family string, amount int) (Move, error) {
	if family == "" {
		return Move{}, ErrEmptyFamily
	}
	if amount == 0 {
		return Move{}, ErrZeroAmount
	}

	return Move{Family: family, Amount: amount}, nil
}

// String renders the move in standard notation, e.g. "R", "R2'", "Uw'".
func (m Move) String() string {
	var sb strings.Builder
	sb.WriteString(m.Family)
	abs := m.Amount
	if abs < 0 {
		abs = -abs
	}
	if abs != 1 {
		sb.WriteString(strconv.Itoa(abs))
	}
	if m.Amount < 0 {
		sb.WriteByte('\'')
	}

	return sb.String()
}

// Invert returns the move with its direction flipped (R2 → R2').
func (m Move) Invert() Move { return Move{Family: m.Family, Amount: -m.Amount} }

// IsHalfTurn reports whether the move is a double turn in either direction.
func (m Move) IsHalfTurn() bool { return m.Amount == 2 || m.Amount == -2 }

// Algorithm is an ordered sequence of moves. The empty Algorithm is the identity.
type Algorithm []Move

// String joins the moves with single spaces. The identity renders as "".
func (a Algorithm) String() string {
	if len(a) == 0 {
		return ""
	}
	parts := make([]string, len(a))
	for i, m := range a {
		parts[i] = m.String()
	}

	return strings.Join(parts, " ")
}

// Len returns the number of moves.
func (a Algorithm) Len() int { return len(a) }

// IsIdentity reports whether a has no moves.
func (a Algorithm) IsIdentity() bool { return len(a) == 0 }

// Clone returns an independent copy of a. A nil input yields an empty, non-nil Algorithm.
func (a Algorithm) Clone() Algorithm {
	out := make(Algorithm, len(a))
	copy(out, a)

	return out
}

// Equal compares two algorithms as move lists, not as puzzle states.
func (a Algorithm) Equal(b Algorithm) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// Families returns the distinct move families of a in first-seen order.
func (a Algorithm) Families() []string {
	seen := make(map[string]struct{}, len(a))
	out := make([]string, 0, len(a))
	for _, m := range a {
		if _, ok := seen[m.Family]; ok {
			continue
		}
		seen[m.Family] = struct{}{}
		out = append(out, m.Family)
	}

	return out
}
