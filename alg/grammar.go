// SPDX-License-Identifier: MIT

package alg

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// moveLexer tokenizes move notation. Families are letter runs ("R", "Rw", "x"),
// amounts are digit runs, and the prime mark is a single apostrophe.
var moveLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Family", Pattern: `[A-Za-z]+`},
	{Name: "Amount", Pattern: `[0-9]+`},
	{Name: "Prime", Pattern: `'`},
	{Name: "Punct", Pattern: `[()\[\],:]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// seqExpr is an ordered run of items.
type seqExpr struct {
	Items []*itemExpr `@@*`
}

// itemExpr is one move, one repeated group, or one bracketed commutator/conjugate.
type itemExpr struct {
	Move    *moveExpr    `  @@`
	Group   *groupExpr   `| @@`
	Bracket *bracketExpr `| @@`
}

type moveExpr struct {
	Family string `@Family`
	Amount *int   `@Amount?`
	Prime  bool   `@Prime?`
}

type groupExpr struct {
	Body   *seqExpr `"(" @@ ")"`
	Amount *int     `@Amount?`
	Prime  bool     `@Prime?`
}

// bracketExpr covers [A, B] (commutator) and [A: B] (conjugate).
type bracketExpr struct {
	A   *seqExpr `"[" @@`
	Sep string   `@( "," | ":" )`
	B   *seqExpr `@@ "]"`
}

// Expansion limits applied while flattening grouped notation.
const (
	// MaxRepeat bounds the repeat count of one group, e.g. "(R U)6".
	MaxRepeat = 1024
	// MaxLength bounds the number of moves a single input may expand to.
	MaxLength = 1 << 16
)

func checkLength(n int) error {
	if n > MaxLength {
		return fmt.Errorf("%w: %d moves exceeds %d", ErrTooLong, n, MaxLength)
	}

	return nil
}

var moveParser = participle.MustBuild[seqExpr](
	participle.Lexer(moveLexer),
	participle.Elide("Whitespace"),
)

// Parse converts move notation into a flat Algorithm.
// Whitespace-only input is the identity. Malformed notation yields an error wrapping ErrParse.
func Parse(text string) (Algorithm, error) {
	if strings.TrimSpace(text) == "" {
		return Algorithm{}, nil
	}
	ast, err := moveParser.ParseString("", text)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrParse, text, err)
	}
	out, err := ast.flatten()
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrParse, text, err)
	}

	return out, nil
}

// MustParse is like Parse but panics on malformed input. Intended for tests and constants.
func MustParse(text string) Algorithm {
	a, err := Parse(text)
	if err != nil {
		panic(err)
	}

	return a
}

// FaceOfToken extracts the family of a single raw move token ("R2'" → "R").
// It reports false when text is not exactly one move.
func FaceOfToken(text string) (string, bool) {
	a, err := Parse(text)
	if err != nil || len(a) != 1 {
		return "", false
	}

	return a[0].Family, true
}

func (s *seqExpr) flatten() (Algorithm, error) {
	out := Algorithm{}
	if s == nil {
		return out, nil
	}
	for _, it := range s.Items {
		part, err := it.flatten()
		if err != nil {
			return nil, err
		}
		if err = checkLength(len(out) + len(part)); err != nil {
			return nil, err
		}
		out = append(out, part...)
	}

	return out, nil
}

func (it *itemExpr) flatten() (Algorithm, error) {
	switch {
	case it.Move != nil:
		return it.Move.flatten()
	case it.Group != nil:
		return it.Group.flatten()
	case it.Bracket != nil:
		return it.Bracket.flatten()
	}

	return Algorithm{}, nil
}

func (m *moveExpr) flatten() (Algorithm, error) {
	amount := 1
	if m.Amount != nil {
		amount = *m.Amount
	}
	if m.Prime {
		amount = -amount
	}
	mv, err := NewMove(m.Family, amount)
	if err != nil {
		return nil, err
	}

	return Algorithm{mv}, nil
}

func (g *groupExpr) flatten() (Algorithm, error) {
	body, err := g.Body.flatten()
	if err != nil {
		return nil, err
	}
	n := 1
	if g.Amount != nil {
		n = *g.Amount
	}
	if n == 0 {
		return nil, fmt.Errorf("group: %w", ErrZeroAmount)
	}
	if n > MaxRepeat {
		return nil, fmt.Errorf("group: %w: repeat %d exceeds %d", ErrTooLong, n, MaxRepeat)
	}
	if err = checkLength(len(body) * n); err != nil {
		return nil, err
	}
	out := make(Algorithm, 0, len(body)*n)
	for i := 0; i < n; i++ {
		out = append(out, body...)
	}
	if g.Prime {
		out = Invert(out)
	}

	return out, nil
}

func (b *bracketExpr) flatten() (Algorithm, error) {
	a, err := b.A.flatten()
	if err != nil {
		return nil, err
	}
	c, err := b.B.flatten()
	if err != nil {
		return nil, err
	}
	total := 2*len(a) + len(c)
	if b.Sep == "," {
		total += len(c)
	}
	if err = checkLength(total); err != nil {
		return nil, err
	}
	out := Concat(a, c, Invert(a))
	if b.Sep == "," {
		out = Concat(out, Invert(c))
	}

	return out, nil
}
