// SPDX-License-Identifier: MIT

package puzzle_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/katalvlaran/algraph/alg"
	"github.com/katalvlaran/algraph/puzzle"
)

// ExampleSimulator_Fingerprint checks that six sexy moves return to solved.
func ExampleSimulator_Fingerprint() {
	ctx := context.Background()
	sim := puzzle.NewSimulator(puzzle.NewLazy(puzzle.CubeProvider(3)))

	solved, _ := sim.Fingerprint(ctx, nil)
	six, _ := sim.Fingerprint(ctx, alg.MustParse("(R U R' U')6"))
	one, _ := sim.Fingerprint(ctx, alg.MustParse("R U R' U'"))
	fmt.Println(puzzle.Equal(solved, six), puzzle.Equal(solved, one))

	_, err := sim.Fingerprint(ctx, alg.MustParse("Q"))
	fmt.Println(errors.Is(err, puzzle.ErrUnknownMove))
	// Output:
	// true false
	// true
}
