// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/algraph/alg"
	"github.com/katalvlaran/algraph/confluence"
)

var (
	simplifyCancel bool
	mirrorPair     string
	compareAUF     bool
	compareFace    string
)

var simplifyCmd = &cobra.Command{
	Use:     "simplify <alg>",
	Short:   "Merge and cancel adjacent moves",
	GroupID: groupAlgebra,
	Args:    cobra.MinimumNArgs(1),
	RunE: algebraFunc(func(a alg.Algorithm) alg.Algorithm {
		return alg.Simplify(a, alg.Options{Cancel: simplifyCancel})
	}),
}

var invertCmd = &cobra.Command{
	Use:     "invert <alg>",
	Short:   "Print the inverse sequence",
	GroupID: groupAlgebra,
	Args:    cobra.MinimumNArgs(1),
	RunE:    algebraFunc(alg.Invert),
}

var mirrorCmd = &cobra.Command{
	Use:   "mirror <alg>",
	Short: "Mirror a sequence across a pair of opposite faces",
	Long: `Mirror inverts every move and swaps the two families named by --pair.

  algraph mirror "R U R' U'"            # L' U' L U
  algraph mirror --pair F,B "F R F'"    # B' R' B`,
	GroupID: groupAlgebra,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, b, ok := strings.Cut(mirrorPair, ",")
		a, b = strings.TrimSpace(a), strings.TrimSpace(b)
		if !ok || a == "" || b == "" {
			return fmt.Errorf("--pair must be two families separated by a comma, got %q", mirrorPair)
		}
		return algebraFunc(func(x alg.Algorithm) alg.Algorithm { return alg.Mirror(x, a, b) })(cmd, args)
	},
}

var setupCmd = &cobra.Command{
	Use:     "setup <alg>",
	Short:   "Detect the setup moves undone at the end of a sequence",
	GroupID: groupAlgebra,
	Args:    cobra.MinimumNArgs(1),
	RunE:    algebraFunc(alg.DetectSetupMoves),
}

var expandDoublesCmd = &cobra.Command{
	Use:     "expand-doubles <alg>",
	Short:   "Rewrite half turns as two quarter turns",
	GroupID: groupAlgebra,
	Args:    cobra.MinimumNArgs(1),
	RunE:    algebraFunc(alg.ExpandDoubleMoves),
}

var stateCmd = &cobra.Command{
	Use:     "state <alg>",
	Short:   "Print the state digest reached from the solved puzzle",
	GroupID: groupAlgebra,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runState,
}

var compareCmd = &cobra.Command{
	Use:   "compare <alg-a> <alg-b>",
	Short: "Check whether two sequences reach the same state",
	Long: `Compare applies both sequences to the solved puzzle and reports whether the
resulting states are equal, optionally modulo a turn of the adjustment face
before or after the first sequence.

Quote each sequence:
  algraph compare "R U R' U'" "R U R' U' U4"
  algraph compare --auf "R U" "R"`,
	GroupID: groupAlgebra,
	Args:    cobra.ExactArgs(2),
	RunE:    runCompare,
}

func init() {
	simplifyCmd.Flags().BoolVar(&simplifyCancel, "cancel", true, "Merge same-family neighbours and drop full turns")
	mirrorCmd.Flags().StringVar(&mirrorPair, "pair", "R,L", "Families to swap, comma separated")
	compareCmd.Flags().BoolVar(&compareAUF, "auf", false, "Match modulo adjustment-face turns (default from config)")
	compareCmd.Flags().StringVar(&compareFace, "face", "", "Adjustment face (default from config)")

	rootCmd.AddCommand(simplifyCmd, invertCmd, mirrorCmd, setupCmd, expandDoublesCmd, stateCmd, compareCmd)
}

// algebraFunc parses the joined arguments, applies fn and prints the result.
func algebraFunc(fn func(alg.Algorithm) alg.Algorithm) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := alg.Parse(strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), fn(a).String())
		return nil
	}
}

func runState(cmd *cobra.Command, args []string) error {
	a, err := alg.Parse(strings.Join(args, " "))
	if err != nil {
		return err
	}
	sim, done := newSimulator()
	defer done()

	fp, err := sim.Fingerprint(cmd.Context(), a)
	if err != nil {
		return err
	}
	name, err := sim.DefinitionName(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", name, fp.Hex())

	return nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	a, err := alg.Parse(args[0])
	if err != nil {
		return fmt.Errorf("first sequence: %w", err)
	}
	b, err := alg.Parse(args[1])
	if err != nil {
		return fmt.Errorf("second sequence: %w", err)
	}

	cfg := settings.Expand
	if cmd.Flags().Changed("auf") {
		cfg.MatchIfAUF = compareAUF
	}
	if compareFace != "" {
		cfg.AdjustmentFace = compareFace
	}
	if err = cfg.Validate(); err != nil {
		return err
	}

	sim, done := newSimulator()
	defer done()
	oracle, err := confluence.NewOracle(sim, confluence.WithAdjustments(cfg.Adjustments()))
	if err != nil {
		return err
	}
	res, err := oracle.IsConfluent(cmd.Context(), a, b)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch res.Kind {
	case confluence.NoMatch:
		fmt.Fprintln(out, "no match")
	case confluence.Exact:
		fmt.Fprintln(out, "exact")
	default:
		fmt.Fprintf(out, "adjusted: %s\n", res.Variant())
	}

	return nil
}
