// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/algraph/expand"
	"github.com/katalvlaran/algraph/graph"
	"github.com/katalvlaran/algraph/store"
)

// levelSeparator splits one level argument into child entries.
const levelSeparator = "|"

var (
	expandFile       string
	expandGraph      string
	expandStart      string
	expandSave       string
	expandJSON       bool
	expandSnap       float64
	expandReposition bool
	expandEdges      bool
	expandDelete     bool
	expandAUF        bool
)

var expandCmd = &cobra.Command{
	Use:   "expand [level...]",
	Short: "Expand a tree level by level",
	Long: `Expand grows a tree from the solved state (or a saved graph) one level at a
time. Each argument is one level; entries within a level are separated by "|".
Every entry is applied under every node of the previous level.

End an entry with ";" to keep it out of the next level. The entry "U_branch"
(the cluster face followed by "_branch") spawns U above, U' below and U2 ahead.

Examples:
  algraph expand "R | L" "U | U'"
  algraph expand --delete --edges "R U R' | U R U' R'"
  algraph expand -f levels.yaml --save pll
  algraph expand --graph pll --start n-4 "U_branch"

A levels file holds a list of levels, each a list of entries:
  - ["R", "L"]
  - ["U", "U'"]`,
	GroupID: groupTree,
	RunE:    runExpand,
}

func init() {
	expandCmd.Flags().StringVarP(&expandFile, "file", "f", "", "YAML or JSON file with the levels to expand")
	expandCmd.Flags().StringVarP(&expandGraph, "graph", "g", "", "Start from the saved graph with this name")
	expandCmd.Flags().StringVar(&expandStart, "start", "", "Node to expand from (default: root)")
	expandCmd.Flags().StringVar(&expandSave, "save", "", "Save the result under this name")
	expandCmd.Flags().BoolVar(&expandJSON, "json", false, "Print the graph snapshot as JSON")
	expandCmd.Flags().Float64Var(&expandSnap, "snap", 0, "Snap node positions to this grid step")
	expandCmd.Flags().BoolVar(&expandReposition, "reposition", false, "Move duplicates onto their match (default from config)")
	expandCmd.Flags().BoolVar(&expandEdges, "edges", false, "Link duplicates to their match (default from config)")
	expandCmd.Flags().BoolVar(&expandDelete, "delete", false, "Delete duplicates and link their parent (default from config)")
	expandCmd.Flags().BoolVar(&expandAUF, "auf", false, "Match modulo adjustment-face turns (default from config)")

	rootCmd.AddCommand(expandCmd)
}

// policy applies the policy flags the user set on top of the configured ones.
func policy(cmd *cobra.Command) expand.Config {
	cfg := settings.Expand
	flags := cmd.Flags()
	if flags.Changed("reposition") {
		cfg.RepositionOnConfluence = expandReposition
	}
	if flags.Changed("edges") {
		cfg.CreateConfluenceEdges = expandEdges
	}
	if flags.Changed("delete") {
		cfg.DeleteDuplicateOnConfluence = expandDelete
	}
	if flags.Changed("auf") {
		cfg.MatchIfAUF = expandAUF
	}

	return cfg
}

// readLevels collects levels from the file flag followed by the arguments.
func readLevels(args []string) ([][]string, error) {
	var levels [][]string
	if expandFile != "" {
		b, err := os.ReadFile(expandFile)
		if err != nil {
			return nil, fmt.Errorf("reading levels: %w", err)
		}
		if err = yaml.Unmarshal(b, &levels); err != nil {
			return nil, fmt.Errorf("parsing levels %s: %w", expandFile, err)
		}
	}
	for _, arg := range args {
		levels = append(levels, strings.Split(arg, levelSeparator))
	}
	if len(levels) == 0 {
		return nil, fmt.Errorf("no levels given: pass them as arguments or with --file")
	}

	return levels, nil
}

func runExpand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	levels, err := readLevels(args)
	if err != nil {
		return err
	}

	var st *store.Store
	if expandGraph != "" || expandSave != "" {
		if st, err = openStore(); err != nil {
			return err
		}
		defer st.Close()
	}

	g := graph.NewGraph()
	if expandGraph != "" {
		rec, err := st.Load(ctx, expandGraph)
		if err != nil {
			return err
		}
		if err = g.Load(rec.Snapshot); err != nil {
			return err
		}
	}

	sim, done := newSimulator()
	defer done()
	ex, err := expand.New(g, sim, expand.WithConfig(policy(cmd)), expand.WithLogger(logger))
	if err != nil {
		return err
	}

	start := expandStart
	if start == "" {
		start = g.RootID()
	}
	rep, err := ex.ExpandLevels(ctx, start, levels)
	if rep != nil {
		printReport(cmd.ErrOrStderr(), rep)
	}
	if err != nil {
		return err
	}
	if expandSnap > 0 {
		if err = g.SnapPositions(expandSnap); err != nil {
			return err
		}
	}

	if expandSave != "" {
		saved, err := st.Save(ctx, expandSave, g.Snapshot())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "saved %q (%s)\n", saved.Name, saved.ID)
	}

	if expandJSON {
		return writeJSON(cmd.OutOrStdout(), g.Snapshot())
	}

	return printTree(cmd.OutOrStdout(), g)
}

func printReport(w io.Writer, rep *expand.Report) {
	fmt.Fprintf(w, "levels: %d  created: %d  deleted: %d  skipped: %d  frontier: %d\n",
		rep.Levels, len(rep.Created()), len(rep.Deleted()), len(rep.Skipped), len(rep.Frontier))
	for _, o := range rep.Outcomes {
		if o.MatchID == "" {
			continue
		}
		fmt.Fprintf(w, "  %s %s %s (%s)\n", o.NodeID, o.Resolution, o.MatchID, o.Result.Variant())
	}
	for _, s := range rep.Skipped {
		fmt.Fprintf(w, "  skipped level %d under %s: %q: %v\n", s.Level, s.ParentID, s.Text, s.Err)
	}
}

// printTree lists nodes breadth-first along Normal edges, then every confluence edge.
func printTree(w io.Writer, g *graph.Graph) error {
	_, err := g.Walk(g.RootID(), graph.WithOnVisit(func(n graph.Node, depth int) error {
		label := n.Alg.String()
		if label == "" {
			label = "(solved)"
		}
		var marks []string
		if n.Terminal {
			marks = append(marks, "terminal")
		}
		if n.Confluence.Count > 0 {
			marks = append(marks, fmt.Sprintf("confluence x%d", n.Confluence.Count))
		}
		suffix := ""
		if len(marks) > 0 {
			suffix = "  [" + strings.Join(marks, ", ") + "]"
		}
		_, err := fmt.Fprintf(w, "%s%s  %s  @(%g,%g)%s\n",
			strings.Repeat("  ", depth), n.ID, label, n.Position.X, n.Position.Y, suffix)
		return err
	}))
	if err != nil {
		return err
	}

	for _, e := range g.Edges() {
		if e.Kind != graph.Confluence {
			continue
		}
		fmt.Fprintf(w, "%s  %s -> %s  %s\n", e.ID, e.Source, e.Target, e.Variant)
	}

	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
