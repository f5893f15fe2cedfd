// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/algraph/graph"
	"github.com/katalvlaran/algraph/store"
)

var (
	showJSON    bool
	importName  string
	routeNormal bool
	presetName  string
	presetColor string
)

var graphsCmd = &cobra.Command{
	Use:     "graphs",
	Short:   "Manage saved graphs",
	GroupID: groupStore,
}

var graphsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved graphs",
	Args:  cobra.NoArgs,
	RunE:  runGraphsList,
}

var graphsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a saved graph",
	Args:  cobra.ExactArgs(1),
	RunE:  runGraphsShow,
}

var graphsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			return st.Delete(cmd.Context(), args[0])
		})
	},
}

var graphsExportCmd = &cobra.Command{
	Use:   "export <name> <file>",
	Short: "Write a saved graph to a JSON file (zstd when the file ends in .zst)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st *store.Store) error {
			rec, err := st.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return store.Export(args[1], rec)
		})
	},
}

var graphsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Save a graph from an exported file",
	Args:  cobra.ExactArgs(1),
	RunE:  runGraphsImport,
}

var graphsRouteCmd = &cobra.Command{
	Use:   "route <name> <from> <to>",
	Short: "Print the shortest known sequence between two nodes of a saved graph",
	Args:  cobra.ExactArgs(3),
	RunE:  runGraphsRoute,
}

var presetsCmd = &cobra.Command{
	Use:     "presets",
	Short:   "Manage algorithm presets",
	GroupID: groupStore,
}

var presetsAddCmd = &cobra.Command{
	Use:   "add <alg>",
	Short: "Save an algorithm preset",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPresetsAdd,
}

var presetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List presets",
	Args:  cobra.NoArgs,
	RunE:  runPresetsList,
}

var presetsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid preset id %q: %w", args[0], err)
		}
		return withStore(func(st *store.Store) error {
			return st.DeletePreset(cmd.Context(), id)
		})
	},
}

func init() {
	graphsShowCmd.Flags().BoolVar(&showJSON, "json", false, "Print the snapshot as JSON")
	graphsRouteCmd.Flags().BoolVar(&routeNormal, "normal-only", false, "Ignore confluence edges")
	graphsImportCmd.Flags().StringVar(&importName, "name", "", "Save under this name instead of the exported one")
	presetsAddCmd.Flags().StringVarP(&presetName, "name", "n", "", "Preset name (required)")
	presetsAddCmd.Flags().StringVar(&presetColor, "color", "", "Display color as #rrggbb")
	_ = presetsAddCmd.MarkFlagRequired("name")

	graphsCmd.AddCommand(graphsListCmd, graphsShowCmd, graphsDeleteCmd, graphsExportCmd, graphsImportCmd, graphsRouteCmd)
	presetsCmd.AddCommand(presetsAddCmd, presetsListCmd, presetsDeleteCmd)
	rootCmd.AddCommand(graphsCmd, presetsCmd)
}

// withStore opens the store for the duration of fn.
func withStore(fn func(*store.Store) error) (err error) {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); err == nil {
			err = cerr
		}
	}()

	return fn(st)
}

func runGraphsList(cmd *cobra.Command, _ []string) error {
	return withStore(func(st *store.Store) error {
		list, err := st.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no saved graphs")
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tNODES\tEDGES\tSAVED\tID")
		for _, s := range list {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n", s.Name, s.Nodes, s.Edges, s.SavedAt.Format(time.RFC3339), s.ID)
		}
		return tw.Flush()
	})
}

func runGraphsShow(cmd *cobra.Command, args []string) error {
	return withStore(func(st *store.Store) error {
		rec, err := st.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if showJSON {
			return writeJSON(cmd.OutOrStdout(), rec.Snapshot)
		}
		g := graph.NewGraph()
		if err = g.Load(rec.Snapshot); err != nil {
			return err
		}
		return printTree(cmd.OutOrStdout(), g)
	})
}

func runGraphsRoute(cmd *cobra.Command, args []string) error {
	return withStore(func(st *store.Store) error {
		rec, err := st.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		g := graph.NewGraph()
		if err = g.Load(rec.Snapshot); err != nil {
			return err
		}
		var opts []graph.RouteOption
		if routeNormal {
			opts = append(opts, graph.WithRouteKinds(graph.Normal))
		}
		r, err := g.ShortestRoute(args[1], args[2], opts...)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n%d moves via %s\n", r.Alg, r.Moves, strings.Join(r.Nodes, " -> "))
		return nil
	})
}

func runGraphsImport(cmd *cobra.Command, args []string) error {
	rec, err := store.Import(args[0])
	if err != nil {
		return err
	}
	name := rec.Name
	if importName != "" {
		name = importName
	}
	// Reject snapshots the graph model cannot reload before they are stored.
	if err = graph.NewGraph().Load(rec.Snapshot); err != nil {
		return err
	}

	return withStore(func(st *store.Store) error {
		saved, err := st.Save(cmd.Context(), name, rec.Snapshot)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %q (%d nodes, %d edges)\n", saved.Name, len(saved.Snapshot.Nodes), len(saved.Snapshot.Edges))
		return nil
	})
}

func runPresetsAdd(cmd *cobra.Command, args []string) error {
	return withStore(func(st *store.Store) error {
		p, err := st.SavePreset(cmd.Context(), store.Preset{
			Algorithm: strings.Join(args, " "),
			Name:      presetName,
			Color:     presetColor,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", p.ID, p.Algorithm)
		return nil
	})
}

func runPresetsList(cmd *cobra.Command, _ []string) error {
	return withStore(func(st *store.Store) error {
		all, err := st.Presets(cmd.Context())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tCOLOR\tALGORITHM")
		for _, p := range all {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Color, p.Algorithm)
		}
		return tw.Flush()
	})
}
