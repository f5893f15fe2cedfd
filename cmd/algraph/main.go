// SPDX-License-Identifier: MIT

// Command algraph builds and inspects confluence-aware algorithm trees.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/algraph/config"
	"github.com/katalvlaran/algraph/puzzle"
	"github.com/katalvlaran/algraph/store"
)

// Version is the current algraph CLI version
var Version = "0.3.0"

var (
	configPath string
	logLevel   string

	settings config.Settings
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:     "algraph",
	Short:   "algraph - confluence-aware algorithm trees",
	Long:    `algraph expands trees of puzzle algorithms level by level and merges, links or repositions branches that reach the same puzzle state.`,
	Version: Version,

	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

// Command groups for organized help output
const (
	groupTree    = "tree"
	groupAlgebra = "algebra"
	groupStore   = "store"
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML settings file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")

	rootCmd.AddGroup(
		&cobra.Group{ID: groupTree, Title: "Tree Commands:"},
		&cobra.Group{ID: groupAlgebra, Title: "Move Algebra:"},
		&cobra.Group{ID: groupStore, Title: "Saved Graphs and Presets:"},
	)
}

func loadSettings(cmd *cobra.Command, _ []string) error {
	s, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		s.Log.Level = logLevel
		if err = s.Validate(); err != nil {
			return err
		}
	}
	settings = s
	logger = s.Logger(cmd.ErrOrStderr())

	return nil
}

// newSimulator returns a simulator over the configured puzzle and a release func.
func newSimulator() (*puzzle.Simulator, func()) {
	src := settings.Provider()
	sim := puzzle.NewSimulator(src, puzzle.WithLogger(logger))

	return sim, func() { _ = src.Close() }
}

func openStore() (*store.Store, error) {
	st, err := store.Open(settings.StoreOptions(logger), store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	return st, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
