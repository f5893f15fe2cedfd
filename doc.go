// SPDX-License-Identifier: MIT

// Package algraph builds trees of puzzle algorithms that know when two
// branches reach the same state.
//
// 🚀 What is algraph?
//
//	A thread-safe engine for exploring move sequences level by level:
//		• Move algebra: parse, invert, simplify, mirror, detect setup moves
//		• Puzzle state: N×N×N cube definitions or YAML-described puzzles
//		• Confluence: equal states, optionally modulo adjustment-face turns
//		• Graph: nodes, Normal and Confluence edges, snapshots, walks
//		• Expansion: per-level growth with merge, link and reposition policies
//		• Store: named graphs and presets in BadgerDB, JSON/zstd export
//
// ✨ Why algraph?
//
//   - Deterministic: node ids and search order are stable run to run
//   - Policy-driven: each duplicate is merged, linked or moved per Config
//   - Observable: stage hooks plus slog and Prometheus counters
//
// Packages:
//
//	alg/        Move, Algorithm and the sequence operations
//	puzzle/     definitions, providers and the Simulator
//	confluence/ adjustment sets and the Oracle
//	graph/      the state graph, snapshots, walks and layout helpers
//	expand/     the Expander: candidate lifecycle and level expansion
//	store/      saved graphs and presets
//	config/     YAML settings
//	cmd/algraph the command-line front end
//
// Quick example:
//
//	    (solved)
//	     │    │
//	     R    R' R2   ← same state as R: merged, parent linked to R
//	     │
//	    R U
//
//	g := graph.NewGraph()
//	sim := puzzle.NewSimulator(puzzle.NewLazy(puzzle.CubeProvider(3)))
//	cfg := expand.DefaultConfig()
//	cfg.DeleteDuplicateOnConfluence = true
//	cfg.MatchIfAUF = false
//	ex, _ := expand.New(g, sim, expand.WithConfig(cfg))
//	rep, _ := ex.ExpandLevels(ctx, g.RootID(), [][]string{{"R", "R' R2"}, {"U"}})
//	fmt.Println(rep.Deleted()) // [n-3]
package algraph
