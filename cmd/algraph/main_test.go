// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/algraph/alg"
	"github.com/katalvlaran/algraph/config"
	"github.com/katalvlaran/algraph/graph"
)

// cli runs rootCmd against a settings file rooted in a temp directory.
type cli struct {
	t   *testing.T
	dir string
	cfg string
}

func newCLI(t *testing.T) *cli {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "algraph.yaml")
	doc := "store:\n  path: " + filepath.Join(dir, "db") + "\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(cfg, []byte(doc), 0o600))

	return &cli{t: t, dir: dir, cfg: cfg}
}

// resetFlags restores every flag to its default so runs do not leak into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func (c *cli) run(args ...string) (string, string, error) {
	c.t.Helper()
	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--config", c.cfg}, args...))
	err := rootCmd.Execute()

	return stdout.String(), stderr.String(), err
}

func (c *cli) ok(args ...string) string {
	c.t.Helper()
	out, stderr, err := c.run(args...)
	require.NoError(c.t, err, stderr)

	return out
}

func TestAlgebraCommands(t *testing.T) {
	c := newCLI(t)
	cases := []struct {
		args []string
		want string
	}{
		{[]string{"simplify", "R U U' R' R"}, "R"},
		{[]string{"simplify", "R", "U", "U'"}, "R"},
		{[]string{"simplify", "--cancel=false", "R R"}, "R R"},
		{[]string{"invert", "R U"}, "U' R'"},
		{[]string{"mirror", "R U R' U'"}, "L' U' L U"},
		{[]string{"mirror", "--pair", "F,B", "F R F'"}, "B' R' B"},
		{[]string{"setup", "R U L D F D' L' U' R'"}, "R U L D"},
		{[]string{"expand-doubles", "R2 U"}, "R R U"},
	}
	for _, tc := range cases {
		t.Run(strings.Join(tc.args, " "), func(t *testing.T) {
			assert.Equal(t, tc.want+"\n", c.ok(tc.args...))
		})
	}
}

func TestAlgebraErrors(t *testing.T) {
	c := newCLI(t)
	_, _, err := c.run("simplify", "R !")
	require.ErrorIs(t, err, alg.ErrParse)
	_, _, err = c.run("mirror", "--pair", "R", "R U")
	require.Error(t, err)
	_, _, err = c.run("--log-level", "loud", "invert", "R")
	require.ErrorIs(t, err, config.ErrInvalid)
}

func TestCompare(t *testing.T) {
	c := newCLI(t)
	assert.Equal(t, "exact\n", c.ok("compare", "R", "R' R2"))
	assert.Equal(t, "adjusted: post U'\n", c.ok("compare", "--auf", "R U", "R"))
	assert.Equal(t, "no match\n", c.ok("compare", "--auf=false", "R U", "R"))
	assert.Equal(t, "adjusted: pre F'\n", c.ok("compare", "--auf", "--face", "F", "F R", "R"))
}

func TestState(t *testing.T) {
	c := newCLI(t)
	solved := c.ok("state", "R R R R")
	assert.True(t, strings.HasPrefix(solved, "3x3x3 "))
	assert.Equal(t, solved, c.ok("state", "U2 U2"))
	assert.NotEqual(t, solved, c.ok("state", "R"))
}

func TestExpandSaveAndManage(t *testing.T) {
	c := newCLI(t)
	out, stderr, err := c.run("expand", "--save", "demo", "R | L", "U")
	require.NoError(t, err, stderr)
	assert.Contains(t, stderr, "levels: 2  created: 4  deleted: 0  skipped: 0  frontier: 2")
	assert.Contains(t, out, "n-1  (solved)")
	assert.Contains(t, out, "    n-4  R U")
	assert.Contains(t, out, "    n-5  L U")

	list := c.ok("graphs", "list")
	assert.Contains(t, list, "demo")

	var snap graph.Snapshot
	require.NoError(t, json.Unmarshal([]byte(c.ok("graphs", "show", "--json", "demo")), &snap))
	assert.Len(t, snap.Nodes, 5)
	assert.Len(t, snap.Edges, 4)

	// Continue the saved tree from one of its leaves.
	out = c.ok("expand", "--graph", "demo", "--start", "n-4", "--save", "demo", "R'")
	assert.Contains(t, out, "n-6  R U R'")
	assert.Equal(t, "R U R'\n3 moves via n-1 -> n-2 -> n-4 -> n-6\n", c.ok("graphs", "route", "demo", "n-1", "n-6"))

	file := filepath.Join(c.dir, "demo.json.zst")
	c.ok("graphs", "export", "demo", file)
	c.ok("graphs", "delete", "demo")
	_, _, err = c.run("graphs", "show", "demo")
	require.Error(t, err)
	assert.Contains(t, c.ok("graphs", "list"), "no saved graphs")

	assert.Contains(t, c.ok("graphs", "import", "--name", "copy", file), `imported "copy" (6 nodes, 5 edges)`)
	assert.Contains(t, c.ok("graphs", "show", "copy"), "n-6  R U R'")
}

func TestExpandMergesDuplicates(t *testing.T) {
	c := newCLI(t)
	out, stderr, err := c.run("expand", "--delete", "R | R' R2")
	require.NoError(t, err, stderr)
	assert.Contains(t, stderr, "n-3 merged n-2 (exact)")
	assert.NotContains(t, out, "n-3")
	assert.Contains(t, out, "e3  n-1 -> n-2  exact")
}

func TestExpandFromFile(t *testing.T) {
	c := newCLI(t)
	levels := filepath.Join(c.dir, "levels.yaml")
	require.NoError(t, os.WriteFile(levels, []byte("- [\"R\", \"L;\"]\n- [\"U\"]\n"), 0o600))

	out, stderr, err := c.run("expand", "-f", levels, "--json")
	require.NoError(t, err, stderr)
	var snap graph.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Len(t, snap.Nodes, 4, "terminal L is not expanded")

	_, _, err = c.run("expand")
	require.Error(t, err)
	_, _, err = c.run("expand", "--start", "n-01", "R")
	require.ErrorIs(t, err, graph.ErrMissingNode)
}

func TestPresets(t *testing.T) {
	c := newCLI(t)
	added := c.ok("presets", "add", "--name", "sexy", "--color", "#ff8800", "R  U R'  U'")
	id, algText, ok := strings.Cut(strings.TrimSpace(added), " ")
	require.True(t, ok)
	assert.Equal(t, "R U R' U'", algText)

	list := c.ok("presets", "list")
	assert.Contains(t, list, "sexy")
	assert.Contains(t, list, "#ff8800")

	c.ok("presets", "delete", id)
	assert.NotContains(t, c.ok("presets", "list"), "sexy")

	_, _, err := c.run("presets", "delete", "not-a-uuid")
	require.Error(t, err)
	_, _, err = c.run("presets", "add", "R")
	require.Error(t, err, "name is required")
}
