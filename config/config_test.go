// SPDX-License-Identifier: MIT

package config_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/algraph/config"
	"github.com/katalvlaran/algraph/graph"
)

func TestDefault(t *testing.T) {
	s := config.Default()
	require.NoError(t, s.Validate())
	assert.True(t, s.Expand.RepositionOnConfluence)
	assert.True(t, s.Expand.MatchIfAUF)
	assert.False(t, s.Expand.CreateConfluenceEdges)
	assert.False(t, s.Expand.DeleteDuplicateOnConfluence)
	assert.Equal(t, 500.0, s.Expand.Spacing)
	assert.Equal(t, 3, s.Puzzle.Size)
	assert.Equal(t, "info", s.Log.Level)
}

func TestParse_Overlay(t *testing.T) {
	doc := `
expand:
  deleteDuplicateOnConfluence: true
  matchIfAUF: false
  nudge: {x: 10, y: -5}
puzzle:
  size: 4
store:
  inMemory: true
  path: ""
log:
  format: json
`
	s, err := config.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	assert.True(t, s.Expand.DeleteDuplicateOnConfluence)
	assert.False(t, s.Expand.MatchIfAUF)
	assert.True(t, s.Expand.RepositionOnConfluence, "unset keys keep defaults")
	assert.Equal(t, graph.Position{X: 10, Y: -5}, s.Expand.Nudge)
	assert.Equal(t, 4, s.Puzzle.Size)
	assert.True(t, s.StoreOptions(nil).InMemory)
	assert.Equal(t, "json", s.Log.Format)
}

func TestParse_Empty(t *testing.T) {
	s, err := config.Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), s)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown key":   "expand:\n  colour: red\n",
		"size too big":  "puzzle:\n  size: 9\n",
		"bad level":     "log:\n  level: loud\n",
		"bad format":    "log:\n  format: xml\n",
		"zero spacing":  "expand:\n  spacing: 0\n",
		"no store path": "store:\n  path: \"\"\n",
		"not yaml":      "expand: [\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Parse(strings.NewReader(doc))
			require.ErrorIs(t, err, config.ErrInvalid)
		})
	}
}

func TestLoad(t *testing.T) {
	s, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), s)

	path := filepath.Join(t.TempDir(), "algraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte("puzzle:\n  size: 2\n"), 0o600))
	s, err = config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Puzzle.Size)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestProvider(t *testing.T) {
	s := config.Default()
	s.Puzzle.Size = 2
	p := s.Provider()
	def, err := p.Definition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2x2x2", def.Name)
	require.NoError(t, p.Close())
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	s := config.Default()
	s.Log = config.LogConfig{Level: "warn", Format: "json"}
	l := s.Logger(&buf)
	l.Info("hidden")
	l.Warn("shown", "k", 1)
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
}
