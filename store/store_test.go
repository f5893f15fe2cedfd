// SPDX-License-Identifier: MIT

package store_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/algraph/alg"
	"github.com/katalvlaran/algraph/graph"
	"github.com/katalvlaran/algraph/store"
)

type StoreSuite struct {
	suite.Suite
	ctx   context.Context
	st    *store.Store
	clock time.Time
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	st, err := store.Open(store.InMemoryConfig(), store.WithClock(func() time.Time { return s.clock }))
	require.NoError(s.T(), err)
	s.st = st
}

func (s *StoreSuite) TearDownTest() {
	require.NoError(s.T(), s.st.Close())
}

func sampleGraph(t *testing.T) *graph.Graph {
	g := graph.NewGraph()
	a := g.InsertNode(alg.MustParse("R"), alg.MustParse("R"), graph.Position{X: 500})
	b := g.InsertNode(alg.MustParse("R U"), alg.MustParse("U"), graph.Position{X: 1000})
	_, _, err := g.InsertEdge("n-1", a.ID, alg.MustParse("R"), graph.Normal)
	require.NoError(t, err)
	_, _, err = g.InsertEdge(a.ID, b.ID, alg.MustParse("U"), graph.Normal)
	require.NoError(t, err)
	_, _, err = g.InsertEdge("n-1", b.ID, alg.MustParse("R U"), graph.Confluence, graph.WithVariant("exact"))
	require.NoError(t, err)

	return g
}

// TestSaveLoadRoundTrip verifies a saved graph reloads into an equal graph.
func (s *StoreSuite) TestSaveLoadRoundTrip() {
	g := sampleGraph(s.T())
	saved, err := s.st.Save(s.ctx, "sune", g.Snapshot())
	require.NoError(s.T(), err)
	require.NotEqual(s.T(), uuid.Nil, saved.ID)
	require.Equal(s.T(), s.clock, saved.SavedAt)

	got, err := s.st.Load(s.ctx, "sune")
	require.NoError(s.T(), err)
	require.Equal(s.T(), saved.ID, got.ID)
	require.Equal(s.T(), g.Snapshot(), got.Snapshot)

	reloaded := graph.NewGraph()
	require.NoError(s.T(), reloaded.Load(got.Snapshot))
	n, err := reloaded.Node("n-3")
	require.NoError(s.T(), err)
	require.EqualValues(s.T(), 1, n.Confluence.Count)
	require.Equal(s.T(), "n-4", reloaded.InsertNode(nil, nil, graph.Position{}).ID)
}

// TestOverwriteKeepsID verifies re-saving a name keeps its id and refreshes the stamp.
func (s *StoreSuite) TestOverwriteKeepsID() {
	first, err := s.st.Save(s.ctx, "tree", graph.NewGraph().Snapshot())
	require.NoError(s.T(), err)
	s.clock = s.clock.Add(time.Hour)
	second, err := s.st.Save(s.ctx, "tree", sampleGraph(s.T()).Snapshot())
	require.NoError(s.T(), err)
	require.Equal(s.T(), first.ID, second.ID)
	require.True(s.T(), second.SavedAt.After(first.SavedAt))
}

// TestListAndDelete verifies the manifest and removal.
func (s *StoreSuite) TestListAndDelete() {
	_, err := s.st.Save(s.ctx, "zeta", graph.NewGraph().Snapshot())
	require.NoError(s.T(), err)
	_, err = s.st.Save(s.ctx, "alpha", sampleGraph(s.T()).Snapshot())
	require.NoError(s.T(), err)

	list, err := s.st.List(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 2)
	require.Equal(s.T(), "alpha", list[0].Name)
	require.Equal(s.T(), 3, list[0].Nodes)
	require.Equal(s.T(), 3, list[0].Edges)
	require.Equal(s.T(), "zeta", list[1].Name)

	require.NoError(s.T(), s.st.Delete(s.ctx, "zeta"))
	require.ErrorIs(s.T(), s.st.Delete(s.ctx, "zeta"), store.ErrNotFound)
	_, err = s.st.Load(s.ctx, "zeta")
	require.ErrorIs(s.T(), err, store.ErrNotFound)
	list, err = s.st.List(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 1)
}

// TestInvalidNames rejects empty and nested names.
func (s *StoreSuite) TestInvalidNames() {
	for _, name := range []string{"", "  ", "a/b"} {
		_, err := s.st.Save(s.ctx, name, graph.NewGraph().Snapshot())
		require.ErrorIs(s.T(), err, store.ErrInvalidName, name)
	}
}

// TestPresets covers id assignment, canonical algorithms and validation.
func (s *StoreSuite) TestPresets() {
	p, err := s.st.SavePreset(s.ctx, store.Preset{Algorithm: "R  U R'  U'", Name: "sexy", Color: "#ff8800"})
	require.NoError(s.T(), err)
	require.NotEqual(s.T(), uuid.Nil, p.ID)
	require.Equal(s.T(), "R U R' U'", p.Algorithm)

	_, err = s.st.SavePreset(s.ctx, store.Preset{Algorithm: "R !", Name: "bad"})
	require.ErrorIs(s.T(), err, store.ErrInvalidPreset)
	require.ErrorIs(s.T(), err, alg.ErrParse)
	_, err = s.st.SavePreset(s.ctx, store.Preset{Algorithm: "R", Name: "bad", Color: "orange"})
	require.ErrorIs(s.T(), err, store.ErrInvalidPreset)
	_, err = s.st.SavePreset(s.ctx, store.Preset{Algorithm: "R"})
	require.ErrorIs(s.T(), err, store.ErrInvalidPreset)

	all, err := s.st.Presets(s.ctx)
	require.NoError(s.T(), err)
	require.Equal(s.T(), []store.Preset{p}, all)

	require.NoError(s.T(), s.st.DeletePreset(s.ctx, p.ID))
	require.ErrorIs(s.T(), s.st.DeletePreset(s.ctx, p.ID), store.ErrNotFound)
}

// TestCancelledContext verifies operations honour ctx.
func (s *StoreSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	_, err := s.st.Save(ctx, "x", graph.NewGraph().Snapshot())
	require.ErrorIs(s.T(), err, context.Canceled)
	_, err = s.st.List(ctx)
	require.ErrorIs(s.T(), err, context.Canceled)
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

// TestExportImport round-trips plain and zstd files.
func TestExportImport(t *testing.T) {
	snap := sampleGraph(t).Snapshot()
	sum, err := store.Checksum(snap)
	require.NoError(t, err)
	rec := store.SavedGraph{ID: uuid.New(), Name: "export", SavedAt: time.Unix(0, 0).UTC(), Snapshot: snap, Checksum: sum}

	dir := t.TempDir()
	for _, name := range []string{"graph.json", "graph.json.zst"} {
		path := filepath.Join(dir, name)
		require.NoError(t, store.Export(path, rec))
		got, err := store.Import(path)
		require.NoError(t, err, name)
		require.Equal(t, rec, got)
	}

	plain, err := os.ReadFile(filepath.Join(dir, "graph.json"))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(plain, []byte("{")))
	packed, err := os.ReadFile(filepath.Join(dir, "graph.json.zst"))
	require.NoError(t, err)
	require.False(t, bytes.HasPrefix(packed, []byte("{")))
}

// TestDecodeChecksum rejects tampered snapshots.
func TestDecodeChecksum(t *testing.T) {
	snap := sampleGraph(t).Snapshot()
	sum, err := store.Checksum(snap)
	require.NoError(t, err)
	rec := store.SavedGraph{Name: "x", Snapshot: snap, Checksum: sum}
	rec.Snapshot.Nodes[1].Alg = "L"

	var buf bytes.Buffer
	require.NoError(t, store.Encode(&buf, rec, false))
	_, err = store.Decode(&buf, false)
	require.ErrorIs(t, err, store.ErrChecksum)
}

// TestOpenOnDisk persists across reopen.
func TestOpenOnDisk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	st, err := store.Open(store.DefaultConfig(dir))
	require.NoError(t, err)
	_, err = st.Save(context.Background(), "kept", graph.NewGraph().Snapshot())
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = store.Open(store.DefaultConfig(dir))
	require.NoError(t, err)
	defer st.Close()
	got, err := st.Load(context.Background(), "kept")
	require.NoError(t, err)
	require.Equal(t, "kept", got.Name)

	_, err = store.Open(store.Config{})
	require.Error(t, err)
}
