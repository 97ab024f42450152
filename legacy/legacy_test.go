package legacy

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-treeseq/internal/hdf5"
	"github.com/robert-malhotra/go-treeseq/treeseq"
)

// newTreeSequence builds a tree sequence over [0, 10) with samples 0, 1, 2,
// internal nodes 3 (time 1) and 4 (time 2), a topology change at 5 and the
// given edgesets, sites and mutations.
func newTreeSequence(t *testing.T, ec treeseq.EdgesetColumns, sc treeseq.SiteColumns, mc treeseq.MutationColumns) *treeseq.TreeSequence {
	t.Helper()
	nodes, err := treeseq.NewNodeTable(treeseq.NodeColumns{
		Flags:      []uint32{treeseq.NodeIsSample, treeseq.NodeIsSample, treeseq.NodeIsSample, 0, 0},
		Time:       []float64{0, 0, 0, 1, 2},
		Population: []int32{0, 0, 1, 0, 1},
	})
	require.NoError(t, err)
	edgesets, err := treeseq.NewEdgesetTable(ec)
	require.NoError(t, err)
	sites, err := treeseq.NewSiteTable(sc)
	require.NoError(t, err)
	mutations, err := treeseq.NewMutationTable(mc)
	require.NoError(t, err)

	ts, err := treeseq.New(
		treeseq.Tables{Nodes: nodes, Edgesets: edgesets, Sites: sites, Mutations: mutations},
		[][]byte{[]byte(`{"command":"simulate"}`)},
	)
	require.NoError(t, err)
	return ts
}

func binaryEdgesets() treeseq.EdgesetColumns {
	return treeseq.EdgesetColumns{
		Left:        []float64{0, 5, 0, 5},
		Right:       []float64{5, 10, 5, 10},
		Parent:      []int32{3, 3, 4, 4},
		Children:    []int32{0, 1, 1, 2, 2, 3, 0, 3},
		NumChildren: []uint32{2, 2, 2, 2},
	}
}

func binarySites() (treeseq.SiteColumns, treeseq.MutationColumns) {
	sc := treeseq.SiteColumns{
		Position:       []float64{2, 7.5},
		AncestralState: []string{"0", "0"},
	}
	mc := treeseq.MutationColumns{
		Site:         []int32{0, 1},
		Node:         []int32{3, 2},
		DerivedState: []string{"1", "1"},
	}
	return sc, mc
}

func binaryTreeSequence(t *testing.T) *treeseq.TreeSequence {
	t.Helper()
	sc, mc := binarySites()
	return newTreeSequence(t, binaryEdgesets(), sc, mc)
}

func tempPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "trees.hdf5")
}

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func decodeRecord(t *testing.T, record []byte) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal(record, &doc))
	return doc
}

func assertSameTables(t *testing.T, want, got *treeseq.TreeSequence) {
	t.Helper()
	wt, gt := want.Tables(), got.Tables()

	assert.Equal(t, wt.Nodes.Columns(), gt.Nodes.Columns())

	we, ge := wt.Edgesets.Columns(), gt.Edgesets.Columns()
	assert.InDeltaSlice(t, we.Left, ge.Left, 1e-12)
	assert.InDeltaSlice(t, we.Right, ge.Right, 1e-12)
	assert.Equal(t, we.Parent, ge.Parent)
	assert.Equal(t, we.Children, ge.Children)
	assert.Equal(t, we.NumChildren, ge.NumChildren)

	ws, gs := wt.Sites.Columns(), gt.Sites.Columns()
	assert.InDeltaSlice(t, ws.Position, gs.Position, 1e-12)
	assert.Equal(t, ws.AncestralState, gs.AncestralState)
	assert.Equal(t, wt.Mutations.Columns(), gt.Mutations.Columns())
}

func TestRoundTripV3(t *testing.T) {
	ts := binaryTreeSequence(t)
	path := tempPath(t)
	require.NoError(t, Dump(ts, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assertSameTables(t, ts, loaded)
	assert.Equal(t, 2, loaded.NumTrees())

	provenance := loaded.Provenance()
	require.Len(t, provenance, 2)
	assert.JSONEq(t, `{"command":"simulate"}`, string(provenance[0]))

	upgrade := decodeRecord(t, provenance[1])
	assert.Equal(t, "upgrade", upgrade["command"])
	assert.Equal(t, map[string]any{"source_version": []any{3.0, 999.0}}, upgrade["parameters"])
}

func TestRoundTripV2(t *testing.T) {
	ts := binaryTreeSequence(t)
	path := tempPath(t)
	require.NoError(t, Dump(ts, path, WithVersion(Version2)))

	loaded, err := Load(path)
	require.NoError(t, err)
	assertSameTables(t, ts, loaded)

	provenance := loaded.Provenance()
	require.Len(t, provenance, 3)
	trees := decodeRecord(t, provenance[0])
	assert.Equal(t, "generate_trees", trees["command"])
	assert.Equal(t, 0.0, trees["version"])
	assert.Equal(t, "generate_mutations", decodeRecord(t, provenance[1])["command"])
	assert.Equal(t, map[string]any{"source_version": []any{2.0, 999.0}}, decodeRecord(t, provenance[2])["parameters"])
}

func TestRoundTripCompressed(t *testing.T) {
	for _, v := range []Version{Version2, Version3} {
		t.Run(v.String(), func(t *testing.T) {
			ts := binaryTreeSequence(t)
			path := tempPath(t)
			require.NoError(t, Dump(ts, path, WithVersion(v), Compress()))

			f, err := hdf5.Open(path)
			require.NoError(t, err)
			ds, err := f.OpenDataset("/mutations/position")
			require.NoError(t, err)
			assert.Equal(t, []string{"shuffle", "deflate", "fletcher32"}, ds.Filters())
			require.NoError(t, f.Close())

			loaded, err := Load(path)
			require.NoError(t, err)
			assertSameTables(t, ts, loaded)
		})
	}
}

func TestRoundTripWithoutSites(t *testing.T) {
	ts := newTreeSequence(t, binaryEdgesets(), treeseq.SiteColumns{}, treeseq.MutationColumns{})

	for _, v := range []Version{Version2, Version3} {
		t.Run(v.String(), func(t *testing.T) {
			path := tempPath(t)
			require.NoError(t, Dump(ts, path, WithVersion(v)))

			f, err := hdf5.Open(path)
			require.NoError(t, err)
			assert.False(t, f.Root().HasMember("mutations"))
			require.NoError(t, f.Close())

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, 0, loaded.NumSites())
			assertSameTables(t, ts, loaded)
		})
	}
}

func TestDumpV3Layout(t *testing.T) {
	path := tempPath(t)
	require.NoError(t, Dump(binaryTreeSequence(t), path))

	f, err := hdf5.Open(path)
	require.NoError(t, err)
	defer f.Close()
	root := f.Root()

	version, err := root.Attr("format_version").ReadInt64()
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 999}, version)

	breakpoints, err := f.OpenDataset("/trees/breakpoints")
	require.NoError(t, err)
	vals, err := breakpoints.ReadFloat64()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 5, 10}, vals)

	for name, want := range map[string][]uint32{
		"/trees/records/left":            {0, 1, 0, 1},
		"/trees/records/right":           {1, 2, 1, 2},
		"/trees/records/node":            {3, 3, 4, 4},
		"/trees/records/num_children":    {2, 2, 2, 2},
		"/trees/indexes/insertion_order": {0, 2, 1, 3},
		"/trees/indexes/removal_order":   {2, 0, 3, 1},
		"/trees/nodes/population":        {0, 0, 1, 0, 1},
		"/mutations/node":                {3, 2},
	} {
		ds, err := f.OpenDataset(name)
		require.NoError(t, err, name)
		assert.Equal(t, "u4", ds.TypeName(), name)
		got, err := ds.ReadUint32()
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	provenance, err := f.OpenDataset("/provenance")
	require.NoError(t, err)
	assert.Equal(t, "vlen-str", provenance.TypeName())
	records, err := provenance.ReadString()
	require.NoError(t, err)
	assert.Equal(t, []string{`{"command":"simulate"}`}, records)
}

func TestDumpV2Layout(t *testing.T) {
	path := tempPath(t)
	require.NoError(t, Dump(binaryTreeSequence(t), path, WithVersion(Version2)))

	f, err := hdf5.Open(path)
	require.NoError(t, err)
	defer f.Close()

	sampleSize, err := f.ReadAttr("/@sample_size")
	require.NoError(t, err)
	assert.Equal(t, int64(3), sampleSize)
	length, err := f.ReadAttr("/@sequence_length")
	require.NoError(t, err)
	assert.Equal(t, 10.0, length)
	env, err := f.ReadAttr("/trees@environment")
	require.NoError(t, err)
	assert.Equal(t, `{"msprime_version": 0}`, env)

	children, err := f.OpenDataset("/trees/children")
	require.NoError(t, err)
	assert.Equal(t, []uint64{4, 2}, children.Shape())

	population, err := f.OpenDataset("/trees/population")
	require.NoError(t, err)
	assert.Equal(t, "u1", population.TypeName())

	samplePopulation, err := f.OpenDataset("/samples/population")
	require.NoError(t, err)
	assert.Equal(t, "u1", samplePopulation.TypeName())
	vals, err := samplePopulation.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 0, 1}, vals)
}

func TestDumpNonBinaryRecord(t *testing.T) {
	nodes, err := treeseq.NewNodeTable(treeseq.NodeColumns{
		Flags:      []uint32{treeseq.NodeIsSample, treeseq.NodeIsSample, treeseq.NodeIsSample, 0},
		Time:       []float64{0, 0, 0, 1},
		Population: []int32{0, 0, 0, 0},
	})
	require.NoError(t, err)
	edgesets, err := treeseq.NewEdgesetTable(treeseq.EdgesetColumns{
		Left:        []float64{0},
		Right:       []float64{1},
		Parent:      []int32{3},
		Children:    []int32{0, 1, 2},
		NumChildren: []uint32{3},
	})
	require.NoError(t, err)
	ts, err := treeseq.New(treeseq.Tables{Nodes: nodes, Edgesets: edgesets}, nil)
	require.NoError(t, err)

	for _, v := range []Version{Version2, Version3} {
		t.Run(v.String(), func(t *testing.T) {
			path := tempPath(t)
			err := Dump(ts, path, WithVersion(v))
			require.ErrorIs(t, err, ErrNonBinaryRecord)

			var rerr *RestrictionError
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, v, rerr.Version)
			assert.Equal(t, "edgesets", rerr.Table)
			assert.Equal(t, 0, rerr.Row)
			assert.NoFileExists(t, path)
		})
	}
}

func TestDumpRecurrentMutation(t *testing.T) {
	tests := []struct {
		name string
		sc   treeseq.SiteColumns
		mc   treeseq.MutationColumns
	}{
		{
			name: "two mutations",
			sc:   treeseq.SiteColumns{Position: []float64{1}, AncestralState: []string{"0"}},
			mc:   treeseq.MutationColumns{Site: []int32{0, 0}, Node: []int32{0, 3}, DerivedState: []string{"1", "1"}},
		},
		{
			name: "no mutations",
			sc:   treeseq.SiteColumns{Position: []float64{1}, AncestralState: []string{"0"}},
		},
		{
			name: "non-binary state",
			sc:   treeseq.SiteColumns{Position: []float64{1}, AncestralState: []string{"A"}},
			mc:   treeseq.MutationColumns{Site: []int32{0}, Node: []int32{0}, DerivedState: []string{"T"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTreeSequence(t, binaryEdgesets(), tt.sc, tt.mc)
			for _, v := range []Version{Version2, Version3} {
				path := tempPath(t)
				err := Dump(ts, path, WithVersion(v))
				assert.ErrorIs(t, err, ErrRecurrentMutation, v)
				assert.NoFileExists(t, path)
			}
		})
	}
}

func TestDumpPopulationOutOfRange(t *testing.T) {
	nodes, err := treeseq.NewNodeTable(treeseq.NodeColumns{
		Flags:      []uint32{treeseq.NodeIsSample, treeseq.NodeIsSample, 0},
		Time:       []float64{0, 0, 1},
		Population: []int32{300, 0, 0},
	})
	require.NoError(t, err)
	edgesets, err := treeseq.NewEdgesetTable(treeseq.EdgesetColumns{
		Left: []float64{0}, Right: []float64{1}, Parent: []int32{2},
		Children: []int32{0, 1}, NumChildren: []uint32{2},
	})
	require.NoError(t, err)
	ts, err := treeseq.New(treeseq.Tables{Nodes: nodes, Edgesets: edgesets}, nil)
	require.NoError(t, err)

	path := tempPath(t)
	assert.ErrorIs(t, Dump(ts, path, WithVersion(Version2)), ErrPopulationOutOfRange)
	assert.NoFileExists(t, path)

	require.NoError(t, Dump(ts, path, WithVersion(Version3)))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int32(300), loaded.Population(0))
}

func TestDumpNonContiguousSamples(t *testing.T) {
	nodes, err := treeseq.NewNodeTable(treeseq.NodeColumns{
		Flags:      []uint32{treeseq.NodeIsSample, 0, treeseq.NodeIsSample},
		Time:       []float64{0, 1, 0},
		Population: []int32{0, 0, 0},
	})
	require.NoError(t, err)
	edgesets, err := treeseq.NewEdgesetTable(treeseq.EdgesetColumns{
		Left: []float64{0}, Right: []float64{1}, Parent: []int32{1},
		Children: []int32{0, 2}, NumChildren: []uint32{2},
	})
	require.NoError(t, err)
	ts, err := treeseq.New(treeseq.Tables{Nodes: nodes, Edgesets: edgesets}, nil)
	require.NoError(t, err)

	path := tempPath(t)
	assert.ErrorIs(t, Dump(ts, path), ErrNonContiguousSamples)
	assert.NoFileExists(t, path)
}

func TestDumpNodeBeforeFirstParent(t *testing.T) {
	// Node 2 is neither a sample nor a parent, so a loader taking the
	// smallest parent as the sample count would make it a sample.
	nodes, err := treeseq.NewNodeTable(treeseq.NodeColumns{
		Flags:      []uint32{treeseq.NodeIsSample, treeseq.NodeIsSample, 0, 0},
		Time:       []float64{0, 0, 0.5, 1},
		Population: []int32{0, 0, 0, 0},
	})
	require.NoError(t, err)
	edgesets, err := treeseq.NewEdgesetTable(treeseq.EdgesetColumns{
		Left: []float64{0}, Right: []float64{1}, Parent: []int32{3},
		Children: []int32{0, 1}, NumChildren: []uint32{2},
	})
	require.NoError(t, err)
	ts, err := treeseq.New(treeseq.Tables{Nodes: nodes, Edgesets: edgesets}, nil)
	require.NoError(t, err)

	for _, v := range []Version{Version2, Version3} {
		t.Run(v.String(), func(t *testing.T) {
			path := tempPath(t)
			err := Dump(ts, path, WithVersion(v))
			require.ErrorIs(t, err, ErrNonContiguousSamples)
			var rerr *RestrictionError
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, 2, rerr.Row)
			assert.NoFileExists(t, path)
		})
	}
}

func TestDumpExistingFile(t *testing.T) {
	path := tempPath(t)
	require.NoError(t, os.WriteFile(path, []byte("previous contents"), 0o644))

	nonBinary := newTreeSequence(t, treeseq.EdgesetColumns{
		Left: []float64{0, 0}, Right: []float64{10, 10}, Parent: []int32{3, 4},
		Children: []int32{0, 1, 2, 3}, NumChildren: []uint32{3, 1},
	}, treeseq.SiteColumns{}, treeseq.MutationColumns{})
	require.ErrorIs(t, Dump(nonBinary, path), ErrNonBinaryRecord)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous contents", string(data))

	require.NoError(t, Dump(binaryTreeSequence(t), path))
	_, err = Load(path)
	require.NoError(t, err)
}

func TestDumpUnsupportedVersion(t *testing.T) {
	path := tempPath(t)
	err := Dump(binaryTreeSequence(t), path, WithVersion(4))
	require.ErrorIs(t, err, ErrUnsupportedVersion)

	var verr *VersionError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 4, verr.Major)
	assert.NoFileExists(t, path)
}

func TestDumpLogs(t *testing.T) {
	logger, buf := captureLogger()
	require.NoError(t, Dump(binaryTreeSequence(t), tempPath(t), WithDumpLogger(logger)))
	assert.Contains(t, buf.String(), "dumping legacy tree sequence")
	assert.Contains(t, buf.String(), "version=v3")
}

func TestLoadNotHDF5(t *testing.T) {
	path := tempPath(t)
	require.NoError(t, os.WriteFile(path, []byte("not an hdf5 file at all"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrNotTreeSequence)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.hdf5"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
