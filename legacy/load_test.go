package legacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-treeseq/internal/hdf5"
)

// v2File describes a hand-written version 2 file. The zero value of each
// optional field leaves the corresponding member out.
type v2File struct {
	version          []int64
	environment      string
	omit             string // /trees column to leave out
	samplePopulation []uint32
	sampleTime       []float64
	position         []float64
	mutationNode     []uint32
}

func defaultV2File() v2File {
	return v2File{
		version:          []int64{2, 3},
		environment:      `{"msprime_version": "0.4.0"}`,
		samplePopulation: []uint32{0, 0, 1},
		sampleTime:       []float64{0, 0, 0.5},
		position:         []float64{2, 7},
		mutationNode:     []uint32{3, 2},
	}
}

func createFile(t *testing.T, fill func(root *hdf5.Group)) string {
	t.Helper()
	path := tempPath(t)
	f, err := hdf5.Create(path)
	require.NoError(t, err)
	fill(f.Root())
	require.NoError(t, f.Close())
	return path
}

func writeV2(t *testing.T, file v2File) string {
	t.Helper()
	return createFile(t, func(root *hdf5.Group) {
		if file.version != nil {
			require.NoError(t, root.SetAttr("format_version", file.version))
		}

		trees, err := root.CreateGroup("trees")
		require.NoError(t, err)
		require.NoError(t, trees.SetAttr("environment", file.environment))
		require.NoError(t, trees.SetAttr("parameters", `{"sample_size": 3}`))
		for _, c := range []column{
			{name: "node", data: []uint32{3, 3, 4, 4}},
			{name: "left", data: []float64{0, 5, 0, 5}},
			{name: "right", data: []float64{5, 10, 5, 10}},
			{name: "time", data: []float64{1, 1, 2, 2}},
			{name: "population", data: []uint8{0, 0, 1, 1}},
			{name: "children", data: [][]uint32{{0, 1}, {1, 2}, {2, 3}, {0, 3}}},
		} {
			if c.name == file.omit {
				continue
			}
			_, err := trees.CreateDataset(c.name, c.data)
			require.NoError(t, err)
		}

		if file.samplePopulation != nil {
			samples, err := root.CreateGroup("samples")
			require.NoError(t, err)
			_, err = samples.CreateDataset("population", file.samplePopulation, hdf5.WithDatatype(hdf5.Uint8()))
			require.NoError(t, err)
			if file.sampleTime != nil {
				_, err = samples.CreateDataset("time", file.sampleTime)
				require.NoError(t, err)
			}
		}

		if file.position != nil {
			mutations, err := root.CreateGroup("mutations")
			require.NoError(t, err)
			require.NoError(t, mutations.SetAttr("environment", `{"msprime_version": "0.4.0"}`))
			require.NoError(t, mutations.SetAttr("parameters", `{"mutation_rate": 0.1}`))
			_, err = mutations.CreateDataset("position", file.position)
			require.NoError(t, err)
			_, err = mutations.CreateDataset("node", file.mutationNode)
			require.NoError(t, err)
		}
	})
}

func TestLoadV2(t *testing.T) {
	assert := assert.New(t)

	ts, err := Load(writeV2(t, defaultV2File()))
	require.NoError(t, err)

	assert.Equal(5, ts.NumNodes())
	assert.Equal([]int32{0, 1, 2}, ts.Samples())
	assert.Equal(10.0, ts.SequenceLength())
	assert.Equal(0.5, ts.Time(2))
	assert.Equal(int32(1), ts.Population(2))
	assert.Equal(2.0, ts.Time(4))
	assert.Equal(int32(1), ts.Population(4))
	assert.Equal(2, ts.NumTrees())

	sites := ts.Sites()
	require.Len(t, sites, 2)
	assert.Equal(7.0, sites[1].Position)
	assert.Equal("0", sites[1].AncestralState)
	assert.Equal(int32(2), sites[1].Mutations[0].Node)
	assert.Equal("1", sites[1].Mutations[0].DerivedState)

	provenance := ts.Provenance()
	require.Len(t, provenance, 3)
	trees := decodeRecord(t, provenance[0])
	assert.Equal("msprime", trees["software"])
	assert.Equal("0.4.0", trees["version"])
	assert.Equal(map[string]any{"sample_size": 3.0}, trees["parameters"])
	mutations := decodeRecord(t, provenance[1])
	assert.Equal("generate_mutations", mutations["command"])
	assert.Equal(map[string]any{"mutation_rate": 0.1}, mutations["parameters"])
	assert.Equal(map[string]any{"source_version": []any{2.0, 3.0}}, decodeRecord(t, provenance[2])["parameters"])
}

func TestLoadV2WithoutOptionalGroups(t *testing.T) {
	v2 := defaultV2File()
	v2.samplePopulation = nil
	v2.position = nil

	ts, err := Load(writeV2(t, v2))
	require.NoError(t, err)
	assert.Equal(t, 0, ts.NumSites())
	assert.Equal(t, int32(0), ts.Population(2))
	assert.Len(t, ts.Provenance(), 2)
}

func TestLoadV2SampleTimeOptional(t *testing.T) {
	v2 := defaultV2File()
	v2.sampleTime = nil
	v2.samplePopulation = []uint32{2, 2, 2}

	ts, err := Load(writeV2(t, v2))
	require.NoError(t, err)
	assert.Equal(t, 0.0, ts.Time(2))
	assert.Equal(t, int32(2), ts.Population(0))
}

func TestLoadMalformedEnvironment(t *testing.T) {
	v2 := defaultV2File()
	v2.environment = "{not json"
	logger, buf := captureLogger()

	ts, err := Load(writeV2(t, v2), WithLogger(logger))
	require.NoError(t, err)

	trees := decodeRecord(t, ts.Provenance()[0])
	assert.Equal(t, map[string]any{}, trees["environment"])
	assert.Equal(t, "Unknown_version", trees["version"])
	assert.Equal(t, map[string]any{"sample_size": 3.0}, trees["parameters"])

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "malformed provenance attribute")
	assert.Contains(t, buf.String(), "field=environment")
	assert.Contains(t, buf.String(), "command=generate_trees")
}

func TestLoadDuplicatePositions(t *testing.T) {
	v2 := defaultV2File()
	v2.position = []float64{4, 4, 8}
	v2.mutationNode = []uint32{3, 0, 1}
	path := writeV2(t, v2)

	ts, err := Load(path)
	assert.Nil(t, ts)
	require.ErrorIs(t, err, ErrDuplicatePositions)
	var derr *DuplicatePositionsError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, 1, derr.Duplicates)

	ts, err = Load(path, RemoveDuplicatePositions())
	require.NoError(t, err)
	sites := ts.Sites()
	require.Len(t, sites, 2)
	assert.Equal(t, 4.0, sites[0].Position)
	assert.Equal(t, int32(3), sites[0].Mutations[0].Node)
	assert.Equal(t, 8.0, sites[1].Position)
}

func TestLoadMissingFormatVersion(t *testing.T) {
	v2 := defaultV2File()
	v2.version = nil

	_, err := Load(writeV2(t, v2))
	assert.ErrorIs(t, err, ErrNotTreeSequence)
}

func TestLoadMalformedFormatVersion(t *testing.T) {
	v2 := defaultV2File()
	v2.version = []int64{2, 0, 1}

	_, err := Load(writeV2(t, v2))
	assert.ErrorIs(t, err, ErrMalformedFile)
}

func TestLoadUnsupportedVersion(t *testing.T) {
	v2 := defaultV2File()
	v2.version = []int64{99, 1}

	_, err := Load(writeV2(t, v2))
	require.ErrorIs(t, err, ErrUnsupportedVersion)

	var verr *VersionError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 99, verr.Major)
	assert.Equal(t, 1, verr.Minor)
}

func TestLoadMissingColumn(t *testing.T) {
	for _, name := range []string{"node", "time", "children"} {
		t.Run(name, func(t *testing.T) {
			v2 := defaultV2File()
			v2.omit = name

			_, err := Load(writeV2(t, v2))
			require.ErrorIs(t, err, ErrMalformedFile)
			assert.Contains(t, err.Error(), "/trees/"+name)
		})
	}
}

func TestLoadMissingTreesGroup(t *testing.T) {
	path := createFile(t, func(root *hdf5.Group) {
		require.NoError(t, root.SetAttr("format_version", []int64{3, 999}))
	})

	_, err := Load(path)
	require.ErrorIs(t, err, ErrMalformedFile)
	assert.Contains(t, err.Error(), "/trees")
}

func TestLoadV3BadBreakpointIndex(t *testing.T) {
	path := createFile(t, func(root *hdf5.Group) {
		require.NoError(t, root.SetAttr("format_version", []int64{3, 999}))
		trees, err := root.CreateGroup("trees")
		require.NoError(t, err)
		_, err = trees.CreateDataset("breakpoints", []float64{0, 10})
		require.NoError(t, err)

		nodes, err := trees.CreateGroup("nodes")
		require.NoError(t, err)
		require.NoError(t, createDatasets(nodes, []column{
			{name: "time", data: []float64{0, 0, 1}},
			{name: "population", data: []uint32{0, 0, 0}},
		}))

		records, err := trees.CreateGroup("records")
		require.NoError(t, err)
		require.NoError(t, createDatasets(records, []column{
			{name: "left", data: []uint32{0}},
			{name: "right", data: []uint32{2}},
			{name: "node", data: []uint32{2}},
			{name: "num_children", data: []uint32{2}},
			{name: "children", data: []uint32{0, 1}},
		}))
	})

	_, err := Load(path)
	require.ErrorIs(t, err, ErrMalformedFile)
	assert.Contains(t, err.Error(), "breakpoint index 2")
}

func TestLoadV3BadIndexes(t *testing.T) {
	path := tempPath(t)
	require.NoError(t, Dump(binaryTreeSequence(t), path))

	// Rewrite the file with a corrupt insertion order.
	ts, err := Load(path)
	require.NoError(t, err)
	p, err := v3Format{}.project(ts)
	require.NoError(t, err)
	p.(*v3Projection).insertion = []uint32{0, 0, 1, 2}
	logger, _ := captureLogger()
	require.NoError(t, writeFile(path, &dumpOptions{version: Version3, logger: logger}, p.write))

	_, err = Load(path)
	require.ErrorIs(t, err, ErrMalformedFile)
	assert.Contains(t, err.Error(), "insertion_order")
}

func TestLoadInvalidTables(t *testing.T) {
	v2 := defaultV2File()
	v2.mutationNode = []uint32{3, 9}

	_, err := Load(writeV2(t, v2))
	require.ErrorIs(t, err, ErrMalformedFile)
	assert.Contains(t, err.Error(), "node id out of bounds")
}

func TestFormatVersion(t *testing.T) {
	major, minor, err := FormatVersion(writeV2(t, defaultV2File()))
	require.NoError(t, err)
	assert.Equal(t, 2, major)
	assert.Equal(t, 3, minor)

	v2 := defaultV2File()
	v2.version = nil
	_, _, err = FormatVersion(writeV2(t, v2))
	assert.ErrorIs(t, err, ErrNotTreeSequence)
}
