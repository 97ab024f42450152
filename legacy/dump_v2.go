package legacy

import (
	"github.com/robert-malhotra/go-treeseq/internal/hdf5"
	"github.com/robert-malhotra/go-treeseq/treeseq"
)

// v2Projection is a tree sequence laid out as version 2 columns.
type v2Projection struct {
	sampleSize     int64
	sequenceLength float64

	left       []float64
	right      []float64
	time       []float64
	node       []uint32
	population []uint32
	children   [][]uint32

	sampleTime       []float64
	samplePopulation []uint32

	position     []float64
	mutationNode []uint32
}

func (v2Format) project(ts *treeseq.TreeSequence) (projection, error) {
	if err := checkSamples(ts, Version2); err != nil {
		return nil, err
	}
	records := ts.Records()
	if err := checkRecords(records, Version2, maxPopulationV2); err != nil {
		return nil, err
	}
	position, mutationNode, err := binaryMutations(ts, Version2)
	if err != nil {
		return nil, err
	}

	p := &v2Projection{
		sampleSize:     int64(ts.SampleSize()),
		sequenceLength: ts.SequenceLength(),
		position:       position,
		mutationNode:   mutationNode,
	}
	for _, r := range records {
		p.left = append(p.left, r.Left)
		p.right = append(p.right, r.Right)
		p.time = append(p.time, r.Time)
		p.node = append(p.node, uint32(r.Node))
		p.population = append(p.population, uint32(r.Population))
		p.children = append(p.children, []uint32{uint32(r.Children[0]), uint32(r.Children[1])})
	}
	for u := range int32(ts.SampleSize()) {
		if err := checkPopulation(ts.Population(u), Version2, "nodes", int(u), maxPopulationV2); err != nil {
			return nil, err
		}
		p.sampleTime = append(p.sampleTime, ts.Time(u))
		p.samplePopulation = append(p.samplePopulation, uint32(ts.Population(u)))
	}
	return p, nil
}

func (p *v2Projection) write(root *hdf5.Group) error {
	if err := setAttrs(root, []attr{
		{"format_version", []int64{int64(Version2), dumpMinorVersion}},
		{"sample_size", p.sampleSize},
		{"sequence_length", p.sequenceLength},
	}); err != nil {
		return err
	}

	trees, err := root.CreateGroup("trees")
	if err != nil {
		return err
	}
	if err := setAttrs(trees, placeholderProvenance); err != nil {
		return err
	}
	if err := createDatasets(trees, []column{
		{name: "left", data: p.left},
		{name: "right", data: p.right},
		{name: "time", data: p.time},
		{name: "node", data: p.node},
		{name: "population", data: p.population, opts: []hdf5.DatasetOption{hdf5.WithDatatype(hdf5.Uint8())}},
		{name: "children", data: p.children},
	}); err != nil {
		return err
	}

	samples, err := root.CreateGroup("samples")
	if err != nil {
		return err
	}
	if err := createDatasets(samples, []column{
		{name: "time", data: p.sampleTime},
		{name: "population", data: p.samplePopulation, opts: []hdf5.DatasetOption{hdf5.WithDatatype(hdf5.Uint8())}},
	}); err != nil {
		return err
	}

	if len(p.position) == 0 {
		return nil
	}
	mutations, err := root.CreateGroup("mutations")
	if err != nil {
		return err
	}
	if err := setAttrs(mutations, placeholderProvenance); err != nil {
		return err
	}
	return createDatasets(mutations, []column{
		{name: "position", data: p.position},
		{name: "node", data: p.mutationNode},
	})
}

var placeholderProvenance = []attr{
	{"environment", placeholderEnvironment},
	{"parameters", placeholderParameters},
}

type attr struct {
	name  string
	value interface{}
}

func setAttrs(g *hdf5.Group, attrs []attr) error {
	for _, a := range attrs {
		if err := g.SetAttr(a.name, a.value); err != nil {
			return err
		}
	}
	return nil
}

type column struct {
	name string
	data interface{}
	opts []hdf5.DatasetOption
}

func createDatasets(g *hdf5.Group, columns []column) error {
	for _, c := range columns {
		if _, err := g.CreateDataset(c.name, c.data, c.opts...); err != nil {
			return err
		}
	}
	return nil
}
