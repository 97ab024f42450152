package legacy

import (
	"slices"
	"sort"

	"github.com/robert-malhotra/go-treeseq/internal/hdf5"
	"github.com/robert-malhotra/go-treeseq/treeseq"
)

// v3Projection is a tree sequence laid out as version 3 columns.
type v3Projection struct {
	breakpoints []float64

	left        []uint32
	right       []uint32
	node        []uint32
	numChildren []uint32
	children    []uint32

	insertion []uint32
	removal   []uint32

	nodeTime       []float64
	nodePopulation []uint32

	position     []float64
	mutationNode []uint32

	provenance []string
}

func (v3Format) project(ts *treeseq.TreeSequence) (projection, error) {
	if err := checkSamples(ts, Version3); err != nil {
		return nil, err
	}
	records := ts.Records()
	if err := checkRecords(records, Version3, maxPopulationV3); err != nil {
		return nil, err
	}
	position, mutationNode, err := binaryMutations(ts, Version3)
	if err != nil {
		return nil, err
	}

	p := &v3Projection{
		breakpoints:  breakpointsOf(records, ts.SequenceLength()),
		position:     position,
		mutationNode: mutationNode,
	}

	keys := make([]treeseq.IndexKey, len(records))
	for j, r := range records {
		left := sort.SearchFloat64s(p.breakpoints, r.Left)
		right := sort.SearchFloat64s(p.breakpoints, r.Right)
		p.left = append(p.left, uint32(left))
		p.right = append(p.right, uint32(right))
		p.node = append(p.node, uint32(r.Node))
		p.numChildren = append(p.numChildren, uint32(len(r.Children)))
		for _, c := range r.Children {
			p.children = append(p.children, uint32(c))
		}
		keys[j] = treeseq.IndexKey{Left: float64(left), Right: float64(right), Time: r.Time}
	}
	insertion, removal := treeseq.BuildIndexes(keys)
	p.insertion = toUint32(insertion)
	p.removal = toUint32(removal)

	// Samples take their values from the first tree; every other node
	// takes them from the record it is the parent of.
	p.nodeTime = make([]float64, ts.NumNodes())
	p.nodePopulation = make([]uint32, ts.NumNodes())
	first := ts.FirstTree()
	for u := range int32(ts.SampleSize()) {
		if err := checkPopulation(first.Population(u), Version3, "nodes", int(u), maxPopulationV3); err != nil {
			return nil, err
		}
		p.nodeTime[u] = first.Time(u)
		p.nodePopulation[u] = uint32(first.Population(u))
	}
	for _, r := range records {
		p.nodeTime[r.Node] = r.Time
		p.nodePopulation[r.Node] = uint32(r.Population)
	}

	for _, record := range ts.Provenance() {
		p.provenance = append(p.provenance, string(record))
	}
	return p, nil
}

// breakpointsOf returns the distinct left coordinates of records together
// with the sequence length, in ascending order.
func breakpointsOf(records []treeseq.Record, sequenceLength float64) []float64 {
	breakpoints := make([]float64, 0, len(records)+1)
	for _, r := range records {
		breakpoints = append(breakpoints, r.Left)
	}
	breakpoints = append(breakpoints, sequenceLength)
	slices.Sort(breakpoints)
	return slices.Compact(breakpoints)
}

func toUint32(xs []int32) []uint32 {
	out := make([]uint32, len(xs))
	for j, x := range xs {
		out[j] = uint32(x)
	}
	return out
}

func (p *v3Projection) write(root *hdf5.Group) error {
	if err := setAttrs(root, []attr{
		{"format_version", []int64{int64(Version3), dumpMinorVersion}},
		{"sample_size", int64(0)},
		{"sequence_length", int64(0)},
	}); err != nil {
		return err
	}

	trees, err := root.CreateGroup("trees")
	if err != nil {
		return err
	}
	if _, err := trees.CreateDataset("breakpoints", p.breakpoints); err != nil {
		return err
	}

	records, err := trees.CreateGroup("records")
	if err != nil {
		return err
	}
	if err := createDatasets(records, []column{
		{name: "left", data: p.left},
		{name: "right", data: p.right},
		{name: "node", data: p.node},
		{name: "num_children", data: p.numChildren},
		{name: "children", data: p.children},
	}); err != nil {
		return err
	}

	indexes, err := trees.CreateGroup("indexes")
	if err != nil {
		return err
	}
	if err := createDatasets(indexes, []column{
		{name: "insertion_order", data: p.insertion},
		{name: "removal_order", data: p.removal},
	}); err != nil {
		return err
	}

	nodes, err := trees.CreateGroup("nodes")
	if err != nil {
		return err
	}
	if err := createDatasets(nodes, []column{
		{name: "time", data: p.nodeTime},
		{name: "population", data: p.nodePopulation},
	}); err != nil {
		return err
	}

	if len(p.position) > 0 {
		mutations, err := root.CreateGroup("mutations")
		if err != nil {
			return err
		}
		if err := createDatasets(mutations, []column{
			{name: "position", data: p.position},
			{name: "node", data: p.mutationNode},
		}); err != nil {
			return err
		}
	}

	if len(p.provenance) > 0 {
		if _, err := root.CreateDataset("provenance", p.provenance); err != nil {
			return err
		}
	}
	return nil
}
