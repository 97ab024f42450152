package legacy

import (
	"fmt"
	"slices"

	"github.com/robert-malhotra/go-treeseq/internal/hdf5"
	"github.com/robert-malhotra/go-treeseq/treeseq"
)

func (v2Format) version() Version { return Version2 }

func (v2Format) schema() manifest { return v2Manifest }

// load rebuilds a tree sequence from the version 2 layout: one row per
// coalescence record in /trees with exactly two children each, the times
// and populations of the samples in /samples, and one mutation per row of
// /mutations.
func (v2Format) load(root *hdf5.Group, tag formatVersion, o *loadOptions) (*treeseq.TreeSequence, error) {
	trees, err := root.OpenGroup("trees")
	if err != nil {
		return nil, malformed("/trees: %v", err)
	}

	node, err := readInts(trees, "node")
	if err != nil {
		return nil, err
	}
	left, err := readFloats(trees, "left")
	if err != nil {
		return nil, err
	}
	right, err := readFloats(trees, "right")
	if err != nil {
		return nil, err
	}
	recordTime, err := readFloats(trees, "time")
	if err != nil {
		return nil, err
	}
	recordPopulation, err := readInts(trees, "population")
	if err != nil {
		return nil, err
	}
	children, err := readMatrix(trees, "children", 2)
	if err != nil {
		return nil, err
	}

	n := len(node)
	if n == 0 {
		return nil, malformed("/trees has no records")
	}
	if err := sameLength("/trees", n, map[string]int{
		"left":       len(left),
		"right":      len(right),
		"time":       len(recordTime),
		"population": len(recordPopulation),
		"children":   len(children) / 2,
	}); err != nil {
		return nil, err
	}

	numNodes := int(max(slices.Max(children), slices.Max(node))) + 1
	sampleSize, err := sampleCount(node)
	if err != nil {
		return nil, err
	}

	nc := treeseq.NodeColumns{
		Flags:      make([]uint32, numNodes),
		Time:       make([]float64, numNodes),
		Population: make([]int32, numNodes),
	}
	for u := range sampleSize {
		nc.Flags[u] = treeseq.NodeIsSample
	}
	for j, u := range node {
		nc.Time[u] = recordTime[j]
		nc.Population[u] = recordPopulation[j]
	}
	if root.HasMember("samples") {
		if err := overlaySamples(root, sampleSize, &nc); err != nil {
			return nil, err
		}
	}

	nodes, err := treeseq.NewNodeTable(nc)
	if err != nil {
		return nil, malformed("%v", err)
	}
	edgesets, err := treeseq.NewEdgesetTable(treeseq.EdgesetColumns{
		Left:        left,
		Right:       right,
		Parent:      node,
		Children:    children,
		NumChildren: slices.Repeat([]uint32{2}, n),
	})
	if err != nil {
		return nil, malformed("%v", err)
	}
	tables := treeseq.Tables{Nodes: nodes, Edgesets: edgesets}

	provenance := [][]byte{translateGroupProvenance(trees, "generate_trees", o.logger)}
	if root.HasMember("mutations") {
		mutations, err := root.OpenGroup("mutations")
		if err != nil {
			return nil, malformed("/mutations: %v", err)
		}
		if tables.Sites, tables.Mutations, err = loadMutations(mutations, o.removeDuplicates); err != nil {
			return nil, err
		}
		provenance = append(provenance, translateGroupProvenance(mutations, "generate_mutations", o.logger))
	}
	provenance = append(provenance, UpgradeProvenance(tag.major, tag.minor))

	ts, err := treeseq.New(tables, provenance)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedFile, err)
	}
	return ts, nil
}

// overlaySamples copies the sample times and populations stored in /samples
// over the values taken from the records. Time is optional in the layout.
func overlaySamples(root *hdf5.Group, sampleSize int, nc *treeseq.NodeColumns) error {
	samples, err := root.OpenGroup("samples")
	if err != nil {
		return malformed("/samples: %v", err)
	}

	population, err := readInts(samples, "population")
	if err != nil {
		return err
	}
	if len(population) != sampleSize {
		return malformed("/samples/population has %d rows, want %d samples", len(population), sampleSize)
	}
	copy(nc.Population, population)

	if !samples.HasMember("time") {
		return nil
	}
	time, err := readFloats(samples, "time")
	if err != nil {
		return err
	}
	if len(time) != sampleSize {
		return malformed("/samples/time has %d rows, want %d samples", len(time), sampleSize)
	}
	copy(nc.Time, time)
	return nil
}

// sampleCount applies the legacy convention that samples are the nodes
// 0..n-1 and every parent id is at least n: n is the smallest parent id.
func sampleCount(parents []int32) (int, error) {
	n := slices.Min(parents)
	if n < 0 {
		return 0, malformed("negative parent id %d", n)
	}
	return int(n), nil
}

// loadMutations reads the (position, node) columns of g into site and
// mutation tables.
func loadMutations(g *hdf5.Group, removeDuplicates bool) (*treeseq.SiteTable, *treeseq.MutationTable, error) {
	position, err := readFloats(g, "position")
	if err != nil {
		return nil, nil, err
	}
	node, err := readInts(g, "node")
	if err != nil {
		return nil, nil, err
	}
	if err := sameLength(g.Path(), len(position), map[string]int{"node": len(node)}); err != nil {
		return nil, nil, err
	}
	return dedupeMutations(position, node, removeDuplicates)
}
