package legacy

import (
	"fmt"

	"github.com/robert-malhotra/go-treeseq/internal/hdf5"
	"github.com/robert-malhotra/go-treeseq/treeseq"
)

func (v3Format) version() Version { return Version3 }

func (v3Format) schema() manifest { return v3Manifest }

// load rebuilds a tree sequence from the version 3 layout: explicit node
// times and populations, records whose coordinates index into a breakpoints
// array, and provenance already stored as records.
func (v3Format) load(root *hdf5.Group, tag formatVersion, o *loadOptions) (*treeseq.TreeSequence, error) {
	trees, err := root.OpenGroup("trees")
	if err != nil {
		return nil, malformed("/trees: %v", err)
	}

	nc, err := loadNodesV3(trees)
	if err != nil {
		return nil, err
	}
	ec, err := loadRecordsV3(trees)
	if err != nil {
		return nil, err
	}
	if trees.HasMember("indexes") {
		if err := checkIndexesV3(trees, len(ec.Parent)); err != nil {
			return nil, err
		}
	}

	sampleSize, err := sampleCount(ec.Parent)
	if err != nil {
		return nil, err
	}
	if sampleSize > len(nc.Time) {
		return nil, malformed("smallest parent id %d exceeds node count %d", sampleSize, len(nc.Time))
	}
	for u := range sampleSize {
		nc.Flags[u] = treeseq.NodeIsSample
	}

	nodes, err := treeseq.NewNodeTable(nc)
	if err != nil {
		return nil, malformed("%v", err)
	}
	edgesets, err := treeseq.NewEdgesetTable(ec)
	if err != nil {
		return nil, malformed("%v", err)
	}
	tables := treeseq.Tables{Nodes: nodes, Edgesets: edgesets}

	if root.HasMember("mutations") {
		mutations, err := root.OpenGroup("mutations")
		if err != nil {
			return nil, malformed("/mutations: %v", err)
		}
		if tables.Sites, tables.Mutations, err = loadMutations(mutations, o.removeDuplicates); err != nil {
			return nil, err
		}
	}

	var provenance [][]byte
	if root.HasMember("provenance") {
		records, err := readStrings(root, "provenance")
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			provenance = append(provenance, []byte(r))
		}
	}
	provenance = append(provenance, UpgradeProvenance(tag.major, tag.minor))

	ts, err := treeseq.New(tables, provenance)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedFile, err)
	}
	return ts, nil
}

func loadNodesV3(trees *hdf5.Group) (treeseq.NodeColumns, error) {
	g, err := trees.OpenGroup("nodes")
	if err != nil {
		return treeseq.NodeColumns{}, malformed("/trees/nodes: %v", err)
	}
	time, err := readFloats(g, "time")
	if err != nil {
		return treeseq.NodeColumns{}, err
	}
	population, err := readInts(g, "population")
	if err != nil {
		return treeseq.NodeColumns{}, err
	}
	if err := sameLength(g.Path(), len(time), map[string]int{"population": len(population)}); err != nil {
		return treeseq.NodeColumns{}, err
	}
	return treeseq.NodeColumns{
		Flags:      make([]uint32, len(time)),
		Time:       time,
		Population: population,
	}, nil
}

// loadRecordsV3 reads /trees/records and resolves the left and right
// breakpoint indexes to coordinates.
func loadRecordsV3(trees *hdf5.Group) (treeseq.EdgesetColumns, error) {
	breakpoints, err := readFloats(trees, "breakpoints")
	if err != nil {
		return treeseq.EdgesetColumns{}, err
	}
	if !strictlyAscending(breakpoints) {
		return treeseq.EdgesetColumns{}, malformed("/trees/breakpoints is not strictly ascending")
	}
	g, err := trees.OpenGroup("records")
	if err != nil {
		return treeseq.EdgesetColumns{}, malformed("/trees/records: %v", err)
	}

	columns := make(map[string][]int32, 5)
	for _, name := range []string{"left", "right", "node", "num_children", "children"} {
		if columns[name], err = readInts(g, name); err != nil {
			return treeseq.EdgesetColumns{}, err
		}
	}
	node := columns["node"]
	n := len(node)
	if n == 0 {
		return treeseq.EdgesetColumns{}, malformed("/trees/records has no records")
	}
	if err := sameLength(g.Path(), n, map[string]int{
		"left":         len(columns["left"]),
		"right":        len(columns["right"]),
		"num_children": len(columns["num_children"]),
	}); err != nil {
		return treeseq.EdgesetColumns{}, err
	}

	ec := treeseq.EdgesetColumns{
		Left:        make([]float64, n),
		Right:       make([]float64, n),
		Parent:      node,
		Children:    columns["children"],
		NumChildren: make([]uint32, n),
	}
	total := 0
	for j := range n {
		if ec.Left[j], err = breakpoint(breakpoints, columns["left"][j]); err != nil {
			return treeseq.EdgesetColumns{}, err
		}
		if ec.Right[j], err = breakpoint(breakpoints, columns["right"][j]); err != nil {
			return treeseq.EdgesetColumns{}, err
		}
		k := columns["num_children"][j]
		if k < 0 {
			return treeseq.EdgesetColumns{}, malformed("record %d has %d children", j, k)
		}
		ec.NumChildren[j] = uint32(k)
		total += int(k)
	}
	if total != len(ec.Children) {
		return treeseq.EdgesetColumns{}, malformed("num_children sums to %d, children has %d rows", total, len(ec.Children))
	}
	return ec, nil
}

func breakpoint(breakpoints []float64, index int32) (float64, error) {
	if index < 0 || int(index) >= len(breakpoints) {
		return 0, malformed("breakpoint index %d out of range [0, %d)", index, len(breakpoints))
	}
	return breakpoints[index], nil
}

// checkIndexesV3 verifies that the stored sweep orders are permutations of
// the records. They are rebuilt rather than used.
func checkIndexesV3(trees *hdf5.Group, numRecords int) error {
	g, err := trees.OpenGroup("indexes")
	if err != nil {
		return malformed("/trees/indexes: %v", err)
	}
	for _, name := range []string{"insertion_order", "removal_order"} {
		order, err := readInts(g, name)
		if err != nil {
			return err
		}
		if !treeseq.IsPermutation(order, numRecords) {
			return malformed("%s/%s is not a permutation of %d records", g.Path(), name, numRecords)
		}
	}
	return nil
}

// strictlyAscending reports whether each value is greater than the one
// before it.
func strictlyAscending(xs []float64) bool {
	for j := 1; j < len(xs); j++ {
		if xs[j] <= xs[j-1] {
			return false
		}
	}
	return true
}
