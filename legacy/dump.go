package legacy

import (
	"math"

	"github.com/robert-malhotra/go-treeseq/treeseq"
)

// Placeholder provenance attributes written on version 2 groups.
const (
	placeholderEnvironment = `{"msprime_version": 0}`
	placeholderParameters  = "{}"
)

// checkSamples verifies that the samples of ts are the nodes 0..n-1 and
// that the smallest parent is n. Loaders recover the sample count as the
// smallest parent, so a node between the samples and the first parent
// would turn into a sample.
func checkSamples(ts *treeseq.TreeSequence, v Version) error {
	n := int32(ts.SampleSize())
	for j, u := range ts.Samples() {
		if u != int32(j) {
			return &RestrictionError{Version: v, Table: "nodes", Row: int(u), Err: ErrNonContiguousSamples}
		}
	}
	edgesets := ts.Edgesets()
	if len(edgesets) == 0 {
		return nil
	}
	minParent := edgesets[0].Parent
	for _, e := range edgesets[1:] {
		minParent = min(minParent, e.Parent)
	}
	if minParent != n {
		return &RestrictionError{Version: v, Table: "nodes", Row: int(n), Err: ErrNonContiguousSamples}
	}
	return nil
}

// checkRecords verifies that every record has exactly two children and a
// population that fits in maxPopulation.
func checkRecords(records []treeseq.Record, v Version, maxPopulation int64) error {
	for j, r := range records {
		if len(r.Children) != 2 {
			return &RestrictionError{Version: v, Table: "edgesets", Row: j, Err: ErrNonBinaryRecord}
		}
		if err := checkPopulation(r.Population, v, "edgesets", j, maxPopulation); err != nil {
			return err
		}
	}
	return nil
}

func checkPopulation(p int32, v Version, table string, row int, maxPopulation int64) error {
	if p < 0 || int64(p) > maxPopulation {
		return &RestrictionError{Version: v, Table: table, Row: row, Err: ErrPopulationOutOfRange}
	}
	return nil
}

// binaryMutations returns the position and mutated node of every site,
// which must carry exactly one mutation from "0" to "1".
func binaryMutations(ts *treeseq.TreeSequence, v Version) (position []float64, node []uint32, err error) {
	for _, site := range ts.Sites() {
		if len(site.Mutations) != 1 ||
			site.AncestralState != ancestralState ||
			site.Mutations[0].DerivedState != derivedState {
			return nil, nil, &RestrictionError{Version: v, Table: "sites", Row: int(site.ID), Err: ErrRecurrentMutation}
		}
		position = append(position, site.Position)
		node = append(node, uint32(site.Mutations[0].Node))
	}
	return position, node, nil
}

// Largest population ids storable by each format.
const (
	maxPopulationV2 = math.MaxUint8
	maxPopulationV3 = math.MaxInt32
)
