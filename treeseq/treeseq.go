package treeseq

import (
	"fmt"
	"slices"
)

// TreeSequence is an immutable, validated tree sequence.
type TreeSequence struct {
	tables         Tables
	provenance     [][]byte
	samples        []int32
	sequenceLength float64
	insertion      []int32
	removal        []int32
	siteOffset     []int // len(sites)+1 offsets into the mutation table
}

// New validates tables and returns the tree sequence they describe. The
// provenance records are copied. Errors for tables that break a structural
// invariant match ErrInvalidTables and are *ValidationError values.
func New(tables Tables, provenance [][]byte) (*TreeSequence, error) {
	if tables.Nodes == nil || tables.Edgesets == nil {
		return nil, fmt.Errorf("%w: node and edgeset tables are required", ErrInvalidTables)
	}
	if tables.Sites == nil {
		tables.Sites = &SiteTable{}
	}
	if tables.Mutations == nil {
		tables.Mutations = &MutationTable{}
	}

	ts := &TreeSequence{tables: tables}
	for _, p := range provenance {
		ts.provenance = append(ts.provenance, slices.Clone(p))
	}

	nodes := tables.Nodes
	for u := range nodes.Len() {
		if nodes.flags[u]&NodeIsSample != 0 {
			ts.samples = append(ts.samples, int32(u))
		}
	}
	if len(ts.samples) < 2 {
		return nil, invalid("nodes", -1, ErrInsufficientSamples)
	}

	if err := ts.checkEdgesets(); err != nil {
		return nil, err
	}
	if err := ts.checkSites(); err != nil {
		return nil, err
	}

	edgesets := tables.Edgesets
	keys := make([]IndexKey, edgesets.Len())
	for j := range keys {
		keys[j] = IndexKey{Left: edgesets.left[j], Right: edgesets.right[j], Time: nodes.time[edgesets.parent[j]]}
	}
	ts.insertion, ts.removal = BuildIndexes(keys)

	return ts, nil
}

func (ts *TreeSequence) checkEdgesets() error {
	nodes, edgesets := ts.tables.Nodes, ts.tables.Edgesets
	numNodes := int32(nodes.Len())
	if edgesets.Len() == 0 {
		return invalid("edgesets", -1, ErrNoEdgesets)
	}

	lefts := make(map[float64]struct{}, edgesets.Len())
	minLeft := edgesets.left[0]
	for j := range edgesets.Len() {
		e := edgesets.Row(j)
		if e.Parent < 0 || e.Parent >= numNodes {
			return invalid("edgesets", j, fmt.Errorf("%w: parent %d", ErrNodeOutOfBounds, e.Parent))
		}
		if nodes.flags[e.Parent]&NodeIsSample != 0 {
			return invalid("edgesets", j, fmt.Errorf("%w: %d", ErrSampleInternal, e.Parent))
		}
		if len(e.Children) == 0 {
			return invalid("edgesets", j, ErrZeroChildren)
		}
		parentTime := nodes.time[e.Parent]
		for k, c := range e.Children {
			if c < 0 || c >= numNodes {
				return invalid("edgesets", j, fmt.Errorf("%w: child %d", ErrNodeOutOfBounds, c))
			}
			if k > 0 && e.Children[k-1] >= c {
				return invalid("edgesets", j, ErrUnsortedChildren)
			}
			if nodes.time[c] >= parentTime {
				return invalid("edgesets", j, fmt.Errorf("%w: child %d at %g, parent %d at %g",
					ErrBadTimeOrdering, c, nodes.time[c], e.Parent, parentTime))
			}
		}
		if j > 0 && parentTime < nodes.time[edgesets.parent[j-1]] {
			return invalid("edgesets", j, ErrRecordsNotTimeSorted)
		}
		if e.Left >= e.Right {
			return invalid("edgesets", j, fmt.Errorf("%w: [%g, %g)", ErrBadInterval, e.Left, e.Right))
		}
		lefts[e.Left] = struct{}{}
		minLeft = min(minLeft, e.Left)
		ts.sequenceLength = max(ts.sequenceLength, e.Right)
	}

	if minLeft != 0 {
		return invalid("edgesets", -1, fmt.Errorf("%w: left-most coordinate is %g", ErrBadEdgesetCoordinates, minLeft))
	}
	for j, right := range edgesets.right {
		if _, ok := lefts[right]; !ok && right != ts.sequenceLength {
			return invalid("edgesets", j, fmt.Errorf("%w: right %g matches no left coordinate", ErrBadEdgesetCoordinates, right))
		}
	}
	return nil
}

func (ts *TreeSequence) checkSites() error {
	sites, mutations := ts.tables.Sites, ts.tables.Mutations
	numNodes := int32(ts.tables.Nodes.Len())
	numSites := int32(sites.Len())

	for j, pos := range sites.position {
		if pos < 0 || pos >= ts.sequenceLength {
			return invalid("sites", j, fmt.Errorf("%w: %g not in [0, %g)", ErrBadSitePosition, pos, ts.sequenceLength))
		}
		if j > 0 && sites.position[j-1] >= pos {
			return invalid("sites", j, ErrUnsortedSites)
		}
	}

	ts.siteOffset = make([]int, numSites+1)
	for j := range mutations.Len() {
		site, node := mutations.site[j], mutations.node[j]
		if site < 0 || site >= numSites {
			return invalid("mutations", j, fmt.Errorf("%w: %d", ErrSiteOutOfBounds, site))
		}
		if node < 0 || node >= numNodes {
			return invalid("mutations", j, fmt.Errorf("%w: %d", ErrNodeOutOfBounds, node))
		}
		if j > 0 && mutations.site[j-1] > site {
			return invalid("mutations", j, ErrUnsortedMutations)
		}
		ts.siteOffset[site+1]++
	}
	for j := range numSites {
		ts.siteOffset[j+1] += ts.siteOffset[j]
	}
	return nil
}

// NumNodes returns the number of nodes.
func (ts *TreeSequence) NumNodes() int { return ts.tables.Nodes.Len() }

// NumEdgesets returns the number of edgesets.
func (ts *TreeSequence) NumEdgesets() int { return ts.tables.Edgesets.Len() }

// NumSites returns the number of sites.
func (ts *TreeSequence) NumSites() int { return ts.tables.Sites.Len() }

// NumMutations returns the number of mutations.
func (ts *TreeSequence) NumMutations() int { return ts.tables.Mutations.Len() }

// SampleSize returns the number of sample nodes.
func (ts *TreeSequence) SampleSize() int { return len(ts.samples) }

// Samples returns the ids of the sample nodes in ascending order.
func (ts *TreeSequence) Samples() []int32 { return slices.Clone(ts.samples) }

// SequenceLength returns the right-most edgeset coordinate.
func (ts *TreeSequence) SequenceLength() float64 { return ts.sequenceLength }

// Node returns node u.
func (ts *TreeSequence) Node(u int32) (Node, error) {
	if u < 0 || int(u) >= ts.NumNodes() {
		return Node{}, fmt.Errorf("%w: %d", ErrNodeOutOfBounds, u)
	}
	return ts.tables.Nodes.Row(int(u)), nil
}

// Time returns the time of node u, which must be in range.
func (ts *TreeSequence) Time(u int32) float64 { return ts.tables.Nodes.time[u] }

// Population returns the population of node u, which must be in range.
func (ts *TreeSequence) Population(u int32) int32 { return ts.tables.Nodes.population[u] }

// Edgesets returns all edgesets in table order.
func (ts *TreeSequence) Edgesets() []Edgeset {
	out := make([]Edgeset, ts.NumEdgesets())
	for j := range out {
		out[j] = ts.tables.Edgesets.Row(j)
	}
	return out
}

// Record is the legacy coalescence-record view of an edgeset: the edgeset
// with the time and population of its parent node.
type Record struct {
	Left       float64
	Right      float64
	Node       int32
	Children   []int32
	Time       float64
	Population int32
}

// Records returns one record per edgeset, in table order.
func (ts *TreeSequence) Records() []Record {
	out := make([]Record, ts.NumEdgesets())
	for j := range out {
		e := ts.tables.Edgesets.Row(j)
		out[j] = Record{
			Left:       e.Left,
			Right:      e.Right,
			Node:       e.Parent,
			Children:   e.Children,
			Time:       ts.Time(e.Parent),
			Population: ts.Population(e.Parent),
		}
	}
	return out
}

// Sites returns all sites in position order, each with its mutations.
func (ts *TreeSequence) Sites() []Site {
	sites, mutations := ts.tables.Sites, ts.tables.Mutations
	out := make([]Site, sites.Len())
	for j := range out {
		site := Site{
			ID:             int32(j),
			Position:       sites.position[j],
			AncestralState: sites.ancestralState[j],
		}
		for k := ts.siteOffset[j]; k < ts.siteOffset[j+1]; k++ {
			site.Mutations = append(site.Mutations, mutations.Row(k))
		}
		out[j] = site
	}
	return out
}

// Provenance returns a copy of the provenance records, oldest first.
func (ts *TreeSequence) Provenance() [][]byte {
	out := make([][]byte, len(ts.provenance))
	for j, p := range ts.provenance {
		out[j] = slices.Clone(p)
	}
	return out
}

// Tables returns the tables of the tree sequence. Tables are immutable and
// may be shared.
func (ts *TreeSequence) Tables() Tables { return ts.tables }

// Indexes returns copies of the edgeset insertion and removal orders.
func (ts *TreeSequence) Indexes() (insertion, removal []int32) {
	return slices.Clone(ts.insertion), slices.Clone(ts.removal)
}
