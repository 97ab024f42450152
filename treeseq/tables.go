package treeseq

import (
	"fmt"
	"slices"
)

// NodeIsSample is the node flag marking a sampled genome.
const NodeIsSample uint32 = 1

// NullNode marks the absence of a node, e.g. the parent of a root.
const NullNode int32 = -1

// Node is a single row of the node table.
type Node struct {
	ID         int32
	Flags      uint32
	Time       float64
	Population int32
}

// IsSample reports whether the node is flagged as a sample.
func (n Node) IsSample() bool {
	return n.Flags&NodeIsSample != 0
}

// Edgeset records that Parent is the parent of each of Children over the
// half-open interval [Left, Right).
type Edgeset struct {
	Left     float64
	Right    float64
	Parent   int32
	Children []int32
}

// Site is a variable position together with its mutations.
type Site struct {
	ID             int32
	Position       float64
	AncestralState string
	Mutations      []Mutation
}

// Mutation is a state change at a site inherited by all descendants of Node.
type Mutation struct {
	ID           int32
	Site         int32
	Node         int32
	DerivedState string
}

// NodeColumns holds the columns of a node table.
type NodeColumns struct {
	Flags      []uint32
	Time       []float64
	Population []int32
}

// NodeTable is an immutable node table.
type NodeTable struct {
	flags      []uint32
	time       []float64
	population []int32
}

// NewNodeTable builds a node table from complete columns. The columns are
// copied.
func NewNodeTable(c NodeColumns) (*NodeTable, error) {
	n := len(c.Flags)
	if len(c.Time) != n || len(c.Population) != n {
		return nil, fmt.Errorf("node table: %w: flags=%d time=%d population=%d",
			ErrColumnLength, n, len(c.Time), len(c.Population))
	}
	return &NodeTable{
		flags:      slices.Clone(c.Flags),
		time:       slices.Clone(c.Time),
		population: slices.Clone(c.Population),
	}, nil
}

// Len returns the number of rows.
func (t *NodeTable) Len() int { return len(t.flags) }

// Row returns node j.
func (t *NodeTable) Row(j int) Node {
	return Node{ID: int32(j), Flags: t.flags[j], Time: t.time[j], Population: t.population[j]}
}

// Columns returns a copy of the table's columns.
func (t *NodeTable) Columns() NodeColumns {
	return NodeColumns{
		Flags:      slices.Clone(t.flags),
		Time:       slices.Clone(t.time),
		Population: slices.Clone(t.population),
	}
}

// EdgesetColumns holds the columns of an edgeset table. Children of all rows
// are concatenated; NumChildren gives the number belonging to each row.
type EdgesetColumns struct {
	Left        []float64
	Right       []float64
	Parent      []int32
	Children    []int32
	NumChildren []uint32
}

// EdgesetTable is an immutable edgeset table.
type EdgesetTable struct {
	left     []float64
	right    []float64
	parent   []int32
	children []int32
	offset   []int // len(parent)+1 offsets into children
}

// NewEdgesetTable builds an edgeset table from complete columns. The columns
// are copied.
func NewEdgesetTable(c EdgesetColumns) (*EdgesetTable, error) {
	n := len(c.Parent)
	if len(c.Left) != n || len(c.Right) != n || len(c.NumChildren) != n {
		return nil, fmt.Errorf("edgeset table: %w: left=%d right=%d parent=%d num_children=%d",
			ErrColumnLength, len(c.Left), len(c.Right), n, len(c.NumChildren))
	}

	offset := make([]int, n+1)
	for j, k := range c.NumChildren {
		offset[j+1] = offset[j] + int(k)
	}
	if offset[n] != len(c.Children) {
		return nil, fmt.Errorf("edgeset table: %w: num_children sums to %d, children=%d",
			ErrColumnLength, offset[n], len(c.Children))
	}

	return &EdgesetTable{
		left:     slices.Clone(c.Left),
		right:    slices.Clone(c.Right),
		parent:   slices.Clone(c.Parent),
		children: slices.Clone(c.Children),
		offset:   offset,
	}, nil
}

// Len returns the number of rows.
func (t *EdgesetTable) Len() int { return len(t.parent) }

// Row returns edgeset j. The Children slice must not be modified.
func (t *EdgesetTable) Row(j int) Edgeset {
	return Edgeset{
		Left:     t.left[j],
		Right:    t.right[j],
		Parent:   t.parent[j],
		Children: t.children[t.offset[j]:t.offset[j+1]:t.offset[j+1]],
	}
}

// Columns returns a copy of the table's columns.
func (t *EdgesetTable) Columns() EdgesetColumns {
	numChildren := make([]uint32, t.Len())
	for j := range numChildren {
		numChildren[j] = uint32(t.offset[j+1] - t.offset[j])
	}
	return EdgesetColumns{
		Left:        slices.Clone(t.left),
		Right:       slices.Clone(t.right),
		Parent:      slices.Clone(t.parent),
		Children:    slices.Clone(t.children),
		NumChildren: numChildren,
	}
}

// SiteColumns holds the columns of a site table.
type SiteColumns struct {
	Position       []float64
	AncestralState []string
}

// SiteTable is an immutable site table.
type SiteTable struct {
	position       []float64
	ancestralState []string
}

// NewSiteTable builds a site table from complete columns. The columns are
// copied.
func NewSiteTable(c SiteColumns) (*SiteTable, error) {
	if len(c.Position) != len(c.AncestralState) {
		return nil, fmt.Errorf("site table: %w: position=%d ancestral_state=%d",
			ErrColumnLength, len(c.Position), len(c.AncestralState))
	}
	return &SiteTable{
		position:       slices.Clone(c.Position),
		ancestralState: slices.Clone(c.AncestralState),
	}, nil
}

// Len returns the number of rows; a nil table is empty.
func (t *SiteTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.position)
}

// Columns returns a copy of the table's columns.
func (t *SiteTable) Columns() SiteColumns {
	if t == nil {
		return SiteColumns{}
	}
	return SiteColumns{
		Position:       slices.Clone(t.position),
		AncestralState: slices.Clone(t.ancestralState),
	}
}

// MutationColumns holds the columns of a mutation table.
type MutationColumns struct {
	Site         []int32
	Node         []int32
	DerivedState []string
}

// MutationTable is an immutable mutation table.
type MutationTable struct {
	site         []int32
	node         []int32
	derivedState []string
}

// NewMutationTable builds a mutation table from complete columns. The
// columns are copied.
func NewMutationTable(c MutationColumns) (*MutationTable, error) {
	n := len(c.Site)
	if len(c.Node) != n || len(c.DerivedState) != n {
		return nil, fmt.Errorf("mutation table: %w: site=%d node=%d derived_state=%d",
			ErrColumnLength, n, len(c.Node), len(c.DerivedState))
	}
	return &MutationTable{
		site:         slices.Clone(c.Site),
		node:         slices.Clone(c.Node),
		derivedState: slices.Clone(c.DerivedState),
	}, nil
}

// Len returns the number of rows; a nil table is empty.
func (t *MutationTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.site)
}

// Row returns mutation j.
func (t *MutationTable) Row(j int) Mutation {
	return Mutation{ID: int32(j), Site: t.site[j], Node: t.node[j], DerivedState: t.derivedState[j]}
}

// Columns returns a copy of the table's columns.
func (t *MutationTable) Columns() MutationColumns {
	if t == nil {
		return MutationColumns{}
	}
	return MutationColumns{
		Site:         slices.Clone(t.site),
		Node:         slices.Clone(t.node),
		DerivedState: slices.Clone(t.derivedState),
	}
}

// Tables groups the four tables of a tree sequence. Sites and Mutations may
// be nil when there are none.
type Tables struct {
	Nodes     *NodeTable
	Edgesets  *EdgesetTable
	Sites     *SiteTable
	Mutations *MutationTable
}
