package treeseq

import (
	"errors"
	"slices"
)

// ErrStopTrees can be returned from a Trees callback to end iteration early
// without error.
var ErrStopTrees = errors.New("stop tree iteration")

// Tree is the local tree over the interval [Left, Right). A Tree passed to a
// Trees callback is only valid during the call.
type Tree struct {
	ts     *TreeSequence
	Index  int
	Left   float64
	Right  float64
	parent []int32
}

// Parent returns the parent of u in this tree, or NullNode.
func (t *Tree) Parent(u int32) int32 {
	return t.parent[u]
}

// Time returns the time of node u.
func (t *Tree) Time(u int32) float64 {
	return t.ts.Time(u)
}

// Population returns the population of node u.
func (t *Tree) Population(u int32) int32 {
	return t.ts.Population(u)
}

// Root returns the root above u: the first ancestor with no parent.
func (t *Tree) Root(u int32) int32 {
	for t.parent[u] != NullNode {
		u = t.parent[u]
	}
	return u
}

// Roots returns the distinct roots above the samples in ascending order.
func (t *Tree) Roots() []int32 {
	var roots []int32
	for _, s := range t.ts.samples {
		r := t.Root(s)
		if !slices.Contains(roots, r) {
			roots = append(roots, r)
		}
	}
	slices.Sort(roots)
	return roots
}

// Trees calls fn for each local tree from left to right. Iteration stops at
// the first error returned by fn; ErrStopTrees stops it without error.
func (ts *TreeSequence) Trees(fn func(*Tree) error) error {
	edgesets := ts.tables.Edgesets
	m := edgesets.Len()

	t := &Tree{
		ts:     ts,
		parent: make([]int32, ts.NumNodes()),
	}
	for u := range t.parent {
		t.parent[u] = NullNode
	}

	j, k := 0, 0
	left := 0.0
	for left < ts.sequenceLength {
		for k < m && edgesets.right[ts.removal[k]] == left {
			for _, c := range edgesets.Row(int(ts.removal[k])).Children {
				t.parent[c] = NullNode
			}
			k++
		}
		for j < m && edgesets.left[ts.insertion[j]] == left {
			e := edgesets.Row(int(ts.insertion[j]))
			for _, c := range e.Children {
				t.parent[c] = e.Parent
			}
			j++
		}

		right := ts.sequenceLength
		if j < m {
			right = min(right, edgesets.left[ts.insertion[j]])
		}
		if k < m {
			right = min(right, edgesets.right[ts.removal[k]])
		}

		t.Left, t.Right = left, right
		if err := fn(t); err != nil {
			if errors.Is(err, ErrStopTrees) {
				return nil
			}
			return err
		}
		t.Index++
		left = right
	}
	return nil
}

// FirstTree returns a copy of the left-most local tree.
func (ts *TreeSequence) FirstTree() *Tree {
	var first *Tree
	ts.Trees(func(t *Tree) error {
		first = &Tree{ts: ts, Index: t.Index, Left: t.Left, Right: t.Right, parent: slices.Clone(t.parent)}
		return ErrStopTrees
	})
	return first
}

// NumTrees returns the number of distinct local trees.
func (ts *TreeSequence) NumTrees() int {
	n := 0
	ts.Trees(func(*Tree) error {
		n++
		return nil
	})
	return n
}
