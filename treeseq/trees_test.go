package treeseq

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrees(t *testing.T) {
	assert := assert.New(t)

	nc, ec := twoTreeColumns()
	ts, err := New(buildTables(t, nc, ec, SiteColumns{}, MutationColumns{}), nil)
	require.NoError(t, err)

	type interval struct{ left, right float64 }
	var intervals []interval
	var parents [][]int32

	err = ts.Trees(func(tree *Tree) error {
		intervals = append(intervals, interval{tree.Left, tree.Right})
		p := make([]int32, ts.NumNodes())
		for u := range p {
			p[u] = tree.Parent(int32(u))
		}
		parents = append(parents, p)
		assert.Equal([]int32{4}, tree.Roots())
		return nil
	})
	require.NoError(t, err)

	assert.Equal([]interval{{0, 5}, {5, 10}}, intervals)
	assert.Equal([]int32{3, 3, 4, 4, NullNode}, parents[0])
	assert.Equal([]int32{4, 3, 3, 4, NullNode}, parents[1])
	assert.Equal(2, ts.NumTrees())
}

func TestFirstTree(t *testing.T) {
	nc, ec := twoTreeColumns()
	ts, err := New(buildTables(t, nc, ec, SiteColumns{}, MutationColumns{}), nil)
	require.NoError(t, err)

	tree := ts.FirstTree()
	require.NotNil(t, tree)
	assert.Equal(t, 0, tree.Index)
	assert.Equal(t, 5.0, tree.Right)
	assert.Equal(t, int32(3), tree.Parent(0))
	assert.Equal(t, int32(4), tree.Root(0))
	assert.Equal(t, 2.0, tree.Time(4))
	assert.Equal(t, int32(1), tree.Population(2))
}

func TestTreesStopsOnError(t *testing.T) {
	nc, ec := twoTreeColumns()
	ts, err := New(buildTables(t, nc, ec, SiteColumns{}, MutationColumns{}), nil)
	require.NoError(t, err)

	boom := errors.New("boom")
	calls := 0
	err = ts.Trees(func(*Tree) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}
