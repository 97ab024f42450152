package treeseq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildIndexesInsertionTieBreak(t *testing.T) {
	// A(left=1, time=5), B(left=1, time=3): the younger parent enters first.
	keys := []IndexKey{
		{Left: 1, Right: 4, Time: 5},
		{Left: 1, Right: 4, Time: 3},
	}
	insertion, _ := BuildIndexes(keys)
	assert.Equal(t, []int32{1, 0}, insertion)
}

func TestBuildIndexesRemovalTieBreak(t *testing.T) {
	// C(right=5, time=5), D(right=5, time=2): the older parent leaves first.
	keys := []IndexKey{
		{Left: 0, Right: 5, Time: 5},
		{Left: 0, Right: 5, Time: 2},
	}
	_, removal := BuildIndexes(keys)
	assert.Equal(t, []int32{0, 1}, removal)
}

func TestBuildIndexesOrdering(t *testing.T) {
	assert := assert.New(t)

	keys := []IndexKey{
		{Left: 2, Right: 3, Time: 1},
		{Left: 0, Right: 2, Time: 1},
		{Left: 0, Right: 3, Time: 4},
		{Left: 2, Right: 3, Time: 1},
	}
	insertion, removal := BuildIndexes(keys)

	// Equal keys (rows 0 and 3) keep their input order.
	assert.Equal([]int32{1, 2, 0, 3}, insertion)
	assert.Equal([]int32{1, 2, 0, 3}, removal)
	assert.True(IsPermutation(insertion, len(keys)))
	assert.True(IsPermutation(removal, len(keys)))
}

func TestBuildIndexesEmpty(t *testing.T) {
	insertion, removal := BuildIndexes(nil)
	assert.Empty(t, insertion)
	assert.Empty(t, removal)
}

func TestIsPermutation(t *testing.T) {
	assert := assert.New(t)

	assert.True(IsPermutation([]int32{2, 0, 1}, 3))
	assert.False(IsPermutation([]int32{0, 0, 1}, 3))
	assert.False(IsPermutation([]int32{0, 1}, 3))
	assert.False(IsPermutation([]int32{0, 1, 3}, 3))
	assert.False(IsPermutation([]int32{-1, 0, 1}, 3))
}
