package legacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupeMutationsUnique(t *testing.T) {
	sites, mutations, err := dedupeMutations([]float64{1, 2.5, 3}, []int32{4, 5, 6}, false)
	require.NoError(t, err)

	sc, mc := sites.Columns(), mutations.Columns()
	assert.Equal(t, []float64{1, 2.5, 3}, sc.Position)
	assert.Equal(t, []string{"0", "0", "0"}, sc.AncestralState)
	assert.Equal(t, []int32{0, 1, 2}, mc.Site)
	assert.Equal(t, []int32{4, 5, 6}, mc.Node)
	assert.Equal(t, []string{"1", "1", "1"}, mc.DerivedState)
}

func TestDedupeMutationsRemoveDuplicates(t *testing.T) {
	sites, mutations, err := dedupeMutations([]float64{10, 10, 20}, []int32{7, 8, 9}, true)
	require.NoError(t, err)

	assert.Equal(t, 2, sites.Len())
	assert.Equal(t, []float64{10, 20}, sites.Columns().Position)
	assert.Equal(t, []int32{7, 9}, mutations.Columns().Node)
	assert.Equal(t, []int32{0, 1}, mutations.Columns().Site)
}

func TestDedupeMutationsRejectDuplicates(t *testing.T) {
	sites, mutations, err := dedupeMutations([]float64{10, 10, 20}, []int32{7, 8, 9}, false)
	require.ErrorIs(t, err, ErrDuplicatePositions)
	assert.Nil(t, sites)
	assert.Nil(t, mutations)

	var derr *DuplicatePositionsError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, 1, derr.Duplicates)
}

func TestDedupeMutationsSortsPositions(t *testing.T) {
	sites, mutations, err := dedupeMutations([]float64{5, 1, 5, 3}, []int32{1, 2, 3, 4}, true)
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 3, 5}, sites.Columns().Position)
	assert.Equal(t, []int32{2, 4, 1}, mutations.Columns().Node)
}

func TestDedupeMutationsEmpty(t *testing.T) {
	sites, mutations, err := dedupeMutations(nil, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 0, sites.Len())
	assert.Equal(t, 0, mutations.Len())
}
