package treeseq

import (
	"cmp"
	"slices"
)

// IndexKey is the part of an edgeset that determines its sweep position:
// its interval and the time of its parent node. Left and Right may be
// coordinates or breakpoint indexes; only their order matters.
type IndexKey struct {
	Left  float64
	Right float64
	Time  float64
}

// BuildIndexes returns the insertion and removal orders for a left-to-right
// sweep over the given edgesets. Insertion order sorts by (Left, Time) and
// removal order by (Right, -Time), so that older parents enter after and
// leave before the younger parents sharing a coordinate. Ties keep input
// order.
func BuildIndexes(keys []IndexKey) (insertion, removal []int32) {
	insertion = make([]int32, len(keys))
	removal = make([]int32, len(keys))
	for j := range keys {
		insertion[j] = int32(j)
		removal[j] = int32(j)
	}

	slices.SortStableFunc(insertion, func(a, b int32) int {
		ka, kb := keys[a], keys[b]
		if c := cmp.Compare(ka.Left, kb.Left); c != 0 {
			return c
		}
		return cmp.Compare(ka.Time, kb.Time)
	})
	slices.SortStableFunc(removal, func(a, b int32) int {
		ka, kb := keys[a], keys[b]
		if c := cmp.Compare(ka.Right, kb.Right); c != 0 {
			return c
		}
		return cmp.Compare(kb.Time, ka.Time)
	})

	return insertion, removal
}

// IsPermutation reports whether order holds each of 0..n-1 exactly once.
func IsPermutation(order []int32, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, j := range order {
		if j < 0 || int(j) >= n || seen[j] {
			return false
		}
		seen[j] = true
	}
	return true
}
