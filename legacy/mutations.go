package legacy

import (
	"cmp"
	"slices"

	"github.com/robert-malhotra/go-treeseq/treeseq"
)

// States of the single binary mutation the legacy formats allow per site.
const (
	ancestralState = "0"
	derivedState   = "1"
)

// dedupeMutations turns the legacy (position, node) mutation columns into
// site and mutation tables with one site per mutation. A position seen
// earlier is a duplicate: with removeDuplicates the later entry is dropped,
// otherwise a *DuplicatePositionsError is returned and no tables are built.
// Sites come out in ascending position order.
func dedupeMutations(position []float64, node []int32, removeDuplicates bool) (*treeseq.SiteTable, *treeseq.MutationTable, error) {
	keep := make([]int, 0, len(position))
	seen := make(map[float64]struct{}, len(position))
	for j, x := range position {
		if _, ok := seen[x]; ok {
			continue
		}
		seen[x] = struct{}{}
		keep = append(keep, j)
	}

	if dups := len(position) - len(keep); dups > 0 && !removeDuplicates {
		return nil, nil, &DuplicatePositionsError{Duplicates: dups}
	}

	slices.SortStableFunc(keep, func(a, b int) int {
		return cmp.Compare(position[a], position[b])
	})

	n := len(keep)
	sc := treeseq.SiteColumns{
		Position:       make([]float64, n),
		AncestralState: make([]string, n),
	}
	mc := treeseq.MutationColumns{
		Site:         make([]int32, n),
		Node:         make([]int32, n),
		DerivedState: make([]string, n),
	}
	for k, j := range keep {
		sc.Position[k] = position[j]
		sc.AncestralState[k] = ancestralState
		mc.Site[k] = int32(k)
		mc.Node[k] = node[j]
		mc.DerivedState[k] = derivedState
	}

	sites, err := treeseq.NewSiteTable(sc)
	if err != nil {
		return nil, nil, err
	}
	mutations, err := treeseq.NewMutationTable(mc)
	if err != nil {
		return nil, nil, err
	}
	return sites, mutations, nil
}
