package layout

import (
	"cmp"
	"slices"

	"github.com/matzehuels/scrawl/pkg/graph"
)

// =============================================================================
// Crossing Reduction - Barycenter Sweep
// =============================================================================

// OrderLayers reorders each layer in place by the barycenter heuristic:
// from the second layer down, every node takes the mean position of its
// predecessors in the layer directly above, and the layer is stable-sorted
// by that value ascending. A node with no predecessor in the layer above
// gets sentinel -1 and sorts first; ties keep input order.
//
// This is a single forward sweep, not the usual multi-pass up/down
// refinement. It reduces crossings; it does not minimize them.
func OrderLayers(ix *graph.Index, layers [][]string) {
	for i := 1; i < len(layers); i++ {
		prevPos := posIndex(layers[i-1])

		bary := make(map[string]float64, len(layers[i]))
		for _, id := range layers[i] {
			bary[id] = barycenter(ix.Parents(id), prevPos)
		}

		slices.SortStableFunc(layers[i], func(a, b string) int {
			return cmp.Compare(bary[a], bary[b])
		})
	}
}

// barycenter averages the previous-layer positions of the given
// predecessors. Predecessors outside the previous layer do not count;
// duplicate edges count once per occurrence. Returns -1 when nothing
// counts.
func barycenter(parents []string, prevPos map[string]int) float64 {
	sum, count := 0.0, 0
	for _, p := range parents {
		if pos, ok := prevPos[p]; ok {
			sum += float64(pos)
			count++
		}
	}
	if count == 0 {
		return -1
	}
	return sum / float64(count)
}

// posIndex maps each id to its position in the slice. On duplicates the
// last position wins.
func posIndex(ids []string) map[string]int {
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}
	return pos
}
