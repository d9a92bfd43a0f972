package layout

import (
	"slices"

	"github.com/matzehuels/scrawl/pkg/graph"
)

// =============================================================================
// Crossing Counting - Layout Quality Metric
// =============================================================================

// CountCrossings returns the total number of edge crossings across all
// consecutive layer pairs of an ordered layering. The barycenter sweep aims
// to shrink this number; the engine never promises zero.
func CountCrossings(ix *graph.Index, layers [][]string) int {
	crossings := 0
	for i := 0; i < len(layers)-1; i++ {
		crossings += CountLayerCrossings(ix, layers[i], layers[i+1])
	}
	return crossings
}

// CountLayerCrossings counts edge crossings between two adjacent layers
// using a Fenwick tree (binary indexed tree) for O(E log V) performance,
// where E is the number of edges between the layers and V is the size of
// the lower layer.
//
// Two edges (u1,v1) and (u2,v2) cross if and only if:
//
//	pos(u1) < pos(u2) AND pos(v1) > pos(v2)
//
// which makes crossings the inversion count of the target positions once
// edges are sorted by source position. Only edges landing exactly in the
// lower layer count; longer spans are invisible to this metric.
//
// Returns 0 if either layer is empty, as no crossings can exist.
func CountLayerCrossings(ix *graph.Index, upper, lower []string) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}

	lowerPos := posIndex(lower)

	type span struct{ upper, lower int }
	spans := make([]span, 0, len(upper)*2)
	for i, id := range upper {
		for _, child := range ix.Children(id) {
			if pos, ok := lowerPos[child]; ok {
				spans = append(spans, span{i, pos})
			}
		}
	}
	if len(spans) < 2 {
		return 0
	}

	// Sort by source position, then by target position
	slices.SortFunc(spans, func(a, b span) int {
		if a.upper != b.upper {
			return a.upper - b.upper
		}
		return a.lower - b.lower
	})

	// Count inversions using Fenwick tree
	fenwick := make([]int, len(lower)+1)
	crossings, total := 0, 0
	for _, s := range spans {
		// Query: count spans seen so far with target <= s.lower
		lessOrEqual := 0
		for q := s.lower + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		// Crossings = spans seen so far with target > s.lower
		crossings += total - lessOrEqual

		// Update: increment count at target position
		total++
		for idx := s.lower + 1; idx < len(fenwick); idx += idx & (-idx) {
			fenwick[idx]++
		}
	}
	return crossings
}
