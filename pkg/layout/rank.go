package layout

import "github.com/matzehuels/scrawl/pkg/graph"

// =============================================================================
// Rank Assignment - Bounded Relaxation
// =============================================================================

// Ranks computes an integer layer for every node. Every rank starts at 0;
// each pass walks the edge list in input order and lifts rank[target] to
// rank[source]+1 wherever it falls short. Passes stop after a clean pass or
// after N+2 passes, whichever comes first.
//
// The pass bound makes this a bounded relaxation rather than a longest-path
// computation: it terminates on every graph, including cyclic ones, at the
// cost of a globally consistent ordering around cycles. A cycle may leave
// inconsistent local ranks; that approximation is accepted, not corrected.
// Edges with a missing endpoint are skipped.
func Ranks(ix *graph.Index, edges []graph.Edge) map[string]int {
	ranks := make(map[string]int, ix.Len())
	for _, id := range ix.IDs() {
		ranks[id] = 0
	}

	limit := ix.Len() + 2
	for pass := 0; pass < limit; pass++ {
		changed := false
		for _, e := range edges {
			if !ix.Has(e.Source) || !ix.Has(e.Target) {
				continue
			}
			if ranks[e.Target] < ranks[e.Source]+1 {
				ranks[e.Target] = ranks[e.Source] + 1
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	return ranks
}

// Layers groups node ids into rank order. Within a layer, nodes keep their
// input order; [OrderLayers] refines that. Returns nil for an empty index.
// Cyclic graphs can leave intermediate layers empty; callers must tolerate
// empty slices.
func Layers(ix *graph.Index, ranks map[string]int) [][]string {
	if ix.Len() == 0 {
		return nil
	}

	maxRank := 0
	for _, id := range ix.IDs() {
		if r := ranks[id]; r > maxRank {
			maxRank = r
		}
	}

	layers := make([][]string, maxRank+1)
	for _, id := range ix.IDs() {
		r := ranks[id]
		layers[r] = append(layers[r], id)
	}
	return layers
}
