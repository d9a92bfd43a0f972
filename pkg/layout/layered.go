package layout

import "github.com/matzehuels/scrawl/pkg/graph"

// =============================================================================
// Coordinate Assignment - Layered
// =============================================================================

// assignLayered maps (layer, order-within-layer) to coordinates. A layer of
// size k spans (k-1)*NodeGap centered on the layering axis: the first node
// sits at -extent/2 and siblings advance by NodeGap, so nodes within one
// layer always land on distinct, evenly spaced coordinates. The layer index
// scales by LayerGap along the layering axis. No cross-layer collision
// guarantee is made.
//
// TopToBottom layers grow downward (y), LeftToRight rightward (x).
func assignLayered(layers [][]string, dir Direction, cfg Config) map[string]graph.Position {
	pos := make(map[string]graph.Position)
	for r, layer := range layers {
		extent := float64(len(layer)-1) * cfg.NodeGap
		depth := float64(r) * cfg.LayerGap
		for i, id := range layer {
			offset := -extent/2 + float64(i)*cfg.NodeGap
			if dir == LeftToRight {
				pos[id] = graph.Position{X: depth, Y: offset}
			} else {
				pos[id] = graph.Position{X: offset, Y: depth}
			}
		}
	}
	return pos
}
