package layout

import (
	"math"

	"github.com/matzehuels/scrawl/pkg/graph"
)

// =============================================================================
// Coordinate Assignment - Balanced Tree
// =============================================================================

// assignTree renders a horizontal mind-map tree balanced around the root.
// The root sits at the origin; its direct children alternate onto the right
// (even index) and left (odd index) side, and each side stacks as a block
// of subtree-height slots vertically centered on the root. Deeper levels
// advance by BranchGap per depth in their branch direction.
//
// Nodes unreachable from the root are stacked as an island column after the
// tree is placed.
func assignTree(ix *graph.Index, root string, cfg Config) map[string]graph.Position {
	pos := make(map[string]graph.Position, ix.Len())
	if root == "" {
		return pos
	}

	heights := subtreeHeights(ix, root, cfg)
	pos[root] = graph.Position{}

	var right, left []string
	for i, c := range ix.Children(root) {
		if i%2 == 0 {
			right = append(right, c)
		} else {
			left = append(left, c)
		}
	}
	placeBranch(ix, right, heights, pos, 0, +1, 1, cfg)
	placeBranch(ix, left, heights, pos, 0, -1, 1, cfg)

	placeIslands(ix, pos, cfg)
	return pos
}

// subtreeHeights computes, bottom-up, the vertical slot each subtree needs:
// leaves take SlotHeight, inner nodes the sum of their children's heights.
// Any node reached a second time during the walk counts as a leaf, which
// bounds the walk on cycles and back-edges.
func subtreeHeights(ix *graph.Index, root string, cfg Config) map[string]float64 {
	heights := make(map[string]float64, ix.Len())
	seen := make(map[string]bool, ix.Len())

	var walk func(id string) float64
	walk = func(id string) float64 {
		if seen[id] {
			return cfg.SlotHeight
		}
		seen[id] = true

		children := ix.Children(id)
		if len(children) == 0 {
			heights[id] = cfg.SlotHeight
			return cfg.SlotHeight
		}

		total := 0.0
		for _, c := range children {
			total += walk(c)
		}
		heights[id] = total
		return total
	}

	walk(root)
	return heights
}

// placeBranch stacks children as a block vertically centered on centerY.
// Each child's center sits half its subtree height past the running cursor,
// then the cursor advances by the full height, so siblings occupy disjoint
// slots whose total equals the block height. The block keeps a slot open
// for any child a deeper branch claimed first.
func placeBranch(ix *graph.Index, children []string, heights map[string]float64, pos map[string]graph.Position, centerY, dir float64, depth int, cfg Config) {
	toPlace := unplaced(pos, children)
	if len(toPlace) == 0 {
		return
	}

	total := 0.0
	for _, c := range toPlace {
		total += heights[c]
	}

	x := float64(depth) * cfg.BranchGap * dir
	cursor := centerY - total/2
	for _, c := range toPlace {
		h := heights[c]
		y := cursor + h/2
		cursor += h
		if _, done := pos[c]; done {
			continue
		}
		pos[c] = graph.Position{X: x, Y: y}
		placeBranch(ix, ix.Children(c), heights, pos, y, dir, depth+1, cfg)
	}
}

// =============================================================================
// Coordinate Assignment - Angular Sectors
// =============================================================================

// assignSectors places nodes on concentric rings around the root: each
// node's children split the parent's angular sector into equal sub-sectors,
// and a child sits at its sub-sector's midpoint angle, level*RingGap from
// the origin. Unreachable nodes become an island column, as in tree mode.
func assignSectors(ix *graph.Index, root string, cfg Config) map[string]graph.Position {
	pos := make(map[string]graph.Position, ix.Len())
	if root == "" {
		return pos
	}

	pos[root] = graph.Position{}
	sweep(ix, root, 1, 0, 2*math.Pi, pos, cfg)

	placeIslands(ix, pos, cfg)
	return pos
}

func sweep(ix *graph.Index, id string, level int, start, end float64, pos map[string]graph.Position, cfg Config) {
	toPlace := unplaced(pos, ix.Children(id))
	if len(toPlace) == 0 {
		return
	}

	arc := (end - start) / float64(len(toPlace))
	radius := float64(level) * cfg.RingGap
	for i, c := range toPlace {
		from := start + float64(i)*arc
		if _, done := pos[c]; done {
			continue
		}
		mid := from + arc/2
		pos[c] = graph.Position{X: radius * math.Cos(mid), Y: radius * math.Sin(mid)}
		sweep(ix, c, level+1, from, from+arc, pos, cfg)
	}
}

// =============================================================================
// Shared Helpers
// =============================================================================

// unplaced filters children to those without a position yet, collapsing
// duplicate edges to a single occurrence.
func unplaced(pos map[string]graph.Position, children []string) []string {
	var out []string
	var seen map[string]bool
	for _, c := range children {
		if _, done := pos[c]; done {
			continue
		}
		if seen[c] {
			continue
		}
		if seen == nil {
			seen = make(map[string]bool, len(children))
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// placeIslands stacks every node the main walk never reached in a single
// column strictly to the right of everything placed so far, ordered by
// input position. Islands stay visible and deterministic instead of
// overlapping the structure or being dropped.
func placeIslands(ix *graph.Index, pos map[string]graph.Position, cfg Config) {
	maxX := 0.0
	for _, p := range pos {
		if p.X > maxX {
			maxX = p.X
		}
	}

	x := maxX + cfg.BranchGap
	row := 0
	for _, id := range ix.IDs() {
		if _, done := pos[id]; done {
			continue
		}
		pos[id] = graph.Position{X: x, Y: float64(row) * cfg.SlotHeight}
		row++
	}
}
