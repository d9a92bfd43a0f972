package layout

import "github.com/matzehuels/scrawl/pkg/graph"

// =============================================================================
// Branch Color Propagation
// =============================================================================

// styleEdges returns a styled copy of every input edge, including dangling
// ones, so no data is silently dropped. Mindmap and org chart edges take
// the branch color of their target node; flowchart and entity diagram edges
// take one uniform neutral style, animated for flowcharts. Input edges are
// never mutated.
func styleEdges(edges []graph.Edge, ix *graph.Index, root, typ string, cfg Config) []graph.Edge {
	branch := typ == graph.TypeMindmap || typ == graph.TypeOrgChart

	var colors map[string]string
	if branch {
		colors = branchColors(ix, root, cfg.Palette)
	}

	out := make([]graph.Edge, len(edges))
	for i, e := range edges {
		stroke := cfg.EdgeStroke
		if branch {
			e.Animated = false
			if c, ok := colors[e.Target]; ok {
				stroke = c
			}
		} else {
			e.Animated = typ == graph.TypeFlowchart
		}
		e.Style = &graph.EdgeStyle{Stroke: stroke, Width: cfg.EdgeWidth}
		out[i] = e
	}
	return out
}

// branchColors assigns each of the root's direct children the next palette
// color (cycling past the palette end) and propagates breadth-first so
// every further descendant inherits its entry branch's color. The first
// assignment wins: shared descendants keep the earlier branch's color and
// cycles cannot recolor. The root itself stays uncolored, so edges into it
// keep the neutral stroke.
func branchColors(ix *graph.Index, root string, palette []string) map[string]string {
	colors := make(map[string]string, ix.Len())
	if root == "" || len(palette) == 0 {
		return colors
	}

	assigned := map[string]bool{root: true}
	var queue []string
	next := 0
	for _, c := range ix.Children(root) {
		if assigned[c] {
			continue
		}
		assigned[c] = true
		colors[c] = palette[next%len(palette)]
		next++
		queue = append(queue, c)
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, c := range ix.Children(id) {
			if assigned[c] {
				continue
			}
			assigned[c] = true
			colors[c] = colors[id]
			queue = append(queue, c)
		}
	}

	return colors
}
