package pipeline

import (
	"github.com/matzehuels/scrawl/pkg/graph"
	"github.com/matzehuels/scrawl/pkg/layout"
)

// =============================================================================
// Layout Stage
// =============================================================================

// ComputeLayout places every node and styles every edge of g according to
// its diagram type and the requested style. The input graph is not
// mutated. Layout is deterministic and has no error path; degenerate
// graphs still come back fully placed.
func ComputeLayout(g graph.Graph, opts Options) graph.Graph {
	nodes, edges := layout.Compute(g.Nodes, g.Edges, opts.LayoutOptions())
	return graph.Graph{Type: g.Type, Nodes: nodes, Edges: edges}
}

// Crossings counts edge crossings in the layered ordering of g. Pipeline
// stats and the CLI report it as a layout quality signal.
func Crossings(g graph.Graph) int {
	ix := graph.NewIndex(g.Nodes, g.Edges)
	ranks := layout.Ranks(ix, g.Edges)
	layers := layout.Layers(ix, ranks)
	layout.OrderLayers(ix, layers)
	return layout.CountCrossings(ix, layers)
}
