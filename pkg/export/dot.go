package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/scrawl/pkg/graph"
)

// DOTOptions configures Graphviz DOT generation.
type DOTOptions struct {
	// Detailed appends node details to labels. When false, only the
	// display label is shown.
	Detailed bool
	// Background sets the graph background color; "" renders transparent.
	Background string
}

// ToDOT converts a graph to Graphviz DOT format. Graphviz lays the result
// out with its own engine; engine positions are intentionally not carried
// over, DOT consumers expect Graphviz to own geometry.
//
// The resulting DOT string can be rendered with [RenderPNG] or
// [RenderGraphvizSVG].
func ToDOT(g graph.Graph, opts DOTOptions) string {
	background := opts.Background
	if background == "" {
		background = "transparent"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir(g.Type))
	fmt.Fprintf(&buf, "  bgcolor=%q;\n", background)
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=11];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		attrs := nodeAttrs(n, opts.Detailed)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		attrs := edgeAttrs(e)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func rankdir(typ string) string {
	if typ == graph.TypeMindmap {
		return "LR"
	}
	return "TB"
}

func nodeAttrs(n graph.Node, detailed bool) []string {
	label := n.DisplayLabel()
	if detailed && n.Details != "" {
		label += "\n" + n.Details
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}

	switch n.Kind {
	case graph.KindDecision:
		attrs = append(attrs, "shape=diamond", "style=filled", "fillcolor=\"#fff7ed\"")
	case graph.KindTerminal:
		attrs = append(attrs, "shape=oval", "style=filled", "fillcolor=\"#eef2ff\"")
	case graph.KindEntity:
		attrs = append(attrs, "shape=box", "style=filled", "fillcolor=\"#f0fdf4\"")
	}
	return attrs
}

func edgeAttrs(e graph.Edge) []string {
	var attrs []string
	if e.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
	}
	if e.Style != nil {
		if e.Style.Stroke != "" {
			attrs = append(attrs, fmt.Sprintf("color=%q", e.Style.Stroke))
		}
		if e.Style.Width > 0 {
			attrs = append(attrs, fmt.Sprintf("penwidth=%.1f", e.Style.Width))
		}
	}
	if e.Animated {
		attrs = append(attrs, "style=dashed")
	}
	return attrs
}
