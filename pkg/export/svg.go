package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/scrawl/pkg/graph"
)

// Node box dimensions and canvas padding. Positions from the layout engine
// are box centers; exporters expand them into rectangles.
const (
	nodeWidth  = 160.0
	nodeHeight = 48.0
	canvasPad  = 60.0
	labelChars = 22
)

const edgeAnimationCSS = `
    .edge.animated { stroke-dasharray: 8 6; animation: dash 0.9s linear infinite; }
    @keyframes dash { to { stroke-dashoffset: -14; } }`

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	title      string
	background string
}

// WithTitle embeds a document title element.
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

// WithBackground fills the canvas with a solid color. The default is
// transparent.
func WithBackground(color string) SVGOption {
	return func(r *svgRenderer) { r.background = color }
}

// RenderSVG renders a positioned graph as a self-contained SVG document.
// Nodes become kind-shaped boxes centered on their positions, edges become
// lines with arrowheads in their assigned stroke color. Output is
// deterministic: elements follow the graph's node and edge order.
func RenderSVG(g graph.Graph, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	minX, minY, w, h := bounds(g)
	byID := nodesByID(g)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.1f %.1f %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		minX, minY, w, h, w, h)

	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escapeXML(r.title))
	}
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
			minX, minY, w, h, escapeXML(r.background))
	}

	renderDefs(&buf, g)

	for _, e := range g.Edges {
		renderEdge(&buf, e, byID)
	}
	for _, n := range g.Nodes {
		renderNode(&buf, n)
	}
	for _, n := range g.Nodes {
		renderLabel(&buf, n)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func nodesByID(g graph.Graph) map[string]graph.Node {
	byID := make(map[string]graph.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, ok := byID[n.ID]; !ok {
			byID[n.ID] = n
		}
	}
	return byID
}

// bounds returns the top-left corner and dimensions of the drawing area,
// covering every node box plus padding. An empty graph gets a small fixed
// canvas so the document stays well-formed.
func bounds(g graph.Graph) (minX, minY, w, h float64) {
	if len(g.Nodes) == 0 {
		return 0, 0, 2 * canvasPad, 2 * canvasPad
	}

	first := g.Nodes[0].Position
	left, right := first.X, first.X
	top, bottom := first.Y, first.Y
	for _, n := range g.Nodes[1:] {
		left = min(left, n.Position.X)
		right = max(right, n.Position.X)
		top = min(top, n.Position.Y)
		bottom = max(bottom, n.Position.Y)
	}

	minX = left - nodeWidth/2 - canvasPad
	minY = top - nodeHeight/2 - canvasPad
	w = right - left + nodeWidth + 2*canvasPad
	h = bottom - top + nodeHeight + 2*canvasPad
	return minX, minY, w, h
}

// renderDefs writes one arrowhead marker per edge color, in first-seen
// order so the defs block is deterministic.
func renderDefs(buf *bytes.Buffer, g graph.Graph) {
	buf.WriteString("  <defs>\n")
	seen := make(map[string]bool)
	for _, e := range g.Edges {
		color := edgeColor(e)
		if seen[color] {
			continue
		}
		seen[color] = true
		fmt.Fprintf(buf, `    <marker id="%s" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="7" markerHeight="7" orient="auto-start-reverse">`+"\n", markerID(color))
		fmt.Fprintf(buf, `      <path d="M 0 0 L 10 5 L 0 10 z" fill="%s"/>`+"\n", escapeXML(color))
		buf.WriteString("    </marker>\n")
	}
	buf.WriteString("  </defs>\n")
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", edgeAnimationCSS)
}

func renderEdge(buf *bytes.Buffer, e graph.Edge, byID map[string]graph.Node) {
	src, okS := byID[e.Source]
	dst, okD := byID[e.Target]
	if !okS || !okD {
		return
	}

	color := edgeColor(e)
	width := 2.0
	if e.Style != nil && e.Style.Width > 0 {
		width = e.Style.Width
	}

	class := "edge"
	if e.Animated {
		class = "edge animated"
	}

	fmt.Fprintf(buf, `  <line class="%s" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.1f" marker-end="url(#%s)"/>`+"\n",
		class, src.Position.X, src.Position.Y, dst.Position.X, dst.Position.Y,
		escapeXML(color), width, markerID(color))

	if e.Label != "" {
		mx := (src.Position.X + dst.Position.X) / 2
		my := (src.Position.Y + dst.Position.Y) / 2
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" text-anchor="middle" font-size="11" font-family="sans-serif" fill="#64748b">%s</text>`+"\n",
			mx, my-4, escapeXML(e.Label))
	}
}

func renderNode(buf *bytes.Buffer, n graph.Node) {
	x := n.Position.X - nodeWidth/2
	y := n.Position.Y - nodeHeight/2

	switch n.Kind {
	case graph.KindDecision:
		fmt.Fprintf(buf, `  <polygon id="node-%s" points="%.1f,%.1f %.1f,%.1f %.1f,%.1f %.1f,%.1f" fill="#fff7ed" stroke="#f59e0b" stroke-width="2">`,
			escapeXML(n.ID),
			n.Position.X, y-8,
			x+nodeWidth+16, n.Position.Y,
			n.Position.X, y+nodeHeight+8,
			x-16, n.Position.Y)
	case graph.KindTerminal:
		fmt.Fprintf(buf, `  <rect id="node-%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="%.1f" fill="#eef2ff" stroke="#6366f1" stroke-width="2">`,
			escapeXML(n.ID), x, y, nodeWidth, nodeHeight, nodeHeight/2)
	case graph.KindEntity:
		fmt.Fprintf(buf, `  <rect id="node-%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#f0fdf4" stroke="#10b981" stroke-width="2">`,
			escapeXML(n.ID), x, y, nodeWidth, nodeHeight)
	default:
		fmt.Fprintf(buf, `  <rect id="node-%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="8" fill="#ffffff" stroke="#334155" stroke-width="2">`,
			escapeXML(n.ID), x, y, nodeWidth, nodeHeight)
	}

	if n.Details != "" {
		fmt.Fprintf(buf, "<title>%s</title>", escapeXML(n.Details))
	}

	switch n.Kind {
	case graph.KindDecision:
		buf.WriteString("</polygon>\n")
	default:
		buf.WriteString("</rect>\n")
	}
}

func renderLabel(buf *bytes.Buffer, n graph.Node) {
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="middle" font-size="13" font-family="sans-serif" fill="#0f172a">%s</text>`+"\n",
		n.Position.X, n.Position.Y, escapeXML(truncateLabel(n.DisplayLabel())))
}

func edgeColor(e graph.Edge) string {
	if e.Style != nil && e.Style.Stroke != "" {
		return e.Style.Stroke
	}
	return "#94a3b8"
}

// markerID derives a stable marker id from a color ("#6366f1" → "arrow-6366f1").
func markerID(color string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return -1
		}
	}, color)
	return "arrow-" + clean
}

func truncateLabel(label string) string {
	if len(label) <= labelChars {
		return label
	}
	return label[:labelChars-2] + ".."
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
