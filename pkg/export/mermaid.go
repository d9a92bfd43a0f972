package export

import (
	"fmt"
	"strings"

	"github.com/matzehuels/scrawl/pkg/graph"
)

// ToMermaid converts a graph to a Mermaid text block matching its diagram
// type: flowchart and org chart become `flowchart TD`, mind maps become
// `mindmap`, entity diagrams become `erDiagram`. The block embeds directly
// in markdown fences.
func ToMermaid(g graph.Graph) string {
	switch g.Type {
	case graph.TypeMindmap:
		return mermaidMindmap(g)
	case graph.TypeERD:
		return mermaidERD(g)
	default:
		return mermaidFlowchart(g)
	}
}

func mermaidFlowchart(g graph.Graph) string {
	var sb strings.Builder
	sb.WriteString("flowchart TD\n")

	for _, n := range g.Nodes {
		sb.WriteString("    ")
		sb.WriteString(mermaidNode(n))
		sb.WriteString("\n")
	}

	for _, e := range g.Edges {
		id := mermaidID(e.Source)
		target := mermaidID(e.Target)
		if e.Label != "" {
			fmt.Fprintf(&sb, "    %s -->|%s| %s\n", id, mermaidLabel(e.Label), target)
		} else {
			fmt.Fprintf(&sb, "    %s --> %s\n", id, target)
		}
	}

	return sb.String()
}

// mermaidNode renders one node declaration with kind-aware brackets:
// decision → {diamond}, terminal → ([stadium]), default → [box].
func mermaidNode(n graph.Node) string {
	id := mermaidID(n.ID)
	label := mermaidLabel(n.DisplayLabel())
	switch n.Kind {
	case graph.KindDecision:
		return fmt.Sprintf("%s{%s}", id, label)
	case graph.KindTerminal:
		return fmt.Sprintf("%s([%s])", id, label)
	default:
		return fmt.Sprintf("%s[%s]", id, label)
	}
}

func mermaidMindmap(g graph.Graph) string {
	var sb strings.Builder
	sb.WriteString("mindmap\n")
	if len(g.Nodes) == 0 {
		return sb.String()
	}

	ix := graph.NewIndex(g.Nodes, g.Edges)
	byID := nodesByID(g)
	root := ix.HubRoot()

	visited := make(map[string]bool, len(g.Nodes))
	rootNode := byID[root]
	fmt.Fprintf(&sb, "    root((%s))\n", mindmapText(rootNode.DisplayLabel()))
	visited[root] = true
	writeMindmapChildren(&sb, ix, byID, root, 2, visited)

	// Mindmap syntax holds a single tree, so nodes unreachable from the
	// root are attached directly beneath it.
	for _, id := range ix.IDs() {
		if visited[id] {
			continue
		}
		visited[id] = true
		n := byID[id]
		sb.WriteString(strings.Repeat("    ", 2))
		sb.WriteString(mindmapText(n.DisplayLabel()))
		sb.WriteString("\n")
		writeMindmapChildren(&sb, ix, byID, id, 3, visited)
	}

	return sb.String()
}

func writeMindmapChildren(sb *strings.Builder, ix *graph.Index, byID map[string]graph.Node, id string, depth int, visited map[string]bool) {
	for _, child := range ix.Children(id) {
		if visited[child] {
			continue
		}
		visited[child] = true
		n := byID[child]
		sb.WriteString(strings.Repeat("    ", depth))
		sb.WriteString(mindmapText(n.DisplayLabel()))
		sb.WriteString("\n")
		writeMindmapChildren(sb, ix, byID, child, depth+1, visited)
	}
}

// mindmapText strips shape delimiters; mindmap nodes take bare text and
// brackets would open a shape mid-label.
func mindmapText(label string) string {
	out := strings.Map(func(r rune) rune {
		switch r {
		case '(', ')', '[', ']', '{', '}':
			return -1
		case '\n':
			return ' '
		default:
			return r
		}
	}, label)
	out = strings.TrimSpace(out)
	if out == "" {
		return "node"
	}
	return out
}

func mermaidERD(g graph.Graph) string {
	var sb strings.Builder
	sb.WriteString("erDiagram\n")

	for _, n := range g.Nodes {
		name := mermaidID(n.ID)
		attrs := entityAttributes(n.Details)
		if len(attrs) == 0 {
			fmt.Fprintf(&sb, "    %s\n", name)
			continue
		}
		fmt.Fprintf(&sb, "    %s {\n", name)
		for _, a := range attrs {
			fmt.Fprintf(&sb, "        %s\n", a)
		}
		sb.WriteString("    }\n")
	}

	for _, e := range g.Edges {
		label := e.Label
		if label == "" {
			label = "relates"
		}
		fmt.Fprintf(&sb, "    %s %s %s : %q\n",
			mermaidID(e.Source), cardinality(e.Label), mermaidID(e.Target), label)
	}

	return sb.String()
}

// entityAttributes converts detail lines into mermaid attribute rows.
// A line is "name" or "type name"; bare names default to string.
func entityAttributes(details string) []string {
	var attrs []string
	for _, line := range strings.Split(details, "\n") {
		fields := strings.Fields(line)
		switch len(fields) {
		case 0:
			continue
		case 1:
			attrs = append(attrs, "string "+mermaidID(fields[0]))
		default:
			attrs = append(attrs, mermaidID(fields[0])+" "+mermaidID(fields[1]))
		}
	}
	return attrs
}

// cardinality maps a relationship label like "1:N" to mermaid crow's-foot
// notation. Unrecognized labels default to one-to-many.
func cardinality(label string) string {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "1:1":
		return "||--||"
	case "N:1", "M:1", "MANY:1":
		return "}o--||"
	case "N:M", "M:N", "N:N", "MANY:MANY":
		return "}o--o{"
	default:
		return "||--o{"
	}
}

// mermaidID strips characters mermaid identifiers cannot carry.
func mermaidID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// mermaidLabel quotes a label so bracket and pipe characters in display
// text cannot break the node syntax.
func mermaidLabel(label string) string {
	return `"` + strings.ReplaceAll(label, `"`, "#quot;") + `"`
}
