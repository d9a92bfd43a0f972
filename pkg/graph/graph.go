package graph

import (
	"fmt"
	"slices"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Diagram types. The type selects which coordinate strategy the layout
// engine applies by default.
const (
	TypeFlowchart = "flowchart"
	TypeMindmap   = "mindmap"
	TypeERD       = "erd"
	TypeOrgChart  = "orgchart"
)

// Layout styles. A secondary hint: only Radial/Circular reroute mind maps
// to the radial strategies, everything else keeps the per-type default.
const (
	StyleTree         = "tree"
	StyleRadial       = "radial"
	StyleHierarchical = "hierarchical"
	StyleCircular     = "circular"
	StyleNetwork      = "network"
)

// Node kinds recognized as semantic hints. The AI tags nodes with these;
// exporters use them to pick shapes (decision → diamond, entity → table).
const (
	KindProcess  = "process"
	KindDecision = "decision"
	KindTerminal = "terminal"
	KindEntity   = "entity"
)

var (
	diagramTypes = []string{TypeFlowchart, TypeMindmap, TypeERD, TypeOrgChart}
	layoutStyles = []string{StyleTree, StyleRadial, StyleHierarchical, StyleCircular, StyleNetwork}
)

// Types returns the known diagram types in canonical order.
func Types() []string { return slices.Clone(diagramTypes) }

// Styles returns the known layout styles in canonical order.
func Styles() []string { return slices.Clone(layoutStyles) }

// ValidType reports whether s is a known diagram type.
func ValidType(s string) bool { return slices.Contains(diagramTypes, s) }

// ValidStyle reports whether s is a known layout style.
func ValidStyle(s string) bool { return slices.Contains(layoutStyles, s) }

// =============================================================================
// Graph - Diagram Snapshot
// =============================================================================

// Graph is the canonical snapshot format for diagrams. Used for API
// responses, storage, caching, and as the layout engine's input and output.
//
// The format is human-readable and designed for round-trip fidelity:
// generate → layout → export → re-import produces identical results.
type Graph struct {
	Type  string `json:"type,omitempty" bson:"type,omitempty"` // Diagram type ("flowchart", ...)
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Clone returns a deep copy. Layout and edit operations work on copies so
// caller-held snapshots are never mutated.
func (g Graph) Clone() Graph {
	out := Graph{Type: g.Type}
	if g.Nodes != nil {
		out.Nodes = slices.Clone(g.Nodes)
	}
	if g.Edges != nil {
		out.Edges = make([]Edge, len(g.Edges))
		for i, e := range g.Edges {
			if e.Style != nil {
				s := *e.Style
				e.Style = &s
			}
			out.Edges[i] = e
		}
	}
	return out
}

// Validate checks structural soundness of a snapshot: node ids present,
// edge endpoints present, diagram type (when set) known. Edges referencing
// ids absent from Nodes are legal; the engine skips them geometrically.
func (g Graph) Validate() error {
	if g.Type != "" && !ValidType(g.Type) {
		return fmt.Errorf("unknown diagram type %q", g.Type)
	}
	for i, n := range g.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node %d: missing id", i)
		}
	}
	for i, e := range g.Edges {
		if e.Source == "" || e.Target == "" {
			return fmt.Errorf("edge %d (%s): missing endpoint", i, e.ID)
		}
	}
	return nil
}

// =============================================================================
// Node
// =============================================================================

// Position is a 2D canvas coordinate.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Node is a diagram node. Identity is ID; Position is the only field the
// layout engine fills in.
type Node struct {
	ID       string   `json:"id" bson:"id"`
	Label    string   `json:"label,omitempty" bson:"label,omitempty"`     // Display label (defaults to ID)
	Kind     string   `json:"kind,omitempty" bson:"kind,omitempty"`       // Semantic hint ("decision", "entity", ...)
	Details  string   `json:"details,omitempty" bson:"details,omitempty"` // Longer description for popups
	Position Position `json:"position" bson:"position"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// =============================================================================
// Edge
// =============================================================================

// EdgeStyle carries the visual stroke styling the engine assigns per edge.
type EdgeStyle struct {
	Stroke string  `json:"stroke" bson:"stroke"` // CSS color, e.g. "#6366f1"
	Width  float64 `json:"width" bson:"width"`
}

// Edge is a directed connection between two nodes. Source/Target reference
// node ids; references to ids absent from the node set are tolerated and
// ignored for geometry, never treated as failures.
type Edge struct {
	ID       string     `json:"id" bson:"id"`
	Source   string     `json:"source" bson:"source"`
	Target   string     `json:"target" bson:"target"`
	Label    string     `json:"label,omitempty" bson:"label,omitempty"`
	Style    *EdgeStyle `json:"style,omitempty" bson:"style,omitempty"`
	Animated bool       `json:"animated,omitempty" bson:"animated,omitempty"`
}
