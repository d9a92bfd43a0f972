package layout

import (
	"math"
	"slices"

	"github.com/matzehuels/scrawl/pkg/graph"
)

// =============================================================================
// Configuration
// =============================================================================

// Direction is the layering axis for layered placement.
type Direction string

// Layer directions.
const (
	TopToBottom Direction = "TB"
	LeftToRight Direction = "LR"
)

// DefaultPalette is the branch color cycle for mind maps and org charts.
var DefaultPalette = []string{
	"#6366f1", // indigo
	"#ec4899", // pink
	"#f59e0b", // amber
	"#10b981", // emerald
	"#06b6d4", // cyan
	"#8b5cf6", // violet
	"#ef4444", // red
	"#84cc16", // lime
}

// Config carries the spacing constants and palette for one layout call.
// All values are defaulted and overridable so the engine stays reentrant
// and testable with controlled parameters.
type Config struct {
	Direction  Direction // layered axis override; "" selects by diagram type
	NodeGap    float64   // spacing between siblings within a layer
	LayerGap   float64   // spacing between consecutive layers
	SlotHeight float64   // minimum vertical slot for a leaf in tree placement
	BranchGap  float64   // horizontal advance per depth level in tree placement
	RingGap    float64   // radius increment per level in sector placement
	CellWidth  float64   // grid column width
	CellHeight float64   // grid row height
	Palette    []string  // branch colors; cycled when exhausted
	EdgeStroke string    // neutral edge color
	EdgeWidth  float64   // edge stroke width
}

// DefaultConfig returns the standard spacing and palette.
func DefaultConfig() Config {
	return Config{
		NodeGap:    220,
		LayerGap:   140,
		SlotHeight: 80,
		BranchGap:  260,
		RingGap:    180,
		CellWidth:  280,
		CellHeight: 180,
		Palette:    slices.Clone(DefaultPalette),
		EdgeStroke: "#94a3b8",
		EdgeWidth:  2,
	}
}

// sanitize replaces zero, negative, and non-finite values with defaults.
// Degenerate configuration must never produce non-finite positions.
func (c Config) sanitize() Config {
	def := DefaultConfig()
	c.NodeGap = orDefault(c.NodeGap, def.NodeGap)
	c.LayerGap = orDefault(c.LayerGap, def.LayerGap)
	c.SlotHeight = orDefault(c.SlotHeight, def.SlotHeight)
	c.BranchGap = orDefault(c.BranchGap, def.BranchGap)
	c.RingGap = orDefault(c.RingGap, def.RingGap)
	c.CellWidth = orDefault(c.CellWidth, def.CellWidth)
	c.CellHeight = orDefault(c.CellHeight, def.CellHeight)
	c.EdgeWidth = orDefault(c.EdgeWidth, def.EdgeWidth)
	if len(c.Palette) == 0 {
		c.Palette = def.Palette
	}
	if c.EdgeStroke == "" {
		c.EdgeStroke = def.EdgeStroke
	}
	return c
}

func orDefault(v, def float64) float64 {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// =============================================================================
// Options
// =============================================================================

// Options selects the coordinate strategy for one layout call.
type Options struct {
	Type   string // diagram type (graph.TypeFlowchart, ...)
	Style  string // layout style hint (graph.StyleRadial, ...)
	Config Config
}

// strategy names the coordinate assignment Compute routes to.
type strategy int

const (
	strategyLayered strategy = iota
	strategyTree
	strategySectors
	strategyGrid
)

// route selects the strategy and layering direction from type and style.
// Only Radial/Circular reroute mind maps; unknown types fall back to the
// flowchart treatment.
func route(typ, style string) (strategy, Direction) {
	switch typ {
	case graph.TypeERD:
		return strategyGrid, TopToBottom
	case graph.TypeMindmap:
		switch style {
		case graph.StyleRadial:
			return strategyTree, LeftToRight
		case graph.StyleCircular:
			return strategySectors, LeftToRight
		}
		return strategyLayered, LeftToRight
	default: // flowchart, orgchart, unknown
		return strategyLayered, TopToBottom
	}
}

// =============================================================================
// Compute - Engine Entry Point
// =============================================================================

// Compute assigns a finite 2D position to every node and a style to every
// edge, selecting the coordinate strategy from the diagram type and layout
// style. It is pure and total: identical inputs produce identical output,
// caller slices are never mutated, and every degenerate input (empty graph,
// cycles, self-loops, duplicate edges, dangling references, disconnected
// islands) still yields a complete result. There is no error path.
func Compute(nodes []graph.Node, edges []graph.Edge, opts Options) ([]graph.Node, []graph.Edge) {
	cfg := opts.Config.sanitize()
	ix := graph.NewIndex(nodes, edges)

	strat, dir := route(opts.Type, opts.Style)
	if cfg.Direction != "" {
		dir = cfg.Direction
	}

	var pos map[string]graph.Position
	var root string
	switch strat {
	case strategyGrid:
		pos = assignGrid(ix, cfg)
		root = ix.Root()
	case strategyTree:
		root = ix.HubRoot()
		pos = assignTree(ix, root, cfg)
	case strategySectors:
		root = ix.HubRoot()
		pos = assignSectors(ix, root, cfg)
	default:
		root = ix.Root()
		ranks := Ranks(ix, edges)
		layers := Layers(ix, ranks)
		OrderLayers(ix, layers)
		pos = assignLayered(layers, dir, cfg)
	}

	out := make([]graph.Node, len(nodes))
	for i, n := range nodes {
		if p, ok := pos[n.ID]; ok {
			n.Position = p
		} else {
			n.Position = graph.Position{}
		}
		out[i] = n
	}

	styled := styleEdges(edges, ix, root, opts.Type, cfg)
	return out, styled
}
