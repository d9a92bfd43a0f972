package layout

import (
	"math"

	"github.com/matzehuels/scrawl/pkg/graph"
)

// =============================================================================
// Coordinate Assignment - Grid
// =============================================================================

// assignGrid packs nodes into a square-ish grid in input order:
// ceil(sqrt(n)) columns, position (col*CellWidth, row*CellHeight). Entity
// diagrams favor legible boxes over relationship proximity, so connectivity
// is deliberately ignored.
func assignGrid(ix *graph.Index, cfg Config) map[string]graph.Position {
	ids := ix.IDs()
	pos := make(map[string]graph.Position, len(ids))
	if len(ids) == 0 {
		return pos
	}

	cols := int(math.Ceil(math.Sqrt(float64(len(ids)))))
	for i, id := range ids {
		pos[id] = graph.Position{
			X: float64(i%cols) * cfg.CellWidth,
			Y: float64(i/cols) * cfg.CellHeight,
		}
	}
	return pos
}
