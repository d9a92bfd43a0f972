package pipeline

import (
	"fmt"

	"github.com/matzehuels/scrawl/pkg/export"
	"github.com/matzehuels/scrawl/pkg/graph"
)

// =============================================================================
// Export Stage
// =============================================================================

// ExportArtifacts renders the placed graph into every requested format.
// Artifacts are keyed by canonical format name.
func ExportArtifacts(g graph.Graph, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		f, err := export.ParseFormat(format)
		if err != nil {
			return nil, err
		}
		data, err := export.Render(g, f, opts.ExportOptions())
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[string(f)] = data
	}
	return artifacts, nil
}
