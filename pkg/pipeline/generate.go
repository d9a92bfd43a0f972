package pipeline

import (
	"context"

	"github.com/matzehuels/scrawl/pkg/ai"
	"github.com/matzehuels/scrawl/pkg/errors"
	"github.com/matzehuels/scrawl/pkg/graph"
)

// =============================================================================
// Generate Stage
// =============================================================================

// Generate runs the generation stage without caching: prompt in, graph out.
// The returned graph carries placeholder positions; run the layout stage
// on it before exporting.
func Generate(ctx context.Context, gen *ai.Generator, opts Options) (graph.Graph, ai.Usage, error) {
	if err := opts.ValidateForGenerate(); err != nil {
		return graph.Graph{}, ai.Usage{}, err
	}
	if gen == nil || gen.Client == nil {
		return graph.Graph{}, ai.Usage{}, errors.New(errors.ErrCodeInternal, "no generator configured")
	}

	g, usage, err := gen.Generate(ctx, opts.Type, opts.Prompt, opts.Refresh)
	if err != nil {
		return graph.Graph{}, usage, err
	}
	return *g, usage, nil
}
