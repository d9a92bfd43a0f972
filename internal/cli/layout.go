package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scrawl/pkg/graph"
	"github.com/matzehuels/scrawl/pkg/layout"
	"github.com/matzehuels/scrawl/pkg/pipeline"
)

// layoutCommand creates the layout command for placing graph snapshots.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output    string
		noCache   bool
		showStats bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute coordinates for a graph snapshot",
		Long: `Compute coordinates for a graph snapshot.

The layout command takes a graph.json file (for example one produced by
'generate -f json' or written by hand) and fills in node positions and
edge styling. The placed snapshot can be rendered with 'export'.

Layout is deterministic: the same snapshot always produces the same
coordinates. Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache, showStats)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	// Layout flags
	cmd.Flags().StringVar(&opts.Style, "style", "", "layout style: hierarchical (default), tree, radial, circular, network")
	cmd.Flags().StringVar(&opts.Direction, "direction", "", "layered flow direction: TB (default), LR")
	cmd.Flags().BoolVar(&showStats, "stats", false, "print rank, layer, and crossing statistics")

	return cmd
}

// runLayout loads the graph, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache, showStats bool) error {
	g, err := graph.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Type = g.Type
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	placed, cacheHit, err := runner.LayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}

	if err := graph.WriteFile(placed, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(placed.Nodes), len(placed.Edges), pipeline.Crossings(placed), cacheHit)
	if showStats {
		printLayoutStats(placed)
	}
	printNewline()
	printNextStep("Render", "scrawl export "+outputPath)

	return nil
}

// printLayoutStats prints rank and layer detail for a placed graph.
func printLayoutStats(g graph.Graph) {
	ix := graph.NewIndex(g.Nodes, g.Edges)
	ranks := layout.Ranks(ix, g.Edges)
	layers := layout.Layers(ix, ranks)
	layout.OrderLayers(ix, layers)

	widest := 0
	for _, layer := range layers {
		if len(layer) > widest {
			widest = len(layer)
		}
	}

	printNewline()
	printKeyValue("layers", fmt.Sprintf("%d", len(layers)))
	printKeyValue("widest", fmt.Sprintf("%d nodes", widest))
	printKeyValue("crossings", fmt.Sprintf("%d", layout.CountCrossings(ix, layers)))
}
