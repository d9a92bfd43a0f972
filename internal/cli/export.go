package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scrawl/pkg/export"
	"github.com/matzehuels/scrawl/pkg/graph"
	"github.com/matzehuels/scrawl/pkg/pipeline"
)

// exportCommand creates the export command for rendering a placed graph.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		formatsStr  string
		output      string
		noCache     bool
		useGraphviz bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "export [graph.json]",
		Short: "Export a diagram to output formats",
		Long: `Export a diagram to output formats.

The export command takes a graph file (typically the output of 'layout')
and renders it to one or more formats. Positions already stored in the
file are used as-is; run 'layout' first if the graph has none.

Formats: svg, png, dot, drawio, mermaid, json.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			return c.runExport(cmd.Context(), args[0], opts, output, noCache, useGraphviz)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot, drawio, mermaid, json (comma-separated)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "document title for SVG and draw.io output")
	cmd.Flags().StringVar(&opts.Background, "background", "", "background color (default: transparent)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include node details in labels")
	cmd.Flags().BoolVar(&useGraphviz, "graphviz", false, "render SVG with Graphviz instead of engine positions")

	return cmd
}

// runExport loads the graph and renders the requested formats.
func (c *CLI) runExport(ctx context.Context, input string, opts pipeline.Options, output string, noCache, useGraphviz bool) error {
	g, err := graph.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}
	if unplaced(g) {
		printWarning("Graph has no positions. Run 'scrawl layout %s' first for a readable result.", input)
	}

	runner, err := c.newRunner(ctx, noCache, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Exporting...")
	spinner.Start()

	artifacts, cacheHit, err := runner.ExportWithCacheInfo(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Export failed")
		return fmt.Errorf("export: %w", err)
	}
	if useGraphviz {
		if err := replaceWithGraphvizSVG(artifacts, g, opts); err != nil {
			spinner.StopWithError("Export failed")
			return fmt.Errorf("export: %w", err)
		}
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	}
	paths, err := writeArtifacts(artifacts, base)
	if err != nil {
		return err
	}

	printSuccess("Export complete")
	for _, path := range paths {
		printFile(path)
	}
	printStats(len(g.Nodes), len(g.Edges), 0, cacheHit)
	return nil
}

// replaceWithGraphvizSVG swaps the engine-positioned SVG artifact for one
// laid out by Graphviz. Only the svg artifact is affected; PNG output
// already goes through Graphviz.
func replaceWithGraphvizSVG(artifacts map[string][]byte, g graph.Graph, opts pipeline.Options) error {
	if _, ok := artifacts[string(export.FormatSVG)]; !ok {
		return nil
	}
	dot := export.ToDOT(g, export.DOTOptions{Detailed: opts.Detailed, Background: opts.Background})
	svg, err := export.RenderGraphvizSVG(dot)
	if err != nil {
		return fmt.Errorf("graphviz svg: %w", err)
	}
	artifacts[string(export.FormatSVG)] = svg
	return nil
}

// unplaced reports whether every node sits at the origin. For a graph
// with two or more nodes that means layout never ran; a single node at
// the origin is a valid placement.
func unplaced(g graph.Graph) bool {
	if len(g.Nodes) < 2 {
		return false
	}
	for _, n := range g.Nodes {
		if n.Position.X != 0 || n.Position.Y != 0 {
			return false
		}
	}
	return true
}

// parseFormats parses the --format flag into a slice of format names.
// An empty flag returns nil, which lets the pipeline apply its default.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// writeArtifacts writes pipeline artifacts next to each other under a
// shared base path and returns the written paths in format order. A known
// format extension on the base is stripped first, so "-o out.svg" with
// multiple formats produces out.svg, out.png and so on rather than
// doubled extensions.
func writeArtifacts(artifacts map[string][]byte, base string) ([]string, error) {
	if base == "" {
		base = "diagram"
	}
	if ext := filepath.Ext(base); ext != "" {
		if _, err := export.ParseFormat(ext); err == nil {
			base = strings.TrimSuffix(base, ext)
		}
	}

	names := make([]string, 0, len(artifacts))
	for name := range artifacts {
		names = append(names, name)
	}
	slices.Sort(names)

	paths := make([]string, 0, len(names))
	for _, name := range names {
		f, err := export.ParseFormat(name)
		if err != nil {
			return nil, fmt.Errorf("artifact %q: %w", name, err)
		}
		path := base + export.Ext(f)
		if err := os.WriteFile(path, artifacts[name], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
