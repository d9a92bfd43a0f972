package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scrawl/pkg/pipeline"
	"github.com/matzehuels/scrawl/pkg/store"
)

// generateCommand creates the generate command for prompt-to-diagram runs.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		output    string
		formats   string
		noCache   bool
		saveTitle string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "generate [prompt]",
		Short: "Generate a diagram from a natural-language prompt",
		Long: `Generate a diagram from a natural-language prompt.

The generate command asks the configured model for a graph, computes a
deterministic layout, and exports the result. Identical prompts are served
from the local cache without model calls; use --refresh to regenerate.

Requires an API key in the environment variable named by ai.api_key_env
in the config file (default: OPENAI_API_KEY).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formats)
			return c.runGenerate(cmd.Context(), args[0], opts, output, noCache, saveTitle)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or base path (default: diagram.<format>)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	// Generation flags
	cmd.Flags().StringVarP(&opts.Type, "type", "t", "", "diagram type: flowchart (default), mindmap, erd, orgchart")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the cache and ask the model again")

	// Layout flags
	cmd.Flags().StringVar(&opts.Style, "style", "", "layout style: hierarchical (default), tree, radial, circular, network")
	cmd.Flags().StringVar(&opts.Direction, "direction", "", "layered flow direction: TB (default), LR")

	// Export flags
	cmd.Flags().StringVarP(&formats, "format", "f", "", "output format(s): svg (default), png, dot, drawio, mermaid, json (comma-separated)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "document title embedded in exports")
	cmd.Flags().StringVar(&opts.Background, "background", "", "background fill (CSS color)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include node details in exports")

	cmd.Flags().StringVar(&saveTitle, "save", "", "save the diagram to the store under this title")

	return cmd
}

// runGenerate executes the full pipeline and writes the artifacts.
func (c *CLI) runGenerate(ctx context.Context, prompt string, opts pipeline.Options, output string, noCache bool, saveTitle string) error {
	runner, err := c.newRunner(ctx, noCache, true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Prompt = prompt
	opts.Logger = c.Logger

	typ := opts.Type
	if typ == "" {
		typ = pipeline.DefaultType
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Generating %s...", typ))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Generation failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(result.Artifacts, output)
	if err != nil {
		return err
	}

	printSuccess("Diagram ready")
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.Stats.Crossings, result.CacheInfo.GenerateHit)
	if result.Usage.TotalTokens > 0 {
		printDetail("%d tokens (%d prompt + %d completion)",
			result.Usage.TotalTokens, result.Usage.PromptTokens, result.Usage.CompletionTokens)
	}

	if saveTitle != "" {
		if err := c.saveDiagram(ctx, saveTitle, prompt, result); err != nil {
			return err
		}
	}

	return nil
}

// saveDiagram stores the generated diagram under the given title.
func (c *CLI) saveDiagram(ctx context.Context, title, prompt string, result *pipeline.Result) error {
	st, err := c.newStore(ctx)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	d := store.New(title, result.Graph)
	d.Prompt = prompt
	if err := st.Save(ctx, d); err != nil {
		return fmt.Errorf("save diagram: %w", err)
	}
	printDetail("saved as %s", d.ID)
	return nil
}
