package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/scrawl/pkg/graph"
	"github.com/matzehuels/scrawl/pkg/store"
)

// diagramsCommand creates the diagrams command with subcommands.
func (c *CLI) diagramsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagrams",
		Short: "Manage saved diagrams",
		Long: `Manage saved diagrams.

Diagrams live in the backend named by store.backend in the config file:
"file" keeps JSON documents in a local directory, "mongo" uses a MongoDB
collection. IDs may be abbreviated to any unique prefix.`,
	}

	cmd.AddCommand(c.diagramsListCommand())
	cmd.AddCommand(c.diagramsShowCommand())
	cmd.AddCommand(c.diagramsSaveCommand())
	cmd.AddCommand(c.diagramsDeleteCommand())

	return cmd
}

// diagramsListCommand creates the list subcommand.
func (c *CLI) diagramsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved diagrams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDiagramsList(cmd.Context())
		},
	}
}

func (c *CLI) runDiagramsList(ctx context.Context) error {
	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	summaries, err := st.List(ctx)
	if err != nil {
		return fmt.Errorf("list diagrams: %w", err)
	}
	if len(summaries) == 0 {
		printInfo("No saved diagrams")
		printNextStep("Create one", "scrawl generate \"...\" --save \"My diagram\"")
		return nil
	}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{shortID(s.ID), s.Title, s.Type, formatRelativeTime(s.UpdatedAt)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Title", "Type", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 || col == 3 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	fmt.Println(t.Render())
	printDetail("%d diagrams", len(summaries))
	return nil
}

// diagramsShowCommand creates the show subcommand.
func (c *CLI) diagramsShowCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a saved diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDiagramsShow(cmd.Context(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the graph to a file instead of printing a summary")

	return cmd
}

func (c *CLI) runDiagramsShow(ctx context.Context, id, output string) error {
	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	d, err := lookupDiagram(ctx, st, id)
	if err != nil {
		return err
	}

	if output != "" {
		if err := graph.WriteFile(d.Graph, output); err != nil {
			return fmt.Errorf("write graph: %w", err)
		}
		printSuccess("Graph written")
		printFile(output)
		printNewline()
		printNextStep("Render", "scrawl export "+output)
		return nil
	}

	printSuccess("%s", d.Title)
	printKeyValue("ID", d.ID)
	printKeyValue("Type", d.Type)
	printKeyValue("Nodes", StyleNumber.Render(fmt.Sprintf("%d", len(d.Graph.Nodes))))
	printKeyValue("Edges", StyleNumber.Render(fmt.Sprintf("%d", len(d.Graph.Edges))))
	if d.Prompt != "" {
		printKeyValue("Prompt", d.Prompt)
	}
	printKeyValue("Created", d.CreatedAt.Format("Jan 2, 2006 15:04"))
	printKeyValue("Updated", d.UpdatedAt.Format("Jan 2, 2006 15:04"))
	printNewline()
	printNextStep("Export", fmt.Sprintf("scrawl diagrams show %s -o graph.json", shortID(d.ID)))
	return nil
}

// diagramsSaveCommand creates the save subcommand.
func (c *CLI) diagramsSaveCommand() *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "save [graph.json]",
		Short: "Save a graph file as a diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDiagramsSave(cmd.Context(), args[0], title)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "diagram title (default: file name)")

	return cmd
}

func (c *CLI) runDiagramsSave(ctx context.Context, input, title string) error {
	g, err := graph.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}

	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	d := store.New(title, g)
	if err := st.Save(ctx, d); err != nil {
		return fmt.Errorf("save diagram: %w", err)
	}

	printSuccess("Diagram saved")
	printKeyValue("ID", d.ID)
	printKeyValue("Title", d.Title)
	return nil
}

// diagramsDeleteCommand creates the delete subcommand.
func (c *CLI) diagramsDeleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a saved diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDiagramsDelete(cmd.Context(), args[0], yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func (c *CLI) runDiagramsDelete(ctx context.Context, id string, yes bool) error {
	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	d, err := lookupDiagram(ctx, st, id)
	if err != nil {
		return err
	}

	if !yes {
		printInline("Delete %q? [y/N] ", d.Title)
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		printNewline()
		if answer != "y" && answer != "yes" {
			printDetail("Cancelled")
			return nil
		}
	}

	if err := st.Delete(ctx, d.ID); err != nil {
		return fmt.Errorf("delete diagram: %w", err)
	}
	printSuccess("Deleted %s", shortID(d.ID))
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

// lookupDiagram fetches a diagram by ID or unique ID prefix.
func lookupDiagram(ctx context.Context, st store.Store, id string) (*store.Diagram, error) {
	full, err := resolveDiagramID(ctx, st, id)
	if err != nil {
		return nil, err
	}
	d, err := st.Get(ctx, full)
	if err != nil {
		return nil, fmt.Errorf("get diagram: %w", err)
	}
	return d, nil
}

// resolveDiagramID expands a unique ID prefix to a full diagram ID. Exact
// matches win; an unknown prefix passes through so the store reports the
// not-found error.
func resolveDiagramID(ctx context.Context, st store.Store, id string) (string, error) {
	summaries, err := st.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list diagrams: %w", err)
	}

	var matches []string
	for _, s := range summaries {
		if s.ID == id {
			return id, nil
		}
		if strings.HasPrefix(s.ID, id) {
			matches = append(matches, s.ID)
		}
	}
	switch len(matches) {
	case 0:
		return id, nil
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("diagram id %q is ambiguous (%d matches)", id, len(matches))
	}
}

// shortID abbreviates a diagram ID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatRelativeTime renders a timestamp relative to now for listings.
func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
