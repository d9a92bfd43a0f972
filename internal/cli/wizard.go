package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/scrawl/pkg/graph"
	"github.com/matzehuels/scrawl/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// wizardCommand creates the wizard command for interactive generation.
func (c *CLI) wizardCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		noCache    bool
		saveTitle  string
	)

	cmd := &cobra.Command{
		Use:   "wizard",
		Short: "Build a diagram interactively",
		Long: `Build a diagram interactively.

The wizard walks through diagram type, layout style and prompt, then
runs the same generate/layout/export pipeline as 'generate'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWizard(cmd.Context(), output, parseFormats(formatsStr), noCache, saveTitle)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot, drawio, mermaid, json (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&saveTitle, "save", "", "save the result as a diagram with this title")

	return cmd
}

// runWizard collects the selections interactively and hands off to the
// generate flow.
func (c *CLI) runWizard(ctx context.Context, output string, formats []string, noCache bool, saveTitle string) error {
	p := tea.NewProgram(NewWizardModel())
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	fm, ok := finalModel.(WizardModel)
	if !ok || !fm.Done {
		printDetail("Cancelled")
		return nil
	}

	printNewline()

	opts := pipeline.Options{
		Prompt:  fm.Prompt,
		Type:    fm.Type(),
		Style:   fm.Style(),
		Formats: formats,
	}
	return c.runGenerate(ctx, fm.Prompt, opts, output, noCache, saveTitle)
}

// =============================================================================
// WizardModel - Step-by-step diagram builder
// =============================================================================

// wizardStep identifies the active wizard screen.
type wizardStep int

const (
	stepType wizardStep = iota
	stepStyle
	stepPrompt
	stepConfirm
)

// wizardChoice pairs a selectable value with a short description.
type wizardChoice struct {
	Value string
	Desc  string
}

var typeDescriptions = map[string]string{
	graph.TypeFlowchart: "process flow with decisions",
	graph.TypeMindmap:   "ideas branching from a center",
	graph.TypeERD:       "entities and relationships",
	graph.TypeOrgChart:  "reporting hierarchy",
}

var styleDescriptions = map[string]string{
	graph.StyleTree:         "layered levels",
	graph.StyleRadial:       "branches radiate from the root (mind maps)",
	graph.StyleHierarchical: "strict layered levels",
	graph.StyleCircular:     "nodes on one circle (mind maps)",
	graph.StyleNetwork:      "general graph treatment",
}

// WizardModel is the bubbletea model for the interactive diagram builder.
type WizardModel struct {
	Step        wizardStep
	Types       []wizardChoice
	TypeCursor  int
	Styles      []wizardChoice
	StyleCursor int
	Prompt      string
	Done        bool
}

// NewWizardModel creates a wizard model starting at the type step.
func NewWizardModel() WizardModel {
	var types []wizardChoice
	for _, t := range graph.Types() {
		types = append(types, wizardChoice{Value: t, Desc: typeDescriptions[t]})
	}

	styles := []wizardChoice{{Value: "", Desc: "default for the diagram type"}}
	for _, s := range graph.Styles() {
		styles = append(styles, wizardChoice{Value: s, Desc: styleDescriptions[s]})
	}

	return WizardModel{Types: types, Styles: styles}
}

// Type returns the selected diagram type.
func (m WizardModel) Type() string { return m.Types[m.TypeCursor].Value }

// Style returns the selected layout style. Empty means the per-type
// default.
func (m WizardModel) Style() string { return m.Styles[m.StyleCursor].Value }

func (m WizardModel) Init() tea.Cmd {
	return nil
}

func (m WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	// The prompt step receives raw typing, so only the other steps treat
	// letters as navigation keys.
	if m.Step == stepPrompt {
		return m.updatePrompt(keyMsg)
	}
	return m.updateSelect(keyMsg)
}

// updateSelect handles navigation on the list and confirm steps.
func (m WizardModel) updateSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.Step == stepType {
			return m, tea.Quit
		}
		m.Step--
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "enter":
		if m.Step == stepConfirm {
			m.Done = true
			return m, tea.Quit
		}
		m.Step++
	}
	return m, nil
}

// updatePrompt handles free-text input on the prompt step.
func (m WizardModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.Step = stepStyle
	case tea.KeyEnter:
		if strings.TrimSpace(m.Prompt) != "" {
			m.Step = stepConfirm
		}
	case tea.KeyBackspace:
		if runes := []rune(m.Prompt); len(runes) > 0 {
			m.Prompt = string(runes[:len(runes)-1])
		}
	case tea.KeySpace:
		m.Prompt += " "
	case tea.KeyRunes:
		m.Prompt += string(msg.Runes)
	}
	return m, nil
}

func (m *WizardModel) moveCursor(delta int) {
	switch m.Step {
	case stepType:
		m.TypeCursor = clampCursor(m.TypeCursor+delta, len(m.Types))
	case stepStyle:
		m.StyleCursor = clampCursor(m.StyleCursor+delta, len(m.Styles))
	}
}

func clampCursor(v, n int) int {
	if v < 0 {
		return 0
	}
	if v > n-1 {
		return n - 1
	}
	return v
}

func (m WizardModel) View() string {
	var b strings.Builder

	switch m.Step {
	case stepType:
		b.WriteString(StyleTitle.Render("Diagram Type"))
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
		b.WriteString("\n\n")
		renderChoices(&b, m.Types, m.TypeCursor)

	case stepStyle:
		b.WriteString(StyleTitle.Render("Layout Style"))
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  esc back"))
		b.WriteString("\n\n")
		renderChoices(&b, m.Styles, m.StyleCursor)

	case stepPrompt:
		b.WriteString(StyleTitle.Render("Describe the Diagram"))
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render("⏎ continue  esc back"))
		b.WriteString("\n\n")
		b.WriteString("  " + StyleValue.Render(m.Prompt) + StyleHighlight.Render("▊"))
		b.WriteString("\n")

	case stepConfirm:
		b.WriteString(StyleTitle.Render("Ready"))
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render("⏎ generate  esc back  q quit"))
		b.WriteString("\n\n")
		styleName := m.Style()
		if styleName == "" {
			styleName = "auto"
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", listDimStyle.Render("type  "), StyleValue.Render(m.Type())))
		b.WriteString(fmt.Sprintf("  %s %s\n", listDimStyle.Render("style "), StyleValue.Render(styleName)))
		b.WriteString(fmt.Sprintf("  %s %s\n", listDimStyle.Render("prompt"), StyleValue.Render(m.Prompt)))
	}

	return b.String()
}

// renderChoices renders a selectable list with the cursor row highlighted.
func renderChoices(b *strings.Builder, choices []wizardChoice, cursor int) {
	for i, ch := range choices {
		prefix := "  "
		if i == cursor {
			prefix = "> "
		}

		label := ch.Value
		if label == "" {
			label = "auto"
		}

		line := fmt.Sprintf("%s%-14s %s", prefix, label, listDimStyle.Render(ch.Desc))
		if i == cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
}
