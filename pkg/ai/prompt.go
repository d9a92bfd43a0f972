package ai

import (
	"fmt"
	"strings"

	"github.com/matzehuels/scrawl/pkg/graph"
)

// schemaInstruction pins the output contract for every diagram type.
// Positions are deliberately absent: geometry belongs to the layout
// engine, the model only decides structure.
const schemaInstruction = `Respond with a single JSON object and nothing else. Schema:
{
  "nodes": [{"id": "short-slug", "label": "Display Name", "kind": "", "details": ""}],
  "edges": [{"source": "node-id", "target": "node-id", "label": ""}]
}
Rules:
- "id" must be a short lowercase slug (letters, digits, hyphens), unique per node.
- Every edge "source" and "target" must reference a node id from "nodes".
- Omit or leave empty any field you have no value for.
- Do not include positions, coordinates, styling, or any keys outside the schema.`

// typeGuidance steers structure per diagram type.
var typeGuidance = map[string]string{
	graph.TypeFlowchart: `Model the process as a flowchart:
- Use kind "terminal" for start and end nodes, "decision" for branch points, "process" for steps.
- Decision nodes get one outgoing edge per outcome, labeled with the outcome (e.g. "yes", "no").
- Keep the flow a mostly linear top-to-bottom sequence with branches merging back where natural.`,
	graph.TypeMindmap: `Model the topic as a mind map:
- Exactly one central node: the topic itself. Every other node connects directly or transitively to it.
- Edges point from parent to child (center outward). No edge labels.
- Two or three levels deep; group related ideas under shared branches.`,
	graph.TypeERD: `Model the domain as an entity-relationship diagram:
- Each node is an entity with kind "entity"; list its key attributes in "details", one per line.
- Each edge is a relationship labeled with its cardinality (e.g. "1:N", "N:M").`,
	graph.TypeOrgChart: `Model the organization as an org chart:
- Exactly one root node (the top role). Edges point from manager to report.
- "label" is the role title; put the person's name in "details" if given.`,
}

// SystemPrompt returns the system message for generating a diagram of the
// given type. Unknown types fall back to the flowchart guidance.
func SystemPrompt(typ string) string {
	guidance, ok := typeGuidance[typ]
	if !ok {
		guidance = typeGuidance[graph.TypeFlowchart]
	}
	return fmt.Sprintf("You convert a short description into a diagram graph.\n\n%s\n\n%s", guidance, schemaInstruction)
}

// GeneratePrompt builds the messages for creating a new diagram from a
// prompt.
func GeneratePrompt(typ, prompt string) []Message {
	return []Message{
		{Role: RoleSystem, Content: SystemPrompt(typ)},
		{Role: RoleUser, Content: strings.TrimSpace(prompt)},
	}
}

// ExpandPrompt builds the messages for adding to an existing diagram. The
// current graph is passed back so the model extends instead of restarts;
// it must keep existing node ids unchanged.
func ExpandPrompt(typ string, current []byte, instruction string) []Message {
	user := fmt.Sprintf(`Current diagram:
%s

Extend it as follows: %s

Return the COMPLETE updated diagram (existing nodes and edges plus the additions). Keep every existing node id exactly as it is.`, current, strings.TrimSpace(instruction))
	return []Message{
		{Role: RoleSystem, Content: SystemPrompt(typ)},
		{Role: RoleUser, Content: user},
	}
}

// RewritePrompt builds the messages for restructuring an existing diagram
// under an instruction. Ids should survive where the node survives, so
// downstream references (stores, exports) stay stable.
func RewritePrompt(typ string, current []byte, instruction string) []Message {
	user := fmt.Sprintf(`Current diagram:
%s

Rewrite it as follows: %s

Return the COMPLETE new diagram. Reuse the existing id for any node that keeps its meaning; only new nodes get new ids.`, current, strings.TrimSpace(instruction))
	return []Message{
		{Role: RoleSystem, Content: SystemPrompt(typ)},
		{Role: RoleUser, Content: user},
	}
}
