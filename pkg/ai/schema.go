package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matzehuels/scrawl/pkg/errors"
	"github.com/matzehuels/scrawl/pkg/graph"
)

// wireGraph is the JSON shape the model is instructed to return.
type wireGraph struct {
	Nodes []wireNode `json:"nodes"`
	Edges []wireEdge `json:"edges"`
}

type wireNode struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Kind    string `json:"kind"`
	Details string `json:"details"`
}

type wireEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
}

// ParseGraph converts a model response into a graph of the given type.
// Nodes carry placeholder (0,0) positions; the layout engine assigns real
// coordinates later. The parser tolerates markdown fences and surrounding
// prose but the payload itself must be valid JSON matching the schema.
// Malformed output returns an AI_RESPONSE error.
func ParseGraph(typ, content string) (*graph.Graph, error) {
	payload := extractJSON(content)
	if payload == "" {
		return nil, errors.New(errors.ErrCodeAIResponse, "response contains no JSON object")
	}

	var wire wireGraph
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		return nil, errors.Wrap(errors.ErrCodeAIResponse, err, "response is not valid JSON")
	}
	if len(wire.Nodes) == 0 {
		return nil, errors.New(errors.ErrCodeAIResponse, "response contains no nodes")
	}

	g := &graph.Graph{Type: typ}
	seen := make(map[string]bool, len(wire.Nodes))
	for i, n := range wire.Nodes {
		id := n.ID
		if id == "" {
			id = Slug(n.Label)
		}
		if id == "" {
			id = fmt.Sprintf("n%d", i+1)
		}
		id = uniquify(id, seen)
		seen[id] = true

		label := n.Label
		if label == "" {
			label = id
		}
		g.Nodes = append(g.Nodes, graph.Node{
			ID:      id,
			Label:   label,
			Kind:    strings.ToLower(strings.TrimSpace(n.Kind)),
			Details: n.Details,
		})
	}

	for i, e := range wire.Edges {
		if e.Source == "" || e.Target == "" {
			continue
		}
		g.Edges = append(g.Edges, graph.Edge{
			ID:     fmt.Sprintf("e%d", i+1),
			Source: e.Source,
			Target: e.Target,
			Label:  e.Label,
		})
	}

	if err := g.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeAIResponse, err, "response graph invalid")
	}
	return g, nil
}

// extractJSON strips markdown fences and surrounding prose, returning the
// outermost JSON object in content, or "" when none exists.
func extractJSON(content string) string {
	s := strings.TrimSpace(content)

	// Fenced block: take the fence body before locating the object.
	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := s[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			s = rest[:end]
		} else {
			s = rest
		}
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// Slug converts a label into a node id: lowercase, hyphen-separated,
// restricted to letters, digits, and hyphens.
func Slug(label string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// uniquify appends a numeric suffix when id is already taken, so duplicate
// ids from the model do not silently merge nodes.
func uniquify(id string, seen map[string]bool) string {
	if !seen[id] {
		return id
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", id, i)
		if !seen[candidate] {
			return candidate
		}
	}
}
