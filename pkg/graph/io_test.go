package graph

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMarshalRoundTrip(t *testing.T) {
	g := Graph{
		Type: TypeFlowchart,
		Nodes: []Node{
			{ID: "start", Label: "Start", Kind: KindTerminal, Position: Position{X: 0, Y: 0}},
			{ID: "check", Label: "Valid?", Kind: KindDecision, Position: Position{X: 0, Y: 120}},
		},
		Edges: []Edge{
			{ID: "e1", Source: "start", Target: "check", Style: &EdgeStyle{Stroke: "#94a3b8", Width: 2}, Animated: true},
		},
	}

	data, err := Marshal(g)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	back, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if back.Type != g.Type {
		t.Errorf("type = %q, want %q", back.Type, g.Type)
	}
	if len(back.Nodes) != 2 || len(back.Edges) != 1 {
		t.Fatalf("got %d nodes, %d edges", len(back.Nodes), len(back.Edges))
	}
	if back.Nodes[1].Kind != KindDecision {
		t.Errorf("kind = %q, want %q", back.Nodes[1].Kind, KindDecision)
	}
	if back.Edges[0].Style == nil || back.Edges[0].Style.Stroke != "#94a3b8" {
		t.Errorf("edge style = %+v", back.Edges[0].Style)
	}
	if !back.Edges[0].Animated {
		t.Error("animated flag lost")
	}
}

func TestMarshalDeterministic(t *testing.T) {
	g := Graph{
		Nodes: []Node{{ID: "b"}, {ID: "a"}, {ID: "c"}},
		Edges: []Edge{{ID: "e1", Source: "b", Target: "a"}},
	}

	first, err := Marshal(g)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Marshal(g)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(first, second) {
		t.Error("repeated Marshal produced different bytes")
	}
}

func TestRead(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantNodes int
		wantEdges int
		wantErr   bool
	}{
		{
			name: "Valid",
			input: `{
				"type": "mindmap",
				"nodes": [
					{"id": "root", "label": "Topic"},
					{"id": "idea"}
				],
				"edges": [
					{"id": "e1", "source": "root", "target": "idea"}
				]
			}`,
			wantNodes: 2,
			wantEdges: 1,
		},
		{
			name:      "Empty",
			input:     `{"nodes": [], "edges": []}`,
			wantNodes: 0,
			wantEdges: 0,
		},
		{
			name:    "InvalidJSON",
			input:   `{invalid json}`,
			wantErr: true,
		},
		{
			name:    "MissingNodeID",
			input:   `{"nodes": [{"label": "anon"}], "edges": []}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Read(strings.NewReader(tt.input))

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if got := len(g.Nodes); got != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", got, tt.wantNodes)
			}
			if got := len(g.Edges); got != tt.wantEdges {
				t.Errorf("edges = %d, want %d", got, tt.wantEdges)
			}
		})
	}
}

func TestReadWriteFile(t *testing.T) {
	g := Graph{
		Type:  TypeERD,
		Nodes: []Node{{ID: "users", Kind: KindEntity}},
		Edges: []Edge{},
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "diagram.json")

	if err := WriteFile(g, path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	back, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(back.Nodes) != 1 || back.Nodes[0].ID != "users" {
		t.Errorf("round trip lost nodes: %+v", back.Nodes)
	}
}

func TestReadFileNotFound(t *testing.T) {
	if _, err := ReadFile(filepath.Join(os.TempDir(), "does-not-exist-scrawl.json")); err == nil {
		t.Error("expected error for nonexistent file")
	}
}
