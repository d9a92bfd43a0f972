package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/matzehuels/scrawl/pkg/graph"
)

func TestParseFormats(t *testing.T) {
	if got := parseFormats(""); got != nil {
		t.Errorf("parseFormats(%q) = %v, want nil", "", got)
	}
	if got, want := parseFormats("svg"), []string{"svg"}; !reflect.DeepEqual(got, want) {
		t.Errorf("parseFormats(%q) = %v, want %v", "svg", got, want)
	}
	if got, want := parseFormats("svg,png,dot"), []string{"svg", "png", "dot"}; !reflect.DeepEqual(got, want) {
		t.Errorf("parseFormats(%q) = %v, want %v", "svg,png,dot", got, want)
	}
}

func TestWriteArtifacts(t *testing.T) {
	base := filepath.Join(t.TempDir(), "out")
	artifacts := map[string][]byte{
		"svg":     []byte("<svg/>"),
		"mermaid": []byte("flowchart TD"),
	}

	paths, err := writeArtifacts(artifacts, base)
	if err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}

	// Paths come back sorted by artifact name: mermaid before svg.
	want := []string{base + ".mmd", base + ".svg"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}

	svg, err := os.ReadFile(base + ".svg")
	if err != nil {
		t.Fatalf("read svg: %v", err)
	}
	if string(svg) != "<svg/>" {
		t.Errorf("svg content = %q, want %q", svg, "<svg/>")
	}

	mmd, err := os.ReadFile(base + ".mmd")
	if err != nil {
		t.Fatalf("read mermaid: %v", err)
	}
	if string(mmd) != "flowchart TD" {
		t.Errorf("mermaid content = %q, want %q", mmd, "flowchart TD")
	}
}

func TestWriteArtifactsStripsFormatExtension(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "diagram.svg")
	artifacts := map[string][]byte{
		"png": []byte("png-bytes"),
		"svg": []byte("<svg/>"),
	}

	paths, err := writeArtifacts(artifacts, base)
	if err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}

	want := []string{filepath.Join(dir, "diagram.png"), filepath.Join(dir, "diagram.svg")}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}
	if _, err := os.Stat(filepath.Join(dir, "diagram.svg.svg")); !os.IsNotExist(err) {
		t.Error("extension should be stripped before appending, found diagram.svg.svg")
	}
}

func TestWriteArtifactsKeepsUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "release.v2")

	paths, err := writeArtifacts(map[string][]byte{"svg": []byte("<svg/>")}, base)
	if err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}

	want := []string{filepath.Join(dir, "release.v2.svg")}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}
}

func TestWriteArtifactsDefaultBase(t *testing.T) {
	t.Chdir(t.TempDir())

	paths, err := writeArtifacts(map[string][]byte{"json": []byte("{}")}, "")
	if err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}

	want := []string{"diagram.json"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}
}

func TestWriteArtifactsUnknownFormat(t *testing.T) {
	base := filepath.Join(t.TempDir(), "out")

	if _, err := writeArtifacts(map[string][]byte{"tiff": nil}, base); err == nil {
		t.Error("writeArtifacts() with unknown artifact format should fail")
	}
}

func TestUnplaced(t *testing.T) {
	placed := graph.Graph{Nodes: []graph.Node{
		{ID: "a"},
		{ID: "b", Position: graph.Position{X: 220}},
	}}
	if unplaced(placed) {
		t.Error("graph with a positioned node should not count as unplaced")
	}

	raw := graph.Graph{Nodes: []graph.Node{{ID: "a"}, {ID: "b"}}}
	if !unplaced(raw) {
		t.Error("multi-node graph with all nodes at the origin should count as unplaced")
	}

	// A single node at the origin is a legitimate layout.
	if unplaced(graph.Graph{Nodes: []graph.Node{{ID: "solo"}}}) {
		t.Error("single-node graph should not count as unplaced")
	}
}
