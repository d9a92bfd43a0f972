package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/scrawl/pkg/errors"
	"github.com/matzehuels/scrawl/pkg/graph"
)

func testGraph() graph.Graph {
	return graph.Graph{
		Type: graph.TypeFlowchart,
		Nodes: []graph.Node{
			{ID: "start", Label: "Start", Kind: graph.KindTerminal},
			{ID: "end", Label: "End", Kind: graph.KindTerminal},
		},
		Edges: []graph.Edge{
			{ID: "e1", Source: "start", Target: "end", Label: "done"},
		},
	}
}

func testStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	return s
}

func TestNewDiagram(t *testing.T) {
	d := New("Tea flow", testGraph())

	if _, err := uuid.Parse(d.ID); err != nil {
		t.Errorf("ID %q is not a UUID: %v", d.ID, err)
	}
	if d.Title != "Tea flow" {
		t.Errorf("Title = %q, want Tea flow", d.Title)
	}
	if d.Type != graph.TypeFlowchart {
		t.Errorf("Type = %q, want flowchart", d.Type)
	}
	if !d.CreatedAt.Equal(d.UpdatedAt) {
		t.Error("fresh diagram should have matching timestamps")
	}
}

func TestDiagramTouch(t *testing.T) {
	d := New("Tea flow", testGraph())
	past := time.Now().UTC().Add(-time.Hour)
	d.UpdatedAt = past

	d.Touch()
	if !d.UpdatedAt.After(past) {
		t.Error("Touch should advance the update timestamp")
	}
}

func TestFileStoreSaveGet(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	d := New("Tea flow", testGraph())
	d.Prompt = "how to make tea"
	if err := s.Save(ctx, d); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := s.Get(ctx, d.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.ID != d.ID || got.Title != d.Title || got.Type != d.Type || got.Prompt != d.Prompt {
		t.Errorf("loaded diagram = %+v, want %+v", got, d)
	}
	if len(got.Graph.Nodes) != 2 || len(got.Graph.Edges) != 1 {
		t.Errorf("graph has %d nodes / %d edges, want 2/1", len(got.Graph.Nodes), len(got.Graph.Edges))
	}
	if got.Graph.Edges[0].Label != "done" {
		t.Errorf("edge label = %q, want done", got.Graph.Edges[0].Label)
	}
	if !got.CreatedAt.Equal(d.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, d.CreatedAt)
	}
}

func TestFileStoreSaveReplaces(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	d := New("Tea flow", testGraph())
	if err := s.Save(ctx, d); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	d.Title = "Coffee flow"
	d.Touch()
	if err := s.Save(ctx, d); err != nil {
		t.Fatalf("second Save() error: %v", err)
	}

	got, err := s.Get(ctx, d.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Title != "Coffee flow" {
		t.Errorf("Title = %q, want Coffee flow", got.Title)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("list has %d entries, want 1", len(list))
	}
}

func TestFileStoreGetMissing(t *testing.T) {
	s := testStore(t)

	_, err := s.Get(context.Background(), uuid.NewString())
	if !errors.Is(err, errors.ErrCodeDiagramNotFound) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeDiagramNotFound)
	}
}

func TestFileStoreList(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	titles := []string{"oldest", "middle", "newest"}
	for i, title := range titles {
		d := New(title, testGraph())
		d.UpdatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := s.Save(ctx, d); err != nil {
			t.Fatalf("Save(%s) error: %v", title, err)
		}
	}

	// Stray files must not break listing.
	if err := os.WriteFile(filepath.Join(s.Path(), "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.Path(), "corrupt.json"), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("list has %d entries, want 3", len(list))
	}
	want := []string{"newest", "middle", "oldest"}
	for i, w := range want {
		if list[i].Title != w {
			t.Errorf("list[%d].Title = %q, want %q", i, list[i].Title, w)
		}
	}
	if list[0].Type != graph.TypeFlowchart {
		t.Errorf("summary Type = %q, want flowchart", list[0].Type)
	}
}

func TestFileStoreDelete(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	d := New("Tea flow", testGraph())
	if err := s.Save(ctx, d); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	if err := s.Delete(ctx, d.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := s.Get(ctx, d.ID); !errors.Is(err, errors.ErrCodeDiagramNotFound) {
		t.Errorf("Get after delete = %v, want %s", err, errors.ErrCodeDiagramNotFound)
	}
	if err := s.Delete(ctx, d.ID); !errors.Is(err, errors.ErrCodeDiagramNotFound) {
		t.Errorf("second Delete = %v, want %s", err, errors.ErrCodeDiagramNotFound)
	}
}

func TestFileStoreInvalidID(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, id := range []string{"", ".", "..", "../escape", "a/b"} {
		if _, err := s.Get(ctx, id); !errors.Is(err, errors.ErrCodeInvalidDiagram) {
			t.Errorf("Get(%q) = %v, want %s", id, err, errors.ErrCodeInvalidDiagram)
		}
	}

	d := New("Tea flow", testGraph())
	d.ID = "../escape"
	if err := s.Save(ctx, d); !errors.Is(err, errors.ErrCodeInvalidDiagram) {
		t.Errorf("Save with bad id = %v, want %s", err, errors.ErrCodeInvalidDiagram)
	}
}

func TestFileStoreRejectsInvalidGraph(t *testing.T) {
	s := testStore(t)

	d := New("Broken", graph.Graph{
		Type:  "banana",
		Nodes: []graph.Node{{ID: "a"}},
	})
	if err := s.Save(context.Background(), d); !errors.Is(err, errors.ErrCodeInvalidDiagram) {
		t.Errorf("Save with invalid graph = %v, want %s", err, errors.ErrCodeInvalidDiagram)
	}
}
