package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scrawl/pkg/ai"
	"github.com/matzehuels/scrawl/pkg/cache"
	"github.com/matzehuels/scrawl/pkg/errors"
	"github.com/matzehuels/scrawl/pkg/graph"
)

const sampleGraphJSON = `{"nodes":[{"id":"start","label":"Start","kind":"terminal"},{"id":"end","label":"End","kind":"terminal"}],"edges":[{"source":"start","target":"end","label":"done"}]}`

func writeGraphCompletion(w http.ResponseWriter, content string) {
	json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{
				"message":       map[string]string{"content": content},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]int{"prompt_tokens": 12, "completion_tokens": 34, "total_tokens": 46},
	})
}

// testRunner builds a runner backed by a stub completions endpoint and a
// file cache in a temp dir.
func testRunner(t *testing.T, handler http.HandlerFunc) *Runner {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := ai.NewClient(ai.Config{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
	}, nil)
	gen := ai.NewGenerator(client, log.New(io.Discard))

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	return NewRunner(fc, nil, gen, log.New(io.Discard))
}

func TestRunnerExecute(t *testing.T) {
	calls := 0
	runner := testRunner(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeGraphCompletion(w, sampleGraphJSON)
	})

	result, err := runner.Execute(context.Background(), Options{
		Prompt:  "two step flow",
		Formats: []string{"svg", "json"},
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if calls != 1 {
		t.Errorf("model calls = %d, want 1", calls)
	}
	if result.Stats.NodeCount != 2 || result.Stats.EdgeCount != 1 {
		t.Errorf("stats = %d nodes / %d edges, want 2/1", result.Stats.NodeCount, result.Stats.EdgeCount)
	}
	if result.Usage.TotalTokens != 46 {
		t.Errorf("usage = %d tokens, want 46", result.Usage.TotalTokens)
	}
	if result.GraphHash == "" {
		t.Error("result missing graph hash")
	}
	if len(result.Artifacts["svg"]) == 0 || len(result.Artifacts["json"]) == 0 {
		t.Error("missing artifacts")
	}
	if result.CacheInfo.GenerateHit || result.CacheInfo.LayoutHit || result.CacheInfo.ExportHit {
		t.Errorf("first run should miss every cache: %+v", result.CacheInfo)
	}

	// The chain lands on two layers.
	if result.Graph.Nodes[1].Position.Y == result.Graph.Nodes[0].Position.Y {
		t.Error("placed nodes should occupy different layers")
	}
}

func TestRunnerExecuteCached(t *testing.T) {
	calls := 0
	runner := testRunner(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeGraphCompletion(w, sampleGraphJSON)
	})

	opts := Options{Prompt: "two step flow", Formats: []string{"svg"}}
	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute() error: %v", err)
	}

	second, err := runner.Execute(context.Background(), Options{Prompt: "two step flow", Formats: []string{"svg"}})
	if err != nil {
		t.Fatalf("second Execute() error: %v", err)
	}

	if calls != 1 {
		t.Errorf("model calls = %d, want 1 (second run should hit cache)", calls)
	}
	if !second.CacheInfo.GenerateHit || !second.CacheInfo.LayoutHit || !second.CacheInfo.ExportHit {
		t.Errorf("second run should hit every cache: %+v", second.CacheInfo)
	}
	if second.Usage.TotalTokens != 0 {
		t.Errorf("cached generation should report zero usage, got %d", second.Usage.TotalTokens)
	}
	if string(first.Artifacts["svg"]) != string(second.Artifacts["svg"]) {
		t.Error("cached artifact differs from the original")
	}
}

func TestRunnerExecuteRefresh(t *testing.T) {
	calls := 0
	runner := testRunner(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeGraphCompletion(w, sampleGraphJSON)
	})

	if _, err := runner.Execute(context.Background(), Options{Prompt: "two step flow"}); err != nil {
		t.Fatalf("first Execute() error: %v", err)
	}
	if _, err := runner.Execute(context.Background(), Options{Prompt: "two step flow", Refresh: true}); err != nil {
		t.Fatalf("refresh Execute() error: %v", err)
	}

	if calls != 2 {
		t.Errorf("model calls = %d, want 2 (refresh bypasses the cache)", calls)
	}
}

func TestRunnerExecuteInvalidOptions(t *testing.T) {
	runner := testRunner(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("model should not be called for invalid options")
	})

	if _, err := runner.Execute(context.Background(), Options{}); err == nil {
		t.Error("empty prompt should fail")
	}
	if _, err := runner.Execute(context.Background(), Options{Prompt: "flow", Type: "banana"}); err == nil {
		t.Error("unknown type should fail")
	}
	if _, err := runner.Execute(context.Background(), Options{Prompt: "flow", Formats: []string{"tiff"}}); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestRunnerLayoutWithoutGenerator(t *testing.T) {
	runner := NewRunner(nil, nil, nil, log.New(io.Discard))

	g := graph.Graph{
		Type:  graph.TypeFlowchart,
		Nodes: []graph.Node{{ID: "a"}, {ID: "b"}},
		Edges: []graph.Edge{{ID: "e1", Source: "a", Target: "b"}},
	}

	placed, err := runner.Layout(context.Background(), g, Options{})
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if len(placed.Nodes) != 2 {
		t.Fatalf("placed %d nodes, want 2", len(placed.Nodes))
	}
	if placed.Nodes[0].Position.Y == placed.Nodes[1].Position.Y {
		t.Error("chain should land on two layers")
	}

	artifacts, err := runner.Export(context.Background(), placed, Options{Formats: []string{"svg", "mermaid"}})
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if len(artifacts["svg"]) == 0 || len(artifacts["mermaid"]) == 0 {
		t.Error("missing artifacts")
	}
}

func TestRunnerGenerateWithoutGenerator(t *testing.T) {
	runner := NewRunner(nil, nil, nil, log.New(io.Discard))

	_, _, err := runner.Generate(context.Background(), Options{Prompt: "flow"})
	if !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeInternal)
	}
}

func TestRunnerClose(t *testing.T) {
	runner := NewRunner(nil, nil, nil, log.New(io.Discard))
	if err := runner.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}
