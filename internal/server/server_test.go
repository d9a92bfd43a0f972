package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scrawl/pkg/ai"
	"github.com/matzehuels/scrawl/pkg/cache"
	"github.com/matzehuels/scrawl/pkg/config"
	"github.com/matzehuels/scrawl/pkg/graph"
	"github.com/matzehuels/scrawl/pkg/pipeline"
	"github.com/matzehuels/scrawl/pkg/store"
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

// testServer spins up the API over a stub completions endpoint, a file
// cache, and a file store, all in temp dirs.
func testServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	upstream := httptest.NewServer(handler)
	t.Cleanup(upstream.Close)

	client := ai.NewClient(ai.Config{
		BaseURL: upstream.URL,
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
	}, nil)
	gen := ai.NewGenerator(client, log.New(io.Discard))

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}

	runner := pipeline.NewRunner(fc, nil, gen, log.New(io.Discard))
	srv := New(runner, st, config.ServerConfig{}, log.New(io.Discard))
	api := httptest.NewServer(srv.Router())
	t.Cleanup(api.Close)
	return api
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func chainGraph() graph.Graph {
	return graph.Graph{
		Type: graph.TypeFlowchart,
		Nodes: []graph.Node{
			{ID: "a", Label: "A"},
			{ID: "b", Label: "B"},
			{ID: "c", Label: "C"},
		},
		Edges: []graph.Edge{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "c"},
		},
	}
}

func TestHealthz(t *testing.T) {
	api := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("health check must not call the model")
	})

	resp, err := http.Get(api.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	decodeBody(t, resp, &body)
	if body["status"] != "ok" {
		t.Errorf(`status field = %q, want "ok"`, body["status"])
	}
}

func TestGenerateEndpoint(t *testing.T) {
	calls := 0
	api := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeGraphCompletion(w, sampleGraphJSON)
	})

	resp := postJSON(t, api.URL+"/api/v1/generate", generateRequest{
		Prompt:  "two step flow",
		Formats: []string{"svg", "json"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body generateResponse
	decodeBody(t, resp, &body)

	if calls != 1 {
		t.Errorf("model calls = %d, want 1", calls)
	}
	if len(body.Graph.Nodes) != 2 {
		t.Fatalf("graph has %d nodes, want 2", len(body.Graph.Nodes))
	}
	if body.GraphHash == "" {
		t.Error("response missing graph_hash")
	}
	if body.Usage.TotalTokens != 46 {
		t.Errorf("usage = %d tokens, want 46", body.Usage.TotalTokens)
	}
	if body.Stats.Nodes != 2 || body.Stats.Edges != 1 {
		t.Errorf("stats = %d nodes / %d edges, want 2/1", body.Stats.Nodes, body.Stats.Edges)
	}
	for _, format := range []string{"svg", "json"} {
		if len(body.Artifacts[format]) == 0 {
			t.Errorf("missing %s artifact", format)
		}
	}
	if body.Cache.Generate || body.Cache.Layout || body.Cache.Export {
		t.Errorf("first run reported cache hits: %+v", body.Cache)
	}
}

func TestGenerateEndpointCached(t *testing.T) {
	calls := 0
	api := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeGraphCompletion(w, sampleGraphJSON)
	})

	req := generateRequest{Prompt: "two step flow"}
	resp := postJSON(t, api.URL+"/api/v1/generate", req)
	resp.Body.Close()

	resp = postJSON(t, api.URL+"/api/v1/generate", req)
	var body generateResponse
	decodeBody(t, resp, &body)

	if calls != 1 {
		t.Errorf("model calls = %d, want 1", calls)
	}
	if !body.Cache.Generate || !body.Cache.Layout || !body.Cache.Export {
		t.Errorf("second run cache info = %+v, want all hits", body.Cache)
	}
	if body.Usage.TotalTokens != 0 {
		t.Errorf("cached run reported %d tokens", body.Usage.TotalTokens)
	}
}

func TestGenerateEndpointInvalidPrompt(t *testing.T) {
	api := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid request must not call the model")
	})

	resp := postJSON(t, api.URL+"/api/v1/generate", generateRequest{Prompt: ""})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var body errorResponse
	decodeBody(t, resp, &body)
	if body.Code != "INVALID_PROMPT" {
		t.Errorf("code = %q, want INVALID_PROMPT", body.Code)
	}
}

func TestGenerateEndpointMissingKey(t *testing.T) {
	client := ai.NewClient(ai.Config{BaseURL: "http://127.0.0.1:0", Model: "gpt-4o-mini"}, nil)
	gen := ai.NewGenerator(client, log.New(io.Discard))
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, gen, log.New(io.Discard))
	srv := New(runner, nil, config.ServerConfig{}, log.New(io.Discard))
	api := httptest.NewServer(srv.Router())
	defer api.Close()

	resp := postJSON(t, api.URL+"/api/v1/generate", generateRequest{Prompt: "two step flow"})
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", resp.StatusCode)
	}
	var body errorResponse
	decodeBody(t, resp, &body)
	if body.Code != "AI_KEY_MISSING" {
		t.Errorf("code = %q, want AI_KEY_MISSING", body.Code)
	}
}

func TestLayoutEndpoint(t *testing.T) {
	api := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("layout must not call the model")
	})

	resp := postJSON(t, api.URL+"/api/v1/layout", layoutRequest{Graph: chainGraph()})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body layoutResponse
	decodeBody(t, resp, &body)

	if body.Cached {
		t.Error("first layout reported a cache hit")
	}
	if body.Crossings != 0 {
		t.Errorf("crossings = %d, want 0", body.Crossings)
	}
	ys := make(map[float64]bool)
	for _, n := range body.Graph.Nodes {
		ys[n.Position.Y] = true
	}
	if len(ys) != 3 {
		t.Errorf("chain occupies %d layers, want 3", len(ys))
	}

	// Same graph again comes from cache.
	resp = postJSON(t, api.URL+"/api/v1/layout", layoutRequest{Graph: chainGraph()})
	decodeBody(t, resp, &body)
	if !body.Cached {
		t.Error("second layout missed the cache")
	}
}

func TestLayoutEndpointInvalidGraph(t *testing.T) {
	api := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid request must not call the model")
	})

	g := chainGraph()
	g.Type = "banana"
	resp := postJSON(t, api.URL+"/api/v1/layout", layoutRequest{Graph: g})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var body errorResponse
	decodeBody(t, resp, &body)
	if body.Code != "INVALID_GRAPH" {
		t.Errorf("code = %q, want INVALID_GRAPH", body.Code)
	}
}

func TestExportEndpointRawSingleFormat(t *testing.T) {
	api := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("export must not call the model")
	})

	resp := postJSON(t, api.URL+"/api/v1/export", exportRequest{Graph: chainGraph()})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", ct)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("<svg")) {
		t.Errorf("body does not start with <svg: %.40s", data)
	}
}

func TestExportEndpointMultipleFormats(t *testing.T) {
	api := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("export must not call the model")
	})

	resp := postJSON(t, api.URL+"/api/v1/export", exportRequest{
		Graph:   chainGraph(),
		Formats: []string{"dot", "mermaid"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body exportResponse
	decodeBody(t, resp, &body)

	if len(body.Artifacts) != 2 {
		t.Fatalf("artifacts = %d, want 2", len(body.Artifacts))
	}
	if !strings.Contains(string(body.Artifacts["dot"]), "digraph") {
		t.Error("dot artifact missing digraph header")
	}
	if !strings.Contains(string(body.Artifacts["mermaid"]), "flowchart") {
		t.Error("mermaid artifact missing flowchart header")
	}
}

func TestExportEndpointUnknownFormat(t *testing.T) {
	api := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid request must not call the model")
	})

	resp := postJSON(t, api.URL+"/api/v1/export", exportRequest{
		Graph:   chainGraph(),
		Formats: []string{"tiff"},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var body errorResponse
	decodeBody(t, resp, &body)
	if body.Code != "INVALID_FORMAT" {
		t.Errorf("code = %q, want INVALID_FORMAT", body.Code)
	}
}

func TestDiagramLifecycle(t *testing.T) {
	api := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("diagram CRUD must not call the model")
	})

	// Create
	resp := postJSON(t, api.URL+"/api/v1/diagrams", diagramCreateRequest{
		Title: "Checkout",
		Graph: chainGraph(),
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	var created store.Diagram
	decodeBody(t, resp, &created)
	if created.ID == "" {
		t.Fatal("created diagram has no id")
	}
	if created.Title != "Checkout" || created.Type != graph.TypeFlowchart {
		t.Errorf("created = %q/%q, want Checkout/flowchart", created.Title, created.Type)
	}

	// List
	resp, err := http.Get(api.URL + "/api/v1/diagrams")
	if err != nil {
		t.Fatalf("GET list: %v", err)
	}
	var list diagramListResponse
	decodeBody(t, resp, &list)
	if len(list.Diagrams) != 1 || list.Diagrams[0].ID != created.ID {
		t.Fatalf("list = %+v, want the created diagram", list.Diagrams)
	}

	// Get
	resp, err = http.Get(api.URL + "/api/v1/diagrams/" + created.ID)
	if err != nil {
		t.Fatalf("GET diagram: %v", err)
	}
	var fetched store.Diagram
	decodeBody(t, resp, &fetched)
	if len(fetched.Graph.Nodes) != 3 {
		t.Errorf("fetched graph has %d nodes, want 3", len(fetched.Graph.Nodes))
	}

	// Update title only
	newTitle := "Checkout v2"
	data, _ := json.Marshal(diagramUpdateRequest{Title: &newTitle})
	req, _ := http.NewRequest(http.MethodPut, api.URL+"/api/v1/diagrams/"+created.ID, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT diagram: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d, want 200", resp.StatusCode)
	}
	var updated store.Diagram
	decodeBody(t, resp, &updated)
	if updated.Title != newTitle {
		t.Errorf("title = %q, want %q", updated.Title, newTitle)
	}
	if len(updated.Graph.Nodes) != 3 {
		t.Error("title-only update lost the graph")
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Error("update did not advance UpdatedAt")
	}

	// Delete
	req, _ = http.NewRequest(http.MethodDelete, api.URL+"/api/v1/diagrams/"+created.ID, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE diagram: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}

	// Gone
	resp, err = http.Get(api.URL + "/api/v1/diagrams/" + created.ID)
	if err != nil {
		t.Fatalf("GET deleted diagram: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status after delete = %d, want 404", resp.StatusCode)
	}
	var body errorResponse
	decodeBody(t, resp, &body)
	if body.Code != "DIAGRAM_NOT_FOUND" {
		t.Errorf("code = %q, want DIAGRAM_NOT_FOUND", body.Code)
	}
}

func TestDiagramRoutesDisabledWithoutStore(t *testing.T) {
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil, log.New(io.Discard))
	srv := New(runner, nil, config.ServerConfig{}, log.New(io.Discard))
	api := httptest.NewServer(srv.Router())
	defer api.Close()

	resp, err := http.Get(api.URL + "/api/v1/diagrams")
	if err != nil {
		t.Fatalf("GET /api/v1/diagrams: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	RegisterMetrics()
	api := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeGraphCompletion(w, sampleGraphJSON)
	})

	// Drive one request through the pipeline so stage metrics move.
	resp := postJSON(t, api.URL+"/api/v1/generate", generateRequest{Prompt: "two step flow"})
	resp.Body.Close()

	resp, err := http.Get(api.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	for _, metric := range []string{
		"scrawl_generate_tokens_total",
		"scrawl_generate_total",
		"scrawl_http_requests_total",
	} {
		if !strings.Contains(string(data), metric) {
			t.Errorf("metrics output missing %s", metric)
		}
	}
}
