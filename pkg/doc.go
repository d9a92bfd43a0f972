// Package pkg provides the core libraries for Scrawl diagram generation.
//
// # Overview
//
// Scrawl turns natural-language prompts into laid-out diagrams. A model
// proposes the nodes and edges, a deterministic layout engine assigns
// coordinates, and exporters render the result. The pkg directory is
// organized into four main areas:
//
//  1. [graph] - The diagram model (nodes, edges, adjacency index, JSON snapshots)
//  2. [layout] - Deterministic coordinate assignment (ranks, ordering, strategies)
//  3. [export] - Output formats (SVG, PNG, DOT, draw.io, Mermaid, JSON)
//  4. [pipeline] - Orchestration (generate, layout, export) with caching
//
// # Architecture
//
// The typical data flow through Scrawl:
//
//	Natural-language prompt
//	         ↓
//	    [ai] package (model call, schema validation)
//	         ↓
//	    [graph] package (diagram structure + adjacency index)
//	         ↓
//	    [layout] package (ranks → ordering → coordinates)
//	         ↓
//	    [export] package (SVG/PNG/DOT/draw.io/Mermaid output)
//
// # Quick Start
//
// Lay out a graph and render it to SVG:
//
//	import (
//	    "github.com/matzehuels/scrawl/pkg/export"
//	    "github.com/matzehuels/scrawl/pkg/graph"
//	    "github.com/matzehuels/scrawl/pkg/layout"
//	)
//
//	// 1. Load a graph snapshot
//	g, _ := graph.ReadFile("graph.json")
//
//	// 2. Compute coordinates
//	g.Nodes, g.Edges = layout.Compute(g.Nodes, g.Edges, layout.Options{Type: g.Type})
//
//	// 3. Render to SVG
//	svg, _ := export.Render(g, export.FormatSVG, export.Options{})
//
// # Main Packages
//
// ## Domain Logic
//
// [graph] - The diagram model shared by every stage. Defines nodes with
// kinds and positions, directed edges, diagram types (flowchart, mindmap,
// erd, orgchart), layout styles, validation, the adjacency [graph.Index],
// and JSON snapshot serialization.
//
// [layout] - Deterministic layout engine. Longest-path rank assignment,
// barycenter crossing reduction with a stable tie-break, and three
// coordinate strategies: layered (flowcharts, org charts), radial and
// circular (mind maps), and grid (entity-relationship diagrams). The same
// graph always produces the same coordinates.
//
// [export] - Renderers for every supported format. The built-in SVG
// renderer needs no external tooling; PNG and an alternative SVG path go
// through Graphviz via goccy/go-graphviz. DOT, draw.io XML, and Mermaid
// are text translations of the graph.
//
// [ai] - Client for OpenAI-compatible chat-completion APIs. Builds the
// system prompt, enforces a JSON schema on the response, validates and
// repairs the returned graph, and reports token usage. Responses are
// cached so identical prompts do not burn tokens twice.
//
// ## Infrastructure
//
// [pipeline] - The complete prompt → graph → layout → artifacts pipeline
// used by the CLI, the wizard, and the HTTP API. Each stage is cached by a
// hash of its inputs, so editing a graph by hand and re-exporting reuses
// the layout without a model call.
//
// [store] - Persistence for saved diagrams. FileStore keeps one JSON
// document per diagram under the user data directory; MongoStore backs
// multi-instance API deployments.
//
// [cache] - Content-addressed result cache with file, Redis, and null
// backends. Keys are SHA-256 hashes of canonical input encodings.
//
// [config] - TOML configuration with XDG-style default paths and a
// fsnotify-based [config.Loader] for live reload under 'scrawl serve
// --watch'.
//
// [errors] - Structured error codes shared by the CLI and the API so
// clients can react to failures programmatically.
//
// [httputil] - HTTP response caching and retry with exponential backoff
// for the model API client.
//
// [observability] - Hook interfaces for metrics and tracing. The HTTP
// server registers Prometheus collectors here; library code stays free of
// backend dependencies.
//
// [buildinfo] - Version metadata injected at build time via ldflags.
//
// # Common Workflows
//
// Generate a diagram from a prompt:
//
//	client := ai.NewClient(ai.Config{APIKey: key, Model: "gpt-4o-mini"}, nil)
//	dir, _ := cache.DefaultDir()
//	results, _ := cache.NewFileCache(dir)
//	runner := pipeline.NewRunner(results, nil, ai.NewGenerator(client, logger), logger)
//	defer runner.Close()
//	result, _ := runner.Execute(ctx, pipeline.Options{
//	    Prompt:  "user signup flow with email verification",
//	    Type:    graph.TypeFlowchart,
//	    Formats: []string{"svg", "png"},
//	})
//
// Save and reload a diagram:
//
//	st, _ := store.NewFileStore("")
//	d := store.New("Signup flow", result.Graph)
//	_ = st.Save(ctx, d)
//
// Inspect layout quality:
//
//	ix := graph.NewIndex(g.Nodes, g.Edges)
//	ranks := layout.Ranks(ix, g.Edges)
//	layers := layout.Layers(ix, ranks)
//	layout.OrderLayers(ix, layers)
//	crossings := layout.CountCrossings(ix, layers)
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/layout/...             # Specific package
//	go test -run Example                 # Examples only
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/scrawl/pkg/graph
// [layout]: https://pkg.go.dev/github.com/matzehuels/scrawl/pkg/layout
// [export]: https://pkg.go.dev/github.com/matzehuels/scrawl/pkg/export
// [ai]: https://pkg.go.dev/github.com/matzehuels/scrawl/pkg/ai
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/scrawl/pkg/pipeline
// [store]: https://pkg.go.dev/github.com/matzehuels/scrawl/pkg/store
// [cache]: https://pkg.go.dev/github.com/matzehuels/scrawl/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/scrawl/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/scrawl/pkg/errors
// [httputil]: https://pkg.go.dev/github.com/matzehuels/scrawl/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/scrawl/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/scrawl/pkg/buildinfo
package pkg
