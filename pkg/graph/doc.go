// Package graph defines the diagram snapshot model and its wire format.
//
// This package is the canonical representation of Scrawl's diagram data,
// used for JSON files, API requests and responses, caching, storage, and as
// the layout engine's input and output.
//
// # Core Types
//
//   - [Graph]: a full diagram snapshot (type + nodes + edges)
//   - [Node], [Edge]: structural types with positions and edge styles
//   - [Index]: adjacency/root views built per layout call
//
// # Constants
//
// This package is the single source of truth for diagram vocabulary:
//
//	graph.TypeFlowchart       // "flowchart"
//	graph.TypeMindmap         // "mindmap"
//	graph.TypeERD             // "erd"
//	graph.TypeOrgChart        // "orgchart"
//	graph.StyleTree           // "tree"       (and radial, hierarchical,
//	graph.StyleRadial         //               circular, network)
//
// # Serialization
//
// Snapshots use a plain node-link JSON format:
//
//	{
//	  "type": "flowchart",
//	  "nodes": [{"id": "start", "label": "Start", "position": {"x": 0, "y": 0}}],
//	  "edges": [{"id": "e1", "source": "start", "target": "done"}]
//	}
//
// Common operations:
//
//	g, _ := graph.ReadFile("diagram.json")   // File → Graph
//	graph.WriteFile(g, "out.json")           // Graph → File
//	data, _ := graph.Marshal(g)              // Graph → []byte
//	parsed, _ := graph.Unmarshal(data)       // []byte → Graph
//
// # Tolerance Rules
//
// The model is deliberately permissive where the layout engine is total:
// duplicate node ids resolve first-occurrence-wins in the [Index], edges may
// reference ids that do not exist (they are skipped geometrically but never
// dropped from output), and duplicate edges are kept as-is.
//
// # Concurrency
//
// All types are plain values; functions are safe for concurrent reads but
// not concurrent writes. Use [Graph.Clone] before handing a snapshot to
// code that fills positions or styles.
package graph
