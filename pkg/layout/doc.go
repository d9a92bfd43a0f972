// Package layout is the deterministic layout engine for diagram snapshots.
//
// # Overview
//
// Given an arbitrary, possibly cyclic, possibly disconnected directed graph
// of nodes and edges, [Compute] assigns every node a finite 2D position and
// every edge a visual style. The coordinate strategy follows the diagram
// semantics (flowchart, mind map, entity diagram, org chart) refined by the
// user's layout style hint (tree, radial, hierarchical, circular, network):
//
//   - Flowchart / org chart: layered top-to-bottom placement built from
//     bounded-relaxation ranks and a barycenter crossing-reduction sweep
//   - Mind map: the same layered placement left-to-right, or a balanced
//     horizontal tree (radial style), or concentric angular sectors
//     (circular style)
//   - Entity diagram: square-ish grid packing, connectivity ignored
//
// Mind maps and org charts then get branch colors: each of the root's
// direct children anchors a palette color inherited by its whole subtree.
// Flowcharts and entity diagrams keep one neutral edge style instead.
//
// # Totality
//
// The engine has no failure taxonomy. Every input produces a complete
// output: cycles terminate through bounded passes and visited guards,
// rootless graphs get a fallback root, nodes unreachable from the root are
// stacked as an island column beside the drawing, edges referencing missing
// nodes are skipped geometrically but still returned styled, and degenerate
// spacing configuration is replaced by defaults before use.
//
// # Determinism and Purity
//
// Identical inputs yield byte-identical results. All ordering derives from
// input order; map iteration never leaks into output. Compute never mutates
// its arguments and returns fresh slices, so callers can hold the previous
// snapshot while rendering the next one. Calls share no state and are safe
// to run concurrently for different graphs.
//
// # Quality Metrics
//
// [CountCrossings] and [CountLayerCrossings] count edge crossings of an
// ordered layering with a Fenwick tree in O(E log V). The barycenter sweep
// is a single forward pass that reduces crossings without minimizing them;
// the counters exist for diagnostics and tests, not for a guarantee.
//
// # Configuration
//
// [Config] carries the spacing constants and the branch palette. Zero
// values mean "use the default", so Options{Type: graph.TypeFlowchart} is
// already a valid call.
package layout
