// Package export converts positioned diagram graphs into shareable
// artifacts.
//
// Every exporter consumes a [graph.Graph] that already carries positions
// and edge styles from the layout engine; exporters never move nodes, they
// only draw what they are given. Output is deterministic: the same graph
// produces byte-identical artifacts.
//
// # Formats
//
//   - SVG: self-contained vector rendering with kind-aware node shapes
//     ([RenderSVG])
//   - PNG: raster rendering through Graphviz ([RenderPNG])
//   - DOT: Graphviz source for downstream tooling ([ToDOT])
//   - draw.io: editable mxGraphModel XML ([ToDrawio])
//   - Mermaid: markdown-embeddable text blocks ([ToMermaid])
//   - JSON: the canonical graph snapshot for the canvas
//
// Use [Render] to dispatch on a [Format] value, or call the per-format
// functions directly when the format is fixed at the call site.
package export
