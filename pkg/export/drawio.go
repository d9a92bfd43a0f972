package export

import (
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/scrawl/pkg/graph"
)

// mxGraphModel is the draw.io document root. Only the attributes draw.io
// needs to open the file are carried.
type mxGraphModel struct {
	XMLName    xml.Name `xml:"mxGraphModel"`
	Dx         int      `xml:"dx,attr"`
	Dy         int      `xml:"dy,attr"`
	Grid       int      `xml:"grid,attr"`
	GridSize   int      `xml:"gridSize,attr"`
	Guides     int      `xml:"guides,attr"`
	Tooltips   int      `xml:"tooltips,attr"`
	Connect    int      `xml:"connect,attr"`
	Arrows     int      `xml:"arrows,attr"`
	Fold       int      `xml:"fold,attr"`
	Page       int      `xml:"page,attr"`
	PageScale  float64  `xml:"pageScale,attr"`
	PageWidth  int      `xml:"pageWidth,attr"`
	PageHeight int      `xml:"pageHeight,attr"`
	Background string   `xml:"background,attr,omitempty"`
	Root       mxRoot   `xml:"root"`
}

type mxRoot struct {
	Cells []mxCell `xml:"mxCell"`
}

type mxCell struct {
	ID       string      `xml:"id,attr"`
	Parent   string      `xml:"parent,attr,omitempty"`
	Value    string      `xml:"value,attr,omitempty"`
	Style    string      `xml:"style,attr,omitempty"`
	Vertex   string      `xml:"vertex,attr,omitempty"`
	Edge     string      `xml:"edge,attr,omitempty"`
	Source   string      `xml:"source,attr,omitempty"`
	Target   string      `xml:"target,attr,omitempty"`
	Geometry *mxGeometry `xml:"mxGeometry,omitempty"`
}

type mxGeometry struct {
	Relative string  `xml:"relative,attr,omitempty"`
	As       string  `xml:"as,attr,omitempty"`
	X        float64 `xml:"x,attr,omitempty"`
	Y        float64 `xml:"y,attr,omitempty"`
	Width    float64 `xml:"width,attr,omitempty"`
	Height   float64 `xml:"height,attr,omitempty"`
}

// ToDrawio converts a positioned graph into draw.io XML. Engine positions
// carry over so the opened document matches the canvas; node ids carry
// over so re-exports after edits stay diffable.
func ToDrawio(g graph.Graph, background string) ([]byte, error) {
	model := drawioModel(g, background)
	out, err := xml.MarshalIndent(model, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal drawio XML: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

func drawioModel(g graph.Graph, background string) *mxGraphModel {
	model := &mxGraphModel{
		Dx:         800,
		Dy:         600,
		Grid:       1,
		GridSize:   10,
		Guides:     1,
		Tooltips:   1,
		Connect:    1,
		Arrows:     1,
		Fold:       1,
		Page:       1,
		PageScale:  1,
		PageWidth:  850,
		PageHeight: 1100,
		Background: background,
		Root: mxRoot{Cells: []mxCell{
			{ID: "0"},
			{ID: "1", Parent: "0"},
		}},
	}

	seen := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		model.Root.Cells = append(model.Root.Cells, mxCell{
			ID:     n.ID,
			Parent: "1",
			Value:  n.DisplayLabel(),
			Style:  drawioNodeStyle(n.Kind),
			Vertex: "1",
			Geometry: &mxGeometry{
				X:      n.Position.X - nodeWidth/2,
				Y:      n.Position.Y - nodeHeight/2,
				Width:  nodeWidth,
				Height: nodeHeight,
				As:     "geometry",
			},
		})
	}

	for _, e := range g.Edges {
		if !seen[e.Source] || !seen[e.Target] {
			continue
		}
		model.Root.Cells = append(model.Root.Cells, mxCell{
			ID:     e.ID,
			Parent: "1",
			Value:  e.Label,
			Style:  drawioEdgeStyle(e),
			Edge:   "1",
			Source: e.Source,
			Target: e.Target,
			Geometry: &mxGeometry{
				Relative: "1",
				As:       "geometry",
			},
		})
	}

	return model
}

func drawioNodeStyle(kind string) string {
	switch kind {
	case graph.KindDecision:
		return "rhombus;whiteSpace=wrap;html=1;fillColor=#fff7ed;strokeColor=#f59e0b;"
	case graph.KindTerminal:
		return "rounded=1;arcSize=50;whiteSpace=wrap;html=1;fillColor=#eef2ff;strokeColor=#6366f1;"
	case graph.KindEntity:
		return "rounded=0;whiteSpace=wrap;html=1;fillColor=#f0fdf4;strokeColor=#10b981;"
	default:
		return "rounded=1;arcSize=12;whiteSpace=wrap;html=1;fillColor=#ffffff;strokeColor=#334155;"
	}
}

func drawioEdgeStyle(e graph.Edge) string {
	style := "edgeStyle=orthogonalEdgeStyle;rounded=1;html=1;"
	if e.Style != nil && e.Style.Stroke != "" {
		style += fmt.Sprintf("strokeColor=%s;", e.Style.Stroke)
	}
	if e.Style != nil && e.Style.Width > 0 {
		style += fmt.Sprintf("strokeWidth=%.1f;", e.Style.Width)
	}
	if e.Animated {
		style += "dashed=1;dashPattern=8 6;"
	}
	return style
}
