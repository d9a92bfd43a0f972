package layout

import (
	"slices"
	"testing"

	"github.com/matzehuels/scrawl/pkg/graph"
)

func TestOrderLayersUncrossesPair(t *testing.T) {
	// a→d and b→c cross in input order; the sweep swaps the lower layer.
	nodes := testNodes("a", "b", "c", "d")
	edges := testEdges([2]string{"a", "d"}, [2]string{"b", "c"})
	ix := graph.NewIndex(nodes, edges)

	layers := [][]string{{"a", "b"}, {"c", "d"}}
	if got := CountCrossings(ix, layers); got != 1 {
		t.Fatalf("crossings before = %d, want 1", got)
	}

	OrderLayers(ix, layers)

	if want := []string{"d", "c"}; !slices.Equal(layers[1], want) {
		t.Errorf("layer 1 = %v, want %v", layers[1], want)
	}
	if got := CountCrossings(ix, layers); got != 0 {
		t.Errorf("crossings after = %d, want 0", got)
	}
}

func TestOrderLayersSentinelSortsFirst(t *testing.T) {
	// z has no predecessor in the layer above and must sort before nodes
	// with real barycenters.
	nodes := testNodes("a", "b", "c", "d", "z")
	edges := testEdges([2]string{"a", "d"}, [2]string{"b", "c"})
	ix := graph.NewIndex(nodes, edges)

	layers := [][]string{{"a", "b"}, {"c", "d", "z"}}
	OrderLayers(ix, layers)

	if want := []string{"z", "d", "c"}; !slices.Equal(layers[1], want) {
		t.Errorf("layer 1 = %v, want %v", layers[1], want)
	}
}

func TestOrderLayersStableOnTies(t *testing.T) {
	// u and v share the same single predecessor, so their barycenters tie
	// and input order must survive.
	nodes := testNodes("a", "u", "v")
	edges := testEdges([2]string{"a", "u"}, [2]string{"a", "v"})
	ix := graph.NewIndex(nodes, edges)

	layers := [][]string{{"a"}, {"u", "v"}}
	OrderLayers(ix, layers)

	if want := []string{"u", "v"}; !slices.Equal(layers[1], want) {
		t.Errorf("layer 1 = %v, want %v", layers[1], want)
	}
}

func TestBarycenter(t *testing.T) {
	prevPos := map[string]int{"p0": 0, "p1": 1, "p2": 2}

	tests := []struct {
		name    string
		parents []string
		want    float64
	}{
		{"NoParents", nil, -1},
		{"NoneInLayerAbove", []string{"far"}, -1},
		{"Single", []string{"p2"}, 2},
		{"Mean", []string{"p0", "p2"}, 1},
		{"OutsidersIgnored", []string{"p1", "far"}, 1},
		{"DuplicatesWeigh", []string{"p0", "p2", "p2"}, 4.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := barycenter(tt.parents, prevPos); got != tt.want {
				t.Errorf("barycenter(%v) = %v, want %v", tt.parents, got, tt.want)
			}
		})
	}
}
