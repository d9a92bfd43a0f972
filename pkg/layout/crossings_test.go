package layout

import (
	"testing"

	"github.com/matzehuels/scrawl/pkg/graph"
)

func TestCountLayerCrossings(t *testing.T) {
	tests := []struct {
		name  string
		edges []graph.Edge
		upper []string
		lower []string
		want  int
	}{
		{
			name:  "Parallel",
			edges: testEdges([2]string{"a", "c"}, [2]string{"b", "d"}),
			upper: []string{"a", "b"},
			lower: []string{"c", "d"},
			want:  0,
		},
		{
			name:  "SingleCross",
			edges: testEdges([2]string{"a", "d"}, [2]string{"b", "c"}),
			upper: []string{"a", "b"},
			lower: []string{"c", "d"},
			want:  1,
		},
		{
			name: "FullBipartite",
			edges: testEdges(
				[2]string{"a", "c"}, [2]string{"a", "d"},
				[2]string{"b", "c"}, [2]string{"b", "d"},
			),
			upper: []string{"a", "b"},
			lower: []string{"c", "d"},
			want:  1,
		},
		{
			name: "ReversedFan",
			edges: testEdges(
				[2]string{"a", "f"}, [2]string{"b", "e"}, [2]string{"c", "d"},
			),
			upper: []string{"a", "b", "c"},
			lower: []string{"d", "e", "f"},
			want:  3,
		},
		{
			name:  "EmptyLayer",
			edges: testEdges([2]string{"a", "b"}),
			upper: []string{"a"},
			lower: nil,
			want:  0,
		},
		{
			name:  "SpanOutsideLowerLayerIgnored",
			edges: testEdges([2]string{"a", "x"}, [2]string{"b", "c"}),
			upper: []string{"a", "b"},
			lower: []string{"c"},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := map[string]bool{}
			for _, e := range tt.edges {
				ids[e.Source] = true
				ids[e.Target] = true
			}
			var ns []graph.Node
			for _, id := range []string{"a", "b", "c", "d", "e", "f", "x"} {
				if ids[id] {
					ns = append(ns, graph.Node{ID: id})
				}
			}
			ix := graph.NewIndex(ns, tt.edges)

			if got := CountLayerCrossings(ix, tt.upper, tt.lower); got != tt.want {
				t.Errorf("CountLayerCrossings() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCountCrossingsSumsLayerPairs(t *testing.T) {
	edges := testEdges(
		[2]string{"a", "d"}, [2]string{"b", "c"}, // one crossing
		[2]string{"c", "f"}, [2]string{"d", "e"}, // one crossing
	)
	ix := graph.NewIndex(testNodes("a", "b", "c", "d", "e", "f"), edges)

	layers := [][]string{{"a", "b"}, {"c", "d"}, {"e", "f"}}
	if got := CountCrossings(ix, layers); got != 2 {
		t.Errorf("CountCrossings() = %d, want 2", got)
	}
}
