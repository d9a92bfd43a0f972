package graph

// =============================================================================
// Index - Adjacency Views Over a Snapshot
// =============================================================================

// Index provides adjacency and root lookups over one node/edge snapshot.
// It is built once per layout call and never outlives it.
//
// Construction rules:
//   - node order follows input order; on duplicate ids the first occurrence
//     keeps its slot
//   - edges referencing a missing endpoint are skipped entirely
//   - duplicate edges are kept (they are legal and not deduplicated)
type Index struct {
	order    []string
	pos      map[string]int
	children map[string][]string
	parents  map[string][]string
	incoming map[string]int
	degree   map[string]int
	roots    []string
}

// NewIndex builds an Index from a snapshot's nodes and edges.
func NewIndex(nodes []Node, edges []Edge) *Index {
	ix := &Index{
		pos:      make(map[string]int, len(nodes)),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
		incoming: make(map[string]int, len(nodes)),
		degree:   make(map[string]int, len(nodes)),
	}

	for _, n := range nodes {
		if _, seen := ix.pos[n.ID]; seen {
			continue
		}
		ix.pos[n.ID] = len(ix.order)
		ix.order = append(ix.order, n.ID)
	}

	for _, e := range edges {
		if !ix.Has(e.Source) || !ix.Has(e.Target) {
			continue
		}
		ix.children[e.Source] = append(ix.children[e.Source], e.Target)
		ix.parents[e.Target] = append(ix.parents[e.Target], e.Source)
		ix.incoming[e.Target]++
		ix.degree[e.Source]++
		ix.degree[e.Target]++
	}

	for _, id := range ix.order {
		if ix.incoming[id] == 0 {
			ix.roots = append(ix.roots, id)
		}
	}

	return ix
}

// Len returns the number of distinct nodes.
func (ix *Index) Len() int { return len(ix.order) }

// Has reports whether id names a node in the snapshot.
func (ix *Index) Has(id string) bool {
	_, ok := ix.pos[id]
	return ok
}

// Pos returns a node's position in input order.
func (ix *Index) Pos(id string) (int, bool) {
	p, ok := ix.pos[id]
	return p, ok
}

// IDs returns all node ids in input order.
func (ix *Index) IDs() []string {
	out := make([]string, len(ix.order))
	copy(out, ix.order)
	return out
}

// Children returns the targets of id's outgoing edges in edge input order,
// duplicates included. The returned slice is shared; callers must not
// modify it.
func (ix *Index) Children(id string) []string { return ix.children[id] }

// Parents returns the sources of id's incoming edges in edge input order,
// duplicates included. The returned slice is shared; callers must not
// modify it.
func (ix *Index) Parents(id string) []string { return ix.parents[id] }

// Incoming returns the number of edges pointing at id.
func (ix *Index) Incoming(id string) int { return ix.incoming[id] }

// Degree returns id's total degree (incoming plus outgoing).
func (ix *Index) Degree(id string) int { return ix.degree[id] }

// Roots returns the nodes with zero incoming edges, in input order. Empty
// when every node has an incoming edge (pure cycles).
func (ix *Index) Roots() []string {
	out := make([]string, len(ix.roots))
	copy(out, ix.roots)
	return out
}

// Root returns the layout root for layered placement: the first natural
// root, or the first node in input order when no natural root exists.
// Returns "" only for an empty snapshot. The fallback is policy, not an
// error; a rootless graph is still laid out.
func (ix *Index) Root() string {
	if len(ix.roots) > 0 {
		return ix.roots[0]
	}
	if len(ix.order) > 0 {
		return ix.order[0]
	}
	return ""
}

// HubRoot returns the layout root for radial placement: the first natural
// root, or, when none exists, the node with the highest total degree (ties
// go to the earlier node in input order). Returns "" only for an empty
// snapshot.
func (ix *Index) HubRoot() string {
	if len(ix.roots) > 0 {
		return ix.roots[0]
	}
	best, bestDeg := "", -1
	for _, id := range ix.order {
		if d := ix.degree[id]; d > bestDeg {
			best, bestDeg = id, d
		}
	}
	return best
}
