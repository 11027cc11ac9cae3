package graph

import "github.com/katalvlaran/assetgraph/adjacency"

// Clone returns a deep structural copy of g: independent node payloads,
// independent adjacency storage, same root. Node payload values are copied
// by Go assignment (a shallow copy of TNode itself) — if TNode holds a
// pointer or map field, that referenced memory is shared with the original
// unless TNode provides its own deep-copy method.
//
// Complexity: O(V+E).
func (g *Graph[TNode]) Clone() *Graph[TNode] {
	g.mu.RLock()
	defer g.mu.RUnlock()

	al, err := adjacency.FromWire(g.al.ToWire())
	if err != nil {
		// ToWire always produces WireVersion-tagged output from a live
		// AdjacencyList, so FromWire cannot fail here; a failure would be a
		// programming error in this package, not a caller-recoverable one.
		panic("graph: Clone: unexpected adjacency decode failure: " + err.Error())
	}

	out := &Graph[TNode]{
		al:    al,
		nodes: make(map[NodeId]TNode, len(g.nodes)),
		keys:  make(map[ContentKey]NodeId, len(g.keys)),
		ids:   make(map[NodeId]ContentKey, len(g.ids)),
	}
	for id, v := range g.nodes {
		out.nodes[id] = v
	}
	for k, id := range g.keys {
		out.keys[k] = id
	}
	for id, k := range g.ids {
		out.ids[id] = k
	}
	if g.root != nil {
		r := *g.root
		out.root = &r
	}
	return out
}
