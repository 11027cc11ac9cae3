package graph

// AddNode registers a new node under the given ContentKey with payload
// value, and returns its freshly allocated NodeId. It fails with
// ErrDuplicateContentKey if key is already bound to a node.
//
// Complexity: O(1) amortized.
func (g *Graph[TNode]) AddNode(key ContentKey, value TNode) (NodeId, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.keys[key]; exists {
		return NilNodeId, ErrDuplicateContentKey
	}
	id := g.al.AddNode()
	g.nodes[id] = value
	g.keys[key] = id
	g.ids[id] = key
	return id, nil
}

// AllNodeIds returns every live NodeId in no particular order. It exists for
// callers (e.g. a dead-code-elimination pass seeding its initial work set)
// that need to enumerate the whole node population rather than walk edges.
//
// Complexity: O(V).
func (g *Graph[TNode]) AllNodeIds() []NodeId {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ids := make([]NodeId, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	return ids
}

// HasNode reports whether id names a live node.
func (g *Graph[TNode]) HasNode(id NodeId) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.nodes[id]
	return ok
}

// GetNode returns the payload stored at id, and whether id names a live
// node.
func (g *Graph[TNode]) GetNode(id NodeId) (TNode, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.nodes[id]
	return v, ok
}

// GetNodeIdByKey resolves a ContentKey to its NodeId.
func (g *Graph[TNode]) GetNodeIdByKey(key ContentKey) (NodeId, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.keys[key]
	if !ok {
		return NilNodeId, ErrKeyNotFound
	}
	return id, nil
}

// ContentKeyOf returns the ContentKey a live node was added under.
func (g *Graph[TNode]) ContentKeyOf(id NodeId) (ContentKey, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	k, ok := g.ids[id]
	return k, ok
}

// UpdateNode replaces the payload stored at id. It fails with
// ErrNodeNotFound if id is absent.
//
// Complexity: O(1).
func (g *Graph[TNode]) UpdateNode(id NodeId, value TNode) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.nodes[id]; !ok {
		return ErrNodeNotFound
	}
	g.nodes[id] = value
	return nil
}

// RemoveNode deletes id and every edge incident to it (invariant: cascade
// deletion). Inbound edges are removed first with orphan pruning disabled —
// id itself is about to be gone, so any would-be new orphan on the far side
// of an inbound edge is left for the subsequent outbound pass or for the
// caller to handle explicitly. Outbound edges are then removed with orphan
// pruning enabled, since id's departure may newly orphan its descendants.
//
// Complexity: O(deg(id)) for direct edges, plus the cost of any cascaded
// orphan removals triggered by the outbound pass.
func (g *Graph[TNode]) RemoveNode(id NodeId) error {
	g.mu.Lock()
	if _, ok := g.nodes[id]; !ok {
		g.mu.Unlock()
		return ErrNodeNotFound
	}
	inbound := g.al.GetInboundEdgesByType(id)
	outbound := g.al.GetOutboundEdgesByType(id)
	g.mu.Unlock()

	for _, in := range inbound {
		_ = g.removeEdgeLocked(in.From, id, in.Type, false)
	}
	for _, out := range outbound {
		_ = g.removeEdgeLocked(id, out.To, out.Type, true)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.nodes, id)
	if key, ok := g.ids[id]; ok {
		delete(g.keys, key)
		delete(g.ids, id)
	}
	if g.root != nil && *g.root == id {
		g.root = nil
	}
	return nil
}
