package adjacency

// Edge is a materialized view of one live edge, returned by enumeration
// methods. It is a value copy; mutating it has no effect on the store.
type Edge struct {
	From NodeId
	To   NodeId
	Type EdgeType
}

// InboundEdge pairs an edge's type with the node it arrives from, as
// returned by GetInboundEdgesByType.
type InboundEdge struct {
	Type EdgeType
	From NodeId
}

// OutboundEdge pairs an edge's type with the node it goes to, as returned by
// GetOutboundEdgesByType.
type OutboundEdge struct {
	Type EdgeType
	To   NodeId
}

// GetNodesConnectedFrom iterates the outbound neighbours of node matching
// spec, in insertion order. Parallel edges of different matching types to
// the same neighbour yield that neighbour once per matching edge.
//
// Complexity: O(deg+(node)).
func (al *AdjacencyList) GetNodesConnectedFrom(node NodeId, spec TypeSpec) []NodeId {
	if !al.validNode(node) {
		return nil
	}
	var out []NodeId
	for idx := al.firstOut[node]; idx != noEdge; idx = al.edges[idx].nextOut {
		e := &al.edges[idx]
		if spec.matches(e.typ) {
			out = append(out, e.to)
		}
	}
	return out
}

// GetNodesConnectedTo iterates the inbound neighbours of node matching spec,
// in insertion order.
//
// Complexity: O(deg-(node)).
func (al *AdjacencyList) GetNodesConnectedTo(node NodeId, spec TypeSpec) []NodeId {
	if !al.validNode(node) {
		return nil
	}
	var out []NodeId
	for idx := al.firstIn[node]; idx != noEdge; idx = al.edges[idx].nextIn {
		e := &al.edges[idx]
		if spec.matches(e.typ) {
			out = append(out, e.from)
		}
	}
	return out
}

// GetInboundEdgesByType enumerates every inbound edge of node as (type,
// from) pairs, in insertion order.
func (al *AdjacencyList) GetInboundEdgesByType(node NodeId) []InboundEdge {
	if !al.validNode(node) {
		return nil
	}
	var out []InboundEdge
	for idx := al.firstIn[node]; idx != noEdge; idx = al.edges[idx].nextIn {
		e := &al.edges[idx]
		out = append(out, InboundEdge{Type: e.typ, From: e.from})
	}
	return out
}

// GetOutboundEdgesByType enumerates every outbound edge of node as (type,
// to) pairs, in insertion order.
func (al *AdjacencyList) GetOutboundEdgesByType(node NodeId) []OutboundEdge {
	if !al.validNode(node) {
		return nil
	}
	var out []OutboundEdge
	for idx := al.firstOut[node]; idx != noEdge; idx = al.edges[idx].nextOut {
		e := &al.edges[idx]
		out = append(out, OutboundEdge{Type: e.typ, To: e.to})
	}
	return out
}

// GetAllEdges streams every live edge. Order is the packed-array slot order
// and is not meaningful to callers (it is not insertion order once
// tombstoned slots have been reused).
//
// Complexity: O(capacity) to skip tombstones, O(live) to build the result.
func (al *AdjacencyList) GetAllEdges() []Edge {
	out := make([]Edge, 0, al.edgeLive)
	for i := range al.edges {
		e := &al.edges[i]
		if e.typ == 0 {
			continue
		}
		out = append(out, Edge{From: e.from, To: e.to, Type: e.typ})
	}
	return out
}
