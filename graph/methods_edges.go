package graph

import (
	"errors"

	"github.com/hashicorp/go-multierror"

	"github.com/katalvlaran/assetgraph/adjacency"
)

// AddEdge inserts an edge (from, to, typ). It returns false, without error,
// if the triple already exists (idempotent insert, matching
// AdjacencyList.AddEdge). Both endpoints must already be live nodes.
func (g *Graph[TNode]) AddEdge(from, to NodeId, typ EdgeType) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.nodes[from]; !ok {
		return false, ErrNodeNotFound
	}
	if _, ok := g.nodes[to]; !ok {
		return false, ErrNodeNotFound
	}
	return g.al.AddEdge(from, to, typ)
}

// AddDefaultEdge inserts an edge of DefaultEdgeType.
func (g *Graph[TNode]) AddDefaultEdge(from, to NodeId) (bool, error) {
	return g.AddEdge(from, to, DefaultEdgeType)
}

// HasEdge reports whether a live edge (from, to, typ) exists.
func (g *Graph[TNode]) HasEdge(from, to NodeId, typ EdgeType) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.al.HasEdge(from, to, typ)
}

// HasDefaultEdge reports whether a live edge of DefaultEdgeType exists.
func (g *Graph[TNode]) HasDefaultEdge(from, to NodeId) bool {
	return g.HasEdge(from, to, DefaultEdgeType)
}

// RemoveEdge deletes edge (from, to, typ). When removeOrphans is true and
// removing the edge leaves to unreachable (see invariant in IsOrphanedNode),
// to is removed too, cascading further.
func (g *Graph[TNode]) RemoveEdge(from, to NodeId, typ EdgeType, removeOrphans bool) error {
	return g.removeEdgeLocked(from, to, typ, removeOrphans)
}

// RemoveDefaultEdge removes an edge of DefaultEdgeType with orphan pruning
// enabled.
func (g *Graph[TNode]) RemoveDefaultEdge(from, to NodeId) error {
	return g.removeEdgeLocked(from, to, DefaultEdgeType, true)
}

// removeEdgeLocked is the shared implementation behind RemoveEdge and the
// cascade steps of RemoveNode. It must not be called while g.mu is held by
// the caller — it acquires the lock itself and releases it before the
// (possibly recursive) orphan check/removal, since Graph's mutex is not
// reentrant.
func (g *Graph[TNode]) removeEdgeLocked(from, to NodeId, typ EdgeType, removeOrphans bool) error {
	g.mu.Lock()
	err := g.al.RemoveEdge(from, to, typ)
	g.mu.Unlock()
	if err != nil {
		return err
	}
	if removeOrphans && g.IsOrphanedNode(to) {
		return g.RemoveNode(to)
	}
	return nil
}

// RemoveEdges removes every outbound edge of the given type from node.
// Orphan pruning applies to each removed edge's target independently.
func (g *Graph[TNode]) RemoveEdges(node NodeId, typ EdgeType) error {
	g.mu.RLock()
	out := g.al.GetOutboundEdgesByType(node)
	g.mu.RUnlock()

	var errs *multierror.Error
	for _, e := range out {
		if e.Type != typ {
			continue
		}
		if err := g.removeEdgeLocked(node, e.To, typ, true); err != nil && !errors.Is(err, adjacency.ErrEdgeNotFound) {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// GetNodeIdsConnectedFrom returns the de-duplicated, insertion-ordered set
// of from's outbound neighbours matching spec.
func (g *Graph[TNode]) GetNodeIdsConnectedFrom(id NodeId, spec TypeSpec) []NodeId {
	g.mu.RLock()
	raw := g.al.GetNodesConnectedFrom(id, spec)
	g.mu.RUnlock()
	return dedupe(raw)
}

// GetNodeIdsConnectedTo returns the de-duplicated, insertion-ordered set of
// to's inbound neighbours matching spec.
func (g *Graph[TNode]) GetNodeIdsConnectedTo(id NodeId, spec TypeSpec) []NodeId {
	g.mu.RLock()
	raw := g.al.GetNodesConnectedTo(id, spec)
	g.mu.RUnlock()
	return dedupe(raw)
}

func dedupe(ids []NodeId) []NodeId {
	if len(ids) == 0 {
		return ids
	}
	seen := make(map[NodeId]bool, len(ids))
	out := make([]NodeId, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// GetAllEdges streams every live edge in the graph.
func (g *Graph[TNode]) GetAllEdges() []adjacency.Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.al.GetAllEdges()
}

// ReplaceNodeIdsConnectedTo sets from's outbound neighbours of typ to the
// union of newTos and the pre-existing neighbours NOT matching filter: any
// existing neighbour matching filter that isn't also in newTos is removed
// (with orphan pruning); every id in newTos is then added via a fresh
// AddEdge (idempotent, so ids already linked are unaffected). A nil filter
// matches nothing, so the call degrades to "add these new links" with no
// removals.
func (g *Graph[TNode]) ReplaceNodeIdsConnectedTo(from NodeId, newTos []NodeId, filter func(NodeId) bool, typ EdgeType) error {
	existing := g.GetNodeIdsConnectedFrom(from, OneType(typ))
	want := make(map[NodeId]bool, len(newTos))
	for _, to := range newTos {
		want[to] = true
	}

	var errs *multierror.Error
	for _, to := range existing {
		if want[to] {
			continue
		}
		if filter == nil || !filter(to) {
			continue // kept: doesn't match filter
		}
		if err := g.removeEdgeLocked(from, to, typ, true); err != nil && !errors.Is(err, adjacency.ErrEdgeNotFound) {
			errs = multierror.Append(errs, err)
		}
	}
	for _, to := range newTos {
		if _, err := g.AddEdge(from, to, typ); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// IsOrphanedNode reports whether id is unreachable: with no root set, a node
// is orphaned iff it has no inbound edges; with a root set, a node is
// orphaned iff no directed path of any edge type leads from the root to it
// (the root itself is never orphaned).
//
// Complexity: O(1) with no root; O(V+E) with a root (a forward BFS).
func (g *Graph[TNode]) IsOrphanedNode(id NodeId) bool {
	g.mu.RLock()
	root := g.root
	if root == nil {
		inbound := g.al.GetInboundEdgesByType(id)
		g.mu.RUnlock()
		return len(inbound) == 0
	}
	rootID := *root
	g.mu.RUnlock()

	if rootID == id {
		return false
	}
	reachable := false
	_, _ = g.BFS(func(n NodeId) bool {
		if n == id {
			reachable = true
			return true
		}
		return false
	})
	return !reachable
}
