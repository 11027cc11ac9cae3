package graph

import (
	"errors"
	"sync"

	"github.com/katalvlaran/assetgraph/adjacency"
)

// NodeId, EdgeType and TypeSpec are re-exported from package adjacency so
// callers of graph never need to import it directly.
type (
	NodeId   = adjacency.NodeId
	EdgeType = adjacency.EdgeType
	TypeSpec = adjacency.TypeSpec
)

const (
	// AllEdgeTypes means "every edge type" when wrapped in a TypeSpec via
	// OneType or ManyTypes.
	AllEdgeTypes = adjacency.AllEdgeTypes

	// DefaultEdgeType is the implicit edge type used by AddDefaultEdge and
	// RemoveDefaultEdge — "untyped" edges in a graph that doesn't otherwise
	// distinguish edge kinds.
	DefaultEdgeType EdgeType = 1
)

// AnyType, OneType, ManyTypes and NilNodeId are re-exported from package
// adjacency for callers that only import graph.
var (
	AnyType   = adjacency.AnyType
	OneType   = adjacency.OneType
	ManyTypes = adjacency.ManyTypes
)

// NilNodeId is the sentinel "no node" value, re-exported from adjacency.
const NilNodeId = adjacency.NilNodeId

// Sentinel errors for Graph contract violations. These describe programmer
// misuse — a bad NodeId, an unset root, an unknown ContentKey — and are
// never expected to be handled by a degraded-but-working caller.
var (
	// ErrNodeNotFound indicates an operation referenced a NodeId not
	// present in this Graph (either never added, or already removed).
	ErrNodeNotFound = errors.New("graph: node not found")

	// ErrDuplicateContentKey indicates AddNode was called with a ContentKey
	// already bound to a different NodeId.
	ErrDuplicateContentKey = errors.New("graph: duplicate content key")

	// ErrNoRootOrStart indicates a traversal was started with no explicit
	// start node and no root set on the Graph.
	ErrNoRootOrStart = errors.New("graph: no start node and no root set")

	// ErrKeyNotFound indicates GetNodeIdByKey was called with an unknown
	// ContentKey.
	ErrKeyNotFound = errors.New("graph: content key not found")

	// ErrUnsupportedVersion indicates Deserialize was given a wire payload
	// produced by an incompatible schema version.
	ErrUnsupportedVersion = errors.New("graph: unsupported serialization version")
)

// ContentKey is the string identity a Graph's owner assigns to a node,
// distinct from the dense integer NodeId package adjacency allocates.
type ContentKey = string

// Graph is a generic labelled directed multigraph: a NodeId -> TNode payload
// map layered over package adjacency's edge store, with an optional root
// node used by orphan detection and by traversals that default their start
// node to the root.
//
// Concurrency: Graph carries one coarse sync.RWMutex. The core contract is
// single-writer (exactly one goroutine mutates a given Graph at a time); the
// mutex exists only so a read-mostly consumer — a diagnostics reporter
// polling Stats/GetNode between mutation calls — never observes a torn node
// map. It is not a general concurrent-mutation guarantee. Visitor callbacks
// passed to DFS/BFS/Traverse run with the lock released (the traversal takes
// it briefly for each read between callbacks) and must not call back into a
// mutating Graph method on the same Graph.
type Graph[TNode any] struct {
	mu sync.RWMutex

	al *adjacency.AdjacencyList

	nodes map[NodeId]TNode
	keys  map[ContentKey]NodeId
	ids   map[NodeId]ContentKey

	root *NodeId
}

// New constructs an empty Graph with no root node set.
func New[TNode any]() *Graph[TNode] {
	return &Graph[TNode]{
		al:    adjacency.New(),
		nodes: make(map[NodeId]TNode),
		keys:  make(map[ContentKey]NodeId),
		ids:   make(map[NodeId]ContentKey),
	}
}

// SetRootNodeId sets the graph's root node, used as the default start node
// for DFS/BFS and as the reachability anchor for IsOrphanedNode.
func (g *Graph[TNode]) SetRootNodeId(id NodeId) {
	g.mu.Lock()
	defer g.mu.Unlock()
	root := id
	g.root = &root
}

// RootNodeId returns the graph's root node and whether one is set.
func (g *Graph[TNode]) RootNodeId() (NodeId, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.root == nil {
		return NilNodeId, false
	}
	return *g.root, true
}

// NodeCount returns the number of live nodes in the graph.
//
// Complexity: O(1).
func (g *Graph[TNode]) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Stats is a read-only snapshot combining node-map size with the underlying
// AdjacencyList's edge-store figures, for diagnostics and tests.
type Stats struct {
	NodeCount   int
	HasRoot     bool
	AdjacencyAL adjacency.Stats
}

// Stats returns a snapshot of current graph and edge-store size/load.
func (g *Graph[TNode]) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return Stats{
		NodeCount:   len(g.nodes),
		HasRoot:     g.root != nil,
		AdjacencyAL: g.al.Stats(),
	}
}
