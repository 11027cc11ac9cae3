package graph

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/katalvlaran/assetgraph/adjacency"
)

// WireVersion is the serialization schema version for Wire. Deserialize
// rejects any payload whose Version field doesn't match; this is the
// "versioned; readers reject unknown versions" contract from the design.
const WireVersion = 1

// Wire is the worker-transfer/cache-restore representation of a Graph:
// {nodes, adjacencyList, rootNodeId, nextNodeId} plus the ContentKey index,
// which this module's Graph maintains internally (the abstract Node type
// the design describes carries its ContentKey as its own "id" field; since
// TNode here is a caller-supplied payload distinct from that key, the index
// is serialized alongside it rather than folded into TNode).
type Wire[TNode any] struct {
	Version       int                   `msgpack:"version"`
	Nodes         map[NodeId]TNode      `msgpack:"nodes"`
	Keys          map[ContentKey]NodeId `msgpack:"keys"`
	AdjacencyList adjacency.Wire        `msgpack:"adjacencyList"`
	RootNodeId    *NodeId               `msgpack:"rootNodeId"`
	NextNodeId    uint32                `msgpack:"nextNodeId"`
}

// Serialize produces a self-contained value representation of g, suitable
// for msgpack encoding and transfer to a worker or a disk cache.
//
// Complexity: O(V+E).
func (g *Graph[TNode]) Serialize() Wire[TNode] {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes := make(map[NodeId]TNode, len(g.nodes))
	for id, v := range g.nodes {
		nodes[id] = v
	}
	keys := make(map[ContentKey]NodeId, len(g.keys))
	for k, id := range g.keys {
		keys[k] = id
	}
	var root *NodeId
	if g.root != nil {
		r := *g.root
		root = &r
	}
	return Wire[TNode]{
		Version:       WireVersion,
		Nodes:         nodes,
		Keys:          keys,
		AdjacencyList: g.al.ToWire(),
		RootNodeId:    root,
		NextNodeId:    uint32(g.al.NodeCount()),
	}
}

// Deserialize reconstructs a Graph from a Wire value produced by Serialize.
// It is a direct reconstruction (no replay of AddNode/AddEdge), matching the
// "memcpy-equivalent" contract for the underlying adjacency list.
func Deserialize[TNode any](w Wire[TNode]) (*Graph[TNode], error) {
	if w.Version != WireVersion {
		return nil, ErrUnsupportedVersion
	}
	al, err := adjacency.FromWire(w.AdjacencyList)
	if err != nil {
		return nil, err
	}
	g := &Graph[TNode]{
		al:    al,
		nodes: make(map[NodeId]TNode, len(w.Nodes)),
		keys:  make(map[ContentKey]NodeId, len(w.Keys)),
		ids:   make(map[NodeId]ContentKey, len(w.Keys)),
	}
	for id, v := range w.Nodes {
		g.nodes[id] = v
	}
	for k, id := range w.Keys {
		g.keys[k] = id
		g.ids[id] = k
	}
	if w.RootNodeId != nil {
		root := *w.RootNodeId
		g.root = &root
	}
	return g, nil
}

// Marshal encodes g as msgpack bytes.
func (g *Graph[TNode]) Marshal() ([]byte, error) {
	return msgpack.Marshal(g.Serialize())
}

// Unmarshal decodes msgpack bytes produced by Marshal back into a fresh
// Graph.
func Unmarshal[TNode any](data []byte) (*Graph[TNode], error) {
	var w Wire[TNode]
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return Deserialize(w)
}
