package adjacency

import "github.com/vmihailenco/msgpack/v5"

// WireVersion is the serialization schema version for Wire. FromWire
// rejects any payload whose Version field doesn't match.
const WireVersion = 1

// Wire is the worker-transfer/cache-restore representation of an
// AdjacencyList: the packed edge array, per-node list heads/tails, and hash
// table, exactly as held in memory. FromWire is a direct reconstruction
// with no recomputation of hash buckets, matching the package contract.
type Wire struct {
	Version   int        `msgpack:"version"`
	NodeCount int        `msgpack:"nodeCount"`
	Edges     []wireEdge `msgpack:"edges"`
	FirstIn   []int32    `msgpack:"firstIn"`
	LastIn    []int32    `msgpack:"lastIn"`
	FirstOut  []int32    `msgpack:"firstOut"`
	LastOut   []int32    `msgpack:"lastOut"`
	Table     []int32    `msgpack:"table"`
	EdgeLive  int        `msgpack:"edgeLive"`
	EdgeTomb  int        `msgpack:"edgeTomb"`
}

type wireEdge struct {
	Type     EdgeType `msgpack:"typ"`
	From     NodeId   `msgpack:"from"`
	To       NodeId   `msgpack:"to"`
	HashNext int32    `msgpack:"hashNext"`
	NextIn   int32    `msgpack:"nextIn"`
	PrevIn   int32    `msgpack:"prevIn"`
	NextOut  int32    `msgpack:"nextOut"`
	PrevOut  int32    `msgpack:"prevOut"`
}

// ToWire produces a self-contained value representation of al, suitable for
// msgpack encoding and transfer to a worker or a disk cache.
func (al *AdjacencyList) ToWire() Wire {
	edges := make([]wireEdge, len(al.edges))
	for i, e := range al.edges {
		edges[i] = wireEdge{
			Type: e.typ, From: e.from, To: e.to,
			HashNext: e.hashNext, NextIn: e.nextIn, PrevIn: e.prevIn,
			NextOut: e.nextOut, PrevOut: e.prevOut,
		}
	}
	return Wire{
		Version:   WireVersion,
		NodeCount: al.nodeCount,
		Edges:     edges,
		FirstIn:   append([]int32(nil), al.firstIn...),
		LastIn:    append([]int32(nil), al.lastIn...),
		FirstOut:  append([]int32(nil), al.firstOut...),
		LastOut:   append([]int32(nil), al.lastOut...),
		Table:     append([]int32(nil), al.table...),
		EdgeLive:  al.edgeLive,
		EdgeTomb:  al.edgeTomb,
	}
}

// FromWire reconstructs an AdjacencyList from a Wire value with no
// recomputation of hash buckets or linked lists: every field is copied back
// verbatim. Free-list bookkeeping for tombstoned slots is rebuilt by a
// single scan, since the free-slot stack itself is not part of the wire
// shape (it is a transient allocation hint, not structural state).
func FromWire(w Wire) (*AdjacencyList, error) {
	if w.Version != WireVersion {
		return nil, ErrUnsupportedVersion
	}
	al := &AdjacencyList{
		nodeCount: w.NodeCount,
		edgeLive:  w.EdgeLive,
		edgeTomb:  w.EdgeTomb,
		firstIn:   append([]int32(nil), w.FirstIn...),
		lastIn:    append([]int32(nil), w.LastIn...),
		firstOut:  append([]int32(nil), w.FirstOut...),
		lastOut:   append([]int32(nil), w.LastOut...),
		table:     append([]int32(nil), w.Table...),
		tableMask: uint32(len(w.Table) - 1),
	}
	al.edges = make([]edgeSlot, len(w.Edges))
	for i, e := range w.Edges {
		al.edges[i] = edgeSlot{
			typ: e.Type, from: e.From, to: e.To,
			hashNext: e.HashNext, nextIn: e.NextIn, prevIn: e.PrevIn,
			nextOut: e.NextOut, prevOut: e.PrevOut,
		}
		if e.Type == 0 {
			al.freeEdges = append(al.freeEdges, int32(i))
		}
	}
	return al, nil
}

// Marshal encodes al as msgpack bytes, the compact wire/cache format used
// for worker transfer.
func (al *AdjacencyList) Marshal() ([]byte, error) {
	return msgpack.Marshal(al.ToWire())
}

// Unmarshal decodes msgpack bytes produced by Marshal back into a fresh
// AdjacencyList.
func Unmarshal(data []byte) (*AdjacencyList, error) {
	var w Wire
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return FromWire(w)
}
