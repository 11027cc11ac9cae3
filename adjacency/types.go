package adjacency

import "errors"

// Sentinel errors for adjacency-list contract violations. These describe
// programmer misuse (bad edge type, dangling endpoint, duplicate removal)
// and are never expected to be handled by degraded-but-working callers.
var (
	// ErrZeroEdgeType indicates an attempt to insert an edge of type 0, which
	// is reserved to mean "no edge / tombstone" and must never be assigned by
	// a caller.
	ErrZeroEdgeType = errors.New("adjacency: edge type 0 is reserved")

	// ErrInvalidNode indicates that from or to does not name a node that was
	// returned by AddNode on this AdjacencyList.
	ErrInvalidNode = errors.New("adjacency: invalid node id")

	// ErrEdgeNotFound indicates RemoveEdge was called for a triple that has
	// no live edge.
	ErrEdgeNotFound = errors.New("adjacency: edge not found")

	// ErrUnsupportedVersion indicates FromWire was given a wire payload
	// produced by an incompatible schema version.
	ErrUnsupportedVersion = errors.New("adjacency: unsupported serialization version")
)

// NodeId is a dense, monotonically increasing node index. It is stable for
// the lifetime of an AdjacencyList/Graph: once allocated by AddNode, a
// NodeId is never reassigned to a different node and is never reused within
// one build, even if the node is later removed at the Graph layer (removal
// of edges incident to a node does not free its NodeId here — Graph is
// responsible for NodeId lifecycle policy above this package).
type NodeId uint32

// NilNodeId is the sentinel "no node" value. It is never returned by AddNode.
const NilNodeId NodeId = 1<<32 - 1

// EdgeType is a small non-zero positive integer identifying the kind of an
// edge. 0 is reserved as "no edge / tombstone" and must not be used by
// callers; AddEdge rejects it with ErrZeroEdgeType.
type EdgeType uint16

// AllEdgeTypes is a distinguished sentinel passed to query operations
// (GetNodesConnectedFrom, GetNodesConnectedTo), wrapped in OneType or
// ManyTypes, to mean "every edge type", rather than filtering to one
// specific type or an enumerated set.
const AllEdgeTypes EdgeType = 0

// TypeSpec filters edge iteration by type: a single type, an explicit set of
// types, or AllEdgeTypes for "every type". The zero value matches
// AllEdgeTypes.
type TypeSpec struct {
	types []EdgeType // empty/nil means AllEdgeTypes
	all   bool
}

// AnyType returns a TypeSpec matching every edge type.
func AnyType() TypeSpec { return TypeSpec{all: true} }

// OneType returns a TypeSpec matching exactly one edge type.
func OneType(t EdgeType) TypeSpec { return TypeSpec{types: []EdgeType{t}} }

// ManyTypes returns a TypeSpec matching any of the given edge types.
func ManyTypes(ts ...EdgeType) TypeSpec {
	cp := append([]EdgeType(nil), ts...)
	return TypeSpec{types: cp}
}

// matches reports whether t satisfies this selector. The zero-value TypeSpec{}
// (no explicit types, all==false) behaves like AnyType so a caller can pass
// a bare TypeSpec{} without reaching for the AnyType() constructor.
func (s TypeSpec) matches(t EdgeType) bool {
	if s.all || len(s.types) == 0 {
		return true
	}
	for _, want := range s.types {
		if want == t || want == AllEdgeTypes {
			return true
		}
	}
	return false
}

// edgeSlot is one record in the packed edge array. Every live edge is
// threaded into a hash bucket (via hashNext), the outbound list of `from`
// (via nextOut/prevOut), and the inbound list of `to` (via nextIn/prevIn).
// A tombstoned slot has typ == 0 and may be reused by a later AddEdge.
type edgeSlot struct {
	typ  EdgeType
	from NodeId
	to   NodeId

	hashNext int32 // index of next slot in this hash bucket, -1 if none

	nextIn int32 // next edge in to.inbound list, -1 if none
	prevIn int32 // prev edge in to.inbound list, -1 if none

	nextOut int32 // next edge in from.outbound list, -1 if none
	prevOut int32 // prev edge in from.outbound list, -1 if none
}

const noEdge int32 = -1

// AdjacencyList is the packed, bit-level store of typed directed edges over
// a dense range of NodeIds. It has no knowledge of node payloads; it only
// tracks which indices in [0, nodeCount) exist and how edges wire them
// together.
//
// Concurrency: AdjacencyList has no internal locking. It is designed for a
// single-writer build coordinator (see package graph, which is the layer
// that may add an optional coarse lock around a *Graph).
type AdjacencyList struct {
	nodeCount int // number of allocated node slots

	edges        []edgeSlot // packed edge array (live + tombstoned slots)
	edgeLive     int        // count of live (non-tombstoned) edges
	edgeTomb     int        // count of tombstoned (reusable) slots
	freeEdges    []int32    // stack of reusable tombstoned slot indices
	firstFreeIdx int32      // unused; reserved for future compaction strategy

	firstIn  []int32 // per-node head of inbound list, noEdge if none
	lastIn   []int32 // per-node tail of inbound list, noEdge if none
	firstOut []int32 // per-node head of outbound list, noEdge if none
	lastOut  []int32 // per-node tail of outbound list, noEdge if none

	table     []int32 // hash table: bucket -> edge slot index, or noEdge
	tableMask uint32  // len(table) is always a power of two; mask = len-1
}

// New constructs an empty AdjacencyList with a small initial hash table.
func New() *AdjacencyList {
	return newWithCapacity(16)
}

func newWithCapacity(tableSize int) *AdjacencyList {
	tableSize = nextPowerOfTwo(tableSize)
	al := &AdjacencyList{
		table:     make([]int32, tableSize),
		tableMask: uint32(tableSize - 1),
	}
	for i := range al.table {
		al.table[i] = noEdge
	}
	return al
}

func nextPowerOfTwo(n int) int {
	if n < 2 {
		return 2
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// NodeCount returns the number of allocated node slots.
func (al *AdjacencyList) NodeCount() int { return al.nodeCount }

// Stats is a read-only snapshot of the edge store's size and load factor,
// exposed so callers (and tests) can observe the resize/rehash policy
// described in the package-level design without reaching into internals.
type Stats struct {
	Nodes        int
	LiveEdges    int
	Tombstones   int
	TableSize    int
	LoadFactor   float64 // (live+tombstones) / capacity
	LiveDensity  float64 // live / capacity
	EdgeCapacity int
}

// Stats returns a snapshot of current size/capacity/load-factor figures.
func (al *AdjacencyList) Stats() Stats {
	cap := len(al.edges)
	var load, density float64
	if cap > 0 {
		load = float64(al.edgeLive+al.edgeTomb) / float64(cap)
		density = float64(al.edgeLive) / float64(cap)
	}
	return Stats{
		Nodes:        al.nodeCount,
		LiveEdges:    al.edgeLive,
		Tombstones:   al.edgeTomb,
		TableSize:    len(al.table),
		LoadFactor:   load,
		LiveDensity:  density,
		EdgeCapacity: cap,
	}
}

func (al *AdjacencyList) validNode(n NodeId) bool {
	return n != NilNodeId && int(n) < al.nodeCount
}
