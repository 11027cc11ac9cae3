package adjacency

// Resize/rehash thresholds from the package design: the hash table is
// rebuilt once (live+tombstones)/table size crosses rehashLoadFactor, and the
// edge array is grown whenever it has no free slot left to serve a new edge.
// Live-edge density below shrinkDensity is a signal a caller-level compactor
// could act on; this package does not shrink automatically mid-build because
// index stability during a single build matters more than reclaiming a
// transient low-water mark, but Stats() exposes LiveDensity so callers can
// decide to rebuild a fresh AdjacencyList between builds if they want to.
const (
	rehashLoadFactor = 0.8
	shrinkDensity    = 0.4
)

// AddEdge inserts a new edge (from, to, typ). It returns false, without
// error, if an edge with the same triple already exists (idempotent insert).
// It fails with ErrZeroEdgeType if typ == 0, or ErrInvalidNode if either
// endpoint is not a node returned by AddNode on this list.
//
// Complexity: O(1) expected; triggers a hash-table rehash when the load
// factor crosses rehashLoadFactor.
func (al *AdjacencyList) AddEdge(from, to NodeId, typ EdgeType) (bool, error) {
	if typ == 0 {
		return false, ErrZeroEdgeType
	}
	if !al.validNode(from) || !al.validNode(to) {
		return false, ErrInvalidNode
	}
	if al.hasEdgeAt(from, to, typ) {
		return false, nil
	}

	idx := al.allocSlot()
	al.edges[idx] = edgeSlot{
		typ: typ, from: from, to: to,
		hashNext: noEdge, nextIn: noEdge, prevIn: noEdge, nextOut: noEdge, prevOut: noEdge,
	}
	al.linkHash(idx)
	al.linkOutbound(idx)
	al.linkInbound(idx)
	al.edgeLive++

	al.maybeGrow()
	return true, nil
}

// HasEdge reports whether a live edge (from, to, typ) exists.
//
// Complexity: O(1) expected (hash bucket walk; bucket chains are short under
// the maintained load factor).
func (al *AdjacencyList) HasEdge(from, to NodeId, typ EdgeType) bool {
	if !al.validNode(from) || !al.validNode(to) {
		return false
	}
	return al.hasEdgeAt(from, to, typ)
}

func (al *AdjacencyList) hasEdgeAt(from, to NodeId, typ EdgeType) bool {
	return al.findSlot(from, to, typ) != noEdge
}

func (al *AdjacencyList) findSlot(from, to NodeId, typ EdgeType) int32 {
	b := al.bucketOf(from, to, typ)
	idx := al.table[b]
	for idx != noEdge {
		e := &al.edges[idx]
		if e.typ == typ && e.from == from && e.to == to {
			return idx
		}
		idx = e.hashNext
	}
	return noEdge
}

// RemoveEdge unlinks (from, to, typ) from its hash bucket and both endpoint
// lists, and tombstones its slot for reuse. It fails with ErrEdgeNotFound if
// the edge does not exist.
//
// Complexity: O(1) expected (bucket-chain length is bounded by the
// maintained load factor; endpoint-list unlinking is O(1) via the doubly
// linked list).
func (al *AdjacencyList) RemoveEdge(from, to NodeId, typ EdgeType) error {
	idx := al.findSlot(from, to, typ)
	if idx == noEdge {
		return ErrEdgeNotFound
	}
	al.unlinkHash(idx)
	al.unlinkOutbound(idx)
	al.unlinkInbound(idx)

	al.edges[idx] = edgeSlot{typ: 0, hashNext: noEdge, nextIn: noEdge, prevIn: noEdge, nextOut: noEdge, prevOut: noEdge}
	al.freeEdges = append(al.freeEdges, idx)
	al.edgeLive--
	al.edgeTomb++
	return nil
}

// allocSlot returns the index of a slot to populate for a new edge, reusing
// a tombstone if one is free, otherwise appending to the packed array
// (growing it geometrically first if it's full).
func (al *AdjacencyList) allocSlot() int32 {
	if n := len(al.freeEdges); n > 0 {
		idx := al.freeEdges[n-1]
		al.freeEdges = al.freeEdges[:n-1]
		al.edgeTomb--
		return idx
	}
	al.edges = append(al.edges, edgeSlot{})
	return int32(len(al.edges) - 1)
}

// maybeGrow rebuilds the hash table (to the smallest power-of-two >=
// 2*live) whenever (live+tombstones) over the hash-table size crosses
// rehashLoadFactor. This is the "edge-capacity growth" trigger named in the
// package design: the edge array itself grows lazily via append, so the
// observable trigger is the hash table's load factor, not a separate
// capacity counter.
func (al *AdjacencyList) maybeGrow() {
	cap := len(al.table)
	if cap == 0 {
		return
	}
	load := float64(al.edgeLive+al.edgeTomb) / float64(cap)
	if load <= rehashLoadFactor {
		return
	}
	al.rehash(nextPowerOfTwo(2 * al.edgeLive))
}

// rehash rebuilds the hash table at the given size by walking every live
// edge once and relinking its hash-bucket chain; it does not touch the
// inbound/outbound linked lists, which are independent of table size.
func (al *AdjacencyList) rehash(tableSize int) {
	tableSize = nextPowerOfTwo(tableSize)
	al.table = make([]int32, tableSize)
	al.tableMask = uint32(tableSize - 1)
	for i := range al.table {
		al.table[i] = noEdge
	}
	for idx := range al.edges {
		if al.edges[idx].typ == 0 {
			continue // tombstone
		}
		al.edges[idx].hashNext = noEdge
		al.linkHash(int32(idx))
	}
}

func (al *AdjacencyList) linkHash(idx int32) {
	e := &al.edges[idx]
	b := al.bucketOf(e.from, e.to, e.typ)
	e.hashNext = al.table[b]
	al.table[b] = idx
}

func (al *AdjacencyList) unlinkHash(idx int32) {
	e := &al.edges[idx]
	b := al.bucketOf(e.from, e.to, e.typ)
	cur := al.table[b]
	if cur == idx {
		al.table[b] = e.hashNext
		return
	}
	for cur != noEdge {
		next := al.edges[cur].hashNext
		if next == idx {
			al.edges[cur].hashNext = e.hashNext
			return
		}
		cur = next
	}
}

// linkOutbound/linkInbound append the edge to the *tail* of the endpoint's
// list, so walking head->...->tail via nextOut/nextIn visits edges in
// insertion order (FIFO), as the package contract requires.
func (al *AdjacencyList) linkOutbound(idx int32) {
	e := &al.edges[idx]
	tail := al.lastOut[e.from]
	e.prevOut = tail
	e.nextOut = noEdge
	if tail != noEdge {
		al.edges[tail].nextOut = idx
	} else {
		al.firstOut[e.from] = idx
	}
	al.lastOut[e.from] = idx
}

func (al *AdjacencyList) unlinkOutbound(idx int32) {
	e := &al.edges[idx]
	if e.prevOut != noEdge {
		al.edges[e.prevOut].nextOut = e.nextOut
	} else {
		al.firstOut[e.from] = e.nextOut
	}
	if e.nextOut != noEdge {
		al.edges[e.nextOut].prevOut = e.prevOut
	} else {
		al.lastOut[e.from] = e.prevOut
	}
}

func (al *AdjacencyList) linkInbound(idx int32) {
	e := &al.edges[idx]
	tail := al.lastIn[e.to]
	e.prevIn = tail
	e.nextIn = noEdge
	if tail != noEdge {
		al.edges[tail].nextIn = idx
	} else {
		al.firstIn[e.to] = idx
	}
	al.lastIn[e.to] = idx
}

func (al *AdjacencyList) unlinkInbound(idx int32) {
	e := &al.edges[idx]
	if e.prevIn != noEdge {
		al.edges[e.prevIn].nextIn = e.nextIn
	} else {
		al.firstIn[e.to] = e.nextIn
	}
	if e.nextIn != noEdge {
		al.edges[e.nextIn].prevIn = e.prevIn
	} else {
		al.lastIn[e.to] = e.prevIn
	}
}
