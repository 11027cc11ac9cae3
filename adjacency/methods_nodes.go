package adjacency

// AddNode appends a new node slot and returns its NodeId. NodeIds are
// allocated by a monotonically increasing counter and are never reused
// within the lifetime of this AdjacencyList.
//
// Complexity: O(1) amortized (the firstIn/firstOut slices grow geometrically
// via Go's append).
func (al *AdjacencyList) AddNode() NodeId {
	id := NodeId(al.nodeCount)
	al.nodeCount++
	al.firstIn = append(al.firstIn, noEdge)
	al.lastIn = append(al.lastIn, noEdge)
	al.firstOut = append(al.firstOut, noEdge)
	al.lastOut = append(al.lastOut, noEdge)
	return id
}
