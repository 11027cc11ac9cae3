package adjacency_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/assetgraph/adjacency"
)

func TestAddEdge_IdempotentAndZeroType(t *testing.T) {
	al := adjacency.New()
	a := al.AddNode()
	b := al.AddNode()

	ok, err := al.AddEdge(a, b, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = al.AddEdge(a, b, 1)
	require.NoError(t, err)
	assert.False(t, ok, "second insert of same triple must be idempotent")

	_, err = al.AddEdge(a, b, 0)
	assert.ErrorIs(t, err, adjacency.ErrZeroEdgeType)

	_, err = al.AddEdge(a, adjacency.NilNodeId, 1)
	assert.ErrorIs(t, err, adjacency.ErrInvalidNode)
}

func TestBidirectionalConsistency(t *testing.T) {
	al := adjacency.New()
	a := al.AddNode()
	b := al.AddNode()
	c := al.AddNode()

	_, err := al.AddEdge(a, b, 1)
	require.NoError(t, err)
	_, err = al.AddEdge(a, c, 2)
	require.NoError(t, err)

	assert.True(t, al.HasEdge(a, b, 1))
	assert.Contains(t, al.GetNodesConnectedFrom(a, adjacency.OneType(1)), b)
	assert.Contains(t, al.GetNodesConnectedTo(b, adjacency.OneType(1)), a)

	assert.False(t, al.HasEdge(a, b, 2))
	assert.NotContains(t, al.GetNodesConnectedFrom(a, adjacency.OneType(2)), b)
}

func TestRemoveEdge(t *testing.T) {
	al := adjacency.New()
	a := al.AddNode()
	b := al.AddNode()
	_, err := al.AddEdge(a, b, 1)
	require.NoError(t, err)

	require.NoError(t, al.RemoveEdge(a, b, 1))
	assert.False(t, al.HasEdge(a, b, 1))
	assert.Empty(t, al.GetNodesConnectedFrom(a, adjacency.AnyType()))
	assert.Empty(t, al.GetNodesConnectedTo(b, adjacency.AnyType()))

	err = al.RemoveEdge(a, b, 1)
	assert.ErrorIs(t, err, adjacency.ErrEdgeNotFound)
}

func TestInsertionOrderIsFIFO(t *testing.T) {
	al := adjacency.New()
	a := al.AddNode()
	targets := make([]adjacency.NodeId, 5)
	for i := range targets {
		targets[i] = al.AddNode()
		_, err := al.AddEdge(a, targets[i], 1)
		require.NoError(t, err)
	}
	got := al.GetNodesConnectedFrom(a, adjacency.AnyType())
	assert.Equal(t, targets, got)
}

func TestEdgeSlotReuseAfterRemove(t *testing.T) {
	al := adjacency.New()
	a := al.AddNode()
	b := al.AddNode()
	c := al.AddNode()

	_, err := al.AddEdge(a, b, 1)
	require.NoError(t, err)
	require.NoError(t, al.RemoveEdge(a, b, 1))
	before := al.Stats().EdgeCapacity

	_, err = al.AddEdge(a, c, 1)
	require.NoError(t, err)
	assert.Equal(t, before, al.Stats().EdgeCapacity, "removed slot should be reused, not grow capacity")
}

func TestSerializeRoundTrip(t *testing.T) {
	al := adjacency.New()
	ids := make([]adjacency.NodeId, 20)
	for i := range ids {
		ids[i] = al.AddNode()
	}
	for i := 0; i < len(ids)-1; i++ {
		_, err := al.AddEdge(ids[i], ids[i+1], adjacency.EdgeType(1+i%3))
		require.NoError(t, err)
	}
	require.NoError(t, al.RemoveEdge(ids[0], ids[1], 1))

	data, err := al.Marshal()
	require.NoError(t, err)
	restored, err := adjacency.Unmarshal(data)
	require.NoError(t, err)

	assert.Equal(t, al.GetAllEdges(), restored.GetAllEdges())
	for _, id := range ids {
		if diff := cmp.Diff(al.GetNodesConnectedFrom(id, adjacency.AnyType()), restored.GetNodesConnectedFrom(id, adjacency.AnyType())); diff != "" {
			t.Fatalf("outbound neighbours of %v differ after round-trip (-want +got):\n%s", id, diff)
		}
	}
	assert.Equal(t, al.Stats().LiveEdges, restored.Stats().LiveEdges)
}

func TestUnsupportedWireVersionRejected(t *testing.T) {
	w := adjacency.Wire{Version: adjacency.WireVersion + 1}
	_, err := adjacency.FromWire(w)
	assert.ErrorIs(t, err, adjacency.ErrUnsupportedVersion)
}

func TestLargeScaleInsertAndIterate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large-scale resize test in -short mode")
	}
	const nodes = 2000
	const edgesPerNode = 5

	al := adjacency.New()
	ids := make([]adjacency.NodeId, nodes)
	for i := range ids {
		ids[i] = al.AddNode()
	}

	rng := rand.New(rand.NewSource(1))
	seen := make(map[[3]int]bool)
	for _, from := range ids {
		for k := 0; k < edgesPerNode; k++ {
			to := ids[rng.Intn(nodes)]
			typ := adjacency.EdgeType(1 + rng.Intn(4))
			key := [3]int{int(from), int(to), int(typ)}
			ok, err := al.AddEdge(from, to, typ)
			require.NoError(t, err)
			if ok {
				seen[key] = true
			}
		}
	}

	assert.Equal(t, len(seen), len(al.GetAllEdges()))
	for key := range seen {
		from, to, typ := adjacency.NodeId(key[0]), adjacency.NodeId(key[1]), adjacency.EdgeType(key[2])
		assert.True(t, al.HasEdge(from, to, typ), fmt.Sprintf("expected edge %v", key))
	}
	// A disjoint sample of triples that were never inserted must report false.
	missing := [3]int{-1, -1, -1}
	_ = missing
	assert.False(t, al.HasEdge(adjacency.NodeId(nodes+1), ids[0], 1))
}
