package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/assetgraph/graph"
)

func chain(t *testing.T, n int) (*graph.Graph[string], []graph.NodeId) {
	t.Helper()
	g := graph.New[string]()
	ids := make([]graph.NodeId, n)
	for i := 0; i < n; i++ {
		id, err := g.AddNode(string(rune('A'+i)), string(rune('A'+i)))
		require.NoError(t, err)
		ids[i] = id
	}
	for i := 0; i < n-1; i++ {
		_, err := g.AddDefaultEdge(ids[i], ids[i+1])
		require.NoError(t, err)
	}
	return g, ids
}

func TestOrphanPruningCascade(t *testing.T) {
	g, ids := chain(t, 3) // A -> B -> C
	g.SetRootNodeId(ids[0])

	require.NoError(t, g.RemoveEdge(ids[0], ids[1], graph.DefaultEdgeType, true))

	assert.False(t, g.HasNode(ids[1]), "B should be pruned once unreachable from root")
	assert.False(t, g.HasNode(ids[2]), "C should cascade-prune once B is gone")
	assert.True(t, g.HasNode(ids[0]))
}

func TestRemoveNodeCascadesDeletion(t *testing.T) {
	g, ids := chain(t, 3)
	g.SetRootNodeId(ids[0])

	require.NoError(t, g.RemoveNode(ids[1]))
	for _, e := range g.GetAllEdges() {
		assert.NotEqual(t, ids[1], e.From)
		assert.NotEqual(t, ids[1], e.To)
	}
}

func TestDFSOrderAndSkipChildren(t *testing.T) {
	g := graph.New[string]()
	a, _ := g.AddNode("a", "a")
	b, _ := g.AddNode("b", "b")
	c, _ := g.AddNode("c", "c")
	d, _ := g.AddNode("d", "d")
	_, _ = g.AddDefaultEdge(a, b)
	_, _ = g.AddDefaultEdge(a, c)
	_, _ = g.AddDefaultEdge(b, d)
	g.SetRootNodeId(a)

	var order []graph.NodeId
	_, err := graph.DFS(g, graph.DFSOptions[string, struct{}]{
		Visit: graph.Visitor[string, struct{}]{
			Enter: func(id graph.NodeId, _ string, ctx struct{}, actions *graph.Actions) struct{} {
				order = append(order, id)
				if id == b {
					actions.SkipChildren()
				}
				return ctx
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []graph.NodeId{a, b, c}, order, "d must be skipped because b's subtree was skipped")
}

func TestDFSStopAbortsImmediately(t *testing.T) {
	g, ids := chain(t, 5)
	g.SetRootNodeId(ids[0])

	var order []graph.NodeId
	_, err := graph.DFS(g, graph.DFSOptions[string, struct{}]{
		Visit: graph.Visitor[string, struct{}]{
			Enter: func(id graph.NodeId, _ string, ctx struct{}, actions *graph.Actions) struct{} {
				order = append(order, id)
				if id == ids[2] {
					actions.Stop()
				}
				return ctx
			},
			Exit: func(id graph.NodeId, _ string, _ struct{}) {
				t.Fatalf("Exit must not run after Stop, got exit(%v)", id)
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, ids[:3], order)
}

func TestBFSPassesPoppedNode(t *testing.T) {
	g, ids := chain(t, 4)
	g.SetRootNodeId(ids[0])

	var seen []graph.NodeId
	found, err := g.BFS(func(id graph.NodeId) bool {
		seen = append(seen, id)
		return id == ids[2]
	})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, ids[2], *found)
	assert.Equal(t, ids[:3], seen)
}

func TestFindDescendantsSkipsMatchedSubtree(t *testing.T) {
	g := graph.New[string]()
	a, _ := g.AddNode("a", "a")
	b, _ := g.AddNode("b", "b")
	c, _ := g.AddNode("c", "c")
	_, _ = g.AddDefaultEdge(a, b)
	_, _ = g.AddDefaultEdge(b, c)

	found := graph.FindDescendants(g, a, func(id graph.NodeId) bool { return id == b || id == c }, graph.AnyType())
	assert.Equal(t, []graph.NodeId{b}, found, "c must not be visited: b's subtree is skipped once matched")
}

func TestReplaceNodeIdsConnectedTo(t *testing.T) {
	g := graph.New[string]()
	from, _ := g.AddNode("from", "from")
	keep, _ := g.AddNode("keep", "keep")
	drop, _ := g.AddNode("drop", "drop")
	fresh, _ := g.AddNode("fresh", "fresh")

	_, _ = g.AddDefaultEdge(from, keep)
	_, _ = g.AddDefaultEdge(from, drop)

	err := g.ReplaceNodeIdsConnectedTo(from, []graph.NodeId{fresh}, func(id graph.NodeId) bool { return id == drop }, graph.DefaultEdgeType)
	require.NoError(t, err)

	got := g.GetNodeIdsConnectedFrom(from, graph.AnyType())
	assert.ElementsMatch(t, []graph.NodeId{keep, fresh}, got)
}

func TestSerializeRoundTrip(t *testing.T) {
	g, ids := chain(t, 6)
	g.SetRootNodeId(ids[0])

	data, err := g.Marshal()
	require.NoError(t, err)
	restored, err := graph.Unmarshal[string](data)
	require.NoError(t, err)

	assert.Equal(t, g.NodeCount(), restored.NodeCount())
	root, ok := restored.RootNodeId()
	require.True(t, ok)
	assert.Equal(t, ids[0], root)
	assert.ElementsMatch(t, g.GetAllEdges(), restored.GetAllEdges())
	for _, id := range ids {
		v, ok := restored.GetNode(id)
		require.True(t, ok)
		orig, _ := g.GetNode(id)
		assert.Equal(t, orig, v)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g, ids := chain(t, 3)
	g.SetRootNodeId(ids[0])
	clone := g.Clone()

	require.NoError(t, clone.RemoveNode(ids[1]))
	assert.True(t, g.HasNode(ids[1]), "mutating the clone must not affect the original")
	assert.False(t, clone.HasNode(ids[1]))
}

func TestAddEdgeRequiresLiveNodes(t *testing.T) {
	g := graph.New[string]()
	a, _ := g.AddNode("a", "a")
	_, err := g.AddEdge(a, graph.NodeId(999), graph.DefaultEdgeType)
	assert.ErrorIs(t, err, graph.ErrNodeNotFound)
}

func TestDuplicateContentKeyRejected(t *testing.T) {
	g := graph.New[string]()
	_, err := g.AddNode("dup", "a")
	require.NoError(t, err)
	_, err = g.AddNode("dup", "b")
	assert.ErrorIs(t, err, graph.ErrDuplicateContentKey)
}

func TestIsOrphanedNodeWithoutRoot(t *testing.T) {
	g := graph.New[string]()
	a, _ := g.AddNode("a", "a")
	b, _ := g.AddNode("b", "b")
	assert.True(t, g.IsOrphanedNode(b))
	_, _ = g.AddDefaultEdge(a, b)
	assert.False(t, g.IsOrphanedNode(b))
}
