package graph_test

import (
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/katalvlaran/assetgraph/graph"
)

// ExampleGraph_Clone builds a tiny chain graph keyed by freshly generated
// content keys (the way a build coordinator mints a ContentKey per asset
// file) and demonstrates that Clone produces a structurally independent
// copy: mutating the original after cloning never shows up in the clone.
func ExampleGraph_Clone() {
	g := graph.New[string]()

	root := uuid.NewString()
	leaf := uuid.NewString()

	rootId, _ := g.AddNode(root, "root.js")
	leafId, _ := g.AddNode(leaf, "leaf.js")
	_, _ = g.AddDefaultEdge(rootId, leafId)
	g.SetRootNodeId(rootId)

	clone := g.Clone()

	_ = g.RemoveNode(leafId)

	fmt.Println("original node count:", g.NodeCount())
	fmt.Println("clone node count:", clone.NodeCount())
	fmt.Println("clone still has leaf:", clone.HasNode(leafId))
	// Output:
	// original node count: 1
	// clone node count: 2
	// clone still has leaf: true
}

// ExampleGraph_Stats_diff shows a before/after Stats comparison via
// go-cmp's structural diff.
func ExampleGraph_Stats_diff() {
	g := graph.New[string]()
	before := g.Stats()

	id, _ := g.AddNode(uuid.NewString(), "entry.js")
	g.SetRootNodeId(id)
	after := g.Stats()

	diff := cmp.Diff(before, after)
	fmt.Println(diff != "")
	// Output:
	// true
}
