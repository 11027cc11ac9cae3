package graph

// Actions is the handle a DFS Enter callback uses to steer the traversal:
// Stop aborts the whole walk immediately (no further Enter/Exit calls, not
// even the Exit of nodes already on the stack); SkipChildren skips only the
// subtree of the node currently being entered but still calls its Exit once
// that node's (empty, because skipped) child loop completes.
type Actions struct {
	stop bool
	skip bool
}

// Stop aborts the entire traversal; DFS returns the context value returned
// by the Enter call that requested the stop.
func (a *Actions) Stop() { a.stop = true }

// SkipChildren skips the subtree of the node currently being entered.
func (a *Actions) SkipChildren() { a.skip = true }

// Visitor groups the optional pre-order (Enter) and post-order (Exit) hooks
// for DFS. Enter may return a new context value of type C, threaded down to
// that node's children; if Enter is nil the incoming context is passed
// through unchanged. Exit, if non-nil, runs after all of a node's children
// (that weren't skipped) have been fully explored.
type Visitor[TNode any, C any] struct {
	Enter func(id NodeId, node TNode, ctx C, actions *Actions) C
	Exit  func(id NodeId, node TNode, ctx C)
}

// DFSOptions configures a DFS walk. StartNodeId defaults to the graph's
// root; if both are unset, DFS fails with ErrNoRootOrStart. GetChildren
// defaults to forward traversal (children = outbound neighbours, any edge
// type) when nil.
type DFSOptions[TNode any, C any] struct {
	Visit          Visitor[TNode, C]
	StartNodeId    *NodeId
	GetChildren    func(id NodeId) []NodeId
	InitialContext C
}

type dfsFrame[TNode any, C any] struct {
	id       NodeId
	node     TNode
	children []NodeId
	idx      int
	ctx      C
}

// DFS runs a pre-order (and optional post-order) depth-first traversal.
// A node is marked visited on Enter and is never re-entered. DFS is
// implemented iteratively with an explicit stack (not recursion), so it is
// safe on graphs far deeper than the goroutine's stack would comfortably
// recurse through.
//
// DFS is a free function, not a Graph method, because it introduces its own
// type parameter C (the traversal context) independent of TNode — Go does
// not allow a generic method to declare additional type parameters beyond
// its receiver's.
func DFS[TNode any, C any](g *Graph[TNode], opts DFSOptions[TNode, C]) (C, error) {
	var zero C
	start, err := resolveStart(g, opts.StartNodeId)
	if err != nil {
		return zero, err
	}

	getChildren := opts.GetChildren
	if getChildren == nil {
		getChildren = func(id NodeId) []NodeId { return g.GetNodeIdsConnectedFrom(id, AnyType()) }
	}

	visited := make(map[NodeId]bool)
	var stack []*dfsFrame[TNode, C]
	actions := &Actions{}
	last := opts.InitialContext

	enter := func(id NodeId, ctx C) (C, bool) {
		node, ok := g.GetNode(id)
		if !ok {
			return ctx, false
		}
		visited[id] = true
		actions.stop = false
		actions.skip = false
		newCtx := ctx
		if opts.Visit.Enter != nil {
			newCtx = opts.Visit.Enter(id, node, ctx, actions)
		}
		if actions.stop {
			return newCtx, true
		}
		var children []NodeId
		if !actions.skip {
			children = getChildren(id)
		}
		stack = append(stack, &dfsFrame[TNode, C]{id: id, node: node, children: children, ctx: newCtx})
		return newCtx, false
	}

	if ctx, stop := enter(start, opts.InitialContext); stop {
		return ctx, nil
	} else {
		last = ctx
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		descended := false
		for top.idx < len(top.children) {
			child := top.children[top.idx]
			top.idx++
			if visited[child] {
				continue
			}
			ctx, stop := enter(child, top.ctx)
			if stop {
				return ctx, nil
			}
			last = ctx
			descended = true
			break
		}
		if descended {
			continue
		}
		stack = stack[:len(stack)-1]
		if opts.Visit.Exit != nil {
			opts.Visit.Exit(top.id, top.node, top.ctx)
		}
		last = top.ctx
	}
	return last, nil
}

func resolveStart[TNode any](g *Graph[TNode], start *NodeId) (NodeId, error) {
	if start != nil {
		return *start, nil
	}
	if root, ok := g.RootNodeId(); ok {
		return root, nil
	}
	return NilNodeId, ErrNoRootOrStart
}

// Traverse runs a forward DFS (children = outbound neighbours matching
// spec) from start (or the graph's root). visit is called on Enter for each
// node; returning false skips that node's subtree without aborting the rest
// of the walk.
func Traverse[TNode any](g *Graph[TNode], visit func(id NodeId) bool, start *NodeId, spec TypeSpec) error {
	_, err := DFS(g, DFSOptions[TNode, struct{}]{
		StartNodeId: start,
		GetChildren: func(id NodeId) []NodeId { return g.GetNodeIdsConnectedFrom(id, spec) },
		Visit: Visitor[TNode, struct{}]{
			Enter: func(id NodeId, _ TNode, ctx struct{}, actions *Actions) struct{} {
				if !visit(id) {
					actions.SkipChildren()
				}
				return ctx
			},
		},
	})
	return err
}

// TraverseAncestors runs a backward DFS (children = inbound neighbours
// matching spec) from start.
func TraverseAncestors[TNode any](g *Graph[TNode], start NodeId, visit func(id NodeId) bool, spec TypeSpec) error {
	_, err := DFS(g, DFSOptions[TNode, struct{}]{
		StartNodeId: &start,
		GetChildren: func(id NodeId) []NodeId { return g.GetNodeIdsConnectedTo(id, spec) },
		Visit: Visitor[TNode, struct{}]{
			Enter: func(id NodeId, _ TNode, ctx struct{}, actions *Actions) struct{} {
				if !visit(id) {
					actions.SkipChildren()
				}
				return ctx
			},
		},
	})
	return err
}

// BFS runs a queue-based forward traversal (children = outbound, any edge
// type) from the graph's root, and returns the NodeId at which visit first
// returned true, or nil if no node matched. visit receives the node that was
// actually popped from the queue on each call.
//
// Complexity: O(V+E).
func (g *Graph[TNode]) BFS(visit func(id NodeId) bool) (*NodeId, error) {
	start, err := resolveStart(g, nil)
	if err != nil {
		return nil, err
	}
	if !g.HasNode(start) {
		return nil, ErrNodeNotFound
	}

	visited := map[NodeId]bool{start: true}
	queue := []NodeId{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visit(id) {
			found := id
			return &found, nil
		}
		for _, child := range g.GetNodeIdsConnectedFrom(id, AnyType()) {
			if !visited[child] {
				visited[child] = true
				queue = append(queue, child)
			}
		}
	}
	return nil, nil
}

// FindAncestor returns the first node matching match in a backward DFS from
// start (start itself is tested first), stopping the walk as soon as one is
// found. The match is the first in DFS order, not necessarily the nearest.
func FindAncestor[TNode any](g *Graph[TNode], start NodeId, match func(NodeId) bool, spec TypeSpec) (NodeId, bool) {
	return findOne(g, start, match, spec, g.GetNodeIdsConnectedTo)
}

// FindDescendant returns the first node matching match in a forward DFS from
// start (start itself is tested first), stopping the walk as soon as one is
// found. The match is the first in DFS order, not necessarily the nearest.
func FindDescendant[TNode any](g *Graph[TNode], start NodeId, match func(NodeId) bool, spec TypeSpec) (NodeId, bool) {
	return findOne(g, start, match, spec, g.GetNodeIdsConnectedFrom)
}

func findOne[TNode any](g *Graph[TNode], start NodeId, match func(NodeId) bool, spec TypeSpec, children func(NodeId, TypeSpec) []NodeId) (NodeId, bool) {
	var found NodeId
	ok := false
	_, _ = DFS(g, DFSOptions[TNode, struct{}]{
		StartNodeId: &start,
		GetChildren: func(id NodeId) []NodeId { return children(id, spec) },
		Visit: Visitor[TNode, struct{}]{
			Enter: func(id NodeId, _ TNode, ctx struct{}, actions *Actions) struct{} {
				if match(id) {
					found, ok = id, true
					actions.Stop()
				}
				return ctx
			},
		},
	})
	return found, ok
}

// FindAncestors collects every ancestor of start (via backward DFS, start
// itself included) matching match, skipping further ascent past each match
// (a matched ancestor's own ancestors are not searched).
func FindAncestors[TNode any](g *Graph[TNode], start NodeId, match func(NodeId) bool, spec TypeSpec) []NodeId {
	return findAll(g, start, match, spec, g.GetNodeIdsConnectedTo)
}

// FindDescendants collects every descendant of start (via forward DFS, start
// itself included) matching match, skipping further descent past each match.
func FindDescendants[TNode any](g *Graph[TNode], start NodeId, match func(NodeId) bool, spec TypeSpec) []NodeId {
	return findAll(g, start, match, spec, g.GetNodeIdsConnectedFrom)
}

func findAll[TNode any](g *Graph[TNode], start NodeId, match func(NodeId) bool, spec TypeSpec, children func(NodeId, TypeSpec) []NodeId) []NodeId {
	var found []NodeId
	_, _ = DFS(g, DFSOptions[TNode, struct{}]{
		StartNodeId: &start,
		GetChildren: func(id NodeId) []NodeId { return children(id, spec) },
		Visit: Visitor[TNode, struct{}]{
			Enter: func(id NodeId, _ TNode, ctx struct{}, actions *Actions) struct{} {
				if match(id) {
					found = append(found, id)
					actions.SkipChildren()
				}
				return ctx
			},
		},
	})
	return found
}
