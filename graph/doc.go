// Package graph implements the generic labelled multigraph that sits on top
// of package adjacency: a node map (NodeId -> TNode payload), an optional
// root node, add/remove/update of nodes and edges with orphan pruning, and
// DFS/BFS traversals with enter/exit visitors and skip/stop actions.
//
// Graph is generic over the node payload type TNode. Edge types are plain
// graph.EdgeType values (an alias of adjacency.EdgeType); a caller defining
// a domain-specific edge-type enum (e.g. a "references"/"dynamic-import"
// set) declares it as typed EdgeType constants, the way package symbols
// declares its depEdge constant.
//
// Graph owns node payloads and the ContentKey -> NodeId side index;
// AdjacencyList owns edge storage. Neither owns memory belonging to an
// external database keyed by NodeId (see package symbols) — callers should
// not hold long-lived references to payload memory across mutations that
// might trigger an internal resize one layer down.
package graph
