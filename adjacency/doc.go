// Package adjacency implements the compact, bit-packed edge store that backs
// the asset graph: a typed directed multigraph keyed by (from, to, type).
//
// Edges live in one flat, geometrically-grown array. Each slot is threaded
// onto three singly/doubly linked structures at once: a hash bucket chain
// keyed by hash(from, to, type) for O(1) expected lookups, a doubly linked
// "outbound" list per from-node, and a doubly linked "inbound" list per
// to-node. Removing an edge tombstones its slot for later reuse rather than
// compacting the array, so NodeId/edge-index stability is preserved across a
// single build.
//
// This package has no notion of node *payloads* — it only tracks which node
// indices exist and how they're wired together. The node-payload map, root
// tracking, and traversal algorithms live one layer up, in package graph.
//
//	al := adjacency.New()
//	a := al.AddNode()
//	b := al.AddNode()
//	al.AddEdge(a, b, 1)
//	al.HasEdge(a, b, 1) // true
package adjacency
