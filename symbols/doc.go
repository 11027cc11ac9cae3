// Package symbols implements the cross-module symbol-propagation pass that
// drives dead-code elimination over an asset/dependency graph built with
// package graph.
//
// # Overview
//
// A Propagator runs a two-phase fixpoint over a *graph.Graph[*Node]:
//
//   - the down pass computes, for every asset, which of its exported symbols
//     are actually requested by its importers ("usedSymbols"), and pushes
//     that demand onto its own outgoing dependencies ("usedSymbolsDown");
//   - the up pass walks back from leaves to roots, resolving each incoming
//     dependency's requested symbols to the asset (and, for re-exports, the
//     original symbol name) that will actually satisfy them
//     ("usedSymbolsUp"), flags dependencies that resolve to nothing as
//     excluded, and collects per-dependency diagnostics for symbols that
//     don't exist.
//
// # When to use
//
// Call NewPropagator once per asset graph, then call Propagate after every
// batch of asset/dependency mutations, passing the set of assets whose body
// changed and any asset groups that lost a parent. Propagate is idempotent:
// calling it twice with no intervening mutation returns an equal diagnostic
// map and leaves every dirty flag clear.
//
// # Key features
//
//   - Reexport-aware: namespace (`export * from`) and named re-exports both
//     participate in the down/up dataflow, including the namespace-ambiguity
//     merge rule when two re-exports disagree.
//   - Incremental: only assets reachable (forward or backward) from a
//     changed seed are revisited; unrelated symbol sets are left untouched.
//   - Deterministic: every dependency's resolved symbol set is finalized in
//     ascending SymbolId order so downstream packaging sees a stable order.
//
// # Errors
//
// Propagate has no error return; symbol misresolution is reported as a Diagnostic attached to the offending
// dependency's NodeId, not as a Go error, because it does not abort the
// pass (see package graph's ambient error-handling convention for
// structural misuse, which IS fatal and surfaces as a returned error from
// graph's own mutators).
package symbols
