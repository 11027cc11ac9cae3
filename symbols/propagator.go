package symbols

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-hclog"

	"github.com/katalvlaran/assetgraph/graph"
)

// depEdge is the single edge type used to link root->dependency,
// dependency->(asset_group->)asset, and asset->dependency (the asset's own
// declared imports) in an asset graph built for this package.
const depEdge graph.EdgeType = graph.DefaultEdgeType

// Diagnostic is a single propagation-time finding attached to a node —
// almost always a dependency whose requested symbol its target doesn't
// export.
type Diagnostic struct {
	NodeId   graph.NodeId
	Message  string
	FilePath string
	Loc      *SourceLocation
}

// PropagateInput is the argument to Propagator.Propagate.
type PropagateInput struct {
	// ChangedAssets is the set of ContentKeys of assets whose body may have
	// changed since the last propagation.
	ChangedAssets []graph.ContentKey
	// AssetGroupsWithRemovedParents is the set of NodeIds of asset groups
	// that lost at least one inbound dependency.
	AssetGroupsWithRemovedParents []graph.NodeId
	// PreviousErrors carries forward diagnostics for nodes this run doesn't
	// revisit; entries for removed nodes are pruned automatically.
	PreviousErrors map[graph.NodeId][]Diagnostic
}

// Propagator runs the two-phase symbol-propagation fixpoint over an asset
// graph built with package graph, instantiated as *graph.Graph[*Node].
type Propagator struct {
	g     *graph.Graph[*Node]
	table *SymbolTable
	log   hclog.Logger
}

// NewPropagator constructs a Propagator over g, interning symbol names
// through table. A nil logger defaults to hclog.NewNullLogger(), so a
// caller never has to wire logging just to call Propagate.
func NewPropagator(g *graph.Graph[*Node], table *SymbolTable, logger hclog.Logger) *Propagator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Propagator{g: g, table: table, log: logger}
}

// Propagate runs the down pass then the up pass and returns the resulting
// diagnostic map. Calling Propagate twice with no intervening mutation
// returns an equal map and leaves every dirty flag clear.
func (p *Propagator) Propagate(in PropagateInput) map[graph.NodeId][]Diagnostic {
	changedDownDeps := p.downPass(in.ChangedAssets, in.AssetGroupsWithRemovedParents)

	changedDeps := map[graph.NodeId]bool{}
	diagnostics := p.upPass(changedDownDeps, in.ChangedAssets, changedDeps)

	p.finalizeOrder(changedDeps)

	return p.mergeWithPrevious(diagnostics, in.PreviousErrors)
}

// mergeWithPrevious keeps prior diagnostics for nodes this run didn't
// revisit, drops entries for nodes no longer in the graph, and replaces the
// entry for any node this run did visit.
func (p *Propagator) mergeWithPrevious(fresh map[graph.NodeId][]Diagnostic, previous map[graph.NodeId][]Diagnostic) map[graph.NodeId][]Diagnostic {
	out := make(map[graph.NodeId][]Diagnostic, len(fresh)+len(previous))
	for id, diags := range fresh {
		out[id] = diags
	}
	for id, diags := range previous {
		if _, revisited := fresh[id]; revisited {
			continue
		}
		if !p.g.HasNode(id) {
			continue
		}
		out[id] = diags
	}
	return out
}

// ---- down pass -------------------------------------------------------

// downPass implements the "what is requested" pass: a work-queue
// walk seeded by changedAssets and assetGroupsWithRemovedParents, draining
// into unreachedAssets once the queue empties, until both are exhausted.
// The asset-level UsedSymbolsDownDirty flag is the work-queue membership
// test itself: enqueue sets it, the main loop clears it on dequeue, so a
// node already queued is never queued twice, and every flag left true after
// a complete downPass is one this pass failed to drain.
func (p *Propagator) downPass(changedAssets []graph.ContentKey, assetGroupsRemoved []graph.NodeId) []graph.NodeId {
	var queue []graph.NodeId
	enqueue := func(id graph.NodeId) {
		node, ok := p.g.GetNode(id)
		if !ok || node.Kind != KindAsset {
			return
		}
		if !node.Asset.UsedSymbolsDownDirty {
			node.Asset.UsedSymbolsDownDirty = true
			queue = append(queue, id)
		}
	}

	// unreached is the fallback pool of seed assets: changedAssets resolved
	// to NodeIds, plus every asset an asset group with a removed parent
	// points to. The work queue is fed by the down-pass visitor discovering
	// changed outgoing dependencies; unreached guarantees every seed is
	// still visited at least once even when nothing downstream of it
	// happens to change.
	unreached := map[graph.NodeId]bool{}
	for _, key := range changedAssets {
		if id, err := p.g.GetNodeIdByKey(key); err == nil {
			unreached[id] = true
		}
	}
	for _, groupId := range assetGroupsRemoved {
		for _, to := range p.g.GetNodeIdsConnectedFrom(groupId, graph.OneType(depEdge)) {
			if node, ok := p.g.GetNode(to); ok && node.Kind == KindAsset {
				unreached[to] = true
			}
		}
	}
	for id := range unreached {
		enqueue(id)
	}

	var allChanged []graph.NodeId
	for len(queue) > 0 || len(unreached) > 0 {
		if len(queue) == 0 {
			for id := range unreached {
				queue = append(queue, id)
				delete(unreached, id)
				break
			}
		}
		id := queue[0]
		queue = queue[1:]
		delete(unreached, id)

		node, ok := p.g.GetNode(id)
		if !ok {
			continue
		}
		if node.Kind != KindAsset {
			continue
		}
		node.Asset.UsedSymbolsDownDirty = false
		p.log.Trace("down pass visiting asset", "asset", node.Asset.FilePath)

		for _, depId := range p.visitAssetDown(id, node) {
			allChanged = append(allChanged, depId)
			if target, ok := p.dependencyTargetAsset(depId); ok {
				enqueue(target)
			}
		}
	}
	return allChanged
}

// visitAssetDown runs the down-pass asset-visitor algorithm
// and returns the outgoing dependencies whose usedSymbolsDown changed.
func (p *Propagator) visitAssetDown(id graph.NodeId, node *Node) []graph.NodeId {
	a := node.Asset
	incoming := p.incomingDeps(id)
	outgoing := p.outgoingDeps(id)

	newUsed := map[SymbolId]struct{}{}
	namespaceReexported := map[SymbolId]struct{}{}
	addAll := false
	isEntry := false

	if len(incoming) == 0 {
		newUsed[StarSymbol] = struct{}{}
		namespaceReexported[StarSymbol] = struct{}{}
	} else {
		hasOutgoingStarReexport := p.anyDeclaresStarReexport(outgoing)
		for _, depId := range incoming {
			depNode, _ := p.g.GetNode(depId)
			dep := depNode.Dependency
			if !dep.HasSymbols {
				if dep.SourceAssetId == nil {
					isEntry = true
				} else {
					addAll = true
				}
				continue
			}
			for s := range dep.UsedSymbolsDown {
				if p.table.IsStar(s) {
					newUsed[StarSymbol] = struct{}{}
					namespaceReexported[StarSymbol] = struct{}{}
					continue
				}
				if !a.HasSymbols || a.declaresExported(s) || a.declaresStar() {
					newUsed[s] = struct{}{}
				} else if hasOutgoingStarReexport && !p.table.IsDefault(s) {
					namespaceReexported[s] = struct{}{}
				}
			}
			dep.UsedSymbolsDownDirty = false
		}
	}
	if addAll {
		for _, es := range a.Symbols {
			newUsed[es.Exported] = struct{}{}
		}
	}

	a.UsedSymbols = newUsed

	var changed []graph.NodeId
	for _, depId := range outgoing {
		depNode, _ := p.g.GetNode(depId)
		dep := depNode.Dependency
		if !dep.HasSymbols {
			continue
		}

		var down map[SymbolId]struct{}
		if a.SideEffects() || addAll || isEntry || len(newUsed) > 0 || len(namespaceReexported) > 0 {
			down = p.computeOutgoingDown(a, dep, newUsed, namespaceReexported, addAll)
		} else {
			down = map[SymbolId]struct{}{}
		}

		if !symbolSetEqual(dep.UsedSymbolsDown, down) {
			dep.UsedSymbolsDown = down
			dep.UsedSymbolsDownDirty = true
			dep.UsedSymbolsUpDirtyDown = true
			changed = append(changed, depId)
		}
	}
	return changed
}

// computeOutgoingDown computes one outgoing dependency's usedSymbolsDown.
// used is A.usedSymbols passed by reference: entries identified as pure
// re-exports through a weak local binding are deleted from it in place, so
// a direct use and a pass-through re-export of the same name are
// distinguished correctly once every outgoing dependency has been visited.
func (p *Propagator) computeOutgoingDown(a *Asset, dep *Dependency, used map[SymbolId]struct{}, namespaceReexported map[SymbolId]struct{}, addAll bool) map[SymbolId]struct{} {
	down := map[SymbolId]struct{}{}
	inverse := a.inverseSymbols()
	hasInverse := a.HasSymbols && len(inverse) > 0

	for _, is := range dep.Symbols {
		if is.Exported == StarSymbol && is.Local == StarSymbol {
			if addAll {
				down[StarSymbol] = struct{}{}
			} else {
				for s := range namespaceReexported {
					down[s] = struct{}{}
				}
			}
			continue
		}

		s := is.Exported
		if !hasInverse || !is.Weak {
			down[s] = struct{}{}
			continue
		}

		r, ok := inverse[is.Local]
		if !ok {
			down[s] = struct{}{}
			continue
		}
		if _, hasStar := used[StarSymbol]; hasStar {
			down[s] = struct{}{}
			for x := range r {
				delete(used, x)
			}
			continue
		}
		intersection := map[SymbolId]struct{}{}
		for x := range r {
			if _, ok := used[x]; ok {
				intersection[x] = struct{}{}
			}
		}
		if len(intersection) > 0 {
			down[s] = struct{}{}
			for x := range intersection {
				delete(used, x)
			}
		}
	}
	return down
}

// ---- up pass -----------------------------------------------------------

// upPass implements the "where does it resolve" pass. Like downPass, it uses
// an asset-level dirty flag — UsedSymbolsUpDirty — as the work-queue
// membership test, so an asset already queued is never queued twice and a
// complete upPass leaves every asset's flag clear.
func (p *Propagator) upPass(changedDownDeps []graph.NodeId, changedAssets []graph.ContentKey, changedDeps map[graph.NodeId]bool) map[graph.NodeId][]Diagnostic {
	var queue []graph.NodeId
	enqueue := func(id graph.NodeId) {
		node, ok := p.g.GetNode(id)
		if !ok || node.Kind != KindAsset {
			return
		}
		if !node.Asset.UsedSymbolsUpDirty {
			node.Asset.UsedSymbolsUpDirty = true
			queue = append(queue, id)
		}
	}

	for _, depId := range changedDownDeps {
		depNode, ok := p.g.GetNode(depId)
		if !ok || depNode.Dependency == nil || !depNode.Dependency.UsedSymbolsUpDirtyDown {
			continue
		}
		if target, ok := p.dependencyTargetAsset(depId); ok {
			enqueue(target)
		}
	}
	for _, key := range changedAssets {
		if id, err := p.g.GetNodeIdByKey(key); err == nil {
			enqueue(id)
		}
	}

	diagnostics := map[graph.NodeId][]Diagnostic{}

	// A full post-order DFS from the root instead of the work-queue is an
	// available optimization once more than roughly half of all assets are
	// dirty, but produces an identical result; this package always uses the
	// queue-based walk, trading that large-graph optimization for one code
	// path that stays obviously correct.

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		node, ok := p.g.GetNode(id)
		if !ok || node.Kind != KindAsset {
			continue
		}
		node.Asset.UsedSymbolsUpDirty = false
		for _, diag := range p.visitAssetUp(id, node, changedDeps) {
			diagnostics[diag.NodeId] = append(diagnostics[diag.NodeId], diag)
		}

		for _, depId := range p.incomingDeps(id) {
			depNode, _ := p.g.GetNode(depId)
			if depNode.Dependency.UsedSymbolsUpDirtyUp {
				depNode.Dependency.UsedSymbolsUpDirtyUp = false
				if src, ok := p.dependencySourceAsset(depId); ok {
					enqueue(src)
				}
			}
		}
	}
	return diagnostics
}

// visitAssetUp runs the up-pass asset-visitor algorithm.
func (p *Propagator) visitAssetUp(id graph.NodeId, node *Node, changedDeps map[graph.NodeId]bool) []Diagnostic {
	a := node.Asset
	outgoing := p.outgoingDeps(id)
	incoming := p.incomingDeps(id)

	reexported := map[SymbolId]*Resolution{}
	reexportedSource := map[SymbolId]graph.NodeId{}
	// missingReexport records, for a re-exported name that failed to
	// resolve through a weak outgoing binding, the diagnostic that should
	// surface at whichever non-weak consumer actually requests it — the
	// weak link itself stays silent (a dropped re-export isn't an error;
	// GLOSSARY "Weak symbol"), but the failure is real and must not vanish.
	missingReexport := map[SymbolId]Diagnostic{}

	recordAmbiguous := func(s SymbolId, depId graph.NodeId) {
		p.log.Warn("ambiguous namespace reexport", "asset", a.FilePath, "symbol", p.table.Name(s))
		reexported[s] = &Resolution{Asset: node.Key, Symbol: s, HasSymbol: true}
		reexportedSource[s] = depId
		a.UsedSymbols[StarSymbol] = struct{}{}
	}
	record := func(s SymbolId, res *Resolution, depId graph.NodeId) {
		if prevSrc, ok := reexportedSource[s]; ok && prevSrc != depId {
			recordAmbiguous(s, depId)
			return
		}
		reexported[s] = res
		reexportedSource[s] = depId
	}

	for _, depId := range outgoing {
		depNode, _ := p.g.GetNode(depId)
		dep := depNode.Dependency

		if dep.Excluded {
			old := dep.UsedSymbolsUp
			dep.UsedSymbolsUp = map[SymbolId]*Resolution{}
			for s := range dep.UsedSymbolsDown {
				dep.UsedSymbolsUp[s] = nil
			}
			if !resolutionMapEqual(old, dep.UsedSymbolsUp) {
				changedDeps[depId] = true
			}
			// Excluded resolution is computed straight from UsedSymbolsDown
			// and consumed nowhere else; both flags are settled right here.
			dep.UsedSymbolsUpDirtyDown = false
			dep.UsedSymbolsUpDirtyUp = false
			continue
		}

		if dep.declaresStarReexport() {
			for s, res := range dep.UsedSymbolsUp {
				if p.table.IsDefault(s) {
					continue
				}
				record(s, res, depId)
			}
		}

		inverse := a.inverseSymbols()
		for s, res := range dep.UsedSymbolsUp {
			if _, inDown := dep.UsedSymbolsDown[s]; !inDown {
				continue
			}
			l, ok := dep.localFor(s)
			if !ok {
				continue
			}
			r, ok := inverse[l]
			if !ok {
				continue
			}
			for x := range r {
				record(x, res, depId)
			}
		}

		for _, is := range dep.Symbols {
			if is.Exported == StarSymbol && is.Local == StarSymbol {
				continue
			}
			if !is.Weak {
				continue
			}
			if _, down := dep.UsedSymbolsDown[is.Exported]; !down {
				continue
			}
			if _, up := dep.UsedSymbolsUp[is.Exported]; up {
				continue
			}
			r, ok := inverse[is.Local]
			if !ok {
				continue
			}
			filePath := a.FilePath
			if target, ok := p.dependencyTargetAsset(depId); ok {
				if tn, ok := p.g.GetNode(target); ok && tn.Asset != nil {
					filePath = tn.Asset.FilePath
				}
			}
			diag := Diagnostic{
				Message:  fmt.Sprintf("%s does not export '%s'", filePath, p.table.Name(is.Exported)),
				FilePath: filePath,
				Loc:      is.Loc,
			}
			for x := range r {
				if _, already := missingReexport[x]; !already {
					missingReexport[x] = diag
				}
			}
		}
	}

	var diags []Diagnostic
	for _, depId := range incoming {
		depNode, _ := p.g.GetNode(depId)
		dep := depNode.Dependency
		if !dep.HasSymbols {
			continue
		}

		old := dep.UsedSymbolsUp
		newUp := map[SymbolId]*Resolution{}
		for s := range dep.UsedSymbolsDown {
			switch {
			case !a.HasSymbols, a.BundleBehavior == BundleBehaviorIsolated, a.BundleBehavior == BundleBehaviorInline, p.table.IsStar(s):
				newUp[s] = &Resolution{Asset: node.Key, Symbol: s, HasSymbol: true}
			default:
				if _, ok := a.UsedSymbols[s]; ok {
					newUp[s] = &Resolution{Asset: node.Key, Symbol: s, HasSymbol: true}
				} else if res, ok := reexported[s]; ok {
					if a.SideEffects() {
						newUp[s] = &Resolution{Asset: node.Key, Symbol: s, HasSymbol: true}
					} else {
						newUp[s] = res
					}
				} else if dep.declaresStarReexport() || weakEntry(dep, s) {
					// a namespace re-export or a weak (pure re-export)
					// binding swallows its own miss silently; the failure,
					// if real, surfaces at whichever non-weak consumer
					// requests the same re-exported name (see
					// missingReexport above).
				} else if md, ok := missingReexport[s]; ok {
					md.NodeId = depId
					diags = append(diags, md)
				} else {
					diags = append(diags, p.missingExportDiagnostic(depId, dep, a, s))
				}
			}
		}

		dep.UsedSymbolsUp = newUp
		changed := !resolutionMapEqual(old, newUp)
		if changed {
			changedDeps[depId] = true
		}
		// UsedSymbolsUpDirtyUp is the signal the caller's post-visit scan
		// over incomingDeps reads to decide whether to re-enqueue the asset
		// that declared this dependency; it's set unconditionally so a
		// no-op recompute also clears a previously-true value.
		dep.UsedSymbolsUpDirtyUp = changed
		dep.UsedSymbolsUpDirtyDown = false
		dep.Excluded = dep.HasSymbols && len(newUp) == 0 && p.resolvesToSideEffectFreeGroup(depId)
	}

	return diags
}

// weakEntry reports whether dep's own declared import table marks s as a
// weak (pure re-export) binding.
func weakEntry(dep *Dependency, s SymbolId) bool {
	for _, is := range dep.Symbols {
		if is.Exported == s {
			return is.Weak
		}
	}
	return false
}

func (p *Propagator) missingExportDiagnostic(depId graph.NodeId, dep *Dependency, a *Asset, s SymbolId) Diagnostic {
	loc := dep.locFor(s)
	return Diagnostic{
		NodeId:   depId,
		Message:  fmt.Sprintf("%s does not export '%s'", a.FilePath, p.table.Name(s)),
		FilePath: a.FilePath,
		Loc:      loc,
	}
}

// ---- finalisation --------------------------------------------------------

// finalizeOrder re-sorts every changed dependency's UsedSymbolsUp keys into
// ascending SymbolId order, so downstream packaging sees deterministic
// ordering.
func (p *Propagator) finalizeOrder(changedDeps map[graph.NodeId]bool) {
	for depId := range changedDeps {
		node, ok := p.g.GetNode(depId)
		if !ok || node.Dependency == nil {
			continue
		}
		keys := make([]SymbolId, 0, len(node.Dependency.UsedSymbolsUp))
		for s := range node.Dependency.UsedSymbolsUp {
			keys = append(keys, s)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		node.Dependency.resolvedOrder = keys
	}
}

// ---- graph navigation helpers --------------------------------------------

// incomingDeps returns the Dependency nodes whose requests target id,
// transparently walking through any AssetGroup indirection.
func (p *Propagator) incomingDeps(id graph.NodeId) []graph.NodeId {
	var deps []graph.NodeId
	for _, from := range p.g.GetNodeIdsConnectedTo(id, graph.OneType(depEdge)) {
		node, ok := p.g.GetNode(from)
		if !ok {
			continue
		}
		switch node.Kind {
		case KindDependency:
			deps = append(deps, from)
		case KindAssetGroup:
			deps = append(deps, p.incomingDeps(from)...)
		}
	}
	return deps
}

// outgoingDeps returns the Dependency nodes an asset itself declares.
func (p *Propagator) outgoingDeps(id graph.NodeId) []graph.NodeId {
	var deps []graph.NodeId
	for _, to := range p.g.GetNodeIdsConnectedFrom(id, graph.OneType(depEdge)) {
		if node, ok := p.g.GetNode(to); ok && node.Kind == KindDependency {
			deps = append(deps, to)
		}
	}
	return deps
}

// dependencyTargetAsset resolves a dependency's target asset, following a
// single AssetGroup indirection hop if present.
func (p *Propagator) dependencyTargetAsset(depId graph.NodeId) (graph.NodeId, bool) {
	for _, to := range p.g.GetNodeIdsConnectedFrom(depId, graph.OneType(depEdge)) {
		node, ok := p.g.GetNode(to)
		if !ok {
			continue
		}
		if node.Kind == KindAsset {
			return to, true
		}
		if node.Kind == KindAssetGroup {
			for _, to2 := range p.g.GetNodeIdsConnectedFrom(to, graph.OneType(depEdge)) {
				if n2, ok := p.g.GetNode(to2); ok && n2.Kind == KindAsset {
					return to2, true
				}
			}
		}
	}
	return graph.NilNodeId, false
}

// dependencySourceAsset returns the asset that declared this dependency
// (its SourceAssetId field, which is part of the dependency's own record,
// not derived from graph edges).
func (p *Propagator) dependencySourceAsset(depId graph.NodeId) (graph.NodeId, bool) {
	node, ok := p.g.GetNode(depId)
	if !ok || node.Dependency == nil || node.Dependency.SourceAssetId == nil {
		return graph.NilNodeId, false
	}
	return *node.Dependency.SourceAssetId, true
}

// resolvesToSideEffectFreeGroup reports whether depId's sole outbound
// target is an AssetGroup with SideEffects == false.
func (p *Propagator) resolvesToSideEffectFreeGroup(depId graph.NodeId) bool {
	targets := p.g.GetNodeIdsConnectedFrom(depId, graph.OneType(depEdge))
	if len(targets) != 1 {
		return false
	}
	node, ok := p.g.GetNode(targets[0])
	return ok && node.Kind == KindAssetGroup && !node.AssetGroup.SideEffects
}

// anyDeclaresStarReexport reports whether any of the given dependency nodes
// declares a literal `* -> *` re-export entry.
func (p *Propagator) anyDeclaresStarReexport(depIds []graph.NodeId) bool {
	for _, depId := range depIds {
		if node, ok := p.g.GetNode(depId); ok && node.Dependency.declaresStarReexport() {
			return true
		}
	}
	return false
}

func symbolSetEqual(a, b map[SymbolId]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for s := range a {
		if _, ok := b[s]; !ok {
			return false
		}
	}
	return true
}

func resolutionMapEqual(a, b map[SymbolId]*Resolution) bool {
	if len(a) != len(b) {
		return false
	}
	for s, ra := range a {
		rb, ok := b[s]
		if !ok {
			return false
		}
		if (ra == nil) != (rb == nil) {
			return false
		}
		if ra != nil && *ra != *rb {
			return false
		}
	}
	return true
}
