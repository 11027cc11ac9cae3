package symbols

import "github.com/katalvlaran/assetgraph/graph"

// NodeKind tags the variant a Node holds. The propagator switches on Kind
// rather than using interface dispatch — a deliberate tagged-sum-type
// choice: the propagator's hot path switches on a tag rather than paying
// for an interface call on every visit.
type NodeKind uint8

const (
	KindRoot NodeKind = iota
	KindAsset
	KindDependency
	KindAssetGroup
)

func (k NodeKind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindAsset:
		return "asset"
	case KindDependency:
		return "dependency"
	case KindAssetGroup:
		return "asset_group"
	default:
		return "unknown"
	}
}

// BundleBehavior is the asset-level bundling hint an asset database carries
// alongside its symbol table: whether the asset's exports may be merged
// freely, must stay in their own chunk, or must be inlined at every call
// site.
type BundleBehavior uint8

const (
	BundleBehaviorDefault BundleBehavior = iota
	BundleBehaviorIsolated
	BundleBehaviorInline
)

// SourceLocation is the source-frame a diagnostic points at.
type SourceLocation struct {
	FilePath string
	Line     int
	Column   int
}

// ExportSymbol is one entry of an asset's declared symbol table: exporting
// Local under the public name Exported.
type ExportSymbol struct {
	Exported SymbolId
	Local    SymbolId
}

// ImportSymbol is one entry of a dependency's declared symbol table:
// importing Exported (a name in the target asset) and binding it locally as
// Local. Weak marks a pure re-export binding that may be dropped if nothing
// downstream consumes it. Loc is the diagnostic source frame, if known.
type ImportSymbol struct {
	Exported SymbolId
	Local    SymbolId
	Weak     bool
	Loc      *SourceLocation
}

// Asset is the propagation-relevant payload of an `asset` node.
type Asset struct {
	FilePath       string
	AssetType      string
	BundleBehavior BundleBehavior

	// Symbols is the asset's declared export table. A nil slice with
	// HasSymbols false means "symbols unknown; assume anything"; a
	// non-nil-but-empty table (HasSymbols true, len(Symbols)==0)
	// means the asset is known to export nothing.
	Symbols    []ExportSymbol
	HasSymbols bool

	sideEffects bool

	UsedSymbols map[SymbolId]struct{}

	// UsedSymbolsDownDirty and UsedSymbolsUpDirty double as each pass's
	// work-queue membership flag: the down/up pass sets one true on enqueue
	// and clears it on dequeue, so after a complete Propagate both read
	// false for every asset.
	UsedSymbolsDownDirty bool
	UsedSymbolsUpDirty   bool
}

// SideEffects reports whether unused exports of this asset may be dropped
// entirely.
func (a *Asset) SideEffects() bool { return a.sideEffects }

// SetSideEffects sets the side-effects flag. This is a plain assignment,
// not an OR-only latch: the propagator reads the flag fresh on every visit
// rather than accumulating it across calls, so there's no reason to make
// it one-way.
func (a *Asset) SetSideEffects(v bool) { a.sideEffects = v }

// declaresExported reports whether the asset's own table explicitly exports
// s (not via a "*" catch-all entry).
func (a *Asset) declaresExported(s SymbolId) bool {
	for _, es := range a.Symbols {
		if es.Exported == s {
			return true
		}
	}
	return false
}

// declaresStar reports whether the asset declares a literal "*" export
// entry — the CommonJS-style "the whole export surface is dynamic" marker.
func (a *Asset) declaresStar() bool {
	return a.declaresExported(StarSymbol)
}

// inverseSymbols builds local -> set<exported> from the asset's declared
// table, used by both passes to find which of an asset's own re-exports a
// given local binding produces.
func (a *Asset) inverseSymbols() map[SymbolId]map[SymbolId]struct{} {
	inv := make(map[SymbolId]map[SymbolId]struct{}, len(a.Symbols))
	for _, es := range a.Symbols {
		set := inv[es.Local]
		if set == nil {
			set = map[SymbolId]struct{}{}
			inv[es.Local] = set
		}
		set[es.Exported] = struct{}{}
	}
	return inv
}

// Resolution is the down-stream answer to "which asset (and, for a
// renaming re-export, which of its symbols) actually satisfies this
// request". A nil *Resolution stored as a map value means the request
// resolves to no asset: an excluded dependency records nil for every
// requested symbol, and a re-export of such a symbol passes the nil on. An
// ambiguous namespace re-export is not stored as nil; it resolves to the
// re-exporting asset itself. A missing key means "not yet resolved".
type Resolution struct {
	Asset      graph.ContentKey
	Symbol     SymbolId
	HasSymbol  bool
}

// Dependency is the propagation-relevant payload of a `dependency` node.
type Dependency struct {
	Specifier     string
	SourceAssetId *graph.NodeId // nil means this dependency is an entry (no importing asset)

	// Symbols is the dependency's declared import table; nil with
	// HasSymbols false means "unknown": the target asset then treats the
	// dependency as an entry if SourceAssetId is nil and as addAll
	// otherwise, and the importing asset's down pass leaves its
	// UsedSymbolsDown untouched.
	Symbols    []ImportSymbol
	HasSymbols bool

	UsedSymbolsDown map[SymbolId]struct{}
	UsedSymbolsUp   map[SymbolId]*Resolution

	// UsedSymbolsDownDirty is set when the down pass recomputes
	// UsedSymbolsDown to a new value and cleared when the target asset's own
	// down-pass visit consumes it.
	UsedSymbolsDownDirty bool
	// UsedSymbolsUpDirtyDown is set alongside UsedSymbolsDownDirty and
	// cleared once the up pass has recomputed UsedSymbolsUp from the new
	// UsedSymbolsDown; it's what seeds the up pass's initial work queue.
	UsedSymbolsUpDirtyDown bool
	// UsedSymbolsUpDirtyUp is set when the up pass recomputes UsedSymbolsUp
	// to a new value and cleared once the asset that declared this
	// dependency (SourceAssetId) has been re-enqueued to see it.
	UsedSymbolsUpDirtyUp bool

	Excluded bool

	// resolvedOrder is the finalized, ascending-SymbolId key order of
	// UsedSymbolsUp, recomputed at the end of every up pass. Go maps have no
	// inherent order, so this is the concrete artifact downstream packaging
	// reads for a stable order.
	resolvedOrder []SymbolId
}

// ResolvedOrder returns the ascending-SymbolId key order of UsedSymbolsUp as
// of the last completed propagation.
func (d *Dependency) ResolvedOrder() []SymbolId { return d.resolvedOrder }

// declaresStarReexport reports whether this dependency's own import table
// contains a literal `* -> *` entry ("export * from ..." / "import * as ...").
func (d *Dependency) declaresStarReexport() bool {
	for _, is := range d.Symbols {
		if is.Exported == StarSymbol && is.Local == StarSymbol {
			return true
		}
	}
	return false
}

// localFor returns the local binding name a dependency's import table
// assigns to the given exported name, if declared.
func (d *Dependency) localFor(s SymbolId) (SymbolId, bool) {
	for _, is := range d.Symbols {
		if is.Exported == s {
			return is.Local, true
		}
	}
	return 0, false
}

// locFor returns the diagnostic source location declared for the given
// exported name, if any.
func (d *Dependency) locFor(s SymbolId) *SourceLocation {
	for _, is := range d.Symbols {
		if is.Exported == s {
			return is.Loc
		}
	}
	return nil
}

// AssetGroup is the propagation-relevant payload of an `asset_group` node:
// an indirection point a dependency resolves through before reaching one of
// several candidate assets (see GLOSSARY, "Asset group").
type AssetGroup struct {
	SideEffects bool
}

// Node is the tagged-union payload stored in a *graph.Graph[*Node] asset
// graph. Exactly one of Asset/Dependency/AssetGroup is non-nil, matching
// Kind; Root nodes carry none.
type Node struct {
	Kind NodeKind
	Key  graph.ContentKey

	Asset      *Asset
	Dependency *Dependency
	AssetGroup *AssetGroup
}

// NewRootNode returns a `root` node — the synthetic entry point representing
// "the runtime itself imports this", used as the DFS/BFS start of the asset
// graph.
func NewRootNode(key graph.ContentKey) *Node {
	return &Node{Kind: KindRoot, Key: key}
}

// NewAssetNode returns an `asset` node with an empty, not-yet-propagated
// payload.
func NewAssetNode(key graph.ContentKey, filePath string) *Node {
	return &Node{
		Kind: KindAsset,
		Key:  key,
		Asset: &Asset{
			FilePath:    filePath,
			UsedSymbols: map[SymbolId]struct{}{},
		},
	}
}

// NewDependencyNode returns a `dependency` node with an empty,
// not-yet-propagated payload.
func NewDependencyNode(key graph.ContentKey, specifier string) *Node {
	return &Node{
		Kind: KindDependency,
		Key:  key,
		Dependency: &Dependency{
			Specifier:       specifier,
			UsedSymbolsDown: map[SymbolId]struct{}{},
			UsedSymbolsUp:   map[SymbolId]*Resolution{},
		},
	}
}

// NewAssetGroupNode returns an `asset_group` node.
func NewAssetGroupNode(key graph.ContentKey, sideEffects bool) *Node {
	return &Node{
		Kind:       KindAssetGroup,
		Key:        key,
		AssetGroup: &AssetGroup{SideEffects: sideEffects},
	}
}
