package symbols_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/assetgraph/graph"
	"github.com/katalvlaran/assetgraph/symbols"
)

type fixture struct {
	t     *testing.T
	g     *graph.Graph[*symbols.Node]
	table *symbols.SymbolTable
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{t: t, g: graph.New[*symbols.Node](), table: symbols.NewSymbolTable()}
}

func (f *fixture) addAsset(key, filePath string, exports ...symbols.ExportSymbol) graph.NodeId {
	f.t.Helper()
	n := symbols.NewAssetNode(key, filePath)
	n.Asset.HasSymbols = true
	n.Asset.Symbols = exports
	id, err := f.g.AddNode(key, n)
	require.NoError(f.t, err)
	return id
}

func (f *fixture) addDependency(key, specifier string, source *graph.NodeId, imports ...symbols.ImportSymbol) graph.NodeId {
	f.t.Helper()
	n := symbols.NewDependencyNode(key, specifier)
	n.Dependency.HasSymbols = true
	n.Dependency.Symbols = imports
	n.Dependency.SourceAssetId = source
	id, err := f.g.AddNode(key, n)
	require.NoError(f.t, err)
	return id
}

func (f *fixture) link(from, to graph.NodeId) {
	f.t.Helper()
	_, err := f.g.AddDefaultEdge(from, to)
	require.NoError(f.t, err)
}

func (f *fixture) node(id graph.NodeId) *symbols.Node {
	n, ok := f.g.GetNode(id)
	require.True(f.t, ok)
	return n
}

func (f *fixture) dep(id graph.NodeId) *symbols.Dependency { return f.node(id).Dependency }
func (f *fixture) asset(id graph.NodeId) *symbols.Asset     { return f.node(id).Asset }

// es is a named (non-weak) export/re-export declaration.
func es(exported, local symbols.SymbolId) symbols.ExportSymbol {
	return symbols.ExportSymbol{Exported: exported, Local: local}
}

// namedImport is a real (non-weak) use of a symbol.
func namedImport(exported, local symbols.SymbolId) symbols.ImportSymbol {
	return symbols.ImportSymbol{Exported: exported, Local: local}
}

// weakImport is a pure re-export binding.
func weakImport(exported, local symbols.SymbolId) symbols.ImportSymbol {
	return symbols.ImportSymbol{Exported: exported, Local: local, Weak: true}
}

func starReexport() symbols.ImportSymbol {
	return symbols.ImportSymbol{Exported: symbols.StarSymbol, Local: symbols.StarSymbol}
}

func starExport() symbols.ExportSymbol {
	return symbols.ExportSymbol{Exported: symbols.StarSymbol, Local: symbols.StarSymbol}
}

// buildReexportChain builds: root -> D1:{bar} -> A:'export {bar} from b' -> D2:{bar weak} -> B.
// D1.UsedSymbolsDown is pre-seeded with {bar}, simulating the external
// entry-point demand a real bundler would establish before the first
// propagation (root nodes have no asset visitor of their own).
func (f *fixture) buildReexportChain(bExports ...symbols.ExportSymbol) (a, b, d1, d2 graph.NodeId) {
	bar := f.table.Intern("bar")
	a = f.addAsset("A", "A", es(bar, bar))
	b = f.addAsset("B", "B", bExports...)
	d1 = f.addDependency("D1", "./a", nil, namedImport(bar, bar))
	d2 = f.addDependency("D2", "./b", &a, weakImport(bar, bar))
	f.link(d1, a)
	f.link(a, d2)
	f.link(d2, b)
	f.dep(d1).UsedSymbolsDown[bar] = struct{}{}
	return a, b, d1, d2
}

func TestScenario1_NamedReexportUnused(t *testing.T) {
	f := newFixture(t)
	bar := f.table.Intern("bar")
	a, b, d1, d2 := f.buildReexportChain(es(bar, bar))

	p := symbols.NewPropagator(f.g, f.table, nil)
	diags := p.Propagate(symbols.PropagateInput{ChangedAssets: []graph.ContentKey{"A"}})

	assert.Empty(t, diags)
	assert.Empty(t, f.asset(a).UsedSymbols, "A.usedSymbols must end empty: bar is a pure re-export, not a direct use")
	assert.Equal(t, map[symbols.SymbolId]struct{}{bar: {}}, f.dep(d2).UsedSymbolsDown)

	up := f.dep(d1).UsedSymbolsUp
	require.Contains(t, up, bar)
	require.NotNil(t, up[bar])
	assert.Equal(t, graph.ContentKey("B"), up[bar].Asset)
	assert.Equal(t, bar, up[bar].Symbol)
	_ = b
}

func TestScenario2_MissingExport(t *testing.T) {
	f := newFixture(t)
	foo := f.table.Intern("foo")
	_, _, d1, _ := f.buildReexportChain(es(foo, foo)) // B declares only {foo}, not bar

	p := symbols.NewPropagator(f.g, f.table, nil)
	diags := p.Propagate(symbols.PropagateInput{ChangedAssets: []graph.ContentKey{"A"}})

	require.Contains(t, diags, d1)
	require.Len(t, diags[d1], 1)
	assert.Contains(t, diags[d1][0].Message, "does not export 'bar'")
	assert.Equal(t, "B", diags[d1][0].FilePath)

	for id, ds := range diags {
		if id != d1 {
			t.Fatalf("unexpected diagnostic on node %v: %v", id, ds)
		}
	}
}

func TestScenario3_NamespaceReexportAmbiguity(t *testing.T) {
	f := newFixture(t)
	aSym := f.table.Intern("a")

	x := f.addAsset("X", "X", es(aSym, aSym))
	y := f.addAsset("Y", "Y", es(aSym, aSym))
	mid := f.addAsset("A", "A") // no own exports; pure re-export hub
	root := f.addAsset("root", "<root>")

	d1 := f.addDependency("D1", "./a", &root, starReexport())
	dx := f.addDependency("Dx", "./x", &mid, starReexport())
	dy := f.addDependency("Dy", "./y", &mid, starReexport())

	f.link(root, d1)
	f.link(d1, mid)
	f.link(mid, dx)
	f.link(dx, x)
	f.link(mid, dy)
	f.link(dy, y)

	p := symbols.NewPropagator(f.g, f.table, nil)
	_ = p.Propagate(symbols.PropagateInput{ChangedAssets: []graph.ContentKey{"root", "A", "X", "Y"}})

	assert.Contains(t, f.asset(mid).UsedSymbols, symbols.StarSymbol, "ambiguity forces a full namespace import on the hub")
	assert.Contains(t, f.dep(dx).UsedSymbolsDown, symbols.StarSymbol)
	assert.Contains(t, f.dep(dy).UsedSymbolsDown, symbols.StarSymbol)

	// D1 itself declares a literal `* -> *` import, so every symbol set along
	// this chain is keyed by the namespace symbol, never by the individual
	// name "a": Dx and Dy both resolve `*` (to X and to Y), the hub records
	// that as an ambiguous namespace reexport and resolves `*` to itself, so
	// D1's usedSymbolsUp maps `*` to A.
	up := f.dep(d1).UsedSymbolsUp
	require.Contains(t, up, symbols.StarSymbol)
	require.NotNil(t, up[symbols.StarSymbol])
	assert.Equal(t, graph.ContentKey("A"), up[symbols.StarSymbol].Asset)
	_ = aSym
}

func TestPropagationIsIdempotent(t *testing.T) {
	f := newFixture(t)
	bar := f.table.Intern("bar")
	a, b, d1, d2 := f.buildReexportChain(es(bar, bar))

	p := symbols.NewPropagator(f.g, f.table, nil)
	first := p.Propagate(symbols.PropagateInput{ChangedAssets: []graph.ContentKey{"A"}})
	firstUp := cloneResolutions(f.dep(d1).UsedSymbolsUp)

	second := p.Propagate(symbols.PropagateInput{ChangedAssets: []graph.ContentKey{"A"}, PreviousErrors: first})

	assert.Equal(t, first, second)
	assert.Equal(t, firstUp, cloneResolutions(f.dep(d1).UsedSymbolsUp))

	for _, id := range []graph.NodeId{a, b} {
		asset := f.asset(id)
		assert.False(t, asset.UsedSymbolsDownDirty, "asset %v left down-dirty after a settled propagation", id)
		assert.False(t, asset.UsedSymbolsUpDirty, "asset %v left up-dirty after a settled propagation", id)
	}
	for _, id := range []graph.NodeId{d1, d2} {
		dep := f.dep(id)
		assert.False(t, dep.UsedSymbolsDownDirty, "dependency %v left down-dirty after a settled propagation", id)
		assert.False(t, dep.UsedSymbolsUpDirtyDown, "dependency %v left up-dirty-down after a settled propagation", id)
		assert.False(t, dep.UsedSymbolsUpDirtyUp, "dependency %v left up-dirty-up after a settled propagation", id)
	}
}

func TestDownSupersetOfUp(t *testing.T) {
	f := newFixture(t)
	bar := f.table.Intern("bar")
	foo := f.table.Intern("foo")
	_, _, d1, d2 := f.buildReexportChain(es(foo, foo)) // bar missing on B

	p := symbols.NewPropagator(f.g, f.table, nil)
	_ = p.Propagate(symbols.PropagateInput{ChangedAssets: []graph.ContentKey{"A"}})

	for _, id := range []graph.NodeId{d1, d2} {
		dep := f.dep(id)
		for s := range dep.UsedSymbolsUp {
			_, ok := dep.UsedSymbolsDown[s]
			assert.True(t, ok, "usedSymbolsUp key %d must be a subset of usedSymbolsDown", s)
		}
	}
	_ = bar
}

func TestDeterministicResolvedOrder(t *testing.T) {
	f := newFixture(t)
	z := f.table.Intern("z")
	a := f.table.Intern("aa")
	m := f.table.Intern("mm")

	b := f.addAsset("B", "B", es(z, z), es(a, a), es(m, m))
	d1 := f.addDependency("D1", "./b", nil, namedImport(z, z), namedImport(a, a), namedImport(m, m))
	f.link(d1, b)
	f.dep(d1).UsedSymbolsDown[z] = struct{}{}
	f.dep(d1).UsedSymbolsDown[a] = struct{}{}
	f.dep(d1).UsedSymbolsDown[m] = struct{}{}

	p := symbols.NewPropagator(f.g, f.table, nil)
	_ = p.Propagate(symbols.PropagateInput{ChangedAssets: []graph.ContentKey{"B"}})

	order := f.dep(d1).ResolvedOrder()
	require.Len(t, order, 3)
	for i := 1; i < len(order); i++ {
		assert.True(t, order[i-1] < order[i], "resolved order must be ascending SymbolId")
	}
}

func TestExcludedDependency(t *testing.T) {
	f := newFixture(t)
	unused := f.table.Intern("unused")

	b := f.addAsset("B", "B", es(unused, unused))
	group, err := f.g.AddNode("G", symbols.NewAssetGroupNode("G", false))
	require.NoError(t, err)

	d1 := f.addDependency("D1", "./b", nil, weakImport(unused, unused))
	f.link(d1, group)
	f.link(group, b)

	p := symbols.NewPropagator(f.g, f.table, nil)
	_ = p.Propagate(symbols.PropagateInput{ChangedAssets: []graph.ContentKey{"B"}})

	assert.True(t, f.dep(d1).Excluded, "an unused weak import resolving through a side-effect-free group must be excluded")
	assert.Empty(t, f.dep(d1).UsedSymbolsUp)
}

// TestIncrementalPropagation builds two independent reexport chains and
// verifies that a second Propagate naming only the first chain's asset as
// changed leaves every symbol set on the second chain byte-identical.
func TestIncrementalPropagation(t *testing.T) {
	f := newFixture(t)
	bar := f.table.Intern("bar")
	baz := f.table.Intern("baz")

	a1 := f.addAsset("A1", "A1", es(bar, bar))
	b1 := f.addAsset("B1", "B1", es(bar, bar))
	d1 := f.addDependency("D1", "./a1", nil, namedImport(bar, bar))
	d2 := f.addDependency("D2", "./b1", &a1, weakImport(bar, bar))
	f.link(d1, a1)
	f.link(a1, d2)
	f.link(d2, b1)
	f.dep(d1).UsedSymbolsDown[bar] = struct{}{}

	a2 := f.addAsset("A2", "A2", es(baz, baz))
	b2 := f.addAsset("B2", "B2", es(baz, baz))
	d3 := f.addDependency("D3", "./a2", nil, namedImport(baz, baz))
	d4 := f.addDependency("D4", "./b2", &a2, weakImport(baz, baz))
	f.link(d3, a2)
	f.link(a2, d4)
	f.link(d4, b2)
	f.dep(d3).UsedSymbolsDown[baz] = struct{}{}

	p := symbols.NewPropagator(f.g, f.table, nil)
	_ = p.Propagate(symbols.PropagateInput{ChangedAssets: []graph.ContentKey{"A1", "A2"}})

	wantA2Used := map[symbols.SymbolId]struct{}{}
	for k, v := range f.asset(a2).UsedSymbols {
		wantA2Used[k] = v
	}
	wantD3Up := cloneResolutions(f.dep(d3).UsedSymbolsUp)
	wantD4Down := map[symbols.SymbolId]struct{}{}
	for k, v := range f.dep(d4).UsedSymbolsDown {
		wantD4Down[k] = v
	}

	_ = p.Propagate(symbols.PropagateInput{ChangedAssets: []graph.ContentKey{"A1"}})

	assert.Equal(t, wantA2Used, f.asset(a2).UsedSymbols, "an untouched chain's asset usedSymbols must not change")
	assert.Equal(t, wantD3Up, cloneResolutions(f.dep(d3).UsedSymbolsUp))
	assert.Equal(t, wantD4Down, f.dep(d4).UsedSymbolsDown)

	// sanity: the first chain's own resolution is still correct after the
	// incremental run, proving the second Propagate did real work on A1.
	up := f.dep(d1).UsedSymbolsUp
	require.Contains(t, up, bar)
	require.NotNil(t, up[bar])
	assert.Equal(t, graph.ContentKey("B1"), up[bar].Asset)
	_ = b1
	_ = b2
}

func cloneResolutions(m map[symbols.SymbolId]*symbols.Resolution) map[symbols.SymbolId]symbols.Resolution {
	out := make(map[symbols.SymbolId]symbols.Resolution, len(m))
	for k, v := range m {
		if v != nil {
			out[k] = *v
		}
	}
	return out
}
