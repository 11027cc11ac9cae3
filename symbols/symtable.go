package symbols

import "sync"

// SymbolId is an interned integer identifying a symbol name, the same way
// an external asset database would assign one id per export/import name.
type SymbolId uint32

const (
	// StarSymbol is the reserved id for "*", the module namespace.
	StarSymbol SymbolId = 0
	// DefaultSymbol is the reserved id for "default", the default export.
	DefaultSymbol SymbolId = 1
)

// SymbolTable interns symbol names to SymbolIds and back. It is the minimal
// stand-in for the asset database a real build coordinator would own —
// this module has no asset database of its own, so tests and examples
// construct one of these directly.
type SymbolTable struct {
	mu    sync.Mutex
	names []string
	ids   map[string]SymbolId
}

// NewSymbolTable returns a table with "*" and "default" pre-interned at
// StarSymbol and DefaultSymbol.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		names: []string{"*", "default"},
		ids:   map[string]SymbolId{"*": StarSymbol, "default": DefaultSymbol},
	}
}

// Intern returns the SymbolId for name, allocating a new one if name hasn't
// been seen before.
func (t *SymbolTable) Intern(name string) SymbolId {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.ids[name]; ok {
		return id
	}
	id := SymbolId(len(t.names))
	t.names = append(t.names, name)
	t.ids[name] = id
	return id
}

// Name returns the string a SymbolId was interned from.
func (t *SymbolTable) Name(id SymbolId) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if int(id) >= len(t.names) {
		return "<unknown symbol>"
	}
	return t.names[id]
}

// IsStar reports whether id is the namespace symbol "*".
func (t *SymbolTable) IsStar(id SymbolId) bool { return id == StarSymbol }

// IsDefault reports whether id is the default-export symbol "default".
func (t *SymbolTable) IsDefault(id SymbolId) bool { return id == DefaultSymbol }
