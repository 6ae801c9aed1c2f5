// Package context implements lexical scope chains over symbol tables. A
// context is compiled for the module as a whole before analysis begins, and
// child contexts are pushed for each function, class, and comprehension
// scope encountered.
package context

import "github.com/panbanda/augur/pkg/symbol"

// SymbolTable is an insertion-ordered set of symbols keyed by ID. Re-adding
// an ID replaces the symbol without disturbing its position.
type SymbolTable struct {
	order   []string
	symbols map[string]symbol.Symbol
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: map[string]symbol.Symbol{}}
}

// Add binds a symbol, replacing any existing binding with the same ID.
func (t *SymbolTable) Add(sym symbol.Symbol) {
	id := sym.ID()
	if _, ok := t.symbols[id]; !ok {
		t.order = append(t.order, id)
	}
	t.symbols[id] = sym
}

// Get returns the symbol bound under an ID.
func (t *SymbolTable) Get(id string) (symbol.Symbol, bool) {
	sym, ok := t.symbols[id]
	return sym, ok
}

// Contains reports whether an ID is bound.
func (t *SymbolTable) Contains(id string) bool {
	_, ok := t.symbols[id]
	return ok
}

// Remove unbinds an ID if present.
func (t *SymbolTable) Remove(id string) {
	if _, ok := t.symbols[id]; !ok {
		return
	}
	delete(t.symbols, id)
	for i, o := range t.order {
		if o == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// Names returns the bound IDs in insertion order.
func (t *SymbolTable) Names() []string {
	return append([]string(nil), t.order...)
}

// Symbols returns the bound symbols in insertion order.
func (t *SymbolTable) Symbols() []symbol.Symbol {
	out := make([]symbol.Symbol, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.symbols[id])
	}
	return out
}

// Len is the number of bound symbols.
func (t *SymbolTable) Len() int { return len(t.order) }
