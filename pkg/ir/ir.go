// Package ir holds the intermediate representation produced by analysis:
// the attribute accesses and calls of each function, and the per-file map
// from definitions to their results.
package ir

import (
	"encoding/json"
	"sort"

	"github.com/panbanda/augur/pkg/context"
	"github.com/panbanda/augur/pkg/symbol"
)

// FunctionIR records the names a single function gets, sets, and deletes,
// and the calls it makes. Sets are keyed by symbol ID so repeated accesses
// collapse to one entry.
type FunctionIR struct {
	Gets  map[string]symbol.Name `json:"-"`
	Sets  map[string]symbol.Name `json:"-"`
	Dels  map[string]symbol.Name `json:"-"`
	Calls map[string]symbol.Call `json:"-"`
}

// NewFunctionIR returns an empty FunctionIR.
func NewFunctionIR() *FunctionIR {
	return &FunctionIR{
		Gets:  map[string]symbol.Name{},
		Sets:  map[string]symbol.Name{},
		Dels:  map[string]symbol.Name{},
		Calls: map[string]symbol.Call{},
	}
}

func (f *FunctionIR) AddGet(n symbol.Name)  { f.Gets[n.ID()] = n }
func (f *FunctionIR) AddSet(n symbol.Name)  { f.Sets[n.ID()] = n }
func (f *FunctionIR) AddDel(n symbol.Name)  { f.Dels[n.ID()] = n }
func (f *FunctionIR) AddCall(c symbol.Call) { f.Calls[c.ID()] = c }

// Union merges other into f in place.
func (f *FunctionIR) Union(other *FunctionIR) {
	if other == nil {
		return
	}
	for k, v := range other.Gets {
		f.Gets[k] = v
	}
	for k, v := range other.Sets {
		f.Sets[k] = v
	}
	for k, v := range other.Dels {
		f.Dels[k] = v
	}
	for k, v := range other.Calls {
		f.Calls[k] = v
	}
}

// Copy returns a deep copy of f. Call targets are shared, not cloned.
func (f *FunctionIR) Copy() *FunctionIR {
	out := NewFunctionIR()
	out.Union(f)
	return out
}

// IsEmpty reports whether the IR records nothing at all.
func (f *FunctionIR) IsEmpty() bool {
	return len(f.Gets) == 0 && len(f.Sets) == 0 && len(f.Dels) == 0 && len(f.Calls) == 0
}

func sortedNames(set map[string]symbol.Name) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON renders each set as a sorted list of names.
func (f *FunctionIR) MarshalJSON() ([]byte, error) {
	calls := make([]string, 0, len(f.Calls))
	for id := range f.Calls {
		calls = append(calls, id)
	}
	sort.Strings(calls)
	return json.Marshal(map[string][]string{
		"gets":  sortedNames(f.Gets),
		"sets":  sortedNames(f.Sets),
		"dels":  sortedNames(f.Dels),
		"calls": calls,
	})
}

type entry struct {
	sym symbol.Symbol
	ir  *FunctionIR
}

// FileIR maps a file's analysed definitions to their IR, in definition
// order. Setting an already present symbol replaces its IR in place, so the
// latest definition of a name wins without reordering.
type FileIR struct {
	Path    string
	Context *context.Context

	order   []string
	entries map[string]*entry
}

// NewFileIR returns an empty FileIR for the given file and its module-level
// context.
func NewFileIR(path string, ctx *context.Context) *FileIR {
	return &FileIR{Path: path, Context: ctx, entries: map[string]*entry{}}
}

// Set binds the IR for a symbol, replacing any previous binding.
func (f *FileIR) Set(sym symbol.Symbol, funcIR *FunctionIR) {
	id := sym.ID()
	if e, ok := f.entries[id]; ok {
		e.sym = sym
		e.ir = funcIR
		return
	}
	f.order = append(f.order, id)
	f.entries[id] = &entry{sym: sym, ir: funcIR}
}

// Get returns the IR recorded for a symbol.
func (f *FileIR) Get(sym symbol.Symbol) (*FunctionIR, bool) {
	return f.GetByID(sym.ID())
}

// GetByID returns the IR recorded under a symbol ID.
func (f *FileIR) GetByID(id string) (*FunctionIR, bool) {
	e, ok := f.entries[id]
	if !ok {
		return nil, false
	}
	return e.ir, true
}

// Symbol returns the symbol recorded under an ID.
func (f *FileIR) Symbol(id string) (symbol.Symbol, bool) {
	e, ok := f.entries[id]
	if !ok {
		return nil, false
	}
	return e.sym, true
}

// Symbols returns the analysed symbols in definition order.
func (f *FileIR) Symbols() []symbol.Symbol {
	out := make([]symbol.Symbol, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.entries[id].sym)
	}
	return out
}

// Len is the number of analysed definitions.
func (f *FileIR) Len() int { return len(f.order) }

// MarshalJSON renders the file IR as an object keyed by symbol name, in
// definition order.
func (f *FileIR) MarshalJSON() ([]byte, error) {
	out := []byte{'{'}
	for i, id := range f.order {
		if i > 0 {
			out = append(out, ',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.entries[id].ir)
		if err != nil {
			return nil, err
		}
		out = append(out, key...)
		out = append(out, ':')
		out = append(out, val...)
	}
	return append(out, '}'), nil
}

// ImportsIR collects the file IR of every followed import, keyed by module
// name.
type ImportsIR map[string]*FileIR
