package ir

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/augur/pkg/symbol"
)

func TestFunctionIRSets(t *testing.T) {
	funcIR := NewFunctionIR()
	funcIR.AddGet(symbol.NewName("a.attr"))
	funcIR.AddGet(symbol.NewName("a.attr")) // deduped by ID
	funcIR.AddSet(symbol.NewName("b"))
	funcIR.AddDel(symbol.NewName("c"))
	funcIR.AddCall(symbol.Call{Name: "fn()"})

	assert.Len(t, funcIR.Gets, 1)
	assert.Len(t, funcIR.Sets, 1)
	assert.Len(t, funcIR.Dels, 1)
	assert.Len(t, funcIR.Calls, 1)
	assert.False(t, funcIR.IsEmpty())
	assert.True(t, NewFunctionIR().IsEmpty())
}

func TestFunctionIRUnion(t *testing.T) {
	a := NewFunctionIR()
	a.AddGet(symbol.NewName("x"))
	a.AddCall(symbol.Call{Name: "f()"})

	b := NewFunctionIR()
	b.AddGet(symbol.NewName("y"))
	b.AddSet(symbol.NewName("z"))

	a.Union(b)
	assert.Len(t, a.Gets, 2)
	assert.Len(t, a.Sets, 1)
	assert.Len(t, a.Calls, 1)
	// The source is unchanged.
	assert.Len(t, b.Gets, 1)
}

func TestFunctionIRCopy(t *testing.T) {
	orig := NewFunctionIR()
	orig.AddGet(symbol.NewName("x"))

	cp := orig.Copy()
	cp.AddGet(symbol.NewName("y"))

	assert.Len(t, orig.Gets, 1)
	assert.Len(t, cp.Gets, 2)
}

func TestFunctionIRMarshalSorted(t *testing.T) {
	funcIR := NewFunctionIR()
	funcIR.AddGet(symbol.NewName("zebra"))
	funcIR.AddGet(symbol.NewName("apple"))

	raw, err := json.Marshal(funcIR)
	require.NoError(t, err)

	var decoded struct {
		Gets []string `json:"gets"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, []string{"apple", "zebra"}, decoded.Gets)
}

func TestFileIROrderAndReplace(t *testing.T) {
	fileIR := NewFileIR("test.py", nil)

	first := symbol.Func{Name: "f", Interface: &symbol.CallInterface{}}
	second := symbol.Func{Name: "g", Interface: &symbol.CallInterface{}}

	irF := NewFunctionIR()
	irF.AddGet(symbol.NewName("a"))
	fileIR.Set(first, irF)
	fileIR.Set(second, NewFunctionIR())

	// Redefinition replaces in place without reordering.
	irF2 := NewFunctionIR()
	irF2.AddGet(symbol.NewName("b"))
	fileIR.Set(symbol.Func{Name: "f", Interface: &symbol.CallInterface{}}, irF2)

	assert.Equal(t, 2, fileIR.Len())
	syms := fileIR.Symbols()
	require.Len(t, syms, 2)
	assert.Equal(t, "f", syms[0].ID())
	assert.Equal(t, "g", syms[1].ID())

	got, ok := fileIR.GetByID("f")
	require.True(t, ok)
	assert.Contains(t, got.Gets, "b")
	assert.NotContains(t, got.Gets, "a")
}

func TestFileIRSymbolLookup(t *testing.T) {
	fileIR := NewFileIR("test.py", nil)
	fn := symbol.Func{Name: "f", Interface: &symbol.CallInterface{}}
	fileIR.Set(fn, NewFunctionIR())

	got, ok := fileIR.Symbol("f")
	require.True(t, ok)
	assert.Equal(t, "f", got.ID())

	_, ok = fileIR.Symbol("missing")
	assert.False(t, ok)
}

func TestFileIRMarshalOrdered(t *testing.T) {
	fileIR := NewFileIR("test.py", nil)
	fileIR.Set(symbol.Func{Name: "zeta", Interface: &symbol.CallInterface{}}, NewFunctionIR())
	fileIR.Set(symbol.Func{Name: "alpha", Interface: &symbol.CallInterface{}}, NewFunctionIR())

	raw, err := json.Marshal(fileIR)
	require.NoError(t, err)

	// Definition order, not alphabetical.
	assert.Less(t, strings.Index(string(raw), "zeta"), strings.Index(string(raw), "alpha"))
}
