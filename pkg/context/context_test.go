package context

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/augur/pkg/diagnostics"
	"github.com/panbanda/augur/pkg/locator"
	"github.com/panbanda/augur/pkg/parser"
	"github.com/panbanda/augur/pkg/symbol"
)

func compile(t *testing.T, src string) (*Context, *diagnostics.Session) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "target.py")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	p := parser.New()
	defer p.Close()
	res, err := p.ParseFile(path)
	require.NoError(t, err)

	sess := diagnostics.NewSessionWriter(&bytes.Buffer{})
	sess.EnterFile(path)
	resolver := locator.NewResolver(locator.DefaultRoots(path, nil))

	ctx, err := CompileRootContext(res, resolver, sess)
	require.NoError(t, err)
	return ctx, sess
}

func TestScopeChain(t *testing.T) {
	root := NewContext(nil, "a.py")
	root.Add(symbol.NewName("outer"), false)

	child := NewContext(root, "")
	assert.Equal(t, "a.py", child.File)
	assert.True(t, child.InChain("outer"))
	assert.False(t, child.Declares("outer"))
	assert.Same(t, root, child.Root())

	// A non-argument rebind of a visible name stays in the outer scope.
	child.Add(symbol.NewName("outer"), false)
	assert.False(t, child.Declares("outer"))

	// Parameters always shadow.
	child.Add(symbol.NewName("outer"), true)
	assert.True(t, child.Declares("outer"))
}

func TestRemoveUnbindsNearestScope(t *testing.T) {
	root := NewContext(nil, "a.py")
	root.Add(symbol.NewName("x"), false)
	child := NewContext(root, "")

	child.Remove("x")
	assert.False(t, root.Declares("x"))
}

func TestCompileRootContextDefinitions(t *testing.T) {
	ctx, _ := compile(t, `
def top(a, b):
    pass

class Widget:
    def __init__(self, size):
        self.size = size

CONSTANT = 10
first = second = "chained"
`)

	fn, err := ctx.GetFunc("top")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, fn.Interface.Args)

	cls, err := ctx.GetClass("Widget")
	require.NoError(t, err)
	require.NotNil(t, cls.Interface)
	assert.Equal(t, []string{"self", "size"}, cls.Interface.Args)

	assert.True(t, ctx.InChain("CONSTANT"))
	assert.True(t, ctx.InChain("first"))
	assert.True(t, ctx.InChain("second"))
}

func TestCompileRootContextDunders(t *testing.T) {
	ctx, _ := compile(t, "x = 1\n")
	assert.True(t, ctx.InChain("__name__"))
	assert.True(t, ctx.InChain("__file__"))
	assert.True(t, ctx.InChain("print"))
}

func TestCompileRootContextImports(t *testing.T) {
	ctx, _ := compile(t, `
import os
import os.path as osp
from collections import OrderedDict
from json import dumps as to_json
`)

	sym, ok := ctx.Lookup("os")
	require.True(t, ok)
	imp, ok := sym.(symbol.Import)
	require.True(t, ok)
	assert.Equal(t, "os", imp.QualifiedName)

	sym, ok = ctx.Lookup("osp")
	require.True(t, ok)
	imp = sym.(symbol.Import)
	assert.Equal(t, "os.path", imp.QualifiedName)

	sym, ok = ctx.Lookup("OrderedDict")
	require.True(t, ok)
	imp = sym.(symbol.Import)
	assert.Equal(t, "collections.OrderedDict", imp.QualifiedName)
	assert.Equal(t, "collections", imp.ModuleName)

	sym, ok = ctx.Lookup("to_json")
	require.True(t, ok)
	imp = sym.(symbol.Import)
	assert.Equal(t, "json.dumps", imp.QualifiedName)
}

func TestCompileRootContextWildcardImport(t *testing.T) {
	ctx, sess := compile(t, "from os.path import *\n")

	starred := ctx.StarredImports()
	require.Len(t, starred, 1)
	assert.Equal(t, "os.path", starred[0].QualifiedName)
	assert.Equal(t, "os.path.*", starred[0].ID())
	assert.Equal(t, 1, sess.TotalBadness())
}

func TestCompileRootContextConditionalBindings(t *testing.T) {
	ctx, _ := compile(t, `
if flag:
    chosen = 1
else:
    chosen = 2

for item in items:
    last = item

with open("f") as fh:
    data = fh.read()
`)

	assert.True(t, ctx.InChain("chosen"))
	assert.True(t, ctx.InChain("item"))
	assert.True(t, ctx.InChain("last"))
	assert.True(t, ctx.InChain("fh"))
	assert.True(t, ctx.InChain("data"))
}

func TestCompileRootContextLambda(t *testing.T) {
	ctx, _ := compile(t, "double = lambda n: n * 2\n")

	fn, err := ctx.GetFunc("double")
	require.NoError(t, err)
	assert.Equal(t, []string{"n"}, fn.Interface.Args)
}

func TestCompileRootContextNamedtuple(t *testing.T) {
	ctx, _ := compile(t, `
from collections import namedtuple

Point = namedtuple("Point", ["x", "y"])
Pair = namedtuple("Pair", "left right")
`)

	cls, err := ctx.GetClass("Point")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, cls.Interface.Args)

	cls, err = ctx.GetClass("Pair")
	require.NoError(t, err)
	assert.Equal(t, []string{"left", "right"}, cls.Interface.Args)
}

func TestCompileRootContextGlobalIsError(t *testing.T) {
	_, sess := compile(t, "global x\n")
	assert.Equal(t, 5, sess.TotalBadness())
}

func TestGetCallTarget(t *testing.T) {
	ctx, sess := compile(t, `
import math

def helper():
    pass

value = 10
`)

	sym, err := ctx.GetCallTarget("helper()", nil, sess)
	require.NoError(t, err)
	require.NotNil(t, sym)
	assert.Equal(t, "helper", sym.ID())

	sym, err = ctx.GetCallTarget("math.sqrt()", nil, sess)
	require.NoError(t, err)
	require.NotNil(t, sym)
	_, isImport := sym.(symbol.Import)
	assert.True(t, isImport)

	// A call to a plain variable is reported but resolves to nil.
	before := sess.TotalBadness()
	sym, err = ctx.GetCallTarget("value()", nil, sess)
	require.NoError(t, err)
	assert.Nil(t, sym)
	assert.Equal(t, before, sess.TotalBadness(), "procedural parameter is info only")

	// A completely unknown callee warns.
	sym, err = ctx.GetCallTarget("mystery()", nil, sess)
	require.NoError(t, err)
	assert.Nil(t, sym)
	assert.Equal(t, before+1, sess.TotalBadness())
}

func TestGetFuncSuggestion(t *testing.T) {
	ctx, _ := compile(t, "def compute_total(a):\n    pass\n")

	_, err := ctx.GetFunc("compute_totl")
	require.Error(t, err)
	nf, ok := err.(*SymbolNotFoundError)
	require.True(t, ok)
	assert.Equal(t, "compute_total", nf.Suggestion)
}
