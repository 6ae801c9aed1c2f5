package names

import (
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/augur/pkg/parser"
)

// exprOf parses src as a module and returns the first expression.
func exprOf(t *testing.T, src string) (*sitter.Node, []byte) {
	t.Helper()
	p := parser.New()
	defer p.Close()

	res, err := p.Parse([]byte(src), "test.py")
	require.NoError(t, err)

	stmt := res.Root().NamedChild(0)
	require.NotNil(t, stmt)
	require.Equal(t, parser.NodeExpressionStatement, stmt.Type())
	return stmt.NamedChild(0), res.Source
}

func TestOf(t *testing.T) {
	tests := []struct {
		src      string
		basename string
		fullname string
	}{
		{"my_var", "my_var", "my_var"},
		{"my_var.attr", "my_var", "my_var.attr"},
		{"my_var.attr.deeper", "my_var", "my_var.attr.deeper"},
		{"my_var[100]", "my_var", "my_var[]"},
		{"my_var[100].attr", "my_var", "my_var[].attr"},
		{"my_var[a][b].attr", "my_var", "my_var[][].attr"},
		{"fn()", "fn", "fn()"},
		{"fn(a, b).attr", "fn", "fn().attr"},
		{"obj.method().result", "obj", "obj.method().result"},
		{"(wrapped)", "wrapped", "wrapped"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			node, source := exprOf(t, tt.src)
			basename, fullname, err := Of(node, source)
			require.NoError(t, err)
			assert.Equal(t, tt.basename, basename)
			assert.Equal(t, tt.fullname, fullname)
		})
	}
}

func TestOfStarred(t *testing.T) {
	// A starred expression only parses in unpacking positions.
	p := parser.New()
	defer p.Close()
	res, err := p.Parse([]byte("f(*args.items)"), "test.py")
	require.NoError(t, err)

	call := res.Root().NamedChild(0).NamedChild(0)
	require.Equal(t, parser.NodeCall, call.Type())
	starred := parser.CallArguments(call)[0]

	basename, fullname, err := Of(starred, res.Source)
	require.NoError(t, err)
	assert.Equal(t, "args", basename)
	assert.Equal(t, "*args.items", fullname)
}

func TestOfUnnameable(t *testing.T) {
	tests := []struct {
		src  string
		kind string
	}{
		{"a + b", "operator"},
		{"not a", "operator"},
		{`"hello"`, "constant"},
		{"[1, 2]", "literal"},
		{"[x for x in xs]", "comprehension"},
		{"lambda: 1", "lambda"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			node, source := exprOf(t, tt.src)
			_, _, err := Of(node, source)
			require.Error(t, err)
			nerr, ok := err.(*Error)
			require.True(t, ok)
			assert.Equal(t, tt.kind, nerr.Kind)
		})
	}
}

func TestSafeOf(t *testing.T) {
	tests := []struct {
		src  string
		full string
	}{
		{"'string'", "@Str"},
		{"100", "@Int"},
		{"1.5", "@Float"},
		{"True", "@Bool"},
		{"None", "@None"},
		{"[1]", "@List"},
		{"(1, 2)", "@Tuple"},
		{"{'k': 1}", "@Dict"},
		{"a + b", "@BinOp"},
		{"-a", "@UnaryOp"},
		{"a and b", "@BoolOp"},
		{"a < b", "@Compare"},
		{"a if c else b", "@IfExp"},
		{"lambda: 1", "@Lambda"},
		{"[x for x in xs]", "@ListComp"},
		{"{x for x in xs}", "@SetComp"},
		{"{x: y for x in xs}", "@DictComp"},
		{"(x for x in xs)", "@GeneratorExp"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			node, source := exprOf(t, tt.src)
			_, full := SafeOf(node, source)
			assert.Equal(t, tt.full, full)
		})
	}
}

func TestSafeOfAttributeOnUnnameable(t *testing.T) {
	node, source := exprOf(t, "(a + b).attr")
	_, full := SafeOf(node, source)
	assert.Equal(t, "@BinOp.attr", full)
}

func TestGetattrReduction(t *testing.T) {
	tests := []struct {
		src      string
		basename string
		full     string
	}{
		{`getattr(a, "b")`, "getattr", "a.b"},
		{`getattr(a.x, "b")`, "getattr", "a.x.b"},
		{`getattr(getattr(x, "a"), "b")`, "getattr", "x.a.b"},
		{`hasattr(obj, "attr")`, "hasattr", "obj.attr"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			node, source := exprOf(t, tt.src)
			basename, full, err := Of(node, source)
			require.NoError(t, err)
			assert.Equal(t, tt.basename, basename)
			assert.Equal(t, tt.full, full)
		})
	}
}

func TestGetattrDynamicAttrStaysOpaque(t *testing.T) {
	node, source := exprOf(t, "getattr(a, name)")
	_, full, err := Of(node, source)
	require.NoError(t, err)
	assert.Equal(t, "getattr()", full)
}

func TestAttrAccessPair(t *testing.T) {
	node, source := exprOf(t, `getattr(a.b, "c")`)
	obj, attr, ok := AttrAccessPair("getattr", node, source)
	require.True(t, ok)
	assert.Equal(t, "a.b", obj)
	assert.Equal(t, "c", attr)
}

func TestAttrAccessPairNonLiteral(t *testing.T) {
	node, source := exprOf(t, "getattr(a, some_name)")
	_, _, ok := AttrAccessPair("getattr", node, source)
	assert.False(t, ok)
}

func TestAttrAccessPairNestedOtherCall(t *testing.T) {
	node, source := exprOf(t, `getattr(fn(x), "b")`)
	_, _, ok := AttrAccessPair("getattr", node, source)
	assert.False(t, ok)
}

func TestIsAttrAccessBuiltin(t *testing.T) {
	assert.True(t, IsAttrAccessBuiltin("getattr"))
	assert.True(t, IsAttrAccessBuiltin("delattr"))
	assert.False(t, IsAttrAccessBuiltin("print"))
}
