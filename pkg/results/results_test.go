package results

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/augur/pkg/analyser"
	"github.com/panbanda/augur/pkg/config"
	"github.com/panbanda/augur/pkg/diagnostics"
	"github.com/panbanda/augur/pkg/symbol"
)

// generate analyses target.py among the given files and simplifies it.
func generate(t *testing.T, files map[string]string, mutate func(*config.Config)) (*FileResults, *diagnostics.Session) {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
	}

	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	sess := diagnostics.NewSessionWriter(&bytes.Buffer{})

	res, err := analyser.Analyse(filepath.Join(dir, "target.py"), cfg, sess)
	require.NoError(t, err)

	out, err := Generate(res.FileIR, res.ImportsIR, cfg, sess)
	require.NoError(t, err)
	return out, sess
}

func generateSource(t *testing.T, src string) (*FileResults, *diagnostics.Session) {
	t.Helper()
	return generate(t, map[string]string{"target.py": src}, nil)
}

func resultsFor(t *testing.T, out *FileResults, name string) *FunctionResults {
	t.Helper()
	fr, ok := out.Get(name)
	require.True(t, ok, "no results for %q, have %v", name, out.Names())
	return fr
}

func TestGenerateRebindsArguments(t *testing.T) {
	out, _ := generateSource(t, `
def helper(obj):
    obj.count += 1

def entry(item):
    helper(item)
`)
	entry := resultsFor(t, out, "entry")

	// The callee's parameter rebinds to the caller's argument.
	assert.Contains(t, entry.Gets, "item.count")
	assert.Contains(t, entry.Sets, "item.count")
	assert.Contains(t, entry.Calls, "helper")
	assert.NotContains(t, entry.Sets, "obj.count")

	// The callee's own results keep its local names.
	helper := resultsFor(t, out, "helper")
	assert.Contains(t, helper.Sets, "obj.count")
}

func TestGenerateClassConstruction(t *testing.T) {
	out, _ := generateSource(t, `
class Point:
    def __init__(self, x):
        self.x = x

def make(v):
    p = Point(v)
    return p
`)
	make := resultsFor(t, out, "make")

	// self rebinds to the name the instance is bound to.
	assert.Contains(t, make.Sets, "p")
	assert.Contains(t, make.Sets, "p.x")
	assert.Contains(t, make.Gets, "v")
	assert.Contains(t, make.Calls, "Point")
}

func TestGenerateReturnedConstruction(t *testing.T) {
	out, _ := generateSource(t, `
class Point:
    def __init__(self, x):
        self.x = x

def make(v):
    return Point(v)
`)
	make := resultsFor(t, out, "make")

	assert.Contains(t, make.Sets, "@ReturnValue.x")
	assert.Contains(t, make.Gets, "v")
}

func TestGenerateMutualRecursion(t *testing.T) {
	out, _ := generateSource(t, `
def ping(x):
    x.pinged = True
    pong(x)

def pong(y):
    y.ponged = True
    ping(y)
`)
	ping := resultsFor(t, out, "ping")

	assert.Contains(t, ping.Sets, "x.pinged")
	assert.Contains(t, ping.Sets, "x.ponged")

	pong := resultsFor(t, out, "pong")
	assert.Contains(t, pong.Sets, "y.pinged")
	assert.Contains(t, pong.Sets, "y.ponged")
}

func TestGenerateDirectRecursion(t *testing.T) {
	out, _ := generateSource(t, `
def walk(node):
    node.visited = True
    walk(node.next)
`)
	walk := resultsFor(t, out, "walk")

	assert.Contains(t, walk.Sets, "node.visited")
	assert.Contains(t, walk.Gets, "node.next")
}

func TestGenerateKeywordArguments(t *testing.T) {
	out, _ := generateSource(t, `
def helper(obj, flag=False):
    if flag:
        obj.on = True

def entry(item):
    helper(item, flag=True)
`)
	entry := resultsFor(t, out, "entry")

	assert.Contains(t, entry.Sets, "item.on")
	assert.NotContains(t, entry.Sets, "obj.on")
}

func TestGenerateStarArgsStayUnbound(t *testing.T) {
	out, sess := generateSource(t, `
def helper(a, b):
    a.val = b

def entry(args):
    helper(*args)
`)
	entry := resultsFor(t, out, "entry")

	// Unpacked arguments cannot be matched to parameters, so the callee's
	// effects surface under its local names and the call is flagged.
	assert.Contains(t, entry.Sets, "a.val")
	assert.Equal(t, 5, sess.SimplifyBadness())
}

func TestGenerateExcludedResults(t *testing.T) {
	out, _ := generate(t, map[string]string{"target.py": `
def _hidden(x):
    x.secret = 1

def shown(y):
    y.public = 1
`}, func(cfg *config.Config) {
		cfg.Exclude.Results = []string{"_*"}
	})

	_, ok := out.Get("_hidden")
	assert.False(t, ok)
	_, ok = out.Get("shown")
	assert.True(t, ok)
}

func TestGenerateThroughImport(t *testing.T) {
	out, _ := generate(t, map[string]string{
		"target.py": `
import util

def entry(x):
    util.bump(x)
`,
		"util.py": `
def bump(o):
    o.n += 1
`,
	}, nil)
	entry := resultsFor(t, out, "entry")

	assert.Contains(t, entry.Sets, "x.n")
	assert.Contains(t, entry.Gets, "x.n")
	assert.Contains(t, entry.Calls, "util.bump")
}

func TestGenerateAliasedImport(t *testing.T) {
	out, _ := generate(t, map[string]string{
		"target.py": `
from util import bump as poke

def entry(x):
    poke(x)
`,
		"util.py": `
def bump(o):
    o.n += 1
`,
	}, nil)
	entry := resultsFor(t, out, "entry")

	assert.Contains(t, entry.Sets, "x.n")
}

func TestGenerateDefinitionOrder(t *testing.T) {
	out, _ := generateSource(t, `
def zeta():
    pass

def alpha():
    pass
`)
	assert.Equal(t, []string{"zeta", "alpha"}, out.Names())
}

func TestGenerateSubscriptNormalised(t *testing.T) {
	out, _ := generateSource(t, `
def fn(rows):
    return rows[0].label
`)
	fn := resultsFor(t, out, "fn")
	assert.Contains(t, fn.Gets, "rows[].label")
}

func TestFileResultsJSONRoundTrip(t *testing.T) {
	out, _ := generateSource(t, `
def zeta(a):
    a.z = 1

def alpha(b):
    b.a = 1
`)
	blob, err := json.Marshal(out)
	require.NoError(t, err)

	var restored FileResults
	require.NoError(t, json.Unmarshal(blob, &restored))

	assert.Equal(t, out.Names(), restored.Names())
	orig := resultsFor(t, out, "zeta")
	back := resultsFor(t, &restored, "zeta")
	assert.Equal(t, orig.Sets, back.Sets)
}

func TestUnbindName(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		newBase string
		want    string
	}{
		{"obj.attr", "obj", "item", "item.attr"},
		{"obj", "obj", "item", "item"},
		{"*obj.items", "obj", "item", "*item.items"},
		{"obj.attr", "obj", "obj", "obj.attr"},
	}

	for _, tt := range tests {
		got := unbindName(symbol.NewNameAt(tt.name, tt.base, nil), tt.newBase)
		assert.Equal(t, tt.want, got.Name, "unbindName(%q, %q)", tt.name, tt.newBase)
		assert.Equal(t, tt.newBase, got.Basename)
	}
}
