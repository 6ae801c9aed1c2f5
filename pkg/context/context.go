package context

import (
	"fmt"

	edlib "github.com/hbollon/go-edlib"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/augur/pkg/diagnostics"
	"github.com/panbanda/augur/pkg/names"
	"github.com/panbanda/augur/pkg/parser"
	"github.com/panbanda/augur/pkg/symbol"
)

// Context is one scope in a lexical chain. Lookups fall through to the
// parent; additions bind locally unless the name is already visible, which
// keeps an inner reassignment of an outer name from shadowing what the
// outer scope already resolved it to.
type Context struct {
	Parent *Context
	File   string

	table *SymbolTable
}

// NewContext returns a child scope of parent. A nil parent starts a new
// chain.
func NewContext(parent *Context, file string) *Context {
	if file == "" && parent != nil {
		file = parent.File
	}
	return &Context{Parent: parent, File: file, table: NewSymbolTable()}
}

// Root walks to the module-level context of the chain.
func (c *Context) Root() *Context {
	root := c
	for root.Parent != nil {
		root = root.Parent
	}
	return root
}

// Add binds a symbol in this scope. Names already visible somewhere in the
// chain are left alone, except formal parameters, which always shadow.
func (c *Context) Add(sym symbol.Symbol, isArgument bool) {
	if !isArgument && c.InChain(sym.ID()) {
		return
	}
	c.table.Add(sym)
}

// Lookup resolves an ID through the scope chain.
func (c *Context) Lookup(id string) (symbol.Symbol, bool) {
	for scope := c; scope != nil; scope = scope.Parent {
		if sym, ok := scope.table.Get(id); ok {
			return sym, true
		}
	}
	return nil, false
}

// Declares reports whether the ID is bound in this scope alone.
func (c *Context) Declares(id string) bool {
	return c.table.Contains(id)
}

// InChain reports whether the ID is visible anywhere in the chain.
func (c *Context) InChain(id string) bool {
	_, ok := c.Lookup(id)
	return ok
}

// Remove unbinds an ID from the nearest scope declaring it.
func (c *Context) Remove(id string) {
	for scope := c; scope != nil; scope = scope.Parent {
		if scope.table.Contains(id) {
			scope.table.Remove(id)
			return
		}
	}
}

// Symbols returns this scope's own bindings in insertion order.
func (c *Context) Symbols() []symbol.Symbol {
	return c.table.Symbols()
}

// AddParameters binds every formal parameter of an interface as a local
// name.
func (c *Context) AddParameters(iface *symbol.CallInterface) {
	if iface == nil {
		return
	}
	for _, param := range iface.All() {
		c.Add(symbol.NewName(param), true)
	}
}

// AddTargets binds the names assigned to by the given target nodes,
// flattening tuple and list destructuring.
func (c *Context) AddTargets(targets []*sitter.Node, source []byte) {
	for _, target := range flattenTargets(targets) {
		_, full := names.SafeOf(target, source)
		c.Add(symbol.NewName(full), false)
	}
}

// RemoveTargets unbinds the names deleted by a del statement.
func (c *Context) RemoveTargets(targets []*sitter.Node, source []byte) {
	for _, target := range flattenTargets(targets) {
		_, full := names.SafeOf(target, source)
		c.Remove(full)
	}
}

func flattenTargets(targets []*sitter.Node) []*sitter.Node {
	out := []*sitter.Node{}
	for _, t := range targets {
		if t == nil {
			continue
		}
		switch t.Type() {
		case parser.NodeTuple, parser.NodeList, parser.NodePatternList,
			parser.NodeExpressionList, parser.NodeTuplePattern, parser.NodeListPattern,
			parser.NodeParenthesized, parser.NodeAsTarget:
			out = append(out, flattenTargets(parser.NamedChildren(t))...)
		default:
			out = append(out, t)
		}
	}
	return out
}

// GetCallTarget resolves the target of a call by name. Unresolvable calls
// are reported at a severity reflecting how suspicious they are and resolve
// to nil.
func (c *Context) GetCallTarget(callName string, culprit *symbol.Location, sess *diagnostics.Session) (symbol.Symbol, error) {
	name := symbol.WithoutCallBrackets(callName)
	basename := symbol.BasenameFromName(name)

	if sym, ok := c.Lookup(name); ok {
		if sym.IsCallable() {
			return sym, nil
		}
		if _, isCall := sym.(symbol.Call); !isCall {
			sess.Info(fmt.Sprintf("unable to resolve call to %q, target is likely a procedural parameter", name), culprit)
			return nil, nil
		}
	}

	if name != basename {
		if sym, ok := c.Lookup(basename); ok {
			if imp, isImport := sym.(symbol.Import); isImport {
				return imp, nil
			}
			sess.Info(fmt.Sprintf("unable to resolve call to %q, target is a member of a local object", name), culprit)
			return nil, nil
		}
		// A call such as a.b.fn() where a.b is an imported module bound
		// under its full dotted name.
		for _, prefix := range symbol.PossibleModuleNames(name) {
			if sym, ok := c.Lookup(prefix); ok {
				if imp, isImport := sym.(symbol.Import); isImport {
					return imp, nil
				}
			}
		}
	}

	if err := sess.Warning(fmt.Sprintf("unable to resolve call to %q", name), culprit); err != nil {
		return nil, err
	}
	return nil, nil
}

// SymbolNotFoundError reports a lookup for a name that should have been
// bound, with a close match when one exists.
type SymbolNotFoundError struct {
	Name       string
	Suggestion string
}

func (e *SymbolNotFoundError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%q not found in context, did you mean %q", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("%q not found in context", e.Name)
}

// GetFunc resolves an ID expecting a function definition.
func (c *Context) GetFunc(id string) (symbol.Func, error) {
	sym, ok := c.Lookup(id)
	if !ok {
		return symbol.Func{}, c.notFound(id)
	}
	fn, ok := sym.(symbol.Func)
	if !ok {
		return symbol.Func{}, fmt.Errorf("%q is not a function", id)
	}
	return fn, nil
}

// GetClass resolves an ID expecting a class definition.
func (c *Context) GetClass(id string) (symbol.Class, error) {
	sym, ok := c.Lookup(id)
	if !ok {
		return symbol.Class{}, c.notFound(id)
	}
	cls, ok := sym.(symbol.Class)
	if !ok {
		return symbol.Class{}, fmt.Errorf("%q is not a class", id)
	}
	return cls, nil
}

func (c *Context) notFound(id string) error {
	candidates := []string{}
	for scope := c; scope != nil; scope = scope.Parent {
		candidates = append(candidates, scope.table.Names()...)
	}
	suggestion, err := edlib.FuzzySearchThreshold(id, candidates, 0.7, edlib.Levenshtein)
	if err != nil {
		suggestion = ""
	}
	return &SymbolNotFoundError{Name: id, Suggestion: suggestion}
}

// StarredImports returns the wildcard imports bound at module level, in
// declaration order.
func (c *Context) StarredImports() []symbol.Import {
	out := []symbol.Import{}
	for _, sym := range c.Root().table.Symbols() {
		if imp, ok := sym.(symbol.Import); ok && imp.Name == "*" {
			out = append(out, imp)
		}
	}
	return out
}
