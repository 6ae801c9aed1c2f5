// Package symbol defines the descriptors bound in an analysis context: plain
// names, builtins, imports, functions, classes, and call sites. Identity (and
// therefore set membership and symbol-table lookup) is the ID string alone;
// secondary attributes such as locations and interfaces never participate in
// equality.
package symbol

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/augur/pkg/locator"
	"github.com/panbanda/augur/pkg/parser"
)

// Location is the defining position of a symbol.
type Location struct {
	File string `json:"file,omitempty"`
	Line uint32 `json:"line"`
	Col  uint32 `json:"col"`
}

// LocationOf returns the location of an AST node within a file.
func LocationOf(node *sitter.Node, file string) *Location {
	if node == nil {
		return &Location{File: file}
	}
	return &Location{
		File: file,
		Line: node.StartPoint().Row + 1,
		Col:  node.StartPoint().Column + 1,
	}
}

// Symbol is a name bound in a context.
type Symbol interface {
	// ID is the identity key used for symbol-table lookups and set
	// deduplication.
	ID() string
	// SymbolName is the bound identifier, call brackets stripped for
	// callables.
	SymbolName() string
	// Loc is the defining location, nil when synthetic.
	Loc() *Location
	// IsCallable reports whether the symbol has a call interface.
	IsCallable() bool
}

// Name is a plain variable binding or attribute chain.
type Name struct {
	Name     string    `json:"name"`
	Basename string    `json:"basename"`
	Location *Location `json:"location,omitempty"`
}

// NewName returns a Name with the basename derived from the dotted name.
func NewName(name string) Name {
	return Name{Name: name, Basename: BasenameFromName(name)}
}

// NewNameAt returns a Name with an explicit basename and location.
func NewNameAt(name, basename string, loc *Location) Name {
	if basename == "" {
		basename = BasenameFromName(name)
	}
	return Name{Name: name, Basename: basename, Location: loc}
}

func (n Name) ID() string         { return n.Name }
func (n Name) SymbolName() string { return n.Name }
func (n Name) Loc() *Location     { return n.Location }
func (n Name) IsCallable() bool   { return false }

// Builtin is one of Python's callable builtins.
type Builtin struct {
	Name string `json:"name"`
}

func (b Builtin) ID() string         { return b.Name }
func (b Builtin) SymbolName() string { return b.Name }
func (b Builtin) Loc() *Location     { return nil }
func (b Builtin) IsCallable() bool   { return true }

// HasAffect reports whether the builtin touches attributes by name
// (getattr and friends) and therefore contributes to the IR when called.
func (b Builtin) HasAffect() bool {
	switch b.Name {
	case "getattr", "setattr", "hasattr", "delattr":
		return true
	}
	return false
}

// Import is a name bound by an import statement. The module spec is resolved
// when the symbol is built; Spec is nil when the module could not be found at
// all, and Spec.Origin is empty when the module resolved to something without
// a source file (builtin, frozen, stdlib outside the search path).
type Import struct {
	Name          string    `json:"name"`
	QualifiedName string    `json:"qualified_name"`
	ModuleName    string    `json:"module_name,omitempty"`
	Spec          *locator.ModuleSpec `json:"spec,omitempty"`
	Location      *Location `json:"location,omitempty"`
}

func (i Import) ID() string {
	// Starred imports must be prefixed by the qualified name or else they
	// would all collide on "*".
	if i.Name == "*" {
		return i.QualifiedName + ".*"
	}
	return i.Name
}

func (i Import) SymbolName() string { return i.Name }
func (i Import) Loc() *Location     { return i.Location }
func (i Import) IsCallable() bool   { return true }

// Origin is the resolved defining file of the imported module, empty when
// the module has no source file or was not found.
func (i Import) Origin() string {
	if i.Spec == nil {
		return ""
	}
	return i.Spec.Origin
}

// Func is a function or method definition.
type Func struct {
	Name      string         `json:"name"`
	Interface *CallInterface `json:"interface,omitempty"`
	Location  *Location      `json:"location,omitempty"`
	IsAsync   bool           `json:"is_async,omitempty"`
}

// FuncFromDef builds a Func from a function_definition node.
func FuncFromDef(def *sitter.Node, source []byte, file string) Func {
	return Func{
		Name:      WithoutCallBrackets(parser.NameOf(def, source)),
		Interface: InterfaceFromParameters(parser.ParametersOf(def), source),
		Location:  LocationOf(def, file),
		IsAsync:   parser.IsAsyncDef(def),
	}
}

func (f Func) ID() string         { return f.Name }
func (f Func) SymbolName() string { return f.Name }
func (f Func) Loc() *Location     { return f.Location }
func (f Func) IsCallable() bool   { return f.Interface != nil }

// Class is a class definition. Its interface mirrors the full __init__
// signature when one is defined, otherwise it accepts anything.
type Class struct {
	Name      string         `json:"name"`
	Interface *CallInterface `json:"interface,omitempty"`
	Location  *Location      `json:"location,omitempty"`
}

// ClassFromDef builds a Class from a class_definition node with a wildcard
// interface; the class analyser narrows it once __init__ is seen.
func ClassFromDef(def *sitter.Node, source []byte, file string) Class {
	return Class{
		Name:      WithoutCallBrackets(parser.NameOf(def, source)),
		Interface: AnyInterface(),
		Location:  LocationOf(def, file),
	}
}

// WithInterface returns a copy of the class with the given call interface.
func (c Class) WithInterface(iface *CallInterface) Class {
	c.Interface = iface
	return c
}

func (c Class) ID() string         { return c.Name }
func (c Class) SymbolName() string { return c.Name }
func (c Class) Loc() *Location     { return c.Location }
func (c Class) IsCallable() bool   { return c.Interface != nil }

// Call is a call site. Name retains the call-bracket suffix so that a call
// and an access to the same dotted name stay distinct in the IR.
type Call struct {
	Name     string         `json:"name"`
	Args     *CallArguments `json:"args,omitempty"`
	Target   Symbol         `json:"-"`
	Location *Location      `json:"location,omitempty"`
}

func (c Call) ID() string         { return c.Name }
func (c Call) SymbolName() string { return WithoutCallBrackets(c.Name) }
func (c Call) Loc() *Location     { return c.Location }
func (c Call) IsCallable() bool   { return false }

// NameOfCall is the call target name without the bracket suffix, as reported
// in simplified results.
func (c Call) NameOfCall() string { return WithoutCallBrackets(c.Name) }
