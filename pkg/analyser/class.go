package analyser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/augur/pkg/context"
	"github.com/panbanda/augur/pkg/diagnostics"
	"github.com/panbanda/augur/pkg/ir"
	"github.com/panbanda/augur/pkg/names"
	"github.com/panbanda/augur/pkg/parser"
	"github.com/panbanda/augur/pkg/symbol"
)

// classEntry pairs an analysed definition inside a class with its IR.
type classEntry struct {
	sym symbol.Symbol
	ir  *ir.FunctionIR
}

// ClassAnalyser walks a class body. The initialiser's IR is keyed by the
// class symbol itself so a constructor call resolves straight to it; other
// methods are keyed as Class.method. Class-level assignments bind
// Class.attr names in the module context.
type ClassAnalyser struct {
	res       *parser.ParseResult
	sess      *diagnostics.Session
	ctx       *context.Context
	classDef  *sitter.Node
	className string
}

// NewClassAnalyser prepares an analyser for a class_definition node running
// in the module context.
func NewClassAnalyser(res *parser.ParseResult, classDef *sitter.Node, ctx *context.Context, sess *diagnostics.Session) *ClassAnalyser {
	return &ClassAnalyser{
		res:       res,
		sess:      sess,
		ctx:       ctx,
		classDef:  classDef,
		className: parser.NameOf(classDef, res.Source),
	}
}

// Analyse returns the IR entries of the class in definition order.
func (c *ClassAnalyser) Analyse() ([]classEntry, error) {
	body := parser.BodyOf(c.classDef)
	if body == nil {
		return nil, nil
	}

	var methods []*sitter.Node
	for _, stmt := range parser.Statements(body) {
		def := parser.Definition(stmt)
		if def != nil && def.Type() == parser.NodeFunctionDef {
			methods = append(methods, def)
			continue
		}
		if err := c.visitStatement(stmt); err != nil {
			return nil, err
		}
	}

	entries := []classEntry{}
	sawInit := false
	for _, method := range methods {
		name := parser.NameOf(method, c.res.Source)
		if name == "__init__" {
			entry, err := c.analyseInitialiser(method)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
			sawInit = true
			continue
		}
		entry, err := c.analyseMethod(method, name)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if !sawInit && c.isEnum() {
		entries = append([]classEntry{c.enumInitialiser()}, entries...)
	}
	return entries, nil
}

// analyseInitialiser analyses __init__ and keys its IR by the class symbol,
// whose interface already mirrors the initialiser's.
func (c *ClassAnalyser) analyseInitialiser(init *sitter.Node) (classEntry, error) {
	cls, err := c.ctx.GetClass(c.className)
	if err != nil {
		return classEntry{}, err
	}
	initIR, err := NewFunctionAnalyser(c.res, c.ctx, c.sess).Analyse(init)
	if err != nil {
		return classEntry{}, err
	}
	return classEntry{sym: cls, ir: initIR}, nil
}

func (c *ClassAnalyser) analyseMethod(method *sitter.Node, name string) (classEntry, error) {
	fn := symbol.FuncFromDef(method, c.res.Source, c.res.Path)
	fn.Name = c.className + "." + name
	methodIR, err := NewFunctionAnalyser(c.res, c.ctx, c.sess).Analyse(method)
	if err != nil {
		return classEntry{}, err
	}
	return classEntry{sym: fn, ir: methodIR}, nil
}

// enumInitialiser approximates an Enum subclass without __init__: its
// constructor reads every class-level member, since which one is selected
// cannot be known statically.
func (c *ClassAnalyser) enumInitialiser() classEntry {
	cls, err := c.ctx.GetClass(c.className)
	if err != nil {
		return classEntry{sym: symbol.Class{Name: c.className, Interface: symbol.AnyInterface()}, ir: ir.NewFunctionIR()}
	}
	cls = cls.WithInterface(&symbol.CallInterface{Args: []string{"_id"}})
	c.ctx.Add(cls, true)

	enumIR := ir.NewFunctionIR()
	for _, sym := range c.ctx.Root().Symbols() {
		name, ok := sym.(symbol.Name)
		if !ok {
			continue
		}
		if strings.HasPrefix(name.Name, c.className+".") {
			enumIR.AddGet(name)
		}
	}
	return classEntry{sym: cls, ir: enumIR}
}

func (c *ClassAnalyser) isEnum() bool {
	supers := c.classDef.ChildByFieldName("superclasses")
	if supers == nil {
		return false
	}
	for _, base := range parser.NamedChildren(supers) {
		_, full := names.SafeOf(base, c.res.Source)
		if full == "Enum" || strings.HasSuffix(full, ".Enum") {
			return true
		}
	}
	return false
}

func unravelTarget(target *sitter.Node) []*sitter.Node {
	switch target.Type() {
	case parser.NodeTuple, parser.NodeList, parser.NodePatternList,
		parser.NodeExpressionList, parser.NodeTuplePattern, parser.NodeListPattern:
		out := []*sitter.Node{}
		for _, child := range parser.NamedChildren(target) {
			out = append(out, unravelTarget(child)...)
		}
		return out
	}
	return []*sitter.Node{target}
}

// visitStatement binds class-level assignments as Class.attr names visible
// from the module scope.
func (c *ClassAnalyser) visitStatement(stmt *sitter.Node) error {
	if stmt.Type() != parser.NodeExpressionStatement {
		return nil
	}
	for _, expr := range parser.NamedChildren(stmt) {
		if !parser.IsAssignment(expr) {
			continue
		}
		targets, _ := parser.AssignmentTargetsAndValue(expr)
		for _, target := range targets {
			for _, unravelled := range unravelTarget(target) {
				_, full := names.SafeOf(unravelled, c.res.Source)
				c.ctx.Add(symbol.NewNameAt(c.className+"."+full, c.className, symbol.LocationOf(unravelled, c.res.Path)), false)
			}
		}
	}
	return nil
}
