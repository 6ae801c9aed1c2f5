package analyser

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/augur/pkg/config"
	"github.com/panbanda/augur/pkg/context"
	"github.com/panbanda/augur/pkg/diagnostics"
	"github.com/panbanda/augur/pkg/ir"
	"github.com/panbanda/augur/pkg/names"
	"github.com/panbanda/augur/pkg/parser"
	"github.com/panbanda/augur/pkg/symbol"
)

// Annotation decorators recognised on definitions.
const (
	annotationIgnore  = "augur_ignore"
	annotationResults = "augur_results"
)

// FileAnalyser analyses every function and class defined in a file,
// including definitions nested in module-level control flow.
type FileAnalyser struct {
	res    *parser.ParseResult
	ctx    *context.Context
	cfg    *config.Config
	sess   *diagnostics.Session
	fileIR *ir.FileIR
}

// NewFileAnalyser prepares an analyser over a compiled root context.
func NewFileAnalyser(res *parser.ParseResult, ctx *context.Context, cfg *config.Config, sess *diagnostics.Session) *FileAnalyser {
	return &FileAnalyser{
		res:    res,
		ctx:    ctx,
		cfg:    cfg,
		sess:   sess,
		fileIR: ir.NewFileIR(res.Path, ctx),
	}
}

// Analyse walks the file and returns its IR.
func (f *FileAnalyser) Analyse() (*ir.FileIR, error) {
	if err := f.visitStatements(parser.Statements(f.res.Root())); err != nil {
		return nil, err
	}
	return f.fileIR, nil
}

func (f *FileAnalyser) visitStatements(stmts []*sitter.Node) error {
	for _, stmt := range stmts {
		if err := f.visitStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (f *FileAnalyser) visitStatement(stmt *sitter.Node) error {
	switch stmt.Type() {
	case parser.NodeFunctionDef, parser.NodeClassDef, parser.NodeDecoratedDef:
		return f.visitDefinition(stmt)
	case parser.NodeExpressionStatement:
		for _, expr := range parser.NamedChildren(stmt) {
			if err := f.visitExpression(expr); err != nil {
				return err
			}
		}
	case parser.NodeIfStatement, parser.NodeForStatement, parser.NodeWhileStatement,
		parser.NodeTryStatement, parser.NodeWithStatement:
		for _, child := range parser.NamedChildren(stmt) {
			switch child.Type() {
			case parser.NodeBlock:
				if err := f.visitStatements(parser.Statements(child)); err != nil {
					return err
				}
			case parser.NodeElifClause, parser.NodeElseClause,
				parser.NodeExceptClause, parser.NodeFinallyClause:
				if block := lastBlockOf(child); block != nil {
					if err := f.visitStatements(parser.Statements(block)); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func (f *FileAnalyser) visitDefinition(stmt *sitter.Node) error {
	def := parser.Definition(stmt)
	if def == nil {
		return nil
	}
	name := parser.NameOf(def, f.res.Source)

	if hasAnnotation(stmt, annotationIgnore, f.res.Source) {
		return nil
	}
	if f.cfg.ShouldExcludeFunction(name) {
		return nil
	}

	if def.Type() == parser.NodeClassDef {
		entries, err := NewClassAnalyser(f.res, def, f.ctx, f.sess).Analyse()
		if err != nil {
			return err
		}
		for _, entry := range entries {
			f.fileIR.Set(entry.sym, entry.ir)
		}
		return nil
	}

	fn, err := f.ctx.GetFunc(name)
	if err != nil {
		return f.sess.Fatal(err.Error(), symbol.LocationOf(def, f.res.Path))
	}

	if results := findAnnotation(stmt, annotationResults, f.res.Source); results != nil {
		declared, err := f.parseDeclaredResults(results)
		if err != nil {
			return err
		}
		f.fileIR.Set(fn, declared)
		return nil
	}

	// A definition shadowing a handled callable is the handler's to describe.
	if h, ok := builtinHandlers.forDef(name); ok {
		f.fileIR.Set(fn, h.OnDef())
		return nil
	}

	fnIR, err := NewFunctionAnalyser(f.res, f.ctx, f.sess).Analyse(def)
	if err != nil {
		return err
	}
	f.fileIR.Set(fn, fnIR)
	return nil
}

// visitExpression handles the module-level special cases: named lambdas are
// analysed under their bound name, anonymous lambdas and the walrus operator
// are rejected.
func (f *FileAnalyser) visitExpression(expr *sitter.Node) error {
	switch {
	case expr.Type() == parser.NodeLambda:
		return f.sess.Fatal("module level lambdas unsupported", symbol.LocationOf(expr, f.res.Path))
	case expr.Type() == parser.NodeNamedExpression:
		return f.sess.Fatal("the walrus operator is unsupported at module level", symbol.LocationOf(expr, f.res.Path))
	case parser.IsAssignment(expr):
		targets, value := parser.AssignmentTargetsAndValue(expr)
		if value == nil || value.Type() != parser.NodeLambda {
			return nil
		}
		if len(targets) != 1 {
			return f.sess.Fatal("lambda assignment must be one-to-one", symbol.LocationOf(expr, f.res.Path))
		}
		_, name := names.SafeOf(targets[0], f.res.Source)
		fn, err := f.ctx.GetFunc(name)
		if err != nil {
			return f.sess.Fatal(err.Error(), symbol.LocationOf(expr, f.res.Path))
		}
		fnIR, err := NewFunctionAnalyser(f.res, f.ctx, f.sess).Analyse(value)
		if err != nil {
			return err
		}
		f.fileIR.Set(fn, fnIR)
	}
	return nil
}

// parseDeclaredResults builds IR straight from an augur_results decorator,
// whose keyword arguments list the accessed names as string literals.
func (f *FileAnalyser) parseDeclaredResults(decorator *sitter.Node) (*ir.FunctionIR, error) {
	declared := ir.NewFunctionIR()
	call := decoratorCall(decorator)
	if call == nil {
		return declared, nil
	}
	for _, arg := range parser.CallArguments(call) {
		if arg.Type() != parser.NodeKeywordArg {
			continue
		}
		key := parser.NameOf(arg, f.res.Source)
		value := arg.ChildByFieldName("value")
		entries, ok := stringListOf(value, f.res.Source)
		if !ok {
			if err := f.sess.Error(fmt.Sprintf("declared results for %q must be a list of string literals", key), symbol.LocationOf(arg, f.res.Path)); err != nil {
				return nil, err
			}
			continue
		}
		for _, entry := range entries {
			switch key {
			case "gets":
				declared.AddGet(symbol.NewName(entry))
			case "sets":
				declared.AddSet(symbol.NewName(entry))
			case "dels":
				declared.AddDel(symbol.NewName(entry))
			case "calls":
				declared.AddCall(symbol.Call{
					Name: symbol.WithCallBrackets(entry),
					Args: &symbol.CallArguments{},
				})
			}
		}
	}
	return declared, nil
}

func stringListOf(node *sitter.Node, source []byte) ([]string, bool) {
	if node == nil {
		return nil, false
	}
	switch node.Type() {
	case parser.NodeList, parser.NodeTuple, parser.NodeSet:
		out := []string{}
		for _, el := range parser.NamedChildren(node) {
			if !parser.IsStringLiteral(el) {
				return nil, false
			}
			out = append(out, parser.StringLiteralValue(el, source))
		}
		return out, true
	}
	return nil, false
}

// hasAnnotation reports whether a decorated definition carries the named
// decorator, bare or called.
func hasAnnotation(stmt *sitter.Node, name string, source []byte) bool {
	return findAnnotation(stmt, name, source) != nil
}

// findAnnotation returns the decorator node for the named annotation.
func findAnnotation(stmt *sitter.Node, name string, source []byte) *sitter.Node {
	if stmt == nil || stmt.Type() != parser.NodeDecoratedDef {
		return nil
	}
	for _, child := range parser.NamedChildren(stmt) {
		if child.Type() != parser.NodeDecorator {
			continue
		}
		expr := child.NamedChild(0)
		if expr == nil {
			continue
		}
		_, full := names.SafeOf(expr, source)
		if symbol.WithoutCallBrackets(full) == name ||
			symbol.BasenameFromName(symbol.WithoutCallBrackets(full)) == name {
			return child
		}
	}
	return nil
}

// decoratorCall returns the call expression of a decorator, nil for a bare
// decorator.
func decoratorCall(decorator *sitter.Node) *sitter.Node {
	expr := decorator.NamedChild(0)
	if expr == nil || expr.Type() != parser.NodeCall {
		return nil
	}
	return expr
}
