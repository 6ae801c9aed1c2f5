// Package analyser walks parsed Python files and produces their IR: the
// attribute accesses and calls of every function and class, and the IR of
// every followed import.
package analyser

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/augur/pkg/context"
	"github.com/panbanda/augur/pkg/diagnostics"
	"github.com/panbanda/augur/pkg/ir"
	"github.com/panbanda/augur/pkg/names"
	"github.com/panbanda/augur/pkg/parser"
	"github.com/panbanda/augur/pkg/symbol"
)

type access int

const (
	accessGet access = iota
	accessSet
	accessDel
)

// FunctionAnalyser walks one function body and collects its IR. Nested
// functions and lambdas are folded into the same IR since their effects
// happen, at the latest, when the enclosing function runs them.
type FunctionAnalyser struct {
	res  *parser.ParseResult
	sess *diagnostics.Session
	ctx  *context.Context
	ir   *ir.FunctionIR
}

// NewFunctionAnalyser prepares an analyser running in a child scope of
// parent.
func NewFunctionAnalyser(res *parser.ParseResult, parent *context.Context, sess *diagnostics.Session) *FunctionAnalyser {
	return &FunctionAnalyser{
		res:  res,
		sess: sess,
		ctx:  context.NewContext(parent, ""),
		ir:   ir.NewFunctionIR(),
	}
}

// Analyse walks a function_definition or lambda and returns its IR.
func (a *FunctionAnalyser) Analyse(def *sitter.Node) (*ir.FunctionIR, error) {
	iface := symbol.InterfaceFromParameters(parser.ParametersOf(def), a.res.Source)
	a.ctx.AddParameters(iface)

	if def.Type() == parser.NodeLambda {
		if body := def.ChildByFieldName("body"); body != nil {
			if err := a.visitExpr(body, accessGet); err != nil {
				return nil, err
			}
		}
		return a.ir, nil
	}

	body := parser.BodyOf(def)
	if body == nil {
		return a.ir, nil
	}
	for _, stmt := range parser.Statements(body) {
		if err := a.visitStatement(stmt); err != nil {
			return nil, err
		}
	}
	return a.ir, nil
}

// child returns an analyser sharing this one's IR but running in a nested
// scope.
func (a *FunctionAnalyser) child() *FunctionAnalyser {
	return &FunctionAnalyser{
		res:  a.res,
		sess: a.sess,
		ctx:  context.NewContext(a.ctx, ""),
		ir:   a.ir,
	}
}

func (a *FunctionAnalyser) loc(node *sitter.Node) *symbol.Location {
	return symbol.LocationOf(node, a.res.Path)
}

// ----------------------------------------------------------------------- //
// Statements
// ----------------------------------------------------------------------- //

func (a *FunctionAnalyser) visitStatement(stmt *sitter.Node) error {
	switch stmt.Type() {
	case parser.NodeExpressionStatement:
		for _, expr := range parser.NamedChildren(stmt) {
			if err := a.visitExpr(expr, accessGet); err != nil {
				return err
			}
		}
	case parser.NodeReturnStatement:
		return a.visitReturn(stmt)
	case parser.NodeDeleteStatement:
		return a.visitDelete(stmt)
	case parser.NodeIfStatement, parser.NodeWhileStatement:
		return a.visitConditional(stmt)
	case parser.NodeForStatement:
		return a.visitFor(stmt)
	case parser.NodeWithStatement:
		return a.visitWith(stmt)
	case parser.NodeTryStatement:
		return a.visitTry(stmt)
	case parser.NodeFunctionDef, parser.NodeDecoratedDef:
		return a.visitNestedDef(stmt)
	case parser.NodeClassDef:
		return a.sess.Error("nested classes unsupported", a.loc(stmt))
	case parser.NodeGlobalStatement:
		return a.sess.Fatal("do not use the global keyword", a.loc(stmt))
	case parser.NodeNonlocalStatement:
		return a.sess.Fatal("do not use the nonlocal keyword", a.loc(stmt))
	case parser.NodeImportStatement, parser.NodeImportFromStatement, parser.NodeFutureImportStatement:
		return a.sess.Fatal("imports must be at the top level", a.loc(stmt))
	case parser.NodeBlock:
		for _, inner := range parser.Statements(stmt) {
			if err := a.visitStatement(inner); err != nil {
				return err
			}
		}
	default:
		// raise, assert, match subjects, and expression lists all reduce
		// to visiting their expressions.
		for _, child := range parser.NamedChildren(stmt) {
			if parser.IsStatement(child) || child.Type() == parser.NodeBlock {
				if err := a.visitStatement(child); err != nil {
					return err
				}
				continue
			}
			if err := a.visitExpr(child, accessGet); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *FunctionAnalyser) visitBlock(block *sitter.Node) error {
	if block == nil {
		return nil
	}
	for _, stmt := range parser.Statements(block) {
		if err := a.visitStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (a *FunctionAnalyser) visitConditional(stmt *sitter.Node) error {
	if cond := stmt.ChildByFieldName("condition"); cond != nil {
		if err := a.visitExpr(cond, accessGet); err != nil {
			return err
		}
	}
	for _, child := range parser.NamedChildren(stmt) {
		switch child.Type() {
		case parser.NodeBlock:
			if err := a.visitBlock(child); err != nil {
				return err
			}
		case parser.NodeElifClause:
			if cond := child.ChildByFieldName("condition"); cond != nil {
				if err := a.visitExpr(cond, accessGet); err != nil {
					return err
				}
			}
			if err := a.visitBlock(lastBlockOf(child)); err != nil {
				return err
			}
		case parser.NodeElseClause:
			if err := a.visitBlock(lastBlockOf(child)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *FunctionAnalyser) visitFor(stmt *sitter.Node) error {
	left := stmt.ChildByFieldName("left")
	if left != nil {
		a.ctx.AddTargets([]*sitter.Node{left}, a.res.Source)
		if err := a.visitTarget(left, accessSet); err != nil {
			return err
		}
	}
	if right := stmt.ChildByFieldName("right"); right != nil {
		if err := a.visitExpr(right, accessGet); err != nil {
			return err
		}
	}
	for _, child := range parser.NamedChildren(stmt) {
		switch child.Type() {
		case parser.NodeBlock:
			if err := a.visitBlock(child); err != nil {
				return err
			}
		case parser.NodeElseClause:
			if err := a.visitBlock(lastBlockOf(child)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *FunctionAnalyser) visitWith(stmt *sitter.Node) error {
	for _, clause := range parser.NamedChildren(stmt) {
		if clause.Type() == parser.NodeBlock {
			if err := a.visitBlock(clause); err != nil {
				return err
			}
			continue
		}
		if clause.Type() != parser.NodeWithClause {
			continue
		}
		for _, item := range parser.NamedChildren(clause) {
			if item.Type() != parser.NodeWithItem {
				continue
			}
			value := item.ChildByFieldName("value")
			if value == nil {
				continue
			}
			if value.Type() != parser.NodeAsPattern {
				if err := a.visitExpr(value, accessGet); err != nil {
					return err
				}
				continue
			}
			if managed := value.NamedChild(0); managed != nil {
				if err := a.visitExpr(managed, accessGet); err != nil {
					return err
				}
			}
			if alias := value.ChildByFieldName("alias"); alias != nil {
				a.ctx.AddTargets([]*sitter.Node{alias}, a.res.Source)
				if err := a.visitTarget(alias, accessSet); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (a *FunctionAnalyser) visitTry(stmt *sitter.Node) error {
	for _, child := range parser.NamedChildren(stmt) {
		switch child.Type() {
		case parser.NodeBlock:
			if err := a.visitBlock(child); err != nil {
				return err
			}
		case parser.NodeExceptClause:
			for _, part := range parser.NamedChildren(child) {
				switch part.Type() {
				case parser.NodeBlock:
					if err := a.visitBlock(part); err != nil {
						return err
					}
				case parser.NodeAsPattern:
					if exc := part.NamedChild(0); exc != nil {
						if err := a.visitExpr(exc, accessGet); err != nil {
							return err
						}
					}
					if alias := part.ChildByFieldName("alias"); alias != nil {
						a.ctx.AddTargets([]*sitter.Node{alias}, a.res.Source)
						if err := a.visitTarget(alias, accessSet); err != nil {
							return err
						}
					}
				default:
					if err := a.visitExpr(part, accessGet); err != nil {
						return err
					}
				}
			}
		case parser.NodeElseClause, parser.NodeFinallyClause:
			if err := a.visitBlock(lastBlockOf(child)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *FunctionAnalyser) visitDelete(stmt *sitter.Node) error {
	targets := parser.NamedChildren(stmt)
	for _, target := range targets {
		if err := a.visitTarget(target, accessDel); err != nil {
			return err
		}
	}
	a.ctx.RemoveTargets(targets, a.res.Source)
	return nil
}

// visitNestedDef analyses a function defined inside a function. Its effects
// are merged into the enclosing IR since they cannot be rebound later.
func (a *FunctionAnalyser) visitNestedDef(stmt *sitter.Node) error {
	def := parser.Definition(stmt)
	if def == nil || def.Type() != parser.NodeFunctionDef {
		return a.sess.Error("nested classes unsupported", a.loc(stmt))
	}
	if err := a.sess.Error("unable to unbind nested functions", a.loc(def)); err != nil {
		return err
	}
	a.ctx.Add(symbol.FuncFromDef(def, a.res.Source, a.res.Path), false)

	sub := a.child()
	sub.ctx.AddParameters(symbol.InterfaceFromParameters(parser.ParametersOf(def), a.res.Source))
	return sub.visitBlock(parser.BodyOf(def))
}

// ----------------------------------------------------------------------- //
// Expressions
// ----------------------------------------------------------------------- //

func (a *FunctionAnalyser) visitExpr(node *sitter.Node, acc access) error {
	if node == nil {
		return nil
	}
	switch node.Type() {
	case parser.NodeIdentifier, parser.NodeAttribute, parser.NodeSubscript, parser.NodeListSplat:
		return a.visitTarget(node, acc)
	case parser.NodeAssignment, parser.NodeAugmentedAssignment, parser.NodeNamedExpression:
		return a.visitAssignment(node)
	case parser.NodeCall:
		return a.visitCall(node, "")
	case parser.NodeLambda:
		return a.visitAnonymousLambda(node)
	case parser.NodeListComprehension, parser.NodeSetComprehension,
		parser.NodeDictComprehension, parser.NodeGeneratorExp:
		return a.visitComprehension(node)
	case parser.NodeParenthesized, parser.NodeAwait:
		return a.visitExpr(node.NamedChild(0), acc)
	case parser.NodeKeywordArg:
		return a.visitExpr(node.ChildByFieldName("value"), accessGet)
	case parser.NodeString, parser.NodeConcatenatedString, parser.NodeInteger,
		parser.NodeFloat, parser.NodeTrue, parser.NodeFalse, parser.NodeNone,
		parser.NodeEllipsis:
		return nil
	default:
		for _, child := range parser.NamedChildren(node) {
			if err := a.visitExpr(child, accessGet); err != nil {
				return err
			}
		}
	}
	return nil
}

// visitTarget records an access to a nameable expression. Operands buried in
// an unnameable base, as in (a + b).attr, are visited individually before
// the whole is recorded under a placeholder.
func (a *FunctionAnalyser) visitTarget(node *sitter.Node, acc access) error {
	base, full, err := a.verifiedName(node, acc)
	if err != nil {
		return err
	}

	var inner *sitter.Node
	switch node.Type() {
	case parser.NodeAttribute:
		inner = node.ChildByFieldName("object")
	case parser.NodeSubscript:
		inner = node.ChildByFieldName("value")
	case parser.NodeListSplat:
		inner = node.NamedChild(0)
	}
	if inner != nil && !strictlyNameable(inner) {
		if err := a.visitExpr(inner, accessGet); err != nil {
			return err
		}
	}

	a.record(symbol.NewNameAt(full, base, a.loc(node)), acc)
	return nil
}

func strictlyNameable(node *sitter.Node) bool {
	switch node.Type() {
	case parser.NodeIdentifier, parser.NodeAttribute, parser.NodeSubscript,
		parser.NodeCall, parser.NodeListSplat:
		return true
	}
	return false
}

func (a *FunctionAnalyser) record(n symbol.Name, acc access) {
	switch acc {
	case accessGet:
		a.ir.AddGet(n)
	case accessSet:
		a.ir.AddSet(n)
	case accessDel:
		a.ir.AddDel(n)
	}
}

// verifiedName resolves the name of a node, warning on reads of names never
// bound anywhere in scope. Under strict mode the warning is fatal and must
// unwind through the caller.
func (a *FunctionAnalyser) verifiedName(node *sitter.Node, acc access) (base, full string, err error) {
	base, full = names.SafeOf(node, a.res.Source)
	isLocal := strings.HasPrefix(base, names.LocalValuePrefix)
	if acc != accessSet && !isLocal && !a.ctx.InChain(base) {
		if err := a.sess.Warning(fmt.Sprintf("%q potentially undefined", base), a.loc(node)); err != nil {
			return base, full, err
		}
	}
	return base, full, nil
}

func (a *FunctionAnalyser) visitAssignment(node *sitter.Node) error {
	targets, value := parser.AssignmentTargetsAndValue(node)

	if value != nil && value.Type() == parser.NodeLambda {
		return a.visitLambdaAssign(node, targets, value)
	}
	if value != nil && value.Type() == parser.NodeCall {
		if cls, ok := a.classInRHS(value); ok {
			return a.visitClassAssign(node, targets, value, cls)
		}
	}

	a.ctx.AddTargets(targets, a.res.Source)
	for _, target := range targets {
		if err := a.visitExpr(target, accessSet); err != nil {
			return err
		}
	}
	if node.Type() == parser.NodeAugmentedAssignment {
		// An augmented target both reads and writes.
		for _, target := range targets {
			if err := a.visitExpr(target, accessGet); err != nil {
				return err
			}
		}
	}
	if value != nil {
		return a.visitExpr(value, accessGet)
	}
	return nil
}

func (a *FunctionAnalyser) visitLambdaAssign(node *sitter.Node, targets []*sitter.Node, lambda *sitter.Node) error {
	if len(targets) != 1 {
		return a.sess.Fatal("lambda assignment must be one-to-one", a.loc(node))
	}
	if err := a.sess.Error("unable to unbind lambdas defined in functions", a.loc(node)); err != nil {
		return err
	}
	_, full := names.SafeOf(targets[0], a.res.Source)
	a.ctx.Add(symbol.Func{
		Name:      full,
		Interface: symbol.InterfaceFromParameters(parser.ParametersOf(lambda), a.res.Source),
		Location:  a.loc(lambda),
	}, false)
	return nil
}

// classInRHS reports whether a call's target resolves to a class in scope.
func (a *FunctionAnalyser) classInRHS(call *sitter.Node) (symbol.Class, bool) {
	_, full := names.SafeOf(call, a.res.Source)
	sym, ok := a.ctx.Lookup(symbol.WithoutCallBrackets(full))
	if !ok {
		return symbol.Class{}, false
	}
	cls, ok := sym.(symbol.Class)
	return cls, ok
}

// visitClassAssign handles x = Cls(...): the initialiser is called with x
// bound as self, and x itself is set.
func (a *FunctionAnalyser) visitClassAssign(node *sitter.Node, targets []*sitter.Node, call *sitter.Node, cls symbol.Class) error {
	if len(targets) != 1 {
		return a.sess.Fatal("class assignment must be one-to-one", a.loc(node))
	}
	lhsBase, lhsFull := names.SafeOf(targets[0], a.res.Source)

	if err := a.visitCallWithSelf(call, lhsFull); err != nil {
		return err
	}
	a.ir.AddSet(symbol.NewNameAt(lhsFull, lhsBase, a.loc(targets[0])))
	a.ctx.AddTargets(targets, a.res.Source)
	return nil
}

func (a *FunctionAnalyser) visitAnonymousLambda(lambda *sitter.Node) error {
	if err := a.sess.Error("unable to unbind anonymous lambdas", a.loc(lambda)); err != nil {
		return err
	}
	sub := a.child()
	sub.ctx.AddParameters(symbol.InterfaceFromParameters(parser.ParametersOf(lambda), a.res.Source))
	return sub.visitExpr(lambda.ChildByFieldName("body"), accessGet)
}

// ----------------------------------------------------------------------- //
// Calls
// ----------------------------------------------------------------------- //

func (a *FunctionAnalyser) visitCall(call *sitter.Node, self string) error {
	return a.visitCallWithSelf(call, self)
}

func (a *FunctionAnalyser) visitCallWithSelf(call *sitter.Node, self string) error {
	_, fullname, err := a.verifiedName(call, accessGet)
	if err != nil {
		return err
	}

	if fn := parser.CallFunction(call); fn != nil {
		_, fnName := names.SafeOf(fn, a.res.Source)
		if h, ok := builtinHandlers.forCall(a.ctx, fnName); ok {
			if handled, err := h.OnCall(a, call); handled || err != nil {
				return err
			}
		}
	}

	target, err := a.ctx.GetCallTarget(fullname, a.loc(call), a.sess)
	if err != nil {
		return err
	}

	if cls, ok := target.(symbol.Class); ok && self == "" {
		if err := a.sess.Warning(fmt.Sprintf("%q initialised but not stored", cls.Name), a.loc(call)); err != nil {
			return err
		}
		self = names.LocalValuePrefix + cls.Name
	}
	args := symbol.ArgumentsFromCall(call, a.res.Source, self)

	// A call to a method on an attribute necessarily gets the attribute.
	parts := strings.Split(symbol.WithoutCallBrackets(fullname), ".")
	for i := 2; i <= len(parts)-1; i++ {
		prefix := strings.Join(parts[:i], ".")
		a.ir.AddGet(symbol.NewNameAt(prefix, parts[0], a.loc(call)))
	}

	a.ir.AddCall(symbol.Call{
		Name:     fullname,
		Args:     args,
		Target:   target,
		Location: a.loc(call),
	})

	for _, arg := range parser.CallArguments(call) {
		if err := a.visitExpr(arg, accessGet); err != nil {
			return err
		}
	}
	return nil
}

// ----------------------------------------------------------------------- //
// Returns
// ----------------------------------------------------------------------- //

func (a *FunctionAnalyser) visitReturn(stmt *sitter.Node) error {
	for _, value := range parser.NamedChildren(stmt) {
		handled, err := a.visitReturnValue(value)
		if err != nil {
			return err
		}
		if !handled {
			if err := a.visitExpr(value, accessGet); err != nil {
				return err
			}
		}
	}
	return nil
}

// visitReturnValue intercepts returned class constructions so that the
// initialiser's self rebinds to the local return value rather than leaking.
func (a *FunctionAnalyser) visitReturnValue(value *sitter.Node) (bool, error) {
	switch value.Type() {
	case parser.NodeTuple, parser.NodeList, parser.NodeSet, parser.NodeExpressionList:
		for _, elt := range parser.NamedChildren(value) {
			handled, err := a.visitReturnValue(elt)
			if err != nil {
				return false, err
			}
			if !handled {
				if err := a.visitExpr(elt, accessGet); err != nil {
					return false, err
				}
			}
		}
		return true, nil
	case parser.NodeDictionary:
		for _, pair := range parser.NamedChildren(value) {
			for _, part := range parser.NamedChildren(pair) {
				handled, err := a.visitReturnValue(part)
				if err != nil {
					return false, err
				}
				if !handled {
					if err := a.visitExpr(part, accessGet); err != nil {
						return false, err
					}
				}
			}
		}
		return true, nil
	case parser.NodeCall:
		if fn := parser.CallFunction(value); fn != nil {
			_, fnName := names.SafeOf(fn, a.res.Source)
			if names.IsAttrAccessBuiltin(symbol.WithoutCallBrackets(fnName)) {
				return false, nil
			}
		}
		if _, ok := a.classInRHS(value); !ok {
			return false, nil
		}
		return true, a.visitCallWithSelf(value, names.LocalValuePrefix+"ReturnValue")
	}
	return false, nil
}

// ----------------------------------------------------------------------- //
// Comprehensions
// ----------------------------------------------------------------------- //

func (a *FunctionAnalyser) visitComprehension(comp *sitter.Node) error {
	sub := a.child()
	elts := []*sitter.Node{}

	for _, child := range parser.NamedChildren(comp) {
		switch child.Type() {
		case parser.NodeForInClause:
			left := child.ChildByFieldName("left")
			if left != nil {
				sub.ctx.AddTargets([]*sitter.Node{left}, a.res.Source)
			}
			if right := child.ChildByFieldName("right"); right != nil {
				base, _ := names.SafeOf(right, a.res.Source)
				if !sub.ctx.Declares(base) {
					if err := sub.visitExpr(right, accessGet); err != nil {
						return err
					}
				}
			}
		case parser.NodeIfClause:
			for _, cond := range parser.NamedChildren(child) {
				if err := sub.visitExpr(cond, accessGet); err != nil {
					return err
				}
			}
		default:
			elts = append(elts, child)
		}
	}

	for _, elt := range elts {
		if err := sub.visitExpr(elt, accessGet); err != nil {
			return err
		}
	}
	return nil
}

func lastBlockOf(node *sitter.Node) *sitter.Node {
	var block *sitter.Node
	for _, child := range parser.NamedChildren(node) {
		if child.Type() == parser.NodeBlock {
			block = child
		}
	}
	return block
}
