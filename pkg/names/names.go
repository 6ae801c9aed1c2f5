// Package names converts Python expression nodes into canonical dotted-name
// identifiers, the currency of the whole analysis: attribute access appends
// ".attr", subscripting collapses to a "[]" placeholder, and calls to the
// reflection builtins (getattr and friends) are unravelled into the attribute
// chain they denote.
package names

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/augur/pkg/parser"
)

// LocalValuePrefix marks identifiers that stand in for unnameable values,
// such as "@Str" for a string-literal argument.
const LocalValuePrefix = "@"

// AttrAccessBuiltins are Python's builtin reflection functions that read,
// write, probe, or delete attributes by name.
var AttrAccessBuiltins = []string{"getattr", "setattr", "hasattr", "delattr"}

// IsAttrAccessBuiltin reports whether name is one of getattr/setattr/
// hasattr/delattr.
func IsAttrAccessBuiltin(name string) bool {
	for _, b := range AttrAccessBuiltins {
		if name == b {
			return true
		}
	}
	return false
}

// Error reports an expression that cannot be reduced to a dotted name. Kind
// distinguishes the offending root so callers can phrase diagnostics.
type Error struct {
	Kind string // "operator", "constant", "literal", "comprehension", "lambda", "expression"
	Node *sitter.Node
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s is not nameable", e.Kind)
}

// Of returns the basename and dotted fullname of an expression.
//
//	my_var            -> ("my_var", "my_var")
//	my_var.attr       -> ("my_var", "my_var.attr")
//	my_var[100].attr  -> ("my_var", "my_var[].attr")
//	*my_var[0].attr   -> ("my_var", "*my_var[].attr")
//	fn(a).attr        -> ("fn", "fn().attr")
//	getattr(a, "b")   -> ("getattr", "a.b")
//
// A non-nameable root (operator, literal, comprehension, ...) yields an
// *Error; use SafeOf where a placeholder is acceptable.
func Of(node *sitter.Node, source []byte) (basename, fullname string, err error) {
	return namesOf(node, source, false)
}

// SafeOf is Of with non-nameable expressions replaced by an "@Kind"
// placeholder instead of an error.
func SafeOf(node *sitter.Node, source []byte) (basename, fullname string) {
	basename, fullname, _ = namesOf(node, source, true)
	return basename, fullname
}

func namesOf(node *sitter.Node, source []byte, safe bool) (string, string, error) {
	if node == nil {
		return placeholder("Expr"), placeholder("Expr"), &Error{Kind: "expression"}
	}

	switch node.Type() {
	case parser.NodeIdentifier:
		id := parser.GetNodeText(node, source)
		return id, id, nil

	case parser.NodeAttribute:
		base, lhs, err := namesOf(node.ChildByFieldName("object"), source, safe)
		if err != nil && !safe {
			return "", "", err
		}
		attr := parser.GetNodeText(node.ChildByFieldName("attribute"), source)
		return base, lhs + "." + attr, err

	case parser.NodeSubscript:
		base, lhs, err := namesOf(node.ChildByFieldName("value"), source, safe)
		if err != nil && !safe {
			return "", "", err
		}
		return base, lhs + "[]", err

	case parser.NodeListSplat, "starred_expression":
		inner := node.ChildByFieldName("value")
		if inner == nil && node.NamedChildCount() > 0 {
			inner = node.NamedChild(0)
		}
		base, lhs, err := namesOf(inner, source, safe)
		if err != nil && !safe {
			return "", "", err
		}
		return base, "*" + lhs, err

	case parser.NodeCall:
		return callName(node, source, safe)

	case parser.NodeParenthesized, parser.NodeAwait, parser.NodeAsTarget:
		if node.NamedChildCount() == 0 {
			break
		}
		return namesOf(node.NamedChild(0), source, safe)
	}

	// The expression is unnameable. In safe mode give a best-guess
	// placeholder, otherwise report the specific root kind.
	nerr := &Error{Kind: errorKind(node), Node: node}
	if safe {
		p := placeholderFor(node)
		return p, p, nerr
	}
	return "", "", nerr
}

func callName(node *sitter.Node, source []byte, safe bool) (string, string, error) {
	base, lhs, err := namesOf(parser.CallFunction(node), source, safe)
	if err != nil && !safe {
		return "", "", err
	}

	// getattr(a, "b") reduces to the attribute chain "a.b" when the
	// attribute name is a string literal. Otherwise the call stays opaque.
	if IsAttrAccessBuiltin(base) && base == lhs {
		if obj, attr, ok := AttrAccessPair(base, node, source); ok {
			return base, obj + "." + attr, err
		}
	}

	return base, lhs + "()", err
}

// AttrAccessPair returns the object chain and literal attribute name from a
// call to getattr/setattr/hasattr/delattr. Nested calls to the same builtin
// are flattened: getattr(getattr(x, "a"), "b") yields ("x.a", "b"). The
// second return is false when the attribute-name argument is not a string
// literal, in which case the call must be treated as an ordinary call.
func AttrAccessPair(fn string, call *sitter.Node, source []byte) (obj, attr string, ok bool) {
	args := positionalArgs(call)
	if len(args) < 2 {
		return "", "", false
	}

	if !parser.IsStringLiteral(args[1]) {
		return "", "", false
	}
	attr = parser.StringLiteralValue(args[1], source)

	target := args[0]
	if target.Type() == parser.NodeCall {
		innerBase, _ := SafeOf(parser.CallFunction(target), source)
		if innerBase != fn {
			// getattr nested in a call to anything else cannot be
			// reduced to a static chain.
			return "", "", false
		}
		innerObj, innerAttr, innerOk := AttrAccessPair(fn, target, source)
		if !innerOk {
			return "", "", false
		}
		return innerObj + "." + innerAttr, attr, true
	}

	_, obj = SafeOf(target, source)
	return obj, attr, true
}

func positionalArgs(call *sitter.Node) []*sitter.Node {
	var args []*sitter.Node
	for _, arg := range parser.CallArguments(call) {
		if arg.Type() == parser.NodeKeywordArg {
			continue
		}
		args = append(args, arg)
	}
	return args
}

func errorKind(node *sitter.Node) string {
	switch {
	case parser.IsOperator(node):
		return "operator"
	case node.Type() == parser.NodeString, node.Type() == parser.NodeConcatenatedString,
		node.Type() == parser.NodeInteger, node.Type() == parser.NodeFloat,
		node.Type() == parser.NodeTrue, node.Type() == parser.NodeFalse,
		node.Type() == parser.NodeNone, node.Type() == parser.NodeEllipsis:
		return "constant"
	case parser.IsLiteral(node):
		return "literal"
	case parser.IsComprehension(node):
		return "comprehension"
	case node.Type() == parser.NodeLambda:
		return "lambda"
	}
	return "expression"
}

// placeholderFor returns the "@Kind" stand-in name for an unnameable
// expression, such as "@Str" for a string literal.
func placeholderFor(node *sitter.Node) string {
	switch node.Type() {
	case parser.NodeString, parser.NodeConcatenatedString:
		return placeholder("Str")
	case parser.NodeInteger:
		return placeholder("Int")
	case parser.NodeFloat:
		return placeholder("Float")
	case parser.NodeTrue, parser.NodeFalse:
		return placeholder("Bool")
	case parser.NodeNone:
		return placeholder("None")
	case parser.NodeList:
		return placeholder("List")
	case parser.NodeTuple:
		return placeholder("Tuple")
	case parser.NodeDictionary:
		return placeholder("Dict")
	case parser.NodeSet:
		return placeholder("Set")
	case parser.NodeBinaryOperator:
		return placeholder("BinOp")
	case parser.NodeUnaryOperator, parser.NodeNotOperator:
		return placeholder("UnaryOp")
	case parser.NodeBooleanOperator:
		return placeholder("BoolOp")
	case parser.NodeComparisonOperator:
		return placeholder("Compare")
	case parser.NodeConditional:
		return placeholder("IfExp")
	case parser.NodeLambda:
		return placeholder("Lambda")
	case parser.NodeListComprehension:
		return placeholder("ListComp")
	case parser.NodeSetComprehension:
		return placeholder("SetComp")
	case parser.NodeDictComprehension:
		return placeholder("DictComp")
	case parser.NodeGeneratorExp:
		return placeholder("GeneratorExp")
	}
	return placeholder("Expr")
}

func placeholder(kind string) string {
	return LocalValuePrefix + kind
}
