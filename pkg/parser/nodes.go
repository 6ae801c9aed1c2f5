package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Node type names in the tree-sitter Python grammar. Only the kinds the
// analysers dispatch on are named here; everything else is matched by the
// generic expression walkers.
const (
	NodeModule       = "module"
	NodeComment      = "comment"
	NodeFunctionDef  = "function_definition"
	NodeClassDef     = "class_definition"
	NodeDecoratedDef = "decorated_definition"
	NodeDecorator    = "decorator"
	NodeLambda       = "lambda"
	NodeBlock        = "block"

	NodeExpressionStatement = "expression_statement"
	NodeAssignment          = "assignment"
	NodeAugmentedAssignment = "augmented_assignment"
	NodeNamedExpression     = "named_expression"
	NodeDeleteStatement     = "delete_statement"
	NodeReturnStatement     = "return_statement"
	NodeGlobalStatement     = "global_statement"
	NodeNonlocalStatement   = "nonlocal_statement"

	NodeImportStatement       = "import_statement"
	NodeImportFromStatement   = "import_from_statement"
	NodeFutureImportStatement = "future_import_statement"
	NodeAliasedImport         = "aliased_import"
	NodeWildcardImport        = "wildcard_import"
	NodeDottedName            = "dotted_name"
	NodeRelativeImport        = "relative_import"
	NodeImportPrefix          = "import_prefix"

	NodeIdentifier    = "identifier"
	NodeAttribute     = "attribute"
	NodeSubscript     = "subscript"
	NodeCall          = "call"
	NodeArgumentList  = "argument_list"
	NodeKeywordArg    = "keyword_argument"
	NodeListSplat     = "list_splat"
	NodeDictSplat     = "dictionary_splat"
	NodeParenthesized = "parenthesized_expression"
	NodeConditional   = "conditional_expression"
	NodeAwait         = "await"

	NodeString             = "string"
	NodeConcatenatedString = "concatenated_string"
	NodeStringContent      = "string_content"
	NodeInteger            = "integer"
	NodeFloat              = "float"
	NodeTrue               = "true"
	NodeFalse              = "false"
	NodeNone               = "none"
	NodeEllipsis           = "ellipsis"
	NodeList               = "list"
	NodeTuple              = "tuple"
	NodeDictionary         = "dictionary"
	NodeSet                = "set"

	NodeListComprehension = "list_comprehension"
	NodeSetComprehension  = "set_comprehension"
	NodeDictComprehension = "dictionary_comprehension"
	NodeGeneratorExp      = "generator_expression"
	NodeForInClause       = "for_in_clause"
	NodeIfClause          = "if_clause"

	NodeBinaryOperator     = "binary_operator"
	NodeUnaryOperator      = "unary_operator"
	NodeNotOperator        = "not_operator"
	NodeBooleanOperator    = "boolean_operator"
	NodeComparisonOperator = "comparison_operator"

	NodeForStatement   = "for_statement"
	NodeWhileStatement = "while_statement"
	NodeIfStatement    = "if_statement"
	NodeElifClause     = "elif_clause"
	NodeElseClause     = "else_clause"
	NodeTryStatement   = "try_statement"
	NodeExceptClause   = "except_clause"
	NodeFinallyClause  = "finally_clause"
	NodeWithStatement  = "with_statement"
	NodeWithClause     = "with_clause"
	NodeWithItem       = "with_item"
	NodeAsPattern      = "as_pattern"
	NodeAsTarget       = "as_pattern_target"

	NodePatternList    = "pattern_list"
	NodeExpressionList = "expression_list"
	NodeTuplePattern   = "tuple_pattern"
	NodeListPattern    = "list_pattern"

	NodeParameters          = "parameters"
	NodeLambdaParameters    = "lambda_parameters"
	NodeDefaultParameter    = "default_parameter"
	NodeTypedParameter      = "typed_parameter"
	NodeTypedDefaultParam   = "typed_default_parameter"
	NodeListSplatPattern    = "list_splat_pattern"
	NodeDictSplatPattern    = "dictionary_splat_pattern"
	NodePositionalSeparator = "positional_separator"
	NodeKeywordSeparator    = "keyword_separator"
)

// Definition unwraps a decorated_definition to the wrapped def node.
func Definition(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.Type() == NodeDecoratedDef {
		return node.ChildByFieldName("definition")
	}
	return node
}

// Decorators returns the decorator expression texts of a definition,
// without the leading "@".
func Decorators(node *sitter.Node, source []byte) []string {
	if node == nil || node.Type() != NodeDecoratedDef {
		return nil
	}
	var decorators []string
	for _, child := range NamedChildren(node) {
		if child.Type() != NodeDecorator {
			continue
		}
		text := strings.TrimPrefix(GetNodeText(child, source), "@")
		decorators = append(decorators, strings.TrimSpace(text))
	}
	return decorators
}

// NameOf returns the text of a node's "name" field.
func NameOf(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return GetNodeText(node.ChildByFieldName("name"), source)
}

// BodyOf returns a definition's body node.
func BodyOf(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	return node.ChildByFieldName("body")
}

// ParametersOf returns a function or lambda definition's parameter list node.
func ParametersOf(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	return node.ChildByFieldName("parameters")
}

// IsAsyncDef reports whether a function_definition carries the async keyword.
func IsAsyncDef(node *sitter.Node) bool {
	if node == nil || node.Type() != NodeFunctionDef {
		return false
	}
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		if child.Type() == "async" {
			return true
		}
		if child.Type() == "def" {
			break
		}
	}
	return false
}

// Statements returns the named children of a block or module, skipping
// comments.
func Statements(node *sitter.Node) []*sitter.Node {
	var stmts []*sitter.Node
	for _, child := range NamedChildren(node) {
		if child.Type() == NodeComment {
			continue
		}
		stmts = append(stmts, child)
	}
	return stmts
}

// AssignmentTargetsAndValue flattens a (possibly chained) assignment into its
// target expressions and final value. `a = b = rhs` yields [a, b] and rhs.
// Augmented assignments and named expressions have exactly one target.
func AssignmentTargetsAndValue(node *sitter.Node) (targets []*sitter.Node, value *sitter.Node) {
	switch node.Type() {
	case NodeAssignment:
		left := node.ChildByFieldName("left")
		right := node.ChildByFieldName("right")
		targets = append(targets, left)
		for right != nil && right.Type() == NodeAssignment {
			targets = append(targets, right.ChildByFieldName("left"))
			right = right.ChildByFieldName("right")
		}
		return targets, right
	case NodeAugmentedAssignment:
		return []*sitter.Node{node.ChildByFieldName("left")}, node.ChildByFieldName("right")
	case NodeNamedExpression:
		return []*sitter.Node{node.ChildByFieldName("name")}, node.ChildByFieldName("value")
	}
	return nil, nil
}

// IsAssignment reports whether the node is any assignment form.
func IsAssignment(node *sitter.Node) bool {
	switch node.Type() {
	case NodeAssignment, NodeAugmentedAssignment, NodeNamedExpression:
		return true
	}
	return false
}

// IsStringLiteral reports whether the node is a string constant.
func IsStringLiteral(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	return node.Type() == NodeString || node.Type() == NodeConcatenatedString
}

// StringLiteralValue returns the unquoted contents of a string constant.
func StringLiteralValue(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	var sb strings.Builder
	Walk(node, source, func(n *sitter.Node, src []byte) bool {
		if n.Type() == NodeStringContent {
			sb.WriteString(GetNodeText(n, src))
			return false
		}
		return true
	})
	return sb.String()
}

// CallFunction returns the callee expression of a call node.
func CallFunction(call *sitter.Node) *sitter.Node {
	if call == nil {
		return nil
	}
	return call.ChildByFieldName("function")
}

// CallArguments returns the argument expressions of a call node, including
// keyword_argument nodes, skipping comments.
func CallArguments(call *sitter.Node) []*sitter.Node {
	if call == nil {
		return nil
	}
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	return Statements(args)
}

// IsComprehension reports whether the node is any comprehension form.
func IsComprehension(node *sitter.Node) bool {
	switch node.Type() {
	case NodeListComprehension, NodeSetComprehension, NodeDictComprehension, NodeGeneratorExp:
		return true
	}
	return false
}

// IsLiteral reports whether the node is a literal constant or display.
func IsLiteral(node *sitter.Node) bool {
	switch node.Type() {
	case NodeString, NodeConcatenatedString, NodeInteger, NodeFloat,
		NodeTrue, NodeFalse, NodeNone, NodeEllipsis,
		NodeList, NodeTuple, NodeDictionary, NodeSet:
		return true
	}
	return false
}

// IsStatement reports whether the node is a statement rather than an
// expression, by the grammar's naming convention.
func IsStatement(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	return strings.HasSuffix(node.Type(), "_statement") || node.Type() == NodeBlock
}

// IsOperator reports whether the node is an operator expression.
func IsOperator(node *sitter.Node) bool {
	switch node.Type() {
	case NodeBinaryOperator, NodeUnaryOperator, NodeNotOperator,
		NodeBooleanOperator, NodeComparisonOperator:
		return true
	}
	return false
}
