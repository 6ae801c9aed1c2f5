package context

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/augur/pkg/diagnostics"
	"github.com/panbanda/augur/pkg/locator"
	"github.com/panbanda/augur/pkg/names"
	"github.com/panbanda/augur/pkg/parser"
	"github.com/panbanda/augur/pkg/symbol"
)

// Module-level names defined implicitly by the interpreter.
var moduleDunders = []string{
	"__name__", "__file__", "__doc__", "__package__",
	"__spec__", "__loader__", "__builtins__", "__debug__", "__cached__",
}

// CompileRootContext builds the module-level context for a parsed file:
// interpreter-provided names, builtins, and every top-level binding
// introduced by definitions, imports, and assignments, including those
// nested in module-level control flow.
func CompileRootContext(res *parser.ParseResult, resolver *locator.Resolver, sess *diagnostics.Session) (*Context, error) {
	ctx := NewContext(nil, res.Path)

	for _, dunder := range moduleDunders {
		ctx.Add(symbol.NewName(dunder), false)
	}
	for _, builtin := range symbol.PythonBuiltins() {
		ctx.Add(symbol.Builtin{Name: builtin}, false)
	}

	rc := &rootCompiler{ctx: ctx, res: res, resolver: resolver, sess: sess}
	if err := rc.register(parser.Statements(res.Root())); err != nil {
		return nil, err
	}
	return ctx, nil
}

type rootCompiler struct {
	ctx      *Context
	res      *parser.ParseResult
	resolver *locator.Resolver
	sess     *diagnostics.Session
}

func (rc *rootCompiler) register(stmts []*sitter.Node) error {
	for _, stmt := range stmts {
		if err := rc.registerStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (rc *rootCompiler) registerStatement(stmt *sitter.Node) error {
	switch stmt.Type() {
	case parser.NodeFunctionDef, parser.NodeDecoratedDef:
		def := parser.Definition(stmt)
		if def.Type() == parser.NodeClassDef {
			rc.registerClass(def)
			return nil
		}
		rc.ctx.Add(symbol.FuncFromDef(def, rc.res.Source, rc.res.Path), false)
	case parser.NodeClassDef:
		rc.registerClass(stmt)
	case parser.NodeImportStatement:
		return rc.registerImport(stmt)
	case parser.NodeImportFromStatement:
		return rc.registerImportFrom(stmt)
	case parser.NodeFutureImportStatement:
		// __future__ flags bind nothing useful.
	case parser.NodeExpressionStatement:
		for _, expr := range parser.NamedChildren(stmt) {
			if err := rc.registerExpression(expr); err != nil {
				return err
			}
		}
	case parser.NodeDeleteStatement:
		if err := rc.sess.Warning("del at module level", symbol.LocationOf(stmt, rc.res.Path)); err != nil {
			return err
		}
		rc.ctx.RemoveTargets(parser.NamedChildren(stmt), rc.res.Source)
	case parser.NodeGlobalStatement, parser.NodeNonlocalStatement:
		if err := rc.sess.Error("global and nonlocal have no meaning at module level", symbol.LocationOf(stmt, rc.res.Path)); err != nil {
			return err
		}
	case parser.NodeIfStatement, parser.NodeForStatement, parser.NodeWhileStatement,
		parser.NodeTryStatement, parser.NodeWithStatement:
		return rc.registerCompound(stmt)
	}
	return nil
}

func (rc *rootCompiler) registerExpression(expr *sitter.Node) error {
	if !parser.IsAssignment(expr) && expr.Type() != parser.NodeNamedExpression {
		return nil
	}
	targets, value := parser.AssignmentTargetsAndValue(expr)

	if value != nil {
		switch {
		case value.Type() == parser.NodeLambda:
			return rc.registerLambda(targets, value, expr)
		case isNamedtupleCall(value, rc.res.Source):
			return rc.registerNamedtuple(targets, value, expr)
		}
	}

	rc.ctx.AddTargets(targets, rc.res.Source)
	return nil
}

// registerLambda binds "name = lambda ...: ..." as a function so calls to
// the name resolve with the lambda's interface.
func (rc *rootCompiler) registerLambda(targets []*sitter.Node, lambda, culprit *sitter.Node) error {
	if len(targets) != 1 || targets[0].Type() != parser.NodeIdentifier {
		if err := rc.sess.Warning("lambda assigned to a compound target, treating as opaque", symbol.LocationOf(culprit, rc.res.Path)); err != nil {
			return err
		}
		rc.ctx.AddTargets(targets, rc.res.Source)
		return nil
	}
	_, name := names.SafeOf(targets[0], rc.res.Source)
	rc.ctx.Add(symbol.Func{
		Name:      name,
		Interface: symbol.InterfaceFromParameters(parser.ParametersOf(lambda), rc.res.Source),
		Location:  symbol.LocationOf(lambda, rc.res.Path),
	}, false)
	return nil
}

// registerNamedtuple binds "X = namedtuple('X', ...)" as a class whose
// interface is the field list.
func (rc *rootCompiler) registerNamedtuple(targets []*sitter.Node, call, culprit *sitter.Node) error {
	if len(targets) != 1 || targets[0].Type() != parser.NodeIdentifier {
		rc.ctx.AddTargets(targets, rc.res.Source)
		return nil
	}
	_, name := names.SafeOf(targets[0], rc.res.Source)
	fields, ok := namedtupleFields(call, rc.res.Source)
	if !ok {
		if err := rc.sess.Warning(fmt.Sprintf("unable to derive the fields of namedtuple %q", name), symbol.LocationOf(culprit, rc.res.Path)); err != nil {
			return err
		}
		rc.ctx.Add(symbol.Class{Name: name, Interface: symbol.AnyInterface(), Location: symbol.LocationOf(call, rc.res.Path)}, false)
		return nil
	}
	rc.ctx.Add(symbol.Class{
		Name:      name,
		Interface: &symbol.CallInterface{Args: fields},
		Location:  symbol.LocationOf(call, rc.res.Path),
	}, false)
	return nil
}

func (rc *rootCompiler) registerClass(def *sitter.Node) {
	cls := symbol.ClassFromDef(def, rc.res.Source, rc.res.Path)
	if init := findInit(def, rc.res.Source); init != nil {
		iface := symbol.InterfaceFromParameters(parser.ParametersOf(init), rc.res.Source)
		// Keep self in the interface so call arguments, which carry the
		// receiver in the first position, line up during rebinding.
		cls = cls.WithInterface(iface)
	}
	rc.ctx.Add(cls, false)
}

func findInit(classDef *sitter.Node, source []byte) *sitter.Node {
	body := parser.BodyOf(classDef)
	if body == nil {
		return nil
	}
	for _, stmt := range parser.Statements(body) {
		def := parser.Definition(stmt)
		if def != nil && def.Type() == parser.NodeFunctionDef && parser.NameOf(def, source) == "__init__" {
			return def
		}
	}
	return nil
}

func (rc *rootCompiler) registerImport(stmt *sitter.Node) error {
	for _, child := range parser.NamedChildren(stmt) {
		local, qualified := importedName(child, rc.res.Source)
		if qualified == "" {
			continue
		}
		rc.addImport(local, qualified, child)
	}
	return nil
}

func (rc *rootCompiler) registerImportFrom(stmt *sitter.Node) error {
	moduleNode := stmt.ChildByFieldName("module_name")
	module := rc.moduleNameOf(moduleNode)

	for _, child := range parser.NamedChildren(stmt) {
		if moduleNode != nil && child.Equal(moduleNode) {
			continue
		}
		switch child.Type() {
		case parser.NodeWildcardImport:
			if err := rc.sess.Warning(fmt.Sprintf("wildcard import from %q cannot be expanded, its names will not resolve", module), symbol.LocationOf(stmt, rc.res.Path)); err != nil {
				return err
			}
			rc.addImport("*", module, child)
		case parser.NodeDottedName, parser.NodeAliasedImport:
			local, name := importedName(child, rc.res.Source)
			qualified := name
			if module != "" {
				qualified = module + "." + name
			}
			rc.addImport(local, qualified, child)
		}
	}
	return nil
}

// importedName returns the local binding and the imported dotted name for a
// dotted_name or aliased_import node.
func importedName(node *sitter.Node, source []byte) (local, qualified string) {
	if node.Type() == parser.NodeAliasedImport {
		name := node.ChildByFieldName("name")
		alias := node.ChildByFieldName("alias")
		if name == nil || alias == nil {
			return "", ""
		}
		return string(source[alias.StartByte():alias.EndByte()]),
			string(source[name.StartByte():name.EndByte()])
	}
	text := string(source[node.StartByte():node.EndByte()])
	return text, text
}

// moduleNameOf resolves the module part of a from-import, turning relative
// imports into absolute dotted names.
func (rc *rootCompiler) moduleNameOf(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	if node.Type() != parser.NodeRelativeImport {
		return string(rc.res.Source[node.StartByte():node.EndByte()])
	}

	level, suffix := 0, ""
	for _, child := range parser.NamedChildren(node) {
		switch child.Type() {
		case parser.NodeImportPrefix:
			level = int(child.EndByte() - child.StartByte())
		case parser.NodeDottedName:
			suffix = string(rc.res.Source[child.StartByte():child.EndByte()])
		}
	}
	base := rc.resolver.ModuleNameForPath(rc.res.Path)
	isPackage := strings.HasSuffix(rc.res.Path, "__init__.py")
	return locator.AbsoluteFromRelative(base, level, suffix, isPackage)
}

func (rc *rootCompiler) addImport(local, qualified string, node *sitter.Node) {
	spec, ok := rc.resolver.ResolveQualified(qualified)
	if !ok {
		rc.sess.Info(fmt.Sprintf("unable to locate module for import %q", qualified), symbol.LocationOf(node, rc.res.Path))
	}
	rc.ctx.Add(symbol.Import{
		Name:          local,
		QualifiedName: qualified,
		ModuleName:    moduleOf(spec, qualified),
		Spec:          spec,
		Location:      symbol.LocationOf(node, rc.res.Path),
	}, false)
}

func moduleOf(spec *locator.ModuleSpec, qualified string) string {
	if spec != nil {
		return spec.Name
	}
	return qualified
}

func (rc *rootCompiler) registerCompound(stmt *sitter.Node) error {
	for _, child := range parser.NamedChildren(stmt) {
		switch child.Type() {
		case parser.NodeBlock:
			if err := rc.register(parser.Statements(child)); err != nil {
				return err
			}
		case parser.NodeElifClause, parser.NodeElseClause,
			parser.NodeExceptClause, parser.NodeFinallyClause:
			if body := lastBlockOf(child); body != nil {
				if err := rc.register(parser.Statements(body)); err != nil {
					return err
				}
			}
		}
	}
	// for-loop and with-statement targets are bound at module scope.
	switch stmt.Type() {
	case parser.NodeForStatement:
		if left := stmt.ChildByFieldName("left"); left != nil {
			rc.ctx.AddTargets([]*sitter.Node{left}, rc.res.Source)
		}
	case parser.NodeWithStatement:
		rc.ctx.AddTargets(withTargets(stmt), rc.res.Source)
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

// withTargets collects the as-bound names of a with statement.
func withTargets(with *sitter.Node) []*sitter.Node {
	targets := []*sitter.Node{}
	for _, clause := range parser.NamedChildren(with) {
		if clause.Type() != parser.NodeWithClause {
			continue
		}
		for _, item := range parser.NamedChildren(clause) {
			if item.Type() != parser.NodeWithItem {
				continue
			}
			value := item.ChildByFieldName("value")
			if value == nil || value.Type() != parser.NodeAsPattern {
				continue
			}
			if alias := value.ChildByFieldName("alias"); alias != nil {
				targets = append(targets, alias)
			}
		}
	}
	return targets
}

func isNamedtupleCall(node *sitter.Node, source []byte) bool {
	if node.Type() != parser.NodeCall {
		return false
	}
	fn := parser.CallFunction(node)
	if fn == nil {
		return false
	}
	_, name := names.SafeOf(fn, source)
	return name == "namedtuple" || strings.HasSuffix(name, ".namedtuple") ||
		name == "NamedTuple" || strings.HasSuffix(name, ".NamedTuple")
}

// namedtupleFields derives the interface of a namedtuple from its second
// argument, accepting both a sequence of field names and the single
// space-or-comma separated string form.
func namedtupleFields(call *sitter.Node, source []byte) ([]string, bool) {
	args := parser.CallArguments(call)
	if len(args) < 2 {
		return nil, false
	}
	fieldsArg := args[1]
	switch fieldsArg.Type() {
	case parser.NodeString:
		raw := parser.StringLiteralValue(fieldsArg, source)
		raw = strings.ReplaceAll(raw, ",", " ")
		fields := strings.Fields(raw)
		return fields, len(fields) > 0
	case parser.NodeList, parser.NodeTuple:
		fields := []string{}
		for _, el := range parser.NamedChildren(fieldsArg) {
			if !parser.IsStringLiteral(el) {
				return nil, false
			}
			fields = append(fields, parser.StringLiteralValue(el, source))
		}
		return fields, len(fields) > 0
	}
	return nil, false
}
