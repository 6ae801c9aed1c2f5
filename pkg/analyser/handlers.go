package analyser

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/augur/pkg/context"
	"github.com/panbanda/augur/pkg/ir"
	"github.com/panbanda/augur/pkg/names"
	"github.com/panbanda/augur/pkg/parser"
	"github.com/panbanda/augur/pkg/symbol"
)

// callHandler customises the IR contribution of a specific callable. OnCall
// runs in place of the ordinary call recording; a false first return falls
// back to it. OnDef is the IR of a local definition shadowing the handled
// name.
type callHandler interface {
	Name() string
	QualifiedName() string
	OnCall(a *FunctionAnalyser, call *sitter.Node) (bool, error)
	OnDef() *ir.FunctionIR
}

// handlerRegistry maps callable identities to their handlers. Builtins are
// keyed by bare name; everything else by the qualified name its imports
// resolve to.
type handlerRegistry struct {
	byName      map[string]callHandler
	byQualified map[string]callHandler
}

func newHandlerRegistry(handlers ...callHandler) *handlerRegistry {
	r := &handlerRegistry{
		byName:      map[string]callHandler{},
		byQualified: map[string]callHandler{},
	}
	for _, h := range handlers {
		r.register(h)
	}
	return r
}

func (r *handlerRegistry) register(h callHandler) {
	if h.Name() == h.QualifiedName() {
		r.byName[h.Name()] = h
	}
	r.byQualified[h.QualifiedName()] = h
}

// forCall resolves the handler for a call to fnName, chasing imports so that
// both "defaultdict" from collections and "collections.defaultdict" land on
// the qualified entry.
func (r *handlerRegistry) forCall(ctx *context.Context, fnName string) (callHandler, bool) {
	name := symbol.WithoutCallBrackets(fnName)
	if h, ok := r.byName[name]; ok {
		return h, true
	}
	base := symbol.BasenameFromName(name)
	sym, ok := ctx.Lookup(base)
	if !ok {
		return nil, false
	}
	imp, ok := sym.(symbol.Import)
	if !ok {
		return nil, false
	}
	qualified := imp.QualifiedName + strings.TrimPrefix(name, base)
	h, ok := r.byQualified[qualified]
	return h, ok
}

// forDef resolves the handler shadowed by a local definition of name.
func (r *handlerRegistry) forDef(name string) (callHandler, bool) {
	h, ok := r.byName[name]
	return h, ok
}

var builtinHandlers = newHandlerRegistry(
	attrHandler{name: "getattr", acc: accessGet},
	attrHandler{name: "hasattr", acc: accessGet},
	attrHandler{name: "setattr", acc: accessSet},
	attrHandler{name: "delattr", acc: accessDel},
	sortedHandler{},
	defaultdictHandler{},
)

// attrHandler reduces getattr/setattr/hasattr/delattr with a literal
// attribute name to a direct access to the named attribute. Dynamic attribute
// names fall back to an opaque call.
type attrHandler struct {
	name string
	acc  access
}

func (h attrHandler) Name() string          { return h.name }
func (h attrHandler) QualifiedName() string { return h.name }
func (h attrHandler) OnDef() *ir.FunctionIR { return ir.NewFunctionIR() }

func (h attrHandler) OnCall(a *FunctionAnalyser, call *sitter.Node) (bool, error) {
	obj, attr, ok := names.AttrAccessPair(h.name, call, a.res.Source)
	if !ok {
		if err := a.sess.Warning(fmt.Sprintf("%s with a dynamic attribute name cannot be resolved, treating as an opaque call", h.name), a.loc(call)); err != nil {
			return false, err
		}
		return false, nil
	}

	full := obj + "." + attr
	name := symbol.NewNameAt(full, symbol.BasenameFromName(obj), a.loc(call))
	a.record(name, h.acc)

	if h.name == "setattr" {
		// The assigned value is an ordinary read.
		if args := parser.CallArguments(call); len(args) >= 3 {
			if err := a.visitExpr(args[2], accessGet); err != nil {
				return true, err
			}
		}
	}
	return true, nil
}

// sortedHandler contributes the accesses of sorted's iterable and key
// arguments without recording an opaque call. A one-argument key lambda is
// folded in with its parameter rebound onto the iterable.
type sortedHandler struct{}

func (sortedHandler) Name() string          { return "sorted" }
func (sortedHandler) QualifiedName() string { return "sorted" }
func (sortedHandler) OnDef() *ir.FunctionIR { return ir.NewFunctionIR() }

func (sortedHandler) OnCall(a *FunctionAnalyser, call *sitter.Node) (bool, error) {
	var iterable *sitter.Node
	var key *sitter.Node
	for _, arg := range parser.CallArguments(call) {
		if arg.Type() == parser.NodeKeywordArg {
			if parser.NameOf(arg, a.res.Source) == "key" {
				key = arg.ChildByFieldName("value")
			}
			continue
		}
		if iterable == nil {
			iterable = arg
		}
	}
	if iterable == nil {
		return true, nil
	}
	if err := a.visitExpr(iterable, accessGet); err != nil {
		return true, err
	}
	if key == nil {
		return true, nil
	}
	if key.Type() != parser.NodeLambda {
		return true, a.visitExpr(key, accessGet)
	}

	iface := symbol.InterfaceFromParameters(parser.ParametersOf(key), a.res.Source)
	params := iface.All()
	if len(params) != 1 {
		return true, a.sess.Fatal("the key of sorted must take exactly one argument", a.loc(key))
	}
	_, iterName := names.SafeOf(iterable, a.res.Source)
	return true, a.foldRebound(key.ChildByFieldName("body"), iface, params[0], iterName)
}

// defaultdictHandler contributes the effect of the default factory: a named
// callable becomes a call, a lambda is folded in, anything else is read.
type defaultdictHandler struct{}

func (defaultdictHandler) Name() string          { return "defaultdict" }
func (defaultdictHandler) QualifiedName() string { return "collections.defaultdict" }
func (defaultdictHandler) OnDef() *ir.FunctionIR { return ir.NewFunctionIR() }

func (defaultdictHandler) OnCall(a *FunctionAnalyser, call *sitter.Node) (bool, error) {
	args := parser.CallArguments(call)
	if len(args) == 0 {
		return true, nil
	}
	factory := args[0]
	switch factory.Type() {
	case parser.NodeIdentifier, parser.NodeAttribute:
		_, full := names.SafeOf(factory, a.res.Source)
		target, err := a.ctx.GetCallTarget(symbol.WithCallBrackets(full), a.loc(factory), a.sess)
		if err != nil {
			return true, err
		}
		a.ir.AddCall(symbol.Call{
			Name:     symbol.WithCallBrackets(full),
			Args:     &symbol.CallArguments{},
			Target:   target,
			Location: a.loc(factory),
		})
		return true, nil
	case parser.NodeLambda:
		iface := symbol.InterfaceFromParameters(parser.ParametersOf(factory), a.res.Source)
		sub := a.separate()
		sub.ctx.AddParameters(iface)
		if err := sub.visitExpr(factory.ChildByFieldName("body"), accessGet); err != nil {
			return true, err
		}
		a.ir.Union(sub.ir)
		return true, nil
	}
	return true, a.visitExpr(factory, accessGet)
}

// separate returns an analyser in a nested scope with its own IR, for
// contributions that must be rewritten before merging.
func (a *FunctionAnalyser) separate() *FunctionAnalyser {
	return &FunctionAnalyser{
		res:  a.res,
		sess: a.sess,
		ctx:  context.NewContext(a.ctx, ""),
		ir:   ir.NewFunctionIR(),
	}
}

// foldRebound analyses body with iface's parameters in scope, rewrites
// accesses through param onto onto, and merges the result into a's IR.
func (a *FunctionAnalyser) foldRebound(body *sitter.Node, iface *symbol.CallInterface, param, onto string) error {
	sub := a.separate()
	sub.ctx.AddParameters(iface)
	if err := sub.visitExpr(body, accessGet); err != nil {
		return err
	}
	rebind := func(set map[string]symbol.Name, add func(symbol.Name)) {
		for _, n := range set {
			if n.Basename != param {
				add(n)
				continue
			}
			renamed := strings.Replace(n.Name, param, onto, 1)
			if strings.HasPrefix(n.Name, "*") {
				renamed = strings.Replace(n.Name, "*"+param, "*"+onto, 1)
			}
			add(symbol.NewNameAt(renamed, symbol.BasenameFromName(onto), n.Location))
		}
	}
	rebind(sub.ir.Gets, a.ir.AddGet)
	rebind(sub.ir.Sets, a.ir.AddSet)
	rebind(sub.ir.Dels, a.ir.AddDel)
	for _, c := range sub.ir.Calls {
		a.ir.AddCall(c)
	}
	return nil
}
