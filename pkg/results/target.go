package results

import (
	"fmt"
	"strings"

	"github.com/panbanda/augur/pkg/config"
	"github.com/panbanda/augur/pkg/ir"
	"github.com/panbanda/augur/pkg/locator"
	"github.com/panbanda/augur/pkg/symbol"
)

// calleeTargetAndIR resolves the definition and IR a call lands on, looking
// through the current file and the followed imports. Calls that cannot be
// resolved to an analysed definition yield nil and are reported at a
// severity matching how surprising the failure is.
func (g *generator) calleeTargetAndIR(callee symbol.Call, caller symbol.Symbol) (symbol.Symbol, *ir.FunctionIR, error) {
	switch target := callee.Target.(type) {
	case nil:
		return nil, nil, nil
	case symbol.Builtin:
		return nil, nil, nil
	case symbol.Name:
		// Procedural parameter, cannot be resolved statically.
		return nil, nil, nil
	case symbol.Func:
		return g.resolveDefinition(callee, target, caller, false)
	case symbol.Class:
		return g.resolveDefinition(callee, target, caller, true)
	case symbol.Import:
		return g.resolveImport(callee.Name, target, caller)
	}
	return nil, nil, nil
}

// resolveDefinition finds the IR for a function or class target, first in
// the current file, then in the import holding its defining file.
func (g *generator) resolveDefinition(callee symbol.Call, target symbol.Symbol, caller symbol.Symbol, isClass bool) (symbol.Symbol, *ir.FunctionIR, error) {
	if targetIR, ok := g.fileIR.Get(target); ok {
		return target, targetIR, nil
	}

	if loc := target.Loc(); loc != nil && loc.File != "" {
		for _, moduleIR := range g.importsIR {
			if moduleIR.Path != loc.File {
				continue
			}
			if targetIR, ok := moduleIR.Get(target); ok {
				return target, targetIR, nil
			}
		}
	}

	msg := fmt.Sprintf("unable to resolve call to %q", target.SymbolName())
	if caller != nil {
		msg = fmt.Sprintf("%s in %q", msg, caller.SymbolName())
	}
	switch {
	case isClass:
		return nil, nil, g.sess.Error(msg, callee.Location)
	case g.cfg.ShouldExcludeResult(target.SymbolName()):
		return nil, nil, g.sess.Error(msg+", the call target matches an exclusion", callee.Location)
	case !strings.Contains(callee.Name, "."):
		return nil, nil, g.sess.Error(msg+", likely a nested function or ignored", callee.Location)
	default:
		g.sess.Info(msg, callee.Location)
		return nil, nil, nil
	}
}

// resolveImport chases a call through an import, possibly across several
// re-exporting modules.
func (g *generator) resolveImport(name string, target symbol.Import, caller symbol.Symbol) (symbol.Symbol, *ir.FunctionIR, error) {
	module := target.ModuleName

	if g.cfg.IsBlacklistedModule(module) {
		return nil, nil, nil
	}
	if g.cfg.Imports.FollowDepth == config.FollowNone {
		g.sess.Info(fmt.Sprintf("ignoring call to imported function %q", target.Name), target.Location)
		return nil, nil, nil
	}
	if target.Spec != nil && !g.followable(target.Spec.Kind) {
		g.sess.Info(fmt.Sprintf("ignoring call to %q imported from %s module %q", target.Name, target.Spec.Kind, module), target.Location)
		return nil, nil, nil
	}

	moduleIR, ok := g.importsIR[module]
	if !ok || moduleIR.Context == nil {
		return nil, nil, g.sess.Error(fmt.Sprintf("unable to resolve call through import %q, module %q was not analysed", name, module), target.Location)
	}

	// The name local to the imported module: qualify the as-name, then
	// strip the module prefix.
	localName := strings.Replace(name, target.Name, target.QualifiedName, 1)
	localName = strings.TrimPrefix(localName, module+".")
	localName = symbol.WithoutCallBrackets(localName)

	newTarget, found := moduleIR.Context.Lookup(localName)
	if !found {
		if strings.Contains(localName, ".") {
			g.sess.Info(fmt.Sprintf("unable to resolve call to method %q in import %q", localName, module), target.Location)
			return nil, nil, nil
		}
		return nil, nil, g.sess.Error(fmt.Sprintf("unable to resolve call to %q in import %q", localName, module), target.Location)
	}

	switch resolved := newTarget.(type) {
	case symbol.Func:
		targetIR, ok := moduleIR.Get(resolved)
		if !ok {
			return nil, nil, g.sess.Error(fmt.Sprintf("unable to resolve imported callable %q in %q, it is likely ignored", localName, module), target.Location)
		}
		return resolved, targetIR, nil
	case symbol.Class:
		targetIR, ok := moduleIR.Get(resolved)
		if !ok {
			return nil, nil, g.sess.Error(fmt.Sprintf("unable to resolve imported initialiser %q in %q, it is likely ignored", localName, module), target.Location)
		}
		return resolved, targetIR, nil
	case symbol.Import:
		return g.resolveImport(resolved.Name, resolved, caller)
	}

	return nil, nil, g.sess.Error(fmt.Sprintf("unable to resolve call to %q in import %q", localName, module), target.Location)
}

func (g *generator) followable(kind locator.Kind) bool {
	switch kind {
	case locator.KindLocal:
		return g.cfg.Imports.FollowDepth >= config.FollowLocal
	case locator.KindThirdParty:
		return g.cfg.Imports.FollowDepth >= config.FollowPip
	case locator.KindStdlib:
		return g.cfg.Imports.FollowDepth >= config.FollowStdlib
	}
	return false
}
