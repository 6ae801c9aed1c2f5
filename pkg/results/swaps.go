// Package results simplifies per-function IR into final results: every
// function's transitive gets, sets, dels, and calls, with callee-local names
// rebound to the caller's arguments.
package results

import (
	"fmt"
	"sort"
	"strings"

	"github.com/panbanda/augur/pkg/ir"
	"github.com/panbanda/augur/pkg/names"
	"github.com/panbanda/augur/pkg/symbol"
)

// constructSwaps maps a callee's formal parameter names to the names bound
// at the call site. Unmatched parameters keep their local names, as a
// default value may cover them.
func (g *generator) constructSwaps(target symbol.Symbol, iface *symbol.CallInterface, call symbol.Call) (map[string]string, error) {
	swaps := map[string]string{}
	if iface == nil || iface.Any {
		return swaps, nil
	}

	args := call.Args
	if args == nil {
		args = &symbol.CallArguments{}
	}
	if args.HasStarArgs || args.HasStarKwargs {
		if err := g.sess.Error(fmt.Sprintf("call to %q unpacks arguments, its parameters cannot be rebound", call.NameOfCall()), call.Location); err != nil {
			return nil, err
		}
		return swaps, nil
	}

	positional := append(append([]string{}, iface.PosOnlyArgs...), iface.Args...)
	byPosition := map[string]struct{}{}
	for i, param := range positional {
		if i >= len(args.Args) {
			break
		}
		swaps[param] = args.Args[i]
		byPosition[param] = struct{}{}
	}

	if len(args.Args) > len(positional) {
		if iface.Vararg == "" {
			if err := g.sess.Error(fmt.Sprintf("too many positional arguments in call to %q", call.NameOfCall()), call.Location); err != nil {
				return nil, err
			}
		}
	}
	if iface.Vararg != "" {
		swaps[iface.Vararg] = names.LocalValuePrefix + "Tuple"
	}

	kwargs := map[string]string{}
	for k, v := range args.Kwargs {
		kwargs[k] = v
	}

	for param := range byPosition {
		if _, ok := kwargs[param]; ok {
			return nil, g.sess.Fatal(fmt.Sprintf("%q given by position and name in call to %q", param, call.NameOfCall()), call.Location)
		}
	}

	byName := iface.KwOnlyArgs
	if len(args.Args) < len(positional) {
		byName = append(positional[len(args.Args):], byName...)
	}
	for _, param := range byName {
		if value, ok := kwargs[param]; ok {
			swaps[param] = value
			delete(kwargs, param)
		}
	}

	if iface.Kwarg != "" {
		swaps[iface.Kwarg] = names.LocalValuePrefix + "Dict"
		kwargs = map[string]string{}
	}
	if len(kwargs) > 0 {
		unexpected := make([]string, 0, len(kwargs))
		for k := range kwargs {
			unexpected = append(unexpected, k)
		}
		sort.Strings(unexpected)
		if err := g.sess.Error(fmt.Sprintf("unexpected named arguments in call to %q: %s", call.NameOfCall(), strings.Join(unexpected, ", ")), call.Location); err != nil {
			return nil, err
		}
	}
	return swaps, nil
}

// unbindName rebinds a name onto a new basename, preserving any starred
// prefix.
func unbindName(n symbol.Name, newBase string) symbol.Name {
	if n.Basename == newBase {
		return symbol.Name{Name: n.Name, Basename: n.Basename}
	}
	newName := n.Name
	if strings.HasPrefix(n.Name, "*") {
		newName = strings.Replace(n.Name, "*"+n.Basename, "*"+newBase, 1)
	} else {
		newName = strings.Replace(n.Name, n.Basename, newBase, 1)
	}
	return symbol.Name{Name: newName, Basename: newBase}
}

// unbindIR rebinds every accessed name in an IR through the swap map. Calls
// are left as they are; they have already been simplified into the sets.
func unbindIR(funcIR *ir.FunctionIR, swaps map[string]string) *ir.FunctionIR {
	out := ir.NewFunctionIR()
	rebind := func(set map[string]symbol.Name, add func(symbol.Name)) {
		for _, n := range set {
			newBase, ok := swaps[n.Basename]
			if !ok {
				newBase = n.Basename
			}
			add(unbindName(n, newBase))
		}
	}
	rebind(funcIR.Gets, out.AddGet)
	rebind(funcIR.Sets, out.AddSet)
	rebind(funcIR.Dels, out.AddDel)
	for _, c := range funcIR.Calls {
		out.AddCall(c)
	}
	return out
}
