package results

import (
	"github.com/panbanda/augur/pkg/ir"
	"github.com/panbanda/augur/pkg/symbol"
)

// dagNode is one function in the call tree rooted at a definition under
// simplification. Cycles are cut by the seen set: revisiting a call cannot
// change the union, so direct and mutual recursion both terminate.
type dagNode struct {
	call     *symbol.Call
	sym      symbol.Symbol
	funcIR   *ir.FunctionIR
	children []*dagNode
}

// populate expands the node's calls into child nodes breadth-first,
// recording visited calls in seen.
func (g *generator) populate(node *dagNode, seen map[string]struct{}) error {
	for _, callee := range node.funcIR.Calls {
		if _, ok := seen[callee.ID()]; ok {
			continue
		}
		target, targetIR, err := g.calleeTargetAndIR(callee, node.sym)
		if err != nil {
			return err
		}
		if target == nil || targetIR == nil {
			continue
		}
		callee := callee
		node.children = append(node.children, &dagNode{
			call:   &callee,
			sym:    target,
			funcIR: targetIR,
		})
		seen[callee.ID()] = struct{}{}
	}

	for _, child := range node.children {
		if err := g.populate(child, seen); err != nil {
			return err
		}
	}
	return nil
}

// simplify folds the children's simplified IR into the node's own,
// rebinding each child's names through its call-site swaps.
func (g *generator) simplify(node *dagNode) (*ir.FunctionIR, error) {
	if len(node.children) == 0 {
		return node.funcIR.Copy(), nil
	}

	out := node.funcIR.Copy()
	for _, child := range node.children {
		childIR, err := g.simplify(child)
		if err != nil {
			return nil, err
		}
		swaps, err := g.constructSwaps(child.sym, interfaceOf(child.sym), *child.call)
		if err != nil {
			return nil, err
		}
		unbound := unbindIR(childIR, swaps)
		for k, v := range unbound.Gets {
			out.Gets[k] = v
		}
		for k, v := range unbound.Sets {
			out.Sets[k] = v
		}
		for k, v := range unbound.Dels {
			out.Dels[k] = v
		}
	}
	return out, nil
}

func interfaceOf(sym symbol.Symbol) *symbol.CallInterface {
	switch s := sym.(type) {
	case symbol.Func:
		return s.Interface
	case symbol.Class:
		return s.Interface
	}
	return nil
}
