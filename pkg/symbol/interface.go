package symbol

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/augur/pkg/names"
	"github.com/panbanda/augur/pkg/parser"
)

// CallInterface is the formal parameter list of a callable, grouped the way
// Python groups them. A nil interface means the symbol is not callable; the
// Any flag marks callables whose signature is unknown and which therefore
// accept any arguments.
type CallInterface struct {
	PosOnlyArgs []string `json:"posonlyargs,omitempty"`
	Args        []string `json:"args,omitempty"`
	Vararg      string   `json:"vararg,omitempty"`
	KwOnlyArgs  []string `json:"kwonlyargs,omitempty"`
	Kwarg       string   `json:"kwarg,omitempty"`
	Any         bool     `json:"any,omitempty"`
}

// AnyInterface returns a wildcard interface accepting any arguments.
func AnyInterface() *CallInterface {
	return &CallInterface{Any: true}
}

// All returns every formal parameter name in declaration order.
func (ci *CallInterface) All() []string {
	all := make([]string, 0, len(ci.PosOnlyArgs)+len(ci.Args)+len(ci.KwOnlyArgs)+2)
	all = append(all, ci.PosOnlyArgs...)
	all = append(all, ci.Args...)
	if ci.Vararg != "" {
		all = append(all, ci.Vararg)
	}
	all = append(all, ci.KwOnlyArgs...)
	if ci.Kwarg != "" {
		all = append(all, ci.Kwarg)
	}
	return all
}

// InterfaceFromParameters builds a CallInterface from a parameters or
// lambda_parameters node. A nil node yields an empty interface, matching a
// zero-argument lambda.
func InterfaceFromParameters(params *sitter.Node, source []byte) *CallInterface {
	ci := &CallInterface{}
	if params == nil {
		return ci
	}

	// Parameters before a "/" separator are positional-only, parameters
	// after a bare "*" or the *args splat are keyword-only.
	keywordOnly := false
	appendArg := func(name string) {
		if name == "" {
			return
		}
		if keywordOnly {
			ci.KwOnlyArgs = append(ci.KwOnlyArgs, name)
		} else {
			ci.Args = append(ci.Args, name)
		}
	}

	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		switch p.Type() {
		case parser.NodeIdentifier:
			appendArg(string(source[p.StartByte():p.EndByte()]))
		case parser.NodeDefaultParameter, parser.NodeTypedDefaultParam:
			appendArg(parser.NameOf(p, source))
		case parser.NodeTypedParameter:
			if id := p.NamedChild(0); id != nil && id.Type() == parser.NodeIdentifier {
				appendArg(string(source[id.StartByte():id.EndByte()]))
			}
		case parser.NodeListSplatPattern:
			if id := p.NamedChild(0); id != nil {
				ci.Vararg = string(source[id.StartByte():id.EndByte()])
			}
			keywordOnly = true
		case parser.NodeDictSplatPattern:
			if id := p.NamedChild(0); id != nil {
				ci.Kwarg = string(source[id.StartByte():id.EndByte()])
			}
		case parser.NodePositionalSeparator:
			ci.PosOnlyArgs = append(ci.PosOnlyArgs, ci.Args...)
			ci.Args = nil
		case parser.NodeKeywordSeparator:
			keywordOnly = true
		}
	}
	return ci
}

// CallArguments is the actual argument list at a call site. Each value is a
// resolved dotted name or a local-value placeholder.
type CallArguments struct {
	Args   []string          `json:"args,omitempty"`
	Kwargs map[string]string `json:"kwargs,omitempty"`

	// HasStarArgs and HasStarKwargs record iterable and dictionary
	// unpacking at the call site; such calls cannot be rebound onto the
	// target's formal parameters.
	HasStarArgs   bool `json:"has_star_args,omitempty"`
	HasStarKwargs bool `json:"has_star_kwargs,omitempty"`
}

// ArgumentsFromCall builds CallArguments from a call node. When self is
// non-empty it is prepended as the implicit first positional argument, as for
// a bound method call.
func ArgumentsFromCall(call *sitter.Node, source []byte, self string) *CallArguments {
	ca := &CallArguments{Kwargs: map[string]string{}}
	if self != "" {
		ca.Args = append(ca.Args, self)
	}
	for _, arg := range parser.CallArguments(call) {
		switch arg.Type() {
		case parser.NodeKeywordArg:
			key := parser.NameOf(arg, source)
			value := arg.ChildByFieldName("value")
			_, full := names.SafeOf(value, source)
			ca.Kwargs[key] = full
		case parser.NodeListSplat:
			ca.HasStarArgs = true
			_, full := names.SafeOf(arg, source)
			ca.Args = append(ca.Args, full)
		case parser.NodeDictSplat:
			ca.HasStarKwargs = true
		default:
			_, full := names.SafeOf(arg, source)
			ca.Args = append(ca.Args, full)
		}
	}
	return ca
}
