package results

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/panbanda/augur/pkg/config"
	"github.com/panbanda/augur/pkg/diagnostics"
	"github.com/panbanda/augur/pkg/ir"
	"github.com/panbanda/augur/pkg/symbol"
)

// FunctionResults is the simplified result of one definition: the names it
// transitively touches, sorted, with call brackets stripped from calls.
type FunctionResults struct {
	Gets  []string `json:"gets"`
	Sets  []string `json:"sets"`
	Dels  []string `json:"dels"`
	Calls []string `json:"calls"`
}

// FileResults maps definition names to their simplified results, in
// definition order.
type FileResults struct {
	order   []string
	results map[string]*FunctionResults
}

// Get returns the results recorded for a definition name.
func (f *FileResults) Get(name string) (*FunctionResults, bool) {
	r, ok := f.results[name]
	return r, ok
}

// Names returns the definition names in order.
func (f *FileResults) Names() []string {
	return append([]string(nil), f.order...)
}

// Len is the number of definitions with results.
func (f *FileResults) Len() int { return len(f.order) }

func (f *FileResults) set(name string, r *FunctionResults) {
	if _, ok := f.results[name]; !ok {
		f.order = append(f.order, name)
	}
	f.results[name] = r
}

// MarshalJSON renders the results as an object keyed by definition name, in
// definition order.
func (f *FileResults) MarshalJSON() ([]byte, error) {
	out := []byte{'{'}
	for i, name := range f.order {
		if i > 0 {
			out = append(out, ',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.results[name])
		if err != nil {
			return nil, err
		}
		out = append(out, key...)
		out = append(out, ':')
		out = append(out, val...)
	}
	return append(out, '}'), nil
}

// UnmarshalJSON restores results from a serialized object, preserving
// definition order. Used when reloading cached results.
func (f *FileResults) UnmarshalJSON(data []byte) error {
	f.order = nil
	f.results = map[string]*FunctionResults{}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok != json.Delim('{') {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected key, got %v", tok)
		}
		var fr FunctionResults
		if err := dec.Decode(&fr); err != nil {
			return err
		}
		f.set(name, &fr)
	}
	return nil
}

type generator struct {
	fileIR    *ir.FileIR
	importsIR ir.ImportsIR
	cfg       *config.Config
	sess      *diagnostics.Session
}

// Generate simplifies a file's IR against its followed imports into final
// results. Definitions matching a result exclusion pattern are analysed but
// withheld from the output.
func Generate(fileIR *ir.FileIR, importsIR ir.ImportsIR, cfg *config.Config, sess *diagnostics.Session) (*FileResults, error) {
	g := &generator{fileIR: fileIR, importsIR: importsIR, cfg: cfg, sess: sess}
	sess.EnterSimplification()

	out := &FileResults{results: map[string]*FunctionResults{}}
	for _, sym := range fileIR.Symbols() {
		name := sym.SymbolName()
		if cfg.ShouldExcludeResult(name) {
			continue
		}
		funcIR, _ := fileIR.Get(sym)

		root := &dagNode{sym: sym, funcIR: funcIR}
		if err := g.populate(root, map[string]struct{}{}); err != nil {
			return nil, err
		}
		simplified, err := g.simplify(root)
		if err != nil {
			return nil, err
		}
		out.set(name, flatten(simplified))
	}
	return out, nil
}

// flatten reduces an IR to sorted name lists.
func flatten(funcIR *ir.FunctionIR) *FunctionResults {
	res := &FunctionResults{
		Gets:  sortedNameSet(funcIR.Gets),
		Sets:  sortedNameSet(funcIR.Sets),
		Dels:  sortedNameSet(funcIR.Dels),
		Calls: []string{},
	}
	seen := map[string]struct{}{}
	for _, c := range funcIR.Calls {
		name := c.NameOfCall()
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		res.Calls = append(res.Calls, name)
	}
	sort.Strings(res.Calls)
	return res
}

func sortedNameSet(set map[string]symbol.Name) []string {
	out := make([]string, 0, len(set))
	for _, n := range set {
		out = append(out, n.Name)
	}
	sort.Strings(out)
	return out
}
