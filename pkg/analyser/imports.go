package analyser

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/panbanda/augur/pkg/config"
	"github.com/panbanda/augur/pkg/context"
	"github.com/panbanda/augur/pkg/diagnostics"
	"github.com/panbanda/augur/pkg/ir"
	"github.com/panbanda/augur/pkg/locator"
	"github.com/panbanda/augur/pkg/parser"
	"github.com/panbanda/augur/pkg/symbol"
)

// ImportStats counts the work done while following imports.
type ImportStats struct {
	Lines         int `json:"lines"`
	Imports       int `json:"imports"`
	UniqueImports int `json:"unique_imports"`
}

// ImportFollower analyses the transitive imports of a file. Imports form a
// cyclic graph, but analysis is deterministic and context free, so files
// already analysed are skipped and the walk becomes a breadth-first pass
// over a DAG.
type ImportFollower struct {
	cfg      *config.Config
	sess     *diagnostics.Session
	resolver *locator.Resolver
	parser   *parser.Parser
}

// NewImportFollower prepares a follower sharing the target's parser and
// resolver.
func NewImportFollower(p *parser.Parser, resolver *locator.Resolver, cfg *config.Config, sess *diagnostics.Session) *ImportFollower {
	return &ImportFollower{cfg: cfg, sess: sess, resolver: resolver, parser: p}
}

// Follow analyses every import reachable from the root context, to the
// configured depth, and returns their IR keyed by module name.
func (f *ImportFollower) Follow(rootCtx *context.Context) (ir.ImportsIR, *ImportStats, error) {
	importsIR := ir.ImportsIR{}
	stats := &ImportStats{}
	if f.cfg.Imports.FollowDepth == config.FollowNone {
		return importsIR, stats, nil
	}

	queue := importsOf(rootCtx)
	seen := map[string]struct{}{}

	var bar *progressbar.ProgressBar
	if f.cfg.Output.Verbose {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("following imports"),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Finish()
	}

	for len(queue) > 0 {
		imp := queue[0]
		queue = queue[1:]

		if imp.Spec == nil {
			if err := f.sess.Error(fmt.Sprintf("unable to resolve import %q", imp.QualifiedName), imp.Location); err != nil {
				return nil, nil, err
			}
			continue
		}
		if imp.Spec.Origin == "" {
			// Resolved by name only, nothing to follow into.
			continue
		}
		if _, ok := seen[imp.Spec.Origin]; ok {
			continue
		}
		if f.cfg.IsBlacklistedModule(imp.ModuleName) {
			continue
		}
		if !f.followable(imp.Spec.Kind) {
			continue
		}
		seen[imp.Spec.Origin] = struct{}{}

		res, err := f.parser.ParseFile(imp.Spec.Origin)
		if err != nil {
			if err := f.sess.Error(fmt.Sprintf("unable to parse module %q: %v", imp.ModuleName, err), imp.Location); err != nil {
				return nil, nil, err
			}
			continue
		}

		f.sess.EnterFile(imp.Spec.Origin)
		impCtx, err := context.CompileRootContext(res, f.resolver, f.sess)
		if err != nil {
			return nil, nil, err
		}
		impIR, err := NewFileAnalyser(res, impCtx, f.cfg, f.sess).Analyse()
		if err != nil {
			return nil, nil, err
		}
		importsIR[imp.ModuleName] = impIR

		transitive := importsOf(impCtx)
		queue = append(queue, transitive...)

		stats.Lines += res.Lines
		stats.Imports += len(transitive)
		if bar != nil {
			bar.Add(1)
		}
	}

	stats.UniqueImports = len(seen)
	return importsIR, stats, nil
}

// followable gates module kinds by the configured follow depth.
func (f *ImportFollower) followable(kind locator.Kind) bool {
	switch kind {
	case locator.KindLocal:
		return f.cfg.Imports.FollowDepth >= config.FollowLocal
	case locator.KindThirdParty:
		return f.cfg.Imports.FollowDepth >= config.FollowPip
	case locator.KindStdlib:
		return f.cfg.Imports.FollowDepth >= config.FollowStdlib
	}
	return false
}

func importsOf(ctx *context.Context) []symbol.Import {
	out := []symbol.Import{}
	for _, sym := range ctx.Root().Symbols() {
		if imp, ok := sym.(symbol.Import); ok {
			out = append(out, imp)
		}
	}
	return out
}
