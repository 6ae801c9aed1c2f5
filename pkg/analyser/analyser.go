package analyser

import (
	"fmt"
	"time"

	"github.com/panbanda/augur/pkg/config"
	"github.com/panbanda/augur/pkg/context"
	"github.com/panbanda/augur/pkg/diagnostics"
	"github.com/panbanda/augur/pkg/ir"
	"github.com/panbanda/augur/pkg/locator"
	"github.com/panbanda/augur/pkg/parser"
)

// Stats records per-phase timings and input sizes for one analysis run.
type Stats struct {
	ParseTime       time.Duration `json:"parse_time"`
	RootContextTime time.Duration `json:"root_context_time"`
	ImportsTime     time.Duration `json:"imports_time"`
	FileTime        time.Duration `json:"file_time"`

	FileLines int         `json:"file_lines"`
	Imports   ImportStats `json:"imports"`
}

// Result bundles everything produced by analysing one target file.
type Result struct {
	Target    string
	FileIR    *ir.FileIR
	ImportsIR ir.ImportsIR
	Stats     *Stats
}

// Analyse parses and analyses the target file and, depending on the
// configured follow depth, its transitive imports.
func Analyse(target string, cfg *config.Config, sess *diagnostics.Session) (*Result, error) {
	sess.Strict = cfg.Analysis.Strict
	sess.ShowWarnings = cfg.Analysis.ShowWarnings
	sess.EnterFile(target)

	p := parser.New()
	defer p.Close()

	stats := &Stats{}

	start := time.Now()
	res, err := p.ParseFile(target)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", target, err)
	}
	stats.ParseTime = time.Since(start)
	stats.FileLines = res.Lines

	resolver := locator.NewResolver(locator.DefaultRoots(target, cfg.Analysis.SearchPaths))

	start = time.Now()
	rootCtx, err := context.CompileRootContext(res, resolver, sess)
	if err != nil {
		return nil, err
	}
	stats.RootContextTime = time.Since(start)

	start = time.Now()
	sess.ShowWarnings = cfg.Analysis.ShowImportWarnings
	follower := NewImportFollower(p, resolver, cfg, sess)
	importsIR, importStats, err := follower.Follow(rootCtx)
	if err != nil {
		return nil, err
	}
	sess.ShowWarnings = cfg.Analysis.ShowWarnings
	stats.ImportsTime = time.Since(start)
	stats.Imports = *importStats

	start = time.Now()
	sess.EnterFile(target)
	fileIR, err := NewFileAnalyser(res, rootCtx, cfg, sess).Analyse()
	if err != nil {
		return nil, err
	}
	stats.FileTime = time.Since(start)

	return &Result{
		Target:    target,
		FileIR:    fileIR,
		ImportsIR: importsIR,
		Stats:     stats,
	}, nil
}
