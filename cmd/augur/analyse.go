package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/augur/internal/cache"
	"github.com/panbanda/augur/internal/output"
	"github.com/panbanda/augur/pkg/analyser"
	"github.com/panbanda/augur/pkg/config"
	"github.com/panbanda/augur/pkg/diagnostics"
	"github.com/panbanda/augur/pkg/results"
)

func analyseCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyse",
		Aliases:   []string{"analyze"},
		Usage:     "Analyse the attribute usage of one Python file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, markdown, toon",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.IntFlag{
				Name:  "follow",
				Usage: "Import follow depth: 0 none, 1 local, 2 site-packages, 3 stdlib",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Treat every warning as fatal",
			},
			&cli.IntFlag{
				Name:  "threshold",
				Usage: "Maximum tolerated badness, 0 for unlimited",
			},
			&cli.BoolFlag{
				Name:  "no-warnings",
				Usage: "Suppress warnings for the target file",
			},
			&cli.BoolFlag{
				Name:  "import-warnings",
				Usage: "Show warnings raised while analysing followed imports",
			},
			&cli.StringSliceFlag{
				Name:  "search-path",
				Usage: "Extra directory probed when resolving imports",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable result caching",
			},
			&cli.BoolFlag{
				Name:  "ir",
				Usage: "Also emit the per-definition intermediate results",
			},
			&cli.BoolFlag{
				Name:  "stats",
				Usage: "Also emit timing and size statistics",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output",
			},
		},
		Action: runAnalyseCmd,
	}
}

// loadConfig loads the config file named by the global flag, or probes the
// default locations, then layers any analyse flags over it.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.LoadOrDefault()
	}

	if c.IsSet("format") {
		cfg.Output.Format = c.String("format")
	}
	if c.IsSet("follow") {
		cfg.Imports.FollowDepth = c.Int("follow")
	}
	if c.IsSet("strict") {
		cfg.Analysis.Strict = c.Bool("strict")
	}
	if c.IsSet("threshold") {
		cfg.Analysis.Threshold = c.Int("threshold")
	}
	if c.IsSet("no-warnings") {
		cfg.Analysis.ShowWarnings = !c.Bool("no-warnings")
	}
	if c.IsSet("import-warnings") {
		cfg.Analysis.ShowImportWarnings = c.Bool("import-warnings")
	}
	if c.IsSet("search-path") {
		cfg.Analysis.SearchPaths = append(cfg.Analysis.SearchPaths, c.StringSlice("search-path")...)
	}
	if c.Bool("no-cache") {
		cfg.Cache.Enabled = false
	}
	if c.Bool("ir") {
		cfg.Output.IR = true
	}
	if c.Bool("stats") {
		cfg.Output.Stats = true
	}
	if c.Bool("verbose") {
		cfg.Output.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runAnalyseCmd(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one target file, got %d", c.Args().Len())
	}
	target, err := filepath.Abs(c.Args().First())
	if err != nil {
		return fmt.Errorf("invalid path %s: %w", c.Args().First(), err)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	formatter, err := output.NewFormatter(output.ParseFormat(cfg.Output.Format), c.String("output"), cfg.Output.Color)
	if err != nil {
		return err
	}
	defer formatter.Close()

	store, err := cache.New(cfg.Cache.Dir, version, cfg.Cache.Enabled)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}

	// IR and stats are not cached, so those runs always analyse.
	cacheable := !cfg.Output.IR && !cfg.Output.Stats
	if cacheable {
		if data, ok := store.Get(target); ok {
			cached := &results.FileResults{}
			if err := json.Unmarshal(data, cached); err == nil {
				return formatter.Output(&output.ResultsReport{Target: target, Results: cached})
			}
			// A stale or corrupt entry falls through to a fresh run.
			_ = store.Invalidate(target)
		}
	}

	sess := diagnostics.NewSession()
	res, err := analyser.Analyse(target, cfg, sess)
	if err != nil {
		return abortOnFatal(err)
	}

	fileResults, err := results.Generate(res.FileIR, res.ImportsIR, cfg, sess)
	if err != nil {
		return abortOnFatal(err)
	}

	if !sess.WithinThreshold(target, cfg.Analysis.Threshold) {
		return fmt.Errorf("badness %d exceeds threshold %d for %s",
			sess.TargetBadness(target), cfg.Analysis.Threshold, target)
	}

	if err := formatter.Output(&output.ResultsReport{Target: target, Results: fileResults}); err != nil {
		return err
	}
	if cfg.Output.IR {
		if err := formatter.Output(&output.IRReport{Target: target, FileIR: res.FileIR, ImportsIR: res.ImportsIR}); err != nil {
			return err
		}
	}
	if cfg.Output.Stats {
		if err := formatter.Output(&output.StatsReport{Target: target, Stats: res.Stats}); err != nil {
			return err
		}
	}

	if cacheable {
		if data, err := json.Marshal(fileResults); err == nil {
			imports := map[string]string{}
			for _, moduleIR := range res.ImportsIR {
				if moduleIR.Path == "" {
					continue
				}
				if hash, err := cache.HashFile(moduleIR.Path); err == nil {
					imports[moduleIR.Path] = hash
				}
			}
			_ = store.Set(target, imports, data)
		}
	}

	return nil
}

// abortOnFatal maps an already reported fatal finding to a bare non-zero
// exit, so it is not printed twice.
func abortOnFatal(err error) error {
	var fatal *diagnostics.FatalError
	if errors.As(err, &fatal) {
		return cli.Exit("", 1)
	}
	return err
}
