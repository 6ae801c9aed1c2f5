package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func main() {
	app := &cli.App{
		Name:    "augur",
		Usage:   "Python attribute usage analysis",
		Version: version,
		Description: `Augur statically analyses a Python file and reports, for every function
and class it defines, the names the definition reads, writes, deletes,
and calls, with the results of called functions folded into their
callers.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"AUGUR_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			analyseCmd(),
			initCmd(),
			cacheCmd(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
