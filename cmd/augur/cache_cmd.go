package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/augur/internal/cache"
)

func cacheCmd() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear the result cache",
		Subcommands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show cache entry count and size",
				Action: runCacheStatsCmd,
			},
			{
				Name:   "clear",
				Usage:  "Remove all cached results",
				Action: runCacheClearCmd,
			},
		},
	}
}

func openCache(c *cli.Context) (*cache.Cache, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	return cache.New(cfg.Cache.Dir, version, true)
}

func runCacheStatsCmd(c *cli.Context) error {
	store, err := openCache(c)
	if err != nil {
		return err
	}
	stats, err := store.GetStats()
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	fmt.Printf("Entries: %d\n", stats.Entries)
	fmt.Printf("Size: %s\n", formatBytes(stats.TotalSize))
	if stats.Entries > 0 {
		fmt.Printf("Oldest: %s ago\n", stats.OldestAge.Round(time.Second))
		fmt.Printf("Newest: %s ago\n", stats.NewestAge.Round(time.Second))
	}
	return nil
}

func runCacheClearCmd(c *cli.Context) error {
	store, err := openCache(c)
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	color.Green("Cache cleared")
	return nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
