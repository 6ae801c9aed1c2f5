package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Follow depths control how far imports are chased from the target file.
const (
	// FollowNone analyses the target file alone.
	FollowNone = 0
	// FollowLocal follows imports within the project.
	FollowLocal = 1
	// FollowPip additionally follows imports into installed packages.
	FollowPip = 2
	// FollowStdlib additionally follows imports into the standard library.
	FollowStdlib = 3
)

// Config holds all configuration options for augur.
type Config struct {
	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis"`

	// Import following behaviour
	Imports ImportsConfig `koanf:"imports"`

	// Function exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude"`

	// Cache settings
	Cache CacheConfig `koanf:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output"`
}

// AnalysisConfig controls strictness and result filtering.
type AnalysisConfig struct {
	// Strict escalates every warning and error to a fatal stop.
	Strict bool `koanf:"strict"`
	// Threshold is the maximum badness tolerated for the target file
	// before results are withheld. Zero means unlimited.
	Threshold int `koanf:"threshold"`
	// ShowWarnings toggles printing of warnings for the target file.
	ShowWarnings bool `koanf:"show_warnings"`
	// ShowImportWarnings toggles printing of warnings raised while
	// analysing followed imports.
	ShowImportWarnings bool `koanf:"show_import_warnings"`
	// SearchPaths are extra directories probed when resolving imports,
	// in the manner of site-packages.
	SearchPaths []string `koanf:"search_paths"`
}

// ImportsConfig controls how imports are followed.
type ImportsConfig struct {
	// FollowDepth is one of the Follow* levels.
	FollowDepth int `koanf:"follow_depth"`
	// Blacklist lists module name patterns never followed.
	Blacklist []string `koanf:"blacklist"`
}

// ExcludeConfig filters analysed definitions and result entries.
type ExcludeConfig struct {
	// Functions are glob patterns of definition names to skip entirely.
	Functions []string `koanf:"functions"`
	// Results are glob patterns of definition names analysed but left
	// out of the simplified output.
	Results []string `koanf:"results"`
}

// CacheConfig controls result caching.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format"` // text, json, markdown, toon
	Color   bool   `koanf:"color"`
	Verbose bool   `koanf:"verbose"`
	// IR additionally emits the per-file intermediate representation.
	IR bool `koanf:"ir"`
	// Stats additionally emits per-phase timing and counters.
	Stats bool `koanf:"stats"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Strict:             false,
			Threshold:          0,
			ShowWarnings:       true,
			ShowImportWarnings: false,
		},
		Imports: ImportsConfig{
			FollowDepth: FollowLocal,
			Blacklist:   []string{},
		},
		Exclude: ExcludeConfig{
			Functions: []string{},
			Results:   []string{},
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".augur/cache",
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Load loads configuration from a file, layered over the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault tries standard config locations or returns defaults.
func LoadOrDefault() *Config {
	names := []string{
		"augur.toml", "augur.yaml", "augur.yml", "augur.json",
		".augur.toml", ".augur.yaml", ".augur.yml", ".augur.json",
	}
	for _, dir := range []string{".", ".augur"} {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				if cfg, err := Load(path); err == nil {
					return cfg
				}
			}
		}
	}
	return DefaultConfig()
}

// Validate rejects out-of-range settings.
func (c *Config) Validate() error {
	if c.Imports.FollowDepth < FollowNone || c.Imports.FollowDepth > FollowStdlib {
		return fmt.Errorf("imports.follow_depth must be between %d and %d, got %d", FollowNone, FollowStdlib, c.Imports.FollowDepth)
	}
	switch c.Output.Format {
	case "text", "json", "markdown", "toon":
	default:
		return fmt.Errorf("output.format must be one of text, json, markdown, toon, got %q", c.Output.Format)
	}
	if c.Analysis.Threshold < 0 {
		return fmt.Errorf("analysis.threshold must not be negative, got %d", c.Analysis.Threshold)
	}
	return nil
}

// ShouldExcludeFunction reports whether a definition name matches an
// exclusion pattern and should be skipped by analysis.
func (c *Config) ShouldExcludeFunction(name string) bool {
	return matchesAny(c.Exclude.Functions, name)
}

// ShouldExcludeResult reports whether a definition name should be omitted
// from the simplified output.
func (c *Config) ShouldExcludeResult(name string) bool {
	return matchesAny(c.Exclude.Results, name)
}

// IsBlacklistedModule reports whether a module name matches an import
// blacklist pattern.
func (c *Config) IsBlacklistedModule(module string) bool {
	return matchesAny(c.Imports.Blacklist, module)
}

func matchesAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return false
}
