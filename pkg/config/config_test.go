package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	// Check analysis defaults
	if cfg.Analysis.Strict {
		t.Error("Analysis.Strict should be false by default")
	}
	if cfg.Analysis.Threshold != 0 {
		t.Errorf("Analysis.Threshold = %d, want 0", cfg.Analysis.Threshold)
	}
	if !cfg.Analysis.ShowWarnings {
		t.Error("Analysis.ShowWarnings should be true by default")
	}
	if cfg.Analysis.ShowImportWarnings {
		t.Error("Analysis.ShowImportWarnings should be false by default")
	}

	// Check import defaults
	if cfg.Imports.FollowDepth != FollowLocal {
		t.Errorf("Imports.FollowDepth = %d, want %d", cfg.Imports.FollowDepth, FollowLocal)
	}

	// Check cache defaults
	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be true by default")
	}
	if cfg.Cache.Dir != ".augur/cache" {
		t.Errorf("Cache.Dir = %s, want .augur/cache", cfg.Cache.Dir)
	}

	// Check output defaults
	if cfg.Output.Format != "text" {
		t.Errorf("Output.Format = %s, want text", cfg.Output.Format)
	}
	if !cfg.Output.Color {
		t.Error("Output.Color should be true by default")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "augur.toml")

	content := `
[analysis]
strict = true
threshold = 10

[imports]
follow_depth = 2
blacklist = ["django*"]

[exclude]
functions = ["_*"]

[cache]
enabled = false

[output]
format = "json"
`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if !cfg.Analysis.Strict {
		t.Error("Analysis.Strict should be true")
	}
	if cfg.Analysis.Threshold != 10 {
		t.Errorf("Analysis.Threshold = %d, want 10", cfg.Analysis.Threshold)
	}
	if cfg.Imports.FollowDepth != FollowPip {
		t.Errorf("Imports.FollowDepth = %d, want %d", cfg.Imports.FollowDepth, FollowPip)
	}
	if len(cfg.Imports.Blacklist) != 1 || cfg.Imports.Blacklist[0] != "django*" {
		t.Errorf("Imports.Blacklist = %v, want [django*]", cfg.Imports.Blacklist)
	}
	if len(cfg.Exclude.Functions) != 1 || cfg.Exclude.Functions[0] != "_*" {
		t.Errorf("Exclude.Functions = %v, want [_*]", cfg.Exclude.Functions)
	}
	if cfg.Cache.Enabled {
		t.Error("Cache.Enabled should be false")
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %s, want json", cfg.Output.Format)
	}

	// Untouched sections keep defaults
	if !cfg.Analysis.ShowWarnings {
		t.Error("Analysis.ShowWarnings should keep its default")
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "augur.yaml")

	content := `
analysis:
  threshold: 3

imports:
  follow_depth: 3

output:
  format: markdown
`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Analysis.Threshold != 3 {
		t.Errorf("Analysis.Threshold = %d, want 3", cfg.Analysis.Threshold)
	}
	if cfg.Imports.FollowDepth != FollowStdlib {
		t.Errorf("Imports.FollowDepth = %d, want %d", cfg.Imports.FollowDepth, FollowStdlib)
	}
	if cfg.Output.Format != "markdown" {
		t.Errorf("Output.Format = %s, want markdown", cfg.Output.Format)
	}
}

func TestLoadJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "augur.json")

	content := `{
  "analysis": {
    "strict": true
  },
  "imports": {
    "follow_depth": 0
  },
  "output": {
    "format": "toon"
  }
}`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if !cfg.Analysis.Strict {
		t.Error("Analysis.Strict should be true")
	}
	if cfg.Imports.FollowDepth != FollowNone {
		t.Errorf("Imports.FollowDepth = %d, want %d", cfg.Imports.FollowDepth, FollowNone)
	}
	if cfg.Output.Format != "toon" {
		t.Errorf("Output.Format = %s, want toon", cfg.Output.Format)
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/path/augur.toml")
	if err == nil {
		t.Error("Load() should return error for non-existent file")
	}
}

func TestLoadInvalidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "augur.toml")

	// Invalid TOML
	content := `[analysis
invalid toml`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() should return error for invalid config")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "augur.toml")

	content := `
[imports]
follow_depth = 9
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() should reject out-of-range follow_depth")
	}
}

func TestLoadOrDefault(t *testing.T) {
	// In a directory without config files, should return defaults
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}

	cfg := LoadOrDefault()
	if cfg == nil {
		t.Fatal("LoadOrDefault() returned nil")
	}

	if cfg.Imports.FollowDepth != FollowLocal {
		t.Errorf("LoadOrDefault() returned non-default FollowDepth: %d", cfg.Imports.FollowDepth)
	}
}

func TestLoadOrDefaultWithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	defer os.Chdir(oldWd)

	content := `
[analysis]
threshold = 999
`
	if err := os.WriteFile(filepath.Join(tmpDir, "augur.toml"), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change directory: %v", err)
	}

	cfg := LoadOrDefault()
	if cfg.Analysis.Threshold != 999 {
		t.Errorf("LoadOrDefault() should load from file, got Threshold=%d", cfg.Analysis.Threshold)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"follow depth too high", func(c *Config) { c.Imports.FollowDepth = 4 }, true},
		{"follow depth negative", func(c *Config) { c.Imports.FollowDepth = -1 }, true},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }, true},
		{"toon format", func(c *Config) { c.Output.Format = "toon" }, false},
		{"negative threshold", func(c *Config) { c.Analysis.Threshold = -5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestShouldExcludeFunction(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Exclude.Functions = []string{"_*", "test_*"}

	tests := []struct {
		name string
		want bool
	}{
		{"_private", true},
		{"test_case", true},
		{"public_fn", false},
		{"run_tests", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cfg.ShouldExcludeFunction(tt.name)
			if got != tt.want {
				t.Errorf("ShouldExcludeFunction(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestShouldExcludeResult(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Exclude.Results = []string{"Internal*"}

	if !cfg.ShouldExcludeResult("InternalHelper") {
		t.Error("ShouldExcludeResult(InternalHelper) should be true")
	}
	if cfg.ShouldExcludeResult("Helper") {
		t.Error("ShouldExcludeResult(Helper) should be false")
	}
}

func TestIsBlacklistedModule(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Imports.Blacklist = []string{"django*", "numpy"}

	tests := []struct {
		module string
		want   bool
	}{
		{"django", true},
		{"django_extensions", true},
		{"numpy", true},
		{"flask", false},
	}

	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			got := cfg.IsBlacklistedModule(tt.module)
			if got != tt.want {
				t.Errorf("IsBlacklistedModule(%q) = %v, want %v", tt.module, got, tt.want)
			}
		})
	}
}
