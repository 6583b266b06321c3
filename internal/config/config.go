// Package config handles .debtmap.yml project-level configuration: an
// optional override layer applied on top of scoring.DefaultConfig.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/iepathos/debtmap/internal/scoring"
)

// ProjectConfig represents the .debtmap.yml configuration file. Only the
// fields a project actually wants to override need to be present; every
// other field is left at scoring.DefaultConfig's value.
type ProjectConfig struct {
	Version int              `yaml:"version"`
	Scoring scoringOverrides `yaml:"scoring"`
	Rust    rustOverrides    `yaml:"rust"`
}

// scoringOverrides contains the subset of scoring.Config a project is
// expected to tune; everything else is left at its default.
type scoringOverrides struct {
	RoleMultiplier map[string]float64              `yaml:"role_multiplier"`
	PatternScaling map[string]scoring.PatternScale `yaml:"pattern_scaling"`
	ClampMin       *float64                        `yaml:"clamp_min"`
	ClampMax       *float64                        `yaml:"clamp_max"`
}

// rustOverrides tunes the Rust-frontend-facing knobs: what counts as a
// test file/attribute, and which paths to skip entirely.
type rustOverrides struct {
	TestFilePatterns     []string `yaml:"test_file_patterns"`
	CustomTestAttributes []string `yaml:"custom_test_attributes"`
	ExcludeGlobs         []string `yaml:"exclude_globs"`
}

// LoadProjectConfig loads .debtmap.yml or .debtmap.yaml from dir, or
// explicitPath if given. Returns nil, nil if no config file is found —
// callers fall back to scoring.DefaultConfig entirely.
func LoadProjectConfig(dir string, explicitPath string) (*ProjectConfig, error) {
	var configPath string

	if explicitPath != "" {
		configPath = explicitPath
	} else {
		ymlPath := filepath.Join(dir, ".debtmap.yml")
		yamlPath := filepath.Join(dir, ".debtmap.yaml")

		if _, err := os.Stat(ymlPath); err == nil {
			configPath = ymlPath
		} else if _, err := os.Stat(yamlPath); err == nil {
			configPath = yamlPath
		} else {
			return nil, nil
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read project config %s: %w", configPath, err)
	}

	cfg := &ProjectConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse project config %s: %w", configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid project config %s: %w", configPath, err)
	}

	return cfg, nil
}

// Validate checks that the ProjectConfig values are valid before they're
// applied on top of the defaults.
func (c *ProjectConfig) Validate() error {
	if c.Version != 0 && c.Version != 1 {
		return fmt.Errorf("unsupported config version %d (expected 1)", c.Version)
	}

	for role, m := range c.Scoring.RoleMultiplier {
		if m < 0 {
			return fmt.Errorf("role_multiplier for %q must be >= 0, got %f", role, m)
		}
	}

	if c.Scoring.ClampMin != nil && c.Scoring.ClampMax != nil && *c.Scoring.ClampMin > *c.Scoring.ClampMax {
		return fmt.Errorf("clamp_min (%f) must be <= clamp_max (%f)", *c.Scoring.ClampMin, *c.Scoring.ClampMax)
	}

	return nil
}

// ApplyToScoringConfig merges c's overrides onto sc in place. A nil c or sc
// is a no-op.
func (c *ProjectConfig) ApplyToScoringConfig(sc *scoring.Config) {
	if c == nil || sc == nil {
		return
	}

	for role, m := range c.Scoring.RoleMultiplier {
		sc.RoleMultiplier[role] = m
	}
	for pattern, scale := range c.Scoring.PatternScaling {
		sc.PatternScaling[pattern] = scale
	}
	if c.Scoring.ClampMin != nil {
		sc.ClampMin = *c.Scoring.ClampMin
	}
	if c.Scoring.ClampMax != nil {
		sc.ClampMax = *c.Scoring.ClampMax
	}
	if len(c.Rust.TestFilePatterns) > 0 {
		sc.TestDetection.TestFilePatterns = c.Rust.TestFilePatterns
	}
	if len(c.Rust.CustomTestAttributes) > 0 {
		sc.TestDetection.CustomTestAttributes = c.Rust.CustomTestAttributes
	}
}
