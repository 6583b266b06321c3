package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iepathos/debtmap/internal/scoring"
)

func TestLoadProjectConfig_ValidYml(t *testing.T) {
	tmpDir := t.TempDir()

	content := `version: 1
scoring:
  role_multiplier:
    PureLogic: 0.5
rust:
  test_file_patterns:
    - tests/**
    - "**/*_test.rs"
`
	if err := os.WriteFile(filepath.Join(tmpDir, ".debtmap.yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadProjectConfig(tmpDir, "")
	if err != nil {
		t.Fatalf("LoadProjectConfig() error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Scoring.RoleMultiplier["PureLogic"] != 0.5 {
		t.Errorf("PureLogic multiplier = %v, want 0.5", cfg.Scoring.RoleMultiplier["PureLogic"])
	}
	if len(cfg.Rust.TestFilePatterns) != 2 {
		t.Errorf("test file patterns count = %d, want 2", len(cfg.Rust.TestFilePatterns))
	}
}

func TestLoadProjectConfig_MissingFile(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := LoadProjectConfig(tmpDir, "")
	if err != nil {
		t.Fatalf("LoadProjectConfig() error: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil config for missing file, got %+v", cfg)
	}
}

func TestLoadProjectConfig_InvalidRoleMultiplier(t *testing.T) {
	tmpDir := t.TempDir()

	content := `version: 1
scoring:
  role_multiplier:
    PureLogic: -0.5
`
	if err := os.WriteFile(filepath.Join(tmpDir, ".debtmap.yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadProjectConfig(tmpDir, "")
	if err == nil {
		t.Fatal("expected error for negative role multiplier")
	}
}

func TestLoadProjectConfig_InvalidVersion(t *testing.T) {
	tmpDir := t.TempDir()

	content := `version: 99
`
	if err := os.WriteFile(filepath.Join(tmpDir, ".debtmap.yml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadProjectConfig(tmpDir, "")
	if err == nil {
		t.Fatal("expected error for unsupported version")
	}
}

func TestLoadProjectConfig_ExplicitPath(t *testing.T) {
	tmpDir := t.TempDir()

	content := `version: 1
scoring:
  role_multiplier:
    Orchestrator: 0.9
`
	customPath := filepath.Join(tmpDir, "custom-config.yml")
	if err := os.WriteFile(customPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadProjectConfig(tmpDir, customPath)
	if err != nil {
		t.Fatalf("LoadProjectConfig() error: %v", err)
	}
	if cfg.Scoring.RoleMultiplier["Orchestrator"] != 0.9 {
		t.Errorf("Orchestrator multiplier = %v, want 0.9", cfg.Scoring.RoleMultiplier["Orchestrator"])
	}
}

func TestProjectConfig_ApplyToScoringConfig(t *testing.T) {
	sc := scoring.DefaultConfig()

	clampMin := 0.5
	pc := &ProjectConfig{
		Version: 1,
		Scoring: scoringOverrides{
			RoleMultiplier: map[string]float64{
				"PureLogic":    0.5,
				"Orchestrator": 0.9,
			},
			ClampMin: &clampMin,
		},
	}

	pc.ApplyToScoringConfig(sc)

	if sc.RoleMultiplier["PureLogic"] != 0.5 {
		t.Errorf("PureLogic multiplier = %v, want 0.5", sc.RoleMultiplier["PureLogic"])
	}
	if sc.RoleMultiplier["Orchestrator"] != 0.9 {
		t.Errorf("Orchestrator multiplier = %v, want 0.9", sc.RoleMultiplier["Orchestrator"])
	}
	if sc.ClampMin != 0.5 {
		t.Errorf("ClampMin = %v, want 0.5", sc.ClampMin)
	}
	// EntryPoint multiplier should remain at default
	if sc.RoleMultiplier["EntryPoint"] != 1.3 {
		t.Errorf("EntryPoint multiplier = %v, want 1.3 (default)", sc.RoleMultiplier["EntryPoint"])
	}
}

func TestProjectConfig_YamlExtension(t *testing.T) {
	tmpDir := t.TempDir()

	content := `version: 1
rust:
  exclude_globs:
    - target/**
`
	if err := os.WriteFile(filepath.Join(tmpDir, ".debtmap.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadProjectConfig(tmpDir, "")
	if err != nil {
		t.Fatalf("LoadProjectConfig() error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config for .debtmap.yaml")
	}
	if len(cfg.Rust.ExcludeGlobs) != 1 {
		t.Errorf("exclude globs count = %d, want 1", len(cfg.Rust.ExcludeGlobs))
	}
}

func TestValidate_ClampMinAboveMax(t *testing.T) {
	min, max := 2.0, 1.0
	cfg := &ProjectConfig{
		Version: 1,
		Scoring: scoringOverrides{
			ClampMin: &min,
			ClampMax: &max,
		},
	}

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for clamp_min > clamp_max")
	}
}
