package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateProject_NonExistentDir(t *testing.T) {
	err := validateProject("/nonexistent/path/to/dir")
	if err == nil {
		t.Fatal("expected error for non-existent directory")
	}
	if got := err.Error(); got != "directory not found: /nonexistent/path/to/dir" {
		t.Errorf("unexpected error message: %s", got)
	}
}

func TestValidateProject_NotADirectory(t *testing.T) {
	f, err := os.CreateTemp("", "debtmap-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	f.Close()

	err = validateProject(f.Name())
	if err == nil {
		t.Fatal("expected error for a file path")
	}
	if got := err.Error(); got != "not a directory: "+f.Name() {
		t.Errorf("unexpected error: %s", got)
	}
}

func TestValidateProject_EmptyDir(t *testing.T) {
	dir := t.TempDir()
	err := validateProject(dir)
	if err == nil {
		t.Fatal("expected error for empty directory")
	}
}

func TestValidateProject_WithCargoToml(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte("[package]\nname = \"x\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := validateProject(dir); err != nil {
		t.Errorf("expected no error for dir with Cargo.toml, got: %v", err)
	}
}

func TestValidateProject_WithRustSourceFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "main.rs"), []byte("fn main() {}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := validateProject(dir); err != nil {
		t.Errorf("expected no error for dir with .rs file, got: %v", err)
	}
}

func TestValidateProject_UnrecognizedFilesOnly(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "readme.md"), []byte("# hi"), 0644); err != nil {
		t.Fatal(err)
	}
	err := validateProject(dir)
	if err == nil {
		t.Fatal("expected error for dir with only unrecognized files")
	}
}

func TestAnalyzeCmdFlags(t *testing.T) {
	flags := []struct {
		name     string
		defValue string
	}{
		{"config", ""},
		{"fail-under", "0"},
		{"json", "false"},
		{"baseline", ""},
		{"coverage-lcov", ""},
		{"coverage-tarpaulin", ""},
		{"metrics-addr", ""},
	}

	for _, tt := range flags {
		f := analyzeCmd.Flags().Lookup(tt.name)
		if f == nil {
			t.Errorf("flag %q not registered on analyze command", tt.name)
			continue
		}
		if f.DefValue != tt.defValue {
			t.Errorf("flag %q: expected default %q, got %q", tt.name, tt.defValue, f.DefValue)
		}
	}
}

func TestAnalyzeCmdRequiresExactlyOneArg(t *testing.T) {
	cmd := analyzeCmd
	if err := cmd.Args(cmd, []string{}); err == nil {
		t.Error("analyze should require exactly 1 argument, got no error for 0 args")
	}
	if err := cmd.Args(cmd, []string{"a", "b"}); err == nil {
		t.Error("analyze should require exactly 1 argument, got no error for 2 args")
	}
	if err := cmd.Args(cmd, []string{"a"}); err != nil {
		t.Errorf("analyze should accept exactly 1 argument, got error: %v", err)
	}
}

func TestAnalyzeCmdMetadata(t *testing.T) {
	if analyzeCmd.Use != "analyze <crate-directory>" {
		t.Errorf("expected Use='analyze <crate-directory>', got %q", analyzeCmd.Use)
	}
	if analyzeCmd.Short == "" {
		t.Error("analyze command should have a short description")
	}
	if !analyzeCmd.SilenceUsage {
		t.Error("analyze command should have SilenceUsage=true")
	}
}

func resetAnalyzeFlags() {
	configPath = ""
	failUnder = 0
	jsonOutput = false
	baselinePath = ""
	lcovPath = ""
	tarpaulinPath = ""
	metricsAddr = ""
	verbose = false
}

func TestAnalyzeRunE_InvalidDir(t *testing.T) {
	resetAnalyzeFlags()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"analyze", "/nonexistent/path/xyz"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for non-existent directory")
	}
	if !strings.Contains(err.Error(), "directory not found") {
		t.Errorf("expected 'directory not found' error, got: %v", err)
	}
}

func TestAnalyzeRunE_NoArgs(t *testing.T) {
	resetAnalyzeFlags()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"analyze"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error for missing argument")
	}
}

func TestSelectCoverageProvider_None(t *testing.T) {
	resetAnalyzeFlags()
	if p := selectCoverageProvider(); p != nil {
		t.Errorf("expected nil provider with no coverage flags set, got %v", p)
	}
}

func TestSelectCoverageProvider_LCOV(t *testing.T) {
	resetAnalyzeFlags()
	lcovPath = "coverage.info"
	defer resetAnalyzeFlags()
	if p := selectCoverageProvider(); p == nil {
		t.Error("expected non-nil provider when --coverage-lcov is set")
	}
}

func TestSelectCoverageProvider_Tarpaulin(t *testing.T) {
	resetAnalyzeFlags()
	tarpaulinPath = "report.json"
	defer resetAnalyzeFlags()
	if p := selectCoverageProvider(); p == nil {
		t.Error("expected non-nil provider when --coverage-tarpaulin is set")
	}
}
