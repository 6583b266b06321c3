package cmd

import (
	"bytes"
	"testing"
)

func TestRootCommandHasExpectedSubcommands(t *testing.T) {
	found := false
	for _, c := range rootCmd.Commands() {
		if c.Name() == "analyze" {
			found = true
			break
		}
	}
	if !found {
		t.Error("root command should have 'analyze' subcommand")
	}
}

func TestRootCommandMetadata(t *testing.T) {
	if rootCmd.Use != "debtmap" {
		t.Errorf("expected Use='debtmap', got %q", rootCmd.Use)
	}
	if rootCmd.Short == "" {
		t.Error("root command should have a short description")
	}
	if rootCmd.Version == "" {
		t.Error("root command should have a version set")
	}
}

func TestVerboseFlag(t *testing.T) {
	f := rootCmd.PersistentFlags().Lookup("verbose")
	if f == nil {
		t.Fatal("verbose flag not registered")
	}
	if f.Shorthand != "v" {
		t.Errorf("verbose shorthand should be 'v', got %q", f.Shorthand)
	}
	if f.DefValue != "false" {
		t.Errorf("verbose default should be 'false', got %q", f.DefValue)
	}
}

func TestSilenceErrors(t *testing.T) {
	if !rootCmd.SilenceErrors {
		t.Error("root command should have SilenceErrors=true")
	}
}

func TestExecute_HelpDoesNotPanic(t *testing.T) {
	rootCmd.SetArgs([]string{"--help"})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	_ = rootCmd.Execute()
}
