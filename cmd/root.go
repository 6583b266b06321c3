package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/iepathos/debtmap/pkg/model"
	"github.com/iepathos/debtmap/pkg/version"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:     "debtmap",
	Short:   "Debtmap analyzes Rust crates for technical debt",
	Long:    "Debtmap walks a Rust crate, builds its call graph, and ranks functions and\nmodules by technical debt: untested complexity, dead code, god objects, and\nrecognizable anti-patterns. It produces a prioritized, actionable report.",
	Version: version.Version,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.SilenceErrors = true
}

// Execute runs the root command and exits with code 1 on error.
// ExitError is handled specially: its Code is used as the exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *model.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
