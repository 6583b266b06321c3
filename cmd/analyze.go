package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iepathos/debtmap/internal/config"
	"github.com/iepathos/debtmap/internal/covprovider"
	"github.com/iepathos/debtmap/internal/debt"
	"github.com/iepathos/debtmap/internal/frontend"
	"github.com/iepathos/debtmap/internal/orchestrator"
	"github.com/iepathos/debtmap/internal/output"
	"github.com/iepathos/debtmap/internal/scoring"
	"github.com/iepathos/debtmap/internal/telemetry"
	"github.com/iepathos/debtmap/pkg/model"
)

var (
	configPath     string
	failUnder      float64
	jsonOutput     bool
	baselinePath   string
	lcovPath       string
	tarpaulinPath  string
	metricsAddr    string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <crate-directory>",
	Short: "Analyze a Rust crate for technical debt",
	Long: `Analyze walks a Rust crate, builds its call graph, and scores every
function and module by technical debt: untested complexity, dead code,
god objects, and recognizable anti-patterns.

Coverage is optional. Pass --coverage-lcov or --coverage-tarpaulin to feed
a coverage report from grcov/cargo-llvm-cov or cargo-tarpaulin; without
one, debtmap analyzes structure and complexity alone.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("cannot resolve path: %s", err)
		}
		if err := validateProject(dir); err != nil {
			return err
		}

		cfg := scoring.DefaultConfig()
		projectCfg, err := config.LoadProjectConfig(dir, configPath)
		if err != nil {
			return fmt.Errorf("load project config: %w", err)
		}
		projectCfg.ApplyToScoringConfig(cfg)

		var logger *zap.Logger
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		defer logger.Sync()

		telem := telemetry.NewPrivate()
		if metricsAddr != "" {
			srv := &http.Server{Addr: metricsAddr, Handler: telem.Handler()}
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Warn("metrics server exited", zap.Error(err))
				}
			}()
			defer srv.Close()
		}

		rustFrontend, err := frontend.Load(dir)
		if err != nil {
			return fmt.Errorf("load crate: %w", err)
		}

		covProvider := selectCoverageProvider()

		o := orchestrator.New(cfg, logger, telem)
		report, err := o.Run(cmd.Context(), rustFrontend, covProvider)
		if err != nil {
			var cancelled *model.CancelledError
			if !errors.As(err, &cancelled) {
				return fmt.Errorf("analyze: %w", err)
			}
		}

		if baselinePath != "" {
			if err := renderBaselineDiff(cmd, report); err != nil {
				return err
			}
		}

		if jsonOutput {
			if err := output.RenderJSON(cmd.OutOrStdout(), report, stampNow()); err != nil {
				return fmt.Errorf("render json: %w", err)
			}
		} else {
			output.RenderSummary(cmd.OutOrStdout(), report, verbose)
		}

		if failUnder > 0 {
			if worst := worstScore(report); worst > failUnder {
				return &model.ExitError{
					Code:    2,
					Message: fmt.Sprintf("highest debt score %.1f exceeds --fail-under threshold %.1f", worst, failUnder),
				}
			}
		}

		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&configPath, "config", "", "path to .debtmap.yml project config file")
	analyzeCmd.Flags().Float64Var(&failUnder, "fail-under", 0, "exit code 2 if any debt item's score exceeds this threshold")
	analyzeCmd.Flags().BoolVar(&jsonOutput, "json", false, "output results as JSON")
	analyzeCmd.Flags().StringVar(&baselinePath, "baseline", "", "path to a previous JSON report; prints a diff before the current report")
	analyzeCmd.Flags().StringVar(&lcovPath, "coverage-lcov", "", "path to an LCOV tracefile (grcov, cargo-llvm-cov)")
	analyzeCmd.Flags().StringVar(&tarpaulinPath, "coverage-tarpaulin", "", "path to a cargo-tarpaulin JSON report")
	analyzeCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics at this address (e.g. :9090) while analyzing")
	rootCmd.AddCommand(analyzeCmd)
}

// selectCoverageProvider returns the coverage provider matching whichever
// --coverage-* flag was set, or nil if neither was given.
func selectCoverageProvider() model.CoverageProvider {
	switch {
	case lcovPath != "":
		return &covprovider.LCOVProvider{Path: lcovPath}
	case tarpaulinPath != "":
		return &covprovider.TarpaulinProvider{Path: tarpaulinPath}
	default:
		return nil
	}
}

func worstScore(report *model.RankedReport) float64 {
	var worst float64
	for _, item := range report.Items {
		if item.Score > worst {
			worst = item.Score
		}
	}
	return worst
}

func renderBaselineDiff(cmd *cobra.Command, current *model.RankedReport) error {
	data, err := os.ReadFile(baselinePath)
	if err != nil {
		return fmt.Errorf("read baseline %s: %w", baselinePath, err)
	}
	previous, err := decodeBaselineItems(data)
	if err != nil {
		return fmt.Errorf("parse baseline %s: %w", baselinePath, err)
	}

	delta := debt.Diff(previous, current.Items)
	fmt.Fprintf(cmd.OutOrStdout(), "Baseline diff (%s):\n", baselinePath)
	for _, item := range delta.Items {
		if item.Status == debt.StatusUnchanged {
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  [%s] %s %s (%.1f -> %.1f)\n",
			item.Status, item.Kind, item.Location.File, item.PrevScore, item.CurrScore)
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}

// validateProject checks that dir exists, is a directory, and looks like a
// Rust crate (a Cargo.toml at its root, or at least one .rs file).
func validateProject(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return fmt.Errorf("directory not found: %s", dir)
	}
	if err != nil {
		return fmt.Errorf("cannot access directory: %s", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	if _, err := os.Stat(filepath.Join(dir, "Cargo.toml")); err == nil {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("cannot read directory: %s", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".rs" {
			return nil
		}
	}

	return fmt.Errorf("no Rust crate found in: %s\nExpected a Cargo.toml or .rs source files", dir)
}

// stampNow returns the current time for JSON report generation timestamps.
func stampNow() time.Time {
	return time.Now()
}

// decodeBaselineItems parses a previously-written output.JSONReport back
// into the []model.DebtItem shape debt.Diff expects.
func decodeBaselineItems(data []byte) ([]model.DebtItem, error) {
	var jr output.JSONReport
	if err := json.Unmarshal(data, &jr); err != nil {
		return nil, err
	}
	items := make([]model.DebtItem, 0, len(jr.Items))
	for _, ji := range jr.Items {
		items = append(items, model.DebtItem{
			Kind:           ji.Kind,
			Location:       model.Location{File: ji.File, Function: ji.Function, Line: ji.Line},
			Score:          ji.Score,
			Severity:       severityFromString(ji.Severity),
			Metrics:        ji.Metrics,
			Explanation:    ji.Explanation,
			Recommendation: ji.Recommendation,
			EffortMinutes:  ji.EffortMinutes,
		})
	}
	return items, nil
}

func severityFromString(s string) model.Severity {
	switch s {
	case "Critical":
		return model.SeverityCritical
	case "High":
		return model.SeverityHigh
	case "Medium":
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}
