// Package output renders a model.RankedReport to terminal and JSON formats.
//
// Terminal rendering uses hierarchical display with automatic color encoding
// (green/yellow/red) keyed off debt item score, grouped by file then ordered
// by descending score within each file. Colors convey debt severity at a
// glance without requiring the reader to interpret the underlying number.
// Color is skipped automatically when the writer is not a TTY, which keeps
// piped/redirected output free of ANSI escape codes.
package output

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/iepathos/debtmap/pkg/model"
)

// Score thresholds for terminal coloring. DebtItem.Score is scored onto a
// 0-100 working range by the scoring engine.
const (
	scoreGreenMax  = 30.0 // At or below: green (low priority)
	scoreYellowMax = 60.0 // At or below: yellow (medium priority); above is red
)

// verboseTopN caps the number of items shown per file section when
// RenderSummary is called without verbose output.
const verboseTopN = 5

// RenderSummary prints a hierarchical, color-coded summary of report to w.
//
// Items are grouped by file in descending order of that file's highest
// item score, and within a file by descending item score. When verbose is
// false, each file section is capped at verboseTopN items with a count of
// the remainder.
func RenderSummary(w io.Writer, report *model.RankedReport, verbose bool) {
	bold := color.New(color.Bold)
	useColor := shouldColor(w)

	bold.Fprintln(w, "Debtmap Report")
	fmt.Fprintln(w, "────────────────────────────────────────")
	fmt.Fprintf(w, "Items found: %s\n", humanize.Comma(int64(len(report.Items))))

	if report.Graph != nil {
		fmt.Fprintf(w, "Functions analyzed: %s (call edges: %s)\n",
			humanize.Comma(int64(report.Graph.NodeCount)), humanize.Comma(int64(report.Graph.EdgeCount)))
	}

	if len(report.CountsBySeverity) > 0 {
		fmt.Fprintln(w, "By severity:")
		for _, sev := range []model.Severity{model.SeverityCritical, model.SeverityHigh, model.SeverityMedium, model.SeverityLow} {
			n := report.CountsBySeverity[sev]
			if n == 0 {
				continue
			}
			fmt.Fprintf(w, "  %-10s %s\n", sev.String()+":", humanize.Comma(int64(n)))
		}
	}

	if report.Partial {
		color.New(color.FgYellow).Fprintln(w, "\nWarning: report is partial (analysis was cancelled before completion)")
	}

	byFile := groupByFile(report.Items)
	files := rankFiles(byFile)

	fmt.Fprintln(w)
	for _, file := range files {
		items := byFile[file]
		bold.Fprintf(w, "%s\n", file)

		shown := items
		hidden := 0
		if !verbose && len(items) > verboseTopN {
			shown = items[:verboseTopN]
			hidden = len(items) - verboseTopN
		}

		for _, item := range shown {
			renderItem(w, item, useColor)
		}
		if hidden > 0 {
			fmt.Fprintf(w, "  ... and %d more (use --verbose to see all)\n", hidden)
		}
	}
}

func renderItem(w io.Writer, item model.DebtItem, useColor bool) {
	c := scoreColor(item.Score, useColor)
	loc := item.Location.Function
	if loc == "" {
		loc = "(file-scope)"
	}
	if item.Location.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, item.Location.Line)
	}

	c.Fprintf(w, "  [%s] %-20s %s  (score %.1f, ~%s)\n",
		item.Severity.String(), string(item.Kind), loc, item.Score, humanize.Comma(int64(item.EffortMinutes))+"m")
	fmt.Fprintf(w, "      %s\n", item.Explanation)
	if item.Recommendation != "" {
		fmt.Fprintf(w, "      -> %s\n", item.Recommendation)
	}
}

func groupByFile(items []model.DebtItem) map[string][]model.DebtItem {
	byFile := make(map[string][]model.DebtItem)
	for _, item := range items {
		byFile[item.Location.File] = append(byFile[item.Location.File], item)
	}
	for file := range byFile {
		sort.Slice(byFile[file], func(i, j int) bool {
			return byFile[file][i].Score > byFile[file][j].Score
		})
	}
	return byFile
}

func rankFiles(byFile map[string][]model.DebtItem) []string {
	files := make([]string, 0, len(byFile))
	for file := range byFile {
		files = append(files, file)
	}
	sort.Slice(files, func(i, j int) bool {
		return byFile[files[i]][0].Score > byFile[files[j]][0].Score
	})
	return files
}

// scoreColor returns a color.Color keyed off a DebtItem's score. Returns a
// no-op color when useColor is false so Fprintf callers don't need a
// separate plain-text path.
func scoreColor(score float64, useColor bool) *color.Color {
	if !useColor {
		return color.New()
	}
	switch {
	case score <= scoreGreenMax:
		return color.New(color.FgGreen)
	case score <= scoreYellowMax:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

// shouldColor reports whether w is a TTY that should receive ANSI color
// codes. NO_COLOR (https://no-color.org) always wins when set.
func shouldColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
