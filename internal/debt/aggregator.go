// Package debt implements C10: debt-item aggregation, deduplication, and
// zero-score filtering, plus the baseline-diffing feature that compares two
// already-produced reports.
package debt

import (
	"sort"

	"github.com/iepathos/debtmap/pkg/model"
)

// dedupKey is C10's deduplication key: (kind, file, function, line).
type dedupKey struct {
	kind     model.DebtKind
	file     string
	function string
	line     int
}

func keyOf(item model.DebtItem) dedupKey {
	return dedupKey{kind: item.Kind, file: item.Location.File, function: item.Location.Function, line: item.Location.Line}
}

// Aggregate deduplicates items (keeping the highest-scored item per key),
// drops zero-score items, and returns the result sorted by score
// descending, ties broken by severity then by (file, line).
func Aggregate(items []model.DebtItem) []model.DebtItem {
	best := make(map[dedupKey]model.DebtItem, len(items))
	order := make([]dedupKey, 0, len(items))
	for _, item := range items {
		k := keyOf(item)
		existing, seen := best[k]
		if !seen {
			order = append(order, k)
			best[k] = item
			continue
		}
		if item.Score > existing.Score {
			best[k] = item
		}
	}

	out := make([]model.DebtItem, 0, len(order))
	for _, k := range order {
		item := best[k]
		if item.Score > 0 {
			out = append(out, item)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if a.Location.File != b.Location.File {
			return a.Location.File < b.Location.File
		}
		return a.Location.Line < b.Location.Line
	})
	return out
}

// Counts builds the by-kind and by-severity aggregate counts RankedReport
// carries alongside the ranked item list.
func Counts(items []model.DebtItem) (byKind map[model.DebtKind]int, bySeverity map[model.Severity]int) {
	byKind = make(map[model.DebtKind]int)
	bySeverity = make(map[model.Severity]int)
	for _, item := range items {
		byKind[item.Kind]++
		bySeverity[item.Severity]++
	}
	return byKind, bySeverity
}
