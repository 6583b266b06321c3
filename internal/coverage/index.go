// Package coverage implements C2: the CoverageIndex. It is built once,
// single-threaded, from a sequence of coverage records, then shared
// read-only across every later phase.
package coverage

import (
	"sort"

	"github.com/iepathos/debtmap/internal/identity"
	"github.com/iepathos/debtmap/pkg/model"
)

// FunctionCoverage is the per-function coverage record stored in both
// levels of the index.
type FunctionCoverage struct {
	Pct            float64
	UncoveredLines []int
	StartLine      int
}

type exactKey struct {
	file string
	name string
}

// Index is C2's two-level coverage index: an O(1) exact map keyed by
// (file, function_name), and a per-file ordered-by-start-line slice used for
// the ±2-line-tolerance fallback. Once Build returns, Index is immutable and
// safe for concurrent reads.
type Index struct {
	exact  map[exactKey]FunctionCoverage
	byLine map[string][]lineEntry
}

type lineEntry struct {
	start int
	cov   FunctionCoverage
}

// Build constructs an Index from coverage records in O(n).
func Build(records []model.CoverageRecord) *Index {
	idx := &Index{
		exact:  make(map[exactKey]FunctionCoverage, len(records)),
		byLine: make(map[string][]lineEntry),
	}
	for _, r := range records {
		file := identity.Canonical(r.File)
		total := r.TotalLines
		var pct float64
		if total > 0 {
			pct = 1.0 - float64(len(r.UncoveredLines))/float64(total)
		} else if r.HitLines > 0 {
			pct = 1.0
		}
		fc := FunctionCoverage{Pct: clamp01(pct), UncoveredLines: append([]int(nil), r.UncoveredLines...), StartLine: r.StartLine}
		idx.exact[exactKey{file: file, name: r.FunctionName}] = fc
		idx.byLine[file] = append(idx.byLine[file], lineEntry{start: r.StartLine, cov: fc})
	}
	for file := range idx.byLine {
		entries := idx.byLine[file]
		sort.Slice(entries, func(i, j int) bool { return entries[i].start < entries[j].start })
		idx.byLine[file] = entries
	}
	return idx
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Lookup implements C2's four-step query: exact, trait-method name variants
// (at most 3 lookups total), then a ±2-line-tolerance fallback by line, then
// None. Missing coverage is a normal outcome, never an error.
func (idx *Index) Lookup(file, functionName string, lineHint int) (FunctionCoverage, bool) {
	canon := identity.Canonical(file)

	if fc, ok := idx.exact[exactKey{file: canon, name: functionName}]; ok {
		return fc, true
	}

	tried := 1
	if last := identity.LastSegment(functionName); last != functionName && tried < 3 {
		tried++
		if fc, ok := idx.exact[exactKey{file: canon, name: last}]; ok {
			return fc, true
		}
	}
	if tried < 3 {
		tried++
		if fc, ok := idx.exact[exactKey{file: canon, name: "Self::" + functionName}]; ok {
			return fc, true
		}
	}

	return idx.lookupByLine(canon, lineHint)
}

const lineTolerance = 2

func (idx *Index) lookupByLine(canonFile string, lineHint int) (FunctionCoverage, bool) {
	entries := idx.byLine[canonFile]
	if len(entries) == 0 {
		return FunctionCoverage{}, false
	}
	i := sort.Search(len(entries), func(i int) bool { return entries[i].start >= lineHint })

	best := -1
	bestDist := lineTolerance + 1
	for _, cand := range []int{i - 1, i} {
		if cand < 0 || cand >= len(entries) {
			continue
		}
		dist := abs(entries[cand].start - lineHint)
		if dist <= lineTolerance && dist < bestDist {
			best = cand
			bestDist = dist
		}
	}
	if best < 0 {
		return FunctionCoverage{}, false
	}
	return entries[best].cov, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
