// Package covprovider implements model.CoverageProvider for the two Rust
// coverage report formats debtmap consumes: LCOV (.info, as emitted by
// grcov and cargo-llvm-cov) and cargo-tarpaulin's native JSON.
package covprovider

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/iepathos/debtmap/pkg/model"
)

// LCOVProvider reads an LCOV tracefile. LCOV's format is inherently
// line-oriented key:value records (SF:, FN:, FNDA:, DA:, end_of_record) —
// bufio.Scanner is the natural fit; no LCOV parsing library exists among
// the pack's dependencies.
type LCOVProvider struct {
	Path string
}

// Records parses the tracefile into per-function coverage records. A
// function's line range is approximated as [FN line, next FN line) within
// the same source file, since LCOV has no native end-line field; DA (line
// hit count) records falling in that range determine HitLines/TotalLines
// and the uncovered line list.
func (p *LCOVProvider) Records() ([]model.CoverageRecord, error) {
	f, err := os.Open(p.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []model.CoverageRecord
	var currentFile string
	type fnEntry struct {
		name      string
		startLine int
	}
	var fns []fnEntry
	lineHits := make(map[int]int)

	flush := func() {
		if currentFile == "" || len(fns) == 0 {
			fns = nil
			lineHits = make(map[int]int)
			return
		}
		for i, fn := range fns {
			end := 1 << 30
			if i+1 < len(fns) {
				end = fns[i+1].startLine
			}
			rec := model.CoverageRecord{
				File:         currentFile,
				FunctionName: fn.name,
				StartLine:    fn.startLine,
				EndLine:      end,
			}
			for line, hits := range lineHits {
				if line < fn.startLine || line >= end {
					continue
				}
				rec.TotalLines++
				if hits > 0 {
					rec.HitLines++
				} else {
					rec.UncoveredLines = append(rec.UncoveredLines, line)
				}
			}
			records = append(records, rec)
		}
		fns = nil
		lineHits = make(map[int]int)
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "SF:"):
			currentFile = strings.TrimPrefix(line, "SF:")
		case strings.HasPrefix(line, "FN:"):
			parts := strings.SplitN(strings.TrimPrefix(line, "FN:"), ",", 2)
			if len(parts) != 2 {
				continue
			}
			n, err := strconv.Atoi(parts[0])
			if err != nil {
				continue
			}
			fns = append(fns, fnEntry{name: parts[1], startLine: n})
		case strings.HasPrefix(line, "DA:"):
			parts := strings.SplitN(strings.TrimPrefix(line, "DA:"), ",", 2)
			if len(parts) != 2 {
				continue
			}
			lineNo, err1 := strconv.Atoi(parts[0])
			hits, err2 := strconv.Atoi(parts[1])
			if err1 != nil || err2 != nil {
				continue
			}
			lineHits[lineNo] = hits
		case line == "end_of_record":
			flush()
			currentFile = ""
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan lcov file: %w", err)
	}
	return records, nil
}
