package covprovider

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"github.com/iepathos/debtmap/pkg/model"
)

// TarpaulinProvider reads cargo-tarpaulin's native JSON report
// (`cargo tarpaulin --out Json`): a top-level "files" array, each with a
// "path", "covered"/"coverable" line arrays, and per-trace line numbers.
// gjson is used rather than encoding/json since only a handful of fields
// are read out of a report that can otherwise be large.
type TarpaulinProvider struct {
	Path string
}

func (p *TarpaulinProvider) Records() ([]model.CoverageRecord, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, &model.CoverageMalformedError{Reason: fmt.Sprintf("%s is not valid JSON", p.Path)}
	}

	root := gjson.ParseBytes(data)
	files := root.Get("files")
	if !files.Exists() {
		return nil, &model.CoverageMalformedError{Reason: "missing top-level \"files\" array"}
	}

	var records []model.CoverageRecord
	files.ForEach(func(_, file gjson.Result) bool {
		path := file.Get("path").String()
		traces := file.Get("traces")
		if !traces.Exists() {
			return true
		}

		byFunction := make(map[string]*model.CoverageRecord)
		var order []string
		traces.ForEach(func(_, trace gjson.Result) bool {
			fnName := trace.Get("fn_name").String()
			if fnName == "" {
				fnName = trace.Get("function").String()
			}
			line := int(trace.Get("line").Int())
			hits := int(trace.Get("stats.Line").Int())
			if hits == 0 {
				hits = int(trace.Get("hits").Int())
			}

			rec, ok := byFunction[fnName]
			if !ok {
				rec = &model.CoverageRecord{File: path, FunctionName: fnName, StartLine: line, EndLine: line}
				byFunction[fnName] = rec
				order = append(order, fnName)
			}
			if line < rec.StartLine {
				rec.StartLine = line
			}
			if line > rec.EndLine {
				rec.EndLine = line
			}
			rec.TotalLines++
			if hits > 0 {
				rec.HitLines++
			} else {
				rec.UncoveredLines = append(rec.UncoveredLines, line)
			}
			return true
		})
		for _, name := range order {
			records = append(records, *byFunction[name])
		}
		return true
	})

	return records, nil
}
