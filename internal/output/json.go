package output

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	"github.com/tidwall/sjson"

	"github.com/iepathos/debtmap/pkg/model"
)

// JSONReport is the top-level JSON output structure.
type JSONReport struct {
	Version          string                 `json:"version"`
	GeneratedAt      string                 `json:"generated_at"`
	Partial          bool                   `json:"partial"`
	Items            []JSONDebtItem         `json:"items"`
	CountsByKind     map[model.DebtKind]int `json:"counts_by_kind,omitempty"`
	CountsBySeverity map[string]int         `json:"counts_by_severity,omitempty"`
	Graph            *JSONGraphSnapshot     `json:"graph,omitempty"`
}

// JSONDebtItem is the wire shape of a single model.DebtItem.
type JSONDebtItem struct {
	Kind           model.DebtKind     `json:"kind"`
	File           string             `json:"file"`
	Function       string             `json:"function,omitempty"`
	Line           int                `json:"line,omitempty"`
	Score          float64            `json:"score"`
	Severity       string             `json:"severity"`
	Metrics        map[string]float64 `json:"metrics,omitempty"`
	Explanation    string             `json:"explanation"`
	Recommendation string             `json:"recommendation"`
	EffortMinutes  int                `json:"effort_minutes"`
}

// JSONGraphSnapshot is the wire shape of model.GraphSnapshot.
type JSONGraphSnapshot struct {
	NodeCount int `json:"node_count"`
	EdgeCount int `json:"edge_count"`
}

// BuildJSONReport converts a RankedReport into the JSON wire shape.
func BuildJSONReport(report *model.RankedReport) *JSONReport {
	jr := &JSONReport{
		Version: "1",
		Partial: report.Partial,
	}

	for _, item := range report.Items {
		jr.Items = append(jr.Items, JSONDebtItem{
			Kind:           item.Kind,
			File:           item.Location.File,
			Function:       item.Location.Function,
			Line:           item.Location.Line,
			Score:          item.Score,
			Severity:       item.Severity.String(),
			Metrics:        item.Metrics,
			Explanation:    item.Explanation,
			Recommendation: item.Recommendation,
			EffortMinutes:  item.EffortMinutes,
		})
	}

	if report.CountsByKind != nil {
		jr.CountsByKind = report.CountsByKind
	}
	if report.CountsBySeverity != nil {
		jr.CountsBySeverity = make(map[string]int, len(report.CountsBySeverity))
		for sev, n := range report.CountsBySeverity {
			jr.CountsBySeverity[sev.String()] = n
		}
	}
	if report.Graph != nil {
		jr.Graph = &JSONGraphSnapshot{NodeCount: report.Graph.NodeCount, EdgeCount: report.Graph.EdgeCount}
	}

	return jr
}

// RenderJSON writes the JSON report to w with pretty-printed indentation.
//
// generatedAt is stamped in with sjson after the main encode rather than
// carried as a field filled before marshaling: BuildJSONReport stays a pure
// function of the report, and sjson's raw-byte patch avoids a second
// unmarshal/remarshal of what can be a large items array.
func RenderJSON(w io.Writer, report *model.RankedReport, generatedAt time.Time) error {
	jr := BuildJSONReport(report)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(jr); err != nil {
		return err
	}

	stamped, err := sjson.SetBytes(bytes.TrimRight(buf.Bytes(), "\n"), "generated_at", generatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, stamped, "", "  "); err != nil {
		return err
	}
	pretty.WriteByte('\n')

	_, err = w.Write(pretty.Bytes())
	return err
}
