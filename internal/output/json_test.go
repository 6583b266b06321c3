package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/iepathos/debtmap/pkg/model"
)

func newTestReport() *model.RankedReport {
	return &model.RankedReport{
		Items: []model.DebtItem{
			{
				Kind:           model.KindComplexityHotspot,
				Location:       model.Location{File: "src/lib.rs", Function: "parse", Line: 42},
				Score:          82.5,
				Severity:       model.SeverityHigh,
				Metrics:        map[string]float64{"cyclomatic": 18, "nesting": 4},
				Explanation:    "parse has cyclomatic complexity 18",
				Recommendation: "Extract the match arms into helper functions",
				EffortMinutes:  45,
			},
			{
				Kind:           model.KindGodObject,
				Location:       model.Location{File: "src/registry.rs"},
				Score:          60.0,
				Severity:       model.SeverityMedium,
				Explanation:    "Registry has 24 methods across 3 responsibilities",
				Recommendation: "Split Registry along its dispatch and storage responsibilities",
				EffortMinutes:  90,
			},
		},
		CountsByKind:     map[model.DebtKind]int{model.KindComplexityHotspot: 1, model.KindGodObject: 1},
		CountsBySeverity: map[model.Severity]int{model.SeverityHigh: 1, model.SeverityMedium: 1},
		Graph:            &model.GraphSnapshot{NodeCount: 40, EdgeCount: 75},
	}
}

func TestJSONOutputValid(t *testing.T) {
	report := newTestReport()
	var buf bytes.Buffer
	if err := RenderJSON(&buf, report, time.Unix(0, 0)); err != nil {
		t.Fatalf("RenderJSON error: %v", err)
	}
	if !json.Valid(buf.Bytes()) {
		t.Errorf("output is not valid JSON:\n%s", buf.String())
	}
}

func TestJSONNoANSI(t *testing.T) {
	report := newTestReport()
	var buf bytes.Buffer
	if err := RenderJSON(&buf, report, time.Unix(0, 0)); err != nil {
		t.Fatalf("RenderJSON error: %v", err)
	}
	if strings.Contains(buf.String(), "\x1b") {
		t.Error("JSON output contains ANSI escape sequences")
	}
}

func TestJSONVersionAndGeneratedAt(t *testing.T) {
	report := newTestReport()
	var buf bytes.Buffer
	stamp := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := RenderJSON(&buf, report, stamp); err != nil {
		t.Fatalf("RenderJSON error: %v", err)
	}

	var parsed JSONReport
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if parsed.Version != "1" {
		t.Errorf("version = %q, want %q", parsed.Version, "1")
	}
	if parsed.GeneratedAt != "2026-01-02T03:04:05Z" {
		t.Errorf("generated_at = %q, want 2026-01-02T03:04:05Z", parsed.GeneratedAt)
	}
}

func TestJSONItemsRoundTrip(t *testing.T) {
	report := newTestReport()
	var buf bytes.Buffer
	if err := RenderJSON(&buf, report, time.Unix(0, 0)); err != nil {
		t.Fatalf("RenderJSON error: %v", err)
	}

	var parsed JSONReport
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if len(parsed.Items) != 2 {
		t.Fatalf("items count = %d, want 2", len(parsed.Items))
	}
	first := parsed.Items[0]
	if first.Kind != model.KindComplexityHotspot {
		t.Errorf("kind = %q, want %q", first.Kind, model.KindComplexityHotspot)
	}
	if first.Function != "parse" {
		t.Errorf("function = %q, want parse", first.Function)
	}
	if first.Severity != "High" {
		t.Errorf("severity = %q, want High", first.Severity)
	}
	if first.EffortMinutes != 45 {
		t.Errorf("effort_minutes = %d, want 45", first.EffortMinutes)
	}
}

func TestJSONCountsAndGraph(t *testing.T) {
	report := newTestReport()
	var buf bytes.Buffer
	if err := RenderJSON(&buf, report, time.Unix(0, 0)); err != nil {
		t.Fatalf("RenderJSON error: %v", err)
	}

	var parsed JSONReport
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if parsed.CountsByKind[model.KindGodObject] != 1 {
		t.Errorf("counts_by_kind[GodObject] = %d, want 1", parsed.CountsByKind[model.KindGodObject])
	}
	if parsed.CountsBySeverity["High"] != 1 {
		t.Errorf("counts_by_severity[High] = %d, want 1", parsed.CountsBySeverity["High"])
	}
	if parsed.Graph == nil || parsed.Graph.NodeCount != 40 || parsed.Graph.EdgeCount != 75 {
		t.Errorf("graph = %+v, want {40 75}", parsed.Graph)
	}
}

func TestJSONPartialFlag(t *testing.T) {
	report := newTestReport()
	report.Partial = true
	var buf bytes.Buffer
	if err := RenderJSON(&buf, report, time.Unix(0, 0)); err != nil {
		t.Fatalf("RenderJSON error: %v", err)
	}
	var parsed JSONReport
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if !parsed.Partial {
		t.Error("partial should be true")
	}
}

func TestJSONEmptyItems(t *testing.T) {
	report := &model.RankedReport{}
	var buf bytes.Buffer
	if err := RenderJSON(&buf, report, time.Unix(0, 0)); err != nil {
		t.Fatalf("RenderJSON error: %v", err)
	}
	var parsed JSONReport
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if len(parsed.Items) != 0 {
		t.Errorf("items should be empty, got %d", len(parsed.Items))
	}
}
