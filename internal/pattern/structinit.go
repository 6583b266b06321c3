package pattern

import (
	"strings"

	"github.com/iepathos/debtmap/pkg/model"
)

// StructInitHints are the frontend-reported facts a struct-initialization
// recognizer needs beyond what's on FunctionNode: the returned struct's
// field count, and how many lines of the function body look like field
// assignments vs. the total body line count.
type StructInitHints struct {
	ReturnedStructFieldCount int
	FieldAssignmentLines     int
	BodyLines                int
	ComplexFieldCount        int
	ReturnsResultOfStruct    bool
}

// DetectStructInit flags a function as a struct initializer when its
// shape matches §4.7: the returned struct has ≥15 fields, ≥70% of its
// lines are field assignments, nesting ≤4, and the return type is the
// struct itself or Result<Struct, _>. Confidence is composed from four
// weighted signals; only confidence ≥ 0.6 is reported.
func DetectStructInit(n *model.FunctionNode, hints StructInitHints) (bool, float64) {
	if hints.ReturnedStructFieldCount < 15 || hints.BodyLines == 0 || n.Nesting > 4 {
		return false, 0
	}
	initRatio := float64(hints.FieldAssignmentLines) / float64(hints.BodyLines)
	if initRatio < 0.70 {
		return false, 0
	}

	confidence := 0.0
	confidence += clampContribution(initRatio, 0.70, 1.0, 0.35)
	confidence += clampContribution(float64(hints.ReturnedStructFieldCount), 15, 60, 0.25)
	confidence += clampContribution(4-float64(n.Nesting), 0, 4, 0.20)
	if hasConfigNameHint(n.ReturnedStruct) {
		confidence += 0.10
	}

	if confidence < 0.6 {
		return false, confidence
	}
	return true, confidence
}

func clampContribution(value, lo, hi, weight float64) float64 {
	if hi <= lo {
		return 0
	}
	ratio := (value - lo) / (hi - lo)
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return ratio * weight
}

func hasConfigNameHint(structName string) bool {
	lower := strings.ToLower(structName)
	return strings.Contains(lower, "args") || strings.Contains(lower, "config") || strings.Contains(lower, "options")
}

// FieldBasedComplexity computes the field-count-driven complexity used in
// place of cyclomatic complexity for struct initializers: a step function
// of field count, plus nesting and complex-field contributions.
func FieldBasedComplexity(fieldCount, maxNesting, complexFieldCount int) float64 {
	var base float64
	switch {
	case fieldCount <= 20:
		base = 1
	case fieldCount <= 40:
		base = 2
	case fieldCount <= 60:
		base = 3.5
	default:
		base = 5
	}
	return base + 0.5*float64(maxNesting) + 1.0*float64(complexFieldCount)
}
