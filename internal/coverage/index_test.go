package coverage

import (
	"testing"

	"github.com/iepathos/debtmap/pkg/model"
)

func TestLookupExact(t *testing.T) {
	idx := Build([]model.CoverageRecord{
		{File: "src/m.rs", FunctionName: "foo", StartLine: 10, TotalLines: 10, UncoveredLines: []int{}},
	})
	fc, ok := idx.Lookup("src/m.rs", "foo", 10)
	if !ok {
		t.Fatal("expected exact hit")
	}
	if fc.Pct != 1.0 {
		t.Errorf("Pct = %v, want 1.0", fc.Pct)
	}
}

func TestLookupTraitMethodVariant(t *testing.T) {
	idx := Build([]model.CoverageRecord{
		{File: "src/m.rs", FunctionName: "method", StartLine: 5, TotalLines: 4, UncoveredLines: []int{1, 2}},
	})
	fc, ok := idx.Lookup("src/m.rs", "Trait::method", 5)
	if !ok {
		t.Fatal("expected trait-method fallback hit")
	}
	if fc.Pct != 0.5 {
		t.Errorf("Pct = %v, want 0.5", fc.Pct)
	}
}

func TestLookupByLineTolerance(t *testing.T) {
	idx := Build([]model.CoverageRecord{
		{File: "src/m.rs", FunctionName: "bar", StartLine: 100, TotalLines: 1},
	})
	if _, ok := idx.Lookup("src/m.rs", "unrelated_name", 101); !ok {
		t.Fatal("expected within-tolerance line fallback hit")
	}
	if _, ok := idx.Lookup("src/m.rs", "unrelated_name", 105); ok {
		t.Fatal("expected out-of-tolerance miss")
	}
}

func TestLookupMiss(t *testing.T) {
	idx := Build(nil)
	if _, ok := idx.Lookup("none.rs", "x", 1); ok {
		t.Fatal("expected miss on empty index")
	}
}
