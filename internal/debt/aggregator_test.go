package debt

import (
	"testing"

	"github.com/iepathos/debtmap/pkg/model"
)

func TestAggregateDropsZeroScore(t *testing.T) {
	items := []model.DebtItem{
		{Kind: model.KindComplexityHotspot, Location: model.Location{File: "a.rs", Function: "f", Line: 1}, Score: 0},
		{Kind: model.KindComplexityHotspot, Location: model.Location{File: "a.rs", Function: "g", Line: 2}, Score: 5},
	}
	out := Aggregate(items)
	if len(out) != 1 {
		t.Fatalf("expected 1 surviving item, got %d", len(out))
	}
}

func TestAggregateDedupesKeepingHighest(t *testing.T) {
	loc := model.Location{File: "a.rs", Function: "f", Line: 1}
	items := []model.DebtItem{
		{Kind: model.KindComplexityHotspot, Location: loc, Score: 5},
		{Kind: model.KindComplexityHotspot, Location: loc, Score: 9},
	}
	out := Aggregate(items)
	if len(out) != 1 || out[0].Score != 9 {
		t.Fatalf("expected single item with score 9, got %+v", out)
	}
}

func TestAggregateSortOrder(t *testing.T) {
	items := []model.DebtItem{
		{Kind: model.KindComplexityHotspot, Location: model.Location{File: "b.rs", Line: 1}, Score: 5},
		{Kind: model.KindComplexityHotspot, Location: model.Location{File: "a.rs", Line: 2}, Score: 9},
	}
	out := Aggregate(items)
	if out[0].Score != 9 || out[1].Score != 5 {
		t.Fatalf("expected descending score order, got %+v", out)
	}
}

func TestDiffClassifiesNewResolvedWorsenedImproved(t *testing.T) {
	prev := []model.DebtItem{
		{Kind: model.KindComplexityHotspot, Location: model.Location{File: "a.rs", Function: "f", Line: 1}, Score: 10},
		{Kind: model.KindComplexityHotspot, Location: model.Location{File: "a.rs", Function: "gone", Line: 5}, Score: 20},
	}
	curr := []model.DebtItem{
		{Kind: model.KindComplexityHotspot, Location: model.Location{File: "a.rs", Function: "f", Line: 1}, Score: 15},
		{Kind: model.KindComplexityHotspot, Location: model.Location{File: "a.rs", Function: "new", Line: 9}, Score: 8},
	}
	delta := Diff(prev, curr)
	statuses := make(map[DeltaStatus]int)
	for _, d := range delta.Items {
		statuses[d.Status]++
	}
	if statuses[StatusWorsened] != 1 || statuses[StatusNew] != 1 || statuses[StatusResolved] != 1 {
		t.Fatalf("unexpected status counts: %+v", statuses)
	}
}
