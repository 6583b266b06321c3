package debt

import "github.com/iepathos/debtmap/pkg/model"

// DeltaStatus classifies how a DebtItem changed between two runs.
type DeltaStatus string

const (
	StatusNew      DeltaStatus = "new"
	StatusResolved DeltaStatus = "resolved"
	StatusWorsened DeltaStatus = "worsened"
	StatusImproved DeltaStatus = "improved"
	StatusUnchanged DeltaStatus = "unchanged"
)

// DeltaItem pairs a dedup key with its status and score movement.
type DeltaItem struct {
	Kind       model.DebtKind
	Location   model.Location
	Status     DeltaStatus
	PrevScore  float64
	CurrScore  float64
}

// DebtDelta is the baseline-diffing view over two already-produced reports.
// It never changes scoring or ranking; it is a pure post-processing
// comparison, consumed only by the CLI's optional --baseline flag.
type DebtDelta struct {
	Items []DeltaItem
}

// Diff classifies every item in previous and current by dedup key: items
// only in current are "new", items only in previous are "resolved", items
// in both with a higher current score are "worsened", with a lower score
// are "improved", and with an equal score are "unchanged".
func Diff(previous, current []model.DebtItem) DebtDelta {
	prevByKey := make(map[dedupKey]model.DebtItem, len(previous))
	for _, item := range previous {
		prevByKey[keyOf(item)] = item
	}
	seen := make(map[dedupKey]bool, len(current))

	var out []DeltaItem
	for _, item := range current {
		k := keyOf(item)
		seen[k] = true
		prev, existed := prevByKey[k]
		if !existed {
			out = append(out, DeltaItem{Kind: item.Kind, Location: item.Location, Status: StatusNew, CurrScore: item.Score})
			continue
		}
		status := StatusUnchanged
		if item.Score > prev.Score {
			status = StatusWorsened
		} else if item.Score < prev.Score {
			status = StatusImproved
		}
		out = append(out, DeltaItem{Kind: item.Kind, Location: item.Location, Status: status, PrevScore: prev.Score, CurrScore: item.Score})
	}

	for _, item := range previous {
		k := keyOf(item)
		if seen[k] {
			continue
		}
		out = append(out, DeltaItem{Kind: item.Kind, Location: item.Location, Status: StatusResolved, PrevScore: item.Score})
	}

	return DebtDelta{Items: out}
}
