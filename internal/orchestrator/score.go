package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/iepathos/debtmap/internal/callgraph"
	"github.com/iepathos/debtmap/internal/scoring"
	"github.com/iepathos/debtmap/pkg/model"
)

const (
	complexityHotspotThreshold = 10.0
	testingGapCoverageCeiling  = 0.5
)

// scoreAll is phase 3: every function is scored in parallel (a pure map
// over the frozen graph), producing zero or more DebtItem candidates; the
// accumulation into one slice is the sequential reduce. File-scope items
// (GodObject/GodModule) are appended afterward, un-scored by per-function
// inputs.
func (o *Orchestrator) scoreAll(g *callgraph.Graph, fileMetrics map[string]*model.FileMetrics) []model.DebtItem {
	scorer := scoring.New(o.Config)
	nodes := g.Nodes()

	results := make([][]model.DebtItem, len(nodes))
	var mu sync.Mutex
	grp, _ := errgroup.WithContext(context.Background())
	const batchSize = 100

	for start := 0; start < len(nodes); start += batchSize {
		end := start + batchSize
		if end > len(nodes) {
			end = len(nodes)
		}
		batchStart := start
		batch := nodes[start:end]
		grp.Go(func() error {
			for i, n := range batch {
				items := o.scoreFunction(g, scorer, n)
				mu.Lock()
				results[batchStart+i] = items
				mu.Unlock()
			}
			return nil
		})
	}
	_ = grp.Wait()

	var out []model.DebtItem
	for _, items := range results {
		out = append(out, items...)
	}
	out = append(out, fileScopeItems(g, fileMetrics)...)
	return out
}

func (o *Orchestrator) scoreFunction(g *callgraph.Graph, scorer *scoring.Scorer, n *model.FunctionNode) []model.DebtItem {
	callerCount := len(g.Callers(n.Id))
	in := scoring.Input{
		Node:                n,
		CoveragePct:         n.CoveragePct,
		CallerCount:         callerCount,
		TransitiveInDeg:     callerCount,
		CoverageZeroFallback: true,
	}
	flags := map[string]bool{
		"god_object":          false,
		"complex_function":    n.EffComplexity > complexityHotspotThreshold,
		"long_function":       n.LOC > 100,
		"primitive_obsession": false,
	}
	if n.Patterns.IsCleanMatchDispatcher {
		flags["complex_function"] = false
		flags["long_function"] = false
	}
	score, severity := scorer.Score(in, flags)

	var items []model.DebtItem
	loc := model.Location{File: n.Id.File, Function: n.Id.Name, Line: n.Id.Line}
	snapshot := map[string]float64{
		"cyclomatic":     float64(n.Cyclomatic),
		"cognitive":      float64(n.Cognitive),
		"eff_complexity": n.EffComplexity,
		"est_branches":   n.EstBranches,
		"loc":            float64(n.LOC),
	}

	lowCoverage := n.CoveragePct == nil || *n.CoveragePct < testingGapCoverageCeiling
	if n.EffComplexity > complexityHotspotThreshold && lowCoverage && !n.IsTest {
		items = append(items, model.DebtItem{
			Kind:           model.KindTestingGap,
			Location:       loc,
			Score:          score,
			Severity:       severity,
			Metrics:        snapshot,
			Explanation:    fmt.Sprintf("%s has effective complexity %.1f with insufficient coverage", n.Id.Name, n.EffComplexity),
			Recommendation: "add unit tests covering the uncovered branches before refactoring",
			EffortMinutes:  effortMinutes(n),
		})
	}

	if n.EffComplexity > complexityHotspotThreshold && !n.Patterns.IsCleanMatchDispatcher {
		items = append(items, model.DebtItem{
			Kind:           model.KindComplexityHotspot,
			Location:       loc,
			Score:          score,
			Severity:       severity,
			Metrics:        snapshot,
			Explanation:    fmt.Sprintf("%s has high effective complexity (%.1f)", n.Id.Name, n.EffComplexity),
			Recommendation: "extract smaller functions to reduce branching",
			EffortMinutes:  effortMinutes(n),
		})
	}

	if callerCount == 0 && n.Role != model.RoleEntryPoint && !n.Patterns.IsObserverDispatcher && !n.IsTest {
		items = append(items, model.DebtItem{
			Kind:           model.KindDeadCode,
			Location:       loc,
			Score:          score,
			Severity:       severity,
			Metrics:        snapshot,
			Explanation:    fmt.Sprintf("%s has no callers and is not an entry point", n.Id.Name),
			Recommendation: "verify this function is reachable, or remove it",
			EffortMinutes:  effortMinutes(n),
		})
	}

	if n.Patterns.IsStructInitializer {
		items = append(items, model.DebtItem{
			Kind:           model.KindStructInit,
			Location:       loc,
			Score:          score * 0.5,
			Severity:       severity,
			Metrics:        snapshot,
			Explanation:    fmt.Sprintf("%s is a struct-initialization function (confidence %.2f)", n.Id.Name, n.Patterns.StructInitConfidence),
			Recommendation: "consider a builder or Default impl if this grows further",
			EffortMinutes:  effortMinutes(n),
		})
	}

	return items
}

// fileScopeItems emits the file-scope GodObject/GodModule items, applying
// §4.9's well-tested-stable-core dampening first: a god-object/module whose
// callers are mostly tests and whose instability is low is a stable,
// already-exercised core, not a live risk, so its score is cut to 20% of
// the raw god score before severity is derived from it.
func fileScopeItems(g *callgraph.Graph, fileMetrics map[string]*model.FileMetrics) []model.DebtItem {
	var out []model.DebtItem
	for file, fm := range fileMetrics {
		switch {
		case fm.IsGodObject:
			ids := structFunctionIds(g, fm, fm.GodStructName)
			testCallerRatio, instability := callerStats(g, ids)
			score := scoring.ApplyStableCoreDampening(fm.GodScore, testCallerRatio, instability)
			out = append(out, model.DebtItem{
				Kind:     model.KindGodObject,
				Location: model.Location{File: file, Function: fm.GodStructName},
				Score:    score,
				Severity: severityForGodScore(score),
				Metrics: map[string]float64{
					"god_score":         fm.GodScore,
					"test_caller_ratio": testCallerRatio,
					"instability":       instability,
				},
				Explanation:    fmt.Sprintf("struct %s shows god-object characteristics (score %.1f)", fm.GodStructName, fm.GodScore),
				Recommendation: splitRecommendation(fm.SemanticSplitHint),
			})
		case fm.IsGodModule:
			ids := moduleFunctionIds(g, fm)
			testCallerRatio, instability := callerStats(g, ids)
			score := scoring.ApplyStableCoreDampening(fm.GodScore, testCallerRatio, instability)
			out = append(out, model.DebtItem{
				Kind:     model.KindGodModule,
				Location: model.Location{File: file},
				Score:    score,
				Severity: severityForGodScore(score),
				Metrics: map[string]float64{
					"god_score":         fm.GodScore,
					"test_caller_ratio": testCallerRatio,
					"instability":       instability,
				},
				Explanation:    fmt.Sprintf("module %s shows god-module characteristics (score %.1f)", file, fm.GodScore),
				Recommendation: splitRecommendation(fm.SemanticSplitHint),
			})
		}
	}
	return out
}

// structFunctionIds returns the ids, among fm's functions, whose node
// reports StructOwner == structName.
func structFunctionIds(g *callgraph.Graph, fm *model.FileMetrics, structName string) []model.FunctionId {
	var ids []model.FunctionId
	for _, id := range fm.Functions {
		if n, ok := g.Node(id); ok && n.StructOwner == structName {
			ids = append(ids, id)
		}
	}
	return ids
}

// moduleFunctionIds returns the ids, among fm's functions, that belong to
// no struct (the free-function pool a god-module's score is computed over).
func moduleFunctionIds(g *callgraph.Graph, fm *model.FileMetrics) []model.FunctionId {
	var ids []model.FunctionId
	for _, id := range fm.Functions {
		if n, ok := g.Node(id); ok && n.StructOwner == "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// callerStats computes the test-caller ratio (fraction of callers, across
// ids, that are themselves test functions) and instability
// (outgoing/(outgoing+incoming), Martin's Ce/(Ca+Ce)) that
// scoring.ApplyStableCoreDampening needs.
func callerStats(g *callgraph.Graph, ids []model.FunctionId) (testCallerRatio, instability float64) {
	var outgoing, incoming, testCallers, totalCallers int
	for _, id := range ids {
		outgoing += len(g.Callees(id))
		callers := g.Callers(id)
		incoming += len(callers)
		for _, callerId := range callers {
			totalCallers++
			if callerNode, ok := g.Node(callerId); ok && callerNode.IsTest {
				testCallers++
			}
		}
	}
	if totalCallers > 0 {
		testCallerRatio = float64(testCallers) / float64(totalCallers)
	}
	if outgoing+incoming > 0 {
		instability = float64(outgoing) / float64(outgoing+incoming)
	}
	return testCallerRatio, instability
}

func splitRecommendation(hint string) string {
	if hint == "" {
		return "split into smaller, single-responsibility units"
	}
	return fmt.Sprintf("split into smaller units; candidate grouping: %s", hint)
}

func severityForGodScore(score float64) model.Severity {
	switch {
	case score >= 120:
		return model.SeverityCritical
	case score >= 90:
		return model.SeverityHigh
	case score >= 40:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}

// effortMinutes estimates remediation effort from already-computed fields
// (effective complexity, LOC) alone — never an independent scoring input.
func effortMinutes(n *model.FunctionNode) int {
	const base = 5
	complexityMinutes := 0
	if over := n.EffComplexity - 10; over > 0 {
		complexityMinutes = int(over * 2)
	}
	locMinutes := 0
	if over := n.LOC - 30; over > 0 {
		locMinutes = over / 5
	}
	return base + complexityMinutes + locMinutes
}
