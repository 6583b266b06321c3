// Package role implements C5: role classification. Each function is
// classified with a first-match-wins heuristic pipeline over its purity,
// call-graph position, and pattern flags.
package role

import (
	"regexp"

	"github.com/iepathos/debtmap/internal/callgraph"
	"github.com/iepathos/debtmap/pkg/model"
)

// Config holds the tunables role classification exposes.
type Config struct {
	EntryPointPattern    string
	OrchestratorRatio    float64
	PureLogicMinConf     float64
	EntryPointAttributes []string
}

// DefaultConfig returns spec-mandated defaults.
func DefaultConfig() Config {
	return Config{
		EntryPointPattern: `^(main|run_.*|handle_.*|execute_.*)$`,
		OrchestratorRatio: 0.3,
		PureLogicMinConf:  0.6,
	}
}

var ioDominatedEffects = []model.SideEffect{
	model.EffectFileIO, model.EffectNetwork, model.EffectProcessSpawn,
}

// Classify assigns Role to every node in g, first-match-wins:
// EntryPoint, IOWrapper, Orchestrator, PureLogic, PatternMatch, Unknown.
// Run after purity propagation (C4) and pattern recognition (C7, for the
// PatternMatch tier) have populated their respective fields.
func Classify(g *callgraph.Graph, cfg Config, entryAttr map[model.FunctionId]bool) {
	entryRe := regexp.MustCompile(cfg.EntryPointPattern)
	for _, n := range g.Nodes() {
		n.Role = classifyOne(g, n, cfg, entryRe, entryAttr)
	}
}

func classifyOne(g *callgraph.Graph, n *model.FunctionNode, cfg Config, entryRe *regexp.Regexp, entryAttr map[model.FunctionId]bool) model.Role {
	callerCount := len(g.Callers(n.Id))
	isPublic := !n.IsMethod || n.StructOwner == ""

	if entryRe.MatchString(n.Id.Name) || entryAttr[n.Id] || (callerCount == 0 && isPublic) {
		return model.RoleEntryPoint
	}

	if n.Purity.Level == model.Impure && dominatedByIO(n) {
		return model.RoleIOWrapper
	}

	if n.Purity.Level == model.Impure && orchestratorRatio(g, n) > cfg.OrchestratorRatio {
		return model.RoleOrchestrator
	}

	if n.Purity.Level == model.Pure && n.Purity.Confidence >= cfg.PureLogicMinConf {
		return model.RolePureLogic
	}

	if n.Patterns.IsCleanMatchDispatcher {
		return model.RolePatternMatch
	}

	return model.RoleUnknown
}

func dominatedByIO(n *model.FunctionNode) bool {
	for _, e := range ioDominatedEffects {
		if n.HasSideEffect(e) {
			return true
		}
	}
	return false
}

func orchestratorRatio(g *callgraph.Graph, n *model.FunctionNode) float64 {
	if n.LOC == 0 {
		return 0
	}
	return float64(len(g.Callees(n.Id))) / float64(n.LOC)
}
