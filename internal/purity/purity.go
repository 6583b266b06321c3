// Package purity implements C4: the two-phase purity propagator. Phase 1
// assigns an intrinsic verdict to every function from its reported
// side-effect flags. Phase 2 computes strongly-connected components of the
// callee graph and propagates purity bottom-up (dependencies first) with
// confidence decay. Confidence never increases through propagation.
package purity

import (
	"github.com/iepathos/debtmap/internal/callgraph"
	"github.com/iepathos/debtmap/pkg/model"
)

// Config holds the tunables C4 exposes under the "purity" configuration
// section.
type Config struct {
	UnknownDepsConfidence  float64
	RecursivePureMultiplier float64
	PropagationDecay       float64
}

// DefaultConfig returns spec-mandated defaults.
func DefaultConfig() Config {
	return Config{
		UnknownDepsConfidence:   0.3,
		RecursivePureMultiplier: 0.7,
		PropagationDecay:        0.9,
	}
}

var intrinsicImpureEffects = []model.SideEffect{
	model.EffectFileIO, model.EffectNetwork, model.EffectProcessSpawn,
	model.EffectGlobalMut, model.EffectStdout, model.EffectTimeRandom,
	model.EffectFFI, model.EffectMutSelf, model.EffectMutParam, model.EffectUnsafe,
}

// Intrinsic assigns phase-1 verdicts to every node in the graph, based
// solely on each function's own reported side-effect flags.
func Intrinsic(g *callgraph.Graph) {
	for _, n := range g.Nodes() {
		if hasAnyEffect(n) {
			n.Purity = model.PurityResult{Level: model.Impure, Confidence: 1.0, Reason: model.ReasonSideEffects}
		} else {
			n.Purity = model.PurityResult{Level: model.Pure, Confidence: 1.0, Reason: model.ReasonIntrinsic}
		}
	}
}

func hasAnyEffect(n *model.FunctionNode) bool {
	for _, e := range intrinsicImpureEffects {
		if n.HasSideEffect(e) {
			return true
		}
	}
	return false
}

// Propagate runs phase 2: SCC computation over the (already intrinsically
// analyzed) graph, processed in reverse topological order. Call Intrinsic
// first.
func Propagate(g *callgraph.Graph, cfg Config) {
	sccs := tarjan(g)
	depth := make(map[model.FunctionId]int)

	for _, scc := range sccs {
		if len(scc) > 1 || selfLoop(g, scc) {
			propagateRecursive(g, scc, cfg)
			for _, id := range scc {
				depth[id] = 0
			}
			continue
		}
		id := scc[0]
		n, _ := g.Node(id)
		propagateAcyclic(g, n, cfg, depth)
	}
}

func selfLoop(g *callgraph.Graph, scc []model.FunctionId) bool {
	if len(scc) != 1 {
		return false
	}
	id := scc[0]
	for _, c := range g.Callees(id) {
		if c == id {
			return true
		}
	}
	return false
}

func propagateRecursive(g *callgraph.Graph, scc []model.FunctionId, cfg Config) {
	allPure := true
	minConf := 1.0
	anySideEffects := false
	for _, id := range scc {
		n, _ := g.Node(id)
		if n.Purity.Level != model.Pure {
			allPure = false
		}
		if n.Purity.Confidence < minConf {
			minConf = n.Purity.Confidence
		}
		if hasAnyEffect(n) {
			anySideEffects = true
		}
	}
	var result model.PurityResult
	switch {
	case allPure:
		result = model.PurityResult{Level: model.Pure, Confidence: minConf * cfg.RecursivePureMultiplier, Reason: model.ReasonRecursivePure}
	case anySideEffects:
		result = model.PurityResult{Level: model.Impure, Confidence: 0.95, Reason: model.ReasonRecursiveWithSideEffects}
	default:
		result = model.PurityResult{Level: model.Impure, Confidence: 0.95, Reason: model.ReasonRecursiveWithSideEffects}
	}
	for _, id := range scc {
		n, _ := g.Node(id)
		n.Purity = result
	}
}

func propagateAcyclic(g *callgraph.Graph, n *model.FunctionNode, cfg Config, depth map[model.FunctionId]int) {
	if n.Purity.Level == model.Impure {
		depth[n.Id] = 0
		return
	}

	callees := g.Callees(n.Id)
	if len(callees) == 0 {
		depth[n.Id] = 0
		return
	}

	allPure := true
	anyImpure := false
	anyUnknown := false
	minConf := 1.0
	maxDepth := 0
	for _, c := range callees {
		cn, ok := g.Node(c)
		if !ok {
			anyUnknown = true
			continue
		}
		if cn.Purity.Level != model.Pure {
			anyImpure = true
			allPure = false
		} else if cn.Purity.Confidence < minConf {
			minConf = cn.Purity.Confidence
		}
		if d, ok := depth[c]; ok && d > maxDepth {
			maxDepth = d
		}
	}

	switch {
	case anyImpure:
		n.Purity = model.PurityResult{Level: model.Impure, Confidence: 1.0, Reason: model.ReasonSideEffects}
		depth[n.Id] = 0
	case anyUnknown:
		n.Purity = model.PurityResult{Level: model.Pure, Confidence: cfg.UnknownDepsConfidence, Reason: model.ReasonUnknownDeps}
		depth[n.Id] = 0
	case allPure:
		d := maxDepth + 1
		conf := minConf
		for i := 0; i < d; i++ {
			conf *= cfg.PropagationDecay
		}
		n.Purity = model.PurityResult{Level: model.Pure, Confidence: conf, Reason: model.ReasonPropagatedFromDeps}
		depth[n.Id] = d
	}
}
