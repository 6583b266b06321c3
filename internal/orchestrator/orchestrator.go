// Package orchestrator implements C11: the phased pipeline that drives
// every other component from a FrontendModel (and optional
// CoverageProvider) to a RankedReport.
package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iepathos/debtmap/internal/callgraph"
	"github.com/iepathos/debtmap/internal/complexity"
	"github.com/iepathos/debtmap/internal/coverage"
	"github.com/iepathos/debtmap/internal/debt"
	"github.com/iepathos/debtmap/internal/pattern"
	"github.com/iepathos/debtmap/internal/purity"
	"github.com/iepathos/debtmap/internal/role"
	"github.com/iepathos/debtmap/internal/scoring"
	"github.com/iepathos/debtmap/internal/telemetry"
	"github.com/iepathos/debtmap/internal/testdetect"
	"github.com/iepathos/debtmap/pkg/model"
)

// Orchestrator owns the configuration and logger for one analysis run.
// It holds no state between runs.
type Orchestrator struct {
	Config    *scoring.Config
	Logger    *zap.Logger
	Telemetry *telemetry.Collectors
}

// New returns an Orchestrator. A nil logger is replaced with a no-op
// logger; a nil telemetry collector set is replaced with an unregistered
// private instance.
func New(cfg *scoring.Config, logger *zap.Logger, telem *telemetry.Collectors) *Orchestrator {
	if cfg == nil {
		cfg = scoring.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if telem == nil {
		telem = telemetry.NewPrivate()
	}
	return &Orchestrator{Config: cfg, Logger: logger, Telemetry: telem}
}

// Run executes the full three-phase pipeline and returns the ranked report.
// It returns a non-nil error for the fatal error kinds
// (DuplicateFunctionError, InvariantViolationError);
// UnresolvedCallError and CoverageMalformedError are recovered locally and
// logged. Cancellation via ctx is checked at phase boundaries only; a phase
// that has started runs to completion. A cancelled run returns a partial,
// non-authoritative report alongside CancelledError.
func (o *Orchestrator) Run(ctx context.Context, frontend model.FrontendModel, covProvider model.CoverageProvider) (*model.RankedReport, error) {
	files := frontend.Files()

	covIndex, covErr := o.timed("coverage_ingest", func() (*coverage.Index, error) {
		return o.buildCoverageIndex(covProvider)
	})
	if covErr != nil {
		o.Logger.Warn("coverage ingestion failed, falling back to no coverage", zap.Error(covErr))
	}

	testCfg := testdetect.Config{
		TestFilePatterns:     o.Config.TestDetection.TestFilePatterns,
		CustomTestAttributes: o.Config.TestDetection.CustomTestAttributes,
	}

	buildStart := time.Now()
	nodes, fileStructs := buildNodes(files, testCfg)
	o.Telemetry.PhaseDuration.WithLabelValues("build_nodes").Observe(time.Since(buildStart).Seconds())

	g := callgraph.New()
	for _, n := range nodes {
		if err := g.AddFunction(n); err != nil {
			return nil, err
		}
	}
	if ctx.Err() != nil {
		return partialReport(g), &model.CancelledError{}
	}

	resolveStart := time.Now()
	unresolved, err := applyDirectEdges(g, frontend.CallEdges())
	if err != nil {
		return nil, err
	}

	if len(unresolved) > 0 {
		errs := g.ResolveCrossFile(ctx, unresolved)
		for _, err := range errs {
			var iv *model.InvariantViolationError
			if errors.As(err, &iv) {
				return nil, err
			}
			o.Telemetry.UnresolvedCalls.Inc()
			o.Logger.Warn("unresolved call", zap.Error(err))
		}
	}
	o.Telemetry.PhaseDuration.WithLabelValues("resolve_calls").Observe(time.Since(resolveStart).Seconds())
	if ctx.Err() != nil {
		return partialReport(g), &model.CancelledError{}
	}

	purityStart := time.Now()
	purity.Intrinsic(g)
	purity.Propagate(g, purity.Config{
		UnknownDepsConfidence:   o.Config.Purity.UnknownDepsConfidence,
		RecursivePureMultiplier: o.Config.Purity.RecursivePureMultiplier,
		PropagationDecay:        o.Config.Purity.PropagationDecay,
	})
	o.Telemetry.PhaseDuration.WithLabelValues("purity").Observe(time.Since(purityStart).Seconds())

	classifyStart := time.Now()
	fileMetrics := o.classifyAndAdjust(g, fileStructs)
	o.Telemetry.PhaseDuration.WithLabelValues("classify").Observe(time.Since(classifyStart).Seconds())

	if ctx.Err() != nil {
		return partialReport(g), &model.CancelledError{}
	}

	if covIndex != nil {
		applyCoverage(g, covIndex)
	}

	o.Telemetry.GraphNodes.Set(float64(len(g.Nodes())))
	o.Telemetry.GraphEdges.Set(float64(g.EdgeCount()))

	scoreStart := time.Now()
	items := o.scoreAll(g, fileMetrics)
	o.Telemetry.PhaseDuration.WithLabelValues("score").Observe(time.Since(scoreStart).Seconds())

	ranked := debt.Aggregate(items)
	byKind, bySeverity := debt.Counts(ranked)
	for kind, count := range byKind {
		o.Telemetry.DebtItemsByKind.WithLabelValues(string(kind)).Add(float64(count))
	}

	return &model.RankedReport{
		Items:            ranked,
		CountsByKind:     byKind,
		CountsBySeverity: bySeverity,
		Graph:            g.Snapshot(),
		ConfigApplied:    o.Config,
	}, nil
}

// timed runs fn and records its duration under the given phase label,
// returning fn's result unchanged.
func (o *Orchestrator) timed(phase string, fn func() (*coverage.Index, error)) (*coverage.Index, error) {
	start := time.Now()
	idx, err := fn()
	o.Telemetry.PhaseDuration.WithLabelValues(phase).Observe(time.Since(start).Seconds())
	return idx, err
}

func (o *Orchestrator) buildCoverageIndex(provider model.CoverageProvider) (*coverage.Index, error) {
	if provider == nil {
		return nil, nil
	}
	records, err := provider.Records()
	if err != nil {
		return nil, &model.CoverageMalformedError{Reason: err.Error()}
	}
	return coverage.Build(records), nil
}

func partialReport(g *callgraph.Graph) *model.RankedReport {
	return &model.RankedReport{
		Graph:   g.Snapshot(),
		Partial: true,
	}
}

// classifyAndAdjust runs C7's per-file god-object arbitration and C8's
// complexity adjustment in parallel across files (phase 2d); each
// goroutine owns a disjoint file's nodes, so no synchronization is needed
// beyond the result map. C5 role classification runs once afterward, over
// the whole graph, since EntryPoint/Orchestrator classification considers
// caller counts from anywhere in the graph and PatternMatch depends on the
// per-function flags resolved in buildNodes.
func (o *Orchestrator) classifyAndAdjust(g *callgraph.Graph, fileStructs map[string][]model.StructInfo) map[string]*model.FileMetrics {
	nodesByFile := make(map[string][]*model.FunctionNode)
	for _, n := range g.Nodes() {
		nodesByFile[n.Id.File] = append(nodesByFile[n.Id.File], n)
	}

	result := make(map[string]*model.FileMetrics, len(nodesByFile))
	var mu sync.Mutex
	grp, _ := errgroup.WithContext(context.Background())

	for file, fns := range nodesByFile {
		file, fns := file, fns
		grp.Go(func() error {
			for _, n := range fns {
				n.EffComplexity, n.EstBranches = complexity.Adjust(n.Cyclomatic, n.Nesting, n.Entropy, n.PatternRepetitionRatio)
			}
			fm := pattern.AnalyzeFile(file, fileStructs[file], fns, pattern.GodObjectConfig{
				MethodThreshold:         o.Config.GodObjectThresholds.MethodThreshold,
				FieldThreshold:          o.Config.GodObjectThresholds.FieldThreshold,
				ModuleFunctionThreshold: o.Config.GodObjectThresholds.MethodThreshold,
				ScoreThreshold:          o.Config.GodObjectThresholds.ScoreThreshold,
			})
			mu.Lock()
			result[file] = fm
			mu.Unlock()
			return nil
		})
	}
	_ = grp.Wait()

	role.Classify(g, role.DefaultConfig(), nil)
	return result
}

func applyCoverage(g *callgraph.Graph, idx *coverage.Index) {
	for _, n := range g.Nodes() {
		fc, ok := idx.Lookup(n.Id.File, n.Id.Name, n.Id.Line)
		if !ok {
			continue
		}
		pct := fc.Pct
		n.CoveragePct = &pct
		n.UncoveredLines = fc.UncoveredLines
	}
}

// applyDirectEdges adds every call edge whose callee already resolves
// exactly or via fuzzy/name match at insertion time, and returns the sites
// that need the cross-file resolution pass. A failure to add an edge is
// returned as is and stops the pass.
func applyDirectEdges(g *callgraph.Graph, edges []model.CallEdge) ([]callgraph.UnresolvedSite, error) {
	var unresolved []callgraph.UnresolvedSite
	for i, e := range edges {
		if resolved, ok := g.FindFunction(e.Callee); ok {
			if err := g.AddCall(e.Caller, resolved); err != nil {
				return nil, err
			}
			continue
		}
		unresolved = append(unresolved, callgraph.UnresolvedSite{Index: i, Caller: e.Caller, Query: e.Callee})
	}
	return unresolved, nil
}
