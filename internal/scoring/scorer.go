// Package scoring implements C9: score composition. Scoring is total — it
// never errors; every missing input substitutes a conservative default.
package scoring

import (
	"math"

	"github.com/iepathos/debtmap/pkg/model"
)

// Scorer composes DebtItem scores from a FunctionNode's already-computed
// fields (purity, role, effective complexity, coverage, pattern flags) per
// the Config it was built with.
type Scorer struct {
	Config *Config
}

// New returns a Scorer over cfg. A nil cfg is replaced with DefaultConfig.
func New(cfg *Config) *Scorer {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Scorer{Config: cfg}
}

// Input bundles the per-function facts the base score is computed from.
// CoveragePct is nil when coverage is unknown.
type Input struct {
	Node              *model.FunctionNode
	CoveragePct       *float64
	CallerCount       int
	TransitiveInDeg   int
	CoverageZeroFallback bool
}

// Score computes one function's final debt score per §4.9's pipeline: base
// score, role multiplier, exponential pattern scaling, risk boost, purity
// adjustment, test-code adjustment. Returns the final score and the
// severity it maps to.
func (s *Scorer) Score(in Input, patternFlags map[string]bool) (float64, model.Severity) {
	base := s.baseScore(in)
	score := base * s.roleMultiplier(in.Node.Role)
	score = s.applyPatternScaling(score, patternFlags)
	score = s.applyRiskBoost(score, in)
	score = s.applyPurityAdjustment(score, in.Node)

	severity := severityFor(score)

	if in.Node.IsTest {
		severity = severity.Downgrade()
	}

	if score < 0 {
		score = 0
	}
	return score, severity
}

// baseScore composes the three normalized (0..1) components per §4.9's
// weighted sum, then scales onto a 0..100 working range — the range the
// rest of the pipeline's exponential scaling, risk boosts, and severity
// bands (§4.9, §8 scenario 6) are calibrated against. Test code discounts
// the complexity component itself (complexity score x0.6) rather than the
// composed score, so the discount doesn't get re-amplified by the role
// multiplier or pattern scaling that follow.
func (s *Scorer) baseScore(in Input) float64 {
	coverageScore := s.coverageScore(in)
	complexityScore := normalizeComplexity(in.Node.EffComplexity)
	if in.Node.IsTest {
		complexityScore *= 0.6
	}
	dependencyScore := dependencyScore(in.CallerCount, in.TransitiveInDeg)
	return 100 * (0.4*coverageScore + 0.4*complexityScore + 0.2*dependencyScore)
}

// coverageScore = 1 - adjusted_coverage_pct, where adjusted_coverage_pct =
// 1 - (1-raw_pct) * role_coverage_weight. Missing coverage substitutes 0%
// (the zero-fallback default) unless CoverageZeroFallback is explicitly
// false, in which case it is treated as fully unweighted (raw_pct = 1,
// i.e. no coverage-gap penalty).
func (s *Scorer) coverageScore(in Input) float64 {
	rawPct := 0.0
	if in.CoveragePct != nil {
		rawPct = *in.CoveragePct
	} else if !in.CoverageZeroFallback {
		rawPct = 1.0
	}
	weight := s.Config.RoleCoverageWeights[in.Node.Role.String()]
	if weight == 0 {
		weight = 1.0
	}
	adjusted := 1 - (1-rawPct)*weight
	return clamp01(1 - adjusted)
}

// normalizeComplexity maps effective complexity onto [0,1] with a
// saturating curve: complexity of 30+ normalizes to ~1.0.
func normalizeComplexity(eff float64) float64 {
	const ceiling = 30.0
	return clamp01(eff / ceiling)
}

// dependencyScore is a function of caller count and transitive in-degree;
// isolated nodes (no callers, no transitive dependents) contribute 0.
func dependencyScore(callerCount, transitiveInDeg int) float64 {
	if callerCount == 0 && transitiveInDeg == 0 {
		return 0
	}
	raw := math.Log1p(float64(callerCount)+float64(transitiveInDeg)) / math.Log1p(20)
	return clamp01(raw)
}

func (s *Scorer) roleMultiplier(r model.Role) float64 {
	m, ok := s.Config.RoleMultiplier[r.String()]
	if !ok {
		m = 1.0
	}
	if s.Config.EnableClamping {
		if m < s.Config.ClampMin {
			m = s.Config.ClampMin
		}
		if m > s.Config.ClampMax {
			m = s.Config.ClampMax
		}
	}
	return m
}

// applyPatternScaling applies score <- score^exponent per active pattern
// flag, in map-iteration order (pattern flags are orthogonal; composing
// them commutatively is intentional), bounded per pattern by its
// min/max threshold.
func (s *Scorer) applyPatternScaling(score float64, flags map[string]bool) float64 {
	for name, active := range flags {
		if !active {
			continue
		}
		scale, ok := s.Config.PatternScaling[name]
		if !ok {
			continue
		}
		if score < scale.MinThreshold {
			continue
		}
		scaled := math.Pow(score, scale.Exponent)
		if scale.MaxThreshold > 0 && scaled > scale.MaxThreshold {
			scaled = scale.MaxThreshold
		}
		score = scaled
	}
	return score
}

// applyRiskBoost applies the composable multiplicative risk boosts:
// high-caller-count (>=10) 1.2x, entry-point 1.15x, low-coverage (<30%) 1.1x.
func (s *Scorer) applyRiskBoost(score float64, in Input) float64 {
	if in.CallerCount >= 10 {
		score *= 1.2
	}
	if in.Node.Role == model.RoleEntryPoint {
		score *= 1.15
	}
	if in.CoveragePct != nil && *in.CoveragePct < 0.30 {
		score *= 1.1
	}
	return score
}

// applyPurityAdjustment: Pure with confidence > 0.8 -> 0.70x; Pure with
// confidence <= 0.8 -> 0.85x; Impure -> 1.0x (no change).
func (s *Scorer) applyPurityAdjustment(score float64, n *model.FunctionNode) float64 {
	if n.Purity.Level != model.Pure {
		return score
	}
	if n.Purity.Confidence > 0.8 {
		return score * 0.70
	}
	return score * 0.85
}

func severityFor(score float64) model.Severity {
	switch {
	case score >= 75:
		return model.SeverityCritical
	case score >= 50:
		return model.SeverityHigh
	case score >= 25:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}

// ApplyStableCoreDampening implements §4.9's well-tested-stable-core
// dampening: for a god-object file where >=70% of callers are test callers
// and instability <= 0.35, multiply the final score by 0.2.
func ApplyStableCoreDampening(score float64, testCallerRatio, instability float64) float64 {
	if testCallerRatio >= 0.70 && instability <= 0.35 {
		return score * 0.2
	}
	return score
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
