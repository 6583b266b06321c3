// Package pattern implements C7: the pure pattern recognizers. God-object
// analysis runs per file over its structs and already-built function nodes;
// the clean-match, observer and struct-init recognizers work from frontend
// hints before the call graph is built. Results populate flags on
// FunctionNode and FileMetrics. None of these recognizers mutate the call
// graph itself.
package pattern

import (
	"math"
	"sort"

	"github.com/fatih/camelcase"
	"github.com/iepathos/debtmap/pkg/model"
)

// GodObjectConfig holds the thresholds §4.7/§6 enumerate under
// god_object_thresholds.
type GodObjectConfig struct {
	MethodThreshold        int
	FieldThreshold         int
	ModuleFunctionThreshold int
	ScoreThreshold         float64
}

// DefaultGodObjectConfig returns spec-mandated defaults.
func DefaultGodObjectConfig() GodObjectConfig {
	return GodObjectConfig{
		MethodThreshold:         20,
		FieldThreshold:          5,
		ModuleFunctionThreshold: 20,
		ScoreThreshold:          70,
	}
}

// AnalyzeFile runs the god-object/god-module arbitration for one file,
// using its reported structs and the already-classified FunctionNodes that
// belong to it (purity must already be propagated).
func AnalyzeFile(file string, structs []model.StructInfo, functions []*model.FunctionNode, cfg GodObjectConfig) *model.FileMetrics {
	fm := &model.FileMetrics{File: file, Structs: structs}

	byStruct := make(map[string][]*model.FunctionNode)
	var moduleFns []*model.FunctionNode
	for _, fn := range functions {
		fm.Functions = append(fm.Functions, fn.Id)
		fm.TotalLOC += fn.LOC
		if fn.StructOwner != "" {
			byStruct[fn.StructOwner] = append(byStruct[fn.StructOwner], fn)
		} else if !fn.IsTest {
			moduleFns = append(moduleFns, fn)
		}
	}

	var bestStruct string
	var bestScore float64
	for _, s := range structs {
		methods := byStruct[s.Name]
		if len(methods) <= cfg.MethodThreshold || len(s.Fields) <= cfg.FieldThreshold {
			continue
		}
		score := godScore(len(s.Fields), methods)
		if score > bestScore {
			bestScore, bestStruct = score, s.Name
		}
	}

	switch {
	case bestScore >= cfg.ScoreThreshold:
		fm.IsGodObject = true
		fm.GodStructName = bestStruct
		fm.GodScore = bestScore
		fm.SemanticSplitHint = semanticSplitHint(byStruct[bestStruct])
	case len(moduleFns) > cfg.ModuleFunctionThreshold:
		score := godScore(0, moduleFns)
		if score >= cfg.ScoreThreshold {
			fm.IsGodModule = true
			fm.GodScore = score
			fm.SemanticSplitHint = semanticSplitHint(moduleFns)
		}
	}

	return fm
}

// godScore implements the complexity-weighted god scoring formula: weighted
// method count (cyclomatic-derived, purity-discounted) plus field count plus
// responsibility count plus LOC/500, scaled by an average-complexity
// penalty.
func godScore(fieldCount int, methods []*model.FunctionNode) float64 {
	var weightedMethods float64
	var totalLOC int
	var totalCyclomatic int
	for _, m := range methods {
		cyc := m.Cyclomatic
		if cyc < 1 {
			cyc = 1
		}
		weight := math.Pow(float64(cyc)/3.0, 1.5)
		if m.Purity.Level == model.Pure {
			weight *= 0.3
		} else {
			weight *= 1.0
		}
		weightedMethods += weight
		totalLOC += m.LOC
		totalCyclomatic += cyc
	}

	responsibilities := responsibilityCount(methods)
	locFactor := float64(totalLOC) / 500.0

	score := weightedMethods + float64(fieldCount) + float64(responsibilities) + locFactor

	avgComplexity := 0.0
	if len(methods) > 0 {
		avgComplexity = float64(totalCyclomatic) / float64(len(methods))
	}
	switch {
	case avgComplexity > 10:
		score *= 1.5
	case avgComplexity < 3:
		score *= 0.7
	default:
		score *= 1.0
	}
	return score
}

// responsibilityCount counts distinct domain terms appearing across method
// names at or above 30% frequency — the same tokenization semantic-naming
// uses, counted here just for the responsibility-count scoring input.
func responsibilityCount(methods []*model.FunctionNode) int {
	freq := termFrequency(methods)
	count := 0
	threshold := math.Ceil(float64(len(methods)) * 0.3)
	for _, f := range freq {
		if float64(f) >= threshold {
			count++
		}
	}
	if count == 0 {
		return 1
	}
	return count
}

func termFrequency(methods []*model.FunctionNode) map[string]int {
	freq := make(map[string]int)
	for _, m := range methods {
		for _, tok := range tokenizeName(m.Id.Name) {
			freq[tok]++
		}
	}
	return freq
}

func tokenizeName(name string) []string {
	parts := camelcase.Split(name)
	var out []string
	for _, p := range parts {
		for _, sub := range splitSnake(p) {
			if sub == "" {
				continue
			}
			out = append(out, toLower(sub))
		}
	}
	return out
}

func splitSnake(s string) []string {
	var out []string
	cur := ""
	for _, r := range s {
		if r == '_' {
			out = append(out, cur)
			cur = ""
			continue
		}
		cur += string(r)
	}
	out = append(out, cur)
	return out
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

var behavioralVerbs = map[string]bool{
	"format": true, "validate": true, "parse": true, "compute": true,
	"transform": true, "serialize": true, "persist": true, "handle": true,
	"lifecycle": true,
}

var genericWords = map[string]bool{"util": true, "misc": true, "helper": true, "common": true}

// semanticSplitHint implements the semantic-module-naming suggestion used
// for god-object split recommendations: a domain term at ≥30% coverage, or
// a behavioral verb at ≥60% coverage, rejected if its specificity is below
// 0.4 (generic words like "util"/"misc").
func semanticSplitHint(methods []*model.FunctionNode) string {
	if len(methods) == 0 {
		return ""
	}
	freq := termFrequency(methods)
	n := float64(len(methods))

	type cand struct {
		term string
		freq float64
		kind string
	}
	var candidates []cand
	for term, count := range freq {
		if genericWords[term] {
			continue
		}
		ratio := float64(count) / n
		if behavioralVerbs[term] && ratio >= 0.6 {
			candidates = append(candidates, cand{term, ratio, "Pattern"})
		} else if ratio >= 0.3 {
			candidates = append(candidates, cand{term, ratio, "DomainTerm"})
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].freq > candidates[j].freq })
	best := candidates[0]
	if specificity(best.term) < 0.4 {
		return ""
	}
	return best.term + ":" + best.kind
}

// specificity is a crude proxy: longer, less-common-looking terms score
// higher; short generic-looking terms score low.
func specificity(term string) float64 {
	if genericWords[term] {
		return 0.0
	}
	if len(term) <= 3 {
		return 0.3
	}
	return 0.7
}
