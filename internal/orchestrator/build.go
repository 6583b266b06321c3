package orchestrator

import (
	"github.com/iepathos/debtmap/internal/complexity"
	"github.com/iepathos/debtmap/internal/pattern"
	"github.com/iepathos/debtmap/internal/testdetect"
	"github.com/iepathos/debtmap/pkg/model"
)

// buildNodes runs phase 1's per-file metric extraction and test detection,
// producing the initial FunctionNode set (purity/role fields still
// zero-valued) plus each file's struct list for later C7 god-object
// analysis. The per-function C7 recognizers (clean-match, observer
// dispatch, struct init) are pure functions of frontend hints alone, so
// they're resolved here rather than in the parallel classification phase.
func buildNodes(files []model.FrontendFile, testCfg testdetect.Config) ([]*model.FunctionNode, map[string][]model.StructInfo) {
	var nodes []*model.FunctionNode
	structsByFile := make(map[string][]model.StructInfo, len(files))

	for _, f := range files {
		structsByFile[f.Path] = f.Structs
		inTestFile := testdetect.IsTestFile(testCfg, f.Path)
		for _, fn := range f.Functions {
			isTest := testdetect.IsTestFunction(testCfg, inTestFile, fn.TestAttribute, nil)
			n := &model.FunctionNode{
				Id: model.FunctionId{
					File:       f.Path,
					Name:       fn.Name,
					Line:       fn.Line,
					ModulePath: fn.ModulePath,
				},
				Cyclomatic:     fn.Cyclomatic,
				Cognitive:      fn.Cognitive,
				Nesting:        fn.Nesting,
				ParameterCount: fn.ParameterCount,
				LOC:            fn.LOC,
				IsTest:         isTest,
				IsMethod:       fn.IsMethod,
				StructOwner:    fn.StructOwner,
				SideEffects:    fn.IntrinsicEffects,
				ReturnedStruct: fn.ReturnedStruct,
				FieldInitLines: fn.FieldInitLines,
			}
			n.Entropy = complexity.Entropy(complexity.TokenCounts{
				DistinctShapes: fn.TokenDistinctShapes,
				TotalShapes:    fn.TokenTotalShapes,
			})
			n.PatternRepetitionRatio = fn.PatternRepetitionRatio
			n.Patterns.IsCleanMatchDispatcher = pattern.IsCleanMatchDispatcher(pattern.MatchHints{
				IsSingleMatchExpression: fn.MatchHints.IsSingleMatchExpression,
				ArmCount:                fn.MatchHints.ArmCount,
				MaxArmComplexity:        fn.MatchHints.MaxArmComplexity,
			})
			n.Patterns.IsObserverDispatcher = pattern.IsObserverDispatcher(pattern.DispatchHints{
				HasLoopOverRegistry:  fn.DispatchHints.HasLoopOverRegistry,
				InvokesEachElement:   fn.DispatchHints.InvokesEachElement,
				BreaksOnFirstElement: fn.DispatchHints.BreaksOnFirstElement,
			})
			isInit, conf := pattern.DetectStructInit(n, pattern.StructInitHints{
				ReturnedStructFieldCount: fn.StructInitHints.ReturnedStructFieldCount,
				FieldAssignmentLines:     fn.StructInitHints.FieldAssignmentLines,
				BodyLines:                fn.StructInitHints.BodyLines,
				ComplexFieldCount:        fn.StructInitHints.ComplexFieldCount,
				ReturnsResultOfStruct:    fn.StructInitHints.ReturnsResultOfStruct,
			})
			n.Patterns.IsStructInitializer = isInit
			n.Patterns.StructInitConfidence = conf
			nodes = append(nodes, n)
		}
	}
	return nodes, structsByFile
}
