package model

// FrontendFunction is one function as reported by a language frontend, prior
// to identity normalization or graph insertion.
type FrontendFunction struct {
	Name             string
	Line             int
	ModulePath       string
	Cyclomatic       int
	Cognitive        int
	Nesting          int
	LOC              int
	ParameterCount   int
	IsMethod         bool
	StructOwner      string
	IntrinsicEffects map[SideEffect]bool
	TestAttribute    bool
	ReturnedStruct   string
	FieldInitLines   int

	// TokenDistinctShapes and TokenTotalShapes are the token-diversity
	// counts C8's entropy measure is computed from: the number of distinct
	// normalized statement shapes versus the total statement count in the
	// function body.
	TokenDistinctShapes    int
	TokenTotalShapes       int
	PatternRepetitionRatio float64

	MatchHints       FunctionMatchHints
	DispatchHints    FunctionDispatchHints
	StructInitHints  FunctionStructInitHints
}

// FunctionMatchHints mirrors pattern.MatchHints at the frontend boundary,
// duplicated here so pkg/model stays free of an internal/ import.
type FunctionMatchHints struct {
	IsSingleMatchExpression bool
	ArmCount                int
	MaxArmComplexity        int
}

// FunctionDispatchHints mirrors pattern.DispatchHints at the frontend
// boundary.
type FunctionDispatchHints struct {
	HasLoopOverRegistry  bool
	InvokesEachElement   bool
	BreaksOnFirstElement bool
}

// FunctionStructInitHints mirrors pattern.StructInitHints at the frontend
// boundary.
type FunctionStructInitHints struct {
	ReturnedStructFieldCount int
	FieldAssignmentLines     int
	BodyLines                int
	ComplexFieldCount        int
	ReturnsResultOfStruct    bool
}

// FrontendFile is one source file's worth of functions and structs, as
// reported by a language frontend. Call edges are not kept per file;
// FrontendModel.CallEdges reports them for the whole model.
type FrontendFile struct {
	Path      string
	Functions []FrontendFunction
	Structs   []StructInfo
}

// FrontendModel is the contract the engine consumes in place of a concrete
// parser: a capability set of {FunctionMetrics, CallEdges, SideEffectFlags}.
// Concrete frontends (one per source language) implement this; the engine
// itself never imports a parser.
type FrontendModel interface {
	Files() []FrontendFile
	CallEdges() []CallEdge
}

// CoverageRecord is one function's coverage as reported by a coverage
// provider.
type CoverageRecord struct {
	File           string
	FunctionName   string
	StartLine      int
	EndLine        int
	UncoveredLines []int
	HitLines       int
	TotalLines     int
}

// CoverageProvider supplies an optional list of coverage records. The engine
// is correct when a provider is absent or returns an empty list.
type CoverageProvider interface {
	Records() ([]CoverageRecord, error)
}
