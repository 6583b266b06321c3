package frontend

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"

	"github.com/iepathos/debtmap/pkg/model"
)

// RustFrontend implements model.FrontendModel over a directory of Rust
// source files. Tree-sitter parsers are not thread-safe, so parsing is
// serialized; the resulting trees are read-only afterward and safe to walk
// concurrently if a caller chooses to.
type RustFrontend struct {
	mu     sync.Mutex
	parser *tree_sitter.Parser

	root      string
	crateName string
	files     []model.FrontendFile
	edges     []model.CallEdge
}

// Load walks root for .rs files (honoring .gitignore), parses each with
// Tree-sitter, and extracts the function/struct/call-edge facts the engine
// needs. The returned RustFrontend is immutable; Load does all parsing
// up front rather than lazily.
func Load(root string) (*RustFrontend, error) {
	lang := tree_sitter.NewLanguage(tree_sitter_rust.Language())
	parser := tree_sitter.NewParser()
	if err := parser.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("set rust language: %w", err)
	}

	crateName, err := readCrateName(root)
	if err != nil {
		return nil, fmt.Errorf("read Cargo.toml: %w", err)
	}

	paths, err := discoverRustFiles(root)
	if err != nil {
		parser.Close()
		return nil, fmt.Errorf("discover rust files: %w", err)
	}

	f := &RustFrontend{parser: parser, root: root, crateName: crateName}
	for _, path := range paths {
		if err := f.parseFile(path); err != nil {
			parser.Close()
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	parser.Close()
	return f, nil
}

func (f *RustFrontend) Files() []model.FrontendFile   { return f.files }
func (f *RustFrontend) CallEdges() []model.CallEdge { return f.edges }

func (f *RustFrontend) parseFile(absPath string) error {
	content, err := os.ReadFile(absPath)
	if err != nil {
		return err
	}

	f.mu.Lock()
	tree := f.parser.Parse(content, nil)
	f.mu.Unlock()
	if tree == nil {
		return fmt.Errorf("tree-sitter parse returned nil")
	}
	defer tree.Close()

	relPath, err := filepath.Rel(f.root, absPath)
	if err != nil {
		relPath = absPath
	}
	relPath = filepath.ToSlash(relPath)
	modPath := modulePathFromFile(f.crateName, f.root, absPath)

	ext := extractFile(tree.RootNode(), content, relPath, modPath)
	f.files = append(f.files, ext.file)
	for _, callerName := range ext.callerOrder {
		caller := ext.callerIds[callerName]
		for _, calleeName := range ext.calls[callerName] {
			f.edges = append(f.edges, model.CallEdge{
				Caller: caller,
				Callee: model.FunctionId{Name: calleeName, File: relPath},
			})
		}
	}
	return nil
}

type fileExtraction struct {
	file        model.FrontendFile
	callerIds   map[string]model.FunctionId
	calls       map[string][]string
	callerOrder []string
}

// extractFile walks one file's syntax tree, collecting top-level and
// impl-block functions, struct definitions, and outgoing call sites.
func extractFile(root *tree_sitter.Node, content []byte, relPath, modPath string) *fileExtraction {
	ex := &fileExtraction{
		file:      model.FrontendFile{Path: relPath},
		callerIds: make(map[string]model.FunctionId),
		calls:     make(map[string][]string),
	}

	var structs []model.StructInfo
	methodsByStruct := make(map[string][]string)

	var walkTop func(n *tree_sitter.Node, implType string)
	walkTop = func(n *tree_sitter.Node, implType string) {
		if n == nil {
			return
		}
		switch n.Kind() {
		case "struct_item":
			structs = append(structs, extractStruct(n, content, relPath))
		case "impl_item":
			typeNode := n.ChildByFieldName("type")
			owner := ""
			if typeNode != nil {
				owner = nodeText(typeNode, content)
			}
			body := n.ChildByFieldName("body")
			if body != nil {
				for i := uint(0); i < body.ChildCount(); i++ {
					walkTop(body.Child(i), owner)
				}
			}
			return
		case "function_item":
			fn := extractFunction(n, content, modPath, implType)
			ex.file.Functions = append(ex.file.Functions, fn)
			if implType != "" {
				methodsByStruct[implType] = append(methodsByStruct[implType], fn.Name)
			}
			id := model.FunctionId{File: relPath, Name: fn.Name, Line: fn.Line, ModulePath: fn.ModulePath}
			ex.callerIds[fn.Name] = id
			ex.callerOrder = append(ex.callerOrder, fn.Name)
			body := n.ChildByFieldName("body")
			if body != nil {
				ex.calls[fn.Name] = collectCalls(body, content)
			}
			return
		case "mod_item":
			body := n.ChildByFieldName("body")
			if body != nil {
				for i := uint(0); i < body.ChildCount(); i++ {
					walkTop(body.Child(i), implType)
				}
			}
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walkTop(n.Child(i), implType)
		}
	}
	walkTop(root, "")

	for i := range structs {
		structs[i].Methods = methodsByStruct[structs[i].Name]
	}
	ex.file.Structs = structs
	return ex
}

func extractStruct(n *tree_sitter.Node, content []byte, file string) model.StructInfo {
	name := ""
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		name = nodeText(nameNode, content)
	}
	s := model.StructInfo{Name: name, File: file}
	body := n.ChildByFieldName("body")
	if body == nil {
		return s
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		child := body.Child(i)
		if child != nil && child.Kind() == "field_declaration" {
			if fieldName := child.ChildByFieldName("name"); fieldName != nil {
				s.Fields = append(s.Fields, nodeText(fieldName, content))
			}
		}
	}
	return s
}

// extractFunction builds a FrontendFunction from one function_item node,
// computing cyclomatic complexity, nesting depth, and intrinsic
// side-effect flags by walking the function body once.
func extractFunction(n *tree_sitter.Node, content []byte, modPath, implType string) model.FrontendFunction {
	name := ""
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		name = nodeText(nameNode, content)
	}
	startRow := int(n.StartPosition().Row)
	endRow := int(n.EndPosition().Row)

	isTest := hasTestAttribute(n, content)
	paramsNode := n.ChildByFieldName("parameters")
	paramCount, hasMutSelf, hasMutParam := countParams(paramsNode, content)

	body := n.ChildByFieldName("body")
	cyclomatic := 1
	var maxNesting, armCount, maxArmComplexity int
	var isSingleMatch bool
	effects := make(map[model.SideEffect]bool)
	if hasMutSelf {
		effects[model.EffectMutSelf] = true
	}
	if hasMutParam {
		effects[model.EffectMutParam] = true
	}
	if body != nil {
		cyclomatic, maxNesting = walkComplexity(body, content, 0)
		isSingleMatch, armCount, maxArmComplexity = singleMatchShape(body, content)
		collectEffects(body, content, effects)
	}

	returnType := ""
	if rt := n.ChildByFieldName("return_type"); rt != nil {
		returnType = nodeText(rt, content)
	}
	returnedStruct := strings.TrimSpace(strings.TrimPrefix(returnType, "->"))

	var structHints model.FunctionStructInitHints
	var dispatchHints model.FunctionDispatchHints
	var distinctShapes, totalShapes int
	var repetitionRatio float64
	if body != nil {
		structHints = structInitHints(body, content, returnedStruct, endRow-startRow+1)
		dispatchHints = dispatchShape(body, content)
		distinctShapes, totalShapes = tokenShapes(body)
		repetitionRatio = matchArmRepetitionRatio(body)
	}

	fullModPath := modPath
	if implType != "" {
		fullModPath = modPath + "::" + implType
	}

	return model.FrontendFunction{
		Name:             name,
		Line:             startRow + 1,
		ModulePath:       fullModPath,
		Cyclomatic:       cyclomatic,
		Cognitive:        cyclomatic, // approximated from the same walk; Rust has no separate frontend cognitive pass
		Nesting:          maxNesting,
		LOC:              endRow - startRow + 1,
		ParameterCount:   paramCount,
		IsMethod:         implType != "",
		StructOwner:      implType,
		IntrinsicEffects: effects,
		TestAttribute:    isTest,
		ReturnedStruct:   returnedStruct,
		MatchHints: model.FunctionMatchHints{
			IsSingleMatchExpression: isSingleMatch,
			ArmCount:                armCount,
			MaxArmComplexity:        maxArmComplexity,
		},
		DispatchHints:   dispatchHints,
		StructInitHints: structHints,

		TokenDistinctShapes:    distinctShapes,
		TokenTotalShapes:       totalShapes,
		PatternRepetitionRatio: repetitionRatio,
	}
}

// tokenShapes walks a function body's blocks, classifying each top-level
// statement by a normalized "shape" (its node-kind tree, ignoring literal
// text) and returns the number of distinct shapes seen against the total
// statement count — C8's entropy input. Repeated, near-identical statements
// (the hallmark of generated or pattern-heavy code) collapse to one shape.
func tokenShapes(body *tree_sitter.Node) (distinct, total int) {
	shapes := make(map[string]bool)
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if n == nil {
			return
		}
		if n.Kind() == "block" {
			for i := uint(0); i < n.ChildCount(); i++ {
				child := n.Child(i)
				if child == nil {
					continue
				}
				switch child.Kind() {
				case "{", "}", "line_comment", "block_comment":
					continue
				}
				total++
				shapes[statementShape(child)] = true
			}
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(body)
	return len(shapes), total
}

// statementShape renders a statement's node-kind structure down to a
// shallow depth, so two statements with the same control-flow shape but
// different identifiers/literals hash to the same string.
func statementShape(n *tree_sitter.Node) string {
	var b strings.Builder
	var walk func(node *tree_sitter.Node, depth int)
	walk = func(node *tree_sitter.Node, depth int) {
		if node == nil || depth > 3 {
			return
		}
		b.WriteString(node.Kind())
		b.WriteByte(':')
		for i := uint(0); i < node.ChildCount(); i++ {
			walk(node.Child(i), depth+1)
		}
	}
	walk(n, 0)
	return b.String()
}

// matchArmRepetitionRatio is the fraction of match-arm bodies (across every
// match expression in the function) that share their shape with at least
// one sibling arm — C8's pattern-repetition input, the signal that
// dampens effective complexity for clean-match-style dispatch.
func matchArmRepetitionRatio(body *tree_sitter.Node) float64 {
	var shapes []string
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if n == nil {
			return
		}
		if n.Kind() == "match_expression" {
			armsNode := n.ChildByFieldName("body")
			if armsNode != nil {
				for i := uint(0); i < armsNode.ChildCount(); i++ {
					arm := armsNode.Child(i)
					if arm == nil || arm.Kind() != "match_arm" {
						continue
					}
					if value := arm.ChildByFieldName("value"); value != nil {
						shapes = append(shapes, statementShape(value))
					}
				}
			}
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(body)
	if len(shapes) == 0 {
		return 0.0
	}
	freq := make(map[string]int)
	for _, s := range shapes {
		freq[s]++
	}
	repeated := 0
	for _, c := range freq {
		if c > 1 {
			repeated += c
		}
	}
	return float64(repeated) / float64(len(shapes))
}

// structInitHints looks for a struct-literal expression of the returned
// type within the body and reports how much of the body it covers, as a
// proxy for the "is this function mostly field assignment" signal C7
// needs.
func structInitHints(body *tree_sitter.Node, content []byte, returnedStruct string, bodyLines int) model.FunctionStructInitHints {
	target := lastSegment(strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(returnedStruct, "Result<"), ">")))
	var found *tree_sitter.Node
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if n == nil || found != nil {
			return
		}
		if n.Kind() == "struct_expression" {
			if nameNode := n.ChildByFieldName("name"); nameNode != nil && lastSegment(nodeText(nameNode, content)) == target && target != "" {
				found = n
				return
			}
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(body)
	if found == nil {
		return model.FunctionStructInitHints{BodyLines: bodyLines}
	}

	fieldCount, complexCount := 0, 0
	bodyNode := found.ChildByFieldName("body")
	if bodyNode != nil {
		for i := uint(0); i < bodyNode.ChildCount(); i++ {
			child := bodyNode.Child(i)
			if child == nil || child.Kind() != "field_initializer" {
				continue
			}
			fieldCount++
			if value := child.ChildByFieldName("value"); value != nil {
				switch value.Kind() {
				case "call_expression", "match_expression", "if_expression":
					complexCount++
				}
			}
		}
	}
	assignmentLines := int(found.EndPosition().Row) - int(found.StartPosition().Row) + 1

	return model.FunctionStructInitHints{
		ReturnedStructFieldCount: fieldCount,
		FieldAssignmentLines:     assignmentLines,
		BodyLines:                bodyLines,
		ComplexFieldCount:        complexCount,
		ReturnsResultOfStruct:    strings.HasPrefix(strings.TrimSpace(returnedStruct), "Result<"),
	}
}

// dispatchShape detects the observer-dispatch-loop shape: a for-loop over
// a registry field that invokes each element without an early break.
func dispatchShape(body *tree_sitter.Node, content []byte) model.FunctionDispatchHints {
	var hints model.FunctionDispatchHints
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if n == nil {
			return
		}
		if n.Kind() == "for_expression" {
			text := nodeText(n, content)
			if strings.Contains(text, "self.listeners") || strings.Contains(text, "self.handlers") ||
				strings.Contains(text, "self.observers") || strings.Contains(text, "self.callbacks") ||
				strings.Contains(text, "self.subscribers") {
				hints.HasLoopOverRegistry = true
				hints.InvokesEachElement = strings.Contains(text, "(") && (strings.Contains(text, ".call") || strings.Contains(text, "notify") || strings.Contains(text, "handle"))
				hints.BreaksOnFirstElement = strings.Contains(text, "break")
			}
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(body)
	return hints
}

func hasTestAttribute(n *tree_sitter.Node, content []byte) bool {
	prev := n.PrevSibling()
	for prev != nil {
		if prev.Kind() == "attribute_item" {
			text := nodeText(prev, content)
			if strings.Contains(text, "test") {
				return true
			}
			prev = prev.PrevSibling()
			continue
		}
		break
	}
	return false
}

func countParams(n *tree_sitter.Node, content []byte) (count int, hasMutSelf, hasMutParam bool) {
	if n == nil {
		return 0, false, false
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "self_parameter":
			if strings.Contains(nodeText(child, content), "mut") {
				hasMutSelf = true
			}
		case "parameter":
			count++
			if strings.Contains(nodeText(child, content), "&mut") {
				hasMutParam = true
			}
		}
	}
	return count, hasMutSelf, hasMutParam
}

// walkComplexity computes McCabe cyclomatic complexity (base 1, +1 per
// branch construct) and the maximum brace-nesting depth in one pass.
func walkComplexity(n *tree_sitter.Node, content []byte, depth int) (complexity, maxDepth int) {
	if n == nil {
		return 1, 0
	}
	complexity = 1
	maxDepth = depth

	var walk func(node *tree_sitter.Node, d int)
	walk = func(node *tree_sitter.Node, d int) {
		if node == nil {
			return
		}
		kind := node.Kind()
		nextDepth := d
		switch kind {
		case "if_expression", "match_arm", "while_expression", "for_expression", "loop_expression", "try_expression":
			complexity++
		case "binary_expression":
			op := ""
			for i := uint(0); i < node.ChildCount(); i++ {
				c := node.Child(i)
				if c != nil && (c.Kind() == "&&" || c.Kind() == "||") {
					op = c.Kind()
				}
			}
			if op != "" {
				complexity++
			}
		case "block":
			nextDepth = d + 1
			if nextDepth > maxDepth {
				maxDepth = nextDepth
			}
		}
		for i := uint(0); i < node.ChildCount(); i++ {
			walk(node.Child(i), nextDepth)
		}
	}
	walk(n, depth)
	return complexity, maxDepth
}

func singleMatchShape(body *tree_sitter.Node, content []byte) (isSingle bool, armCount, maxArmComplexity int) {
	var matchNode *tree_sitter.Node
	stmtCount := 0
	for i := uint(0); i < body.ChildCount(); i++ {
		child := body.Child(i)
		if child == nil {
			continue
		}
		kind := child.Kind()
		if kind == "{" || kind == "}" {
			continue
		}
		stmtCount++
		if kind == "match_expression" || kind == "expression_statement" {
			inner := child
			if kind == "expression_statement" && child.ChildCount() > 0 {
				inner = child.Child(0)
			}
			if inner != nil && inner.Kind() == "match_expression" {
				matchNode = inner
			}
		}
	}
	if stmtCount != 1 || matchNode == nil {
		return false, 0, 0
	}
	armsNode := matchNode.ChildByFieldName("body")
	if armsNode == nil {
		return false, 0, 0
	}
	for i := uint(0); i < armsNode.ChildCount(); i++ {
		arm := armsNode.Child(i)
		if arm == nil || arm.Kind() != "match_arm" {
			continue
		}
		armCount++
		valueNode := arm.ChildByFieldName("value")
		armComplexity := 1
		if valueNode != nil {
			armComplexity, _ = walkComplexity(valueNode, content, 0)
		}
		if armComplexity > maxArmComplexity {
			maxArmComplexity = armComplexity
		}
	}
	return true, armCount, maxArmComplexity
}

var effectCallMarkers = map[string]model.SideEffect{
	"println!":        model.EffectStdout,
	"print!":          model.EffectStdout,
	"eprintln!":       model.EffectStdout,
	"std::fs":         model.EffectFileIO,
	"File::":          model.EffectFileIO,
	"TcpStream":       model.EffectNetwork,
	"reqwest":         model.EffectNetwork,
	"tokio::net":      model.EffectNetwork,
	"Command::new":    model.EffectProcessSpawn,
	"process::exit":   model.EffectProcessSpawn,
	"std::time":       model.EffectTimeRandom,
	"rand::":          model.EffectTimeRandom,
	"extern \"C\"":    model.EffectFFI,
}

func collectEffects(n *tree_sitter.Node, content []byte, effects map[model.SideEffect]bool) {
	if n == nil {
		return
	}
	if n.Kind() == "unsafe_block" {
		effects[model.EffectUnsafe] = true
	}
	text := nodeText(n, content)
	for marker, effect := range effectCallMarkers {
		if strings.Contains(text, marker) {
			effects[effect] = true
		}
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		collectEffects(n.Child(i), content, effects)
	}
}

// collectCalls walks a function body for call_expression nodes (macro
// invocations are not collected), returning the textual name of each
// callee — these are resolution queries for C3, not yet FunctionIds.
func collectCalls(n *tree_sitter.Node, content []byte) []string {
	var calls []string
	var walk func(node *tree_sitter.Node)
	walk = func(node *tree_sitter.Node) {
		if node == nil {
			return
		}
		if node.Kind() == "call_expression" {
			if fn := node.ChildByFieldName("function"); fn != nil {
				calls = append(calls, lastSegment(nodeText(fn, content)))
			}
		}
		for i := uint(0); i < node.ChildCount(); i++ {
			walk(node.Child(i))
		}
	}
	walk(n)
	return calls
}

func lastSegment(s string) string {
	if idx := strings.LastIndex(s, "::"); idx >= 0 {
		return s[idx+2:]
	}
	if idx := strings.LastIndex(s, "."); idx >= 0 {
		return s[idx+1:]
	}
	return s
}

func nodeText(n *tree_sitter.Node, content []byte) string {
	return string(content[n.StartByte():n.EndByte()])
}
