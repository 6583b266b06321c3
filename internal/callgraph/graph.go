// Package callgraph implements C3: the multi-index call graph. Construction
// is single-threaded and exclusive; once built, the graph is frozen and
// shared read-only across every later phase.
package callgraph

import (
	"sort"

	"github.com/iepathos/debtmap/internal/identity"
	"github.com/iepathos/debtmap/pkg/model"
)

// Graph exclusively owns the primary node map and the four derived indexes
// (fuzzy, name, caller, callee). The fuzzy and name indexes are rebuildable
// from the primary map alone; the caller and callee indexes also need the
// edge list.
type Graph struct {
	nodes       map[model.FunctionId]*model.FunctionNode
	insertOrder []model.FunctionId

	fuzzyIndex map[model.FuzzyKey][]model.FunctionId
	nameIndex  map[model.NameKey][]model.FunctionId

	callerIndex map[model.FunctionId]map[model.FunctionId]bool
	calleeIndex map[model.FunctionId]map[model.FunctionId]bool
}

// New returns an empty graph ready for sequential construction.
func New() *Graph {
	return &Graph{
		nodes:       make(map[model.FunctionId]*model.FunctionNode),
		fuzzyIndex:  make(map[model.FuzzyKey][]model.FunctionId),
		nameIndex:   make(map[model.NameKey][]model.FunctionId),
		callerIndex: make(map[model.FunctionId]map[model.FunctionId]bool),
		calleeIndex: make(map[model.FunctionId]map[model.FunctionId]bool),
	}
}

// AddFunction inserts a function into the primary index and both derived
// indexes. Re-inserting an existing id is disallowed and reports
// DuplicateFunctionError — a frontend invariant violation, fatal to build.
func (g *Graph) AddFunction(node *model.FunctionNode) error {
	id := node.Id
	if _, exists := g.nodes[id]; exists {
		return &model.DuplicateFunctionError{Id: id}
	}
	g.nodes[id] = node
	g.insertOrder = append(g.insertOrder, id)

	fk := identity.FuzzyKeyOf(id)
	g.fuzzyIndex[fk] = append(g.fuzzyIndex[fk], id)
	nk := identity.NameKeyOf(id)
	g.nameIndex[nk] = append(g.nameIndex[nk], id)
	return nil
}

// AddCall records a caller->callee edge. Both endpoints must already exist
// in the primary index.
func (g *Graph) AddCall(caller, callee model.FunctionId) error {
	if _, ok := g.nodes[caller]; !ok {
		return &model.InvariantViolationError{Description: "AddCall: caller not in graph: " + caller.String()}
	}
	if _, ok := g.nodes[callee]; !ok {
		return &model.InvariantViolationError{Description: "AddCall: callee not in graph: " + callee.String()}
	}
	if g.calleeIndex[caller] == nil {
		g.calleeIndex[caller] = make(map[model.FunctionId]bool)
	}
	g.calleeIndex[caller][callee] = true
	if g.callerIndex[callee] == nil {
		g.callerIndex[callee] = make(map[model.FunctionId]bool)
	}
	g.callerIndex[callee][caller] = true
	return nil
}

// Node returns the node for id, if present.
func (g *Graph) Node(id model.FunctionId) (*model.FunctionNode, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns every node in stable insertion order.
func (g *Graph) Nodes() []*model.FunctionNode {
	out := make([]*model.FunctionNode, 0, len(g.insertOrder))
	for _, id := range g.insertOrder {
		out = append(out, g.nodes[id])
	}
	return out
}

// FunctionIds returns every FunctionId in stable insertion order.
func (g *Graph) FunctionIds() []model.FunctionId {
	out := make([]model.FunctionId, len(g.insertOrder))
	copy(out, g.insertOrder)
	return out
}

// Callees returns the callees of id in deterministic (sorted) order.
func (g *Graph) Callees(id model.FunctionId) []model.FunctionId {
	return sortedKeys(g.calleeIndex[id])
}

// Callers returns the callers of id in deterministic (sorted) order.
func (g *Graph) Callers(id model.FunctionId) []model.FunctionId {
	return sortedKeys(g.callerIndex[id])
}

func sortedKeys(m map[model.FunctionId]bool) []model.FunctionId {
	out := make([]model.FunctionId, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return idLess(out[i], out[j]) })
	return out
}

func idLess(a, b model.FunctionId) bool {
	if a.File != b.File {
		return a.File < b.File
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.Line < b.Line
}

// EdgeCount returns the total number of caller->callee edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, callees := range g.calleeIndex {
		n += len(callees)
	}
	return n
}

// Snapshot produces the debug/visualization view exposed in RankedReport.
func (g *Graph) Snapshot() *model.GraphSnapshot {
	return &model.GraphSnapshot{
		NodeCount: len(g.nodes),
		EdgeCount: g.EdgeCount(),
		Functions: g.FunctionIds(),
	}
}

// Rebuild reconstructs a graph from a primary node map and an edge list via
// the same insert helpers: the fuzzy and name indexes from the nodes, the
// caller and callee indexes from the edges. Used after deserializing the
// primary index together with its edges.
func Rebuild(nodes map[model.FunctionId]*model.FunctionNode, edges []model.CallEdge) (*Graph, []error) {
	g := New()
	ids := make([]model.FunctionId, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return idLess(ids[i], ids[j]) })

	var errs []error
	for _, id := range ids {
		if err := g.AddFunction(nodes[id]); err != nil {
			errs = append(errs, err)
		}
	}
	for _, e := range edges {
		if err := g.AddCall(e.Caller, e.Callee); err != nil {
			errs = append(errs, err)
		}
	}
	return g, errs
}
