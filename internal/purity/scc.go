package purity

import (
	"github.com/iepathos/debtmap/internal/callgraph"
	"github.com/iepathos/debtmap/pkg/model"
)

// tarjan computes strongly-connected components of the callee graph via
// Tarjan's algorithm, returning them in reverse topological order
// (dependencies first) as required by C4 phase 2.
func tarjan(g *callgraph.Graph) [][]model.FunctionId {
	t := &tarjanState{
		g:       g,
		index:   make(map[model.FunctionId]int),
		lowlink: make(map[model.FunctionId]int),
		onStack: make(map[model.FunctionId]bool),
	}
	for _, id := range g.FunctionIds() {
		if _, seen := t.index[id]; !seen {
			t.strongConnect(id)
		}
	}
	// strongConnect appends each SCC as it is POPPED, which for Tarjan's
	// algorithm is already reverse topological order (a component is only
	// closed once everything it depends on has been closed first).
	return t.sccs
}

type tarjanState struct {
	g       *callgraph.Graph
	counter int
	index   map[model.FunctionId]int
	lowlink map[model.FunctionId]int
	onStack map[model.FunctionId]bool
	stack   []model.FunctionId
	sccs    [][]model.FunctionId
}

func (t *tarjanState) strongConnect(v model.FunctionId) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.g.Callees(v) {
		if _, seen := t.index[w]; !seen {
			t.strongConnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] == t.index[v] {
		var scc []model.FunctionId
		for {
			n := len(t.stack) - 1
			w := t.stack[n]
			t.stack = t.stack[:n]
			t.onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		t.sccs = append(t.sccs, scc)
	}
}
